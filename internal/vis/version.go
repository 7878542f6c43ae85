// Package vis defines the version enumeration of the classification standard.
// Adjacent integer values are adjacent published revisions, which is what lets
// the conversion engine chain single-version steps.
package vis

import "fmt"

// Version is one published revision of the standard.
type Version int

const (
	Version3_4a Version = iota + 1
	Version3_5a
	Version3_6a
	Version3_7a
	Version3_8a
)

// Latest returns the newest published version.
func Latest() Version { return Version3_8a }

// All returns every published version in ascending order.
func All() []Version {
	return []Version{Version3_4a, Version3_5a, Version3_6a, Version3_7a, Version3_8a}
}

// IsValid reports whether v names a published version.
func (v Version) IsValid() bool {
	return v >= Version3_4a && v <= Version3_8a
}

// String returns the canonical form, e.g. "3-7a".
func (v Version) String() string {
	switch v {
	case Version3_4a:
		return "3-4a"
	case Version3_5a:
		return "3-5a"
	case Version3_6a:
		return "3-6a"
	case Version3_7a:
		return "3-7a"
	case Version3_8a:
		return "3-8a"
	}
	return fmt.Sprintf("invalid(%d)", int(v))
}

// ParseVersion resolves a canonical version string.
func ParseVersion(s string) (Version, error) {
	for _, v := range All() {
		if v.String() == s {
			return v, nil
		}
	}
	return 0, fmt.Errorf("unknown vis version %q", s)
}

// TryParseVersion is the best-effort form of ParseVersion.
func TryParseVersion(s string) (Version, bool) {
	v, err := ParseVersion(s)
	return v, err == nil
}
