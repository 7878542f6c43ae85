// Package location implements the validated location qualifier attached to
// individualized classification nodes: a numeric instance part followed by at
// most one character from each of the four positional groups (side, vertical,
// transverse, longitudinal).
package location

import (
	"fmt"
	"strconv"
	"strings"
)

// Group identifies one of the positional character groups.
type Group int

const (
	GroupNumber Group = iota
	GroupSide
	GroupVertical
	GroupTransverse
	GroupLongitudinal
)

func (g Group) String() string {
	switch g {
	case GroupNumber:
		return "Number"
	case GroupSide:
		return "Side"
	case GroupVertical:
		return "Vertical"
	case GroupTransverse:
		return "Transverse"
	case GroupLongitudinal:
		return "Longitudinal"
	}
	return "Unknown"
}

// groupOf maps a location letter to its group. 'N' is reserved as the number
// designator and is not a valid group letter.
func groupOf(c byte) (Group, bool) {
	switch c {
	case 'P', 'C', 'S':
		return GroupSide, true
	case 'U', 'M', 'L':
		return GroupVertical, true
	case 'I', 'O':
		return GroupTransverse, true
	case 'F', 'A':
		return GroupLongitudinal, true
	}
	return 0, false
}

// Location is a validated location value. The zero value is not valid;
// construct through Parse or TryParse. Two locations are equal exactly when
// their canonical string forms are equal.
type Location struct {
	value string
}

func (l Location) String() string { return l.value }

// IsZero reports whether l is the unset zero value.
func (l Location) IsZero() bool { return l.value == "" }

// Equals reports value equality. Location is comparable, so == works too;
// this form reads better at call sites that hold pointers.
func (l Location) Equals(other Location) bool { return l.value == other.value }

// ParseError is one anomaly found while validating a location string.
type ParseError struct {
	Group   Group
	Message string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Group, e.Message)
}

// ParseErrors accumulates every anomaly instead of stopping at the first.
type ParseErrors []ParseError

func (e ParseErrors) Error() string {
	msgs := make([]string, len(e))
	for i, pe := range e {
		msgs[i] = pe.Error()
	}
	return strings.Join(msgs, "; ")
}

func (e *ParseErrors) add(g Group, format string, args ...any) {
	*e = append(*e, ParseError{Group: g, Message: fmt.Sprintf(format, args...)})
}

// Parse validates s and returns the location value.
func Parse(s string) (Location, error) {
	loc, errs := ParseAll(s)
	if len(errs) > 0 {
		return Location{}, errs
	}
	return loc, nil
}

// TryParse is the best-effort form of Parse.
func TryParse(s string) (Location, bool) {
	loc, errs := ParseAll(s)
	return loc, len(errs) == 0
}

// ParseAll validates s and collects every anomaly. On success the returned
// slice is empty and the location is usable.
func ParseAll(s string) (Location, ParseErrors) {
	var errs ParseErrors
	if s == "" {
		errs.add(GroupNumber, "location is empty")
		return Location{}, errs
	}
	if strings.TrimSpace(s) != s {
		errs.add(GroupNumber, "location %q has surrounding whitespace", s)
		return Location{}, errs
	}

	digits := 0
	for digits < len(s) && s[digits] >= '0' && s[digits] <= '9' {
		digits++
	}
	if digits > 0 {
		n, err := strconv.Atoi(s[:digits])
		if err != nil || n < 1 {
			errs.add(GroupNumber, "number part %q must be at least 1", s[:digits])
		}
		if s[0] == '0' {
			errs.add(GroupNumber, "number part %q has a leading zero", s[:digits])
		}
	}

	seen := map[Group]byte{}
	prev := byte(0)
	for i := digits; i < len(s); i++ {
		c := s[i]
		if c >= '0' && c <= '9' {
			errs.add(GroupNumber, "digit %q after letters; the number part must come first", string(c))
			continue
		}
		if c == 'N' {
			errs.add(GroupNumber, "'N' is the number designator and not a valid group letter")
			continue
		}
		g, ok := groupOf(c)
		if !ok {
			errs.add(GroupNumber, "invalid location character %q", string(c))
			continue
		}
		if first, dup := seen[g]; dup {
			errs.add(g, "group already has %q, cannot also take %q", string(first), string(c))
			continue
		}
		if prev != 0 && c < prev {
			errs.add(g, "letters must be in alphabetical order: %q after %q", string(c), string(prev))
		}
		seen[g] = c
		prev = c
	}

	if digits == 0 && len(seen) == 0 && len(errs) == 0 {
		errs.add(GroupNumber, "location %q has neither a number nor group letters", s)
	}
	if len(errs) > 0 {
		return Location{}, errs
	}
	return Location{value: s}, nil
}
