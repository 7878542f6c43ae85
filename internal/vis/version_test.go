package vis

import "testing"

func TestVersionRoundTrip(t *testing.T) {
	for _, v := range All() {
		parsed, err := ParseVersion(v.String())
		if err != nil {
			t.Errorf("ParseVersion(%q): %v", v.String(), err)
		}
		if parsed != v {
			t.Errorf("ParseVersion(%q) = %v, want %v", v.String(), parsed, v)
		}
		if !v.IsValid() {
			t.Errorf("%v should be valid", v)
		}
	}
}

func TestVersionOrdering(t *testing.T) {
	all := All()
	for i := 1; i < len(all); i++ {
		if all[i] != all[i-1]+1 {
			t.Fatalf("versions must be dense and ascending, got %v", all)
		}
	}
	if Latest() != all[len(all)-1] {
		t.Errorf("Latest = %v, want %v", Latest(), all[len(all)-1])
	}
}

func TestParseVersionRejectsUnknown(t *testing.T) {
	for _, s := range []string{"", "3-9a", "3.7a", "v3-7a"} {
		if _, err := ParseVersion(s); err == nil {
			t.Errorf("ParseVersion(%q) should fail", s)
		}
		if _, ok := TryParseVersion(s); ok {
			t.Errorf("TryParseVersion(%q) should fail", s)
		}
	}
	var zero Version
	if zero.IsValid() {
		t.Error("zero value must be invalid")
	}
}
