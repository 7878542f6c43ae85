package location

import "testing"

func TestParse_Valid(t *testing.T) {
	for _, s := range []string{"1", "97", "P", "PU", "1P", "2S", "11FU", "1FIPU", "C", "CL"} {
		loc, err := Parse(s)
		if err != nil {
			t.Errorf("Parse(%q) returned error: %v", s, err)
			continue
		}
		if loc.String() != s {
			t.Errorf("Parse(%q).String() = %q", s, loc.String())
		}
		if loc.IsZero() {
			t.Errorf("Parse(%q) produced the zero value", s)
		}
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, s := range []string{"", " P", "P ", "0", "01", "0P", "N", "1N", "PP", "X", "P2", "a"} {
		if _, err := Parse(s); err == nil {
			t.Errorf("Parse(%q) should fail", s)
		}
		if _, ok := TryParse(s); ok {
			t.Errorf("TryParse(%q) should fail", s)
		}
	}
}

func TestParse_LettersMustBeOrdered(t *testing.T) {
	if _, err := Parse("UP"); err == nil {
		t.Error("out-of-order letters should fail")
	}
	if _, err := Parse("PU"); err != nil {
		t.Errorf("ordered letters should parse, got %v", err)
	}
}

func TestParse_OneLetterPerGroup(t *testing.T) {
	// C and P both name the side group.
	_, errs := ParseAll("CP")
	if len(errs) == 0 {
		t.Fatal("duplicate side-group letters should fail")
	}
	if errs[0].Group != GroupSide {
		t.Errorf("group = %v, want %v", errs[0].Group, GroupSide)
	}
}

func TestParseAll_CollectsEveryAnomaly(t *testing.T) {
	// Leading zero, reserved letter and an invalid character in one input.
	_, errs := ParseAll("01NX")
	if len(errs) < 3 {
		t.Fatalf("errs = %v, want all three anomalies reported", errs)
	}
}

func TestGroupOf(t *testing.T) {
	cases := map[byte]Group{
		'P': GroupSide, 'C': GroupSide, 'S': GroupSide,
		'U': GroupVertical, 'M': GroupVertical, 'L': GroupVertical,
		'I': GroupTransverse, 'O': GroupTransverse,
		'F': GroupLongitudinal, 'A': GroupLongitudinal,
	}
	for c, want := range cases {
		g, ok := groupOf(c)
		if !ok || g != want {
			t.Errorf("groupOf(%q) = %v, %v; want %v", string(c), g, ok, want)
		}
	}
	if _, ok := groupOf('N'); ok {
		t.Error("'N' is reserved and must not resolve to a group")
	}
}

func TestEquality(t *testing.T) {
	a, _ := Parse("2P")
	b, _ := Parse("2P")
	c, _ := Parse("2S")
	if a != b || !a.Equals(b) {
		t.Error("same canonical form must compare equal")
	}
	if a == c || a.Equals(c) {
		t.Error("different forms must not compare equal")
	}
	var zero Location
	if !zero.IsZero() {
		t.Error("zero value must report IsZero")
	}
}
