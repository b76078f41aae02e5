package color

import (
	"regexp"
	"testing"
)

var hexColorRe = regexp.MustCompile(`^#[0-9A-F]{6}$`)

func TestForTag_Deterministic(t *testing.T) {
	first := ForTag("sunset")
	second := ForTag("sunset")
	if first != second {
		t.Errorf("ForTag not deterministic: %s vs %s", first, second)
	}
}

func TestForTag_ValidHex(t *testing.T) {
	for _, name := range []string{"sunset", "ocean", "b&w", "北京", ""} {
		got := ForTag(name)
		if !hexColorRe.MatchString(got) {
			t.Errorf("ForTag(%q) = %q, not a hex color", name, got)
		}
	}
}

func TestForTag_DifferentNamesVary(t *testing.T) {
	if ForTag("sunset") == ForTag("ocean") {
		t.Error("expected different colors for different names")
	}
}
