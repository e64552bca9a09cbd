package version

import (
	"testing"

	"github.com/fatih/color"
)

func TestString(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()

	Version = "  "
	if got := String(); got != "dev" {
		t.Fatalf("String() = %q, want dev", got)
	}
	Version = "1.2.3"
	if got := String(); got != "1.2.3" {
		t.Fatalf("String() = %q", got)
	}
}

func TestColored(t *testing.T) {
	orig, origNoColor := Version, color.NoColor
	defer func() { Version, color.NoColor = orig, origNoColor }()

	color.NoColor = true
	cases := []string{"0.1.0-dev", "1.2.3", "1.2.3-rc.1+build.123", "nightly"}
	for _, v := range cases {
		Version = v
		if got := Colored(); got != v {
			t.Errorf("Colored(%q) = %q without colour", v, got)
		}
	}

	color.NoColor = false
	Version = "1.2.3"
	if got := Colored(); got == "1.2.3" {
		t.Fatal("expected escape codes with colour enabled")
	}
}
