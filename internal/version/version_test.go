package version

import (
	"testing"

	"github.com/fatih/color"
)

func TestColored(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	orig := Version
	t.Cleanup(func() { Version = orig })

	tests := []struct {
		in, want string
	}{
		{"1.2.3", "1.2.3"},
		{"0.3.0-dev", "0.3.0-dev"},
		{"1.2", "1.2"},
		{"1.2.3.4", "1.2.3.4"},
		{"dev", "dev"},
	}
	for _, tt := range tests {
		Version = tt.in
		if got := Colored(); got != tt.want {
			t.Errorf("Colored(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestColored_HighlightsParts(t *testing.T) {
	prev := color.NoColor
	color.NoColor = false
	t.Cleanup(func() { color.NoColor = prev })

	orig := Version
	t.Cleanup(func() { Version = orig })
	Version = "1.2.3"
	if Colored() == Version {
		t.Fatalf("no escape codes with color enabled")
	}
}
