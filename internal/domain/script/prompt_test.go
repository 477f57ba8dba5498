package script

import (
	"strings"
	"testing"
)

func TestTargetWordCount(t *testing.T) {
	tests := map[float64]int{
		0:     30,
		10:    30,
		20:    45,
		40:    90,
		53.4:  120,
		600:   120,
		13.35: 30,
	}
	for in, want := range tests {
		if got := TargetWordCount(in); got != want {
			t.Fatalf("TargetWordCount(%v) = %d, want %d", in, got, want)
		}
	}
}

func TestPrompt(t *testing.T) {
	p := Prompt("  New discoveries in the pyramids ", "", 45)
	for _, want := range []string{"'New discoveries in the pyramids'", "in English.", "Max 45 words."} {
		if !strings.Contains(p, want) {
			t.Fatalf("prompt %q missing %q", p, want)
		}
	}
}

func TestClean(t *testing.T) {
	tests := map[string]string{
		"\"Hello there.\"\n":           "Hello there.",
		"\n\nLine one.\r\n\r\nLine two.": "Line one.\nLine two.",
		"   ":                          "",
	}
	for in, want := range tests {
		if got := Clean(in); got != want {
			t.Fatalf("Clean(%q) = %q, want %q", in, got, want)
		}
	}
}
