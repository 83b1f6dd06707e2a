package roomcode

import (
	"strings"
	"testing"
)

func TestGenerator_Generate(t *testing.T) {
	g := NewGenerator()

	for i := 0; i < 1000; i++ {
		code := g.Generate()
		if len(code) != Length {
			t.Fatalf("Expected %d-character code, got %q", Length, code)
		}
		if code != strings.ToUpper(code) {
			t.Fatalf("Expected upper-case code, got %q", code)
		}
		for _, c := range code {
			if !strings.ContainsRune(Alphabet, c) {
				t.Fatalf("Code %q contains %q, outside the alphabet", code, c)
			}
		}
	}
}

func TestGenerator_ExcludesAmbiguousCharacters(t *testing.T) {
	for _, c := range "IO01" {
		if strings.ContainsRune(Alphabet, c) {
			t.Errorf("Alphabet must not contain ambiguous character %q", c)
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"abc234", "ABC234"},
		{"  ABC234  ", "ABC234"},
		{"aBc234\n", "ABC234"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
