package gameid

import (
	"strings"
	"testing"
)

// seqSource hands out predetermined values so codes are reproducible.
type seqSource struct {
	values []int
	pos    int
}

func (s *seqSource) IntN(n int) int {
	v := s.values[s.pos%len(s.values)] % n
	s.pos++
	return v
}

func TestGenerate(t *testing.T) {
	code := Generate()

	if len(code) != CodeLength {
		t.Errorf("expected %d characters, got %d", CodeLength, len(code))
	}

	if err := Validate(code); err != nil {
		t.Errorf("generated code failed validation: %v", err)
	}
}

func TestGenerateUnique(t *testing.T) {
	codes := make(map[string]bool)

	for i := 0; i < 100; i++ {
		code := Generate()
		if codes[code] {
			t.Errorf("duplicate code generated: %s", code)
		}
		codes[code] = true
	}
}

func TestGeneratorDeterministic(t *testing.T) {
	gen := NewGenerator(&seqSource{values: []int{0, 1, 2, 3, 4, 5, 6, 7}})

	code := gen.Generate()
	if code != "01234567" {
		t.Errorf("expected 01234567, got %s", code)
	}

	// The source wraps, so the second code repeats the sequence.
	if second := gen.Generate(); second != code {
		t.Errorf("expected repeated sequence %s, got %s", code, second)
	}
}

func TestGeneratorAlphabet(t *testing.T) {
	gen := NewGenerator(&seqSource{values: []int{31}})

	code := gen.Generate()
	if code != strings.Repeat("Z", CodeLength) {
		t.Errorf("index 31 should map to Z, got %s", code)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantErr bool
	}{
		{"valid code", "7XQK2M9A", false},
		{"all digits", "01234567", false},
		{"too short", "7XQK2M9", true},
		{"too long", "7XQK2M9AB", true},
		{"empty", "", true},
		{"lowercase", "7xqk2m9a", true},
		{"ambiguous I", "7IQK2M9A", true},
		{"ambiguous L", "7LQK2M9A", true},
		{"ambiguous O", "7OQK2M9A", true},
		{"ambiguous U", "7UQK2M9A", true},
		{"punctuation", "7XQK-M9A", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.code)
			if tt.wantErr && err == nil {
				t.Errorf("expected error for %q", tt.code)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error for %q: %v", tt.code, err)
			}
		})
	}
}
