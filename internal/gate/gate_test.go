package gate

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		pin     string
		wantErr bool
	}{
		{"", false},
		{"0000", false},
		{"9876", false},
		{"123", true},
		{"12345", true},
		{"12a4", true},
		{"١٢٣٤", true}, // non-ASCII digits
	}

	for _, tc := range tests {
		t.Run(tc.pin, func(t *testing.T) {
			_, err := New(tc.pin)
			if (err != nil) != tc.wantErr {
				t.Errorf("New(%q) error = %v, wantErr %v", tc.pin, err, tc.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidPIN) {
				t.Errorf("expected ErrInvalidPIN, got %v", err)
			}
		})
	}
}

func TestGate_Check(t *testing.T) {
	g, err := New("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := g.Check("1234"); err != nil {
		t.Errorf("expected default PIN to pass, got %v", err)
	}
	if err := g.Check(" 1234\n"); err != nil {
		t.Errorf("expected surrounding space to be ignored, got %v", err)
	}
	if err := g.Check("4321"); !errors.Is(err, ErrDenied) {
		t.Errorf("expected ErrDenied, got %v", err)
	}
}

func TestGate_Prompt(t *testing.T) {
	g, _ := New("2468")

	var out bytes.Buffer
	if err := g.Prompt(strings.NewReader("1111\n2468\n"), &out); err != nil {
		t.Fatalf("expected second attempt to unlock, got %v", err)
	}
	if strings.Count(out.String(), "PIN: ") != 2 {
		t.Errorf("expected two prompts, got %q", out.String())
	}
	if !strings.Contains(out.String(), "Incorrect PIN") {
		t.Errorf("expected rejection message, got %q", out.String())
	}
}

func TestGate_PromptWithoutNewline(t *testing.T) {
	g, _ := New("2468")

	if err := g.Prompt(strings.NewReader("2468"), &bytes.Buffer{}); err != nil {
		t.Errorf("expected code without trailing newline to unlock, got %v", err)
	}
}

func TestGate_PromptExhausted(t *testing.T) {
	g, _ := New("2468")

	err := g.Prompt(strings.NewReader("0000\n0001\n0002\n2468\n"), &bytes.Buffer{})
	if !errors.Is(err, ErrDenied) {
		t.Errorf("expected ErrDenied after %d attempts, got %v", MaxAttempts, err)
	}
}

func TestGate_PromptEOF(t *testing.T) {
	g, _ := New("2468")

	if err := g.Prompt(strings.NewReader(""), &bytes.Buffer{}); err == nil {
		t.Error("expected error on empty input")
	}
}
