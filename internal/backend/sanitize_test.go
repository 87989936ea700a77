package backend

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateInputRejectsNullBytes(t *testing.T) {
	_, err := ValidateInput("ls\x00 -la")
	var invalid *InvalidInputError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidInputError, got %v", err)
	}
	if !strings.Contains(invalid.Message, "null bytes") {
		t.Fatalf("expected message to mention null bytes, got %q", invalid.Message)
	}
}

func TestValidateInputRejectsOverlongInput(t *testing.T) {
	_, err := ValidateInput(strings.Repeat("a", MaxInputLength+1))
	var invalid *InvalidInputError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidInputError, got %v", err)
	}
	if !strings.Contains(invalid.Message, "too long") {
		t.Fatalf("expected message to mention too long, got %q", invalid.Message)
	}
}

func TestValidateInputAcceptsExactlyMaxLength(t *testing.T) {
	text := strings.Repeat("a", MaxInputLength)
	got, err := ValidateInput(text)
	if err != nil {
		t.Fatalf("expected %d chars to pass, got %v", MaxInputLength, err)
	}
	if got != text {
		t.Fatalf("expected input unchanged, got %d chars", len(got))
	}
}

func TestValidateInputLengthCheckedBeforeFiltering(t *testing.T) {
	// Control characters would be dropped, but the length check runs on the
	// raw text first.
	text := strings.Repeat("\x01", MaxInputLength+1)
	if _, err := ValidateInput(text); err == nil {
		t.Fatal("expected overlong raw input to fail even though filtering would shrink it")
	}
}

func TestValidateInputStripsControlCharacters(t *testing.T) {
	got, err := ValidateInput("ls\x01 -la\x07\n\tdone\r")
	if err != nil {
		t.Fatalf("ValidateInput failed: %v", err)
	}
	if got != "ls -la\n\tdone" {
		t.Fatalf("unexpected sanitized output %q", got)
	}
}

func TestValidateInputIsIdempotent(t *testing.T) {
	inputs := []string{
		"  find . -name '*.go'  ",
		"multi\nline\tquery",
		"plain",
		"control\x02chars\x1fdropped",
	}
	for _, input := range inputs {
		once, err := ValidateInput(input)
		if err != nil {
			t.Fatalf("first pass failed for %q: %v", input, err)
		}
		twice, err := ValidateInput(once)
		if err != nil {
			t.Fatalf("second pass failed for %q: %v", once, err)
		}
		if once != twice {
			t.Fatalf("sanitization not idempotent: %q vs %q", once, twice)
		}
	}
}
