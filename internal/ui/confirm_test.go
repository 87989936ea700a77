package ui

import (
	"strings"
	"testing"
)

func TestPlainConfirmAnswers(t *testing.T) {
	cases := []struct {
		input      string
		defaultYes bool
		want       bool
	}{
		{"y\n", false, true},
		{"yes\n", false, true},
		{"n\n", true, false},
		{"no\n", true, false},
		{"\n", false, false},
		{"\n", true, true},
		{"Y\n", false, true},
		{"gibberish\n", true, false},
	}
	for _, tc := range cases {
		var out strings.Builder
		got, err := ConfirmWith(BackendPlain, strings.NewReader(tc.input), &out, "Proceed?", tc.defaultYes)
		if err != nil {
			t.Fatalf("ConfirmWith failed for %q: %v", tc.input, err)
		}
		if got != tc.want {
			t.Fatalf("input %q default %v: expected %v, got %v", tc.input, tc.defaultYes, tc.want, got)
		}
	}
}

func TestPlainConfirmShowsDefaultHint(t *testing.T) {
	var out strings.Builder
	if _, err := ConfirmWith(BackendPlain, strings.NewReader("\n"), &out, "Proceed?", true); err != nil {
		t.Fatalf("ConfirmWith failed: %v", err)
	}
	if !strings.Contains(out.String(), "[Y/n]") {
		t.Fatalf("expected default hint in prompt, got %q", out.String())
	}
}

func TestPlainConfirmEOFUsesDefault(t *testing.T) {
	var out strings.Builder
	got, err := ConfirmWith(BackendPlain, strings.NewReader(""), &out, "Proceed?", true)
	if err != nil {
		t.Fatalf("ConfirmWith failed on EOF: %v", err)
	}
	if !got {
		t.Fatal("expected EOF to fall back to the default answer")
	}
}

func TestBackendCandidatesAlwaysEndWithPlain(t *testing.T) {
	for _, backend := range []string{BackendAuto, BackendHuh, BackendTView, "", "bogus"} {
		candidates := backendCandidates(backend)
		if candidates[len(candidates)-1] != BackendPlain {
			t.Fatalf("backend %q: expected plain fallback last, got %v", backend, candidates)
		}
	}
}
