package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestVersionCommand(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"version"})

	if err := root.Execute(); err != nil {
		t.Fatalf("version command failed: %v", err)
	}
	if !strings.Contains(out.String(), "inkpress dev") {
		t.Errorf("version output = %q", out.String())
	}
}

func TestToTitle(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"my-blog", "My Blog"},
		{"myblog", "Myblog"},
		{"a-b-c", "A B C"},
	}
	for _, tt := range tests {
		if got := toTitle(tt.input); got != tt.expected {
			t.Errorf("toTitle(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
