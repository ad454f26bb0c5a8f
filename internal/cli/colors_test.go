package cli

import (
	"strings"
	"testing"
)

func TestColorizeDisabled(t *testing.T) {
	orig := ColorsEnabled
	defer func() { ColorsEnabled = orig }()

	ColorsEnabled = false
	if got := Warning("careful"); got != "careful" {
		t.Errorf("Warning = %q, want plain text", got)
	}
	if got := Bold("loud"); got != "loud" {
		t.Errorf("Bold = %q, want plain text", got)
	}
}

func TestColorizeEnabled(t *testing.T) {
	orig := ColorsEnabled
	defer func() { ColorsEnabled = orig }()

	ColorsEnabled = true
	got := Error("boom")
	if !strings.HasPrefix(got, "\033[31m") || !strings.HasSuffix(got, "\033[0m") {
		t.Errorf("Error = %q, want red wrapping", got)
	}
	if !strings.Contains(got, "boom") {
		t.Errorf("Error = %q, should contain the text", got)
	}
}

func TestDisableColors(t *testing.T) {
	orig := ColorsEnabled
	defer func() { ColorsEnabled = orig }()

	ColorsEnabled = true
	DisableColors()
	if ColorsEnabled {
		t.Error("DisableColors should clear the flag")
	}
}
