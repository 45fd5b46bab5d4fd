package pyx

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestExpandFilesWarnsOnMissingTarget(t *testing.T) {
	dir := t.TempDir()
	main := writeTempPyx(t, dir, "main.pyx", "$expand missing.pyx\na = 1\n")

	var warnings []string
	lines, err := ExpandFilesTopLevel(main, func(msg string) {
		warnings = append(warnings, msg)
	})
	if err != nil {
		t.Fatalf("ExpandFilesTopLevel error: %v", err)
	}
	if got := contentOf(lines); got != "a = 1\n" {
		t.Errorf("got %q, want %q (the missing $expand is a no-op)", got, "a = 1\n")
	}
	if len(warnings) != 1 {
		t.Fatalf("warnings = %v, want exactly one", warnings)
	}
	wantSubstr := "file not found"
	if !strings.Contains(warnings[0], wantSubstr) {
		t.Errorf("warning = %q, want it to mention %q", warnings[0], wantSubstr)
	}
}

func TestExpandFilesNilWarnIsSilent(t *testing.T) {
	dir := t.TempDir()
	main := writeTempPyx(t, dir, "main.pyx", "$expand missing.pyx\na = 1\n")

	lines, err := ExpandFilesTopLevel(main, nil)
	if err != nil {
		t.Fatalf("ExpandFilesTopLevel error: %v", err)
	}
	if got := contentOf(lines); got != "a = 1\n" {
		t.Errorf("got %q, want %q", got, "a = 1\n")
	}
}

func TestExpandFilesTopLevelMissingMainFile(t *testing.T) {
	_, err := ExpandFilesTopLevel(filepath.Join(t.TempDir(), "nope.pyx"), nil)
	if err == nil {
		t.Fatal("expected an error for a missing top-level file")
	}
}
