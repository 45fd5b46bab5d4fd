package runner

import (
	"bytes"
	"os/exec"
	"strings"
	"testing"

	"github.com/pyxlang/pyxpp/pkg/pyx"
)

func requirePython3(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("python3"); err != nil {
		t.Skip("python3 not available on PATH")
	}
}

func TestRunPrintsStdout(t *testing.T) {
	requirePython3(t)

	workDir := t.TempDir()
	sm := pyx.NewSourceMap()
	sm.Set(0, pyx.Line{Content: "print('hi')\n", File: "main.pyx", Lineno: 1})

	var stdout, stderr bytes.Buffer
	err := Run("print('hi')\n", sm, workDir, &stdout, &stderr)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if strings.TrimSpace(stdout.String()) != "hi" {
		t.Errorf("stdout = %q, want %q", stdout.String(), "hi")
	}
	if stderr.Len() != 0 {
		t.Errorf("stderr = %q, want empty", stderr.String())
	}
}

func TestRunRemapsRuntimeError(t *testing.T) {
	requirePython3(t)

	workDir := t.TempDir()
	sm := pyx.NewSourceMap()
	sm.Set(0, pyx.Line{Content: "1 / 0\n", File: "original.pyx", Lineno: 42})

	var stdout, stderr bytes.Buffer
	err := Run("1 / 0\n", sm, workDir, &stdout, &stderr)
	if err != nil {
		t.Fatalf("Run should report the script's own failure via stderr, not as a Go error: %v", err)
	}
	if !strings.Contains(stderr.String(), "original.pyx") {
		t.Errorf("stderr = %q, want it to reference the remapped original file", stderr.String())
	}
	if !strings.Contains(stderr.String(), "line 42") {
		t.Errorf("stderr = %q, want it to reference the remapped line number", stderr.String())
	}
}

func TestRunRemapsUsingGeneratedFilenameBasename(t *testing.T) {
	requirePython3(t)

	workDir := t.TempDir()
	sm := pyx.NewSourceMap()
	sm.Set(0, pyx.Line{Content: "1 / 0\n", File: "original.pyx", Lineno: 1})

	var stdout, stderr bytes.Buffer
	if err := Run("1 / 0\n", sm, workDir, &stdout, &stderr); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if strings.Contains(stderr.String(), pyx.GeneratedFilename) {
		t.Errorf("stderr = %q, the generated-file frame should have been remapped away, not left showing %q", stderr.String(), pyx.GeneratedFilename)
	}
}

func TestResolveWorkDir(t *testing.T) {
	workDir, err := ResolveWorkDir("sub/dir/main.pyx")
	if err != nil {
		t.Fatalf("ResolveWorkDir error: %v", err)
	}
	if !strings.HasSuffix(workDir, "sub/dir") {
		t.Errorf("ResolveWorkDir = %q, want it to end in sub/dir", workDir)
	}
}
