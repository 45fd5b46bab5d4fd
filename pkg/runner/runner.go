// Package runner executes transpiled pyx output and remaps any runtime or
// syntax error it raises back to the original source's coordinates.
//
// Go cannot embed a Python interpreter, so execution shells out to a
// "python3" found on PATH.
package runner

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/pyxlang/pyxpp/pkg/pyx"
)

// Run executes code (the assembled, exec-mode output of pyx.Assemble)
// under python3 with workDir as its working directory and on its module
// search path, streaming the program's own stdout straight through and
// printing a source-mapped traceback to errOut on failure (§4.10, §6).
func Run(code string, sourceMap *pyx.SourceMap, workDir string, stdout, errOut io.Writer) error {
	tmpDir, err := os.MkdirTemp("", "pyxpp-")
	if err != nil {
		return fmt.Errorf("runner: create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	// The file is written under pyx.GeneratedFilename's stable basename
	// (matching the original's compile(code, "generated_pyx.py", "exec")) so
	// a traceback frame naming it can be recognized as generated code and
	// remapped via sourceMap, the same way the original recognizes its own
	// synthetic filename while walking frames in-process.
	scriptPath := filepath.Join(tmpDir, pyx.GeneratedFilename)
	if err := os.WriteFile(scriptPath, []byte(code), 0o644); err != nil {
		return fmt.Errorf("runner: write temp file: %w", err)
	}

	cmd := exec.Command("python3", scriptPath)
	cmd.Dir = workDir
	cmd.Stdout = stdout
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if workDir != "" {
		cmd.Env = append(os.Environ(), "PYTHONPATH="+workDir)
	}

	runErr := cmd.Run()

	if stderr.Len() > 0 {
		mapped := MapTraceback(stderr.String(), scriptPath, sourceMap)
		fmt.Fprint(errOut, mapped)
	}

	if runErr != nil {
		if _, ok := runErr.(*exec.ExitError); ok {
			// Exit status reflects the script's own failure; the mapped
			// traceback above already reported it.
			return nil
		}
		return fmt.Errorf("runner: %w", runErr)
	}
	return nil
}

// ResolveWorkDir returns the absolute directory containing file, used so
// the executed script's relative imports resolve the way running it in
// place would (§6).
func ResolveWorkDir(file string) (string, error) {
	abs, err := filepath.Abs(file)
	if err != nil {
		return "", err
	}
	return filepath.Dir(abs), nil
}
