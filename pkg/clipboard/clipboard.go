// Package clipboard copies generated pyx output to the system clipboard,
// branching on whether the process is running under WSL the same way the
// original shells out to clip.exe there instead of using a native clipboard
// API (§4.10, §6).
package clipboard

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/atotto/clipboard"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// Copy places text on the system clipboard. Under WSL it shells out to
// clip.exe with the text encoded as cp932 (Shift-JIS), the encoding
// Windows' clipboard expects for non-ASCII Japanese text; unencodable runes
// are dropped rather than failing the whole copy. Everywhere else it uses
// the native clipboard.
func Copy(text string) error {
	if isWSL() {
		return copyWSL(text)
	}
	return clipboard.WriteAll(text)
}

func isWSL() bool {
	if runtime.GOOS != "linux" {
		return false
	}
	data, err := os.ReadFile("/proc/sys/kernel/osrelease")
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(string(data)), "microsoft")
}

func copyWSL(text string) error {
	encoded, _, err := transform.String(japanese.ShiftJIS.NewEncoder(), text)
	if err != nil {
		encoded = dropUnencodable(text)
	}

	cmd := exec.Command("clip.exe")
	cmd.Stdin = bytes.NewReader([]byte(encoded))
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("clipboard: clip.exe: %w", err)
	}
	return nil
}

// dropUnencodable re-encodes text to cp932 one rune at a time, silently
// skipping any rune the encoder rejects — mirroring Python's
// "encode('cp932', errors='ignore')".
func dropUnencodable(text string) string {
	var b strings.Builder
	enc := japanese.ShiftJIS.NewEncoder()
	for _, r := range text {
		if out, _, err := transform.String(enc, string(r)); err == nil {
			b.WriteString(out)
		}
	}
	return b.String()
}
