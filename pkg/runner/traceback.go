package runner

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pyxlang/pyxpp/pkg/pyx"
)

// frameLinePattern matches a traceback frame header line:
//
//	  File "<path>", line <N>[, in <func>]
var frameLinePattern = regexp.MustCompile(`^(\s*)File "([^"]+)", line (\d+)(?:, in (.+))?$`)

// MapTraceback rewrites a python3 traceback (as printed on stderr) so that
// every frame referring to generatedFile is replaced with the original
// source coordinates and line text recorded in sourceMap, matching the
// original's in-process frame-by-frame remap (§4.10). Frames belonging to
// other files (the python3 interpreter itself, imported modules) pass
// through unchanged.
//
// Printing the traceback requires reading it back out of the subprocess's
// stderr instead of walking live frame objects, since execution happens
// out-of-process rather than via an embedded interpreter — text-based
// remapping is the adaptation that forces.
func MapTraceback(raw, generatedFile string, sourceMap *pyx.SourceMap) string {
	lines := strings.Split(raw, "\n")
	var out []string
	skipNext := false

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if skipNext {
			skipNext = false
			continue
		}

		m := frameLinePattern.FindStringSubmatch(line)
		if m == nil {
			out = append(out, line)
			continue
		}

		indent, file, lineStr, funcName := m[1], m[2], m[3], m[4]
		if file != generatedFile {
			out = append(out, line)
			continue
		}

		lineno, err := strconv.Atoi(lineStr)
		if err != nil {
			out = append(out, line)
			continue
		}

		src, ok := sourceMap.Lookup(lineno - 1)
		if !ok {
			out = append(out, fmt.Sprintf(`%sFile "Generated Code", line %d`, indent, lineno))
			continue
		}

		if funcName != "" {
			out = append(out, fmt.Sprintf(`%sFile "%s", line %d, in %s`, indent, src.File, src.Lineno, funcName))
		} else {
			out = append(out, fmt.Sprintf(`%sFile "%s", line %d`, indent, src.File, src.Lineno))
		}
		out = append(out, indent+"    "+strings.TrimSpace(src.Content))

		// The next raw line is the interpreter's own echo of the generated
		// line's source text; our remapped line above already replaces it.
		if i+1 < len(lines) && strings.TrimSpace(lines[i+1]) != "" && !frameLinePattern.MatchString(lines[i+1]) {
			skipNext = true
		}
	}

	return strings.Join(out, "\n")
}
