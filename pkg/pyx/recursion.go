package pyx

import (
	"regexp"
	"strings"
)

var funcDefPattern = regexp.MustCompile(`^(async\s+)?def\s+([A-Za-z_]\w*)`)

// DetectRecursion reports whether any function body in lines contains a
// call to its own enclosing function name, using indentation to track
// function scope the way a Python source file's block structure does
// (§4.9). It is a syntactic heuristic, not a call graph: it only catches
// direct self-recursion, not mutual recursion between two functions.
func DetectRecursion(lines Lines) bool {
	type scope struct {
		name   string
		indent int
	}
	var stack []scope

	for _, sl := range lines {
		text := sl.Content
		stripped := strings.TrimSpace(text)
		if stripped == "" || strings.HasPrefix(stripped, "#") {
			continue
		}
		indent := getIndentLength(text)
		for len(stack) > 0 && indent <= stack[len(stack)-1].indent {
			stack = stack[:len(stack)-1]
		}
		if m := funcDefPattern.FindStringSubmatch(stripped); m != nil {
			stack = append(stack, scope{name: m[2], indent: indent})
			continue
		}
		if len(stack) == 0 {
			continue
		}
		current := stack[len(stack)-1].name
		pattern := regexp.MustCompile(`\b` + regexp.QuoteMeta(current) + `\s*\(`)
		for _, loc := range pattern.FindAllStringIndex(text, -1) {
			if isIndexSafe(text, loc[0]) {
				return true
			}
		}
	}
	return false
}
