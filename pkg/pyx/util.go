package pyx

import "strings"

// splitFields splits s on runs of whitespace like Python's str.split(None, n):
// at most n+1 fields, with the final field retaining any internal whitespace
// and surrounding content verbatim.
func splitFields(s string, n int) []string {
	var fields []string
	rest := s
	for len(fields) < n {
		rest = strings.TrimLeft(rest, " \t\r\n\f\v")
		if rest == "" {
			return fields
		}
		idx := strings.IndexAny(rest, " \t\r\n\f\v")
		if idx < 0 {
			fields = append(fields, rest)
			return fields
		}
		fields = append(fields, rest[:idx])
		rest = rest[idx:]
	}
	rest = strings.TrimLeft(rest, " \t\r\n\f\v")
	if rest != "" {
		fields = append(fields, rest)
	}
	return fields
}
