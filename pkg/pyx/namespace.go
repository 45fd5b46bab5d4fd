package pyx

import "strings"

// Namespaces maps a namespace name to the lines written between
// "$namespace N" and the terminating "$", plus any lines appended with
// "$name N content". Namespace contents are additive: a later declaration
// of the same name extends rather than replaces the earlier one.
type Namespaces map[string]Lines

// ExtractNamespaces strips $namespace/$name blocks out of src and returns
// (a) the remaining main-stream lines in original order and (b) the
// populated namespace map. A single forward pass with a current-namespace
// cursor and a line buffer, matching the original's extract_namespaces.
func ExtractNamespaces(src Lines) (Lines, Namespaces) {
	namespaces := make(Namespaces)
	var main Lines
	var currentNS string
	inNS := false
	var buf Lines

	for _, sl := range src {
		trimmed := strings.TrimSpace(sl.Content)

		// A new "$namespace" before the previous one's terminating "$" drops
		// its buffer silently — there is no flush here, matching the
		// original's unconditional "current_ns = ...; buffer = []".
		if strings.HasPrefix(trimmed, "$namespace") {
			fields := strings.Fields(trimmed)
			name := "unknown"
			if len(fields) > 1 {
				name = fields[1]
			}
			currentNS = name
			inNS = true
			buf = nil
			continue
		}

		if trimmed == "$" {
			if inNS {
				namespaces[currentNS] = append(namespaces[currentNS], buf...)
				currentNS = ""
				inNS = false
				buf = nil
			}
			continue
		}

		if strings.HasPrefix(trimmed, "$name") {
			fields := splitFields(trimmed, 2)
			if len(fields) >= 3 {
				nsName := strings.TrimSpace(fields[1])
				content := strings.TrimSpace(fields[2])
				namespaces[nsName] = append(namespaces[nsName], Line{
					Content: content + "\n",
					File:    sl.File,
					Lineno:  sl.Lineno,
				})
			}
			continue
		}

		if inNS {
			buf = append(buf, sl)
		} else {
			main = append(main, sl)
		}
	}
	// A file ending while still inside an unterminated namespace block drops
	// that trailing buffer too — there is no implicit close at EOF.

	return main, namespaces
}
