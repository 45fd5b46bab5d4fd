package pyx

import (
	"regexp"
	"strings"
)

var (
	ifPattern   = regexp.MustCompile(`^!if\s+(.+?):\s*(.*)$`)
	elifPattern = regexp.MustCompile(`^!elif\s+(.+?):\s*(.*)$`)
	elsePattern = regexp.MustCompile(`^!else:\s*(.*)$`)
)

// processConditionals walks a macro/method body resolving every
// "!if/!elif/!else" chain against bindings, recursively processing nested
// chains inside the chosen branch (§4.6). Non-conditional lines pass
// through unchanged.
//
// Evaluating a chain's guard expression first rewrites macro operators and
// substitutes bound names (which can itself fail with a MacroIndexError —
// that failure is NOT swallowed, unlike a symbolic-evaluation failure,
// which resolves to the branch simply not matching), then hands the result
// to the lenient symbolic boolean evaluator.
func processConditionals(lines Lines, bindings *bindingSet) (Lines, error) {
	var result Lines
	i := 0
	for i < len(lines) {
		sl := lines[i]
		sline := strings.TrimSpace(sl.Content)

		m := ifPattern.FindStringSubmatch(sline)
		if m == nil {
			result = append(result, sl)
			i++
			continue
		}

		chainMatched := false
		var chosen Lines

		rawExpr, inline := strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
		expr, err := evalGuardExpr(rawExpr, bindings, sl)
		if err != nil {
			return nil, err
		}
		condMet := evalSymbolicBool(expr)

		var block Lines
		if inline != "" {
			block = Lines{{Content: inline + "\n", File: sl.File, Lineno: sl.Lineno}}
			i++
		} else {
			block, i = extractBlock(lines, i+1, getIndentLength(sl.Content))
		}
		if condMet {
			chosen = block
			chainMatched = true
		}

		for i < len(lines) {
			next := lines[i]
			nextLine := strings.TrimSpace(next.Content)

			if em := elifPattern.FindStringSubmatch(nextLine); em != nil {
				rawExpr, inline := strings.TrimSpace(em[1]), strings.TrimSpace(em[2])
				expr, err := evalGuardExpr(rawExpr, bindings, next)
				if err != nil {
					return nil, err
				}
				var elifBlock Lines
				if inline != "" {
					elifBlock = Lines{{Content: inline + "\n", File: next.File, Lineno: next.Lineno}}
					i++
				} else {
					elifBlock, i = extractBlock(lines, i+1, getIndentLength(next.Content))
				}
				if !chainMatched && evalSymbolicBool(expr) {
					chosen = elifBlock
					chainMatched = true
				}
				continue
			}

			if sm := elsePattern.FindStringSubmatch(nextLine); sm != nil {
				inline := strings.TrimSpace(sm[1])
				var elseBlock Lines
				if inline != "" {
					elseBlock = Lines{{Content: inline + "\n", File: next.File, Lineno: next.Lineno}}
					i++
				} else {
					elseBlock, i = extractBlock(lines, i+1, getIndentLength(next.Content))
				}
				if !chainMatched {
					chosen = elseBlock
					chainMatched = true
				}
				break
			}

			break
		}

		nested, err := processConditionals(chosen, bindings)
		if err != nil {
			return nil, err
		}
		result = append(result, nested...)
	}
	return result, nil
}

// evalGuardExpr rewrites a conditional guard's macro operators and bound
// names before it is handed to the symbolic evaluator.
func evalGuardExpr(rawExpr string, bindings *bindingSet, sl Line) (string, error) {
	expr, err := applyMacroOps(rawExpr, bindings, sl.File, sl.Lineno)
	if err != nil {
		return "", err
	}
	return safeReplace(expr, bindings), nil
}

// extractBlock collects the contiguous run of lines more indented than
// baseIndentLen starting at startIdx (blank lines always included), the
// way a Python block body is delimited by dedent.
func extractBlock(lines Lines, startIdx, baseIndentLen int) (Lines, int) {
	var block Lines
	i := startIdx
	for i < len(lines) {
		sl := lines[i]
		if strings.TrimSpace(sl.Content) == "" {
			block = append(block, sl)
			i++
			continue
		}
		if getIndentLength(sl.Content) > baseIndentLen {
			block = append(block, sl)
			i++
		} else {
			break
		}
	}
	return block, i
}
