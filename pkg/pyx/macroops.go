package pyx

import (
	"regexp"
	"strconv"
	"strings"
)

// Macro operators (§4.5) let a macro body reach into a bound parameter:
// "!len(xs)" for its element count, "xs![i]" for a single element, and
// "xs![a:b:c]" for a Python-style slice, spliced back in as a comma-joined
// run of raw argument text. "!len" on a scalar binding is always 1; "x![i]"
// on a scalar binding accepts only i == 0 (no negative-index wraparound,
// unlike a list binding) and raises MacroIndexError otherwise.

var (
	lenOpPattern   = regexp.MustCompile(`!len\(\s*([A-Za-z_]\w*)\s*\)`)
	indexOpPattern = regexp.MustCompile(`([A-Za-z_]\w*)!\[\s*([^\]]*)\s*\]`)
)

// applyMacroOps rewrites every macro operator in text that refers to one of
// bindings. Operators referring to an unbound name are left untouched (they
// are presumably plain indexing expressions in the host language, not macro
// operators). file/line identify text's origin for MacroIndexError.
func applyMacroOps(text string, bindings *bindingSet, file string, line int) (string, error) {
	var firstErr error

	text = lenOpPattern.ReplaceAllStringFunc(text, func(m string) string {
		sub := lenOpPattern.FindStringSubmatch(m)
		b, ok := bindings.values[sub[1]]
		if !ok {
			return m
		}
		if b.kind == bindingList {
			return strconv.Itoa(len(b.vals))
		}
		return "1"
	})

	text = indexOpPattern.ReplaceAllStringFunc(text, func(m string) string {
		sub := indexOpPattern.FindStringSubmatch(m)
		name, spec := sub[1], sub[2]
		b, ok := bindings.values[name]
		if !ok {
			return m
		}
		var out string
		var err error
		if strings.Contains(spec, ":") {
			out, err = sliceOp(b, spec)
		} else {
			out, err = indexOp(b, spec)
		}
		if err != nil {
			if firstErr == nil {
				firstErr = &MacroIndexError{Name: name, Spec: spec, File: file, Line: line}
			}
			return m
		}
		return out
	})

	if firstErr != nil {
		return text, firstErr
	}
	return text, nil
}

func indexOp(b binding, spec string) (string, error) {
	n, ok := evalIndexExpr(spec)
	if !ok {
		return "", errIndex
	}
	if b.kind == bindingScalar {
		if n == 0 {
			return b.vals[0], nil
		}
		return "", errIndex
	}
	if n < 0 {
		n += len(b.vals)
	}
	if n < 0 || n >= len(b.vals) {
		return "", errIndex
	}
	return b.vals[n], nil
}

var errIndex = &indexRangeError{}

type indexRangeError struct{}

func (*indexRangeError) Error() string { return "index out of range" }

// sliceOp treats a scalar binding as a one-element list, matching the
// original coercing a non-list value to [val] before slicing.
func sliceOp(b binding, spec string) (string, error) {
	vals := b.vals
	parts := strings.SplitN(spec, ":", 3)
	for len(parts) < 3 {
		parts = append(parts, "")
	}
	startVal, startOK := sliceBound(parts[0])
	stopVal, stopOK := sliceBound(parts[1])
	stepVal, stepOK := sliceBound(parts[2])
	lo, hi, st := pySliceIndices(len(vals), startVal, startOK, stopVal, stopOK, stepVal, stepOK)
	var out []string
	if st > 0 {
		for i := lo; i < hi; i += st {
			out = append(out, vals[i])
		}
	} else if st < 0 {
		for i := lo; i > hi; i += st {
			out = append(out, vals[i])
		}
	}
	return strings.Join(out, ", "), nil
}

// sliceBound evaluates a (possibly empty) slice-bound expression; an empty
// expression reports "not present" via the bool.
func sliceBound(text string) (int, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, false
	}
	n, ok := evalIndexExpr(text)
	return n, ok
}

func evalIndexExpr(text string) (int, bool) {
	v, ok := evalArith(strings.TrimSpace(text))
	if !ok {
		return 0, false
	}
	if v.isFloat {
		return int(v.f), true
	}
	return int(v.i), true
}

// pySliceIndices reproduces Python's slice.indices(n) for a slice whose
// start/stop/step components may be absent, returning (start, stop, step)
// clamped and defaulted the way Python does.
func pySliceIndices(n int, start int, startOK bool, stop int, stopOK bool, step int, stepOK bool) (int, int, int) {
	st := 1
	if stepOK {
		st = step
	}
	if st == 0 {
		st = 1
	}

	var lo, hi int
	if st > 0 {
		lo, hi = 0, n
	} else {
		lo, hi = n-1, -1
	}

	if startOK {
		lo = clampIndex(start, n, st > 0)
	}
	if stopOK {
		hi = clampIndex(stop, n, st > 0)
	}
	return lo, hi, st
}

func clampIndex(i, n int, forward bool) int {
	if i < 0 {
		i += n
	}
	if forward {
		if i < 0 {
			return 0
		}
		if i > n {
			return n
		}
		return i
	}
	if i < -1 {
		return -1
	}
	if i >= n {
		return n - 1
	}
	return i
}
