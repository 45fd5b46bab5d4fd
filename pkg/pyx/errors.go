package pyx

import "fmt"

// MaxExpansionDepth bounds the fixed-point macro/method expansion loop
// (§4.4): a single line whose expansion does not settle within this many
// consecutive passes is treated as infinitely recursive rather than hung
// forever. The pass counter restarts whenever a line is emitted or consumed
// without expanding.
const MaxExpansionDepth = 2000

// FileMissingError reports a "$expand path" whose target could not be
// opened for reading (§7: warn, then continue with that expand directive
// left as a no-op).
type FileMissingError struct {
	Path string
	Err  error
}

func (e *FileMissingError) Error() string {
	return fmt.Sprintf("pyx: file not found: %s: %v", e.Path, e.Err)
}

func (e *FileMissingError) Unwrap() error { return e.Err }

// MacroIndexError reports an out-of-range or unevaluable "x![i]" macro
// operator use, or indexing a scalar (non-variadic) binding at anything but
// 0 (§4.5, §7). It is a transpile-time failure, not a warning.
type MacroIndexError struct {
	Name string
	Spec string
	File string
	Line int
}

func (e *MacroIndexError) Error() string {
	return fmt.Sprintf("%s:%d: macro index error: %s![%s] is out of range", e.File, e.Line, e.Name, e.Spec)
}

// InfiniteMacroExpansionError reports that the expansion loop exceeded
// MaxExpansionDepth passes without reaching a fixed point — almost always a
// macro or method whose body re-invokes itself (§4.4, §7).
type InfiniteMacroExpansionError struct {
	File string
	Line int
}

func (e *InfiniteMacroExpansionError) Error() string {
	return fmt.Sprintf("%s:%d: infinite macro expansion detected (exceeded %d passes)", e.File, e.Line, MaxExpansionDepth)
}

// TranspileError wraps a generic failure encountered while transpiling a
// source line, carrying the origin coordinates for diagnostics (§7).
type TranspileError struct {
	File string
	Line int
	Err  error
}

func (e *TranspileError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.File, e.Line, e.Err)
}

func (e *TranspileError) Unwrap() error { return e.Err }
