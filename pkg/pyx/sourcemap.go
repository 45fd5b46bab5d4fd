package pyx

// SourceMap associates each emitted (generated) line index — 0-based,
// counting from the very first line of the assembled output — with the
// source Line it was produced from. Only transpiled body lines are mapped;
// header/original-source wrapper lines emitted around them have no entry.
// Grounded on the dense generated-line→origin mapping exec mode builds to
// remap runtime/syntax errors back to user-visible coordinates (§4.10),
// narrowed from the character-span Mapping shape to whole-line granularity
// since pyx never needs sub-line column fidelity.
type SourceMap struct {
	lines map[int]Line
}

// NewSourceMap creates an empty source map.
func NewSourceMap() *SourceMap {
	return &SourceMap{lines: make(map[int]Line)}
}

// Set records that generated line index emitLine originated from src.
func (m *SourceMap) Set(emitLine int, src Line) {
	m.lines[emitLine] = src
}

// Lookup returns the origin Line for a 0-based generated line index, and
// whether one was recorded.
func (m *SourceMap) Lookup(emitLine int) (Line, bool) {
	src, ok := m.lines[emitLine]
	return src, ok
}
