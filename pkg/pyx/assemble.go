package pyx

import (
	"encoding/base64"
	"os"
	"strings"
)

// AssembleOptions controls how Assemble wraps a transpiled line stream into
// final output text (§4.10, §6).
type AssembleOptions struct {
	Exec         bool
	NoHeader     bool
	NoOriginal   bool
	CommentStyle string // e.g. "'''"; wraps the header/original-source blocks
	HeaderB64    string // base64-encoded header override; "" uses DefaultHeader
	SourceFile   string // path to the original source, read verbatim when !NoOriginal
	Warn         func(string) // receives a message for every missing $expand target (§7)
}

// Assemble runs the full pipeline (expand/namespace/definitions/expansion)
// over mainFile and wraps the result with the header and original-source
// blocks requested by opts, returning the final text together with a
// SourceMap keyed by 0-based line index into that text (§4.10).
func Assemble(mainFile string, opts AssembleOptions) (string, *SourceMap, error) {
	pp := NewPreprocessor(Options{Exec: opts.Exec, Warn: opts.Warn})
	finalLines, err := pp.Transpile(mainFile)
	if err != nil {
		return "", nil, err
	}

	hasRecursion := DetectRecursion(finalLines)

	var b strings.Builder

	if !opts.NoHeader {
		header := DefaultHeader
		if opts.HeaderB64 != "" {
			if decoded, err := base64.StdEncoding.DecodeString(opts.HeaderB64); err == nil {
				header = string(decoded)
			}
		}
		writeCommentBlock(&b, opts.CommentStyle, header)
	}

	if !opts.NoOriginal {
		original := ""
		if data, err := os.ReadFile(opts.SourceFile); err == nil {
			original = string(data)
		}
		writeCommentBlock(&b, opts.CommentStyle, "[Original Code]\n"+original)
	}

	if hasRecursion {
		b.WriteString("import sys\n")
		b.WriteString("sys.setrecursionlimit(10 ** 6)\n")
	}

	sourceMap := NewSourceMap()
	lineIdx := strings.Count(b.String(), "\n")
	for _, sl := range finalLines {
		b.WriteString(sl.Content)
		sourceMap.Set(lineIdx, sl)
		lineIdx++
	}

	return b.String(), sourceMap, nil
}

// writeCommentBlock appends "<style>\n<content>\n<style>\n" the way the
// header and original-source wrapper blocks are delimited (§4.10).
func writeCommentBlock(b *strings.Builder, style, content string) {
	b.WriteString(style)
	b.WriteString("\n")
	b.WriteString(content)
	b.WriteString("\n")
	b.WriteString(style)
	b.WriteString("\n")
}
