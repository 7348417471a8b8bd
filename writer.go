package toon

import "strings"

// lineWriter accumulates indented output lines.
type lineWriter struct {
	indentSize  int
	level       int
	lines       []string
	indentCache []string
}

func newLineWriter(indentSize int) *lineWriter {
	return &lineWriter{indentSize: indentSize}
}

func (w *lineWriter) getIndent() string {
	for len(w.indentCache) <= w.level {
		w.indentCache = append(w.indentCache, strings.Repeat(" ", len(w.indentCache)*w.indentSize))
	}
	return w.indentCache[w.level]
}

func (w *lineWriter) line(content string) {
	w.lines = append(w.lines, w.getIndent()+content)
}

func (w *lineWriter) indent() {
	w.level++
}

func (w *lineWriter) dedent() {
	if w.level > 0 {
		w.level--
	}
}

func (w *lineWriter) String() string {
	return strings.Join(w.lines, "\n")
}
