package toon

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var headerRegex = regexp.MustCompile(`^(\d+)\](.*)$`)

type line struct {
	num   int // 1-based line number in the input
	depth int
	text  string // trimmed content
}

type decoder struct {
	lines      []line
	pos        int
	indentSize int
	flatMode   bool
	delimiter  string
	strict     bool
	err        *ParseError
}

func newDecoder(data string, opts DecodeOptions) *decoder {
	d := &decoder{
		indentSize: opts.Indent,
		flatMode:   opts.Flat,
		delimiter:  opts.Delimiter,
		strict:     opts.Strict,
	}
	for i, raw := range strings.Split(data, "\n") {
		text := strings.TrimSpace(raw)
		if text == "" {
			continue
		}
		d.lines = append(d.lines, line{num: i + 1, depth: d.getIndentDepth(raw), text: text})
	}
	return d
}

func (d *decoder) getIndentDepth(raw string) int {
	if d.flatMode {
		return 0
	}
	count := 0
	for _, c := range raw {
		if c != ' ' {
			break
		}
		count++
	}
	return count / d.indentSize
}

// flat reports whether indentation carries no nesting information. Array
// blocks are then bounded by their header count instead.
func (d *decoder) flat() bool {
	return d.flatMode
}

func (d *decoder) peek() *line {
	if d.pos >= len(d.lines) {
		return nil
	}
	return &d.lines[d.pos]
}

// fail records the first structural problem. Decoding carries on leniently
// so that the scan stays single-pass; the error is reported at the end.
func (d *decoder) fail(ln *line, kind error, format string, args ...any) {
	if !d.strict || d.err != nil {
		return
	}
	num := 0
	if ln != nil {
		num = ln.num
	}
	d.err = &ParseError{Line: num, Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func (d *decoder) decode() any {
	if len(d.lines) == 0 {
		return nil
	}

	root := d.lines[0].depth
	for _, ln := range d.lines {
		root = min(root, ln.depth)
	}

	var values []any
	for ln := d.peek(); ln != nil; ln = d.peek() {
		if ln.depth > root {
			d.fail(ln, ErrUnexpectedIndent, "expected depth %d, got %d", root, ln.depth)
			d.pos++
			continue
		}
		values = append(values, d.decodeValue(root))
	}

	if len(values) == 1 {
		return values[0]
	}
	if _, ok := values[0].(*Map); ok {
		d.fail(nil, ErrMixedBlock, "document has %d top-level values", len(values))
	}
	return values
}

// decodeValue decodes the value whose first line is the current line, at
// the given depth.
func (d *decoder) decodeValue(depth int) any {
	ln := d.peek()
	switch {
	case ln.text == emptyListLiteral:
		d.pos++
		return []any{}
	case ln.text == listItemMarker:
		return d.decodeListItem(depth)
	case headerRegex.MatchString(ln.text):
		return d.decodeArray(depth)
	case d.isEntry(ln.text):
		return d.decodeMap(depth)
	default:
		d.pos++
		return DecodeScalar(ln.text)
	}
}

func (d *decoder) decodeMap(depth int) *Map {
	m := NewMap()

	for ln := d.peek(); ln != nil; ln = d.peek() {
		if ln.depth < depth {
			break
		}
		if ln.depth > depth {
			d.fail(ln, ErrUnexpectedIndent, "expected depth %d, got %d", depth, ln.depth)
			d.pos++
			continue
		}
		key, inline, ok := d.splitEntry(ln.text)
		if !ok || headerRegex.MatchString(ln.text) {
			// An element at map depth ends the map; the enclosing list
			// block, if any, picks it up.
			break
		}
		d.pos++

		next := d.peek()
		switch {
		case next != nil && next.depth > depth:
			if inline != "" {
				d.fail(next, ErrUnexpectedIndent, "key %q has both an inline value and a nested block", key)
			}
			m.Set(key, d.decodeValue(next.depth))
		case inline == "" && next != nil && d.flat():
			m.Set(key, d.decodeValue(next.depth))
		default:
			m.Set(key, inlineValue(inline))
		}
	}

	return m
}

// decodeListItem decodes a "-" marker and the map block below it.
func (d *decoder) decodeListItem(depth int) *Map {
	d.pos++
	next := d.peek()
	if next == nil || !d.isEntry(next.text) {
		return NewMap()
	}
	if next.depth > depth || (d.flat() && next.depth == depth) {
		return d.decodeMap(next.depth)
	}
	return NewMap()
}

func (d *decoder) decodeArray(depth int) []any {
	ln := d.peek()
	d.pos++

	m := headerRegex.FindStringSubmatch(ln.text)
	count, err := strconv.Atoi(m[1])
	if err != nil {
		d.fail(ln, ErrUnterminatedHeader, "invalid length %q", m[1])
	}
	rest := m[2]

	switch {
	case strings.HasPrefix(rest, "{"):
		fields, ok := d.parseFields(rest)
		if !ok {
			d.fail(ln, ErrUnterminatedHeader, "%q", ln.text)
		}
		return d.decodeTabular(ln, depth, count, fields)
	case rest == ":":
		return d.decodeElements(ln, depth, count)
	case strings.HasPrefix(rest, ":"):
		items := d.splitDelimited(rest[1:])
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = DecodeScalar(item)
		}
		if len(out) != count {
			d.fail(ln, ErrCountMismatch, "expected %d, got %d", count, len(out))
		}
		return out
	default:
		d.fail(ln, ErrUnterminatedHeader, "%q", ln.text)
		return d.decodeElements(ln, depth, count)
	}
}

// parseFields extracts the column names of a tabular header "{a,b}:".
func (d *decoder) parseFields(rest string) ([]string, bool) {
	end := indexUnquoted(rest, "}")
	ok := end >= 0 && rest[end+1:] == ":"
	var inner string
	if end >= 0 {
		inner = rest[1:end]
	} else {
		inner = strings.TrimSuffix(rest[1:], ":")
	}

	var fields []string
	for _, f := range d.splitDelimited(inner) {
		fields = append(fields, parseKey(f))
	}
	return fields, ok && len(fields) > 0
}

func (d *decoder) decodeTabular(header *line, depth, count int, fields []string) []any {
	rows := []any{}
	rowDepth := d.childDepth(depth)

	for ln := d.peek(); ln != nil; ln = d.peek() {
		if d.flat() && len(rows) == count {
			break
		}
		if ln.depth < rowDepth {
			break
		}
		if ln.depth > rowDepth {
			d.fail(ln, ErrUnexpectedIndent, "expected row at depth %d", rowDepth)
			d.pos++
			continue
		}
		d.pos++

		values := d.splitDelimited(ln.text)
		if len(values) != len(fields) {
			d.fail(ln, ErrRowWidth, "expected %d, got %d", len(fields), len(values))
		}
		row := NewMap()
		for i, field := range fields {
			if i < len(values) {
				row.Set(field, DecodeScalar(values[i]))
			}
		}
		rows = append(rows, row)
	}

	if len(rows) != count {
		d.fail(header, ErrCountMismatch, "expected %d rows, got %d", count, len(rows))
	}
	return rows
}

func (d *decoder) decodeElements(header *line, depth, count int) []any {
	items := []any{}
	itemDepth := d.childDepth(depth)

	for ln := d.peek(); ln != nil; ln = d.peek() {
		if d.flat() && len(items) == count {
			break
		}
		if ln.depth < itemDepth {
			break
		}
		if ln.depth > itemDepth {
			d.fail(ln, ErrUnexpectedIndent, "expected element at depth %d", itemDepth)
			d.pos++
			continue
		}
		if d.isEntry(ln.text) {
			d.fail(ln, ErrMixedBlock, "map entry %q inside list", ln.text)
		}
		items = append(items, d.decodeValue(itemDepth))
	}

	if len(items) != count {
		d.fail(header, ErrCountMismatch, "expected %d items, got %d", count, len(items))
	}
	return items
}

func (d *decoder) childDepth(depth int) int {
	if d.flat() {
		return depth
	}
	return depth + 1
}

// isEntry reports whether text is a "key: value" line rather than an element.
func (d *decoder) isEntry(text string) bool {
	if text == listItemMarker || headerRegex.MatchString(text) {
		return false
	}
	return indexUnquoted(text, ":") >= 0
}

// splitEntry splits a map entry once on the first unquoted separator.
func (d *decoder) splitEntry(text string) (key, inline string, ok bool) {
	i := indexUnquoted(text, ":")
	if i < 0 {
		return "", "", false
	}
	return parseKey(text[:i]), strings.TrimSpace(text[i+1:]), true
}

// splitDelimited splits s on the delimiter, ignoring delimiters inside
// quoted strings. Each part is trimmed.
func (d *decoder) splitDelimited(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	var parts []string
	for {
		i := indexUnquoted(s, d.delimiter)
		if i < 0 {
			parts = append(parts, strings.TrimSpace(s))
			return parts
		}
		parts = append(parts, strings.TrimSpace(s[:i]))
		s = s[i+len(d.delimiter):]
	}
}

func parseKey(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, `"`) {
		return unquoteString(s)
	}
	return s
}

func inlineValue(s string) any {
	switch s {
	case "":
		return nil
	case emptyListLiteral:
		return []any{}
	}
	return DecodeScalar(s)
}

// indexUnquoted returns the index of the first sep in s that is not inside a
// double-quoted string, or -1.
func indexUnquoted(s, sep string) int {
	inQuote := false
	for i := 0; i < len(s); i++ {
		switch {
		case inQuote && s[i] == '\\':
			i++
		case s[i] == '"':
			inQuote = !inQuote
		case !inQuote && strings.HasPrefix(s[i:], sep):
			return i
		}
	}
	return -1
}
