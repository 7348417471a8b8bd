package toon

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

type encoder struct {
	opts EncodeOptions
	w    *lineWriter
}

var headerPrefixRegex = regexp.MustCompile(`^\d+\]`)

func newEncoder(opts EncodeOptions) *encoder {
	return &encoder{
		opts: opts,
		w:    newLineWriter(opts.Indent),
	}
}

func (e *encoder) encodeValue(v any) {
	switch val := v.(type) {
	case []any:
		if len(val) == 0 {
			e.w.line(emptyListLiteral)
			return
		}
		e.encodeList(val)
	case *Map:
		if val.Len() == 0 {
			e.w.line(emptyListLiteral)
			return
		}
		e.encodeMap(val)
	default:
		e.w.line(e.scalar(v))
	}
}

func (e *encoder) scalar(v any) string {
	return encodeScalar(v, e.opts.Delimiter, e.opts.PrettyPrint)
}

func (e *encoder) encodeMap(m *Map) {
	for _, entry := range m.entries {
		key := e.encodeKey(entry.Key)

		switch {
		case isEmptyContainer(entry.Value):
			e.w.line(key + ": " + emptyListLiteral)
		case isScalar(entry.Value):
			e.w.line(key + ": " + e.scalar(entry.Value))
		default:
			e.w.line(key + ":")
			e.w.indent()
			e.encodeValue(entry.Value)
			e.w.dedent()
		}
	}
}

// encodeKey writes keys verbatim unless that would make the line ambiguous
// to the decoder.
func (e *encoder) encodeKey(key string) string {
	if keyNeedsQuoting(key, e.opts.Delimiter) {
		return quoteString(key)
	}
	return key
}

func keyNeedsQuoting(key, delimiter string) bool {
	if key == "" || key == listItemMarker || key == emptyListLiteral {
		return true
	}
	if strings.TrimSpace(key) != key || headerPrefixRegex.MatchString(key) {
		return true
	}
	if strings.Contains(key, delimiter) {
		return true
	}
	for _, c := range key {
		switch c {
		case ':', '"', '{', '}':
			return true
		}
		if unicode.IsControl(c) {
			return true
		}
	}
	return false
}

func (e *encoder) encodeList(items []any) {
	shown, hidden := e.preview(items)

	if isScalarList(items) {
		e.encodeInline(len(items), shown, hidden)
		return
	}

	if keys, ok := e.tabularKeys(items); ok {
		e.encodeTabular(len(items), keys, shown, hidden)
		return
	}

	e.encodeListForm(len(items), shown, hidden)
}

// preview applies MaxPreviewItems, returning the items to emit and how many
// were left out.
func (e *encoder) preview(items []any) ([]any, int) {
	limit := e.opts.MaxPreviewItems
	if limit <= 0 || len(items) <= limit {
		return items, 0
	}
	return items[:limit], len(items) - limit
}

func (e *encoder) moreMarker(hidden int) string {
	return quoteString(fmt.Sprintf("... %d more", hidden))
}

func (e *encoder) encodeInline(count int, items []any, hidden int) {
	var b strings.Builder
	b.WriteString(strconv.Itoa(count))
	b.WriteString("]: ")
	for i, item := range items {
		if i > 0 {
			b.WriteString(e.opts.Delimiter)
		}
		b.WriteString(e.scalar(item))
	}
	if hidden > 0 {
		b.WriteString(e.opts.Delimiter)
		b.WriteString(e.moreMarker(hidden))
	}
	e.w.line(b.String())
}

// tabularKeys returns the shared key sequence when items qualify for the
// tabular layout: enough rows, all non-empty maps with identical ordered keys,
// and only scalar cells.
func (e *encoder) tabularKeys(items []any) ([]string, bool) {
	if len(items) < e.opts.MinRowsToTabular {
		return nil, false
	}

	first, ok := items[0].(*Map)
	if !ok || first.Len() == 0 {
		return nil, false
	}
	keys := first.Keys()

	for _, item := range items {
		m, ok := item.(*Map)
		if !ok || m.Len() != len(keys) {
			return nil, false
		}
		for i, entry := range m.entries {
			if entry.Key != keys[i] || !isScalar(entry.Value) {
				return nil, false
			}
		}
	}
	return keys, true
}

func (e *encoder) encodeTabular(count int, keys []string, rows []any, hidden int) {
	var b strings.Builder
	b.WriteString(strconv.Itoa(count))
	b.WriteString("]{")
	for i, key := range keys {
		if i > 0 {
			b.WriteString(e.opts.Delimiter)
		}
		b.WriteString(e.encodeKey(key))
	}
	b.WriteString("}:")
	e.w.line(b.String())

	e.w.indent()
	for _, row := range rows {
		b.Reset()
		for i, entry := range row.(*Map).entries {
			if i > 0 {
				b.WriteString(e.opts.Delimiter)
			}
			b.WriteString(e.scalar(entry.Value))
		}
		e.w.line(b.String())
	}
	if hidden > 0 {
		e.w.line(e.moreMarker(hidden))
	}
	e.w.dedent()
}

// encodeListForm writes one block per element. Non-empty maps are introduced
// by a "-" line so that adjacent maps stay separate.
func (e *encoder) encodeListForm(count int, items []any, hidden int) {
	e.w.line(strconv.Itoa(count) + "]:")
	e.w.indent()
	for _, item := range items {
		if m, ok := item.(*Map); ok && m.Len() > 0 {
			e.w.line(listItemMarker)
			e.w.indent()
			e.encodeMap(m)
			e.w.dedent()
			continue
		}
		e.encodeValue(item)
	}
	if hidden > 0 {
		e.w.line(e.moreMarker(hidden))
	}
	e.w.dedent()
}

func isScalarList(items []any) bool {
	for _, item := range items {
		if !isScalar(item) {
			return false
		}
	}
	return true
}

func isEmptyContainer(v any) bool {
	switch val := v.(type) {
	case []any:
		return len(val) == 0
	case *Map:
		return val.Len() == 0
	}
	return false
}
