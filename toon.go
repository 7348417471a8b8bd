// Package toon implements TOON (Token-Oriented Object Notation), a
// line-oriented, indentation-based text format that carries the JSON data
// model in fewer language-model tokens than JSON.
//
// Lists of scalars are written inline, lists of identically shaped records
// are written as a table with one shared header, and everything else nests by
// indentation:
//
//	name: Ann
//	tags:
//	  2]: admin,ops
//	users:
//	  2]{id,name}:
//	    1,Ann
//	    2,Bob
//
// Encode and Decode are pure functions over a canonical value tree (see
// KindOf). They hold no shared state and may be called concurrently.
package toon

import (
	"fmt"
	"strings"
)

const (
	defaultIndent    = 2
	defaultDelimiter = ","
	defaultMinRows   = 2
)

// EncodeOptions configures TOON encoding.
type EncodeOptions struct {
	Indent           int    // Spaces per nesting level (default: 2, 0 writes everything flush left)
	Delimiter        string // Separator for inline lists and tabular columns (default: ",")
	MinRowsToTabular int    // Minimum uniform record count for tabular layout (default: 2, below 1 uses the default)
	MaxPreviewItems  int    // Truncate lists longer than this, 0 for no limit
	PrettyPrint      bool   // Render floats in their shortest exact form

	// Normalizers are consulted, in order, before the built-in host value
	// rules. See NormalizeFunc.
	Normalizers []NormalizeFunc
}

// DecodeOptions configures TOON decoding.
type DecodeOptions struct {
	Indent    int    // Spaces per nesting level (default: 2, zero or less uses the default)
	Delimiter string // Separator for inline lists and tabular rows (default: ",")
	Strict    bool   // Report structural problems as *ParseError (default: false)

	// Flat reads text written with an encode indent of 0. Indentation is
	// ignored and array blocks are bounded by their header count.
	Flat bool
}

// DefaultEncodeOptions returns indent 2, "," delimiter and a tabular
// threshold of 2.
func DefaultEncodeOptions() *EncodeOptions {
	return &EncodeOptions{
		Indent:           defaultIndent,
		Delimiter:        defaultDelimiter,
		MinRowsToTabular: defaultMinRows,
	}
}

// Compact writes every line flush left.
func Compact() *EncodeOptions {
	return &EncodeOptions{Indent: 0, Delimiter: ",", MinRowsToTabular: 2}
}

// Readable indents two spaces per level and prints short floats.
func Readable() *EncodeOptions {
	return &EncodeOptions{Indent: 2, Delimiter: ",", MinRowsToTabular: 2, PrettyPrint: true}
}

// Tabular uses tab separated columns and tabulates even a single record.
func Tabular() *EncodeOptions {
	return &EncodeOptions{Indent: 0, Delimiter: "\t", MinRowsToTabular: 1}
}

// PresetByName resolves "default", "compact", "readable" or "tabular".
func PresetByName(name string) (*EncodeOptions, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "default":
		return DefaultEncodeOptions(), nil
	case "compact":
		return Compact(), nil
	case "readable":
		return Readable(), nil
	case "tabular":
		return Tabular(), nil
	default:
		return nil, fmt.Errorf("unknown preset %q", name)
	}
}

// DecodeOptions returns decode options matching the layout these options
// produce.
func (o *EncodeOptions) DecodeOptions() *DecodeOptions {
	n := o.normalized()
	if n.Indent == 0 {
		return &DecodeOptions{Indent: defaultIndent, Delimiter: n.Delimiter, Flat: true}
	}
	return &DecodeOptions{Indent: n.Indent, Delimiter: n.Delimiter}
}

// normalized returns a copy with out-of-range fields replaced by defaults.
// The caller's options are never modified.
func (o *EncodeOptions) normalized() EncodeOptions {
	if o == nil {
		return *DefaultEncodeOptions()
	}
	n := *o
	if n.Indent < 0 {
		n.Indent = 0
	}
	if n.Delimiter == "" {
		n.Delimiter = defaultDelimiter
	}
	if n.MinRowsToTabular < 1 {
		n.MinRowsToTabular = defaultMinRows
	}
	if n.MaxPreviewItems < 0 {
		n.MaxPreviewItems = 0
	}
	return n
}

func (o *DecodeOptions) normalized() DecodeOptions {
	if o == nil {
		return DecodeOptions{Indent: defaultIndent, Delimiter: defaultDelimiter}
	}
	n := *o
	if n.Indent <= 0 {
		n.Indent = defaultIndent
	}
	if n.Delimiter == "" {
		n.Delimiter = defaultDelimiter
	}
	return n
}

// Encode converts a Go value to TOON using the default options.
func Encode(v any) string {
	return EncodeWithOptions(v, nil)
}

// EncodeWithOptions converts a Go value to TOON. A nil opts uses
// DefaultEncodeOptions.
func EncodeWithOptions(v any, opts *EncodeOptions) string {
	o := opts.normalized()
	e := newEncoder(o)
	e.encodeValue(NormalizeWith(v, o.Normalizers...))
	return e.w.String()
}

// Decode parses TOON text written with the default options. Decoding is
// lenient: malformed input yields a partial tree rather than an error.
func Decode(data string) any {
	v, _ := DecodeWithOptions(data, nil)
	return v
}

// DecodeWithOptions parses TOON text. An error is only returned in strict
// mode, and is always a *ParseError.
func DecodeWithOptions(data string, opts *DecodeOptions) (any, error) {
	d := newDecoder(data, opts.normalized())
	v := d.decode()
	if d.err != nil {
		return nil, d.err
	}
	return v, nil
}

// Valid reports whether data decodes in strict mode with the default options.
func Valid(data string) bool {
	return ValidWithOptions(data, nil)
}

// ValidWithOptions reports whether data decodes in strict mode with opts.
func ValidWithOptions(data string, opts *DecodeOptions) bool {
	o := opts.normalized()
	o.Strict = true
	_, err := DecodeWithOptions(data, &o)
	return err == nil
}
