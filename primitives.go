package toon

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

const (
	nullLiteral  = "null"
	trueLiteral  = "true"
	falseLiteral = "false"

	emptyListLiteral = "[]"
	listItemMarker   = "-"
)

var numericRegex = regexp.MustCompile(`^-?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?$`)

// EncodeScalar renders a scalar as a TOON literal using the default ","
// delimiter. v is normalized first, so any Go integer, float, time or enum is
// accepted. Lists and maps render as "null".
func EncodeScalar(v any) string {
	return encodeScalar(Normalize(v), defaultDelimiter, false)
}

func encodeScalar(v any, delimiter string, pretty bool) string {
	switch val := v.(type) {
	case nil:
		return nullLiteral
	case bool:
		return strconv.FormatBool(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return formatFloat(val, pretty)
	case string:
		if needsQuoting(val, delimiter) {
			return quoteString(val)
		}
		return val
	default:
		return nullLiteral
	}
}

// formatFloat keeps 17 significant digits unless pretty is set, in which case
// the shortest exact representation is used. The result always carries a
// decimal point or exponent so it decodes back as a float.
func formatFloat(f float64, pretty bool) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nullLiteral
	}
	var s string
	switch {
	case !pretty:
		s = strconv.FormatFloat(f, 'g', 17, 64)
	case f == 0 || (math.Abs(f) >= 1e-6 && math.Abs(f) < 1e21):
		s = strconv.FormatFloat(f, 'f', -1, 64)
	default:
		s = strconv.FormatFloat(f, 'g', -1, 64)
	}
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func needsQuoting(s, delimiter string) bool {
	if s == "" {
		return true
	}

	switch s {
	case nullLiteral, trueLiteral, falseLiteral:
		return true
	}

	for _, c := range s {
		switch c {
		case ':', ',', '[', ']', '{', '}', '-', '"':
			return true
		}
		if unicode.IsSpace(c) || unicode.IsControl(c) {
			return true
		}
	}

	if delimiter != defaultDelimiter && strings.Contains(s, delimiter) {
		return true
	}

	return isNumeric(s)
}

func isNumeric(s string) bool {
	return numericRegex.MatchString(s)
}

func quoteString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, c := range s {
		switch c {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// DecodeScalar parses a TOON literal. It never fails: text that is not a
// quoted string, reserved literal or number is returned verbatim as a string.
func DecodeScalar(s string) any {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, `"`) {
		return unquoteString(s)
	}

	switch s {
	case nullLiteral:
		return nil
	case trueLiteral:
		return true
	case falseLiteral:
		return false
	}

	if isNumeric(s) {
		if !strings.ContainsAny(s, ".eE") {
			if i, err := strconv.ParseInt(s, 10, 64); err == nil {
				return i
			}
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}

	return s
}

// unquoteString strips the surrounding quotes of s and reverses the escape
// map. Unknown escapes keep their backslash. A missing closing quote is
// tolerated.
func unquoteString(s string) string {
	s = s[1:]
	if strings.HasSuffix(s, `"`) && !escapedAt(s, len(s)-1) {
		s = s[:len(s)-1]
	}
	if !strings.ContainsRune(s, '\\') {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 >= len(s) {
			b.WriteByte(s[i])
			continue
		}
		switch s[i+1] {
		case '\\':
			b.WriteByte('\\')
		case '"':
			b.WriteByte('"')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		default:
			b.WriteByte('\\')
			continue
		}
		i++
	}
	return b.String()
}

// escapedAt reports whether the byte at i is preceded by an odd number of
// backslashes.
func escapedAt(s string, i int) bool {
	n := 0
	for j := i - 1; j >= 0 && s[j] == '\\'; j-- {
		n++
	}
	return n%2 == 1
}
