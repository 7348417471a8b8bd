package toon

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"
)

// timeLayout is ISO-8601 extended format with a numeric offset.
const timeLayout = "2006-01-02T15:04:05-07:00"

// NormalizeFunc converts a host-specific value into something Normalize
// understands. It returns false when it does not handle v. The result is
// normalized again, so it may itself contain host values.
type NormalizeFunc func(v any) (any, bool)

// Enum is implemented by closed sets of named constants.
type Enum interface {
	// EnumName returns the symbolic name of the constant.
	EnumName() string
	// EnumValue returns the backing scalar, or false if the enum has none.
	EnumValue() (any, bool)
}

// Marshaler is implemented by types that convert themselves to a value tree
// for TOON encoding.
type Marshaler interface {
	MarshalTOON() (any, error)
}

// Normalize projects a Go value onto the canonical tree. It never fails:
// values that cannot be represented become nil.
func Normalize(v any) any {
	return NormalizeWith(v)
}

// NormalizeWith is Normalize with extension hooks consulted before the
// built-in rules.
func NormalizeWith(v any, hooks ...NormalizeFunc) any {
	n := normalizer{hooks: hooks}
	return n.normalize(v)
}

type normalizer struct {
	hooks []NormalizeFunc
}

func (n normalizer) normalize(v any) any {
	for _, hook := range n.hooks {
		if out, ok := hook(v); ok {
			return n.normalize(out)
		}
	}

	switch val := v.(type) {
	case nil:
		return nil
	case bool:
		return val
	case string:
		return val
	case int64:
		return val
	case int:
		return int64(val)
	case int8:
		return int64(val)
	case int16:
		return int64(val)
	case int32:
		return int64(val)
	case uint:
		return n.uint(uint64(val))
	case uint8:
		return int64(val)
	case uint16:
		return int64(val)
	case uint32:
		return int64(val)
	case uint64:
		return n.uint(val)
	case float64:
		return val
	case float32:
		return float64(val)
	case json.Number:
		return numberValue(string(val))
	case time.Time:
		return val.Format(timeLayout)
	case *time.Time:
		if val == nil {
			return nil
		}
		return val.Format(timeLayout)
	case []byte:
		return base64.StdEncoding.EncodeToString(val)
	case []any:
		return n.list(val)
	case *Map:
		if val == nil {
			return nil
		}
		out := NewMap()
		for _, e := range val.entries {
			out.Set(e.Key, n.normalize(e.Value))
		}
		return out
	case []Entry:
		out := NewMap()
		for _, e := range val {
			out.Set(e.Key, n.normalize(e.Value))
		}
		return out
	case map[string]any:
		return n.stringMap(val)
	case Enum:
		if scalar, ok := val.EnumValue(); ok {
			return n.normalize(scalar)
		}
		return val.EnumName()
	case Marshaler:
		out, err := val.MarshalTOON()
		if err != nil {
			return nil
		}
		return n.normalize(out)
	case json.Marshaler:
		return n.viaJSON(val)
	}

	return n.reflectValue(reflect.ValueOf(v))
}

func (n normalizer) uint(u uint64) any {
	if u > math.MaxInt64 {
		return float64(u)
	}
	return int64(u)
}

func (n normalizer) list(items []any) any {
	if items == nil {
		return nil
	}
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = n.normalize(item)
	}
	return out
}

func (n normalizer) stringMap(m map[string]any) *Map {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := NewMap()
	for _, k := range keys {
		out.Set(k, n.normalize(m[k]))
	}
	return out
}

// viaJSON converts v through its JSON form, keeping object key order.
func (n normalizer) viaJSON(v any) any {
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	out, err := FromJSON(data)
	if err != nil {
		return nil
	}
	return out
}

func (n normalizer) reflectValue(val reflect.Value) any {
	switch val.Kind() {
	case reflect.Invalid:
		return nil
	case reflect.Ptr, reflect.Interface:
		if val.IsNil() {
			return nil
		}
		return n.normalize(val.Elem().Interface())
	case reflect.Bool:
		return val.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return val.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return n.uint(val.Uint())
	case reflect.Float32, reflect.Float64:
		return val.Float()
	case reflect.String:
		return val.String()
	case reflect.Slice:
		if val.IsNil() {
			return nil
		}
		if val.Type().Elem().Kind() == reflect.Uint8 {
			return base64.StdEncoding.EncodeToString(val.Bytes())
		}
		fallthrough
	case reflect.Array:
		out := make([]any, val.Len())
		for i := range out {
			out[i] = n.normalize(val.Index(i).Interface())
		}
		return out
	case reflect.Map:
		if val.IsNil() {
			return nil
		}
		return n.reflectMap(val)
	case reflect.Struct:
		out := NewMap()
		n.structFields(val, out, map[string]int{}, 0)
		return out
	default:
		// chan, func, complex and unsafe pointers have no canonical form
		return nil
	}
}

// structFields adds the exported fields of val to out in declaration order,
// naming and skipping them by their json tags. Fields of embedded structs
// without a tag name are promoted; a shallower field wins a name clash.
func (n normalizer) structFields(val reflect.Value, out *Map, depths map[string]int, depth int) {
	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		tag := field.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		fv := val.Field(i)

		if field.Anonymous && name == "" {
			ft := field.Type
			if ft.Kind() == reflect.Ptr {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				if !field.IsExported() {
					continue
				}
				if fv.Kind() == reflect.Ptr {
					if fv.IsNil() {
						continue
					}
					fv = fv.Elem()
				}
				n.structFields(fv, out, depths, depth+1)
				continue
			}
		}
		if !field.IsExported() {
			continue
		}
		if name == "" {
			name = field.Name
		}
		if hasTagOption(opts, "omitempty") && emptyValue(fv) {
			continue
		}
		if d, ok := depths[name]; ok && d <= depth {
			continue
		}
		depths[name] = depth
		out.Set(name, n.normalize(fv.Interface()))
	}
}

func hasTagOption(opts, want string) bool {
	for opts != "" {
		var opt string
		opt, opts, _ = strings.Cut(opts, ",")
		if opt == want {
			return true
		}
	}
	return false
}

// emptyValue follows the omitempty rules of encoding/json.
func emptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Interface, reflect.Ptr:
		return v.IsNil()
	}
	return false
}

// reflectMap turns a map with keys exactly 0..n-1 into a list ordered by key;
// any other map becomes a Map with stringified keys in sorted order.
func (n normalizer) reflectMap(val reflect.Value) any {
	keys := val.MapKeys()

	if seq, ok := sequentialKeys(keys); ok {
		out := make([]any, len(keys))
		for i, k := range seq {
			out[i] = n.normalize(val.MapIndex(k).Interface())
		}
		return out
	}

	type pair struct {
		key string
		val reflect.Value
	}
	pairs := make([]pair, len(keys))
	for i, k := range keys {
		pairs[i] = pair{key: fmt.Sprint(k.Interface()), val: val.MapIndex(k)}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].key < pairs[j].key })

	out := NewMap()
	for _, p := range pairs {
		out.Set(p.key, n.normalize(p.val.Interface()))
	}
	return out
}

// sequentialKeys returns the keys ordered by value when they are integers
// covering exactly 0..len(keys)-1.
func sequentialKeys(keys []reflect.Value) ([]reflect.Value, bool) {
	if len(keys) == 0 {
		return nil, false
	}
	seq := make([]reflect.Value, len(keys))
	for _, k := range keys {
		var i int64
		switch k.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			i = k.Int()
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			if k.Uint() > math.MaxInt64 {
				return nil, false
			}
			i = int64(k.Uint())
		default:
			return nil, false
		}
		if i < 0 || i >= int64(len(keys)) || seq[i].IsValid() {
			return nil, false
		}
		seq[i] = k
	}
	return seq, true
}

// numberValue classifies numeric text as int64, float64, or leaves it as a
// string when it is not a finite number.
func numberValue(s string) any {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
