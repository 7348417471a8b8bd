package toon

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type level int

func (l level) EnumName() string {
	return [...]string{"low", "high"}[l]
}

func (l level) EnumValue() (any, bool) {
	return nil, false
}

type status string

func (s status) EnumName() string       { return "STATUS_" + string(s) }
func (s status) EnumValue() (any, bool) { return string(s), true }

type point struct {
	X, Y int
}

func (p point) MarshalTOON() (any, error) {
	return []any{p.X, p.Y}, nil
}

type user struct {
	Name    string   `json:"name"`
	ID      int      `json:"id"`
	Tags    []string `json:"tags,omitempty"`
	private int
}

func TestNormalize(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	var nilPtr *user

	tests := []struct {
		name     string
		input    any
		expected any
	}{
		{"int", 5, int64(5)},
		{"int8", int8(-3), int64(-3)},
		{"uint16", uint16(9), int64(9)},
		{"uint64 overflow", uint64(math.MaxUint64), float64(math.MaxUint64)},
		{"float32", float32(0.5), 0.5},
		{"json number int", json.Number("12"), int64(12)},
		{"json number float", json.Number("1.5"), 1.5},
		{"time", ts, "2024-03-01T12:30:00+00:00"},
		{"time pointer", &ts, "2024-03-01T12:30:00+00:00"},
		{"bytes", []byte("hi"), "aGk="},
		{"nil pointer", nilPtr, nil},
		{"channel", make(chan int), nil},
		{"function", func() {}, nil},
		{"pure enum", level(1), "high"},
		{"backed enum", status("on"), "on"},
		{"marshaler", point{1, 2}, []any{int64(1), int64(2)}},
		{"string slice", []string{"a", "b"}, []any{"a", "b"}},
		{"array", [2]int{3, 4}, []any{int64(3), int64(4)}},
		{"sequential map", map[int]string{1: "b", 0: "a"}, []any{"a", "b"}},
		{"sparse map", map[int]string{0: "a", 2: "c"}, MapOf("0", "a", "2", "c")},
		{"sorted string map", map[string]any{"b": 1, "a": 2}, MapOf("a", int64(2), "b", int64(1))},
		{"typed map", map[string]int{"z": 1}, MapOf("z", int64(1))},
		{
			"struct keeps field order",
			user{Name: "Ann", ID: 7},
			MapOf("name", "Ann", "id", int64(7)),
		},
		{
			"struct pointer",
			&user{Name: "Bob", ID: 8, Tags: []string{"x"}},
			MapOf("name", "Bob", "id", int64(8), "tags", []any{"x"}),
		},
		{
			"nested list of any",
			[]any{1, []int{2}, map[string]any{"k": nil}},
			[]any{int64(1), []any{int64(2)}, MapOf("k", nil)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Normalize(tt.input)
			if diff := cmp.Diff(tt.expected, result); diff != "" {
				t.Errorf("Normalize mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNormalizeTimeOffset(t *testing.T) {
	zone := time.FixedZone("X", 2*60*60)
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, zone)
	if got := Normalize(ts); got != "2024-01-02T03:04:05+02:00" {
		t.Errorf("Unexpected %v", got)
	}
}

func TestNormalizeWithHook(t *testing.T) {
	type celsius float64

	hook := func(v any) (any, bool) {
		c, ok := v.(celsius)
		if !ok {
			return nil, false
		}
		return map[string]any{"celsius": float64(c)}, true
	}

	result := NormalizeWith([]any{celsius(21.5), 3}, hook)
	expected := []any{MapOf("celsius", 21.5), int64(3)}
	if diff := cmp.Diff(expected, result); diff != "" {
		t.Errorf("Hook mismatch (-want +got):\n%s", diff)
	}

	encoded := EncodeWithOptions(celsius(3), &EncodeOptions{Indent: 2, Normalizers: []NormalizeFunc{hook}})
	if encoded != "celsius: 3.0" {
		t.Errorf("Unexpected %q", encoded)
	}
}

type Audit struct {
	By string `json:"by"`
	ID int    `json:"audit_id"`
}

type account struct {
	Audit
	ID      int            `json:"id"`
	Level   level          `json:"level"`
	State   status         `json:"state"`
	At      time.Time      `json:"at"`
	Home    point          `json:"home"`
	Note    string         `json:"note,omitempty"`
	Skipped string         `json:"-"`
	Dash    string         `json:"-,"`
	Extra   map[string]any `json:",omitempty"`
	Nested  *account       `json:"nested,omitempty"`
	Plain   bool
}

func TestNormalizeStructFields(t *testing.T) {
	at := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	in := account{
		Audit:   Audit{By: "ops", ID: 3},
		ID:      7,
		Level:   level(1),
		State:   status("live"),
		At:      at,
		Home:    point{1, 2},
		Skipped: "hidden",
		Dash:    "d",
		Nested:  &account{ID: 8, At: at},
	}

	nested := MapOf(
		"by", "",
		"audit_id", int64(0),
		"id", int64(8),
		"level", "low",
		"state", "",
		"at", "2024-01-02T09:00:00+00:00",
		"home", []any{int64(0), int64(0)},
		"-", "",
		"Plain", false,
	)
	expected := MapOf(
		"by", "ops",
		"audit_id", int64(3),
		"id", int64(7),
		"level", "high",
		"state", "live",
		"at", "2024-01-02T09:00:00+00:00",
		"home", []any{int64(1), int64(2)},
		"-", "d",
		"nested", nested,
		"Plain", false,
	)
	if diff := cmp.Diff(expected, Normalize(in)); diff != "" {
		t.Errorf("Struct mismatch (-want +got):\n%s", diff)
	}

	encoded := Encode(struct {
		State status    `json:"state"`
		At    time.Time `json:"at"`
	}{status("live"), at})
	if encoded != "state: live\nat: \"2024-01-02T09:00:00+00:00\"" {
		t.Errorf("Unexpected %q", encoded)
	}
}

func TestNormalizeStructHook(t *testing.T) {
	type celsius float64
	type reading struct {
		Sensor string  `json:"sensor"`
		Temp   celsius `json:"temp"`
	}

	hook := func(v any) (any, bool) {
		c, ok := v.(celsius)
		if !ok {
			return nil, false
		}
		return MapOf("celsius", float64(c)), true
	}

	result := NormalizeWith([]reading{{"a", 20.5}}, hook)
	expected := []any{MapOf("sensor", "a", "temp", MapOf("celsius", 20.5))}
	if diff := cmp.Diff(expected, result); diff != "" {
		t.Errorf("Hook mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeCopiesMap(t *testing.T) {
	in := MapOf("a", 1)
	out := Normalize(in).(*Map)
	out.Set("b", 2)
	if in.Len() != 1 {
		t.Error("Normalize must not alias its input")
	}
}

func TestFromJSON(t *testing.T) {
	v, err := FromJSON([]byte(`{"z": 1, "a": [1.5, "x", null, true], "m": {}}`))
	if err != nil {
		t.Fatal(err)
	}
	expected := MapOf("z", int64(1), "a", []any{1.5, "x", nil, true}, "m", NewMap())
	if diff := cmp.Diff(expected, v); diff != "" {
		t.Errorf("FromJSON mismatch (-want +got):\n%s", diff)
	}

	if _, err := FromJSON([]byte(`{"a": 1} 2`)); err == nil {
		t.Error("Expected error for trailing data")
	}
	if _, err := FromJSON([]byte(`{"a":`)); err == nil {
		t.Error("Expected error for truncated input")
	}
}

func TestMapJSON(t *testing.T) {
	m := MapOf("z", 1, "a", MapOf("y", []any{true}))
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"z":1,"a":{"y":[true]}}` {
		t.Errorf("Unexpected %s", data)
	}
}
