package toon

import (
	"reflect"
	"testing"
)

func TestMapOrder(t *testing.T) {
	m := NewMap()
	m.Set("b", 1)
	m.Set("a", 2)
	m.Set("c", 3)
	m.Set("b", 4)

	if got := m.Keys(); !reflect.DeepEqual(got, []string{"b", "a", "c"}) {
		t.Errorf("Unexpected key order %v", got)
	}
	if v, ok := m.Get("b"); !ok || v != 4 {
		t.Errorf("Expected overwritten value 4, got %v", v)
	}

	m.Delete("a")
	if got := m.Keys(); !reflect.DeepEqual(got, []string{"b", "c"}) {
		t.Errorf("Unexpected key order after delete %v", got)
	}
	if v, ok := m.Get("c"); !ok || v != 3 {
		t.Errorf("Index not updated after delete, got %v", v)
	}
	m.Delete("missing")
	if m.Len() != 2 {
		t.Errorf("Expected 2 entries, got %d", m.Len())
	}
}

func TestMapEntriesIsCopy(t *testing.T) {
	m := MapOf("a", 1)
	entries := m.Entries()
	entries[0].Value = 99
	if v, _ := m.Get("a"); v != 1 {
		t.Error("Entries must return a copy")
	}
}

func TestMapZeroValue(t *testing.T) {
	var m Map
	m.Set("a", 1)
	if m.Len() != 1 {
		t.Error("Zero Map should be usable")
	}

	var nilMap *Map
	if nilMap.Len() != 0 || nilMap.Keys() != nil {
		t.Error("Nil Map should behave as empty")
	}
	if _, ok := nilMap.Get("a"); ok {
		t.Error("Nil Map should have no entries")
	}
}

func TestMapOfPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic for odd argument count")
		}
	}()
	MapOf("a")
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		value any
		kind  Kind
	}{
		{nil, NullKind},
		{true, BoolKind},
		{int64(1), IntKind},
		{1.5, FloatKind},
		{"s", StringKind},
		{[]any{}, ListKind},
		{NewMap(), MapKind},
		{1, InvalidKind},
		{map[string]any{}, InvalidKind},
	}

	for _, tt := range tests {
		if got := KindOf(tt.value); got != tt.kind {
			t.Errorf("KindOf(%#v) = %v, expected %v", tt.value, got, tt.kind)
		}
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"int float", int64(1), 1.0, false},
		{"same ints", int64(1), int64(1), true},
		{"nil nil", nil, nil, true},
		{"nil empty list", nil, []any{}, false},
		{"map order", MapOf("a", 1, "b", 2), MapOf("b", 2, "a", 1), false},
		{"nested", []any{MapOf("a", []any{"x"})}, []any{MapOf("a", []any{"x"})}, true},
		{"list length", []any{int64(1)}, []any{int64(1), int64(2)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("Equal(%v, %v) = %v, expected %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
