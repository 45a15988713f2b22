package state

import (
	"reflect"
	"testing"
)

func TestMergeRawOverrides(t *testing.T) {
	cached := []map[string]any{{
		"unique": "i1",
		"a":      1,
		"list":   []any{1, 2},
		"groups": []any{"g"},
	}}
	incoming := []map[string]any{{
		"unique": "i1",
		"a":      2,
		"list":   []any{9},
	}}

	got := MergeRaw(cached, incoming)
	want := []map[string]any{{
		"unique": "i1",
		"a":      2,
		"list":   []any{9},
		"groups": []any{"g"},
	}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MergeRaw() = %v, want %v", got, want)
	}
}

func TestMergeRawRecursesMaps(t *testing.T) {
	cached := []map[string]any{{
		"unique": "i1",
		"user":   map[string]any{"name": "old", "email": "a@b"},
	}}
	incoming := []map[string]any{{
		"unique": "i1",
		"user":   map[string]any{"name": "new"},
	}}

	got := MergeRaw(cached, incoming)
	user := got[0]["user"].(map[string]any)
	if user["name"] != "new" {
		t.Errorf("user.name = %v, want new", user["name"])
	}
	if user["email"] != "a@b" {
		t.Errorf("user.email = %v, want preserved a@b", user["email"])
	}
}

func TestMergeRawNoCachedSide(t *testing.T) {
	incoming := []map[string]any{{"unique": "i1", "a": 1}}

	got := MergeRaw(nil, incoming)
	if !reflect.DeepEqual(got, incoming) {
		t.Errorf("MergeRaw(nil, ...) = %v, want incoming unchanged", got)
	}
}

func TestMergeRawKeepsUnmatchedIncoming(t *testing.T) {
	cached := []map[string]any{{"unique": "i1", "a": 1}}
	incoming := []map[string]any{
		{"unique": "i1", "a": 2},
		{"unique": "i2", "b": 3},
	}

	got := MergeRaw(cached, incoming)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[1]["unique"] != "i2" {
		t.Errorf("second doc = %v, want the new installation", got[1])
	}
}

func TestMergeRawDoesNotMutateInputs(t *testing.T) {
	cached := []map[string]any{{"unique": "i1", "a": 1}}
	incoming := []map[string]any{{"unique": "i1", "a": 2}}

	MergeRaw(cached, incoming)
	if cached[0]["a"] != 1 {
		t.Errorf("cached mutated: a = %v", cached[0]["a"])
	}
}
