package referential

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Entry is one row of the server's referential table: a semantic field
// name and the numeric index that stands in for it on the wire.
type Entry struct {
	Value string `json:"value"`
	Index int    `json:"index"`
}

// Table is an immutable bidirectional mapping between semantic field
// names and stringified wire indices. A Table is never mutated after
// construction; holders swap whole tables instead.
type Table struct {
	byName  map[string]string
	byIndex map[string]string
}

// NewTable builds a Table from parsed referential entries. Later entries
// win on duplicate names or indices.
func NewTable(entries []Entry) *Table {
	t := &Table{
		byName:  make(map[string]string, len(entries)),
		byIndex: make(map[string]string, len(entries)),
	}
	for _, e := range entries {
		idx := strconv.Itoa(e.Index)
		t.byName[e.Value] = idx
		t.byIndex[idx] = e.Value
	}
	return t
}

func emptyTable() *Table {
	return &Table{
		byName:  map[string]string{},
		byIndex: map[string]string{},
	}
}

// Ready reports whether the table holds any mappings. An empty table
// makes Encode and Decode pass-through operations.
func (t *Table) Ready() bool {
	return len(t.byName) > 0
}

// Len returns the number of mappings in the table.
func (t *Table) Len() int {
	return len(t.byName)
}

// Encode returns a deep copy of obj with every key known to the table
// replaced by its stringified wire index. Unknown keys and all values
// pass through unchanged. The input is never mutated.
func (t *Table) Encode(obj map[string]any) map[string]any {
	return walkMap(obj, t.byName)
}

// Decode is the inverse of Encode: stringified wire indices in key
// position are replaced by their semantic names.
func (t *Table) Decode(obj map[string]any) map[string]any {
	return walkMap(obj, t.byIndex)
}

func walkMap(obj map[string]any, lookup map[string]string) map[string]any {
	out := make(map[string]any, len(obj))
	for k, v := range obj {
		key := k
		if repl, ok := lookup[k]; ok {
			key = repl
		}
		out[key] = walkValue(v, lookup)
	}
	return out
}

func walkValue(v any, lookup map[string]string) any {
	switch val := v.(type) {
	case map[string]any:
		return walkMap(val, lookup)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = walkValue(item, lookup)
		}
		return out
	default:
		return v
	}
}

// ParseCompressed decompresses an LZString compressToUTF16 referential
// payload and parses it into a Table. The payload is either a bare JSON
// array of entries or an object wrapping one under "referentials".
//
// On any failure the returned table is empty and the error wraps
// ErrBadPayload; callers keep their previous table and log the error.
func ParseCompressed(payload string) (*Table, error) {
	text, err := decompressUTF16(payload)
	if err != nil {
		return emptyTable(), fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if text == "" {
		return emptyTable(), fmt.Errorf("%w: payload decompressed to nothing", ErrBadPayload)
	}

	entries, err := parseEntries([]byte(text))
	if err != nil {
		return emptyTable(), fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return NewTable(entries), nil
}

func parseEntries(data []byte) ([]Entry, error) {
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err == nil {
		return entries, nil
	}

	var wrapped struct {
		Referentials []Entry `json:"referentials"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("not a referential document: %v", err)
	}
	if wrapped.Referentials == nil {
		return nil, fmt.Errorf("document carries no referentials")
	}
	return wrapped.Referentials, nil
}
