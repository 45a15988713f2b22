package referential

import "sync/atomic"

// Translator holds the current referential table and applies it to
// outbound and inbound documents. The table is swapped atomically, so
// readers never block on a refresh and always see a complete mapping.
type Translator struct {
	table atomic.Pointer[Table]
}

// NewTranslator returns a Translator with an empty table. Encode and
// Decode pass documents through unchanged until Swap installs a real
// table.
func NewTranslator() *Translator {
	tr := &Translator{}
	tr.table.Store(emptyTable())
	return tr
}

// Swap installs t as the current table. A nil table resets the
// translator to the empty pass-through state.
func (tr *Translator) Swap(t *Table) {
	if t == nil {
		t = emptyTable()
	}
	tr.table.Store(t)
}

// Table returns the current table.
func (tr *Translator) Table() *Table {
	return tr.table.Load()
}

// Ready reports whether a non-empty table has been installed.
func (tr *Translator) Ready() bool {
	return tr.table.Load().Ready()
}

// Encode translates semantic keys in obj to wire indices using the
// current table.
func (tr *Translator) Encode(obj map[string]any) map[string]any {
	return tr.table.Load().Encode(obj)
}

// Decode translates wire indices in obj back to semantic keys using
// the current table.
func (tr *Translator) Decode(obj map[string]any) map[string]any {
	return tr.table.Load().Decode(obj)
}
