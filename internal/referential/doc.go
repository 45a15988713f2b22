// Package referential translates between the semantic field names used
// throughout the client and the numeric indices the cloud substitutes
// for them on the wire.
//
// The mapping is not fixed: the server publishes it at runtime as an
// LZString-compressed JSON table, and it can change between sessions.
// The client requests the table after connecting, parses it with
// ParseCompressed, and installs it in a Translator. Until then every
// document passes through untranslated and command publishing reports
// ErrTableUnavailable.
//
// # Usage
//
//	tr := referential.NewTranslator()
//
//	// On a referential message from the broker:
//	table, err := referential.ParseCompressed(payload)
//	if err == nil {
//	    tr.Swap(table)
//	}
//
//	// When building a command:
//	wire := tr.Encode(map[string]any{"setpoint_used": 392})
package referential
