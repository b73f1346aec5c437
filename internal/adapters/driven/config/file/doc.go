// Package file provides the TOML-backed configuration store.
//
// Nested tables are flattened into dotted keys on load ("embedding.provider")
// and expanded back into tables on save, so the file stays hand-editable.
package file
