// Package store persists prepared dataset dictionaries in SQLite.
//
// Each Save records one run and all of its processed records in a single
// transaction. Input features are stored as zstd-compressed float32 blobs and
// labels as JSON arrays. Writers hold an advisory file lock next to the
// database so two preparation runs never interleave.
package store
