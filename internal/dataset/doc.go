// Package dataset models speech datasets as named splits of column tables.
//
// A Table holds rows keyed by column name. Schema operations (RemoveColumns,
// RenameColumn, CastAudio, Concatenate) return new tables and fail with
// services.ErrSchema when the expected columns are absent, so two
// heterogeneous sources can be aligned declaratively before merging.
// Records projects a table onto the fixed (audio, transcription) shape the
// feature mapping consumes.
//
// Audio cells are decoded lazily: a cell carries its file path and the rate
// it must be decoded at until Materialize fills in the samples.
package dataset
