// Package audiofolder loads a local dataset laid out as audio files plus an
// optional metadata file.
//
// Splits come from top-level directories (train, validation, test and the
// aliases dev and eval). When the root has no split directory every audio
// file belongs to train. A metadata.csv or metadata.jsonl file anywhere in the
// tree describes the files below it through its file_name column; its other
// columns become table columns.
package audiofolder
