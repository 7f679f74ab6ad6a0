// Package features turns one aligned (audio, transcription) record into
// model-ready input features and label ids.
//
// The feature extractor and tokenizer are external collaborators behind the
// Extractor and Tokenizer interfaces. PrepareExample is pure and safe to call
// from many goroutines as long as the collaborators are. CommandExtractor and
// CommandTokenizer adapt external programs that speak JSON on stdin/stdout.
package features
