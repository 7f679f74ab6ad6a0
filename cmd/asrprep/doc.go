// Package main implements the asrprep command-line interface.
//
// The CLI prepares the unified speech recognition dataset from the FLEURS
// corpus and a local audio folder, stores the result in SQLite, and offers
// helpers to inspect sources, list stored runs and manage configuration.
package main
