// Package prep assembles the ASR training and evaluation datasets.
//
// The Assembler loads the remote corpus and the local audio folder, aligns
// both to (audio, transcription), concatenates same-named splits (remote
// records first) and maps every record through features.PrepareExample on a
// bounded worker pool. Output order equals input order and the first failing
// record aborts the whole mapping.
package prep
