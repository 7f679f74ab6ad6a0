// Package fleurs loads one language configuration of the FLEURS corpus from
// the Hugging Face hub.
//
// The transcript table (data/<config>/<split>.tsv) and the audio archive
// (data/<config>/audio/<split>.tar.gz) are downloaded for every partition.
// Archives are streamed through gzip and tar into the run work directory, and
// each TSV row becomes a table row carrying the corpus columns. Load then
// aligns the table to the shared (audio, transcription) schema.
package fleurs
