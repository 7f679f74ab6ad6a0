// Package language holds the language table of the FLEURS speech corpus.
//
// Each corpus configuration (for example "tg_tj") maps to its English name,
// its language group, and the numeric ids the corpus assigns to both. Codes
// are also converted to BCP 47 tags so callers can render localized names.
package language
