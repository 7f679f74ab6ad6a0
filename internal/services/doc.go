// Package services defines shared utilities consumed by the preparation
// pipeline and its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, stage, source and split names for
//     logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     (source fetch, schema mismatch, per-record transformation).
//
// Use these helpers when wiring new pipeline code so error handling and
// observability stay uniform.
package services
