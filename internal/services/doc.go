// Package services defines shared utilities consumed by the session pipeline
// stages and the store-facing components.
//
// Key responsibilities:
//   - Context helpers that stamp session IDs and stage names for logging.
//   - Structured error markers plus the Wrap helper that classify pipeline
//     failures (load, extraction, range, conversion, decode) so front ends can
//     turn them into user-facing messages with errors.Is.
//
// Use these helpers when wiring new pipeline logic so error handling and
// observability stay uniform across the stages.
package services
