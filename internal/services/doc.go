// Package services defines shared utilities consumed by the batch pipeline and
// its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp job IDs, item paths, and stage names for
//     logging.
//   - Structured error markers plus the Wrap helper that translate stage
//     failures into the error-log tags written for each failed item.
//
// Use these helpers when wiring new stage logic so failure handling and
// observability stay uniform across the pipeline.
package services
