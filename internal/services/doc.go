// Package services defines the error taxonomy and context helpers shared by
// the content API client, the temp file allocator and the conversion
// orchestrator.
//
// Key responsibilities:
//   - Sentinel markers plus typed errors (transport, protocol, not found,
//     resource exhaustion, conversion, invalid format) that callers match
//     with errors.Is and errors.As.
//   - The Wrap helper that tags an error with a marker and component context.
//   - Context helpers that stamp job and request identifiers for logging.
package services
