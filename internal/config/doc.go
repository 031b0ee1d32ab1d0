// Package config loads, normalizes, and validates wsexport configuration data.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and honours environment fallbacks such as
// WSEXPORT_EBOOK_CONVERT. The Config type gathers the temp directory, the
// wiki client settings, and the converter knobs in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
