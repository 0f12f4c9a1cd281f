// Package pipeline wires decoders, validation, transform stages and the
// exporter into one sequential conversion.
package pipeline
