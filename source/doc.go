// Package source defines the decoder side of the conversion. Each input
// encoding lives in its own driver package (pqp, traml, tsv) that registers
// itself by file extension; the chosen decoder yields an assay.Library
// which is staged through a Scratch file as canonical TSV.
package source
