// Package transform turns a validated canonical table into a Skyline
// transition list. The work is split into named stages applied in a fixed
// order; each stage is a pure function of the table it is handed.
package transform
