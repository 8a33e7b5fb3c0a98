// Package record holds the single-row tabular record model and its canonical
// CSV serialization.
//
// The canonical form is the only byte representation that is ever fingerprinted.
// It is fixed regardless of how the input was formatted:
//
//   - comma delimiter, header row always present
//   - field order is the source column order
//   - one line terminator, "\n" unless Format.UseCRLF is set
//   - minimal quoting: a field is quoted only when it contains the delimiter,
//     a double quote, "\r" or "\n", or starts with a space
//   - UTF-8 output
//
// Values are carried verbatim as decoded, so "040" and "40.0" never change shape
// between the time a record is sealed and the time it is validated.
package record
