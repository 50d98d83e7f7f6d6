// Package cli implements the command-line interface for odpc-checker.
//
// The cli package provides the Cobra-based commands: check, which joins one or
// more provider spreadsheets to the ODPC register and writes the results, and
// fetch, which prints or exports the register itself. It wires configuration,
// logging, the register fetcher and its cache, and the matcher together.
package cli
