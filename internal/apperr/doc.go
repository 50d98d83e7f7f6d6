// Package apperr defines the error taxonomy surfaced to the user of odpc-checker.
//
// Every failure that aborts a check carries a Kind: a network failure talking to
// the regulator site, a change in the shape of the scraped page, a dataset that
// lacks a required column, a page that yielded no usable rows, or an input file
// that could not be read. Callers wrap these with fmt.Errorf and %w as usual;
// IsKind and KindOf still find the original.
package apperr
