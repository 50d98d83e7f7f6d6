// Package dataset holds the tabular model shared by the fetcher, the matcher and
// the spreadsheet import/export code.
//
// A Table is an ordered header list plus ordered rows, each row mapping a header
// to its cell text. Tables are read from and written to .xlsx (via excelize) and
// .csv files; the format is chosen by file extension.
package dataset
