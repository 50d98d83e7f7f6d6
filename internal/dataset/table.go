package dataset

import (
	"strconv"
	"strings"
)

// Row maps a column header to its cell text
type Row map[string]string

// Get returns the cell for column, or "" when the row has none
func (r Row) Get(column string) string {
	return r[column]
}

// Table is an ordered set of rows sharing one header list
type Table struct {
	Headers []string `json:"headers"`
	Rows    []Row    `json:"rows"`
}

// NewTable creates an empty table with the given headers
func NewTable(headers ...string) *Table {
	return &Table{
		Headers: headers,
		Rows:    make([]Row, 0),
	}
}

// HasColumn reports whether the table declares the column
func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// ColumnIndex returns the position of the column in Headers, or -1
func (t *Table) ColumnIndex(name string) int {
	for i, h := range t.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.Rows)
}

// Append adds a row built from values in header order.
// Missing trailing values are stored as empty cells.
func (t *Table) Append(values ...string) {
	row := make(Row, len(t.Headers))
	for i, h := range t.Headers {
		if i < len(values) {
			row[h] = values[i]
		} else {
			row[h] = ""
		}
	}
	t.Rows = append(t.Rows, row)
}

// Records returns the table as a header record followed by one record per row
func (t *Table) Records() [][]string {
	records := make([][]string, 0, len(t.Rows)+1)
	records = append(records, append([]string(nil), t.Headers...))
	for _, row := range t.Rows {
		record := make([]string, len(t.Headers))
		for i, h := range t.Headers {
			record[i] = row[h]
		}
		records = append(records, record)
	}
	return records
}

// FromRecords builds a table from raw records whose first record is the header.
// Headers are trimmed; blank headers become "Unnamed: <index>" and repeated
// headers get a ".N" suffix so every column stays addressable. Records that are
// entirely blank are dropped, short records are padded with empty cells and
// cells beyond the header are ignored.
func FromRecords(records [][]string) *Table {
	if len(records) == 0 {
		return NewTable()
	}

	t := NewTable(UniqueHeaders(records[0])...)
	for _, record := range records[1:] {
		if isBlank(record) {
			continue
		}
		t.Append(record...)
	}
	return t
}

// UniqueHeaders trims raw header names and makes them distinct: blank names
// become "Unnamed: <index>" and repeats get a ".N" suffix.
func UniqueHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	seen := make(map[string]int, len(raw))
	for i, h := range raw {
		h = strings.TrimSpace(h)
		if h == "" {
			h = "Unnamed: " + strconv.Itoa(i)
		}
		if n, dup := seen[h]; dup {
			seen[h] = n + 1
			h = h + "." + strconv.Itoa(n+1)
		} else {
			seen[h] = 0
		}
		headers[i] = h
	}
	return headers
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
