package matcher

import (
	"fmt"

	"github.com/pfrederiksen/odpc-checker/internal/apperr"
	"github.com/pfrederiksen/odpc-checker/internal/dataset"
)

const (
	ProviderNameColumn  = "Provider Name"
	ReferenceNameColumn = "NAME"
	MatchedNameColumn   = "Matched Name"

	userDatasetLabel      = "uploaded data"
	referenceDatasetLabel = "reference data"
)

// Required columns, validated once on entry to Match
var (
	RequiredUserColumns      = []string{ProviderNameColumn}
	RequiredReferenceColumns = []string{ReferenceNameColumn}
)

// OutputColumn describes one projected result column
type OutputColumn struct {
	Name     string // header in the result
	Source   string // column it is copied from
	FromUser bool   // Source is a user column rather than a register column
}

// OutputColumns is the fixed result layout. Register sources are the page's
// upper-case headers; a register that already uses the display name is accepted too.
var OutputColumns = []OutputColumn{
	{Name: ProviderNameColumn, Source: ProviderNameColumn, FromUser: true},
	{Name: MatchedNameColumn, Source: ReferenceNameColumn},
	{Name: "Type", Source: "TYPE"},
	{Name: "Current State", Source: "CURRENT STATE"},
	{Name: "Registration Number", Source: "REGISTRATION NUMBER"},
	{Name: "County", Source: "COUNTY"},
	{Name: "Country", Source: "COUNTRY"},
}

// Options configures a match
type Options struct {
	CasePolicy CasePolicy
}

func (o Options) policy() (CasePolicy, error) {
	if o.CasePolicy == "" {
		return DefaultCasePolicy, nil
	}
	if !o.CasePolicy.Valid() {
		return "", fmt.Errorf("invalid case policy %q", o.CasePolicy)
	}
	return o.CasePolicy, nil
}

// ResultRow is one user row with its register match, if any
type ResultRow struct {
	Values  dataset.Row `json:"values"`
	Matched bool        `json:"matched"`
}

// Result is the projected left join of the user rows onto the register
type Result struct {
	Columns      []string    `json:"columns"`
	Rows         []ResultRow `json:"rows"`
	MatchedCount int         `json:"matched_count"`
	// DuplicateNames counts register rows shadowed by an earlier row with the
	// same normalized name.
	DuplicateNames int        `json:"duplicate_names"`
	CasePolicy     CasePolicy `json:"case_policy"`
}

// UnmatchedCount returns the number of user rows without a register match
func (r *Result) UnmatchedCount() int {
	return len(r.Rows) - r.MatchedCount
}

// Table converts the result into a dataset.Table for export
func (r *Result) Table() *dataset.Table {
	t := dataset.NewTable(r.Columns...)
	for _, row := range r.Rows {
		values := make([]string, len(r.Columns))
		for i, col := range r.Columns {
			values[i] = row.Values[col]
		}
		t.Append(values...)
	}
	return t
}

// ValidateUser checks the uploaded dataset declares every required column
func ValidateUser(t *dataset.Table) error {
	return requireColumns(t, userDatasetLabel, RequiredUserColumns)
}

// ValidateReference checks the register declares every required column.
// A failure means the register page changed shape.
func ValidateReference(t *dataset.Table) error {
	return requireColumns(t, referenceDatasetLabel, RequiredReferenceColumns)
}

func requireColumns(t *dataset.Table, label string, columns []string) error {
	for _, col := range columns {
		if t == nil || !t.HasColumn(col) {
			return apperr.Schema(label, col)
		}
	}
	return nil
}

// Match left-joins user to ref on normalized provider name.
//
// Every user row appears exactly once, in input order. A row matches the first
// register row, in scrape order, whose normalized NAME equals its normalized
// Provider Name; blank names never match. Unmatched rows carry empty register
// fields. On a schema error no rows are produced.
func Match(user, ref *dataset.Table, opts Options) (*Result, error) {
	if err := ValidateUser(user); err != nil {
		return nil, err
	}
	if err := ValidateReference(ref); err != nil {
		return nil, err
	}
	policy, err := opts.policy()
	if err != nil {
		return nil, err
	}

	norm := NewNormalizer(policy)
	index, duplicates := buildIndex(ref, norm)
	columns, sources := project(user, ref)

	result := &Result{
		Columns:        columns,
		Rows:           make([]ResultRow, 0, user.Len()),
		DuplicateNames: duplicates,
		CasePolicy:     policy,
	}

	for _, urow := range user.Rows {
		var match dataset.Row
		key := norm.Normalize(urow.Get(ProviderNameColumn))
		if i, ok := index[key]; ok {
			match = ref.Rows[i]
		}

		values := make(dataset.Row, len(columns))
		for i, col := range columns {
			src := sources[i]
			switch {
			case src.FromUser:
				values[col] = urow.Get(src.Source)
			case match != nil:
				values[col] = match.Get(src.Source)
			default:
				values[col] = ""
			}
		}

		if match != nil {
			result.MatchedCount++
		}
		result.Rows = append(result.Rows, ResultRow{Values: values, Matched: match != nil})
	}

	return result, nil
}

// buildIndex maps each normalized register name to its first row
func buildIndex(ref *dataset.Table, norm *Normalizer) (index map[string]int, duplicates int) {
	index = make(map[string]int, ref.Len())
	for i, row := range ref.Rows {
		key := norm.Normalize(row.Get(ReferenceNameColumn))
		if key == "" {
			continue
		}
		if _, seen := index[key]; seen {
			duplicates++
			continue
		}
		index[key] = i
	}
	return index, duplicates
}

// project picks the output columns whose source exists, resolving each
// register column to the header actually present in ref.
func project(user, ref *dataset.Table) (columns []string, sources []OutputColumn) {
	for _, col := range OutputColumns {
		switch {
		case col.FromUser:
			if !user.HasColumn(col.Source) {
				continue
			}
		case ref.HasColumn(col.Source):
		case ref.HasColumn(col.Name):
			col.Source = col.Name
		default:
			continue
		}
		columns = append(columns, col.Name)
		sources = append(sources, col)
	}
	return columns, sources
}
