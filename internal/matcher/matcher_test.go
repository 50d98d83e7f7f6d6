package matcher

import (
	"testing"

	"github.com/pfrederiksen/odpc-checker/internal/apperr"
	"github.com/pfrederiksen/odpc-checker/internal/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerTable() *dataset.Table {
	ref := dataset.NewTable("NAME", "TYPE", "CURRENT STATE", "REGISTRATION NUMBER", "COUNTY", "COUNTRY")
	ref.Append("ACME DATA LTD", "Data Controller", "Registered", "ODPC/DC/0001/2023", "Nairobi", "Kenya")
	ref.Append("Beta Analytics", "Data Processor", "Registered", "ODPC/DP/0042/2023", "Mombasa", "Kenya")
	ref.Append("acme data ltd", "Data Processor", "Revoked", "ODPC/DP/0999/2024", "Kisumu", "Kenya")
	return ref
}

func userTable(names ...string) *dataset.Table {
	user := dataset.NewTable(ProviderNameColumn, "Internal ID")
	for i, name := range names {
		user.Append(name, string(rune('A'+i)))
	}
	return user
}

func TestMatch_Example(t *testing.T) {
	result, err := Match(userTable("Acme Data Ltd "), registerTable(), Options{CasePolicy: Lowercase})
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)

	row := result.Rows[0]
	assert.True(t, row.Matched)
	assert.Equal(t, "Acme Data Ltd ", row.Values[ProviderNameColumn], "provider name is passed through unchanged")
	assert.Equal(t, "ACME DATA LTD", row.Values[MatchedNameColumn])
	assert.Equal(t, "Data Controller", row.Values["Type"])
	assert.Equal(t, "ODPC/DC/0001/2023", row.Values["Registration Number"])
}

func TestMatch_BothPolicies(t *testing.T) {
	for _, policy := range []CasePolicy{Lowercase, Uppercase} {
		t.Run(string(policy), func(t *testing.T) {
			result, err := Match(userTable("beta ANALYTICS"), registerTable(), Options{CasePolicy: policy})
			require.NoError(t, err)
			assert.Equal(t, 1, result.MatchedCount)
			assert.Equal(t, "Beta Analytics", result.Rows[0].Values[MatchedNameColumn])
			assert.Equal(t, policy, result.CasePolicy)
		})
	}
}

func TestMatch_Cardinality(t *testing.T) {
	tests := []struct {
		name        string
		users       []string
		wantMatched int
	}{
		{"no rows", nil, 0},
		{"all unmatched", []string{"Nobody", "Also Nobody"}, 0},
		{"mixed", []string{"Acme Data Ltd", "Nobody", "BETA ANALYTICS"}, 2},
		{"repeated user names", []string{"acme data ltd", "ACME DATA LTD", "Acme Data Ltd"}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := userTable(tt.users...)
			result, err := Match(user, registerTable(), Options{})
			require.NoError(t, err)

			assert.Len(t, result.Rows, user.Len())
			assert.Equal(t, tt.wantMatched, result.MatchedCount)
			assert.Equal(t, user.Len()-tt.wantMatched, result.UnmatchedCount())
			for i, row := range result.Rows {
				assert.Equal(t, user.Rows[i][ProviderNameColumn], row.Values[ProviderNameColumn], "row %d out of order", i)
			}
		})
	}
}

func TestMatch_UnmatchedRowsAreEmpty(t *testing.T) {
	result, err := Match(userTable("Gamma Health"), registerTable(), Options{})
	require.NoError(t, err)

	row := result.Rows[0]
	assert.False(t, row.Matched)
	for _, col := range result.Columns {
		if col == ProviderNameColumn {
			continue
		}
		assert.Empty(t, row.Values[col], "column %s", col)
	}
}

func TestMatch_FirstRegisterRowWins(t *testing.T) {
	result, err := Match(userTable("ACME DATA LTD"), registerTable(), Options{CasePolicy: Uppercase})
	require.NoError(t, err)

	assert.Equal(t, "ACME DATA LTD", result.Rows[0].Values[MatchedNameColumn])
	assert.Equal(t, "Nairobi", result.Rows[0].Values["County"])
	assert.Equal(t, 1, result.DuplicateNames)
}

func TestMatch_BlankNamesNeverMatch(t *testing.T) {
	ref := dataset.NewTable("NAME", "TYPE")
	ref.Append("", "Ghost")
	ref.Append("Acme", "Data Controller")

	result, err := Match(userTable("  ", ""), ref, Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, result.MatchedCount)
	assert.Len(t, result.Rows, 2)
}

func TestMatch_ProjectsOnlyAvailableColumns(t *testing.T) {
	ref := dataset.NewTable("NAME", "TYPE", "COUNTY")
	ref.Append("Acme", "Data Controller", "Nairobi")

	result, err := Match(userTable("acme"), ref, Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{ProviderNameColumn, MatchedNameColumn, "Type", "County"}, result.Columns)
	assert.NotContains(t, result.Rows[0].Values, "Internal ID", "extra user columns are not projected")
	assert.NotContains(t, result.Rows[0].Values, "Country")
}

func TestMatch_DisplayNamedRegisterColumns(t *testing.T) {
	ref := dataset.NewTable("NAME", "Type", "Country")
	ref.Append("Acme", "Data Controller", "Kenya")

	result, err := Match(userTable("ACME"), ref, Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{ProviderNameColumn, MatchedNameColumn, "Type", "Country"}, result.Columns)
	assert.Equal(t, "Kenya", result.Rows[0].Values["Country"])
}

func TestMatch_SchemaErrors(t *testing.T) {
	t.Run("missing Provider Name", func(t *testing.T) {
		user := dataset.NewTable("Company")
		user.Append("Acme")

		result, err := Match(user, registerTable(), Options{})
		require.Error(t, err)
		assert.Nil(t, result, "no rows are produced on a schema error")
		assert.True(t, apperr.IsKind(err, apperr.KindSchema))

		var appErr *apperr.Error
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, ProviderNameColumn, appErr.Column)
	})

	t.Run("missing NAME", func(t *testing.T) {
		ref := dataset.NewTable("Name", "TYPE")
		ref.Append("Acme", "Data Controller")

		result, err := Match(userTable("Acme"), ref, Options{})
		require.Error(t, err)
		assert.Nil(t, result)

		var appErr *apperr.Error
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperr.KindSchema, appErr.Kind)
		assert.Equal(t, ReferenceNameColumn, appErr.Column)
	})

	t.Run("nil tables", func(t *testing.T) {
		_, err := Match(nil, registerTable(), Options{})
		assert.True(t, apperr.IsKind(err, apperr.KindSchema))
	})
}

func TestMatch_InvalidPolicy(t *testing.T) {
	_, err := Match(userTable("Acme"), registerTable(), Options{CasePolicy: "title"})
	assert.Error(t, err)
}

func TestResult_Table(t *testing.T) {
	result, err := Match(userTable("Acme Data Ltd", "Nobody"), registerTable(), Options{})
	require.NoError(t, err)

	table := result.Table()
	assert.Equal(t, result.Columns, table.Headers)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, "ACME DATA LTD", table.Rows[0].Get(MatchedNameColumn))
	assert.Equal(t, "", table.Rows[1].Get(MatchedNameColumn))
	assert.Equal(t, []string{
		ProviderNameColumn, MatchedNameColumn, "Type", "Current State",
		"Registration Number", "County", "Country",
	}, table.Headers)
}
