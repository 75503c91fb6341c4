package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTable(t *testing.T) {
	tests := []struct {
		name        string
		headers     []string
		rows        [][]string
		wantErr     bool
		wantHeaders []string
	}{
		{
			name:        "well formed",
			headers:     []string{"Date", "Price"},
			rows:        [][]string{{"2025-07-09", "3312.14"}, {"2025-07-08", "3300.00"}},
			wantHeaders: []string{"Date", "Price"},
		},
		{
			name:    "mismatched row is rejected at construction",
			headers: []string{"Date", "Price"},
			rows:    [][]string{{"2025-07-09", "3312.14"}, {"2025-07-08"}},
			wantErr: true,
		},
		{
			name:    "zero columns",
			headers: nil,
			wantErr: true,
		},
		{
			name:        "duplicate headers get suffix",
			headers:     []string{"Price", "Price", "Price"},
			rows:        [][]string{{"1", "2", "3"}},
			wantHeaders: []string{"Price", "Price_2", "Price_3"},
		},
		{
			name:        "blank header gets positional name",
			headers:     []string{"", "Price"},
			rows:        [][]string{{"x", "1"}},
			wantHeaders: []string{"Column_1", "Price"},
		},
		{
			name:        "suffix colliding with a real header keeps incrementing",
			headers:     []string{"Price", "Price_2", "Price"},
			rows:        [][]string{{"1", "2", "3"}},
			wantHeaders: []string{"Price", "Price_2", "Price_3"},
		},
		{
			name:        "repeated collisions stay unique",
			headers:     []string{"A", "A_2", "A", "A", "A_2"},
			rows:        [][]string{{"1", "2", "3", "4", "5"}},
			wantHeaders: []string{"A", "A_2", "A_3", "A_4", "A_2_2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := NewTable(tt.headers, tt.rows)
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, table)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantHeaders, table.Headers())
			assert.Equal(t, len(tt.rows), table.Rows())
		})
	}
}

func TestTable_DropBlank(t *testing.T) {
	table, err := NewTable(
		[]string{"A", "B", "C"},
		[][]string{
			{"1", "", "x"},
			{"", "", ""},
			{"2", "", "y"},
		},
	)
	require.NoError(t, err)

	rowsDropped, colsDropped := table.DropBlank()

	assert.Equal(t, 1, rowsDropped)
	assert.Equal(t, 1, colsDropped)
	assert.Equal(t, 2, table.Rows())
	assert.Equal(t, []string{"A", "C"}, table.Headers())
	assert.Equal(t, []string{"2", "y"}, table.Row(1))
}

func TestTable_DropBlank_Empty(t *testing.T) {
	table, err := NewTable([]string{"A"}, [][]string{{""}, {" "}})
	require.NoError(t, err)

	table.DropBlank()

	assert.Equal(t, 0, table.Rows())
	assert.Equal(t, 0, table.Cols())
}
