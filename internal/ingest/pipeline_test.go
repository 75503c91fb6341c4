package ingest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestPipeline_Ingest_QuotedCSVWithBOM(t *testing.T) {
	raw := append([]byte{0xEF, 0xBB, 0xBF},
		[]byte("\"Date\",\"Price\"\n\"07/09/2025\",\"3,312.14\"\n\"07/08/2025\",\"3,300.00\"\n")...)

	result, err := NewPipeline(nil).Ingest(context.Background(), raw, "prices.csv")
	require.NoError(t, err)

	table := result.Table
	assert.Equal(t, StrategyDelimiter, result.Strategy)
	assert.Equal(t, 2, table.Rows())
	assert.Equal(t, 2, table.Cols())

	price, ok := table.Column("Price")
	require.True(t, ok)
	assert.Equal(t, KindNumeric, price.Kind)
	assert.Equal(t, []float64{3312.14, 3300.00}, price.NumericValues())

	date, ok := table.Column("Date")
	require.True(t, ok)
	assert.Equal(t, KindText, date.Kind)
}

func TestPipeline_Ingest_EmptyBuffer(t *testing.T) {
	// An empty byte buffer must be a terminal error for every extension,
	// never a zero-row success.
	tests := []struct {
		filename string
	}{
		{"empty.csv"},
		{"empty.xlsx"},
		{"empty.xls"},
		{"empty.pdf"},
		{"empty"},
	}

	p := NewPipeline(nil)
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			result, err := p.Ingest(context.Background(), nil, tt.filename)
			require.Error(t, err)
			assert.Nil(t, result)
		})
	}
}

func TestPipeline_Ingest_UnsupportedFormat(t *testing.T) {
	_, err := NewPipeline(nil).Ingest(context.Background(), []byte("a,b\n1,2\n"), "prices.parquet")
	require.Error(t, err)
	assert.Equal(t, ErrUnsupportedFormat, KindOf(err))
	assert.Contains(t, err.Error(), "parquet")
}

func TestPipeline_Ingest_HeaderlessFallback(t *testing.T) {
	// No delimiter splits line one, but comma splits the rest: the probe
	// rejects every candidate and the headerless re-parse recovers it.
	raw := []byte("somebanner\nx,1\ny,2\n")

	result, err := NewPipeline(nil).Ingest(context.Background(), raw, "data.csv")
	require.NoError(t, err)
	assert.Equal(t, StrategyHeaderless, result.Strategy)
	assert.Equal(t, 3, result.Table.Rows())
	assert.Equal(t, 2, result.Table.Cols())
	assert.Equal(t, []string{"Column_1", "Column_2"}, result.Table.Headers())
}

func TestPipeline_Ingest_ManualFallback(t *testing.T) {
	// A bare quote mid-field is a hard failure for the structured parser,
	// which routes the pipeline to the manual tokenizer. The tokenizer
	// splits naively and keeps every row with the right field count.
	raw := []byte("date,close\n2025-07-09,3312.14\nbad\"row,99\n")

	result, err := NewPipeline(nil).Ingest(context.Background(), raw, "data.csv")
	require.NoError(t, err)
	assert.Equal(t, StrategyManual, result.Strategy)
	assert.Equal(t, 2, result.Table.Cols())
	assert.Equal(t, 2, result.Table.Rows())
}

func TestPipeline_Ingest_BlankCleanup(t *testing.T) {
	t.Run("blank rows and columns removed", func(t *testing.T) {
		raw := []byte("Date,Price,Empty\n2025-07-09,3312.14,\n,,\n2025-07-08,3300.00,\n")

		result, err := NewPipeline(nil).Ingest(context.Background(), raw, "data.csv")
		require.NoError(t, err)
		assert.Equal(t, 2, result.Table.Rows())
		assert.Equal(t, []string{"Date", "Price"}, result.Table.Headers())
	})

	t.Run("table empty after cleanup fails", func(t *testing.T) {
		raw := []byte("A,B\n,\n,\n")

		_, err := NewPipeline(nil).Ingest(context.Background(), raw, "data.csv")
		require.Error(t, err)
		assert.Equal(t, ErrEmptyAfterCleanup, KindOf(err))
	})
}

func TestPipeline_Ingest_Spreadsheet(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Date", "Close"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"2025-07-09", "3,312.14"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]any{"2025-07-08", "3,300.00"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	result, err := NewPipeline(nil).Ingest(context.Background(), buf.Bytes(), "report.xlsx")
	require.NoError(t, err)
	assert.Equal(t, StrategySpreadsheet, result.Strategy)

	closeCol, ok := result.Table.Column("Close")
	require.True(t, ok)
	assert.Equal(t, KindNumeric, closeCol.Kind)
}
