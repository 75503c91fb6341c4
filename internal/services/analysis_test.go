package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabcast/internal/ingest"
)

func testService(t *testing.T) *AnalysisService {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return NewAnalysisService(logger, AnalysisConfig{
		BatchConcurrency: 2,
		Metrics:          NewMetrics(prometheus.NewRegistry()),
	})
}

const sampleCSV = "Date,Close\n2024-03-05,104.20\n2024-03-04,103.10\n2024-03-01,101.50\n"

func TestAnalysisService_Analyze(t *testing.T) {
	svc := testService(t)

	t.Run("full flow with forecasts", func(t *testing.T) {
		result, err := svc.Analyze(context.Background(), []byte(sampleCSV), "prices.csv", AnalyzeOptions{})
		require.NoError(t, err)

		assert.NotEmpty(t, result.ID)
		assert.Equal(t, string(ingest.StrategyDelimiter), result.Strategy)
		require.NotNil(t, result.Summary)
		assert.Equal(t, 3, result.Summary.Rows)

		require.NotNil(t, result.Summary.Price)
		assert.InDelta(t, 104.20, result.Summary.Price.Latest, 1e-9)

		require.Len(t, result.Forecasts, 3)
		assert.Equal(t, "short", result.Forecasts[0].Horizon)
		assert.Len(t, result.Forecasts[0].Points, 7)
		// Forecast dates pick up after the latest observed date.
		assert.Equal(t, "2024-03-06", result.Forecasts[0].Points[0].Date)
	})

	t.Run("ingest failure surfaces the ingest error", func(t *testing.T) {
		_, err := svc.Analyze(context.Background(), []byte("a,b\n1,2\n"), "report.parquet", AnalyzeOptions{})
		require.Error(t, err)
		assert.Equal(t, ingest.ErrUnsupportedFormat, ingest.KindOf(err))
	})

	t.Run("price column override", func(t *testing.T) {
		raw := "Date,Close,Volume\n2024-03-05,104.20,9000\n2024-03-04,103.10,8000\n"
		result, err := svc.Analyze(context.Background(), []byte(raw), "prices.csv", AnalyzeOptions{PriceColumn: "Volume"})
		require.NoError(t, err)

		require.NotNil(t, result.Summary.Schema.Price)
		assert.Equal(t, "Volume", result.Summary.Schema.Price.Name)
		assert.Equal(t, "override", string(result.Summary.Schema.Price.Provenance))
		require.NotNil(t, result.Summary.Price)
		assert.InDelta(t, 9000, result.Summary.Price.Latest, 1e-9)
	})

	t.Run("unknown override column", func(t *testing.T) {
		_, err := svc.Analyze(context.Background(), []byte(sampleCSV), "prices.csv", AnalyzeOptions{PriceColumn: "Nope"})
		require.Error(t, err)
		var unknown *UnknownColumnError
		require.ErrorAs(t, err, &unknown)
		assert.Equal(t, "Nope", unknown.Name)
	})

	t.Run("no price column means no forecasts", func(t *testing.T) {
		raw := "Name,Comment\nAlice,fine\nBob,ok\n"
		result, err := svc.Analyze(context.Background(), []byte(raw), "notes.csv", AnalyzeOptions{})
		require.NoError(t, err)
		assert.Nil(t, result.Summary.Price)
		assert.Empty(t, result.Forecasts)
	})
}

func TestAnalysisService_AnalyzeBatch(t *testing.T) {
	svc := testService(t)

	files := []UploadFile{
		{Name: "good.csv", Data: []byte(sampleCSV)},
		{Name: "bad.parquet", Data: []byte("x")},
		{Name: "empty.csv", Data: nil},
	}

	items := svc.AnalyzeBatch(context.Background(), files, AnalyzeOptions{})
	require.Len(t, items, 3)

	// Order follows the input regardless of completion order.
	assert.Equal(t, "good.csv", items[0].Filename)
	require.NotNil(t, items[0].Result)
	assert.Empty(t, items[0].Error)

	assert.Equal(t, "bad.parquet", items[1].Filename)
	assert.Nil(t, items[1].Result)
	assert.NotEmpty(t, items[1].Error)

	assert.Equal(t, "empty.csv", items[2].Filename)
	assert.Nil(t, items[2].Result)
	assert.NotEmpty(t, items[2].Error)
}
