package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"tabcast/internal/dataprocessing"
	"tabcast/internal/forecast"
	"tabcast/internal/ingest"
)

// AnalysisService runs the full upload workflow: ingestion, schema
// inference, summary, and synthetic forecasts. Stateless per call; safe
// for concurrent use.
type AnalysisService struct {
	logger     *slog.Logger
	pipeline   *ingest.Pipeline
	summarizer *dataprocessing.Summarizer
	forecaster *forecast.Generator

	metrics          *Metrics
	batchConcurrency int
}

// AnalysisConfig holds service construction options.
type AnalysisConfig struct {
	Horizons         []forecast.Horizon
	BatchConcurrency int
	Metrics          *Metrics
}

// NewAnalysisService wires the pipeline, summarizer, and forecaster.
func NewAnalysisService(logger *slog.Logger, cfg AnalysisConfig) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BatchConcurrency <= 0 {
		cfg.BatchConcurrency = 4
	}
	return &AnalysisService{
		logger:           logger,
		pipeline:         ingest.NewPipeline(logger),
		summarizer:       dataprocessing.NewSummarizer(logger, dataprocessing.DefaultSummarizerConfig()),
		forecaster:       forecast.NewGenerator(logger, cfg.Horizons, nil),
		metrics:          cfg.Metrics,
		batchConcurrency: cfg.BatchConcurrency,
	}
}

// AnalyzeOptions are the caller's overrides for schema inference: the
// forecast consumer may name the price column explicitly, and optionally
// the date column, instead of trusting the guess.
type AnalyzeOptions struct {
	PriceColumn string `validate:"omitempty,max=128"`
	DateColumn  string `validate:"omitempty,max=128"`
}

// AnalysisResult is the artifact handed back to the upload caller.
type AnalysisResult struct {
	ID        string                  `json:"id"`
	Strategy  string                  `json:"strategy"`
	Summary   *dataprocessing.Summary `json:"summary"`
	Forecasts []forecast.Series       `json:"forecasts,omitempty"`
}

// Analyze ingests one uploaded file and builds its summary and forecasts.
// The returned error is an *ingest.Error for payload problems, or an
// UnknownColumnError when an override names a column the table lacks.
func (s *AnalysisService) Analyze(ctx context.Context, raw []byte, filename string, opts AnalyzeOptions) (*AnalysisResult, error) {
	start := time.Now()

	result, err := s.pipeline.Ingest(ctx, raw, filename)
	if err != nil {
		s.metrics.observe("error", "", time.Since(start).Seconds())
		return nil, err
	}
	table := result.Table

	schema := dataprocessing.InferSchema(table)
	if err := applyOverrides(table, &schema, opts); err != nil {
		s.metrics.observe("error", string(result.Strategy), time.Since(start).Seconds())
		return nil, err
	}

	summary := s.summarizer.Build(ctx, table, schema, filename)
	summary.Strategy = string(result.Strategy)

	analysis := &AnalysisResult{
		ID:       uuid.New().String(),
		Strategy: string(result.Strategy),
		Summary:  summary,
	}

	if summary.Price != nil {
		prices := priceSeries(table, schema)
		lastDate := latestDate(summary)
		series, err := s.forecaster.Generate(ctx, prices, lastDate)
		if err != nil {
			// Forecasts are presentation-layer noise; their failure never
			// fails the ingestion result.
			s.logger.WarnContext(ctx, "forecast generation failed",
				slog.String("filename", filename),
				slog.String("error", err.Error()))
		} else {
			analysis.Forecasts = series
		}
	}

	s.metrics.observe("success", string(result.Strategy), time.Since(start).Seconds())
	return analysis, nil
}

// UploadFile is one file of a batch request.
type UploadFile struct {
	Name string
	Data []byte
}

// BatchItem is the per-file outcome of a batch analysis. Failures are
// reported in place; one bad file never fails the batch.
type BatchItem struct {
	Filename string          `json:"filename"`
	Result   *AnalysisResult `json:"result,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// AnalyzeBatch runs Analyze over several files concurrently, bounded by
// the configured concurrency. Results keep the input order.
func (s *AnalysisService) AnalyzeBatch(ctx context.Context, files []UploadFile, opts AnalyzeOptions) []BatchItem {
	items := make([]BatchItem, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.batchConcurrency)
	for i, f := range files {
		g.Go(func() error {
			items[i].Filename = f.Name
			result, err := s.Analyze(ctx, f.Data, f.Name, opts)
			if err != nil {
				items[i].Error = err.Error()
				return nil
			}
			items[i].Result = result
			return nil
		})
	}
	g.Wait()

	return items
}

// UnknownColumnError reports a schema override naming a missing column.
type UnknownColumnError struct {
	Role string
	Name string
}

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("no column named %q for %s override", e.Name, e.Role)
}

// applyOverrides rebinds the schema roles to caller-named columns.
func applyOverrides(t *ingest.Table, schema *dataprocessing.SchemaGuess, opts AnalyzeOptions) error {
	if opts.PriceColumn != "" {
		ref, err := refByName(t, "price", opts.PriceColumn)
		if err != nil {
			return err
		}
		schema.Price = ref
	}
	if opts.DateColumn != "" {
		ref, err := refByName(t, "date", opts.DateColumn)
		if err != nil {
			return err
		}
		schema.Date = ref
	}
	return nil
}

func refByName(t *ingest.Table, role, name string) (*dataprocessing.ColumnRef, error) {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &dataprocessing.ColumnRef{
				Index:      i,
				Name:       name,
				Provenance: dataprocessing.ProvenanceOverride,
			}, nil
		}
	}
	return nil, &UnknownColumnError{Role: role, Name: name}
}

// priceSeries extracts the price values most-recent-first, matching the
// summary's first-row-is-latest convention.
func priceSeries(t *ingest.Table, schema dataprocessing.SchemaGuess) []float64 {
	col := &t.Columns[schema.Price.Index]
	if values := col.NumericValues(); values != nil {
		return values
	}
	var out []float64
	for i := range col.Values {
		if f, ok := ingest.CoerceNumeric(col.Values[i]); ok {
			out = append(out, f)
		}
	}
	return out
}

// latestDate pulls the most recent observed date from the summary, when
// one exists, so forecast dates start right after the data ends.
func latestDate(summary *dataprocessing.Summary) time.Time {
	if summary.Dates == nil {
		return time.Time{}
	}
	if ts, ok := dataprocessing.ParseDate(summary.Dates.Latest); ok {
		return ts
	}
	return time.Time{}
}
