package ingest

import (
	"context"
	"log/slog"
)

// Strategy records which parsing strategy produced the recovered table.
type Strategy string

const (
	StrategySpreadsheet Strategy = "spreadsheet"
	StrategyDelimiter   Strategy = "delimiter"
	StrategyHeaderless  Strategy = "headerless"
	StrategyManual      Strategy = "manual"
)

// Result is the outcome of a successful ingestion call. The table is owned
// by the caller from here on; the pipeline retains nothing across calls.
type Result struct {
	Table    *Table
	Strategy Strategy
}

// Pipeline turns an uploaded byte buffer into a cleaned table. It is
// stateless per call and safe for concurrent use.
type Pipeline struct {
	logger *slog.Logger
}

// NewPipeline creates an ingestion pipeline.
func NewPipeline(logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{logger: logger}
}

// Ingest runs the full fallback chain: extension routing, decoding,
// structured delimiter probing, headerless re-parse, manual tokenization,
// blank cleanup, and column cleaning. The first strategy producing a
// plausible table wins; failures are terminal for the call and never
// accompanied by a partial table.
func (p *Pipeline) Ingest(ctx context.Context, raw []byte, filename string) (*Result, error) {
	ext := Extension(filename)

	var (
		table    *Table
		strategy Strategy
		err      error
	)
	switch ext {
	case "xlsx", "xls":
		table, err = DecodeSpreadsheet(raw)
		strategy = StrategySpreadsheet
	case "csv":
		table, strategy, err = p.parseDelimited(ctx, raw)
	default:
		return nil, newError(ErrUnsupportedFormat, "unsupported file format: %q", ext)
	}
	if err != nil {
		p.logger.WarnContext(ctx, "ingestion failed",
			slog.String("filename", filename),
			slog.String("extension", ext),
			slog.String("error", err.Error()))
		return nil, err
	}

	rowsDropped, colsDropped := table.DropBlank()
	if table.Rows() == 0 || table.Cols() == 0 {
		return nil, newError(ErrEmptyAfterCleanup, "file contains no usable data after removing blank rows and columns")
	}
	CleanColumns(table)

	p.logger.InfoContext(ctx, "ingestion complete",
		slog.String("filename", filename),
		slog.String("strategy", string(strategy)),
		slog.Int("rows", table.Rows()),
		slog.Int("columns", table.Cols()),
		slog.Int("blank_rows_dropped", rowsDropped),
		slog.Int("blank_columns_dropped", colsDropped))

	return &Result{Table: table, Strategy: strategy}, nil
}

// parseDelimited is the unified delimited-text chain: structured delimiter
// probe, then headerless re-parse, then the manual tokenizer. Historically
// two divergent variants existed with different fallback depths; this is
// their superset, ordered shallow to deep.
func (p *Pipeline) parseDelimited(ctx context.Context, raw []byte) (*Table, Strategy, error) {
	text, err := DecodeText(raw)
	if err != nil {
		return nil, "", err
	}

	table, ok, probeErr := Probe(text)
	if ok {
		return table, StrategyDelimiter, nil
	}
	if probeErr != nil {
		p.logger.DebugContext(ctx, "structured parse failed hard, using manual tokenizer",
			slog.String("error", probeErr.Error()))
		table, err := ManualParse(raw)
		if err != nil {
			return nil, "", err
		}
		return table, StrategyManual, nil
	}

	table, headerlessErr := ParseHeaderless(text)
	if headerlessErr == nil {
		return table, StrategyHeaderless, nil
	}

	table, err = ManualParse(raw)
	if err != nil {
		return nil, "", err
	}
	return table, StrategyManual, nil
}
