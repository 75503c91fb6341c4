package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"tabcast/internal/config"
	"tabcast/internal/infrastructure"
	"tabcast/internal/services"
)

func main() {
	inFile := flag.String("in", "", "path to the CSV or Excel file to analyze")
	priceColumn := flag.String("price-column", "", "override the inferred price column")
	dateColumn := flag.String("date-column", "", "override the inferred date column")
	pretty := flag.Bool("pretty", true, "indent the JSON output")
	flag.Parse()

	if *inFile == "" {
		fmt.Fprintln(os.Stderr, "usage: analyze -in <file> [-price-column NAME] [-date-column NAME]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	// Logs go to stderr so the JSON result owns stdout.
	cfg.Logging.Output = "stderr"
	logger, err := infrastructure.NewLogger(cfg.Logging)
	if err != nil {
		slog.Error("Failed to create logger", "error", err)
		os.Exit(1)
	}

	raw, err := os.ReadFile(*inFile)
	if err != nil {
		logger.Error("Failed to read input file", "path", *inFile, "error", err)
		os.Exit(1)
	}

	svc := services.NewAnalysisService(logger, services.AnalysisConfig{
		BatchConcurrency: cfg.Upload.BatchConcurrency,
	})

	result, err := svc.Analyze(context.Background(), raw, filepath.Base(*inFile), services.AnalyzeOptions{
		PriceColumn: *priceColumn,
		DateColumn:  *dateColumn,
	})
	if err != nil {
		logger.Error("Analysis failed", "path", *inFile, "error", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	if *pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(result); err != nil {
		logger.Error("Failed to encode result", "error", err)
		os.Exit(1)
	}
}
