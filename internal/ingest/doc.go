// Package ingest recovers a usable table from an uploaded tabular file of
// unknown, inconsistent formatting. It is a best-effort structure recovery
// pipeline, not a guaranteed-correct parse.
//
// # Architecture
//
// The pipeline is a chain of ordered fallback strategies, first success wins:
//
// 1. Decoder: routes by filename extension and turns bytes into text
// (trying UTF-8 then Latin-1) or into a spreadsheet table via excelize
// 2. Delimiter Prober: tries comma, semicolon, tab, pipe in order and
// accepts the first plausible parse
// 3. Headerless Fallback: re-parses comma-delimited with synthesized
// positional column names when no delimiter was plausible
// 4. Manual Tokenizer: last resort, splits lines by the best-scoring
// delimiter and drops malformed rows instead of failing
// 5. Column Cleaner: strips quotes and thousands separators, promoting
// columns to numeric when a majority of values coerce
//
// # Usage
//
//	pipeline := ingest.NewPipeline(logger)
//	result, err := pipeline.Ingest(ctx, fileBytes, "prices.csv")
//	if err != nil {
//	    // err is an *ingest.Error carrying a structured ErrorKind
//	}
//	table := result.Table
//
// Every call is independent: the pipeline holds no state between calls and
// may be shared across goroutines.
package ingest
