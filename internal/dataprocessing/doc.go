// Package dataprocessing turns a recovered table into meaning: it guesses
// which column holds the price series and which holds dates, and builds the
// Summary artifact the forecast layer and the upload UI consume.
//
// # Components
//
// 1. Schema Inferencer: keyword match on headers first, value-type
// heuristics second, with a provenance tag on every pick
// 2. Summarizer: row/column counts, per-column kinds, a short row sample,
// and price/date statistics, each independently optional
//
// The price "latest" value comes from the first row of the table, not the
// last. Uploads are assumed sorted descending by date; see PriceStats.
package dataprocessing
