// Package app wires configuration, logging, metrics, the analysis
// service, and the HTTP server into one Application with a run-until-
// interrupted lifecycle. main stays a thin shell around it.
package app
