// Package http contains the HTTP transport layer: chi handlers for file
// analysis uploads and health checks. Handlers translate between the wire
// format and the services layer; all domain behavior lives below them.
package http
