// Package fetch retrieves the raw pci.ids file from a remote mirror.
//
// Retrieval is a plain HTTP GET against the configured URL, context-aware
// and performed with a caller-supplied or default http.Client. An optional
// Redis-backed byte cache can sit in front of the mirror so that fleets of
// processes reloading the same catalog do not hammer it; cache failures
// degrade to a direct fetch and never fail a reload on their own.
package fetch
