package instrumentation

import "strings"

// Cardinality management helpers for metrics.
//
// Label values that originate from a language model or from configuration are
// not bounded. Always pass them through NormalizeLabel before recording.

// knownLabels bounds the values accepted for action and provider labels.
var knownLabels = map[string]bool{
	"create":    true,
	"update":    true,
	"delete":    true,
	"list":      true,
	"chat":      true,
	"ollama":    true,
	"openai":    true,
	"anthropic": true,
}

// NormalizeLabel lower-cases a label value and maps anything outside the known
// set to "other".
//
// Example:
//
//	NormalizeLabel("Create")     // "create"
//	NormalizeLabel("reschedule") // "other"
//	NormalizeLabel("")           // "unknown"
func NormalizeLabel(value string) string {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return "unknown"
	}
	if knownLabels[v] {
		return v
	}
	return "other"
}

// Common operation types for Google API metrics.
const (
	OperationList   = "list"
	OperationSearch = "search"
	OperationGet    = "get"
	OperationCreate = "create"
	OperationUpdate = "update"
	OperationDelete = "delete"
)
