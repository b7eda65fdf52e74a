package action

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Outcome reports which normalization path produced a record.
type Outcome string

const (
	// OutcomeParsed means the whole input was a valid record.
	OutcomeParsed Outcome = "parsed"
	// OutcomeExtracted means a valid record was found embedded in prose.
	OutcomeExtracted Outcome = "extracted"
	// OutcomeFallback means no valid record was found.
	OutcomeFallback Outcome = "fallback"
)

// EmptyReply is the reply used when the model returned nothing usable.
const EmptyReply = "(no response from model)"

const recordSchema = `{
  "type": "object",
  "required": ["action"],
  "properties": {
    "action":     {"type": "string", "enum": ["create", "update", "delete", "list", "chat"]},
    "summary":    {"type": ["string", "null"]},
    "start_time": {"type": ["string", "null"]},
    "end_time":   {"type": ["string", "null"]},
    "reply":      {"type": "string"}
  }
}`

// Result is the output of Normalize.
type Result struct {
	Record  Record
	Outcome Outcome
	// Err describes why the parsed and extracted paths were rejected.
	// It is nil unless Outcome is OutcomeFallback.
	Err error
}

// Normalizer validates model output against the action record schema.
type Normalizer struct {
	schema *gojsonschema.Schema
}

// NewNormalizer compiles the record schema.
func NewNormalizer() (*Normalizer, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(recordSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to compile action schema: %w", err)
	}
	return &Normalizer{schema: schema}, nil
}

// Normalize turns raw model output into a record. It never fails: input that
// does not contain a valid record yields a chat record with the original text
// as its reply.
func (n *Normalizer) Normalize(raw string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = fallback(raw, fmt.Errorf("normalizer panic: %v", r))
		}
	}()

	rec, err := n.decode(raw)
	if err == nil {
		return Result{Record: rec, Outcome: OutcomeParsed}
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return fallback(raw, err)
	}

	rec, extractErr := n.decode(raw[start : end+1])
	if extractErr != nil {
		return fallback(raw, extractErr)
	}
	return Result{Record: rec, Outcome: OutcomeExtracted}
}

func (n *Normalizer) decode(text string) (Record, error) {
	var doc map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &doc); err != nil {
		return Record{}, fmt.Errorf("not a JSON object: %w", err)
	}

	// Models sometimes capitalize the action.
	if a, ok := doc["action"].(string); ok {
		doc["action"] = strings.ToLower(strings.TrimSpace(a))
	}

	result, err := n.schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return Record{}, fmt.Errorf("schema validation failed: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return Record{}, fmt.Errorf("schema validation errors: %s", strings.Join(msgs, "; "))
	}

	rec := Record{
		Action:    Kind(doc["action"].(string)),
		Summary:   stringField(doc, "summary"),
		StartTime: stringField(doc, "start_time"),
		EndTime:   stringField(doc, "end_time"),
		Reply:     stringField(doc, "reply"),
	}
	if err := rec.Validate(); err != nil {
		return Record{}, fmt.Errorf("invalid %s record: %w", rec.Action, err)
	}
	return rec, nil
}

func stringField(doc map[string]any, key string) string {
	s, _ := doc[key].(string)
	return s
}

func fallback(raw string, err error) Result {
	reply := raw
	if strings.TrimSpace(reply) == "" {
		reply = EmptyReply
	}
	return Result{Record: Chat(reply), Outcome: OutcomeFallback, Err: err}
}

var defaultNormalizer = mustNormalizer()

func mustNormalizer() *Normalizer {
	n, err := NewNormalizer()
	if err != nil {
		panic(err)
	}
	return n
}

// Normalize runs raw through the package's default normalizer.
func Normalize(raw string) Result {
	return defaultNormalizer.Normalize(raw)
}
