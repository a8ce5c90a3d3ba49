package extractor

import (
	"encoding/json"
	"fmt"

	"tripfolio/internal/domain"
	"tripfolio/internal/port"
)

// DecodeSinglePayload parses the model's JSON output for a single-document call.
func DecodeSinglePayload(text string) (*domain.ExtractionResult, error) {
	var result domain.ExtractionResult
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, fmt.Errorf("parsing LLM JSON output: %w (raw: %s)", err, truncate(text, 500))
	}
	return &result, nil
}

// batchEnvelope models the indexed-array shape requested for batched calls.
type batchEnvelope struct {
	Documents []indexedPayload `json:"documents"`
}

type indexedPayload struct {
	Index int `json:"index"`
	domain.ExtractionResult
}

// DecodeBatchPayload parses the model's JSON output for a batched call into
// indexed per-document results. Defensive fallback: when the model ignores
// the envelope and returns a bare single object, it is treated as index 0.
func DecodeBatchPayload(text string, docCount int) ([]port.IndexedResult, error) {
	var envelope batchEnvelope
	if err := json.Unmarshal([]byte(text), &envelope); err != nil {
		return nil, fmt.Errorf("parsing LLM JSON output: %w (raw: %s)", err, truncate(text, 500))
	}

	if len(envelope.Documents) == 0 {
		single, err := DecodeSinglePayload(text)
		if err != nil {
			return nil, err
		}
		if len(single.Flights) == 0 && len(single.Hotels) == 0 {
			return nil, fmt.Errorf("batched response contained no indexed documents")
		}
		return []port.IndexedResult{{Index: 0, Result: single}}, nil
	}

	results := make([]port.IndexedResult, 0, len(envelope.Documents))
	for _, d := range envelope.Documents {
		if d.Index < 0 || d.Index >= docCount {
			return nil, fmt.Errorf("batched response index %d out of range for %d documents", d.Index, docCount)
		}
		result := d.ExtractionResult
		results = append(results, port.IndexedResult{Index: d.Index, Result: &result})
	}
	return results, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
