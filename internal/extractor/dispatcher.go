package extractor

import (
	"context"
	"errors"
	"fmt"
	"log"

	"tripfolio/internal/domain"
	"tripfolio/internal/port"
)

// DefaultBatchSize is the number of documents grouped into one batched call.
const DefaultBatchSize = 2

// DocumentResult is the dispatcher's per-document outcome. Index always
// refers to the document's 0-based position in the original input, even for
// results produced by a fallback call. Order of results is not guaranteed to
// match input order.
type DocumentResult struct {
	Index    int
	Filename string
	Result   *domain.ExtractionResult
	Err      error
}

// Dispatcher groups documents into extraction calls. A single document gets
// one single-document call; two or more are partitioned into fixed-size
// groups issued strictly sequentially to respect the provider's rate budget.
type Dispatcher struct {
	extractor port.DocumentExtractor
	batchSize int
}

// NewDispatcher creates a Dispatcher. batchSize <= 0 selects DefaultBatchSize.
func NewDispatcher(e port.DocumentExtractor, batchSize int) *Dispatcher {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Dispatcher{extractor: e, batchSize: batchSize}
}

// ProcessDocuments runs extraction for every document and returns one entry
// per input document. Per-document failures are recorded in the entry, not
// returned; only a rate limit aborts the whole run, propagating the typed
// error so the caller can surface a retry-after hint.
func (d *Dispatcher) ProcessDocuments(ctx context.Context, docs []port.ExtractInput) ([]DocumentResult, error) {
	if len(docs) == 0 {
		return nil, nil
	}

	if len(docs) == 1 {
		result, err := d.extractor.ExtractSingle(ctx, docs[0])
		if err != nil {
			if isRateLimit(err) {
				return nil, err
			}
			return []DocumentResult{{Index: 0, Filename: docs[0].Filename, Err: err}}, nil
		}
		return []DocumentResult{{Index: 0, Filename: docs[0].Filename, Result: result}}, nil
	}

	var out []DocumentResult
	for start := 0; start < len(docs); start += d.batchSize {
		end := start + d.batchSize
		if end > len(docs) {
			end = len(docs)
		}
		group := docs[start:end]

		results, err := d.processGroup(ctx, group, start)
		if err != nil {
			return nil, err
		}
		out = append(out, results...)
	}
	return out, nil
}

// processGroup issues one batched call for the group. On any batch-level
// failure other than rate limiting (transport error, truncated output,
// unparseable indexed shape) the whole group is re-issued as sequential
// single-document calls so no document is silently dropped.
func (d *Dispatcher) processGroup(ctx context.Context, group []port.ExtractInput, offset int) ([]DocumentResult, error) {
	indexed, err := d.extractor.ExtractBatch(ctx, group)
	if err != nil {
		if isRateLimit(err) {
			return nil, err
		}
		log.Printf("extractor.Dispatcher: batch of %d starting at document %d failed (%v), falling back to single calls", len(group), offset, err)
		return d.fallbackSingles(ctx, group, offset)
	}

	seen := make(map[int]bool, len(indexed))
	out := make([]DocumentResult, 0, len(group))
	for _, r := range indexed {
		if r.Index < 0 || r.Index >= len(group) || seen[r.Index] {
			log.Printf("extractor.Dispatcher: discarding batched result with bad index %d", r.Index)
			continue
		}
		seen[r.Index] = true
		out = append(out, DocumentResult{
			Index:    offset + r.Index,
			Filename: group[r.Index].Filename,
			Result:   r.Result,
		})
	}

	// Documents the batched response skipped still get an explicit entry.
	for i, doc := range group {
		if !seen[i] {
			out = append(out, DocumentResult{
				Index:    offset + i,
				Filename: doc.Filename,
				Err:      fmt.Errorf("batched response returned no result for document %d", offset+i),
			})
		}
	}
	return out, nil
}

func (d *Dispatcher) fallbackSingles(ctx context.Context, group []port.ExtractInput, offset int) ([]DocumentResult, error) {
	out := make([]DocumentResult, 0, len(group))
	for i, doc := range group {
		result, err := d.extractor.ExtractSingle(ctx, doc)
		if err != nil {
			if isRateLimit(err) {
				return nil, err
			}
			out = append(out, DocumentResult{Index: offset + i, Filename: doc.Filename, Err: err})
			continue
		}
		out = append(out, DocumentResult{Index: offset + i, Filename: doc.Filename, Result: result})
	}
	return out, nil
}

func isRateLimit(err error) bool {
	var rlErr *RateLimitError
	return errors.As(err, &rlErr)
}
