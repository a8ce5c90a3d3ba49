package port

import (
	"context"

	"tripfolio/internal/domain"
)

// ExtractInput carries one document for an extraction call.
type ExtractInput struct {
	FileBytes   []byte
	ContentType string
	Filename    string
	Hint        domain.DocumentHint
}

// IndexedResult pairs an extraction result with the 0-based index of the
// document it was produced from, relative to the batch that was sent.
type IndexedResult struct {
	Index  int
	Result *domain.ExtractionResult
}

// DocumentExtractor abstracts the LLM document-understanding service.
// ExtractBatch asks for an indexed array of per-document results in one call;
// implementations must surface truncated output and rate limiting as typed
// errors so the dispatcher can pick a recovery path.
type DocumentExtractor interface {
	ExtractSingle(ctx context.Context, doc ExtractInput) (*domain.ExtractionResult, error)
	ExtractBatch(ctx context.Context, docs []ExtractInput) ([]IndexedResult, error)
}
