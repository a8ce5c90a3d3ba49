package extractor_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tripfolio/internal/domain"
	"tripfolio/internal/extractor"
	"tripfolio/internal/port"
	"tripfolio/mocks"
)

func inputs(n int) []port.ExtractInput {
	out := make([]port.ExtractInput, n)
	for i := range out {
		out[i] = port.ExtractInput{
			Filename:    fmt.Sprintf("doc-%d.pdf", i),
			ContentType: "application/pdf",
			FileBytes:   []byte("%PDF-1.4"),
		}
	}
	return out
}

func extraction() *domain.ExtractionResult {
	return &domain.ExtractionResult{
		Flights: []domain.FlightRecord{{Date: "2026-06-15", FlightNumber: "AZ1782"}},
	}
}

func indexed(n int) []port.IndexedResult {
	out := make([]port.IndexedResult, n)
	for i := range out {
		out[i] = port.IndexedResult{Index: i, Result: extraction()}
	}
	return out
}

func TestDispatcher_SingleDocumentUsesSingleCall(t *testing.T) {
	ext := new(mocks.MockDocumentExtractor)
	ext.On("ExtractSingle", mock.Anything, mock.Anything).Return(extraction(), nil).Once()

	d := extractor.NewDispatcher(ext, 2)
	results, err := d.ProcessDocuments(context.Background(), inputs(1))

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 0, results[0].Index)
	assert.NoError(t, results[0].Err)
	ext.AssertExpectations(t)
	ext.AssertNotCalled(t, "ExtractBatch", mock.Anything, mock.Anything)
}

func TestDispatcher_FiveDocumentsMakeThreeBatchCalls(t *testing.T) {
	ext := new(mocks.MockDocumentExtractor)
	ext.On("ExtractBatch", mock.Anything, mock.MatchedBy(func(docs []port.ExtractInput) bool {
		return len(docs) == 2
	})).Return(indexed(2), nil).Twice()
	ext.On("ExtractBatch", mock.Anything, mock.MatchedBy(func(docs []port.ExtractInput) bool {
		return len(docs) == 1
	})).Return(indexed(1), nil).Once()

	d := extractor.NewDispatcher(ext, 2)
	results, err := d.ProcessDocuments(context.Background(), inputs(5))

	require.NoError(t, err)
	require.Len(t, results, 5)

	seen := map[int]bool{}
	for _, r := range results {
		assert.NoError(t, r.Err)
		seen[r.Index] = true
	}
	assert.Len(t, seen, 5)
	ext.AssertExpectations(t)
}

func TestDispatcher_BatchFailureFallsBackToSingles(t *testing.T) {
	ext := new(mocks.MockDocumentExtractor)
	ext.On("ExtractBatch", mock.Anything, mock.Anything).
		Return(nil, &extractor.TruncatedError{Provider: "claude"}).Once()
	ext.On("ExtractSingle", mock.Anything, mock.Anything).Return(extraction(), nil).Twice()

	d := extractor.NewDispatcher(ext, 2)
	results, err := d.ProcessDocuments(context.Background(), inputs(2))

	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.NoError(t, r.Err)
	}
	ext.AssertExpectations(t)
}

func TestDispatcher_OneFailedSingleDoesNotPoisonOthers(t *testing.T) {
	ext := new(mocks.MockDocumentExtractor)
	ext.On("ExtractBatch", mock.Anything, mock.Anything).
		Return(nil, errors.New("malformed response")).Once()
	ext.On("ExtractSingle", mock.Anything, mock.MatchedBy(func(d port.ExtractInput) bool {
		return d.Filename == "doc-0.pdf"
	})).Return(nil, errors.New("unreadable")).Once()
	ext.On("ExtractSingle", mock.Anything, mock.MatchedBy(func(d port.ExtractInput) bool {
		return d.Filename == "doc-1.pdf"
	})).Return(extraction(), nil).Once()

	d := extractor.NewDispatcher(ext, 2)
	results, err := d.ProcessDocuments(context.Background(), inputs(2))

	require.NoError(t, err)
	require.Len(t, results, 2)

	byIndex := map[int]extractor.DocumentResult{}
	for _, r := range results {
		byIndex[r.Index] = r
	}
	assert.Error(t, byIndex[0].Err)
	assert.NoError(t, byIndex[1].Err)
	ext.AssertExpectations(t)
}

func TestDispatcher_RateLimitAbortsWithoutFallback(t *testing.T) {
	ext := new(mocks.MockDocumentExtractor)
	rlErr := extractor.NewRateLimitError("claude", errors.New("429"), 30)
	ext.On("ExtractBatch", mock.Anything, mock.Anything).Return(nil, rlErr).Once()

	d := extractor.NewDispatcher(ext, 2)
	results, err := d.ProcessDocuments(context.Background(), inputs(4))

	require.Error(t, err)
	assert.Nil(t, results)

	var got *extractor.RateLimitError
	require.ErrorAs(t, err, &got)
	assert.Equal(t, rlErr.RetryAfter, got.RetryAfter)

	// No single-document fallback calls after a rate limit.
	ext.AssertNotCalled(t, "ExtractSingle", mock.Anything, mock.Anything)
}

func TestDispatcher_MissingBatchEntriesGetErrorResults(t *testing.T) {
	ext := new(mocks.MockDocumentExtractor)
	// Response covers only the first document of the pair.
	ext.On("ExtractBatch", mock.Anything, mock.Anything).Return(indexed(1), nil).Once()

	d := extractor.NewDispatcher(ext, 2)
	results, err := d.ProcessDocuments(context.Background(), inputs(2))

	require.NoError(t, err)
	require.Len(t, results, 2)

	byIndex := map[int]extractor.DocumentResult{}
	for _, r := range results {
		byIndex[r.Index] = r
	}
	assert.NoError(t, byIndex[0].Err)
	assert.Error(t, byIndex[1].Err)
}

func TestDispatcher_OutOfRangeBatchIndexDiscarded(t *testing.T) {
	ext := new(mocks.MockDocumentExtractor)
	ext.On("ExtractBatch", mock.Anything, mock.Anything).Return([]port.IndexedResult{
		{Index: 0, Result: extraction()},
		{Index: 7, Result: extraction()},
	}, nil).Once()

	d := extractor.NewDispatcher(ext, 2)
	results, err := d.ProcessDocuments(context.Background(), inputs(2))

	require.NoError(t, err)
	require.Len(t, results, 2)

	byIndex := map[int]extractor.DocumentResult{}
	for _, r := range results {
		byIndex[r.Index] = r
	}
	assert.NoError(t, byIndex[0].Err)
	assert.Error(t, byIndex[1].Err)
}
