package extractor_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tripfolio/internal/extractor"
	"tripfolio/internal/port"
	"tripfolio/mocks"
)

func TestFallbackExtractor_PrimarySucceeds(t *testing.T) {
	primary := new(mocks.MockDocumentExtractor)
	secondary := new(mocks.MockDocumentExtractor)
	primary.On("ExtractSingle", mock.Anything, mock.Anything).Return(extraction(), nil).Once()

	f := extractor.NewFallbackExtractor(
		[]port.DocumentExtractor{primary, secondary},
		[]string{"claude", "gemini"},
	)

	result, err := f.ExtractSingle(context.Background(), inputs(1)[0])

	require.NoError(t, err)
	assert.NotNil(t, result)
	secondary.AssertNotCalled(t, "ExtractSingle", mock.Anything, mock.Anything)
}

func TestFallbackExtractor_RateLimitedPrimaryFallsThrough(t *testing.T) {
	primary := new(mocks.MockDocumentExtractor)
	secondary := new(mocks.MockDocumentExtractor)
	primary.On("ExtractSingle", mock.Anything, mock.Anything).
		Return(nil, extractor.NewRateLimitError("claude", errors.New("429"), 60)).Once()
	secondary.On("ExtractSingle", mock.Anything, mock.Anything).Return(extraction(), nil).Twice()

	f := extractor.NewFallbackExtractor(
		[]port.DocumentExtractor{primary, secondary},
		[]string{"claude", "gemini"},
	)

	// First call opens the primary's circuit; the second must skip it entirely.
	for i := 0; i < 2; i++ {
		result, err := f.ExtractSingle(context.Background(), inputs(1)[0])
		require.NoError(t, err)
		assert.NotNil(t, result)
	}

	primary.AssertNumberOfCalls(t, "ExtractSingle", 1)
	secondary.AssertNumberOfCalls(t, "ExtractSingle", 2)
}

func TestFallbackExtractor_AllRateLimitedReturnsRateLimit(t *testing.T) {
	primary := new(mocks.MockDocumentExtractor)
	secondary := new(mocks.MockDocumentExtractor)
	primary.On("ExtractBatch", mock.Anything, mock.Anything).
		Return(nil, extractor.NewRateLimitError("claude", errors.New("429"), 30)).Once()
	secondary.On("ExtractBatch", mock.Anything, mock.Anything).
		Return(nil, extractor.NewRateLimitError("gemini", errors.New("429"), 90)).Once()

	f := extractor.NewFallbackExtractor(
		[]port.DocumentExtractor{primary, secondary},
		[]string{"claude", "gemini"},
	)

	_, err := f.ExtractBatch(context.Background(), inputs(2))

	var rlErr *extractor.RateLimitError
	require.ErrorAs(t, err, &rlErr)
	// Retry hint points at the earliest circuit reset.
	assert.LessOrEqual(t, int(rlErr.RetryAfter.Seconds()), 30)
}

func TestFallbackExtractor_NonRateLimitErrorsWrapLast(t *testing.T) {
	primary := new(mocks.MockDocumentExtractor)
	secondary := new(mocks.MockDocumentExtractor)
	primary.On("ExtractSingle", mock.Anything, mock.Anything).
		Return(nil, errors.New("bad json")).Once()
	lastErr := errors.New("upstream 500")
	secondary.On("ExtractSingle", mock.Anything, mock.Anything).Return(nil, lastErr).Once()

	f := extractor.NewFallbackExtractor(
		[]port.DocumentExtractor{primary, secondary},
		[]string{"claude", "gemini"},
	)

	_, err := f.ExtractSingle(context.Background(), inputs(1)[0])

	require.Error(t, err)
	assert.ErrorIs(t, err, lastErr)

	var rlErr *extractor.RateLimitError
	assert.False(t, errors.As(err, &rlErr))
}
