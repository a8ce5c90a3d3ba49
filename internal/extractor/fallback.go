package extractor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"tripfolio/internal/domain"
	"tripfolio/internal/port"
)

// circuitState tracks rate-limit backoff for a single extractor.
type circuitState struct {
	mu      sync.RWMutex
	resetAt time.Time // zero value = closed (healthy)
}

func (c *circuitState) isOpenWithReset(now time.Time) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resetAt, !c.resetAt.IsZero() && now.Before(c.resetAt)
}

func (c *circuitState) open(resetAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetAt = resetAt
}

// FallbackExtractor tries extractors in order, skipping those with open circuits.
// It implements port.DocumentExtractor.
type FallbackExtractor struct {
	extractors []port.DocumentExtractor
	circuits   []*circuitState
	names      []string
}

// NewFallbackExtractor creates a FallbackExtractor from an ordered list of extractors and their names.
func NewFallbackExtractor(extractors []port.DocumentExtractor, names []string) *FallbackExtractor {
	circuits := make([]*circuitState, len(extractors))
	for i := range circuits {
		circuits[i] = &circuitState{}
	}
	return &FallbackExtractor{
		extractors: extractors,
		circuits:   circuits,
		names:      names,
	}
}

func (f *FallbackExtractor) ExtractSingle(ctx context.Context, doc port.ExtractInput) (*domain.ExtractionResult, error) {
	var out *domain.ExtractionResult
	err := f.attempt(ctx, func(e port.DocumentExtractor) error {
		result, err := e.ExtractSingle(ctx, doc)
		if err != nil {
			return err
		}
		out = result
		return nil
	})
	return out, err
}

func (f *FallbackExtractor) ExtractBatch(ctx context.Context, docs []port.ExtractInput) ([]port.IndexedResult, error) {
	var out []port.IndexedResult
	err := f.attempt(ctx, func(e port.DocumentExtractor) error {
		results, err := e.ExtractBatch(ctx, docs)
		if err != nil {
			return err
		}
		out = results
		return nil
	})
	return out, err
}

// attempt runs call against each extractor in order until one succeeds,
// opening a circuit for any extractor that reports a rate limit.
func (f *FallbackExtractor) attempt(ctx context.Context, call func(port.DocumentExtractor) error) error {
	now := time.Now()
	var lastErr error
	allRateLimited := true
	var earliestReset time.Time

	for i, e := range f.extractors {
		if resetAt, open := f.circuits[i].isOpenWithReset(now); open {
			log.Printf("extractor.FallbackExtractor: skipping %s (circuit open until %s)", f.names[i], resetAt.Format(time.RFC3339))
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
			continue
		}

		err := call(e)
		if err == nil {
			return nil
		}

		log.Printf("extractor.FallbackExtractor: %s failed: %v", f.names[i], err)
		lastErr = err

		var rlErr *RateLimitError
		if errors.As(err, &rlErr) {
			resetAt := now.Add(rlErr.RetryAfter)
			f.circuits[i].open(resetAt)
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
		} else {
			allRateLimited = false
		}
	}

	if lastErr == nil || allRateLimited {
		// Every extractor was rate limited or skipped on an open circuit.
		retryAfter := time.Until(earliestReset)
		if retryAfter < 0 {
			retryAfter = time.Second
		}
		return NewRateLimitError("all", fmt.Errorf("all extractors rate limited"), int(retryAfter.Seconds()))
	}

	return fmt.Errorf("all extractors failed: %w", lastErr)
}
