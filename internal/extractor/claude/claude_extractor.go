package claude

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"tripfolio/internal/config"
	"tripfolio/internal/domain"
	"tripfolio/internal/extractor"
	"tripfolio/internal/port"
)

const (
	apiURL     = "https://api.anthropic.com/v1/messages"
	apiVersion = "2023-06-01"
)

// Extractor implements port.DocumentExtractor using the Anthropic Messages API.
type Extractor struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewExtractor creates a Claude-based document extractor from a provider config.
func NewExtractor(cfg *config.ExtractorProviderConfig) *Extractor {
	return newExtractor(cfg, apiURL)
}

// NewExtractorWithEndpoint creates an extractor pointing at a custom API endpoint (for testing).
func NewExtractorWithEndpoint(cfg *config.ExtractorProviderConfig, endpoint string) *Extractor {
	return newExtractor(cfg, endpoint)
}

func newExtractor(cfg *config.ExtractorProviderConfig, endpoint string) *Extractor {
	model := cfg.DefaultModel
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Extractor{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (e *Extractor) ExtractSingle(ctx context.Context, doc port.ExtractInput) (*domain.ExtractionResult, error) {
	prompt := extractor.BuildSinglePrompt(doc.Hint)

	blocks, err := buildContentBlocks([]port.ExtractInput{doc}, prompt)
	if err != nil {
		return nil, err
	}

	text, err := e.complete(ctx, blocks)
	if err != nil {
		return nil, err
	}
	return extractor.DecodeSinglePayload(text)
}

func (e *Extractor) ExtractBatch(ctx context.Context, docs []port.ExtractInput) ([]port.IndexedResult, error) {
	hints := make([]domain.DocumentHint, len(docs))
	for i, d := range docs {
		hints[i] = d.Hint
	}
	prompt := extractor.BuildBatchPrompt(hints)

	blocks, err := buildContentBlocks(docs, prompt)
	if err != nil {
		return nil, err
	}

	text, err := e.complete(ctx, blocks)
	if err != nil {
		return nil, err
	}
	return extractor.DecodeBatchPayload(text, len(docs))
}

// complete issues one Messages API call and returns the first text block.
func (e *Extractor) complete(ctx context.Context, contentBlocks []map[string]interface{}) (string, error) {
	reqBody := map[string]interface{}{
		"model":      e.model,
		"max_tokens": 16384,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": contentBlocks,
			},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", e.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling anthropic API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("anthropic API error (status %d): %s", resp.StatusCode, string(respBody))
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := extractor.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return "", extractor.NewRateLimitError("claude", baseErr, retryAfter)
		}
		return "", baseErr
	}

	var parsed apiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("unmarshaling response: %w", err)
	}

	if len(parsed.Content) == 0 {
		return "", fmt.Errorf("empty response from API")
	}

	if parsed.StopReason == "max_tokens" {
		return "", &extractor.TruncatedError{Provider: "claude"}
	}

	return parsed.Content[0].Text, nil
}

func buildContentBlocks(docs []port.ExtractInput, prompt string) ([]map[string]interface{}, error) {
	var blocks []map[string]interface{}

	for _, doc := range docs {
		switch doc.ContentType {
		case "application/pdf":
			blocks = append(blocks, map[string]interface{}{
				"type": "document",
				"source": map[string]interface{}{
					"type":       "base64",
					"media_type": "application/pdf",
					"data":       base64.StdEncoding.EncodeToString(doc.FileBytes),
				},
			})
		case "message/rfc822", "text/plain":
			blocks = append(blocks, map[string]interface{}{
				"type": "text",
				"text": fmt.Sprintf("--- BEGIN DOCUMENT %s ---\n%s\n--- END DOCUMENT ---", doc.Filename, string(doc.FileBytes)),
			})
		default:
			return nil, fmt.Errorf("unsupported content type for extraction: %s", doc.ContentType)
		}
	}

	blocks = append(blocks, map[string]interface{}{
		"type": "text",
		"text": prompt,
	})

	return blocks, nil
}

// apiResponse models the Anthropic Messages API response.
type apiResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}
