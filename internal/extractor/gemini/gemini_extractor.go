package gemini

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

const apiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

// Extractor implements port.DocumentExtractor using Google's Gemini API.
type Extractor struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewExtractor creates a Gemini-based document extractor.
func NewExtractor(cfg *config.ExtractorProviderConfig) *Extractor {
	return newExtractor(cfg, "")
}

// NewExtractorWithEndpoint creates an extractor pointing at a custom API endpoint (for testing).
func NewExtractorWithEndpoint(cfg *config.ExtractorProviderConfig, endpoint string) *Extractor {
	return newExtractor(cfg, endpoint)
}

func newExtractor(cfg *config.ExtractorProviderConfig, endpoint string) *Extractor {
	model := cfg.DefaultModel
	if model == "" {
		model = "gemini-2.0-flash"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	if endpoint == "" {
		endpoint = fmt.Sprintf("%s/%s:generateContent", apiBaseURL, model)
	}
	return &Extractor{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (e *Extractor) ExtractSingle(ctx context.Context, doc port.ExtractInput) (*domain.ExtractionResult, error) {
	parts, err := buildParts([]port.ExtractInput{doc}, extractor.BuildSinglePrompt(doc.Hint))
	if err != nil {
		return nil, err
	}
	text, err := e.complete(ctx, parts)
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
	parts, err := buildParts(docs, extractor.BuildBatchPrompt(hints))
	if err != nil {
		return nil, err
	}
	text, err := e.complete(ctx, parts)
	if err != nil {
		return nil, err
	}
	return extractor.DecodeBatchPayload(text, len(docs))
}

func (e *Extractor) complete(ctx context.Context, parts []map[string]interface{}) (string, error) {
	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"role":  "user",
				"parts": parts,
			},
		},
		"generationConfig": map[string]interface{}{
			"responseMimeType": "application/json",
			"maxOutputTokens":  16384,
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
	req.Header.Set("x-goog-api-key", e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling gemini API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("gemini API error (status %d): %s", resp.StatusCode, string(respBody))
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := extractor.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return "", extractor.NewRateLimitError("gemini", baseErr, retryAfter)
		}
		return "", baseErr
	}

	var parsed geminiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("unmarshaling response: %w", err)
	}

	if len(parsed.Candidates) == 0 {
		return "", fmt.Errorf("empty response from API: no candidates")
	}

	candidate := parsed.Candidates[0]
	if candidate.FinishReason == "MAX_TOKENS" {
		return "", &extractor.TruncatedError{Provider: "gemini"}
	}
	if len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from API: no parts")
	}

	return candidate.Content.Parts[0].Text, nil
}

func buildParts(docs []port.ExtractInput, prompt string) ([]map[string]interface{}, error) {
	var parts []map[string]interface{}

	for _, doc := range docs {
		switch doc.ContentType {
		case "application/pdf":
			parts = append(parts, map[string]interface{}{
				"inline_data": map[string]interface{}{
					"mime_type": "application/pdf",
					"data":      base64.StdEncoding.EncodeToString(doc.FileBytes),
				},
			})
		case "message/rfc822", "text/plain":
			parts = append(parts, map[string]interface{}{
				"text": fmt.Sprintf("--- BEGIN DOCUMENT %s ---\n%s\n--- END DOCUMENT ---", doc.Filename, string(doc.FileBytes)),
			})
		default:
			return nil, fmt.Errorf("unsupported content type for extraction: %s", doc.ContentType)
		}
	}

	parts = append(parts, map[string]interface{}{"text": prompt})
	return parts, nil
}

// geminiResponse models the Gemini API response.
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
}
