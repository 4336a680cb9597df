package assets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	openaiGenerateEndpoint = "https://api.openai.com/v1/images/generations"
	openaiHTTPTimeout      = 5 * time.Minute
)

var openaiHTTPClient = &http.Client{
	Timeout: openaiHTTPTimeout,
}

// OpenAIProvider resolves asset queries by generating an image with
// OpenAI's images API and returning the hosted URL.
type OpenAIProvider struct {
	apiKey string
	model  string
}

func NewOpenAIProvider(apiKey, model string) *OpenAIProvider {
	if model == "" {
		model = "dall-e-3"
	}
	return &OpenAIProvider{apiKey: apiKey, model: model}
}

func (p *OpenAIProvider) Name() string {
	return "OpenAI"
}

type openaiGenerateRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	ResponseFormat string `json:"response_format"`
}

type openaiGenerateResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (p *OpenAIProvider) Resolve(ctx context.Context, query string) (string, error) {
	genReq := openaiGenerateRequest{
		Model:          p.model,
		Prompt:         query,
		N:              1,
		Size:           "1024x1024",
		ResponseFormat: "url",
	}

	jsonBody, err := json.Marshal(genReq)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", openaiGenerateEndpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := openaiHTTPClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var genResp openaiGenerateResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if genResp.Error != nil {
			return "", fmt.Errorf("openai error: %s", genResp.Error.Message)
		}
		return "", fmt.Errorf("openai error: status %d", resp.StatusCode)
	}
	if len(genResp.Data) == 0 || genResp.Data[0].URL == "" {
		return "", fmt.Errorf("openai returned no image URL")
	}

	return genResp.Data[0].URL, nil
}
