package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"streamverse/internal/upstream"
	"streamverse/models"
)

const (
	geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	geminiModel   = "gemma-3n-e4b-it"
)

// geminiClient is a minimal generateContent client.
type geminiClient struct {
	apiKey  string
	baseURL string
	httpc   *http.Client

	// limiter spaces outbound calls; the upstream free tier throttles hard.
	limiter *rate.Limiter
}

func newGeminiClient(apiKey, baseURL string, httpc *http.Client) *geminiClient {
	if httpc == nil {
		httpc = &http.Client{Timeout: 30 * time.Second}
	}
	if baseURL == "" {
		baseURL = geminiBaseURL
	}
	return &geminiClient{
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpc:   httpc,
		limiter: rate.NewLimiter(rate.Every(200*time.Millisecond), 1),
	}
}

func (c *geminiClient) isConfigured() bool {
	return c.apiKey != ""
}

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error,omitempty"`
}

// generateReply sends the system prompt, bounded history and user message to
// the model and returns the reply text.
func (c *geminiClient) generateReply(ctx context.Context, system string, history []models.ChatMessage, message string) (string, error) {
	if !c.isConfigured() {
		return "", errors.New("gemini api key not configured")
	}

	contents := make([]geminiContent, 0, len(history)+2)
	contents = append(contents, geminiContent{Role: "user", Parts: []geminiPart{{Text: system}}})
	for _, msg := range history {
		role := "user"
		if msg.Role == "assistant" {
			role = "model"
		}
		contents = append(contents, geminiContent{Role: role, Parts: []geminiPart{{Text: msg.Content}}})
	}
	contents = append(contents, geminiContent{Role: "user", Parts: []geminiPart{{Text: message}}})

	reqBody := geminiRequest{
		Contents: contents,
		GenerationConfig: &geminiGenerationConfig{
			Temperature:     0.7,
			MaxOutputTokens: 1024,
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal gemini request: %w", err)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, geminiModel, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("create gemini request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", upstream.FromTransport("gemini chat", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", upstream.FromStatus("gemini chat", resp.StatusCode)
	}

	var geminiResp geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&geminiResp); err != nil {
		return "", fmt.Errorf("decode gemini response: %w", err)
	}
	if geminiResp.Error != nil {
		return "", upstream.FromStatus("gemini chat", geminiResp.Error.Code)
	}
	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("gemini returned empty response")
	}

	return cleanReply(geminiResp.Candidates[0].Content.Parts[0].Text), nil
}

// cleanReply strips a markdown code fence the model sometimes wraps around
// its answer.
func cleanReply(text string) string {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}
