package llm

import (
	"context"
	"net/http"
	"strings"
)

// Anthropic implements Provider over the Messages API. Unlike the
// chat-completions encoding, the system prompt rides as a top-level
// field rather than a message.
type Anthropic struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
}

const (
	defaultAnthropicBaseURL = "https://api.anthropic.com"
	anthropicVersion        = "2023-06-01"
)

// NewAnthropic creates the provider. An empty baseURL selects the
// public Anthropic endpoint.
func NewAnthropic(client *http.Client, apiKey, baseURL string) *Anthropic {
	if baseURL == "" {
		baseURL = defaultAnthropicBaseURL
	}
	return &Anthropic{httpClient: client, apiKey: apiKey, baseURL: baseURL}
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	Temperature float64            `json:"temperature"`
	MaxTokens   int                `json:"max_tokens"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (p *Anthropic) Generate(ctx context.Context, model, system, prompt string) (string, error) {
	wireRequest := anthropicRequest{
		Model:       model,
		System:      system,
		Temperature: temperature,
		MaxTokens:   maxOutputTokens,
		Messages: []anthropicMessage{
			{Role: "user", Content: prompt},
		},
	}

	var wireResponse anthropicResponse
	err := doJSONRequest(ctx, p.httpClient, "anthropic",
		p.baseURL+"/v1/messages",
		map[string]string{
			"x-api-key":         p.apiKey,
			"anthropic-version": anthropicVersion,
		},
		wireRequest, &wireResponse)
	if err != nil {
		return "", err
	}

	var out strings.Builder
	for _, block := range wireResponse.Content {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}
	return out.String(), nil
}
