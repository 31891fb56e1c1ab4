package llm

import (
	"context"
	"net/http"
)

// OpenAI implements Provider over the Chat Completions wire format.
// The same encoding serves any compatible endpoint (Azure OpenAI,
// OpenRouter, vLLM, Ollama) via a custom base URL.
type OpenAI struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
}

const defaultOpenAIBaseURL = "https://api.openai.com"

// NewOpenAI creates the provider. An empty baseURL selects the public
// OpenAI endpoint.
func NewOpenAI(client *http.Client, apiKey, baseURL string) *OpenAI {
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	return &OpenAI{httpClient: client, apiKey: apiKey, baseURL: baseURL}
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiRequest struct {
	Model       string          `json:"model"`
	Messages    []openaiMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens"`
}

type openaiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (p *OpenAI) Generate(ctx context.Context, model, system, prompt string) (string, error) {
	wireRequest := openaiRequest{
		Model:       model,
		Temperature: temperature,
		MaxTokens:   maxOutputTokens,
		Messages: []openaiMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
	}

	var wireResponse openaiResponse
	err := doJSONRequest(ctx, p.httpClient, "openai",
		p.baseURL+"/v1/chat/completions",
		map[string]string{"Authorization": "Bearer " + p.apiKey},
		wireRequest, &wireResponse)
	if err != nil {
		return "", err
	}

	if len(wireResponse.Choices) == 0 {
		return "", nil
	}
	return wireResponse.Choices[0].Message.Content, nil
}
