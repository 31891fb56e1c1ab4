package llm

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// Gemini implements Provider on the official genai SDK. It is the one
// provider whose responses can signal a safety block; in that case
// Generate returns an empty string (no error) and the normalizer's
// fallback stub takes over.
type Gemini struct {
	client *genai.Client
}

func NewGemini(ctx context.Context, apiKey string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("llm/gemini: creating client: %w", err)
	}
	return &Gemini{client: client}, nil
}

func (p *Gemini) Generate(ctx context.Context, model, system, prompt string) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr[float32](temperature),
		MaxOutputTokens:   maxOutputTokens,
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
	}

	result, err := p.client.Models.GenerateContent(ctx, model, genai.Text(prompt), cfg)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", ErrTimeout
		}
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return "", &ProviderError{Provider: "gemini", StatusCode: apiErr.Code, Message: apiErr.Message}
		}
		return "", fmt.Errorf("llm/gemini: generate: %w", err)
	}

	if blocked(result) {
		return "", nil
	}
	return result.Text(), nil
}

// blocked reports a safety refusal, either up front (prompt feedback)
// or mid-generation (candidate finish reason).
func blocked(result *genai.GenerateContentResponse) bool {
	if result.PromptFeedback != nil && result.PromptFeedback.BlockReason != genai.BlockedReasonUnspecified {
		return true
	}
	for _, candidate := range result.Candidates {
		if candidate.FinishReason == genai.FinishReasonSafety ||
			candidate.FinishReason == genai.FinishReasonProhibitedContent {
			return true
		}
	}
	return false
}
