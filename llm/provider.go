package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tinkertanker/bitvibe-extension/config"
)

// Provider is the single capability over the interchangeable upstream
// generation services. Implementations differ only in wire encoding;
// they all pin the same temperature and output ceiling so behaviour is
// comparable across providers.
type Provider interface {
	// Generate sends one prompt pair and blocks for the full response
	// text. Implementations must respect ctx cancellation and surface
	// deadline expiry as ErrTimeout.
	Generate(ctx context.Context, model, system, prompt string) (string, error)
}

// Sampling settings shared by every provider. Generation should be
// near-deterministic so two students asking the same thing get similar
// programs.
const (
	temperature     = 0.1
	maxOutputTokens = 3072
)

// ErrTimeout reports that the generation deadline expired. It is
// distinct from ProviderError so callers can map it to a different
// failure.
var ErrTimeout = errors.New("llm: generation timed out")

// ProviderError is returned when the upstream API responds with a
// non-success status.
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("llm/%s: HTTP %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("llm/%s: HTTP %d", e.Provider, e.StatusCode)
}

// ConfigError reports a selected provider whose credential is absent.
// It is raised at wiring time, before any network call.
type ConfigError struct {
	Provider string
	EnvVar   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("llm: provider %q selected but %s is not set", e.Provider, e.EnvVar)
}

// Default models per provider, overridable via LLM_MODEL.
const (
	defaultOpenAIModel    = "gpt-4o-mini"
	defaultAnthropicModel = "claude-3-5-haiku-latest"
	defaultGeminiModel    = "gemini-2.0-flash"
)

// FromConfig builds the configured provider and resolves the model to
// request. The provider set is closed: adding one means adding a new
// implementation of Provider, not editing call sites.
func FromConfig(cfg *config.Config) (Provider, string, error) {
	model := cfg.LLMModel

	switch strings.ToLower(strings.TrimSpace(cfg.LLMProvider)) {
	case "openai":
		if cfg.OpenAIKey == "" {
			return nil, "", &ConfigError{Provider: "openai", EnvVar: "OPENAI_API_KEY"}
		}
		if model == "" {
			model = defaultOpenAIModel
		}
		return NewOpenAI(&http.Client{}, cfg.OpenAIKey, ""), model, nil

	case "anthropic":
		if cfg.AnthropicKey == "" {
			return nil, "", &ConfigError{Provider: "anthropic", EnvVar: "ANTHROPIC_API_KEY"}
		}
		if model == "" {
			model = defaultAnthropicModel
		}
		return NewAnthropic(&http.Client{}, cfg.AnthropicKey, ""), model, nil

	case "gemini":
		if cfg.GeminiKey == "" {
			return nil, "", &ConfigError{Provider: "gemini", EnvVar: "GEMINI_API_KEY"}
		}
		if model == "" {
			model = defaultGeminiModel
		}
		provider, err := NewGemini(context.Background(), cfg.GeminiKey)
		if err != nil {
			return nil, "", err
		}
		return provider, model, nil
	}

	return nil, "", fmt.Errorf("llm: unsupported provider %q", cfg.LLMProvider)
}

// wrapTransportError converts a low-level HTTP client error, mapping
// context deadline expiry to ErrTimeout.
func wrapTransportError(ctx context.Context, providerName string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrTimeout
	}
	return fmt.Errorf("llm/%s: sending request: %w", providerName, err)
}
