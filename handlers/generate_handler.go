package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tinkertanker/bitvibe-extension/auth"
	"github.com/tinkertanker/bitvibe-extension/config"
	"github.com/tinkertanker/bitvibe-extension/database"
	"github.com/tinkertanker/bitvibe-extension/llm"
)

// GenerateHandler runs the full pipeline for one generation request:
// authorize, build prompts, call the provider under a deadline,
// normalize. A provider misconfiguration is held and reported per
// request rather than crashing startup.
type GenerateHandler struct {
	Engine      *auth.Engine
	Provider    llm.Provider
	Model       string
	ProviderErr error
	Timeout     time.Duration
}

func NewGenerateHandler(store database.Store, cfg *config.Config) *GenerateHandler {
	provider, model, err := llm.FromConfig(cfg)
	return &GenerateHandler{
		Engine:      auth.NewEngine(store, cfg.StaticToken),
		Provider:    provider,
		Model:       model,
		ProviderErr: err,
		Timeout:     cfg.GenerateTimeout,
	}
}

type generatePayload struct {
	Target      string `json:"target"`
	Request     string `json:"request"`
	CurrentCode string `json:"current_code"`
}

// POST /api/generate
func (h *GenerateHandler) Generate(c echo.Context) error {
	var req generatePayload
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{
			"error": "INVALID_PAYLOAD", "message": "request body must be JSON",
		})
	}

	request := strings.TrimSpace(req.Request)
	if request == "" {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{
			"error": "MISSING_REQUEST", "message": "tell the assistant what you want to build",
		})
	}

	// Admission consumes quota as its side effect; nothing from the
	// principal is needed downstream.
	if _, err := h.Engine.Authorize(c.Request().Context(), bearerToken(c)); err != nil {
		return authErrorResponse(err)
	}

	if h.ProviderErr != nil {
		c.Logger().Errorf("generate: provider not configured: %v", h.ProviderErr)
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]any{
			"error": "PROVIDER_NOT_CONFIGURED", "message": "the AI provider is not configured on this server",
		})
	}

	target := llm.ParseTarget(req.Target)

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	raw, err := h.Provider.Generate(ctx, h.Model,
		llm.SystemPrompt(target),
		llm.UserPrompt(request, req.CurrentCode))
	if err != nil {
		return providerErrorResponse(c, err)
	}

	return c.JSON(http.StatusOK, llm.Normalize(raw, target))
}

// bearerToken returns the credential from the Authorization header, or
// "" when none is presented. Absence is not an error here: the engine
// decides whether open mode applies.
func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return strings.TrimSpace(header)
}

func authErrorResponse(err error) error {
	var rateLimited *auth.RateLimitError
	switch {
	case errors.Is(err, auth.ErrUnauthorized):
		return echo.NewHTTPError(http.StatusUnauthorized, map[string]any{
			"error": "INVALID_TOKEN", "message": "your access token is missing or not recognised",
		})
	case errors.Is(err, auth.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, map[string]any{
			"error": "ACCESS_REVOKED", "message": "your access has been paused by your teacher",
		})
	case errors.As(err, &rateLimited):
		return echo.NewHTTPError(http.StatusTooManyRequests, map[string]any{
			"error":         "RATE_LIMITED",
			"message":       fmt.Sprintf("you have used all %d of your requests; ask your teacher for more", rateLimited.Limit),
			"request_limit": rateLimited.Limit,
		})
	}
	return echo.NewHTTPError(http.StatusInternalServerError, map[string]any{
		"error": "STORE_ERROR", "message": "something went wrong, try again",
	})
}

func providerErrorResponse(c echo.Context, err error) error {
	if errors.Is(err, llm.ErrTimeout) {
		return echo.NewHTTPError(http.StatusGatewayTimeout, map[string]any{
			"error": "GENERATION_TIMEOUT", "message": "the AI took too long to answer, try again",
		})
	}
	var providerErr *llm.ProviderError
	if errors.As(err, &providerErr) {
		c.Logger().Errorf("generate: upstream failure: %v", providerErr)
		return echo.NewHTTPError(http.StatusBadGateway, map[string]any{
			"error": "UPSTREAM_ERROR", "message": "the AI service had a problem, try again",
		})
	}
	c.Logger().Errorf("generate: %v", err)
	return echo.NewHTTPError(http.StatusBadGateway, map[string]any{
		"error": "UPSTREAM_ERROR", "message": "the AI service had a problem, try again",
	})
}
