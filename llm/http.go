package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// doJSONRequest marshals wireRequest, POSTs it, and returns the decoded
// body for 200 responses. Non-success statuses become a ProviderError
// carrying the status code, with the message pulled from the common
// {"error":{"type","message"}} body shape when present.
func doJSONRequest(ctx context.Context, client *http.Client, providerName, endpoint string, headers map[string]string, wireRequest, wireResponse any) error {
	body, err := json.Marshal(wireRequest)
	if err != nil {
		return fmt.Errorf("llm/%s: marshaling request: %w", providerName, err)
	}

	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("llm/%s: creating request: %w", providerName, err)
	}
	httpRequest.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		httpRequest.Header.Set(k, v)
	}

	httpResponse, err := client.Do(httpRequest)
	if err != nil {
		return wrapTransportError(ctx, providerName, err)
	}
	defer httpResponse.Body.Close()

	if httpResponse.StatusCode != http.StatusOK {
		return readProviderError(providerName, httpResponse)
	}

	if err := json.NewDecoder(httpResponse.Body).Decode(wireResponse); err != nil {
		return fmt.Errorf("llm/%s: decoding response: %w", providerName, err)
	}
	return nil
}

func readProviderError(providerName string, httpResponse *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(httpResponse.Body, 4096))

	var wireError struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &wireError) == nil && wireError.Error.Message != "" {
		return &ProviderError{
			Provider:   providerName,
			StatusCode: httpResponse.StatusCode,
			Message:    wireError.Error.Message,
		}
	}

	return &ProviderError{
		Provider:   providerName,
		StatusCode: httpResponse.StatusCode,
		Message:    string(body),
	}
}
