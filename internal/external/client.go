package external

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var ErrProviderUnavailable = errors.New("translation provider unavailable")

// TranslatorInterface defines the interface for offer localization
type TranslatorInterface interface {
	Translate(ctx context.Context, texts []string, targetLang string) ([]string, error)
}

// Client handles communication with the translation provider
type Client struct {
	baseURL    string
	sourceLang string
	httpClient *http.Client
}

var _ TranslatorInterface = (*Client)(nil)

// NewClient creates a new translation client
func NewClient(baseURL, sourceLang string) *Client {
	return &Client{
		baseURL:    baseURL,
		sourceLang: sourceLang,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// Translate returns texts translated to targetLang, in order. Empty strings
// are passed through without a provider round trip.
func (c *Client) Translate(ctx context.Context, texts []string, targetLang string) ([]string, error) {
	if c.baseURL == "" {
		return nil, ErrProviderUnavailable
	}

	out := make([]string, len(texts))
	var pending []string
	var index []int
	for i, t := range texts {
		if t == "" {
			continue
		}
		pending = append(pending, t)
		index = append(index, i)
	}
	if len(pending) == 0 {
		return out, nil
	}

	resp, err := c.makeRequest(ctx, http.MethodPost, "/translate", &TranslateRequest{
		Texts:      pending,
		TargetLang: targetLang,
		SourceLang: c.sourceLang,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: status %d", ErrProviderUnavailable, resp.StatusCode)
	}

	var body TranslateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode translation: %w", err)
	}
	if len(body.Translations) != len(pending) {
		return nil, fmt.Errorf("translation count mismatch: got %d, want %d", len(body.Translations), len(pending))
	}

	for i, t := range body.Translations {
		out[index[i]] = t
	}
	return out, nil
}

func (c *Client) makeRequest(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var reqBody []byte
	if body != nil {
		var err error
		reqBody, err = json.Marshal(body)
		if err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	return c.httpClient.Do(req)
}
