package feed

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/deevus/transit-sign/internal"
)

const (
	predictionsPath = "/predictions"

	// maxErrorBody bounds how much of a failed response is read for its message.
	maxErrorBody = 4 << 10
)

// Fetcher retrieves the current predictions for every stop the service knows.
type Fetcher interface {
	Fetch(ctx context.Context) (StopPredictions, error)
}

// ClientParams holds configuration for creating a Client.
type ClientParams struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client fetches predictions over HTTP. It never retries; the caller's
// refresh cadence is the retry policy.
type Client struct {
	url    string
	http   *http.Client
	logger *slog.Logger
}

// NewClient creates a Client for the service rooted at p.BaseURL.
func NewClient(p ClientParams) *Client {
	hc := p.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	logger := p.Logger
	if logger == nil {
		logger = internal.Discard()
	}
	return &Client{
		url:    strings.TrimRight(p.BaseURL, "/") + predictionsPath,
		http:   hc,
		logger: logger.With(slog.String("component", "feed")),
	}
}

// URL returns the predictions endpoint the client requests.
func (c *Client) URL() string {
	return c.url
}

// Fetch issues one uncached GET for the predictions document.
func (c *Client) Fetch(ctx context.Context) (StopPredictions, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, &NetworkError{URL: c.url, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: c.url, Err: err}
	}
	defer internal.SafeClose(resp.Body, c.logger, "predictions_body")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPStatusError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp.Body),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{URL: c.url, Err: err}
	}
	preds, err := decodePredictions(body)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	c.logger.Debug("fetched predictions", slog.Int("stops", len(preds)), slog.Int("bytes", len(body)))
	return preds, nil
}

// decodePredictions parses the predictions document. A null top level and
// null arrays decode to empty values; anything that is not an object keyed
// by stop fails.
func decodePredictions(body []byte) (StopPredictions, error) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return nil, errors.New("empty body")
	}
	var preds StopPredictions
	if err := json.Unmarshal(body, &preds); err != nil {
		return nil, err
	}
	if preds == nil {
		preds = StopPredictions{}
	}
	return preds, nil
}

// errorMessage extracts the upstream {"error": "..."} envelope if present,
// falling back to the trimmed body text.
func errorMessage(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(body) == 0 {
		return ""
	}
	var envelope struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &envelope) == nil && envelope.Error != "" {
		return envelope.Error
	}
	return strings.TrimSpace(string(body))
}
