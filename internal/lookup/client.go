// Package lookup is the thin provider glue: per-kind HTTP fetches and
// tolerant formatting of whatever JSON the providers return. It is
// side-effect-free with respect to the ledger.
package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 15 * time.Second

// ErrNotConfigured marks kinds with no provider endpoint set.
var ErrNotConfigured = fmt.Errorf("lookup provider not configured")

type Client struct {
	httpClient *http.Client
	endpoints  map[string]string
	apiKeys    map[string]string
}

func NewClient(endpoints, apiKeys map[string]string) *Client {
	if endpoints == nil {
		endpoints = map[string]string{}
	}
	if apiKeys == nil {
		apiKeys = map[string]string{}
	}
	return &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		endpoints:  endpoints,
		apiKeys:    apiKeys,
	}
}

// Lookup fetches and formats the result for one kind. Empty result with nil
// error means the provider had no data.
func (c *Client) Lookup(ctx context.Context, kind, query string) (string, error) {
	endpoint := c.endpoints[kind]
	if endpoint == "" {
		return "", ErrNotConfigured
	}

	target := strings.ReplaceAll(endpoint, "{query}", url.QueryEscape(query))
	if key := c.apiKeys[kind]; key != "" {
		target = strings.ReplaceAll(target, "{key}", url.QueryEscape(key))
	}

	data, err := c.fetchJSON(ctx, target)
	if err != nil {
		return "", err
	}
	if data == nil {
		return "", nil
	}
	return formatResult(kind, query, data), nil
}

func (c *Client) fetchJSON(ctx context.Context, target string) (any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider error (status: %d)", resp.StatusCode)
	}

	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		// Some providers answer plain text.
		text := strings.TrimSpace(string(body))
		if text == "" {
			return nil, nil
		}
		return text, nil
	}
	return data, nil
}
