package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/cazala/landgiver/internal/platform/timeouts"
)

// secretHeader carries the shared secret identifying this service to the
// registry. The registry uses the same header on its inbound custody calls.
const secretHeader = "X-Landgiver-Registry-Secret"

// Client calls the registry's HTTP API.
type Client struct {
	baseURL    string
	secret     string
	httpClient *http.Client
}

// NewClient creates a registry client for the given base URL.
func NewClient(baseURL, secret string) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("registry base url is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("parse registry base url: %w", err)
	}
	return &Client{
		baseURL:    baseURL,
		secret:     secret,
		httpClient: &http.Client{Timeout: timeouts.RegistryRequest},
	}, nil
}

type holdingsResponse struct {
	TokenIDs []string `json:"token_ids"`
}

// Holdings enumerates the tokens the registry reports as custodied here.
func (c *Client) Holdings(ctx context.Context) ([]uint64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/holdings", nil)
	if err != nil {
		return nil, fmt.Errorf("build holdings request: %w", err)
	}
	req.Header.Set(secretHeader, c.secret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch holdings: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch holdings: registry returned %d", resp.StatusCode)
	}

	var payload holdingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode holdings: %w", err)
	}
	tokens := make([]uint64, 0, len(payload.TokenIDs))
	for _, raw := range payload.TokenIDs {
		token, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse holding token %q: %w", raw, err)
		}
		tokens = append(tokens, token)
	}
	return tokens, nil
}

type updateOperatorRequest struct {
	Operator string `json:"operator"`
}

// UpdateOperator assigns or revokes delegate rights over a parcel.
func (c *Client) UpdateOperator(ctx context.Context, tokenID uint64, operator string) error {
	body, err := json.Marshal(updateOperatorRequest{Operator: operator})
	if err != nil {
		return fmt.Errorf("encode operator update: %w", err)
	}
	endpoint := fmt.Sprintf("%s/v1/parcels/%d/operator", c.baseURL, tokenID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build operator update request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(secretHeader, c.secret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("update operator: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("update operator: registry returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return nil
}

var _ Adapter = (*Client)(nil)
