// Package oracle is the price-feed adapter. It speaks to a Chainlink-style
// aggregation endpoint and normalizes unknown assets to $0, which the engine
// treats as a valid (worthless) valuation rather than an error.
package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type pricesResponse struct {
	Prices map[string]float64 `json:"prices"`
}

// Prices returns point-in-time USD prices for every requested asset. Assets
// the feed does not know are present in the result with price 0.
func (c *Client) Prices(ctx context.Context, assets []string) (map[string]float64, error) {
	u := fmt.Sprintf("%s/v1/prices?assets=%s", c.baseURL, url.QueryEscape(strings.Join(assets, ",")))
	var resp pricesResponse
	if err := c.get(ctx, u, &resp); err != nil {
		return nil, err
	}
	out := make(map[string]float64, len(assets))
	for _, asset := range assets {
		out[asset] = resp.Prices[asset] // zero for unknown assets
	}
	return out, nil
}

type volatilityResponse struct {
	Asset      string  `json:"asset"`
	Volatility float64 `json:"volatility"`
}

// Volatility returns the feed's historical volatility figure for one asset.
func (c *Client) Volatility(ctx context.Context, asset string) (float64, error) {
	u := fmt.Sprintf("%s/v1/volatility?asset=%s", c.baseURL, url.QueryEscape(asset))
	var resp volatilityResponse
	if err := c.get(ctx, u, &resp); err != nil {
		return 0, err
	}
	return resp.Volatility, nil
}

func (c *Client) get(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("price feed request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("price feed returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode price feed response: %w", err)
	}
	return nil
}
