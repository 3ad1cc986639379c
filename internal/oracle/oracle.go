// Package oracle provides a read-only client for an external price feed
// aggregator. The engine consumes nothing beyond the latest quote per feed.
package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"revenue-split-engine/internal/model"
)

// FeedClient fetches latest-round prices from the feed aggregator API.
// It wraps an HTTP client and is safe for concurrent use.
type FeedClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewFeedClient creates a new feed client for the given aggregator base URL.
func NewFeedClient(baseURL string) *FeedClient {
	return &FeedClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// LatestPrice fetches the latest quote for a feed.
//
// The quote is returned as reported: price, fractional digits, round
// timestamp and round ID. Callers normalize and validate; the client only
// rejects structurally malformed responses.
func (c *FeedClient) LatestPrice(ctx context.Context, feedID string) (model.PriceQuote, error) {
	url := fmt.Sprintf("%s/v1/feeds/%s/latest", c.baseURL, feedID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return model.PriceQuote{}, fmt.Errorf("failed to create oracle request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.PriceQuote{}, fmt.Errorf("failed to fetch price for feed %s: %w", feedID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.PriceQuote{}, fmt.Errorf("oracle returned status %d for feed %s", resp.StatusCode, feedID)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.PriceQuote{}, fmt.Errorf("failed to read oracle response: %w", err)
	}

	var raw Response
	if err := json.Unmarshal(body, &raw); err != nil {
		return model.PriceQuote{}, fmt.Errorf("failed to parse oracle response: %w", err)
	}

	return ParseQuote(raw)
}

// ParseQuote converts a raw aggregator response into a PriceQuote.
// It validates that the response names a feed and carries a round timestamp.
func ParseQuote(raw Response) (model.PriceQuote, error) {
	if raw.FeedID == "" {
		return model.PriceQuote{}, fmt.Errorf("oracle response missing feed id")
	}
	if raw.Timestamp == 0 {
		return model.PriceQuote{}, fmt.Errorf("oracle response missing round timestamp")
	}

	return model.PriceQuote{
		FeedID:    raw.FeedID,
		Price:     raw.Price,
		Decimals:  raw.Decimals,
		Timestamp: time.Unix(raw.Timestamp, 0).UTC(),
		RoundID:   raw.RoundID,
	}, nil
}
