package oracle_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"revenue-split-engine/internal/oracle"
)

// TestFeedClient_LatestPrice tests the aggregator HTTP client.
//
// WHY: The client is the system's only external dependency. It must hit the
// right path, decode well-formed answers and turn aggregator failures into
// errors instead of zero quotes.
func TestFeedClient_LatestPrice(t *testing.T) {
	t.Run("fetches and parses a quote", func(t *testing.T) {
		// Setup
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/v1/feeds/token-usd/latest" {
				t.Errorf("Unexpected path: %s", r.URL.Path)
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"feedId":"token-usd","price":250000000,"decimals":8,"timestamp":1735689600,"roundId":42}`))
		}))
		defer server.Close()

		client := oracle.NewFeedClient(server.URL)

		// Execute
		quote, err := client.LatestPrice(context.Background(), "token-usd")

		// Assert
		if err != nil {
			t.Fatalf("LatestPrice() returned unexpected error: %v", err)
		}
		if quote.FeedID != "token-usd" {
			t.Errorf("FeedID = %s, want token-usd", quote.FeedID)
		}
		if quote.Price != 250_000_000 || quote.Decimals != 8 {
			t.Errorf("Quote = %d/%d digits, want 250000000/8", quote.Price, quote.Decimals)
		}
		if quote.RoundID != 42 {
			t.Errorf("RoundID = %d, want 42", quote.RoundID)
		}
	})

	t.Run("non-200 status fails", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		client := oracle.NewFeedClient(server.URL)

		if _, err := client.LatestPrice(context.Background(), "token-usd"); err == nil {
			t.Error("Expected error for 502 response")
		}
	})

	t.Run("malformed body fails", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`not json`))
		}))
		defer server.Close()

		client := oracle.NewFeedClient(server.URL)

		if _, err := client.LatestPrice(context.Background(), "token-usd"); err == nil {
			t.Error("Expected error for malformed body")
		}
	})
}

// TestParseQuote tests structural validation of aggregator answers.
func TestParseQuote(t *testing.T) {
	t.Run("rejects a response without a feed id", func(t *testing.T) {
		_, err := oracle.ParseQuote(oracle.Response{Timestamp: 1735689600})
		if err == nil {
			t.Error("Expected error for missing feed id")
		}
	})

	t.Run("rejects a response without a timestamp", func(t *testing.T) {
		_, err := oracle.ParseQuote(oracle.Response{FeedID: "token-usd"})
		if err == nil {
			t.Error("Expected error for missing timestamp")
		}
	})
}
