package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"cfbtracker/backend/internal/metrics"
	"cfbtracker/backend/internal/models"

	"github.com/rs/zerolog/log"
)

// Client is the CollegeFootballData.com API client.
// It performs no retries of its own; callers decide based on the error type
// whether a request is safe to repeat.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new CollegeFootballData.com API client.
// apiKey may be empty; requests then go out unauthenticated and the provider
// applies its lower anonymous rate limits.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// get performs a GET request against the provider API
func (c *Client) get(ctx context.Context, path string, params map[string]string) ([]byte, error) {
	url := fmt.Sprintf("%s%s", c.baseURL, path)
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	if len(params) > 0 {
		q := req.URL.Query()
		for key, value := range params {
			q.Add(key, value)
		}
		req.URL.RawQuery = q.Encode()
	}

	log.Debug().
		Str("url", url).
		Str("method", req.Method).
		Msg("Making provider API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ProviderCallsTotal.WithLabelValues(path, "error").Inc()
		return nil, &TransientError{Err: fmt.Errorf("provider request failed: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.ProviderCallsTotal.WithLabelValues(path, "error").Inc()
		return nil, &TransientError{Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	metrics.ProviderCallsTotal.WithLabelValues(path, strconv.Itoa(resp.StatusCode)).Inc()
	metrics.ProviderCallDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())

	switch {
	case resp.StatusCode == http.StatusOK:
		log.Debug().
			Str("url", url).
			Int("status", resp.StatusCode).
			Int("size", len(body)).
			Msg("Provider API request successful")
		return body, nil

	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, &TransientError{
			Err: fmt.Errorf("provider returned retryable status %d: %s", resp.StatusCode, string(body)),
		}

	default:
		// 4xx and anything else unexpected is terminal
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Body: string(body)}
	}
}

// getJSON fetches path and decodes the response into out
func (c *Client) getJSON(ctx context.Context, path string, params map[string]string, out interface{}) error {
	body, err := c.get(ctx, path, params)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &UpstreamError{
			StatusCode: http.StatusOK,
			Body:       string(body),
			Err:        fmt.Errorf("failed to decode provider payload: %w", err),
		}
	}

	return nil
}

// FetchTeams fetches all FBS teams
func (c *Client) FetchTeams(ctx context.Context) ([]models.TeamPayload, error) {
	var teams []models.TeamPayload
	if err := c.getJSON(ctx, "/teams/fbs", nil, &teams); err != nil {
		return nil, fmt.Errorf("failed to fetch teams: %w", err)
	}
	return teams, nil
}

// FetchVenues fetches all venues
func (c *Client) FetchVenues(ctx context.Context) ([]models.VenuePayload, error) {
	var venues []models.VenuePayload
	if err := c.getJSON(ctx, "/venues", nil, &venues); err != nil {
		return nil, fmt.Errorf("failed to fetch venues: %w", err)
	}
	return venues, nil
}

// FetchGames fetches the FBS game schedule for a season, regular season and
// postseason combined
func (c *Client) FetchGames(ctx context.Context, season int) ([]models.GamePayload, error) {
	params := map[string]string{
		"year":       strconv.Itoa(season),
		"seasonType": "both",
		"division":   "fbs",
	}

	var games []models.GamePayload
	if err := c.getJSON(ctx, "/games", params, &games); err != nil {
		return nil, fmt.Errorf("failed to fetch games: %w", err)
	}
	return games, nil
}
