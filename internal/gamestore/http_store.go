package gamestore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/yourusername/theory-engine/internal/config"
	"github.com/yourusername/theory-engine/internal/models"
	"github.com/yourusername/theory-engine/internal/repository"
)

// HTTPStore reads the historical game store over a REST API. It is strictly
// read-only; retries and rate limiting live here so upstream flakiness never
// leaks past the data-access boundary.
type HTTPStore struct {
	baseURL string
	apiKey  string
	client  *retryablehttp.Client
	limiter *rate.Limiter
}

// NewHTTPStore creates an HTTP-backed game store from configuration
func NewHTTPStore(cfg config.GameStoreConfig, logger *logrus.Logger) (*HTTPStore, error) {
	if cfg.APIURL == "" {
		return nil, fmt.Errorf("game store api_url is required")
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	retryClient.RetryMax = cfg.MaxRetries
	retryClient.RetryWaitMin = 100 * time.Millisecond
	retryClient.RetryWaitMax = 10 * time.Second
	retryClient.Logger = nil
	if logger != nil {
		retryClient.Logger = logger
	}

	limit := cfg.RateLimitPerSec
	if limit <= 0 {
		limit = 10
	}

	return &HTTPStore{
		baseURL: strings.TrimRight(cfg.APIURL, "/"),
		apiKey:  cfg.APIKey,
		client:  retryClient,
		limiter: rate.NewLimiter(rate.Limit(limit), 1),
	}, nil
}

// Games returns games matching the query
func (s *HTTPStore) Games(ctx context.Context, q repository.GameQuery) ([]*models.Game, error) {
	params := url.Values{}
	params.Set("league", string(q.League))
	for _, season := range q.Seasons {
		params.Add("season", strconv.Itoa(season))
	}
	if !q.Start.IsZero() {
		params.Set("start", q.Start.UTC().Format(time.RFC3339))
	}
	if !q.End.IsZero() {
		params.Set("end", q.End.UTC().Format(time.RFC3339))
	}

	var games []*models.Game
	if err := s.get(ctx, "/v1/games", params, &games); err != nil {
		return nil, err
	}
	return games, nil
}

// TeamLines returns team box-score lines for the games
func (s *HTTPStore) TeamLines(ctx context.Context, gameIDs []uuid.UUID) ([]*models.StatLine, error) {
	var lines []*models.StatLine
	if err := s.get(ctx, "/v1/stats/teams", idParams(gameIDs), &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// PlayerLines returns player box-score lines for the games
func (s *HTTPStore) PlayerLines(ctx context.Context, gameIDs []uuid.UUID, playerFilter string) ([]*models.StatLine, error) {
	params := idParams(gameIDs)
	if playerFilter != "" {
		params.Set("player", playerFilter)
	}
	var lines []*models.StatLine
	if err := s.get(ctx, "/v1/stats/players", params, &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// ClosingLines returns closing lines for the games in one market
func (s *HTTPStore) ClosingLines(ctx context.Context, gameIDs []uuid.UUID, market models.MarketType) ([]*models.OddsLine, error) {
	params := idParams(gameIDs)
	params.Set("market", string(market))
	var lines []*models.OddsLine
	if err := s.get(ctx, "/v1/odds/closing", params, &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// MostRecentDate returns the latest game date for the league
func (s *HTTPStore) MostRecentDate(ctx context.Context, league models.League) (time.Time, error) {
	params := url.Values{}
	params.Set("league", string(league))

	var payload struct {
		MostRecent *time.Time `json:"most_recent"`
	}
	if err := s.get(ctx, "/v1/games/most-recent", params, &payload); err != nil {
		return time.Time{}, err
	}
	if payload.MostRecent == nil {
		return time.Time{}, models.ErrNotFound
	}
	return *payload.MostRecent, nil
}

// KnownStatKeys lists the raw stat keys observed for the league
func (s *HTTPStore) KnownStatKeys(ctx context.Context, league models.League) ([]string, error) {
	params := url.Values{}
	params.Set("league", string(league))

	var keys []string
	if err := s.get(ctx, "/v1/stats/keys", params, &keys); err != nil {
		return nil, err
	}
	return keys, nil
}

func (s *HTTPStore) get(ctx context.Context, path string, params url.Values, out any) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter error: %w", err)
	}

	endpoint := s.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build game store request: %w", err)
	}
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return models.ErrNotFound
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: game store returned status %d", models.ErrStoreUnavailable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("game store returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode game store response: %w", err)
	}
	return nil
}

func idParams(gameIDs []uuid.UUID) url.Values {
	params := url.Values{}
	for _, id := range gameIDs {
		params.Add("game_id", id.String())
	}
	return params
}
