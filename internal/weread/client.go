// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package weread queries the WeRead search API and resolves keyword
// candidates into normalized availability results.
package weread

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"github.com/pdiddy/bookwatch/pkg/types"
)

// searchAPIBase is the WeRead global search endpoint. Declared as a var
// so tests can substitute an httptest server.
var searchAPIBase = "https://weread.qq.com/web/search/global"

const defaultMaxCandidates = 10

// Client searches WeRead with per-keyword retry and keyword fallback.
type Client struct {
	HTTP *http.Client
	cfg  types.SearchConfig
}

// NewClient builds a Client from the configuration.
func NewClient(cfg types.SearchConfig) *Client {
	return &Client{
		HTTP: &http.Client{Timeout: cfg.Timeout},
		cfg:  cfg,
	}
}

// WeRead search API JSON structures.
type searchResponse struct {
	Books      []searchRecord `json:"books"`
	TotalCount int            `json:"totalCount"`
}

type searchRecord struct {
	BookInfo bookInfo `json:"bookInfo"`
}

type bookInfo struct {
	Title      string `json:"title"`
	Author     string `json:"author"`
	BookID     string `json:"bookId"`
	Intro      string `json:"intro"`
	Publisher  string `json:"publisher"`
	BookStatus int    `json:"bookStatus"`
	Soldout    int    `json:"soldout"`
}

// deriveState maps the provider status flags to an AvailabilityState.
// The mapping is total: every flag combination yields exactly one state.
// bookStatus 1 means published, 5 means pre-release; soldout 1 means the
// record was withdrawn.
func deriveState(bookStatus, soldout int) types.AvailabilityState {
	switch {
	case bookStatus == 1 && soldout == 0:
		return types.StateReadable
	case bookStatus == 5 || soldout == 1:
		return types.StatePendingRelease
	default:
		return types.StateUnknown
	}
}

// searchOnce performs a single search call and normalizes the records.
func (c *Client) searchOnce(ctx context.Context, keyword string) ([]types.Candidate, int, error) {
	params := url.Values{"keyword": {keyword}}
	reqURL := searchAPIBase + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Referer", "https://weread.qq.com/")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("search API returned HTTP %d", resp.StatusCode)
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, 0, fmt.Errorf("parsing search response: %w", err)
	}

	maxCandidates := c.cfg.MaxCandidates
	if maxCandidates <= 0 {
		maxCandidates = defaultMaxCandidates
	}

	var candidates []types.Candidate
	for _, rec := range sr.Books {
		if len(candidates) == maxCandidates {
			break
		}
		info := rec.BookInfo
		candidates = append(candidates, types.Candidate{
			Title:      info.Title,
			Author:     info.Author,
			BookID:     info.BookID,
			Publisher:  info.Publisher,
			Intro:      info.Intro,
			State:      deriveState(info.BookStatus, info.Soldout),
			StatusCode: info.BookStatus,
			Soldout:    info.Soldout,
		})
	}
	return candidates, sr.TotalCount, nil
}

// retryDelay returns a random duration in [DelayMin, DelayMax].
func (c *Client) retryDelay() time.Duration {
	lo, hi := c.cfg.DelayMin, c.cfg.DelayMax
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(rand.Int63n(int64(hi-lo)))
}

// sleep waits for d or until the context is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
