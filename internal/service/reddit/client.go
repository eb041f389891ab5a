package reddit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"StockHark/internal/domain/models"
	drepo "StockHark/internal/domain/repository"
	"StockHark/internal/service/ratelimit"
	pkghttp "StockHark/pkg/http"
)

const defaultBaseURL = "https://www.reddit.com"

// Client implements a PostSource backed by Reddit's public JSON listings.
// No OAuth: the hot listing of each configured subreddit is polled with a
// descriptive User-Agent and a token-bucket limiter so the public API
// rate limit is respected.
type Client struct {
	http       *pkghttp.Client
	limiter    *ratelimit.Limiter
	baseURL    string
	userAgent  string
	subreddits []string
	// tokens per second allowed against the public API
	ratePerSec float64
	burst      float64
}

// New creates a Reddit PostSource polling the given subreddits.
func New(hc *pkghttp.Client, limiter *ratelimit.Limiter, userAgent string, subreddits []string) drepo.PostSource {
	return &Client{
		http:       hc,
		limiter:    limiter,
		baseURL:    defaultBaseURL,
		userAgent:  userAgent,
		subreddits: subreddits,
		ratePerSec: 1,
		burst:      5,
	}
}

func (c *Client) Name() string { return "reddit" }

// listing mirrors the subset of Reddit's listing JSON we consume.
type listing struct {
	Data struct {
		Children []struct {
			Data struct {
				ID         string  `json:"id"`
				Subreddit  string  `json:"subreddit"`
				Title      string  `json:"title"`
				Selftext   string  `json:"selftext"`
				Permalink  string  `json:"permalink"`
				CreatedUTC float64 `json:"created_utc"`
				Stickied   bool    `json:"stickied"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// Fetch pulls up to limit hot posts from every configured subreddit.
// A failing subreddit is skipped; the error is returned only when no
// subreddit could be fetched at all.
func (c *Client) Fetch(ctx context.Context, limit int) ([]models.Post, error) {
	if limit <= 0 {
		limit = 20
	}

	var posts []models.Post
	var lastErr error
	fetched := 0

	for _, sub := range c.subreddits {
		if ctx.Err() != nil {
			return posts, ctx.Err()
		}
		if !c.waitForToken(ctx) {
			return posts, ctx.Err()
		}

		page, err := c.fetchSubreddit(ctx, sub, limit)
		if err != nil {
			lastErr = err
			continue
		}
		posts = append(posts, page...)
		fetched++
	}

	if fetched == 0 && lastErr != nil {
		return nil, fmt.Errorf("reddit fetch: %w", lastErr)
	}
	return posts, nil
}

func (c *Client) fetchSubreddit(ctx context.Context, sub string, limit int) ([]models.Post, error) {
	var l listing
	err := c.http.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method: pkghttp.MethodGet,
		URL:    fmt.Sprintf("%s/r/%s/hot.json", c.baseURL, sub),
		Headers: map[string]string{
			"User-Agent": c.userAgent,
		},
		QueryParams: map[string][]string{
			"limit": {strconv.Itoa(limit)},
		},
	}, &l)
	if err != nil {
		return nil, fmt.Errorf("subreddit %s: %w", sub, err)
	}

	posts := make([]models.Post, 0, len(l.Data.Children))
	for _, child := range l.Data.Children {
		d := child.Data
		posts = append(posts, models.Post{
			ID:        d.ID,
			Subreddit: d.Subreddit,
			Title:     d.Title,
			Body:      d.Selftext,
			Permalink: d.Permalink,
			CreatedAt: time.Unix(int64(d.CreatedUTC), 0).UTC(),
			Stickied:  d.Stickied,
		})
	}
	return posts, nil
}

// waitForToken blocks until the limiter grants a token or ctx is done.
func (c *Client) waitForToken(ctx context.Context) bool {
	for !c.limiter.Allow("reddit_api", c.burst, c.ratePerSec) {
		select {
		case <-ctx.Done():
			return false
		case <-time.After(200 * time.Millisecond):
		}
	}
	return true
}

func (c *Client) Close() error { return nil }
