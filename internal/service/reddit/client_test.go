package reddit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"StockHark/internal/service/ratelimit"
	pkghttp "StockHark/pkg/http"
)

const listingFixture = `{
  "data": {
    "children": [
      {"data": {"id": "abc", "subreddit": "stocks", "title": "AAPL earnings beat",
                "selftext": "strong guidance", "permalink": "/r/stocks/abc",
                "created_utc": 1754049600, "stickied": false}},
      {"data": {"id": "def", "subreddit": "stocks", "title": "Daily discussion",
                "selftext": "", "permalink": "/r/stocks/def",
                "created_utc": 1754049700, "stickied": true}}
    ]
  }
}`

func newTestClient(t *testing.T, handler http.HandlerFunc, subreddits []string) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &Client{
		http:       pkghttp.NewClient(pkghttp.WithTimeout(5 * time.Second)),
		limiter:    ratelimit.New(),
		baseURL:    srv.URL,
		userAgent:  "stockhark-test/1.0",
		subreddits: subreddits,
		ratePerSec: 100,
		burst:      100,
	}, srv
}

func TestFetchParsesListing(t *testing.T) {
	var gotUA, gotPath, gotLimit string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotPath = r.URL.Path
		gotLimit = r.URL.Query().Get("limit")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(listingFixture))
	}, []string{"stocks"})

	posts, err := c.Fetch(context.Background(), 25)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if gotPath != "/r/stocks/hot.json" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotUA != "stockhark-test/1.0" {
		t.Fatalf("user agent = %q", gotUA)
	}
	if gotLimit != "25" {
		t.Fatalf("limit param = %q, want 25", gotLimit)
	}

	if len(posts) != 2 {
		t.Fatalf("posts = %d, want 2", len(posts))
	}
	p := posts[0]
	if p.ID != "abc" || p.Subreddit != "stocks" {
		t.Fatalf("unexpected post %+v", p)
	}
	if p.FullText() != "AAPL earnings beat strong guidance" {
		t.Fatalf("full text = %q", p.FullText())
	}
	if p.SourceID() != "reddit/r/stocks" {
		t.Fatalf("source = %q", p.SourceID())
	}
	if !p.CreatedAt.Equal(time.Unix(1754049600, 0).UTC()) {
		t.Fatalf("created at = %v", p.CreatedAt)
	}
	if !posts[1].Stickied {
		t.Fatalf("second post should be stickied")
	}
}

func TestFetchSkipsFailingSubreddit(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/r/broken/hot.json" {
			http.Error(w, "service unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(listingFixture))
	}, []string{"broken", "stocks"})

	posts, err := c.Fetch(context.Background(), 10)
	if err != nil {
		t.Fatalf("one healthy subreddit should be enough: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("posts = %d, want 2", len(posts))
	}
}

func TestFetchAllSubredditsFailing(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}, []string{"stocks"})

	if _, err := c.Fetch(context.Background(), 10); err == nil {
		t.Fatalf("expected error when every subreddit fails")
	}
}

func TestFetchRespectsContextCancellation(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(listingFixture))
	}, []string{"stocks"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Fetch(ctx, 10); err == nil {
		t.Fatalf("cancelled context should abort the fetch")
	}
}
