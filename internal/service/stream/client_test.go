package stream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// feedServer upgrades connections, records subscriptions, and replays the
// given frames to each client.
func feedServer(t *testing.T, frames []string, subscribed chan string) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		var sub struct {
			Type    string `json:"type"`
			Channel string `json:"channel"`
		}
		if err := conn.ReadJSON(&sub); err != nil {
			return
		}
		if subscribed != nil {
			subscribed <- sub.Channel
		}

		for _, frame := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
				return
			}
		}
		// hold the connection open until the client goes away
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestStreamReceivesPosts(t *testing.T) {
	frames := []string{
		`{"type":"heartbeat"}`,
		`{"type":"post","id":"s1","channel":"stocks","title":"AAPL ripping","created_ts":1754049600}`,
	}
	subscribed := make(chan string, 1)
	srv := feedServer(t, frames, subscribed)

	c := New(wsURL(srv), []string{"stocks"}, 100*time.Millisecond, time.Minute).(*Client)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := c.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer c.Close()

	select {
	case ch := <-subscribed:
		if ch != "stocks" {
			t.Fatalf("subscribed channel = %q", ch)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no subscription received")
	}

	deadline := time.Now().Add(2 * time.Second)
	var got int
	for time.Now().Before(deadline) {
		posts, err := c.Fetch(ctx, 10)
		if err != nil {
			t.Fatalf("fetch: %v", err)
		}
		got += len(posts)
		if got > 0 {
			if posts[0].ID != "s1" || posts[0].Subreddit != "stocks" {
				t.Fatalf("unexpected post %+v", posts[0])
			}
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("post frame never arrived; heartbeat frames must be skipped, posts kept")
}

func TestStreamFetchBeforeStart(t *testing.T) {
	c := New("ws://unused", nil, time.Second, time.Minute).(*Client)
	posts, err := c.Fetch(context.Background(), 10)
	if err != nil {
		t.Fatalf("fetch before start: %v", err)
	}
	if len(posts) != 0 {
		t.Fatalf("posts = %d, want 0", len(posts))
	}
}

func TestStreamStartFailsWhenUnreachable(t *testing.T) {
	c := New("ws://127.0.0.1:1", nil, time.Second, time.Minute).(*Client)
	if err := c.Start(context.Background()); err == nil {
		t.Fatalf("expected connect error")
	}
}
