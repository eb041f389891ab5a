package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"StockHark/internal/domain/models"
	drepo "StockHark/internal/domain/repository"

	"github.com/gorilla/websocket"
)

// Client implements a PostSource backed by a WebSocket post firehose.
// Incoming posts are buffered in the background; Fetch drains the buffer,
// so the pull-based collector loop and the push-based feed stay decoupled.
type Client struct {
	url            string
	channels       []string
	reconnectDelay time.Duration
	pingInterval   time.Duration
	bufSize        int

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
	buf       chan models.Post
	cancel    context.CancelFunc
}

// New creates a firehose PostSource subscribed to the given channels.
func New(url string, channels []string, reconnectDelay, pingInterval time.Duration) drepo.PostSource {
	return &Client{
		url:            url,
		channels:       channels,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
		bufSize:        4096,
	}
}

func (c *Client) Name() string { return "stream" }

// Start connects and launches the background read loop. Fetch works
// without Start but returns nothing until the feed is running.
func (c *Client) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.buf == nil {
		c.buf = make(chan models.Post, c.bufSize)
	}
	c.mu.Unlock()

	if err := c.connect(ctx); err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()

	go c.pingLoop(ctx)
	go c.readLoop(ctx)
	return nil
}

func (c *Client) connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("stream connect: %w", err)
	}
	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	for _, ch := range c.channels {
		msg := map[string]string{"type": "subscribe", "channel": ch}
		if err := conn.WriteJSON(msg); err != nil {
			return fmt.Errorf("subscribe %s: %w", ch, err)
		}
	}
	return nil
}

type feedPost struct {
	Type      string `json:"type"`
	ID        string `json:"id"`
	Channel   string `json:"channel"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	Permalink string `json:"permalink"`
	CreatedTS int64  `json:"created_ts"` // unix seconds
	Stickied  bool   `json:"stickied"`
}

func (c *Client) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.mu.Lock()
			conn := c.conn
			c.mu.Unlock()
			if conn != nil {
				_ = conn.WriteMessage(websocket.PingMessage, nil)
			}
		}
	}
}

func (c *Client) readLoop(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		c.mu.Lock()
		conn := c.conn
		c.mu.Unlock()
		if conn == nil {
			if !c.reconnect(ctx) {
				return
			}
			continue
		}

		_, b, err := conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			c.connected = false
			c.mu.Unlock()
			if !c.reconnect(ctx) {
				return
			}
			continue
		}

		var fp feedPost
		if err := json.Unmarshal(b, &fp); err != nil {
			// ignore non-post frames
			continue
		}
		if fp.Type != "post" {
			continue
		}
		post := models.Post{
			ID:        fp.ID,
			Subreddit: fp.Channel,
			Title:     fp.Title,
			Body:      fp.Body,
			Permalink: fp.Permalink,
			CreatedAt: time.Unix(fp.CreatedTS, 0).UTC(),
			Stickied:  fp.Stickied,
		}
		select {
		case c.buf <- post:
		default:
			// drop on backpressure
		}
	}
}

func (c *Client) reconnect(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(c.reconnectDelay):
	}
	return c.connect(ctx) == nil || ctx.Err() == nil
}

// Fetch drains up to limit buffered posts without blocking.
func (c *Client) Fetch(ctx context.Context, limit int) ([]models.Post, error) {
	if limit <= 0 {
		limit = 20
	}
	c.mu.Lock()
	buf := c.buf
	c.mu.Unlock()
	if buf == nil {
		return nil, nil
	}

	posts := make([]models.Post, 0, limit)
	for len(posts) < limit {
		select {
		case <-ctx.Done():
			return posts, ctx.Err()
		case p := <-buf:
			posts = append(posts, p)
		default:
			return posts, nil
		}
	}
	return posts, nil
}

// IsConnected indicates status.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = false
	if c.cancel != nil {
		c.cancel()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
