package usecase

import (
	"context"
	"sync"
	"time"

	"StockHark/internal/domain/models"
	drepo "StockHark/internal/domain/repository"
	mid "StockHark/internal/middleware"
	"StockHark/internal/services/symbols"
	pkgcache "StockHark/pkg/cache"
)

// seenTTL is how long processed post IDs are remembered. Subreddit hot
// listings overlap heavily between cycles; without this every cycle would
// re-emit observations for the same posts.
const seenTTL = 24 * time.Hour

// Scorer assigns a raw sentiment score in [-1, 1] to post text.
type Scorer interface {
	Score(text string) float64
}

// PostCollector periodically pulls posts from the configured sources,
// extracts ticker symbols, scores sentiment, and feeds the resulting
// observations downstream. The loop is cancellable: it stops promptly on
// Stop or context cancellation instead of sleeping through the interval.
type PostCollector struct {
	sources   []drepo.PostSource
	extractor symbols.Validator
	scorer    Scorer
	proc      *ObservationProcessor
	pipe      *mid.IngestPipeline
	dedupe    pkgcache.Service
	metrics   drepo.Metrics

	interval       time.Duration
	postsPerSource int

	mu                sync.Mutex
	running           bool
	cancel            context.CancelFunc
	lastCollection    time.Time
	totalCollections  int64
	totalObservations int64
}

// NewPostCollector creates a new PostCollector instance.
func NewPostCollector(
	sources []drepo.PostSource,
	extractor symbols.Validator,
	scorer Scorer,
	proc *ObservationProcessor,
	pipe *mid.IngestPipeline,
	dedupe pkgcache.Service,
	metrics drepo.Metrics,
	interval time.Duration,
	postsPerSource int,
) *PostCollector {
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	if postsPerSource <= 0 {
		postsPerSource = 20
	}
	return &PostCollector{
		sources:        sources,
		extractor:      extractor,
		scorer:         scorer,
		proc:           proc,
		pipe:           pipe,
		dedupe:         dedupe,
		metrics:        metrics,
		interval:       interval,
		postsPerSource: postsPerSource,
	}
}

// Start launches the collection loop. Calling Start on a running
// collector is a no-op.
func (c *PostCollector) Start(ctx context.Context) {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return
	}
	ctx, c.cancel = context.WithCancel(ctx)
	c.running = true
	c.mu.Unlock()

	if c.pipe != nil {
		c.pipe.Start(ctx)
	}
	// push-based sources (the websocket firehose) need their read loop up
	// before the first fetch
	for _, src := range c.sources {
		if starter, ok := src.(interface{ Start(context.Context) error }); ok {
			if err := starter.Start(ctx); err != nil {
				c.metrics.RecordError("source_start_" + src.Name())
			}
		}
	}
	go c.run(ctx)
}

// Stop cancels the collection loop. Safe to call more than once.
func (c *PostCollector) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return
	}
	c.running = false
	c.cancel()
	if c.pipe != nil {
		c.pipe.Stop()
	}
	for _, src := range c.sources {
		_ = src.Close()
	}
}

func (c *PostCollector) run(ctx context.Context) {
	// first cycle immediately, then on the ticker
	c.collectOnce(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.collectOnce(ctx)
		}
	}
}

// ForceCollect runs one collection cycle synchronously and returns the
// number of observations produced.
func (c *PostCollector) ForceCollect(ctx context.Context) int {
	return c.collectOnce(ctx)
}

func (c *PostCollector) collectOnce(ctx context.Context) int {
	start := time.Now()
	collected := 0

	for _, src := range c.sources {
		if ctx.Err() != nil {
			break
		}
		posts, err := src.Fetch(ctx, c.postsPerSource)
		if err != nil {
			c.metrics.RecordError("fetch_" + src.Name())
			continue
		}
		c.metrics.RecordPostsFetched(src.Name(), len(posts))

		for _, post := range posts {
			if ctx.Err() != nil {
				break
			}
			collected += c.processPost(ctx, post)
		}
	}

	c.mu.Lock()
	c.lastCollection = time.Now().UTC()
	c.totalCollections++
	c.totalObservations += int64(collected)
	c.mu.Unlock()

	c.metrics.RecordLatency("collect_cycle", time.Since(start).Seconds())
	return collected
}

// processPost turns one post into zero or more observations, one per
// extracted symbol, all sharing the post's score and identifier.
func (c *PostCollector) processPost(ctx context.Context, post models.Post) int {
	if post.Stickied {
		return 0
	}
	if c.seen(ctx, post) {
		return 0
	}
	text := post.FullText()
	syms := c.extractor.Extract(text)
	if len(syms) == 0 {
		return 0
	}
	score := c.scorer.Score(text)

	produced := 0
	for _, sym := range syms {
		o := models.NewObservation(sym, score, post.CreatedAt, post.SourceID(), text, post.ID)
		var err error
		if c.pipe != nil {
			err = c.pipe.Process(ctx, &o)
		} else {
			err = c.proc.Process(ctx, &o)
		}
		if err != nil {
			c.metrics.RecordError("collect_process")
			continue
		}
		produced++
	}
	return produced
}

// seen reports whether a post was already processed in a recent cycle and
// marks it as processed. Posts without an ID are never deduplicated.
func (c *PostCollector) seen(ctx context.Context, post models.Post) bool {
	if c.dedupe == nil || post.ID == "" {
		return false
	}
	key := pkgcache.GenerateKeyWithParams("seen", post.SourceID(), post.ID)
	if ok, err := c.dedupe.Exists(ctx, key); err == nil && ok {
		return true
	}
	_ = c.dedupe.Set(ctx, key, 1, seenTTL)
	return false
}

// Status reports collector state for the status API.
func (c *PostCollector) Status() models.CollectorStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := models.CollectorStatus{
		Running:           c.running,
		TotalCollections:  c.totalCollections,
		TotalObservations: c.totalObservations,
		IntervalMinutes:   int(c.interval / time.Minute),
	}
	if !c.lastCollection.IsZero() {
		st.LastCollection = c.lastCollection.Format(time.RFC3339)
	}
	return st
}

// Processor returns the underlying ObservationProcessor for lifecycle
// management.
func (c *PostCollector) Processor() *ObservationProcessor { return c.proc }
