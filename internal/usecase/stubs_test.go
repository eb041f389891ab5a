package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"StockHark/internal/domain/models"
)

// Shared in-memory fakes for the use case tests.

type stubMetrics struct {
	mu     sync.Mutex
	errors map[string]int
}

func newStubMetrics() *stubMetrics {
	return &stubMetrics{errors: make(map[string]int)}
}

func (m *stubMetrics) RecordObservation(backend, symbol string)   {}
func (m *stubMetrics) RecordPostsFetched(source string, n int)    {}
func (m *stubMetrics) RecordAggregation(symbol string, s float64) {}
func (m *stubMetrics) RecordLatency(op string, seconds float64)   {}

func (m *stubMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[kind]++
}

func (m *stubMetrics) errorCount(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errors[kind]
}

type stubStore struct {
	mu      sync.Mutex
	stored  []models.Observation
	bySym   map[string][]models.Observation
	queries int
	failAll bool
}

func newStubStore() *stubStore {
	return &stubStore{bySym: make(map[string][]models.Observation)}
}

func (s *stubStore) Store(ctx context.Context, o *models.Observation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll {
		return fmt.Errorf("store down")
	}
	s.stored = append(s.stored, *o)
	s.bySym[o.Symbol] = append(s.bySym[o.Symbol], *o)
	return nil
}

func (s *stubStore) StoreBatch(ctx context.Context, obs []*models.Observation) error {
	for _, o := range obs {
		if err := s.Store(ctx, o); err != nil {
			return err
		}
	}
	return nil
}

func (s *stubStore) QuerySymbol(ctx context.Context, symbol string, since time.Time) ([]models.Observation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll {
		return nil, fmt.Errorf("store down")
	}
	s.queries++
	var out []models.Observation
	for _, o := range s.bySym[symbol] {
		if !o.Timestamp.Before(since) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *stubStore) QuerySince(ctx context.Context, since time.Time) ([]models.Observation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll {
		return nil, fmt.Errorf("store down")
	}
	s.queries++
	var out []models.Observation
	for _, o := range s.stored {
		if !o.Timestamp.Before(since) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *stubStore) MentionCounts(ctx context.Context, since time.Time) (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[string]int)
	for _, o := range s.stored {
		if !o.Timestamp.Before(since) {
			counts[o.Symbol]++
		}
	}
	return counts, nil
}

func (s *stubStore) Health(ctx context.Context) error {
	if s.failAll {
		return fmt.Errorf("store down")
	}
	return nil
}

func (s *stubStore) Close() error { return nil }

func (s *stubStore) storedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.stored)
}

type stubPublisher struct {
	mu        sync.Mutex
	published []models.Observation
	fail      bool
}

func (p *stubPublisher) Publish(ctx context.Context, o *models.Observation) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return fmt.Errorf("broker down")
	}
	p.published = append(p.published, *o)
	return nil
}

func (p *stubPublisher) PublishBatch(ctx context.Context, obs []*models.Observation) error {
	for _, o := range obs {
		if err := p.Publish(ctx, o); err != nil {
			return err
		}
	}
	return nil
}

func (p *stubPublisher) Close() error { return nil }

func (p *stubPublisher) publishedCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.published)
}

type stubSource struct {
	name  string
	posts []models.Post
	err   error
}

func (s *stubSource) Fetch(ctx context.Context, limit int) ([]models.Post, error) {
	if s.err != nil {
		return nil, s.err
	}
	if limit < len(s.posts) {
		return s.posts[:limit], nil
	}
	return s.posts, nil
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Close() error { return nil }

// stubExtractor returns a fixed symbol list for any text.
type stubExtractor struct {
	symbols []string
}

func (e *stubExtractor) Extract(text string) []string { return e.symbols }

// stubScorer returns a fixed score for any text.
type stubScorer struct {
	score float64
}

func (s *stubScorer) Score(text string) float64 { return s.score }
