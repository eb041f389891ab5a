package middleware

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"StockHark/internal/domain/models"
)

type recordingProc struct {
	mu   sync.Mutex
	got  []models.Observation
	fail bool
}

func (p *recordingProc) Process(ctx context.Context, o *models.Observation) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return fmt.Errorf("downstream down")
	}
	p.got = append(p.got, *o)
	return nil
}

func (p *recordingProc) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.got)
}

type nopMetrics struct{}

func (nopMetrics) RecordObservation(backend, symbol string)   {}
func (nopMetrics) RecordPostsFetched(source string, n int)    {}
func (nopMetrics) RecordAggregation(symbol string, s float64) {}
func (nopMetrics) RecordError(kind string)                    {}
func (nopMetrics) RecordLatency(op string, seconds float64)   {}

func obs(symbol string, sentiment float64) *models.Observation {
	o := models.NewObservation(symbol, sentiment, time.Now(), "reddit/r/stocks", "text", "p1")
	return &o
}

func TestPipelineForwardsValidObservation(t *testing.T) {
	proc := &recordingProc{}
	p := NewIngestPipeline(proc, nopMetrics{})

	if err := p.Process(context.Background(), obs("AAPL", 0.5)); err != nil {
		t.Fatalf("process: %v", err)
	}
	if proc.count() != 1 {
		t.Fatalf("forwarded = %d, want 1", proc.count())
	}
}

func TestPipelineRejectsInvalidObservations(t *testing.T) {
	proc := &recordingProc{}
	p := NewIngestPipeline(proc, nopMetrics{})
	ctx := context.Background()

	if err := p.Process(ctx, nil); err == nil {
		t.Fatalf("nil observation should fail validation")
	}

	bad := obs("", 0.5)
	if err := p.Process(ctx, bad); err == nil {
		t.Fatalf("empty symbol should fail validation")
	}

	bad = obs("AAPL", 1.5)
	if err := p.Process(ctx, bad); err == nil {
		t.Fatalf("out-of-range sentiment should fail validation")
	}

	bad = obs("AAPL", 0.5)
	bad.Timestamp = time.Time{}
	if err := p.Process(ctx, bad); err == nil {
		t.Fatalf("zero timestamp should fail validation")
	}

	if proc.count() != 0 {
		t.Fatalf("invalid observations must not reach downstream")
	}
}

func TestPipelineThrottlesPerSymbol(t *testing.T) {
	proc := &recordingProc{}
	p := NewIngestPipeline(proc, nopMetrics{}, WithMaxRPS(1))
	ctx := context.Background()

	if err := p.Process(ctx, obs("AAPL", 0.1)); err != nil {
		t.Fatalf("first: %v", err)
	}
	// immediate second observation for the same symbol is throttled silently
	if err := p.Process(ctx, obs("AAPL", 0.2)); err != nil {
		t.Fatalf("throttled observation should not error: %v", err)
	}
	// a different symbol is not affected
	if err := p.Process(ctx, obs("TSLA", 0.3)); err != nil {
		t.Fatalf("other symbol: %v", err)
	}
	if proc.count() != 2 {
		t.Fatalf("forwarded = %d, want 2", proc.count())
	}
}

func TestPipelineBuffersOnDownstreamError(t *testing.T) {
	proc := &recordingProc{fail: true}
	p := NewIngestPipeline(proc, nopMetrics{}, WithBufferSize(4))

	if err := p.Process(context.Background(), obs("AAPL", 0.5)); err == nil {
		t.Fatalf("downstream failure should be reported")
	}

	// downstream recovers; Start flushes the buffered observation
	proc.mu.Lock()
	proc.fail = false
	proc.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)
	defer p.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for proc.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if proc.count() != 1 {
		t.Fatalf("buffered observation was not flushed")
	}
}

func TestPipelineDropHandlerOnFullBuffer(t *testing.T) {
	proc := &recordingProc{fail: true}

	var mu sync.Mutex
	var dropped []string
	p := NewIngestPipeline(proc, nopMetrics{},
		WithBufferSize(1),
		WithDropHandler(func(o *models.Observation) {
			mu.Lock()
			dropped = append(dropped, o.Symbol)
			mu.Unlock()
		}),
	)
	ctx := context.Background()

	// first failure occupies the single buffer slot, second overflows
	_ = p.Process(ctx, obs("AAPL", 0.5))
	_ = p.Process(ctx, obs("TSLA", 0.5))

	mu.Lock()
	defer mu.Unlock()
	if len(dropped) != 1 || dropped[0] != "TSLA" {
		t.Fatalf("dropped = %v, want [TSLA]", dropped)
	}
}

func TestPipelineTransform(t *testing.T) {
	proc := &recordingProc{}
	p := NewIngestPipeline(proc, nopMetrics{},
		WithTransform(func(o *models.Observation) *models.Observation {
			o.Source = "normalized"
			return o
		}),
	)

	if err := p.Process(context.Background(), obs("AAPL", 0.5)); err != nil {
		t.Fatalf("process: %v", err)
	}
	if proc.got[0].Source != "normalized" {
		t.Fatalf("transform not applied: %+v", proc.got[0])
	}
}
