package usecase

import (
	"context"
	"encoding/json"
	"time"

	"StockHark/internal/domain/models"
	domrepo "StockHark/internal/domain/repository"
	pkgkafka "StockHark/pkg/kafka"
)

// KafkaObservationsHandler consumes observation messages and writes them
// to storage.
type KafkaObservationsHandler struct {
	topic   string
	storage domrepo.ObservationStore
	metrics domrepo.Metrics
}

func NewKafkaObservationsHandler(topic string, storage domrepo.ObservationStore, metrics domrepo.Metrics) *KafkaObservationsHandler {
	return &KafkaObservationsHandler{topic: topic, storage: storage, metrics: metrics}
}

func (h *KafkaObservationsHandler) Topic() string { return h.topic }

// incoming message schema: {symbol, sentiment, ts, source, text, post_id}
func (h *KafkaObservationsHandler) Handle(ctx context.Context, b []byte) error {
	var m struct {
		Symbol    string  `json:"symbol"`
		Sentiment float64 `json:"sentiment"`
		TS        int64   `json:"ts"`
		Source    string  `json:"source"`
		Text      string  `json:"text"`
		PostID    string  `json:"post_id"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	if m.TS > 1e11 { // ms
		m.TS = m.TS / 1000
	}
	// E2E latency from post time to now (approx)
	h.metrics.RecordLatency("ingest_e2e_seconds", time.Since(time.Unix(m.TS, 0)).Seconds())

	o := models.NewObservation(m.Symbol, m.Sentiment, time.Unix(m.TS, 0), m.Source, m.Text, m.PostID)

	start := time.Now()
	err := h.storage.Store(ctx, &o)
	h.metrics.RecordLatency("ch_insert_seconds", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordObservation("clickhouse", m.Symbol)
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaObservationsHandler)(nil)
