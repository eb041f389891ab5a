package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"StockHark/internal/domain/models"
	"StockHark/internal/domain/repository"
	pkgkafka "StockHark/pkg/kafka"
)

// ClickHouseObservationStore implements ObservationStore for ClickHouse.
type ClickHouseObservationStore struct {
	db    *sql.DB
	table string
}

// NewClickHouseObservationStore creates ClickHouse observation storage.
func NewClickHouseObservationStore(db *sql.DB, table string) repository.ObservationStore {
	return &ClickHouseObservationStore{db: db, table: table}
}

func (s *ClickHouseObservationStore) Store(ctx context.Context, o *models.Observation) error {
	q := fmt.Sprintf("INSERT INTO %s (ts, symbol, sentiment, source, text, post_id) VALUES (?, ?, ?, ?, ?, ?)", s.table)
	_, err := s.db.ExecContext(ctx, q,
		o.Timestamp,
		o.Symbol,
		o.RawSentiment,
		o.Source,
		o.Text,
		o.PostID,
	)
	return err
}

func (s *ClickHouseObservationStore) StoreBatch(ctx context.Context, obs []*models.Observation) error {
	if len(obs) == 0 {
		return nil
	}
	// Multi-row VALUES insert to reduce round-trips, chunked.
	const chunkSize = 2000
	for start := 0; start < len(obs); start += chunkSize {
		end := start + chunkSize
		if end > len(obs) {
			end = len(obs)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*6)
		for _, o := range obs[start:end] {
			if o == nil || o.Symbol == "" || o.Timestamp.IsZero() {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?, ?)")
			args = append(args,
				o.Timestamp,
				o.Symbol,
				o.RawSentiment,
				o.Source,
				o.Text,
				o.PostID,
			)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (ts, symbol, sentiment, source, text, post_id) VALUES %s", s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	return nil
}

func (s *ClickHouseObservationStore) QuerySymbol(ctx context.Context, symbol string, since time.Time) ([]models.Observation, error) {
	q := fmt.Sprintf("SELECT symbol, ts, sentiment, source, text, post_id FROM %s WHERE symbol = ? AND ts >= ? ORDER BY ts DESC", s.table)
	rows, err := s.db.QueryContext(ctx, q, symbol, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanObservations(rows)
}

func (s *ClickHouseObservationStore) QuerySince(ctx context.Context, since time.Time) ([]models.Observation, error) {
	q := fmt.Sprintf("SELECT symbol, ts, sentiment, source, text, post_id FROM %s WHERE ts >= ? ORDER BY ts DESC", s.table)
	rows, err := s.db.QueryContext(ctx, q, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanObservations(rows)
}

func (s *ClickHouseObservationStore) MentionCounts(ctx context.Context, since time.Time) (map[string]int, error) {
	q := fmt.Sprintf("SELECT symbol, count() FROM %s WHERE ts >= ? GROUP BY symbol", s.table)
	rows, err := s.db.QueryContext(ctx, q, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var symbol string
		var n uint64
		if err := rows.Scan(&symbol, &n); err != nil {
			return nil, err
		}
		counts[symbol] = int(n)
	}
	return counts, rows.Err()
}

func scanObservations(rows *sql.Rows) ([]models.Observation, error) {
	var obs []models.Observation
	for rows.Next() {
		var o models.Observation
		var ts time.Time
		if err := rows.Scan(&o.Symbol, &ts, &o.RawSentiment, &o.Source, &o.Text, &o.PostID); err != nil {
			return nil, err
		}
		o.Timestamp = ts.UTC()
		obs = append(obs, o)
	}
	return obs, rows.Err()
}

func (s *ClickHouseObservationStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseObservationStore) Close() error {
	return nil // Managed by pkg
}

// KafkaObservationPublisher implements Publisher for Kafka.
type KafkaObservationPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaObservationPublisher creates a Kafka publisher.
func NewKafkaObservationPublisher(producer *pkgkafka.Producer, topic string) repository.Publisher {
	return &KafkaObservationPublisher{producer: producer, topic: topic}
}

func (p *KafkaObservationPublisher) Publish(ctx context.Context, o *models.Observation) error {
	return p.producer.Publish(ctx, p.topic, []byte(o.Symbol), observationMessage(o))
}

func (p *KafkaObservationPublisher) PublishBatch(ctx context.Context, obs []*models.Observation) error {
	if len(obs) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(obs))
	for i, o := range obs {
		msgs[i] = pkgkafka.Message{
			Key:   []byte(o.Symbol),
			Value: observationMessage(o),
		}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func observationMessage(o *models.Observation) map[string]interface{} {
	return map[string]interface{}{
		"symbol":    o.Symbol,
		"sentiment": o.RawSentiment,
		"ts":        o.Timestamp.Unix(),
		"source":    o.Source,
		"text":      o.Text,
		"post_id":   o.PostID,
	}
}

func (p *KafkaObservationPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
