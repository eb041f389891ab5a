package di

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	"StockHark/internal/domain/models"
	"StockHark/internal/domain/repository"
	"StockHark/internal/handler/api"
	mid "StockHark/internal/middleware"
	internalrepo "StockHark/internal/repository"
	icache "StockHark/internal/service/cache"
	"StockHark/internal/service/ratelimit"
	"StockHark/internal/service/reddit"
	"StockHark/internal/service/stream"
	"StockHark/internal/services/scoring"
	"StockHark/internal/services/sentiment"
	"StockHark/internal/services/symbols"
	"StockHark/internal/usecase"
	pkgcache "StockHark/pkg/cache"
	pkgch "StockHark/pkg/clickhouse"
	"StockHark/pkg/config"
	xhttp "StockHark/pkg/http"
	pkgkafka "StockHark/pkg/kafka"
	applogger "StockHark/pkg/logger"
	"StockHark/pkg/metrics"
	pkgqueue "StockHark/pkg/queue"
	"StockHark/pkg/server"
	"StockHark/pkg/util"
)

// ProvideLogger creates the application logger.
func ProvideLogger() (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{Level: "info", Format: "console", Output: "stdout"})
}

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	// Initialize schema
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS stockhark",
		"CREATE TABLE IF NOT EXISTS stockhark.observations (ts DateTime, symbol String, sentiment Float64, source String, text String, post_id String) ENGINE=MergeTree ORDER BY (symbol, ts)",
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	return producer, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideObservationStore creates the ClickHouse observation repository.
func ProvideObservationStore(chClient *pkgch.Client, cfg *config.Config) repository.ObservationStore {
	table := cfg.ClickHouse.Table
	if table == "" {
		table = cfg.ClickHouse.Database + ".observations"
	}
	return internalrepo.NewClickHouseObservationStore(chClient.DB(), table)
}

// ProvideObservationPublisher creates the Kafka publisher repository.
func ProvideObservationPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	return internalrepo.NewKafkaObservationPublisher(producer, cfg.Kafka.Topic)
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideKafkaObservationsHandler registers the handler for the observations topic.
func ProvideKafkaObservationsHandler(store repository.ObservationStore, m repository.Metrics, cfg *config.Config) *usecase.KafkaObservationsHandler {
	return usecase.NewKafkaObservationsHandler(cfg.Kafka.Topic, store, m)
}

// ProvideSymbolValidator loads the ticker universe and builds the
// extractor. A configured watchlist is layered on top with the configured
// combination mode.
func ProvideSymbolValidator(cfg *config.Config) (symbols.Validator, error) {
	exchanges := make(map[string][]string, len(cfg.Symbols.TickerFiles))
	for exchange, path := range cfg.Symbols.TickerFiles {
		list, err := symbols.LoadExchangeFile(path)
		if err != nil {
			return nil, fmt.Errorf("symbol universe: %w", err)
		}
		exchanges[exchange] = list
	}
	primary := symbols.NewSetValidator(exchanges)
	if len(cfg.Symbols.Watchlist) == 0 {
		return primary, nil
	}
	override := symbols.NewSetValidator(map[string][]string{"WATCHLIST": cfg.Symbols.Watchlist})
	mode := symbols.ParseCombineMode(cfg.Symbols.CombineMode)
	return symbols.NewCombinedValidator(primary, override, mode), nil
}

// ProvideScorer creates the rule-based sentiment scorer.
func ProvideScorer() usecase.Scorer {
	return scoring.NewRuleScorer()
}

// ProvideAggregator builds the sentiment aggregator from configured weight
// tables, falling back to defaults for any table left empty.
func ProvideAggregator(cfg *config.Config) *sentiment.Aggregator {
	c := sentiment.DefaultConfig()
	if cfg.Aggregation.DecayLambda > 0 {
		c.DecayLambda = cfg.Aggregation.DecayLambda
	}
	if len(cfg.Aggregation.SourceWeights) > 0 {
		c.SourceWeights = cfg.Aggregation.SourceWeights
	}
	if len(cfg.Aggregation.SymbolWeights) > 0 {
		c.SymbolWeights = cfg.Aggregation.SymbolWeights
	}
	if cfg.Aggregation.PostCountMultiplier > 0 {
		c.PostCountMultiplier = cfg.Aggregation.PostCountMultiplier
	}
	if cfg.Aggregation.MaxPostCountWeight > 0 {
		c.MaxPostCountWeight = cfg.Aggregation.MaxPostCountWeight
	}
	return sentiment.New(c)
}

// ProvidePostSources creates the configured post sources: the Reddit
// poller always, the websocket firehose when enabled.
func ProvidePostSources(cfg *config.Config) []repository.PostSource {
	sources := []repository.PostSource{
		reddit.New(
			xhttp.NewClient(xhttp.WithTimeout(30*time.Second)),
			ratelimit.New(),
			cfg.Reddit.UserAgent,
			cfg.Reddit.Subreddits,
		),
	}
	if cfg.Stream.Enabled {
		sources = append(sources, stream.New(
			cfg.Stream.URL,
			cfg.Stream.Channels,
			cfg.Stream.ReconnectDelay,
			cfg.Stream.PingInterval,
		))
	}
	return sources
}

// ProvideDedupeCache builds the seen-post store: layered memory+Redis when
// Redis is configured so restarts keep their dedupe history, plain memory
// otherwise.
func ProvideDedupeCache(cfg *config.Config) (pkgcache.Service, error) {
	if !cfg.Cache.Redis.Enabled {
		return pkgcache.NewMemoryCache(pkgcache.WithMemoryMaxSize(10000)), nil
	}
	host, port, err := net.SplitHostPort(cfg.Cache.Redis.Addr)
	if err != nil {
		return nil, fmt.Errorf("redis addr: %w", err)
	}
	rc, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(host),
		pkgcache.WithRedisPort(util.ParseIntDefault(port, 6379)),
		pkgcache.WithRedisPassword(cfg.Cache.Redis.Password),
		pkgcache.WithRedisDB(cfg.Cache.Redis.DB),
		pkgcache.WithRedisPrefix("stockhark"),
	)
	if err != nil {
		return nil, fmt.Errorf("dedupe cache: %w", err)
	}
	return pkgcache.NewLayeredCache(rc), nil
}

// ProvideReplayQueue creates the Redis-backed replay queue for observations
// the ingest pipeline dropped. Nil when Redis is disabled; drops are then
// final.
func ProvideReplayQueue(cfg *config.Config, l *applogger.Logger, proc *usecase.ObservationProcessor) (*pkgqueue.RedisQueue, error) {
	if !cfg.Cache.Redis.Enabled {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Cache.Redis.Addr,
		Password: cfg.Cache.Redis.Password,
		DB:       cfg.Cache.Redis.DB,
	})
	q := pkgqueue.NewRedisQueue(l,
		&pkgqueue.QueueConfig{Workers: 1, QueueSize: 1000, RetryLimit: 3, RetryDelay: 10 * time.Second},
		client,
		pkgqueue.ModeProducerConsumer,
		pkgqueue.WithKeyPrefix("stockhark:replay"),
	)
	q.RegisterJob(usecase.NewObservationReplayJob(proc))
	if err := q.Start(); err != nil {
		return nil, fmt.Errorf("replay queue: %w", err)
	}
	return q, nil
}

// ProvideSnapshotCache selects Redis or in-memory caching for snapshots.
func ProvideSnapshotCache(cfg *config.Config) icache.BytesCache {
	if cfg.Cache.Redis.Enabled {
		return icache.NewRedisCache(icache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
	}
	return icache.NewTTLCache()
}

// ProvideObservationProcessor creates the backend router use case.
func ProvideObservationProcessor(
	pub repository.Publisher,
	store repository.ObservationStore,
	m repository.Metrics,
	cfg *config.Config,
) *usecase.ObservationProcessor {
	return usecase.NewObservationProcessor(pub, store, m, cfg.Backend.Type)
}

// ProvidePostCollector creates the background collector with the ingest
// pipeline between sources and processor.
func ProvidePostCollector(
	sources []repository.PostSource,
	extractor symbols.Validator,
	scorer usecase.Scorer,
	processor *usecase.ObservationProcessor,
	dedupe pkgcache.Service,
	replay *pkgqueue.RedisQueue,
	m repository.Metrics,
	cfg *config.Config,
) *usecase.PostCollector {
	opts := []mid.PipelineOption{
		mid.WithMaxRPS(50),
		mid.WithBufferSize(2000),
	}
	if replay != nil {
		opts = append(opts, mid.WithDropHandler(func(o *models.Observation) {
			_ = replay.Enqueue(context.Background(), usecase.ObservationReplayType, o)
		}))
	}
	pipe := mid.NewIngestPipeline(processor, m, opts...)
	return usecase.NewPostCollector(
		sources,
		extractor,
		scorer,
		processor,
		pipe,
		dedupe,
		m,
		cfg.Collector.Interval,
		cfg.Reddit.PostsPerSubreddit,
	)
}

// ProvideSentimentQuery creates the aggregation query use case.
func ProvideSentimentQuery(
	store repository.ObservationStore,
	agg *sentiment.Aggregator,
	bc icache.BytesCache,
	m repository.Metrics,
) *usecase.SentimentQuery {
	return usecase.NewSentimentQuery(store, agg, bc, m)
}

// ProvideHTTPHandler creates the Echo API handler.
func ProvideHTTPHandler(
	l *applogger.Logger,
	query *usecase.SentimentQuery,
	collector *usecase.PostCollector,
) xhttp.Handler {
	return api.NewSentimentEchoHandler(l, query, collector)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	collector *usecase.PostCollector,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaObservationsHandler,
	chClient *pkgch.Client,
	replay *pkgqueue.RedisQueue,
	handler xhttp.Handler,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
	}
	app := server.New(cfg, collector, consumer, kh, chClient, handler)
	if collector != nil {
		app.Proc = collector.Processor()
	}
	app.Queue = replay
	return app
}
