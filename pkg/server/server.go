package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/inisipanji/sawebagi/pkg/donation"
	"github.com/inisipanji/sawebagi/pkg/relay"
	"github.com/inisipanji/sawebagi/pkg/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Server starts the donation relay and blocks until SIGINT or SIGTERM
func Server(configPath string) error {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	// Load config
	if configPath == "" {
		configPath = os.Getenv("CONFIG")
	}
	if configPath == "" {
		configPath = defaultConfigPath
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		log.Info().Err(err).Str("path", configPath).Msg("config file not loaded, using environment only")
		config = &Config{}
	} else {
		log.Info().Str("path", configPath).Msg("loaded config")
	}
	config.ApplyEnv(os.LookupEnv)
	config.ApplyDefaults()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if config.Log.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Debug().Msg("request logging enabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStorage(ctx, config)
	if err != nil {
		return err
	}
	defer store.Close()

	if config.BagiBagi.WebhookToken == "" {
		log.Warn().
			Str("platform", string(donation.PlatformBagiBagi)).
			Msg("signature verification disabled, BAGIBAGI_WEBHOOK_TOKEN is not set")
	} else {
		log.Info().
			Str("platform", string(donation.PlatformBagiBagi)).
			Msg("signature verification enabled")
	}

	metrics := NewMetrics(prometheus.DefaultRegisterer, "sawebagi")

	var forwarder *Forwarder
	opts := relay.Options{
		Storage: store,
		Secrets: map[donation.Platform]string{
			donation.PlatformBagiBagi: config.BagiBagi.WebhookToken,
		},
	}
	if len(config.Forward) > 0 {
		forwarder = NewForwarder(config.Forward, metrics)
		opts.Notifier = forwarder
		log.Info().Strs("targets", config.Forward).Msg("forwarding donations")
	}

	r, err := relay.New(opts)
	if err != nil {
		return err
	}

	// Start metrics collection goroutine
	go updateMetrics(ctx, store, metrics, metricsInterval)

	srv := &http.Server{
		Addr: fmt.Sprintf(":%s", config.Port),
		Handler: NewHandler(HandlerOptions{
			Relay:    r,
			Storage:  store,
			Metrics:  metrics,
			Gatherer: prometheus.DefaultGatherer,
			Logger:   log.Logger,
			Debug:    config.Log.Debug,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("starting donation relay")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("graceful shutdown failed")
		}
	}

	if forwarder != nil {
		forwarder.Wait()
	}
	return nil
}

// openStorage connects to Redis and, when configured, MongoDB
func openStorage(ctx context.Context, config *Config) (storage.Storage, error) {
	client, err := storage.NewRedisClient(config.Redis.URL, config.Redis.Token)
	if err != nil {
		return nil, err
	}

	redisStore, err := storage.NewRedisStorage(ctx, client, storage.RedisConfig{
		QueueKey:       config.Keys.Queue,
		LeaderboardKey: config.Keys.Leaderboard,
	})
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	log.Info().
		Str("addr", client.Options().Addr).
		Str("queue", config.Keys.Queue).
		Str("leaderboard", config.Keys.Leaderboard).
		Msg("connected to Redis")

	if config.MongoDB.URI == "" {
		log.Info().Msg("using Redis storage only")
		return redisStore, nil
	}

	mongoStore, err := storage.NewMongoDBStorage(config.MongoDB.URI, config.MongoDB.Database, config.MongoDB.Collection)
	if err != nil {
		_ = redisStore.Close()
		return nil, err
	}
	log.Info().
		Str("database", config.MongoDB.Database).
		Str("collection", config.MongoDB.Collection).
		Msg("connected to MongoDB, archiving donations")

	return storage.NewDualStorage(redisStore, mongoStore), nil
}
