// Package main wires together the site profiler service.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gcspubsub "cloud.google.com/go/pubsub"
	gcsstorage "cloud.google.com/go/storage"
	"go.uber.org/zap"

	"github.com/brandworks/siteprofiler/internal/aggregate"
	"github.com/brandworks/siteprofiler/internal/api"
	"github.com/brandworks/siteprofiler/internal/classify"
	"github.com/brandworks/siteprofiler/internal/clock/system"
	"github.com/brandworks/siteprofiler/internal/config"
	"github.com/brandworks/siteprofiler/internal/crawl"
	"github.com/brandworks/siteprofiler/internal/fetch"
	"github.com/brandworks/siteprofiler/internal/generator"
	"github.com/brandworks/siteprofiler/internal/hash/sha256"
	"github.com/brandworks/siteprofiler/internal/id/uuid"
	"github.com/brandworks/siteprofiler/internal/logging"
	"github.com/brandworks/siteprofiler/internal/metrics"
	memorynotify "github.com/brandworks/siteprofiler/internal/notify/memory"
	pubsubnotify "github.com/brandworks/siteprofiler/internal/notify/pubsub"
	"github.com/brandworks/siteprofiler/internal/profile"
	"github.com/brandworks/siteprofiler/internal/storage/gcs"
	"github.com/brandworks/siteprofiler/internal/storage/local"
	memorystorage "github.com/brandworks/siteprofiler/internal/storage/memory"
	"github.com/brandworks/siteprofiler/internal/storage/postgres"
	"github.com/brandworks/siteprofiler/internal/summarizer/openai"
	"github.com/brandworks/siteprofiler/internal/summarizer/static"
)

func main() {
	cfgPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if syncErr := logger.Sync(); syncErr != nil {
			fmt.Fprintf(os.Stderr, "logger sync failed: %v\n", syncErr)
		}
	}()
	zap.ReplaceGlobals(logger)
	metrics.Init()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, storeClose, err := newOverviewStore(ctx, cfg)
	if err != nil {
		logger.Fatal("overview store init failed", zap.Error(err))
	}
	defer storeClose()

	blobs, err := newBlobStore(ctx, cfg)
	if err != nil {
		logger.Fatal("blob store init failed", zap.Error(err))
	}

	publisher, pubClose, err := newPublisher(ctx, cfg)
	if err != nil {
		logger.Fatal("publisher init failed", zap.Error(err))
	}
	defer pubClose()

	summarizer, err := newSummarizer(cfg)
	if err != nil {
		logger.Fatal("summarizer init failed", zap.Error(err))
	}

	clock := system.New()
	idGen := uuid.New()
	hasher := sha256.New()

	fetcher := fetch.New(fetch.Config{
		UserAgent: cfg.Crawler.UserAgent,
		Timeout:   cfg.FetchTimeout(),
	})

	engine := crawl.New(
		fetcher,
		classify.NewDefault(),
		aggregate.New(aggregate.DefaultCaps()),
		blobs,
		hasher,
		clock,
		crawl.Config{
			MaxPages:            cfg.Crawler.MaxPages,
			BatchSize:           cfg.Crawler.BatchSize,
			BatchDelay:          cfg.BatchDelay(),
			FetchTimeout:        cfg.FetchTimeout(),
			MaxBodyChars:        cfg.Crawler.MaxBodyChars,
			SnapshotPrefix:      cfg.Storage.Prefix,
			SnapshotContentType: cfg.Storage.ContentType,
		},
		logger.Named("crawl"),
	)

	orchestrator := generator.New(
		store,
		engine,
		summarizer,
		publisher,
		clock,
		idGen,
		generator.Config{
			Topic:      cfg.Notify.Topic,
			RunTimeout: cfg.RunTimeout(),
		},
		logger.Named("generator"),
	)

	apiServer := api.NewServer(store, orchestrator, cfg.ServerTimeout(), logger.Named("api"))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server started", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
	orchestrator.Wait()
	logger.Info("shutdown complete")
}

func newOverviewStore(ctx context.Context, cfg config.Config) (profile.OverviewStore, func(), error) {
	switch cfg.DB.Provider {
	case config.ProviderPostgres:
		store, err := postgres.NewOverviewStore(ctx, postgres.OverviewStoreConfig{
			DSN:             cfg.DB.DSN,
			MaxConns:        cfg.DB.MaxConns,
			MinConns:        cfg.DB.MinConns,
			MaxConnLifetime: cfg.DB.MaxConnLifetime(),
		})
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		return memorystorage.NewOverviewStore(), func() {}, nil
	}
}

func newBlobStore(ctx context.Context, cfg config.Config) (profile.BlobStore, error) {
	switch cfg.Storage.Provider {
	case config.ProviderGCS:
		client, err := gcsstorage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("create gcs client: %w", err)
		}
		return gcs.New(client, gcs.Config{Bucket: cfg.Storage.GCSBucket})
	case config.ProviderLocal:
		return local.New(local.Config{BaseDir: cfg.Storage.BaseDir})
	case config.ProviderMemory:
		return memorystorage.NewBlobStore(), nil
	default:
		// Snapshots disabled.
		return nil, nil
	}
}

func newPublisher(ctx context.Context, cfg config.Config) (profile.Publisher, func(), error) {
	switch cfg.Notify.Provider {
	case config.ProviderPubSub:
		client, err := gcspubsub.NewClient(ctx, cfg.Notify.ProjectID)
		if err != nil {
			return nil, nil, fmt.Errorf("create pubsub client: %w", err)
		}
		pub, err := pubsubnotify.New(client)
		if err != nil {
			return nil, nil, err
		}
		return pub, pub.Close, nil
	case config.ProviderMemory:
		return memorynotify.New(), func() {}, nil
	default:
		return nil, func() {}, nil
	}
}

func newSummarizer(cfg config.Config) (profile.Summarizer, error) {
	switch cfg.Summarizer.Provider {
	case config.ProviderOpenAI:
		return openai.New(openai.Config{
			Endpoint:  cfg.Summarizer.Endpoint,
			APIKey:    cfg.Summarizer.APIKey,
			Model:     cfg.Summarizer.Model,
			Timeout:   time.Duration(cfg.Summarizer.TimeoutSeconds) * time.Second,
			MaxTokens: cfg.Summarizer.MaxTokens,
		})
	default:
		return static.New("", nil), nil
	}
}
