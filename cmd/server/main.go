// Command server wires high-level dependencies and keeps the lifecycle
// small. Business logic lives in the internal services packages.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	deliveryhandler "aidchain/internal/delivery/handler"
	deliveryservice "aidchain/internal/delivery/service"
	eventfeedhandler "aidchain/internal/eventfeed/handler"
	identityhandler "aidchain/internal/identity/handler"
	identityservice "aidchain/internal/identity/service"
	identitystore "aidchain/internal/identity/store"
	identitymemory "aidchain/internal/identity/store/memory"
	identitypostgres "aidchain/internal/identity/store/postgres"
	"aidchain/internal/jwtauth"
	ledgerhandler "aidchain/internal/ledger/handler"
	ledgerservice "aidchain/internal/ledger/service"
	ledgerstore "aidchain/internal/ledger/store"
	ledgermemory "aidchain/internal/ledger/store/memory"
	ledgerpostgres "aidchain/internal/ledger/store/postgres"
	"aidchain/internal/platform/config"
	"aidchain/internal/platform/database"
	"aidchain/internal/platform/httpserver"
	"aidchain/internal/platform/logger"
	"aidchain/internal/platform/metrics"
	"aidchain/internal/platform/middleware"
	platformredis "aidchain/internal/platform/redis"
	"aidchain/pkg/platform/events"
	kafkasink "aidchain/pkg/platform/events/sink/kafka"
	eventsmemory "aidchain/pkg/platform/events/store/memory"
	eventspostgres "aidchain/pkg/platform/events/store/postgres"
	eventsredis "aidchain/pkg/platform/events/store/redisstream"
)

func main() {
	log := logger.New()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	m := metrics.New()

	db, err := database.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	redisClient, err := platformredis.New(cfg.Redis())
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Durable stores when backends are configured, memory otherwise.
	var (
		registryStore identitystore.RegistryStore = identitymemory.NewInMemoryStore()
		ledgerStore   ledgerstore.LedgerStore     = ledgermemory.NewInMemoryStore()
		eventStore    events.Store                = eventsmemory.NewInMemoryStore()
	)
	if db != nil {
		registryStore = identitypostgres.New(db)
		ledgerStore = ledgerpostgres.New(db)
		eventStore = eventspostgres.New(db)
	} else if redisClient != nil {
		eventStore = eventsredis.New(redisClient.Client)
	}

	var sinks []events.Sink
	kafka, err := kafkasink.New(cfg.KafkaBrokers, cfg.KafkaTopic)
	if err != nil {
		return err
	}
	if kafka != nil {
		defer kafka.Close()
		sinks = append(sinks, kafka)
	}
	publisher := events.NewPublisher(eventStore, log, sinks...)

	registry, err := identityservice.New(cfg.Administrator, registryStore, log, identityservice.WithMetrics(m))
	if err != nil {
		return err
	}
	ledger, err := ledgerservice.New(
		cfg.Administrator, cfg.Threshold, cfg.MinDonation,
		ledgerStore, registry, publisher, log,
		ledgerservice.WithMetrics(m),
	)
	if err != nil {
		return err
	}
	delivery, err := deliveryservice.New(ledgerStore, publisher, log, deliveryservice.WithMetrics(m))
	if err != nil {
		return err
	}

	tokens := jwtauth.NewService(cfg.JWTSigningKey, "aidchain", "aidchain-api")

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(log))
	r.Use(middleware.Logger(log))
	r.Use(middleware.Latency(m))
	r.Use(middleware.Timeout(30 * time.Second))

	identityhandler.New(registry, log, tokens).Register(r)
	ledgerhandler.New(ledger, delivery, log, tokens).Register(r)
	deliveryhandler.New(delivery, log, tokens).Register(r)
	eventfeedhandler.New(publisher, log).Register(r)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if redisClient != nil {
			if err := redisClient.Health(req.Context()); err != nil {
				http.Error(w, "redis unhealthy", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})

	srv := httpserver.New(cfg.Addr, r)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting aidchain server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
