// Command server wires the confidential driver registry: registry, value
// store, threshold evaluator and lifecycle services behind the HTTP API.
// Business logic lives in the internal services packages.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/sync/errgroup"

	"github.com/ClarenceRuth/cipher-shipment-stream/internal/audit"
	kafkapublisher "github.com/ClarenceRuth/cipher-shipment-stream/internal/audit/publisher/kafka"
	auditmemory "github.com/ClarenceRuth/cipher-shipment-stream/internal/audit/store/memory"
	auditpostgres "github.com/ClarenceRuth/cipher-shipment-stream/internal/audit/store/postgres"
	auditredis "github.com/ClarenceRuth/cipher-shipment-stream/internal/audit/store/redisstore"
	"github.com/ClarenceRuth/cipher-shipment-stream/internal/confidential"
	"github.com/ClarenceRuth/cipher-shipment-stream/internal/coprocessor"
	"github.com/ClarenceRuth/cipher-shipment-stream/internal/jwttoken"
	"github.com/ClarenceRuth/cipher-shipment-stream/internal/lifecycle"
	"github.com/ClarenceRuth/cipher-shipment-stream/internal/platform/config"
	"github.com/ClarenceRuth/cipher-shipment-stream/internal/platform/httpserver"
	"github.com/ClarenceRuth/cipher-shipment-stream/internal/platform/logger"
	platformredis "github.com/ClarenceRuth/cipher-shipment-stream/internal/platform/redis"
	"github.com/ClarenceRuth/cipher-shipment-stream/internal/registry"
	registrymetrics "github.com/ClarenceRuth/cipher-shipment-stream/internal/registry/metrics"
	"github.com/ClarenceRuth/cipher-shipment-stream/internal/threshold"
	httptransport "github.com/ClarenceRuth/cipher-shipment-stream/internal/transport/http"
	id "github.com/ClarenceRuth/cipher-shipment-stream/pkg/domain"
)

func main() {
	log := logger.New()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	owner := cfg.Owner
	if owner.IsNil() {
		owner = id.NewPrincipalID()
		log.Warn("no owner configured, generated one for this run", "owner", owner.String())
	}
	serviceID := cfg.ServiceID
	if serviceID.IsNil() {
		serviceID = id.NewPrincipalID()
	}

	policy, err := threshold.ParsePolicy(cfg.ComparisonPolicy)
	if err != nil {
		log.Error("invalid comparison policy", "error", err)
		os.Exit(1)
	}

	auditStore, cleanup, err := buildAuditStore(cfg, log)
	if err != nil {
		log.Error("audit store setup failed", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	// Broker fan-out is asynchronous: the publisher drops events onto a
	// channel and a worker ships them, so a slow broker never stalls requests.
	var sinks []audit.Sink
	var auditWorker *audit.Worker
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaSink, err := kafkapublisher.New(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			log.Error("kafka audit sink setup failed", "error", err)
			os.Exit(1)
		}
		defer kafkaSink.Close()
		inbox := make(chan audit.Event, 256)
		sinks = append(sinks, audit.NewChannelSink(inbox))
		auditWorker = audit.NewWorker(kafkaSink, inbox)
	}
	auditP := audit.NewPublisher(auditStore, sinks...)

	copro := coprocessor.NewSimulator()
	life := lifecycle.NewService(owner, log, auditP)
	values := confidential.NewService(
		serviceID, life, copro,
		confidential.NewStore(), confidential.NewLedger(),
		auditP, log,
	)
	thresh := threshold.NewService(
		cfg.InitialThreshold, policy, cfg.ThresholdAdminOnly,
		life, values, copro, auditP, log,
	)
	reg := registry.NewService(registry.NewStore(), values, auditP, log, registrymetrics.New())

	tokens := jwttoken.NewService(cfg.JWTSigningKey, "shipment-stream", "shipment-stream-api")
	handler := httptransport.NewHandler(reg, values, thresh, life, log, cfg.BatchOpBudget)
	router := httptransport.NewRouter(handler, tokens, cfg.DevActorHeader)

	srv := httpserver.New(cfg.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	if auditWorker != nil {
		g.Go(func() error {
			return auditWorker.Run(ctx)
		})
	}
	g.Go(func() error {
		log.Info("starting shipment-stream", "addr", cfg.Addr, "policy", string(policy))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}

// buildAuditStore prefers durable storage when configured: postgres, then the
// redis stream, then in-process memory.
func buildAuditStore(cfg config.Server, log *slog.Logger) (audit.Store, func(), error) {
	if cfg.Postgres.DSN != "" {
		db, err := sql.Open("pgx", cfg.Postgres.DSN)
		if err != nil {
			return nil, nil, err
		}
		if _, err := db.Exec(auditpostgres.Schema); err != nil {
			db.Close()
			return nil, nil, err
		}
		log.Info("audit store: postgres")
		return auditpostgres.New(db), func() { db.Close() }, nil
	}

	client, err := platformredis.New(cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	if client != nil {
		log.Info("audit store: redis stream")
		return auditredis.New(client.Client), func() { client.Close() }, nil
	}

	log.Info("audit store: in-memory")
	return auditmemory.New(), func() {}, nil
}
