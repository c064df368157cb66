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

	"golang.org/x/sync/errgroup"

	"backoffice/internal/activity"
	activitymemory "backoffice/internal/activity/store/memory"
	activitypg "backoffice/internal/activity/store/postgres"
	httpapi "backoffice/internal/http"
	jwttoken "backoffice/internal/jwt_token"
	moderationhandler "backoffice/internal/moderation/handler"
	"backoffice/internal/moderation/service"
	entitystore "backoffice/internal/moderation/store/entity"
	"backoffice/internal/platform/config"
	"backoffice/internal/platform/httpserver"
	"backoffice/internal/platform/kafka"
	"backoffice/internal/platform/logger"
	"backoffice/internal/platform/metrics"
	"backoffice/internal/platform/postgres"
	"backoffice/internal/platform/redis"
	"backoffice/internal/scheduler"
	"backoffice/internal/stats"
	statshandler "backoffice/internal/stats/handler"
)

const outboxSize = 256

// main wires dependencies and owns the process lifecycle. Business logic
// lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	db, err := postgres.Open(cfg.Postgres.DSN)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
		if err := postgres.Migrate(ctx, db); err != nil {
			return err
		}
	}

	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	producer, err := kafka.NewProducer(cfg.Kafka)
	if err != nil {
		return err
	}
	if producer != nil {
		defer producer.Close()
	}

	var (
		entities      service.EntityStore
		statsEntities stats.EntityReader
		activityStore activity.Store
	)
	if db != nil {
		pg := entitystore.NewPostgres(db)
		entities, statsEntities = pg, pg
		activityStore = activitypg.New(db)
	} else {
		log.Warn("no postgres DSN configured, using in-memory stores")
		mem := entitystore.NewInMemory()
		entities, statsEntities = mem, mem
		activityStore = activitymemory.NewInMemoryStore()
	}

	publisherOpts := []activity.PublisherOption{
		activity.WithLogger(log),
		activity.WithMetrics(m),
	}
	var outbox chan activity.Record
	if producer != nil {
		outbox = make(chan activity.Record, outboxSize)
		publisherOpts = append(publisherOpts, activity.WithOutbox(outbox))
	}
	publisher := activity.NewPublisher(activityStore, publisherOpts...)

	moderationSvc := service.New(entities, publisher,
		service.WithLogger(log),
		service.WithMetrics(m),
	)
	statsSvc := stats.New(statsEntities, activityStore,
		stats.WithLogger(log),
		stats.WithMetrics(m),
		stats.WithWindow(cfg.StatsWindow),
		stats.WithActivityLimit(cfg.RecentActivityLimit),
	)

	sweeperOpts := []scheduler.Option{scheduler.WithLogger(log)}
	if redisClient != nil {
		sweeperOpts = append(sweeperOpts, scheduler.WithLocker(redisClient))
	}
	sweeper := scheduler.New(moderationSvc, cfg.SweepInterval, sweeperOpts...)

	validator := jwttoken.NewJWTService(cfg.JWTSigningKey, "backoffice", "backoffice-admin")

	var health []httpapi.HealthChecker
	if redisClient != nil {
		health = append(health, redisClient)
	}

	router := httpapi.NewRouter(httpapi.Deps{
		Moderation:     moderationhandler.New(moderationSvc, log),
		Stats:          statshandler.New(statsSvc, publisher, log),
		TokenValidator: validator,
		AdminKeyHash:   cfg.AdminKeyHash,
		Sweeper:        sweeper,
		Health:         health,
		Logger:         log,
	})
	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting backoffice server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		err := sweeper.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	if producer != nil {
		worker := activity.NewWorker(producer, outbox, log, m)
		g.Go(func() error {
			err := worker.Run(gctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
