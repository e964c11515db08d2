package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"enrolld/internal/enrollment/metrics"
	"enrolld/internal/enrollment/service"
	enrollmentstore "enrolld/internal/enrollment/store/enrollment"
	rosterstore "enrolld/internal/enrollment/store/roster"
	sectionstore "enrolld/internal/enrollment/store/section"
	settingsstore "enrolld/internal/enrollment/store/settings"
	"enrolld/internal/events"
	"enrolld/internal/platform/config"
	"enrolld/internal/platform/httpserver"
	"enrolld/internal/platform/logger"
	"enrolld/internal/platform/mongodb"
	platformredis "enrolld/internal/platform/redis"
	"enrolld/internal/score/fetch"
	httptransport "enrolld/internal/transport/http"
	"enrolld/internal/wizard"
	wizardhandler "enrolld/internal/wizard/handler"
	"enrolld/internal/wizard/token"
)

// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the internal service packages.
func main() {
	log := logger.New()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Error("configuration error", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mongoClient, err := mongodb.New(ctx, cfg.MongoURI)
	if err != nil {
		log.Error("mongodb connection failed", "error", err)
		os.Exit(1)
	}
	defer func() { _ = mongoClient.Close(context.Background()) }()
	db := mongoClient.Database(cfg.MongoDatabase)

	// The settings document is the system's domain configuration; a missing
	// or incomplete document means the deployment is not ready to serve.
	settings, err := settingsstore.NewMongo(db).Load(ctx)
	if err != nil {
		log.Error("settings load failed", "error", err)
		os.Exit(1)
	}

	enrollments := enrollmentstore.NewMongo(db)
	if err := enrollments.EnsureIndexes(ctx); err != nil {
		log.Error("index creation failed", "error", err)
		os.Exit(1)
	}

	checkers := map[string]httptransport.HealthChecker{"mongodb": mongoClient}

	var sessions wizard.Store = wizard.NewInMemoryStore()
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		sessions = wizard.NewRedisStore(redisClient.Client, cfg.SessionTTL)
		checkers["redis"] = redisClient
	} else {
		log.Warn("redis not configured; wizard sessions are in-memory and not shared across instances")
	}

	var publisher events.Publisher = events.Noop{}
	if len(cfg.KafkaBrokers) > 0 {
		kafka, err := events.NewKafka(cfg.KafkaBrokers, cfg.KafkaTopic, log)
		if err != nil {
			log.Error("kafka connection failed", "error", err)
			os.Exit(1)
		}
		defer kafka.Close()
		publisher = kafka
	}

	fetchOpts := []fetch.Option{}
	if cfg.ScoreFetchInsecureTLS {
		fetchOpts = append(fetchOpts, fetch.WithInsecureTLS())
	}
	scores := fetch.New(settings.ScoreAPIURL, fetchOpts...)

	m := metrics.New()
	svc := service.New(
		enrollments,
		rosterstore.NewMongo(db),
		sectionstore.NewMongo(db),
		scores,
		settings,
		publisher,
		log,
		m,
	)

	signer := token.NewSigner(cfg.JWTSigningKey, "enrolld", cfg.SessionTTL)
	handler := wizardhandler.New(svc, sessions, signer, log, m)

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:   log,
		Wizard:   handler,
		Checkers: checkers,
	})

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting enrolld", "addr", cfg.Addr, "term", settings.ActiveTerm)
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

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
