package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"campusconnect/internal/audit"
	eventhandler "campusconnect/internal/event/handler"
	eventservice "campusconnect/internal/event/service"
	eventstore "campusconnect/internal/event/store"
	feedhandler "campusconnect/internal/feed/handler"
	feedservice "campusconnect/internal/feed/service"
	feedstore "campusconnect/internal/feed/store"
	graphhandler "campusconnect/internal/graph/handler"
	graphservice "campusconnect/internal/graph/service"
	identityhandler "campusconnect/internal/identity/handler"
	identityservice "campusconnect/internal/identity/service"
	identitystore "campusconnect/internal/identity/store"
	messagehandler "campusconnect/internal/message/handler"
	messageservice "campusconnect/internal/message/service"
	messagestore "campusconnect/internal/message/store"
	"campusconnect/internal/platform/config"
	"campusconnect/internal/platform/httpserver"
	"campusconnect/internal/platform/logger"
	"campusconnect/internal/platform/metrics"
	"campusconnect/internal/platform/middleware"
	"campusconnect/internal/platform/postgres"
	platformredis "campusconnect/internal/platform/redis"
	"campusconnect/internal/ratelimit"
	"campusconnect/internal/token"
	"campusconnect/internal/upload"
	"campusconnect/internal/whitelist"
)

// main wires dependencies and supervises the server and audit worker.
// Business logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	db, err := postgres.Open(cfg.PostgresURL)
	if err != nil {
		log.Error("postgres connection failed", "error", err)
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
		for _, schema := range []string{
			identitystore.Schema,
			whitelist.PostgresSchema,
			feedstore.Schema,
			eventstore.Schema,
			messagestore.Schema,
		} {
			if _, err := db.Exec(schema); err != nil {
				log.Error("schema migration failed", "error", err)
				os.Exit(1)
			}
		}
	}

	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	var users identitystore.UserStore
	var posts feedstore.PostStore
	var events eventstore.EventStore
	var messages messagestore.MessageStore
	var roster whitelist.Roster
	if db != nil {
		users = identitystore.NewPostgres(db)
		posts = feedstore.NewPostgres(db)
		events = eventstore.NewPostgres(db)
		messages = messagestore.NewPostgres(db)
		roster = whitelist.NewPostgres(db)
	} else {
		users = identitystore.NewInMemory()
		posts = feedstore.NewInMemory()
		events = eventstore.NewInMemory()
		messages = messagestore.NewInMemory()
		devRoster := whitelist.NewInMemory()
		devRoster.Add(whitelist.SeedEntries()...)
		roster = devRoster
		log.Info("no postgres configured, using in-memory stores with seeded roster")
	}
	if redisClient != nil {
		roster = whitelist.NewCachedRoster(roster, redisClient.Client, time.Hour)
	}

	images, err := upload.NewDiskStorage(cfg.UploadsDir)
	if err != nil {
		log.Error("uploads dir unavailable", "error", err)
		os.Exit(1)
	}

	m := metrics.New()
	tokens := token.NewService(cfg.JWTSigningKey, cfg.TokenTTL)

	auditPublisher := audit.NewPublisher(1024, log)
	auditStore := audit.NewInMemoryStore()
	auditSink, err := audit.NewKafkaSink(cfg.KafkaBrokers, "campusconnect.audit")
	if err != nil {
		log.Error("kafka connection failed", "error", err)
		os.Exit(1)
	}
	var sink audit.Sink
	if auditSink != nil {
		defer auditSink.Close()
		sink = auditSink
	}
	auditWorker := audit.NewWorker(auditStore, auditPublisher.Inbox(), sink, log)

	identitySvc := identityservice.New(users, roster, tokens,
		identityservice.WithLogger(log),
		identityservice.WithAuditPublisher(auditPublisher),
		identityservice.WithMetrics(m),
	)
	graphSvc := graphservice.New(users,
		graphservice.WithLogger(log),
		graphservice.WithAuditPublisher(auditPublisher),
		graphservice.WithMetrics(m),
	)
	feedSvc := feedservice.New(posts, users,
		feedservice.WithLogger(log),
		feedservice.WithAuditPublisher(auditPublisher),
		feedservice.WithMetrics(m),
	)
	eventSvc := eventservice.New(events,
		eventservice.WithLogger(log),
		eventservice.WithAuditPublisher(auditPublisher),
	)
	messageSvc := messageservice.New(messages, users,
		messageservice.WithLogger(log),
		messageservice.WithAuditPublisher(auditPublisher),
		messageservice.WithMetrics(m),
	)

	identityH := identityhandler.New(identitySvc, log)
	graphH := graphhandler.New(graphSvc, log)
	feedH := feedhandler.New(feedSvc, images, log)
	eventH := eventhandler.New(eventSvc, log)
	messageH := messagehandler.New(messageSvc, log)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RequestTime)
	router.Use(middleware.Recovery(log))
	router.Use(middleware.Logger(log))
	router.Use(middleware.Latency(m))
	router.Use(middleware.Timeout(30 * time.Second))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	router.Handle("/metrics", promhttp.Handler())
	router.Handle(upload.URLPrefix+"/*",
		http.StripPrefix(upload.URLPrefix+"/", http.FileServer(http.Dir(images.Dir()))))

	var limiterStore ratelimit.Store
	if redisClient != nil {
		limiterStore = ratelimit.NewRedis(redisClient.Client)
	} else {
		limiterStore = ratelimit.NewInMemory()
	}

	router.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(ratelimit.Middleware(limiterStore, 20, time.Minute, log))
			identityH.RegisterPublic(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(tokens, log))
			identityH.RegisterProtected(r)
			graphH.Register(r)
			feedH.Register(r)
			eventH.Register(r)
			messageH.Register(r)
		})
	})

	srv := httpserver.New(cfg.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info("starting campusconnect", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		err := auditWorker.Run(groupCtx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
