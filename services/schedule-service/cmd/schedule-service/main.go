package main

import (
	"context"
	"net/http"
	"time"

	"github.com/medsched/medsched/libs/config"
	"github.com/medsched/medsched/libs/db"
	"github.com/medsched/medsched/libs/httpx"
	otelx "github.com/medsched/medsched/libs/otel"
	"github.com/medsched/medsched/libs/runtime"
	"github.com/medsched/medsched/services/schedule-service/internal/handlers"
	"github.com/medsched/medsched/services/schedule-service/internal/outbox"
	"github.com/medsched/medsched/services/schedule-service/internal/session"
	"github.com/medsched/medsched/services/schedule-service/internal/storage"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	service := config.String("SERVICE_NAME", "schedule-service")
	port, err := config.Port("PORT", "8082")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}
	pool, err := db.Open(ctx, dbURL)
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	if config.Bool("DB_ENSURE_SCHEMA", true) {
		if err := storage.EnsureSchema(ctx, pool); err != nil {
			logger.Error("schema setup failed", "err", err)
			panic(err)
		}
	}

	repo := storage.NewRepository(pool)
	outboxRepo := outbox.NewRepository(pool)
	store := storage.NewStore(pool, repo, outboxRepo)

	publisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   config.String("KAFKA_BROKERS", ""),
		PollEvery: time.Duration(config.Int("OUTBOX_POLL_SECONDS", 2)) * time.Second,
		BatchSize: config.Int("OUTBOX_BATCH_SIZE", 50),
	})
	go publisher.Run(ctx)

	sessionTTL := time.Duration(config.Int("SESSION_TTL_MINUTES", 30)) * time.Minute
	var sessionStore session.Store
	readyChecks := []runtime.ReadyCheck{
		{Name: "db", Check: db.ReadyCheck(pool)},
	}
	if addr := config.String("REDIS_ADDR", ""); addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: addr})
		defer rdb.Close()
		sessionStore = session.NewRedisStore(rdb)
		readyChecks = append(readyChecks, runtime.ReadyCheck{Name: "redis", Check: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
	} else {
		logger.Warn("REDIS_ADDR not set, draft sessions are held in memory")
		sessionStore = session.NewMemoryStore()
	}

	sessions := session.NewManager(sessionStore, store, sessionTTL)
	httpHandler := handlers.New(store, sessions)

	mux := runtime.NewBaseMuxWithReady(readyChecks...)
	mux.HandleFunc("/api/v1/schedule/profile", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			httpHandler.GetProfile(w, r)
			return
		}
		if r.Method == http.MethodPut {
			httpHandler.UpdateProfile(w, r)
			return
		}
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	})
	mux.HandleFunc("/api/v1/schedule/week", httpHandler.GetWeek)
	mux.HandleFunc("/api/v1/schedule/day", httpHandler.Day)
	mux.HandleFunc("/api/v1/schedule/blocked", httpHandler.ListBlocked)
	mux.HandleFunc("/api/v1/schedule/block", httpHandler.BlockDates)
	mux.HandleFunc("/api/v1/schedule/unblock", httpHandler.UnblockDates)
	mux.HandleFunc("/api/v1/schedule/session", httpHandler.Session)
	mux.HandleFunc("/api/v1/schedule/session/day", httpHandler.SessionDay)
	mux.HandleFunc("/api/v1/schedule/session/revert", httpHandler.SessionRevert)
	mux.HandleFunc("/api/v1/schedule/session/save", httpHandler.SessionSave)
	mux.HandleFunc("/api/v1/schedule/session/discard", httpHandler.SessionDiscard)

	handler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithRecovery(logger),
	)
	handler = otelhttp.NewHandler(handler, "schedule")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	if err := startGrpcServer(ctx, logger, store); err != nil {
		logger.Error("grpc server failed to start", "err", err)
	}

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}
