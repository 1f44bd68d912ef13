package main

import (
	"context"
	"net/http"
	"time"

	"github.com/medsched/medsched/libs/config"
	"github.com/medsched/medsched/libs/db"
	"github.com/medsched/medsched/libs/httpx"
	"github.com/medsched/medsched/libs/kafkax"
	otelx "github.com/medsched/medsched/libs/otel"
	"github.com/medsched/medsched/libs/runtime"
	"github.com/medsched/medsched/services/booking-service/internal/handlers"
	"github.com/medsched/medsched/services/booking-service/internal/outbox"
	"github.com/medsched/medsched/services/booking-service/internal/schedule"
	"github.com/medsched/medsched/services/booking-service/internal/storage"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	service := config.String("SERVICE_NAME", "booking-service")
	port, err := config.Port("PORT", "8083")
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

	repo := storage.NewBookingRepository(pool)
	outboxRepo := outbox.NewRepository(pool)

	// Prefer the schedule service's gRPC API; read its tables directly when
	// no address is configured or generated clients are absent.
	var scheduleProvider schedule.Provider
	scheduleProvider, err = schedule.NewGRPCProvider(config.String("SCHEDULE_GRPC_ADDR", ""))
	if err != nil {
		logger.Error("schedule grpc client init failed; reading tables directly", "err", err)
		scheduleProvider = nil
	}
	if scheduleProvider == nil {
		scheduleProvider = schedule.NewDBProvider(pool)
	}

	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   config.String("KAFKA_BROKERS", ""),
		PollEvery: 2 * time.Second,
		BatchSize: 50,
	})
	go outboxPublisher.Run(ctx)

	bookingHandler := handlers.NewBookingHandler(repo, outboxRepo, logger, scheduleProvider)

	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(config.String("KAFKA_BROKERS", ""))},
	)
	mux.HandleFunc("/api/v1/public/availability", bookingHandler.Availability)
	mux.HandleFunc("/api/v1/public/book", bookingHandler.Create)
	mux.HandleFunc("/api/v1/bookings", bookingHandler.List)
	mux.HandleFunc("/api/v1/bookings/release", bookingHandler.Release)
	httpHandler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithRecovery(logger),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "booking")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}
