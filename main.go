package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"gopkg.in/natefinch/lumberjack.v2"

	"cleaning-scheduler/config"
	"cleaning-scheduler/domain"
	"cleaning-scheduler/feed"
	"cleaning-scheduler/handlers"
	"cleaning-scheduler/middleware"
	"cleaning-scheduler/queue"
	"cleaning-scheduler/remote"
	"cleaning-scheduler/repository"
	"cleaning-scheduler/services"
)

func main() {
	cfg := config.LoadConfig()

	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	lumberjackLog := &lumberjack.Logger{
		Filename:  cfg.LogFile,
		MaxSize:   1,
		LocalTime: true,
	}
	logger.SetOutput(lumberjackLog)
	defer func() {
		if err := lumberjackLog.Close(); err != nil {
			logger.WithFields(logrus.Fields{"path": "main"}).Error("Error closing log file:", err)
		}
	}()

	tracerProvider, err := NewTracerProvider(cfg.ServiceName, cfg.JaegerAddress)
	if err != nil {
		logger.Fatal("JaegerTraceProvider failed to Initialize", err)
	}
	tracer := tracerProvider.Tracer(cfg.ServiceName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// This process syncs on behalf of exactly one user; the remote token
	// carries that identity.
	viewer, err := middleware.ViewerFromToken(cfg.RemoteToken, cfg.JWTSecret)
	if err != nil {
		logger.Fatal("Unable to resolve agent identity from REMOTE_TOKEN: ", err)
	}

	ledger := repository.NewLedger(logger)
	store := remote.NewHTTPStore(cfg.RemoteBaseURL, cfg.RemoteToken, tracer, logger)
	syncService := services.NewSyncServiceImpl(time.Duration(cfg.OptimisticTTLSeconds)*time.Second, logger)

	storage, err := queue.OpenStorage(cfg.QueueDBPath)
	if err != nil {
		logger.Fatal("Unable to open sync queue storage: ", err)
	}
	defer storage.Close()

	offlineQueue, err := queue.NewOfflineQueue(storage, services.NewRemoteReplayExecutor(store), cfg.SyncMaxRetries, logger)
	if err != nil {
		logger.Fatal("Unable to initialize sync queue: ", err)
	}
	offlineQueue.OnTerminalFailure(func(op domain.PendingOperation, err error) {
		logger.WithFields(logrus.Fields{"path": "main", "operation": string(op.Operation), "id": op.ID}).
			Error("Sync operation permanently failed: ", err)
	})
	offlineQueue.StartAutoDrain(ctx, time.Duration(cfg.QueueDrainSeconds)*time.Second)

	validationService := services.NewValidationServiceImpl()
	turnService := services.NewTurnServiceImpl(ledger, store, syncService, logger)
	bookingService := services.NewBookingServiceImpl(ledger, store, syncService, turnService, validationService, offlineQueue, logger)
	propertyService := services.NewPropertyServiceImpl(ledger, store, syncService, offlineQueue, logger)

	if err := bookingService.FetchAll(ctx); err != nil {
		logger.WithFields(logrus.Fields{"path": "main"}).
			Error("Initial snapshot failed, starting from persisted state: ", err)
	}

	reconciler := feed.NewReconciler(ledger, syncService, viewer, logger)
	subscriber := feed.NewSubscriber(cfg.FeedURL, reconciler, cfg.FeedMaxReconnect,
		time.Duration(cfg.FeedBackoffMaxSeconds)*time.Second, logger)
	subscriber.OnStatusChange(func(status domain.ConnectionStatus) {
		offlineQueue.SetOnline(ctx, status == domain.StatusConnected)
	})
	go func() {
		if err := subscriber.Run(ctx); err != nil && ctx.Err() == nil {
			logger.WithFields(logrus.Fields{"path": "main"}).Error("Change feed stopped: ", err)
		}
	}()

	go sweepOptimisticRecords(ctx, syncService, time.Duration(cfg.OptimisticTTLSeconds)*time.Second, logger)

	bookingsHandler := handlers.NewBookingsHandler(bookingService, ledger, tracer, logger)
	propertyHandler := handlers.NewPropertyHandler(propertyService, ledger, tracer, logger)
	statusHandler := handlers.NewStatusHandler(subscriber, reconciler, syncService, offlineQueue, logger)

	router := mux.NewRouter()
	router.Use(bookingsHandler.MiddlewareContentTypeSet)
	router.Use(middleware.Authenticate(cfg.JWTSecret))

	router.HandleFunc("/api/bookings", bookingsHandler.GetAllBookings).Methods(http.MethodGet)
	router.HandleFunc("/api/bookings/today-turns", bookingsHandler.GetTodayTurns).Methods(http.MethodGet)
	router.HandleFunc("/api/bookings/upcoming", bookingsHandler.GetUpcomingCleanings).Methods(http.MethodGet)
	router.HandleFunc("/api/bookings/by-status", bookingsHandler.GetBookingsByStatus).Methods(http.MethodGet)
	router.HandleFunc("/api/bookings", bookingsHandler.CreateBooking).Methods(http.MethodPost)
	router.HandleFunc("/api/bookings/{id}", bookingsHandler.UpdateBooking).Methods(http.MethodPatch)
	router.HandleFunc("/api/bookings/{id}", bookingsHandler.DeleteBooking).Methods(http.MethodDelete)
	router.HandleFunc("/api/bookings/{id}/status", bookingsHandler.ChangeStatus).Methods(http.MethodPut)
	router.HandleFunc("/api/bookings/{id}/cleaner", bookingsHandler.AssignCleaner).Methods(http.MethodPut)

	router.HandleFunc("/api/properties", propertyHandler.GetAllProperties).Methods(http.MethodGet)
	router.HandleFunc("/api/properties", propertyHandler.CreateProperty).Methods(http.MethodPost)
	router.HandleFunc("/api/properties/{id}", propertyHandler.UpdateProperty).Methods(http.MethodPatch)
	router.HandleFunc("/api/properties/{id}", propertyHandler.DeleteProperty).Methods(http.MethodDelete)

	router.HandleFunc("/api/status", statusHandler.GetStatus).Methods(http.MethodGet)

	headersOk := gorillaHandlers.AllowedHeaders([]string{"X-Requested-With", "Authorization", "Content-Type"})
	originsOk := gorillaHandlers.AllowedOrigins([]string{"https://localhost:4200",
		"https://localhost:4200/"})
	methodsOk := gorillaHandlers.AllowedMethods([]string{"GET", "HEAD", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})

	handlerForHttp := gorillaHandlers.CORS(originsOk, headersOk, methodsOk)(router)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handlerForHttp,
		IdleTimeout:  120 * time.Second,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.WithFields(logrus.Fields{"path": "main"}).Info("Server listening on port ", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server stopped unexpectedly: ", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	sig := <-sigCh
	logger.WithFields(logrus.Fields{"path": "main"}).Info("Received terminate, graceful shutdown ", sig)

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Cannot gracefully shutdown...")
	}
	logger.WithFields(logrus.Fields{"path": "main"}).Info("Server stopped")
}

// sweepOptimisticRecords drops correlation records whose feed echo never
// arrived, so stale entries cannot swallow future peer events.
func sweepOptimisticRecords(ctx context.Context, syncService services.SyncService, interval time.Duration, logger *logrus.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if dropped := syncService.SweepExpired(time.Now()); dropped > 0 {
				logger.WithFields(logrus.Fields{"path": "main", "dropped": dropped}).
					Info("Swept expired optimistic update records")
			}
		}
	}
}

func NewTracerProvider(serviceName, collectorEndpoint string) (*sdktrace.TracerProvider, error) {
	exporter, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(collectorEndpoint)))
	if err != nil {
		return nil, fmt.Errorf("unable to initialize exporter due: %w", err)
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(serviceName),
			semconv.DeploymentEnvironmentKey.String("development"),
		)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	return tp, nil
}
