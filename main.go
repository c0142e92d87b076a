package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"hotel-reservation/config"
	"hotel-reservation/controllers"
	"hotel-reservation/jobs"
	"hotel-reservation/repositories"
	"hotel-reservation/routes"
	"hotel-reservation/services"
)

func main() {
	// .env is optional
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zl, log, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = zl.Sync() }()
	if envErr != nil {
		log.Info(".env not found, using environment variables")
	}

	ctx := context.Background()
	clock := services.NewSystemClock(cfg.Location)

	store, err := openStore(cfg, zl)
	if err != nil {
		log.Fatalw("store init failed", "backend", cfg.StoreBackend, "error", err)
	}
	if cfg.SeedData {
		if err := config.SeedDatabase(ctx, store, clock.Today(), log); err != nil {
			log.Fatalw("seed failed", "error", err)
		}
	}

	var locker services.Locker = services.NewKeyedLocker()
	if cfg.LockBackend == config.LockRedis {
		client, err := config.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalw("redis connect failed", "error", err)
		}
		defer client.Close()
		locker = services.NewRedisLocker(client, cfg.LockTTL, log)
	}

	// Initialize services
	audit := services.NewAuditService(store.Audit, clock, cfg.SinkBuffer, log.Named("audit"))
	notifications := services.NewNotificationService(store.Notifications, clock, cfg.SinkBuffer, log.Named("notify"))
	oracle := services.NewAvailabilityOracle(store.Rooms, store.Reservations)
	evaluator := services.NewDiscountEvaluator(store.Discounts, clock)
	catalog := services.NewCatalogService(store.Services, audit)
	roomService := services.NewRoomService(store.Rooms, store.Reservations, locker, clock, audit, cfg.LockWait, log.Named("rooms"))
	discountService := services.NewDiscountService(store.Discounts, locker, audit, cfg.LockWait)
	reservationService := services.NewReservationService(services.ReservationDeps{
		Rooms:        store.Rooms,
		Reservations: store.Reservations,
		Oracle:       oracle,
		Discounts:    evaluator,
		Catalog:      catalog,
		RoomService:  roomService,
		Locker:       locker,
		Payments:     services.NewLocalPaymentProcessor(log.Named("payments")),
		Audit:        audit,
		Notify:       notifications,
		Clock:        clock,
		LockWait:     cfg.LockWait,
		Logger:       log.Named("reservations"),
	})
	syncer := services.NewRoomSynchronizer(store.Rooms, store.Reservations, roomService, locker, clock, audit, cfg.LockWait, log.Named("sync"))

	scheduler, err := jobs.New(syncer, jobs.Options{
		Interval:    cfg.SyncInterval,
		DailyAt:     cfg.SyncDailyAt,
		PassTimeout: cfg.SyncPassTimeout,
		Location:    cfg.Location,
		RunOnStart:  true,
	}, log.Named("jobs"))
	if err != nil {
		log.Fatalw("scheduler init failed", "error", err)
	}
	scheduler.Start()

	gin.SetMode(gin.ReleaseMode)
	router := routes.SetupRouter(routes.Controllers{
		Rooms:        controllers.NewRoomController(roomService, oracle, reservationService),
		Reservations: controllers.NewReservationController(reservationService, log.Named("http")),
		Discounts:    controllers.NewDiscountController(discountService),
		Catalog:      controllers.NewCatalogController(catalog),
		System:       controllers.NewSystemController(audit, notifications, syncer, cfg.SyncPassTimeout),
	}, cfg.CorsOrigins, log.Named("http"))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "addr", srv.Addr, "store", cfg.StoreBackend, "locks", cfg.LockBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}
	if err := scheduler.Shutdown(); err != nil {
		log.Warnw("scheduler shutdown", "error", err)
	}
	if err := audit.Close(shutdownCtx); err != nil {
		log.Warnw("audit sink not drained", "error", err)
	}
	if err := notifications.Close(shutdownCtx); err != nil {
		log.Warnw("notification sink not drained", "error", err)
	}
	log.Info("server stopped")
}

func openStore(cfg *config.Config, zl *zap.Logger) (*repositories.Store, error) {
	if cfg.StoreBackend == config.StoreMemory {
		return repositories.NewMemoryStore().Store(), nil
	}
	db, err := config.ConnectDatabase(cfg, zl)
	if err != nil {
		return nil, err
	}
	return repositories.NewGormStore(db), nil
}
