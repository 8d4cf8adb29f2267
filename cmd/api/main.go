package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-venue-seat-reservation/internal/api"
	"github.com/sanosuguru/go-venue-seat-reservation/internal/api/handler"
	"github.com/sanosuguru/go-venue-seat-reservation/internal/api/middleware"
	"github.com/sanosuguru/go-venue-seat-reservation/internal/application"
	"github.com/sanosuguru/go-venue-seat-reservation/internal/config"
	"github.com/sanosuguru/go-venue-seat-reservation/internal/infrastructure/postgres"
	"github.com/sanosuguru/go-venue-seat-reservation/internal/infrastructure/rabbitmq"
	redisinfra "github.com/sanosuguru/go-venue-seat-reservation/internal/infrastructure/redis"
	"github.com/sanosuguru/go-venue-seat-reservation/internal/pkg/logger"
	"github.com/sanosuguru/go-venue-seat-reservation/internal/pkg/metrics"
	"github.com/sanosuguru/go-venue-seat-reservation/internal/worker"
)

func main() {
	// .env は無くてもよい
	_ = godotenv.Load()

	cfg := config.Load()

	zl, err := logger.NewWithOptions(logger.Options{
		Env:        cfg.Log.Env,
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "ロガー初期化エラー: %v\n", err)
		os.Exit(1)
	}
	logger.Set(zl)
	defer func() { _ = logger.Sync() }()

	m := metrics.Init()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// データベース
	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		logger.Fatal("DB接続エラー", zap.Error(err))
	}
	defer db.Close()

	if err := postgres.RunMigrations(db.DB, cfg.Database.MigrationsPath); err != nil {
		logger.Fatal("マイグレーションエラー", zap.Error(err))
	}

	// Redis は任意。使えない場合はキャッシュとロックなしで動作する
	var (
		redisClient *redis.Client
		ticketCache redisinfra.TicketCacheInterface
		lockManager redisinfra.LockManagerInterface
	)
	if cfg.Redis.Enabled {
		rc := redisinfra.NewClient(&cfg.Redis)
		if err := redisinfra.Ping(ctx, rc); err != nil {
			logger.Warn("Redisに接続できないためキャッシュと分散ロックを無効化", zap.Error(err))
			_ = rc.Close()
		} else {
			redisClient = rc
			ticketCache = redisinfra.NewTicketCache(rc, cfg.Redis.CacheTTL)
			lockManager = redisinfra.NewLockManager(rc)
		}
	}

	// リポジトリ
	txManager := postgres.NewTxManager(db)
	venueRepo := postgres.NewVenueRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	ticketRepo := postgres.NewTicketRepository(db)
	reservationRepo := postgres.NewReservationRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	// サービス
	reservationService := application.NewReservationService(
		txManager, eventRepo, ticketRepo, venueRepo, reservationRepo, outboxRepo, ticketCache,
	).WithMetrics(m)
	eventService := application.NewEventService(eventRepo, ticketRepo, ticketCache)
	provisioningService := application.NewProvisioningService(
		txManager, venueRepo, eventRepo, ticketRepo, lockManager,
	).WithMetrics(m)

	if cfg.Seed.Demo {
		v, ev, err := provisioningService.SeedDemo(ctx)
		if err != nil {
			logger.Fatal("デモデータ投入エラー", zap.Error(err))
		}
		logger.Info("デモデータ投入完了", zap.Int64("venue_id", v.ID), zap.Int64("event_id", ev.ID))
	}

	// アウトボックス中継（RabbitMQ が設定されている場合のみ）
	var (
		publisher *rabbitmq.Publisher
		relay     *worker.OutboxRelay
	)
	if cfg.RabbitMQ.URL != "" {
		publisher, err = rabbitmq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			logger.Warn("RabbitMQに接続できないためアウトボックス中継を無効化", zap.Error(err))
		} else {
			notifier := application.NewNotificationService(outboxRepo, publisher, cfg.Outbox.BatchSize).WithMetrics(m)
			relay = worker.NewOutboxRelay(notifier, cfg.Outbox.Interval)
			go relay.Start(ctx)
		}
	}

	// ヘルスチェック対象
	checks := []handler.HealthCheck{
		{Name: "database", Check: func(ctx context.Context) error { return postgres.Ping(ctx, db) }},
	}
	if redisClient != nil {
		checks = append(checks, handler.HealthCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return redisinfra.Ping(ctx, redisClient) },
		})
	}

	// Echo セットアップ
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout
	middleware.SetupMiddleware(e, m)

	handler.RegisterRoutes(e, handler.Handlers{
		Event:       handler.NewEventHandler(eventService),
		Reservation: handler.NewReservationHandler(reservationService),
		Health:      handler.NewHealthHandler(checks...),
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), middleware.MetricsBasicAuth(middleware.LoadMetricsConfig()))

	// サーバー起動
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("サーバー起動", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("サーバー起動エラー", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("サーバーをシャットダウンしています...")

	if relay != nil {
		relay.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("サーバーシャットダウンエラー", zap.Error(err))
	}

	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Warn("RabbitMQ切断エラー", zap.Error(err))
		}
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}

	logger.Info("サーバーが正常にシャットダウンしました")
}
