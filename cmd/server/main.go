package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"nok-landing/internal/config"
	"nok-landing/internal/crm"
	"nok-landing/internal/database"
	"nok-landing/internal/intake"
	"nok-landing/internal/logger"
	"nok-landing/internal/middleware"
	"nok-landing/internal/models"
	"nok-landing/internal/notify"
	"nok-landing/internal/queue"
	"nok-landing/internal/server"
	"nok-landing/internal/sheets"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("main: %v", err)
	}

	level := cfg.LogLevel
	if cfg.Debug {
		level = "debug"
	}
	logger.Init(level)
	if !cfg.IsProduction() {
		logger.SetTextFormatter()
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	mainLog := logger.For("main")
	mainLog.Info(cfg.String())

	notifiers := buildNotifiers(ctx, cfg, mainLog)

	deps := server.Deps{Log: logger.For("http")}
	var (
		applications *database.ApplicationRepository
		q            *queue.Queue
		consumers    sync.WaitGroup
	)

	// База: заявки, журнал отправок, пользователи админки.
	if cfg.DBDSN != "" {
		db, err := database.Open(cfg.DBDSN, logger.For("database"))
		if err != nil {
			mainLog.WithError(err).Fatal("failed to connect to database")
		}
		if err := database.Migrate(db); err != nil {
			mainLog.WithError(err).Fatal("failed to migrate database")
		}
		if err := database.SeedAdmin(db, cfg.AdminUsername, cfg.AdminPassword, logger.For("database")); err != nil {
			mainLog.WithError(err).Fatal("failed to seed admin user")
		}
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}

		applications = database.NewApplicationRepository(db)
		deps.Applications = applications
		deps.Events = database.NewEventRepository(db)
		deps.Users = database.NewUserRepository(db)
	} else {
		mainLog.Warn("DB_DSN не задан: заявки не сохраняются в базу, админка отключена")
	}

	// Очередь: уведомления уходят из фонового обработчика, а не из запроса.
	var redisClient *redis.Client
	inline := notifiers
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			mainLog.WithError(err).Fatal("failed to connect to redis")
		}

		q = queue.New(redisClient, logger.For("queue"))
		deps.Statuses = q
		inline = nil

		deliverLog := logger.For("delivery")
		consumers.Add(1)
		go func() {
			defer consumers.Done()
			q.Consume(ctx, func(ctx context.Context, sub *models.ApplicationSubmission) error {
				if failed := intake.Deliver(ctx, deliverLog, notifiers, sub); failed > 0 {
					return fmt.Errorf("%d of %d deliveries failed", failed, len(notifiers))
				}
				return nil
			})
		}()
	}

	rateStore, err := middleware.NewLimiterStore(redisClient)
	if err != nil {
		mainLog.WithError(err).Fatal("failed to init rate limiter store")
	}
	deps.RateStore = rateStore

	// С базой и очередью строка фиксируется только после постановки в очередь.
	var recorder intake.Recorder
	switch {
	case applications != nil && q != nil:
		recorder = applications.Then(q, "redis")
	case applications != nil:
		recorder = applications
	case q != nil:
		recorder = q
	}
	deps.Intake = intake.NewService(recorder, inline, logger.For("intake"))

	engine, err := server.NewRouter(cfg, deps)
	if err != nil {
		mainLog.WithError(err).Fatal("failed to build router")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			mainLog.WithError(err).Error("failed to stop http server")
		}
	}()

	mainLog.Infof("HTTP сервер запущен на порту %s", cfg.ServerPort)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		mainLog.WithError(err).Fatal("server error")
	}

	// Дожидаемся, пока обработчик очереди вернёт или закроет текущую заявку.
	consumers.Wait()
	mainLog.Info("server stopped")
}

// buildNotifiers собирает включённые интеграции; недоступная интеграция не мешает запуску.
func buildNotifiers(ctx context.Context, cfg *config.Config, log *logrus.Entry) []intake.Recorder {
	var notifiers []intake.Recorder

	if cfg.TelegramEnabled() {
		tg, err := notify.NewTelegramNotifier(cfg.TelegramToken, cfg.TelegramChatID, cfg.APITimeout)
		if err != nil {
			log.WithError(err).Warn("telegram notifier disabled")
		} else {
			notifiers = append(notifiers, tg)
		}
	}

	if cfg.CRMEnabled() {
		notifiers = append(notifiers, crm.NewClient(cfg.CRMBaseURL, cfg.CRMToken, cfg.APITimeout))
	}

	if cfg.SheetsEnabled() {
		sh, err := sheets.New(ctx, cfg.SheetsCredentials, cfg.SheetsSpreadsheetID, cfg.SheetsName)
		if err != nil {
			log.WithError(err).Warn("sheets logger disabled")
		} else {
			notifiers = append(notifiers, sh)
		}
	}

	return notifiers
}
