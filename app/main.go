package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"gear-guard/internal/migrate"
	"gear-guard/internal/repositories"
	"gear-guard/internal/routes"
	"gear-guard/internal/services"
	"gear-guard/pkg/config"
	"gear-guard/pkg/database/postgresql"
	apperrors "gear-guard/pkg/errors"
	"gear-guard/pkg/eventbus"
	applogger "gear-guard/pkg/logger"
	"gear-guard/pkg/metrics"
	"gear-guard/pkg/middleware"
	"gear-guard/pkg/service"
	"gear-guard/pkg/utils"
	"gear-guard/pkg/validation"
	"gear-guard/pkg/websocket"
)

const (
	shutdownTimeout       = 15 * time.Second
	memoryCacheCleanupInt = 10 * time.Minute
)

func main() {
	// 1. Конфиг и логгер
	cfg := config.New()
	logger := applogger.NewLogger(cfg.Log.Level, cfg.Log.File)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. База данных и миграции
	dbConn, err := postgresql.ConnectDB(ctx, cfg.Postgres.DSN, logger)
	if err != nil {
		logger.Fatal("не удалось подключиться к PostgreSQL", zap.Error(err))
	}
	defer dbConn.Close()

	if cfg.Postgres.AutoMigrate {
		runner, err := migrate.New(cfg.Postgres.DSN, logger)
		if err != nil {
			logger.Fatal("ошибка настройки миграций", zap.Error(err))
		}
		if err := runner.Up(ctx); err != nil {
			logger.Fatal("ошибка применения миграций", zap.Error(err))
		}
	}

	// 3. Кэш: Redis, если включён, иначе память процесса
	var cacheRepo repositories.CacheRepositoryInterface
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       0,
		})
		if _, err := redisClient.Ping(ctx).Result(); err != nil {
			logger.Fatal("не удалось подключиться к Redis", zap.Error(err), zap.String("address", cfg.Redis.Address))
		}
		defer redisClient.Close()
		cacheRepo = repositories.NewRedisCacheRepository(redisClient)
	} else {
		logger.Warn("Redis выключен, используется кэш в памяти")
		cacheRepo = repositories.NewMemoryCacheRepository(cfg.Dashboard.CacheTTL, memoryCacheCleanupInt)
	}

	// 4. Общие компоненты
	m := metrics.New()
	bus := eventbus.New(logger)
	hub := websocket.NewHub(logger)
	go hub.Run(ctx)

	e := echo.New()
	e.HideBanner = true
	e.Validator = validation.New()

	e.Use(echomw.RequestID())
	e.Use(middleware.InjectLogger(logger))
	e.Use(echomw.RecoverWithConfig(echomw.RecoverConfig{
		DisableStackAll: true,
		StackSize:       1 << 10,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.Error("!!! ОБНАРУЖЕНА ПАНИКА (PANIC) !!!",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Error(err),
				zap.String("stack", string(stack)),
			)
			if !c.Response().Committed {
				httpErr := apperrors.NewHttpError(http.StatusInternalServerError, "Внутренняя ошибка сервера", err, nil)
				_ = utils.ErrorResponse(c, httpErr, logger)
			}
			return err
		},
	}))
	e.Use(middleware.Metrics(m))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		ExposeHeaders:    []string{echo.HeaderContentDisposition},
	}))

	// 5. Маршруты
	jwtSvc := service.NewJWTService(cfg.JWT.SecretKey, cfg.JWT.AccessTokenTTL)
	routes.InitRouter(e, routes.Deps{
		Repos:    routes.NewRepositories(dbConn, cacheRepo, logger),
		JWT:      jwtSvc,
		Bus:      bus,
		Hub:      hub,
		Notifier: services.NewNotificationService(cfg.Mail, logger),
		Metrics:  m,
		Config:   cfg,
		Logger:   logger,
	})

	// 6. Запуск и плавная остановка
	go func() {
		logger.Info("🚀 Сервер запущен", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Ошибка запуска сервера", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Получен сигнал остановки, завершаем работу")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Ошибка остановки HTTP-сервера", zap.Error(err))
	}

	// слушатели шины могут ещё писать в кэш и рассылать уведомления
	waitDone := make(chan struct{})
	go func() {
		bus.Wait()
		close(waitDone)
	}()
	select {
	case <-waitDone:
	case <-shutdownCtx.Done():
		logger.Warn("Не все слушатели событий успели завершиться")
	}
	logger.Info("Сервер остановлен")
}
