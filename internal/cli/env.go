package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"gear-guard/internal/authz"
	"gear-guard/internal/listeners"
	"gear-guard/internal/repositories"
	"gear-guard/internal/services"
	"gear-guard/pkg/config"
	"gear-guard/pkg/database/postgresql"
	"gear-guard/pkg/eventbus"
	applogger "gear-guard/pkg/logger"
)

// env — всё, что нужно командам, работающим с базой.
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	pool   *pgxpool.Pool
	bus    *eventbus.Bus
}

func openEnv(ctx context.Context) (*env, error) {
	cfg := config.New()
	// в консоли файл лога не нужен
	logger := applogger.NewLogger(cfg.Log.Level, "")

	pool, err := postgresql.ConnectDB(ctx, cfg.Postgres.DSN, logger)
	if err != nil {
		return nil, err
	}

	bus := eventbus.New(logger)
	// изменения из консоли тоже должны сбрасывать кэш дашборда сервера
	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Address, Password: cfg.Redis.Password})
		listeners.NewCacheListener(repositories.NewDashboardStatsCache(repositories.NewRedisCacheRepository(client), 0), logger).Register(bus)
	}

	return &env{cfg: cfg, logger: logger, pool: pool, bus: bus}, nil
}

// close дожидается слушателей шины, затем закрывает пул.
func (e *env) close() {
	done := make(chan struct{})
	go func() {
		e.bus.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		e.logger.Warn("Не все слушатели событий завершились")
	}
	e.pool.Close()
	_ = e.logger.Sync()
}

func (e *env) requestService() services.MaintenanceRequestServiceInterface {
	return services.NewMaintenanceRequestService(
		repositories.NewMaintenanceRequestRepository(e.pool, e.logger),
		repositories.NewEquipmentRepository(e.pool, e.logger),
		repositories.NewUserRepository(e.pool, e.logger),
		e.bus,
		e.logger,
	)
}

// principal находит пользователя, от имени которого выполняется команда.
func (e *env) principal(ctx context.Context, email string) (authz.Principal, error) {
	if email == "" {
		return authz.Principal{}, fmt.Errorf("укажите пользователя флагом --as")
	}
	user, err := repositories.NewUserRepository(e.pool, e.logger).FindUserByEmail(ctx, email)
	if err != nil {
		return authz.Principal{}, fmt.Errorf("пользователь %s: %w", email, err)
	}
	return authz.PrincipalFromUser(user), nil
}
