package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"gear-guard/migrations"
)

const migrationsDir = "."

// Runner применяет встроенные миграции goose.
type Runner struct {
	dsn    string
	fsys   fs.FS
	logger *zap.Logger
}

func New(dsn string, logger *zap.Logger) (Runner, error) {
	if dsn == "" {
		return Runner{}, errors.New("пустой DSN базы данных")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return Runner{dsn: dsn, fsys: migrations.FS, logger: logger}, nil
}

// Up применяет все непримененные миграции.
func (r Runner) Up(ctx context.Context) error {
	return r.withDB(func(db *sql.DB) error {
		runCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()

		r.logger.Info("Применение миграций")
		if err := goose.UpContext(runCtx, db, migrationsDir); err != nil {
			return fmt.Errorf("применение миграций: %w", err)
		}
		r.logger.Info("Миграции применены")
		return nil
	})
}

func (r Runner) Status(ctx context.Context) error {
	return r.withDB(func(db *sql.DB) error {
		if err := goose.StatusContext(ctx, db, migrationsDir); err != nil {
			return fmt.Errorf("статус миграций: %w", err)
		}
		return nil
	})
}

// Down откатывает последнюю миграцию или, если target > 0, до указанной версии.
func (r Runner) Down(ctx context.Context, target int64) error {
	return r.withDB(func(db *sql.DB) error {
		runCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()

		if target > 0 {
			r.logger.Info("Откат миграций", zap.Int64("target", target))
			if err := goose.DownToContext(runCtx, db, migrationsDir, target); err != nil {
				return fmt.Errorf("откат до версии %d: %w", target, err)
			}
			return nil
		}

		r.logger.Info("Откат последней миграции")
		if err := goose.DownContext(runCtx, db, migrationsDir); err != nil {
			return fmt.Errorf("откат последней миграции: %w", err)
		}
		return nil
	})
}

func (r Runner) withDB(fn func(*sql.DB) error) error {
	goose.SetBaseFS(r.fsys)
	goose.SetLogger(zapGooseLogger{r.logger.Sugar()})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("настройка goose: %w", err)
	}

	db, err := sql.Open("pgx", r.dsn)
	if err != nil {
		return fmt.Errorf("открытие соединения: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("проверка соединения: %w", err)
	}
	return fn(db)
}

// zapGooseLogger пересылает вывод goose в zap.
type zapGooseLogger struct {
	s *zap.SugaredLogger
}

func (l zapGooseLogger) Fatalf(format string, v ...interface{}) { l.s.Fatalf(format, v...) }
func (l zapGooseLogger) Printf(format string, v ...interface{}) { l.s.Infof(format, v...) }
