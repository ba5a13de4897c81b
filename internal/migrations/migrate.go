package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"todoList/internal/logger"

	"github.com/golang-migrate/migrate/v4"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed postgres/*.sql
var postgresFS embed.FS

//go:embed sqlite/*.sql
var sqliteFS embed.FS

type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case Up, Down:
		return Direction(s), nil
	default:
		return "", fmt.Errorf("неизвестное направление миграции %q", s)
	}
}

// Postgres применяет миграции через database/sql обёртку над пулом pgx
func Postgres(db *sql.DB, dir Direction) error {
	src, err := iofs.New(postgresFS, "postgres")
	if err != nil {
		return fmt.Errorf("источник миграций: %w", err)
	}

	driver, err := pgxmigrate.WithInstance(db, &pgxmigrate.Config{})
	if err != nil {
		return fmt.Errorf("драйвер миграций postgres: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "pgx5", driver)
	if err != nil {
		return fmt.Errorf("создание мигратора: %w", err)
	}

	return run(m, "postgres", dir)
}

func SQLite(db *sql.DB, dir Direction) error {
	src, err := iofs.New(sqliteFS, "sqlite")
	if err != nil {
		return fmt.Errorf("источник миграций: %w", err)
	}

	driver, err := sqlitemigrate.WithInstance(db, &sqlitemigrate.Config{})
	if err != nil {
		return fmt.Errorf("драйвер миграций sqlite: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("создание мигратора: %w", err)
	}

	return run(m, "sqlite", dir)
}

// m не закрываем: Close закрыл бы и переданное соединение
func run(m *migrate.Migrate, backend string, dir Direction) error {
	logger.Info("Попытка миграций", zap.String("backend", backend), zap.String("direction", string(dir)))

	var err error
	switch dir {
	case Up:
		err = m.Up()
	case Down:
		err = m.Down()
	default:
		return fmt.Errorf("неизвестное направление миграции %q", dir)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("Миграции: изменений нет", zap.String("backend", backend))
		return nil
	}
	if err != nil {
		logger.Error("Миграции: ошибка применения", err, zap.String("backend", backend))
		return fmt.Errorf("миграции %s %s: %w", backend, dir, err)
	}

	version, dirty, verr := m.Version()
	if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
		return fmt.Errorf("версия схемы: %w", verr)
	}
	logger.Info("Миграции применены",
		zap.String("backend", backend),
		zap.Uint("version", version),
		zap.Bool("dirty", dirty))
	return nil
}
