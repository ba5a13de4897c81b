package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"todoList/internal/config"
	"todoList/internal/logger"
	"todoList/internal/migrations"
	"todoList/internal/models/task"
	repo "todoList/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

const uniqueViolation = "23505"

type Storage struct {
	pool *pgxpool.Pool
}

type scanner interface {
	Scan(dest ...any) error
}

func New(ctx context.Context, cfg config.DatabaseConfig) (*Storage, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		logger.Error("Repository: Ошибка загрузки конфига", err)
		return nil, fmt.Errorf("загрузка конфига: %w", err)
	}

	if cfg.MaxConnections > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConnections)
	}
	if cfg.MinConnections > 0 {
		poolConfig.MinConns = int32(cfg.MinConnections)
	}
	if cfg.IdleTimeout > 0 {
		poolConfig.MaxConnIdleTime = cfg.IdleTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Error("Repository: Ошибка создания пула", err)
		return nil, fmt.Errorf("создание пула: %w", err)
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		logger.Error("Repository: Неудачная проверка ping", err)
		return nil, fmt.Errorf("проверка соединения ping: %w", err)
	}

	logger.Info("Repository: Успешное создание подключения к PostgreSQL")
	return &Storage{pool: pool}, nil
}

func (s *Storage) Close() {
	s.pool.Close()
	logger.Info("Repository: Закрытие всех соединений PostgreSQL")
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	logger.Info("Repository: Соединение стабильно")
	return nil
}

func (s *Storage) Migrate(ctx context.Context, dir migrations.Direction) error {
	db := stdlib.OpenDBFromPool(s.pool)
	defer db.Close()

	return migrations.Postgres(db, dir)
}

// Next реализует task.Sequence на последовательности BIGSERIAL
func (s *Storage) Next(ctx context.Context) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx, `SELECT nextval(pg_get_serial_sequence('tasks', 'id'))`).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("nextval: %w", err)
	}
	return id, nil
}

func (s *Storage) AssignIdentity(ctx context.Context, taskToIdentify *task.Task) (*task.Task, error) {
	if err := task.Identify(ctx, s, taskToIdentify); err != nil {
		logger.Warn("Repository: Не удалось присвоить идентификатор", zap.Error(err))
		return nil, err
	}
	return taskToIdentify, nil
}

func (s *Storage) Create(ctx context.Context, taskToCreate *task.Task) error {
	start := time.Now()

	if !taskToCreate.Identified() {
		if _, err := s.AssignIdentity(ctx, taskToCreate); err != nil {
			return fmt.Errorf("присвоение идентификатора: %w", err)
		}
	}

	query := `INSERT INTO tasks
				(id, type, name, date, description)
				VALUES ($1, $2, $3, $4, $5)`

	_, err := s.pool.Exec(ctx, query,
		taskToCreate.ID(),
		taskToCreate.Type(),
		taskToCreate.Name(),
		taskToCreate.Date(),
		taskToCreate.Description(),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return repo.ErrAlreadyExists
		}
		logger.Error("Repository: Не удалось добавить задачу", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("добавление задачи: %w", err)
	}

	warnIfSlow(start, 50*time.Millisecond)
	return nil
}

func (s *Storage) Update(ctx context.Context, taskToUpdate *task.Task) error {
	start := time.Now()

	query := `UPDATE tasks
			SET type = $1,
				name = $2,
				date = $3,
				description = $4
			WHERE id = $5`

	tag, err := s.pool.Exec(ctx, query,
		taskToUpdate.Type(),
		taskToUpdate.Name(),
		taskToUpdate.Date(),
		taskToUpdate.Description(),
		taskToUpdate.ID(),
	)
	if err != nil {
		logger.Error("Repository: Не удалось обновить задачу", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("обновление задачи: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}

	warnIfSlow(start, 100*time.Millisecond)
	return nil
}

func (s *Storage) GetByID(ctx context.Context, id int64) (*task.Task, error) {
	start := time.Now()

	query := `SELECT id, type, name, date, description
				FROM tasks
				WHERE id = $1`

	taskToGet, err := scanTask(ctx, s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить задачу", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задачи: %w", err)
	}

	warnIfSlow(start, 100*time.Millisecond)
	return taskToGet, nil
}

func (s *Storage) GetWithLimit(ctx context.Context, page, limit int) ([]*task.Task, error) {
	tasks := []*task.Task{}
	offset, ok := repo.Offset(page, limit)
	if !ok {
		return tasks, nil
	}

	start := time.Now()
	query := `SELECT id, type, name, date, description
				FROM tasks
				ORDER BY id
				LIMIT $1 OFFSET $2`

	rows, err := s.pool.Query(ctx, query, limit, offset)
	if err != nil {
		logger.Error("Repository: Не удалось получить задачи", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		taskToGet, err := scanTask(ctx, rows)
		if err != nil {
			logger.Warn("Repository: Ошибка сканирования задачи", zap.Error(err))
			continue
		}
		tasks = append(tasks, taskToGet)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Repository: Ошибка итерации по строкам", err)
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}

	warnIfSlow(start, 50*time.Millisecond+10*time.Millisecond*time.Duration(limit))
	return tasks, nil
}

func (s *Storage) Delete(ctx context.Context, id int64) error {
	start := time.Now()

	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		logger.Error("Repository: Удаление задачи", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("удаление задачи: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}

	warnIfSlow(start, 100*time.Millisecond)
	return nil
}

func scanTask(ctx context.Context, row scanner) (*task.Task, error) {
	var id int64
	var kind, name, date, description string
	if err := row.Scan(&id, &kind, &name, &date, &description); err != nil {
		return nil, err
	}

	t := task.New(kind, name, date, description)
	if err := task.Identify(ctx, task.Known(id), t); err != nil {
		return nil, err
	}
	return t, nil
}

func warnIfSlow(start time.Time, threshold time.Duration) {
	if elapsed := time.Since(start); elapsed > threshold {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", elapsed))
	}
}
