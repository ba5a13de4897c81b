package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"todoList/internal/config"
	"todoList/internal/logger"
	"todoList/internal/migrations"
	"todoList/internal/models/task"
	repo "todoList/internal/repository"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	moderncsqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type Storage struct {
	db *sqlx.DB
}

type taskRow struct {
	ID          int64  `db:"id"`
	Type        string `db:"type"`
	Name        string `db:"name"`
	Date        string `db:"date"`
	Description string `db:"description"`
}

func (r taskRow) toTask(ctx context.Context) (*task.Task, error) {
	t := task.New(r.Type, r.Name, r.Date, r.Description)
	if err := task.Identify(ctx, task.Known(r.ID), t); err != nil {
		return nil, err
	}
	return t, nil
}

func New(ctx context.Context, cfg config.SQLiteConfig) (*Storage, error) {
	db, err := sqlx.ConnectContext(ctx, "sqlite", dsn(cfg.Path))
	if err != nil {
		logger.Error("Repository: Ошибка подключения к SQLite", err, zap.String("path", cfg.Path))
		return nil, fmt.Errorf("подключение к sqlite: %w", err)
	}

	logger.Info("Repository: Успешное создание подключения к SQLite", zap.String("path", cfg.Path))
	return &Storage{db: db}, nil
}

// ожидание блокировки вместо мгновенного SQLITE_BUSY при конкурентной записи
func dsn(path string) string {
	if strings.Contains(path, "?") {
		return path
	}
	return path + "?_pragma=busy_timeout(5000)"
}

func (s *Storage) Close() error {
	logger.Info("Repository: Закрытие соединения SQLite")
	return s.db.Close()
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	logger.Info("Repository: Соединение стабильно")
	return nil
}

func (s *Storage) Migrate(ctx context.Context, dir migrations.Direction) error {
	return migrations.SQLite(s.db.DB, dir)
}

// Next реализует task.Sequence на таблице task_sequence.
// AUTOINCREMENT хранит максимум в sqlite_sequence, поэтому в таблице
// достаточно держать одну последнюю строку.
func (s *Storage) Next(ctx context.Context) (int64, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("task_sequence: начало транзакции: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `INSERT INTO task_sequence DEFAULT VALUES`)
	if err != nil {
		return 0, fmt.Errorf("task_sequence: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("task_sequence: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM task_sequence WHERE id < ?`, id); err != nil {
		return 0, fmt.Errorf("task_sequence: очистка: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("task_sequence: фиксация: %w", err)
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

	const q = `
		INSERT INTO tasks (id, type, name, date, description)
		VALUES (:id, :type, :name, :date, :description)`

	_, err := s.db.NamedExecContext(ctx, q, fromTask(taskToCreate))
	if err != nil {
		if isPrimaryKeyViolation(err) {
			return repo.ErrAlreadyExists
		}
		logger.Error("Repository: Не удалось добавить задачу", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("добавление задачи: %w", err)
	}

	return nil
}

func (s *Storage) Update(ctx context.Context, taskToUpdate *task.Task) error {
	start := time.Now()

	const q = `
		UPDATE tasks
		SET type = :type,
			name = :name,
			date = :date,
			description = :description
		WHERE id = :id`

	res, err := s.db.NamedExecContext(ctx, q, fromTask(taskToUpdate))
	if err != nil {
		logger.Error("Repository: Не удалось обновить задачу", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("обновление задачи: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("обновление задачи: %w", err)
	}
	if affected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (s *Storage) GetByID(ctx context.Context, id int64) (*task.Task, error) {
	const q = `SELECT id, type, name, date, description FROM tasks WHERE id = ?`

	var row taskRow
	if err := s.db.GetContext(ctx, &row, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить задачу", err)
		return nil, fmt.Errorf("получение задачи: %w", err)
	}

	return row.toTask(ctx)
}

func (s *Storage) GetWithLimit(ctx context.Context, page, limit int) ([]*task.Task, error) {
	tasks := []*task.Task{}
	offset, ok := repo.Offset(page, limit)
	if !ok {
		return tasks, nil
	}

	const q = `
		SELECT id, type, name, date, description
		FROM tasks
		ORDER BY id
		LIMIT ? OFFSET ?`

	var rows []taskRow
	if err := s.db.SelectContext(ctx, &rows, q, limit, offset); err != nil {
		logger.Error("Repository: Не удалось получить задачи", err)
		return nil, fmt.Errorf("получение задач: %w", err)
	}

	for _, row := range rows {
		t, err := row.toTask(ctx)
		if err != nil {
			logger.Warn("Repository: Ошибка сканирования задачи", zap.Error(err))
			continue
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func (s *Storage) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		logger.Error("Repository: Удаление задачи", err)
		return fmt.Errorf("удаление задачи: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("удаление задачи: %w", err)
	}
	if affected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func fromTask(t *task.Task) taskRow {
	return taskRow{
		ID:          t.ID(),
		Type:        t.Type(),
		Name:        t.Name(),
		Date:        t.Date(),
		Description: t.Description(),
	}
}

func isPrimaryKeyViolation(err error) bool {
	var se *moderncsqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}
