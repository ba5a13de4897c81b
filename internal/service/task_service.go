package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"todoList/internal/logger"
	"todoList/internal/models/task"
	rep "todoList/internal/repository"
	"todoList/internal/validation"
	"todoList/internal/worker"

	"go.uber.org/zap"
)

// здесь происходит проверка ошибок бизнес-логики

const taskResource = "задача"

type TaskService struct {
	repo    TaskRepository
	overdue *worker.OverdueWorker
}

func NewTaskService(repo TaskRepository) *TaskService {
	return &TaskService{
		repo:    repo,
		overdue: worker.NewOverdueWorker(repo, nil),
	}
}

func (s *TaskService) HealthCheck(ctx context.Context) error {
	if err := s.repo.HealthCheck(ctx); err != nil {
		return fmt.Errorf("проверка здоровья сервиса: %w", err)
	}
	return nil
}

// CreateTask проверяет поля и сохраняет задачу; id выдаёт репозиторий
func (s *TaskService) CreateTask(ctx context.Context, kind, name, date, description string) (*task.Task, error) {
	newTask := task.New(kind, name, date, description)

	if err := check(newTask); err != nil {
		logger.Info("Service: Задача не прошла валидацию", zap.Error(err))
		return nil, err
	}

	if err := s.repo.Create(ctx, newTask); err != nil {
		if errors.Is(err, rep.ErrAlreadyExists) {
			conflict := NewBusinessError(CodeConflict, "Задача уже существует", ToDetail("id", newTask.ID()))
			conflict.Err = err
			return nil, conflict
		}
		return nil, fmt.Errorf("создание задачи: %w", err)
	}

	logger.Info("Service: Задача создана", zap.Int64("task_id", newTask.ID()))
	return newTask, nil
}

func (s *TaskService) GetTaskByID(ctx context.Context, id int64) (*task.Task, error) {
	found, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: Задача не найдена", zap.Int64("target_id", id))
			return nil, NewNotFound(taskResource, id, err)
		}
		return nil, fmt.Errorf("получение задачи: %w", err)
	}
	return found, nil
}

func (s *TaskService) GetTasks(ctx context.Context, page, limit int) ([]*task.Task, error) {
	if page < 1 {
		return nil, NewValidationError("page", "должен быть не меньше 1, получено "+strconv.Itoa(page))
	}
	if limit < 1 {
		return nil, NewValidationError("limit", "должен быть не меньше 1, получено "+strconv.Itoa(limit))
	}
	if _, ok := rep.Offset(page, limit); !ok {
		return nil, NewValidationError("page", "слишком большой номер страницы: "+strconv.Itoa(page))
	}

	tasks, err := s.repo.GetWithLimit(ctx, page, limit)
	if err != nil {
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	return tasks, nil
}

// UpdateTask применяет опции к сохранённой задаче и перепроверяет её целиком
func (s *TaskService) UpdateTask(ctx context.Context, id int64, options ...task.Option) (*task.Task, error) {
	found, err := s.GetTaskByID(ctx, id)
	if err != nil {
		return nil, err
	}

	found.Apply(options...)

	if err := check(found); err != nil {
		logger.Info("Service: Обновлённая задача не прошла валидацию", zap.Int64("task_id", id), zap.Error(err))
		return nil, err
	}

	if err := s.repo.Update(ctx, found); err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return nil, NewNotFound(taskResource, id, err)
		}
		return nil, fmt.Errorf("обновление задачи: %w", err)
	}

	return found, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: Задача для удаления не найдена", zap.Int64("target_id", id))
			return NewNotFound(taskResource, id, err)
		}
		return fmt.Errorf("удаление задачи: %w", err)
	}

	logger.Info("Service: Задача удалена", zap.Int64("task_id", id))
	return nil
}

// GetOverdueTasks - задачи, дата которых раньше дня asOf
func (s *TaskService) GetOverdueTasks(ctx context.Context, asOf time.Time) ([]*task.Task, error) {
	tasks, err := s.overdue.Check(ctx, asOf)
	if err != nil {
		return nil, fmt.Errorf("поиск просроченных задач: %w", err)
	}
	return tasks, nil
}

func check(t *task.Task) error {
	err := validation.Check(t)
	if err == nil {
		return nil
	}

	var verr *validation.Error
	if errors.As(err, &verr) {
		return NewViolationsError(verr)
	}
	return err
}
