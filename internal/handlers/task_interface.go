package handlers

import (
	"context"
	"time"

	"todoList/internal/models/task"
)

type Service interface {
	HealthCheck(context.Context) error
	CreateTask(ctx context.Context, kind, name, date, description string) (*task.Task, error)
	GetTaskByID(context.Context, int64) (*task.Task, error)
	GetTasks(ctx context.Context, page, limit int) ([]*task.Task, error)
	UpdateTask(context.Context, int64, ...task.Option) (*task.Task, error)
	DeleteTask(context.Context, int64) error
	GetOverdueTasks(ctx context.Context, asOf time.Time) ([]*task.Task, error)
}
