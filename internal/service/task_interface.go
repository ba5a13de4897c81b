package service

import (
	"context"

	"todoList/internal/models/task"
)

type TaskRepository interface {
	HealthCheck(context.Context) error
	AssignIdentity(context.Context, *task.Task) (*task.Task, error)
	Create(context.Context, *task.Task) error
	Update(context.Context, *task.Task) error
	GetByID(context.Context, int64) (*task.Task, error)
	GetWithLimit(ctx context.Context, page, limit int) ([]*task.Task, error)
	Delete(context.Context, int64) error
}
