package worker

import (
	"context"
	"fmt"
	"time"

	"todoList/internal/logger"
	"todoList/internal/models/task"

	"go.uber.org/zap"
)

const defaultBatchSize = 100

type TaskLister interface {
	GetWithLimit(ctx context.Context, page, limit int) ([]*task.Task, error)
}

// OverdueWorker проходит хранилище пачками и собирает задачи с датой раньше asOf
type OverdueWorker struct {
	repo      TaskLister
	batchSize int
}

func NewOverdueWorker(repo TaskLister, batchSize *int) *OverdueWorker {
	batchToSet := defaultBatchSize
	if batchSize != nil && *batchSize > 0 {
		batchToSet = *batchSize
	}

	return &OverdueWorker{
		repo:      repo,
		batchSize: batchToSet,
	}
}

// Check возвращает просроченные задачи в порядке id.
// Задачи с нечитаемой датой пропускаются.
func (w *OverdueWorker) Check(ctx context.Context, asOf time.Time) ([]*task.Task, error) {
	start := time.Now()
	day := truncateDay(asOf)

	overdue := []*task.Task{}
	checked, skipped := 0, 0

	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		batch, err := w.repo.GetWithLimit(ctx, page, w.batchSize)
		if err != nil {
			logger.Warn("Worker: ошибка получения задач", zap.Int("page", page), zap.Error(err))
			return nil, fmt.Errorf("получение задач, страница %d: %w", page, err)
		}

		for _, t := range batch {
			checked++
			due, err := t.DueDate()
			if err != nil {
				skipped++
				logger.Warn("Worker: Нечитаемая дата задачи",
					zap.Int64("task_id", t.ID()),
					zap.String("date", t.Date()))
				continue
			}
			if due.Before(day) {
				overdue = append(overdue, t)
			}
		}

		if len(batch) < w.batchSize {
			break
		}
	}

	logger.Info(
		"Worker: Завершение проверки задач",
		zap.Duration("ms", time.Since(start)),
		zap.Int("checked", checked),
		zap.Int("skipped", skipped),
		zap.Int("overdue", len(overdue)),
	)

	return overdue, nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
