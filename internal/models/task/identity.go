package task

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrIdentityAssigned = errors.New("идентификатор задачи уже присвоен")
	ErrInvalidIdentity  = errors.New("неверный идентификатор задачи")
)

// Sequence выдаёт уникальные идентификаторы. Реализуется хранилищами.
type Sequence interface {
	Next(ctx context.Context) (int64, error)
}

type SequenceFunc func(ctx context.Context) (int64, error)

func (f SequenceFunc) Next(ctx context.Context) (int64, error) {
	return f(ctx)
}

// Known - последовательность из одного уже сохранённого id.
// Только для восстановления задач из строк хранилища: новые задачи
// получают id через Sequence самого хранилища (AssignIdentity/Create).
func Known(id int64) Sequence {
	return SequenceFunc(func(context.Context) (int64, error) {
		return id, nil
	})
}

// Identify присваивает задаче идентификатор ровно один раз
func Identify(ctx context.Context, seq Sequence, t *Task) error {
	if t.Identified() {
		return fmt.Errorf("задача %d: %w", t.id, ErrIdentityAssigned)
	}

	id, err := seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("получение идентификатора: %w", err)
	}
	if id <= 0 {
		return fmt.Errorf("id %d: %w", id, ErrInvalidIdentity)
	}

	t.id = id
	return nil
}
