package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"todoList/internal/logger"
	"todoList/internal/models/task"
	repo "todoList/internal/repository"
)

type TaskStorage struct {
	storage map[int64]*task.Task
	mtx     *sync.RWMutex
	ids     []int64 // по возрастанию
	seq     atomic.Int64
}

func NewTaskStorage() *TaskStorage {
	return &TaskStorage{
		storage: make(map[int64]*task.Task),
		mtx:     &sync.RWMutex{},
		ids:     []int64{},
	}
}

func (s *TaskStorage) HealthCheck(ctx context.Context) error {
	logger.Info("Repository: Соединение стабильно")
	return nil
}

// Next реализует task.Sequence
func (s *TaskStorage) Next(ctx context.Context) (int64, error) {
	return s.seq.Add(1), nil
}

func (s *TaskStorage) AssignIdentity(ctx context.Context, taskToIdentify *task.Task) (*task.Task, error) {
	if err := task.Identify(ctx, s, taskToIdentify); err != nil {
		return nil, err
	}
	return taskToIdentify, nil
}

func (s *TaskStorage) Create(ctx context.Context, taskToCreate *task.Task) error {
	if !taskToCreate.Identified() {
		if _, err := s.AssignIdentity(ctx, taskToCreate); err != nil {
			return fmt.Errorf("присвоение идентификатора: %w", err)
		}
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	id := taskToCreate.ID()
	if _, ok := s.storage[id]; ok {
		return repo.ErrAlreadyExists
	}

	s.storage[id] = taskToCreate.Clone()

	pos := sort.Search(len(s.ids), func(i int) bool { return s.ids[i] >= id })
	s.ids = append(s.ids, 0)
	copy(s.ids[pos+1:], s.ids[pos:])
	s.ids[pos] = id

	return nil
}

func (s *TaskStorage) Update(ctx context.Context, taskToUpdate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.storage[taskToUpdate.ID()]; !ok {
		return repo.ErrNotFound
	}
	s.storage[taskToUpdate.ID()] = taskToUpdate.Clone()

	return nil
}

func (s *TaskStorage) GetByID(ctx context.Context, id int64) (*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	taskToGet, ok := s.storage[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return taskToGet.Clone(), nil
}

func (s *TaskStorage) Delete(ctx context.Context, id int64) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.storage[id]; !ok {
		return repo.ErrNotFound
	}

	delete(s.storage, id)
	for ind, val := range s.ids {
		if val == id {
			s.ids = append(s.ids[:ind], s.ids[ind+1:]...)
			break
		}
	}
	return nil
}

// страницы нумеруются с 1
func (s *TaskStorage) GetWithLimit(ctx context.Context, page, limit int) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*task.Task{}
	offset, ok := repo.Offset(page, limit)
	if !ok {
		return res, nil
	}

	for i := offset; i < len(s.ids) && len(res) < limit; i++ {
		res = append(res, s.storage[s.ids[i]].Clone())
	}

	return res, nil
}
