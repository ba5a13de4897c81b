package dto

import "todoList/internal/models/task"

type CreateTaskRequest struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	Date        string `json:"date"`
	Description string `json:"description"`
}

// UpdateTaskRequest - частичное обновление, nil поля не трогаем
type UpdateTaskRequest struct {
	Type        *string `json:"type,omitempty"`
	Name        *string `json:"name,omitempty"`
	Date        *string `json:"date,omitempty"`
	Description *string `json:"description,omitempty"`
}

func (r UpdateTaskRequest) Empty() bool {
	return r.Type == nil && r.Name == nil && r.Date == nil && r.Description == nil
}

// Options превращает заданные поля в опции обновления.
// Явная пустая строка тоже применяется, чтобы её отклонила валидация.
func (r UpdateTaskRequest) Options() []task.Option {
	var options []task.Option
	if r.Type != nil {
		v := *r.Type
		options = append(options, func(t *task.Task) { t.SetType(v) })
	}
	if r.Name != nil {
		v := *r.Name
		options = append(options, func(t *task.Task) { t.SetName(v) })
	}
	if r.Date != nil {
		v := *r.Date
		options = append(options, func(t *task.Task) { t.SetDate(v) })
	}
	if r.Description != nil {
		v := *r.Description
		options = append(options, func(t *task.Task) { t.SetDescription(v) })
	}
	return options
}

type TaskResponse struct {
	ID          int64  `json:"id"`
	Type        string `json:"type"`
	Name        string `json:"name"`
	Date        string `json:"date"`
	Description string `json:"description"`
}

func FromTask(t *task.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID(),
		Type:        t.Type(),
		Name:        t.Name(),
		Date:        t.Date(),
		Description: t.Description(),
	}
}

func FromTaskList(tasks []*task.Task) []TaskResponse {
	result := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = FromTask(t)
	}
	return result
}
