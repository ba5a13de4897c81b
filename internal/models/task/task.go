package task

import (
	"time"
)

// DateLayout - формат поля Date: ровно 8 символов вместе с разделителями
const DateLayout = "01/02/06"

// Task - одна запись в списке дел.
// Идентификатор выдаёт хранилище через Identify, вызывающий код его не задаёт.
type Task struct {
	id          int64
	kind        string
	name        string
	date        string
	description string
}

func New(kind, name, date, description string) *Task {
	return &Task{
		kind:        kind,
		name:        name,
		date:        date,
		description: description,
	}
}

// ID возвращает 0, пока хранилище не присвоило идентификатор
func (t *Task) ID() int64 {
	return t.id
}

func (t *Task) Identified() bool {
	return t.id != 0
}

// Type - категория задачи, от 3 до 15 символов
func (t *Task) Type() string {
	return t.kind
}

func (t *Task) SetType(kind string) {
	t.kind = kind
}

// Name - отображаемое название, от 3 до 15 символов
func (t *Task) Name() string {
	return t.name
}

func (t *Task) SetName(name string) {
	t.name = name
}

// Date - срок выполнения в формате MM/DD/YY
func (t *Task) Date() string {
	return t.date
}

func (t *Task) SetDate(date string) {
	t.date = date
}

// Description - свободный текст, от 10 до 60 символов
func (t *Task) Description() string {
	return t.description
}

func (t *Task) SetDescription(description string) {
	t.description = description
}

func (t *Task) DueDate() (time.Time, error) {
	return time.Parse(DateLayout, t.date)
}

// Clone копирует задачу вместе с идентификатором
func (t *Task) Clone() *Task {
	c := *t
	return &c
}
