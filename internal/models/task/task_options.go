package task

type Option func(*Task)

func WithType(kind string) Option {
	if kind == "" {
		return nil
	}
	return func(task *Task) {
		task.kind = kind
	}
}

func WithName(name string) Option {
	if name == "" {
		return nil
	}
	return func(task *Task) {
		task.name = name
	}
}

func WithDate(date string) Option {
	if date == "" {
		return nil
	}
	return func(task *Task) {
		task.date = date
	}
}

func WithDescription(description string) Option {
	if description == "" {
		return nil
	}
	return func(task *Task) {
		task.description = description
	}
}

// Apply пропускает nil-опции, которые возвращаются для пустых значений
func (t *Task) Apply(options ...Option) {
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(t)
	}
}
