package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"
	"time"

	"todoList/internal/models/task"

	"github.com/go-playground/validator/v10"
)

// fields - представление задачи для валидатора, ограничения задаются тегами
type fields struct {
	Type        string `json:"type" validate:"required,min=3,max=15"`
	Name        string `json:"name" validate:"required,min=3,max=15"`
	Date        string `json:"date" validate:"required,len=8,taskdate"`
	Description string `json:"description" validate:"required,min=10,max=60"`
}

var (
	engine     *validator.Validate
	engineOnce sync.Once
)

func getEngine() *validator.Validate {
	engineOnce.Do(func() {
		engine = validator.New(validator.WithRequiredStructEnabled())

		engine.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		// формат MM/DD/YY, длину проверяет len=8
		_ = engine.RegisterValidation("taskdate", func(fl validator.FieldLevel) bool {
			_, err := time.Parse(task.DateLayout, fl.Field().String())
			return err == nil
		})
	})
	return engine
}

// Validate возвращает список нарушенных ограничений, пустой список - задача валидна
func Validate(t *task.Task) []Violation {
	if t == nil {
		return []Violation{{Field: "task", Rule: RuleRequired}}
	}

	view := fields{
		Type:        t.Type(),
		Name:        t.Name(),
		Date:        t.Date(),
		Description: t.Description(),
	}

	err := getEngine().Struct(view)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []Violation{{Field: "task", Rule: "invalid", Value: err.Error()}}
	}

	violations := make([]Violation, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		violations = append(violations, Violation{
			Field: fe.Field(),
			Rule:  fe.Tag(),
			Param: fe.Param(),
			Value: fe.Value(),
		})
	}
	return violations
}

// Check - то же, что Validate, но в виде ошибки
func Check(t *task.Task) error {
	violations := Validate(t)
	if len(violations) == 0 {
		return nil
	}
	return &Error{Violations: violations}
}
