package validation

import (
	"errors"
	"fmt"
	"strings"
)

const (
	RuleRequired = "required"
	RuleMin      = "min"
	RuleMax      = "max"
	RuleLen      = "len"
	RuleDate     = "taskdate"
)

// Violation - одно нарушенное ограничение поля
type Violation struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
	Value any    `json:"value,omitempty"`
}

func (v Violation) String() string {
	switch v.Rule {
	case RuleRequired:
		return fmt.Sprintf("поле '%s' обязательно", v.Field)
	case RuleMin:
		return fmt.Sprintf("поле '%s' короче %s символов", v.Field, v.Param)
	case RuleMax:
		return fmt.Sprintf("поле '%s' длиннее %s символов", v.Field, v.Param)
	case RuleLen:
		return fmt.Sprintf("поле '%s' должно быть ровно %s символов", v.Field, v.Param)
	case RuleDate:
		return fmt.Sprintf("поле '%s' должно быть в формате MM/DD/YY", v.Field)
	default:
		return fmt.Sprintf("поле '%s' не прошло проверку %s", v.Field, v.Rule)
	}
}

type Error struct {
	Violations []Violation
}

func (e *Error) Error() string {
	if len(e.Violations) == 0 {
		return "ошибка валидации"
	}

	messages := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		messages = append(messages, v.String())
	}
	return "ошибка валидации: " + strings.Join(messages, "; ")
}

// Fields возвращает нарушения одного поля
func (e *Error) Fields(field string) []Violation {
	var res []Violation
	for _, v := range e.Violations {
		if v.Field == field {
			res = append(res, v)
		}
	}
	return res
}

func IsValidationError(err error) bool {
	var ve *Error
	return errors.As(err, &ve)
}
