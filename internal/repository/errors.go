package repository

import "errors"

var (
	ErrNotFound      = errors.New("задача не найдена")
	ErrAlreadyExists = errors.New("задача с таким id уже существует")
)
