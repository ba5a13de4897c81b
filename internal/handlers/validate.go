package handlers

import (
	"errors"
	"fmt"
	"math"
	"mime"
	"net/http"
	"strconv"
	"time"

	"todoList/internal/models/task"

	"github.com/go-chi/chi/v5"
)

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
)

func checkContentType(r *http.Request, target string) bool {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return false
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	return mediaType == target
}

func parseID(r *http.Request) (int64, error) {
	idParam := chi.URLParam(r, "id")
	if idParam == "" {
		return 0, errors.New("id не может быть пустым")
	}

	id, err := strconv.ParseInt(idParam, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("id должен быть целым числом: %w", err)
	}
	if id < 1 {
		return 0, fmt.Errorf("id должен быть больше 0, получено %d", id)
	}
	return id, nil
}

// parsePagination читает page и limit; limit больше maxLimit урезается
func parsePagination(r *http.Request) (page, limit int, err error) {
	page, err = queryInt(r, "page", defaultPage)
	if err != nil {
		return 0, 0, err
	}
	limit, err = queryInt(r, "limit", defaultLimit)
	if err != nil {
		return 0, 0, err
	}

	if limit > maxLimit {
		limit = maxLimit
	}
	// смещение (page-1)*limit должно помещаться в int
	if page-1 > math.MaxInt/limit {
		return 0, 0, fmt.Errorf("page слишком большой: %d", page)
	}
	return page, limit, nil
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("не удалось получить значение %s: %w", key, err)
	}
	if value < 1 {
		return 0, fmt.Errorf("%s должен быть больше 0, получено %d", key, value)
	}
	return value, nil
}

// parseAsOf читает as_of в формате MM/DD/YY, по умолчанию сегодня
func parseAsOf(r *http.Request, now time.Time) (time.Time, error) {
	raw := r.URL.Query().Get("as_of")
	if raw == "" {
		return now, nil
	}

	asOf, err := time.Parse(task.DateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("as_of должен быть в формате MM/DD/YY: %w", err)
	}
	return asOf, nil
}
