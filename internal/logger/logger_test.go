package logger_test

import (
	"errors"
	"net/http/httptest"
	"testing"

	"todoList/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T) *observer.ObservedLogs {
	core, logs := observer.New(zapcore.DebugLevel)
	prev := logger.Logger
	logger.Logger = zap.New(core)
	t.Cleanup(func() { logger.Logger = prev })
	return logs
}

// TestInit проверяет обе конфигурации
func TestInit(t *testing.T) {
	prev := logger.Logger
	t.Cleanup(func() { logger.Logger = prev })

	require.NoError(t, logger.Init(true))
	require.NoError(t, logger.Init(false))
	assert.NotNil(t, logger.Logger)
}

// TestError проверяет, что ошибка попадает в поля записи
func TestError(t *testing.T) {
	logs := observe(t)

	logger.Error("Repository: сбой", errors.New("boom"), zap.Int64("task_id", 7))
	logger.Error("Repository: без ошибки", nil)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, "boom", entries[0].ContextMap()["error"])
	assert.Equal(t, int64(7), entries[0].ContextMap()["task_id"])
	assert.NotContains(t, entries[1].ContextMap(), "error")
}

// TestHttpRequestInfo проверяет поля запроса
func TestHttpRequestInfo(t *testing.T) {
	logs := observe(t)

	req := httptest.NewRequest("GET", "/tasks?page=2", nil)
	logger.HttpRequestInfo(req, "HTTP_IN:", zap.String("extra", "x"))

	entries := logs.FilterMessage("HTTP_IN:").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/tasks", fields["path"])
	assert.Equal(t, "page=2", fields["query"])
	assert.Equal(t, "x", fields["extra"])
}
