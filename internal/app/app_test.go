package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"todoList/internal/app"
	"todoList/internal/config"
	"todoList/internal/migrations"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func testConfig(repoType string, sqlitePath string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:            "127.0.0.1",
			Port:            "0",
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    5 * time.Second,
			RequestTimeout:  5 * time.Second,
			ShutdownTimeout: 5 * time.Second,
			CORSOrigins:     []string{"*"},
		},
		SQLite:     config.SQLiteConfig{Path: sqlitePath},
		Repository: config.RepositoryConfig{Type: repoType},
		RateLimit:  config.RateLimitConfig{RequestsPerMinute: 1000},
	}
}

type taskBody struct {
	ID          int64  `json:"id"`
	Type        string `json:"type"`
	Name        string `json:"name"`
	Date        string `json:"date"`
	Description string `json:"description"`
}

// APITestSuite гоняет HTTP сценарии поверх настоящего роутера
type APITestSuite struct {
	suite.Suite
	repoType string
	app      *app.App
	server   *httptest.Server
}

func (s *APITestSuite) SetupTest() {
	cfg := testConfig(s.repoType, filepath.Join(s.T().TempDir(), "tasks.db"))

	s.app = app.New(cfg)
	require.NoError(s.T(), s.app.Init(context.Background()))
	s.server = httptest.NewServer(s.app.Router())
}

func (s *APITestSuite) TearDownTest() {
	s.server.Close()
	s.app.Shutdown()
}

func TestAPI_InMemory(t *testing.T) {
	suite.Run(t, &APITestSuite{repoType: config.RepoInMemory})
}

func TestAPI_SQLite(t *testing.T) {
	suite.Run(t, &APITestSuite{repoType: config.RepoSQLite})
}

func (s *APITestSuite) do(method, path string, body any) *http.Response {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.T(), err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, s.server.URL+path, reader)
	require.NoError(s.T(), err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.server.Client().Do(req)
	require.NoError(s.T(), err)
	s.T().Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (s *APITestSuite) decode(resp *http.Response, dst any) {
	require.NoError(s.T(), json.NewDecoder(resp.Body).Decode(dst))
}

func (s *APITestSuite) create(name, date string) taskBody {
	resp := s.do(http.MethodPost, "/tasks", map[string]string{
		"type":        "Errand",
		"name":        name,
		"date":        date,
		"description": "Buy milk, eggs, and bread",
	})
	require.Equal(s.T(), http.StatusCreated, resp.StatusCode)

	var out struct {
		Task taskBody `json:"task"`
	}
	s.decode(resp, &out)
	return out.Task
}

func (s *APITestSuite) TestHealth() {
	resp := s.do(http.MethodGet, "/health", nil)
	assert.Equal(s.T(), http.StatusOK, resp.StatusCode)
	assert.NotEmpty(s.T(), resp.Header.Get("X-Request-ID"))
}

func (s *APITestSuite) TestLifecycle() {
	created := s.create("Groceries", "09/01/20")
	assert.Equal(s.T(), int64(1), created.ID)

	path := fmt.Sprintf("/tasks/%d", created.ID)

	resp := s.do(http.MethodGet, path, nil)
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)

	resp = s.do(http.MethodPut, path, map[string]string{"name": "Laundry"})
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)
	var updated struct {
		Task taskBody `json:"task"`
	}
	s.decode(resp, &updated)
	assert.Equal(s.T(), created.ID, updated.Task.ID)
	assert.Equal(s.T(), "Laundry", updated.Task.Name)
	assert.Equal(s.T(), "Errand", updated.Task.Type)

	resp = s.do(http.MethodPut, path, map[string]string{"date": "2020-09-01"})
	assert.Equal(s.T(), http.StatusUnprocessableEntity, resp.StatusCode)

	resp = s.do(http.MethodGet, path, nil)
	var stored struct {
		Task taskBody `json:"task"`
	}
	s.decode(resp, &stored)
	assert.Equal(s.T(), "09/01/20", stored.Task.Date)

	resp = s.do(http.MethodDelete, path, nil)
	assert.Equal(s.T(), http.StatusNoContent, resp.StatusCode)

	resp = s.do(http.MethodGet, path, nil)
	assert.Equal(s.T(), http.StatusNotFound, resp.StatusCode)
}

func (s *APITestSuite) TestCreate_Invalid() {
	resp := s.do(http.MethodPost, "/tasks", map[string]string{
		"type":        "ab",
		"name":        "Groceries",
		"date":        "09/01/20",
		"description": "short",
	})
	require.Equal(s.T(), http.StatusUnprocessableEntity, resp.StatusCode)

	var out struct {
		Error   string `json:"error"`
		Details struct {
			Violations []struct {
				Field string `json:"field"`
				Rule  string `json:"rule"`
			} `json:"violations"`
		} `json:"details"`
	}
	s.decode(resp, &out)
	assert.Equal(s.T(), "VALIDATION_ERROR", out.Error)
	assert.Len(s.T(), out.Details.Violations, 2)

	list := s.do(http.MethodGet, "/tasks", nil)
	var tasks struct {
		Tasks []taskBody `json:"tasks"`
	}
	s.decode(list, &tasks)
	assert.Empty(s.T(), tasks.Tasks)
}

func (s *APITestSuite) TestListAndOverdue() {
	s.create("Task one", "09/01/20")
	s.create("Task two", "09/20/20")
	s.create("Task three", "08/15/20")

	resp := s.do(http.MethodGet, "/tasks?page=2&limit=2", nil)
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)
	var page struct {
		Tasks []taskBody `json:"tasks"`
	}
	s.decode(resp, &page)
	require.Len(s.T(), page.Tasks, 1)
	assert.Equal(s.T(), "Task three", page.Tasks[0].Name)

	resp = s.do(http.MethodGet, "/tasks/overdue?as_of=09/15/20", nil)
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)
	var overdue struct {
		Tasks []taskBody `json:"tasks"`
	}
	s.decode(resp, &overdue)
	require.Len(s.T(), overdue.Tasks, 2)
	assert.Equal(s.T(), "Task one", overdue.Tasks[0].Name)
	assert.Equal(s.T(), "Task three", overdue.Tasks[1].Name)
}

func (s *APITestSuite) TestList_PageBoundaries() {
	s.create("Task one", "09/01/20")
	s.create("Task two", "09/20/20")
	s.create("Task three", "08/15/20")

	maxPage := strconv.Itoa(math.MaxInt)
	tests := []struct {
		name   string
		query  string
		status int
	}{
		{name: "page beyond last", query: "?page=3&limit=2", status: http.StatusOK},
		{name: "max page with limit 1", query: "?page=" + maxPage + "&limit=1", status: http.StatusOK},
		{name: "max page overflows offset", query: "?page=" + maxPage + "&limit=2", status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			resp := s.do(http.MethodGet, "/tasks"+tt.query, nil)
			require.Equal(s.T(), tt.status, resp.StatusCode)

			var out struct {
				Tasks []taskBody `json:"tasks"`
				Error string     `json:"error"`
			}
			s.decode(resp, &out)
			assert.Empty(s.T(), out.Tasks)
			if tt.status == http.StatusBadRequest {
				assert.NotEmpty(s.T(), out.Error)
			}
		})
	}
}

func TestApp_Run_StopsOnCancel(t *testing.T) {
	a := app.New(testConfig(config.RepoInMemory, ""))
	require.NoError(t, a.Init(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("сервер не остановился")
	}
}

func TestApp_Init_UnknownRepository(t *testing.T) {
	a := app.New(testConfig("mongo", ""))
	assert.Error(t, a.Init(context.Background()))
}

func TestMigrate_SQLite(t *testing.T) {
	cfg := testConfig(config.RepoSQLite, filepath.Join(t.TempDir(), "tasks.db"))

	require.NoError(t, app.Migrate(context.Background(), cfg, migrations.Up))
	require.NoError(t, app.Migrate(context.Background(), cfg, migrations.Down))
	require.NoError(t, app.Migrate(context.Background(), cfg, migrations.Up))
}

func TestMigrate_InMemory(t *testing.T) {
	assert.NoError(t, app.Migrate(context.Background(), testConfig(config.RepoInMemory, ""), migrations.Up))
}
