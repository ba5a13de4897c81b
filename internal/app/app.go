package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"

	"todoList/internal/config"
	"todoList/internal/handlers"
	"todoList/internal/logger"
	"todoList/internal/middleware"
	"todoList/internal/migrations"
	"todoList/internal/repository/task/inmemory"
	"todoList/internal/repository/task/postgres"
	"todoList/internal/repository/task/sqlite"
	"todoList/internal/service"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type App struct {
	config     *config.Config
	server     *http.Server
	router     *chi.Mux
	repository service.TaskRepository
	service    *service.TaskService
	shutdowns  []func() // функции для graceful shutdown, вызываются в обратном порядке
}

// storage - выбранный бэкенд вместе с миграциями и закрытием
type storage struct {
	repo    service.TaskRepository
	migrate func(context.Context, migrations.Direction) error
	close   func()
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

func (a *App) Init(ctx context.Context) error {
	if err := logger.Init(a.config.Logging.Development); err != nil {
		return fmt.Errorf("инициализация логгера: %w", err)
	}

	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("Завершение работы логгирования...")
		logger.Sync()
	})

	st, err := openStorage(ctx, a.config)
	if err != nil {
		a.Shutdown()
		return fmt.Errorf("инициализация репозитория: %w", err)
	}
	a.shutdowns = append(a.shutdowns, st.close)

	if st.migrate != nil {
		if err := st.migrate(ctx, migrations.Up); err != nil {
			a.Shutdown()
			return fmt.Errorf("применение миграций: %w", err)
		}
	}

	a.repository = st.repo
	a.service = service.NewTaskService(st.repo)
	a.router = a.newRouter(handlers.NewTaskHandler(a.service))
	a.server = &http.Server{
		Addr:         a.config.GetServerAddr(),
		Handler:      a.router,
		ReadTimeout:  a.config.Server.ReadTimeout,
		WriteTimeout: a.config.Server.WriteTimeout,
	}

	logger.Info("Приложение инициализировано",
		zap.String("repository", a.config.Repository.Type),
		zap.String("addr", a.server.Addr))
	return nil
}

func (a *App) Router() http.Handler {
	return a.router
}

func (a *App) newRouter(h *handlers.TaskHandler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(a.config.Server.CORSOrigins))
	r.Use(chimw.Timeout(a.config.Server.RequestTimeout))
	r.Use(middleware.RateLimit(a.config.RateLimit.RequestsPerMinute))

	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", h.GetTasks)               // GET /tasks
		r.Post("/", h.PostTask)              // POST /tasks
		r.Get("/overdue", h.GetOverdueTasks) // GET /tasks/overdue

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetTaskByID)       // GET /tasks/{id}
			r.Put("/", h.UpdateTaskByID)    // PUT /tasks/{id}
			r.Delete("/", h.DeleteTaskByID) // DELETE /tasks/{id}
		})
	})

	r.Get("/health", h.HealthCheck)
	return r
}

// Run блокируется до отмены ctx или ошибки сервера, затем гасит всё
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Сервер запущен", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Получен сигнал остановки")
	case err, ok := <-errCh:
		if ok {
			logger.Error("Сервер упал", err)
			runErr = fmt.Errorf("http сервер: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Ошибка остановки сервера", err)
		runErr = errors.Join(runErr, fmt.Errorf("остановка сервера: %w", err))
	}

	a.Shutdown()
	return runErr
}

func (a *App) Shutdown() {
	for _, fn := range slices.Backward(a.shutdowns) {
		fn()
	}
	a.shutdowns = a.shutdowns[:0]
}

// Migrate применяет миграции без запуска сервера
func Migrate(ctx context.Context, cfg *config.Config, dir migrations.Direction) error {
	if err := logger.Init(cfg.Logging.Development); err != nil {
		return fmt.Errorf("инициализация логгера: %w", err)
	}
	defer logger.Sync()

	st, err := openStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("инициализация репозитория: %w", err)
	}
	defer st.close()

	if st.migrate == nil {
		logger.Warn("Миграции не нужны для репозитория", zap.String("repository", cfg.Repository.Type))
		return nil
	}
	return st.migrate(ctx, dir)
}

func openStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	switch cfg.Repository.Type {
	case config.RepoInMemory:
		return &storage{
			repo:  inmemory.NewTaskStorage(),
			close: func() {},
		}, nil

	case config.RepoPostgres:
		repo, err := postgres.New(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		return &storage{repo: repo, migrate: repo.Migrate, close: repo.Close}, nil

	case config.RepoSQLite:
		repo, err := sqlite.New(ctx, cfg.SQLite)
		if err != nil {
			return nil, err
		}
		return &storage{
			repo:    repo,
			migrate: repo.Migrate,
			close: func() {
				if err := repo.Close(); err != nil {
					logger.Error("Ошибка закрытия SQLite", err)
				}
			},
		}, nil

	default:
		return nil, fmt.Errorf("неизвестный тип репозитория %q", cfg.Repository.Type)
	}
}
