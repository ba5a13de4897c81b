package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"todoList/internal/handlers/dto"
	"todoList/internal/logger"
	"todoList/internal/models/task"

	"go.uber.org/zap"
)

const (
	contentTypeJSON = "application/json"
	maxBodyBytes    = 1 << 20
	serviceName     = "todo-list"
)

type TaskHandler struct {
	service Service
}

func NewTaskHandler(service Service) *TaskHandler {
	return &TaskHandler{
		service: service,
	}
}

func (h *TaskHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: Health check")

	if err := h.service.HealthCheck(r.Context()); err != nil {
		logger.Error("HTTP: Сервис недоступен", err)
		responseWithJSON(w, http.StatusServiceUnavailable,
			toPayload("status", "unavailable"),
			toPayload("service", serviceName),
		)
		return
	}

	responseWithJSON(w, http.StatusOK,
		toPayload("status", "ok"),
		toPayload("service", serviceName),
	)
}

func (h *TaskHandler) PostTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	if !h.requireJSON(w, r) {
		return
	}

	var request dto.CreateTaskRequest
	if !decodeBody(w, r, &request) {
		return
	}

	logger.Info("HTTP: Вызов сервиса создания задачи")
	created, err := h.service.CreateTask(r.Context(), request.Type, request.Name, request.Date, request.Description)
	if err != nil {
		handleServiceError(w, r, err, "create_task")
		return
	}

	logger.Info("HTTP_OUT: Задача создана",
		zap.Int64("task_id", created.ID()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithJSON(w, http.StatusCreated, toPayload("task", dto.FromTask(created)))
}

func (h *TaskHandler) GetTasks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	page, limit, err := parsePagination(r)
	if err != nil {
		logger.Warn("HTTP: Неверные параметры пагинации",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	logger.Info("HTTP: Вызов сервиса для получения задач")
	tasks, err := h.service.GetTasks(r.Context(), page, limit)
	if err != nil {
		handleServiceError(w, r, err, "get_tasks")
		return
	}

	logger.Info("HTTP_OUT: Задачи получены",
		zap.Int("count", len(tasks)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK,
		toPayload("tasks", dto.FromTaskList(tasks)),
		toPayload("page", page),
		toPayload("limit", limit),
	)
}

func (h *TaskHandler) GetTaskByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := h.requireID(w, r)
	if !ok {
		return
	}

	logger.Info("HTTP: Вызов сервиса для получения задачи")
	found, err := h.service.GetTaskByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err, "get_task")
		return
	}

	logger.Info("HTTP_OUT: Задача получена",
		zap.Int64("task_id", found.ID()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, toPayload("task", dto.FromTask(found)))
}

func (h *TaskHandler) UpdateTaskByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	if !h.requireJSON(w, r) {
		return
	}

	id, ok := h.requireID(w, r)
	if !ok {
		return
	}

	var request dto.UpdateTaskRequest
	if !decodeBody(w, r, &request) {
		return
	}

	if request.Empty() {
		logger.Warn("HTTP: Пустой запрос на обновление",
			zap.Int64("task_id", id),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "не передано ни одного поля для обновления")
		return
	}

	logger.Info("HTTP: Запрос к сервису обновления задачи")
	updated, err := h.service.UpdateTask(r.Context(), id, request.Options()...)
	if err != nil {
		handleServiceError(w, r, err, "update_task")
		return
	}

	logger.Info("HTTP_OUT: Задача обновлена",
		zap.Int64("task_id", id),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, toPayload("task", dto.FromTask(updated)))
}

func (h *TaskHandler) DeleteTaskByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := h.requireID(w, r)
	if !ok {
		return
	}

	logger.Info("HTTP: Обращение к сервису для удаления задачи")
	if err := h.service.DeleteTask(r.Context(), id); err != nil {
		handleServiceError(w, r, err, "delete_task")
		return
	}

	logger.Info("HTTP_OUT: Задача удалена",
		zap.Int64("task_id", id),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusNoContent))

	w.WriteHeader(http.StatusNoContent)
}

func (h *TaskHandler) GetOverdueTasks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	asOf, err := parseAsOf(r, start)
	if err != nil {
		logger.Warn("HTTP: Неверный параметр as_of",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	tasks, err := h.service.GetOverdueTasks(r.Context(), asOf)
	if err != nil {
		handleServiceError(w, r, err, "get_overdue_tasks")
		return
	}

	logger.Info("HTTP_OUT: Просроченные задачи получены",
		zap.Int("count", len(tasks)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK,
		toPayload("tasks", dto.FromTaskList(tasks)),
		toPayload("as_of", asOf.Format(task.DateLayout)),
	)
}

func (h *TaskHandler) requireJSON(w http.ResponseWriter, r *http.Request) bool {
	if checkContentType(r, contentTypeJSON) {
		return true
	}

	logger.Warn("HTTP: Неверный тип контента",
		zap.String("expected", contentTypeJSON),
		zap.String("received", r.Header.Get("Content-Type")),
		zap.String("client_ip", r.RemoteAddr))

	responseWithError(w, http.StatusUnsupportedMediaType, "Content-Type должен быть application/json")
	return false
}

func (h *TaskHandler) requireID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := parseID(r)
	if err != nil {
		logger.Warn("HTTP: Не удалось получить id",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "не удалось получить id: "+err.Error())
		return 0, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	defer r.Body.Close()

	if err := decoder.Decode(dst); err != nil {
		logger.Warn("HTTP: Ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "неверное тело запроса: "+err.Error())
		return false
	}
	return true
}
