package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"taskhub/dto"
	"taskhub/middlewares"
	"taskhub/models"
	"taskhub/repository"
)

// TaskStore is the persistence capability the task handlers need.
type TaskStore interface {
	Create(ctx context.Context, creatorID uuid.UUID, t models.Task) (models.Task, error)
	List(ctx context.Context, creatorID uuid.UUID, filter repository.TaskFilter) ([]models.Task, error)
	GetByID(ctx context.Context, id uuid.UUID) (models.Task, error)
	Update(ctx context.Context, id, creatorID uuid.UUID, u repository.TaskUpdate) (models.Task, error)
	UpdateStatus(ctx context.Context, id, creatorID uuid.UUID, status string) (models.Task, error)
	Delete(ctx context.Context, id, creatorID uuid.UUID) error
}

type TaskHandler struct {
	tasks TaskStore
}

func NewTaskHandler(tasks TaskStore) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

func pathID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(mux.Vars(r)["id"])
}

// Create godoc
// @Summary      Create a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.CreateTaskRequest  true  "Task fields"
// @Success      201  {object}  handlers.Envelope
// @Failure      400  {object}  handlers.Envelope
// @Router       /api/tasks [post]
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middlewares.UserID(r)
	if !ok {
		RespondError(w, http.StatusUnauthorized, "Missing authentication")
		return
	}

	var req dto.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if err := validate.Struct(req); err != nil {
		RespondError(w, http.StatusBadRequest, "Title is required and enum fields must be valid")
		return
	}

	dueDate, err := dto.ParseDate(req.DueDate)
	if err != nil {
		RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	task := models.Task{
		Title:       req.Title,
		Description: req.Description,
		Status:      models.TaskStatusTodo,
		Priority:    models.PriorityMedium,
		DueDate:     dueDate,
	}
	if req.Status != "" {
		task.Status = req.Status
	}
	if req.Priority != "" {
		task.Priority = req.Priority
	}
	if req.ProjectID != nil && *req.ProjectID != "" {
		projectID, err := uuid.Parse(*req.ProjectID)
		if err != nil {
			RespondError(w, http.StatusBadRequest, "Invalid project id")
			return
		}
		task.ProjectID = &projectID
	}

	// The creator reference always comes from the verified token, any
	// client-supplied value is ignored.
	created, err := h.tasks.Create(r.Context(), userID, task)
	if err != nil {
		log.Printf("create task: %v", err)
		RespondError(w, http.StatusInternalServerError, "Error creating task")
		return
	}

	RespondData(w, http.StatusCreated, created)
}

// List godoc
// @Summary      List the caller's tasks
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        status     query  string  false  "Filter by status"
// @Param        projectId  query  string  false  "Filter by project"
// @Success      200  {object}  handlers.Envelope
// @Router       /api/tasks [get]
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middlewares.UserID(r)
	if !ok {
		RespondError(w, http.StatusUnauthorized, "Missing authentication")
		return
	}

	// status and projectId combine with AND when both are supplied.
	filter := repository.TaskFilter{Status: r.URL.Query().Get("status")}
	if raw := r.URL.Query().Get("projectId"); raw != "" {
		projectID, err := uuid.Parse(raw)
		if err != nil {
			RespondError(w, http.StatusBadRequest, "Invalid project id")
			return
		}
		filter.ProjectID = &projectID
	}

	tasks, err := h.tasks.List(r.Context(), userID, filter)
	if err != nil {
		log.Printf("list tasks: %v", err)
		RespondError(w, http.StatusInternalServerError, "Error fetching tasks")
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}

	RespondData(w, http.StatusOK, tasks)
}

// GetByID godoc
// @Summary      Fetch a single task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Task id"
// @Success      200  {object}  handlers.Envelope
// @Failure      404  {object}  handlers.Envelope
// @Router       /api/tasks/{id} [get]
func (h *TaskHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	userID, ok := middlewares.UserID(r)
	if !ok {
		RespondError(w, http.StatusUnauthorized, "Missing authentication")
		return
	}

	id, err := pathID(r)
	if err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid task id")
		return
	}

	task, err := h.tasks.GetByID(r.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		RespondError(w, http.StatusNotFound, "Task not found")
		return
	}
	if err != nil {
		log.Printf("get task: %v", err)
		RespondError(w, http.StatusInternalServerError, "Error fetching task")
		return
	}

	// A task someone else created reads as absent, not forbidden.
	if task.CreatedByID != userID {
		RespondError(w, http.StatusNotFound, "Task not found")
		return
	}

	RespondData(w, http.StatusOK, task)
}

// Update godoc
// @Summary      Partially update a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                 true  "Task id"
// @Param        body  body  dto.UpdateTaskRequest  true  "Fields to change"
// @Success      200  {object}  handlers.Envelope
// @Failure      404  {object}  handlers.Envelope
// @Router       /api/tasks/{id} [put]
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middlewares.UserID(r)
	if !ok {
		RespondError(w, http.StatusUnauthorized, "Missing authentication")
		return
	}

	id, err := pathID(r)
	if err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid task id")
		return
	}

	var req dto.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		RespondError(w, http.StatusBadRequest, "Enum fields must be valid")
		return
	}

	update := repository.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
	}
	if update.DueDate, err = dto.ParseDate(req.DueDate); err != nil {
		RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.ProjectID != nil && *req.ProjectID != "" {
		projectID, err := uuid.Parse(*req.ProjectID)
		if err != nil {
			RespondError(w, http.StatusBadRequest, "Invalid project id")
			return
		}
		update.ProjectID = &projectID
	}

	task, err := h.tasks.Update(r.Context(), id, userID, update)
	if errors.Is(err, repository.ErrNotFound) {
		RespondError(w, http.StatusNotFound, "Task not found")
		return
	}
	if err != nil {
		log.Printf("update task: %v", err)
		RespondError(w, http.StatusInternalServerError, "Error updating task")
		return
	}

	RespondData(w, http.StatusOK, task)
}

// UpdateStatus godoc
// @Summary      Change only a task's status
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                       true  "Task id"
// @Param        body  body  dto.UpdateTaskStatusRequest  true  "New status"
// @Success      200  {object}  models.Task
// @Failure      404  {object}  handlers.Envelope
// @Router       /api/tasks/{id}/status [patch]
func (h *TaskHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := middlewares.UserID(r)
	if !ok {
		RespondError(w, http.StatusUnauthorized, "Missing authentication")
		return
	}

	id, err := pathID(r)
	if err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid task id")
		return
	}

	var req dto.UpdateTaskStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		RespondError(w, http.StatusBadRequest, "Status must be one of todo, in-progress, completed")
		return
	}

	task, err := h.tasks.UpdateStatus(r.Context(), id, userID, req.Status)
	if errors.Is(err, repository.ErrNotFound) {
		RespondError(w, http.StatusNotFound, "Task not found")
		return
	}
	if err != nil {
		log.Printf("update task status: %v", err)
		RespondError(w, http.StatusInternalServerError, "Error updating task status")
		return
	}

	// Existing clients expect the bare record here, not the envelope.
	writeJSON(w, http.StatusOK, task)
}

// Delete godoc
// @Summary      Delete a task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Task id"
// @Success      200  {object}  handlers.Envelope
// @Failure      404  {object}  handlers.Envelope
// @Router       /api/tasks/{id} [delete]
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middlewares.UserID(r)
	if !ok {
		RespondError(w, http.StatusUnauthorized, "Missing authentication")
		return
	}

	id, err := pathID(r)
	if err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid task id")
		return
	}

	err = h.tasks.Delete(r.Context(), id, userID)
	if errors.Is(err, repository.ErrNotFound) {
		RespondError(w, http.StatusNotFound, "Task not found")
		return
	}
	if err != nil {
		log.Printf("delete task: %v", err)
		RespondError(w, http.StatusInternalServerError, "Error deleting task")
		return
	}

	RespondMessage(w, http.StatusOK, "Task deleted successfully")
}
