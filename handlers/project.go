package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"taskhub/dto"
	"taskhub/middlewares"
	"taskhub/models"
	"taskhub/repository"
)

// ProjectStore is the persistence capability the project handlers need.
type ProjectStore interface {
	Create(ctx context.Context, ownerID uuid.UUID, p models.Project) (models.Project, error)
	List(ctx context.Context, ownerID uuid.UUID, status string) ([]models.Project, error)
	GetByID(ctx context.Context, id uuid.UUID) (models.Project, error)
	Update(ctx context.Context, id, ownerID uuid.UUID, u repository.ProjectUpdate) (models.Project, error)
	UpdateStatus(ctx context.Context, id, ownerID uuid.UUID, status string) (models.Project, error)
	Delete(ctx context.Context, id, ownerID uuid.UUID) error
	NamesByIDs(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

type ProjectHandler struct {
	projects ProjectStore
}

func NewProjectHandler(projects ProjectStore) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

// Create godoc
// @Summary      Create a project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.CreateProjectRequest  true  "Project fields"
// @Success      201  {object}  handlers.Envelope
// @Failure      400  {object}  handlers.Envelope
// @Router       /api/projects [post]
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middlewares.UserID(r)
	if !ok {
		RespondError(w, http.StatusUnauthorized, "Missing authentication")
		return
	}

	var req dto.CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if err := validate.Struct(req); err != nil {
		RespondError(w, http.StatusBadRequest, "Name is required and status must be valid")
		return
	}

	project := models.Project{
		Name:        req.Name,
		Description: req.Description,
		Status:      models.ProjectStatusActive,
	}
	if req.Status != "" {
		project.Status = req.Status
	}

	var err error
	if project.StartDate, err = dto.ParseDate(req.StartDate); err != nil {
		RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if project.EndDate, err = dto.ParseDate(req.EndDate); err != nil {
		RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.projects.Create(r.Context(), userID, project)
	if err != nil {
		log.Printf("create project: %v", err)
		RespondError(w, http.StatusInternalServerError, "Error creating project")
		return
	}

	RespondData(w, http.StatusCreated, created)
}

// List godoc
// @Summary      List the caller's projects
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Param        status  query  string  false  "Filter by status"
// @Success      200  {object}  handlers.Envelope
// @Router       /api/projects [get]
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middlewares.UserID(r)
	if !ok {
		RespondError(w, http.StatusUnauthorized, "Missing authentication")
		return
	}

	projects, err := h.projects.List(r.Context(), userID, r.URL.Query().Get("status"))
	if err != nil {
		log.Printf("list projects: %v", err)
		RespondError(w, http.StatusInternalServerError, "Error fetching projects")
		return
	}
	if projects == nil {
		projects = []models.Project{}
	}

	RespondData(w, http.StatusOK, projects)
}

// Names godoc
// @Summary      Resolve display names for a batch of project ids
// @Description  Single batched lookup so task views don't fan out one request per task. Unknown ids are omitted.
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Param        ids  query  string  true  "Comma-separated project ids"
// @Success      200  {object}  handlers.Envelope
// @Router       /api/projects/names [get]
func (h *ProjectHandler) Names(w http.ResponseWriter, r *http.Request) {
	userID, ok := middlewares.UserID(r)
	if !ok {
		RespondError(w, http.StatusUnauthorized, "Missing authentication")
		return
	}

	var ids []uuid.UUID
	for _, raw := range strings.Split(r.URL.Query().Get("ids"), ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			RespondError(w, http.StatusBadRequest, "Invalid project id: "+raw)
			return
		}
		ids = append(ids, id)
	}

	names, err := h.projects.NamesByIDs(r.Context(), userID, ids)
	if err != nil {
		log.Printf("resolve project names: %v", err)
		RespondError(w, http.StatusInternalServerError, "Error resolving project names")
		return
	}

	out := make(map[string]string, len(names))
	for id, name := range names {
		out[id.String()] = name
	}
	RespondData(w, http.StatusOK, out)
}

// GetByID godoc
// @Summary      Fetch a single project
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Project id"
// @Success      200  {object}  handlers.Envelope
// @Failure      404  {object}  handlers.Envelope
// @Router       /api/projects/{id} [get]
func (h *ProjectHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	userID, ok := middlewares.UserID(r)
	if !ok {
		RespondError(w, http.StatusUnauthorized, "Missing authentication")
		return
	}

	id, err := pathID(r)
	if err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid project id")
		return
	}

	project, err := h.projects.GetByID(r.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		RespondError(w, http.StatusNotFound, "Project not found")
		return
	}
	if err != nil {
		log.Printf("get project: %v", err)
		RespondError(w, http.StatusInternalServerError, "Error fetching project")
		return
	}

	if project.OwnerID != userID {
		RespondError(w, http.StatusNotFound, "Project not found")
		return
	}

	RespondData(w, http.StatusOK, project)
}

// Update godoc
// @Summary      Partially update a project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                    true  "Project id"
// @Param        body  body  dto.UpdateProjectRequest  true  "Fields to change"
// @Success      200  {object}  handlers.Envelope
// @Failure      404  {object}  handlers.Envelope
// @Router       /api/projects/{id} [put]
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middlewares.UserID(r)
	if !ok {
		RespondError(w, http.StatusUnauthorized, "Missing authentication")
		return
	}

	id, err := pathID(r)
	if err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid project id")
		return
	}

	var req dto.UpdateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		RespondError(w, http.StatusBadRequest, "Enum fields must be valid")
		return
	}

	update := repository.ProjectUpdate{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
	}
	if update.StartDate, err = dto.ParseDate(req.StartDate); err != nil {
		RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if update.EndDate, err = dto.ParseDate(req.EndDate); err != nil {
		RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	project, err := h.projects.Update(r.Context(), id, userID, update)
	if errors.Is(err, repository.ErrNotFound) {
		RespondError(w, http.StatusNotFound, "Project not found")
		return
	}
	if err != nil {
		log.Printf("update project: %v", err)
		RespondError(w, http.StatusInternalServerError, "Error updating project")
		return
	}

	RespondData(w, http.StatusOK, project)
}

// UpdateStatus godoc
// @Summary      Change only a project's status
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                          true  "Project id"
// @Param        body  body  dto.UpdateProjectStatusRequest  true  "New status"
// @Success      200  {object}  models.Project
// @Failure      404  {object}  handlers.Envelope
// @Router       /api/projects/{id}/status [patch]
func (h *ProjectHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := middlewares.UserID(r)
	if !ok {
		RespondError(w, http.StatusUnauthorized, "Missing authentication")
		return
	}

	id, err := pathID(r)
	if err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid project id")
		return
	}

	var req dto.UpdateProjectStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		RespondError(w, http.StatusBadRequest, "Status must be one of active, completed, on-hold")
		return
	}

	project, err := h.projects.UpdateStatus(r.Context(), id, userID, req.Status)
	if errors.Is(err, repository.ErrNotFound) {
		RespondError(w, http.StatusNotFound, "Project not found")
		return
	}
	if err != nil {
		log.Printf("update project status: %v", err)
		RespondError(w, http.StatusInternalServerError, "Error updating project status")
		return
	}

	// Existing clients expect the bare record here, not the envelope.
	writeJSON(w, http.StatusOK, project)
}

// Delete godoc
// @Summary      Delete a project
// @Description  Tasks keep their project reference; it resolves as unknown afterwards.
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Project id"
// @Success      200  {object}  handlers.Envelope
// @Failure      404  {object}  handlers.Envelope
// @Router       /api/projects/{id} [delete]
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middlewares.UserID(r)
	if !ok {
		RespondError(w, http.StatusUnauthorized, "Missing authentication")
		return
	}

	id, err := pathID(r)
	if err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid project id")
		return
	}

	err = h.projects.Delete(r.Context(), id, userID)
	if errors.Is(err, repository.ErrNotFound) {
		RespondError(w, http.StatusNotFound, "Project not found")
		return
	}
	if err != nil {
		log.Printf("delete project: %v", err)
		RespondError(w, http.StatusInternalServerError, "Error deleting project")
		return
	}

	RespondMessage(w, http.StatusOK, "Project deleted successfully")
}
