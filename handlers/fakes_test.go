package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"taskhub/middlewares"
	"taskhub/models"
	"taskhub/repository"
	"taskhub/services"
)

// In-memory stores implementing the handler store interfaces with the
// same contract as the pgx repositories.

type fakeUserStore struct {
	users map[uuid.UUID]models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uuid.UUID]models.User)}
}

func (s *fakeUserStore) Create(_ context.Context, name, email, hashedPassword string) (models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return models.User{}, repository.ErrDuplicate
		}
	}
	user := models.User{
		ID:        uuid.New(),
		Name:      name,
		Email:     email,
		Password:  hashedPassword,
		CreatedAt: time.Now(),
	}
	s.users[user.ID] = user
	return user, nil
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, repository.ErrNotFound
}

func (s *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return models.User{}, repository.ErrNotFound
	}
	return u, nil
}

type fakeTaskStore struct {
	tasks map[uuid.UUID]models.Task
	seq   int
	base  time.Time
}

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{tasks: make(map[uuid.UUID]models.Task), base: time.Now()}
}

func (s *fakeTaskStore) nextTime() time.Time {
	s.seq++
	return s.base.Add(time.Duration(s.seq) * time.Minute)
}

func (s *fakeTaskStore) Create(_ context.Context, creatorID uuid.UUID, t models.Task) (models.Task, error) {
	t.ID = uuid.New()
	t.CreatedByID = creatorID
	t.CreatedAt = s.nextTime()
	t.UpdatedAt = t.CreatedAt
	s.tasks[t.ID] = t
	return t, nil
}

func (s *fakeTaskStore) List(_ context.Context, creatorID uuid.UUID, filter repository.TaskFilter) ([]models.Task, error) {
	var out []models.Task
	for _, t := range s.tasks {
		if t.CreatedByID != creatorID {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.ProjectID != nil && (t.ProjectID == nil || *t.ProjectID != *filter.ProjectID) {
			continue
		}
		out = append(out, t)
	}
	// created_at DESC, matching the repository's ORDER BY.
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].CreatedAt.After(out[i].CreatedAt) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (s *fakeTaskStore) GetByID(_ context.Context, id uuid.UUID) (models.Task, error) {
	t, ok := s.tasks[id]
	if !ok {
		return models.Task{}, repository.ErrNotFound
	}
	return t, nil
}

func (s *fakeTaskStore) Update(_ context.Context, id, creatorID uuid.UUID, u repository.TaskUpdate) (models.Task, error) {
	t, ok := s.tasks[id]
	if !ok || t.CreatedByID != creatorID {
		return models.Task{}, repository.ErrNotFound
	}
	if u.Title != nil {
		t.Title = *u.Title
	}
	if u.Description != nil {
		t.Description = *u.Description
	}
	if u.Status != nil {
		t.Status = *u.Status
	}
	if u.Priority != nil {
		t.Priority = *u.Priority
	}
	if u.DueDate != nil {
		t.DueDate = u.DueDate
	}
	if u.ProjectID != nil {
		t.ProjectID = u.ProjectID
	}
	t.UpdatedAt = s.nextTime()
	s.tasks[id] = t
	return t, nil
}

func (s *fakeTaskStore) UpdateStatus(_ context.Context, id, creatorID uuid.UUID, status string) (models.Task, error) {
	t, ok := s.tasks[id]
	if !ok || t.CreatedByID != creatorID {
		return models.Task{}, repository.ErrNotFound
	}
	t.Status = status
	t.UpdatedAt = s.nextTime()
	s.tasks[id] = t
	return t, nil
}

func (s *fakeTaskStore) Delete(_ context.Context, id, creatorID uuid.UUID) error {
	t, ok := s.tasks[id]
	if !ok || t.CreatedByID != creatorID {
		return repository.ErrNotFound
	}
	delete(s.tasks, id)
	return nil
}

type fakeProjectStore struct {
	projects map[uuid.UUID]models.Project
	seq      int
	base     time.Time
}

func newFakeProjectStore() *fakeProjectStore {
	return &fakeProjectStore{projects: make(map[uuid.UUID]models.Project), base: time.Now()}
}

func (s *fakeProjectStore) nextTime() time.Time {
	s.seq++
	return s.base.Add(time.Duration(s.seq) * time.Minute)
}

func (s *fakeProjectStore) Create(_ context.Context, ownerID uuid.UUID, p models.Project) (models.Project, error) {
	p.ID = uuid.New()
	p.OwnerID = ownerID
	p.CreatedAt = s.nextTime()
	p.UpdatedAt = p.CreatedAt
	s.projects[p.ID] = p
	return p, nil
}

func (s *fakeProjectStore) List(_ context.Context, ownerID uuid.UUID, status string) ([]models.Project, error) {
	var out []models.Project
	for _, p := range s.projects {
		if p.OwnerID != ownerID {
			continue
		}
		if status != "" && p.Status != status {
			continue
		}
		out = append(out, p)
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].CreatedAt.After(out[i].CreatedAt) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (s *fakeProjectStore) GetByID(_ context.Context, id uuid.UUID) (models.Project, error) {
	p, ok := s.projects[id]
	if !ok {
		return models.Project{}, repository.ErrNotFound
	}
	return p, nil
}

func (s *fakeProjectStore) Update(_ context.Context, id, ownerID uuid.UUID, u repository.ProjectUpdate) (models.Project, error) {
	p, ok := s.projects[id]
	if !ok || p.OwnerID != ownerID {
		return models.Project{}, repository.ErrNotFound
	}
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Status != nil {
		p.Status = *u.Status
	}
	if u.StartDate != nil {
		p.StartDate = u.StartDate
	}
	if u.EndDate != nil {
		p.EndDate = u.EndDate
	}
	p.UpdatedAt = s.nextTime()
	s.projects[id] = p
	return p, nil
}

func (s *fakeProjectStore) UpdateStatus(_ context.Context, id, ownerID uuid.UUID, status string) (models.Project, error) {
	p, ok := s.projects[id]
	if !ok || p.OwnerID != ownerID {
		return models.Project{}, repository.ErrNotFound
	}
	p.Status = status
	p.UpdatedAt = s.nextTime()
	s.projects[id] = p
	return p, nil
}

func (s *fakeProjectStore) Delete(_ context.Context, id, ownerID uuid.UUID) error {
	p, ok := s.projects[id]
	if !ok || p.OwnerID != ownerID {
		return repository.ErrNotFound
	}
	delete(s.projects, id)
	return nil
}

func (s *fakeProjectStore) NamesByIDs(_ context.Context, ownerID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	names := make(map[uuid.UUID]string, len(ids))
	for _, id := range ids {
		if p, ok := s.projects[id]; ok && p.OwnerID == ownerID {
			names[id] = p.Name
		}
	}
	return names, nil
}

// Route wiring mirroring the service mains, so tests go through the
// auth middleware exactly like production traffic.

func newAuthRouter(h *AuthHandler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", Health).Methods("GET")
	r.HandleFunc("/api/auth/signup", h.Signup).Methods("POST")
	r.HandleFunc("/api/auth/login", h.Login).Methods("POST")
	r.HandleFunc("/api/auth/profile", middlewares.RequireAuth(h.Profile)).Methods("GET")
	return r
}

func newTaskRouter(h *TaskHandler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", Health).Methods("GET")
	r.HandleFunc("/api/tasks", middlewares.RequireAuth(h.Create)).Methods("POST")
	r.HandleFunc("/api/tasks", middlewares.RequireAuth(h.List)).Methods("GET")
	r.HandleFunc("/api/tasks/{id}", middlewares.RequireAuth(h.GetByID)).Methods("GET")
	r.HandleFunc("/api/tasks/{id}", middlewares.RequireAuth(h.Update)).Methods("PUT")
	r.HandleFunc("/api/tasks/{id}/status", middlewares.RequireAuth(h.UpdateStatus)).Methods("PATCH")
	r.HandleFunc("/api/tasks/{id}", middlewares.RequireAuth(h.Delete)).Methods("DELETE")
	return r
}

func newProjectRouter(h *ProjectHandler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", Health).Methods("GET")
	r.HandleFunc("/api/projects", middlewares.RequireAuth(h.Create)).Methods("POST")
	r.HandleFunc("/api/projects", middlewares.RequireAuth(h.List)).Methods("GET")
	r.HandleFunc("/api/projects/names", middlewares.RequireAuth(h.Names)).Methods("GET")
	r.HandleFunc("/api/projects/{id}", middlewares.RequireAuth(h.GetByID)).Methods("GET")
	r.HandleFunc("/api/projects/{id}", middlewares.RequireAuth(h.Update)).Methods("PUT")
	r.HandleFunc("/api/projects/{id}/status", middlewares.RequireAuth(h.UpdateStatus)).Methods("PATCH")
	r.HandleFunc("/api/projects/{id}", middlewares.RequireAuth(h.Delete)).Methods("DELETE")
	return r
}

func doJSON(t *testing.T, router *mux.Router, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func tokenFor(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	token, err := services.IssueToken(userID)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v (body=%s)", err, rec.Body.String())
	}
	return body
}
