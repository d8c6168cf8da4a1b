package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"taskhub/dto"
	"taskhub/middlewares"
	"taskhub/models"
	"taskhub/repository"
	"taskhub/services"
)

// UserStore is the persistence capability the auth handlers need.
type UserStore interface {
	Create(ctx context.Context, name, email, hashedPassword string) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (models.User, error)
}

type AuthHandler struct {
	users UserStore
}

func NewAuthHandler(users UserStore) *AuthHandler {
	return &AuthHandler{users: users}
}

// Signup godoc
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SignupRequest  true  "Credentials"
// @Success      201  {object}  map[string]any
// @Failure      400  {object}  handlers.Envelope
// @Failure      409  {object}  handlers.Envelope
// @Router       /api/auth/signup [post]
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req dto.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := validate.Struct(req); err != nil {
		RespondError(w, http.StatusBadRequest, "Name, email and password are required")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("signup: hashing error: %v", err)
		RespondError(w, http.StatusInternalServerError, "Error creating user")
		return
	}

	user, err := h.users.Create(r.Context(), req.Name, req.Email, string(hashed))
	if errors.Is(err, repository.ErrDuplicate) {
		RespondError(w, http.StatusConflict, "Email already registered")
		return
	}
	if err != nil {
		log.Printf("signup: %v", err)
		RespondError(w, http.StatusInternalServerError, "Error creating user")
		return
	}

	token, err := services.IssueToken(user.ID)
	if err != nil {
		log.Printf("signup: token error: %v", err)
		RespondError(w, http.StatusInternalServerError, "Error creating user")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"token": token,
		"user":  user.Public(),
	})
}

// Login godoc
// @Summary      Authenticate and receive a token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "Credentials"
// @Success      200  {object}  map[string]any
// @Failure      401  {object}  handlers.Envelope
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		RespondError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := h.users.GetByEmail(r.Context(), strings.TrimSpace(req.Email))
	if errors.Is(err, repository.ErrNotFound) {
		RespondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err != nil {
		log.Printf("login: %v", err)
		RespondError(w, http.StatusInternalServerError, "Error logging in")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		RespondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := services.IssueToken(user.ID)
	if err != nil {
		log.Printf("login: token error: %v", err)
		RespondError(w, http.StatusInternalServerError, "Error logging in")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  user.Public(),
	})
}

// Profile godoc
// @Summary      Fetch the authenticated user's record
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]any
// @Failure      401  {object}  handlers.Envelope
// @Router       /api/auth/profile [get]
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middlewares.UserID(r)
	if !ok {
		RespondError(w, http.StatusUnauthorized, "Missing authentication")
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if errors.Is(err, repository.ErrNotFound) {
		RespondError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		log.Printf("profile: %v", err)
		RespondError(w, http.StatusInternalServerError, "Error fetching profile")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": user.Public()})
}
