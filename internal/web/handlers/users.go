package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pcastillom/presencia/internal/store"
)

// UsersHandler handles user directory endpoints.
type UsersHandler struct {
	directory store.Directory
}

// NewUsersHandler creates a new users handler.
func NewUsersHandler(d store.Directory) *UsersHandler {
	return &UsersHandler{directory: d}
}

// UserRequest represents a user create or update payload.
type UserRequest struct {
	Name    string `json:"name"`
	RUT     string `json:"rut"`
	Program string `json:"program"`
}

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	RUT     string `json:"rut"`
	Program string `json:"program"`
}

func userToResponse(u store.User) UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name, RUT: u.RUT, Program: u.Program}
}

// List returns all users.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.directory.ListUsers(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	response := make([]UserResponse, len(users))
	for i, u := range users {
		response[i] = userToResponse(u)
	}
	respondJSON(w, http.StatusOK, response)
}

// Create registers a new user.
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req UserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	user := store.User{Name: req.Name, RUT: req.RUT, Program: req.Program}
	if err := h.directory.CreateUser(r.Context(), &user); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create user")
		return
	}
	respondJSON(w, http.StatusCreated, userToResponse(user))
}

// Get returns a single user by id.
func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	user, err := h.directory.UserByID(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to get user")
		return
	}
	respondJSON(w, http.StatusOK, userToResponse(*user))
}

// Update modifies an existing user.
func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req UserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	user := store.User{ID: id, Name: req.Name, RUT: req.RUT, Program: req.Program}
	err = h.directory.UpdateUser(r.Context(), &user)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update user")
		return
	}
	respondJSON(w, http.StatusOK, userToResponse(user))
}
