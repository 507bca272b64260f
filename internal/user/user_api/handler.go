package user_api

import (
	"fmt"
	"net/http"

	"ms-cinema/internal/logger"
	"ms-cinema/internal/models"
	"ms-cinema/internal/user"
	"ms-cinema/internal/utils"
)

type Handler struct {
	UserService *user.UserService
	Logger      *logger.Logger
}

func NewHandler(userService *user.UserService, log *logger.Logger) *Handler {
	return &Handler{UserService: userService, Logger: log}
}

// Register is the public sign-up; it always creates a client.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := utils.DecodeJSON(r.Body, &req); err != nil {
		utils.WriteError(w, "Error registering user", err)
		return
	}
	req.Role = models.RoleClient
	h.create(w, r, req, "Error registering user")
}

// CreateUser lets an admin create an account with any role.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := utils.DecodeJSON(r.Body, &req); err != nil {
		utils.WriteError(w, "Error creating user", err)
		return
	}
	h.create(w, r, req, "Error creating user")
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request, req models.RegisterRequest, failure string) {
	created, err := h.UserService.Register(r.Context(), req)
	if err != nil {
		h.Logger.Warn("API", fmt.Sprintf("Register: %v", err))
		utils.WriteError(w, failure, err)
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, "User created", created)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := utils.DecodeJSON(r.Body, &req); err != nil {
		utils.WriteError(w, "Error logging in", err)
		return
	}

	resp, err := h.UserService.Login(r.Context(), req)
	if err != nil {
		utils.WriteError(w, "Error logging in", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Logged in", resp)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := utils.IDParam(r, "userId")
	if err != nil {
		utils.WriteError(w, "Error deleting user", err)
		return
	}

	if err := h.UserService.DeleteUser(r.Context(), id); err != nil {
		h.Logger.Warn("API", fmt.Sprintf("DeleteUser %d: %v", id, err))
		utils.WriteError(w, "Error deleting user", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "User deleted", nil)
}
