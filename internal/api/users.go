package api

import (
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/labstock/internal/model"
	"github.com/erazemk/labstock/internal/store"
)

// UsersHandler handles user management endpoints (admin only).
type UsersHandler struct {
	*Deps
}

type createUserRequest struct {
	Username    string `json:"username" validate:"required,max=50"`
	Password    string `json:"password" validate:"required"`
	DisplayName string `json:"display_name" validate:"max=100"`
	GroupName   string `json:"group_name"`
	Role        string `json:"role" validate:"required,oneof=admin member"`
	Email       string `json:"email" validate:"omitempty,email"`
}

type updateUserRequest struct {
	DisplayName string `json:"display_name" validate:"max=100"`
	GroupName   string `json:"group_name"`
	Role        string `json:"role" validate:"required,oneof=admin member"`
	Email       string `json:"email" validate:"omitempty,email"`
}

type resetPasswordRequest struct {
	Password string `json:"password"`
}

// checkGroup accepts an empty group or one of the configured team names.
func (h *UsersHandler) checkGroup(group string) error {
	if group == "" {
		return nil
	}
	if _, ok := h.Rotation.TeamForGroup(group); !ok {
		return model.Invalid("group_name must be one of: " + strings.Join(h.Rotation.Groups(), ", "))
	}
	return nil
}

// List handles GET /api/users.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := store.ListUsers(r.Context(), h.DB)
	if err != nil {
		writeError(w, h.Logger, "list users", err)
		return
	}
	if users == nil {
		users = []model.User{}
	}
	jsonResponse(w, http.StatusOK, users)
}

// Create handles POST /api/users. Admin-created accounts are approved.
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if err := validateRequest(req); err != nil {
		writeError(w, h.Logger, "create user", err)
		return
	}
	if err := h.checkGroup(req.GroupName); err != nil {
		writeError(w, h.Logger, "create user", err)
		return
	}
	if err := model.ValidatePassword(req.Password); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, h.Logger, "hash password", err)
		return
	}

	user, err := store.CreateUser(r.Context(), h.DB, store.NewUser{
		Username:     req.Username,
		PasswordHash: string(hash),
		DisplayName:  strings.TrimSpace(req.DisplayName),
		GroupName:    req.GroupName,
		Role:         req.Role,
		Approved:     true,
		Email:        req.Email,
	})
	if err != nil {
		writeError(w, h.Logger, "create user", err)
		return
	}

	claims := GetClaims(r.Context())
	h.Logger.Info("user created",
		zap.String("user", claims.Username),
		zap.String("new_user", user.Username),
		zap.String("role", user.Role),
	)
	jsonResponse(w, http.StatusCreated, user)
}

// Get handles GET /api/users/{id}.
func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	user, err := store.GetUser(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, h.Logger, "get user", err)
		return
	}
	if user == nil {
		jsonError(w, http.StatusNotFound, "user not found")
		return
	}

	jsonResponse(w, http.StatusOK, user)
}

// Update handles PUT /api/users/{id}.
func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req updateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if err := validateRequest(req); err != nil {
		writeError(w, h.Logger, "update user", err)
		return
	}
	if err := h.checkGroup(req.GroupName); err != nil {
		writeError(w, h.Logger, "update user", err)
		return
	}

	err := store.UpdateUser(r.Context(), h.DB, id, store.UserUpdate{
		DisplayName: strings.TrimSpace(req.DisplayName),
		GroupName:   req.GroupName,
		Role:        req.Role,
		Email:       req.Email,
	})
	if err != nil {
		writeError(w, h.Logger, "update user", err)
		return
	}

	user, err := store.GetUser(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, h.Logger, "get user", err)
		return
	}
	claims := GetClaims(r.Context())
	h.Logger.Info("user updated",
		zap.String("user", claims.Username),
		zap.String("target_user", user.Username),
		zap.String("role", user.Role),
		zap.String("group", user.GroupName),
	)
	jsonResponse(w, http.StatusOK, user)
}

// Approve handles POST /api/users/{id}/approve.
func (h *UsersHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if err := store.ApproveUser(r.Context(), h.DB, id); err != nil {
		writeError(w, h.Logger, "approve user", err)
		return
	}

	user, err := store.GetUser(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, h.Logger, "get user", err)
		return
	}
	h.Logger.Info("user approved", zap.String("user", GetClaims(r.Context()).Username), zap.String("target_user", user.Username))
	jsonResponse(w, http.StatusOK, user)
}

// ResetPassword handles PUT /api/users/{id}/password.
func (h *UsersHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req resetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Password == "" {
		jsonError(w, http.StatusBadRequest, "password required")
		return
	}

	if err := model.ValidatePassword(req.Password); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, h.Logger, "hash password", err)
		return
	}

	if err := store.UpdateUserPassword(r.Context(), h.DB, id, string(hash)); err != nil {
		writeError(w, h.Logger, "reset password", err)
		return
	}

	h.Logger.Info("user password reset", zap.String("user", GetClaims(r.Context()).Username), zap.Int64("target_id", id))
	jsonResponse(w, http.StatusOK, map[string]string{"message": "password reset"})
}

// Delete handles DELETE /api/users/{id}.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	// Prevent self-deletion.
	claims := GetClaims(r.Context())
	if claims != nil && claims.UserID == id {
		jsonError(w, http.StatusBadRequest, "cannot delete yourself")
		return
	}

	// Look up target name before deleting.
	target, err := store.GetUser(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, h.Logger, "delete user", err)
		return
	}
	targetName := fmt.Sprintf("id:%d", id)
	if target != nil {
		targetName = target.Username
	}

	if err := store.DeleteUser(r.Context(), h.DB, id); err != nil {
		writeError(w, h.Logger, "delete user", err)
		return
	}

	h.Logger.Info("user deleted", zap.String("user", claims.Username), zap.String("deleted_user", targetName))
	jsonResponse(w, http.StatusOK, map[string]string{"message": "user deleted"})
}
