package api

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/labstock/internal/auth"
	"github.com/erazemk/labstock/internal/model"
	"github.com/erazemk/labstock/internal/store"
)

// AuthHandler handles authentication and self-service account endpoints.
type AuthHandler struct {
	*Deps
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

type registerRequest struct {
	Username    string `json:"username" validate:"required,max=50"`
	Password    string `json:"password" validate:"required"`
	DisplayName string `json:"display_name" validate:"required,max=100"`
	GroupName   string `json:"group_name" validate:"required"`
	Email       string `json:"email" validate:"omitempty,email"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// Login handles POST /api/auth/login. Accounts awaiting approval cannot log in.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		jsonError(w, http.StatusBadRequest, "username and password required")
		return
	}

	user, err := store.GetUserByUsername(r.Context(), h.DB, req.Username)
	if err != nil {
		writeError(w, h.Logger, "log in", err)
		return
	}
	if user == nil {
		jsonError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		h.Logger.Warn("login failed", zap.String("username", req.Username), zap.String("remote", r.RemoteAddr))
		jsonError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if !user.Approved {
		jsonError(w, http.StatusForbidden, "account is pending admin approval")
		return
	}

	token, err := auth.GenerateToken(h.JWTSecret, user, h.TokenTTL)
	if err != nil {
		writeError(w, h.Logger, "generate token", err)
		return
	}

	h.Logger.Info("user logged in", zap.String("user", user.Username), zap.String("role", user.Role))
	jsonResponse(w, http.StatusOK, loginResponse{Token: token, User: user})
}

// Register handles POST /api/auth/register. New accounts are members and
// wait for an admin to approve them.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if err := validateRequest(req); err != nil {
		writeError(w, h.Logger, "register", err)
		return
	}
	if err := model.ValidatePassword(req.Password); err != nil {
		writeError(w, h.Logger, "register", model.Invalid(err.Error()))
		return
	}
	if _, ok := h.Rotation.TeamForGroup(req.GroupName); !ok {
		writeError(w, h.Logger, "register", model.Invalid("group_name must be one of: "+strings.Join(h.Rotation.Groups(), ", ")))
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
		DisplayName:  req.DisplayName,
		GroupName:    req.GroupName,
		Role:         model.RoleMember,
		Email:        req.Email,
	})
	if err != nil {
		writeError(w, h.Logger, "register", err)
		return
	}

	h.Logger.Info("user registered", zap.String("user", user.Username), zap.String("group", user.GroupName))
	jsonResponse(w, http.StatusCreated, user)
}

// Logout handles POST /api/auth/logout by revoking the presented token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	if err := store.RevokeToken(r.Context(), h.DB, claims.ID, claims.ExpiresAt.Time); err != nil {
		writeError(w, h.Logger, "log out", err)
		return
	}

	h.Logger.Info("user logged out", zap.String("user", claims.Username))
	jsonResponse(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// ChangePassword handles PUT /api/auth/password.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.CurrentPassword == "" || req.NewPassword == "" {
		jsonError(w, http.StatusBadRequest, "current and new password required")
		return
	}
	if err := model.ValidatePassword(req.NewPassword); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := store.GetUser(r.Context(), h.DB, claims.UserID)
	if err != nil {
		writeError(w, h.Logger, "change password", err)
		return
	}
	if user == nil {
		jsonError(w, http.StatusUnauthorized, "account no longer exists")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		jsonError(w, http.StatusUnauthorized, "current password is incorrect")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, h.Logger, "hash password", err)
		return
	}

	if err := store.UpdateUserPassword(r.Context(), h.DB, claims.UserID, string(hash)); err != nil {
		writeError(w, h.Logger, "update password", err)
		return
	}

	h.Logger.Info("user changed own password", zap.String("user", claims.Username))
	jsonResponse(w, http.StatusOK, map[string]string{"message": "password updated"})
}
