package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/hongminglow/bilingual-site/internal/auth"
	"github.com/hongminglow/bilingual-site/internal/http/respond"
	"github.com/hongminglow/bilingual-site/internal/models"
	"github.com/hongminglow/bilingual-site/internal/models/dto"
	"github.com/hongminglow/bilingual-site/internal/storage"
)

// UserAdminHandler serves admin-only user management. Routes sit behind the
// access gate; role checks happen here.
type UserAdminHandler struct {
	store  storage.UserStore
	logger *slog.Logger
}

// NewUserAdminHandler constructs the handler.
func NewUserAdminHandler(store storage.UserStore, logger *slog.Logger) *UserAdminHandler {
	return &UserAdminHandler{store: store, logger: logger}
}

// Register attaches the admin user routes to the mux.
func (h *UserAdminHandler) Register(mux *http.ServeMux) {
	adminOnly := auth.RequireRoleHTTP(models.RoleAdmin)
	staff := auth.RequireRoleHTTP(models.RoleAdmin, models.RoleEditor)

	mux.Handle("GET /api/admin/roles", staff(http.HandlerFunc(h.handleRoles)))
	mux.Handle("GET /api/admin/users", adminOnly(http.HandlerFunc(h.handleList)))
	mux.Handle("POST /api/admin/users", adminOnly(http.HandlerFunc(h.handleCreate)))
	mux.Handle("PATCH /api/admin/users/{id}/role", adminOnly(http.HandlerFunc(h.handleUpdateRole)))
	mux.Handle("POST /api/admin/users/{id}/deactivate", adminOnly(http.HandlerFunc(h.handleDeactivate)))
	mux.Handle("DELETE /api/admin/users/{id}", adminOnly(http.HandlerFunc(h.handleDelete)))
}

func (h *UserAdminHandler) handleRoles(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, "ok", models.Roles)
}

func (h *UserAdminHandler) handleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list users failed", "error", err)
		respond.Error(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	out := make([]models.Summary, 0, len(users))
	for _, u := range users {
		out = append(out, u.Summary())
	}
	respond.JSON(w, http.StatusOK, "ok", out)
}

func (h *UserAdminHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if req.Role == "" {
		req.Role = models.RoleUser
	}
	if err := validateNewUser(req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	created, err := h.store.CreateUser(r.Context(), models.User{
		Username:     strings.TrimSpace(req.Username),
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: hash,
		Role:         req.Role,
		Active:       true,
	})
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrAlreadyExists):
			respond.Error(w, http.StatusConflict, "user already exists")
		default:
			h.logger.ErrorContext(r.Context(), "create user failed", "error", err)
			respond.Error(w, http.StatusInternalServerError, "failed to create user")
		}
		return
	}
	respond.JSON(w, http.StatusCreated, "user created", created.Summary())
}

func (h *UserAdminHandler) handleUpdateRole(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateRoleRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if !models.ValidRole(req.Role) {
		respond.Error(w, http.StatusBadRequest, "unknown role")
		return
	}

	id := r.PathValue("id")
	principal := auth.FromContext(r.Context())
	if req.Role != models.RoleAdmin {
		if err := auth.ForbidSelf(principal, id); err != nil {
			h.deny(w, r, "demote", err)
			return
		}
	}

	updated, err := h.store.UpdateRole(r.Context(), id, req.Role)
	if err != nil {
		h.storeError(w, r, "update role", err)
		return
	}
	h.logger.InfoContext(r.Context(), "user role changed", "user_id", id, "role", req.Role, "by", principal.SubjectID)
	respond.JSON(w, http.StatusOK, "role updated", updated.Summary())
}

func (h *UserAdminHandler) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	principal := auth.FromContext(r.Context())
	if err := auth.ForbidSelf(principal, id); err != nil {
		h.deny(w, r, "deactivate", err)
		return
	}

	updated, err := h.store.SetActive(r.Context(), id, false)
	if err != nil {
		h.storeError(w, r, "deactivate user", err)
		return
	}
	h.logger.InfoContext(r.Context(), "user deactivated", "user_id", id, "by", principal.SubjectID)
	respond.JSON(w, http.StatusOK, "user deactivated", updated.Summary())
}

func (h *UserAdminHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	principal := auth.FromContext(r.Context())
	if err := auth.ForbidSelf(principal, id); err != nil {
		h.deny(w, r, "delete", err)
		return
	}

	if err := h.store.DeleteUser(r.Context(), id); err != nil {
		h.storeError(w, r, "delete user", err)
		return
	}
	h.logger.InfoContext(r.Context(), "user deleted", "user_id", id, "by", principal.SubjectID)
	respond.JSON(w, http.StatusOK, "user deleted", nil)
}

func (h *UserAdminHandler) deny(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.logger.InfoContext(r.Context(), "user operation denied", "op", op, "reason", auth.Classify(err))
	respond.Error(w, auth.HTTPStatus(err), auth.PublicMessage(err))
}

func (h *UserAdminHandler) storeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		respond.Error(w, http.StatusNotFound, "user not found")
		return
	}
	h.logger.ErrorContext(r.Context(), op+" failed", "error", err)
	respond.Error(w, http.StatusInternalServerError, "failed to "+op)
}

func validateNewUser(req dto.CreateUserRequest) error {
	if strings.TrimSpace(req.Username) == "" || strings.TrimSpace(req.Email) == "" {
		return errors.New("username and email are required")
	}
	if !models.ValidUsername(strings.TrimSpace(req.Username)) {
		return errors.New("username must not contain @ or spaces")
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(req.Email)); err != nil {
		return errors.New("email is invalid")
	}
	if len(strings.TrimSpace(req.Password)) < 8 || !utf8.ValidString(req.Password) {
		return errors.New("password must be at least 8 characters")
	}
	if !models.ValidRole(req.Role) {
		return errors.New("unknown role")
	}
	return nil
}
