package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hongminglow/bilingual-site/internal/auth"
	"github.com/hongminglow/bilingual-site/internal/http/respond"
	"github.com/hongminglow/bilingual-site/internal/models/dto"
	"github.com/hongminglow/bilingual-site/internal/storage"
)

// AuthHandler owns the login, logout and session endpoints.
type AuthHandler struct {
	store    storage.UserStore
	verifier *auth.CredentialVerifier
	tokens   auth.TokenService
	cookies  auth.CookieWriter
	logger   *slog.Logger
	now      func() time.Time
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(store storage.UserStore, tokens auth.TokenService, cookies auth.CookieWriter, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		store:    store,
		verifier: auth.NewCredentialVerifier(store),
		tokens:   tokens,
		cookies:  cookies,
		logger:   logger,
		now:      time.Now,
	}
}

// Register attaches auth routes to the mux.
func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/login", h.handleLogin)
	mux.HandleFunc("POST /api/auth/logout", h.handleLogout)
	mux.HandleFunc("GET /api/auth/me", h.handleMe)
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	identifier := strings.TrimSpace(req.Username)
	if identifier == "" {
		identifier = strings.TrimSpace(req.Identifier)
	}

	user, err := h.verifier.Verify(r.Context(), identifier, req.Password)
	if err != nil {
		status := auth.HTTPStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.ErrorContext(r.Context(), "login failed", "error", err)
		} else {
			h.logger.InfoContext(r.Context(), "login rejected", "reason", auth.Classify(err))
		}
		respond.Error(w, status, auth.PublicMessage(err))
		return
	}

	token, err := h.tokens.Issue(auth.PrincipalFromUser(user))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "issue token failed", "error", err)
		respond.Error(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	now := h.now().UTC()
	if err := h.store.TouchLastLogin(r.Context(), user.ID, now); err != nil {
		h.logger.WarnContext(r.Context(), "record last login failed", "user_id", user.ID, "error", err)
	} else {
		user.LastLoginAt = &now
	}

	h.cookies.Set(w, token)
	h.logger.InfoContext(r.Context(), "login succeeded", "user_id", user.ID, "role", user.Role)
	respond.JSON(w, http.StatusOK, "login successful", dto.LoginResponse{Token: token, User: user.Summary()})
}

func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	// The token itself stays valid until expiry; only the cookie is cleared.
	h.cookies.Clear(w)
	respond.JSON(w, http.StatusOK, "logged out", nil)
}

func (h *AuthHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	principal := auth.FromContext(r.Context())
	if principal == nil {
		respond.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := h.store.FindByID(r.Context(), principal.SubjectID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		// Account removed after the token was issued; the token still
		// authenticates, so answer from the token alone.
		respond.JSON(w, http.StatusOK, "ok", map[string]any{"principal": principal})
	case err != nil:
		h.logger.ErrorContext(r.Context(), "load current user failed", "error", err)
		respond.Error(w, http.StatusInternalServerError, "failed to load user")
	default:
		respond.JSON(w, http.StatusOK, "ok", map[string]any{"principal": principal, "user": user.Summary()})
	}
}
