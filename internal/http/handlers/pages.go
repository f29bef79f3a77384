package handlers

import (
	"fmt"
	"net/http"

	"github.com/hongminglow/bilingual-site/internal/auth"
)

// PagesHandler serves placeholder pages for the localized login and admin
// routes. Real rendering lives in the site frontend.
type PagesHandler struct {
	locales       []string
	defaultLocale string
}

// NewPagesHandler constructs the handler.
func NewPagesHandler(locales []string, defaultLocale string) *PagesHandler {
	return &PagesHandler{locales: locales, defaultLocale: defaultLocale}
}

// Register attaches the page routes to the mux.
func (h *PagesHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.handleRoot)
	mux.HandleFunc("GET /{locale}/{$}", h.handleHome)
	mux.HandleFunc("GET /{locale}/login", h.handleLogin)
	mux.HandleFunc("GET /{locale}/admin/", h.handleAdmin)
	mux.HandleFunc("GET /{locale}/admin", h.handleAdmin)
}

func (h *PagesHandler) handleRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/"+h.defaultLocale+"/", http.StatusFound)
}

func (h *PagesHandler) handleHome(w http.ResponseWriter, r *http.Request) {
	locale, ok := h.locale(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "home (%s)\n", locale)
}

func (h *PagesHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	locale, ok := h.locale(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "login (%s)\n", locale)
}

func (h *PagesHandler) handleAdmin(w http.ResponseWriter, r *http.Request) {
	locale, ok := h.locale(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	principal := auth.FromContext(r.Context())
	if principal == nil {
		// The gate guards this route; reaching here without a principal
		// means the route policy does not cover it.
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	fmt.Fprintf(w, "admin (%s): signed in as %s [%s]\n", locale, principal.Username, principal.Role)
}

func (h *PagesHandler) locale(r *http.Request) (string, bool) {
	locale := r.PathValue("locale")
	for _, l := range h.locales {
		if l == locale {
			return locale, true
		}
	}
	return "", false
}
