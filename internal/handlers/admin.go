package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"

	"github.com/perivihk-dotcom/client-intake/internal/admin"
	"github.com/perivihk-dotcom/client-intake/internal/config"
	"github.com/perivihk-dotcom/client-intake/internal/store"
)

// AdminHandler serves the password-gated dashboard.
type AdminHandler struct {
	Store        *store.Store
	SessionStore *sessions.CookieStore
	Templates    *TemplateCache
	Config       *config.Config
}

func (h *AdminHandler) LoginGet(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, "admin-session")
	if auth, ok := session.Values["authenticated"].(bool); ok && auth {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}

	tmpl := h.Templates.Get("login.html")
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	data := map[string]interface{}{
		"CsrfField": csrf.TemplateField(r),
		"Flashes":   GetFlash(session),
		"Error":     "",
		"Password":  "",
	}
	session.Save(r, w)
	tmpl.Execute(w, data)
}

func (h *AdminHandler) LoginPost(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, "admin-session")

	password := r.FormValue("password")
	if !h.Config.VerifyAdminPassword(password) {
		slog.Warn("Admin login failed", "ip", r.RemoteAddr)
		tmpl := h.Templates.Get("login.html")
		if tmpl == nil {
			http.Error(w, "Template not found", http.StatusInternalServerError)
			return
		}
		// Re-render with the entered password kept so the user can correct it.
		data := map[string]interface{}{
			"CsrfField": csrf.TemplateField(r),
			"Flashes":   GetFlash(session),
			"Error":     admin.LoginErrorMessage,
			"Password":  password,
		}
		session.Save(r, w)
		tmpl.Execute(w, data)
		return
	}

	session.Values["authenticated"] = true
	session.Options.Path = "/"
	if err := session.Save(r, w); err != nil {
		slog.Error("Failed to save session", "error", err)
		http.Error(w, "Failed to save session", http.StatusInternalServerError)
		return
	}

	slog.Info("Admin login successful", "ip", r.RemoteAddr)
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, "admin-session")
	session.Values["authenticated"] = false
	session.Options.MaxAge = -1 // Expire immediately
	session.Save(r, w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// AuthMiddleware ensures the admin is logged in
func (h *AdminHandler) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, _ := h.SessionStore.Get(r, "admin-session")
		if auth, ok := session.Values["authenticated"].(bool); !ok || !auth {
			slog.Info("Unauthenticated admin request, redirecting", "path", r.URL.Path)
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next(w, r)
	}
}

func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	subs, err := h.Store.GetAllSubmissions()
	if err != nil {
		slog.Error("Failed to fetch submissions", "error", err)
		http.Error(w, "Error fetching submissions", http.StatusInternalServerError)
		return
	}

	tmpl := h.Templates.Get("admin.html")
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	session, _ := h.SessionStore.Get(r, "admin-session")
	data := map[string]interface{}{
		"Submissions": subs,
		"Total":       len(subs),
		"CsrfField":   csrf.TemplateField(r),
		"Flashes":     GetFlash(session),
	}
	session.Save(r, w)
	tmpl.Execute(w, data)
}

func (h *AdminHandler) DeleteSubmission(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, "admin-session")

	id := r.FormValue("id")
	if err := h.Store.DeleteSubmission(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			session.AddFlash(FlashMessage{Type: "error", Message: "Submission not found."})
		} else {
			slog.Error("Failed to delete submission", "id", id, "error", err)
			session.AddFlash(FlashMessage{Type: "error", Message: "Error deleting submission."})
		}
		session.Save(r, w) // Save before redirect
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}

	session.AddFlash(FlashMessage{Type: "success", Message: "Submission deleted."})
	session.Save(r, w) // Save before redirect
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}
