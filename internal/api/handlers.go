package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/perivihk-dotcom/client-intake/internal/config"
	"github.com/perivihk-dotcom/client-intake/internal/models"
	"github.com/perivihk-dotcom/client-intake/internal/store"
)

// Handler serves the JSON API consumed by the intake form and the admin
// dashboard. Error bodies carry a "detail" field with a user-facing reason.
type Handler struct {
	Store  *store.Store
	Config *config.Config
}

func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Client Intake API"})
}

func (h *Handler) CreateSubmission(w http.ResponseWriter, r *http.Request) {
	var in models.SubmissionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if !in.AgreedToTerms {
		writeError(w, http.StatusBadRequest, "You must agree to the terms and conditions")
		return
	}

	sub, err := h.Store.CreateSubmission(&in)
	if err != nil {
		slog.Error("Failed to create submission", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to save submission")
		return
	}

	slog.Info("Submission created", "id", sub.ID, "business", sub.BusinessName)
	writeJSON(w, http.StatusOK, sub)
}

func (h *Handler) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	subs, err := h.Store.GetAllSubmissions()
	if err != nil {
		slog.Error("Failed to list submissions", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch submissions")
		return
	}
	if subs == nil {
		subs = []models.Submission{}
	}
	writeJSON(w, http.StatusOK, subs)
}

func (h *Handler) DeleteSubmission(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.Store.DeleteSubmission(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Submission not found")
			return
		}
		slog.Error("Failed to delete submission", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to delete submission")
		return
	}

	slog.Info("Submission deleted", "id", id)
	writeJSON(w, http.StatusOK, models.VerifyResponse{Success: true, Message: "Submission deleted"})
}

func (h *Handler) VerifyAdmin(w http.ResponseWriter, r *http.Request) {
	var login models.AdminLogin
	if err := json.NewDecoder(r.Body).Decode(&login); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if !h.Config.VerifyAdminPassword(login.Password) {
		slog.Warn("Admin verification failed", "ip", r.RemoteAddr)
		writeError(w, http.StatusUnauthorized, "Invalid password")
		return
	}

	writeJSON(w, http.StatusOK, models.VerifyResponse{Success: true, Message: "Access granted"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, models.ErrorResponse{Detail: detail})
}
