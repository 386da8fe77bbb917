package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"

	"github.com/perivihk-dotcom/client-intake/internal/models"
	"github.com/perivihk-dotcom/client-intake/internal/store"
	"github.com/perivihk-dotcom/client-intake/internal/validate"
)

// IntakeHandler serves the public intake form pages.
type IntakeHandler struct {
	Store        *store.Store
	Templates    *TemplateCache
	SessionStore *sessions.CookieStore
	Profile      validate.Profile
}

func (h *IntakeHandler) FormGet(w http.ResponseWriter, r *http.Request) {
	tmpl := h.Templates.Get("intake.html")
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	session, _ := h.SessionStore.Get(r, "public-session")
	data := map[string]interface{}{
		"CsrfField":    csrf.TemplateField(r),
		"Flashes":      GetFlash(session),
		"RequireEmail": h.Profile.RequireEmail,
		"Values":       validate.Fields{},
		"Errors":       map[string]string{},
	}
	session.Save(r, w)
	tmpl.Execute(w, data)
}

func (h *IntakeHandler) FormPost(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, "public-session")

	if err := r.ParseForm(); err != nil {
		session.AddFlash(FlashMessage{Type: "error", Message: "Invalid form data."})
		session.Save(r, w)
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	fields := validate.Fields{
		Name:          r.FormValue("name"),
		BusinessName:  r.FormValue("business_name"),
		MobileNumber:  r.FormValue("mobile_number"),
		Email:         r.FormValue("email"),
		AgreedToTerms: r.FormValue("agreed_to_terms") == "on",
	}

	// Per-field errors are rendered inline next to their inputs; nothing is
	// sent to the backend store until every rule passes.
	if errs := validate.Check(fields, h.Profile); len(errs) > 0 {
		h.renderForm(w, r, session, fields, errs)
		return
	}

	in := &models.SubmissionInput{
		Name:          fields.Name,
		BusinessName:  fields.BusinessName,
		MobileNumber:  fields.MobileNumber,
		Email:         fields.Email,
		AgreedToTerms: fields.AgreedToTerms,
	}
	sub, err := h.Store.CreateSubmission(in)
	if err != nil {
		slog.Error("Failed to save submission", "error", err)
		session.AddFlash(FlashMessage{Type: "error", Message: "Failed to submit. Please try again."})
		h.renderForm(w, r, session, fields, nil)
		return
	}

	slog.Info("Intake submission received", "id", sub.ID, "business", sub.BusinessName)

	tmpl := h.Templates.Get("success.html")
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	session.Save(r, w)
	tmpl.Execute(w, map[string]interface{}{
		"Name":           sub.Name,
		"SendingDelayMS": h.Profile.SendingDelay.Milliseconds(),
	})
}

// renderForm re-renders the intake page with the entered values intact.
func (h *IntakeHandler) renderForm(w http.ResponseWriter, r *http.Request, session *sessions.Session, fields validate.Fields, errs map[validate.Field]string) {
	tmpl := h.Templates.Get("intake.html")
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}

	errors := make(map[string]string, len(errs))
	for field, msg := range errs {
		errors[string(field)] = msg
	}

	data := map[string]interface{}{
		"CsrfField":    csrf.TemplateField(r),
		"Flashes":      GetFlash(session),
		"RequireEmail": h.Profile.RequireEmail,
		"Values":       fields,
		"Errors":       errors,
	}
	session.Save(r, w)
	tmpl.Execute(w, data)
}
