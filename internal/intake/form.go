// Package intake implements the public intake form as a state machine over
// the JSON API: collect fields, validate locally, submit once, then walk a
// fixed sequence of visual states.
package intake

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/perivihk-dotcom/client-intake/internal/models"
	"github.com/perivihk-dotcom/client-intake/internal/validate"
)

// State is the form's position in its editing → submitting → sending →
// submitted lifecycle.
type State int

const (
	StateEditing State = iota
	StateSubmitting
	StateSending
	StateSubmitted
)

func (s State) String() string {
	switch s {
	case StateEditing:
		return "editing"
	case StateSubmitting:
		return "submitting"
	case StateSending:
		return "sending"
	case StateSubmitted:
		return "submitted"
	default:
		return "unknown"
	}
}

// SuccessMessage is shown on the submitted view.
const SuccessMessage = "Thank you! Our team will contact you within 7 to 8 hours."

// GenericSubmitError is shown when the server gives no reason.
const GenericSubmitError = "Failed to submit. Please try again."

var (
	// ErrValidation means the form was not submitted; per-field messages
	// are available via Errors.
	ErrValidation = errors.New("validation failed")
	// ErrInFlight means a submit is already running.
	ErrInFlight = errors.New("submission already in flight")
)

// Notifier receives transient, dismissible user-facing notifications.
// Kind is "success" or "error".
type Notifier interface {
	Notify(kind, message string)
}

type Option func(*Form)

func WithHTTPClient(c *http.Client) Option {
	return func(f *Form) { f.client = c }
}

func WithNotifier(n Notifier) Option {
	return func(f *Form) { f.notifier = n }
}

// Form holds one intake form instance. All methods are safe for use from a
// single event loop; the internal lock only guards the timer callback.
type Form struct {
	client   *http.Client
	baseURL  string
	profile  validate.Profile
	notifier Notifier

	mu        sync.Mutex
	fields    validate.Fields
	errors    map[validate.Field]string
	state     State
	sendTimer *time.Timer
}

// NewForm creates a form in the editing state. baseURL is the backend root;
// endpoint paths are resolved under {baseURL}/api.
func NewForm(baseURL string, profile validate.Profile, opts ...Option) *Form {
	f := &Form{
		client:  http.DefaultClient,
		baseURL: strings.TrimRight(baseURL, "/"),
		profile: profile,
		errors:  make(map[validate.Field]string),
		state:   StateEditing,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// SetField updates one text input and clears only that field's error.
func (f *Form) SetField(field validate.Field, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch field {
	case validate.FieldName:
		f.fields.Name = value
	case validate.FieldBusinessName:
		f.fields.BusinessName = value
	case validate.FieldMobileNumber:
		f.fields.MobileNumber = value
	case validate.FieldEmail:
		f.fields.Email = value
	}
	delete(f.errors, field)
}

// SetAgreed updates the terms checkbox and clears its error.
func (f *Form) SetAgreed(agreed bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fields.AgreedToTerms = agreed
	delete(f.errors, validate.FieldAgreedToTerms)
}

func (f *Form) Fields() validate.Fields {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fields
}

func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Errors returns a copy of the current per-field error messages.
func (f *Form) Errors() map[validate.Field]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	errs := make(map[validate.Field]string, len(f.errors))
	for k, v := range f.errors {
		errs[k] = v
	}
	return errs
}

func (f *Form) FieldError(field validate.Field) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errors[field]
}

// Validate runs the field rules without submitting.
func (f *Form) Validate() map[validate.Field]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return validate.Check(f.fields, f.profile)
}

// Submit validates and, if every rule passes, issues exactly one creation
// call. On validation failure no network call is made and ErrValidation is
// returned with the messages stored per field. On a server or transport
// failure the form returns to editing with fields intact and the reason is
// surfaced through the notifier.
func (f *Form) Submit(ctx context.Context) error {
	f.mu.Lock()
	if f.state == StateSubmitting || f.state == StateSending {
		f.mu.Unlock()
		return ErrInFlight
	}

	errs := validate.Check(f.fields, f.profile)
	if len(errs) > 0 {
		f.errors = errs
		f.mu.Unlock()
		return ErrValidation
	}

	payload := models.SubmissionInput{
		Name:          f.fields.Name,
		BusinessName:  f.fields.BusinessName,
		MobileNumber:  f.fields.MobileNumber,
		Email:         f.fields.Email,
		AgreedToTerms: f.fields.AgreedToTerms,
	}
	f.state = StateSubmitting
	f.mu.Unlock()

	if err := f.post(ctx, payload); err != nil {
		f.mu.Lock()
		f.state = StateEditing
		f.mu.Unlock()
		return err
	}

	f.mu.Lock()
	if f.profile.SendingDelay > 0 {
		f.state = StateSending
		f.sendTimer = time.AfterFunc(f.profile.SendingDelay, f.finishSending)
	} else {
		f.state = StateSubmitted
	}
	f.mu.Unlock()
	return nil
}

func (f *Form) finishSending() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == StateSending {
		f.state = StateSubmitted
	}
}

func (f *Form) post(ctx context.Context, payload models.SubmissionInput) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.baseURL+"/api/submissions", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		f.notify("error", GenericSubmitError)
		return fmt.Errorf("submit: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		reason := GenericSubmitError
		var apiErr models.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Detail != "" {
			reason = apiErr.Detail
		}
		f.notify("error", reason)
		return fmt.Errorf("submit: server returned %d: %s", resp.StatusCode, reason)
	}
	return nil
}

// SubmitAnother resets every field and error and returns to editing.
func (f *Form) SubmitAnother() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendTimer != nil {
		f.sendTimer.Stop()
		f.sendTimer = nil
	}
	f.fields = validate.Fields{}
	f.errors = make(map[validate.Field]string)
	f.state = StateEditing
}

// Close cancels any pending sending transition so a disposed form is never
// updated late.
func (f *Form) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendTimer != nil {
		f.sendTimer.Stop()
		f.sendTimer = nil
	}
}

func (f *Form) notify(kind, message string) {
	if f.notifier != nil {
		f.notifier.Notify(kind, message)
	}
}
