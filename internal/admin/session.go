// Package admin implements the password-gated dashboard session: verify a
// password, fetch and render the submission list, delete rows one at a time.
// Authentication lives only as long as the session-scoped storage.
package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/perivihk-dotcom/client-intake/internal/models"
)

// AuthKey is where the session-scoped authenticated flag is kept.
const AuthKey = "adminAuthenticated"

// LoginErrorMessage is shown on any failed login attempt.
const LoginErrorMessage = "Invalid password. Please try again."

// SessionStorage is session-scoped key/value storage with the lifetime of
// the browser session. Values are gone once the session ends.
type SessionStorage interface {
	Get(key string) string
	Set(key, value string)
	Delete(key string)
}

// MemoryStorage is an in-process SessionStorage.
type MemoryStorage struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

func (m *MemoryStorage) Get(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key]
}

func (m *MemoryStorage) Set(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}

func (m *MemoryStorage) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
}

// Notifier receives transient, dismissible user-facing notifications.
type Notifier interface {
	Notify(kind, message string)
}

type Option func(*Session)

func WithHTTPClient(c *http.Client) Option {
	return func(s *Session) { s.client = c }
}

func WithNotifier(n Notifier) Option {
	return func(s *Session) { s.notifier = n }
}

// Session is one admin dashboard session. The backend re-authorizes every
// privileged call on its own; no credential is held here beyond the
// session-scoped flag.
type Session struct {
	client   *http.Client
	baseURL  string
	storage  SessionStorage
	notifier Notifier

	mu            sync.Mutex
	authenticated bool
	loginError    string
	loading       bool
	submissions   []models.Submission
}

// NewSession restores a prior authentication flag still valid for the
// current session, if any.
func NewSession(baseURL string, storage SessionStorage, opts ...Option) *Session {
	s := &Session{
		client:  http.DefaultClient,
		baseURL: strings.TrimRight(baseURL, "/"),
		storage: storage,
	}
	for _, opt := range opts {
		opt(s)
	}
	if storage.Get(AuthKey) == "true" {
		s.authenticated = true
	}
	return s
}

func (s *Session) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

func (s *Session) LoginError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loginError
}

func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Submissions returns the list as last fetched, in backend order.
func (s *Session) Submissions() []models.Submission {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submissions
}

// Count is the displayed total, always the list's length.
func (s *Session) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.submissions)
}

// Login verifies the password with the backend. On success the session flag
// is persisted and the list is fetched immediately. On failure the session
// stays logged out with a login error set; the password field is left for
// the caller to keep.
func (s *Session) Login(ctx context.Context, password string) error {
	body, err := json.Marshal(models.AdminLogin{Password: password})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/admin/verify", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.failLogin()
		return fmt.Errorf("login: %w", err)
	}
	defer resp.Body.Close()

	var verify models.VerifyResponse
	if resp.StatusCode != http.StatusOK || json.NewDecoder(resp.Body).Decode(&verify) != nil || !verify.Success {
		s.failLogin()
		return fmt.Errorf("login: invalid credentials")
	}

	s.mu.Lock()
	s.authenticated = true
	s.loginError = ""
	s.mu.Unlock()
	s.storage.Set(AuthKey, "true")

	return s.FetchSubmissions(ctx)
}

func (s *Session) failLogin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authenticated = false
	s.loginError = LoginErrorMessage
}

// FetchSubmissions replaces the in-memory list wholesale with the backend's
// current list. On failure the prior list is left unchanged.
func (s *Session) FetchSubmissions(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/submissions", nil)
	if err != nil {
		return err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.notify("error", "Failed to fetch submissions")
		return fmt.Errorf("fetch submissions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.notify("error", "Failed to fetch submissions")
		return fmt.Errorf("fetch submissions: server returned %d", resp.StatusCode)
	}

	var subs []models.Submission
	if err := json.NewDecoder(resp.Body).Decode(&subs); err != nil {
		s.notify("error", "Failed to fetch submissions")
		return fmt.Errorf("fetch submissions: %w", err)
	}

	s.mu.Lock()
	s.submissions = subs
	s.mu.Unlock()
	return nil
}

// DeleteSubmission asks for confirmation, then deletes one row by id and
// removes it from the in-memory list without a re-fetch. Declining the
// confirmation issues no network call and is not an error.
func (s *Session) DeleteSubmission(ctx context.Context, id string, confirm func() bool) error {
	if confirm != nil && !confirm() {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, s.baseURL+"/api/submissions/"+id, nil)
	if err != nil {
		return err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.notify("error", "Failed to delete submission")
		return fmt.Errorf("delete submission: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.notify("error", "Failed to delete submission")
		return fmt.Errorf("delete submission: server returned %d", resp.StatusCode)
	}

	s.mu.Lock()
	kept := s.submissions[:0]
	for _, sub := range s.submissions {
		if sub.ID != id {
			kept = append(kept, sub)
		}
	}
	s.submissions = kept
	s.mu.Unlock()

	s.notify("success", "Submission deleted")
	return nil
}

// Logout clears the authenticated state and the persisted session flag. The
// in-memory list is kept; it is simply no longer rendered.
func (s *Session) Logout() {
	s.mu.Lock()
	s.authenticated = false
	s.loginError = ""
	s.mu.Unlock()
	s.storage.Delete(AuthKey)
}

func (s *Session) notify(kind, message string) {
	if s.notifier != nil {
		s.notifier.Notify(kind, message)
	}
}
