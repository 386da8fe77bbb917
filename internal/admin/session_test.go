package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perivihk-dotcom/client-intake/internal/models"
)

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Notify(kind, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, kind+": "+message)
}

type fakeBackend struct {
	password    string
	submissions []models.Submission
	fetchCalls  atomic.Int32
	deleteCalls atomic.Int32
	failFetch   bool
	failDelete  bool
}

func (b *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/admin/verify", func(w http.ResponseWriter, r *http.Request) {
		var login models.AdminLogin
		json.NewDecoder(r.Body).Decode(&login)
		w.Header().Set("Content-Type", "application/json")
		if login.Password != b.password {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(models.ErrorResponse{Detail: "Invalid password"})
			return
		}
		json.NewEncoder(w).Encode(models.VerifyResponse{Success: true})
	})
	mux.HandleFunc("GET /api/submissions", func(w http.ResponseWriter, r *http.Request) {
		b.fetchCalls.Add(1)
		if b.failFetch {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(b.submissions)
	})
	mux.HandleFunc("DELETE /api/submissions/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.deleteCalls.Add(1)
		if b.failDelete {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		id := r.PathValue("id")
		for i, sub := range b.submissions {
			if sub.ID == id {
				b.submissions = append(b.submissions[:i], b.submissions[i+1:]...)
				json.NewEncoder(w).Encode(models.VerifyResponse{Success: true, Message: "Submission deleted"})
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(models.ErrorResponse{Detail: "Submission not found"})
	})
	return mux
}

func newTestBackend(t *testing.T) (*fakeBackend, string) {
	t.Helper()
	backend := &fakeBackend{
		password: "admin123",
		submissions: []models.Submission{
			{ID: "a", Name: "Jane Doe", BusinessName: "Acme"},
			{ID: "b", Name: "John Roe", BusinessName: "Globex"},
		},
	}
	srv := httptest.NewServer(backend.handler())
	t.Cleanup(srv.Close)
	return backend, srv.URL
}

func TestLoginSuccess(t *testing.T) {
	backend, url := newTestBackend(t)
	storage := NewMemoryStorage()
	s := NewSession(url, storage)

	require.NoError(t, s.Login(context.Background(), "admin123"))

	assert.True(t, s.Authenticated())
	assert.Empty(t, s.LoginError())
	assert.Equal(t, "true", storage.Get(AuthKey))

	// A successful login triggers exactly one list fetch.
	assert.Equal(t, int32(1), backend.fetchCalls.Load())
	assert.Equal(t, 2, s.Count())
}

func TestLoginFailure(t *testing.T) {
	backend, url := newTestBackend(t)
	storage := NewMemoryStorage()
	s := NewSession(url, storage)

	require.Error(t, s.Login(context.Background(), "wrong"))

	assert.False(t, s.Authenticated())
	assert.Equal(t, LoginErrorMessage, s.LoginError())
	assert.Empty(t, storage.Get(AuthKey))
	assert.Equal(t, int32(0), backend.fetchCalls.Load())
}

func TestLoginTransportFailure(t *testing.T) {
	s := NewSession("http://127.0.0.1:1", NewMemoryStorage())

	require.Error(t, s.Login(context.Background(), "admin123"))
	assert.False(t, s.Authenticated())
	assert.Equal(t, LoginErrorMessage, s.LoginError())
}

func TestSessionRestoredFromStorage(t *testing.T) {
	_, url := newTestBackend(t)
	storage := NewMemoryStorage()
	storage.Set(AuthKey, "true")

	s := NewSession(url, storage)
	assert.True(t, s.Authenticated())
}

func TestFetchSubmissionsReplacesListWholesale(t *testing.T) {
	backend, url := newTestBackend(t)
	s := NewSession(url, NewMemoryStorage())

	require.NoError(t, s.FetchSubmissions(context.Background()))
	require.Equal(t, 2, s.Count())

	backend.submissions = []models.Submission{{ID: "c", Name: "New Person"}}
	require.NoError(t, s.FetchSubmissions(context.Background()))

	subs := s.Submissions()
	require.Len(t, subs, 1)
	assert.Equal(t, "c", subs[0].ID)
	assert.False(t, s.Loading())
}

func TestFetchFailureKeepsPriorList(t *testing.T) {
	backend, url := newTestBackend(t)
	notifier := &recordingNotifier{}
	s := NewSession(url, NewMemoryStorage(), WithNotifier(notifier))

	require.NoError(t, s.FetchSubmissions(context.Background()))
	require.Equal(t, 2, s.Count())

	backend.failFetch = true
	require.Error(t, s.FetchSubmissions(context.Background()))

	assert.Equal(t, 2, s.Count())
	assert.False(t, s.Loading())
	require.NotEmpty(t, notifier.messages)
	assert.True(t, strings.HasPrefix(notifier.messages[len(notifier.messages)-1], "error:"))
}

func TestDeleteSubmission(t *testing.T) {
	_, url := newTestBackend(t)
	s := NewSession(url, NewMemoryStorage())
	require.NoError(t, s.FetchSubmissions(context.Background()))

	require.NoError(t, s.DeleteSubmission(context.Background(), "a", func() bool { return true }))

	subs := s.Submissions()
	require.Len(t, subs, 1)
	assert.Equal(t, "b", subs[0].ID)
	assert.Equal(t, 1, s.Count())
}

func TestDeleteDeclinedMakesNoCall(t *testing.T) {
	backend, url := newTestBackend(t)
	s := NewSession(url, NewMemoryStorage())
	require.NoError(t, s.FetchSubmissions(context.Background()))

	require.NoError(t, s.DeleteSubmission(context.Background(), "a", func() bool { return false }))

	assert.Equal(t, int32(0), backend.deleteCalls.Load())
	assert.Equal(t, 2, s.Count())
}

func TestDeleteFailureKeepsList(t *testing.T) {
	backend, url := newTestBackend(t)
	notifier := &recordingNotifier{}
	s := NewSession(url, NewMemoryStorage(), WithNotifier(notifier))
	require.NoError(t, s.FetchSubmissions(context.Background()))

	backend.failDelete = true
	require.Error(t, s.DeleteSubmission(context.Background(), "a", func() bool { return true }))

	assert.Equal(t, 2, s.Count())
	require.NotEmpty(t, notifier.messages)
	assert.True(t, strings.HasPrefix(notifier.messages[len(notifier.messages)-1], "error:"))
}

func TestLogout(t *testing.T) {
	_, url := newTestBackend(t)
	storage := NewMemoryStorage()
	s := NewSession(url, storage)
	require.NoError(t, s.Login(context.Background(), "admin123"))

	s.Logout()

	assert.False(t, s.Authenticated())
	assert.Empty(t, storage.Get(AuthKey))
	// The list stays in memory; it is simply not rendered any more.
	assert.Equal(t, 2, s.Count())

	// A fresh session without the persisted flag starts logged out.
	assert.False(t, NewSession(url, storage).Authenticated())
}
