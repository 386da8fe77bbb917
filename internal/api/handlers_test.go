package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perivihk-dotcom/client-intake/internal/config"
	"github.com/perivihk-dotcom/client-intake/internal/models"
	"github.com/perivihk-dotcom/client-intake/internal/store"
)

func newTestServer(t *testing.T) (*httptest.Server, *store.Store) {
	t.Helper()
	s, err := store.NewStore(filepath.Join(t.TempDir(), "intake.db"))
	require.NoError(t, err)
	require.NoError(t, s.InitSchema())
	t.Cleanup(func() { s.DB.Close() })

	h := &Handler{
		Store:  s,
		Config: &config.Config{AdminPassword: "admin123"},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/{$}", h.Root)
	mux.HandleFunc("POST /api/submissions", h.CreateSubmission)
	mux.HandleFunc("GET /api/submissions", h.ListSubmissions)
	mux.HandleFunc("DELETE /api/submissions/{id}", h.DeleteSubmission)
	mux.HandleFunc("POST /api/admin/verify", h.VerifyAdmin)

	srv := httptest.NewServer(CORSMiddleware([]string{"*"})(mux))
	t.Cleanup(srv.Close)
	return srv, s
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestRoot(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[map[string]string](t, resp)
	assert.Equal(t, "Client Intake API", body["message"])
}

func TestCreateSubmission(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/submissions", models.SubmissionInput{
		Name:          "Jane Doe",
		BusinessName:  "Acme",
		MobileNumber:  "123-456-7890",
		Email:         "jane@acme.com",
		AgreedToTerms: true,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	sub := decode[models.Submission](t, resp)
	assert.NotEmpty(t, sub.ID)
	assert.False(t, sub.Timestamp.IsZero())
	assert.Equal(t, "Jane Doe", sub.Name)
	assert.Equal(t, "Acme", sub.BusinessName)
}

func TestCreateSubmissionTermsNotAgreed(t *testing.T) {
	srv, s := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/submissions", models.SubmissionInput{
		Name:         "Jane Doe",
		BusinessName: "Acme",
		MobileNumber: "123-456-7890",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decode[models.ErrorResponse](t, resp)
	assert.Equal(t, "You must agree to the terms and conditions", body.Detail)

	count, err := s.CountSubmissions()
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestCreateSubmissionBadBody(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/submissions", "application/json", bytes.NewReader([]byte("{not json")))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListSubmissions(t *testing.T) {
	srv, s := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/submissions")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[[]models.Submission](t, resp))

	created, err := s.CreateSubmission(&models.SubmissionInput{Name: "Jane", BusinessName: "Acme", MobileNumber: "1234567", AgreedToTerms: true})
	require.NoError(t, err)

	resp, err = http.Get(srv.URL + "/api/submissions")
	require.NoError(t, err)
	defer resp.Body.Close()
	subs := decode[[]models.Submission](t, resp)
	require.Len(t, subs, 1)
	assert.Equal(t, created.ID, subs[0].ID)
}

func TestDeleteSubmission(t *testing.T) {
	srv, s := newTestServer(t)

	created, err := s.CreateSubmission(&models.SubmissionInput{Name: "Jane", BusinessName: "Acme", MobileNumber: "1234567", AgreedToTerms: true})
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/submissions/"+created.ID, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[models.VerifyResponse](t, resp)
	assert.True(t, body.Success)
	assert.Equal(t, "Submission deleted", body.Message)

	count, err := s.CountSubmissions()
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestDeleteSubmissionNotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/submissions/no-such-id", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Submission not found", decode[models.ErrorResponse](t, resp).Detail)
}

func TestVerifyAdmin(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/admin/verify", models.AdminLogin{Password: "admin123"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[models.VerifyResponse](t, resp)
	assert.True(t, body.Success)
	assert.Equal(t, "Access granted", body.Message)

	resp = postJSON(t, srv.URL+"/api/admin/verify", models.AdminLogin{Password: "wrong"})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid password", decode[models.ErrorResponse](t, resp).Detail)
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/submissions", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://example.com")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), "DELETE")
}
