package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pdxmph/addressbook/internal/contact"
	"github.com/pdxmph/addressbook/internal/db"
	"github.com/pdxmph/addressbook/internal/validate"
)

type testServer struct {
	handler http.Handler
	logs    *observer.ObservedLogs
	token   string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	path := filepath.Join(t.TempDir(), "contacts.db")
	require.NoError(t, db.Initialize(path))
	store, err := db.Open(path, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	core, logs := observer.New(zapcore.InfoLevel)
	auth := NewAuthenticator("key", time.Hour, testUsers(t))
	h := New(zap.New(core), store, auth, validate.New())

	token, err := auth.Login("alice", "secret")
	require.NoError(t, err)
	return &testServer{handler: Routes(h), logs: logs, token: token}
}

func (s *testServer) request(t *testing.T, method, path string, body any, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := s.request(t, http.MethodGet, "/api/health", nil, false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestLoginEndpoint(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name       string
		body       any
		expectCode int
		expectErr  string
	}{
		{"valid", loginRequest{Username: "alice", Password: "secret"}, http.StatusOK, ""},
		{"wrong password", loginRequest{Username: "alice", Password: "nope"}, http.StatusUnauthorized, "Invalid username or password"},
		{"missing username", loginRequest{Password: "secret"}, http.StatusBadRequest, "Username is required"},
		{"missing password", loginRequest{Username: "alice"}, http.StatusBadRequest, "Password is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.request(t, http.MethodPost, "/api/auth/login", tt.body, false)
			assert.Equal(t, tt.expectCode, rec.Code)
			if tt.expectErr != "" {
				assert.Equal(t, tt.expectErr, errorBody(t, rec))
				return
			}
			var resp loginResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Token)
		})
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString("{"))
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid request payload", errorBody(t, rec))
}

func TestContactsRequireAuth(t *testing.T) {
	s := newTestServer(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/contacts"},
		{http.MethodGet, "/api/contacts/search?q=a"},
		{http.MethodPost, "/api/contacts"},
		{http.MethodPut, "/api/contacts/x"},
		{http.MethodDelete, "/api/contacts/x"},
	} {
		rec := s.request(t, tc.method, tc.path, nil, false)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, tc.method+" "+tc.path)
		assert.Equal(t, "Unauthorized", errorBody(t, rec))
	}

	s.token = "garbage"
	rec := s.request(t, http.MethodGet, "/api/contacts", nil, true)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestContactLifecycle(t *testing.T) {
	s := newTestServer(t)

	rec := s.request(t, http.MethodGet, "/api/contacts", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = s.request(t, http.MethodPost, "/api/contacts", contact.Payload{
		Name:   "Ann Lee",
		Emails: []string{"ann@x.com", "lee@y.org"},
	}, true)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created contact.Contact
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "ann@x.com", created.Email)
	assert.Equal(t, []string{"ann@x.com", "lee@y.org"}, created.Emails)
	assert.Equal(t, 1, s.logs.FilterMessage("contact created").Len())

	rec = s.request(t, http.MethodPut, "/api/contacts/"+created.ID, contact.Payload{
		Name:   "Ann Lee-Park",
		Emails: []string{"lee@y.org"},
	}, true)
	require.Equal(t, http.StatusOK, rec.Code)
	var updated contact.Contact
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Ann Lee-Park", updated.Name)
	assert.Equal(t, "lee@y.org", updated.Email)

	rec = s.request(t, http.MethodGet, "/api/contacts/search?q=park", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	var found []contact.Contact
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &found))
	require.Len(t, found, 1)
	assert.Equal(t, created.ID, found[0].ID)

	rec = s.request(t, http.MethodDelete, "/api/contacts/"+created.ID, nil, true)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = s.request(t, http.MethodDelete, "/api/contacts/"+created.ID, nil, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Contact not found", errorBody(t, rec))

	rec = s.request(t, http.MethodPut, "/api/contacts/"+created.ID, contact.Payload{Name: "Ghost"}, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateContactValidation(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name      string
		payload   contact.Payload
		expectErr string
	}{
		{"missing name", contact.Payload{Emails: []string{"a@x.com"}}, "Name is required"},
		{"bad email in list", contact.Payload{Name: "A B", Emails: []string{"a@x.com", "nope"}}, "All emails must be valid"},
		{"bad legacy email", contact.Payload{Name: "A B", Email: "nope"}, "Email is invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.request(t, http.MethodPost, "/api/contacts", tt.payload, true)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.expectErr, errorBody(t, rec))
		})
	}

	rec := s.request(t, http.MethodGet, "/api/contacts", nil, true)
	assert.JSONEq(t, `[]`, rec.Body.String())
}
