package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lectern "github.com/lectern-ai/lectern"
	"github.com/lectern-ai/lectern/persona"
	"github.com/lectern-ai/lectern/provider"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) (*Server, *provider.Mock) {
	t.Helper()
	registry, err := persona.NewRegistry(
		persona.New("brandon", "Brandon", "You are witty and concise."),
		persona.New("stephanie", "Stephanie", "You are thorough and calm."),
	)
	require.NoError(t, err)
	mock := provider.NewMock()
	return New(lectern.New(registry, mock)), mock
}

func postJSON(t *testing.T, srv *Server, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeChat(t *testing.T, rec *httptest.ResponseRecorder) ChatResponse {
	t.Helper()
	var res ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	return res
}

func decodeDebate(t *testing.T, rec *httptest.ResponseRecorder) DebateResponse {
	t.Helper()
	var res DebateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	return res
}

func TestServer_ChatLifecycle(t *testing.T) {
	srv, mock := newTestServer(t)
	mock.Enqueue(
		"Welcome, today we cover induction.", "0",
		"A proof technique over the naturals.", "0",
	)

	// Initial turn with no session id.
	rec := postJSON(t, srv, "/chat", ChatRequest{ProfID: "brandon", IsInitial: true})
	require.Equal(t, http.StatusOK, rec.Code)
	first := decodeChat(t, rec)
	require.NotEmpty(t, first.SessionID)
	assert.Equal(t, "Welcome, today we cover induction.", first.Response)
	assert.False(t, first.SessionClosed)

	// Follow-up on the same session.
	rec = postJSON(t, srv, "/chat", ChatRequest{
		SessionID: first.SessionID,
		ProfID:    "brandon",
		UserInput: "What is induction?",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	second := decodeChat(t, rec)
	assert.Equal(t, first.SessionID, second.SessionID)
	assert.Equal(t, "A proof technique over the naturals.", second.Response)

	// Departure: no completion call, session reported closed.
	calls := mock.Calls()
	rec = postJSON(t, srv, "/chat", ChatRequest{
		SessionID:     first.SessionID,
		ProfID:        "brandon",
		SessionClosed: true,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	closed := decodeChat(t, rec)
	assert.True(t, closed.SessionClosed)
	assert.Equal(t, calls, mock.Calls())
}

func TestServer_ChatClassifierCloses(t *testing.T) {
	srv, mock := newTestServer(t)
	mock.Enqueue("Goodbye then!", "1")

	rec := postJSON(t, srv, "/chat", ChatRequest{ProfID: "brandon", UserInput: "I have to go, bye"})
	require.Equal(t, http.StatusOK, rec.Code)
	res := decodeChat(t, rec)
	assert.True(t, res.SessionClosed)
	assert.Equal(t, "Goodbye then!", res.Response)
}

func TestServer_ChatUnknownProfessor(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := postJSON(t, srv, "/chat", ChatRequest{ProfID: "nobody", IsInitial: true})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_ChatMissingProfID(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := postJSON(t, srv, "/chat", ChatRequest{UserInput: "hello"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_ChatProviderFailure(t *testing.T) {
	srv, mock := newTestServer(t)
	mock.FailWith(errors.New("upstream unavailable"))

	rec := postJSON(t, srv, "/chat", ChatRequest{ProfID: "brandon", UserInput: "hello"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "completion failed")
}

func TestServer_DebateLifecycle(t *testing.T) {
	srv, mock := newTestServer(t)
	mock.Enqueue(
		"Hi, I teach math.", "0",
		"And I teach history.", "0",
		"Let me answer that question.", "0",
	)

	// Open: the first professor speaks.
	rec := postJSON(t, srv, "/debate", DebateRequest{
		ProfID1: "brandon", ProfID2: "stephanie", IsInitial: true,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	first := decodeDebate(t, rec)
	require.NotEmpty(t, first.SessionID)
	assert.Equal(t, "brandon", first.From)
	assert.Equal(t, "Hi, I teach math.", first.Response)

	// Empty input: the other professor responds.
	rec = postJSON(t, srv, "/debate", DebateRequest{
		SessionID: first.SessionID, ProfID1: "brandon", ProfID2: "stephanie",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	second := decodeDebate(t, rec)
	assert.Equal(t, "stephanie", second.From)

	// Intervention: answered by whoever did not just speak.
	rec = postJSON(t, srv, "/debate", DebateRequest{
		SessionID: first.SessionID, ProfID1: "brandon", ProfID2: "stephanie",
		UserInput: "can I ask something?",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	third := decodeDebate(t, rec)
	assert.Equal(t, "brandon", third.From)
	assert.Equal(t, "Let me answer that question.", third.Response)

	// Departure closes the debate without a completion call.
	calls := mock.Calls()
	rec = postJSON(t, srv, "/debate", DebateRequest{
		SessionID: first.SessionID, ProfID1: "brandon", ProfID2: "stephanie",
		SessionClosed: true,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	closed := decodeDebate(t, rec)
	assert.True(t, closed.SessionClosed)
	assert.Equal(t, calls, mock.Calls())
}

func TestServer_DebateAdvanceBeforeOpen(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := postJSON(t, srv, "/debate", DebateRequest{
		SessionID: "never-opened", ProfID1: "brandon", ProfID2: "stephanie",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestServer_DebateUnknownProfessor(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := postJSON(t, srv, "/debate", DebateRequest{
		ProfID1: "brandon", ProfID2: "nobody", IsInitial: true,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_Professors(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/professors", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Professors []ProfessorInfo `json:"professors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Professors, 2)
	assert.Equal(t, ProfessorInfo{ID: "brandon", Name: "Brandon"}, body.Professors[0])
}

func TestServer_Healthz(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServer_CORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/chat", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
