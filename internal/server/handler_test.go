package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spigell/ai-interviewer/internal/ai"
	"github.com/spigell/ai-interviewer/internal/interview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubGenerator struct{}

func (s *stubGenerator) Generate(_ context.Context, prompt string, _ []ai.Turn) (string, error) {
	switch {
	case strings.Contains(prompt, "QUESTION GENERATION"):
		return "```json\n[{\"question\": \"Tell me about yourself?\", \"intent\": \"warm up\", \"expected_themes\": [\"Background\"]}]\n```", nil
	case strings.Contains(prompt, "ANSWER EVALUATION"):
		return "```json\n{\"satisfaction_score\": 50, \"stage_complete\": false, \"next_question\": \"Anything else?\"}\n```", nil
	case strings.Contains(prompt, "EVALUATION REPORT"):
		return "Final feedback.", nil
	}
	return "", nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store := interview.NewStore()
	formatter := interview.NewFormatter(nil, func(int) int { return 0 })
	engine := interview.NewEngine(store, &stubGenerator{}, formatter, nil, zap.NewNop())

	hub := NewHub(zap.NewNop())
	notifier := NewNotifier(hub, nil, zap.NewNop())
	handler := NewHandler(engine, notifier, zap.NewNop())

	router := NewRouter(handler, hub, notifier, zap.NewNop(), Options{})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func startInterview(t *testing.T, server *httptest.Server) *interview.Result {
	t.Helper()

	resp := postJSON(t, server.URL+"/start-interview", map[string]string{
		"position":       "Backend Engineer",
		"candidate_name": "Ada",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result interview.Result
	decodeBody(t, resp, &result)
	return &result
}

func TestStartInterviewEndpoint(t *testing.T) {
	server := newTestServer(t)

	result := startInterview(t, server)
	assert.NotEmpty(t, result.SessionID)
	assert.NotEmpty(t, result.Message)
	assert.False(t, result.IsCompleted)
	require.NotNil(t, result.CurrentStage)
	assert.Equal(t, "intro", result.CurrentStage.ID)
}

func TestStartInterviewValidation(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server.URL+"/start-interview", map[string]string{
		"position":       "",
		"candidate_name": "Ada",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSendMessageEndpoint(t *testing.T) {
	server := newTestServer(t)
	started := startInterview(t, server)

	resp := postJSON(t, server.URL+"/send-message", map[string]string{
		"session_id": started.SessionID,
		"message":    "I have five years of experience.",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result interview.Result
	decodeBody(t, resp, &result)
	assert.Equal(t, started.SessionID, result.SessionID)
	assert.NotEmpty(t, result.Message)
	assert.False(t, result.IsCompleted)
}

func TestSendMessageUnknownSession(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server.URL+"/send-message", map[string]string{
		"session_id": "missing",
		"message":    "hello",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetSessionEndpoint(t *testing.T) {
	server := newTestServer(t)
	started := startInterview(t, server)

	resp := postJSON(t, server.URL+"/send-message", map[string]string{
		"session_id": started.SessionID,
		"message":    "an answer",
	})
	resp.Body.Close()

	getResp, err := http.Get(server.URL + "/interview/" + started.SessionID)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, getResp.StatusCode)

	var session interview.Session
	decodeBody(t, getResp, &session)
	assert.Equal(t, started.SessionID, session.ID)
	assert.Equal(t, "Backend Engineer", session.Position)
	// opening bot turn + one full exchange
	assert.Len(t, session.ChatHistory, 3)

	missing, err := http.Get(server.URL + "/interview/nope")
	require.NoError(t, err)
	defer missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestPopMessageEndpoint(t *testing.T) {
	server := newTestServer(t)
	started := startInterview(t, server)

	resp, err := http.Get(server.URL + "/get-message?session_id=" + started.SessionID)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var msg *interview.ChatMessage
	decodeBody(t, resp, &msg)
	require.NotNil(t, msg)
	assert.Equal(t, started.Message, msg.Content)
	assert.False(t, msg.IsUser)

	// The transcript is drained now; the endpoint returns null.
	again, err := http.Get(server.URL + "/get-message?session_id=" + started.SessionID)
	require.NoError(t, err)
	var empty *interview.ChatMessage
	decodeBody(t, again, &empty)
	assert.Nil(t, empty)

	missing, err := http.Get(server.URL + "/get-message?session_id=nope")
	require.NoError(t, err)
	defer missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestStatusEndpoints(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/status")
	require.NoError(t, err)
	var status map[string]string
	decodeBody(t, resp, &status)
	assert.Equal(t, "online", status["status"])

	root, err := http.Get(server.URL + "/")
	require.NoError(t, err)
	defer root.Body.Close()
	assert.Equal(t, http.StatusOK, root.StatusCode)
}
