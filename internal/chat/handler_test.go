package chat

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"

	"github.com/homequote/homequote/pkg/logging"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	svc, _, _ := newTestService(t)
	return NewChatHandler(svc, logging.New("error"))
}

func postJSON(t *testing.T, handler http.HandlerFunc, body string) (*httptest.ResponseRecorder, httpReply) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler(w, req)

	var reply httpReply
	if w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reply))
	}
	return w, reply
}

func TestGenerateSessionID(t *testing.T) {
	s1 := generateSessionID()
	s2 := generateSessionID()
	assert.NotEmpty(t, s1)
	assert.NotEqual(t, s1, s2)
	assert.Len(t, s1, 32) // 16 bytes = 32 hex chars
}

func TestWebSocketSupersedesDuplicateSession(t *testing.T) {
	h := newTestHandler(t)
	srv := httptest.NewServer(http.HandlerFunc(h.HandleWebSocket))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?session=dup"

	first, err := websocket.Dial(wsURL, "", srv.URL)
	require.NoError(t, err)
	defer first.Close()

	var envelope OutboundMessage
	require.NoError(t, websocket.JSON.Receive(first, &envelope))
	require.Equal(t, "session", envelope.Type)

	second, err := websocket.Dial(wsURL, "", srv.URL)
	require.NoError(t, err)
	defer second.Close()

	// Drain the first socket until the server-side close surfaces.
	require.NoError(t, first.SetReadDeadline(time.Now().Add(2*time.Second)))
	var recvErr error
	for recvErr == nil {
		var msg OutboundMessage
		recvErr = websocket.JSON.Receive(first, &msg)
	}
	var nerr net.Error
	if errors.As(recvErr, &nerr) && nerr.Timeout() {
		t.Fatal("first connection still open after reconnect")
	}

	// The superseding socket keeps working.
	require.NoError(t, second.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg OutboundMessage
	require.NoError(t, websocket.JSON.Receive(second, &msg))
	require.Equal(t, "session", msg.Type)
}

func TestHandleStart(t *testing.T) {
	h := newTestHandler(t)

	w, reply := postJSON(t, h.HandleStart, `{}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, reply.SessionID)
	require.Len(t, reply.Events, 1)
	assert.Equal(t, "menu", reply.Events[0].Type)
	assert.Len(t, reply.Events[0].Services, 4)
}

func TestHandleSelectService(t *testing.T) {
	h := newTestHandler(t)

	w, reply := postJSON(t, h.HandleSelectService, `{"session_id":"s1","service":"carpentry"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "s1", reply.SessionID)
	require.Len(t, reply.Events, 1)
	assert.Equal(t, "question", reply.Events[0].Type)
	require.NotNil(t, reply.Events[0].Question)
	assert.Equal(t, "furniture_type", reply.Events[0].Question.ID)
}

func TestHandleAnswerFlow(t *testing.T) {
	h := newTestHandler(t)

	_, _ = postJSON(t, h.HandleSelectService, `{"session_id":"s1","service":"painting"}`)

	w, reply := postJSON(t, h.HandleAnswer, `{"session_id":"s1","question_id":"environment","value":"facade"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, reply.Events, 1)
	assert.Equal(t, "question", reply.Events[0].Type)
	assert.Equal(t, "area_m2", reply.Events[0].Question.ID)

	// A bad answer comes back as a validation error, not a new question.
	_, reply = postJSON(t, h.HandleAnswer, `{"session_id":"s1","question_id":"area_m2","value":"-5"}`)
	require.Len(t, reply.Events, 1)
	assert.Equal(t, "validation_error", reply.Events[0].Type)
	assert.Equal(t, "area_m2", reply.Events[0].QuestionID)
	assert.NotEmpty(t, reply.Events[0].Message)
}

func TestHandleAnswerToCompletion(t *testing.T) {
	h := newTestHandler(t)

	_, _ = postJSON(t, h.HandleSelectService, `{"session_id":"s1","service":"painting"}`)
	answers := []string{
		`{"session_id":"s1","question_id":"environment","value":"interior-residential"}`,
		`{"session_id":"s1","question_id":"area_m2","value":"100"}`,
		`{"session_id":"s1","question_id":"coats","value":"3"}`,
		`{"session_id":"s1","question_id":"color","value":"#FFFFFF"}`,
	}
	for _, body := range answers {
		w, _ := postJSON(t, h.HandleAnswer, body)
		require.Equal(t, http.StatusOK, w.Code)
	}

	_, reply := postJSON(t, h.HandleAnswer, `{"session_id":"s1","question_id":"paint_type","value":"matte acrylic"}`)
	types := make([]string, 0, len(reply.Events))
	for _, ev := range reply.Events {
		types = append(types, ev.Type)
	}
	assert.Equal(t, []string{"processing", "price", "processing", "visualization"}, types)

	var quote *Quote
	for _, ev := range reply.Events {
		if ev.Type == "price" {
			quote = ev.Quote
		}
	}
	require.NotNil(t, quote)
	assert.Equal(t, "3000.00", quote.Price)
}

func TestHandleActionSaveLead(t *testing.T) {
	h := newTestHandler(t)

	_, _ = postJSON(t, h.HandleSelectService, `{"session_id":"s1","service":"painting"}`)
	answers := []string{
		`{"session_id":"s1","question_id":"environment","value":"interior-residential"}`,
		`{"session_id":"s1","question_id":"area_m2","value":"100"}`,
		`{"session_id":"s1","question_id":"coats","value":"3"}`,
		`{"session_id":"s1","question_id":"color","value":"#FFFFFF"}`,
		`{"session_id":"s1","question_id":"paint_type","value":"matte acrylic"}`,
	}
	for _, body := range answers {
		postJSON(t, h.HandleAnswer, body)
	}

	_, reply := postJSON(t, h.HandleAction, `{"session_id":"s1","action":"save_lead"}`)
	require.NotEmpty(t, reply.Events)
	assert.Equal(t, "lead_saved", reply.Events[0].Type)
	assert.NotEmpty(t, reply.Events[0].LeadID)
}

func TestHandleInvalidBody(t *testing.T) {
	h := newTestHandler(t)

	w, _ := postJSON(t, h.HandleStart, `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleTranscript(t *testing.T) {
	h := newTestHandler(t)

	_, _ = postJSON(t, h.HandleSelectService, `{"session_id":"s1","service":"painting"}`)

	req := httptest.NewRequest(http.MethodGet, "/chat/transcript?session=s1", nil)
	w := httptest.NewRecorder()
	h.HandleTranscript(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Messages []struct {
			Role string `json:"role"`
			Text string `json:"text"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Messages)
	assert.Equal(t, "user", resp.Messages[0].Role)
}

func TestHandleTranscriptMissingSession(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/chat/transcript", nil)
	w := httptest.NewRecorder()
	h.HandleTranscript(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
