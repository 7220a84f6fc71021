package chat

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/websocket"

	"github.com/homequote/homequote/internal/session"
	"github.com/homequote/homequote/internal/visual"
	"github.com/homequote/homequote/pkg/logging"
)

// InboundMessage is what the widget sends.
type InboundMessage struct {
	Type       string `json:"type"` // "select_service", "answer", "action", "ping"
	SessionID  string `json:"session_id"`
	Service    string `json:"service,omitempty"`
	QuestionID string `json:"question_id,omitempty"`
	Value      string `json:"value,omitempty"`
	Action     string `json:"action,omitempty"`
}

// OutboundMessage is what we send to the widget.
type OutboundMessage struct {
	Type       string            `json:"type"` // "session", "menu", "question", "validation_error", "processing", "price", "visualization", "lead_saved", "reset", "error", "pong"
	SessionID  string            `json:"session_id,omitempty"`
	Services   []ServiceChoice   `json:"services,omitempty"`
	Question   *Question         `json:"question,omitempty"`
	QuestionID string            `json:"question_id,omitempty"`
	Message    string            `json:"message,omitempty"`
	Stage      string            `json:"stage,omitempty"`
	Quote      *Quote            `json:"quote,omitempty"`
	Preview    *visual.Rendering `json:"preview,omitempty"`
	LeadID     string            `json:"lead_id,omitempty"`
	Timestamp  string            `json:"timestamp,omitempty"`
}

// Handler serves the chat over WebSocket, with HTTP fallbacks for
// widgets that cannot hold a socket open.
type Handler struct {
	svc    *Service
	logger *logging.Logger

	mu    sync.RWMutex
	conns map[string]*websocket.Conn // session ID -> active connection
}

// NewChatHandler creates the chat transport handler.
func NewChatHandler(svc *Service, logger *logging.Logger) *Handler {
	if svc == nil {
		panic("chat: service cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		svc:    svc,
		logger: logger,
		conns:  make(map[string]*websocket.Conn),
	}
}

// generateSessionID creates a random session identifier.
func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return uuid.New().String()
	}
	return hex.EncodeToString(b)
}

// HandleWebSocket upgrades to WebSocket and runs the conversation.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(func(conn *websocket.Conn) {
		h.serveWS(conn, r)
	}).ServeHTTP(w, r)
}

func (h *Handler) serveWS(conn *websocket.Conn, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		sessionID = generateSessionID()
	}

	_ = websocket.JSON.Send(conn, OutboundMessage{
		Type:      "session",
		SessionID: sessionID,
	})

	// A reconnect for the same session supersedes the old socket.
	h.mu.Lock()
	if prev, ok := h.conns[sessionID]; ok {
		_ = prev.Close()
		h.logger.Info("chat: superseded duplicate connection", "session_id", sessionID)
	}
	h.conns[sessionID] = conn
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		if h.conns[sessionID] == conn {
			delete(h.conns, sessionID)
		}
		h.mu.Unlock()
	}()

	h.logger.Info("chat: connection opened", "session_id", sessionID)

	p := &wsPresenter{conn: conn}
	if err := h.svc.Start(r.Context(), sessionID, p); err != nil {
		h.logger.Error("chat: start failed", "error", err, "session_id", sessionID)
		return
	}

	for {
		var msg InboundMessage
		if err := websocket.JSON.Receive(conn, &msg); err != nil {
			h.logger.Debug("chat: connection closed", "session_id", sessionID, "error", err)
			return
		}
		if msg.Type == "ping" {
			_ = websocket.JSON.Send(conn, OutboundMessage{Type: "pong"})
			continue
		}
		if err := h.dispatch(r.Context(), sessionID, msg, p); err != nil {
			h.logger.Error("chat: dispatch failed", "error", err, "session_id", sessionID)
			_ = websocket.JSON.Send(conn, OutboundMessage{
				Type:    "error",
				Message: "Sorry, something went wrong. Please try again.",
			})
		}
	}
}

func (h *Handler) dispatch(ctx context.Context, sessionID string, msg InboundMessage, p Presenter) error {
	switch msg.Type {
	case "select_service":
		return h.svc.SelectService(ctx, sessionID, msg.Service, p)
	case "answer":
		return h.svc.SubmitAnswer(ctx, sessionID, msg.QuestionID, msg.Value, p)
	case "action":
		return h.svc.FinalAction(ctx, sessionID, msg.Action, p)
	case "start":
		return h.svc.Start(ctx, sessionID, p)
	default:
		p.OnError("Unknown message type.")
		return nil
	}
}

type httpReply struct {
	SessionID string            `json:"session_id"`
	Events    []OutboundMessage `json:"events"`
}

// handleHTTP decodes an inbound message from the body, forces the given
// type, and replies with the buffered events.
func (h *Handler) handleHTTP(w http.ResponseWriter, r *http.Request, msgType string) {
	var msg InboundMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	msg.Type = msgType
	if msg.SessionID == "" {
		msg.SessionID = generateSessionID()
	}

	p := &bufferPresenter{}
	if err := h.dispatch(r.Context(), msg.SessionID, msg, p); err != nil {
		h.logger.Error("chat: request failed", "error", err, "session_id", msg.SessionID)
		http.Error(w, "request failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(httpReply{
		SessionID: msg.SessionID,
		Events:    p.events,
	})
}

// HandleStart handles POST /chat/start requests.
func (h *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	h.handleHTTP(w, r, "start")
}

// HandleSelectService handles POST /chat/select-service requests.
func (h *Handler) HandleSelectService(w http.ResponseWriter, r *http.Request) {
	h.handleHTTP(w, r, "select_service")
}

// HandleAnswer handles POST /chat/answer requests.
func (h *Handler) HandleAnswer(w http.ResponseWriter, r *http.Request) {
	h.handleHTTP(w, r, "answer")
}

// HandleAction handles POST /chat/action requests.
func (h *Handler) HandleAction(w http.ResponseWriter, r *http.Request) {
	h.handleHTTP(w, r, "action")
}

// HandleTranscript returns the conversation transcript for a session.
func (h *Handler) HandleTranscript(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}

	msgs, err := h.svc.sessions.Transcript(r.Context(), sessionID)
	if err != nil {
		h.logger.Error("chat: failed to load transcript", "error", err, "session_id", sessionID)
		http.Error(w, "failed to load transcript", http.StatusInternalServerError)
		return
	}
	if msgs == nil {
		msgs = []session.Message{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"messages": msgs})
}

// wsPresenter delivers events straight to a WebSocket connection.
type wsPresenter struct {
	conn *websocket.Conn
}

func (p *wsPresenter) send(msg OutboundMessage) {
	msg.Timestamp = time.Now().UTC().Format(time.RFC3339)
	_ = websocket.JSON.Send(p.conn, msg)
}

func (p *wsPresenter) OnServiceMenu(choices []ServiceChoice) {
	p.send(OutboundMessage{Type: "menu", Services: choices})
}

func (p *wsPresenter) OnQuestion(q Question) {
	p.send(OutboundMessage{Type: "question", Question: &q})
}

func (p *wsPresenter) OnValidationError(questionID, message string) {
	p.send(OutboundMessage{Type: "validation_error", QuestionID: questionID, Message: message})
}

func (p *wsPresenter) OnProcessing(stage string) {
	p.send(OutboundMessage{Type: "processing", Stage: stage})
}

func (p *wsPresenter) OnPrice(quote Quote) {
	p.send(OutboundMessage{Type: "price", Quote: &quote})
}

func (p *wsPresenter) OnVisualization(r visual.Rendering) {
	p.send(OutboundMessage{Type: "visualization", Preview: &r})
}

func (p *wsPresenter) OnLeadSaved(leadID string) {
	p.send(OutboundMessage{Type: "lead_saved", LeadID: leadID})
}

func (p *wsPresenter) OnReset() {
	p.send(OutboundMessage{Type: "reset"})
}

func (p *wsPresenter) OnError(message string) {
	p.send(OutboundMessage{Type: "error", Message: message})
}

// bufferPresenter collects events for an HTTP response.
type bufferPresenter struct {
	events []OutboundMessage
}

func (p *bufferPresenter) add(msg OutboundMessage) {
	msg.Timestamp = time.Now().UTC().Format(time.RFC3339)
	p.events = append(p.events, msg)
}

func (p *bufferPresenter) OnServiceMenu(choices []ServiceChoice) {
	p.add(OutboundMessage{Type: "menu", Services: choices})
}

func (p *bufferPresenter) OnQuestion(q Question) {
	p.add(OutboundMessage{Type: "question", Question: &q})
}

func (p *bufferPresenter) OnValidationError(questionID, message string) {
	p.add(OutboundMessage{Type: "validation_error", QuestionID: questionID, Message: message})
}

func (p *bufferPresenter) OnProcessing(stage string) {
	p.add(OutboundMessage{Type: "processing", Stage: stage})
}

func (p *bufferPresenter) OnPrice(quote Quote) {
	p.add(OutboundMessage{Type: "price", Quote: &quote})
}

func (p *bufferPresenter) OnVisualization(r visual.Rendering) {
	p.add(OutboundMessage{Type: "visualization", Preview: &r})
}

func (p *bufferPresenter) OnLeadSaved(leadID string) {
	p.add(OutboundMessage{Type: "lead_saved", LeadID: leadID})
}

func (p *bufferPresenter) OnReset() {
	p.add(OutboundMessage{Type: "reset"})
}

func (p *bufferPresenter) OnError(message string) {
	p.add(OutboundMessage{Type: "error", Message: message})
}
