package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/MyatBhoneThet/ai-receptionist/internal/conversation"
	"github.com/MyatBhoneThet/ai-receptionist/pkg/logging"
)

// maxChatBodyBytes caps /chat request bodies to keep abuse cheap to reject.
const maxChatBodyBytes = 1 << 20

// TurnRunner runs one dialogue turn for a session.
type TurnRunner interface {
	ProcessTurn(ctx context.Context, sessionID, message string) (conversation.TurnResult, error)
}

// ChatHandler exposes the dialogue turn over HTTP.
type ChatHandler struct {
	turns  TurnRunner
	logger *logging.Logger
}

// NewChatHandler creates the /chat handler.
func NewChatHandler(turns TurnRunner, logger *logging.Logger) *ChatHandler {
	if turns == nil {
		panic("handlers: turn service required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ChatHandler{turns: turns, logger: logger}
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// HandleChat runs one dialogue turn.
// POST /chat {session_id, message} -> TurnResult JSON with merged data.
func (h *ChatHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxChatBodyBytes)

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.SessionID) == "" || strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "session_id and message are required")
		return
	}

	result, err := h.turns.ProcessTurn(r.Context(), req.SessionID, req.Message)
	if err != nil {
		h.logger.Error("chat turn failed", "session_id", req.SessionID, "error", err)
		writeError(w, http.StatusInternalServerError, "Something went wrong.")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
