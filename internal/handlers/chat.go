package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"wellbalance/internal/chat"
)

type ChatHandler struct {
	assembler *chat.Assembler
	logger    *zap.Logger
}

// NewChatHandler accepts a nil assembler; every request then answers 503.
func NewChatHandler(assembler *chat.Assembler, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{assembler: assembler, logger: logger}
}

type chatRequest struct {
	Messages []chat.UIMessage `json:"messages"`
	Tone     string           `json:"tone"`
}

// Chat godoc
// @Summary Chat with the wellness assistant
// @Description Streams a UI message stream as server-sent events
// @Tags chat
// @Accept json
// @Produce text/event-stream
// @Param request body chatRequest true "Conversation so far"
// @Success 200 {string} string "event stream"
// @Failure 400 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /chat [post]
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	if h.assembler == nil {
		writeError(w, http.StatusServiceUnavailable, "Chat is not configured on this server.")
		return
	}
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	history, err := chat.ConvertMessages(req.Messages)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "messages")
		return
	}

	stream, err := chat.NewSSEWriter(w)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	turn := chat.TurnRequest{UserID: currentUser(r), Tone: chat.ParseTone(req.Tone), History: history}
	if err := h.assembler.Run(r.Context(), turn, stream); err != nil {
		if r.Context().Err() != nil {
			h.logger.Info("chat client disconnected", zap.Error(err))
			return
		}
		h.logger.Warn("chat turn ended with error", zap.Error(err))
	}
	_ = stream.Done()
}
