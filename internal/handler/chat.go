// Package handler provides HTTP handlers for the API.
package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/dedsec995/chat-backend/internal/middleware"
	"github.com/dedsec995/chat-backend/internal/model"
	"github.com/dedsec995/chat-backend/internal/service"
	"github.com/dedsec995/chat-backend/pkg/logger"
)

// ChatHandler handles the chat endpoint.
type ChatHandler struct {
	service *service.ChatService
	logger  *logger.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(svc *service.ChatService, log *logger.Logger) *ChatHandler {
	return &ChatHandler{
		service: svc,
		logger:  log,
	}
}

// Chat handles POST /chat
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req model.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateMessageContent(req.Message); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.Send(ctx, req.ConversationID, req.Message)
	if err != nil {
		h.logger.Error("chat request failed",
			zap.String("correlation_id", middleware.GetCorrelationID(ctx)),
			zap.Error(err),
		)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
