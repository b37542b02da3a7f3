package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/dedsec995/chat-backend/internal/middleware"
	"github.com/dedsec995/chat-backend/internal/model"
	"github.com/dedsec995/chat-backend/internal/service"
	"github.com/dedsec995/chat-backend/pkg/logger"
)

// ConversationHandler handles conversation listing and history endpoints.
type ConversationHandler struct {
	service *service.ChatService
	logger  *logger.Logger
}

// NewConversationHandler creates a new conversation handler.
func NewConversationHandler(svc *service.ChatService, log *logger.Logger) *ConversationHandler {
	return &ConversationHandler{
		service: svc,
		logger:  log,
	}
}

// List handles GET /api/conversations
func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	ids, err := h.service.Conversations(r.Context())
	if err != nil {
		h.logger.Error("failed to list conversations", zap.Error(err))
		writeServiceError(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}

	writeJSON(w, http.StatusOK, model.ConversationListResponse{Conversations: ids})
}

// History handles GET /conversation/{id}
func (h *ConversationHandler) History(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "id")

	if err := middleware.ValidateConversationID(conversationID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Unknown conversations yield an empty history, not an error.
	pairs, err := h.service.History(r.Context(), conversationID)
	if err != nil {
		h.logger.Error("failed to load history",
			zap.String("conversation_id", conversationID),
			zap.Error(err),
		)
		writeServiceError(w, err)
		return
	}
	if pairs == nil {
		pairs = []model.TurnPair{}
	}

	writeJSON(w, http.StatusOK, pairs)
}
