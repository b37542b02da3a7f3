package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/dedsec995/chat-backend/internal/service"
	"github.com/dedsec995/chat-backend/pkg/logger"
)

// maxUploadBytes caps the multipart form size held in memory.
const maxUploadBytes = 32 << 20 // 32MB

// UploadHandler handles file uploads into conversations.
type UploadHandler struct {
	service *service.UploadService
	logger  *logger.Logger
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(svc *service.UploadService, log *logger.Logger) *UploadHandler {
	return &UploadHandler{
		service: svc,
		logger:  log,
	}
}

// Upload handles POST /upload
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file part")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		writeError(w, http.StatusBadRequest, "no selected file")
		return
	}

	conversationID := r.FormValue("conversation_id")

	resp, err := h.service.Save(r.Context(), conversationID, header.Filename, file)
	if err != nil {
		h.logger.Error("upload failed",
			zap.String("filename", header.Filename),
			zap.Error(err),
		)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}
