package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dedsec995/chat-backend/internal/events"
	"github.com/dedsec995/chat-backend/internal/model"
	"github.com/dedsec995/chat-backend/internal/store"
	"github.com/dedsec995/chat-backend/pkg/logger"
	"github.com/dedsec995/chat-backend/pkg/metrics"
)

// UploadService stores uploaded files under a per-conversation directory and
// records each upload as an attachment plus a synthetic turn, so uploads
// participate in history and context assembly like any other turn.
type UploadService struct {
	store     store.Store
	publisher *events.TurnPublisher
	uploadDir string
	logger    *logger.Logger
}

// NewUploadService creates a new upload service.
func NewUploadService(st store.Store, publisher *events.TurnPublisher, uploadDir string, log *logger.Logger) *UploadService {
	return &UploadService{
		store:     st,
		publisher: publisher,
		uploadDir: uploadDir,
		logger:    log,
	}
}

// Save writes the uploaded file and records it. Returns the resolved
// conversation identifier, which doubles as the storage folder name.
func (s *UploadService) Save(ctx context.Context, providedID, filename string, src io.Reader) (*model.UploadResponse, error) {
	conversationID, err := store.ResolveConversationID(providedID)
	if err != nil {
		return nil, err
	}

	name := SanitizeFilename(filename)
	if name == "" {
		return nil, fmt.Errorf("invalid filename %q", filename)
	}

	folder := filepath.Join(s.uploadDir, conversationID)
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return nil, fmt.Errorf("create upload folder: %w", err)
	}

	path := filepath.Join(folder, name)
	dst, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create upload file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return nil, fmt.Errorf("write upload file: %w", err)
	}
	if err := dst.Close(); err != nil {
		return nil, fmt.Errorf("close upload file: %w", err)
	}

	now := time.Now().UTC()
	if _, err := s.store.RecordAttachment(ctx, conversationID, path, now); err != nil {
		return nil, fmt.Errorf("record attachment: %w", err)
	}

	// A degenerate turn announcing the upload keeps attachments visible to
	// history loading and context assembly.
	turn := &model.Turn{
		ConversationID: conversationID,
		UserMessage:    "File uploaded: " + name,
		BotResponse:    "File received.",
		Timestamp:      now,
	}
	messageID, err := s.store.AppendTurn(ctx, conversationID, turn.UserMessage, turn.BotResponse, turn.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("append upload turn: %w", err)
	}
	turn.MessageID = messageID
	metrics.UploadsTotal.Inc()

	if s.publisher != nil {
		if _, err := s.publisher.PublishTurn(ctx, turn); err != nil {
			s.logger.Warn("failed to mirror upload turn",
				zap.String("conversation_id", conversationID),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("file uploaded",
		zap.String("conversation_id", conversationID),
		zap.String("file", name),
	)

	return &model.UploadResponse{
		Message:        "File uploaded successfully",
		ConversationID: conversationID,
		Folder:         conversationID,
	}, nil
}

// SanitizeFilename strips path components and characters that are unsafe in
// a stored filename. Returns "" when nothing usable remains.
func SanitizeFilename(filename string) string {
	name := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		case r == ' ':
			return '_'
		default:
			return -1
		}
	}, name)
	name = strings.Trim(name, "._")
	if name == "" || name == "." || name == ".." {
		return ""
	}
	return name
}
