// Package store provides the durable conversation store: an append-only log
// of turns keyed by conversation, plus attachment records.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/dedsec995/chat-backend/internal/model"
)

// ErrInvalidID is returned when a caller-supplied conversation identifier is
// not a well-formed UUID.
var ErrInvalidID = errors.New("invalid conversation id")

// ErrUnavailable wraps storage read/write failures.
var ErrUnavailable = errors.New("storage unavailable")

// Store is the conversation persistence contract. Implementations must be
// safe for concurrent use; AppendTurn must be atomic per write and must never
// reorder or overwrite existing turns.
type Store interface {
	// AppendTurn durably appends one immutable turn and returns its fresh
	// message identifier.
	AppendTurn(ctx context.Context, conversationID, userMessage, botResponse string, ts time.Time) (string, error)

	// LoadHistory returns all turns for a conversation in ascending
	// (timestamp, message id) order. Unknown conversations yield an empty
	// slice, not an error.
	LoadHistory(ctx context.Context, conversationID string) ([]model.Turn, error)

	// ListConversationIDs returns the distinct conversation identifiers
	// across all stored turns.
	ListConversationIDs(ctx context.Context) ([]string, error)

	// RecordAttachment records an uploaded file for a conversation and
	// returns its file identifier.
	RecordAttachment(ctx context.Context, conversationID, filePath string, ts time.Time) (string, error)
}

// ResolveConversationID reuses a well-formed provided identifier or mints a
// new one when the caller supplied none. A malformed identifier fails with
// ErrInvalidID before any side effect.
func ResolveConversationID(provided string) (string, error) {
	if provided == "" {
		return uuid.New().String(), nil
	}
	id, err := uuid.Parse(provided)
	if err != nil {
		return "", ErrInvalidID
	}
	return id.String(), nil
}
