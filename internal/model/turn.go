// Package model defines data structures for the chat backend.
package model

import (
	"time"
)

// Turn is one user message paired with the generated response. Turns are
// immutable once written; a conversation exists iff at least one turn
// references its identifier.
type Turn struct {
	ConversationID string    `json:"conversation_id"`
	MessageID      string    `json:"message_id"`
	UserMessage    string    `json:"user_message"`
	BotResponse    string    `json:"bot_response"`
	Timestamp      time.Time `json:"message_timestamp"`
}

// AttachmentRecord describes a file uploaded into a conversation.
type AttachmentRecord struct {
	ConversationID string    `json:"conversation_id"`
	FileID         string    `json:"file_id"`
	FilePath       string    `json:"file_path"`
	UploadedAt     time.Time `json:"upload_timestamp"`
}

// ChatRequest is the inbound chat request body.
type ChatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// ChatResponse is the reply to a chat request. ConversationID is always set
// so a caller who omitted it learns the newly minted one.
type ChatResponse struct {
	Response       string `json:"response"`
	ConversationID string `json:"conversation_id"`
}

// TurnPair is one history entry as returned by the history query.
type TurnPair struct {
	UserMessage string `json:"user_message"`
	BotResponse string `json:"bot_response"`
}

// ConversationListResponse lists the known conversation identifiers.
type ConversationListResponse struct {
	Conversations []string `json:"conversations"`
}

// UploadResponse is the reply to a file upload.
type UploadResponse struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id"`
	Folder         string `json:"folder"`
}
