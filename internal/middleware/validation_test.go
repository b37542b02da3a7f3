package middleware

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestValidateMessageContent(t *testing.T) {
	if err := ValidateMessageContent("hello"); err != nil {
		t.Errorf("valid message rejected: %v", err)
	}
	if err := ValidateMessageContent(""); err == nil {
		t.Error("empty message accepted")
	}
	if err := ValidateMessageContent(strings.Repeat("a", 100001)); err == nil {
		t.Error("oversized message accepted")
	}
	if err := ValidateMessageContent("\xff\xfe"); err == nil {
		t.Error("invalid UTF-8 accepted")
	}
}

func TestValidateConversationID(t *testing.T) {
	if err := ValidateConversationID(uuid.New().String()); err != nil {
		t.Errorf("valid uuid rejected: %v", err)
	}
	if err := ValidateConversationID("nope"); err == nil {
		t.Error("malformed id accepted")
	}
}
