package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/dedsec995/chat-backend/internal/model"
)

const (
	// StreamName is the name of the conversations stream.
	StreamName = "CONVERSATIONS"

	// SubjectPrefix is the prefix for all conversation subjects.
	SubjectPrefix = "conv"
)

// TurnPublisher mirrors appended turns onto the conversations stream.
type TurnPublisher struct {
	client *Client
}

// NewTurnPublisher creates a new turn publisher.
func NewTurnPublisher(client *Client) *TurnPublisher {
	return &TurnPublisher{client: client}
}

// EnsureStream ensures the conversations stream exists with proper
// configuration.
func (p *TurnPublisher) EnsureStream(ctx context.Context) error {
	js := p.client.JetStream()

	_, err := js.Stream(ctx, StreamName)
	if err == nil {
		return nil // Stream already exists
	}

	_, err = js.CreateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Subjects:    []string{fmt.Sprintf("%s.>", SubjectPrefix)},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      365 * 24 * time.Hour,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
		Compression: jetstream.S2Compression,
		DenyDelete:  true,
		DenyPurge:   true,
		Description: "Appended conversation turns",
	})
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}

	return nil
}

// TurnSubject returns the subject for a conversation's turns.
func TurnSubject(conversationID string) string {
	return fmt.Sprintf("%s.%s.turn", SubjectPrefix, conversationID)
}

// PublishTurn publishes an appended turn. The store remains the source of
// truth; this is fan-out only.
func (p *TurnPublisher) PublishTurn(ctx context.Context, turn *model.Turn) (uint64, error) {
	data, err := json.Marshal(turn)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal turn: %w", err)
	}

	ack, err := p.client.JetStream().Publish(ctx, TurnSubject(turn.ConversationID), data)
	if err != nil {
		return 0, fmt.Errorf("failed to publish turn: %w", err)
	}

	return ack.Sequence, nil
}
