// Package service provides business logic for the chat backend.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dedsec995/chat-backend/internal/events"
	"github.com/dedsec995/chat-backend/internal/llm"
	"github.com/dedsec995/chat-backend/internal/model"
	"github.com/dedsec995/chat-backend/internal/store"
	"github.com/dedsec995/chat-backend/internal/transcript"
	"github.com/dedsec995/chat-backend/pkg/logger"
	"github.com/dedsec995/chat-backend/pkg/metrics"
)

// ChatService orchestrates one chat turn: resolve identity, load history,
// assemble the context window, call the completion backend, persist the new
// turn, respond. Generation failures abort the turn before anything is
// persisted.
//
// Concurrent requests against the same conversation are not serialized;
// interleaved appends land in whatever (timestamp, message id) order the
// store yields. That is accepted behavior, not a bug.
type ChatService struct {
	store     store.Store
	gateway   llm.Client
	publisher *events.TurnPublisher
	budget    int
	estimator transcript.Estimator
	timeout   time.Duration
	logger    *logger.Logger
}

// NewChatService creates a new chat service. publisher may be nil when NATS
// mirroring is disabled.
func NewChatService(
	st store.Store,
	gateway llm.Client,
	publisher *events.TurnPublisher,
	budget int,
	timeout time.Duration,
	log *logger.Logger,
) *ChatService {
	if budget <= 0 {
		budget = transcript.DefaultBudget
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &ChatService{
		store:     st,
		gateway:   gateway,
		publisher: publisher,
		budget:    budget,
		estimator: transcript.WordCount,
		timeout:   timeout,
		logger:    log,
	}
}

// Send handles one inbound chat message and returns the generated reply
// together with the resolved conversation identifier.
func (s *ChatService) Send(ctx context.Context, providedID, message string) (*model.ChatResponse, error) {
	conversationID, err := store.ResolveConversationID(providedID)
	if err != nil {
		return nil, err
	}

	history, err := s.store.LoadHistory(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	lines := transcript.Render(history, message)
	kept := transcript.Truncate(lines, s.budget, s.estimator)
	metrics.RecordContextAssembly(len(kept), (len(lines)-len(kept))/2)

	prompt := strings.Join(kept, transcript.Separator)

	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	reply, err := s.gateway.Generate(genCtx, prompt)
	if err != nil {
		metrics.RecordLLMRequest(s.gateway.Name(), "error", time.Since(start).Seconds())
		s.logger.Error("generation failed",
			zap.String("conversation_id", conversationID),
			zap.Error(err),
		)
		return nil, err
	}
	metrics.RecordLLMRequest(s.gateway.Name(), "success", time.Since(start).Seconds())

	turn := &model.Turn{
		ConversationID: conversationID,
		UserMessage:    message,
		BotResponse:    reply,
		Timestamp:      time.Now().UTC(),
	}

	messageID, err := s.store.AppendTurn(ctx, conversationID, turn.UserMessage, turn.BotResponse, turn.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("append turn: %w", err)
	}
	turn.MessageID = messageID
	metrics.TurnsTotal.Inc()

	s.mirror(ctx, turn)

	s.logger.Info("turn completed",
		zap.String("conversation_id", conversationID),
		zap.String("message_id", messageID),
		zap.Int("context_lines", len(kept)),
	)

	return &model.ChatResponse{
		Response:       reply,
		ConversationID: conversationID,
	}, nil
}

// History returns the conversation's turns as (user, bot) pairs in
// chronological order. Unknown conversations yield an empty slice.
func (s *ChatService) History(ctx context.Context, conversationID string) ([]model.TurnPair, error) {
	id, err := store.ResolveConversationID(conversationID)
	if err != nil {
		return nil, err
	}

	turns, err := s.store.LoadHistory(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	pairs := make([]model.TurnPair, len(turns))
	for i, t := range turns {
		pairs[i] = model.TurnPair{
			UserMessage: t.UserMessage,
			BotResponse: t.BotResponse,
		}
	}
	return pairs, nil
}

// Conversations returns the distinct known conversation identifiers.
func (s *ChatService) Conversations(ctx context.Context) ([]string, error) {
	ids, err := s.store.ListConversationIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	return ids, nil
}

// mirror publishes the appended turn to JetStream. Fan-out only: a publish
// failure is logged, never surfaced to the caller.
func (s *ChatService) mirror(ctx context.Context, turn *model.Turn) {
	if s.publisher == nil {
		return
	}
	if _, err := s.publisher.PublishTurn(ctx, turn); err != nil {
		s.logger.Warn("failed to mirror turn",
			zap.String("conversation_id", turn.ConversationID),
			zap.Error(err),
		)
	}
}
