package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dedsec995/chat-backend/internal/llm"
	"github.com/dedsec995/chat-backend/internal/store"
	"github.com/dedsec995/chat-backend/pkg/logger"
)

// fakeGateway echoes the transcript it was given, or fails on demand.
type fakeGateway struct {
	reply      string
	err        error
	transcript string
	calls      int
}

func (f *fakeGateway) Generate(ctx context.Context, transcript string) (string, error) {
	f.calls++
	f.transcript = transcript
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %v", llm.ErrGenerationFailed, err)
	}
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeGateway) Name() string { return "fake" }

func testChatService(t *testing.T, gw llm.Client) (*ChatService, *store.SQLiteStore) {
	t.Helper()
	st, err := store.Open(t.TempDir() + "/chat.db")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })

	log, err := logger.New("error")
	if err != nil {
		t.Fatal(err)
	}
	return NewChatService(st, gw, nil, 0, time.Minute, log), st
}

func TestSend_NewConversation(t *testing.T) {
	gw := &fakeGateway{reply: "hello back"}
	svc, st := testChatService(t, gw)
	ctx := context.Background()

	resp, err := svc.Send(ctx, "", "hi")
	if err != nil {
		t.Fatal(err)
	}
	if resp.Response != "hello back" {
		t.Errorf("unexpected reply %q", resp.Response)
	}
	if _, err := uuid.Parse(resp.ConversationID); err != nil {
		t.Errorf("response carries malformed conversation id %q", resp.ConversationID)
	}
	if gw.transcript != "User: hi" {
		t.Errorf("unexpected transcript %q", gw.transcript)
	}

	turns, err := st.LoadHistory(ctx, resp.ConversationID)
	if err != nil {
		t.Fatal(err)
	}
	if len(turns) != 1 {
		t.Fatalf("expected 1 persisted turn, got %d", len(turns))
	}
	if turns[0].UserMessage != "hi" || turns[0].BotResponse != "hello back" {
		t.Errorf("wrong turn persisted: %+v", turns[0])
	}
}

func TestSend_HistoryFlowsIntoTranscript(t *testing.T) {
	gw := &fakeGateway{reply: "fine"}
	svc, _ := testChatService(t, gw)
	ctx := context.Background()

	first, err := svc.Send(ctx, "", "hi")
	if err != nil {
		t.Fatal(err)
	}
	gw.reply = "still fine"
	if _, err := svc.Send(ctx, first.ConversationID, "how are you"); err != nil {
		t.Fatal(err)
	}

	want := "User: hi\nBot: fine\nUser: how are you"
	if gw.transcript != want {
		t.Errorf("expected transcript %q, got %q", want, gw.transcript)
	}
}

func TestSend_InvalidIDNoSideEffects(t *testing.T) {
	gw := &fakeGateway{reply: "nope"}
	svc, st := testChatService(t, gw)
	ctx := context.Background()

	_, err := svc.Send(ctx, "garbage-id", "hi")
	if !errors.Is(err, store.ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
	if gw.calls != 0 {
		t.Errorf("gateway must not be called on invalid id")
	}

	ids, err := st.ListConversationIDs(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 0 {
		t.Errorf("invalid id must leave no stored turns, got %v", ids)
	}
}

func TestSend_GenerationFailurePersistsNothing(t *testing.T) {
	gw := &fakeGateway{err: fmt.Errorf("%w: backend down", llm.ErrGenerationFailed)}
	svc, st := testChatService(t, gw)
	ctx := context.Background()
	convID := uuid.New().String()

	_, err := svc.Send(ctx, convID, "hi")
	if !errors.Is(err, llm.ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed, got %v", err)
	}

	turns, err := st.LoadHistory(ctx, convID)
	if err != nil {
		t.Fatal(err)
	}
	if len(turns) != 0 {
		t.Errorf("failed generation must not persist a turn, got %d", len(turns))
	}
}

func TestSend_MintedIDIsFresh(t *testing.T) {
	gw := &fakeGateway{reply: "ok"}
	svc, st := testChatService(t, gw)
	ctx := context.Background()

	before, err := st.ListConversationIDs(ctx)
	if err != nil {
		t.Fatal(err)
	}

	resp, err := svc.Send(ctx, "", "hello")
	if err != nil {
		t.Fatal(err)
	}
	for _, id := range before {
		if id == resp.ConversationID {
			t.Fatalf("minted id %q was already known", id)
		}
	}
}

func TestSend_TruncatesLongHistory(t *testing.T) {
	gw := &fakeGateway{reply: "short"}
	st, err := store.Open(t.TempDir() + "/chat.db")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })
	log, _ := logger.New("error")

	// Budget of 10 words forces eviction of everything but the tail.
	svc := NewChatService(st, gw, nil, 10, time.Minute, log)
	ctx := context.Background()
	convID := uuid.New().String()

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		msg := strings.Repeat("w ", 5)
		if _, err := st.AppendTurn(ctx, convID, msg, msg, base.Add(time.Duration(i)*time.Second)); err != nil {
			t.Fatal(err)
		}
	}

	if _, err := svc.Send(ctx, convID, "tail message"); err != nil {
		t.Fatal(err)
	}

	if !strings.HasSuffix(gw.transcript, "User: tail message") {
		t.Errorf("new message must be the final line: %q", gw.transcript)
	}
	if len(strings.Fields(gw.transcript)) > 10+2 {
		// +2 for the "User:"/"Bot:" labels of one surviving line.
		t.Errorf("transcript not truncated: %q", gw.transcript)
	}
}

func TestHistory(t *testing.T) {
	gw := &fakeGateway{reply: "r1"}
	svc, _ := testChatService(t, gw)
	ctx := context.Background()

	resp, err := svc.Send(ctx, "", "m1")
	if err != nil {
		t.Fatal(err)
	}
	gw.reply = "r2"
	if _, err := svc.Send(ctx, resp.ConversationID, "m2"); err != nil {
		t.Fatal(err)
	}

	pairs, err := svc.History(ctx, resp.ConversationID)
	if err != nil {
		t.Fatal(err)
	}
	if len(pairs) != 2 {
		t.Fatalf("expected 2 pairs, got %d", len(pairs))
	}
	if pairs[0].UserMessage != "m1" || pairs[0].BotResponse != "r1" {
		t.Errorf("wrong first pair: %+v", pairs[0])
	}
	if pairs[1].UserMessage != "m2" || pairs[1].BotResponse != "r2" {
		t.Errorf("wrong second pair: %+v", pairs[1])
	}
}

func TestHistory_InvalidID(t *testing.T) {
	svc, _ := testChatService(t, &fakeGateway{})
	if _, err := svc.History(context.Background(), "nope"); !errors.Is(err, store.ErrInvalidID) {
		t.Errorf("expected ErrInvalidID, got %v", err)
	}
}
