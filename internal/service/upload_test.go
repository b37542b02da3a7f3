package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dedsec995/chat-backend/internal/store"
	"github.com/dedsec995/chat-backend/pkg/logger"
)

func testUploadService(t *testing.T) (*UploadService, *store.SQLiteStore, string) {
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
	dir := t.TempDir()
	return NewUploadService(st, nil, dir, log), st, dir
}

func TestSave_WritesFileAndSynthesizesTurn(t *testing.T) {
	svc, st, dir := testUploadService(t)
	ctx := context.Background()

	resp, err := svc.Save(ctx, "", "notes.txt", strings.NewReader("file body"))
	if err != nil {
		t.Fatal(err)
	}
	if resp.Folder != resp.ConversationID {
		t.Errorf("folder %q should equal conversation id %q", resp.Folder, resp.ConversationID)
	}

	data, err := os.ReadFile(filepath.Join(dir, resp.ConversationID, "notes.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "file body" {
		t.Errorf("file content mismatch: %q", data)
	}

	// The synthetic turn participates in history like any other turn.
	turns, err := st.LoadHistory(ctx, resp.ConversationID)
	if err != nil {
		t.Fatal(err)
	}
	if len(turns) != 1 {
		t.Fatalf("expected 1 synthetic turn, got %d", len(turns))
	}
	if turns[0].UserMessage != "File uploaded: notes.txt" || turns[0].BotResponse != "File received." {
		t.Errorf("unexpected synthetic turn: %+v", turns[0])
	}

	recs, err := st.Attachments(ctx, resp.ConversationID)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 attachment record, got %d", len(recs))
	}
}

func TestSave_InvalidConversationID(t *testing.T) {
	svc, _, _ := testUploadService(t)
	if _, err := svc.Save(context.Background(), "bad", "f.txt", strings.NewReader("x")); err != store.ErrInvalidID {
		t.Errorf("expected ErrInvalidID, got %v", err)
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"notes.txt":            "notes.txt",
		"../../etc/passwd":     "passwd",
		"..\\..\\evil.exe":     "evil.exe",
		"my report final.pdf":  "my_report_final.pdf",
		"weird$chars%here.txt": "weirdcharshere.txt",
		"..":                   "",
		"///":                  "",
	}
	for in, want := range cases {
		if got := SanitizeFilename(in); got != want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
