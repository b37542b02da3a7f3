package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/dedsec995/chat-backend/internal/model"
)

// SQLiteStore persists turns and attachment records in SQLite. Two tables:
// turns clustered by (conversation_id, message_timestamp, message_id) and
// uploaded_files keyed by (conversation_id, file_id).
type SQLiteStore struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at path, ensuring the parent
// directory exists, and initializes the schema.
func Open(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create db directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open db at %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping db at %s: %w", path, err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS turns (
			conversation_id TEXT NOT NULL,
			message_id TEXT NOT NULL,
			user_message TEXT NOT NULL,
			bot_response TEXT NOT NULL,
			message_timestamp INTEGER NOT NULL,
			PRIMARY KEY (conversation_id, message_id)
		);
		CREATE INDEX IF NOT EXISTS idx_turns_conv_ts
			ON turns(conversation_id, message_timestamp, message_id);

		CREATE TABLE IF NOT EXISTS uploaded_files (
			conversation_id TEXT NOT NULL,
			file_id TEXT NOT NULL,
			file_path TEXT NOT NULL,
			upload_timestamp INTEGER NOT NULL,
			PRIMARY KEY (conversation_id, file_id)
		);
	`)
	return err
}

// Close closes the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ping reports whether the database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// AppendTurn inserts one turn. Message ids are UUIDv7 so the ordering
// tie-break key is itself time-ordered.
func (s *SQLiteStore) AppendTurn(ctx context.Context, conversationID, userMessage, botResponse string, ts time.Time) (string, error) {
	messageID := uuid.Must(uuid.NewV7()).String()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO turns (conversation_id, message_id, user_message, bot_response, message_timestamp)
		 VALUES (?, ?, ?, ?, ?)`,
		conversationID, messageID, userMessage, botResponse, ts.UnixMilli(),
	)
	if err != nil {
		return "", fmt.Errorf("%w: append turn: %v", ErrUnavailable, err)
	}
	return messageID, nil
}

// LoadHistory returns the conversation's turns oldest first. Ties on
// timestamp are broken by message id to keep the order total.
func (s *SQLiteStore) LoadHistory(ctx context.Context, conversationID string) ([]model.Turn, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT conversation_id, message_id, user_message, bot_response, message_timestamp
		 FROM turns
		 WHERE conversation_id = ?
		 ORDER BY message_timestamp ASC, message_id ASC`,
		conversationID,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: load history: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	var turns []model.Turn
	for rows.Next() {
		var t model.Turn
		var ms int64
		if err := rows.Scan(&t.ConversationID, &t.MessageID, &t.UserMessage, &t.BotResponse, &ms); err != nil {
			return nil, fmt.Errorf("%w: scan turn: %v", ErrUnavailable, err)
		}
		t.Timestamp = time.UnixMilli(ms).UTC()
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: load history: %v", ErrUnavailable, err)
	}
	return turns, nil
}

// ListConversationIDs derives the listing from the turn table so it can never
// drift from what was actually appended.
func (s *SQLiteStore) ListConversationIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT conversation_id FROM turns`)
	if err != nil {
		return nil, fmt.Errorf("%w: list conversations: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: scan conversation id: %v", ErrUnavailable, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list conversations: %v", ErrUnavailable, err)
	}
	return ids, nil
}

// RecordAttachment inserts one upload record.
func (s *SQLiteStore) RecordAttachment(ctx context.Context, conversationID, filePath string, ts time.Time) (string, error) {
	fileID := uuid.Must(uuid.NewV7()).String()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO uploaded_files (conversation_id, file_id, file_path, upload_timestamp)
		 VALUES (?, ?, ?, ?)`,
		conversationID, fileID, filePath, ts.UnixMilli(),
	)
	if err != nil {
		return "", fmt.Errorf("%w: record attachment: %v", ErrUnavailable, err)
	}
	return fileID, nil
}

// Attachments returns the upload records for a conversation.
func (s *SQLiteStore) Attachments(ctx context.Context, conversationID string) ([]model.AttachmentRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT conversation_id, file_id, file_path, upload_timestamp
		 FROM uploaded_files
		 WHERE conversation_id = ?`,
		conversationID,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: list attachments: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	var recs []model.AttachmentRecord
	for rows.Next() {
		var rec model.AttachmentRecord
		var ms int64
		if err := rows.Scan(&rec.ConversationID, &rec.FileID, &rec.FilePath, &ms); err != nil {
			return nil, fmt.Errorf("%w: scan attachment: %v", ErrUnavailable, err)
		}
		rec.UploadedAt = time.UnixMilli(ms).UTC()
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list attachments: %v", ErrUnavailable, err)
	}
	return recs, nil
}
