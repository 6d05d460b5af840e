package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"campusconnect/internal/message/models"
	id "campusconnect/pkg/domain"
	"campusconnect/pkg/platform/sentinel"
)

// Schema documents the table this store expects. Reactions live in a JSONB
// column since they are always read and written with their message.
const Schema = `
CREATE TABLE IF NOT EXISTS messages (
	id UUID PRIMARY KEY,
	from_id UUID NOT NULL REFERENCES users(id),
	to_id UUID NOT NULL REFERENCES users(id),
	text TEXT NOT NULL,
	reactions JSONB NOT NULL DEFAULT '[]',
	created_at TIMESTAMPTZ NOT NULL,
	position BIGSERIAL
);
CREATE INDEX IF NOT EXISTS messages_pair ON messages (from_id, to_id);
`

// Postgres persists direct messages in PostgreSQL.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Append(ctx context.Context, message *models.Message) error {
	reactions, err := json.Marshal(message.Reactions)
	if err != nil {
		return fmt.Errorf("marshal reactions: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO messages (id, from_id, to_id, text, reactions, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.UUID(message.ID), uuid.UUID(message.From), uuid.UUID(message.To),
		message.Text, reactions, message.CreatedAt)
	if err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, messageID id.MessageID) (*models.Message, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, from_id, to_id, text, reactions, created_at
		FROM messages WHERE id = $1
	`, uuid.UUID(messageID))
	message, err := scanMessage(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find message: %w", err)
	}
	return message, nil
}

func (s *Postgres) Conversation(ctx context.Context, a, b id.UserID) ([]*models.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, from_id, to_id, text, reactions, created_at
		FROM messages
		WHERE (from_id = $1 AND to_id = $2) OR (from_id = $2 AND to_id = $1)
		ORDER BY position
	`, uuid.UUID(a), uuid.UUID(b))
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}
	defer rows.Close()

	conversation := []*models.Message{}
	for rows.Next() {
		message, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		conversation = append(conversation, message)
	}
	return conversation, rows.Err()
}

func (s *Postgres) Execute(ctx context.Context, messageID id.MessageID,
	validate func(m *models.Message) error,
	apply func(m *models.Message)) (*models.Message, error) {

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	row := tx.QueryRowContext(ctx, `
		SELECT id, from_id, to_id, text, reactions, created_at
		FROM messages WHERE id = $1 FOR UPDATE
	`, uuid.UUID(messageID))
	message, err := scanMessage(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("lock message: %w", err)
	}
	if err := validate(message); err != nil {
		return nil, err
	}
	apply(message)

	reactions, err := json.Marshal(message.Reactions)
	if err != nil {
		return nil, fmt.Errorf("marshal reactions: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE messages SET reactions = $2 WHERE id = $1`,
		uuid.UUID(message.ID), reactions); err != nil {
		return nil, fmt.Errorf("update message: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return message, nil
}

func (s *Postgres) Delete(ctx context.Context, messageID id.MessageID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE id = $1`, uuid.UUID(messageID))
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type messageRow interface {
	Scan(dest ...any) error
}

func scanMessage(row messageRow) (*models.Message, error) {
	var message models.Message
	var rawID, rawFrom, rawTo uuid.UUID
	var reactions []byte
	if err := row.Scan(&rawID, &rawFrom, &rawTo, &message.Text, &reactions, &message.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(reactions, &message.Reactions); err != nil {
		return nil, fmt.Errorf("unmarshal reactions: %w", err)
	}
	message.ID = id.MessageID(rawID)
	message.From = id.UserID(rawFrom)
	message.To = id.UserID(rawTo)
	return &message, nil
}
