package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"campusconnect/internal/identity/models"
	id "campusconnect/pkg/domain"
	"campusconnect/pkg/platform/sentinel"
)

// Schema documents the tables this store expects. Reference sets live in a
// single adjacency table; the position column preserves insertion order so
// listings stay stable across calls.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	reg_no TEXT NOT NULL,
	email TEXT NOT NULL DEFAULT '',
	mobile TEXT NOT NULL DEFAULT '',
	password_hash TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS users_reg_no_lower ON users (LOWER(reg_no));
CREATE TABLE IF NOT EXISTS user_edges (
	owner_id UUID NOT NULL REFERENCES users(id),
	peer_id UUID NOT NULL REFERENCES users(id),
	kind TEXT NOT NULL CHECK (kind IN ('connection', 'incoming', 'outgoing')),
	position BIGSERIAL,
	PRIMARY KEY (owner_id, peer_id, kind)
);
`

const (
	kindConnection = "connection"
	kindIncoming   = "incoming"
	kindOutgoing   = "outgoing"
)

// Postgres persists user records in PostgreSQL. Pure I/O: domain decisions
// run inside the Execute/ExecutePair callbacks while the affected rows are
// locked with SELECT ... FOR UPDATE.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, name, reg_no, email, mobile, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(user.ID), user.Name, user.RegNo, user.Email, user.Mobile,
		user.PasswordHash, user.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	return s.findOne(ctx, s.db, `WHERE id = $1`, uuid.UUID(userID))
}

func (s *Postgres) FindByRegNo(ctx context.Context, regNo string) (*models.User, error) {
	return s.findOne(ctx, s.db, `WHERE LOWER(reg_no) = LOWER($1)`, regNo)
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Postgres) findOne(ctx context.Context, q querier, where string, arg any) (*models.User, error) {
	query := `SELECT id, name, reg_no, email, mobile, password_hash, created_at FROM users ` + where
	user, err := scanUser(q.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if err := s.loadEdges(ctx, q, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Postgres) loadEdges(ctx context.Context, q querier, user *models.User) error {
	rows, err := q.QueryContext(ctx,
		`SELECT peer_id, kind FROM user_edges WHERE owner_id = $1 ORDER BY position`,
		uuid.UUID(user.ID))
	if err != nil {
		return fmt.Errorf("load user edges: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var peer uuid.UUID
		var kind string
		if err := rows.Scan(&peer, &kind); err != nil {
			return fmt.Errorf("scan user edge: %w", err)
		}
		switch kind {
		case kindConnection:
			user.Connections = append(user.Connections, id.UserID(peer))
		case kindIncoming:
			user.Requests = append(user.Requests, id.UserID(peer))
		case kindOutgoing:
			user.Outgoing = append(user.Outgoing, id.UserID(peer))
		}
	}
	return rows.Err()
}

func (s *Postgres) FindSummaries(ctx context.Context, refs []id.UserID) ([]models.Summary, error) {
	if len(refs) == 0 {
		return []models.Summary{}, nil
	}
	ids := make([]uuid.UUID, len(refs))
	for i, ref := range refs {
		ids[i] = uuid.UUID(ref)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, reg_no, email, mobile FROM users WHERE id = ANY($1)`,
		pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("find summaries: %w", err)
	}
	defer rows.Close()

	byID := make(map[id.UserID]models.Summary, len(refs))
	for rows.Next() {
		var raw uuid.UUID
		var summary models.Summary
		if err := rows.Scan(&raw, &summary.Name, &summary.RegNo, &summary.Email, &summary.Mobile); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		summary.ID = id.UserID(raw)
		byID[summary.ID] = summary
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Preserve the caller's reference order.
	summaries := make([]models.Summary, 0, len(refs))
	for _, ref := range refs {
		if summary, ok := byID[ref]; ok {
			summaries = append(summaries, summary)
		}
	}
	return summaries, nil
}

func (s *Postgres) Search(ctx context.Context, excludeID id.UserID, query string) ([]models.Summary, error) {
	sqlQuery := `
		SELECT id, name, reg_no, email, mobile FROM users
		WHERE id <> $1
		  AND ($2 = '' OR name ILIKE '%' || $2 || '%' OR reg_no ILIKE '%' || $2 || '%' OR email ILIKE '%' || $2 || '%')
		ORDER BY created_at
	`
	rows, err := s.db.QueryContext(ctx, sqlQuery, uuid.UUID(excludeID), query)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	defer rows.Close()

	summaries := []models.Summary{}
	for rows.Next() {
		var raw uuid.UUID
		var summary models.Summary
		if err := rows.Scan(&raw, &summary.Name, &summary.RegNo, &summary.Email, &summary.Mobile); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		summary.ID = id.UserID(raw)
		summaries = append(summaries, summary)
	}
	return summaries, rows.Err()
}

func (s *Postgres) Execute(ctx context.Context, userID id.UserID,
	validate func(u *models.User) error,
	apply func(u *models.User)) (*models.User, error) {

	var result *models.User
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		user, err := s.lockUser(ctx, tx, userID)
		if err != nil {
			return err
		}
		if err := validate(user); err != nil {
			return err
		}
		apply(user)
		if err := s.rewriteEdges(ctx, tx, user); err != nil {
			return err
		}
		result = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Postgres) ExecutePair(ctx context.Context, firstID, secondID id.UserID,
	validate func(first, second *models.User) error,
	apply func(first, second *models.User)) error {

	return s.inTx(ctx, func(tx *sql.Tx) error {
		// Lock in ID order so concurrent pair writes cannot deadlock.
		lockFirst, lockSecond := firstID, secondID
		if uuid.UUID(secondID).String() < uuid.UUID(firstID).String() {
			lockFirst, lockSecond = secondID, firstID
		}
		locked := make(map[id.UserID]*models.User, 2)
		for _, lockID := range []id.UserID{lockFirst, lockSecond} {
			user, err := s.lockUser(ctx, tx, lockID)
			if err != nil {
				return err
			}
			locked[lockID] = user
		}

		first, second := locked[firstID], locked[secondID]
		if err := validate(first, second); err != nil {
			return err
		}
		apply(first, second)

		if err := s.rewriteEdges(ctx, tx, first); err != nil {
			return err
		}
		return s.rewriteEdges(ctx, tx, second)
	})
}

func (s *Postgres) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *Postgres) lockUser(ctx context.Context, tx *sql.Tx, userID id.UserID) (*models.User, error) {
	query := `
		SELECT id, name, reg_no, email, mobile, password_hash, created_at
		FROM users WHERE id = $1 FOR UPDATE
	`
	user, err := scanUser(tx.QueryRowContext(ctx, query, uuid.UUID(userID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("lock user: %w", err)
	}
	if err := s.loadEdges(ctx, tx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// rewriteEdges replaces the owner's adjacency rows with the record's current
// sets. Insertion order is preserved through the serial position column.
func (s *Postgres) rewriteEdges(ctx context.Context, tx *sql.Tx, user *models.User) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM user_edges WHERE owner_id = $1`, uuid.UUID(user.ID)); err != nil {
		return fmt.Errorf("clear user edges: %w", err)
	}
	insert := func(peers []id.UserID, kind string) error {
		for _, peer := range peers {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO user_edges (owner_id, peer_id, kind) VALUES ($1, $2, $3)`,
				uuid.UUID(user.ID), uuid.UUID(peer), kind); err != nil {
				return fmt.Errorf("insert user edge: %w", err)
			}
		}
		return nil
	}
	if err := insert(user.Connections, kindConnection); err != nil {
		return err
	}
	if err := insert(user.Requests, kindIncoming); err != nil {
		return err
	}
	return insert(user.Outgoing, kindOutgoing)
}

type userRow interface {
	Scan(dest ...any) error
}

func scanUser(row userRow) (*models.User, error) {
	var user models.User
	var raw uuid.UUID
	if err := row.Scan(&raw, &user.Name, &user.RegNo, &user.Email, &user.Mobile,
		&user.PasswordHash, &user.CreatedAt); err != nil {
		return nil, err
	}
	user.ID = id.UserID(raw)
	return &user, nil
}
