package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"campusconnect/internal/feed/models"
	id "campusconnect/pkg/domain"
	"campusconnect/pkg/platform/sentinel"
)

// Schema documents the table this store expects. Likes keep their own rows
// for the toggle; comments are an append-only JSONB document.
const Schema = `
CREATE TABLE IF NOT EXISTS posts (
	id UUID PRIMARY KEY,
	author_id UUID NOT NULL REFERENCES users(id),
	content TEXT NOT NULL DEFAULT '',
	image_url TEXT NOT NULL DEFAULT '',
	comments JSONB NOT NULL DEFAULT '[]',
	created_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS post_likes (
	post_id UUID NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
	user_id UUID NOT NULL REFERENCES users(id),
	position BIGSERIAL,
	PRIMARY KEY (post_id, user_id)
);
CREATE INDEX IF NOT EXISTS posts_created_at ON posts (created_at DESC);
`

// Postgres persists feed posts in PostgreSQL.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, post *models.Post) error {
	comments, err := json.Marshal(post.Comments)
	if err != nil {
		return fmt.Errorf("marshal comments: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO posts (id, author_id, content, image_url, comments, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.UUID(post.ID), uuid.UUID(post.Author), post.Content, post.ImageURL, comments, post.CreatedAt)
	if err != nil {
		return fmt.Errorf("create post: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, postID id.PostID) (*models.Post, error) {
	return s.findOne(ctx, s.db, `WHERE id = $1`, uuid.UUID(postID))
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Postgres) findOne(ctx context.Context, q querier, where string, arg any) (*models.Post, error) {
	query := `SELECT id, author_id, content, image_url, comments, created_at FROM posts ` + where
	post, err := scanPost(q.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find post: %w", err)
	}
	if err := s.loadLikes(ctx, q, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *Postgres) loadLikes(ctx context.Context, q querier, post *models.Post) error {
	rows, err := q.QueryContext(ctx,
		`SELECT user_id FROM post_likes WHERE post_id = $1 ORDER BY position`,
		uuid.UUID(post.ID))
	if err != nil {
		return fmt.Errorf("load post likes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var liker uuid.UUID
		if err := rows.Scan(&liker); err != nil {
			return fmt.Errorf("scan post like: %w", err)
		}
		post.Likes = append(post.Likes, id.UserID(liker))
	}
	return rows.Err()
}

func (s *Postgres) List(ctx context.Context) ([]*models.Post, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, author_id, content, image_url, comments, created_at
		FROM posts ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts := []*models.Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, post := range posts {
		if err := s.loadLikes(ctx, s.db, post); err != nil {
			return nil, err
		}
	}
	return posts, nil
}

func (s *Postgres) Execute(ctx context.Context, postID id.PostID,
	validate func(p *models.Post) error,
	apply func(p *models.Post)) (*models.Post, error) {

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	post, err := s.findOne(ctx, tx, `WHERE id = $1 FOR UPDATE`, uuid.UUID(postID))
	if err != nil {
		return nil, err
	}
	if err := validate(post); err != nil {
		return nil, err
	}
	apply(post)

	comments, err := json.Marshal(post.Comments)
	if err != nil {
		return nil, fmt.Errorf("marshal comments: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE posts SET comments = $2 WHERE id = $1`,
		uuid.UUID(post.ID), comments); err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM post_likes WHERE post_id = $1`, uuid.UUID(post.ID)); err != nil {
		return nil, fmt.Errorf("clear post likes: %w", err)
	}
	for _, liker := range post.Likes {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO post_likes (post_id, user_id) VALUES ($1, $2)`,
			uuid.UUID(post.ID), uuid.UUID(liker)); err != nil {
			return nil, fmt.Errorf("insert post like: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return post, nil
}

func (s *Postgres) Delete(ctx context.Context, postID id.PostID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, uuid.UUID(postID))
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type postRow interface {
	Scan(dest ...any) error
}

func scanPost(row postRow) (*models.Post, error) {
	var post models.Post
	var rawID, rawAuthor uuid.UUID
	var comments []byte
	if err := row.Scan(&rawID, &rawAuthor, &post.Content, &post.ImageURL, &comments, &post.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(comments, &post.Comments); err != nil {
		return nil, fmt.Errorf("unmarshal comments: %w", err)
	}
	post.ID = id.PostID(rawID)
	post.Author = id.UserID(rawAuthor)
	return &post, nil
}
