package models

import (
	"strings"
	"time"

	id "campusconnect/pkg/domain"
	dErrors "campusconnect/pkg/domain-errors"
)

const maxContentLength = 5000

// Post is a feed entry. A post carries text, an uploaded image, or both;
// never neither.
type Post struct {
	ID        id.PostID   `json:"id"`
	Author    id.UserID   `json:"author"`
	Content   string      `json:"content"`
	ImageURL  string      `json:"image_url,omitempty"`
	Likes     []id.UserID `json:"likes"`
	Comments  []Comment   `json:"comments"`
	CreatedAt time.Time   `json:"created_at"`
}

// Comment is an inline reply on a post.
type Comment struct {
	Author    id.UserID `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

func NewPost(postID id.PostID, author id.UserID, content, imageURL string, now time.Time) (*Post, error) {
	content = strings.TrimSpace(content)
	if content == "" && imageURL == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "post needs text or an image")
	}
	if len(content) > maxContentLength {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "post content too long")
	}
	return &Post{
		ID:        postID,
		Author:    author,
		Content:   content,
		ImageURL:  imageURL,
		CreatedAt: now,
	}, nil
}

// IsLikedBy reports whether the user currently likes the post.
func (p *Post) IsLikedBy(userID id.UserID) bool {
	for _, ref := range p.Likes {
		if ref == userID {
			return true
		}
	}
	return false
}

// ApplyLikeToggle adds the user's like, or removes it when already present.
// Returns true when the post ends up liked.
func (p *Post) ApplyLikeToggle(userID id.UserID) bool {
	if p.IsLikedBy(userID) {
		out := p.Likes[:0]
		for _, ref := range p.Likes {
			if ref != userID {
				out = append(out, ref)
			}
		}
		p.Likes = out
		return false
	}
	p.Likes = append(p.Likes, userID)
	return true
}

// CanComment validates a new comment's text.
func (p *Post) CanComment(text string) error {
	if strings.TrimSpace(text) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "comment text is required")
	}
	return nil
}

// ApplyComment appends a comment. Comments keep arrival order.
func (p *Post) ApplyComment(author id.UserID, text string, now time.Time) {
	p.Comments = append(p.Comments, Comment{Author: author, Text: strings.TrimSpace(text), CreatedAt: now})
}

// CanDeleteBy enforces owner-only deletion.
func (p *Post) CanDeleteBy(userID id.UserID) error {
	if p.Author != userID {
		return dErrors.New(dErrors.CodeForbidden, "only the author can delete a post")
	}
	return nil
}

// Clone returns a deep copy for stores that hand out records.
func (p *Post) Clone() *Post {
	cp := *p
	cp.Likes = append([]id.UserID(nil), p.Likes...)
	cp.Comments = append([]Comment(nil), p.Comments...)
	return &cp
}
