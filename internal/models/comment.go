package models

import "time"

// Comment on a community post
type Comment struct {
	ID          int64     `json:"id" yaml:"id"`
	PostID      int64     `json:"postId" yaml:"postId"`
	Content     string    `json:"content" yaml:"content"`
	AuthorName  string    `json:"authorName" yaml:"authorName"`
	AuthorEmail *string   `json:"authorEmail,omitempty" yaml:"authorEmail"`
	CreatedAt   time.Time `json:"createdAt" yaml:"createdAt"`
}

// MaxCommentLength bounds comment content, in characters.
const MaxCommentLength = 2000

// NewComment is the client payload for adding a comment.
type NewComment struct {
	Content     string  `json:"content"`
	AuthorName  string  `json:"authorName"`
	AuthorEmail *string `json:"authorEmail"`
}

func (c NewComment) Validate() error {
	if blank(c.Content) || blank(c.AuthorName) {
		return &ValidationError{Message: "Content and author name are required"}
	}
	if len([]rune(c.Content)) > MaxCommentLength {
		return Invalid("content", "comment is too long")
	}
	return nil
}
