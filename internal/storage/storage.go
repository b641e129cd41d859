package storage

import (
	"context"
	"errors"

	"github.com/MosinFAM/halal-guide/internal/models"
	"github.com/MosinFAM/halal-guide/internal/storage/fixtures"
)

var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUnavailable is returned when no live store is configured.
	ErrUnavailable = errors.New("storage unavailable")
)

// PlaceStore reads halal venues.
type PlaceStore interface {
	ListPlaces(ctx context.Context, filter models.PlaceFilter) ([]models.HalalPlace, error)
}

// PostStore reads and writes the community board.
type PostStore interface {
	// ListPosts returns one page of posts, newest first, each carrying its
	// models.ListedComments most recent comments.
	ListPosts(ctx context.Context, filter models.PostFilter) ([]models.Post, error)
	CountPosts(ctx context.Context, filter models.PostFilter) (int, error)
	// GetPostByID returns the post with all of its comments, newest first.
	GetPostByID(ctx context.Context, id int64) (*models.Post, error)
	AddPost(ctx context.Context, in models.NewPost) (*models.Post, error)
	LikePost(ctx context.Context, id int64) (*models.Post, error)
	AddComment(ctx context.Context, postID int64, in models.NewComment) (*models.Comment, error)
	GetCommentsByPostID(ctx context.Context, postID int64, limit, offset int) ([]models.Comment, error)
	// SubscribeToComments streams comments added to the post until ctx is
	// done, then closes the channel.
	SubscribeToComments(ctx context.Context, postID int64) (<-chan models.Comment, error)
}

// ScanStore keeps the scan history.
type ScanStore interface {
	AddScan(ctx context.Context, scan models.ScanHistory) (*models.ScanHistory, error)
	ListScans(ctx context.Context, limit int) ([]models.ScanHistory, error)
}

// Storage - interface for every store type (in-memory and PostgreSQL)
type Storage interface {
	PlaceStore
	PostStore
	ScanStore
	Ping(ctx context.Context) error
}

// Seeder loads the built-in dataset into a store.
type Seeder interface {
	Reset(ctx context.Context) error
	Seed(ctx context.Context, ds *fixtures.Dataset) error
}
