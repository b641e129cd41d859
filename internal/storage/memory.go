package storage

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/MosinFAM/halal-guide/internal/models"
	"github.com/MosinFAM/halal-guide/internal/storage/fixtures"
)

// MemoryStorage - in-memory store. It serves the built-in dataset when no
// database answers and backs the tests.
type MemoryStorage struct {
	places        []models.HalalPlace
	posts         map[int64]models.Post
	comments      map[int64][]models.Comment
	scans         []models.ScanHistory
	subscriptions map[int64][]chan models.Comment
	nextPostID    int64
	nextCommentID int64
	nextScanID    int64
	now           func() time.Time
	mu            sync.RWMutex
}

// NewMemoryStorage creates an empty in-memory store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		posts:         make(map[int64]models.Post),
		comments:      make(map[int64][]models.Comment),
		subscriptions: make(map[int64][]chan models.Comment),
		now:           time.Now,
	}
}

// NewFallbackStorage creates an in-memory store holding the built-in dataset.
func NewFallbackStorage(ds *fixtures.Dataset) *MemoryStorage {
	s := NewMemoryStorage()
	_ = s.Seed(context.Background(), ds)
	return s
}

// Reset drops every record.
func (s *MemoryStorage) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.places = nil
	s.posts = make(map[int64]models.Post)
	s.comments = make(map[int64][]models.Comment)
	s.scans = nil
	s.nextPostID, s.nextCommentID, s.nextScanID = 0, 0, 0
	return nil
}

// Seed copies the dataset in, keeping its ids.
func (s *MemoryStorage) Seed(ctx context.Context, ds *fixtures.Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.places = append(s.places, ds.Places...)
	for _, p := range ds.Posts {
		comments := p.Comments
		p.Comments = nil
		s.posts[p.ID] = p
		s.nextPostID = max(s.nextPostID, p.ID)
		for _, c := range comments {
			s.comments[p.ID] = append(s.comments[p.ID], c)
			s.nextCommentID = max(s.nextCommentID, c.ID)
		}
	}
	return nil
}

func (s *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}

// ListPlaces applies the filter and the canonical place ordering.
func (s *MemoryStorage) ListPlaces(ctx context.Context, filter models.PlaceFilter) ([]models.HalalPlace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.HalalPlace, 0, len(s.places))
	for _, p := range s.places {
		if filter.Match(p) {
			result = append(result, p)
		}
	}
	models.SortPlaces(result)
	return result, nil
}

// matchingPosts returns the posts passing the filter, newest first.
func (s *MemoryStorage) matchingPosts(filter models.PostFilter) []models.Post {
	var result []models.Post
	for _, p := range s.posts {
		if filter.Match(p) {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result
}

// newestComments returns up to limit comments of a post, newest first. A
// negative limit returns all of them.
func (s *MemoryStorage) newestComments(postID int64, limit, offset int) []models.Comment {
	all := s.comments[postID]
	result := make([]models.Comment, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		result = append(result, all[i])
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if offset < 0 || offset >= len(result) {
		return []models.Comment{}
	}
	result = result[offset:]
	if limit >= 0 && limit < len(result) {
		result = result[:limit]
	}
	return result
}

func (s *MemoryStorage) ListPosts(ctx context.Context, filter models.PostFilter) ([]models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matching := s.matchingPosts(filter)

	// Pagination
	start := filter.Offset()
	if start < 0 || start >= len(matching) || filter.Limit < 1 {
		return []models.Post{}, nil
	}
	end := len(matching)
	if filter.Limit < end-start {
		end = start + filter.Limit
	}

	result := make([]models.Post, 0, end-start)
	for _, p := range matching[start:end] {
		p.Comments = s.newestComments(p.ID, models.ListedComments, 0)
		result = append(result, p)
	}
	return result, nil
}

func (s *MemoryStorage) CountPosts(ctx context.Context, filter models.PostFilter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.matchingPosts(filter)), nil
}

func (s *MemoryStorage) GetPostByID(ctx context.Context, id int64) (*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	post, exists := s.posts[id]
	if !exists {
		return nil, ErrNotFound
	}
	post.Comments = s.newestComments(id, -1, 0)
	return &post, nil
}

func (s *MemoryStorage) AddPost(ctx context.Context, in models.NewPost) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.nextPostID++
	post := models.Post{
		ID:          s.nextPostID,
		Title:       in.Title,
		Content:     in.Content,
		Category:    in.Category,
		Language:    in.Language,
		AuthorName:  in.AuthorName,
		AuthorEmail: in.AuthorEmail,
		ImageURL:    in.ImageURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.posts[post.ID] = post

	slog.Debug("Post added", "store", "memory", "post_id", post.ID)
	post.Comments = []models.Comment{}
	return &post, nil
}

func (s *MemoryStorage) LikePost(ctx context.Context, id int64) (*models.Post, error) {
	s.mu.Lock()
	post, exists := s.posts[id]
	if !exists {
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	post.Likes++
	post.UpdatedAt = s.now()
	s.posts[id] = post
	s.mu.Unlock()

	return s.GetPostByID(ctx, id)
}

// AddComment appends a comment and notifies subscribers of the post.
func (s *MemoryStorage) AddComment(ctx context.Context, postID int64, in models.NewComment) (*models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.posts[postID]; !exists {
		return nil, ErrNotFound
	}

	s.nextCommentID++
	comment := models.Comment{
		ID:          s.nextCommentID,
		PostID:      postID,
		Content:     in.Content,
		AuthorName:  in.AuthorName,
		AuthorEmail: in.AuthorEmail,
		CreatedAt:   s.now(),
	}
	s.comments[postID] = append(s.comments[postID], comment)

	for _, ch := range s.subscriptions[postID] {
		select {
		case ch <- comment:
		default:
			slog.Warn("Comment subscriber is not keeping up, dropping event", "post_id", postID)
		}
	}

	return &comment, nil
}

func (s *MemoryStorage) GetCommentsByPostID(ctx context.Context, postID int64, limit, offset int) ([]models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, exists := s.posts[postID]; !exists {
		return nil, ErrNotFound
	}
	return s.newestComments(postID, limit, offset), nil
}

// SubscribeToComments registers a subscriber until ctx is done.
func (s *MemoryStorage) SubscribeToComments(ctx context.Context, postID int64) (<-chan models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.posts[postID]; !exists {
		return nil, ErrNotFound
	}

	ch := make(chan models.Comment, 16)
	s.subscriptions[postID] = append(s.subscriptions[postID], ch)

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		defer s.mu.Unlock()

		subs := s.subscriptions[postID]
		for i, sub := range subs {
			if sub == ch {
				s.subscriptions[postID] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
		close(ch)
	}()

	return ch, nil
}

func (s *MemoryStorage) AddScan(ctx context.Context, scan models.ScanHistory) (*models.ScanHistory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextScanID++
	scan.ID = s.nextScanID
	if scan.CreatedAt.IsZero() {
		scan.CreatedAt = s.now()
	}
	s.scans = append(s.scans, scan)
	return &scan, nil
}

// ListScans returns the most recent scans first.
func (s *MemoryStorage) ListScans(ctx context.Context, limit int) ([]models.ScanHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		return []models.ScanHistory{}, nil
	}
	result := make([]models.ScanHistory, 0, min(limit, len(s.scans)))
	for i := len(s.scans) - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, s.scans[i])
	}
	return result, nil
}
