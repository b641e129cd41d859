package storage

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/MosinFAM/halal-guide/internal/models"
)

// MockStorage is a testify mock of Storage.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockStorage) ListPlaces(ctx context.Context, filter models.PlaceFilter) ([]models.HalalPlace, error) {
	args := m.Called(ctx, filter)
	places, _ := args.Get(0).([]models.HalalPlace)
	return places, args.Error(1)
}

func (m *MockStorage) ListPosts(ctx context.Context, filter models.PostFilter) ([]models.Post, error) {
	args := m.Called(ctx, filter)
	posts, _ := args.Get(0).([]models.Post)
	return posts, args.Error(1)
}

func (m *MockStorage) CountPosts(ctx context.Context, filter models.PostFilter) (int, error) {
	args := m.Called(ctx, filter)
	return args.Int(0), args.Error(1)
}

func (m *MockStorage) GetPostByID(ctx context.Context, id int64) (*models.Post, error) {
	args := m.Called(ctx, id)
	post, _ := args.Get(0).(*models.Post)
	return post, args.Error(1)
}

func (m *MockStorage) AddPost(ctx context.Context, in models.NewPost) (*models.Post, error) {
	args := m.Called(ctx, in)
	post, _ := args.Get(0).(*models.Post)
	return post, args.Error(1)
}

func (m *MockStorage) LikePost(ctx context.Context, id int64) (*models.Post, error) {
	args := m.Called(ctx, id)
	post, _ := args.Get(0).(*models.Post)
	return post, args.Error(1)
}

func (m *MockStorage) AddComment(ctx context.Context, postID int64, in models.NewComment) (*models.Comment, error) {
	args := m.Called(ctx, postID, in)
	comment, _ := args.Get(0).(*models.Comment)
	return comment, args.Error(1)
}

func (m *MockStorage) GetCommentsByPostID(ctx context.Context, postID int64, limit, offset int) ([]models.Comment, error) {
	args := m.Called(ctx, postID, limit, offset)
	comments, _ := args.Get(0).([]models.Comment)
	return comments, args.Error(1)
}

func (m *MockStorage) SubscribeToComments(ctx context.Context, postID int64) (<-chan models.Comment, error) {
	args := m.Called(ctx, postID)
	ch, _ := args.Get(0).(chan models.Comment)
	return ch, args.Error(1)
}

func (m *MockStorage) AddScan(ctx context.Context, scan models.ScanHistory) (*models.ScanHistory, error) {
	args := m.Called(ctx, scan)
	saved, _ := args.Get(0).(*models.ScanHistory)
	return saved, args.Error(1)
}

func (m *MockStorage) ListScans(ctx context.Context, limit int) ([]models.ScanHistory, error) {
	args := m.Called(ctx, limit)
	scans, _ := args.Get(0).([]models.ScanHistory)
	return scans, args.Error(1)
}
