package storage

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MosinFAM/halal-guide/internal/models"
)

func newMockPostgres(t *testing.T) (*PostgresStorage, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresStorage(db, ""), mock
}

var (
	placeCols   = []string{"id", "name", "category", "latitude", "longitude", "address", "phone", "rating", "halal_level", "description", "opening_hours", "website", "created_at", "updated_at"}
	postCols    = []string{"id", "title", "content", "category", "language", "author_name", "author_email", "image_url", "likes", "created_at", "updated_at"}
	commentCols = []string{"id", "post_id", "content", "author_name", "author_email", "created_at"}
)

func TestPostgresListPlaces(t *testing.T) {
	store, mock := newMockPostgres(t)
	now := time.Now()

	mock.ExpectQuery(`FROM halal_places .* ORDER BY halal_level ASC, rating DESC NULLS LAST, name COLLATE "C" ASC`).
		WithArgs("restaurant", "", "").
		WillReturnRows(sqlmock.NewRows(placeCols).
			AddRow(5, "할랄가이즈 강남점", "restaurant", 37.4979, 127.0276, "서울시 강남구 강남대로 390", "02-538-9900", 4.6, "certified", nil, nil, nil, now, now).
			AddRow(11, "No Rating", "restaurant", 37.5, 127.0, "Seoul", nil, nil, "unknown", nil, nil, nil, now, now))

	places, err := store.ListPlaces(context.Background(), models.PlaceFilter{Category: models.PlaceRestaurant})

	require.NoError(t, err)
	require.Len(t, places, 2)
	assert.Equal(t, models.HalalCertified, places[0].HalalLevel)
	assert.InDelta(t, 4.6, *places[0].Rating, 1e-9)
	assert.Nil(t, places[1].Rating)
	assert.Nil(t, places[1].Phone)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListPosts(t *testing.T) {
	store, mock := newMockPostgres(t)
	now := time.Now()

	mock.ExpectQuery("FROM posts").
		WithArgs("", "ko", 10, 0).
		WillReturnRows(sqlmock.NewRows(postCols).
			AddRow(2, "second", "body", "food", "ko", "Ali", nil, nil, 0, now, now).
			AddRow(1, "first", "body", "food", "ko", "Ali", nil, nil, 3, now.Add(-time.Hour), now))
	mock.ExpectQuery("ROW_NUMBER").
		WithArgs(sqlmock.AnyArg(), models.ListedComments).
		WillReturnRows(sqlmock.NewRows(commentCols).
			AddRow(7, 1, "c7", "x", nil, now).
			AddRow(6, 1, "c6", "x", nil, now.Add(-time.Minute)))

	posts, err := store.ListPosts(context.Background(), models.PostFilter{Language: models.LangKorean, Page: 1, Limit: 10})

	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Empty(t, posts[0].Comments)
	assert.NotNil(t, posts[0].Comments)
	require.Len(t, posts[1].Comments, 2)
	assert.Equal(t, int64(7), posts[1].Comments[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListPosts_EmptyPageSkipsComments(t *testing.T) {
	store, mock := newMockPostgres(t)

	mock.ExpectQuery("FROM posts").
		WithArgs("", "", 10, 90).
		WillReturnRows(sqlmock.NewRows(postCols))

	posts, err := store.ListPosts(context.Background(), models.PostFilter{Page: 10, Limit: 10})

	require.NoError(t, err)
	assert.Empty(t, posts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCountPosts(t *testing.T) {
	store, mock := newMockPostgres(t)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("food", "").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(23))

	total, err := store.CountPosts(context.Background(), models.PostFilter{Category: models.PostFood})

	require.NoError(t, err)
	assert.Equal(t, 23, total)
}

func TestPostgresGetPostByID_NotFound(t *testing.T) {
	store, mock := newMockPostgres(t)

	mock.ExpectQuery("FROM posts WHERE id").
		WithArgs(int64(9)).
		WillReturnError(sql.ErrNoRows)

	post, err := store.GetPostByID(context.Background(), 9)

	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, post)
}

func TestPostgresAddPost(t *testing.T) {
	store, mock := newMockPostgres(t)
	now := time.Now()

	mock.ExpectQuery("INSERT INTO posts").
		WithArgs("title", "content", "food", "en", "Ali", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(postCols).
			AddRow(4, "title", "content", "food", "en", "Ali", nil, nil, 0, now, now))

	post, err := store.AddPost(context.Background(), models.NewPost{
		Title: "title", Content: "content", Category: models.PostFood,
		Language: models.LangEnglish, AuthorName: "Ali",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(4), post.ID)
	assert.Zero(t, post.Likes)
	assert.NotNil(t, post.Comments)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLikePost_NotFound(t *testing.T) {
	store, mock := newMockPostgres(t)

	mock.ExpectExec("UPDATE posts SET likes").
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := store.LikePost(context.Background(), 3)

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAddComment(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "success",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT EXISTS").WithArgs(int64(1)).
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
				mock.ExpectQuery("INSERT INTO comments").
					WithArgs(int64(1), "Nice", "Ali", sqlmock.AnyArg()).
					WillReturnRows(sqlmock.NewRows(commentCols).AddRow(8, 1, "Nice", "Ali", nil, time.Now()))
				mock.ExpectExec("pg_notify").
					WithArgs(CommentsChannel, sqlmock.AnyArg()).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "missing post",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT EXISTS").WithArgs(int64(1)).
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
			},
			wantErr: ErrNotFound,
		},
		{
			name: "post deleted concurrently",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT EXISTS").WithArgs(int64(1)).
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
				mock.ExpectQuery("INSERT INTO comments").
					WillReturnError(&pq.Error{Code: foreignKeyViolation})
			},
			wantErr: ErrNotFound,
		},
		{
			name: "notify failure is not fatal",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT EXISTS").WithArgs(int64(1)).
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
				mock.ExpectQuery("INSERT INTO comments").
					WillReturnRows(sqlmock.NewRows(commentCols).AddRow(8, 1, "Nice", "Ali", nil, time.Now()))
				mock.ExpectExec("pg_notify").
					WillReturnError(sql.ErrConnDone)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock := newMockPostgres(t)
			tt.setup(mock)

			comment, err := store.AddComment(context.Background(), 1, models.NewComment{Content: "Nice", AuthorName: "Ali"})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, comment)
			} else {
				require.NoError(t, err)
				assert.Equal(t, int64(8), comment.ID)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresGetCommentsByPostID(t *testing.T) {
	store, mock := newMockPostgres(t)
	now := time.Now()

	mock.ExpectQuery("SELECT EXISTS").WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery("FROM comments").
		WithArgs(int64(1), 2, 4).
		WillReturnRows(sqlmock.NewRows(commentCols).AddRow(3, 1, "c", "x", nil, now))

	comments, err := store.GetCommentsByPostID(context.Background(), 1, 2, 4)

	require.NoError(t, err)
	assert.Len(t, comments, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAddScan(t *testing.T) {
	store, mock := newMockPostgres(t)
	now := time.Now()
	name := "Choco Pie"

	mock.ExpectQuery("INSERT INTO scan_history").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), false, 40, `{"is_halal":false}`,
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), "en").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(12, now))

	scan, err := store.AddScan(context.Background(), models.ScanHistory{
		ProductName:          &name,
		Confidence:           40,
		AnalysisResult:       `{"is_halal":false}`,
		ConcernedIngredients: []string{"gelatin"},
		Language:             models.LangEnglish,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(12), scan.ID)
	assert.Equal(t, now, scan.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresReset(t *testing.T) {
	store, mock := newMockPostgres(t)

	mock.ExpectExec("TRUNCATE").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.Reset(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
