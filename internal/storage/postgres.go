package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"github.com/MosinFAM/halal-guide/internal/models"
	"github.com/MosinFAM/halal-guide/internal/storage/fixtures"
)

// CommentsChannel is the LISTEN/NOTIFY channel carrying new comments.
const CommentsChannel = "comments_channel"

// PostgresStorage - PostgreSQL store
type PostgresStorage struct {
	DB         *sql.DB
	DataSource string
}

// NewPostgresStorage creates a PostgreSQL store. dataSource is used to open
// dedicated LISTEN connections for comment subscriptions.
func NewPostgresStorage(db *sql.DB, dataSource string) *PostgresStorage {
	return &PostgresStorage{DB: db, DataSource: dataSource}
}

func (s *PostgresStorage) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

const placeColumns = `id, name, category, latitude, longitude, address, phone, rating,
	halal_level, description, opening_hours, website, created_at, updated_at`

// ListPlaces filters in SQL with the same ordering as models.SortPlaces.
func (s *PostgresStorage) ListPlaces(ctx context.Context, filter models.PlaceFilter) ([]models.HalalPlace, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+placeColumns+`
		FROM halal_places
		WHERE ($1 = '' OR category = $1)
		  AND ($2 = '' OR halal_level = $2)
		  AND ($3 = '' OR name ILIKE '%' || $3 || '%' OR address ILIKE '%' || $3 || '%')
		ORDER BY halal_level ASC, rating DESC NULLS LAST, name COLLATE "C" ASC
	`, string(filter.Category), string(filter.HalalLevel), filter.Query)
	if err != nil {
		return nil, fmt.Errorf("failed to query places: %w", err)
	}
	defer rows.Close()

	places := []models.HalalPlace{}
	for rows.Next() {
		var p models.HalalPlace
		var category, level string
		if err := rows.Scan(&p.ID, &p.Name, &category, &p.Latitude, &p.Longitude, &p.Address,
			&p.Phone, &p.Rating, &level, &p.Description, &p.OpeningHours, &p.Website,
			&p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan place: %w", err)
		}
		p.Category = models.PlaceCategory(category)
		p.HalalLevel = models.HalalLevel(level)
		places = append(places, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate places: %w", err)
	}
	return places, nil
}

const postColumns = `id, title, content, category, language, author_name, author_email,
	image_url, likes, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (models.Post, error) {
	var p models.Post
	var category, language string
	err := row.Scan(&p.ID, &p.Title, &p.Content, &category, &language, &p.AuthorName,
		&p.AuthorEmail, &p.ImageURL, &p.Likes, &p.CreatedAt, &p.UpdatedAt)
	p.Category = models.PostCategory(category)
	p.Language = models.Language(language)
	p.Comments = []models.Comment{}
	return p, err
}

func scanComment(row rowScanner) (models.Comment, error) {
	var c models.Comment
	err := row.Scan(&c.ID, &c.PostID, &c.Content, &c.AuthorName, &c.AuthorEmail, &c.CreatedAt)
	return c, err
}

// ListPosts returns one page of posts and attaches their latest comments
// with a single windowed query.
func (s *PostgresStorage) ListPosts(ctx context.Context, filter models.PostFilter) ([]models.Post, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+postColumns+`
		FROM posts
		WHERE ($1 = '' OR category = $1)
		  AND ($2 = '' OR language = $2)
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4
	`, string(filter.Category), string(filter.Language), filter.Limit, filter.Offset())
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer rows.Close()

	posts := []models.Post{}
	index := map[int64]int{}
	ids := []int64{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		index[p.ID] = len(posts)
		ids = append(ids, p.ID)
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate posts: %w", err)
	}
	if len(posts) == 0 {
		return posts, nil
	}

	crows, err := s.DB.QueryContext(ctx, `
		SELECT id, post_id, content, author_name, author_email, created_at
		FROM (
			SELECT c.*, ROW_NUMBER() OVER (PARTITION BY post_id ORDER BY created_at DESC, id DESC) AS rn
			FROM comments c
			WHERE post_id = ANY($1)
		) ranked
		WHERE rn <= $2
		ORDER BY post_id, created_at DESC, id DESC
	`, pq.Array(ids), models.ListedComments)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}
	defer crows.Close()

	for crows.Next() {
		c, err := scanComment(crows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		if i, ok := index[c.PostID]; ok {
			posts[i].Comments = append(posts[i].Comments, c)
		}
	}
	if err := crows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate comments: %w", err)
	}
	return posts, nil
}

func (s *PostgresStorage) CountPosts(ctx context.Context, filter models.PostFilter) (int, error) {
	var total int
	err := s.DB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM posts
		WHERE ($1 = '' OR category = $1)
		  AND ($2 = '' OR language = $2)
	`, string(filter.Category), string(filter.Language)).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return total, nil
}

func (s *PostgresStorage) GetPostByID(ctx context.Context, id int64) (*models.Post, error) {
	post, err := scanPost(s.DB.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch post %d: %w", id, err)
	}

	comments, err := s.queryComments(ctx, id, -1, 0)
	if err != nil {
		return nil, err
	}
	post.Comments = comments
	return &post, nil
}

// queryComments returns comments of a post, newest first. A negative limit
// means no limit.
func (s *PostgresStorage) queryComments(ctx context.Context, postID int64, limit, offset int) ([]models.Comment, error) {
	var lim any
	if limit >= 0 {
		lim = limit
	}
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, post_id, content, author_name, author_email, created_at
		FROM comments
		WHERE post_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, postID, lim, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}
	defer rows.Close()

	comments := []models.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate comments: %w", err)
	}
	return comments, nil
}

func (s *PostgresStorage) AddPost(ctx context.Context, in models.NewPost) (*models.Post, error) {
	post, err := scanPost(s.DB.QueryRowContext(ctx, `
		INSERT INTO posts (title, content, category, language, author_name, author_email, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+postColumns,
		in.Title, in.Content, string(in.Category), string(in.Language), in.AuthorName,
		in.AuthorEmail, in.ImageURL))
	if err != nil {
		return nil, fmt.Errorf("failed to insert post: %w", err)
	}
	return &post, nil
}

func (s *PostgresStorage) LikePost(ctx context.Context, id int64) (*models.Post, error) {
	res, err := s.DB.ExecContext(ctx,
		`UPDATE posts SET likes = likes + 1, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to like post %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrNotFound
	}
	return s.GetPostByID(ctx, id)
}

// foreignKeyViolation is the SQLSTATE of a failed REFERENCES check.
const foreignKeyViolation = "23503"

// AddComment checks the parent post, inserts the comment and announces it on
// CommentsChannel.
func (s *PostgresStorage) AddComment(ctx context.Context, postID int64, in models.NewComment) (*models.Comment, error) {
	var exists bool
	err := s.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM posts WHERE id = $1)`, postID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check post %d: %w", postID, err)
	}
	if !exists {
		return nil, ErrNotFound
	}

	comment, err := scanComment(s.DB.QueryRowContext(ctx, `
		INSERT INTO comments (post_id, content, author_name, author_email)
		VALUES ($1, $2, $3, $4)
		RETURNING id, post_id, content, author_name, author_email, created_at
	`, postID, in.Content, in.AuthorName, in.AuthorEmail))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to insert comment: %w", err)
	}

	payload, err := json.Marshal(comment)
	if err == nil {
		_, err = s.DB.ExecContext(ctx, `SELECT pg_notify($1, $2)`, CommentsChannel, string(payload))
	}
	if err != nil {
		slog.Warn("Comment notification failed", "post_id", postID, "comment_id", comment.ID, "error", err)
	}

	return &comment, nil
}

func (s *PostgresStorage) GetCommentsByPostID(ctx context.Context, postID int64, limit, offset int) ([]models.Comment, error) {
	var exists bool
	err := s.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM posts WHERE id = $1)`, postID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check post %d: %w", postID, err)
	}
	if !exists {
		return nil, ErrNotFound
	}
	return s.queryComments(ctx, postID, limit, offset)
}

// SubscribeToComments opens a dedicated LISTEN connection and forwards the
// comments announced for postID.
func (s *PostgresStorage) SubscribeToComments(ctx context.Context, postID int64) (<-chan models.Comment, error) {
	if _, err := s.GetPostByID(ctx, postID); err != nil {
		return nil, err
	}

	listener := pq.NewListener(s.DataSource, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			slog.Warn("Postgres listener error", "channel", CommentsChannel, "error", err)
		}
	})
	if err := listener.Listen(CommentsChannel); err != nil {
		listener.Close()
		return nil, fmt.Errorf("failed to listen on %s: %w", CommentsChannel, err)
	}

	ch := make(chan models.Comment)
	go func() {
		defer close(ch)
		defer listener.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case <-time.After(90 * time.Second):
				if err := listener.Ping(); err != nil {
					slog.Warn("Postgres listener ping failed", "error", err)
					return
				}
			case n, ok := <-listener.Notify:
				if !ok {
					return
				}
				// nil after a reconnect
				if n == nil {
					continue
				}
				var c models.Comment
				if err := json.Unmarshal([]byte(n.Extra), &c); err != nil {
					slog.Warn("Malformed comment notification", "payload", n.Extra, "error", err)
					continue
				}
				if c.PostID != postID {
					continue
				}
				select {
				case ch <- c:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}

func (s *PostgresStorage) AddScan(ctx context.Context, scan models.ScanHistory) (*models.ScanHistory, error) {
	err := s.DB.QueryRowContext(ctx, `
		INSERT INTO scan_history (product_name, image_url, is_halal, confidence, analysis_result,
			reason, concerned_ingredients, recommendation, language)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`, scan.ProductName, scan.ImageURL, scan.IsHalal, scan.Confidence, scan.AnalysisResult,
		scan.Reason, pq.Array(scan.ConcernedIngredients), scan.Recommendation, string(scan.Language),
	).Scan(&scan.ID, &scan.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert scan: %w", err)
	}
	return &scan, nil
}

func (s *PostgresStorage) ListScans(ctx context.Context, limit int) ([]models.ScanHistory, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, product_name, image_url, is_halal, confidence, analysis_result, reason,
			concerned_ingredients, recommendation, language, created_at
		FROM scan_history
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query scans: %w", err)
	}
	defer rows.Close()

	scans := []models.ScanHistory{}
	for rows.Next() {
		var sc models.ScanHistory
		var language string
		if err := rows.Scan(&sc.ID, &sc.ProductName, &sc.ImageURL, &sc.IsHalal, &sc.Confidence,
			&sc.AnalysisResult, &sc.Reason, pq.Array(&sc.ConcernedIngredients), &sc.Recommendation,
			&language, &sc.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan scan history: %w", err)
		}
		sc.Language = models.Language(language)
		scans = append(scans, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate scans: %w", err)
	}
	return scans, nil
}

// Reset empties every table, the administrative reset of the seed command.
func (s *PostgresStorage) Reset(ctx context.Context) error {
	_, err := s.DB.ExecContext(ctx,
		`TRUNCATE scan_history, comments, posts, halal_places RESTART IDENTITY CASCADE`)
	if err != nil {
		return fmt.Errorf("failed to reset tables: %w", err)
	}
	return nil
}

// Seed inserts the dataset in one transaction. Dataset ids are not kept; the
// database assigns its own.
func (s *PostgresStorage) Seed(ctx context.Context, ds *fixtures.Dataset) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin seed: %w", err)
	}
	defer tx.Rollback()

	for _, p := range ds.Places {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO halal_places (name, category, latitude, longitude, address, phone, rating,
				halal_level, description, opening_hours, website)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`, p.Name, string(p.Category), p.Latitude, p.Longitude, p.Address, p.Phone, p.Rating,
			string(p.HalalLevel), p.Description, p.OpeningHours, p.Website)
		if err != nil {
			return fmt.Errorf("failed to seed place %q: %w", p.Name, err)
		}
	}

	for _, p := range ds.Posts {
		var id int64
		err := tx.QueryRowContext(ctx, `
			INSERT INTO posts (title, content, category, language, author_name, author_email,
				image_url, likes, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING id
		`, p.Title, p.Content, string(p.Category), string(p.Language), p.AuthorName,
			p.AuthorEmail, p.ImageURL, p.Likes, p.CreatedAt, p.UpdatedAt).Scan(&id)
		if err != nil {
			return fmt.Errorf("failed to seed post %q: %w", p.Title, err)
		}
		for _, c := range p.Comments {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO comments (post_id, content, author_name, author_email, created_at)
				VALUES ($1, $2, $3, $4, $5)
			`, id, c.Content, c.AuthorName, c.AuthorEmail, c.CreatedAt)
			if err != nil {
				return fmt.Errorf("failed to seed comment on %q: %w", p.Title, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seed: %w", err)
	}
	return nil
}
