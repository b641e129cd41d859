package api

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/MosinFAM/halal-guide/internal/models"
	"github.com/MosinFAM/halal-guide/internal/storage"
)

const defaultCommentPage = 20

func parsePostFilter(c *gin.Context) (models.PostFilter, error) {
	var f models.PostFilter
	var err error

	if f.Category, err = models.ParsePostCategory(c.Query("category")); err != nil {
		return f, err
	}
	if f.Language, err = models.ParseLanguage(c.Query("language")); err != nil {
		return f, err
	}
	if f.Page, err = intQuery(c, "page", 1); err != nil {
		return f, err
	}
	if f.Limit, err = intQuery(c, "limit", models.DefaultPageSize); err != nil {
		return f, err
	}
	f.Limit = min(f.Limit, models.MaxPageSize)
	// the offset of the page must fit in an int
	if f.Page > math.MaxInt/f.Limit {
		return f, models.Invalid("page", "page %d is out of range", f.Page)
	}
	return f, nil
}

// ListPosts GET /api/posts
func (h *Handler) ListPosts(c *gin.Context) {
	ctx := c.Request.Context()

	filter, err := parsePostFilter(c)
	if err != nil {
		h.respondError(c, err, "")
		return
	}

	page, err := storage.Read(ctx, h.source, "list_posts", func(s storage.Storage) (models.PostPage, error) {
		var posts []models.Post
		var total int

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			posts, err = s.ListPosts(gctx, filter)
			return err
		})
		g.Go(func() error {
			var err error
			total, err = s.CountPosts(gctx, filter)
			return err
		})
		if err := g.Wait(); err != nil {
			return models.PostPage{}, err
		}

		return models.PostPage{
			Posts:      posts,
			Pagination: models.NewPagination(filter.Page, filter.Limit, total),
		}, nil
	})
	if err != nil {
		h.respondError(c, err, "Failed to fetch posts")
		return
	}

	c.JSON(http.StatusOK, page)
}

// GetPost GET /api/posts/:id
func (h *Handler) GetPost(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := parseID(c)
	if err != nil {
		h.respondError(c, err, "")
		return
	}

	post, err := storage.Read(ctx, h.source, "get_post", func(s storage.Storage) (*models.Post, error) {
		return s.GetPostByID(ctx, id)
	})
	if err != nil {
		h.respondError(c, err, "Failed to fetch post")
		return
	}

	c.JSON(http.StatusOK, post)
}

// CreatePost POST /api/posts
func (h *Handler) CreatePost(c *gin.Context) {
	var in models.NewPost
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := in.Validate(); err != nil {
		h.respondError(c, err, "")
		return
	}

	store, ok := h.liveStore(c, "Posts")
	if !ok {
		return
	}

	post, err := store.AddPost(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err, "Failed to create post")
		return
	}

	c.JSON(http.StatusCreated, post)
}

// LikePost POST /api/posts/:id/like
func (h *Handler) LikePost(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.respondError(c, err, "")
		return
	}

	store, ok := h.liveStore(c, "Likes")
	if !ok {
		return
	}

	post, err := store.LikePost(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "Failed to like post")
		return
	}

	c.JSON(http.StatusOK, post)
}

// ListComments GET /api/posts/:id/comments
func (h *Handler) ListComments(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := parseID(c)
	if err != nil {
		h.respondError(c, err, "")
		return
	}
	limit, err := intQuery(c, "limit", defaultCommentPage)
	if err != nil {
		h.respondError(c, err, "")
		return
	}
	limit = min(limit, models.MaxPageSize)

	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		h.respondError(c, models.Invalid("offset", "offset must be a non-negative integer"), "")
		return
	}

	comments, err := storage.Read(ctx, h.source, "list_comments", func(s storage.Storage) ([]models.Comment, error) {
		return s.GetCommentsByPostID(ctx, id, limit, offset)
	})
	if err != nil {
		h.respondError(c, err, "Failed to fetch comments")
		return
	}

	c.JSON(http.StatusOK, comments)
}

// CreateComment POST /api/posts/:id/comments
func (h *Handler) CreateComment(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.respondError(c, err, "")
		return
	}

	var in models.NewComment
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := in.Validate(); err != nil {
		h.respondError(c, err, "")
		return
	}

	store, ok := h.liveStore(c, "Comments")
	if !ok {
		return
	}

	comment, err := store.AddComment(c.Request.Context(), id, in)
	if err != nil {
		h.respondError(c, err, "Failed to create comment")
		return
	}

	c.JSON(http.StatusCreated, comment)
}
