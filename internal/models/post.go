package models

import "time"

// Post on the community board. Comments holds the comments the query asked
// for: the latest few in listings, all of them for a single post.
type Post struct {
	ID          int64        `json:"id" yaml:"id"`
	Title       string       `json:"title" yaml:"title"`
	Content     string       `json:"content" yaml:"content"`
	Category    PostCategory `json:"category" yaml:"category"`
	Language    Language     `json:"language" yaml:"language"`
	AuthorName  string       `json:"authorName" yaml:"authorName"`
	AuthorEmail *string      `json:"authorEmail,omitempty" yaml:"authorEmail"`
	ImageURL    *string      `json:"imageUrl,omitempty" yaml:"imageUrl"`
	Likes       int          `json:"likes" yaml:"likes"`
	CreatedAt   time.Time    `json:"createdAt" yaml:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt" yaml:"updatedAt"`
	Comments    []Comment    `json:"comments" yaml:"comments"`
}

const (
	MaxTitleLength = 200

	// ListedComments is how many recent comments a post carries in listings.
	ListedComments = 3

	DefaultPageSize = 10
	MaxPageSize     = 50
)

// NewPost is the client payload for creating a post.
type NewPost struct {
	Title       string       `json:"title"`
	Content     string       `json:"content"`
	Category    PostCategory `json:"category"`
	Language    Language     `json:"language"`
	AuthorName  string       `json:"authorName"`
	AuthorEmail *string      `json:"authorEmail"`
	ImageURL    *string      `json:"imageUrl"`
}

// Validate checks required fields and closed enumerations. Language tags are
// normalized in place (e.g. "en-US" becomes "en").
func (p *NewPost) Validate() error {
	if blank(p.Title) || blank(p.Content) || p.Category == "" || p.Language == "" || blank(p.AuthorName) {
		return &ValidationError{Message: "Required fields missing"}
	}
	if len([]rune(p.Title)) > MaxTitleLength {
		return Invalid("title", "title is too long")
	}
	if !p.Category.Valid() {
		return Invalid("category", "unknown category %q", p.Category)
	}
	lang, ok := MatchLanguage(string(p.Language))
	if !ok {
		return Invalid("language", "unsupported language %q", p.Language)
	}
	p.Language = lang
	return nil
}

// PostFilter selects and pages posts. Page is 1-indexed.
type PostFilter struct {
	Category PostCategory
	Language Language
	Page     int
	Limit    int
}

// Match reports whether p satisfies the category and language predicates.
func (f PostFilter) Match(p Post) bool {
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.Language != "" && p.Language != f.Language {
		return false
	}
	return true
}

// Offset is the number of posts skipped before the requested page.
func (f PostFilter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

// Pagination describes the page returned with a post listing.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// NewPagination computes totalPages as ceil(total/limit).
func NewPagination(page, limit, total int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: pages}
}

// PostPage is the listing response body.
type PostPage struct {
	Posts      []Post     `json:"posts"`
	Pagination Pagination `json:"pagination"`
}
