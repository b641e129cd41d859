package scan

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/MosinFAM/halal-guide/internal/models"
	"github.com/MosinFAM/halal-guide/internal/storage"
)

var (
	// ErrNotConfigured is returned when no provider credentials are set.
	ErrNotConfigured = errors.New("scan provider is not configured")
	ErrInvalidImage  = errors.New("invalid image")
	// ErrProvider wraps transport and API failures of the provider.
	ErrProvider = errors.New("scan provider failed")
)

// Provider turns a prompt and a label photo into the model's reply text.
type Provider interface {
	Complete(ctx context.Context, prompt string, img Image) (string, error)
}

type ResultCache interface {
	Get(ctx context.Context, key string) (*models.AnalysisResult, bool, error)
	Set(ctx context.Context, key string, result models.AnalysisResult) error
}

type ImageArchive interface {
	Put(ctx context.Context, img Image) (string, error)
}

// Request is the body of a scan call.
type Request struct {
	Image    string `json:"image"`
	Language string `json:"language"`
}

// Scanner classifies product labels through the provider.
type Scanner struct {
	provider Provider
	source   *storage.Source
	cache    ResultCache
	archive  ImageArchive
}

type Option func(*Scanner)

func WithCache(c ResultCache) Option {
	return func(s *Scanner) { s.cache = c }
}

func WithArchive(a ImageArchive) Option {
	return func(s *Scanner) { s.archive = a }
}

// NewScanner creates a scanner. A nil provider makes every Analyze call fail
// with ErrNotConfigured.
func NewScanner(provider Provider, source *storage.Source, opts ...Option) *Scanner {
	s := &Scanner{provider: provider, source: source}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Configured reports whether a provider is set.
func (s *Scanner) Configured() bool {
	return s.provider != nil
}

// Analyze checks the request, asks the provider (or the cache) and records
// the scan. Recording failures are logged, never returned.
func (s *Scanner) Analyze(ctx context.Context, req Request) (*models.AnalysisResult, error) {
	if s.provider == nil {
		return nil, ErrNotConfigured
	}
	if strings.TrimSpace(req.Image) == "" {
		return nil, &models.ValidationError{Message: "Image is required"}
	}
	img, err := ParseImage(req.Image)
	if err != nil {
		return nil, err
	}
	lang := models.ScanLanguage(req.Language)
	key := CacheKey(lang, img.Data)

	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			slog.Warn("Scan cache lookup failed", "error", err)
		}
		if ok {
			slog.Debug("Scan served from cache", "language", lang)
			s.record(ctx, *cached, lang, nil)
			return cached, nil
		}
	}

	slog.Info("Starting image analysis", "language", lang, "media_type", img.MediaType, "bytes", len(img.Bytes))
	text, err := s.provider.Complete(ctx, Prompt(lang), img)
	if err != nil {
		return nil, err
	}

	result, ok := Decode(text, lang)
	if !ok {
		slog.Warn("Provider reply is not JSON, using fallback result", "language", lang, "reply_length", len(text))
	}
	// fallback results are not cached so a retry reaches the provider
	if ok && s.cache != nil {
		if err := s.cache.Set(ctx, key, result); err != nil {
			slog.Warn("Failed to cache scan result", "error", err)
		}
	}

	s.record(ctx, result, lang, &img)
	return &result, nil
}

// record saves the scan to the live store. img is archived first when given;
// cache hits pass nil since their image was archived by the first scan.
func (s *Scanner) record(ctx context.Context, result models.AnalysisResult, lang models.Language, img *Image) {
	store, err := s.source.Live()
	if err != nil {
		return
	}

	scan := models.ScanHistory{
		IsHalal:              result.IsHalal,
		Confidence:           result.Confidence,
		ConcernedIngredients: result.IngredientsConcern,
		Language:             lang,
		ProductName:          optional(result.ProductName),
		Reason:               optional(result.Reason),
		Recommendation:       optional(result.Recommendation),
	}
	if data, err := json.Marshal(result); err == nil {
		scan.AnalysisResult = string(data)
	}

	if s.archive != nil && img != nil {
		url, err := s.archive.Put(ctx, *img)
		if err != nil {
			slog.Warn("Failed to archive scanned image", "error", err)
		} else {
			scan.ImageURL = &url
		}
	}

	saved, err := store.AddScan(ctx, scan)
	if err != nil {
		slog.Error("Failed to save scan history", "error", err)
		return
	}
	slog.Debug("Scan history saved", "scan_id", saved.ID)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
