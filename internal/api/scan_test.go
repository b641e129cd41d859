package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MosinFAM/halal-guide/internal/models"
	"github.com/MosinFAM/halal-guide/internal/scan"
	"github.com/MosinFAM/halal-guide/internal/storage"
)

func TestScan_NotConfigured(t *testing.T) {
	env := newTestEnv(t, nil, nil, Options{})

	// configuration is checked before the body
	w := env.do(t, http.MethodPost, "/api/scan", "not json")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "API configuration error", decode[map[string]string](t, w)["error"])
}

func TestScan_ImageRequired(t *testing.T) {
	provider := &stubProvider{}
	env := newTestEnv(t, nil, provider, Options{})

	w := env.do(t, http.MethodPost, "/api/scan", map[string]any{"language": "en"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Image is required", decode[map[string]string](t, w)["error"])
	assert.Zero(t, provider.calls)
}

func TestScan_InvalidImage(t *testing.T) {
	env := newTestEnv(t, nil, &stubProvider{}, Options{})

	w := env.do(t, http.MethodPost, "/api/scan", map[string]any{"image": "data:image/png;base64,!!!"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScan_Success(t *testing.T) {
	live := storage.NewMemoryStorage()
	provider := &stubProvider{reply: `{"is_halal": "false", "confidence": 95, "reason": "Contains pork", "ingredients_concern": ["돼지고기"], "recommendation": "Avoid"}`}
	env := newTestEnv(t, live, provider, Options{})

	w := env.do(t, http.MethodPost, "/api/scan", map[string]any{"image": "data:image/jpeg;base64,aGVsbG8=", "language": "ar"})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := decode[models.AnalysisResult](t, w)
	assert.False(t, result.IsHalal)
	assert.Equal(t, 95, result.Confidence)
	assert.Equal(t, []string{"돼지고기"}, result.IngredientsConcern)

	scans, err := live.ListScans(t.Context(), 10)
	require.NoError(t, err)
	require.Len(t, scans, 1)
	assert.Equal(t, models.LangArabic, scans[0].Language)
}

func TestScan_UnreadableReply(t *testing.T) {
	env := newTestEnv(t, nil, &stubProvider{reply: "Sorry, the photo is blurry."}, Options{})

	w := env.do(t, http.MethodPost, "/api/scan", map[string]any{"image": "aGVsbG8="})

	require.Equal(t, http.StatusOK, w.Code)
	result := decode[models.AnalysisResult](t, w)
	assert.Equal(t, scan.Fallback(models.LangKorean), result)
}

func TestScan_ProviderFailure(t *testing.T) {
	providerErr := fmt.Errorf("%w: status 529: Overloaded", scan.ErrProvider)

	t.Run("development", func(t *testing.T) {
		env := newTestEnv(t, nil, &stubProvider{err: providerErr}, Options{})

		w := env.do(t, http.MethodPost, "/api/scan", map[string]any{"image": "aGVsbG8="})

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		body := decode[map[string]string](t, w)
		assert.Equal(t, "Failed to analyze image", body["error"])
		assert.Contains(t, body["details"], "Overloaded")
	})

	t.Run("production", func(t *testing.T) {
		env := newTestEnv(t, nil, &stubProvider{err: providerErr}, Options{Production: true})

		w := env.do(t, http.MethodPost, "/api/scan", map[string]any{"image": "aGVsbG8="})

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		body := decode[map[string]string](t, w)
		assert.Equal(t, "Failed to analyze image", body["error"])
		assert.NotContains(t, body, "details")
	})
}

func TestListScans(t *testing.T) {
	live := storage.NewMemoryStorage()
	_, err := live.AddScan(t.Context(), models.ScanHistory{Confidence: 50, Language: models.LangKorean})
	require.NoError(t, err)
	env := newTestEnv(t, live, nil, Options{APIAccessKey: "secret"})

	w := env.do(t, http.MethodGet, "/api/admin/scans", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodGet, "/api/admin/scans", nil, "X-API-Key", "wrong")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodGet, "/api/admin/scans?limit=5", nil, "Authorization", "Bearer secret")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.ScanHistory](t, w), 1)
}

func TestListScans_DisabledWithoutKey(t *testing.T) {
	env := newTestEnv(t, storage.NewMemoryStorage(), nil, Options{})

	w := env.do(t, http.MethodGet, "/api/admin/scans", nil, "X-API-Key", "anything")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListScans_DemoMode(t *testing.T) {
	env := newTestEnv(t, nil, nil, Options{APIAccessKey: "secret"})

	w := env.do(t, http.MethodGet, "/api/admin/scans", nil, "X-API-Key", "secret")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
