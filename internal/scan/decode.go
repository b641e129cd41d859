package scan

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/MosinFAM/halal-guide/internal/models"
)

// FallbackConfidence is the confidence of the substitute result returned when
// the provider reply cannot be read.
const FallbackConfidence = 10

type fallbackText struct {
	reason, concern, recommendation string
}

var fallbacks = map[models.Language]fallbackText{
	models.LangKorean: {
		reason:         "이미지 분석에 실패했습니다. 성분표를 명확히 볼 수 있는 사진으로 다시 시도해주세요.",
		concern:        "분석 불가",
		recommendation: "제품 포장의 성분표 부분을 선명하게 촬영하여 다시 시도하거나, 제조사에 직접 문의하시기 바랍니다.",
	},
	models.LangEnglish: {
		reason:         "Image analysis failed. Please try again with a photo where the ingredients list is clearly visible.",
		concern:        "Unable to analyze",
		recommendation: "Take a clear photo of the ingredients section of the packaging and try again, or contact the manufacturer directly.",
	},
	models.LangArabic: {
		reason:         "فشل تحليل الصورة. يرجى المحاولة مرة أخرى بصورة تظهر فيها قائمة المكونات بوضوح.",
		concern:        "تعذر التحليل",
		recommendation: "يرجى تصوير قسم المكونات على عبوة المنتج بوضوح والمحاولة مرة أخرى، أو التواصل مع الشركة المصنعة مباشرة.",
	},
}

// Fallback is the fixed result substituted for an unreadable reply.
func Fallback(lang models.Language) models.AnalysisResult {
	text, ok := fallbacks[lang]
	if !ok {
		text = fallbacks[models.DefaultLanguage]
	}
	return models.AnalysisResult{
		IsHalal:            false,
		Confidence:         FallbackConfidence,
		Reason:             text.reason,
		IngredientsConcern: []string{text.concern},
		Recommendation:     text.recommendation,
	}
}

// extractJSON cuts the reply down to its outermost object, dropping code
// fences and prose around it.
func extractJSON(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return "", false
	}
	return text[start : end+1], true
}

// Decode normalizes the provider reply. The second result is false when the
// reply held no JSON object and the fallback was substituted.
func Decode(text string, lang models.Language) (models.AnalysisResult, bool) {
	raw, ok := extractJSON(text)
	if !ok {
		return Fallback(lang), false
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return Fallback(lang), false
	}

	return models.AnalysisResult{
		IsHalal:            coerceBool(fields["is_halal"]),
		Confidence:         coerceConfidence(fields["confidence"]),
		Reason:             coerceString(fields["reason"]),
		IngredientsConcern: coerceStrings(fields["ingredients_concern"]),
		Recommendation:     coerceString(fields["recommendation"]),
		ProductName:        coerceString(fields["product_name"]),
	}, true
}

func coerceBool(v any) bool {
	switch x := v.(type) {
	case string:
		return strings.EqualFold(x, "true")
	case bool:
		return x
	case json.Number:
		f, err := x.Float64()
		return err == nil && f != 0 && !math.IsNaN(f)
	case nil:
		return false
	default:
		// objects and arrays
		return true
	}
}

func coerceConfidence(v any) int {
	var f float64
	switch x := v.(type) {
	case json.Number:
		n, err := x.Float64()
		if err != nil {
			return 0
		}
		f = n
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(x), "%")), 64)
		if err != nil {
			return 0
		}
		f = n
	default:
		return 0
	}
	if math.IsNaN(f) {
		return 0
	}
	return int(math.Round(math.Max(0, math.Min(100, f))))
}

func coerceString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case nil:
		return ""
	case json.Number:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

func coerceStrings(v any) []string {
	switch x := v.(type) {
	case []any:
		out := make([]string, 0, len(x))
		for _, item := range x {
			if s := coerceString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if strings.TrimSpace(x) == "" {
			return []string{}
		}
		return []string{x}
	default:
		return []string{}
	}
}
