package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MosinFAM/halal-guide/internal/models"
)

func TestDecode_IsHalalCoercion(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{"string TRUE", `"TRUE"`, true},
		{"string true", `"true"`, true},
		{"string False", `"False"`, false},
		{"string yes", `"yes"`, false},
		{"bool true", `true`, true},
		{"bool false", `false`, false},
		{"number one", `1`, true},
		{"number zero", `0`, false},
		{"null", `null`, false},
		{"object", `{}`, true},
		{"array", `[]`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, ok := Decode(`{"is_halal": `+tt.value+`, "confidence": 80}`, models.LangEnglish)

			assert.True(t, ok)
			assert.Equal(t, tt.want, result.IsHalal)
		})
	}
}

func TestDecode_AbsentIsHalal(t *testing.T) {
	result, ok := Decode(`{"confidence": 80}`, models.LangEnglish)

	assert.True(t, ok)
	assert.False(t, result.IsHalal)
}

func TestDecode_Confidence(t *testing.T) {
	tests := []struct {
		value string
		want  int
	}{
		{`85`, 85},
		{`72.6`, 73},
		{`"64"`, 64},
		{`"90%"`, 90},
		{`150`, 100},
		{`-3`, 0},
		{`"high"`, 0},
		{`null`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			result, _ := Decode(`{"confidence": `+tt.value+`}`, models.LangKorean)

			assert.Equal(t, tt.want, result.Confidence)
		})
	}
}

func TestDecode_FullReplyInCodeFence(t *testing.T) {
	reply := "Here is the analysis:\n```json\n" + `{
  "is_halal": false,
  "confidence": 92,
  "reason": "Contains pork gelatin",
  "ingredients_concern": ["gelatin (pork)", "rum flavor"],
  "recommendation": "Look for a certified alternative",
  "product_name": "Gummy Bears"
}` + "\n```"

	result, ok := Decode(reply, models.LangEnglish)

	assert.True(t, ok)
	assert.Equal(t, models.AnalysisResult{
		IsHalal:            false,
		Confidence:         92,
		Reason:             "Contains pork gelatin",
		IngredientsConcern: []string{"gelatin (pork)", "rum flavor"},
		Recommendation:     "Look for a certified alternative",
		ProductName:        "Gummy Bears",
	}, result)
}

func TestDecode_SingleConcernString(t *testing.T) {
	result, ok := Decode(`{"is_halal": true, "ingredients_concern": "emulsifier"}`, models.LangEnglish)

	assert.True(t, ok)
	assert.Equal(t, []string{"emulsifier"}, result.IngredientsConcern)
}

func TestDecode_NotJSON(t *testing.T) {
	for _, reply := range []string{"", "I cannot see any ingredients.", "{not json}", "} backwards {"} {
		result, ok := Decode(reply, models.LangKorean)

		assert.False(t, ok, reply)
		assert.False(t, result.IsHalal)
		assert.Equal(t, FallbackConfidence, result.Confidence)
		assert.Equal(t, "이미지 분석에 실패했습니다. 성분표를 명확히 볼 수 있는 사진으로 다시 시도해주세요.", result.Reason)
		assert.Equal(t, []string{"분석 불가"}, result.IngredientsConcern)
	}
}

func TestFallback_Localized(t *testing.T) {
	en := Fallback(models.LangEnglish)
	ar := Fallback(models.LangArabic)
	unknown := Fallback(models.Language("fr"))

	assert.Contains(t, en.Reason, "Image analysis failed")
	assert.Equal(t, []string{"تعذر التحليل"}, ar.IngredientsConcern)
	assert.Equal(t, Fallback(models.LangKorean), unknown)
}

func TestPrompt(t *testing.T) {
	assert.Contains(t, Prompt(models.LangEnglish), "determine if it is Halal")
	assert.Contains(t, Prompt(models.LangArabic), "حلالاً")
	assert.Equal(t, Prompt(models.LangKorean), Prompt(models.Language("xx")))
}
