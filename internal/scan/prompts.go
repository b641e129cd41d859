package scan

import "github.com/MosinFAM/halal-guide/internal/models"

var prompts = map[models.Language]string{
	models.LangKorean: `
이 제품 이미지를 분석하여 할랄(Halal) 여부를 판별해주세요.

분석 기준:
1. 돼지고기 성분 포함 여부
2. 알코올 성분 포함 여부
3. 젤라틴 등 동물성 성분의 출처
4. 기타 하람(Haram) 성분

응답 형식 (JSON):
{
  "is_halal": true/false (반드시 boolean 값으로),
  "confidence": 0-100,
  "reason": "판별 근거를 한국어로 설명",
  "ingredients_concern": ["문제가 될 수 있는 성분 목록"],
  "recommendation": "대안 제품이나 추가 확인사항 한국어로 안내"
}

이미지에서 성분표나 제품 정보를 읽을 수 없다면 confidence를 낮게 설정하고 이유를 명시해주세요.
`,
	models.LangEnglish: `
Please analyze this product image to determine if it is Halal.

Analysis criteria:
1. Presence of pork ingredients
2. Presence of alcohol ingredients
3. Source of gelatin and other animal-derived ingredients
4. Other Haram ingredients

Response format (JSON):
{
  "is_halal": true/false (must be boolean value),
  "confidence": 0-100,
  "reason": "Explanation of the determination in English",
  "ingredients_concern": ["List of potentially problematic ingredients"],
  "recommendation": "Alternative products or additional verification guidance in English"
}

If you cannot read the ingredients list or product information from the image, set confidence low and specify the reason.
`,
	models.LangArabic: `
يرجى تحليل صورة المنتج هذه لتحديد ما إذا كان حلالاً.

معايير التحليل:
1. وجود مكونات لحم الخنزير
2. وجود مكونات كحولية
3. مصدر الجيلاتين والمكونات الأخرى المشتقة من الحيوانات
4. مكونات حرام أخرى

تنسيق الاستجابة (JSON):
{
  "is_halal": true/false (يجب أن تكون قيمة منطقية),
  "confidence": 0-100,
  "reason": "شرح التحديد باللغة العربية",
  "ingredients_concern": ["قائمة المكونات التي قد تكون مشكلة"],
  "recommendation": "منتجات بديلة أو إرشادات التحقق الإضافية باللغة العربية"
}

إذا لم تتمكن من قراءة قائمة المكونات أو معلومات المنتج من الصورة، اجعل الثقة منخفضة واذكر السبب.
`,
}

// Prompt returns the analysis instructions for lang, Korean when lang has no
// template.
func Prompt(lang models.Language) string {
	if p, ok := prompts[lang]; ok {
		return p
	}
	return prompts[models.DefaultLanguage]
}
