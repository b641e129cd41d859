package models

import (
	"golang.org/x/text/language"
)

// Language is one of the three supported content languages.
type Language string

const (
	LangKorean  Language = "ko"
	LangEnglish Language = "en"
	LangArabic  Language = "ar"
)

// DefaultLanguage is used when a request does not name one.
const DefaultLanguage = LangKorean

// SupportedLanguages lists the content languages in display order.
var SupportedLanguages = []Language{LangKorean, LangEnglish, LangArabic}

var languageMatcher = language.NewMatcher([]language.Tag{
	language.Korean,
	language.English,
	language.Arabic,
})

func (l Language) Valid() bool {
	switch l {
	case LangKorean, LangEnglish, LangArabic:
		return true
	}
	return false
}

// MatchLanguage maps a BCP 47 tag such as "en-US" or "ar_SA" onto a supported
// language. ok is false when nothing matches with at least high confidence.
func MatchLanguage(s string) (Language, bool) {
	if l := Language(s); l.Valid() {
		return l, true
	}
	tag, err := language.Parse(s)
	if err != nil {
		return "", false
	}
	_, idx, conf := languageMatcher.Match(tag)
	if conf < language.High {
		return "", false
	}
	return SupportedLanguages[idx], true
}

// ParseLanguage parses an optional language filter. Empty and "all" yield the
// zero value.
func ParseLanguage(s string) (Language, error) {
	if s == "" || s == FilterAll {
		return "", nil
	}
	l, ok := MatchLanguage(s)
	if !ok {
		return "", Invalid("language", "unsupported language %q", s)
	}
	return l, nil
}

// ScanLanguage resolves the language selector of a scan request: anything
// unrecognized falls back to DefaultLanguage.
func ScanLanguage(s string) Language {
	if l, ok := MatchLanguage(s); ok {
		return l
	}
	return DefaultLanguage
}
