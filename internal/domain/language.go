package domain

import "strings"

type AppLanguage struct {
	Code       string
	Name       string
	NativeName string
}

// DefaultLanguage is the fallback for every language-detection path.
var DefaultLanguage = AppLanguage{Code: "en-US", Name: "English", NativeName: "English"}

// DefaultLanguages is the built-in catalog. The user can extend it via
// a language-details lookup.
var DefaultLanguages = []AppLanguage{
	DefaultLanguage,
	{Code: "es-ES", Name: "Spanish", NativeName: "Español"},
	{Code: "fr-FR", Name: "French", NativeName: "Français"},
	{Code: "de-DE", Name: "German", NativeName: "Deutsch"},
	{Code: "hi-IN", Name: "Hindi", NativeName: "हिन्दी"},
	{Code: "ja-JP", Name: "Japanese", NativeName: "日本語"},
	{Code: "ar-SA", Name: "Arabic", NativeName: "العربية"},
	{Code: "pt-BR", Name: "Portuguese", NativeName: "Português"},
}

// BaseCode extracts the base language from a BCP 47 tag.
// "en-US" -> "en", "fr_CA" -> "fr", "EN" -> "en".
func BaseCode(tag string) string {
	lang := strings.ToLower(strings.TrimSpace(tag))
	if idx := strings.IndexAny(lang, "-_"); idx >= 0 {
		lang = lang[:idx]
	}
	return lang
}
