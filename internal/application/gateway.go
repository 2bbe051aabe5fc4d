package application

import (
	"context"

	"handspeak/internal/domain"
)

// Gateway is the AI capability surface. Operations return values, never
// errors: every implementation must fold failures into the documented
// deterministic fallback for that operation.
type Gateway interface {
	DetectLanguage(ctx context.Context, text string) string
	LanguageFromLocation(ctx context.Context, lat, lng float64) string
	ReverseGeocode(ctx context.Context, lat, lng float64, targetLanguage string) string
	TranslateText(ctx context.Context, text, targetLanguage string) string
	TransliterateText(ctx context.Context, text, targetLanguage string) string
	NearbyPlaces(ctx context.Context, lat, lng float64, category domain.PlaceCategory, targetLanguage string) domain.NearbyResult
	FetchUITranslations(ctx context.Context, targetLanguage string, keys, values []string) map[string]string
	FindLanguageDetails(ctx context.Context, commonName string) *domain.AppLanguage
	InterpretSignLanguage(ctx context.Context, frame domain.Frame, targetLanguage string) string
}
