package application

import "handspeak/internal/domain"

// State is everything the UI renders. The controller owns the single
// instance; Snapshot returns a deep copy so tests and renderers can
// inspect it without racing mutations.
type State struct {
	Mode     domain.Mode
	Language domain.AppLanguage

	// Language catalog, user-extensible via lookups.
	Languages []domain.AppLanguage

	// Suggested from the first location fix when the user has not
	// picked a language yet.
	SuggestedLanguage string

	Transcript *domain.Transcript
	Listening  bool

	RecentPhrases domain.RecentPhrases

	SignHistory domain.SignHistory
	LiveScan    bool

	Location       *domain.Location
	LocationDenied bool

	NearbyCategory domain.PlaceCategory
	Nearby         map[domain.PlaceCategory]domain.NearbyResult

	PendingIntent *domain.Intent

	UIStrings  map[string]string
	Localizing bool

	User     *domain.User
	Settings domain.Settings
	Phrases  []domain.QuickPhrase
}

func (s State) clone() State {
	out := s

	out.Languages = append([]domain.AppLanguage(nil), s.Languages...)
	out.RecentPhrases = append(domain.RecentPhrases(nil), s.RecentPhrases...)
	out.SignHistory = append(domain.SignHistory(nil), s.SignHistory...)
	out.Phrases = append([]domain.QuickPhrase(nil), s.Phrases...)

	if s.Transcript != nil {
		tr := *s.Transcript
		out.Transcript = &tr
	}
	if s.Location != nil {
		loc := *s.Location
		out.Location = &loc
	}
	if s.PendingIntent != nil {
		in := *s.PendingIntent
		out.PendingIntent = &in
	}
	if s.User != nil {
		u := *s.User
		u.EmergencyContacts = append([]domain.EmergencyContact(nil), s.User.EmergencyContacts...)
		out.User = &u
	}

	out.Nearby = make(map[domain.PlaceCategory]domain.NearbyResult, len(s.Nearby))
	for k, v := range s.Nearby {
		v.Links = append([]domain.PlaceLink(nil), v.Links...)
		out.Nearby[k] = v
	}

	out.UIStrings = make(map[string]string, len(s.UIStrings))
	for k, v := range s.UIStrings {
		out.UIStrings[k] = v
	}

	return out
}
