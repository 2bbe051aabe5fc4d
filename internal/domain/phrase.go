package domain

import "strings"

type PhraseCategory string

const (
	CategoryUrgent PhraseCategory = "urgent"
	CategorySocial PhraseCategory = "social"
	CategoryNeeds  PhraseCategory = "needs"
)

type QuickPhrase struct {
	ID           string            `json:"id"`
	Label        string            `json:"label"`
	Translations map[string]string `json:"translations,omitempty"`
	Icon         string            `json:"icon,omitempty"`
	Category     PhraseCategory    `json:"category"`
}

// Translated returns the phrase text for a language code, falling back
// to the default English label.
func (p QuickPhrase) Translated(code string) string {
	if t, ok := p.Translations[code]; ok && t != "" {
		return t
	}
	return p.Label
}

const maxRecentPhrases = 5

// RecentPhrases is a bounded ordered set of recently spoken phrases,
// newest first, de-duplicated, at most 5 entries.
type RecentPhrases []string

func (r RecentPhrases) Add(text string) RecentPhrases {
	text = strings.TrimSpace(text)
	if text == "" {
		return r
	}
	out := make(RecentPhrases, 0, maxRecentPhrases)
	out = append(out, text)
	for _, p := range r {
		if p == text {
			continue
		}
		out = append(out, p)
		if len(out) == maxRecentPhrases {
			break
		}
	}
	return out
}

const maxSignHistory = 5

// SignHistory holds the last interpreted signs, newest first, at most 5.
type SignHistory []SignInterpretation

func (h SignHistory) Add(s SignInterpretation) SignHistory {
	out := make(SignHistory, 0, maxSignHistory)
	out = append(out, s)
	for _, e := range h {
		out = append(out, e)
		if len(out) == maxSignHistory {
			break
		}
	}
	return out
}
