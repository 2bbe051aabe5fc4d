package application

import "handspeak/internal/domain"

// Store is the local persistence boundary for the user profile and
// preferences. A missing user loads as nil without error.
type Store interface {
	LoadUser() (*domain.User, error)
	SaveUser(user *domain.User) (*domain.User, error)
	DeleteUser() error
	LoadSettings() (domain.Settings, error)
	SaveSettings(settings domain.Settings) error
}

// PhraseCatalog is the user-extensible quick-phrase list.
type PhraseCatalog interface {
	All() []domain.QuickPhrase
	FindByLabel(label string) (*domain.QuickPhrase, bool)
	Add(phrase domain.QuickPhrase) (domain.QuickPhrase, error)
	Remove(id string) error
	Reload() error
}
