package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"handspeak/internal/domain"
)

const (
	userFile     = "user.json"
	settingsFile = "settings.json"
	phrasesFile  = "phrases.json"
)

// FileStore persists the user profile, preferences and quick phrases as
// JSON files in a single directory. There is one local user, so plain
// files are enough.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) LoadUser() (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var user domain.User
	found, err := s.read(userFile, &user)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &user, nil
}

func (s *FileStore) SaveUser(user *domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if err := s.write(userFile, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *FileStore) DeleteUser() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(filepath.Join(s.dir, userFile))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("deleting user: %w", err)
	}
	return nil
}

func (s *FileStore) LoadSettings() (domain.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var settings domain.Settings
	found, err := s.read(settingsFile, &settings)
	if err != nil {
		return domain.Settings{}, err
	}
	if !found {
		return domain.DefaultSettings(), nil
	}
	return settings, nil
}

func (s *FileStore) SaveSettings(settings domain.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(settingsFile, settings)
}

func (s *FileStore) loadPhrases() ([]domain.QuickPhrase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var phrases []domain.QuickPhrase
	found, err := s.read(phrasesFile, &phrases)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return phrases, nil
}

func (s *FileStore) savePhrases(phrases []domain.QuickPhrase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(phrasesFile, phrases)
}

func (s *FileStore) read(name string, out any) (bool, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", name, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("parsing %s: %w", name, err)
	}
	return true, nil
}

func (s *FileStore) write(name string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0600); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}
