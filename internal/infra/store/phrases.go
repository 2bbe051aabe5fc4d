package store

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"handspeak/internal/domain"
)

// DefaultPhrases seed a fresh catalog so the speak screen is usable
// before the user adds anything.
var DefaultPhrases = []domain.QuickPhrase{
	{Label: "I need help", Icon: "alert", Category: domain.CategoryUrgent},
	{Label: "Call the police", Icon: "shield", Category: domain.CategoryUrgent},
	{Label: "I am deaf, please be patient", Icon: "ear", Category: domain.CategorySocial},
	{Label: "Thank you", Icon: "heart", Category: domain.CategorySocial},
	{Label: "Where is the bathroom?", Icon: "map", Category: domain.CategoryNeeds},
	{Label: "I need water", Icon: "cup", Category: domain.CategoryNeeds},
}

// PhraseCatalog keeps the quick phrases in memory behind a label index
// and persists every change through the file store.
type PhraseCatalog struct {
	store  *FileStore
	logger *slog.Logger

	mu         sync.RWMutex
	phrases    []domain.QuickPhrase
	labelIndex map[string]*domain.QuickPhrase
}

func NewPhraseCatalog(store *FileStore, logger *slog.Logger) *PhraseCatalog {
	return &PhraseCatalog{
		store:      store,
		logger:     logger,
		labelIndex: make(map[string]*domain.QuickPhrase),
	}
}

// Reload reads the catalog from disk, seeding and persisting the
// defaults when no catalog exists yet.
func (c *PhraseCatalog) Reload() error {
	phrases, err := c.store.loadPhrases()
	if err != nil {
		return fmt.Errorf("loading phrases: %w", err)
	}

	if phrases == nil {
		phrases = make([]domain.QuickPhrase, len(DefaultPhrases))
		copy(phrases, DefaultPhrases)
		for i := range phrases {
			phrases[i].ID = uuid.NewString()
		}
		if err := c.store.savePhrases(phrases); err != nil {
			return fmt.Errorf("seeding phrases: %w", err)
		}
		c.logger.Info("seeded default quick phrases", "count", len(phrases))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.phrases = phrases
	c.reindexLocked()
	return nil
}

func (c *PhraseCatalog) All() []domain.QuickPhrase {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]domain.QuickPhrase, len(c.phrases))
	copy(result, c.phrases)
	return result
}

func (c *PhraseCatalog) FindByLabel(label string) (*domain.QuickPhrase, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	key := strings.ToLower(strings.TrimSpace(label))

	if p, ok := c.labelIndex[key]; ok {
		return p, true
	}

	for i := range c.phrases {
		if strings.Contains(strings.ToLower(c.phrases[i].Label), key) {
			return &c.phrases[i], true
		}
	}

	return nil, false
}

func (c *PhraseCatalog) Add(phrase domain.QuickPhrase) (domain.QuickPhrase, error) {
	phrase.Label = strings.TrimSpace(phrase.Label)
	if phrase.Label == "" {
		return domain.QuickPhrase{}, fmt.Errorf("phrase label must not be empty")
	}
	if phrase.ID == "" {
		phrase.ID = uuid.NewString()
	}
	if phrase.Category == "" {
		phrase.Category = domain.CategorySocial
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.phrases = append(c.phrases, phrase)
	c.reindexLocked()

	if err := c.store.savePhrases(c.phrases); err != nil {
		return domain.QuickPhrase{}, fmt.Errorf("persisting phrases: %w", err)
	}
	return phrase, nil
}

func (c *PhraseCatalog) Remove(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.phrases[:0]
	removed := false
	for _, p := range c.phrases {
		if p.ID == id {
			removed = true
			continue
		}
		kept = append(kept, p)
	}
	if !removed {
		return fmt.Errorf("phrase %s not found", id)
	}

	c.phrases = kept
	c.reindexLocked()

	if err := c.store.savePhrases(c.phrases); err != nil {
		return fmt.Errorf("persisting phrases: %w", err)
	}
	return nil
}

func (c *PhraseCatalog) reindexLocked() {
	c.labelIndex = make(map[string]*domain.QuickPhrase, len(c.phrases))
	for i := range c.phrases {
		key := strings.ToLower(c.phrases[i].Label)
		c.labelIndex[key] = &c.phrases[i]
	}
}
