package capture

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"handspeak/internal/domain"
)

// FileSource polls a directory for new audio and image files, useful for
// development and replaying recorded sessions.
type FileSource struct {
	dir       string
	mu        sync.Mutex
	processed map[string]bool
}

func NewFileSource(dir string) *FileSource {
	return &FileSource{
		dir:       dir,
		processed: make(map[string]bool),
	}
}

func (f *FileSource) Name() string {
	return "file"
}

func (f *FileSource) Start(_ context.Context) error {
	if err := os.MkdirAll(f.dir, 0755); err != nil {
		return fmt.Errorf("creating capture dir: %w", err)
	}
	return nil
}

func (f *FileSource) Stop() error {
	return nil
}

func (f *FileSource) NextUtterance(ctx context.Context) ([]byte, error) {
	frame, err := f.next(ctx, isAudioFile)
	if err != nil {
		return nil, err
	}
	return frame.Data, nil
}

func (f *FileSource) NextFrame(ctx context.Context) (domain.Frame, error) {
	return f.next(ctx, isImageFile)
}

func (f *FileSource) next(ctx context.Context, match func(string) bool) (domain.Frame, error) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return domain.Frame{}, ctx.Err()
		case <-ticker.C:
			frame, found, err := f.checkForNewFile(match)
			if err != nil {
				return domain.Frame{}, err
			}
			if found {
				return frame, nil
			}
		}
	}
}

func (f *FileSource) checkForNewFile(match func(string) bool) (domain.Frame, bool, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return domain.Frame{}, false, fmt.Errorf("reading capture dir: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if f.processed[name] || !match(name) {
			continue
		}

		path := filepath.Join(f.dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return domain.Frame{}, false, fmt.Errorf("reading %s: %w", path, err)
		}

		f.processed[name] = true
		return domain.Frame{Data: data, MIMEType: mimeForFile(name)}, true, nil
	}

	return domain.Frame{}, false, nil
}

func isAudioFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".wav", ".ogg", ".mp3", ".flac":
		return true
	}
	return false
}

func isImageFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png", ".webp":
		return true
	}
	return false
}

func mimeForFile(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".wav":
		return "audio/wav"
	case ".ogg":
		return "audio/ogg"
	case ".mp3":
		return "audio/mpeg"
	case ".flac":
		return "audio/flac"
	}
	return "application/octet-stream"
}
