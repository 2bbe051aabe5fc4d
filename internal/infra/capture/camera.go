package capture

import (
	"context"
	"errors"
	"sync"

	"handspeak/internal/domain"
)

var ErrCameraStopped = errors.New("camera feed not active")

type FrameSource interface {
	NextFrame(ctx context.Context) (domain.Frame, error)
}

// CameraFeed scopes a frame source to a mode's lifetime. Stop takes
// effect immediately: captures after Stop are rejected rather than
// holding the source open.
type CameraFeed struct {
	source FrameSource

	mu     sync.Mutex
	active bool
}

func NewCameraFeed(source FrameSource) *CameraFeed {
	return &CameraFeed{source: source}
}

func (c *CameraFeed) Start(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = true
	return nil
}

func (c *CameraFeed) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = false
	return nil
}

func (c *CameraFeed) CaptureFrame(ctx context.Context) (domain.Frame, error) {
	c.mu.Lock()
	active := c.active
	c.mu.Unlock()

	if !active {
		return domain.Frame{}, ErrCameraStopped
	}
	return c.source.NextFrame(ctx)
}

// StaticLocator serves a fixed position, used when no device feed is
// available.
type StaticLocator struct {
	Location domain.Location
}

func (s StaticLocator) CurrentPosition(_ context.Context) (domain.Location, error) {
	return s.Location, nil
}
