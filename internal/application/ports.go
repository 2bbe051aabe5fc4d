package application

import (
	"context"
	"time"

	"handspeak/internal/domain"
)

// Recognizer captures one utterance of ambient speech. Single-shot: each
// call returns at most one transcript.
type Recognizer interface {
	Listen(ctx context.Context) (domain.Transcript, error)
}

type SpeechRequest struct {
	Text        string
	Voice       string
	Rate        float64
	LanguageTag string
}

type Synthesizer interface {
	Speak(ctx context.Context, req SpeechRequest) error
}

// NoopSynthesizer is used when no speech backend is configured.
type NoopSynthesizer struct{}

func (NoopSynthesizer) Speak(_ context.Context, _ SpeechRequest) error { return nil }

// Camera is a scoped resource: Start on entering the relevant mode,
// Stop on leaving it, whether or not any capture succeeded.
type Camera interface {
	Start(ctx context.Context) error
	Stop() error
	CaptureFrame(ctx context.Context) (domain.Frame, error)
}

type Locator interface {
	CurrentPosition(ctx context.Context) (domain.Location, error)
}

type AlertSender interface {
	SendAlert(ctx context.Context, contact domain.EmergencyContact, message string) error
}

type NoopAlertSender struct{}

func (NoopAlertSender) SendAlert(_ context.Context, _ domain.EmergencyContact, _ string) error {
	return nil
}

type IntentLauncher interface {
	Launch(ctx context.Context, intent domain.Intent) error
}

type NoopLauncher struct{}

func (NoopLauncher) Launch(_ context.Context, _ domain.Intent) error { return nil }

type Haptics interface {
	Pulse(pattern ...time.Duration)
}

type NoopHaptics struct{}

func (NoopHaptics) Pulse(_ ...time.Duration) {}
