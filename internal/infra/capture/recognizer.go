package capture

import (
	"context"
	"fmt"
	"time"

	"handspeak/internal/domain"
)

// UtteranceSource delivers one speech payload per call: raw audio or a
// text payload carrying the TextPayloadPrefix marker.
type UtteranceSource interface {
	Start(ctx context.Context) error
	Stop() error
	NextUtterance(ctx context.Context) ([]byte, error)
	Name() string
}

type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (domain.Transcript, error)
}

// Recognizer assembles an utterance source and a transcriber into the
// controller's single-shot recognition facility.
type Recognizer struct {
	source UtteranceSource
	stt    Transcriber
}

func NewRecognizer(source UtteranceSource, stt Transcriber) *Recognizer {
	return &Recognizer{source: source, stt: stt}
}

func (r *Recognizer) Listen(ctx context.Context) (domain.Transcript, error) {
	payload, err := r.source.NextUtterance(ctx)
	if err != nil {
		return domain.Transcript{}, fmt.Errorf("acquiring utterance: %w", err)
	}

	// Text payloads skip transcription and are fully trusted.
	if text, ok := TextPayload(payload); ok {
		return domain.Transcript{Text: text, Confidence: 1, Timestamp: time.Now()}, nil
	}

	transcript, err := r.stt.Transcribe(ctx, payload)
	if err != nil {
		return domain.Transcript{}, fmt.Errorf("transcribing: %w", err)
	}
	return transcript, nil
}
