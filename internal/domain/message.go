package domain

import "time"

// Transcript is a single recognition or translation result. Transient;
// never persisted beyond the current screen.
type Transcript struct {
	Text            string
	Transliteration string
	Confidence      float64
	Timestamp       time.Time
}

type SignInterpretation struct {
	Text      string
	Timestamp time.Time
}

// Frame is one captured camera image.
type Frame struct {
	Data     []byte
	MIMEType string
}
