package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"handspeak/internal/application"
	"handspeak/internal/infra"
)

// AudioSink receives synthesized audio and gets it to the ear of the
// hearing party, whatever that means on the current device.
type AudioSink interface {
	Play(ctx context.Context, audio []byte) error
}

// SpeechClient voices typed or selected text via the OpenAI speech API.
type SpeechClient struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	model      string
	sink       AudioSink
}

func NewSpeechClient(apiKey string, sink AudioSink) *SpeechClient {
	return NewSpeechClientWithURL(apiKey, "https://api.openai.com/v1", sink)
}

func NewSpeechClientWithURL(apiKey, baseURL string, sink AudioSink) *SpeechClient {
	return &SpeechClient{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		model:      "tts-1",
		sink:       sink,
	}
}

type speechRequest struct {
	Model string  `json:"model"`
	Voice string  `json:"voice"`
	Input string  `json:"input"`
	Speed float64 `json:"speed,omitempty"`
}

func (c *SpeechClient) Speak(ctx context.Context, req application.SpeechRequest) error {
	if req.Text == "" {
		return nil
	}

	voice := req.Voice
	if voice == "" {
		voice = "alloy"
	}

	reqBody := speechRequest{
		Model: c.model,
		Voice: voice,
		Input: req.Text,
		Speed: req.Rate,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	var audio []byte
	retryErr := infra.WithRetry(ctx, infra.DefaultRetryConfig(), func() error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio/speech", bytes.NewReader(bodyBytes))
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}

		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			return fmt.Errorf("sending request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			respBody, _ := io.ReadAll(resp.Body)
			if infra.IsRetryableHTTPStatus(resp.StatusCode) {
				return fmt.Errorf("speech API error %d: %s (retryable)", resp.StatusCode, string(respBody))
			}
			return fmt.Errorf("speech API error %d: %s", resp.StatusCode, string(respBody))
		}

		audio, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading audio: %w", err)
		}
		return nil
	})

	if retryErr != nil {
		return retryErr
	}

	return c.sink.Play(ctx, audio)
}

// FileSink writes synthesized audio to a directory so an external
// player (or the companion device) can pick it up.
type FileSink struct {
	dir string
}

func NewFileSink(dir string) *FileSink {
	return &FileSink{dir: dir}
}

func (s *FileSink) Play(_ context.Context, audio []byte) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("creating audio directory: %w", err)
	}

	name := fmt.Sprintf("speech-%d.mp3", time.Now().UnixNano())
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, audio, 0644); err != nil {
		return fmt.Errorf("writing audio file: %w", err)
	}
	return nil
}
