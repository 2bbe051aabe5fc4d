package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"time"

	"handspeak/internal/domain"
	"handspeak/internal/infra"
)

// WhisperClient transcribes recorded utterances via the OpenAI Whisper
// API. Leaving language empty lets the model auto-detect, which is what
// the talk mode needs when the speaker's language is unknown.
type WhisperClient struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	language   string
}

func NewWhisperClient(apiKey, language string) *WhisperClient {
	return &WhisperClient{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    "https://api.openai.com/v1",
		language:   language,
	}
}

// SetBaseURL overrides the API endpoint, for tests.
func (c *WhisperClient) SetBaseURL(url string) {
	c.baseURL = url
}

type transcriptionSegment struct {
	AvgLogprob float64 `json:"avg_logprob"`
}

type transcriptionResponse struct {
	Text     string                 `json:"text"`
	Language string                 `json:"language"`
	Segments []transcriptionSegment `json:"segments"`
}

func (c *WhisperClient) Transcribe(ctx context.Context, audio []byte) (domain.Transcript, error) {
	var result transcriptionResponse

	retryErr := infra.WithRetry(ctx, infra.DefaultRetryConfig(), func() error {
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)

		part, err := writer.CreateFormFile("file", "audio.wav")
		if err != nil {
			return fmt.Errorf("creating form file: %w", err)
		}

		if _, err = part.Write(audio); err != nil {
			return fmt.Errorf("writing audio: %w", err)
		}

		if err = writer.WriteField("model", "whisper-1"); err != nil {
			return fmt.Errorf("writing model field: %w", err)
		}

		if err = writer.WriteField("response_format", "verbose_json"); err != nil {
			return fmt.Errorf("writing response_format field: %w", err)
		}

		if c.language != "" {
			if err = writer.WriteField("language", c.language); err != nil {
				return fmt.Errorf("writing language field: %w", err)
			}
		}

		if err = writer.Close(); err != nil {
			return fmt.Errorf("closing writer: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio/transcriptions", body)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}

		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Content-Type", writer.FormDataContentType())

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("sending request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			respBody, _ := io.ReadAll(resp.Body)
			if infra.IsRetryableHTTPStatus(resp.StatusCode) {
				return fmt.Errorf("whisper API error %d: %s (retryable)", resp.StatusCode, string(respBody))
			}
			return fmt.Errorf("whisper API error %d: %s", resp.StatusCode, string(respBody))
		}

		if err = json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}

		return nil
	})

	if retryErr != nil {
		return domain.Transcript{}, retryErr
	}

	return domain.Transcript{
		Text:       result.Text,
		Confidence: confidenceFromSegments(result.Segments),
		Timestamp:  time.Now(),
	}, nil
}

// confidenceFromSegments turns the per-segment average log probability
// into a 0..1 confidence score. Without segments there is nothing to
// measure, so the transcript is taken at face value.
func confidenceFromSegments(segments []transcriptionSegment) float64 {
	if len(segments) == 0 {
		return 1.0
	}

	var sum float64
	for _, s := range segments {
		sum += s.AvgLogprob
	}
	confidence := math.Exp(sum / float64(len(segments)))

	if confidence > 1.0 {
		confidence = 1.0
	}
	if confidence < 0 {
		confidence = 0
	}
	return confidence
}
