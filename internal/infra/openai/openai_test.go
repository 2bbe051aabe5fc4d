package openai_test

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"handspeak/internal/application"
	"handspeak/internal/infra/openai"
)

func TestWhisperClient_Transcribe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/transcriptions" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		if got := r.FormValue("response_format"); got != "verbose_json" {
			t.Errorf("response_format: got %q, want verbose_json", got)
		}

		response := map[string]any{
			"text":     "where is the pharmacy",
			"language": "english",
			"segments": []map[string]any{
				{"avg_logprob": -0.2},
				{"avg_logprob": -0.4},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	client := openai.NewWhisperClient("test-key", "")
	client.SetBaseURL(server.URL)

	transcript, err := client.Transcribe(context.Background(), []byte("RIFF fake wav"))
	if err != nil {
		t.Fatalf("Transcribe error: %v", err)
	}

	if transcript.Text != "where is the pharmacy" {
		t.Errorf("Text: got %q, want %q", transcript.Text, "where is the pharmacy")
	}

	want := math.Exp(-0.3)
	if math.Abs(transcript.Confidence-want) > 1e-9 {
		t.Errorf("Confidence: got %f, want %f", transcript.Confidence, want)
	}
}

func TestWhisperClient_NoSegmentsFullConfidence(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"text": "hello"})
	}))
	defer server.Close()

	client := openai.NewWhisperClient("test-key", "en")
	client.SetBaseURL(server.URL)

	transcript, err := client.Transcribe(context.Background(), []byte("audio"))
	if err != nil {
		t.Fatalf("Transcribe error: %v", err)
	}

	if transcript.Confidence != 1.0 {
		t.Errorf("Confidence: got %f, want 1.0", transcript.Confidence)
	}
}

type captureSink struct {
	audio []byte
}

func (s *captureSink) Play(_ context.Context, audio []byte) error {
	s.audio = audio
	return nil
}

func TestSpeechClient_Speak(t *testing.T) {
	wantAudio := []byte("mp3 bytes")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/speech" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}

		var req struct {
			Model string  `json:"model"`
			Voice string  `json:"voice"`
			Input string  `json:"input"`
			Speed float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		if req.Voice != "nova" {
			t.Errorf("voice: got %q, want nova", req.Voice)
		}
		if req.Speed != 1.25 {
			t.Errorf("speed: got %f, want 1.25", req.Speed)
		}

		w.Write(wantAudio)
	}))
	defer server.Close()

	sink := &captureSink{}
	client := openai.NewSpeechClientWithURL("test-key", server.URL, sink)

	err := client.Speak(context.Background(), application.SpeechRequest{
		Text:  "I need water",
		Voice: "nova",
		Rate:  1.25,
	})
	if err != nil {
		t.Fatalf("Speak error: %v", err)
	}

	if !bytes.Equal(sink.audio, wantAudio) {
		t.Errorf("sink audio mismatch: got %d bytes, want %d", len(sink.audio), len(wantAudio))
	}
}

func TestSpeechClient_EmptyTextIsNoop(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := openai.NewSpeechClientWithURL("test-key", server.URL, &captureSink{})

	if err := client.Speak(context.Background(), application.SpeechRequest{Text: ""}); err != nil {
		t.Fatalf("Speak error: %v", err)
	}
	if called {
		t.Error("expected no API call for empty text")
	}
}

func TestFileSink_WritesAudio(t *testing.T) {
	dir := t.TempDir()
	sink := openai.NewFileSink(filepath.Join(dir, "out"))

	if err := sink.Play(context.Background(), []byte("audio")); err != nil {
		t.Fatalf("Play error: %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(dir, "out"))
	if err != nil {
		t.Fatalf("reading sink dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("files written: got %d, want 1", len(entries))
	}
}
