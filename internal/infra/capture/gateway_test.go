package capture_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"handspeak/internal/domain"
	"handspeak/internal/infra/capture"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDeviceGateway_ReceiveUtterance(t *testing.T) {
	gw := capture.NewDeviceGateway(":0", "", discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	testAudio := []byte("fake audio data for testing")

	go func() {
		time.Sleep(100 * time.Millisecond)
		gw.InjectUtterance(testAudio)
	}()

	received, err := gw.NextUtterance(ctx)
	if err != nil {
		t.Fatalf("receiving utterance: %v", err)
	}

	if !bytes.Equal(received, testAudio) {
		t.Errorf("utterance mismatch: got %d bytes, want %d bytes", len(received), len(testAudio))
	}
}

func TestDeviceGateway_SayEndpointWrapsText(t *testing.T) {
	gw := capture.NewDeviceGateway(":0", "", discardLogger())
	handler := gw.Handler()

	req := httptest.NewRequest(http.MethodPost, "/say", strings.NewReader("I need a doctor"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status code: got %d, want %d", rec.Code, http.StatusAccepted)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	payload, err := gw.NextUtterance(ctx)
	if err != nil {
		t.Fatalf("receiving text utterance: %v", err)
	}

	text, ok := capture.TextPayload(payload)
	if !ok {
		t.Fatalf("payload not marked as text: %q", payload)
	}
	if text != "I need a doctor" {
		t.Errorf("text: got %q, want %q", text, "I need a doctor")
	}
}

func TestDeviceGateway_FrameEndpoint(t *testing.T) {
	gw := capture.NewDeviceGateway(":0", "", discardLogger())
	handler := gw.Handler()

	frameData := []byte("jpeg bytes")
	req := httptest.NewRequest(http.MethodPost, "/frame", bytes.NewReader(frameData))
	req.Header.Set("Content-Type", "image/png")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status code: got %d, want %d", rec.Code, http.StatusAccepted)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	frame, err := gw.NextFrame(ctx)
	if err != nil {
		t.Fatalf("receiving frame: %v", err)
	}
	if !bytes.Equal(frame.Data, frameData) {
		t.Errorf("frame data mismatch: got %d bytes, want %d", len(frame.Data), len(frameData))
	}
	if frame.MIMEType != "image/png" {
		t.Errorf("mime type: got %q, want %q", frame.MIMEType, "image/png")
	}
}

func TestDeviceGateway_LocationEndpoint(t *testing.T) {
	gw := capture.NewDeviceGateway(":0", "", discardLogger())
	handler := gw.Handler()

	if _, err := gw.CurrentPosition(context.Background()); err != capture.ErrNoFix {
		t.Fatalf("expected ErrNoFix before any fix, got %v", err)
	}

	body := strings.NewReader(`{"latitude":12.34567,"longitude":56.789}`)
	req := httptest.NewRequest(http.MethodPost, "/location", body)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status code: got %d, want %d", rec.Code, http.StatusAccepted)
	}

	loc, err := gw.CurrentPosition(context.Background())
	if err != nil {
		t.Fatalf("current position: %v", err)
	}
	if loc.Latitude != 12.34567 || loc.Longitude != 56.789 {
		t.Errorf("fix mismatch: got %+v", loc)
	}
}

func TestDeviceGateway_AuthToken(t *testing.T) {
	authToken := "test-secret-token-123"
	gw := capture.NewDeviceGateway(":0", authToken, discardLogger())
	handler := gw.Handler()

	tests := []struct {
		name       string
		token      string
		method     string
		wantStatus int
	}{
		{
			name:       "valid token in header",
			token:      authToken,
			method:     "header",
			wantStatus: http.StatusAccepted,
		},
		{
			name:       "valid token in query",
			token:      authToken,
			method:     "query",
			wantStatus: http.StatusAccepted,
		},
		{
			name:       "invalid token",
			token:      "wrong-token",
			method:     "header",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "missing token",
			token:      "",
			method:     "header",
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := []byte("help me please")
			var req *http.Request

			if tt.method == "query" {
				req = httptest.NewRequest(http.MethodPost, "/say?token="+tt.token, bytes.NewReader(body))
			} else {
				req = httptest.NewRequest(http.MethodPost, "/say", bytes.NewReader(body))
				if tt.token != "" {
					req.Header.Set("X-Auth-Token", tt.token)
				}
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status code: got %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestDeviceGateway_NoTokenConfigured(t *testing.T) {
	gw := capture.NewDeviceGateway(":0", "", discardLogger())
	handler := gw.Handler()

	req := httptest.NewRequest(http.MethodPost, "/say", strings.NewReader("hello"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	// Auth is disabled when no token is configured.
	if rec.Code != http.StatusAccepted {
		t.Errorf("status code: got %d, want %d", rec.Code, http.StatusAccepted)
	}
}

func TestDeviceGateway_HealthEndpoint(t *testing.T) {
	gw := capture.NewDeviceGateway(":0", "secret", discardLogger())
	handler := gw.Handler()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	// Not started yet, so the gateway reports not ready. Health needs no token.
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status code: got %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
	if !strings.Contains(rec.Body.String(), "not_ready") {
		t.Errorf("body: got %q, want it to mention not_ready", rec.Body.String())
	}
}

func TestFileSource_LoadFromDirectory(t *testing.T) {
	tmpDir := t.TempDir()

	files := []struct {
		filename string
		content  []byte
	}{
		{"utterance1.wav", []byte("RIFF....WAVEfmt audio data 1")},
		{"utterance2.wav", []byte("RIFF....WAVEfmt audio data 2")},
	}

	for _, f := range files {
		path := filepath.Join(tmpDir, f.filename)
		if err := os.WriteFile(path, f.content, 0644); err != nil {
			t.Fatalf("writing test file: %v", err)
		}
	}

	source := capture.NewFileSource(tmpDir)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := source.Start(ctx); err != nil {
		t.Fatalf("starting source: %v", err)
	}

	first, err := source.NextUtterance(ctx)
	if err != nil {
		t.Fatalf("reading first utterance: %v", err)
	}
	if len(first) == 0 {
		t.Error("first utterance is empty")
	}

	second, err := source.NextUtterance(ctx)
	if err != nil {
		t.Fatalf("reading second utterance: %v", err)
	}
	if len(second) == 0 {
		t.Error("second utterance is empty")
	}
}

func TestFileSource_NextFrameDetectsMIME(t *testing.T) {
	tmpDir := t.TempDir()

	path := filepath.Join(tmpDir, "sign.png")
	if err := os.WriteFile(path, []byte("png bytes"), 0644); err != nil {
		t.Fatalf("writing test file: %v", err)
	}

	source := capture.NewFileSource(tmpDir)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := source.Start(ctx); err != nil {
		t.Fatalf("starting source: %v", err)
	}

	frame, err := source.NextFrame(ctx)
	if err != nil {
		t.Fatalf("reading frame: %v", err)
	}
	if frame.MIMEType != "image/png" {
		t.Errorf("mime type: got %q, want %q", frame.MIMEType, "image/png")
	}
}

func TestCameraFeed_RejectsCaptureAfterStop(t *testing.T) {
	source := frameSourceFunc(func(_ context.Context) (domain.Frame, error) {
		return domain.Frame{Data: []byte("f"), MIMEType: "image/jpeg"}, nil
	})
	feed := capture.NewCameraFeed(source)

	ctx := context.Background()

	if _, err := feed.CaptureFrame(ctx); err != capture.ErrCameraStopped {
		t.Fatalf("expected ErrCameraStopped before Start, got %v", err)
	}

	if err := feed.Start(ctx); err != nil {
		t.Fatalf("starting feed: %v", err)
	}
	if _, err := feed.CaptureFrame(ctx); err != nil {
		t.Fatalf("capture while active: %v", err)
	}

	if err := feed.Stop(); err != nil {
		t.Fatalf("stopping feed: %v", err)
	}
	if _, err := feed.CaptureFrame(ctx); err != capture.ErrCameraStopped {
		t.Errorf("expected ErrCameraStopped after Stop, got %v", err)
	}
}

type frameSourceFunc func(ctx context.Context) (domain.Frame, error)

func (f frameSourceFunc) NextFrame(ctx context.Context) (domain.Frame, error) {
	return f(ctx)
}
