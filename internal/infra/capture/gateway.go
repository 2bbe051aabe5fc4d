package capture

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"handspeak/internal/domain"
)

// TextPayloadPrefix marks an utterance payload that is already text and
// needs no transcription.
const TextPayloadPrefix = "__TEXT__:"

var (
	ErrNoFix  = errors.New("no location fix received yet")
	ErrClosed = errors.New("capture source closed")
)

// TextPayload unwraps a direct-text utterance payload.
func TextPayload(data []byte) (string, bool) {
	if len(data) > len(TextPayloadPrefix) && string(data[:len(TextPayloadPrefix)]) == TextPayloadPrefix {
		return string(data[len(TextPayloadPrefix):]), true
	}
	return "", false
}

// DeviceGateway receives utterances, camera frames and location fixes
// from the companion device over HTTP. It acts as the utterance source,
// the frame source and the locator for the controller.
type DeviceGateway struct {
	addr      string
	authToken string
	router    *mux.Router
	server    *http.Server
	logger    *slog.Logger
	limiter   *RateLimiter

	utterances chan []byte
	frames     chan domain.Frame

	mu        sync.Mutex
	running   bool
	lastFix   *domain.Location
	closeOnce sync.Once
}

func NewDeviceGateway(addr, authToken string, logger *slog.Logger) *DeviceGateway {
	g := &DeviceGateway{
		addr:       addr,
		authToken:  authToken,
		router:     mux.NewRouter(),
		logger:     logger,
		limiter:    NewRateLimiter(30, time.Minute), // 30 requests per minute per IP
		utterances: make(chan []byte, 10),
		frames:     make(chan domain.Frame, 4),
	}

	g.router.HandleFunc("/utterance", g.protected(g.handleUtterance)).Methods(http.MethodPost)
	g.router.HandleFunc("/say", g.protected(g.handleSay)).Methods(http.MethodPost)
	g.router.HandleFunc("/frame", g.protected(g.handleFrame)).Methods(http.MethodPost)
	g.router.HandleFunc("/location", g.protected(g.handleLocation)).Methods(http.MethodPost)
	// No auth or rate limiting on health and metrics.
	g.router.HandleFunc("/health", g.handleHealth).Methods(http.MethodGet)
	g.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return g
}

func (g *DeviceGateway) Name() string {
	return "http"
}

func (g *DeviceGateway) Start(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.running {
		return nil
	}

	g.server = &http.Server{
		Addr:         g.addr,
		Handler:      g.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		g.logger.Info("device gateway starting", "addr", g.addr)
		if err := g.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			g.logger.Error("device gateway error", "error", err)
		}
	}()

	g.running = true
	return nil
}

func (g *DeviceGateway) Stop() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.running {
		return nil
	}

	if g.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := g.server.Shutdown(ctx); err != nil {
			g.logger.Warn("graceful shutdown failed, forcing close", "error", err)
			if err := g.server.Close(); err != nil {
				return fmt.Errorf("closing server: %w", err)
			}
		}
	}

	g.closeOnce.Do(func() {
		close(g.utterances)
		close(g.frames)
	})
	g.running = false
	return nil
}

func (g *DeviceGateway) NextUtterance(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case payload, ok := <-g.utterances:
		if !ok {
			return nil, ErrClosed
		}
		return payload, nil
	}
}

func (g *DeviceGateway) NextFrame(ctx context.Context) (domain.Frame, error) {
	select {
	case <-ctx.Done():
		return domain.Frame{}, ctx.Err()
	case frame, ok := <-g.frames:
		if !ok {
			return domain.Frame{}, ErrClosed
		}
		return frame, nil
	}
}

// CurrentPosition returns the device's most recent fix. ErrNoFix stands
// in for a denied or unresolved location permission.
func (g *DeviceGateway) CurrentPosition(_ context.Context) (domain.Location, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.lastFix == nil {
		return domain.Location{}, ErrNoFix
	}
	return *g.lastFix, nil
}

func (g *DeviceGateway) Handler() http.Handler {
	return g.router
}

func (g *DeviceGateway) InjectUtterance(data []byte) {
	select {
	case g.utterances <- data:
	default:
	}
}

func (g *DeviceGateway) InjectFrame(frame domain.Frame) {
	select {
	case g.frames <- frame:
	default:
	}
}

func (g *DeviceGateway) protected(next http.HandlerFunc) http.HandlerFunc {
	return g.limiter.Middleware(func(w http.ResponseWriter, r *http.Request) {
		if g.authToken != "" {
			token := r.Header.Get("X-Auth-Token")
			if token == "" {
				token = r.URL.Query().Get("token")
			}
			if token != g.authToken {
				g.logger.Warn("unauthorized device request", "path", r.URL.Path, "remote_addr", r.RemoteAddr)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	})
}

func (g *DeviceGateway) handleUtterance(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, 10*1024*1024))
	if err != nil {
		g.logger.Error("reading utterance body", "error", err)
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if len(data) == 0 {
		http.Error(w, "empty utterance", http.StatusBadRequest)
		return
	}

	select {
	case g.utterances <- data:
		g.logger.Info("received utterance", "bytes", len(data))
		w.WriteHeader(http.StatusAccepted)
		fmt.Fprintf(w, `{"status":"received","bytes":%d}`, len(data))
	default:
		http.Error(w, "queue full, try again", http.StatusServiceUnavailable)
	}
}

func (g *DeviceGateway) handleSay(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, 1024))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	text := string(data)
	if text == "" {
		http.Error(w, "empty text", http.StatusBadRequest)
		return
	}

	marker := []byte(TextPayloadPrefix + text)

	select {
	case g.utterances <- marker:
		g.logger.Info("received text utterance", "text", text)
		w.WriteHeader(http.StatusAccepted)
		fmt.Fprint(w, `{"status":"received"}`)
	default:
		http.Error(w, "queue full, try again", http.StatusServiceUnavailable)
	}
}

func (g *DeviceGateway) handleFrame(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, 5*1024*1024))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if len(data) == 0 {
		http.Error(w, "empty frame", http.StatusBadRequest)
		return
	}

	mimeType := r.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	select {
	case g.frames <- domain.Frame{Data: data, MIMEType: mimeType}:
		g.logger.Info("received frame", "bytes", len(data), "type", mimeType)
		w.WriteHeader(http.StatusAccepted)
		fmt.Fprintf(w, `{"status":"received","bytes":%d}`, len(data))
	default:
		http.Error(w, "frame queue full", http.StatusServiceUnavailable)
	}
}

func (g *DeviceGateway) handleLocation(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var fix struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, 1024)).Decode(&fix); err != nil {
		http.Error(w, "invalid location payload", http.StatusBadRequest)
		return
	}

	g.mu.Lock()
	g.lastFix = &domain.Location{Latitude: fix.Latitude, Longitude: fix.Longitude}
	g.mu.Unlock()

	w.WriteHeader(http.StatusAccepted)
	fmt.Fprint(w, `{"status":"received"}`)
}

func (g *DeviceGateway) handleHealth(w http.ResponseWriter, _ *http.Request) {
	g.mu.Lock()
	running := g.running
	queued := len(g.utterances)
	g.mu.Unlock()

	status := "ok"
	statusCode := http.StatusOK
	if !running {
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	fmt.Fprintf(w, `{"status":"%s","running":%t,"queue_size":%d}`, status, running, queued)
}
