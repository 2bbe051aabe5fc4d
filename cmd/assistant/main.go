package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"handspeak/config"
	"handspeak/internal/application"
	"handspeak/internal/domain"
	"handspeak/internal/infra/capture"
	"handspeak/internal/infra/companion"
	"handspeak/internal/infra/gemini"
	"handspeak/internal/infra/openai"
	"handspeak/internal/infra/sms"
	"handspeak/internal/infra/store"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.Log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutting down")
		cancel()
	}()

	aiClient := gemini.NewClient(cfg.Gemini.APIKey, logger)
	aiClient.SetModels(cfg.Gemini.TextModel, cfg.Gemini.VisionModel, cfg.Gemini.GroundingModel)

	whisperClient := openai.NewWhisperClient(cfg.OpenAI.APIKey, cfg.OpenAI.Language)

	var device *companion.Client
	if cfg.Companion.BaseURL != "" {
		device = companion.NewClient(cfg.Companion.BaseURL, cfg.Companion.Token)
	}

	var sink openai.AudioSink
	if device != nil {
		sink = device
	} else {
		sink = openai.NewFileSink(cfg.OpenAI.AudioDir)
	}
	speechClient := openai.NewSpeechClient(cfg.OpenAI.APIKey, sink)

	source, frames, locator := createCaptureSource(cfg, logger)
	if err := source.Start(ctx); err != nil {
		logger.Error("starting capture source", "error", err)
		os.Exit(1)
	}
	defer source.Stop()

	var camera application.Camera
	if frames != nil {
		camera = capture.NewCameraFeed(frames)
	}

	fileStore, err := store.NewFileStore(cfg.Store.Dir)
	if err != nil {
		logger.Error("opening store", "error", err)
		os.Exit(1)
	}
	catalog := store.NewPhraseCatalog(fileStore, logger)

	var alerts application.AlertSender
	if cfg.SMS.Enabled {
		alerts = sms.NewClient(cfg.SMS.GatewayURL, cfg.SMS.Token, cfg.SMS.From)
	}

	var launcher application.IntentLauncher
	var haptics application.Haptics
	if device != nil {
		launcher = device
		haptics = device
	}

	ctrl := application.NewController(application.Deps{
		Gateway:         aiClient,
		Recognizer:      capture.NewRecognizer(source, whisperClient),
		Synthesizer:     speechClient,
		Camera:          camera,
		Locator:         locator,
		Store:           fileStore,
		Phrases:         catalog,
		Alerts:          alerts,
		Launcher:        launcher,
		Haptics:         haptics,
		UIDefaults:      application.DefaultUIStrings,
		BuiltinStrings:  application.BuiltinUIStrings,
		EmergencyNumber: cfg.SOS.EmergencyNumber,
	}, logger)

	if err := ctrl.Start(ctx); err != nil {
		logger.Error("starting controller", "error", err)
		os.Exit(1)
	}

	logger.Info("assistant ready",
		"capture_source", source.Name(),
		"companion", device != nil,
	)

	ctrl.SetMode(ctx, domain.ModeTalkListen)

	for ctx.Err() == nil {
		if err := ctrl.Listen(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				break
			}
			logger.Warn("listen session failed", "error", err)
			continue
		}

		state := ctrl.Snapshot()
		if state.Transcript != nil {
			logger.Info("heard",
				"text", state.Transcript.Text,
				"confidence", state.Transcript.Confidence,
			)
		}
	}
}

func createCaptureSource(cfg *config.Config, logger *slog.Logger) (capture.UtteranceSource, capture.FrameSource, application.Locator) {
	fallback := capture.StaticLocator{Location: domain.Location{
		Latitude:  cfg.Location.Latitude,
		Longitude: cfg.Location.Longitude,
	}}

	switch cfg.Capture.Source {
	case "http":
		gw := capture.NewDeviceGateway(cfg.Capture.HTTPAddr, cfg.Capture.AuthToken, logger)
		return gw, gw, gw
	case "file":
		fs := capture.NewFileSource(cfg.Capture.FileDir)
		return fs, fs, fallback
	case "microphone":
		mic := capture.NewMicrophoneSource(cfg.Capture.SampleRate, cfg.Capture.RecordSeconds, logger)
		return mic, nil, fallback
	default:
		logger.Warn("unknown capture source, using http", "source", cfg.Capture.Source)
		gw := capture.NewDeviceGateway(cfg.Capture.HTTPAddr, cfg.Capture.AuthToken, logger)
		return gw, gw, gw
	}
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
