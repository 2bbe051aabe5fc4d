package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Gemini    GeminiConfig    `yaml:"gemini"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Capture   CaptureConfig   `yaml:"capture"`
	Companion CompanionConfig `yaml:"companion"`
	Store     StoreConfig     `yaml:"store"`
	SMS       SMSConfig       `yaml:"sms"`
	SOS       SOSConfig       `yaml:"sos"`
	Location  LocationConfig  `yaml:"location"`
	Log       LogConfig       `yaml:"log"`
}

// CompanionConfig points at the companion device's local API for
// playing audio, launching intents and vibrating. Empty URL disables
// the outbound link.
type CompanionConfig struct {
	BaseURL string `yaml:"base_url"`
	Token   string `yaml:"token"`
}

type GeminiConfig struct {
	APIKey         string `yaml:"api_key"`
	TextModel      string `yaml:"text_model"`
	VisionModel    string `yaml:"vision_model"`
	GroundingModel string `yaml:"grounding_model"`
}

type OpenAIConfig struct {
	APIKey   string  `yaml:"api_key"`
	Language string  `yaml:"language"`
	Voice    string  `yaml:"voice"`
	Rate     float64 `yaml:"rate"`
	AudioDir string  `yaml:"audio_dir"`
}

type CaptureConfig struct {
	Source        string `yaml:"source"`
	HTTPAddr      string `yaml:"http_addr"`
	AuthToken     string `yaml:"auth_token"`
	FileDir       string `yaml:"file_dir"`
	SampleRate    int    `yaml:"sample_rate"`
	RecordSeconds int    `yaml:"record_seconds"`
}

type StoreConfig struct {
	Dir string `yaml:"dir"`
}

type SMSConfig struct {
	GatewayURL string `yaml:"gateway_url"`
	Token      string `yaml:"token"`
	From       string `yaml:"from"`
	Enabled    bool   `yaml:"enabled"`
}

type SOSConfig struct {
	EmergencyNumber string `yaml:"emergency_number"`
}

type LocationConfig struct {
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.setDefaults()

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Gemini.TextModel == "" {
		c.Gemini.TextModel = "gemini-2.0-flash"
	}
	if c.Gemini.VisionModel == "" {
		c.Gemini.VisionModel = "gemini-2.0-flash"
	}
	if c.Gemini.GroundingModel == "" {
		c.Gemini.GroundingModel = "gemini-2.0-flash"
	}
	if c.OpenAI.Voice == "" {
		c.OpenAI.Voice = "alloy"
	}
	if c.OpenAI.Rate == 0 {
		c.OpenAI.Rate = 1.0
	}
	if c.OpenAI.AudioDir == "" {
		c.OpenAI.AudioDir = "./speech"
	}
	if c.Capture.Source == "" {
		c.Capture.Source = "http"
	}
	if c.Capture.HTTPAddr == "" {
		c.Capture.HTTPAddr = ":8080"
	}
	if c.Capture.FileDir == "" {
		c.Capture.FileDir = "./capture"
	}
	if c.Capture.SampleRate == 0 {
		c.Capture.SampleRate = 16000
	}
	if c.Capture.RecordSeconds == 0 {
		c.Capture.RecordSeconds = 5
	}
	if c.Store.Dir == "" {
		c.Store.Dir = "./data"
	}
	if c.SOS.EmergencyNumber == "" {
		c.SOS.EmergencyNumber = "112"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}
