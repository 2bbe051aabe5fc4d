package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"handspeak/internal/domain"
	"handspeak/internal/infra"
	"handspeak/internal/infra/metrics"
)

// Fixed reply strings for the sign interpreter, distinguishing an empty
// model reply from a failed call.
const (
	SignEmptyReply = "Recognition failed."
	SignCallError  = "Error interpreting sign."
)

// NearbyErrorSummary is returned when a nearby-places lookup fails.
const NearbyErrorSummary = "Could not fetch nearby places. Please try again."

// Client is the AI gateway. Every operation issues one generateContent
// call and folds failures into a deterministic fallback value, so callers
// never deal with errors. A fresh HTTP client is constructed per call so
// credential rotation takes effect immediately.
type Client struct {
	apiKey         string
	baseURL        string
	textModel      string
	visionModel    string
	groundingModel string
	timeout        time.Duration
	logger         *slog.Logger
}

func NewClient(apiKey string, logger *slog.Logger) *Client {
	return NewClientWithURL(apiKey, "https://generativelanguage.googleapis.com/v1beta", logger)
}

func NewClientWithURL(apiKey, baseURL string, logger *slog.Logger) *Client {
	return &Client{
		apiKey:         apiKey,
		baseURL:        baseURL,
		textModel:      "gemini-2.0-flash",
		visionModel:    "gemini-2.0-flash",
		groundingModel: "gemini-2.0-flash",
		timeout:        30 * time.Second,
		logger:         logger,
	}
}

// SetModels overrides the default model per capability. Empty values keep
// the current selection.
func (c *Client) SetModels(text, vision, grounding string) {
	if text != "" {
		c.textModel = text
	}
	if vision != "" {
		c.visionModel = vision
	}
	if grounding != "" {
		c.groundingModel = grounding
	}
}

type content struct {
	Parts []part `json:"parts"`
	Role  string `json:"role,omitempty"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type schema struct {
	Type       string             `json:"type"`
	Properties map[string]*schema `json:"properties,omitempty"`
	Required   []string           `json:"required,omitempty"`
}

type thinkingConfig struct {
	ThinkingBudget int `json:"thinkingBudget"`
}

type generationConfig struct {
	MaxOutputTokens  int             `json:"maxOutputTokens,omitempty"`
	Temperature      float64         `json:"temperature"`
	ResponseMIMEType string          `json:"responseMimeType,omitempty"`
	ResponseSchema   *schema         `json:"responseSchema,omitempty"`
	ThinkingConfig   *thinkingConfig `json:"thinkingConfig,omitempty"`
}

type latLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type retrievalConfig struct {
	LatLng latLng `json:"latLng"`
}

type toolConfig struct {
	RetrievalConfig *retrievalConfig `json:"retrievalConfig,omitempty"`
}

type tool struct {
	GoogleMaps *struct{} `json:"googleMaps,omitempty"`
}

type request struct {
	Contents         []content        `json:"contents"`
	SystemInstruct   *content         `json:"systemInstruction,omitempty"`
	GenerationConfig generationConfig `json:"generationConfig"`
	Tools            []tool           `json:"tools,omitempty"`
	ToolConfig       *toolConfig      `json:"toolConfig,omitempty"`
}

type groundingChunk struct {
	Maps *struct {
		Title string `json:"title"`
		URI   string `json:"uri"`
	} `json:"maps,omitempty"`
}

type groundingMetadata struct {
	GroundingChunks []groundingChunk `json:"groundingChunks"`
}

type response struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		GroundingMetadata *groundingMetadata `json:"groundingMetadata,omitempty"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error,omitempty"`
}

func (c *Client) generate(ctx context.Context, model string, reqBody request) (*response, error) {
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	// A new client per call: rotated API keys apply on the next request.
	httpClient := &http.Client{Timeout: c.timeout}

	var result response
	retryErr := infra.WithRetry(ctx, infra.DefaultRetryConfig(), func() error {
		url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, model, c.apiKey)
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}

		req.Header.Set("Content-Type", "application/json")

		resp, err := httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("sending request: %w", err)
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading response: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			if infra.IsRetryableHTTPStatus(resp.StatusCode) {
				return fmt.Errorf("gemini API error %d: %s (retryable)", resp.StatusCode, string(respBody))
			}
			return fmt.Errorf("gemini API error %d: %s", resp.StatusCode, string(respBody))
		}

		if err = json.Unmarshal(respBody, &result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}

		return nil
	})

	if retryErr != nil {
		return nil, retryErr
	}

	if result.Error != nil {
		return nil, fmt.Errorf("gemini error: %s", result.Error.Message)
	}

	return &result, nil
}

// generateText runs a plain prompt and returns the first candidate's text,
// trimmed, with markdown fences stripped.
func (c *Client) generateText(ctx context.Context, model string, reqBody request) (string, error) {
	result, err := c.generate(ctx, model, reqBody)
	if err != nil {
		return "", err
	}
	return firstText(result), nil
}

func firstText(result *response) string {
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return ""
	}
	text := strings.TrimSpace(result.Candidates[0].Content.Parts[0].Text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

func textRequest(prompt string, maxTokens int) request {
	return request{
		Contents: []content{
			{Role: "user", Parts: []part{{Text: prompt}}},
		},
		GenerationConfig: generationConfig{
			MaxOutputTokens: maxTokens,
			Temperature:     0.1,
		},
	}
}

func (c *Client) observe(op string, start time.Time, ok bool, err error) {
	outcome := metrics.OutcomeOK
	if !ok {
		outcome = metrics.OutcomeFallback
		c.logger.Warn("gateway call degraded to fallback", "operation", op, "error", err)
	}
	metrics.ObserveGatewayCall(op, outcome, time.Since(start))
}

// DetectLanguage returns the BCP 47 tag of the text's language, or
// "en-US" for empty input or on failure.
func (c *Client) DetectLanguage(ctx context.Context, text string) string {
	if strings.TrimSpace(text) == "" {
		return domain.DefaultLanguage.Code
	}

	prompt := fmt.Sprintf(`Identify the language of the following text. Respond with ONLY the IETF BCP 47 language tag (for example "en-US" or "hi-IN"), nothing else.

Text: %s`, text)

	start := time.Now()
	reply, err := c.generateText(ctx, c.textModel, textRequest(prompt, 16))
	c.observe("detect_language", start, err == nil && reply != "", err)
	if err != nil || reply == "" {
		return domain.DefaultLanguage.Code
	}
	return reply
}

// LanguageFromLocation guesses the dominant local language for the
// coordinates. Falls back to "en-US".
func (c *Client) LanguageFromLocation(ctx context.Context, lat, lng float64) string {
	prompt := fmt.Sprintf(`What is the dominant spoken language at latitude %.5f, longitude %.5f? Respond with ONLY the IETF BCP 47 language tag, nothing else.`, lat, lng)

	start := time.Now()
	reply, err := c.generateText(ctx, c.textModel, textRequest(prompt, 16))
	c.observe("language_from_location", start, err == nil && reply != "", err)
	if err != nil || reply == "" {
		return domain.DefaultLanguage.Code
	}
	return reply
}

// ReverseGeocode returns a short place description in the target
// language, or the formatted coordinates on failure.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lng float64, targetLanguage string) string {
	loc := domain.Location{Latitude: lat, Longitude: lng}
	if targetLanguage == "" {
		targetLanguage = domain.DefaultLanguage.Name
	}

	prompt := fmt.Sprintf(`Describe the place at latitude %.5f, longitude %.5f in one short phrase (neighborhood, city, country), in %s. Respond with only the description.`, lat, lng, targetLanguage)

	start := time.Now()
	reply, err := c.generateText(ctx, c.textModel, textRequest(prompt, 64))
	c.observe("reverse_geocode", start, err == nil && reply != "", err)
	if err != nil || reply == "" {
		return loc.FallbackString()
	}
	return reply
}

// TranslateText translates into the target language. Empty input returns
// the empty string with no call; failure returns the input unchanged so
// the user's message is never lost.
func (c *Client) TranslateText(ctx context.Context, text, targetLanguage string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	prompt := fmt.Sprintf(`Translate the following text into %s. Respond with ONLY the translation, no explanations.

Text: %s`, targetLanguage, text)

	start := time.Now()
	reply, err := c.generateText(ctx, c.textModel, textRequest(prompt, 512))
	c.observe("translate_text", start, err == nil && reply != "", err)
	if err != nil || reply == "" {
		return text
	}
	return reply
}

// TransliterateText renders the text in the target language's script.
// Empty text or target returns the input unchanged, as does failure.
func (c *Client) TransliterateText(ctx context.Context, text, targetLanguage string) string {
	if strings.TrimSpace(text) == "" || strings.TrimSpace(targetLanguage) == "" {
		return text
	}

	prompt := fmt.Sprintf(`Transliterate the following text into the native script of %s, preserving pronunciation. Respond with ONLY the transliterated text.

Text: %s`, targetLanguage, text)

	start := time.Now()
	reply, err := c.generateText(ctx, c.textModel, textRequest(prompt, 512))
	c.observe("transliterate_text", start, err == nil && reply != "", err)
	if err != nil || reply == "" {
		return text
	}
	return reply
}

// NearbyPlaces issues a maps-grounded query for the category around the
// coordinates. Place links come from the grounding chunks; chunks without
// a place reference are dropped. Failure yields a fixed error summary and
// an empty list.
func (c *Client) NearbyPlaces(ctx context.Context, lat, lng float64, category domain.PlaceCategory, targetLanguage string) domain.NearbyResult {
	if targetLanguage == "" {
		targetLanguage = domain.DefaultLanguage.Name
	}

	prompt := fmt.Sprintf(`Find %s locations near me and summarize the closest options in %s. Keep the summary short and practical for someone in urgent need.`, category, targetLanguage)

	reqBody := textRequest(prompt, 512)
	reqBody.Tools = []tool{{GoogleMaps: &struct{}{}}}
	reqBody.ToolConfig = &toolConfig{
		RetrievalConfig: &retrievalConfig{LatLng: latLng{Latitude: lat, Longitude: lng}},
	}

	start := time.Now()
	result, err := c.generate(ctx, c.groundingModel, reqBody)
	if err != nil {
		c.observe("nearby_places", start, false, err)
		return domain.NearbyResult{Summary: NearbyErrorSummary}
	}

	summary := firstText(result)
	if summary == "" {
		c.observe("nearby_places", start, false, fmt.Errorf("empty response"))
		return domain.NearbyResult{Summary: NearbyErrorSummary}
	}

	var links []domain.PlaceLink
	if len(result.Candidates) > 0 && result.Candidates[0].GroundingMetadata != nil {
		for _, chunk := range result.Candidates[0].GroundingMetadata.GroundingChunks {
			if chunk.Maps == nil || chunk.Maps.URI == "" {
				continue
			}
			links = append(links, domain.PlaceLink{Title: chunk.Maps.Title, URI: chunk.Maps.URI})
		}
	}

	c.observe("nearby_places", start, true, nil)
	return domain.NearbyResult{Summary: summary, Links: links}
}

// FetchUITranslations batch-translates UI labels in one schema-constrained
// call. On success the mapping contains exactly the requested keys; any
// failure, malformed reply, or missing key yields an empty mapping so the
// caller keeps its default strings.
func (c *Client) FetchUITranslations(ctx context.Context, targetLanguage string, keys, values []string) map[string]string {
	if len(keys) == 0 || len(keys) != len(values) {
		return map[string]string{}
	}

	var sb strings.Builder
	props := make(map[string]*schema, len(keys))
	for i, key := range keys {
		fmt.Fprintf(&sb, "%s: %s\n", key, values[i])
		props[key] = &schema{Type: "STRING"}
	}

	prompt := fmt.Sprintf(`Translate each of the following UI labels into %s. Keep them short enough for buttons and menus. Return a JSON object keyed by the same keys.

%s`, targetLanguage, sb.String())

	reqBody := textRequest(prompt, 2048)
	reqBody.GenerationConfig.ResponseMIMEType = "application/json"
	reqBody.GenerationConfig.ResponseSchema = &schema{
		Type:       "OBJECT",
		Properties: props,
		Required:   keys,
	}

	start := time.Now()
	reply, err := c.generateText(ctx, c.textModel, reqBody)
	if err != nil || reply == "" {
		c.observe("fetch_ui_translations", start, false, err)
		return map[string]string{}
	}

	var decoded map[string]string
	if err := json.Unmarshal([]byte(reply), &decoded); err != nil {
		c.observe("fetch_ui_translations", start, false, err)
		return map[string]string{}
	}

	// All requested keys or nothing; extras are dropped.
	out := make(map[string]string, len(keys))
	for _, key := range keys {
		v, ok := decoded[key]
		if !ok || v == "" {
			c.observe("fetch_ui_translations", start, false, fmt.Errorf("missing key %q", key))
			return map[string]string{}
		}
		out[key] = v
	}

	c.observe("fetch_ui_translations", start, true, nil)
	return out
}

// FindLanguageDetails looks up language metadata by its common English
// name. Returns nil on failure or an unparsable reply.
func (c *Client) FindLanguageDetails(ctx context.Context, commonName string) *domain.AppLanguage {
	if strings.TrimSpace(commonName) == "" {
		return nil
	}

	prompt := fmt.Sprintf(`Provide metadata for the language commonly called %q: its IETF BCP 47 code, its English name, and its name in its own script.`, commonName)

	reqBody := textRequest(prompt, 128)
	reqBody.GenerationConfig.ResponseMIMEType = "application/json"
	reqBody.GenerationConfig.ResponseSchema = &schema{
		Type: "OBJECT",
		Properties: map[string]*schema{
			"code":       {Type: "STRING"},
			"name":       {Type: "STRING"},
			"nativeName": {Type: "STRING"},
		},
		Required: []string{"code", "name", "nativeName"},
	}

	start := time.Now()
	reply, err := c.generateText(ctx, c.textModel, reqBody)
	if err != nil || reply == "" {
		c.observe("find_language_details", start, false, err)
		return nil
	}

	var decoded struct {
		Code       string `json:"code"`
		Name       string `json:"name"`
		NativeName string `json:"nativeName"`
	}
	if err := json.Unmarshal([]byte(reply), &decoded); err != nil || decoded.Code == "" || decoded.Name == "" {
		c.observe("find_language_details", start, false, err)
		return nil
	}

	c.observe("find_language_details", start, true, nil)
	return &domain.AppLanguage{Code: decoded.Code, Name: decoded.Name, NativeName: decoded.NativeName}
}

const signInterpreterPersona = `You are an expert sign language interpreter. You read a single photograph of a person signing and state the most likely word or short phrase they are expressing. Respond with only the interpreted phrase, no commentary. If no sign is visible, respond with an empty string.`

// InterpretSignLanguage interprets one camera frame. An empty model reply
// and a failed call produce distinct fixed strings so the UI can tell
// them apart. Target language defaults to English.
func (c *Client) InterpretSignLanguage(ctx context.Context, frame domain.Frame, targetLanguage string) string {
	if len(frame.Data) == 0 {
		return SignEmptyReply
	}
	if targetLanguage == "" {
		targetLanguage = "English"
	}
	mimeType := frame.MIMEType
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	reqBody := request{
		SystemInstruct: &content{Parts: []part{{Text: signInterpreterPersona}}},
		Contents: []content{
			{
				Role: "user",
				Parts: []part{
					{InlineData: &inlineData{
						MIMEType: mimeType,
						Data:     base64.StdEncoding.EncodeToString(frame.Data),
					}},
					{Text: fmt.Sprintf("Interpret the sign in this image and answer in %s.", targetLanguage)},
				},
			},
		},
		GenerationConfig: generationConfig{
			MaxOutputTokens: 64,
			Temperature:     0.2,
			ThinkingConfig:  &thinkingConfig{ThinkingBudget: 512},
		},
	}

	start := time.Now()
	reply, err := c.generateText(ctx, c.visionModel, reqBody)
	if err != nil {
		c.observe("interpret_sign", start, false, err)
		return SignCallError
	}
	if reply == "" {
		c.observe("interpret_sign", start, false, fmt.Errorf("empty response"))
		return SignEmptyReply
	}
	c.observe("interpret_sign", start, true, nil)
	return reply
}
