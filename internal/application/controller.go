package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"handspeak/internal/domain"
)

var (
	// ErrListeningActive: a second recognition session while one is
	// active is rejected rather than allowed to overlap.
	ErrListeningActive = errors.New("a listening session is already active")

	// ErrScanBusy: a sign interpretation is still outstanding; the new
	// capture is skipped.
	ErrScanBusy = errors.New("a sign interpretation is still in progress")

	ErrNoLocation      = errors.New("current location unavailable")
	ErrNoPendingIntent = errors.New("no pending intent to confirm")
	ErrNotSignedIn     = errors.New("no signed-in user")
)

// Deps collects the controller's ports. Nil output-only ports default
// to no-ops.
type Deps struct {
	Gateway     Gateway
	Recognizer  Recognizer
	Synthesizer Synthesizer
	Camera      Camera
	Locator     Locator
	Store       Store
	Phrases     PhraseCatalog
	Alerts      AlertSender
	Launcher    IntentLauncher
	Haptics     Haptics

	// UIDefaults maps UI label keys to their default English strings.
	UIDefaults map[string]string
	// BuiltinStrings holds pre-translated label tables by language code.
	BuiltinStrings map[string]map[string]string
	// Languages seeds the catalog; nil uses the built-in defaults.
	Languages []domain.AppLanguage
	// EmergencyNumber receives SOS dial/text intents. Defaults to 112.
	EmergencyNumber string
	// ScanInterval between live sign captures. Defaults to 5s.
	ScanInterval time.Duration
}

// Controller owns the UI-visible state and sequences gateway and
// platform calls in response to discrete user actions. Every action is a
// state transition on a single State value; a mode switch invalidates
// in-flight results via an epoch counter and cancels the mode context.
type Controller struct {
	gateway    Gateway
	recognizer Recognizer
	synth      Synthesizer
	camera     Camera
	locator    Locator
	store      Store
	phrases    PhraseCatalog
	alerts     AlertSender
	launcher   IntentLauncher
	haptics    Haptics
	logger     *slog.Logger

	uiDefaults      map[string]string
	builtin         map[string]map[string]string
	emergencyNumber string
	scanInterval    time.Duration

	mu         sync.Mutex
	state      State
	epoch      int
	rootCtx    context.Context
	modeCtx    context.Context
	modeCancel context.CancelFunc
	scanBusy   bool
	uiCache    map[string]map[string]string
}

func NewController(deps Deps, logger *slog.Logger) *Controller {
	if deps.Synthesizer == nil {
		deps.Synthesizer = NoopSynthesizer{}
	}
	if deps.Alerts == nil {
		deps.Alerts = NoopAlertSender{}
	}
	if deps.Launcher == nil {
		deps.Launcher = NoopLauncher{}
	}
	if deps.Haptics == nil {
		deps.Haptics = NoopHaptics{}
	}
	if deps.Camera == nil {
		deps.Camera = noopCamera{}
	}
	if deps.Locator == nil {
		deps.Locator = noopLocator{}
	}
	if deps.Recognizer == nil {
		deps.Recognizer = noopRecognizer{}
	}
	if deps.EmergencyNumber == "" {
		deps.EmergencyNumber = "112"
	}
	if deps.ScanInterval <= 0 {
		deps.ScanInterval = 5 * time.Second
	}
	languages := deps.Languages
	if languages == nil {
		languages = append([]domain.AppLanguage(nil), domain.DefaultLanguages...)
	}

	c := &Controller{
		gateway:         deps.Gateway,
		recognizer:      deps.Recognizer,
		synth:           deps.Synthesizer,
		camera:          deps.Camera,
		locator:         deps.Locator,
		store:           deps.Store,
		phrases:         deps.Phrases,
		alerts:          deps.Alerts,
		launcher:        deps.Launcher,
		haptics:         deps.Haptics,
		logger:          logger,
		uiDefaults:      deps.UIDefaults,
		builtin:         deps.BuiltinStrings,
		emergencyNumber: deps.EmergencyNumber,
		scanInterval:    deps.ScanInterval,
		uiCache:         make(map[string]map[string]string),
	}

	c.rootCtx = context.Background()
	c.modeCtx, c.modeCancel = context.WithCancel(c.rootCtx)
	c.state = State{
		Mode:           domain.ModeHome,
		Language:       domain.DefaultLanguage,
		Languages:      languages,
		NearbyCategory: domain.PlaceHospital,
		Nearby:         make(map[domain.PlaceCategory]domain.NearbyResult),
		UIStrings:      copyStrings(deps.UIDefaults),
		Settings:       domain.DefaultSettings(),
	}
	return c
}

// Start loads the persisted profile, settings and phrases, and binds the
// controller lifetime to ctx.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	c.rootCtx = ctx
	c.modeCancel()
	c.modeCtx, c.modeCancel = context.WithCancel(ctx)
	c.mu.Unlock()

	if c.store != nil {
		user, err := c.store.LoadUser()
		if err != nil {
			return fmt.Errorf("loading user: %w", err)
		}
		settings, err := c.store.LoadSettings()
		if err != nil {
			return fmt.Errorf("loading settings: %w", err)
		}
		c.mu.Lock()
		c.state.User = user
		c.state.Settings = settings
		if lang, ok := c.languageByCodeLocked(settings.LanguageCode); ok {
			c.state.Language = lang
		}
		c.mu.Unlock()
	}

	if c.phrases != nil {
		if err := c.phrases.Reload(); err != nil {
			c.logger.Warn("loading phrases", "error", err)
		}
		c.mu.Lock()
		c.state.Phrases = c.phrases.All()
		c.mu.Unlock()
	}

	return nil
}

// Snapshot returns a deep copy of the current UI state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// SetMode switches the active screen. Transient per-mode state is reset,
// the previous mode's in-flight work is cancelled and its late results
// discarded, and scoped resources (camera) are released. Entering nearby
// or SOS triggers a location fetch.
func (c *Controller) SetMode(ctx context.Context, mode domain.Mode) {
	c.mu.Lock()
	if c.state.Mode == mode {
		c.mu.Unlock()
		return
	}
	prev := c.state.Mode
	c.modeCancel()
	c.epoch++
	c.modeCtx, c.modeCancel = context.WithCancel(c.rootCtx)
	c.state.Mode = mode
	c.state.Transcript = nil
	c.state.Listening = false
	c.state.LiveScan = false
	c.state.PendingIntent = nil
	if prev == domain.ModeNearby {
		c.state.Nearby = make(map[domain.PlaceCategory]domain.NearbyResult)
	}
	mctx := c.modeCtx
	epoch := c.epoch
	c.mu.Unlock()

	if prev == domain.ModeSign {
		if err := c.camera.Stop(); err != nil {
			c.logger.Warn("releasing camera", "error", err)
		}
	}

	switch mode {
	case domain.ModeSign:
		if err := c.camera.Start(ctx); err != nil {
			c.logger.Warn("starting camera", "error", err)
		}
	case domain.ModeNearby, domain.ModeSOS:
		c.refreshLocation(mctx, epoch)
	}
}

// callScope derives a context cancelled by either the caller or a mode
// switch, and captures the epoch for stale-result detection.
func (c *Controller) callScope(ctx context.Context) (context.Context, context.CancelFunc, int) {
	c.mu.Lock()
	mctx := c.modeCtx
	epoch := c.epoch
	c.mu.Unlock()

	merged, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(mctx, cancel)
	return merged, func() { stop(); cancel() }, epoch
}

func (c *Controller) refreshLocation(ctx context.Context, epoch int) {
	c.mu.Lock()
	target := c.state.Language.Name
	suggested := c.state.SuggestedLanguage
	chosen := c.state.Settings.LanguageCode != domain.DefaultLanguage.Code
	c.mu.Unlock()

	loc, err := c.locator.CurrentPosition(ctx)
	if err != nil {
		c.logger.Warn("acquiring location", "error", err)
		c.mu.Lock()
		if c.epoch == epoch {
			c.state.LocationDenied = true
		}
		c.mu.Unlock()
		return
	}

	loc.Address = c.gateway.ReverseGeocode(ctx, loc.Latitude, loc.Longitude, target)

	if suggested == "" && !chosen {
		suggested = c.gateway.LanguageFromLocation(ctx, loc.Latitude, loc.Longitude)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		return
	}
	if c.state.Location != nil && !c.state.Location.SameCoordinates(loc) {
		c.state.Nearby = make(map[domain.PlaceCategory]domain.NearbyResult)
	}
	c.state.Location = &loc
	c.state.LocationDenied = false
	c.state.SuggestedLanguage = suggested
}

// Listen runs one single-shot recognition, translates the transcript into
// the active language when it is not already in it, and publishes the
// result with the recognizer's confidence.
func (c *Controller) Listen(ctx context.Context) error {
	c.mu.Lock()
	if c.state.Listening {
		c.mu.Unlock()
		return ErrListeningActive
	}
	c.state.Listening = true
	target := c.state.Language
	c.mu.Unlock()

	callCtx, done, epoch := c.callScope(ctx)
	defer done()

	tr, err := c.recognizer.Listen(callCtx)

	var text string
	if err == nil {
		text = tr.Text
		detected := c.gateway.DetectLanguage(callCtx, tr.Text)
		if domain.BaseCode(detected) != domain.BaseCode(target.Code) {
			text = c.gateway.TranslateText(callCtx, tr.Text, target.Name)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		// Mode changed while listening; the result belongs to a screen
		// that no longer exists.
		return nil
	}
	c.state.Listening = false
	if err != nil {
		return fmt.Errorf("listening: %w", err)
	}
	c.state.Transcript = &domain.Transcript{
		Text:       text,
		Confidence: tr.Confidence,
		Timestamp:  time.Now(),
	}
	return nil
}

// TransliterateTranscript renders the current transcript in the active
// language's script.
func (c *Controller) TransliterateTranscript(ctx context.Context) error {
	c.mu.Lock()
	if c.state.Transcript == nil {
		c.mu.Unlock()
		return nil
	}
	text := c.state.Transcript.Text
	target := c.state.Language.Name
	c.mu.Unlock()

	callCtx, done, epoch := c.callScope(ctx)
	defer done()

	transliterated := c.gateway.TransliterateText(callCtx, text, target)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch || c.state.Transcript == nil || c.state.Transcript.Text != text {
		return nil
	}
	c.state.Transcript.Transliteration = transliterated
	return nil
}

// Speak synthesizes the text with the stored voice and rate and records
// it in the bounded recent-phrases list.
func (c *Controller) Speak(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	c.mu.Lock()
	settings := c.state.Settings
	langTag := c.state.Language.Code
	c.mu.Unlock()

	callCtx, done, _ := c.callScope(ctx)
	defer done()

	err := c.synth.Speak(callCtx, SpeechRequest{
		Text:        text,
		Voice:       settings.Voice,
		Rate:        settings.Rate,
		LanguageTag: langTag,
	})
	if err != nil {
		return fmt.Errorf("speaking: %w", err)
	}

	c.mu.Lock()
	c.state.RecentPhrases = c.state.RecentPhrases.Add(text)
	c.mu.Unlock()
	return nil
}

// SpeakPhrase speaks a stored quick phrase in the active language.
func (c *Controller) SpeakPhrase(ctx context.Context, id string) error {
	c.mu.Lock()
	var text string
	for _, p := range c.state.Phrases {
		if p.ID == id {
			text = p.Translated(c.state.Language.Code)
			break
		}
	}
	c.mu.Unlock()

	if text == "" {
		return fmt.Errorf("unknown phrase: %s", id)
	}
	return c.Speak(ctx, text)
}

// CaptureSign takes one frame and interprets it. While an interpretation
// is outstanding further captures are skipped, never overlapped.
func (c *Controller) CaptureSign(ctx context.Context) error {
	c.mu.Lock()
	if c.scanBusy {
		c.mu.Unlock()
		return ErrScanBusy
	}
	c.scanBusy = true
	target := c.state.Language.Name
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.scanBusy = false
		c.mu.Unlock()
	}()

	callCtx, done, epoch := c.callScope(ctx)
	defer done()

	frame, err := c.camera.CaptureFrame(callCtx)
	if err != nil {
		return fmt.Errorf("capturing frame: %w", err)
	}

	text := c.gateway.InterpretSignLanguage(callCtx, frame, target)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		return nil
	}
	c.state.SignHistory = c.state.SignHistory.Add(domain.SignInterpretation{
		Text:      text,
		Timestamp: time.Now(),
	})
	c.haptics.Pulse(50 * time.Millisecond)
	return nil
}

// StartLiveScan captures and interprets one frame per interval until the
// mode changes or StopLiveScan is called.
func (c *Controller) StartLiveScan() {
	c.mu.Lock()
	if c.state.LiveScan {
		c.mu.Unlock()
		return
	}
	c.state.LiveScan = true
	mctx := c.modeCtx
	c.mu.Unlock()

	go c.liveScanLoop(mctx)
}

func (c *Controller) StopLiveScan() {
	c.mu.Lock()
	c.state.LiveScan = false
	c.mu.Unlock()
}

func (c *Controller) liveScanLoop(ctx context.Context) {
	ticker := time.NewTicker(c.scanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		c.mu.Lock()
		live := c.state.LiveScan
		c.mu.Unlock()
		if !live {
			return
		}

		go func() {
			err := c.CaptureSign(ctx)
			if err != nil && !errors.Is(err, ErrScanBusy) && ctx.Err() == nil {
				c.logger.Warn("live scan capture", "error", err)
			}
		}()
	}
}

// SetPlaceCategory switches the nearby filter. Results are cached per
// category for the screen session, so revisiting a category does not
// refetch.
func (c *Controller) SetPlaceCategory(ctx context.Context, category domain.PlaceCategory) error {
	c.mu.Lock()
	c.state.NearbyCategory = category
	_, cached := c.state.Nearby[category]
	c.mu.Unlock()

	if cached {
		return nil
	}
	return c.fetchNearby(ctx, category)
}

// RefreshNearby forces a refetch for the active category.
func (c *Controller) RefreshNearby(ctx context.Context) error {
	c.mu.Lock()
	category := c.state.NearbyCategory
	delete(c.state.Nearby, category)
	c.mu.Unlock()

	return c.fetchNearby(ctx, category)
}

func (c *Controller) fetchNearby(ctx context.Context, category domain.PlaceCategory) error {
	c.mu.Lock()
	loc := c.state.Location
	target := c.state.Language.Name
	c.mu.Unlock()

	if loc == nil {
		return ErrNoLocation
	}

	callCtx, done, epoch := c.callScope(ctx)
	defer done()

	result := c.gateway.NearbyPlaces(callCtx, loc.Latitude, loc.Longitude, category, target)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		return nil
	}
	if c.state.Nearby == nil {
		c.state.Nearby = make(map[domain.PlaceCategory]domain.NearbyResult)
	}
	c.state.Nearby[category] = result
	return nil
}

// RequestSOS builds the pending dial or SMS intent carrying the current
// coordinates; the user confirms or cancels it in a second step.
func (c *Controller) RequestSOS(kind domain.IntentKind) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	loc := c.state.Location
	if loc == nil {
		return ErrNoLocation
	}

	var intent domain.Intent
	switch kind {
	case domain.IntentDial:
		intent = domain.DialIntent(c.emergencyNumber)
	case domain.IntentSMS:
		body := fmt.Sprintf("EMERGENCY. I need help. My location: %s (%s)", loc.FallbackString(), loc.MapURL())
		intent = domain.SMSIntent(c.emergencyNumber, body)
	default:
		return fmt.Errorf("unknown intent kind: %s", kind)
	}
	c.state.PendingIntent = &intent
	return nil
}

// ConfirmSOS launches the pending intent.
func (c *Controller) ConfirmSOS(ctx context.Context) error {
	c.mu.Lock()
	intent := c.state.PendingIntent
	c.mu.Unlock()

	if intent == nil {
		return ErrNoPendingIntent
	}

	callCtx, done, _ := c.callScope(ctx)
	defer done()

	if err := c.launcher.Launch(callCtx, *intent); err != nil {
		return fmt.Errorf("launching intent: %w", err)
	}
	c.haptics.Pulse(100*time.Millisecond, 50*time.Millisecond, 100*time.Millisecond)

	c.mu.Lock()
	c.state.PendingIntent = nil
	c.mu.Unlock()
	return nil
}

func (c *Controller) CancelSOS() {
	c.mu.Lock()
	c.state.PendingIntent = nil
	c.mu.Unlock()
}

// AlertContacts composes one alert per stored emergency contact with the
// current coordinates and a map link.
func (c *Controller) AlertContacts(ctx context.Context) error {
	c.mu.Lock()
	user := c.state.User
	loc := c.state.Location
	c.mu.Unlock()

	if user == nil {
		return ErrNotSignedIn
	}
	if len(user.EmergencyContacts) == 0 {
		return nil
	}

	where := "unknown location"
	if loc != nil {
		where = fmt.Sprintf("%s (%s)", loc.FallbackString(), loc.MapURL())
	}
	message := fmt.Sprintf("EMERGENCY ALERT from %s: I need help. My location: %s", user.Name, where)

	callCtx, done, _ := c.callScope(ctx)
	defer done()

	var errs []error
	for _, contact := range user.EmergencyContacts {
		if err := c.alerts.SendAlert(callCtx, contact, message); err != nil {
			errs = append(errs, fmt.Errorf("alerting %s: %w", contact.Name, err))
		}
	}
	return errors.Join(errs...)
}

// SetLanguage switches the active language. A language without a built-in
// string table gets its UI labels batch-translated once; while the batch
// is pending the English defaults remain in place, and they also remain
// if the batch fails.
func (c *Controller) SetLanguage(ctx context.Context, lang domain.AppLanguage) error {
	c.mu.Lock()
	c.state.Language = lang
	c.state.Settings.LanguageCode = lang.Code
	settings := c.state.Settings

	if domain.BaseCode(lang.Code) == domain.BaseCode(domain.DefaultLanguage.Code) {
		c.state.UIStrings = copyStrings(c.uiDefaults)
		c.mu.Unlock()
		return c.persistSettings(settings)
	}
	if table, ok := c.builtin[lang.Code]; ok {
		c.state.UIStrings = overlayStrings(c.uiDefaults, table)
		c.mu.Unlock()
		return c.persistSettings(settings)
	}
	if table, ok := c.uiCache[lang.Code]; ok {
		c.state.UIStrings = overlayStrings(c.uiDefaults, table)
		c.mu.Unlock()
		return c.persistSettings(settings)
	}
	c.state.Localizing = true
	c.state.UIStrings = copyStrings(c.uiDefaults)
	c.mu.Unlock()

	if err := c.persistSettings(settings); err != nil {
		return err
	}

	keys, values := c.uiKeyValues()

	callCtx, done, _ := c.callScope(ctx)
	defer done()

	translated := c.gateway.FetchUITranslations(callCtx, lang.Name, keys, values)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Localizing = false
	if c.state.Language.Code != lang.Code {
		// The user picked another language while this batch was pending.
		return nil
	}
	if len(translated) == 0 {
		return nil
	}
	c.uiCache[lang.Code] = translated
	c.state.UIStrings = overlayStrings(c.uiDefaults, translated)
	return nil
}

// LookupLanguage resolves a language by its common English name and adds
// it to the catalog.
func (c *Controller) LookupLanguage(ctx context.Context, commonName string) (*domain.AppLanguage, error) {
	callCtx, done, _ := c.callScope(ctx)
	defer done()

	lang := c.gateway.FindLanguageDetails(callCtx, commonName)
	if lang == nil {
		return nil, fmt.Errorf("language %q not found", commonName)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.languageByCodeLocked(lang.Code); !ok {
		c.state.Languages = append(c.state.Languages, *lang)
	}
	return lang, nil
}

// Login creates a local profile. Authentication is simulated; the
// profile only persists on this device.
func (c *Controller) Login(method domain.AuthMethod, name, contact string) (*domain.User, error) {
	user := &domain.User{Name: name, AuthMethod: method}
	switch method {
	case domain.AuthGoogle:
		user.Email = contact
	case domain.AuthPhone:
		user.Phone = contact
	}

	saved := user
	if c.store != nil {
		var err error
		saved, err = c.store.SaveUser(user)
		if err != nil {
			return nil, fmt.Errorf("saving user: %w", err)
		}
	}

	c.mu.Lock()
	c.state.User = saved
	c.mu.Unlock()
	return saved, nil
}

func (c *Controller) Logout() error {
	if c.store != nil {
		if err := c.store.DeleteUser(); err != nil {
			return fmt.Errorf("deleting user: %w", err)
		}
	}
	c.mu.Lock()
	c.state.User = nil
	c.mu.Unlock()
	return nil
}

func (c *Controller) AddEmergencyContact(name, phone string) error {
	return c.updateUser(func(u *domain.User) {
		u.EmergencyContacts = append(u.EmergencyContacts, domain.EmergencyContact{Name: name, Phone: phone})
	})
}

func (c *Controller) RemoveEmergencyContact(phone string) error {
	return c.updateUser(func(u *domain.User) {
		kept := u.EmergencyContacts[:0]
		for _, contact := range u.EmergencyContacts {
			if contact.Phone != phone {
				kept = append(kept, contact)
			}
		}
		u.EmergencyContacts = kept
	})
}

func (c *Controller) updateUser(mutate func(*domain.User)) error {
	c.mu.Lock()
	if c.state.User == nil {
		c.mu.Unlock()
		return ErrNotSignedIn
	}
	user := *c.state.User
	user.EmergencyContacts = append([]domain.EmergencyContact(nil), c.state.User.EmergencyContacts...)
	c.mu.Unlock()

	mutate(&user)

	saved := &user
	if c.store != nil {
		var err error
		saved, err = c.store.SaveUser(&user)
		if err != nil {
			return fmt.Errorf("saving user: %w", err)
		}
	}

	c.mu.Lock()
	c.state.User = saved
	c.mu.Unlock()
	return nil
}

func (c *Controller) AddQuickPhrase(label, icon string, category domain.PhraseCategory) (domain.QuickPhrase, error) {
	if c.phrases == nil {
		return domain.QuickPhrase{}, fmt.Errorf("no phrase catalog configured")
	}
	phrase, err := c.phrases.Add(domain.QuickPhrase{Label: label, Icon: icon, Category: category})
	if err != nil {
		return domain.QuickPhrase{}, fmt.Errorf("adding phrase: %w", err)
	}

	c.mu.Lock()
	c.state.Phrases = c.phrases.All()
	c.mu.Unlock()
	return phrase, nil
}

func (c *Controller) RemoveQuickPhrase(id string) error {
	if c.phrases == nil {
		return fmt.Errorf("no phrase catalog configured")
	}
	if err := c.phrases.Remove(id); err != nil {
		return fmt.Errorf("removing phrase: %w", err)
	}

	c.mu.Lock()
	c.state.Phrases = c.phrases.All()
	c.mu.Unlock()
	return nil
}

func (c *Controller) SelectVoice(voice string) error {
	return c.updateSettings(func(s *domain.Settings) { s.Voice = voice })
}

func (c *Controller) SetSpeakingRate(rate float64) error {
	return c.updateSettings(func(s *domain.Settings) { s.Rate = rate })
}

func (c *Controller) SetTheme(theme string) error {
	return c.updateSettings(func(s *domain.Settings) { s.Theme = theme })
}

func (c *Controller) CompleteOnboarding() error {
	return c.updateSettings(func(s *domain.Settings) { s.Onboarded = true })
}

func (c *Controller) updateSettings(mutate func(*domain.Settings)) error {
	c.mu.Lock()
	mutate(&c.state.Settings)
	settings := c.state.Settings
	c.mu.Unlock()
	return c.persistSettings(settings)
}

func (c *Controller) persistSettings(settings domain.Settings) error {
	if c.store == nil {
		return nil
	}
	if err := c.store.SaveSettings(settings); err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}
	return nil
}

func (c *Controller) languageByCodeLocked(code string) (domain.AppLanguage, bool) {
	for _, lang := range c.state.Languages {
		if lang.Code == code {
			return lang, true
		}
	}
	return domain.AppLanguage{}, false
}

func (c *Controller) uiKeyValues() ([]string, []string) {
	keys := make([]string, 0, len(c.uiDefaults))
	for key := range c.uiDefaults {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	values := make([]string, len(keys))
	for i, key := range keys {
		values[i] = c.uiDefaults[key]
	}
	return keys, values
}

func copyStrings(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func overlayStrings(defaults, table map[string]string) map[string]string {
	out := copyStrings(defaults)
	for k, v := range table {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

type noopCamera struct{}

func (noopCamera) Start(_ context.Context) error { return nil }
func (noopCamera) Stop() error                   { return nil }
func (noopCamera) CaptureFrame(_ context.Context) (domain.Frame, error) {
	return domain.Frame{}, fmt.Errorf("no camera configured")
}

type noopLocator struct{}

func (noopLocator) CurrentPosition(_ context.Context) (domain.Location, error) {
	return domain.Location{}, ErrNoLocation
}

type noopRecognizer struct{}

func (noopRecognizer) Listen(_ context.Context) (domain.Transcript, error) {
	return domain.Transcript{}, fmt.Errorf("no recognizer configured")
}
