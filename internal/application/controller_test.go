package application_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"handspeak/internal/application"
	"handspeak/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeGateway struct {
	mu sync.Mutex

	detectReply    string
	interpretReply string
	interpretDelay time.Duration
	nearbyResult   domain.NearbyResult
	uiTranslations map[string]string
	langDetails    *domain.AppLanguage

	translateCalls  int
	interpretCalls  int
	interpretActive int
	interpretPeak   int
	nearbyCalls     int
	uiCalls         int
}

func (f *fakeGateway) DetectLanguage(_ context.Context, text string) string {
	if text == "" {
		return domain.DefaultLanguage.Code
	}
	if f.detectReply != "" {
		return f.detectReply
	}
	return domain.DefaultLanguage.Code
}

func (f *fakeGateway) LanguageFromLocation(_ context.Context, _, _ float64) string {
	return domain.DefaultLanguage.Code
}

func (f *fakeGateway) ReverseGeocode(_ context.Context, lat, lng float64, _ string) string {
	return domain.Location{Latitude: lat, Longitude: lng}.FallbackString()
}

func (f *fakeGateway) TranslateText(_ context.Context, text, _ string) string {
	f.mu.Lock()
	f.translateCalls++
	f.mu.Unlock()
	return "translated: " + text
}

func (f *fakeGateway) TransliterateText(_ context.Context, text, _ string) string {
	return "~" + text
}

func (f *fakeGateway) NearbyPlaces(_ context.Context, _, _ float64, _ domain.PlaceCategory, _ string) domain.NearbyResult {
	f.mu.Lock()
	f.nearbyCalls++
	f.mu.Unlock()
	return f.nearbyResult
}

func (f *fakeGateway) FetchUITranslations(_ context.Context, _ string, keys, _ []string) map[string]string {
	f.mu.Lock()
	f.uiCalls++
	f.mu.Unlock()
	if f.uiTranslations == nil {
		return map[string]string{}
	}
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		out[k] = f.uiTranslations[k]
	}
	return out
}

func (f *fakeGateway) FindLanguageDetails(_ context.Context, _ string) *domain.AppLanguage {
	return f.langDetails
}

func (f *fakeGateway) InterpretSignLanguage(_ context.Context, _ domain.Frame, _ string) string {
	f.mu.Lock()
	f.interpretCalls++
	f.interpretActive++
	if f.interpretActive > f.interpretPeak {
		f.interpretPeak = f.interpretActive
	}
	delay := f.interpretDelay
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	f.mu.Lock()
	f.interpretActive--
	f.mu.Unlock()

	if f.interpretReply != "" {
		return f.interpretReply
	}
	return "Hello"
}

type blockingRecognizer struct {
	started chan struct{}
	release chan struct{}
	result  domain.Transcript
}

func (r *blockingRecognizer) Listen(ctx context.Context) (domain.Transcript, error) {
	select {
	case r.started <- struct{}{}:
	default:
	}
	select {
	case <-r.release:
		return r.result, nil
	case <-ctx.Done():
		// Deliver the late result anyway: the controller must discard it.
		return r.result, nil
	}
}

type instantRecognizer struct {
	result domain.Transcript
}

func (r *instantRecognizer) Listen(_ context.Context) (domain.Transcript, error) {
	return r.result, nil
}

type recordingSynth struct {
	mu       sync.Mutex
	requests []application.SpeechRequest
}

func (s *recordingSynth) Speak(_ context.Context, req application.SpeechRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	return nil
}

type recordingCamera struct {
	mu     sync.Mutex
	starts int
	stops  int
}

func (c *recordingCamera) Start(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.starts++
	return nil
}

func (c *recordingCamera) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stops++
	return nil
}

func (c *recordingCamera) CaptureFrame(_ context.Context) (domain.Frame, error) {
	return domain.Frame{Data: []byte("frame"), MIMEType: "image/jpeg"}, nil
}

type fixedLocator struct {
	loc domain.Location
	err error
}

func (l *fixedLocator) CurrentPosition(_ context.Context) (domain.Location, error) {
	return l.loc, l.err
}

type recordingLauncher struct {
	mu       sync.Mutex
	launched []domain.Intent
}

func (l *recordingLauncher) Launch(_ context.Context, intent domain.Intent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.launched = append(l.launched, intent)
	return nil
}

type recordingAlerts struct {
	mu       sync.Mutex
	messages map[string]string
}

func (a *recordingAlerts) SendAlert(_ context.Context, contact domain.EmergencyContact, message string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.messages == nil {
		a.messages = make(map[string]string)
	}
	a.messages[contact.Phone] = message
	return nil
}

type recordingHaptics struct {
	mu     sync.Mutex
	pulses int
}

func (h *recordingHaptics) Pulse(_ ...time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pulses++
}

func TestListen_RejectsSecondSession(t *testing.T) {
	rec := &blockingRecognizer{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
		result:  domain.Transcript{Text: "hello", Confidence: 0.92},
	}
	ctrl := application.NewController(application.Deps{
		Gateway:    &fakeGateway{},
		Recognizer: rec,
	}, testLogger())

	ctx := context.Background()
	ctrl.SetMode(ctx, domain.ModeTalkListen)

	errCh := make(chan error, 1)
	go func() { errCh <- ctrl.Listen(ctx) }()

	<-rec.started

	if err := ctrl.Listen(ctx); !errors.Is(err, application.ErrListeningActive) {
		t.Errorf("second listen: got %v, want ErrListeningActive", err)
	}

	close(rec.release)
	if err := <-errCh; err != nil {
		t.Fatalf("first listen: %v", err)
	}

	snap := ctrl.Snapshot()
	if snap.Transcript == nil {
		t.Fatal("transcript not published")
	}
	if snap.Transcript.Confidence != 0.92 {
		t.Errorf("confidence: got %v, want 0.92", snap.Transcript.Confidence)
	}
	if snap.Listening {
		t.Error("listening flag still set")
	}
}

func TestListen_TranslatesForeignSpeech(t *testing.T) {
	gw := &fakeGateway{detectReply: "es-ES"}
	ctrl := application.NewController(application.Deps{
		Gateway:    gw,
		Recognizer: &instantRecognizer{result: domain.Transcript{Text: "hola", Confidence: 0.8}},
	}, testLogger())

	ctx := context.Background()
	ctrl.SetMode(ctx, domain.ModeTalkListen)

	if err := ctrl.Listen(ctx); err != nil {
		t.Fatalf("listen: %v", err)
	}

	snap := ctrl.Snapshot()
	if snap.Transcript == nil || snap.Transcript.Text != "translated: hola" {
		t.Errorf("transcript: got %+v", snap.Transcript)
	}
	if gw.translateCalls != 1 {
		t.Errorf("translate calls: got %d, want 1", gw.translateCalls)
	}
}

func TestListen_StaleResultDiscardedOnModeSwitch(t *testing.T) {
	rec := &blockingRecognizer{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
		result:  domain.Transcript{Text: "late result", Confidence: 0.7},
	}
	ctrl := application.NewController(application.Deps{
		Gateway:    &fakeGateway{},
		Recognizer: rec,
	}, testLogger())

	ctx := context.Background()
	ctrl.SetMode(ctx, domain.ModeTalkListen)

	errCh := make(chan error, 1)
	go func() { errCh <- ctrl.Listen(ctx) }()

	<-rec.started
	ctrl.SetMode(ctx, domain.ModeHome)
	close(rec.release)

	if err := <-errCh; err != nil {
		t.Fatalf("listen after mode switch: %v", err)
	}

	snap := ctrl.Snapshot()
	if snap.Transcript != nil {
		t.Errorf("stale transcript applied: %+v", snap.Transcript)
	}
	if snap.Listening {
		t.Error("listening flag survived mode switch")
	}
}

func TestSpeak_RecentPhrasesBoundedAndDeduplicated(t *testing.T) {
	synth := &recordingSynth{}
	ctrl := application.NewController(application.Deps{
		Gateway:     &fakeGateway{},
		Synthesizer: synth,
	}, testLogger())

	ctx := context.Background()
	for i := 0; i < 7; i++ {
		if err := ctrl.Speak(ctx, fmt.Sprintf("phrase %d", i)); err != nil {
			t.Fatalf("speak: %v", err)
		}
	}
	for i := 0; i < 3; i++ {
		if err := ctrl.Speak(ctx, "phrase 6"); err != nil {
			t.Fatalf("speak repeat: %v", err)
		}
	}

	snap := ctrl.Snapshot()
	if len(snap.RecentPhrases) != 5 {
		t.Fatalf("recent phrases: got %d, want 5", len(snap.RecentPhrases))
	}
	if snap.RecentPhrases[0] != "phrase 6" {
		t.Errorf("newest first: got %q", snap.RecentPhrases[0])
	}
	seen := map[string]bool{}
	for _, p := range snap.RecentPhrases {
		if seen[p] {
			t.Errorf("duplicate phrase %q", p)
		}
		seen[p] = true
	}
}

func TestSpeak_EmptyTextIsNoop(t *testing.T) {
	synth := &recordingSynth{}
	ctrl := application.NewController(application.Deps{
		Gateway:     &fakeGateway{},
		Synthesizer: synth,
	}, testLogger())

	if err := ctrl.Speak(context.Background(), "   "); err != nil {
		t.Fatalf("speak: %v", err)
	}
	if len(synth.requests) != 0 {
		t.Errorf("synthesizer invoked for empty text: %v", synth.requests)
	}
}

func TestCaptureSign_HistoryBounded(t *testing.T) {
	gw := &fakeGateway{interpretReply: "Thank you"}
	ctrl := application.NewController(application.Deps{
		Gateway: gw,
		Camera:  &recordingCamera{},
	}, testLogger())

	ctx := context.Background()
	ctrl.SetMode(ctx, domain.ModeSign)

	for i := 0; i < 8; i++ {
		if err := ctrl.CaptureSign(ctx); err != nil {
			t.Fatalf("capture %d: %v", i, err)
		}
	}

	snap := ctrl.Snapshot()
	if len(snap.SignHistory) != 5 {
		t.Fatalf("history: got %d, want 5", len(snap.SignHistory))
	}
	if snap.SignHistory[0].Text != "Thank you" {
		t.Errorf("entry: got %q", snap.SignHistory[0].Text)
	}
}

func TestLiveScan_SkipsTicksWhileInterpretationPending(t *testing.T) {
	gw := &fakeGateway{interpretDelay: 60 * time.Millisecond}
	ctrl := application.NewController(application.Deps{
		Gateway:      gw,
		Camera:       &recordingCamera{},
		ScanInterval: 5 * time.Millisecond,
	}, testLogger())

	ctx := context.Background()
	ctrl.SetMode(ctx, domain.ModeSign)
	ctrl.StartLiveScan()

	time.Sleep(150 * time.Millisecond)
	ctrl.StopLiveScan()
	time.Sleep(80 * time.Millisecond)

	gw.mu.Lock()
	peak := gw.interpretPeak
	calls := gw.interpretCalls
	gw.mu.Unlock()

	if peak > 1 {
		t.Errorf("overlapping interpretations: peak %d", peak)
	}
	if calls == 0 {
		t.Error("live scan never captured")
	}
	// ~30 ticks fired; with a 60ms interpretation most must be skipped.
	if calls > 5 {
		t.Errorf("ticks not skipped while busy: %d calls", calls)
	}
}

func TestSetMode_ReleasesCameraOnLeavingSign(t *testing.T) {
	cam := &recordingCamera{}
	ctrl := application.NewController(application.Deps{
		Gateway: &fakeGateway{},
		Camera:  cam,
	}, testLogger())

	ctx := context.Background()
	ctrl.SetMode(ctx, domain.ModeSign)

	cam.mu.Lock()
	starts := cam.starts
	cam.mu.Unlock()
	if starts != 1 {
		t.Fatalf("camera starts: got %d, want 1", starts)
	}

	ctrl.SetMode(ctx, domain.ModeHome)

	cam.mu.Lock()
	stops := cam.stops
	cam.mu.Unlock()
	if stops != 1 {
		t.Errorf("camera stops: got %d, want 1", stops)
	}
}

func TestNearby_CachesPerCategoryAndRefetchesOnDemand(t *testing.T) {
	gw := &fakeGateway{nearbyResult: domain.NearbyResult{Summary: "two options"}}
	ctrl := application.NewController(application.Deps{
		Gateway: gw,
		Locator: &fixedLocator{loc: domain.Location{Latitude: 12.34, Longitude: 56.78}},
	}, testLogger())

	ctx := context.Background()
	ctrl.SetMode(ctx, domain.ModeNearby)

	if err := ctrl.SetPlaceCategory(ctx, domain.PlaceHospital); err != nil {
		t.Fatalf("hospital: %v", err)
	}
	if err := ctrl.SetPlaceCategory(ctx, domain.PlacePharmacy); err != nil {
		t.Fatalf("pharmacy: %v", err)
	}
	if err := ctrl.SetPlaceCategory(ctx, domain.PlaceHospital); err != nil {
		t.Fatalf("hospital again: %v", err)
	}

	if gw.nearbyCalls != 2 {
		t.Errorf("nearby calls after cached revisit: got %d, want 2", gw.nearbyCalls)
	}

	if err := ctrl.RefreshNearby(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if gw.nearbyCalls != 3 {
		t.Errorf("nearby calls after refresh: got %d, want 3", gw.nearbyCalls)
	}

	snap := ctrl.Snapshot()
	if snap.Location == nil || snap.Location.Address == "" {
		t.Errorf("location not resolved: %+v", snap.Location)
	}
}

func TestNearby_NoLocation(t *testing.T) {
	ctrl := application.NewController(application.Deps{
		Gateway: &fakeGateway{},
		Locator: &fixedLocator{err: errors.New("permission denied")},
	}, testLogger())

	ctx := context.Background()
	ctrl.SetMode(ctx, domain.ModeNearby)

	if err := ctrl.SetPlaceCategory(ctx, domain.PlaceHospital); !errors.Is(err, application.ErrNoLocation) {
		t.Errorf("got %v, want ErrNoLocation", err)
	}
	if !ctrl.Snapshot().LocationDenied {
		t.Error("location denial not surfaced")
	}
}

func TestSOS_ConfirmThenActFlow(t *testing.T) {
	launcher := &recordingLauncher{}
	haptics := &recordingHaptics{}
	ctrl := application.NewController(application.Deps{
		Gateway:         &fakeGateway{},
		Locator:         &fixedLocator{loc: domain.Location{Latitude: 12.34567, Longitude: 56.78901}},
		Launcher:        launcher,
		Haptics:         haptics,
		EmergencyNumber: "911",
	}, testLogger())

	ctx := context.Background()
	ctrl.SetMode(ctx, domain.ModeSOS)

	if err := ctrl.RequestSOS(domain.IntentSMS); err != nil {
		t.Fatalf("request: %v", err)
	}

	snap := ctrl.Snapshot()
	if snap.PendingIntent == nil {
		t.Fatal("no pending intent")
	}
	if snap.PendingIntent.To != "911" {
		t.Errorf("intent target: got %q", snap.PendingIntent.To)
	}
	if !strings.Contains(snap.PendingIntent.Body, "12.3457, 56.7890") {
		t.Errorf("intent body missing coordinates: %q", snap.PendingIntent.Body)
	}

	if err := ctrl.ConfirmSOS(ctx); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if len(launcher.launched) != 1 {
		t.Fatalf("launched intents: got %d, want 1", len(launcher.launched))
	}
	if haptics.pulses == 0 {
		t.Error("no haptic feedback on confirm")
	}
	if ctrl.Snapshot().PendingIntent != nil {
		t.Error("pending intent not cleared")
	}

	if err := ctrl.ConfirmSOS(ctx); !errors.Is(err, application.ErrNoPendingIntent) {
		t.Errorf("confirm without pending: got %v", err)
	}

	if err := ctrl.RequestSOS(domain.IntentDial); err != nil {
		t.Fatalf("request dial: %v", err)
	}
	ctrl.CancelSOS()
	if ctrl.Snapshot().PendingIntent != nil {
		t.Error("cancel did not clear pending intent")
	}
}

func TestAlertContacts_SendsOnePerContact(t *testing.T) {
	alerts := &recordingAlerts{}
	ctrl := application.NewController(application.Deps{
		Gateway: &fakeGateway{},
		Locator: &fixedLocator{loc: domain.Location{Latitude: 1.5, Longitude: 2.5}},
		Alerts:  alerts,
	}, testLogger())

	if _, err := ctrl.Login(domain.AuthGuest, "Sam", ""); err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := ctrl.AddEmergencyContact("Ana", "+100"); err != nil {
		t.Fatalf("add contact: %v", err)
	}
	if err := ctrl.AddEmergencyContact("Ben", "+200"); err != nil {
		t.Fatalf("add contact: %v", err)
	}

	ctx := context.Background()
	ctrl.SetMode(ctx, domain.ModeSOS)

	if err := ctrl.AlertContacts(ctx); err != nil {
		t.Fatalf("alert contacts: %v", err)
	}

	if len(alerts.messages) != 2 {
		t.Fatalf("alerts sent: got %d, want 2", len(alerts.messages))
	}
	for phone, msg := range alerts.messages {
		if !strings.Contains(msg, "maps.google.com") {
			t.Errorf("alert to %s missing map link: %q", phone, msg)
		}
		if !strings.Contains(msg, "Sam") {
			t.Errorf("alert to %s missing user name: %q", phone, msg)
		}
	}
}

func TestSetLanguage_BatchTranslatesOncePerLanguage(t *testing.T) {
	gw := &fakeGateway{uiTranslations: map[string]string{"home": "Inicio", "settings": "Ajustes"}}
	ctrl := application.NewController(application.Deps{
		Gateway:    gw,
		UIDefaults: map[string]string{"home": "Home", "settings": "Settings"},
	}, testLogger())

	ctx := context.Background()
	spanish := domain.AppLanguage{Code: "es-ES", Name: "Spanish", NativeName: "Español"}

	if err := ctrl.SetLanguage(ctx, spanish); err != nil {
		t.Fatalf("set language: %v", err)
	}

	snap := ctrl.Snapshot()
	if snap.UIStrings["home"] != "Inicio" {
		t.Errorf("localized string: got %q", snap.UIStrings["home"])
	}
	if snap.Localizing {
		t.Error("localizing flag still set")
	}

	if err := ctrl.SetLanguage(ctx, domain.DefaultLanguage); err != nil {
		t.Fatalf("back to english: %v", err)
	}
	if got := ctrl.Snapshot().UIStrings["home"]; got != "Home" {
		t.Errorf("english string: got %q", got)
	}

	if err := ctrl.SetLanguage(ctx, spanish); err != nil {
		t.Fatalf("spanish again: %v", err)
	}
	if gw.uiCalls != 1 {
		t.Errorf("ui translation calls: got %d, want 1 (cached)", gw.uiCalls)
	}
}

func TestSetLanguage_EmptyMappingKeepsDefaults(t *testing.T) {
	ctrl := application.NewController(application.Deps{
		Gateway:    &fakeGateway{},
		UIDefaults: map[string]string{"home": "Home"},
	}, testLogger())

	err := ctrl.SetLanguage(context.Background(), domain.AppLanguage{Code: "hi-IN", Name: "Hindi"})
	if err != nil {
		t.Fatalf("set language: %v", err)
	}

	if got := ctrl.Snapshot().UIStrings["home"]; got != "Home" {
		t.Errorf("default string lost: got %q", got)
	}
}

func TestSetLanguage_UsesBuiltinTable(t *testing.T) {
	gw := &fakeGateway{}
	ctrl := application.NewController(application.Deps{
		Gateway:    gw,
		UIDefaults: map[string]string{"home": "Home"},
		BuiltinStrings: map[string]map[string]string{
			"fr-FR": {"home": "Accueil"},
		},
	}, testLogger())

	err := ctrl.SetLanguage(context.Background(), domain.AppLanguage{Code: "fr-FR", Name: "French"})
	if err != nil {
		t.Fatalf("set language: %v", err)
	}

	if got := ctrl.Snapshot().UIStrings["home"]; got != "Accueil" {
		t.Errorf("builtin string: got %q", got)
	}
	if gw.uiCalls != 0 {
		t.Errorf("gateway called despite builtin table: %d", gw.uiCalls)
	}
}

func TestLookupLanguage_AppendsToCatalog(t *testing.T) {
	gw := &fakeGateway{langDetails: &domain.AppLanguage{Code: "sw-KE", Name: "Swahili", NativeName: "Kiswahili"}}
	ctrl := application.NewController(application.Deps{Gateway: gw}, testLogger())

	lang, err := ctrl.LookupLanguage(context.Background(), "Swahili")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if lang.Code != "sw-KE" {
		t.Errorf("code: got %q", lang.Code)
	}

	found := false
	for _, l := range ctrl.Snapshot().Languages {
		if l.Code == "sw-KE" {
			found = true
		}
	}
	if !found {
		t.Error("language not added to catalog")
	}
}

func TestLookupLanguage_NotFound(t *testing.T) {
	ctrl := application.NewController(application.Deps{Gateway: &fakeGateway{}}, testLogger())

	if _, err := ctrl.LookupLanguage(context.Background(), "Klingon"); err == nil {
		t.Error("expected error for unknown language")
	}
}

func TestTransliterateTranscript(t *testing.T) {
	ctrl := application.NewController(application.Deps{
		Gateway:    &fakeGateway{},
		Recognizer: &instantRecognizer{result: domain.Transcript{Text: "namaste", Confidence: 0.9}},
	}, testLogger())

	ctx := context.Background()
	ctrl.SetMode(ctx, domain.ModeTalkListen)
	if err := ctrl.Listen(ctx); err != nil {
		t.Fatalf("listen: %v", err)
	}
	if err := ctrl.TransliterateTranscript(ctx); err != nil {
		t.Fatalf("transliterate: %v", err)
	}

	snap := ctrl.Snapshot()
	if snap.Transcript == nil || snap.Transcript.Transliteration != "~namaste" {
		t.Errorf("transliteration: got %+v", snap.Transcript)
	}
}
