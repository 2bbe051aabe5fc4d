package application

// DefaultUIStrings are the English labels for every screen. They are
// the fallback whenever a translation is missing or still loading.
var DefaultUIStrings = map[string]string{
	"home_title":        "HandSpeak",
	"home_greeting":     "How can I help you communicate?",
	"talk_listen":       "Talk & Listen",
	"sign_language":     "Sign Language",
	"nearby_help":       "Nearby Help",
	"emergency_sos":     "Emergency SOS",
	"settings":          "Settings",
	"tap_to_listen":     "Tap to listen",
	"listening":         "Listening...",
	"type_to_speak":     "Type to speak",
	"speak_button":      "Speak",
	"quick_phrases":     "Quick Phrases",
	"recent_phrases":    "Recent",
	"scan_sign":         "Scan sign",
	"live_scan":         "Live scan",
	"sign_history":      "History",
	"hospitals":         "Hospitals",
	"police":            "Police stations",
	"pharmacies":        "Pharmacies",
	"sos_call":          "Call emergency services",
	"sos_text":          "Text emergency services",
	"sos_alert":         "Alert my contacts",
	"sos_confirm":       "Hold to confirm",
	"sos_cancel":        "Cancel",
	"language":          "Language",
	"voice":             "Voice",
	"speaking_rate":     "Speaking rate",
	"theme":             "Theme",
	"emergency_contact": "Emergency contacts",
	"sign_out":          "Sign out",
}

// BuiltinUIStrings are pre-translated tables that skip the batch
// translation call entirely. Partial tables are fine: missing keys keep
// the English default.
var BuiltinUIStrings = map[string]map[string]string{
	"hi-IN": {
		"home_greeting":  "मैं आपकी बातचीत में कैसे मदद करूं?",
		"talk_listen":    "बोलें और सुनें",
		"sign_language":  "सांकेतिक भाषा",
		"nearby_help":    "आस-पास सहायता",
		"emergency_sos":  "आपातकालीन SOS",
		"settings":       "सेटिंग्स",
		"tap_to_listen":  "सुनने के लिए टैप करें",
		"listening":      "सुन रहा है...",
		"type_to_speak":  "बोलने के लिए लिखें",
		"speak_button":   "बोलें",
		"quick_phrases":  "त्वरित वाक्यांश",
		"recent_phrases": "हाल के",
		"scan_sign":      "संकेत स्कैन करें",
		"live_scan":      "लाइव स्कैन",
		"sign_history":   "इतिहास",
		"hospitals":      "अस्पताल",
		"police":         "पुलिस स्टेशन",
		"pharmacies":     "फार्मेसी",
		"sos_call":       "आपातकालीन सेवाओं को कॉल करें",
		"sos_text":       "आपातकालीन सेवाओं को संदेश भेजें",
		"sos_alert":      "मेरे संपर्कों को सतर्क करें",
		"sos_confirm":    "पुष्टि के लिए दबाए रखें",
		"sos_cancel":     "रद्द करें",
		"language":       "भाषा",
		"voice":          "आवाज़",
		"speaking_rate":  "बोलने की गति",
		"theme":          "थीम",
		"sign_out":       "साइन आउट",
	},
	"es-ES": {
		"home_greeting":  "¿Cómo puedo ayudarte a comunicarte?",
		"talk_listen":    "Hablar y escuchar",
		"sign_language":  "Lengua de señas",
		"nearby_help":    "Ayuda cercana",
		"emergency_sos":  "SOS de emergencia",
		"settings":       "Ajustes",
		"tap_to_listen":  "Toca para escuchar",
		"listening":      "Escuchando...",
		"type_to_speak":  "Escribe para hablar",
		"speak_button":   "Hablar",
		"quick_phrases":  "Frases rápidas",
		"recent_phrases": "Recientes",
		"scan_sign":      "Escanear seña",
		"live_scan":      "Escaneo en vivo",
		"sign_history":   "Historial",
		"hospitals":      "Hospitales",
		"police":         "Comisarías",
		"pharmacies":     "Farmacias",
		"sos_call":       "Llamar a emergencias",
		"sos_text":       "Enviar SMS a emergencias",
		"sos_alert":      "Alertar a mis contactos",
		"sos_confirm":    "Mantén pulsado para confirmar",
		"sos_cancel":     "Cancelar",
		"language":       "Idioma",
		"voice":          "Voz",
		"speaking_rate":  "Velocidad de habla",
		"theme":          "Tema",
		"sign_out":       "Cerrar sesión",
	},
}
