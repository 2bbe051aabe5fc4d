package domain

type AuthMethod string

const (
	AuthGoogle AuthMethod = "google"
	AuthPhone  AuthMethod = "phone"
	AuthGuest  AuthMethod = "guest"
)

type User struct {
	ID                string             `json:"id"`
	Name              string             `json:"name"`
	Email             string             `json:"email,omitempty"`
	Phone             string             `json:"phone,omitempty"`
	PhotoURL          string             `json:"photo_url,omitempty"`
	AuthMethod        AuthMethod         `json:"auth_method"`
	EmergencyContacts []EmergencyContact `json:"emergency_contacts,omitempty"`
}

type EmergencyContact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// Settings are the locally persisted user preferences.
type Settings struct {
	Voice        string  `json:"voice"`
	Rate         float64 `json:"rate"`
	Theme        string  `json:"theme"`
	LanguageCode string  `json:"language_code"`
	Onboarded    bool    `json:"onboarded"`
}

func DefaultSettings() Settings {
	return Settings{
		Voice:        "alloy",
		Rate:         1.0,
		Theme:        "light",
		LanguageCode: DefaultLanguage.Code,
	}
}
