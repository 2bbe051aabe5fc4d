package domain

type Mode string

const (
	ModeHome       Mode = "home"
	ModeTalkListen Mode = "talk_listen"
	ModeSign       Mode = "sign"
	ModeSOS        Mode = "sos"
	ModeNearby     Mode = "nearby"
	ModeSettings   Mode = "settings"
)
