package domain

import (
	"fmt"
	"net/url"
)

type IntentKind string

const (
	IntentDial IntentKind = "dial"
	IntentSMS  IntentKind = "sms"
)

// Intent describes an outbound platform action (phone dial or SMS
// compose) the user must confirm before it is launched.
type Intent struct {
	Kind IntentKind
	To   string
	Body string
	URI  string
}

func DialIntent(phone string) Intent {
	return Intent{
		Kind: IntentDial,
		To:   phone,
		URI:  "tel:" + phone,
	}
}

func SMSIntent(phone, body string) Intent {
	return Intent{
		Kind: IntentSMS,
		To:   phone,
		Body: body,
		URI:  fmt.Sprintf("sms:%s?body=%s", phone, url.QueryEscape(body)),
	}
}
