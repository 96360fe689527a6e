package web

import (
	"bytes"
	"encoding/json"
	"html/template"
	"net/url"
)

// WidgetStrings are the labels shown by the altcha widget.
type WidgetStrings struct {
	AriaLinkLabel string `json:"ariaLinkLabel"`
	Error         string `json:"error"`
	Expired       string `json:"expired"`
	Footer        string `json:"footer"`
	Label         string `json:"label"`
	Verified      string `json:"verified"`
	Verifying     string `json:"verifying"`
	WaitAlert     string `json:"waitAlert"`
}

var DefaultWidgetStrings = WidgetStrings{
	AriaLinkLabel: "Visit Altcha.org",
	Error:         "Verification failed. Try again later.",
	Expired:       "Verification expired. Try again.",
	Footer:        "Protected by ALTCHA",
	Label:         "I'm not a robot",
	Verified:      "Verified",
	Verifying:     "Verifying...",
	WaitAlert:     "Verifying... please wait.",
}

var widgetTemplate = template.Must(template.New("widget").Parse(
	`<altcha-widget name="{{.Name}}" id="{{.ID}}" class="{{.Class}}" hidefooter hidelogo auto="{{.Auto}}" strings="{{.Strings}}" challengeurl="{{.ChallengeURL}}"></altcha-widget>`,
))

type widgetData struct {
	Name         string
	ID           string
	Class        string
	Auto         string
	Strings      string
	ChallengeURL string
}

// renderWidget returns the <altcha-widget> element for a form field. The
// challenge url carries the session's anti-forgery token.
func renderWidget(name, id, class, auto string, labels WidgetStrings, challengePath, token string) ([]byte, error) {
	rawLabels, err := json.Marshal(labels)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	err = widgetTemplate.Execute(&buf, widgetData{
		Name:         name,
		ID:           id,
		Class:        class,
		Auto:         auto,
		Strings:      string(rawLabels),
		ChallengeURL: challengePath + "?" + url.Values{tokenParam: {token}}.Encode(),
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
