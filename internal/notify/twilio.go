package notify

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const twilioAPIURL = "https://api.twilio.com/2010-04-01"

// Twilio implements Notifier over the Twilio REST API.
type Twilio struct {
	AccountSID string
	AuthToken  string
	From       string
	To         string

	APIURL     string
	HTTPClient *http.Client
	logger     *zap.Logger
}

func NewTwilio(accountSID, authToken, from, to string, log *zap.Logger) *Twilio {
	if log == nil {
		log = zap.NewNop()
	}
	return &Twilio{
		AccountSID: accountSID,
		AuthToken:  authToken,
		From:       from,
		To:         to,
		APIURL:     twilioAPIURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: log,
	}
}

func (t *Twilio) SendSMS(ctx context.Context, text string) error {
	data := url.Values{}
	data.Set("From", t.From)
	data.Set("To", t.To)
	data.Set("Body", text)

	return t.post(ctx, fmt.Sprintf("%s/Accounts/%s/Messages.json", t.APIURL, t.AccountSID), data)
}

func (t *Twilio) MakeCall(ctx context.Context, text string) error {
	data := url.Values{}
	data.Set("From", t.From)
	data.Set("To", t.To)
	data.Set("Twiml", fmt.Sprintf("<Response><Say voice=\"alice\">%s</Say></Response>", html.EscapeString(text)))

	return t.post(ctx, fmt.Sprintf("%s/Accounts/%s/Calls.json", t.APIURL, t.AccountSID), data)
}

func (t *Twilio) post(ctx context.Context, endpoint string, data url.Values) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return err
	}
	req.SetBasicAuth(t.AccountSID, t.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	t.logger.Debug("make request", zap.String("url", req.URL.String()))

	resp, err := t.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("bad status: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	return nil
}
