package notify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gokulchand98/jobscout/internal/job"
	"github.com/gokulchand98/jobscout/internal/policy"
)

type fakeNotifier struct {
	smsTexts  []string
	callTexts []string
	smsErr    error
	callErr   error
}

func (f *fakeNotifier) SendSMS(_ context.Context, text string) error {
	f.smsTexts = append(f.smsTexts, text)
	return f.smsErr
}

func (f *fakeNotifier) MakeCall(_ context.Context, text string) error {
	f.callTexts = append(f.callTexts, text)
	return f.callErr
}

func matchPosting() *job.Posting {
	return &job.Posting{
		ID:             "remotive_1",
		Title:          "Senior Data Engineer",
		Company:        "Acme",
		Location:       "Remote",
		URL:            "https://example.com/jobs/1",
		RelevanceScore: 32,
	}
}

func TestNotifyMatchCallTier(t *testing.T) {
	fake := &fakeNotifier{}
	m := NewManager(fake, zap.NewNop())

	result := m.NotifyMatch(context.Background(), matchPosting(), policy.TierCall)

	require.True(t, result.CallMade)
	assert.False(t, result.SMSSent)
	require.Len(t, fake.callTexts, 1)
	assert.Contains(t, fake.callTexts[0], "Senior Data Engineer")
	assert.Contains(t, fake.callTexts[0], "Acme")
	assert.Empty(t, fake.smsTexts, "call tier must not also send sms")
}

func TestNotifyMatchSMSTier(t *testing.T) {
	fake := &fakeNotifier{}
	m := NewManager(fake, zap.NewNop())

	result := m.NotifyMatch(context.Background(), matchPosting(), policy.TierSMS)

	require.True(t, result.SMSSent)
	require.Len(t, fake.smsTexts, 1)
	assert.Contains(t, fake.smsTexts[0], "Acme")
}

func TestNotifyMatchNoneTier(t *testing.T) {
	fake := &fakeNotifier{}
	m := NewManager(fake, zap.NewNop())

	result := m.NotifyMatch(context.Background(), matchPosting(), policy.TierNone)

	assert.False(t, result.SMSSent)
	assert.False(t, result.CallMade)
	assert.Empty(t, fake.smsTexts)
	assert.Empty(t, fake.callTexts)
}

func TestNotifyMatchDeliveryFailureIsRecordedNotRaised(t *testing.T) {
	fake := &fakeNotifier{smsErr: errors.New("quota exceeded")}
	m := NewManager(fake, zap.NewNop())

	result := m.NotifyMatch(context.Background(), matchPosting(), policy.TierSMS)

	assert.False(t, result.SMSSent)
	assert.NotEmpty(t, result.Reason)
}

func TestNotifyMatchNilNotifier(t *testing.T) {
	m := NewManager(nil, zap.NewNop())
	result := m.NotifyMatch(context.Background(), matchPosting(), policy.TierCall)
	assert.False(t, result.CallMade)
}

func TestTwilioSendSMS(t *testing.T) {
	var gotPath, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, r.ParseForm())
		gotBody = r.FormValue("Body")

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "AC123", user)
		assert.Equal(t, "token", pass)

		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	tw := NewTwilio("AC123", "token", "+15550001111", "+15552223333", zap.NewNop())
	tw.APIURL = server.URL

	require.NoError(t, tw.SendSMS(context.Background(), "job match"))
	assert.Equal(t, "/Accounts/AC123/Messages.json", gotPath)
	assert.Equal(t, "job match", gotBody)
}

func TestTwilioMakeCallEscapesScript(t *testing.T) {
	var gotTwiml string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotTwiml = r.FormValue("Twiml")
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	tw := NewTwilio("AC123", "token", "+15550001111", "+15552223333", zap.NewNop())
	tw.APIURL = server.URL

	require.NoError(t, tw.MakeCall(context.Background(), "Data & ML <match>"))
	assert.True(t, strings.Contains(gotTwiml, "Data &amp; ML &lt;match&gt;"), "script must be xml-escaped: %s", gotTwiml)
}

func TestTwilioBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	tw := NewTwilio("AC123", "bad", "+1", "+2", zap.NewNop())
	tw.APIURL = server.URL

	assert.Error(t, tw.SendSMS(context.Background(), "text"))
}
