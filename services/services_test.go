package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonypoem-foundation/site-backend/models"
)

func newResendServer(t *testing.T, status int, got *[]Email) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))

		var req Email
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		*got = append(*got, req)

		w.WriteHeader(status)
		if status == http.StatusOK {
			_, _ = w.Write([]byte(`{"id":"email_1"}`))
			return
		}
		_, _ = w.Write([]byte(`{"message":"domain not verified"}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(baseURL string) map[string]string {
	return map[string]string{
		"RESEND_API_KEY":    "re_test",
		"RESEND_FROM_EMAIL": "Foundation <site@example.org>",
		"RESEND_BASE_URL":   baseURL,
		"NOTIFY_EMAILS":     "staff@example.org, director@example.org",
		"BASE_URL":          "https://example.org/",
	}
}

func TestContactReceived(t *testing.T) {
	var sent []Email
	srv := newResendServer(t, http.StatusOK, &sent)
	n := NewEmailNotifier(testConfig(srv.URL))

	err := n.ContactReceived(context.Background(), models.Record{
		Name:    models.String("Sam"),
		Email:   models.String("sam@example.org"),
		Message: models.String("<b>Hello</b>\nthere"),
	})
	require.NoError(t, err)
	require.Len(t, sent, 1)

	email := sent[0]
	assert.Equal(t, "Foundation <site@example.org>", email.From)
	assert.Equal(t, []string{"staff@example.org", "director@example.org"}, email.To)
	assert.Equal(t, "New contact message from Sam", email.Subject)
	assert.Equal(t, "sam@example.org", email.ReplyTo)
	assert.Contains(t, email.HTML, "&lt;b&gt;Hello&lt;/b&gt;<br>there")
	assert.Contains(t, email.HTML, "https://example.org/manageContent?collection=contacts")
}

func TestDonationReceivedLinksDashboard(t *testing.T) {
	var sent []Email
	srv := newResendServer(t, http.StatusOK, &sent)
	n := NewEmailNotifier(testConfig(srv.URL))

	require.NoError(t, n.DonationReceived(context.Background(), models.Record{
		Name:   models.String("Lee"),
		Amount: models.String("50"),
	}))
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].HTML, "https://example.org/manageContent?collection=donations")
	assert.Contains(t, sent[0].HTML, "<td>50</td>")
}

func TestResendErrorIsReported(t *testing.T) {
	var sent []Email
	srv := newResendServer(t, http.StatusForbidden, &sent)
	n := NewEmailNotifier(testConfig(srv.URL))

	err := n.ContactReceived(context.Background(), models.Record{Name: models.String("Sam")})
	assert.ErrorContains(t, err, "resend API error (status 403): domain not verified")
}

func TestDisabledMailerAndNoRecipients(t *testing.T) {
	m := NewMailer(map[string]string{})
	assert.False(t, m.Enabled())
	assert.NoError(t, m.Send(context.Background(), Email{To: []string{"x@example.org"}}))
	assert.Error(t, m.Send(context.Background(), Email{}))

	n := NewEmailNotifier(map[string]string{"RESEND_API_KEY": "re_test", "RESEND_FROM_EMAIL": "a@b.c"})
	assert.NoError(t, n.ContactReceived(context.Background(), models.Record{}))
}

func TestBuildPageURL(t *testing.T) {
	assert.Equal(t, "https://example.org/blog/summer-camp", BuildPageURL("https://example.org", "/blog/summer-camp"))
	assert.Empty(t, BuildPageURL("", "/blog/x"))
	assert.Equal(t, "https://example.org", GetBaseURL(map[string]string{"BASE_URL": "https://example.org/"}))
}
