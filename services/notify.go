package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/tonypoem-foundation/site-backend/config"
	"github.com/tonypoem-foundation/site-backend/models"
)

// Notifier tells the foundation's staff about public form submissions.
type Notifier interface {
	ContactReceived(ctx context.Context, rec models.Record) error
	DonationReceived(ctx context.Context, rec models.Record) error
}

// EmailNotifier sends submission notices to NOTIFY_EMAILS.
type EmailNotifier struct {
	mailer     *Mailer
	recipients []string
	baseURL    string
}

func NewEmailNotifier(cfg map[string]string) *EmailNotifier {
	return &EmailNotifier{
		mailer:     NewMailer(cfg),
		recipients: config.GetList(cfg, "NOTIFY_EMAILS"),
		baseURL:    GetBaseURL(cfg),
	}
}

func value(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func (n *EmailNotifier) ContactReceived(ctx context.Context, rec models.Record) error {
	if len(n.recipients) == 0 {
		log.Debug().Msg("No NOTIFY_EMAILS configured, skipping contact notification")
		return nil
	}

	body := "<p>A new message was sent through the contact form.</p>" + detailRows(
		[2]string{"Name", value(rec.Name)},
		[2]string{"Email", value(rec.Email)},
		[2]string{"Message", value(rec.Message)},
		[2]string{"Submitted", value(rec.SubmittedAt)},
		[2]string{"Dashboard", BuildPageURL(n.baseURL, "/manageContent?collection="+models.Contacts.Name)},
	)
	return n.mailer.Send(ctx, Email{
		To:      n.recipients,
		Subject: fmt.Sprintf("New contact message from %s", rec.DisplayTitle()),
		HTML:    body,
		ReplyTo: value(rec.Email),
	})
}

func (n *EmailNotifier) DonationReceived(ctx context.Context, rec models.Record) error {
	if len(n.recipients) == 0 {
		log.Debug().Msg("No NOTIFY_EMAILS configured, skipping donation notification")
		return nil
	}

	body := "<p>A new donation pledge was submitted.</p>" + detailRows(
		[2]string{"Name", value(rec.Name)},
		[2]string{"Email", value(rec.Email)},
		[2]string{"Amount", value(rec.Amount)},
		[2]string{"Message", value(rec.Message)},
		[2]string{"Proof", value(rec.ImageURL)},
		[2]string{"Dashboard", BuildPageURL(n.baseURL, "/manageContent?collection="+models.Donations.Name)},
	)
	return n.mailer.Send(ctx, Email{
		To:      n.recipients,
		Subject: fmt.Sprintf("New donation pledge from %s", rec.DisplayTitle()),
		HTML:    body,
		ReplyTo: value(rec.Email),
	})
}
