package api

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tonypoem-foundation/site-backend/content"
	"github.com/tonypoem-foundation/site-backend/models"
	"github.com/tonypoem-foundation/site-backend/services"
)

// notifyTimeout bounds the staff email sent after a submission is stored.
const notifyTimeout = 15 * time.Second

type submissionHandler struct {
	responder Responder
	logger    zerolog.Logger
	repo      *content.Repository
	guard     *content.Guard
	notifier  services.Notifier
}

func newSubmissionHandler(repo *content.Repository, guard *content.Guard, notifier services.Notifier) submissionHandler {
	logger := log.With().Str("handlerName", "submissionHandler").Logger()

	return submissionHandler{
		responder: NewResponder(logger),
		logger:    logger,
		repo:      repo,
		guard:     guard,
		notifier:  notifier,
	}
}

func describeForm(responder Responder, form formSpec) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responder.WriteJSON(w, form.describe())
	}
}

func stampSubmitted(rec *models.Record) {
	now := time.Now().UTC().Format(time.RFC3339)
	rec.SubmittedAt = &now
}

// submitContact stores a contact message and emails the staff
// @Summary Send contact message
// @Tags Forms
// @Accept json,multipart/form-data
// @Produce json
// @Param name formData string true "Name"
// @Param email formData string true "Email"
// @Param message formData string true "Message"
// @Success 201 {object} CreatedResponse
// @Failure 400 {object} ErrorResponse "Bad Request - missing field"
// @Failure 502 {object} ErrorResponse "Failed to create Message"
// @Router /contact [post]
func (h submissionHandler) submitContact() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		created, ok := storeForm(w, r, h.responder, h.repo, h.guard, contactForm, stampSubmitted)
		if !ok {
			return
		}

		h.notify(r.Context(), created, h.notifier.ContactReceived)
		h.responder.WriteCreated(w, CreatedResponse{
			Status:  "success",
			ID:      created.ID,
			Record:  created,
			Message: "Thank you for reaching out! We'll get back to you soon.",
		})
	}
}

// submitDonation stores a donation pledge with an optional proof of payment
// @Summary Submit donation
// @Tags Forms
// @Accept multipart/form-data,json
// @Produce json
// @Param name formData string true "Donor name"
// @Param email formData string true "Donor email"
// @Param amount formData string false "Amount"
// @Param message formData string false "Message"
// @Param image formData file false "Proof of payment"
// @Success 201 {object} CreatedResponse
// @Failure 502 {object} ErrorResponse "Upload failed, nothing was saved"
// @Router /donation [post]
func (h submissionHandler) submitDonation() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		created, ok := storeForm(w, r, h.responder, h.repo, h.guard, donationForm, stampSubmitted)
		if !ok {
			return
		}

		h.notify(r.Context(), created, h.notifier.DonationReceived)
		h.responder.WriteCreated(w, CreatedResponse{
			Status:  "success",
			ID:      created.ID,
			Record:  created,
			Message: "Thank you for your generous donation!",
		})
	}
}

// notify sends the staff email. The submission is already stored, so a
// failed email is logged and not reported to the sender.
func (h submissionHandler) notify(ctx context.Context, rec models.Record, send func(context.Context, models.Record) error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	if err := send(ctx, rec); err != nil {
		h.logger.Error().Err(err).Str("collection", rec.Collection).Str("id", rec.ID).Msg("Failed to send submission notification")
	}
}
