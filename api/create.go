package api

import (
	"net/http"
	"strings"

	"github.com/tonypoem-foundation/site-backend/content"
	"github.com/tonypoem-foundation/site-backend/models"
)

// createTarget names the mutation the busy guard tracks for a new record:
// the same title (and sender) in the same collection.
func createTarget(collection models.Collection, rec models.Record) string {
	parts := []string{"create", collection.Name, strings.ToLower(rec.DisplayTitle())}
	if rec.Email != nil {
		parts = append(parts, strings.ToLower(*rec.Email))
	}
	return strings.Join(parts, ":")
}

// storeForm parses the request, uploads its files and inserts the record.
// It writes the error response itself and reports ok=false on failure.
func storeForm(w http.ResponseWriter, r *http.Request, responder Responder, repo *content.Repository, guard *content.Guard, form formSpec, prepare func(*models.Record)) (models.Record, bool) {
	parsed, err := form.parse(w, r)
	if err != nil {
		responder.WriteError(w, err)
		return models.Record{}, false
	}
	defer parsed.close()

	if prepare != nil {
		prepare(&parsed.record)
	}

	release, err := guard.Acquire(createTarget(form.collection, parsed.record))
	if err != nil {
		responder.WriteError(w, err)
		return models.Record{}, false
	}
	defer release()

	id, err := repo.CreateWithUploads(r.Context(), form.collection, parsed.record, parsed.uploads)
	if err != nil {
		responder.WriteError(w, err)
		return models.Record{}, false
	}

	created, err := repo.Get(r.Context(), form.collection, id)
	if err != nil {
		// Stored, but not yet readable back; answer with what was sent.
		responder.logger.Warn().Err(err).Str("id", id).Msg("Failed to read back created record")
		created = parsed.record
		created.ID = id
		created.Collection = form.collection.Name
	}
	return created, true
}

// createRecord is the handler behind the admin add* routes. prepare, if set,
// fills in derived fields before the record is stored.
func createRecord(responder Responder, repo *content.Repository, guard *content.Guard, form formSpec, prepare func(*models.Record), message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		created, ok := storeForm(w, r, responder, repo, guard, form, prepare)
		if !ok {
			return
		}

		responder.WriteCreated(w, CreatedResponse{
			Status:   "success",
			ID:       created.ID,
			Record:   created,
			Message:  message,
			Redirect: "/manageContent",
		})
	}
}
