package content

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/tonypoem-foundation/site-backend/database"
	"github.com/tonypoem-foundation/site-backend/errs"
	"github.com/tonypoem-foundation/site-backend/models"
	"github.com/tonypoem-foundation/site-backend/storage"
)

// RelatedLimit is how many related posts a detail page shows.
const RelatedLimit = 3

// Filter narrows ListFiltered to records whose Field equals Equals.
type Filter struct {
	Field     string
	Equals    string
	ExcludeID string // dropped from the result, empty for none
	Limit     int    // 0 means unlimited
	OrderBy   string // descending, empty for store order
}

// Upload is one file received from an admin or donation form.
type Upload struct {
	Name        string
	ContentType string
	Body        io.Reader
}

// RemoveResult reports what Remove actually deleted.
type RemoveResult struct {
	Removed      bool     `json:"removed"`
	BlobsDeleted int      `json:"blobsDeleted"`
	BlobsMissing []string `json:"blobsMissing,omitempty"`
}

// Repository is the only code that talks to the document and blob stores.
// Every call is single shot; failures surface as errs.ApiErr values.
type Repository struct {
	store  database.DocumentStore
	blobs  storage.BlobStore
	logger zerolog.Logger
	now    func() time.Time
	nonce  func() string
}

func NewRepository(store database.DocumentStore, blobs storage.BlobStore) *Repository {
	return &Repository{
		store:  store,
		blobs:  blobs,
		logger: log.With().Str("component", "contentRepository").Logger(),
		now:    time.Now,
		nonce:  blobNonce,
	}
}

func (r *Repository) ListAll(ctx context.Context, collection models.Collection) ([]models.Record, error) {
	docs, err := r.store.List(ctx, collection.Name, database.Query{})
	if err != nil {
		return nil, r.fetchError(collection.Name, err)
	}
	return r.decode(collection, docs), nil
}

func (r *Repository) ListFiltered(ctx context.Context, collection models.Collection, f Filter) ([]models.Record, error) {
	q := database.Query{Field: f.Field, Equals: f.Equals, OrderBy: f.OrderBy, Limit: f.Limit}
	// The excluded id may occupy one slot of the cap.
	if f.ExcludeID != "" && f.Limit > 0 {
		q.Limit = f.Limit + 1
	}

	docs, err := r.store.List(ctx, collection.Name, q)
	if err != nil {
		return nil, r.fetchError(collection.Name, err)
	}

	records := r.decode(collection, docs)
	if f.ExcludeID != "" {
		kept := records[:0]
		for _, rec := range records {
			if rec.ID != f.ExcludeID {
				kept = append(kept, rec)
			}
		}
		records = kept
	}
	if f.Limit > 0 && len(records) > f.Limit {
		records = records[:f.Limit]
	}
	return records, nil
}

func (r *Repository) Get(ctx context.Context, collection models.Collection, id string) (models.Record, error) {
	doc, err := r.store.Get(ctx, collection.Name, id)
	if errors.Is(err, database.ErrNotFound) {
		return models.Record{}, errs.NewRecordNotFoundError(collection.Entity, collection.Listing)
	}
	if err != nil {
		return models.Record{}, r.fetchError(collection.Entity, err)
	}

	rec, err := models.RecordFromFields(collection.Name, doc.ID, doc.Fields)
	if err != nil {
		return models.Record{}, errs.NewFetchError(collection.Entity, err)
	}
	return rec, nil
}

// fetchError wraps a failed read. An unreachable store is logged at error level.
func (r *Repository) fetchError(entity string, err error) error {
	if errs.IsStoreUnavailable(err) {
		r.logger.Error().Err(err).Str("entity", entity).Msg("Document store unreachable")
	}
	return errs.NewFetchError(entity, err)
}

// Related returns up to limit posts sharing rec's topic, rec itself excluded.
// A record without a topic has no related posts.
func (r *Repository) Related(ctx context.Context, collection models.Collection, rec models.Record, limit int) ([]models.Record, error) {
	if rec.Topic == nil || *rec.Topic == "" {
		return []models.Record{}, nil
	}
	return r.ListFiltered(ctx, collection, Filter{
		Field:     "topic",
		Equals:    *rec.Topic,
		ExcludeID: rec.ID,
		Limit:     limit,
	})
}

// Create stamps createdAt, derives the slug and inserts the record.
func (r *Repository) Create(ctx context.Context, collection models.Collection, rec models.Record) (string, error) {
	createdAt := r.now().UTC().Format(time.RFC3339)
	rec.CreatedAt = &createdAt
	if collection.SlugPrefix != "" {
		if title := rec.RawTitle(); title != "" {
			slug := collection.SlugPrefix + Slugify(title)
			rec.Slug = &slug
		}
	}

	fields, err := rec.Fields()
	if err != nil {
		return "", errs.NewWriteError("create", collection.Entity, err)
	}

	id, err := r.store.Insert(ctx, collection.Name, fields)
	if err != nil {
		return "", errs.NewWriteError("create", collection.Entity, err)
	}

	r.logger.Info().Str("collection", collection.Name).Str("id", id).Msg("Created record")
	return id, nil
}

// CreateWithUploads stores every upload before inserting the record. If any
// upload fails nothing is inserted; blobs already stored are removed again.
// The first upload becomes ImageURL, the rest are appended to Images.
func (r *Repository) CreateWithUploads(ctx context.Context, collection models.Collection, rec models.Record, uploads []Upload) (string, error) {
	urls := make([]string, len(uploads))

	g, gctx := errgroup.WithContext(ctx)
	for i, upload := range uploads {
		g.Go(func() error {
			url, err := r.UploadBlob(gctx, collection.BlobPrefix, upload)
			if err != nil {
				return err
			}
			urls[i] = url
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		r.discardBlobs(ctx, urls)
		return "", err
	}

	for i, url := range urls {
		if i == 0 && (rec.ImageURL == nil || *rec.ImageURL == "") {
			rec.ImageURL = &urls[0]
			continue
		}
		rec.Images = append(rec.Images, url)
	}
	return r.Create(ctx, collection, rec)
}

// Remove deletes the record and then, best effort, every blob it points at.
// A record that is already gone is not an error.
func (r *Repository) Remove(ctx context.Context, collection models.Collection, id string) (RemoveResult, error) {
	logger := r.logger.With().Str("collection", collection.Name).Str("id", id).Logger()

	var blobURLs []string
	doc, err := r.store.Get(ctx, collection.Name, id)
	switch {
	case errors.Is(err, database.ErrNotFound):
		logger.Info().Msg("Record already removed")
		return RemoveResult{}, nil
	case err != nil:
		return RemoveResult{}, errs.NewWriteError("delete", collection.Entity, err)
	default:
		if rec, decodeErr := models.RecordFromFields(collection.Name, doc.ID, doc.Fields); decodeErr == nil {
			blobURLs = rec.BlobURLs()
		} else {
			logger.Warn().Err(decodeErr).Msg("Could not read blob URLs of record being removed")
		}
	}

	err = r.store.Delete(ctx, collection.Name, id)
	if errors.Is(err, database.ErrNotFound) {
		logger.Info().Msg("Record already removed")
		return RemoveResult{}, nil
	}
	if err != nil {
		return RemoveResult{}, errs.NewWriteError("delete", collection.Entity, err)
	}

	result := RemoveResult{Removed: true}
	for _, url := range blobURLs {
		err := r.blobs.Delete(ctx, url)
		switch {
		case err == nil:
			result.BlobsDeleted++
		case errors.Is(err, storage.ErrBlobNotFound):
			logger.Warn().Str("url", url).Msg("Blob already missing, continuing")
			result.BlobsMissing = append(result.BlobsMissing, url)
		default:
			logger.Error().Err(err).Str("url", url).Msg("Failed to delete blob, continuing")
		}
	}

	logger.Info().Int("blobsDeleted", result.BlobsDeleted).Msg("Removed record")
	return result, nil
}

// UploadBlob stores one file under prefix/<name>-<unix millis>-<nonce> and
// returns its public URL.
func (r *Repository) UploadBlob(ctx context.Context, prefix string, upload Upload) (string, error) {
	if upload.Body == nil {
		return "", errs.NewMissingRequiredFieldError("image")
	}

	key := BlobKey(prefix, upload.Name, r.now(), r.nonce())
	url, err := r.blobs.Put(ctx, key, upload.ContentType, upload.Body)
	if err != nil {
		return "", errs.NewUploadError(upload.Name, err)
	}

	r.logger.Debug().Str("key", key).Msg("Uploaded blob")
	return url, nil
}

func blobNonce() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

func (r *Repository) discardBlobs(ctx context.Context, urls []string) {
	for _, url := range urls {
		if url == "" {
			continue
		}
		if err := r.blobs.Delete(context.WithoutCancel(ctx), url); err != nil {
			r.logger.Warn().Err(err).Str("url", url).Msg("Failed to discard blob after aborted create")
		}
	}
}

func (r *Repository) decode(collection models.Collection, docs []database.Document) []models.Record {
	records := make([]models.Record, 0, len(docs))
	for _, doc := range docs {
		rec, err := models.RecordFromFields(collection.Name, doc.ID, doc.Fields)
		if err != nil {
			r.logger.Warn().Err(err).Str("collection", collection.Name).Str("id", doc.ID).Msg("Skipping undecodable record")
			continue
		}
		records = append(records, rec)
	}
	return records
}
