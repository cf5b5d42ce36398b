package content

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonypoem-foundation/site-backend/database"
	"github.com/tonypoem-foundation/site-backend/errs"
	"github.com/tonypoem-foundation/site-backend/models"
	"github.com/tonypoem-foundation/site-backend/storage"
)

// flakyStore fails the named operations and delegates the rest.
type flakyStore struct {
	*database.MemoryStore
	failList   error
	failInsert error
	inserts    int
}

func (f *flakyStore) List(ctx context.Context, collection string, q database.Query) ([]database.Document, error) {
	if f.failList != nil {
		return nil, f.failList
	}
	return f.MemoryStore.List(ctx, collection, q)
}

func (f *flakyStore) Insert(ctx context.Context, collection string, fields map[string]any) (string, error) {
	f.inserts++
	if f.failInsert != nil {
		return "", f.failInsert
	}
	return f.MemoryStore.Insert(ctx, collection, fields)
}

func newTestRepository(t *testing.T) (*Repository, *flakyStore, *storage.MemoryStore) {
	t.Helper()
	store := &flakyStore{MemoryStore: database.NewMemoryStore()}
	blobs := storage.NewMemoryStore("https://cdn.example.org")
	repo := NewRepository(store, blobs)
	repo.now = func() time.Time { return time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC) }
	return repo, store, blobs
}

func post(title, topic, date string) models.Record {
	return models.Record{Title: models.String(title), Topic: models.String(topic), Date: models.String(date)}
}

func TestCreateStampsAndSlugs(t *testing.T) {
	repo, _, _ := newTestRepository(t)
	ctx := context.Background()

	id, err := repo.Create(ctx, models.Blogs, post("Summer  Camp\tRecap", "Youth", "2024-07-01"))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := repo.Get(ctx, models.Blogs, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "/blog/summer-camp-recap", *got.Slug)
	assert.Equal(t, "2024-03-09T12:00:00Z", *got.CreatedAt)

	id, err = repo.Create(ctx, models.Leadership, models.Record{Name: models.String("Ada Lovelace")})
	require.NoError(t, err)
	got, err = repo.Get(ctx, models.Leadership, id)
	require.NoError(t, err)
	assert.Nil(t, got.Slug)
}

func TestCreateFailureIsWriteError(t *testing.T) {
	repo, store, _ := newTestRepository(t)
	store.failInsert = errors.New("permission denied")

	_, err := repo.Create(context.Background(), models.Blogs, post("x", "y", ""))
	require.Error(t, err)
	assert.True(t, errs.IsWriteError(err))
}

func TestListAllFetchError(t *testing.T) {
	repo, store, _ := newTestRepository(t)
	store.failList = errors.New("network unreachable")

	_, err := repo.ListAll(context.Background(), models.Blogs)
	require.Error(t, err)
	assert.True(t, errs.IsFetchError(err))
	assert.Contains(t, err.Error(), "Failed to fetch blogs. Please try again later.")
}

func TestListFilteredAndRelated(t *testing.T) {
	repo, _, _ := newTestRepository(t)
	ctx := context.Background()

	var youth []string
	for i, date := range []string{"2024-01-01", "2024-02-01", "2024-03-01", "2024-04-01"} {
		id, err := repo.Create(ctx, models.Blogs, post("Youth "+string(rune('A'+i)), "Youth", date))
		require.NoError(t, err)
		youth = append(youth, id)
	}
	_, err := repo.Create(ctx, models.Blogs, post("Clinic", "Health", "2024-05-01"))
	require.NoError(t, err)

	all, err := repo.ListFiltered(ctx, models.Blogs, Filter{Field: "topic", Equals: "Youth"})
	require.NoError(t, err)
	assert.Len(t, all, 4)

	current, err := repo.Get(ctx, models.Blogs, youth[3])
	require.NoError(t, err)

	related, err := repo.Related(ctx, models.Blogs, current, RelatedLimit)
	require.NoError(t, err)
	require.Len(t, related, 3)
	for _, rec := range related {
		assert.NotEqual(t, current.ID, rec.ID)
		assert.Equal(t, "Youth", rec.TopicOrDefault())
	}

	latest, err := repo.ListFiltered(ctx, models.Blogs, Filter{OrderBy: "date", Limit: 3})
	require.NoError(t, err)
	require.Len(t, latest, 3)
	assert.Equal(t, "Clinic", latest[0].DisplayTitle())
	assert.Equal(t, "Youth D", latest[1].DisplayTitle())

	related, err = repo.Related(ctx, models.Blogs, models.Record{ID: "x"}, RelatedLimit)
	require.NoError(t, err)
	assert.Empty(t, related)
}

func TestListAllKeepsRecordsWithStoreNativeValues(t *testing.T) {
	repo, store, _ := newTestRepository(t)
	ctx := context.Background()

	_, err := store.Insert(ctx, "blogs", map[string]any{"title": "Epoch dated", "date": int64(1700000000000)})
	require.NoError(t, err)
	_, err = store.Insert(ctx, "blogs", map[string]any{"title": "Firestore dated", "date": map[string]any{"seconds": 1709985600, "nanoseconds": 0}})
	require.NoError(t, err)
	_, err = store.Insert(ctx, "blogs", map[string]any{"title": "Plain", "date": "2024-05-01"})
	require.NoError(t, err)

	records, err := repo.ListAll(ctx, models.Blogs)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "November 14, 2023", records[0].FormattedDate())
	assert.Equal(t, "March 9, 2024", records[1].FormattedDate())
	assert.Equal(t, "May 1, 2024", records[2].FormattedDate())
}

func TestGetMissingRedirectsToListing(t *testing.T) {
	repo, _, _ := newTestRepository(t)

	_, err := repo.Get(context.Background(), models.Blogs, "nope")
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))

	var apiErr *errs.ApiErr
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "/blog", apiErr.Redirect)
}

func TestCreateWithUploads(t *testing.T) {
	repo, _, blobs := newTestRepository(t)
	ctx := context.Background()

	id, err := repo.CreateWithUploads(ctx, models.Programs, models.Record{Name: models.String("Coding Club")}, []Upload{
		{Name: "club.png", ContentType: "image/png", Body: strings.NewReader("a")},
		{Name: "room.png", ContentType: "image/png", Body: strings.NewReader("b")},
	})
	require.NoError(t, err)

	got, err := repo.Get(ctx, models.Programs, id)
	require.NoError(t, err)
	require.NotNil(t, got.ImageURL)
	assert.Regexp(t, `^https://cdn\.example\.org/program-images/club\.png-1709985600000-[0-9a-f]{8}$`, *got.ImageURL)
	require.Len(t, got.Images, 1)
	assert.Regexp(t, `^https://cdn\.example\.org/program-images/room\.png-1709985600000-[0-9a-f]{8}$`, got.Images[0])
	assert.Equal(t, "/programs/coding-club", *got.Slug)
	assert.Equal(t, 2, blobs.Len())
}

func TestCreateWithUploadsKeepsSameNamedFiles(t *testing.T) {
	repo, _, blobs := newTestRepository(t)
	ctx := context.Background()

	id, err := repo.CreateWithUploads(ctx, models.Programs, models.Record{Name: models.String("Field Day")}, []Upload{
		{Name: "image.jpg", ContentType: "image/jpeg", Body: strings.NewReader("first")},
		{Name: "image.jpg", ContentType: "image/jpeg", Body: strings.NewReader("second")},
		{Name: "image.jpg", ContentType: "image/jpeg", Body: strings.NewReader("third")},
	})
	require.NoError(t, err)

	got, err := repo.Get(ctx, models.Programs, id)
	require.NoError(t, err)
	require.NotNil(t, got.ImageURL)
	require.Len(t, got.Images, 2)
	assert.Equal(t, 3, blobs.Len())

	urls := map[string]bool{*got.ImageURL: true}
	for _, url := range got.Images {
		urls[url] = true
	}
	assert.Len(t, urls, 3)
}

func TestBlobKey(t *testing.T) {
	at := time.UnixMilli(1700000000000)
	assert.Equal(t, "blogs/garden.png-1700000000000-ab12cd34", BlobKey("/blogs/", "garden.png", at, "ab12cd34"))
	assert.Equal(t, "upload-1700000000000", BlobKey("", "  ", at, ""))
	assert.Equal(t, "donations/proof.pdf-1700000000000-x", BlobKey("donations", `C:\scans\proof.pdf`, at, "x"))
}

func TestCreateWithUploadsAbortsOnFailedUpload(t *testing.T) {
	repo, store, blobs := newTestRepository(t)
	blobs.FailPuts("blogs/broken", errors.New("quota exceeded"))

	_, err := repo.CreateWithUploads(context.Background(), models.Blogs, post("Gala", "Events", ""), []Upload{
		{Name: "ok.png", Body: strings.NewReader("a")},
		{Name: "broken.png", Body: strings.NewReader("b")},
	})
	require.Error(t, err)
	assert.True(t, errs.IsUploadError(err))
	assert.Zero(t, store.inserts)
	assert.Zero(t, blobs.Len())
}

func TestRemove(t *testing.T) {
	repo, _, blobs := newTestRepository(t)
	ctx := context.Background()

	id, err := repo.CreateWithUploads(ctx, models.Testimonials, models.Record{Name: models.String("Jo")}, []Upload{
		{Name: "jo.jpg", Body: strings.NewReader("jpg")},
	})
	require.NoError(t, err)

	result, err := repo.Remove(ctx, models.Testimonials, id)
	require.NoError(t, err)
	assert.Equal(t, RemoveResult{Removed: true, BlobsDeleted: 1}, result)
	assert.Zero(t, blobs.Len())

	result, err = repo.Remove(ctx, models.Testimonials, id)
	require.NoError(t, err)
	assert.False(t, result.Removed)
}

func TestRemoveContinuesWhenBlobMissing(t *testing.T) {
	repo, _, _ := newTestRepository(t)
	ctx := context.Background()

	rec := post("Old post", "News", "2020-01-01")
	rec.ImageURL = models.String("https://cdn.example.org/blogs/gone.png-1")
	id, err := repo.Create(ctx, models.Blogs, rec)
	require.NoError(t, err)

	result, err := repo.Remove(ctx, models.Blogs, id)
	require.NoError(t, err)
	assert.True(t, result.Removed)
	assert.Equal(t, []string{"https://cdn.example.org/blogs/gone.png-1"}, result.BlobsMissing)

	_, err = repo.Get(ctx, models.Blogs, id)
	assert.True(t, errs.IsNotFound(err))
}

func TestUploadBlobRequiresBody(t *testing.T) {
	repo, _, _ := newTestRepository(t)

	_, err := repo.UploadBlob(context.Background(), "donations", Upload{Name: "proof.png"})
	assert.True(t, errs.IsMissingRequiredFieldError(err))
}
