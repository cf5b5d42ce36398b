package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordDefaults(t *testing.T) {
	empty := Record{}
	assert.Equal(t, UntitledLabel, empty.DisplayTitle())
	assert.Equal(t, UncategorizedLabel, empty.TopicOrDefault())
	assert.Equal(t, UnknownYearLabel, empty.YearOrDefault())
	assert.Equal(t, NoDateLabel, empty.FormattedDate())

	blank := Record{Title: String("  "), Topic: String("")}
	assert.Equal(t, UntitledLabel, blank.DisplayTitle())
	assert.Equal(t, UncategorizedLabel, blank.TopicOrDefault())

	program := Record{Name: String("Skill Acquisition"), Category: String("Training")}
	assert.Equal(t, "Skill Acquisition", program.DisplayTitle())
	assert.Equal(t, "Training", program.TopicOrDefault())
}

func TestRecordDates(t *testing.T) {
	cases := []struct {
		date      string
		year      string
		formatted string
	}{
		{"2024-03-10T09:30:00.000Z", "2024", "March 10, 2024"},
		{"2023-12-31", "2023", "December 31, 2023"},
		{"2024-02-25T10:00:00+01:00", "2024", "February 25, 2024"},
		{"not a date", UnknownYearLabel, NoDateLabel},
	}

	for _, tc := range cases {
		r := Record{Date: String(tc.date)}
		assert.Equal(t, tc.year, r.YearOrDefault(), tc.date)
		assert.Equal(t, tc.formatted, r.FormattedDate(), tc.date)
	}
}

func TestExcerptStripsMarkup(t *testing.T) {
	r := Record{Content: String("<p>Youth <strong>empowerment</strong> &amp; training</p><p>second paragraph</p>")}

	assert.Equal(t, "Youth empowerment & training second paragraph", r.Excerpt(200))
	assert.Equal(t, "Youth...", r.Excerpt(6))
	assert.Empty(t, Record{}.Excerpt(10))
}

func TestBlobURLs(t *testing.T) {
	r := Record{ImageURL: String("https://cdn/a.png"), Images: []string{"https://cdn/b.png", " "}}
	assert.Equal(t, []string{"https://cdn/a.png", "https://cdn/b.png"}, r.BlobURLs())
}

func TestFieldsOmitAddressing(t *testing.T) {
	r := Record{ID: "abc", Collection: "blogs", Title: String("Hello"), Images: []string{"u"}}

	fields, err := r.Fields()
	require.NoError(t, err)
	assert.NotContains(t, fields, "id")
	assert.NotContains(t, fields, "collection")
	assert.Equal(t, "Hello", fields["title"])

	back, err := RecordFromFields("blogs", "abc", fields)
	require.NoError(t, err)
	assert.Equal(t, r, back)
}

func TestRecordFromFieldsCoercesStoredValues(t *testing.T) {
	rec, err := RecordFromFields("blogs", "x", map[string]any{
		"title":       42,
		"date":        float64(1700000000000),
		"createdAt":   map[string]any{"seconds": float64(1709985600), "nanoseconds": float64(0)},
		"submittedAt": map[string]any{"_seconds": 1709985600},
		"amount":      12.5,
		"topic":       true,
		"images":      []any{"https://cdn.example.org/a.png", 7, ""},
		"imageUrl":    map[string]any{"path": "nowhere"},
		"content":     []any{"not", "text"},
	})
	require.NoError(t, err)

	assert.Equal(t, "42", rec.DisplayTitle())
	assert.Equal(t, "2023-11-14T22:13:20Z", *rec.Date)
	assert.Equal(t, "November 14, 2023", rec.FormattedDate())
	assert.Equal(t, "2023", rec.YearOrDefault())
	assert.Equal(t, "2024-03-09T12:00:00Z", *rec.CreatedAt)
	assert.Equal(t, "2024-03-09T12:00:00Z", *rec.SubmittedAt)
	assert.Equal(t, "12.5", *rec.Amount)
	assert.Equal(t, "true", *rec.Topic)
	assert.Equal(t, []string{"https://cdn.example.org/a.png"}, rec.Images)
	assert.Nil(t, rec.ImageURL)
	assert.Nil(t, rec.Content)
}

func TestRecordFromFieldsDegradesUnusableDate(t *testing.T) {
	rec, err := RecordFromFields("blogs", "x", map[string]any{
		"title": "Winter drive",
		"date":  map[string]any{"when": "soon"},
	})
	require.NoError(t, err)
	assert.Nil(t, rec.Date)
	assert.Equal(t, NoDateLabel, rec.FormattedDate())
	assert.Equal(t, UnknownYearLabel, rec.YearOrDefault())

	epochSeconds, err := RecordFromFields("blogs", "y", map[string]any{"date": 1700000000})
	require.NoError(t, err)
	assert.Equal(t, "2023-11-14T22:13:20Z", *epochSeconds.Date)
}

func TestLookupCollection(t *testing.T) {
	c, ok := LookupCollection("programs")
	require.True(t, ok)
	assert.Equal(t, "program-images", c.BlobPrefix)

	_, ok = LookupCollection("users")
	assert.False(t, ok)
}

func TestFindColumnMismatches(t *testing.T) {
	got := findColumnMismatches([]string{"id", "collection", "fields", "updated_at"}, []string{"id", "collection", "fields", "created_at"})
	assert.Equal(t, []string{"updated_at"}, got)
}
