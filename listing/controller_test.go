package listing

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonypoem-foundation/site-backend/models"
)

func rec(id, title, topic, date string) models.Record {
	return models.Record{
		ID:    id,
		Title: models.String(title),
		Topic: models.String(topic),
		Date:  models.String(date),
	}
}

// sevenPosts spans 2023 and 2024 with four Youth posts.
func sevenPosts() []models.Record {
	return []models.Record{
		rec("1", "Spring garden", "Youth", "2023-03-01"),
		rec("2", "Board update", "News", "2023-06-10"),
		rec("3", "Summer camp", "Youth", "2023-07-20"),
		rec("4", "Coding club", "Education", "2024-01-15"),
		rec("5", "Youth mentors", "Youth", "2024-02-02"),
		rec("6", "Annual gala", "Events", "2024-05-05"),
		rec("7", "Robotics team", "Youth", "2024-09-09"),
	}
}

func ids(records []models.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}

func TestYouthTopicPaginates(t *testing.T) {
	c := NewController(BlogPageSize)
	c.SetRecords(sevenPosts())
	c.SetTopic("Youth")

	assert.Len(t, c.Filtered(), 4)
	assert.Equal(t, 2, c.TotalPages())
	assert.True(t, c.ShowPagination())
	assert.Equal(t, []string{"1", "3", "5"}, ids(c.PageSlice()))
	assert.False(t, c.HasPrev())
	assert.True(t, c.HasNext())

	c.Next()
	assert.Equal(t, 2, c.Page())
	assert.Equal(t, []string{"7"}, ids(c.PageSlice()))
	assert.False(t, c.HasNext())

	c.Next()
	assert.Equal(t, 2, c.Page())
}

func TestEmptyWorkingSet(t *testing.T) {
	c := NewController(BlogPageSize)
	c.SetEmptyMessage("No posts found.")

	assert.Equal(t, []string{AllFacet}, c.Topics())
	assert.Equal(t, []string{AllFacet}, c.Years())
	assert.Empty(t, c.Filtered())
	assert.Equal(t, 1, c.TotalPages())
	assert.True(t, c.Empty())
	assert.False(t, c.ShowPagination())

	v := c.View()
	assert.True(t, v.Empty)
	assert.Equal(t, "No posts found.", v.EmptyMessage)
	assert.NotNil(t, v.Items)
	assert.Empty(t, v.Items)
	assert.False(t, v.HasNext)
	assert.False(t, v.HasPrev)

	c.Prev()
	c.Next()
	assert.Equal(t, 1, c.Page())
}

func TestFacetsFirstSeenOrder(t *testing.T) {
	records := append(sevenPosts(),
		models.Record{ID: "8", Title: models.String("Untagged"), Date: models.String("someday")},
		models.Record{ID: "9", Title: models.String("Filed"), Category: models.String("Press")},
	)
	c := NewController(BlogPageSize)
	c.SetRecords(records)

	assert.Equal(t, []string{"All", "Youth", "News", "Education", "Events", "Uncategorized", "Press"}, c.Topics())
	assert.Equal(t, []string{"All", "2023", "2024", "Unknown"}, c.Years())
}

func TestMissingDateAndYearFilter(t *testing.T) {
	records := []models.Record{
		rec("a", "Dated", "News", "2024-04-01"),
		{ID: "b", Title: models.String("Undated"), Topic: models.String("News")},
		rec("c", "Garbled", "News", "not a date"),
	}
	c := NewController(BlogPageSize)
	c.SetRecords(records)

	assert.Equal(t, []string{"a", "b", "c"}, ids(c.Filtered()))

	c.SetYear("2024")
	assert.Equal(t, []string{"a"}, ids(c.Filtered()))

	c.SetYear(models.UnknownYearLabel)
	assert.Equal(t, []string{"b", "c"}, ids(c.Filtered()))
}

func TestSearchIsCaseInsensitiveOnTitle(t *testing.T) {
	c := NewController(BlogPageSize)
	c.SetRecords(sevenPosts())

	c.SetSearch("CAMP")
	assert.Equal(t, []string{"3"}, ids(c.Filtered()))

	c.SetSearch("youth")
	c.SetTopic("Youth")
	assert.Equal(t, []string{"5"}, ids(c.Filtered()))

	c.SetTopic("")
	assert.Equal(t, AllFacet, c.View().SelectedTopic)
}

func TestSearchMatchesRawQuery(t *testing.T) {
	c := NewController(BlogPageSize)
	c.SetRecords(sevenPosts())

	c.SetSearch(" Camp")
	assert.Equal(t, []string{"3"}, ids(c.Filtered()))

	c.SetSearch("camp ")
	assert.Empty(t, c.Filtered())
	assert.True(t, c.View().Empty)

	c.SetSearch("")
	assert.Len(t, c.Filtered(), 7)
}

func TestFilterChangesResetPage(t *testing.T) {
	setters := map[string]func(c *Controller){
		"topic":   func(c *Controller) { c.SetTopic("Youth") },
		"year":    func(c *Controller) { c.SetYear("2024") },
		"search":  func(c *Controller) { c.SetSearch("o") },
		"records": func(c *Controller) { c.SetRecords(sevenPosts()) },
	}
	for name, set := range setters {
		t.Run(name, func(t *testing.T) {
			c := NewController(2)
			c.SetRecords(sevenPosts())
			c.GoTo(3)
			require.Equal(t, 3, c.Page())

			set(c)
			assert.Equal(t, 1, c.Page())
		})
	}
}

func TestGoToClamps(t *testing.T) {
	c := NewController(BlogPageSize)
	c.SetRecords(sevenPosts())

	c.GoTo(99)
	assert.Equal(t, 3, c.Page())
	c.GoTo(-4)
	assert.Equal(t, 1, c.Page())
}

func TestRemoveExactlyOne(t *testing.T) {
	c := NewController(BlogPageSize)
	c.SetRecords(sevenPosts())

	assert.True(t, c.Remove("4"))
	assert.Equal(t, []string{"1", "2", "3", "5", "6", "7"}, ids(c.Records()))
	assert.False(t, c.Remove("4"))
	assert.Len(t, c.Records(), 6)
}

func randomRecords(r *rand.Rand, n int) []models.Record {
	topics := []string{"Youth", "News", "Health", ""}
	out := make([]models.Record, 0, n)
	for i := range n {
		date := ""
		if r.IntN(4) > 0 {
			date = fmt.Sprintf("%d-0%d-1%d", 2021+r.IntN(4), 1+r.IntN(9), r.IntN(10))
		}
		out = append(out, rec(fmt.Sprint(i), fmt.Sprintf("Post %c%d", 'a'+rune(r.IntN(5)), i), topics[r.IntN(len(topics))], date))
	}
	return out
}

func isOrderedSubset(sub, all []models.Record) bool {
	j := 0
	for _, r := range sub {
		for j < len(all) && all[j].ID != r.ID {
			j++
		}
		if j == len(all) {
			return false
		}
		j++
	}
	return true
}

func TestFilteredIsOrderedSubsetAndPagesPartition(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	topics := []string{AllFacet, "Youth", "News", "Uncategorized"}
	years := []string{AllFacet, "2021", "2023", "Unknown"}
	queries := []string{"", "post a", "B", "zzz"}

	for trial := range 50 {
		records := randomRecords(r, r.IntN(25))
		pageSize := 1 + r.IntN(4)

		c := NewController(pageSize)
		c.SetRecords(records)
		c.SetTopic(topics[trial%len(topics)])
		c.SetYear(years[r.IntN(len(years))])
		c.SetSearch(queries[r.IntN(len(queries))])

		filtered := c.Filtered()
		require.True(t, isOrderedSubset(filtered, records), "trial %d", trial)

		var pages []models.Record
		for p := 1; p <= c.TotalPages(); p++ {
			c.GoTo(p)
			slice := c.PageSlice()
			require.LessOrEqual(t, len(slice), pageSize)
			pages = append(pages, slice...)
		}
		require.Equal(t, ids(filtered), ids(pages), "trial %d", trial)
	}
}

func TestLoad(t *testing.T) {
	c := NewController(ProgramPageSize)

	result := c.Load(context.Background(), func(ctx context.Context) ([]models.Record, error) {
		status, _ := c.Status()
		assert.Equal(t, Loading, status)
		return sevenPosts(), nil
	})
	assert.Equal(t, Loaded, result.Status)
	assert.Len(t, result.Records, 7)
	assert.Equal(t, 4, c.TotalPages())
	assert.Equal(t, Loaded, c.View().Status)

	boom := errors.New("unreachable")
	result = c.Load(context.Background(), func(ctx context.Context) ([]models.Record, error) {
		return nil, boom
	})
	assert.Equal(t, Failed, result.Status)
	assert.ErrorIs(t, result.Err, boom)
	status, err := c.Status()
	assert.Equal(t, Failed, status)
	assert.ErrorIs(t, err, boom)
	assert.Len(t, c.Records(), 7)
}

func TestLoadAfterCloseIsStale(t *testing.T) {
	c := NewController(BlogPageSize)
	result := c.Load(context.Background(), func(ctx context.Context) ([]models.Record, error) {
		c.Close()
		return sevenPosts(), nil
	})
	assert.Equal(t, Stale, result.Status)
	assert.Empty(t, c.Records())

	result = c.Load(context.Background(), func(ctx context.Context) ([]models.Record, error) {
		t.Fatal("fetch must not run after Close")
		return nil, nil
	})
	assert.Equal(t, Stale, result.Status)
}

func TestSupersededLoadIsStale(t *testing.T) {
	c := NewController(BlogPageSize)
	release := make(chan struct{})
	done := make(chan LoadResult)

	go func() {
		done <- c.Load(context.Background(), func(ctx context.Context) ([]models.Record, error) {
			<-release
			return sevenPosts()[:1], nil
		})
	}()

	require.Eventually(t, func() bool {
		status, _ := c.Status()
		return status == Loading
	}, time.Second, time.Millisecond)

	second := c.Load(context.Background(), func(ctx context.Context) ([]models.Record, error) {
		return sevenPosts(), nil
	})
	assert.Equal(t, Loaded, second.Status)

	close(release)
	first := <-done
	assert.Equal(t, Stale, first.Status)
	assert.Len(t, c.Records(), 7)
}
