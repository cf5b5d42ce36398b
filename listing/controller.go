package listing

import (
	"strings"
	"sync"

	"github.com/tonypoem-foundation/site-backend/models"
)

// AllFacet selects every topic or year.
const AllFacet = "All"

// Page sizes of the listings that use a Controller.
const (
	BlogPageSize      = 3
	ProgramPageSize   = 2
	DashboardPageSize = 10
)

const DefaultEmptyMessage = "No results found."

// Controller derives the displayed page of a listing from its working set.
// Derived values are recomputed on every read; only the inputs are stored.
// A Controller is safe for concurrent use.
type Controller struct {
	mu sync.Mutex

	pageSize     int
	emptyMessage string

	records []models.Record
	search  string
	topic   string
	year    string
	page    int

	status     LoadStatus
	loadErr    error
	generation uint64
	closed     bool
}

func NewController(pageSize int) *Controller {
	if pageSize < 1 {
		pageSize = 1
	}
	return &Controller{
		pageSize:     pageSize,
		emptyMessage: DefaultEmptyMessage,
		topic:        AllFacet,
		year:         AllFacet,
		page:         1,
		status:       Idle,
	}
}

// SetEmptyMessage sets the text shown when the filtered set is empty.
func (c *Controller) SetEmptyMessage(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.emptyMessage = msg
}

func (c *Controller) PageSize() int {
	return c.pageSize
}

// SetRecords replaces the working set. The slice is copied.
func (c *Controller) SetRecords(records []models.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setRecordsLocked(records)
}

func (c *Controller) setRecordsLocked(records []models.Record) {
	c.records = append([]models.Record(nil), records...)
	c.page = 1
}

func (c *Controller) Records() []models.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Record(nil), c.records...)
}

func (c *Controller) SetTopic(topic string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.topic = facetOrAll(topic)
	c.page = 1
}

func (c *Controller) SetYear(year string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.year = facetOrAll(year)
	c.page = 1
}

func (c *Controller) SetSearch(search string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.search = search
	c.page = 1
}

func facetOrAll(v string) string {
	if v = strings.TrimSpace(v); v == "" {
		return AllFacet
	}
	return v
}

// Topics is "All" followed by each distinct topic in first-seen order.
func (c *Controller) Topics() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return facets(c.records, models.Record.TopicOrDefault)
}

// Years is "All" followed by each distinct year in first-seen order.
func (c *Controller) Years() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return facets(c.records, models.Record.YearOrDefault)
}

func facets(records []models.Record, key func(models.Record) string) []string {
	out := []string{AllFacet}
	seen := make(map[string]struct{}, len(records))
	for _, rec := range records {
		k := key(rec)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// Filtered applies topic, then year, then title search. Relative order of
// the working set is kept.
func (c *Controller) Filtered() []models.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filteredLocked()
}

func (c *Controller) filteredLocked() []models.Record {
	needle := strings.ToLower(c.search)

	out := make([]models.Record, 0, len(c.records))
	for _, rec := range c.records {
		if c.topic != AllFacet && rec.TopicOrDefault() != c.topic {
			continue
		}
		if c.year != AllFacet && !matchesYear(rec, c.year) {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(rec.RawTitle()), needle) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// matchesYear treats the Unknown facet as selecting records without a usable
// date. Those records never match a concrete year.
func matchesYear(rec models.Record, year string) bool {
	y, ok := rec.Year()
	if year == models.UnknownYearLabel {
		return !ok
	}
	return ok && y == year
}

func (c *Controller) TotalPages() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalPages(len(c.filteredLocked()))
}

func (c *Controller) totalPages(n int) int {
	pages := (n + c.pageSize - 1) / c.pageSize
	if pages < 1 {
		return 1
	}
	return pages
}

func (c *Controller) Page() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentPageLocked(len(c.filteredLocked()))
}

// currentPageLocked clamps the stored page to the valid range.
func (c *Controller) currentPageLocked(n int) int {
	return clamp(c.page, 1, c.totalPages(n))
}

func (c *Controller) PageSlice() []models.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	filtered := c.filteredLocked()
	return c.sliceLocked(filtered, c.currentPageLocked(len(filtered)))
}

func (c *Controller) sliceLocked(filtered []models.Record, page int) []models.Record {
	start := (page - 1) * c.pageSize
	if start >= len(filtered) {
		return []models.Record{}
	}
	end := min(start+c.pageSize, len(filtered))
	return filtered[start:end]
}

// Next moves one page forward; it does nothing on the last page.
func (c *Controller) Next() {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.filteredLocked())
	c.page = clamp(c.currentPageLocked(n)+1, 1, c.totalPages(n))
}

// Prev moves one page back; it does nothing on the first page.
func (c *Controller) Prev() {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.filteredLocked())
	c.page = clamp(c.currentPageLocked(n)-1, 1, c.totalPages(n))
}

// GoTo jumps to page, clamped to [1, TotalPages].
func (c *Controller) GoTo(page int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.page = clamp(page, 1, c.totalPages(len(c.filteredLocked())))
}

func (c *Controller) HasPrev() bool {
	return c.Page() > 1
}

func (c *Controller) HasNext() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.filteredLocked())
	return c.currentPageLocked(n) < c.totalPages(n)
}

// ShowPagination is false whenever everything fits on one page, including
// the empty case.
func (c *Controller) ShowPagination() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.filteredLocked()) > c.pageSize
}

func (c *Controller) Empty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.filteredLocked()) == 0
}

// Remove drops the record with id from the working set and reports whether
// it was present. Other records keep their order.
func (c *Controller) Remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, rec := range c.records {
		if rec.ID == id {
			c.records = append(c.records[:i:i], c.records[i+1:]...)
			c.page = 1
			return true
		}
	}
	return false
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
