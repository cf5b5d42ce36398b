package listing

import "github.com/tonypoem-foundation/site-backend/models"

// View is a snapshot of a Controller for rendering.
type View struct {
	Items          []models.Record `json:"items"`
	Page           int             `json:"page"`
	TotalPages     int             `json:"totalPages"`
	PageSize       int             `json:"pageSize"`
	Total          int             `json:"total"`
	Topics         []string        `json:"topics"`
	Years          []string        `json:"years"`
	SelectedTopic  string          `json:"selectedTopic"`
	SelectedYear   string          `json:"selectedYear"`
	Search         string          `json:"search,omitempty"`
	HasPrev        bool            `json:"hasPrev"`
	HasNext        bool            `json:"hasNext"`
	ShowPagination bool            `json:"showPagination"`
	Empty          bool            `json:"empty"`
	EmptyMessage   string          `json:"emptyMessage,omitempty"`
	Status         LoadStatus      `json:"status"`
}

// View computes every derived value under a single lock.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	filtered := c.filteredLocked()
	total := len(filtered)
	pages := c.totalPages(total)
	page := c.currentPageLocked(total)

	v := View{
		Items:          c.sliceLocked(filtered, page),
		Page:           page,
		TotalPages:     pages,
		PageSize:       c.pageSize,
		Total:          total,
		Topics:         facets(c.records, models.Record.TopicOrDefault),
		Years:          facets(c.records, models.Record.YearOrDefault),
		SelectedTopic:  c.topic,
		SelectedYear:   c.year,
		Search:         c.search,
		HasPrev:        page > 1,
		HasNext:        page < pages,
		ShowPagination: total > c.pageSize,
		Empty:          total == 0,
		Status:         c.status,
	}
	if v.Empty {
		v.EmptyMessage = c.emptyMessage
	}
	return v
}
