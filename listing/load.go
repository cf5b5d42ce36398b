package listing

import (
	"context"

	"github.com/tonypoem-foundation/site-backend/models"
)

// LoadStatus discriminates a LoadResult.
type LoadStatus string

const (
	Idle    LoadStatus = "idle"
	Loading LoadStatus = "loading"
	Loaded  LoadStatus = "loaded"
	Failed  LoadStatus = "failed"
	// Stale marks a result that arrived after Close or after a newer Load
	// started. It was not applied.
	Stale LoadStatus = "stale"
)

// LoadResult is Loaded with Records, Failed with Err, or Stale.
type LoadResult struct {
	Status  LoadStatus
	Records []models.Record
	Err     error
}

// FetchFunc fetches the working set, typically a content.Repository call.
type FetchFunc func(ctx context.Context) ([]models.Record, error)

// Load fetches the working set once and applies it unless the controller was
// closed or reloaded while the fetch was outstanding.
func (c *Controller) Load(ctx context.Context, fetch FetchFunc) LoadResult {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return LoadResult{Status: Stale}
	}
	c.generation++
	gen := c.generation
	c.status = Loading
	c.loadErr = nil
	c.mu.Unlock()

	records, err := fetch(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || gen != c.generation {
		return LoadResult{Status: Stale}
	}
	if err != nil {
		c.status = Failed
		c.loadErr = err
		return LoadResult{Status: Failed, Err: err}
	}

	c.setRecordsLocked(records)
	c.status = Loaded
	return LoadResult{Status: Loaded, Records: append([]models.Record(nil), c.records...)}
}

// Status reports the state of the most recent Load.
func (c *Controller) Status() (LoadStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status, c.loadErr
}

// Close tears the controller down. Loads still in flight become Stale.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}
