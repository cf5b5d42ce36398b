package content

import (
	"sync"

	"github.com/tonypoem-foundation/site-backend/errs"
)

// Guard refuses a second mutation of the same target while the first is
// still running. Targets are free-form, e.g. "delete:blogs/<id>".
type Guard struct {
	mu   sync.Mutex
	busy map[string]struct{}
}

func NewGuard() *Guard {
	return &Guard{busy: make(map[string]struct{})}
}

// Acquire marks target busy. The returned release must be deferred by the
// caller; calling it more than once is harmless.
func (g *Guard) Acquire(target string) (release func(), err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.busy[target]; ok {
		return nil, errs.NewBusyError(target)
	}
	g.busy[target] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.busy, target)
			g.mu.Unlock()
		})
	}, nil
}

// Busy reports whether target is currently held.
func (g *Guard) Busy(target string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.busy[target]
	return ok
}
