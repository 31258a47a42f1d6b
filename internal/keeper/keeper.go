package keeper

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cairnstack/cairn/pkg/series"
	"github.com/cairnstack/cairn/pkg/types"
)

// Keeper owns the daemon's current cache container. The container itself is
// an immutable value; Keeper is the single writer that serializes admissions,
// purges, and override updates behind one lock, and hands read-only
// snapshots to everyone else.
//
// A background goroutine (Run) periodically re-validates admitted values and
// expires the stale ones.
type Keeper struct {
	mu         sync.RWMutex
	cur        *series.Container[types.Observation]
	purgeEvery time.Duration
}

// Stat is one series' cache statistics, the vocabulary alert rules and the
// API speak.
type Stat struct {
	Series   string  `json:"series"`
	Fill     int     `json:"fill"`
	Head     float64 `json:"head"`
	HasHead  bool    `json:"has_head"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Spread   float64 `json:"spread"`
	Admitted uint64  `json:"admitted"`
	Rejected uint64  `json:"rejected"`
}

// New creates a Keeper around an initial container. purgeEvery controls the
// background expiry cadence in Run.
func New(c *series.Container[types.Observation], purgeEvery time.Duration) *Keeper {
	return &Keeper{cur: c, purgeEvery: purgeEvery}
}

// Current returns the latest container snapshot. The snapshot is immutable
// and safe to read without coordination.
func (k *Keeper) Current() *series.Container[types.Observation] {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.cur
}

// Put feeds one observation through the admission engine. accepted reports
// whether the value made it into the series rather than the error log; err
// is non-nil only for an undeclared series name.
func (k *Keeper) Put(name string, o types.Observation) (accepted bool, err error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	before := k.cur.Errors().Rejected(name)
	next, err := k.cur.Put(name, o)
	if err != nil {
		return false, err
	}
	k.cur = next
	return next.Errors().Rejected(name) == before, nil
}

// Purge re-validates every series' current values through its own validator
// and drops the ones that have gone stale. Returns the number of values
// removed.
func (k *Keeper) Purge() int {
	k.mu.Lock()
	defer k.mu.Unlock()

	next := k.cur.Purge(nil)
	removed := k.cur.Len() - next.Len()
	k.cur = next
	return removed
}

// ApplyOverrides replaces the runtime override block in the container's
// metadata. Caller metadata outside the state block is preserved.
func (k *Keeper) ApplyOverrides(overrides series.Meta) {
	k.mu.Lock()
	defer k.mu.Unlock()

	meta := make(series.Meta, len(k.cur.Meta())+1)
	for key, v := range k.cur.Meta() {
		meta[key] = v
	}
	delete(meta, "state")
	for key, v := range overrides {
		meta[key] = v
	}
	k.cur = k.cur.WithMeta(meta)
}

// Stats returns per-series cache statistics in declared order.
func (k *Keeper) Stats() []Stat {
	c := k.Current()
	deltas := c.Delta(nil)

	out := make([]Stat, 0, len(c.Names()))
	for _, name := range c.Names() {
		s, _ := c.Series(name)
		st := Stat{
			Series:   name,
			Fill:     s.Len(),
			Admitted: s.Admitted(),
			Rejected: c.Errors().Rejected(name),
		}
		if head, ok, _ := c.Head(name); ok {
			st.Head = head.Value
			st.HasHead = true
		}
		if d := deltas[name]; d.OK {
			st.Min = d.Min.Value
			st.Max = d.Max.Value
			st.Spread = d.Max.Value - d.Min.Value
		}
		out = append(out, st)
	}
	return out
}

// Run starts the background purge loop. It ticks at the configured interval
// and blocks until ctx is cancelled.
func (k *Keeper) Run(ctx context.Context) {
	if k.purgeEvery <= 0 {
		<-ctx.Done()
		return
	}

	t := time.NewTicker(k.purgeEvery)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := k.Purge(); n > 0 {
				slog.Debug("keeper: purged stale values", "count", n)
			}
		}
	}
}
