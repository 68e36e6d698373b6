package dashboard

import (
	"context"
	"errors"
	"sync"

	"github.com/yigit/lecturealert/internal/app/models"
	"github.com/yigit/lecturealert/internal/pkg/apperrors"
	"github.com/yigit/lecturealert/internal/pkg/metrics"
)

// ErrSuperseded is returned when a refresh was discarded and nothing is committed yet
var ErrSuperseded = errors.New("dashboard result superseded by a newer request")

// IdentitySource is the session state a view renders for
type IdentitySource interface {
	// Identity returns the current identity (nil when absent) and its generation
	Identity() (*models.Identity, uint64)
	Generation() uint64
}

// Snapshot is a committed result and the identity generation it was built for
type Snapshot struct {
	Result
	Generation uint64 `json:"generation"`
}

// View owns the displayed dashboard of one session. Results are committed
// wholesale, and only if neither the identity generation nor the view epoch
// moved while the aggregation ran.
type View struct {
	agg      *Aggregator
	onCommit func(Snapshot)

	mu        sync.Mutex
	src       IdentitySource
	epoch     uint64
	committed *Snapshot
}

// NewView creates a view over src. onCommit may be nil.
func NewView(agg *Aggregator, src IdentitySource, onCommit func(Snapshot)) *View {
	return &View{agg: agg, src: src, onCommit: onCommit}
}

// Refresh aggregates for the current identity. fresh is false when the result
// was discarded as stale and the previously committed snapshot is returned.
func (v *View) Refresh(ctx context.Context) (snap Snapshot, fresh bool, err error) {
	v.mu.Lock()
	src := v.src
	v.epoch++
	epoch := v.epoch
	v.mu.Unlock()

	identity, gen := src.Identity()
	if identity == nil {
		v.Invalidate()
		return Snapshot{}, false, apperrors.ErrNoIdentity
	}

	res, err := v.agg.Aggregate(ctx, identity)
	if err != nil {
		return Snapshot{}, false, err
	}

	v.mu.Lock()
	if v.epoch != epoch || v.src != src || src.Generation() != gen {
		current := v.committed
		v.mu.Unlock()

		metrics.DashboardStaleDiscardsTotal.Inc()
		if current == nil {
			return Snapshot{}, false, ErrSuperseded
		}
		return *current, false, nil
	}
	snap = Snapshot{Result: res, Generation: gen}
	v.committed = &snap
	hook := v.onCommit
	v.mu.Unlock()

	if hook != nil {
		hook(snap)
	}
	return snap, true, nil
}

// Current returns the committed snapshot, if any
func (v *View) Current() (Snapshot, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.committed == nil {
		return Snapshot{}, false
	}
	return *v.committed, true
}

// Invalidate discards the displayed result and any in-flight refresh
func (v *View) Invalidate() {
	v.mu.Lock()
	v.epoch++
	v.committed = nil
	v.mu.Unlock()
}

func (v *View) rebind(src IdentitySource) {
	v.mu.Lock()
	if v.src != src {
		v.src = src
		v.epoch++
		v.committed = nil
	}
	v.mu.Unlock()
}

// Registry holds one View per session id
type Registry struct {
	agg      *Aggregator
	onCommit func(sessionID string, snap Snapshot)

	mu    sync.Mutex
	views map[string]*View
}

// NewRegistry creates a registry. onCommit may be nil.
func NewRegistry(agg *Aggregator, onCommit func(sessionID string, snap Snapshot)) *Registry {
	return &Registry{agg: agg, onCommit: onCommit, views: make(map[string]*View)}
}

// View returns the session's view, creating it or rebinding it to src
func (r *Registry) View(sessionID string, src IdentitySource) *View {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v, ok := r.views[sessionID]; ok {
		v.rebind(src)
		return v
	}

	var hook func(Snapshot)
	if r.onCommit != nil {
		hook = func(s Snapshot) { r.onCommit(sessionID, s) }
	}
	v := NewView(r.agg, src, hook)
	r.views[sessionID] = v
	return v
}

// Invalidate drops the displayed result of a session, if it has a view
func (r *Registry) Invalidate(sessionID string) {
	r.mu.Lock()
	v, ok := r.views[sessionID]
	r.mu.Unlock()
	if ok {
		v.Invalidate()
	}
}

// Drop forgets the session's view
func (r *Registry) Drop(sessionID string) {
	r.mu.Lock()
	delete(r.views, sessionID)
	r.mu.Unlock()
}
