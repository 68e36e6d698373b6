package dashboard

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/lecturealert/internal/app/models"
	"github.com/yigit/lecturealert/internal/pkg/apperrors"
)

type stubIdentity struct {
	mu       sync.Mutex
	identity *models.Identity
	gen      uint64
}

func (s *stubIdentity) Identity() (*models.Identity, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity, s.gen
}

func (s *stubIdentity) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

func (s *stubIdentity) set(identity *models.Identity) {
	s.mu.Lock()
	s.identity = identity
	s.gen++
	s.mu.Unlock()
}

func TestView_CommitsAndPublishes(t *testing.T) {
	src := &stubSource{courseCount: 2, students: 5}
	ids := &stubIdentity{identity: admin(), gen: 1}

	var published []Snapshot
	view := NewView(newTestAggregator(src), ids, func(s Snapshot) { published = append(published, s) })

	snap, fresh, err := view.Refresh(context.Background())
	require.NoError(t, err)
	assert.True(t, fresh)
	assert.Equal(t, uint64(1), snap.Generation)
	assert.Equal(t, 5, snap.Summary.RelatedPeople)

	current, ok := view.Current()
	require.True(t, ok)
	assert.Equal(t, snap, current)
	require.Len(t, published, 1)
}

func TestView_DiscardsResultAfterIdentityChange(t *testing.T) {
	ids := &stubIdentity{identity: admin(), gen: 1}
	src := &stubSource{courseCount: 2}
	// the identity switches while the aggregation is in flight
	src.beforeUpcoming = func() { ids.set(student()) }

	published := 0
	view := NewView(newTestAggregator(src), ids, func(Snapshot) { published++ })

	_, fresh, err := view.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrSuperseded)
	assert.False(t, fresh)
	_, ok := view.Current()
	assert.False(t, ok)
	assert.Zero(t, published)

	src.beforeUpcoming = nil
	src.enrollments = []models.Enrollment{{ID: "e1", CourseID: "c1", IsActive: true}}
	snap, fresh, err := view.Refresh(context.Background())
	require.NoError(t, err)
	assert.True(t, fresh)
	assert.Equal(t, models.RoleStudent, snap.Role)
	assert.Equal(t, uint64(2), snap.Generation)
	assert.Equal(t, 1, published)
}

func TestView_InvalidateDuringRefreshDiscardsResult(t *testing.T) {
	ids := &stubIdentity{identity: admin(), gen: 1}
	src := &stubSource{courseCount: 1}
	view := NewView(newTestAggregator(src), ids, nil)

	first, _, err := view.Refresh(context.Background())
	require.NoError(t, err)

	src.mu.Lock()
	src.courseCount = 99
	src.mu.Unlock()
	src.beforeUpcoming = func() { view.Invalidate() }

	// Invalidate cleared the committed state, so nothing is left to return
	_, fresh, err := view.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrSuperseded)
	assert.False(t, fresh)

	src.beforeUpcoming = nil
	second, fresh, err := view.Refresh(context.Background())
	require.NoError(t, err)
	assert.True(t, fresh)
	assert.Equal(t, 1, first.Summary.TotalCourses)
	assert.Equal(t, 99, second.Summary.TotalCourses)
}

func TestView_OverlappingRefreshesLatestWins(t *testing.T) {
	ids := &stubIdentity{identity: admin(), gen: 1}
	src := &stubSource{courseCount: 1}
	view := NewView(newTestAggregator(src), ids, nil)

	_, _, err := view.Refresh(context.Background())
	require.NoError(t, err)

	release := make(chan struct{})
	started := make(chan struct{})
	var blocked int32
	src.beforeUpcoming = func() {
		if atomic.CompareAndSwapInt32(&blocked, 0, 1) {
			close(started)
			<-release
		}
	}

	type outcome struct {
		snap  Snapshot
		fresh bool
		err   error
	}
	slow := make(chan outcome, 1)
	go func() {
		s, f, e := view.Refresh(context.Background())
		slow <- outcome{s, f, e}
	}()
	<-started

	// a newer refresh runs to completion while the first one is blocked
	newer, fresh, err := view.Refresh(context.Background())
	require.NoError(t, err)
	require.True(t, fresh)
	close(release)

	select {
	case out := <-slow:
		require.NoError(t, out.err)
		assert.False(t, out.fresh)
		assert.Equal(t, newer, out.snap)
	case <-time.After(5 * time.Second):
		t.Fatal("slow refresh did not finish")
	}
}

func TestView_NoIdentity(t *testing.T) {
	src := &stubSource{}
	view := NewView(newTestAggregator(src), &stubIdentity{}, nil)

	_, _, err := view.Refresh(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrNoIdentity)
	assert.Empty(t, src.calls)
}

func TestRegistry_RebindsAndInvalidates(t *testing.T) {
	var mu sync.Mutex
	commits := map[string]int{}
	reg := NewRegistry(newTestAggregator(&stubSource{}), func(sessionID string, _ Snapshot) {
		mu.Lock()
		commits[sessionID]++
		mu.Unlock()
	})

	ids := &stubIdentity{identity: admin(), gen: 1}
	v := reg.View("sess-1", ids)
	assert.Same(t, v, reg.View("sess-1", ids))

	_, _, err := v.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, commits["sess-1"])

	reg.Invalidate("sess-1")
	_, ok := v.Current()
	assert.False(t, ok)

	_, _, err = v.Refresh(context.Background())
	require.NoError(t, err)
	other := &stubIdentity{identity: student(), gen: 1}
	assert.Same(t, v, reg.View("sess-1", other))
	_, ok = v.Current()
	assert.False(t, ok, "rebinding to a new provider drops the old result")

	reg.Drop("sess-1")
	assert.NotSame(t, v, reg.View("sess-1", other))
}
