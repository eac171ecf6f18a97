package flow

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foxzi/tweetsift/internal/web/backend"
	"github.com/foxzi/tweetsift/internal/web/models"
)

var helpLabels = models.LabelSet{"Help Offer", "Help Wanted"}

func TestResultLoadProcessing(t *testing.T) {
	fb := &fakeBackend{result: models.Processing{SearchTerm: "x"}}
	f := NewResultFlow(fb, helpLabels, NewPacer(0), testLogger())

	view, err := f.Load(context.Background(), "h1")
	require.NoError(t, err)

	assert.Equal(t, ResultCollecting, view.Status)
	assert.Equal(t, "x", view.Term)
	assert.Empty(t, view.Tabs)
	assert.Equal(t, 1, fb.resultHits)
}

func TestResultLoadEmpty(t *testing.T) {
	fb := &fakeBackend{result: models.EmptyResult{SearchTerm: "x"}}
	f := NewResultFlow(fb, helpLabels, NewPacer(0), testLogger())

	view, err := f.Load(context.Background(), "h1")
	require.NoError(t, err)

	assert.Equal(t, ResultEmptySearch, view.Status)
	assert.Equal(t, "x", view.Term)
}

func TestResultLoadReady(t *testing.T) {
	fb := &fakeBackend{result: models.Ready{
		SearchTerm: "x",
		Groups: map[string][]string{
			"Help Offer":  {"1", "2"},
			"Help Wanted": {},
		},
	}}
	f := NewResultFlow(fb, helpLabels, NewPacer(0), testLogger())

	view, err := f.Load(context.Background(), "h1")
	require.NoError(t, err)
	require.Equal(t, ResultReady, view.Status)

	assert.Equal(t, "Help Offer", view.Selected)
	active, ok := view.Active()
	require.True(t, ok)
	assert.Equal(t, []string{"1", "2"}, active.Posts)

	assert.True(t, view.Select("Help Wanted"))
	active, ok = view.Active()
	require.True(t, ok)
	assert.True(t, active.Empty())

	assert.False(t, view.Select("Elsewhere"))
	assert.Equal(t, "Help Wanted", view.Selected)
	assert.Equal(t, 1, fb.resultHits)
}

func TestResultLoadReadyDropsUnknownLabels(t *testing.T) {
	fb := &fakeBackend{result: models.Ready{
		SearchTerm: "x",
		Groups: map[string][]string{
			"Help Wanted": {"9"},
			"Spam":        {"3"},
		},
	}}
	f := NewResultFlow(fb, helpLabels, NewPacer(0), testLogger())

	view, err := f.Load(context.Background(), "h1")
	require.NoError(t, err)

	want := []Tab{
		{Label: "Help Offer", Color: models.LabelColor(0)},
		{Label: "Help Wanted", Color: models.LabelColor(1), Posts: []string{"9"}},
	}
	if diff := cmp.Diff(want, view.Tabs); diff != "" {
		t.Errorf("tabs mismatch (-want +got):\n%s", diff)
	}
}

func TestResultLoadErrors(t *testing.T) {
	for _, err := range []error{
		backend.ErrNotFound,
		&backend.NetworkError{Op: "result", Status: 502},
	} {
		fb := &fakeBackend{resultErr: err}
		f := NewResultFlow(fb, helpLabels, NewPacer(0), testLogger())

		view, lerr := f.Load(context.Background(), "h1")
		require.NoError(t, lerr)
		assert.Equal(t, ResultNotFound, view.Status)
		assert.ErrorIs(t, view.Err, err)
	}
}

func TestResultLoadCancelledDuringDelay(t *testing.T) {
	fb := &fakeBackend{result: models.Processing{SearchTerm: "x"}}
	f := NewResultFlow(fb, helpLabels, NewPacer(time.Hour), testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	view, err := f.Load(ctx, "h1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Nil(t, view)
}

func TestResultViewResolvesOnce(t *testing.T) {
	v := &ResultView{Status: ResultLoading}
	assert.True(t, v.transition(ResultReady))
	assert.False(t, v.transition(ResultNotFound))
	assert.Equal(t, ResultReady, v.Status)
}

func TestResultViewStatePredicates(t *testing.T) {
	tests := []struct {
		status     ResultStatus
		collecting bool
		empty      bool
		ready      bool
	}{
		{ResultLoading, false, false, false},
		{ResultNotFound, false, false, false},
		{ResultCollecting, true, false, false},
		{ResultEmptySearch, false, true, false},
		{ResultReady, false, false, true},
	}

	for _, tt := range tests {
		v := &ResultView{Status: tt.status}
		assert.Equal(t, tt.collecting, v.IsCollecting(), tt.status.String())
		assert.Equal(t, tt.empty, v.IsEmpty(), tt.status.String())
		assert.Equal(t, tt.ready, v.IsReady(), tt.status.String())
	}
}

func TestCollectingView(t *testing.T) {
	v := CollectingView("abc")
	assert.True(t, v.IsCollecting())
	assert.Equal(t, models.SearchHandle("abc"), v.Handle)
	assert.Empty(t, v.Term)
}
