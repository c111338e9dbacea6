package moderation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opensupplyhub/oshub/internal/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.FATAL)
}

type stubFetcher struct {
	calls    int
	lastPage int
	lastF    Filters
	events   []Event
	total    int64
	err      error
}

func (s *stubFetcher) FetchEvents(_ context.Context, f Filters, page, _ int) ([]Event, int64, error) {
	s.calls++
	s.lastPage = page
	s.lastF = f
	if s.err != nil {
		return nil, 0, s.err
	}
	return s.events, s.total, nil
}

func newTestQueue(fetcher *stubFetcher) *Queue {
	q := NewQueue(fetcher, 20)
	q.Init(context.Background())
	return q
}

func TestInitFetchesOnce(t *testing.T) {
	fetcher := &stubFetcher{events: []Event{{Name: "Acme"}}, total: 1}
	q := newTestQueue(fetcher)

	require.Equal(t, 1, fetcher.calls)
	state := q.Snapshot()
	require.NotNil(t, state.Events.Data)
	assert.Len(t, *state.Events.Data, 1)
	assert.Equal(t, 0, state.Page)
	assert.False(t, state.Events.Fetching)
}

func TestFilterChangeResetsPageAndRefetches(t *testing.T) {
	fetcher := &stubFetcher{total: 100}
	q := newTestQueue(fetcher)
	ctx := context.Background()

	// Walk away from page 0 first.
	q.NextPage(ctx)
	require.Equal(t, 1, q.Snapshot().Page)
	before := fetcher.calls

	q.SetCountries(ctx, []string{"US"})

	assert.Equal(t, before+1, fetcher.calls, "a filter change issues exactly one refetch")
	state := q.Snapshot()
	assert.Equal(t, 0, state.Page, "pagination resets on filter change")
	assert.Equal(t, []string{"US"}, state.Filters.Countries)
	assert.Equal(t, 0, fetcher.lastPage)
	assert.Equal(t, 20, state.PageSize, "page size is preserved")
}

func TestClearingFilterRefetches(t *testing.T) {
	fetcher := &stubFetcher{total: 10}
	q := newTestQueue(fetcher)
	ctx := context.Background()

	q.SetCountries(ctx, []string{"US"})
	before := fetcher.calls

	q.SetCountries(ctx, nil)

	assert.Equal(t, before+1, fetcher.calls, "non-empty to empty is a real transition")
	assert.Empty(t, q.Snapshot().Filters.Countries)
	assert.Equal(t, 0, q.Snapshot().Page)
}

func TestEmptyToEmptyIsNoOp(t *testing.T) {
	fetcher := &stubFetcher{}
	q := newTestQueue(fetcher)
	before := fetcher.calls

	q.SetCountries(context.Background(), []string{})
	q.SetDataSources(context.Background(), nil)
	q.SetModerationStatuses(context.Background(), []string{})

	assert.Equal(t, before, fetcher.calls, "empty to empty must not refetch")
}

func TestAcceptedDateBoundRefetches(t *testing.T) {
	fetcher := &stubFetcher{}
	q := newTestQueue(fetcher)
	before := fetcher.calls

	err := q.SetAfterDate(context.Background(), "2025-01-01")

	require.NoError(t, err)
	assert.Equal(t, before+1, fetcher.calls)
	state := q.Snapshot()
	require.NotNil(t, state.Filters.AfterDate)
	assert.Equal(t, 2025, state.Filters.AfterDate.Year())
	assert.Empty(t, state.DateError)
}

func TestAfterDateBeyondBeforeDateRejected(t *testing.T) {
	fetcher := &stubFetcher{}
	q := newTestQueue(fetcher)
	ctx := context.Background()

	require.NoError(t, q.SetBeforeDate(ctx, "2025-06-01"))
	before := fetcher.calls

	err := q.SetAfterDate(ctx, "2025-07-01")

	require.ErrorIs(t, err, ErrDateRange)
	assert.Equal(t, before, fetcher.calls, "a rejected edit must not refetch")

	state := q.Snapshot()
	assert.Nil(t, state.Filters.AfterDate, "the offending bound stays unset")
	require.NotNil(t, state.Filters.BeforeDate, "the other bound is untouched")
	assert.Equal(t, time.June, state.Filters.BeforeDate.Month())
	assert.NotEmpty(t, state.DateError)
}

func TestBeforeDateBelowAfterDateRejected(t *testing.T) {
	fetcher := &stubFetcher{}
	q := newTestQueue(fetcher)
	ctx := context.Background()

	require.NoError(t, q.SetAfterDate(ctx, "2025-06-01"))

	err := q.SetBeforeDate(ctx, "2025-01-01")

	require.ErrorIs(t, err, ErrDateRange)
	state := q.Snapshot()
	assert.Nil(t, state.Filters.BeforeDate)
	require.NotNil(t, state.Filters.AfterDate)
}

func TestBothBoundsCanBeInvalidAtOnce(t *testing.T) {
	fetcher := &stubFetcher{}
	q := newTestQueue(fetcher)
	ctx := context.Background()

	require.Error(t, q.SetAfterDate(ctx, "not-a-date"))
	require.Error(t, q.SetBeforeDate(ctx, "also-not-a-date"))

	state := q.Snapshot()
	assert.NotEmpty(t, state.DateError)

	// Recovering one bound keeps the combined message while the other is
	// still invalid.
	require.NoError(t, q.SetBeforeDate(ctx, "2025-06-01"))
	assert.NotEmpty(t, q.Snapshot().DateError)

	require.NoError(t, q.SetAfterDate(ctx, "2025-01-01"))
	assert.Empty(t, q.Snapshot().DateError)
}

func TestMalformedDateRejected(t *testing.T) {
	fetcher := &stubFetcher{}
	q := newTestQueue(fetcher)
	before := fetcher.calls

	err := q.SetAfterDate(context.Background(), "06/15/2025")

	require.Error(t, err)
	assert.Equal(t, before, fetcher.calls)

	// The message names the format problem, not the range rule.
	state := q.Snapshot()
	assert.Contains(t, state.DateError, "YYYY-MM-DD")
	assert.NotContains(t, state.DateError, "date range")
}

func TestDateErrorCombinesDistinctMessages(t *testing.T) {
	fetcher := &stubFetcher{}
	q := newTestQueue(fetcher)
	ctx := context.Background()

	// A malformed after bound and a range-violating before bound flag
	// different problems; both surface.
	require.NoError(t, q.SetAfterDate(ctx, "2025-06-01"))
	require.Error(t, q.SetBeforeDate(ctx, "2025-01-01"))
	require.Error(t, q.SetAfterDate(ctx, "garbage"))

	state := q.Snapshot()
	assert.Contains(t, state.DateError, "YYYY-MM-DD")
	assert.Contains(t, state.DateError, "date range")
}

func TestPagingBounds(t *testing.T) {
	fetcher := &stubFetcher{total: 45} // 3 pages of 20
	q := newTestQueue(fetcher)
	ctx := context.Background()

	assert.Equal(t, 2, q.Snapshot().MaxPage)

	q.NextPage(ctx)
	q.NextPage(ctx)
	assert.Equal(t, 2, q.Snapshot().Page)

	before := fetcher.calls
	q.NextPage(ctx)
	assert.Equal(t, before, fetcher.calls, "paging past the end is a no-op")
	assert.Equal(t, 2, q.Snapshot().Page)

	q.PrevPage(ctx)
	assert.Equal(t, 1, q.Snapshot().Page)

	q.PrevPage(ctx)
	q.PrevPage(ctx)
	assert.Equal(t, 0, q.Snapshot().Page, "paging before the start is a no-op")
}

func TestFetchFailureKeepsStaleEvents(t *testing.T) {
	fetcher := &stubFetcher{events: []Event{{Name: "Acme"}}, total: 1}
	q := newTestQueue(fetcher)

	fetcher.err = errors.New("mongo: connection refused")
	q.Refresh(context.Background())

	state := q.Snapshot()
	require.NotNil(t, state.Events.Err)
	assert.Equal(t, []string{"mongo: connection refused"}, state.Events.Err.Messages)
	require.NotNil(t, state.Events.Data, "failed refresh keeps the stale page")
	assert.False(t, state.Events.Fetching)
}

func TestFilterChangeClearsHeldEvents(t *testing.T) {
	fetcher := &stubFetcher{events: []Event{{Name: "Acme"}}, total: 1}
	q := newTestQueue(fetcher)

	// The refetch fails, so what remains is what the reset left behind.
	fetcher.err = errors.New("down")
	q.SetCountries(context.Background(), []string{"US"})

	state := q.Snapshot()
	assert.Nil(t, state.Events.Data, "filter change clears events before refetching")
	require.NotNil(t, state.Events.Err)
}

func TestSessionsCreateOnceAndDrop(t *testing.T) {
	fetcher := &stubFetcher{}
	sessions := NewSessions(fetcher, testLogger())
	ctx := context.Background()

	q1 := sessions.Get(ctx, "admin-1")
	require.Equal(t, 1, fetcher.calls, "session creation issues the initial fetch")

	q2 := sessions.Get(ctx, "admin-1")
	assert.Same(t, q1, q2)
	assert.Equal(t, 1, fetcher.calls, "re-entry does not refetch")

	sessions.Drop("admin-1")
	q3 := sessions.Get(ctx, "admin-1")
	assert.NotSame(t, q1, q3)
	assert.Equal(t, 2, fetcher.calls)
}
