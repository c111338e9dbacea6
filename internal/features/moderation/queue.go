package moderation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/opensupplyhub/oshub/internal/pkg/lifecycle"
	"github.com/opensupplyhub/oshub/internal/pkg/logger"
)

const defaultPageSize = 20

const dateLayout = "2006-01-02"

// ErrDateRange is the single combined message shown when either date bound
// is rejected.
var ErrDateRange = errors.New("Invalid date range: the after date must be on or before the before date")

// Filters are the moderation queue's query dimensions.
type Filters struct {
	DataSources        []string   `json:"data_sources"`
	ModerationStatuses []string   `json:"moderation_statuses"`
	Countries          []string   `json:"countries"`
	AfterDate          *time.Time `json:"after_date,omitempty"`
	BeforeDate         *time.Time `json:"before_date,omitempty"`
}

// Fetcher loads one page of events matching the filters. Implemented by
// the moderation repository; tests substitute a stub.
type Fetcher interface {
	FetchEvents(ctx context.Context, f Filters, page, pageSize int) ([]Event, int64, error)
}

// Queue owns one admin's moderation-queue session: filter state, 0-based
// pagination, and the fetched page of events. Every filter edit decides
// whether pagination resets and a refetch is issued; the rules live in the
// setters below.
type Queue struct {
	mu      sync.Mutex
	fetcher Fetcher

	filters  Filters
	page     int
	maxPage  int
	pageSize int

	// Message of the rejected edit for each date bound, empty when the
	// bound is fine. Both can be set at once; Snapshot folds them into
	// one display string.
	afterErr  string
	beforeErr string

	events lifecycle.Resource[[]Event]
}

// State is the queue snapshot returned to the view layer.
type State struct {
	Filters   Filters                     `json:"filters"`
	Page      int                         `json:"page"`
	MaxPage   int                         `json:"max_page"`
	PageSize  int                         `json:"page_size"`
	DateError string                      `json:"date_error,omitempty"`
	Events    lifecycle.Resource[[]Event] `json:"events"`
}

func NewQueue(fetcher Fetcher, pageSize int) *Queue {
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	return &Queue{
		fetcher:  fetcher,
		pageSize: pageSize,
	}
}

// Init issues the session's first fetch.
func (q *Queue) Init(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.fetch(ctx)
}

// SetDataSources applies a data-source filter edit.
func (q *Queue) SetDataSources(ctx context.Context, values []string) {
	q.setList(ctx, &q.filters.DataSources, values)
}

// SetModerationStatuses applies a status filter edit.
func (q *Queue) SetModerationStatuses(ctx context.Context, values []string) {
	q.setList(ctx, &q.filters.ModerationStatuses, values)
}

// SetCountries applies a country filter edit.
func (q *Queue) SetCountries(ctx context.Context, values []string) {
	q.setList(ctx, &q.filters.Countries, values)
}

// setList applies one filter-array edit. A non-empty value, or clearing a
// previously non-empty value, invalidates the held page and refetches.
// Empty to empty is a no-op, which keeps first render from double-fetching.
func (q *Queue) setList(ctx context.Context, target *[]string, values []string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(values) == 0 && len(*target) == 0 {
		return
	}

	*target = values
	q.resetAndFetch(ctx)
}

// SetAfterDate applies the lower date bound. An empty value clears it. A
// value later than an existing before-bound is rejected: the bound is left
// unset, the validation flag raised, and the before-bound untouched.
func (q *Queue) SetAfterDate(ctx context.Context, value string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if value == "" {
		q.afterErr = ""
		if q.filters.AfterDate == nil {
			return nil
		}
		q.filters.AfterDate = nil
		q.resetAndFetch(ctx)
		return nil
	}

	t, err := time.Parse(dateLayout, value)
	if err != nil {
		q.filters.AfterDate = nil
		err = errors.New("after_date must be formatted as YYYY-MM-DD")
		q.afterErr = err.Error()
		return err
	}

	if q.filters.BeforeDate != nil && t.After(*q.filters.BeforeDate) {
		q.filters.AfterDate = nil
		q.afterErr = ErrDateRange.Error()
		return ErrDateRange
	}

	q.filters.AfterDate = &t
	q.afterErr = ""
	q.resetAndFetch(ctx)
	return nil
}

// SetBeforeDate applies the upper date bound, symmetric to SetAfterDate.
func (q *Queue) SetBeforeDate(ctx context.Context, value string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if value == "" {
		q.beforeErr = ""
		if q.filters.BeforeDate == nil {
			return nil
		}
		q.filters.BeforeDate = nil
		q.resetAndFetch(ctx)
		return nil
	}

	t, err := time.Parse(dateLayout, value)
	if err != nil {
		q.filters.BeforeDate = nil
		err = errors.New("before_date must be formatted as YYYY-MM-DD")
		q.beforeErr = err.Error()
		return err
	}

	if q.filters.AfterDate != nil && t.Before(*q.filters.AfterDate) {
		q.filters.BeforeDate = nil
		q.beforeErr = ErrDateRange.Error()
		return ErrDateRange
	}

	q.filters.BeforeDate = &t
	q.beforeErr = ""
	q.resetAndFetch(ctx)
	return nil
}

// NextPage advances one page and refetches; past the last page it is a
// no-op.
func (q *Queue) NextPage(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.page >= q.maxPage {
		return
	}
	q.page++
	q.fetch(ctx)
}

// PrevPage steps back one page and refetches; before the first page it is
// a no-op.
func (q *Queue) PrevPage(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.page == 0 {
		return
	}
	q.page--
	q.fetch(ctx)
}

// Refresh refetches the current page with the current filters.
func (q *Queue) Refresh(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.fetch(ctx)
}

// Snapshot returns the current queue state.
func (q *Queue) Snapshot() State {
	q.mu.Lock()
	defer q.mu.Unlock()

	state := State{
		Filters:  q.filters,
		Page:     q.page,
		MaxPage:  q.maxPage,
		PageSize: q.pageSize,
		Events:   q.events,
	}
	switch {
	case q.afterErr != "" && q.beforeErr != "" && q.afterErr != q.beforeErr:
		state.DateError = q.afterErr + "; " + q.beforeErr
	case q.afterErr != "":
		state.DateError = q.afterErr
	case q.beforeErr != "":
		state.DateError = q.beforeErr
	}
	return state
}

// resetAndFetch clears the held events, resets page and maxPage to zero
// while preserving pageSize, and re-issues the fetch. Callers hold the lock.
func (q *Queue) resetAndFetch(ctx context.Context) {
	q.events = q.events.Clear()
	q.page = 0
	q.maxPage = 0
	q.fetch(ctx)
}

// fetch loads the current page. A stale completion cannot clobber a newer
// one: the generation token issued by Start gates the settle.
func (q *Queue) fetch(ctx context.Context) {
	var gen uint64
	q.events, gen = q.events.Start()

	items, total, err := q.fetcher.FetchEvents(ctx, q.filters, q.page, q.pageSize)
	if err != nil {
		q.events = q.events.Fail(gen, lifecycle.FailErr(err))
		return
	}

	q.events = q.events.Complete(gen, items)

	q.maxPage = 0
	if total > 0 {
		q.maxPage = int((total - 1) / int64(q.pageSize))
	}
	if q.page > q.maxPage {
		q.page = q.maxPage
	}
}

// Sessions hands out one Queue per admin. Queues are created lazily and
// dropped when the admin leaves the dashboard.
type Sessions struct {
	mu      sync.Mutex
	queues  map[string]*Queue
	fetcher Fetcher
	log     *logger.Logger
}

func NewSessions(fetcher Fetcher, log *logger.Logger) *Sessions {
	return &Sessions{
		queues:  make(map[string]*Queue),
		fetcher: fetcher,
		log:     log,
	}
}

// Get returns the admin's queue, creating it and issuing the initial fetch
// on first access.
func (s *Sessions) Get(ctx context.Context, userID string) *Queue {
	s.mu.Lock()
	queue, ok := s.queues[userID]
	if !ok {
		queue = NewQueue(s.fetcher, defaultPageSize)
		s.queues[userID] = queue
	}
	s.mu.Unlock()

	if !ok {
		s.log.Info("moderation queue session opened for user %s", userID)
		queue.Init(ctx)
	}
	return queue
}

// Drop discards the admin's queue session.
func (s *Sessions) Drop(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.queues, userID)
}
