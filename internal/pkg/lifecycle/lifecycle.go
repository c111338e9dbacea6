package lifecycle

// Package lifecycle provides a generic container for the state of a single
// fetchable resource. A resource is always in exactly one of three phases:
// idle (not fetching, no error), in-flight (fetching, no error), or settled
// (not fetching, with either fresh data or an error). Transitions are
// whole-value replacements; callers never mutate fields directly.

// Failure is an opaque error payload surfaced to clients verbatim. It is
// either a single message or a list of messages; no classification or retry
// logic is attached to it.
type Failure struct {
	Messages []string `json:"messages"`
}

// Fail builds a Failure from one or more messages.
func Fail(messages ...string) *Failure {
	return &Failure{Messages: messages}
}

// FailErr builds a Failure from an error value.
func FailErr(err error) *Failure {
	if err == nil {
		return nil
	}
	return &Failure{Messages: []string{err.Error()}}
}

// Resource holds the {data, fetching, error} triple for one resource.
// Data survives a Start so callers can keep showing stale data while a
// refresh is in flight.
type Resource[T any] struct {
	Data     *T       `json:"data"`
	Fetching bool     `json:"fetching"`
	Err      *Failure `json:"error"`

	// gen identifies the most recently started fetch. A Fail or Complete
	// carrying an older generation is ignored, so a superseded in-flight
	// request cannot overwrite newer state with a stale response.
	gen uint64
}

// New returns a resource in its initial idle state.
func New[T any]() Resource[T] {
	return Resource[T]{}
}

// Start marks a fetch as in flight. Any stale error is cleared; Data is left
// untouched. The returned token must be presented by the matching Fail or
// Complete call.
func (r Resource[T]) Start() (Resource[T], uint64) {
	r.Fetching = true
	r.Err = nil
	r.gen++
	return r, r.gen
}

// Fail settles the fetch identified by gen with an error. Data is untouched.
// A stale generation is ignored.
func (r Resource[T]) Fail(gen uint64, failure *Failure) Resource[T] {
	if gen != r.gen {
		return r
	}
	r.Fetching = false
	r.Err = failure
	return r
}

// Complete settles the fetch identified by gen with a payload, replacing
// Data wholesale. A stale generation is ignored.
func (r Resource[T]) Complete(gen uint64, data T) Resource[T] {
	if gen != r.gen {
		return r
	}
	r.Fetching = false
	r.Err = nil
	r.Data = &data
	return r
}

// Clear drops the data while keeping the resource usable; the next Start
// begins a fresh fetch. Used when a filter change invalidates what is held.
func (r Resource[T]) Clear() Resource[T] {
	r.Data = nil
	return r
}

// Reset restores the frozen initial value. Used on navigation away from a
// detail view and on logout. The generation counter is carried over so
// tokens issued before the reset stay stale forever.
func (r Resource[T]) Reset() Resource[T] {
	return Resource[T]{gen: r.gen}
}

// Current reports whether gen identifies the most recently started fetch.
func (r Resource[T]) Current(gen uint64) bool {
	return gen == r.gen
}

// Idle reports whether no fetch is in flight and no error is held.
func (r Resource[T]) Idle() bool {
	return !r.Fetching && r.Err == nil
}
