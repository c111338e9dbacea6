package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStartClearsStaleError(t *testing.T) {
	r := New[string]()

	r, gen := r.Start()
	r = r.Fail(gen, Fail("upstream unavailable"))
	require.False(t, r.Fetching)
	require.NotNil(t, r.Err)

	r, _ = r.Start()
	require.True(t, r.Fetching)
	require.Nil(t, r.Err, "start must clear a stale error")
	require.Nil(t, r.Data)
}

func TestStartKeepsStaleData(t *testing.T) {
	r := New[string]()
	r, gen := r.Start()
	r = r.Complete(gen, "first")

	r, _ = r.Start()
	require.True(t, r.Fetching)
	require.NotNil(t, r.Data, "stale-while-revalidate: data survives a refresh start")
	require.Equal(t, "first", *r.Data)
}

func TestCompleteIsIdempotent(t *testing.T) {
	r := New[int]()
	r, gen := r.Start()
	r = r.Complete(gen, 42)
	again := r.Complete(gen, 42)

	require.Equal(t, r.Fetching, again.Fetching)
	require.Equal(t, *r.Data, *again.Data)
	require.Nil(t, again.Err)
}

func TestFailKeepsData(t *testing.T) {
	r := New[string]()
	r, gen := r.Start()
	r = r.Complete(gen, "cached")

	r, gen = r.Start()
	r = r.Fail(gen, Fail("timeout"))
	require.False(t, r.Fetching)
	require.Equal(t, []string{"timeout"}, r.Err.Messages)
	require.Equal(t, "cached", *r.Data, "fail leaves data untouched")
}

func TestStaleGenerationIgnored(t *testing.T) {
	r := New[string]()
	r, stale := r.Start()
	r, fresh := r.Start()

	// The superseded request settles after the newer one started.
	r = r.Complete(stale, "old payload")
	require.True(t, r.Fetching, "stale complete must not settle the newer fetch")
	require.Nil(t, r.Data)

	r = r.Fail(stale, Fail("old error"))
	require.Nil(t, r.Err)

	r = r.Complete(fresh, "new payload")
	require.False(t, r.Fetching)
	require.Equal(t, "new payload", *r.Data)
}

func TestReset(t *testing.T) {
	r := New[int]()
	r, gen := r.Start()
	r = r.Complete(gen, 7)

	r = r.Reset()
	require.Nil(t, r.Data)
	require.False(t, r.Fetching)
	require.Nil(t, r.Err)
	require.True(t, r.Idle())
}

func TestClearDropsDataOnly(t *testing.T) {
	r := New[int]()
	r, gen := r.Start()
	r = r.Fail(gen, Fail("boom"))
	r = r.Clear()
	require.Nil(t, r.Data)
	require.NotNil(t, r.Err, "clear only drops data")
}
