package schedule

import (
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry() (*registry, prometheus.Gauge) {
	g := prometheus.NewGauge(prometheus.GaugeOpts{Name: "registered"})
	return newRegistry(g), g
}

func registerFake(r *registry, key string) (*task, *fakeRun) {
	ft := &fakeTimer{}
	t := newTask(key, nil, Spec{}, Plan{Strategy: FixedDelay, Period: time.Second}, time.Now())
	r.register(key, t, func() Handle { return ft.RunWithFixedDelay(nil, 0, time.Second) })
	return t, ft.last()
}

func TestRegistry_Register(t *testing.T) {
	r, g := newTestRegistry()

	first, firstRun := registerFake(r, "a")
	_, ok := r.get("a")
	assert.True(t, ok)
	assert.Equal(t, 1.0, testutil.ToFloat64(g))

	second, secondRun := registerFake(r, "a")
	assert.NotSame(t, first, second)
	assert.True(t, firstRun.isCancelled(), "replaced task is cancelled")
	assert.False(t, secondRun.isCancelled())
	assert.Equal(t, 1, r.len())

	cur, _ := r.get("a")
	assert.Same(t, second, cur)
}

func TestRegistry_Cancel(t *testing.T) {
	r, g := newTestRegistry()

	assert.False(t, r.cancel("missing"))
	assert.Equal(t, 0, r.len())

	_, run := registerFake(r, "a")
	assert.True(t, r.cancel("a"))
	assert.True(t, run.isCancelled())
	assert.False(t, r.cancel("a"))
	assert.Equal(t, 0.0, testutil.ToFloat64(g))
}

func TestRegistry_CancelAll(t *testing.T) {
	r, g := newTestRegistry()
	assert.Equal(t, 0, r.cancelAll())

	var runs []*fakeRun
	for i := 0; i < 5; i++ {
		_, run := registerFake(r, strconv.Itoa(i))
		runs = append(runs, run)
	}
	assert.Equal(t, 5, r.cancelAll())
	assert.Equal(t, 0, r.len())
	assert.Equal(t, 0.0, testutil.ToFloat64(g))
	for _, run := range runs {
		assert.True(t, run.isCancelled())
		assert.Equal(t, 1, run.cancelCalls())
	}
}

func TestRegistry_ReleaseOnlyOwnEntry(t *testing.T) {
	r, _ := newTestRegistry()

	old, oldRun := registerFake(r, "a")
	_, newRun := registerFake(r, "a")

	assert.False(t, r.release("a", old), "a replaced task cannot remove its successor")
	assert.Equal(t, 1, r.len())
	assert.False(t, newRun.isCancelled())
	assert.Equal(t, 1, oldRun.cancelCalls())
}

func TestRegistry_ConcurrentCancelAndRelease(t *testing.T) {
	for i := 0; i < 200; i++ {
		r, _ := newTestRegistry()
		tk, run := registerFake(r, "a")

		var wg sync.WaitGroup
		results := make([]bool, 2)
		wg.Add(2)
		go func() {
			defer wg.Done()
			results[0] = r.cancel("a")
		}()
		go func() {
			defer wg.Done()
			results[1] = r.release("a", tk)
		}()
		wg.Wait()

		require.Equal(t, 1, run.cancelCalls())
		assert.True(t, results[0] != results[1], "exactly one caller removes the entry")
		assert.Equal(t, 0, r.len())
	}
}

func TestRegistry_ReleaseBeforeAttach(t *testing.T) {
	r, g := newTestRegistry()
	ft := &fakeTimer{}
	tk := newTask("a", nil, Spec{}, Plan{Strategy: FixedDelay, Period: time.Second}, time.Now())

	r.register("a", tk, func() Handle {
		assert.True(t, r.release("a", tk), "the entry is visible while the timer starts")
		return ft.RunWithFixedDelay(nil, 0, time.Second)
	})

	run := ft.last()
	assert.True(t, run.isCancelled(), "a handle arriving after release is cancelled")
	assert.Equal(t, 1, run.cancelCalls())
	assert.Equal(t, 0, r.len())
	assert.Equal(t, 0.0, testutil.ToFloat64(g))
	assert.False(t, r.cancel("a"))
}

func TestRegistry_Entries(t *testing.T) {
	r, _ := newTestRegistry()
	now := time.Now()

	ft := &fakeTimer{}
	for i, d := range []time.Duration{3 * time.Second, time.Second, 2 * time.Second} {
		key := strconv.Itoa(i)
		tk := newTask(key, nil, Spec{}, Plan{Strategy: FixedDelay, InitialDelay: d, Period: d}, now)
		r.register(key, tk, func() Handle { return ft.RunWithFixedDelay(nil, d, d) })
	}
	once := newTask("once", nil, Spec{}, Plan{Strategy: Once}, now)
	once.ran(now, now)
	r.register("once", once, func() Handle { return ft.RunOnce(nil, 0) })

	entries := r.entries()
	require.Len(t, entries, 4)
	assert.Equal(t, []string{"1", "2", "0", "once"}, []string{entries[0].Key, entries[1].Key, entries[2].Key, entries[3].Key})
	assert.Equal(t, now.Add(time.Second), entries[0].NextRun)
}
