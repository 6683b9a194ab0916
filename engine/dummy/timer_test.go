package dummy_test

import (
	"testing"
	"time"

	"github.com/named-data/closersite/engine/dummy"
	"github.com/stretchr/testify/require"
)

func TestClock(t *testing.T) {
	tm := dummy.NewTimer(1)
	require.Equal(t, time.Unix(0, 0).UTC(), tm.Now())
	tm.MoveForward(10 * time.Second)
	require.Equal(t, time.Unix(10, 0).UTC(), tm.Now())
	tm.MoveForward(50 * time.Second)
	require.Equal(t, time.Unix(60, 0).UTC(), tm.Now())
}

func TestSchedule(t *testing.T) {
	tm := dummy.NewTimer(1)
	val := 0
	tm.Schedule(10*time.Second, func() {
		val = 1
	})
	require.Equal(t, 0, val)
	tm.MoveForward(10 * time.Second)
	require.Equal(t, 1, val)

	lst := []int{0, 0, 0}
	tm.Schedule(10*time.Second, func() {
		lst[0] = 1
	})
	tm.Schedule(20*time.Second, func() {
		lst[1] = 2
	})
	tm.Schedule(15*time.Second, func() {
		lst[2] = 3
	})
	tm.MoveForward(11 * time.Second)
	require.Equal(t, []int{1, 0, 0}, lst)
	tm.MoveForward(5 * time.Second)
	require.Equal(t, []int{1, 0, 3}, lst)
	tm.MoveForward(5 * time.Second)
	require.Equal(t, []int{1, 2, 3}, lst)
}

func TestOrdering(t *testing.T) {
	tm := dummy.NewTimer(1)
	order := make([]string, 0)
	tm.Schedule(2*time.Second, func() { order = append(order, "b") })
	tm.Schedule(1*time.Second, func() {
		order = append(order, "a")
		// Scheduled from inside an event and due before the horizon
		tm.Schedule(0, func() { order = append(order, "a0") })
	})
	tm.Schedule(2*time.Second, func() { order = append(order, "c") })

	var seenAt time.Time
	tm.Schedule(3*time.Second, func() { seenAt = tm.Now() })

	tm.Run()
	require.Equal(t, []string{"a", "a0", "b", "c"}, order)
	require.Equal(t, time.Unix(3, 0).UTC(), seenAt)
	require.Equal(t, uint64(5), tm.EventsRun())
	require.False(t, tm.Step())
}

func TestCancel(t *testing.T) {
	tm := dummy.NewTimer(1)
	val := 0
	cancel := tm.Schedule(10*time.Second, func() {
		val = 1
	})
	require.NoError(t, cancel())
	require.ErrorIs(t, cancel(), dummy.ErrCanceled)
	tm.MoveForward(11 * time.Second)
	require.Equal(t, 0, val)

	done := tm.Schedule(time.Second, func() { val = 2 })
	tm.MoveForward(time.Second)
	require.Equal(t, 2, val)
	require.ErrorIs(t, done(), dummy.ErrCanceled)
}

func TestNonceDeterministic(t *testing.T) {
	a := dummy.NewTimer(42)
	b := dummy.NewTimer(42)
	for i := 0; i < 5; i++ {
		require.Equal(t, a.Nonce(), b.Nonce())
	}
}

func TestCanceledHeadKeepsBound(t *testing.T) {
	tm := dummy.NewTimer(1)
	cancel := tm.Schedule(1*time.Second, func() {
		t.Fatal("cancelled event ran")
	})
	ran := false
	tm.Schedule(5*time.Second, func() {
		ran = true
	})
	require.NoError(t, cancel())

	tm.MoveForward(2 * time.Second)
	require.False(t, ran)
	require.Equal(t, time.Unix(2, 0).UTC(), tm.Now())
	require.Equal(t, uint64(0), tm.EventsRun())

	tm.MoveForward(3 * time.Second)
	require.True(t, ran)
	require.Equal(t, time.Unix(5, 0).UTC(), tm.Now())
}

func TestStepSkipsCanceled(t *testing.T) {
	tm := dummy.NewTimer(1)
	cancel := tm.Schedule(time.Second, func() {})
	require.NoError(t, cancel())
	require.False(t, tm.Step())
	require.Equal(t, 0, tm.Pending())
	require.Equal(t, time.Unix(0, 0).UTC(), tm.Now())
}
