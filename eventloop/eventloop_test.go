package eventloop

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestManualFlushRunsNestedPosts(t *testing.T) {
	m := NewManual()
	var order []int
	m.Post(func() {
		order = append(order, 1)
		m.Post(func() { order = append(order, 3) })
	})
	m.Post(func() { order = append(order, 2) })
	m.Flush()
	require.Equal(t, []int{1, 2, 3}, order)
	require.Zero(t, m.Pending())
}

func TestManualTimersFireInDeadlineOrder(t *testing.T) {
	m := NewManual()
	var order []string
	m.AfterFunc(20*time.Millisecond, func() { order = append(order, "late") })
	m.AfterFunc(10*time.Millisecond, func() { order = append(order, "early") })
	stop := m.AfterFunc(15*time.Millisecond, func() { order = append(order, "stopped") })
	require.True(t, stop())
	require.False(t, stop())

	m.Advance(5 * time.Millisecond)
	require.Empty(t, order)
	m.Advance(20 * time.Millisecond)
	require.Equal(t, []string{"early", "late"}, order)
}

func TestManualSettle(t *testing.T) {
	m := NewManual()
	fired := 0
	m.AfterFunc(time.Second, func() {
		fired++
		m.AfterFunc(time.Second, func() { fired++ })
	})
	m.Settle()
	require.Equal(t, 2, fired)
	require.Zero(t, m.Pending())
}

func TestLoopRunsPostedWorkInOrder(t *testing.T) {
	l := New(8, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	var got []int
	for i := range 5 {
		l.Post(func() { got = append(got, i) })
	}
	require.NoError(t, l.Do(ctx, func() error { return nil }))
	require.Equal(t, []int{0, 1, 2, 3, 4}, got)
}

func TestLoopDoReturnsError(t *testing.T) {
	l := New(1, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	boom := errors.New("boom")
	require.ErrorIs(t, l.Do(ctx, func() error { return boom }), boom)
}

func TestLoopAfterFunc(t *testing.T) {
	l := New(1, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	fired := make(chan struct{})
	l.AfterFunc(time.Millisecond, func() { close(fired) })
	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("timer did not fire")
	}
}

func TestLoopDoAfterClose(t *testing.T) {
	l := New(1, nil)
	go l.Run(context.Background())
	l.Close()

	ran := false
	err := l.Do(context.Background(), func() error { ran = true; return nil })
	require.ErrorIs(t, err, ErrClosed)
	require.False(t, ran)
}

func TestLoopDoRecoversPanic(t *testing.T) {
	l := New(1, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	err := l.Do(ctx, func() error { panic("boom") })
	require.ErrorContains(t, err, "boom")
	require.NoError(t, l.Do(ctx, func() error { return nil }))
}
