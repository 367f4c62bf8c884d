package gateway_test

import (
	"sync"
	"testing"
	"time"

	"github.com/DanielPopoola/ficmart-escrow/internal/infrastructure/gateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManualScheduler(t *testing.T) {
	t.Run("runs due tasks in order", func(t *testing.T) {
		s := gateway.NewManualScheduler()
		var order []string

		s.Schedule("b", 2*time.Second, func() { order = append(order, "b") })
		s.Schedule("a", time.Second, func() { order = append(order, "a") })
		s.Schedule("c", time.Minute, func() { order = append(order, "c") })

		ran := s.Advance(5 * time.Second)

		assert.Equal(t, 2, ran)
		assert.Equal(t, []string{"a", "b"}, order)
		assert.Equal(t, 1, s.Pending())
	})

	t.Run("cancel removes task", func(t *testing.T) {
		s := gateway.NewManualScheduler()
		called := false
		s.Schedule("a", time.Second, func() { called = true })

		assert.True(t, s.Cancel("a"))
		assert.False(t, s.Cancel("a"))

		s.Advance(time.Minute)
		assert.False(t, called)
	})

	t.Run("rescheduling replaces the task", func(t *testing.T) {
		s := gateway.NewManualScheduler()
		var got string
		s.Schedule("a", time.Second, func() { got = "first" })
		s.Schedule("a", time.Second, func() { got = "second" })

		assert.Equal(t, 1, s.Advance(time.Second))
		assert.Equal(t, "second", got)
	})
}

func TestTimerScheduler(t *testing.T) {
	t.Run("fires after delay", func(t *testing.T) {
		s := gateway.NewTimerScheduler()
		defer s.Stop()

		var wg sync.WaitGroup
		wg.Add(1)
		s.Schedule("a", 10*time.Millisecond, wg.Done)

		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("task did not fire")
		}
	})

	t.Run("cancel stops the timer", func(t *testing.T) {
		s := gateway.NewTimerScheduler()
		defer s.Stop()

		fired := make(chan struct{}, 1)
		s.Schedule("a", 50*time.Millisecond, func() { fired <- struct{}{} })
		require.True(t, s.Cancel("a"))

		select {
		case <-fired:
			t.Fatal("cancelled task fired")
		case <-time.After(150 * time.Millisecond):
		}
	})
}
