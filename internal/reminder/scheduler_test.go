package reminder

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureAnnouncer struct {
	ch chan *Reminder
}

func newCaptureAnnouncer() *captureAnnouncer {
	return &captureAnnouncer{ch: make(chan *Reminder, 8)}
}

func (a *captureAnnouncer) Announce(r *Reminder) {
	a.ch <- r
}

type panicFirstAnnouncer struct {
	calls int
	ch    chan *Reminder
}

func (a *panicFirstAnnouncer) Announce(r *Reminder) {
	a.calls++
	if a.calls == 1 {
		panic("announcer blew up")
	}
	a.ch <- r
}

func startScheduler(t *testing.T, manager *Manager, announcer Announcer) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = NewScheduler(manager, announcer).Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func waitForAnnouncement(t *testing.T, ch <-chan *Reminder, timeout time.Duration) *Reminder {
	t.Helper()

	select {
	case r := <-ch:
		return r
	case <-time.After(timeout):
		t.Fatal("timed out waiting for announcement")
		return nil
	}
}

func assertNoAnnouncement(t *testing.T, ch <-chan *Reminder, window time.Duration) {
	t.Helper()

	select {
	case r := <-ch:
		t.Fatalf("unexpected announcement: %q", r.Text)
	case <-time.After(window):
	}
}

func TestSchedulerFiresDueReminder(t *testing.T) {
	t.Parallel()

	manager, store := newRealClockManager(t)
	now := time.Now()
	require.NoError(t, store.Append(NewReminder("call mom", now.Add(50*time.Millisecond), now)))
	require.NoError(t, manager.Load())

	announcer := newCaptureAnnouncer()
	startScheduler(t, manager, announcer)

	fired := waitForAnnouncement(t, announcer.ch, 2*time.Second)
	assert.Equal(t, "call mom", fired.Text)

	// Fires once, not again on the next loop iteration.
	assertNoAnnouncement(t, announcer.ch, 200*time.Millisecond)
	assert.Empty(t, manager.List())
}

func TestSchedulerFiresPastDueOnStartup(t *testing.T) {
	t.Parallel()

	manager, store := newRealClockManager(t)
	now := time.Now()
	require.NoError(t, store.Append(NewReminder("water the plants", now.Add(-time.Hour), now.Add(-2*time.Hour))))
	require.NoError(t, manager.Load())

	announcer := newCaptureAnnouncer()
	startScheduler(t, manager, announcer)

	fired := waitForAnnouncement(t, announcer.ch, 2*time.Second)
	assert.Equal(t, "water the plants", fired.Text)
}

func TestSchedulerReArmsForEarlierReminder(t *testing.T) {
	t.Parallel()

	manager, store := newRealClockManager(t)
	now := time.Now()
	require.NoError(t, store.Append(NewReminder("later task", now.Add(5*time.Second), now)))
	require.NoError(t, manager.Load())

	announcer := newCaptureAnnouncer()
	startScheduler(t, manager, announcer)

	// The timer is armed for the 5s reminder; a new earlier one must
	// preempt it rather than wait behind it.
	require.NoError(t, store.Append(NewReminder("urgent task", now.Add(100*time.Millisecond), now)))
	require.NoError(t, manager.Load())

	fired := waitForAnnouncement(t, announcer.ch, 2*time.Second)
	assert.Equal(t, "urgent task", fired.Text)

	entries := manager.List()
	require.Len(t, entries, 1)
	assert.Equal(t, "later task", entries[0].Text)
}

func TestSchedulerSurvivesPanickingAnnouncer(t *testing.T) {
	t.Parallel()

	manager, store := newRealClockManager(t)
	now := time.Now()
	require.NoError(t, store.Append(NewReminder("first", now.Add(50*time.Millisecond), now)))
	require.NoError(t, store.Append(NewReminder("second", now.Add(250*time.Millisecond), now.Add(time.Second))))
	require.NoError(t, manager.Load())

	announcer := &panicFirstAnnouncer{ch: make(chan *Reminder, 8)}
	startScheduler(t, manager, announcer)

	fired := waitForAnnouncement(t, announcer.ch, 2*time.Second)
	assert.Equal(t, "second", fired.Text)
}

func TestSchedulerStopsOnContextCancel(t *testing.T) {
	t.Parallel()

	manager, _ := newRealClockManager(t)
	require.NoError(t, manager.Load())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- NewScheduler(manager, newCaptureAnnouncer()).Run(ctx)
	}()

	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
}

// newRealClockManager builds a manager on a real clock for timing tests;
// reminders are seeded through the store to sidestep text parsing.
func newRealClockManager(t *testing.T) (*Manager, Store) {
	t.Helper()

	store, err := NewSQLiteStore(t.TempDir() + "/reminders.db")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return NewManager(store), store
}
