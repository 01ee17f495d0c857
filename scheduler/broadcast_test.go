package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sourceStub struct {
	ids []int64
	err error
}

func (s *sourceStub) AllIDs(context.Context) ([]int64, error) { return s.ids, s.err }

type notifierStub struct {
	mu   sync.Mutex
	sent map[int64]string
	fail map[int64]bool
}

func newNotifierStub() *notifierStub {
	return &notifierStub{sent: make(map[int64]string), fail: make(map[int64]bool)}
}

func (n *notifierStub) Notify(_ context.Context, userID int64, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail[userID] {
		return errors.New("blocked by user")
	}
	n.sent[userID] = text
	return nil
}

func TestBroadcastNotifiesAllUsers(t *testing.T) {
	src := &sourceStub{ids: []int64{1, 2, 3, 4, 5}}
	sink := newNotifierStub()
	b, err := NewBroadcaster(Config{Enabled: true, Hour: 10, Concurrency: 2}, src, sink, "Time to solve a puzzle!")
	require.NoError(t, err)

	total, notified := b.Broadcast(context.Background())

	assert.Equal(t, 5, total)
	assert.Equal(t, 5, notified)
	assert.Len(t, sink.sent, 5)
	assert.Equal(t, "Time to solve a puzzle!", sink.sent[3])
}

func TestBroadcastSkipsFailedDeliveries(t *testing.T) {
	src := &sourceStub{ids: []int64{1, 2, 3}}
	sink := newNotifierStub()
	sink.fail[2] = true
	b, err := NewBroadcaster(Config{Enabled: true, Hour: 10}, src, sink, "ping")
	require.NoError(t, err)

	total, notified := b.Broadcast(context.Background())

	assert.Equal(t, 3, total)
	assert.Equal(t, 2, notified)
	assert.Len(t, sink.sent, 2)
	assert.NotContains(t, sink.sent, int64(2))
}

func TestUntilNextSameDay(t *testing.T) {
	b, err := NewBroadcaster(Config{Enabled: true, Hour: 10, Minute: 0, Timezone: "UTC"}, &sourceStub{}, newNotifierStub(), "")
	require.NoError(t, err)
	b.now = func() time.Time {
		return time.Date(2025, 3, 1, 8, 30, 0, 0, time.UTC)
	}

	assert.Equal(t, 90*time.Minute, b.untilNext())
}

func TestUntilNextRollsOverMidnight(t *testing.T) {
	b, err := NewBroadcaster(Config{Enabled: true, Hour: 10, Minute: 0, Timezone: "UTC"}, &sourceStub{}, newNotifierStub(), "")
	require.NoError(t, err)
	b.now = func() time.Time {
		return time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	}

	assert.Equal(t, 24*time.Hour, b.untilNext())
}

func TestRunDisabledReturnsImmediately(t *testing.T) {
	b, err := NewBroadcaster(Config{Enabled: false, Hour: 10}, &sourceStub{}, newNotifierStub(), "")
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		b.Run(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("disabled broadcaster did not return")
	}
}

func TestConfigNormalizeValidation(t *testing.T) {
	bad := Config{Hour: 24}
	_, err := bad.Normalize()
	assert.Error(t, err)

	bad = Config{Minute: 60}
	_, err = bad.Normalize()
	assert.Error(t, err)

	ok := Config{Hour: 10, Timezone: "Europe/Moscow"}
	loc, err := ok.Normalize()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Moscow", loc.String())
	assert.Equal(t, 8, ok.Concurrency)
}
