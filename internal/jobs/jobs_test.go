package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nusa-erp/erp-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeExpirer struct {
	mu       sync.Mutex
	calls    []domain.Actor
	deadline bool
	err      error
}

func (f *fakeExpirer) MarkExpired(ctx context.Context, actor domain.Actor) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, actor)
	_, f.deadline = ctx.Deadline()
	return 3, f.err
}

func TestExpiryJob_RunsAsSystemWithTimeout(t *testing.T) {
	expirer := &fakeExpirer{}
	NewExpiryJob(expirer, zap.NewNop(), 0).Run()

	require.Len(t, expirer.calls, 1)
	assert.Equal(t, domain.SystemActor, expirer.calls[0])
	assert.True(t, expirer.deadline)
}

func TestExpiryJob_ErrorDoesNotPanic(t *testing.T) {
	expirer := &fakeExpirer{err: errors.New("database is down")}
	assert.NotPanics(t, NewExpiryJob(expirer, zap.NewNop(), time.Second).Run)
	assert.Len(t, expirer.calls, 1)
}

func TestScheduler_Jobs(t *testing.T) {
	wib := time.FixedZone("WIB", 7*60*60)
	s := NewScheduler(wib, zap.NewNop())

	require.NoError(t, RegisterExpiryJob(s, &fakeExpirer{}, "0 5 0 * * *", time.Minute, zap.NewNop()))
	require.NoError(t, s.AddJob("heartbeat", "@every 1h", func() {}))

	assert.Error(t, s.AddJob(ExpiryJobName, "@daily", func() {}), "duplicate name")
	assert.Error(t, s.AddJob("broken", "not a cron expression", func() {}))
	assert.Equal(t, []string{ExpiryJobName, "heartbeat"}, s.JobNames())

	s.Start()
	defer s.Stop()

	next, ok := s.NextRun(ExpiryJobName)
	require.True(t, ok)
	next = next.In(wib)
	assert.Equal(t, 0, next.Hour())
	assert.Equal(t, 5, next.Minute())

	require.NoError(t, s.RemoveJob("heartbeat"))
	assert.Error(t, s.RemoveJob("heartbeat"))
	_, ok = s.NextRun("heartbeat")
	assert.False(t, ok)
}

func TestScheduler_RunsJob(t *testing.T) {
	s := NewScheduler(nil, zap.NewNop())
	ran := make(chan struct{}, 1)
	require.NoError(t, s.AddJob("tick", "@every 1s", func() {
		select {
		case ran <- struct{}{}:
		default:
		}
	}))

	s.Start()
	defer s.Stop()

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not run")
	}
}
