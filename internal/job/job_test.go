package job

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lababa/lababa/internal/stats"
)

type fakeCleaner struct {
	deleted int64
	err     error
	calls   int
}

func (f *fakeCleaner) CleanupExpiredSessions(context.Context) (int64, error) {
	f.calls++
	return f.deleted, f.err
}

type fakeRanking struct {
	mu          sync.Mutex
	invalidated int
	periods     []string
	failOn      string
}

func (f *fakeRanking) Invalidate(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated++
}

func (f *fakeRanking) List(_ context.Context, period string) ([]stats.RankingEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if period == f.failOn {
		return nil, errors.New("boom")
	}
	f.periods = append(f.periods, period)
	return nil, nil
}

func TestSessionCleanupJob(t *testing.T) {
	cleaner := &fakeCleaner{deleted: 3}
	job := NewSessionCleanupJob(cleaner, nil)
	assert.Equal(t, "session.cleanup", job.Name())
	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 1, cleaner.calls)

	cleaner.err = errors.New("db down")
	assert.ErrorContains(t, job.Run(context.Background()), "db down")

	var empty *SessionCleanupJob
	assert.Error(t, empty.Run(context.Background()))
}

func TestRankingRefreshJob(t *testing.T) {
	ranking := &fakeRanking{}
	job := NewRankingRefreshJob(ranking)
	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 1, ranking.invalidated)
	assert.Equal(t, []string{"day", "week", "month", "total"}, ranking.periods)

	ranking.failOn = "week"
	assert.ErrorContains(t, NewRankingRefreshJob(ranking, stats.PeriodWeek).Run(context.Background()), "ranking refresh week")
}

func TestSchedulerRegisterAndRunNow(t *testing.T) {
	s := NewScheduler(nil)
	cleaner := &fakeCleaner{}
	job := NewSessionCleanupJob(cleaner, nil)

	_, err := s.Register("not a cron", job)
	assert.Error(t, err)
	_, err = s.Register("@every 1h", nil)
	assert.Error(t, err)

	id, err := s.Register("", job)
	require.NoError(t, err)
	assert.Zero(t, id)
	assert.Error(t, s.RunNow(context.Background(), job.Name()))

	_, err = s.Register("@every 1h", job)
	require.NoError(t, err)
	require.NoError(t, s.RunNow(context.Background(), job.Name()))
	assert.Equal(t, 1, cleaner.calls)

	s.Start()
	s.Start()
	<-s.Stop().Done()
	<-s.Stop().Done()
}
