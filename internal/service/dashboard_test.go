package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/maxviazov/taskboard-service/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingStatsRepo struct {
	calls  int
	scopes []*int64
	at     time.Time
	stats  model.DashboardStats
	err    error
}

func (r *countingStatsRepo) Stats(_ context.Context, userID *int64, now time.Time) (model.DashboardStats, error) {
	r.calls++
	r.scopes = append(r.scopes, userID)
	r.at = now
	return r.stats, r.err
}

func newDashboardSvc(repo *countingStatsRepo, c *memCache) *dashboardService {
	svc := NewDashboardService(repo, c, testLogger).(*dashboardService)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestDashboardService_CachesPerScope(t *testing.T) {
	repo := &countingStatsRepo{stats: model.DashboardStats{TotalTasks: 4, Overdue: 1}}
	c := newMemCache()
	svc := newDashboardSvc(repo, c)
	ctx := context.Background()

	admin := Actor{UserID: 1, IsAdmin: true}
	user := Actor{UserID: 2}

	for i := 0; i < 3; i++ {
		got, err := svc.Stats(ctx, admin)
		require.NoError(t, err)
		assert.Equal(t, repo.stats, got)
	}
	assert.Equal(t, 1, repo.calls)
	assert.Nil(t, repo.scopes[0])
	assert.Equal(t, fixedNow, repo.at)

	_, err := svc.Stats(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls)
	require.NotNil(t, repo.scopes[1])
	assert.Equal(t, int64(2), *repo.scopes[1])

	_ = c.Invalidate(ctx)
	_, err = svc.Stats(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, 3, repo.calls)
}

func TestDashboardService_CacheErrorsFallBackToRepo(t *testing.T) {
	repo := &countingStatsRepo{stats: model.DashboardStats{TotalProjects: 1}}
	c := newMemCache()
	c.getErr = errors.New("redis down")
	svc := newDashboardSvc(repo, c)

	got, err := svc.Stats(context.Background(), Actor{UserID: 5})
	require.NoError(t, err)
	assert.Equal(t, 1, got.TotalProjects)
}

func TestDashboardService_RepoError(t *testing.T) {
	repo := &countingStatsRepo{err: errors.New("boom")}
	svc := newDashboardSvc(repo, newMemCache())
	_, err := svc.Stats(context.Background(), Actor{UserID: 5})
	assert.EqualError(t, err, "boom")
}
