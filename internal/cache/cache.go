// Package cache keeps computed dashboard counters between requests.
package cache

import (
	"context"
	"strconv"

	"github.com/maxviazov/taskboard-service/internal/model"
)

// DashboardCache stores stats per scope: a nil userID is the global (admin) view.
// A miss is reported with ok=false and a nil error.
type DashboardCache interface {
	Get(ctx context.Context, userID *int64) (stats model.DashboardStats, ok bool, err error)
	Set(ctx context.Context, userID *int64, stats model.DashboardStats) error
	// Invalidate drops every scope; any project or task write can change them all.
	Invalidate(ctx context.Context) error
}

const keyPrefix = "taskboard:dashboard:"

func dashboardKey(userID *int64) string {
	if userID == nil {
		return keyPrefix + "all"
	}
	return keyPrefix + "user:" + strconv.FormatInt(*userID, 10)
}

// Noop never stores anything; used when Redis is disabled.
type Noop struct{}

func (Noop) Get(context.Context, *int64) (model.DashboardStats, bool, error) {
	return model.DashboardStats{}, false, nil
}

func (Noop) Set(context.Context, *int64, model.DashboardStats) error { return nil }

func (Noop) Invalidate(context.Context) error { return nil }

var _ DashboardCache = Noop{}
