package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/maxviazov/taskboard-service/internal/pagination"
	"github.com/maxviazov/taskboard-service/internal/service"
	"github.com/rs/zerolog"
)

// Deps is everything the HTTP layer needs. Metrics is optional; a zero RangeLimits means
// pagination.DefaultLimits.
type Deps struct {
	Ready     Pinger
	Accounts  service.AccountService
	Projects  service.ProjectService
	Tasks     service.TaskService
	Dashboard service.DashboardService
	Tokens    TokenVerifier
	Metrics   *Metrics
	Logger    zerolog.Logger

	RangeLimits pagination.Limits
}

// Register mounts middleware and all public routes on the given engine.
func Register(r *gin.Engine, d Deps) {
	r.Use(gin.Recovery(), RequestLogger(d.Logger))
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware())
		r.GET("/metrics", d.Metrics.Handler())
	}

	h := NewHealthHandler(d.Ready)

	// Health probes
	r.GET("/live", h.Liveness)
	r.GET("/ready", h.Readiness)

	RegisterDocs(r)

	api := r.Group(APIV1Prefix)
	{
		health := api.Group("/health")
		{
			health.GET("/live", h.Liveness)
			health.GET("/ready", h.Readiness)
		}
		accounts := NewAccountHandler(d.Accounts)
		accounts.RegisterPublic(api, d.Tokens)
		NewPaginationHandler(d.RangeLimits).Register(api)

		private := api.Group("", Authenticate(d.Tokens))
		accounts.Register(private)
		NewProjectHandler(d.Projects).Register(private)
		NewTaskHandler(d.Tasks).Register(private)
		NewDashboardHandler(d.Dashboard).Register(private)
	}
}
