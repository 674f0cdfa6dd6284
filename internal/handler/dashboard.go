package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/maxviazov/taskboard-service/internal/service"
	"github.com/maxviazov/taskboard-service/pkg/response"
)

type DashboardHandler struct {
	svc service.DashboardService
}

func NewDashboardHandler(svc service.DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

func (h *DashboardHandler) Register(r *gin.RouterGroup) {
	r.GET("/dashboard", h.stats)
}

func (h *DashboardHandler) stats(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	stats, err := h.svc.Stats(c.Request.Context(), actor)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, stats)
}
