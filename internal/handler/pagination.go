package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/maxviazov/taskboard-service/internal/pagination"
	"github.com/maxviazov/taskboard-service/internal/service"
	"github.com/maxviazov/taskboard-service/pkg/response"
)

// RangeResponse is the page selector for the requested position, both as JSON entries
// and in its printable form.
type RangeResponse struct {
	Request   pagination.Request `json:"request"`
	Pages     []pagination.Entry `json:"pages"`
	Formatted string             `json:"formatted"`
}

// PaginationHandler exposes the range calculator without touching storage. The route is
// public, so every request is checked against limits first.
type PaginationHandler struct {
	limits pagination.Limits
}

// NewPaginationHandler uses pagination.DefaultLimits when limits is the zero value.
func NewPaginationHandler(limits pagination.Limits) *PaginationHandler {
	if limits == (pagination.Limits{}) {
		limits = pagination.DefaultLimits
	}
	return &PaginationHandler{limits: limits}
}

func (h *PaginationHandler) Register(r *gin.RouterGroup) {
	r.GET("/pagination/range", h.rangeOf)
}

// rangeOf reads page, total, page_size and siblings. A missing siblings uses the default;
// values beyond the configured limits are rejected with invalid_argument.
func (h *PaginationHandler) rangeOf(c *gin.Context) {
	var req pagination.Request
	if err := c.ShouldBindQuery(&req); err != nil {
		response.WriteError(c, service.NewInvalidInputError(service.FieldError{Field: "query", Message: "page, total, page_size and siblings must be integers"}))
		return
	}
	if _, ok := c.GetQuery("siblings"); !ok {
		req.SiblingCount = pagination.DefaultSiblingCount
	}
	pages, err := req.RangeWithin(h.limits)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, RangeResponse{
		Request:   req,
		Pages:     pages,
		Formatted: pagination.Format(pages),
	})
}
