package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/maxviazov/taskboard-service/internal/service"
	"github.com/maxviazov/taskboard-service/pkg/response"
)

type ProjectHandler struct {
	svc service.ProjectService
}

func NewProjectHandler(svc service.ProjectService) *ProjectHandler { return &ProjectHandler{svc: svc} }

func (h *ProjectHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/projects")
	{
		g.GET("", h.list)
		g.POST("", h.create)
		// project_id is shared with the nested task routes so Gin sees one wildcard name.
		g.GET("/:project_id", h.get)
		g.PUT("/:project_id", h.update)
		g.DELETE("/:project_id", h.delete)
		g.GET("/:project_id/users", h.members)
	}
}

func (h *ProjectHandler) list(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	page, err := pageRequest(c)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	res, err := h.svc.ListProjects(c.Request.Context(), actor, page)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, res)
}

func (h *ProjectHandler) create(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	var req service.ProjectInput
	if err := bindJSON(c, &req); err != nil {
		response.WriteError(c, err)
		return
	}
	p, err := h.svc.CreateProject(c.Request.Context(), actor, req)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, p)
}

func (h *ProjectHandler) get(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	id, err := pathID(c, "project_id")
	if err != nil {
		response.WriteError(c, err)
		return
	}
	p, err := h.svc.GetProject(c.Request.Context(), actor, id)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, p)
}

func (h *ProjectHandler) update(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	id, err := pathID(c, "project_id")
	if err != nil {
		response.WriteError(c, err)
		return
	}
	var req service.ProjectInput
	if err := bindJSON(c, &req); err != nil {
		response.WriteError(c, err)
		return
	}
	p, err := h.svc.UpdateProject(c.Request.Context(), actor, id, req)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, p)
}

func (h *ProjectHandler) delete(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	id, err := pathID(c, "project_id")
	if err != nil {
		response.WriteError(c, err)
		return
	}
	if err := h.svc.DeleteProject(c.Request.Context(), actor, id); err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteNoContent(c)
}

func (h *ProjectHandler) members(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	id, err := pathID(c, "project_id")
	if err != nil {
		response.WriteError(c, err)
		return
	}
	users, err := h.svc.ProjectMembers(c.Request.Context(), actor, id)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, gin.H{"items": users})
}
