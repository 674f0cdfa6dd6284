package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/maxviazov/taskboard-service/internal/service"
	"github.com/maxviazov/taskboard-service/pkg/response"
)

type TaskHandler struct {
	svc service.TaskService
}

func NewTaskHandler(svc service.TaskService) *TaskHandler { return &TaskHandler{svc: svc} }

func (h *TaskHandler) Register(r *gin.RouterGroup) {
	// Nested under projects: /api/v1/projects/:project_id/tasks
	projects := r.Group("/projects")
	{
		projects.GET("/:project_id/tasks", h.list)
		projects.POST("/:project_id/tasks", h.create)
	}
	g := r.Group("/tasks")
	{
		// Static segment registered next to the :id wildcard; Gin gives it priority.
		g.GET("/form-fields", h.formFields)
		g.GET("/:id", h.get)
		g.PUT("/:id", h.update)
		g.DELETE("/:id", h.delete)
	}
}

func (h *TaskHandler) list(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	projectID, err := pathID(c, "project_id")
	if err != nil {
		response.WriteError(c, err)
		return
	}
	page, err := pageRequest(c)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	res, err := h.svc.ListTasks(c.Request.Context(), actor, projectID, page)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, res)
}

func (h *TaskHandler) create(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	projectID, err := pathID(c, "project_id")
	if err != nil {
		response.WriteError(c, err)
		return
	}
	var req service.TaskInput
	if err := bindJSON(c, &req); err != nil {
		response.WriteError(c, err)
		return
	}
	t, err := h.svc.CreateTask(c.Request.Context(), actor, projectID, req)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, t)
}

func (h *TaskHandler) get(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		response.WriteError(c, err)
		return
	}
	t, err := h.svc.GetTask(c.Request.Context(), actor, id)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, t)
}

func (h *TaskHandler) update(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		response.WriteError(c, err)
		return
	}
	var req service.TaskInput
	if err := bindJSON(c, &req); err != nil {
		response.WriteError(c, err)
		return
	}
	t, err := h.svc.UpdateTask(c.Request.Context(), actor, id, req)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, t)
}

func (h *TaskHandler) delete(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		response.WriteError(c, err)
		return
	}
	if err := h.svc.DeleteTask(c.Request.Context(), actor, id); err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteNoContent(c)
}

func (h *TaskHandler) formFields(c *gin.Context) {
	response.WriteData(c, http.StatusOK, h.svc.FormFields())
}
