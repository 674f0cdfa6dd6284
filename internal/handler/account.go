package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/maxviazov/taskboard-service/internal/service"
	"github.com/maxviazov/taskboard-service/pkg/response"
)

type AccountHandler struct {
	svc service.AccountService
}

func NewAccountHandler(svc service.AccountService) *AccountHandler { return &AccountHandler{svc: svc} }

// RegisterPublic mounts sign-up and login. Sign-up accepts an optional token so admins can
// create other admins.
func (h *AccountHandler) RegisterPublic(r *gin.RouterGroup, tokens TokenVerifier) {
	g := r.Group("/auth")
	{
		g.POST("/register", OptionalAuthenticate(tokens), h.register)
		g.POST("/login", h.login)
	}
}

// Register mounts the routes that need an authenticated caller.
func (h *AccountHandler) Register(r *gin.RouterGroup) {
	r.GET("/profile", h.profile)
	r.PUT("/profile", h.updateProfile)
	r.GET("/users", h.listUsers)
}

func (h *AccountHandler) register(c *gin.Context) {
	var req service.RegisterInput
	if err := bindJSON(c, &req); err != nil {
		response.WriteError(c, err)
		return
	}
	var actor *service.Actor
	if a, ok := actorFrom(c); ok {
		actor = &a
	}
	u, err := h.svc.Register(c.Request.Context(), actor, req)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, u)
}

func (h *AccountHandler) login(c *gin.Context) {
	var req service.LoginInput
	if err := bindJSON(c, &req); err != nil {
		response.WriteError(c, err)
		return
	}
	sess, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, sess)
}

func (h *AccountHandler) profile(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	u, err := h.svc.Profile(c.Request.Context(), actor)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, u)
}

func (h *AccountHandler) updateProfile(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	var req service.ProfileInput
	if err := bindJSON(c, &req); err != nil {
		response.WriteError(c, err)
		return
	}
	u, err := h.svc.UpdateProfile(c.Request.Context(), actor, req)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, u)
}

func (h *AccountHandler) listUsers(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	page, err := pageRequest(c)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	res, err := h.svc.ListUsers(c.Request.Context(), actor, page)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, res)
}
