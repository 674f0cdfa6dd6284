package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/maxviazov/taskboard-service/internal/auth"
	"github.com/maxviazov/taskboard-service/internal/service"
	"github.com/maxviazov/taskboard-service/pkg/response"
	"github.com/rs/zerolog"
)

const (
	// RequestIDHeader is echoed back on every response; an incoming value is reused.
	RequestIDHeader = "X-Request-ID"

	ctxRequestID = response.RequestIDKey
	ctxActor     = "actor"
)

// TokenVerifier is satisfied by *auth.TokenManager.
type TokenVerifier interface {
	Verify(token string) (auth.Identity, error)
}

// RequestLogger tags each request with an id and writes one access log line when it ends.
// 5xx responses log at error level, 4xx at warn.
func RequestLogger(logger zerolog.Logger) gin.HandlerFunc {
	l := logger.With().Str("module", "handler").Str("component", "http").Logger()
	return func(c *gin.Context) {
		start := time.Now()
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Header(RequestIDHeader, id)

		c.Next()

		status := c.Writer.Status()
		var ev *zerolog.Event
		switch {
		case status >= http.StatusInternalServerError:
			ev = l.Error()
		case status >= http.StatusBadRequest:
			ev = l.Warn()
		default:
			ev = l.Info()
		}
		if err := c.Errors.Last(); err != nil {
			ev = ev.Err(err.Err)
		}
		ev.Str("request_id", id).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("took", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("http request")
	}
}

// bearerToken extracts the token of an "Authorization: Bearer <token>" header.
func bearerToken(c *gin.Context) (string, bool) {
	h := c.GetHeader("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// Authenticate rejects requests without a valid bearer token and stores the caller's
// identity for the handlers behind it.
func Authenticate(tokens TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			response.WriteError(c, fmt.Errorf("%w: missing bearer token", service.ErrUnauthorized))
			return
		}
		id, err := tokens.Verify(token)
		if err != nil {
			response.WriteError(c, fmt.Errorf("%w: %v", service.ErrUnauthorized, err))
			return
		}
		c.Set(ctxActor, id)
		c.Next()
	}
}

// OptionalAuthenticate stores the caller's identity when a valid token is present and
// lets anonymous requests through. A present but invalid token is still rejected.
func OptionalAuthenticate(tokens TokenVerifier) gin.HandlerFunc {
	strict := Authenticate(tokens)
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		strict(c)
	}
}

// actorFrom returns the identity stored by Authenticate.
func actorFrom(c *gin.Context) (service.Actor, bool) {
	v, ok := c.Get(ctxActor)
	if !ok {
		return service.Actor{}, false
	}
	id, ok := v.(auth.Identity)
	return id, ok
}

// mustActor writes 401 and reports false when the route was mounted without Authenticate.
func mustActor(c *gin.Context) (service.Actor, bool) {
	a, ok := actorFrom(c)
	if !ok {
		response.WriteError(c, service.ErrUnauthorized)
	}
	return a, ok
}
