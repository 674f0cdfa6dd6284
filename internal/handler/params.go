package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/maxviazov/taskboard-service/internal/service"
)

// pathID parses a positive integer path parameter.
func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, service.NewInvalidInputError(service.FieldError{Field: name, Message: "must be a positive integer"})
	}
	return id, nil
}

// queryInt parses an optional integer query parameter; def is returned when it is absent.
func queryInt(c *gin.Context, name string, def int) (int, *service.FieldError) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &service.FieldError{Field: name, Message: "must be an integer"}
	}
	return v, nil
}

// pageRequest reads page, page_size and siblings. Missing values are left for the service
// to default; a missing siblings is passed as -1.
func pageRequest(c *gin.Context) (service.PageRequest, error) {
	var (
		req   service.PageRequest
		ferrs []service.FieldError
		fe    *service.FieldError
	)
	if req.Page, fe = queryInt(c, "page", 0); fe != nil {
		ferrs = append(ferrs, *fe)
	}
	if req.PageSize, fe = queryInt(c, "page_size", 0); fe != nil {
		ferrs = append(ferrs, *fe)
	}
	if req.Siblings, fe = queryInt(c, "siblings", -1); fe != nil {
		ferrs = append(ferrs, *fe)
	}
	if err := service.NewInvalidInputError(ferrs...); err != nil {
		return service.PageRequest{}, err
	}
	return req, nil
}

// bindJSON decodes the request body, reporting malformed JSON as a single body error.
func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return service.NewInvalidInputError(service.FieldError{Field: "body", Message: "must be a valid JSON object"})
	}
	return nil
}
