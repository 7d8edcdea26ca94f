package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/workiq/weave/internal/store"
	"github.com/workiq/weave/pkg/api"
)

func (s *Server) listExecutions(c *gin.Context) {
	recs, err := s.history.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{
			Error:  err.Error(),
			Status: http.StatusInternalServerError,
		})
		return
	}

	c.JSON(http.StatusOK, api.ExecutionsListResponse{
		Executions: recs,
		Count:      len(recs),
	})
}

func (s *Server) getExecution(c *gin.Context) {
	id := c.Param("executionID")

	rec, err := s.history.Get(c.Request.Context(), id)
	if errors.Is(err, store.ErrExecutionNotFound) {
		c.JSON(http.StatusNotFound, api.ErrorResponse{
			Error:  fmt.Sprintf("execution not found: %s", id),
			Status: http.StatusNotFound,
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{
			Error:  err.Error(),
			Status: http.StatusInternalServerError,
		})
		return
	}

	c.JSON(http.StatusOK, rec)
}
