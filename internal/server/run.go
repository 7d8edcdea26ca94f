package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/workiq/weave/internal/engine"
	"github.com/workiq/weave/pkg/api"
	"github.com/workiq/weave/pkg/log"
)

var (
	ErrEndpointNotFound = errors.New("endpoint not found")
	ErrBadRequestBody   = errors.New("invalid request body")
)

func (s *Server) runEndpoint(c *gin.Context) {
	name := api.Name(c.Param("endpoint"))
	entry, ok := s.registry.Lookup(name)
	if !ok {
		c.JSON(http.StatusNotFound, api.ErrorResponse{
			Error:  fmt.Sprintf("%s: %s", ErrEndpointNotFound, name),
			Status: http.StatusNotFound,
		})
		return
	}

	var input any
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{
				Error:  fmt.Sprintf("%s: %v", ErrBadRequestBody, err),
				Status: http.StatusBadRequest,
			})
			return
		}
	}

	if entry.Input != nil {
		if err := entry.Input.Validate(input); err != nil {
			c.JSON(http.StatusUnprocessableEntity, api.ErrorResponse{
				Error:  err.Error(),
				Status: http.StatusUnprocessableEntity,
			})
			return
		}
	}

	execID := uuid.NewString()
	rec := &api.ExecutionRecord{
		ID:        execID,
		Endpoint:  name,
		Input:     input,
		Status:    api.ExecutionRunning,
		StartedAt: time.Now().UTC(),
	}

	output, err := s.invoke(c.Request.Context(), execID, name, entry, input)
	rec.CompletedAt = time.Now().UTC()

	if err == nil && entry.Output != nil {
		if verr := entry.Output.Validate(output); verr != nil {
			err = fmt.Errorf("%w: %w", engine.ErrOutputValidation, verr)
		}
	}
	if err != nil {
		rec.Status = api.ExecutionFailed
		rec.Error = err.Error()
		s.saveRecord(c.Request.Context(), rec)

		c.Header("X-Execution-Id", execID)
		status := runErrorStatus(err)
		c.JSON(status, api.ErrorResponse{
			Error:  err.Error(),
			Status: status,
		})
		return
	}

	rec.Status = api.ExecutionSucceeded
	rec.Output = output
	s.saveRecord(c.Request.Context(), rec)

	c.Header("X-Execution-Id", execID)
	c.JSON(http.StatusOK, output)
}

// invoke routes chain endpoints through the executor directly so that the
// stored record and the event stream share one execution ID. Leaf
// endpoints run their handler as registered
func (s *Server) invoke(
	ctx context.Context, execID string, name api.Name,
	entry *engine.Entry, input any,
) (any, error) {
	if def, ok := s.defs[name]; ok && def.IsChain() {
		return s.executor.Execute(ctx, execID, name, def.Chain, input)
	}
	return entry.Handler(ctx, input)
}

// runErrorStatus maps execution failures to response codes. The core
// returns errors; status codes live here
func runErrorStatus(err error) int {
	var chainErr *engine.ChainError
	switch {
	case errors.As(err, &chainErr):
		return http.StatusBadGateway
	case errors.Is(err, engine.ErrOutputValidation),
		errors.Is(err, engine.ErrInputValidation):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// saveRecord persists an execution record. History writes never affect
// the request outcome
func (s *Server) saveRecord(ctx context.Context, rec *api.ExecutionRecord) {
	if err := s.history.Save(ctx, rec); err != nil {
		slog.Error("Failed to save execution record",
			log.ExecutionID(rec.ID),
			log.Error(err))
	}
}
