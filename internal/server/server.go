package server

import (
	"log/slog"
	"net/http"
	"sync"

	glog "github.com/gin-contrib/slog"
	"github.com/gin-gonic/gin"

	"github.com/workiq/weave"
	"github.com/workiq/weave/internal/engine"
	"github.com/workiq/weave/internal/store"
	"github.com/workiq/weave/pkg/api"
	"github.com/workiq/weave/pkg/util"
)

// Server implements the HTTP API for the gateway
type Server struct {
	registry *engine.Registry
	executor *engine.Executor
	events   *engine.Hub
	history  store.Store
	defs     map[api.Name]*api.EndpointDef
	order    []*api.EndpointDef
	sockets  util.Set[*Client]
	mu       sync.Mutex
}

// NewServer creates a new HTTP API server over a populated registry
func NewServer(
	reg *engine.Registry, exec *engine.Executor, hub *engine.Hub,
	history store.Store, defs []*api.EndpointDef,
) *Server {
	byName := make(map[api.Name]*api.EndpointDef, len(defs))
	for _, def := range defs {
		byName[def.Name] = def
	}
	return &Server{
		registry: reg,
		executor: exec,
		events:   hub,
		history:  history,
		defs:     byName,
		order:    defs,
		sockets:  util.Set[*Client]{},
	}
}

// SetupRoutes configures and returns the HTTP router with all API endpoints
func (s *Server) SetupRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(glog.SetLogger(
		glog.WithLogger(func(c *gin.Context, l *slog.Logger) *slog.Logger {
			return slog.Default()
		}),
	))

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set(
			"Access-Control-Allow-Methods",
			"GET, POST, OPTIONS",
		)
		c.Writer.Header().Set(
			"Access-Control-Allow-Headers",
			"Content-Type, Authorization",
		)

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	})

	router.GET("/health", s.handleHealth)
	router.GET("/endpoints", s.listEndpoints)
	router.POST("/run/:endpoint", s.runEndpoint)
	router.GET("/executions", s.listExecutions)
	router.GET("/executions/:executionID", s.getExecution)
	router.GET("/ws", s.handleWebSocket)

	return router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, api.HealthResponse{
		Service:   weave.Name,
		Version:   weave.Version,
		Status:    "healthy",
		Endpoints: s.registry.Len(),
	})
}

func (s *Server) listEndpoints(c *gin.Context) {
	c.JSON(http.StatusOK, api.EndpointsListResponse{
		Endpoints: s.order,
		Count:     len(s.order),
	})
}

func (s *Server) registerWebSocket(c *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sockets.Add(c)
}

func (s *Server) unregisterWebSocket(c *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sockets.Remove(c)
}

// CloseWebSockets closes all active WebSocket connections.
func (s *Server) CloseWebSockets() {
	s.mu.Lock()
	conns := make([]*Client, 0, len(s.sockets))
	for c := range s.sockets {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		c.Close()
	}
}
