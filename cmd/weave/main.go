package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	app "github.com/workiq/weave"
	"github.com/workiq/weave/internal/config"
	"github.com/workiq/weave/internal/engine"
	"github.com/workiq/weave/internal/handler"
	"github.com/workiq/weave/internal/server"
	"github.com/workiq/weave/internal/store"
	"github.com/workiq/weave/pkg/api"
	"github.com/workiq/weave/pkg/log"
)

type weave struct {
	cfg        *config.Config
	defs       []*api.EndpointDef
	registry   *engine.Registry
	executor   *engine.Executor
	events     *engine.Hub
	history    store.Store
	redis      *redis.Client
	apiServer  *server.Server
	httpServer *http.Server
	quit       chan os.Signal
}

var (
	ErrLoadEndpoints = errors.New("failed to load endpoint catalog")
	ErrBuildRegistry = errors.New("failed to build endpoint registry")
	ErrConnectRedis  = errors.New("failed to connect to redis")
)

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

func main() {
	_ = godotenv.Load()

	cfg := config.NewDefaultConfig()
	if err := cfg.LoadFromEnv(); err != nil {
		slog.Error("Invalid configuration", log.Error(err))
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", log.Error(err))
		os.Exit(1)
	}

	s := &weave{
		cfg:  cfg,
		quit: make(chan os.Signal, 1),
	}
	s.setupLogging()

	if err := s.run(); err != nil {
		slog.Error("Failed to start application", log.Error(err))
		os.Exit(1)
	}
}

func (s *weave) run() error {
	if err := s.initializeEndpoints(); err != nil {
		return err
	}
	if err := s.initializeHistory(); err != nil {
		return err
	}
	s.startServer()

	signal.Notify(s.quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(s.quit)
	<-s.quit

	s.shutdown()
	return nil
}

func (s *weave) setupLogging() {
	level, ok := logLevels[s.cfg.LogLevel]
	if !ok {
		level = slog.LevelInfo
	}

	env := os.Getenv("ENV")
	logger := log.NewWithLevel(app.Name, env, app.Version, level)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level)

	slog.Info("Weave starting",
		slog.String("log_level", s.cfg.LogLevel))

	slog.Info("Configuration loaded",
		slog.String("endpoints_file", s.cfg.EndpointsFile),
		slog.String("redis_addr", s.cfg.RedisAddr),
		slog.String("api_host", s.cfg.APIHost),
		slog.Int("api_port", s.cfg.APIPort))
}

func (s *weave) initializeEndpoints() error {
	defs, err := config.LoadEndpoints(s.cfg.EndpointsFile)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLoadEndpoints, err)
	}

	// Cycles and missing references are fatal at startup, never at
	// request time
	if err := engine.Analyze(defs); err != nil {
		return err
	}

	s.events = engine.NewHub()
	reg, exec, err := handler.BuildRegistry(defs, &handler.Deps{
		Prompts: handler.NewPromptCaller(
			s.cfg.PromptURL, s.cfg.PromptAPIKey, s.cfg.PromptTimeout,
		),
		Scripts: handler.NewScriptEnv(),
		Queries: handler.NewQueryRunner(s.cfg.QueryTimeout),
		Events:  s.events,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildRegistry, err)
	}

	s.defs = defs
	s.registry = reg
	s.executor = exec

	slog.Info("Endpoint registry ready",
		slog.Int("endpoints", reg.Len()))
	return nil
}

func (s *weave) initializeHistory() error {
	if s.cfg.RedisAddr == "" {
		s.history = store.NewMemoryStore(s.cfg.HistoryLimit)
		return nil
	}

	s.redis = redis.NewClient(&redis.Options{
		Addr:     s.cfg.RedisAddr,
		Password: s.cfg.RedisPassword,
		DB:       s.cfg.RedisDB,
	})
	if err := s.redis.Ping(context.Background()).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrConnectRedis, err)
	}

	s.history = store.NewRedisStore(
		s.redis, s.cfg.RedisPrefix, s.cfg.HistoryLimit,
	)
	return nil
}

func (s *weave) startServer() {
	s.apiServer = server.NewServer(
		s.registry, s.executor, s.events, s.history, s.defs,
	)
	mux := s.apiServer.SetupRoutes()

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.cfg.APIHost, s.cfg.APIPort),
		Handler: mux,
	}

	go func() {
		slog.Info("HTTP server starting",
			slog.String("addr", s.httpServer.Addr))
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", log.Error(err))
		}
	}()
}

func (s *weave) shutdown() {
	slog.Info("Shutting down")

	ctx, cancel := context.WithTimeout(
		context.Background(), s.cfg.ShutdownTimeout,
	)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		slog.Error("Shutdown failed", log.Error(err))
	}

	s.apiServer.CloseWebSockets()

	if s.redis != nil {
		_ = s.redis.Close()
	}

	slog.Info("Server exited")
}
