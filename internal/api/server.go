package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/romangod6/site-devserver/internal/storage"
)

type Options struct {
	Port         int
	Root         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// AccessLog receives one combined-format line per request. Defaults to stdout.
	AccessLog io.Writer
}

type Server struct {
	router *gin.Engine
	opts   Options
	server *http.Server
}

func NewServer(opts Options, store storage.Store) *Server {
	if opts.AccessLog == nil {
		opts.AccessLog = os.Stdout
	}

	router := gin.New()
	router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: combinedLogFormat,
		Output:    opts.AccessLog,
	}))
	router.Use(gin.Recovery())

	// Setup CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "HEAD", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	// Create handler
	handler := NewHandler(store, opts.Root)

	// Setup routes
	admin := router.Group("/_devserver")
	{
		// Health check
		admin.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "healthy"})
		})

		// Sitemap run history
		runs := admin.Group("/runs")
		{
			runs.GET("", handler.ListRuns)
			runs.GET("/:id", handler.GetRun)
		}
	}

	// Everything else is a static file
	router.NoRoute(handler.ServeStatic)

	return &Server{
		router: router,
		opts:   opts,
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", opts.Port),
			Handler:      router,
			ReadTimeout:  opts.ReadTimeout,
			WriteTimeout: opts.WriteTimeout,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start blocks serving requests. It returns nil once Shutdown has been called.
func (s *Server) Start() error {
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
