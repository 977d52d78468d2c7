package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/dshills/bookcatalog/internal/auth"
	"github.com/dshills/bookcatalog/internal/catalog"
	"github.com/dshills/bookcatalog/internal/indexer"
	"github.com/dshills/bookcatalog/internal/ingestion"
	"github.com/dshills/bookcatalog/internal/searcher"
	"github.com/dshills/bookcatalog/internal/storage"
)

const shutdownTimeout = 10 * time.Second

// Deps are the services the HTTP API dispatches to
type Deps struct {
	Store    storage.Storage
	Catalog  *catalog.Service
	Auth     *auth.Service
	Searcher *searcher.Searcher
	Tracker  *ingestion.Tracker
	Index    *indexer.Index
	Redis    *redis.Client // Optional, enables the shared rate limiter
	Logger   *slog.Logger
}

// Options tune the HTTP surface
type Options struct {
	CORSOrigins    []string
	RateLimit      int           // Requests per window and client, <= 0 disables limiting
	RateWindow     time.Duration // Defaults to one minute
	MaxUploadBytes int64         // Defaults to 32 MiB
	Version        string
	Env            string
	Driver         string
	BuildMode      string
}

// Server is the gin-backed HTTP API
type Server struct {
	deps    Deps
	opts    Options
	logger  *slog.Logger
	engine  *gin.Engine
	metrics *Metrics
}

// NewServer builds the router with its middleware chain
func NewServer(deps Deps, opts Options) *Server {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if opts.RateWindow <= 0 {
		opts.RateWindow = time.Minute
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 32 << 20
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}

	s := &Server{
		deps:    deps,
		opts:    opts,
		logger:  deps.Logger.With("component", "http"),
		engine:  gin.New(),
		metrics: NewMetrics(),
	}

	s.engine.Use(requestID(), s.accessLog(), s.recovery())
	if len(opts.CORSOrigins) > 0 {
		s.engine.Use(cors.New(corsConfig(opts.CORSOrigins)))
	}
	if opts.RateLimit > 0 {
		s.engine.Use(s.rateLimit(s.newLimiter()))
	}
	s.engine.NoRoute(func(c *gin.Context) {
		s.writeError(c, fmt.Errorf("route %s: %w", c.Request.URL.Path, storage.ErrNotFound))
	})
	s.routes()
	return s
}

// Handler returns the root http.Handler
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Metrics returns the request counters
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Run serves on addr until ctx is cancelled, then drains in-flight requests
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down http server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown failed: %w", err)
	}
	return nil
}

func (s *Server) routes() {
	r := s.engine
	r.GET("/health", s.health)
	r.GET("/health/detailed", s.healthDetailed)
	r.GET("/metrics", s.metricsHandler)
	r.GET("/metrics/prometheus", gin.WrapH(s.metrics.Handler()))

	v1 := r.Group("/api/v1")

	authGroup := v1.Group("/auth")
	authGroup.POST("/signup", s.signup)
	authGroup.POST("/login", s.login)
	authGroup.POST("/create-admin", s.createAdmin)
	authGroup.POST("/logout", s.logout)

	write := s.authenticated(auth.PermWrite)
	del := s.authenticated(auth.PermDelete)
	anyUser := s.authenticated("")
	admin := s.authenticated(auth.PermAdmin)

	authors := v1.Group("/authors")
	authors.GET("", s.listAuthors)
	authors.GET("/:id", s.getAuthor)
	authors.POST("", write, s.createAuthor)
	authors.PUT("/:id", write, s.updateAuthor)
	authors.DELETE("/:id", del, s.deleteAuthor)

	genres := v1.Group("/genres")
	genres.GET("", s.listGenres)
	genres.GET("/:id", s.getGenre)
	genres.POST("", write, s.createGenre)
	genres.PUT("/:id", write, s.updateGenre)
	genres.DELETE("/:id", del, s.deleteGenre)

	books := v1.Group("/books")
	books.GET("", s.listBooks)
	books.GET("/dropdown/authors", s.listAuthors)
	books.GET("/dropdown/genres", s.listGenres)
	books.GET("/:id", s.getBook)
	books.POST("", write, s.createBook)
	books.PUT("/:id", write, s.updateBook)
	books.DELETE("/:id", del, s.deleteBook)
	books.GET("/:id/reviews", anyUser, s.listReviews)
	books.POST("/:id/reviews", anyUser, s.addReview)

	recs := v1.Group("/recommendations")
	recs.GET("/genre/:id", s.recommendByGenre)
	recs.GET("/genre-name/:name", s.recommendByGenreName)

	docs := v1.Group("/documents", anyUser)
	docs.POST("/upload", s.uploadDocument)
	docs.GET("", s.listDocuments)
	docs.GET("/:id/download", s.downloadDocument)
	docs.DELETE("/:id", del, s.deleteDocument)

	ing := v1.Group("/ingestion", anyUser)
	ing.POST("/trigger/:id", s.triggerIngestion)
	ing.GET("/status/:id", s.ingestionStatus)
	ing.GET("/jobs", s.listJobs)
	ing.GET("/today-count", s.todayCount)
	ing.POST("/complete-stuck-jobs", s.completeStuckJobs)

	search := v1.Group("/search")
	search.GET("", s.search)
	search.POST("", s.search)
	search.POST("/reindex-all", write, s.reindexAll)

	users := v1.Group("/users", admin)
	users.GET("", s.listUsers)
	users.POST("", s.createUser)
	users.GET("/roles", s.listRoles)
	users.GET("/:id", s.getUser)
	users.PUT("/:id", s.updateUser)
	users.DELETE("/:id", s.deleteUser)
}
