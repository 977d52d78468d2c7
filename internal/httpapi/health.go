package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const healthCheckTimeout = 3 * time.Second

type healthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Version     string    `json:"version"`
	Environment string    `json:"environment"`
}

type componentStatus struct {
	Status    string    `json:"status"`
	LastCheck time.Time `json:"last_check"`
	Error     string    `json:"error,omitempty"`
}

type indexStatus struct {
	Entries    int  `json:"entries"`
	Reindexing bool `json:"reindexing"`
}

type buildInfo struct {
	Driver string `json:"driver"`
	Mode   string `json:"mode"`
}

type detailedHealthResponse struct {
	healthResponse
	Database componentStatus `json:"database"`
	Index    indexStatus     `json:"index"`
	Build    buildInfo       `json:"build"`
	Metrics  MetricsSnapshot `json:"metrics"`
}

type metricsResponse struct {
	MetricsSnapshot
	IndexEntries int            `json:"index_entries"`
	SearchCache  int            `json:"search_cache_entries"`
	JobsByStatus map[string]int `json:"jobs_by_status"`
}

func (s *Server) baseHealth() healthResponse {
	return healthResponse{
		Status:      "healthy",
		Timestamp:   time.Now().UTC(),
		Version:     s.opts.Version,
		Environment: s.opts.Env,
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, s.baseHealth())
}

// healthDetailed pings the database; a failed ping reports 503
func (s *Server) healthDetailed(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	resp := detailedHealthResponse{
		healthResponse: s.baseHealth(),
		Database:       componentStatus{Status: "healthy", LastCheck: time.Now().UTC()},
		Build:          buildInfo{Driver: s.opts.Driver, Mode: s.opts.BuildMode},
		Metrics:        s.metrics.Snapshot(),
	}
	if s.deps.Index != nil {
		resp.Index.Entries = s.deps.Index.Len()
	}
	if s.deps.Searcher != nil {
		resp.Index.Reindexing = s.deps.Searcher.Reindexing()
	}

	status := http.StatusOK
	if err := s.deps.Store.Ping(ctx); err != nil {
		s.logger.Error("database health check failed", "error", err)
		resp.Status = "unhealthy"
		resp.Database.Status = "unhealthy"
		resp.Database.Error = err.Error()
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}

func (s *Server) metricsHandler(c *gin.Context) {
	resp := metricsResponse{
		MetricsSnapshot: s.metrics.Snapshot(),
		JobsByStatus:    map[string]int{},
	}
	if s.deps.Index != nil {
		resp.IndexEntries = s.deps.Index.Len()
	}
	if s.deps.Searcher != nil {
		resp.SearchCache = s.deps.Searcher.CacheLen()
	}

	counts, err := s.deps.Store.CountJobsByStatus(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	for status, n := range counts {
		resp.JobsByStatus[string(status)] = n
	}
	c.JSON(http.StatusOK, resp)
}
