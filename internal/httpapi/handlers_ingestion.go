package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dshills/bookcatalog/internal/ingestion"
)

func (s *Server) triggerIngestion(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		s.writeError(c, err)
		return
	}
	result, err := s.deps.Tracker.Trigger(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) ingestionStatus(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		s.writeError(c, err)
		return
	}
	result, err := s.deps.Tracker.GetStatus(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) listJobs(c *gin.Context) {
	jobs, err := s.deps.Tracker.ListJobs(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	out := make([]jobResponse, len(jobs))
	for i, j := range jobs {
		out[i] = jobResponse{
			ID:         j.ID,
			DocumentID: j.DocumentID,
			Filename:   j.Filename,
			Status:     string(j.Status),
			CreatedAt:  j.CreatedAt,
		}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) todayCount(c *gin.Context) {
	result, err := s.deps.Tracker.TodayCount(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// completeStuckJobs accepts an optional threshold_minutes query parameter
func (s *Server) completeStuckJobs(c *gin.Context) {
	threshold, err := queryInt(c, "threshold_minutes", ingestion.DefaultStuckThresholdMinutes)
	if err != nil {
		s.writeError(c, err)
		return
	}
	result, err := s.deps.Tracker.SweepStuckJobs(c.Request.Context(), threshold)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
