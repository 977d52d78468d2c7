package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dshills/bookcatalog/internal/searcher"
	"github.com/dshills/bookcatalog/pkg/types"
)

type searchResponse struct {
	Query    string               `json:"query"`
	Results  []types.SearchResult `json:"results"`
	Source   searcher.Source      `json:"source"`
	CacheHit bool                 `json:"cache_hit"`
}

// search reads query and limit from the URL. A POST may send them as JSON instead.
func (s *Server) search(c *gin.Context) {
	limit, err := queryInt(c, "limit", searcher.DefaultLimit)
	if err != nil {
		s.writeError(c, err)
		return
	}
	req := searcher.SearchRequest{Query: c.Query("query"), Limit: limit}

	if c.Request.Method == http.MethodPost && c.Request.ContentLength > 0 {
		var body searchBody
		if err := bindJSON(c, &body); err != nil {
			s.writeError(c, err)
			return
		}
		if body.Query != "" {
			req.Query = body.Query
		}
		if body.Limit != 0 {
			req.Limit = body.Limit
		}
	}

	resp, err := s.deps.Searcher.Search(c.Request.Context(), req)
	if err != nil {
		s.writeError(c, err)
		return
	}

	results := resp.Results
	if results == nil {
		results = []types.SearchResult{}
	}
	c.JSON(http.StatusOK, searchResponse{
		Query:    resp.Query,
		Results:  results,
		Source:   resp.Source,
		CacheHit: resp.CacheHit,
	})
}

func (s *Server) reindexAll(c *gin.Context) {
	stats, err := s.deps.Searcher.ReindexAll(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, reindexResponse{
		Message:      stats.Message,
		TotalBooks:   stats.TotalBooks,
		IndexedCount: stats.IndexedCount,
		FailedCount:  stats.FailedCount,
		PrunedCount:  stats.PrunedCount,
		TotalInStore: stats.TotalInStore,
		DurationMs:   stats.Duration.Milliseconds(),
		Errors:       stats.ErrorMessages,
	})
}
