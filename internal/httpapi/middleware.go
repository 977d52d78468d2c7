package httpapi

import (
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dshills/bookcatalog/internal/auth"
	"github.com/dshills/bookcatalog/internal/storage"
)

const (
	headerRequestID = "X-Request-ID"
	ctxRequestID    = "request_id"
	ctxUser         = "user"
)

var errMissingToken = fmt.Errorf("%w: missing bearer token", auth.ErrInvalidToken)

// requestID tags every request with an id, reusing a sane inbound one
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerRequestID)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Header(headerRequestID, id)
		c.Next()
	}
}

func requestIDFrom(c *gin.Context) string {
	return c.GetString(ctxRequestID)
}

// accessLog records one line per request and feeds the metrics counters
func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		elapsed := time.Since(start)
		s.metrics.Observe(status, elapsed)

		level := slog.LevelInfo
		switch {
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		}
		s.logger.LogAttrs(c.Request.Context(), level, "request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", status),
			slog.Duration("duration", elapsed),
			slog.String("client_ip", c.ClientIP()),
			slog.String("request_id", requestIDFrom(c)))
	}
}

// recovery turns a panic into a 500 with the standard error body
func (s *Server) recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, rec any) {
		s.logger.Error("panic recovered",
			"path", c.Request.URL.Path,
			"request_id", requestIDFrom(c),
			"panic", rec)
		c.AbortWithStatusJSON(http.StatusInternalServerError,
			ErrorResponse{Error: internalErrorMessage, RequestID: requestIDFrom(c)})
	})
}

// corsConfig allows the configured origins. A "*" entry allows any origin.
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Authorization", "Content-Type", headerRequestID},
		ExposeHeaders: []string{headerRequestID},
		MaxAge:        12 * time.Hour,
	}
	if slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

// authenticated resolves the bearer token to a user and, when perm is set,
// checks that one of the user's roles grants it.
func (s *Server) authenticated(perm auth.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := s.requireUser(c, perm); !ok {
			return
		}
		c.Next()
	}
}

// requireUser authenticates the request once and caches the user on the context.
// On failure the request is aborted and ok is false.
func (s *Server) requireUser(c *gin.Context, perm auth.Permission) (*storage.User, bool) {
	user, ok := currentUser(c)
	if !ok {
		token, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		token = strings.TrimSpace(token)
		if !found || token == "" {
			s.writeError(c, errMissingToken)
			return nil, false
		}
		var err error
		user, err = s.deps.Auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			s.writeError(c, err)
			return nil, false
		}
		c.Set(ctxUser, user)
	}

	if perm != "" {
		if err := s.deps.Auth.Authorize(c.Request.Context(), user, perm); err != nil {
			s.writeError(c, err)
			return nil, false
		}
	}
	return user, true
}

func currentUser(c *gin.Context) (*storage.User, bool) {
	v, ok := c.Get(ctxUser)
	if !ok {
		return nil, false
	}
	user, ok := v.(*storage.User)
	return user, ok
}
