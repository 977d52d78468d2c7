package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dshills/bookcatalog/internal/auth"
	"github.com/dshills/bookcatalog/internal/catalog"
	"github.com/dshills/bookcatalog/internal/indexer"
	"github.com/dshills/bookcatalog/internal/storage"
	"github.com/dshills/bookcatalog/pkg/types"
)

var errUploadTooLarge = errors.New("upload exceeds size limit")

const internalErrorMessage = "Internal server error"

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrAlreadyExists):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrInsufficientPermissions), errors.Is(err, auth.ErrInactiveUser):
		return http.StatusForbidden
	case errors.Is(err, types.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, indexer.ErrReindexInProgress), errors.Is(err, storage.ErrInUse):
		return http.StatusConflict
	case errors.Is(err, errUploadTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, catalog.ErrNoBlobStore):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError aborts the request with the mapped status. Internal errors are
// logged and never leak their message.
func (s *Server) writeError(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"request_id", requestIDFrom(c),
			"error", err)
		msg = internalErrorMessage
	}
	if status == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", "Bearer")
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, ErrorResponse{Error: msg, RequestID: requestIDFrom(c)})
}

// bindJSON decodes the body into dst and reports malformed input as a validation error
func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return types.Validationf("invalid request body: %v", err)
	}
	return nil
}

// pathID parses a positive integer path parameter
func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, types.Validationf("%s must be a positive integer", name)
	}
	return id, nil
}

// queryInt parses an optional integer query parameter
func queryInt(c *gin.Context, name string, def int) (int, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, types.Validationf("%s must be an integer", name)
	}
	return n, nil
}
