package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dshills/bookcatalog/internal/auth"
	"github.com/dshills/bookcatalog/internal/catalog"
	"github.com/dshills/bookcatalog/internal/indexer"
	"github.com/dshills/bookcatalog/internal/storage"
	"github.com/dshills/bookcatalog/pkg/types"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", fmt.Errorf("book 3: %w", storage.ErrNotFound), http.StatusNotFound},
		{"already exists", storage.ErrAlreadyExists, http.StatusBadRequest},
		{"bad credentials", auth.ErrInvalidCredentials, http.StatusUnauthorized},
		{"inactive login", fmt.Errorf("%w: user account is inactive", auth.ErrInvalidCredentials), http.StatusUnauthorized},
		{"bad token", auth.ErrInvalidToken, http.StatusUnauthorized},
		{"forbidden", auth.ErrInsufficientPermissions, http.StatusForbidden},
		{"inactive token", auth.ErrInactiveUser, http.StatusForbidden},
		{"validation", types.Validationf("title must not be empty"), http.StatusUnprocessableEntity},
		{"reindex running", indexer.ErrReindexInProgress, http.StatusConflict},
		{"document in use", fmt.Errorf("document 3 has ingestion jobs: %w", storage.ErrInUse), http.StatusConflict},
		{"too large", errUploadTooLarge, http.StatusRequestEntityTooLarge},
		{"no blob store", catalog.ErrNoBlobStore, http.StatusServiceUnavailable},
		{"other", errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	assert.Equal(t, MetricsSnapshot{}, m.Snapshot())

	m.Observe(http.StatusOK, 10*time.Millisecond)
	m.Observe(http.StatusNotFound, 20*time.Millisecond)
	m.Observe(http.StatusInternalServerError, 30*time.Millisecond)
	m.Observe(http.StatusCreated, 20*time.Millisecond)

	snap := m.Snapshot()
	assert.Equal(t, int64(4), snap.RequestCount)
	assert.Equal(t, int64(2), snap.ErrorCount)
	assert.InDelta(t, 0.5, snap.ErrorRate, 1e-9)
	assert.InDelta(t, 20.0, snap.AvgResponseTimeMs, 1e-6)
}
