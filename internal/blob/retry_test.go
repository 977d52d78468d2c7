package blob

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry() RetryConfig {
	return RetryConfig{MaxRetries: 3, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, Multiplier: 2}
}

func TestRetryWithBackoff_EventualSuccess(t *testing.T) {
	calls := 0
	got, err := retryWithBackoff(context.Background(), fastRetry(), nil, func() (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("flaky")
		}
		return 7, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, got)
	assert.Equal(t, 3, calls)
}

func TestRetryWithBackoff_GivesUp(t *testing.T) {
	calls := 0
	_, err := retryWithBackoff(context.Background(), fastRetry(), nil, func() (int, error) {
		calls++
		return 0, errors.New("down")
	})
	assert.EqualError(t, err, "down")
	assert.Equal(t, 3, calls)
}

func TestRetryWithBackoff_PermanentError(t *testing.T) {
	calls := 0
	_, err := retryWithBackoff(context.Background(), fastRetry(), isPermanent, func() (int, error) {
		calls++
		return 0, minio.ErrorResponse{Code: "AccessDenied"}
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryWithBackoff_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := retryWithBackoff(ctx, fastRetry(), nil, func() (int, error) {
		return 0, errors.New("flaky")
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMinioErrorClassification(t *testing.T) {
	assert.True(t, isNotFound(minio.ErrorResponse{Code: "NoSuchKey"}))
	assert.False(t, isNotFound(minio.ErrorResponse{Code: "SlowDown"}))
	assert.False(t, isNotFound(errors.New("boom")))
	assert.False(t, isPermanent(minio.ErrorResponse{Code: "InternalError"}))
}

func TestNewS3Store(t *testing.T) {
	_, err := NewS3Store(S3Config{Endpoint: "localhost:9000"})
	assert.Error(t, err)

	store, err := NewS3Store(S3Config{Endpoint: "localhost:9000", Bucket: "documents", AccessKey: "a", SecretKey: "b"})
	require.NoError(t, err)
	assert.Equal(t, "s3", store.Kind())
	assert.Equal(t, DefaultRetryConfig(), store.retry)

	// Presigning is computed locally
	u, err := store.PresignedURL(context.Background(), NewKey("a.txt"), time.Minute)
	require.NoError(t, err)
	assert.Contains(t, u, "documents")
}
