package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchResultValidate(t *testing.T) {
	valid := SearchResult{
		BookID:   1,
		Score:    0.5,
		Metadata: NewBookMetadata(1, "Dune", "", ""),
		Content:  "Title: Dune",
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*SearchResult)
		want   error
	}{
		{"zero id", func(r *SearchResult) { r.BookID = 0 }, ErrInvalidBookID},
		{"zero score", func(r *SearchResult) { r.Score = 0 }, ErrInvalidScore},
		{"score above one", func(r *SearchResult) { r.Score = 1.5 }, ErrInvalidScore},
		{"metadata mismatch", func(r *SearchResult) { r.Metadata.BookID = 2 }, ErrMetadataMismatch},
		{"empty content", func(r *SearchResult) { r.Content = "" }, ErrEmptyContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid
			tt.mutate(&r)
			assert.ErrorIs(t, r.Validate(), tt.want)
		})
	}
}

func TestNewBookMetadata_NullableNames(t *testing.T) {
	md := NewBookMetadata(3, "Hyperion", "Dan Simmons", "")
	require.NotNil(t, md.Author)
	assert.Equal(t, "Dan Simmons", *md.Author)
	assert.Nil(t, md.Genre)

	data, err := json.Marshal(md)
	require.NoError(t, err)
	assert.JSONEq(t, `{"book_id":3,"title":"Hyperion","author":"Dan Simmons","genre":null}`, string(data))
}

func TestValidationf(t *testing.T) {
	err := Validationf("rating must be between %d and %d", 1, 5)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "rating must be between 1 and 5", err.Error())
}
