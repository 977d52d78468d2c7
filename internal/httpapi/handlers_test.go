package httpapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/bookcatalog/internal/auth"
	"github.com/dshills/bookcatalog/internal/catalog"
	"github.com/dshills/bookcatalog/internal/searcher"
)

// seedBook creates an author, a genre and one book through the API
func seedBook(t *testing.T, f *fixture, token, title string) bookResponse {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/v1/authors", token, nameRequest{Name: "Frank Herbert"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	author := decode[namedItem](t, rec)

	rec = f.do(t, http.MethodPost, "/api/v1/genres", token, nameRequest{Name: "Science Fiction"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	genre := decode[namedItem](t, rec)

	rec = f.do(t, http.MethodPost, "/api/v1/books", token, catalog.BookInput{
		Title:         title,
		AuthorID:      author.ID,
		GenreID:       genre.ID,
		YearPublished: 1965,
		Summary:       "Spice and sandworms",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[bookResponse](t, rec)
}

func TestBookEndpoints(t *testing.T) {
	f := setupTestServer(t, Options{})
	token := f.tokenFor(t, "editor", auth.RoleEditor)

	book := seedBook(t, f, token, "Dune")
	require.NotNil(t, book.AuthorName)
	assert.Equal(t, "Frank Herbert", *book.AuthorName)
	assert.Equal(t, "Science Fiction", *book.GenreName)

	path := "/api/v1/books/" + itoa(book.ID)
	rec := f.do(t, http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Dune", decode[bookResponse](t, rec).Title)

	newTitle := "Dune Messiah"
	rec = f.do(t, http.MethodPut, path, token, catalog.BookUpdate{Title: &newTitle})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, newTitle, decode[bookResponse](t, rec).Title)

	rec = f.do(t, http.MethodGet, "/api/v1/books?skip=0&limit=10", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]bookResponse](t, rec), 1)

	rec = f.do(t, http.MethodGet, "/api/v1/books/dropdown/authors", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]namedItem](t, rec), 1)

	rec = f.do(t, http.MethodGet, "/api/v1/books/dropdown/genres", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]namedItem](t, rec), 1)

	rec = f.do(t, http.MethodGet, "/api/v1/recommendations/genre-name/Science%20Fiction", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]bookResponse](t, rec), 1)

	rec = f.do(t, http.MethodGet, "/api/v1/recommendations/genre/"+itoa(*book.GenreID), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]bookResponse](t, rec), 1)
}

func TestCreateBook_Invalid(t *testing.T) {
	f := setupTestServer(t, Options{})
	token := f.tokenFor(t, "editor", auth.RoleEditor)

	rec := f.do(t, http.MethodPost, "/api/v1/books", token, catalog.BookInput{Title: "", AuthorID: 1, GenreID: 1, YearPublished: 2000})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/books", token, catalog.BookInput{Title: "Orphan", AuthorID: 41, GenreID: 42, YearPublished: 2000})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReviewEndpoints(t *testing.T) {
	f := setupTestServer(t, Options{})
	editor := f.tokenFor(t, "editor", auth.RoleEditor)
	reader := f.tokenFor(t, "reader", auth.RoleUser)
	book := seedBook(t, f, editor, "Dune")
	path := "/api/v1/books/" + itoa(book.ID) + "/reviews"

	rec := f.do(t, http.MethodPost, path, "", catalog.ReviewInput{ReviewText: "Great", Rating: 5})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodPost, path, reader, catalog.ReviewInput{ReviewText: "Great", Rating: 9})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = f.do(t, http.MethodPost, path, reader, catalog.ReviewInput{ReviewText: "Great", Rating: 5})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	review := decode[reviewResponse](t, rec)
	assert.NotNil(t, review.UserID)

	rec = f.do(t, http.MethodGet, path, reader, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]reviewResponse](t, rec), 1)
}

func TestSearchEndpoints(t *testing.T) {
	f := setupTestServer(t, Options{})
	editor := f.tokenFor(t, "editor", auth.RoleEditor)
	seedBook(t, f, editor, "Dune")

	// Index workers are not running, so the index is empty and the title search answers
	rec := f.do(t, http.MethodGet, "/api/v1/search?query=dune", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[searchResponse](t, rec)
	assert.Equal(t, searcher.SourceFallback, resp.Source)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, 1.0, resp.Results[0].Score)

	rec = f.do(t, http.MethodPost, "/api/v1/search/reindex-all", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/search/reindex-all", editor, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[reindexResponse](t, rec)
	assert.Equal(t, "Reindexed 1 books successfully", stats.Message)
	assert.Equal(t, 1, stats.TotalBooks)
	assert.Equal(t, 1, stats.TotalInStore)
	assert.Equal(t, 1, stats.IndexedCount)

	rec = f.do(t, http.MethodPost, "/api/v1/search", "", searchBody{Query: "sandworms", Limit: 3})
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decode[searchResponse](t, rec)
	assert.Equal(t, "sandworms", resp.Query)
	assert.Equal(t, searcher.SourceIndex, resp.Source)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "Dune", resp.Results[0].Metadata.Title)

	rec = f.do(t, http.MethodGet, "/api/v1/search?query=zzzqqq", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decode[searchResponse](t, rec)
	assert.NotNil(t, resp.Results)
	assert.Empty(t, resp.Results)

	rec = f.do(t, http.MethodGet, "/api/v1/search?query=dune&limit=abc", "", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestDeleteBookDropsIndexEntry(t *testing.T) {
	f := setupTestServer(t, Options{})
	admin := f.tokenFor(t, "boss", auth.RoleAdmin)
	book := seedBook(t, f, admin, "Dune")

	rec := f.do(t, http.MethodPost, "/api/v1/search/reindex-all", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	_, ok := f.indexer.Index().Get(book.ID)
	require.True(t, ok)

	rec = f.do(t, http.MethodDelete, "/api/v1/books/"+itoa(book.ID), admin, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	_, ok = f.indexer.Index().Get(book.ID)
	assert.False(t, ok)
}
