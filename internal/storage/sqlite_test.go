package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *SQLiteStorage {
	t.Helper()
	// Use in-memory database for testing
	storage, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	require.NotNil(t, storage)
	t.Cleanup(func() { _ = storage.Close() })
	return storage
}

// seedBook creates an author, a genre and a book linked to both
func seedBook(t *testing.T, s *SQLiteStorage, title, author, genre string) *Book {
	t.Helper()
	ctx := context.Background()

	a := &Author{Name: author}
	require.NoError(t, s.CreateAuthor(ctx, a))
	g := &Genre{Name: genre}
	require.NoError(t, s.CreateGenre(ctx, g))

	book := &Book{Title: title, AuthorID: &a.ID, GenreID: &g.ID, Summary: "summary of " + title}
	require.NoError(t, s.CreateBook(ctx, book))
	return book
}

func TestNewSQLiteStorage(t *testing.T) {
	storage := setupTestDB(t)

	assert.NotNil(t, storage.db)
	assert.NoError(t, storage.Ping(context.Background()))
}

func TestCreateAuthor_Duplicate(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	author := &Author{Name: "Ursula K. Le Guin"}
	require.NoError(t, storage.CreateAuthor(ctx, author))
	assert.Greater(t, author.ID, int64(0))

	err := storage.CreateAuthor(ctx, &Author{Name: "Ursula K. Le Guin"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAlreadyExists))
}

func TestAuthorLifecycle(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	author := &Author{Name: "Herbert"}
	require.NoError(t, storage.CreateAuthor(ctx, author))

	author.Name = "Frank Herbert"
	require.NoError(t, storage.UpdateAuthor(ctx, author))

	got, err := storage.GetAuthor(ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, "Frank Herbert", got.Name)

	require.NoError(t, storage.DeleteAuthor(ctx, author.ID))
	_, err = storage.GetAuthor(ctx, author.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, storage.DeleteAuthor(ctx, author.ID), ErrNotFound)
}

func TestGetGenreByName(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	genre := &Genre{Name: "Science Fiction"}
	require.NoError(t, storage.CreateGenre(ctx, genre))

	got, err := storage.GetGenreByName(ctx, "Science Fiction")
	require.NoError(t, err)
	assert.Equal(t, genre.ID, got.ID)

	_, err = storage.GetGenreByName(ctx, "Poetry")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetBook_WithRelations(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	book := seedBook(t, storage, "Dune", "Frank Herbert", "Science Fiction")

	got, err := storage.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune", got.Title)
	assert.Equal(t, "Frank Herbert", got.AuthorName)
	assert.Equal(t, "Science Fiction", got.GenreName)
	require.NotNil(t, got.AuthorID)
	assert.Equal(t, *book.AuthorID, *got.AuthorID)

	_, err = storage.GetBook(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteAuthor_KeepsBook(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	book := seedBook(t, storage, "Dune", "Frank Herbert", "Science Fiction")
	require.NoError(t, storage.DeleteAuthor(ctx, *book.AuthorID))

	got, err := storage.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Nil(t, got.AuthorID)
	assert.Empty(t, got.AuthorName)
	assert.Equal(t, "Science Fiction", got.GenreName)
}

func TestCreateBook_MissingAuthor(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	missing := int64(42)
	err := storage.CreateBook(ctx, &Book{Title: "Orphan", AuthorID: &missing})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListBooks_Pagination(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	for _, title := range []string{"A", "B", "C"} {
		require.NoError(t, storage.CreateBook(ctx, &Book{Title: title}))
	}

	all, err := storage.ListBooks(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	page, err := storage.ListBooks(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "B", page[0].Title)

	ids, err := storage.ListBookIDs(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, 3)
}

func TestSearchBooksByTitle(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	for _, title := range []string{"Dune", "Dune Messiah", "Children of Dune", "Hyperion", "100% Pure"} {
		require.NoError(t, storage.CreateBook(ctx, &Book{Title: title}))
	}

	t.Run("case insensitive substring", func(t *testing.T) {
		books, err := storage.SearchBooksByTitle(ctx, "DUNE", 10)
		require.NoError(t, err)
		assert.Len(t, books, 3)
	})

	t.Run("limit applied", func(t *testing.T) {
		books, err := storage.SearchBooksByTitle(ctx, "dune", 2)
		require.NoError(t, err)
		assert.Len(t, books, 2)
	})

	t.Run("wildcards matched literally", func(t *testing.T) {
		books, err := storage.SearchBooksByTitle(ctx, "%", 10)
		require.NoError(t, err)
		require.Len(t, books, 1)
		assert.Equal(t, "100% Pure", books[0].Title)
	})

	t.Run("no match", func(t *testing.T) {
		books, err := storage.SearchBooksByTitle(ctx, "foundation", 10)
		require.NoError(t, err)
		assert.Empty(t, books)
	})
}

func TestReviews(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	book := seedBook(t, storage, "Dune", "Frank Herbert", "Science Fiction")

	require.NoError(t, storage.CreateReview(ctx, &Review{BookID: book.ID, ReviewText: "Spice!", Rating: 5}))
	require.NoError(t, storage.CreateReview(ctx, &Review{BookID: book.ID, ReviewText: "Long", Rating: 3}))

	reviews, err := storage.ListReviewsByBook(ctx, book.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, "Spice!", reviews[0].ReviewText)

	err = storage.CreateReview(ctx, &Review{BookID: 9999, ReviewText: "ghost", Rating: 1})
	assert.ErrorIs(t, err, ErrNotFound)

	// Reviews cascade with the book
	require.NoError(t, storage.DeleteBook(ctx, book.ID))
	reviews, err = storage.ListReviewsByBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Empty(t, reviews)
}

func TestUsersAndRoles(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	roles, err := storage.ListRoles(ctx)
	require.NoError(t, err)
	require.Len(t, roles, 3)
	assert.Equal(t, "admin", roles[0].Name)
	assert.True(t, roles[0].IsAdmin)

	tx, err := storage.BeginTx(ctx)
	require.NoError(t, err)
	user := &User{Username: "paul", PasswordHash: "hash", IsActive: true}
	require.NoError(t, tx.CreateUser(ctx, user))
	require.NoError(t, tx.SetUserRoles(ctx, user.ID, []string{"user", "editor"}))
	require.NoError(t, tx.Commit())

	got, err := storage.GetUserByUsername(ctx, "paul")
	require.NoError(t, err)
	assert.Equal(t, []string{"editor", "user"}, got.Roles)
	assert.True(t, got.IsActive)

	err = storage.SetUserRoles(ctx, user.ID, []string{"emperor"})
	assert.ErrorIs(t, err, ErrNotFound)

	err = storage.CreateUser(ctx, &User{Username: "paul", PasswordHash: "x"})
	assert.ErrorIs(t, err, ErrAlreadyExists)

	users, err := storage.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestTransactionRollback(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	tx, err := storage.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.CreateAuthor(ctx, &Author{Name: "Temporary"}))
	require.NoError(t, tx.Rollback())

	authors, err := storage.ListAuthors(ctx)
	require.NoError(t, err)
	assert.Empty(t, authors)

	_, err = tx.BeginTx(ctx)
	assert.Error(t, err)
}
