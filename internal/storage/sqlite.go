package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when trying to create a duplicate entity
	ErrAlreadyExists = errors.New("already exists")
	// ErrInUse is returned when deleting a record that other records still reference
	ErrInUse = errors.New("still referenced")
)

// SQLiteStorage implements the Storage interface using SQLite
type SQLiteStorage struct {
	db *sql.DB
	q  querier
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// SQLite benefits from a single writer; this also keeps ":memory:" on one connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStorage opens the database at dbPath and applies pending migrations
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := OpenWithoutMigrations(dbPath)
	if err != nil {
		return nil, err
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStorage{db: db, q: db}, nil
}

// OpenWithoutMigrations opens the raw database handle, for migration tooling
func OpenWithoutMigrations(dbPath string) (*sql.DB, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// Ping verifies the database is reachable
func (s *SQLiteStorage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// BeginTx starts a new transaction
func (s *SQLiteStorage) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqliteTx{SQLiteStorage: &SQLiteStorage{db: s.db, q: tx}, tx: tx}, nil
}

// sqliteTx runs every Storage operation against the wrapped transaction
type sqliteTx struct {
	*SQLiteStorage
	tx *sql.Tx
}

func (t *sqliteTx) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTx) Rollback() error {
	return t.tx.Rollback()
}

func (t *sqliteTx) Close() error {
	// Transactions don't close the underlying connection
	return nil
}

func (t *sqliteTx) BeginTx(ctx context.Context) (Tx, error) {
	// SQLite does not support true nested transactions
	return nil, errors.New("nested transactions not supported")
}

// classifyError maps driver constraint failures onto the storage sentinels.
// Both drivers report constraint names in the message text.
func classifyError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return fmt.Errorf("%w: %v", ErrAlreadyExists, err)
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return fmt.Errorf("%w: referenced record: %v", ErrNotFound, err)
	}
	return err
}

// requireAffected turns a zero-row update or delete into ErrNotFound
func requireAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func toUnix(t time.Time) int64 {
	return t.UnixNano()
}

func fromUnix(n int64) time.Time {
	return time.Unix(0, n)
}

func nullableID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

func idPointer(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

// Author operations

func (s *SQLiteStorage) CreateAuthor(ctx context.Context, author *Author) error {
	now := time.Now()
	err := s.q.QueryRowContext(ctx,
		`INSERT INTO authors (name, created_at) VALUES (?, ?) RETURNING id`,
		author.Name, toUnix(now)).Scan(&author.ID)
	if err != nil {
		return fmt.Errorf("failed to create author: %w", classifyError(err))
	}
	author.CreatedAt = now
	return nil
}

func (s *SQLiteStorage) GetAuthor(ctx context.Context, authorID int64) (*Author, error) {
	var author Author
	var createdAt int64
	err := s.q.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM authors WHERE id = ?`, authorID).
		Scan(&author.ID, &author.Name, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	author.CreatedAt = fromUnix(createdAt)
	return &author, nil
}

func (s *SQLiteStorage) ListAuthors(ctx context.Context) ([]*Author, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT id, name, created_at FROM authors ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	authors := make([]*Author, 0)
	for rows.Next() {
		var author Author
		var createdAt int64
		if err := rows.Scan(&author.ID, &author.Name, &createdAt); err != nil {
			return nil, err
		}
		author.CreatedAt = fromUnix(createdAt)
		authors = append(authors, &author)
	}
	return authors, rows.Err()
}

func (s *SQLiteStorage) UpdateAuthor(ctx context.Context, author *Author) error {
	result, err := s.q.ExecContext(ctx, `UPDATE authors SET name = ? WHERE id = ?`, author.Name, author.ID)
	if err != nil {
		return fmt.Errorf("failed to update author: %w", classifyError(err))
	}
	return requireAffected(result)
}

func (s *SQLiteStorage) DeleteAuthor(ctx context.Context, authorID int64) error {
	result, err := s.q.ExecContext(ctx, `DELETE FROM authors WHERE id = ?`, authorID)
	if err != nil {
		return fmt.Errorf("failed to delete author: %w", err)
	}
	return requireAffected(result)
}

// Genre operations

func (s *SQLiteStorage) CreateGenre(ctx context.Context, genre *Genre) error {
	now := time.Now()
	err := s.q.QueryRowContext(ctx,
		`INSERT INTO genres (name, created_at) VALUES (?, ?) RETURNING id`,
		genre.Name, toUnix(now)).Scan(&genre.ID)
	if err != nil {
		return fmt.Errorf("failed to create genre: %w", classifyError(err))
	}
	genre.CreatedAt = now
	return nil
}

func (s *SQLiteStorage) getGenreWhere(ctx context.Context, where string, arg interface{}) (*Genre, error) {
	var genre Genre
	var createdAt int64
	err := s.q.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM genres WHERE `+where, arg).
		Scan(&genre.ID, &genre.Name, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	genre.CreatedAt = fromUnix(createdAt)
	return &genre, nil
}

func (s *SQLiteStorage) GetGenre(ctx context.Context, genreID int64) (*Genre, error) {
	return s.getGenreWhere(ctx, "id = ?", genreID)
}

func (s *SQLiteStorage) GetGenreByName(ctx context.Context, name string) (*Genre, error) {
	return s.getGenreWhere(ctx, "name = ?", name)
}

func (s *SQLiteStorage) ListGenres(ctx context.Context) ([]*Genre, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT id, name, created_at FROM genres ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	genres := make([]*Genre, 0)
	for rows.Next() {
		var genre Genre
		var createdAt int64
		if err := rows.Scan(&genre.ID, &genre.Name, &createdAt); err != nil {
			return nil, err
		}
		genre.CreatedAt = fromUnix(createdAt)
		genres = append(genres, &genre)
	}
	return genres, rows.Err()
}

func (s *SQLiteStorage) UpdateGenre(ctx context.Context, genre *Genre) error {
	result, err := s.q.ExecContext(ctx, `UPDATE genres SET name = ? WHERE id = ?`, genre.Name, genre.ID)
	if err != nil {
		return fmt.Errorf("failed to update genre: %w", classifyError(err))
	}
	return requireAffected(result)
}

func (s *SQLiteStorage) DeleteGenre(ctx context.Context, genreID int64) error {
	result, err := s.q.ExecContext(ctx, `DELETE FROM genres WHERE id = ?`, genreID)
	if err != nil {
		return fmt.Errorf("failed to delete genre: %w", err)
	}
	return requireAffected(result)
}

// Book operations

const bookDetailSelect = `
	SELECT b.id, b.title, b.author_id, b.genre_id, b.year_published, b.summary,
	       b.created_at, b.updated_at, COALESCE(a.name, ''), COALESCE(g.name, '')
	FROM books b
	LEFT JOIN authors a ON a.id = b.author_id
	LEFT JOIN genres g ON g.id = b.genre_id
`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBookDetail(row rowScanner) (*BookDetail, error) {
	var book BookDetail
	var authorID, genreID, year sql.NullInt64
	var summary sql.NullString
	var createdAt, updatedAt int64
	err := row.Scan(&book.ID, &book.Title, &authorID, &genreID, &year, &summary,
		&createdAt, &updatedAt, &book.AuthorName, &book.GenreName)
	if err != nil {
		return nil, err
	}
	book.AuthorID = idPointer(authorID)
	book.GenreID = idPointer(genreID)
	book.YearPublished = int(year.Int64)
	book.Summary = summary.String
	book.CreatedAt = fromUnix(createdAt)
	book.UpdatedAt = fromUnix(updatedAt)
	return &book, nil
}

func (s *SQLiteStorage) queryBookDetails(ctx context.Context, query string, args ...interface{}) ([]*BookDetail, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	books := make([]*BookDetail, 0)
	for rows.Next() {
		book, err := scanBookDetail(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, book)
	}
	return books, rows.Err()
}

func (s *SQLiteStorage) CreateBook(ctx context.Context, book *Book) error {
	now := time.Now()
	query := `
		INSERT INTO books (title, author_id, genre_id, year_published, summary, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`
	err := s.q.QueryRowContext(ctx, query,
		book.Title, nullableID(book.AuthorID), nullableID(book.GenreID),
		book.YearPublished, book.Summary, toUnix(now), toUnix(now)).Scan(&book.ID)
	if err != nil {
		return fmt.Errorf("failed to create book: %w", classifyError(err))
	}
	book.CreatedAt = now
	book.UpdatedAt = now
	return nil
}

func (s *SQLiteStorage) GetBook(ctx context.Context, bookID int64) (*BookDetail, error) {
	book, err := scanBookDetail(s.q.QueryRowContext(ctx, bookDetailSelect+` WHERE b.id = ?`, bookID))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return book, nil
}

func (s *SQLiteStorage) ListBooks(ctx context.Context, offset, limit int) ([]*BookDetail, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	return s.queryBookDetails(ctx, bookDetailSelect+` ORDER BY b.id LIMIT ? OFFSET ?`, limit, offset)
}

func (s *SQLiteStorage) ListBookIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT id FROM books ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *SQLiteStorage) ListBooksByGenre(ctx context.Context, genreID int64) ([]*BookDetail, error) {
	return s.queryBookDetails(ctx, bookDetailSelect+` WHERE b.genre_id = ? ORDER BY b.id`, genreID)
}

func (s *SQLiteStorage) UpdateBook(ctx context.Context, book *Book) error {
	now := time.Now()
	query := `
		UPDATE books
		SET title = ?, author_id = ?, genre_id = ?, year_published = ?, summary = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := s.q.ExecContext(ctx, query,
		book.Title, nullableID(book.AuthorID), nullableID(book.GenreID),
		book.YearPublished, book.Summary, toUnix(now), book.ID)
	if err != nil {
		return fmt.Errorf("failed to update book: %w", classifyError(err))
	}
	if err := requireAffected(result); err != nil {
		return err
	}
	book.UpdatedAt = now
	return nil
}

func (s *SQLiteStorage) DeleteBook(ctx context.Context, bookID int64) error {
	result, err := s.q.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, bookID)
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}
	return requireAffected(result)
}

// likeEscaper escapes LIKE wildcards so the query is matched literally
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchBooksByTitle performs a case-insensitive substring match on book titles
func (s *SQLiteStorage) SearchBooksByTitle(ctx context.Context, query string, limit int) ([]*BookDetail, error) {
	if limit <= 0 {
		limit = -1
	}
	pattern := "%" + likeEscaper.Replace(strings.ToLower(query)) + "%"
	books, err := s.queryBookDetails(ctx,
		bookDetailSelect+` WHERE lower(b.title) LIKE ? ESCAPE '\' ORDER BY b.id LIMIT ?`,
		pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search books: %w", err)
	}
	return books, nil
}

// Review operations

func (s *SQLiteStorage) CreateReview(ctx context.Context, review *Review) error {
	now := time.Now()
	query := `
		INSERT INTO reviews (book_id, user_id, review_text, rating, created_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`
	err := s.q.QueryRowContext(ctx, query,
		review.BookID, nullableID(review.UserID), review.ReviewText, review.Rating, toUnix(now)).
		Scan(&review.ID)
	if err != nil {
		return fmt.Errorf("failed to create review: %w", classifyError(err))
	}
	review.CreatedAt = now
	return nil
}

func (s *SQLiteStorage) ListReviewsByBook(ctx context.Context, bookID int64) ([]*Review, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, book_id, user_id, review_text, rating, created_at
		FROM reviews
		WHERE book_id = ?
		ORDER BY id
	`, bookID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	reviews := make([]*Review, 0)
	for rows.Next() {
		var review Review
		var userID sql.NullInt64
		var text sql.NullString
		var createdAt int64
		if err := rows.Scan(&review.ID, &review.BookID, &userID, &text, &review.Rating, &createdAt); err != nil {
			return nil, err
		}
		review.UserID = idPointer(userID)
		review.ReviewText = text.String
		review.CreatedAt = fromUnix(createdAt)
		reviews = append(reviews, &review)
	}
	return reviews, rows.Err()
}
