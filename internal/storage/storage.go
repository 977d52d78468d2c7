package storage

import (
	"context"
	"time"
)

// Storage defines the interface for persisting and querying catalog data
type Storage interface {
	// Author operations
	CreateAuthor(ctx context.Context, author *Author) error
	GetAuthor(ctx context.Context, authorID int64) (*Author, error)
	ListAuthors(ctx context.Context) ([]*Author, error)
	UpdateAuthor(ctx context.Context, author *Author) error
	DeleteAuthor(ctx context.Context, authorID int64) error

	// Genre operations
	CreateGenre(ctx context.Context, genre *Genre) error
	GetGenre(ctx context.Context, genreID int64) (*Genre, error)
	GetGenreByName(ctx context.Context, name string) (*Genre, error)
	ListGenres(ctx context.Context) ([]*Genre, error)
	UpdateGenre(ctx context.Context, genre *Genre) error
	DeleteGenre(ctx context.Context, genreID int64) error

	// Book operations
	CreateBook(ctx context.Context, book *Book) error
	GetBook(ctx context.Context, bookID int64) (*BookDetail, error)
	ListBooks(ctx context.Context, offset, limit int) ([]*BookDetail, error)
	ListBookIDs(ctx context.Context) ([]int64, error)
	ListBooksByGenre(ctx context.Context, genreID int64) ([]*BookDetail, error)
	UpdateBook(ctx context.Context, book *Book) error
	DeleteBook(ctx context.Context, bookID int64) error
	SearchBooksByTitle(ctx context.Context, query string, limit int) ([]*BookDetail, error)

	// Review operations
	CreateReview(ctx context.Context, review *Review) error
	ListReviewsByBook(ctx context.Context, bookID int64) ([]*Review, error)

	// User and role operations
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, userID int64) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
	UpdateUser(ctx context.Context, user *User) error
	DeleteUser(ctx context.Context, userID int64) error
	SetUserRoles(ctx context.Context, userID int64, roles []string) error
	ListRoles(ctx context.Context) ([]*Role, error)

	// Document operations
	CreateDocument(ctx context.Context, doc *Document) error
	GetDocument(ctx context.Context, documentID int64) (*Document, error)
	ListDocuments(ctx context.Context) ([]*Document, error)
	UpdateDocumentStatus(ctx context.Context, documentID int64, status DocumentStatus) error
	DeleteDocument(ctx context.Context, documentID int64) error

	// Ingestion job operations
	CreateJob(ctx context.Context, job *IngestionJob) error
	GetJob(ctx context.Context, jobID int64) (*IngestionJob, error)
	ListJobs(ctx context.Context) ([]*JobListing, error)
	UpdateJobStatus(ctx context.Context, jobID int64, status JobStatus) error
	CompleteStuckJobs(ctx context.Context, cutoff time.Time) (int, error)
	CountJobsSince(ctx context.Context, status JobStatus, since time.Time) (int, error)
	CountJobsByStatus(ctx context.Context) (map[JobStatus]int, error)

	// Database operations
	Ping(ctx context.Context) error
	Close() error
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx represents a database transaction
type Tx interface {
	Commit() error
	Rollback() error
	Storage // Embed Storage interface for transaction operations
}

// JobStatus is the lifecycle state of an ingestion job
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// DocumentStatus is the processing state of an uploaded document
type DocumentStatus string

const (
	DocumentStatusUploaded DocumentStatus = "uploaded"
	DocumentStatusIngested DocumentStatus = "ingested"
	DocumentStatusFailed   DocumentStatus = "failed"
)

// Author represents a book author
type Author struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// Genre represents a book genre
type Genre struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// Book represents a catalog item
type Book struct {
	ID            int64
	Title         string
	AuthorID      *int64 // Nullable
	GenreID       *int64 // Nullable
	YearPublished int
	Summary       string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// BookDetail is a book joined with its author and genre names
type BookDetail struct {
	Book
	AuthorName string // Empty when the book has no author
	GenreName  string // Empty when the book has no genre
}

// Review is a free-text annotation attached to a book
type Review struct {
	ID         int64
	BookID     int64
	UserID     *int64 // Nullable
	ReviewText string
	Rating     int
	CreatedAt  time.Time
}

// User represents an account able to authenticate
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	IsActive     bool
	Roles        []string
	CreatedAt    time.Time
}

// Role carries the permission flags granted to its users
type Role struct {
	ID        int64
	Name      string
	CanRead   bool
	CanWrite  bool
	CanDelete bool
	IsAdmin   bool
}

// Document represents an uploaded file
type Document struct {
	ID         int64
	Filename   string
	StorageKey string // Locator returned by the file store
	FileSize   int64
	UploadedBy *int64 // Nullable
	UploadedAt time.Time
	Status     DocumentStatus
}

// IngestionJob tracks the asynchronous processing of a document
type IngestionJob struct {
	ID         int64
	DocumentID int64
	Status     JobStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// JobListing is an ingestion job annotated with its document's filename
type JobListing struct {
	IngestionJob
	Filename string
}
