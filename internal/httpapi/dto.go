package httpapi

import (
	"time"

	"github.com/dshills/bookcatalog/internal/storage"
)

type messageResponse struct {
	Message string `json:"message"`
}

type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type createUserRequest struct {
	credentialsRequest
	RoleNames []string `json:"role_names"`
}

type createUserResponse struct {
	Message string `json:"message"`
	UserID  int64  `json:"user_id"`
}

type nameRequest struct {
	Name string `json:"name"`
}

type namedItem struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type bookResponse struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	AuthorID      *int64  `json:"author_id"`
	GenreID       *int64  `json:"genre_id"`
	YearPublished int     `json:"year_published"`
	Summary       *string `json:"summary"`
	AuthorName    *string `json:"author_name"`
	GenreName     *string `json:"genre_name"`
}

type reviewResponse struct {
	ID         int64     `json:"id"`
	BookID     int64     `json:"book_id"`
	UserID     *int64    `json:"user_id"`
	ReviewText string    `json:"review_text"`
	Rating     int       `json:"rating"`
	CreatedAt  time.Time `json:"created_at"`
}

type documentResponse struct {
	ID         int64     `json:"id"`
	Filename   string    `json:"filename"`
	UploadedAt time.Time `json:"uploaded_at"`
	Status     string    `json:"status"`
	FileSize   int64     `json:"file_size"`
	UploadedBy *int64    `json:"uploaded_by"`
}

type uploadResponse struct {
	Message    string `json:"message"`
	DocumentID int64  `json:"document_id"`
	Filename   string `json:"filename"`
	FileSize   int64  `json:"file_size"`
}

type jobResponse struct {
	ID         int64     `json:"id"`
	DocumentID int64     `json:"document_id"`
	Filename   string    `json:"filename"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

type userResponse struct {
	ID       int64    `json:"id"`
	Username string   `json:"username"`
	IsActive bool     `json:"is_active"`
	Roles    []string `json:"roles"`
}

type roleResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	CanRead   bool   `json:"can_read"`
	CanWrite  bool   `json:"can_write"`
	CanDelete bool   `json:"can_delete"`
	IsAdmin   bool   `json:"is_admin"`
}

type searchBody struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

type reindexResponse struct {
	Message      string   `json:"message"`
	TotalBooks   int      `json:"total_books"`
	IndexedCount int      `json:"indexed_count"`
	FailedCount  int      `json:"failed_count"`
	PrunedCount  int      `json:"pruned_count"`
	TotalInStore int      `json:"total_in_store"`
	DurationMs   int64    `json:"duration_ms"`
	Errors       []string `json:"errors,omitempty"`
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func toBook(b *storage.BookDetail) bookResponse {
	return bookResponse{
		ID:            b.ID,
		Title:         b.Title,
		AuthorID:      b.AuthorID,
		GenreID:       b.GenreID,
		YearPublished: b.YearPublished,
		Summary:       optionalString(b.Summary),
		AuthorName:    optionalString(b.AuthorName),
		GenreName:     optionalString(b.GenreName),
	}
}

func toBooks(books []*storage.BookDetail) []bookResponse {
	out := make([]bookResponse, len(books))
	for i, b := range books {
		out[i] = toBook(b)
	}
	return out
}

func toReview(r *storage.Review) reviewResponse {
	return reviewResponse{
		ID:         r.ID,
		BookID:     r.BookID,
		UserID:     r.UserID,
		ReviewText: r.ReviewText,
		Rating:     r.Rating,
		CreatedAt:  r.CreatedAt,
	}
}

func toDocument(d *storage.Document) documentResponse {
	return documentResponse{
		ID:         d.ID,
		Filename:   d.Filename,
		UploadedAt: d.UploadedAt,
		Status:     string(d.Status),
		FileSize:   d.FileSize,
		UploadedBy: d.UploadedBy,
	}
}

func toUser(u *storage.User) userResponse {
	roles := u.Roles
	if roles == nil {
		roles = []string{}
	}
	return userResponse{ID: u.ID, Username: u.Username, IsActive: u.IsActive, Roles: roles}
}
