// Package storage provides SQLite-based persistence for the book catalog.
//
// The storage layer manages:
//   - Authors, genres and books
//   - Reviews attached to books
//   - Users and their roles
//   - Uploaded documents
//   - Ingestion jobs
//
// # Database Schema
//
// Tables:
//   - authors, genres: unique names
//   - books: title, optional author and genre, summary
//   - reviews: free-text annotations with a rating, cascade on book delete
//   - users, roles, user_roles: accounts and permission flags
//   - documents: uploaded files and their storage keys
//   - ingestion_jobs: per-document processing jobs, never deleted, and they keep their document
//
// Timestamps are stored as unix nanoseconds.
//
// # Basic Usage
//
//	db, err := storage.NewSQLiteStorage("catalog.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	author := &storage.Author{Name: "Frank Herbert"}
//	if err := db.CreateAuthor(ctx, author); err != nil {
//	    return err
//	}
//
//	book := &storage.Book{Title: "Dune", AuthorID: &author.ID}
//	err = db.CreateBook(ctx, book)
//
// # Transactions
//
// Use transactions for atomic operations:
//
//	tx, err := db.BeginTx(ctx)
//	if err != nil {
//	    return err
//	}
//	defer func() { _ = tx.Rollback() }()
//
//	if err := tx.CreateUser(ctx, user); err != nil {
//	    return err
//	}
//	if err := tx.SetUserRoles(ctx, user.ID, []string{"user"}); err != nil {
//	    return err
//	}
//	return tx.Commit()
//
// # Errors
//
// Lookups of missing rows return ErrNotFound. Unique constraint violations
// return an error wrapping ErrAlreadyExists, and foreign key violations
// (for example a review for a missing book) wrap ErrNotFound. Use errors.Is.
//
// # Ingestion Jobs
//
// CompleteStuckJobs is the recovery path for jobs whose background
// completion never ran:
//
//	n, err := db.CompleteStuckJobs(ctx, time.Now().Add(-5*time.Minute))
//
// It updates every running job created before the cutoff in one statement.
//
// # Build Tags
//
// The storage package supports two build configurations:
//
// CGO Build (sqlite_cgo tag):
//
//   - Uses github.com/mattn/go-sqlite3 driver
//
//   - Requires C compiler
//
//     CGO_ENABLED=1 go build -tags "sqlite_cgo"
//
// Pure Go Build (default, or purego tag):
//
//   - Uses modernc.org/sqlite driver
//
//   - No C compiler needed
//
//     CGO_ENABLED=0 go build -tags "purego"
//
// # Migrations
//
// Migrations are versioned with semantic versions and applied in order on
// open. RollbackMigration undoes the most recent one; the bookcatalog
// migrate command exposes both directions.
package storage
