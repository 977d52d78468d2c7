package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Document operations

func (s *SQLiteStorage) CreateDocument(ctx context.Context, doc *Document) error {
	if doc.UploadedAt.IsZero() {
		doc.UploadedAt = time.Now()
	}
	if doc.Status == "" {
		doc.Status = DocumentStatusUploaded
	}
	query := `
		INSERT INTO documents (filename, storage_key, file_size, uploaded_by, uploaded_at, status)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`
	err := s.q.QueryRowContext(ctx, query,
		doc.Filename, doc.StorageKey, doc.FileSize, nullableID(doc.UploadedBy),
		toUnix(doc.UploadedAt), string(doc.Status)).Scan(&doc.ID)
	if err != nil {
		return fmt.Errorf("failed to create document: %w", classifyError(err))
	}
	return nil
}

const documentSelect = `
	SELECT id, filename, storage_key, file_size, uploaded_by, uploaded_at, status
	FROM documents
`

func scanDocument(row rowScanner) (*Document, error) {
	var doc Document
	var uploadedBy sql.NullInt64
	var uploadedAt int64
	var status string
	if err := row.Scan(&doc.ID, &doc.Filename, &doc.StorageKey, &doc.FileSize, &uploadedBy, &uploadedAt, &status); err != nil {
		return nil, err
	}
	doc.UploadedBy = idPointer(uploadedBy)
	doc.UploadedAt = fromUnix(uploadedAt)
	doc.Status = DocumentStatus(status)
	return &doc, nil
}

func (s *SQLiteStorage) GetDocument(ctx context.Context, documentID int64) (*Document, error) {
	doc, err := scanDocument(s.q.QueryRowContext(ctx, documentSelect+` WHERE id = ?`, documentID))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *SQLiteStorage) ListDocuments(ctx context.Context) ([]*Document, error) {
	rows, err := s.q.QueryContext(ctx, documentSelect+` ORDER BY uploaded_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	docs := make([]*Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *SQLiteStorage) UpdateDocumentStatus(ctx context.Context, documentID int64, status DocumentStatus) error {
	result, err := s.q.ExecContext(ctx, `UPDATE documents SET status = ? WHERE id = ?`, string(status), documentID)
	if err != nil {
		return fmt.Errorf("failed to update document status: %w", err)
	}
	return requireAffected(result)
}

// DeleteDocument removes the document row. It fails with ErrInUse while ingestion jobs refer to it.
func (s *SQLiteStorage) DeleteDocument(ctx context.Context, documentID int64) error {
	result, err := s.q.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, documentID)
	if err != nil {
		// Jobs keep their document
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			return fmt.Errorf("document %d has ingestion jobs: %w", documentID, ErrInUse)
		}
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return requireAffected(result)
}

// Ingestion job operations

// CreateJob inserts a job. A zero CreatedAt is set to the current time.
func (s *SQLiteStorage) CreateJob(ctx context.Context, job *IngestionJob) error {
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}
	if job.Status == "" {
		job.Status = JobStatusPending
	}
	job.UpdatedAt = job.CreatedAt
	err := s.q.QueryRowContext(ctx,
		`INSERT INTO ingestion_jobs (document_id, status, created_at, updated_at) VALUES (?, ?, ?, ?) RETURNING id`,
		job.DocumentID, string(job.Status), toUnix(job.CreatedAt), toUnix(job.UpdatedAt)).Scan(&job.ID)
	if err != nil {
		return fmt.Errorf("failed to create ingestion job: %w", classifyError(err))
	}
	return nil
}

func (s *SQLiteStorage) GetJob(ctx context.Context, jobID int64) (*IngestionJob, error) {
	var job IngestionJob
	var status string
	var createdAt, updatedAt int64
	err := s.q.QueryRowContext(ctx,
		`SELECT id, document_id, status, created_at, updated_at FROM ingestion_jobs WHERE id = ?`, jobID).
		Scan(&job.ID, &job.DocumentID, &status, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	job.Status = JobStatus(status)
	job.CreatedAt = fromUnix(createdAt)
	job.UpdatedAt = fromUnix(updatedAt)
	return &job, nil
}

// ListJobs returns all jobs with their document filename, newest first
func (s *SQLiteStorage) ListJobs(ctx context.Context) ([]*JobListing, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT j.id, j.document_id, j.status, j.created_at, j.updated_at, d.filename
		FROM ingestion_jobs j
		JOIN documents d ON d.id = j.document_id
		ORDER BY j.created_at DESC, j.id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	jobs := make([]*JobListing, 0)
	for rows.Next() {
		var job JobListing
		var status string
		var createdAt, updatedAt int64
		if err := rows.Scan(&job.ID, &job.DocumentID, &status, &createdAt, &updatedAt, &job.Filename); err != nil {
			return nil, err
		}
		job.Status = JobStatus(status)
		job.CreatedAt = fromUnix(createdAt)
		job.UpdatedAt = fromUnix(updatedAt)
		jobs = append(jobs, &job)
	}
	return jobs, rows.Err()
}

func (s *SQLiteStorage) UpdateJobStatus(ctx context.Context, jobID int64, status JobStatus) error {
	result, err := s.q.ExecContext(ctx,
		`UPDATE ingestion_jobs SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), toUnix(time.Now()), jobID)
	if err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}
	return requireAffected(result)
}

// CompleteStuckJobs marks every running or pending job created before cutoff
// as completed in a single statement and returns how many rows changed.
func (s *SQLiteStorage) CompleteStuckJobs(ctx context.Context, cutoff time.Time) (int, error) {
	result, err := s.q.ExecContext(ctx,
		`UPDATE ingestion_jobs SET status = ?, updated_at = ? WHERE status IN (?, ?) AND created_at < ?`,
		string(JobStatusCompleted), toUnix(time.Now()),
		string(JobStatusRunning), string(JobStatusPending), toUnix(cutoff))
	if err != nil {
		return 0, fmt.Errorf("failed to complete stuck jobs: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// CountJobsSince counts jobs in the given status created at or after since
func (s *SQLiteStorage) CountJobsSince(ctx context.Context, status JobStatus, since time.Time) (int, error) {
	var count int
	err := s.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM ingestion_jobs WHERE status = ? AND created_at >= ?`,
		string(status), toUnix(since)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count jobs: %w", err)
	}
	return count, nil
}

func (s *SQLiteStorage) CountJobsByStatus(ctx context.Context) (map[JobStatus]int, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT status, COUNT(*) FROM ingestion_jobs GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[JobStatus]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[JobStatus(status)] = n
	}
	return counts, rows.Err()
}
