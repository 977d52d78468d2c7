package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dshills/bookcatalog/internal/blob"
	"github.com/dshills/bookcatalog/internal/storage"
	"github.com/dshills/bookcatalog/pkg/types"
)

// DownloadURLExpiry bounds presigned download links
const DownloadURLExpiry = 15 * time.Minute

// ErrNoBlobStore is returned by document operations when no file store is configured
var ErrNoBlobStore = errors.New("document storage not configured")

// Download is either a redirect URL or an open stream, never both
type Download struct {
	Document *storage.Document
	URL      string
	Body     io.ReadCloser
}

// UploadDocument stores the file bytes, then records the document
func (s *Service) UploadDocument(ctx context.Context, filename string, data []byte, contentType string, uploadedBy *int64) (*storage.Document, error) {
	if s.blobs == nil {
		return nil, ErrNoBlobStore
	}
	if err := checkLen("filename", filename, 1, 255); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, types.Validationf("file must not be empty")
	}

	key := blob.NewKey(filename)
	if err := s.blobs.Put(ctx, key, data, contentType); err != nil {
		return nil, fmt.Errorf("failed to upload file: %w", err)
	}

	doc := &storage.Document{
		Filename:   filename,
		StorageKey: key,
		FileSize:   int64(len(data)),
		UploadedBy: uploadedBy,
		Status:     storage.DocumentStatusUploaded,
	}
	if err := s.store.CreateDocument(ctx, doc); err != nil {
		if derr := s.blobs.Delete(context.WithoutCancel(ctx), key); derr != nil {
			s.logger.Warn("failed to remove orphaned blob", "key", key, "error", derr)
		}
		return nil, err
	}

	s.logger.Info("document uploaded", "document_id", doc.ID, "size", doc.FileSize, "store", s.blobs.Kind())
	return doc, nil
}

func (s *Service) GetDocument(ctx context.Context, id int64) (*storage.Document, error) {
	doc, err := s.store.GetDocument(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("document with id %d: %w", id, err)
	}
	return doc, nil
}

func (s *Service) ListDocuments(ctx context.Context) ([]*storage.Document, error) {
	return s.store.ListDocuments(ctx)
}

// DownloadDocument prefers a presigned URL and falls back to streaming the bytes.
// The caller closes Body when it is set.
func (s *Service) DownloadDocument(ctx context.Context, id int64) (*Download, error) {
	if s.blobs == nil {
		return nil, ErrNoBlobStore
	}
	doc, err := s.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}

	url, err := s.blobs.PresignedURL(ctx, doc.StorageKey, DownloadURLExpiry)
	if err == nil {
		return &Download{Document: doc, URL: url}, nil
	}
	if !errors.Is(err, blob.ErrPresignUnsupported) {
		return nil, err
	}

	body, err := s.blobs.Open(ctx, doc.StorageKey)
	if errors.Is(err, blob.ErrNotFound) {
		return nil, fmt.Errorf("file for document %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &Download{Document: doc, Body: body}, nil
}

// DeleteDocument removes the record and the stored file. A document that
// ingestion jobs refer to is kept and yields storage.ErrInUse.
func (s *Service) DeleteDocument(ctx context.Context, id int64) error {
	doc, err := s.GetDocument(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteDocument(ctx, id); err != nil {
		return fmt.Errorf("document with id %d: %w", id, err)
	}
	if s.blobs != nil {
		if err := s.blobs.Delete(ctx, doc.StorageKey); err != nil {
			s.logger.Warn("failed to delete document file", "document_id", id, "key", doc.StorageKey, "error", err)
		}
	}
	return nil
}
