package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dshills/bookcatalog/pkg/types"
)

const defaultContentType = "application/octet-stream"

func (s *Server) uploadDocument(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.opts.MaxUploadBytes+1<<20)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(c, errUploadTooLarge)
			return
		}
		s.writeError(c, types.Validationf("file is required"))
		return
	}
	if fh.Size > s.opts.MaxUploadBytes {
		s.writeError(c, fmt.Errorf("%w: %d bytes allowed", errUploadTooLarge, s.opts.MaxUploadBytes))
		return
	}

	f, err := fh.Open()
	if err != nil {
		s.writeError(c, fmt.Errorf("failed to open upload: %w", err))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		s.writeError(c, fmt.Errorf("failed to read upload: %w", err))
		return
	}

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = defaultContentType
	}

	var uploadedBy *int64
	if user, ok := currentUser(c); ok {
		uploadedBy = &user.ID
	}

	doc, err := s.deps.Catalog.UploadDocument(c.Request.Context(), fh.Filename, data, contentType, uploadedBy)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, uploadResponse{
		Message:    "Document uploaded successfully",
		DocumentID: doc.ID,
		Filename:   doc.Filename,
		FileSize:   doc.FileSize,
	})
}

func (s *Server) listDocuments(c *gin.Context) {
	docs, err := s.deps.Catalog.ListDocuments(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	out := make([]documentResponse, len(docs))
	for i, d := range docs {
		out[i] = toDocument(d)
	}
	c.JSON(http.StatusOK, out)
}

// downloadDocument redirects to a presigned URL when the store supports one
// and streams the bytes otherwise.
func (s *Server) downloadDocument(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		s.writeError(c, err)
		return
	}
	dl, err := s.deps.Catalog.DownloadDocument(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if dl.URL != "" {
		c.Redirect(http.StatusTemporaryRedirect, dl.URL)
		return
	}
	defer dl.Body.Close()

	c.DataFromReader(http.StatusOK, dl.Document.FileSize, defaultContentType, dl.Body, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", dl.Document.Filename),
	})
}

func (s *Server) deleteDocument(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		s.writeError(c, err)
		return
	}
	if err := s.deps.Catalog.DeleteDocument(c.Request.Context(), id); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
