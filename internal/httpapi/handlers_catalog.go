package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dshills/bookcatalog/internal/catalog"
	"github.com/dshills/bookcatalog/internal/storage"
)

// Authors

func (s *Server) listAuthors(c *gin.Context) {
	authors, err := s.deps.Catalog.ListAuthors(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, authorItems(authors))
}

func (s *Server) getAuthor(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		s.writeError(c, err)
		return
	}
	a, err := s.deps.Catalog.GetAuthor(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, namedItem{ID: a.ID, Name: a.Name})
}

func (s *Server) createAuthor(c *gin.Context) {
	var req nameRequest
	if err := bindJSON(c, &req); err != nil {
		s.writeError(c, err)
		return
	}
	a, err := s.deps.Catalog.CreateAuthor(c.Request.Context(), req.Name)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, namedItem{ID: a.ID, Name: a.Name})
}

func (s *Server) updateAuthor(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		s.writeError(c, err)
		return
	}
	var req nameRequest
	if err := bindJSON(c, &req); err != nil {
		s.writeError(c, err)
		return
	}
	a, err := s.deps.Catalog.UpdateAuthor(c.Request.Context(), id, req.Name)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, namedItem{ID: a.ID, Name: a.Name})
}

func (s *Server) deleteAuthor(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		s.writeError(c, err)
		return
	}
	if err := s.deps.Catalog.DeleteAuthor(c.Request.Context(), id); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Genres

func (s *Server) listGenres(c *gin.Context) {
	genres, err := s.deps.Catalog.ListGenres(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, genreItems(genres))
}

func (s *Server) getGenre(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		s.writeError(c, err)
		return
	}
	g, err := s.deps.Catalog.GetGenre(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, namedItem{ID: g.ID, Name: g.Name})
}

func (s *Server) createGenre(c *gin.Context) {
	var req nameRequest
	if err := bindJSON(c, &req); err != nil {
		s.writeError(c, err)
		return
	}
	g, err := s.deps.Catalog.CreateGenre(c.Request.Context(), req.Name)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, namedItem{ID: g.ID, Name: g.Name})
}

func (s *Server) updateGenre(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		s.writeError(c, err)
		return
	}
	var req nameRequest
	if err := bindJSON(c, &req); err != nil {
		s.writeError(c, err)
		return
	}
	g, err := s.deps.Catalog.UpdateGenre(c.Request.Context(), id, req.Name)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, namedItem{ID: g.ID, Name: g.Name})
}

func (s *Server) deleteGenre(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		s.writeError(c, err)
		return
	}
	if err := s.deps.Catalog.DeleteGenre(c.Request.Context(), id); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Books

func (s *Server) listBooks(c *gin.Context) {
	skip, err := queryInt(c, "skip", 0)
	if err != nil {
		s.writeError(c, err)
		return
	}
	limit, err := queryInt(c, "limit", catalog.DefaultListLimit)
	if err != nil {
		s.writeError(c, err)
		return
	}
	books, err := s.deps.Catalog.ListBooks(c.Request.Context(), skip, limit)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBooks(books))
}

func (s *Server) getBook(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		s.writeError(c, err)
		return
	}
	book, err := s.deps.Catalog.GetBook(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBook(book))
}

func (s *Server) createBook(c *gin.Context) {
	var req catalog.BookInput
	if err := bindJSON(c, &req); err != nil {
		s.writeError(c, err)
		return
	}
	book, err := s.deps.Catalog.CreateBook(c.Request.Context(), req)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toBook(book))
}

func (s *Server) updateBook(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		s.writeError(c, err)
		return
	}
	var req catalog.BookUpdate
	if err := bindJSON(c, &req); err != nil {
		s.writeError(c, err)
		return
	}
	book, err := s.deps.Catalog.UpdateBook(c.Request.Context(), id, req)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBook(book))
}

func (s *Server) deleteBook(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		s.writeError(c, err)
		return
	}
	if err := s.deps.Catalog.DeleteBook(c.Request.Context(), id); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Reviews

func (s *Server) addReview(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		s.writeError(c, err)
		return
	}
	var req catalog.ReviewInput
	if err := bindJSON(c, &req); err != nil {
		s.writeError(c, err)
		return
	}

	var userID *int64
	if user, ok := currentUser(c); ok {
		userID = &user.ID
	}
	review, err := s.deps.Catalog.AddReview(c.Request.Context(), id, userID, req)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toReview(review))
}

func (s *Server) listReviews(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		s.writeError(c, err)
		return
	}
	reviews, err := s.deps.Catalog.ListReviews(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	out := make([]reviewResponse, len(reviews))
	for i, r := range reviews {
		out[i] = toReview(r)
	}
	c.JSON(http.StatusOK, out)
}

// Recommendations

func (s *Server) recommendByGenre(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		s.writeError(c, err)
		return
	}
	books, err := s.deps.Catalog.RecommendByGenre(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBooks(books))
}

func (s *Server) recommendByGenreName(c *gin.Context) {
	books, err := s.deps.Catalog.RecommendByGenreName(c.Request.Context(), c.Param("name"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBooks(books))
}

func authorItems(authors []*storage.Author) []namedItem {
	out := make([]namedItem, len(authors))
	for i, a := range authors {
		out[i] = namedItem{ID: a.ID, Name: a.Name}
	}
	return out
}

func genreItems(genres []*storage.Genre) []namedItem {
	out := make([]namedItem, len(genres))
	for i, g := range genres {
		out[i] = namedItem{ID: g.ID, Name: g.Name}
	}
	return out
}
