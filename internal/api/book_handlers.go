package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shelfmark/shelfmark-server/internal/domain"
	"github.com/shelfmark/shelfmark-server/internal/http/response"
)

// handleResolveBook resolves raw ISBN input to a persisted catalog book.
// Accepts ISBN-10 or ISBN-13, with or without separators.
func (s *Server) handleResolveBook(w http.ResponseWriter, r *http.Request) {
	rawISBN := chi.URLParam(r, "isbn")
	if rawISBN == "" {
		response.BadRequest(w, "ISBN is required", s.logger)
		return
	}

	book, err := s.bookService.Resolve(r.Context(), rawISBN)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, book, s.logger)
}

// handleGetBook returns a catalog book by ID.
func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Book ID is required", s.logger)
		return
	}

	book, err := s.bookService.GetBook(r.Context(), id)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, book, s.logger)
}

// handleUpdateBook applies a correction to a book's descriptive fields.
func (s *Server) handleUpdateBook(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Book ID is required", s.logger)
		return
	}

	var patch domain.BookPatch
	if err := json.UnmarshalRead(r.Body, &patch); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	book, err := s.bookService.UpdateBookFields(r.Context(), id, &patch)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, book, s.logger)
}
