package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shelfmark/shelfmark-server/internal/http/response"
)

type addToLibraryRequest struct {
	ISBN string `json:"isbn" validate:"required,min=10,max=17"`
}

type setReadStatusRequest struct {
	Read bool `json:"read"`
}

// handleListLibrary returns the current user's library, newest first.
func (s *Server) handleListLibrary(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r.Context())

	entries, err := s.libraryService.List(r.Context(), userID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, entries, s.logger)
}

// handleAddToLibrary resolves an ISBN and adds the book to the user's
// library as unread.
func (s *Server) handleAddToLibrary(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r.Context())

	var req addToLibraryRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	entry, err := s.libraryService.AddBook(r.Context(), userID, req.ISBN)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, entry, s.logger)
}

// handleGetLibraryEntry returns one of the user's library entries.
func (s *Server) handleGetLibraryEntry(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r.Context())
	entryID := chi.URLParam(r, "entryID")

	entry, err := s.libraryService.GetEntry(r.Context(), userID, entryID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, entry, s.logger)
}

// handleSetReadStatus flips the read flag on a library entry. Setting the
// current value again is a 409.
func (s *Server) handleSetReadStatus(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r.Context())
	entryID := chi.URLParam(r, "entryID")

	var req setReadStatusRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	entry, err := s.libraryService.SetReadStatus(r.Context(), userID, entryID, req.Read)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, entry, s.logger)
}

// handleRemoveFromLibrary removes a book from the library by ISBN, taking
// it off every shelf it was on.
func (s *Server) handleRemoveFromLibrary(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r.Context())
	rawISBN := chi.URLParam(r, "isbn")
	if rawISBN == "" {
		response.BadRequest(w, "ISBN is required", s.logger)
		return
	}

	if err := s.libraryService.RemoveBook(r.Context(), userID, rawISBN); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}
