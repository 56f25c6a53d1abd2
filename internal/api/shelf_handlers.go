package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shelfmark/shelfmark-server/internal/http/response"
)

type createShelfRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=120"`
	Description string `json:"description" validate:"max=1000"`
}

type renameShelfRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=120"`
	Description string `json:"description" validate:"max=1000"`
}

type setVisibilityRequest struct {
	Public bool `json:"public"`
}

type addShelfEntryRequest struct {
	EntryID string `json:"entry_id" validate:"required"`
}

type reorderShelfRequest struct {
	EntryIDs []string `json:"entry_ids" validate:"required"`
}

// handleCreateShelf creates a new private shelf.
func (s *Server) handleCreateShelf(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r.Context())

	var req createShelfRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	shelf, err := s.shelfService.Create(r.Context(), userID, req.Name, req.Description)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, shelf, s.logger)
}

// handleListShelves returns all of the user's own shelves.
func (s *Server) handleListShelves(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r.Context())

	shelves, err := s.shelfService.ListMine(r.Context(), userID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, shelves, s.logger)
}

// handleGetShelf returns a shelf with its ordered entries. Non-owners only
// see public shelves.
func (s *Server) handleGetShelf(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r.Context())
	shelfID := chi.URLParam(r, "id")

	shelf, err := s.shelfService.Get(r.Context(), userID, shelfID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, shelf, s.logger)
}

// handleRenameShelf updates a shelf's name and description.
func (s *Server) handleRenameShelf(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r.Context())
	shelfID := chi.URLParam(r, "id")

	var req renameShelfRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	shelf, err := s.shelfService.Rename(r.Context(), userID, shelfID, req.Name, req.Description)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, shelf, s.logger)
}

// handleSetShelfVisibility toggles a shelf between private and public.
func (s *Server) handleSetShelfVisibility(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r.Context())
	shelfID := chi.URLParam(r, "id")

	var req setVisibilityRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	shelf, err := s.shelfService.SetVisibility(r.Context(), userID, shelfID, req.Public)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, shelf, s.logger)
}

// handleDeleteShelf removes a shelf and its memberships.
func (s *Server) handleDeleteShelf(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r.Context())
	shelfID := chi.URLParam(r, "id")

	if err := s.shelfService.Delete(r.Context(), userID, shelfID); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}

// handleAddShelfEntry places a library entry at the end of the shelf.
func (s *Server) handleAddShelfEntry(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r.Context())
	shelfID := chi.URLParam(r, "id")

	var req addShelfEntryRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	entry, err := s.shelfService.AddEntry(r.Context(), userID, shelfID, req.EntryID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, entry, s.logger)
}

// handleRemoveShelfEntry takes a library entry off the shelf.
func (s *Server) handleRemoveShelfEntry(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r.Context())
	shelfID := chi.URLParam(r, "id")
	entryID := chi.URLParam(r, "entryID")

	if err := s.shelfService.RemoveEntry(r.Context(), userID, shelfID, entryID); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}

// handleReorderShelf rewrites the shelf's display order. The body must list
// every current entry exactly once.
func (s *Server) handleReorderShelf(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r.Context())
	shelfID := chi.URLParam(r, "id")

	var req reorderShelfRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	shelf, err := s.shelfService.Reorder(r.Context(), userID, shelfID, req.EntryIDs)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, shelf, s.logger)
}

// handleListUserPublicShelves returns another user's public shelves.
func (s *Server) handleListUserPublicShelves(w http.ResponseWriter, r *http.Request) {
	ownerID := chi.URLParam(r, "userID")

	shelves, err := s.shelfService.ListUserPublic(r.Context(), ownerID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, shelves, s.logger)
}
