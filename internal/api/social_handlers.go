package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shelfmark/shelfmark-server/internal/http/response"
)

// handleFollow creates a follow edge to another user.
func (s *Server) handleFollow(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r.Context())
	targetID := chi.URLParam(r, "userID")

	follow, err := s.socialService.Follow(r.Context(), userID, targetID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, follow, s.logger)
}

// handleUnfollow removes a follow edge.
func (s *Server) handleUnfollow(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r.Context())
	targetID := chi.URLParam(r, "userID")

	if err := s.socialService.Unfollow(r.Context(), userID, targetID); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}

// handleBlock blocks another user, severing follows both ways.
func (s *Server) handleBlock(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r.Context())
	targetID := chi.URLParam(r, "userID")

	block, err := s.socialService.Block(r.Context(), userID, targetID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, block, s.logger)
}

// handleUnblock removes a block edge.
func (s *Server) handleUnblock(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r.Context())
	targetID := chi.URLParam(r, "userID")

	if err := s.socialService.Unblock(r.Context(), userID, targetID); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}

// handleListFollowing lists the users the current user follows.
func (s *Server) handleListFollowing(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r.Context())

	follows, err := s.socialService.ListFollowing(r.Context(), userID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, follows, s.logger)
}

// handleListFollowers lists the users following the current user.
func (s *Server) handleListFollowers(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r.Context())

	follows, err := s.socialService.ListFollowers(r.Context(), userID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, follows, s.logger)
}

// handleListBlocked lists the users the current user has blocked.
func (s *Server) handleListBlocked(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r.Context())

	blocks, err := s.socialService.ListBlocked(r.Context(), userID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, blocks, s.logger)
}
