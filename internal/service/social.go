package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/shelfmark/shelfmark-server/internal/domain"
	"github.com/shelfmark/shelfmark-server/internal/errors"
	"github.com/shelfmark/shelfmark-server/internal/store"
)

// SocialService manages the follow and block graphs. Blocking is one-way:
// it severs follows in both directions at block time, but the blocked user
// is not prevented from being followed by the blocker later, and the block
// only stops the blocked user from initiating a new follow.
type SocialService struct {
	store  store.Store
	logger *slog.Logger
}

// NewSocialService creates a new social service.
func NewSocialService(s store.Store, logger *slog.Logger) *SocialService {
	return &SocialService{store: s, logger: logger}
}

// Follow creates a follow edge from follower to target. Rejected when the
// two are the same user, when the edge already exists, or when the target
// has blocked the follower. The block check lives inside the store's insert
// transaction so a concurrent block cannot slip in between.
func (s *SocialService) Follow(ctx context.Context, followerID, targetID string) (*domain.Follow, error) {
	if followerID == targetID {
		return nil, errors.Validation("cannot follow yourself")
	}

	if _, err := s.mustGetUser(ctx, targetID); err != nil {
		return nil, err
	}

	follow := &domain.Follow{
		FollowerID:  followerID,
		FollowingID: targetID,
		CreatedAt:   time.Now(),
	}

	if err := s.store.CreateFollow(ctx, follow); err != nil {
		if errors.Is(err, store.ErrBlocked) {
			return nil, errors.Forbidden("user has blocked you")
		}
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, errors.AlreadyExists("already following")
		}
		return nil, errors.Internal("failed to create follow").WithCause(err)
	}

	s.logger.Info("follow created", "follower_id", followerID, "target_id", targetID)
	return follow, nil
}

// Unfollow removes the follow edge from follower to target.
func (s *SocialService) Unfollow(ctx context.Context, followerID, targetID string) error {
	if err := s.store.DeleteFollow(ctx, followerID, targetID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errors.NotFound("not following this user")
		}
		return errors.Internal("failed to delete follow").WithCause(err)
	}
	return nil
}

// Block creates a block edge and severs any follow relationship between the
// pair in both directions, atomically.
func (s *SocialService) Block(ctx context.Context, blockerID, targetID string) (*domain.Block, error) {
	if blockerID == targetID {
		return nil, errors.Validation("cannot block yourself")
	}

	if _, err := s.mustGetUser(ctx, targetID); err != nil {
		return nil, err
	}

	block := &domain.Block{
		BlockerID: blockerID,
		BlockedID: targetID,
		CreatedAt: time.Now(),
	}

	if err := s.store.CreateBlock(ctx, block); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, errors.AlreadyExists("already blocked")
		}
		return nil, errors.Internal("failed to create block").WithCause(err)
	}

	s.logger.Info("block created", "blocker_id", blockerID, "target_id", targetID)
	return block, nil
}

// Unblock removes a block edge. Follows severed by the block stay severed.
func (s *SocialService) Unblock(ctx context.Context, blockerID, targetID string) error {
	if err := s.store.DeleteBlock(ctx, blockerID, targetID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errors.NotFound("user is not blocked")
		}
		return errors.Internal("failed to delete block").WithCause(err)
	}
	return nil
}

// ListFollowing returns the users this user follows.
func (s *SocialService) ListFollowing(ctx context.Context, userID string) ([]*domain.Follow, error) {
	follows, err := s.store.ListFollowing(ctx, userID)
	if err != nil {
		return nil, errors.Internal("failed to list following").WithCause(err)
	}
	if follows == nil {
		follows = []*domain.Follow{}
	}
	return follows, nil
}

// ListFollowers returns the users following this user.
func (s *SocialService) ListFollowers(ctx context.Context, userID string) ([]*domain.Follow, error) {
	follows, err := s.store.ListFollowers(ctx, userID)
	if err != nil {
		return nil, errors.Internal("failed to list followers").WithCause(err)
	}
	if follows == nil {
		follows = []*domain.Follow{}
	}
	return follows, nil
}

// ListBlocked returns the users this user has blocked.
func (s *SocialService) ListBlocked(ctx context.Context, userID string) ([]*domain.Block, error) {
	blocks, err := s.store.ListBlocked(ctx, userID)
	if err != nil {
		return nil, errors.Internal("failed to list blocked users").WithCause(err)
	}
	if blocks == nil {
		blocks = []*domain.Block{}
	}
	return blocks, nil
}

func (s *SocialService) mustGetUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errors.NotFound("user not found")
		}
		return nil, errors.Internal("failed to get user").WithCause(err)
	}
	return user, nil
}
