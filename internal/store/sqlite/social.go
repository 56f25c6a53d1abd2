package sqlite

import (
	"context"
	"time"

	"github.com/shelfmark/shelfmark-server/internal/domain"
	"github.com/shelfmark/shelfmark-server/internal/store"
)

// CreateFollow inserts a follow edge. The block check and the insert run in
// one transaction so a block committing in between cannot leave a block and
// a follow coexisting.
// Returns store.ErrBlocked when the target has blocked the follower, and
// store.ErrAlreadyExists when the edge already exists.
func (s *Store) CreateFollow(ctx context.Context, follow *domain.Follow) error {
	if follow.CreatedAt.IsZero() {
		follow.CreatedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var blocked int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM blocks WHERE blocker_id = ? AND blocked_id = ?`,
		follow.FollowingID, follow.FollowerID).Scan(&blocked); err != nil {
		return err
	}
	if blocked > 0 {
		return store.ErrBlocked.WithMessage("user has blocked you")
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO follows (follower_id, following_id, created_at)
		VALUES (?, ?, ?)`,
		follow.FollowerID, follow.FollowingID, formatTime(follow.CreatedAt),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists.WithMessage("already following")
	}
	if err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteFollow removes a follow edge.
// Returns store.ErrNotFound if no such edge exists.
func (s *Store) DeleteFollow(ctx context.Context, followerID, followingID string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM follows WHERE follower_id = ? AND following_id = ?`,
		followerID, followingID)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound.WithMessage("not following")
	}
	return nil
}

// FollowExists reports whether follower follows following.
func (s *Store) FollowExists(ctx context.Context, followerID, followingID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM follows WHERE follower_id = ? AND following_id = ?`,
		followerID, followingID).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListFollowing returns the edges this user follows, oldest first.
func (s *Store) ListFollowing(ctx context.Context, followerID string) ([]*domain.Follow, error) {
	return s.listFollows(ctx,
		`SELECT follower_id, following_id, created_at
		 FROM follows WHERE follower_id = ? ORDER BY created_at`, followerID)
}

// ListFollowers returns the edges pointing at this user, oldest first.
func (s *Store) ListFollowers(ctx context.Context, followingID string) ([]*domain.Follow, error) {
	return s.listFollows(ctx,
		`SELECT follower_id, following_id, created_at
		 FROM follows WHERE following_id = ? ORDER BY created_at`, followingID)
}

func (s *Store) listFollows(ctx context.Context, query string, args ...any) ([]*domain.Follow, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var follows []*domain.Follow
	for rows.Next() {
		var f domain.Follow
		var createdAt string
		if err := rows.Scan(&f.FollowerID, &f.FollowingID, &createdAt); err != nil {
			return nil, err
		}
		if f.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		follows = append(follows, &f)
	}
	return follows, rows.Err()
}

// CreateBlock inserts a block edge and severs any follow relationship in
// both directions, all in one transaction.
// Returns store.ErrAlreadyExists when the block already exists.
func (s *Store) CreateBlock(ctx context.Context, block *domain.Block) error {
	if block.CreatedAt.IsZero() {
		block.CreatedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM follows
		WHERE (follower_id = ? AND following_id = ?)
		   OR (follower_id = ? AND following_id = ?)`,
		block.BlockerID, block.BlockedID,
		block.BlockedID, block.BlockerID,
	); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO blocks (blocker_id, blocked_id, created_at)
		VALUES (?, ?, ?)`,
		block.BlockerID, block.BlockedID, formatTime(block.CreatedAt),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists.WithMessage("already blocked")
	}
	if err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteBlock removes a block edge. Previously severed follows are not
// restored. Returns store.ErrNotFound if no such block exists.
func (s *Store) DeleteBlock(ctx context.Context, blockerID, blockedID string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM blocks WHERE blocker_id = ? AND blocked_id = ?`,
		blockerID, blockedID)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound.WithMessage("not blocked")
	}
	return nil
}

// BlockExists reports whether blocker has blocked blocked.
func (s *Store) BlockExists(ctx context.Context, blockerID, blockedID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM blocks WHERE blocker_id = ? AND blocked_id = ?`,
		blockerID, blockedID).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListBlocked returns the blocks this user has placed, oldest first.
func (s *Store) ListBlocked(ctx context.Context, blockerID string) ([]*domain.Block, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT blocker_id, blocked_id, created_at
		FROM blocks WHERE blocker_id = ? ORDER BY created_at`, blockerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var blocks []*domain.Block
	for rows.Next() {
		var b domain.Block
		var createdAt string
		if err := rows.Scan(&b.BlockerID, &b.BlockedID, &createdAt); err != nil {
			return nil, err
		}
		if b.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		blocks = append(blocks, &b)
	}
	return blocks, rows.Err()
}
