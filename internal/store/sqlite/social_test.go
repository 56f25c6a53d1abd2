package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfmark/shelfmark-server/internal/domain"
	"github.com/shelfmark/shelfmark-server/internal/store"
)

func TestCreateFollow(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	alice := seedUser(t, s, "alice")
	bob := seedUser(t, s, "bob")

	follow := &domain.Follow{FollowerID: alice, FollowingID: bob, CreatedAt: time.Now()}
	require.NoError(t, s.CreateFollow(ctx, follow))

	exists, err := s.FollowExists(ctx, alice, bob)
	require.NoError(t, err)
	assert.True(t, exists)

	// Follows are directional.
	exists, err = s.FollowExists(ctx, bob, alice)
	require.NoError(t, err)
	assert.False(t, exists)

	err = s.CreateFollow(ctx, &domain.Follow{FollowerID: alice, FollowingID: bob})
	assert.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestCreateFollow_RejectedWhenBlocked(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	alice := seedUser(t, s, "alice")
	bob := seedUser(t, s, "bob")

	// A block committed by the target at any point before the insert must
	// reject the follow, even with no check outside the store.
	require.NoError(t, s.CreateBlock(ctx, &domain.Block{BlockerID: alice, BlockedID: bob}))

	err := s.CreateFollow(ctx, &domain.Follow{FollowerID: bob, FollowingID: alice})
	assert.ErrorIs(t, err, store.ErrBlocked)

	exists, followErr := s.FollowExists(ctx, bob, alice)
	require.NoError(t, followErr)
	assert.False(t, exists, "no follow may coexist with the block")

	// The guard is one-way: the blocker may still follow the blocked user.
	require.NoError(t, s.CreateFollow(ctx, &domain.Follow{FollowerID: alice, FollowingID: bob}))
}

func TestCreateFollow_SelfEdgeRejectedBySchema(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	alice := seedUser(t, s, "alice")

	err := s.CreateFollow(context.Background(), &domain.Follow{
		FollowerID:  alice,
		FollowingID: alice,
	})
	assert.Error(t, err)
}

func TestDeleteFollow(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	alice := seedUser(t, s, "alice")
	bob := seedUser(t, s, "bob")
	require.NoError(t, s.CreateFollow(ctx, &domain.Follow{FollowerID: alice, FollowingID: bob}))

	require.NoError(t, s.DeleteFollow(ctx, alice, bob))

	err := s.DeleteFollow(ctx, alice, bob)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCreateBlock_SeversFollowsBothDirections(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	alice := seedUser(t, s, "alice")
	bob := seedUser(t, s, "bob")

	require.NoError(t, s.CreateFollow(ctx, &domain.Follow{FollowerID: alice, FollowingID: bob}))
	require.NoError(t, s.CreateFollow(ctx, &domain.Follow{FollowerID: bob, FollowingID: alice}))

	require.NoError(t, s.CreateBlock(ctx, &domain.Block{BlockerID: alice, BlockedID: bob}))

	aliceFollowsBob, err := s.FollowExists(ctx, alice, bob)
	require.NoError(t, err)
	assert.False(t, aliceFollowsBob)

	bobFollowsAlice, err := s.FollowExists(ctx, bob, alice)
	require.NoError(t, err)
	assert.False(t, bobFollowsAlice)

	blocked, err := s.BlockExists(ctx, alice, bob)
	require.NoError(t, err)
	assert.True(t, blocked)
}

func TestCreateBlock_Duplicate(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	alice := seedUser(t, s, "alice")
	bob := seedUser(t, s, "bob")

	require.NoError(t, s.CreateBlock(ctx, &domain.Block{BlockerID: alice, BlockedID: bob}))
	err := s.CreateBlock(ctx, &domain.Block{BlockerID: alice, BlockedID: bob})
	assert.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestDeleteBlock_DoesNotRestoreFollows(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	alice := seedUser(t, s, "alice")
	bob := seedUser(t, s, "bob")

	require.NoError(t, s.CreateFollow(ctx, &domain.Follow{FollowerID: bob, FollowingID: alice}))
	require.NoError(t, s.CreateBlock(ctx, &domain.Block{BlockerID: alice, BlockedID: bob}))
	require.NoError(t, s.DeleteBlock(ctx, alice, bob))

	// The severed follow stays severed after unblock.
	exists, err := s.FollowExists(ctx, bob, alice)
	require.NoError(t, err)
	assert.False(t, exists)

	err = s.DeleteBlock(ctx, alice, bob)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestListFollowingAndFollowers(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	alice := seedUser(t, s, "alice")
	bob := seedUser(t, s, "bob")
	carol := seedUser(t, s, "carol")

	base := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
	require.NoError(t, s.CreateFollow(ctx, &domain.Follow{FollowerID: alice, FollowingID: bob, CreatedAt: base}))
	require.NoError(t, s.CreateFollow(ctx, &domain.Follow{FollowerID: alice, FollowingID: carol, CreatedAt: base.Add(time.Second)}))
	require.NoError(t, s.CreateFollow(ctx, &domain.Follow{FollowerID: carol, FollowingID: bob, CreatedAt: base.Add(2 * time.Second)}))

	following, err := s.ListFollowing(ctx, alice)
	require.NoError(t, err)
	require.Len(t, following, 2)
	assert.Equal(t, bob, following[0].FollowingID)
	assert.Equal(t, carol, following[1].FollowingID)

	followers, err := s.ListFollowers(ctx, bob)
	require.NoError(t, err)
	require.Len(t, followers, 2)
	assert.Equal(t, alice, followers[0].FollowerID)
	assert.Equal(t, carol, followers[1].FollowerID)
}
