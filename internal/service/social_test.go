package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfmark/shelfmark-server/internal/errors"
)

func TestFollow(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedUser(t, "alice")
	bob := env.seedUser(t, "bob")

	follow, err := env.social.Follow(context.Background(), alice, bob)
	require.NoError(t, err)
	assert.Equal(t, alice, follow.FollowerID)
	assert.Equal(t, bob, follow.FollowingID)

	// Follows are directional; bob does not follow alice back.
	following, err := env.social.ListFollowing(context.Background(), bob)
	require.NoError(t, err)
	assert.Empty(t, following)

	followers, err := env.social.ListFollowers(context.Background(), bob)
	require.NoError(t, err)
	require.Len(t, followers, 1)
	assert.Equal(t, alice, followers[0].FollowerID)
}

func TestFollow_Self(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedUser(t, "alice")

	_, err := env.social.Follow(context.Background(), alice, alice)
	assert.ErrorIs(t, err, errors.ErrValidation)
}

func TestFollow_UnknownTarget(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedUser(t, "alice")

	_, err := env.social.Follow(context.Background(), alice, "usr-nobody")
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestFollow_Duplicate(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedUser(t, "alice")
	bob := env.seedUser(t, "bob")

	_, err := env.social.Follow(context.Background(), alice, bob)
	require.NoError(t, err)

	_, err = env.social.Follow(context.Background(), alice, bob)
	assert.ErrorIs(t, err, errors.ErrAlreadyExists)
}

func TestFollow_BlockedByTarget(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedUser(t, "alice")
	bob := env.seedUser(t, "bob")

	_, err := env.social.Block(context.Background(), bob, alice)
	require.NoError(t, err)

	_, err = env.social.Follow(context.Background(), alice, bob)
	assert.ErrorIs(t, err, errors.ErrForbidden)

	// The block is one-way: the blocker can still follow the blocked user.
	_, err = env.social.Follow(context.Background(), bob, alice)
	assert.NoError(t, err)
}

func TestUnfollow(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedUser(t, "alice")
	bob := env.seedUser(t, "bob")

	_, err := env.social.Follow(context.Background(), alice, bob)
	require.NoError(t, err)

	require.NoError(t, env.social.Unfollow(context.Background(), alice, bob))

	following, err := env.social.ListFollowing(context.Background(), alice)
	require.NoError(t, err)
	assert.Empty(t, following)
}

func TestUnfollow_NotFollowing(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedUser(t, "alice")
	bob := env.seedUser(t, "bob")

	err := env.social.Unfollow(context.Background(), alice, bob)
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestBlock_SeversFollowsBothWays(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedUser(t, "alice")
	bob := env.seedUser(t, "bob")

	_, err := env.social.Follow(context.Background(), alice, bob)
	require.NoError(t, err)
	_, err = env.social.Follow(context.Background(), bob, alice)
	require.NoError(t, err)

	_, err = env.social.Block(context.Background(), alice, bob)
	require.NoError(t, err)

	aliceFollowing, err := env.social.ListFollowing(context.Background(), alice)
	require.NoError(t, err)
	assert.Empty(t, aliceFollowing)

	bobFollowing, err := env.social.ListFollowing(context.Background(), bob)
	require.NoError(t, err)
	assert.Empty(t, bobFollowing)

	blocked, err := env.social.ListBlocked(context.Background(), alice)
	require.NoError(t, err)
	require.Len(t, blocked, 1)
	assert.Equal(t, bob, blocked[0].BlockedID)
}

func TestBlock_Self(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedUser(t, "alice")

	_, err := env.social.Block(context.Background(), alice, alice)
	assert.ErrorIs(t, err, errors.ErrValidation)
}

func TestBlock_Duplicate(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedUser(t, "alice")
	bob := env.seedUser(t, "bob")

	_, err := env.social.Block(context.Background(), alice, bob)
	require.NoError(t, err)

	_, err = env.social.Block(context.Background(), alice, bob)
	assert.ErrorIs(t, err, errors.ErrAlreadyExists)
}

func TestUnblock_DoesNotRestoreFollows(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedUser(t, "alice")
	bob := env.seedUser(t, "bob")

	_, err := env.social.Follow(context.Background(), alice, bob)
	require.NoError(t, err)
	_, err = env.social.Block(context.Background(), alice, bob)
	require.NoError(t, err)

	require.NoError(t, env.social.Unblock(context.Background(), alice, bob))

	following, err := env.social.ListFollowing(context.Background(), alice)
	require.NoError(t, err)
	assert.Empty(t, following)

	blocked, err := env.social.ListBlocked(context.Background(), alice)
	require.NoError(t, err)
	assert.Empty(t, blocked)
}

func TestUnblock_NotBlocked(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedUser(t, "alice")
	bob := env.seedUser(t, "bob")

	err := env.social.Unblock(context.Background(), alice, bob)
	assert.ErrorIs(t, err, errors.ErrNotFound)
}
