package social

import (
	"context"
	"testing"

	"github.com/enlapet/backend/internal/models"
	"github.com/enlapet/backend/internal/notifications"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowCreatesEdgeMirrorAndCounters(t *testing.T) {
	db := newTestDB(t)
	emitter := notifications.NewEmitter(db)
	graph := NewGraph(db, emitter)
	ctx := context.Background()

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	require.NoError(t, graph.Follow(ctx, alice.ID, bob.ID, models.ProfileTypeUser))
	emitter.Wait()

	var edge models.Follow
	require.NoError(t, db.First(&edge, "follower_id = ? AND target_id = ?", alice.ID, bob.ID).Error)
	assert.Equal(t, models.ProfileTypeUser, edge.TargetType)

	var mirror models.Follower
	require.NoError(t, db.First(&mirror, "profile_id = ? AND follower_id = ?", bob.ID, alice.ID).Error)

	var freshAlice, freshBob models.User
	require.NoError(t, db.First(&freshAlice, "id = ?", alice.ID).Error)
	require.NoError(t, db.First(&freshBob, "id = ?", bob.ID).Error)
	assert.Equal(t, 1, freshAlice.FollowingCount)
	assert.Equal(t, 1, freshBob.FollowersCount)

	notifs := notificationsFor(t, db, bob.ID)
	require.Len(t, notifs, 1)
	assert.Equal(t, models.NotificationNewFollower, notifs[0].Type)
	assert.Equal(t, alice.ID, notifs[0].ActorID)
}

func TestFollowTwiceIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	emitter := notifications.NewEmitter(db)
	graph := NewGraph(db, emitter)
	ctx := context.Background()

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	require.NoError(t, graph.Follow(ctx, alice.ID, bob.ID, models.ProfileTypeUser))
	require.NoError(t, graph.Follow(ctx, alice.ID, bob.ID, models.ProfileTypeUser))
	emitter.Wait()

	var edges int64
	require.NoError(t, db.Model(&models.Follow{}).Count(&edges).Error)
	assert.EqualValues(t, 1, edges)

	var freshBob models.User
	require.NoError(t, db.First(&freshBob, "id = ?", bob.ID).Error)
	assert.Equal(t, 1, freshBob.FollowersCount)

	// The repeated follow must not notify again
	assert.Len(t, notificationsFor(t, db, bob.ID), 1)
}

func TestSelfFollowRejected(t *testing.T) {
	db := newTestDB(t)
	graph := NewGraph(db, notifications.NewEmitter(db))

	alice := createUser(t, db, "alice")

	err := graph.Follow(context.Background(), alice.ID, alice.ID, models.ProfileTypeUser)
	assert.ErrorIs(t, err, ErrSelfFollow)

	var edges int64
	require.NoError(t, db.Model(&models.Follow{}).Count(&edges).Error)
	assert.EqualValues(t, 0, edges)

	var fresh models.User
	require.NoError(t, db.First(&fresh, "id = ?", alice.ID).Error)
	assert.Equal(t, 0, fresh.FollowersCount)
	assert.Equal(t, 0, fresh.FollowingCount)
}

func TestFollowMissingProfile(t *testing.T) {
	db := newTestDB(t)
	graph := NewGraph(db, notifications.NewEmitter(db))

	alice := createUser(t, db, "alice")

	err := graph.Follow(context.Background(), alice.ID, "missing-id", models.ProfileTypeUser)
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestUnfollowRemovesEdgeMirrorAndCounters(t *testing.T) {
	db := newTestDB(t)
	emitter := notifications.NewEmitter(db)
	graph := NewGraph(db, emitter)
	ctx := context.Background()

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	require.NoError(t, graph.Follow(ctx, alice.ID, bob.ID, models.ProfileTypeUser))
	require.NoError(t, graph.Unfollow(ctx, alice.ID, bob.ID))

	var edges, mirrors int64
	require.NoError(t, db.Model(&models.Follow{}).Count(&edges).Error)
	require.NoError(t, db.Model(&models.Follower{}).Count(&mirrors).Error)
	assert.EqualValues(t, 0, edges)
	assert.EqualValues(t, 0, mirrors)

	var freshAlice, freshBob models.User
	require.NoError(t, db.First(&freshAlice, "id = ?", alice.ID).Error)
	require.NoError(t, db.First(&freshBob, "id = ?", bob.ID).Error)
	assert.Equal(t, 0, freshAlice.FollowingCount)
	assert.Equal(t, 0, freshBob.FollowersCount)
}

func TestUnfollowPetDecrementsPetCounter(t *testing.T) {
	db := newTestDB(t)
	graph := NewGraph(db, notifications.NewEmitter(db))
	ctx := context.Background()

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	rex := createPet(t, db, bob, "rex")

	require.NoError(t, graph.Follow(ctx, alice.ID, rex.ID, models.ProfileTypePet))
	require.NoError(t, graph.Unfollow(ctx, alice.ID, rex.ID))

	var edges int64
	require.NoError(t, db.Model(&models.Follow{}).Count(&edges).Error)
	assert.EqualValues(t, 0, edges)

	// The kind is read from the stored edge, so the decrement lands on the
	// pet row even though the caller never names the kind.
	var freshRex models.Pet
	require.NoError(t, db.First(&freshRex, "id = ?", rex.ID).Error)
	assert.Equal(t, 0, freshRex.FollowersCount)

	var freshAlice models.User
	require.NoError(t, db.First(&freshAlice, "id = ?", alice.ID).Error)
	assert.Equal(t, 0, freshAlice.FollowingCount)
}

func TestUnfollowAbsentEdgeIsNoOp(t *testing.T) {
	db := newTestDB(t)
	graph := NewGraph(db, notifications.NewEmitter(db))

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	require.NoError(t, graph.Unfollow(context.Background(), alice.ID, bob.ID))

	// Counters must never dip below zero
	var freshAlice, freshBob models.User
	require.NoError(t, db.First(&freshAlice, "id = ?", alice.ID).Error)
	require.NoError(t, db.First(&freshBob, "id = ?", bob.ID).Error)
	assert.Equal(t, 0, freshAlice.FollowingCount)
	assert.Equal(t, 0, freshBob.FollowersCount)
}

func TestFollowPetNotifiesOwner(t *testing.T) {
	db := newTestDB(t)
	emitter := notifications.NewEmitter(db)
	graph := NewGraph(db, emitter)
	ctx := context.Background()

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	rex := createPet(t, db, bob, "rex")

	require.NoError(t, graph.Follow(ctx, alice.ID, rex.ID, models.ProfileTypePet))
	emitter.Wait()

	var freshRex models.Pet
	require.NoError(t, db.First(&freshRex, "id = ?", rex.ID).Error)
	assert.Equal(t, 1, freshRex.FollowersCount)

	// Pets have no inbox; the owner receives the notification
	notifs := notificationsFor(t, db, bob.ID)
	require.Len(t, notifs, 1)
	assert.Equal(t, models.NotificationNewFollower, notifs[0].Type)
	assert.Equal(t, rex.ID, notifs[0].EntityID)
}

func TestFollowOwnPetDoesNotNotify(t *testing.T) {
	db := newTestDB(t)
	emitter := notifications.NewEmitter(db)
	graph := NewGraph(db, emitter)

	bob := createUser(t, db, "bob")
	rex := createPet(t, db, bob, "rex")

	require.NoError(t, graph.Follow(context.Background(), bob.ID, rex.ID, models.ProfileTypePet))
	emitter.Wait()

	// The follow itself stands, but no self-notification is recorded
	var freshRex models.Pet
	require.NoError(t, db.First(&freshRex, "id = ?", rex.ID).Error)
	assert.Equal(t, 1, freshRex.FollowersCount)
	assert.Empty(t, notificationsFor(t, db, bob.ID))
}

func TestFollowStatusAndFollowingIDs(t *testing.T) {
	db := newTestDB(t)
	graph := NewGraph(db, notifications.NewEmitter(db))
	ctx := context.Background()

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	carol := createUser(t, db, "carol")

	require.NoError(t, graph.Follow(ctx, alice.ID, bob.ID, models.ProfileTypeUser))

	following, err := graph.FollowStatus(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, following)

	following, err = graph.FollowStatus(ctx, alice.ID, carol.ID)
	require.NoError(t, err)
	assert.False(t, following)

	ids, err := graph.FollowingIDs(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{bob.ID}, ids)
}
