package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateUserProfileCreatesThenUpdates(t *testing.T) {
	ctx := context.Background()
	userRepo := newFakeUserRepo()
	profileRepo := newFakeProfileRepo()
	ids := seedUsers(t, userRepo, "alice")
	svc := NewUserService(userRepo, profileRepo)

	profile, err := svc.UpdateUserProfile(ctx, ids[0], ProfileUpdate{
		Gender:     "Female",
		Contact:    "0123456789",
		Address:    "Somewhere 1",
		Profession: "Engineer",
	})
	require.NoError(t, err)
	assert.NotZero(t, profile.ID)

	// Second update keeps unset fields.
	profile, err = svc.UpdateUserProfile(ctx, ids[0], ProfileUpdate{Bio: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "hello", profile.Bio)
	assert.Equal(t, "Engineer", profile.Profession)

	user, err := svc.GetUserProfile(ctx, ids[0])
	require.NoError(t, err)
	require.NotNil(t, user.ProfileID)
	assert.Equal(t, profile.ID, *user.ProfileID)
}

func TestUpdateUserProfileRejectsBadContact(t *testing.T) {
	ctx := context.Background()
	userRepo := newFakeUserRepo()
	ids := seedUsers(t, userRepo, "alice")
	svc := NewUserService(userRepo, newFakeProfileRepo())

	_, err := svc.UpdateUserProfile(ctx, ids[0], ProfileUpdate{Contact: "12345"})
	assert.ErrorIs(t, err, ErrInvalidContact)
}

func TestDeleteUserProfile(t *testing.T) {
	ctx := context.Background()
	userRepo := newFakeUserRepo()
	ids := seedUsers(t, userRepo, "alice")
	svc := NewUserService(userRepo, newFakeProfileRepo())

	// Nothing to delete yet.
	assert.ErrorIs(t, svc.DeleteUserProfile(ctx, ids[0]), ErrProfileNotFound)

	_, err := svc.UpdateUserProfile(ctx, ids[0], ProfileUpdate{Bio: "hi"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteUserProfile(ctx, ids[0]))

	user, err := svc.GetUserProfile(ctx, ids[0])
	require.NoError(t, err)
	assert.Nil(t, user.ProfileID)
}

func TestListChatUsersExcludesSelf(t *testing.T) {
	ctx := context.Background()
	userRepo := newFakeUserRepo()
	ids := seedUsers(t, userRepo, "alice", "bob", "carol")
	svc := NewUserService(userRepo, newFakeProfileRepo())

	users, err := svc.ListChatUsers(ctx, ids[0])
	require.NoError(t, err)
	assert.Len(t, users, 2)
	for _, u := range users {
		assert.NotEqual(t, ids[0], u.ID)
		assert.Empty(t, u.PasswordHash)
	}
}

func TestResolveSender(t *testing.T) {
	ctx := context.Background()
	userRepo := newFakeUserRepo()
	ids := seedUsers(t, userRepo, "alice")
	svc := NewUserService(userRepo, newFakeProfileRepo())

	user, err := svc.ResolveSender(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, ids[0], user.ID)

	_, err = svc.ResolveSender(ctx, "999")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.ResolveSender(ctx, "not-a-number")
	assert.Error(t, err)
}
