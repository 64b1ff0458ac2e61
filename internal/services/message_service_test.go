package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quickchat/internal/models"
)

func seedUsers(t *testing.T, repo *fakeUserRepo, names ...string) []uint {
	t.Helper()
	var ids []uint
	for _, name := range names {
		u := &models.User{Name: name, Email: name + "@example.com"}
		require.NoError(t, repo.Create(context.Background(), u))
		ids = append(ids, u.ID)
	}
	return ids
}

func TestAddMessagePersistsAndExpandsParticipants(t *testing.T) {
	ctx := context.Background()
	userRepo := newFakeUserRepo()
	ids := seedUsers(t, userRepo, "alice", "bob")
	svc := NewMessageService(newFakeMessageRepo(userRepo), userRepo)

	msg, err := svc.AddMessage(ctx, ids[0], ids[1], "  hi bob  ", "")
	require.NoError(t, err)
	assert.Equal(t, "hi bob", msg.Body)
	assert.Equal(t, "alice", msg.Sender.Name)
	assert.Equal(t, "bob", msg.Receiver.Name)
}

func TestAddMessageValidation(t *testing.T) {
	ctx := context.Background()
	userRepo := newFakeUserRepo()
	ids := seedUsers(t, userRepo, "alice", "bob")
	svc := NewMessageService(newFakeMessageRepo(userRepo), userRepo)

	_, err := svc.AddMessage(ctx, ids[0], ids[0], "hi", "")
	assert.ErrorIs(t, err, ErrSelfMessage)

	_, err = svc.AddMessage(ctx, ids[0], ids[1], "   ", "")
	assert.ErrorIs(t, err, ErrEmptyMessage)

	_, err = svc.AddMessage(ctx, ids[0], 999, "hi", "")
	assert.ErrorIs(t, err, ErrReceiverNotFound)

	// An image alone is a valid message.
	msg, err := svc.AddMessage(ctx, ids[0], ids[1], "", "/uploads/pic.png")
	require.NoError(t, err)
	assert.Empty(t, msg.Body)
	assert.Equal(t, "/uploads/pic.png", msg.ImageURL)
}

func TestGetConversationReturnsBothDirections(t *testing.T) {
	ctx := context.Background()
	userRepo := newFakeUserRepo()
	ids := seedUsers(t, userRepo, "alice", "bob", "carol")
	svc := NewMessageService(newFakeMessageRepo(userRepo), userRepo)

	_, err := svc.AddMessage(ctx, ids[0], ids[1], "hi bob", "")
	require.NoError(t, err)
	_, err = svc.AddMessage(ctx, ids[1], ids[0], "hi alice", "")
	require.NoError(t, err)
	_, err = svc.AddMessage(ctx, ids[0], ids[2], "hi carol", "")
	require.NoError(t, err)

	msgs, err := svc.GetConversation(ctx, ids[0], ids[1])
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "hi bob", msgs[0].Body)
	assert.Equal(t, "hi alice", msgs[1].Body)
}

func TestDeleteMessageSenderOnly(t *testing.T) {
	ctx := context.Background()
	userRepo := newFakeUserRepo()
	ids := seedUsers(t, userRepo, "alice", "bob")
	msgRepo := newFakeMessageRepo(userRepo)
	svc := NewMessageService(msgRepo, userRepo)

	msg, err := svc.AddMessage(ctx, ids[0], ids[1], "hi", "")
	require.NoError(t, err)

	// The receiver may not delete the sender's message.
	err = svc.DeleteMessage(ctx, ids[1], msg.ID)
	assert.ErrorIs(t, err, ErrNotMessageOwner)

	require.NoError(t, svc.DeleteMessage(ctx, ids[0], msg.ID))

	err = svc.DeleteMessage(ctx, ids[0], msg.ID)
	assert.ErrorIs(t, err, ErrMessageNotFound)
}
