package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/qs3c/devmatch_server/internal/model/dto"
	"github.com/qs3c/devmatch_server/internal/pkg/pubsub"
	"github.com/qs3c/devmatch_server/internal/repository"
	"github.com/qs3c/devmatch_server/internal/testutil"
)

func TestMessageService_SendAndRead(t *testing.T) {
	env := newTestEnv(t)
	svc := NewMessageService(env.store, env.clock, env.realtime, zaptest.NewLogger(t))
	ctx := context.Background()
	page := repository.Page{Page: 1, PageSize: 20}

	alice := testutil.TestUser(t, env.db)
	bob := testutil.TestUser(t, env.db)

	msg, err := svc.Send(ctx, alice.ID, &dto.SendMessageRequest{ReceiverID: bob.ID, Content: "hi bob"})
	require.NoError(t, err)
	require.Len(t, env.realtime.events, 1)
	assert.Equal(t, bob.ID, env.realtime.events[0].UserID)
	assert.Equal(t, pubsub.EventNewMessage, env.realtime.events[0].Type)

	_, err = svc.Send(ctx, alice.ID, &dto.SendMessageRequest{ReceiverID: bob.ID, Content: "second"})
	require.NoError(t, err)

	unread, err := svc.UnreadCount(bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread)

	assert.ErrorIs(t, svc.MarkRead(alice.ID, msg.ID), ErrForbidden)
	require.NoError(t, svc.MarkRead(bob.ID, msg.ID))
	require.NoError(t, svc.MarkRead(bob.ID, msg.ID))
	assert.ErrorIs(t, svc.MarkRead(bob.ID, 99999), ErrMessageNotFound)

	unread, err = svc.UnreadCount(bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)

	msgs, total, err := svc.Conversation(bob.ID, alice.ID, page)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, msgs, 2)

	unread, err = svc.UnreadCount(bob.ID)
	require.NoError(t, err)
	assert.Zero(t, unread)

	inbox, _, err := svc.Inbox(bob.ID, page)
	require.NoError(t, err)
	assert.Len(t, inbox, 2)
}

func TestMessageService_SendRejected(t *testing.T) {
	env := newTestEnv(t)
	svc := NewMessageService(env.store, env.clock, nil, zaptest.NewLogger(t))
	ctx := context.Background()
	alice := testutil.TestUser(t, env.db)

	_, err := svc.Send(ctx, alice.ID, &dto.SendMessageRequest{ReceiverID: alice.ID, Content: "me"})
	assert.ErrorIs(t, err, ErrCannotMessageSelf)

	_, err = svc.Send(ctx, alice.ID, &dto.SendMessageRequest{ReceiverID: 99999, Content: "ghost"})
	assert.ErrorIs(t, err, ErrReceiverNotFound)
}
