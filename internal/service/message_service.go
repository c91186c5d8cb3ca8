package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/qs3c/devmatch_server/internal/model"
	"github.com/qs3c/devmatch_server/internal/model/dto"
	"github.com/qs3c/devmatch_server/internal/pkg/clock"
	"github.com/qs3c/devmatch_server/internal/pkg/pubsub"
	"github.com/qs3c/devmatch_server/internal/repository"
)

var (
	ErrMessageNotFound   = errors.New("消息不存在")
	ErrReceiverNotFound  = errors.New("收件人不存在")
	ErrCannotMessageSelf = errors.New("不能给自己发送消息")
)

type MessageService struct {
	store    *repository.Store
	clock    clock.Clock
	realtime Realtime
	logger   *zap.Logger
}

func NewMessageService(store *repository.Store, clk clock.Clock, realtime Realtime, logger *zap.Logger) *MessageService {
	return &MessageService{
		store:    store,
		clock:    clk,
		realtime: realtimeOrNop(realtime),
		logger:   logger.Named("message"),
	}
}

// Send 发送消息并推送给在线的收件人
func (s *MessageService) Send(ctx context.Context, senderID int64, req *dto.SendMessageRequest) (*model.Message, error) {
	if req.ReceiverID == senderID {
		return nil, ErrCannotMessageSelf
	}
	if _, err := s.store.Users.GetByID(req.ReceiverID); err != nil {
		return nil, notFound(err, ErrReceiverNotFound)
	}

	msg := &model.Message{
		SenderID:   senderID,
		ReceiverID: req.ReceiverID,
		Content:    req.Content,
		CreatedAt:  s.clock.Now(),
	}
	if err := s.store.Messages.Create(msg); err != nil {
		return nil, err
	}

	s.push(ctx, msg)
	return msg, nil
}

// Conversation 与某个用户的往来消息，同时把对方发来的消息标记为已读
func (s *MessageService) Conversation(userID, otherID int64, page repository.Page) ([]*model.Message, int64, error) {
	msgs, total, err := s.store.Messages.ListConversation(userID, otherID, page)
	if err != nil {
		return nil, 0, err
	}
	if _, err := s.store.Messages.MarkConversationRead(userID, otherID, s.clock.Now()); err != nil {
		s.logger.Warn("mark conversation read failed", zap.Int64("user_id", userID), zap.Error(err))
	}
	return msgs, total, nil
}

func (s *MessageService) Inbox(userID int64, page repository.Page) ([]*model.Message, int64, error) {
	return s.store.Messages.ListInbox(userID, page)
}

// MarkRead 只有收件人可以标记，重复标记视为成功
func (s *MessageService) MarkRead(userID, id int64) error {
	ok, err := s.store.Messages.MarkRead(id, userID, s.clock.Now())
	if err != nil || ok {
		return err
	}
	msg, err := s.store.Messages.GetByID(id)
	if err != nil {
		return notFound(err, ErrMessageNotFound)
	}
	if msg.ReceiverID != userID {
		return ErrForbidden
	}
	return nil
}

func (s *MessageService) UnreadCount(userID int64) (int64, error) {
	return s.store.Messages.CountUnread(userID)
}

func (s *MessageService) push(ctx context.Context, msg *model.Message) {
	if err := s.realtime.Publish(ctx, msg.ReceiverID, pubsub.EventNewMessage, msg); err != nil {
		s.logger.Warn("push message failed", zap.Int64("message_id", msg.ID), zap.Error(err))
	}
}
