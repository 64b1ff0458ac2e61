package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"quickchat/internal/models"
	"quickchat/internal/storage"
)

var (
	ErrReceiverNotFound = errors.New("接收者不存在")
	ErrSelfMessage      = errors.New("不能给自己发送消息")
	ErrEmptyMessage     = errors.New("消息内容和图片不能同时为空")
	ErrMessageNotFound  = errors.New("消息不存在或已删除")
	ErrNotMessageOwner  = errors.New("只能删除自己发送的消息")
)

// MessageService 定义了消息相关服务的接口。这里只负责持久层：
// 实时推送由客户端在 HTTP 写入成功后通过 socket 的 send-message 事件触发。
type MessageService interface {
	// AddMessage 持久化一条消息并返回展开了发送者与接收者的记录。
	AddMessage(ctx context.Context, senderID, receiverID uint, body, imageURL string) (*models.Message, error)
	// GetConversation 返回两个用户之间的全部历史消息，按时间升序。
	GetConversation(ctx context.Context, userID, otherID uint) ([]*models.Message, error)
	// DeleteMessage 物理删除一条消息，仅发送者可删。
	// 删除只影响 HTTP 视图，不会向对端在线会话推送事件。
	DeleteMessage(ctx context.Context, userID, messageID uint) error
}

// messageService 是 MessageService 的实现。
type messageService struct {
	msgRepo  storage.MessageRepository
	userRepo storage.UserRepository
}

// NewMessageService 创建一个新的 MessageService 实例。
func NewMessageService(msgRepo storage.MessageRepository, userRepo storage.UserRepository) MessageService {
	return &messageService{
		msgRepo:  msgRepo,
		userRepo: userRepo,
	}
}

// AddMessage 校验并持久化一条新消息。
func (s *messageService) AddMessage(ctx context.Context, senderID, receiverID uint, body, imageURL string) (*models.Message, error) {
	if senderID == receiverID {
		return nil, ErrSelfMessage
	}

	body = strings.TrimSpace(body)
	if body == "" && imageURL == "" {
		return nil, ErrEmptyMessage
	}

	if _, err := s.userRepo.GetByID(ctx, receiverID); errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrReceiverNotFound
	} else if err != nil {
		return nil, fmt.Errorf("查找接收者 %d 失败: %w", receiverID, err)
	}

	msg := &models.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Body:       body,
		ImageURL:   imageURL,
	}
	if err := s.msgRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("存储消息失败: %w", err)
	}

	// 返回前展开参与者，与历史接口的形状保持一致。
	full, err := s.msgRepo.GetByIDWithParticipants(ctx, msg.ID)
	if err != nil {
		return nil, fmt.Errorf("读取已存储消息 %d 失败: %w", msg.ID, err)
	}
	full.Sender.PasswordHash = ""
	full.Receiver.PasswordHash = ""
	return full, nil
}

// GetConversation 返回当前用户与另一用户之间的全部消息。
func (s *messageService) GetConversation(ctx context.Context, userID, otherID uint) ([]*models.Message, error) {
	if _, err := s.userRepo.GetByID(ctx, otherID); errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrReceiverNotFound
	} else if err != nil {
		return nil, fmt.Errorf("查找对方用户 %d 失败: %w", otherID, err)
	}

	messages, err := s.msgRepo.ListBetween(ctx, userID, otherID)
	if err != nil {
		return nil, fmt.Errorf("获取会话消息失败: %w", err)
	}
	for _, m := range messages {
		m.Sender.PasswordHash = ""
		m.Receiver.PasswordHash = ""
	}
	return messages, nil
}

// DeleteMessage 删除一条消息，仅发送者可操作。
func (s *messageService) DeleteMessage(ctx context.Context, userID, messageID uint) error {
	msg, err := s.msgRepo.GetByID(ctx, messageID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrMessageNotFound
	} else if err != nil {
		return fmt.Errorf("查找消息 %d 失败: %w", messageID, err)
	}

	if msg.SenderID != userID {
		return ErrNotMessageOwner
	}

	if err := s.msgRepo.Delete(ctx, messageID); err != nil {
		return fmt.Errorf("删除消息 %d 失败: %w", messageID, err)
	}
	return nil
}
