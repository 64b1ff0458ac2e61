package storage

import (
	"context"

	"gorm.io/gorm"

	"quickchat/internal/models"
)

// MessageRepository 定义了消息数据操作的接口。
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	GetByID(ctx context.Context, id uint) (*models.Message, error)
	GetByIDWithParticipants(ctx context.Context, id uint) (*models.Message, error)
	// ListBetween 返回两个用户之间双向的全部消息，按创建时间升序。
	ListBetween(ctx context.Context, userA, userB uint) ([]*models.Message, error)
	Delete(ctx context.Context, id uint) error
}

// gormMessageRepository 使用 GORM 实现 MessageRepository。
type gormMessageRepository struct {
	db *gorm.DB
}

// NewGormMessageRepository 创建一个新的基于 GORM 的 MessageRepository。
func NewGormMessageRepository(db *gorm.DB) MessageRepository {
	return &gormMessageRepository{db: db}
}

// Create 在数据库中创建一条新的消息记录。
func (r *gormMessageRepository) Create(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

// GetByID 通过ID检索消息，不加载关联。
func (r *gormMessageRepository) GetByID(ctx context.Context, id uint) (*models.Message, error) {
	var message models.Message
	err := r.db.WithContext(ctx).First(&message, id).Error
	if err != nil {
		return nil, err
	}
	return &message, nil
}

// GetByIDWithParticipants 通过ID检索消息并展开发送者和接收者（含资料）。
func (r *gormMessageRepository) GetByIDWithParticipants(ctx context.Context, id uint) (*models.Message, error) {
	var message models.Message
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Preload("Sender.Profile").
		Preload("Receiver").
		Preload("Receiver.Profile").
		First(&message, id).Error
	if err != nil {
		return nil, err
	}
	return &message, nil
}

// ListBetween 检索两个用户之间的会话历史，双向，按创建时间升序。
func (r *gormMessageRepository) ListBetween(ctx context.Context, userA, userB uint) ([]*models.Message, error) {
	var messages []*models.Message
	err := r.db.WithContext(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userA, userB, userB, userA).
		Order("created_at ASC").
		Preload("Sender").
		Preload("Sender.Profile").
		Preload("Receiver").
		Preload("Receiver.Profile").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// Delete 物理删除一条消息。删除不会向对端的在线会话推送任何事件，
// 对端视图只有在下一次拉取历史时才会反映删除。
func (r *gormMessageRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Unscoped().Delete(&models.Message{}, id).Error
}
