package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"gorm.io/gorm"

	"quickchat/internal/models"
	"quickchat/internal/storage"
)

var (
	ErrProfileNotFound = errors.New("个人资料不存在")
	ErrInvalidContact  = errors.New("联系电话必须是 10 位数字")
)

var contactPattern = regexp.MustCompile(`^\d{10}$`)

// ProfileUpdate 承载一次资料更新的字段。空字段保持原值。
type ProfileUpdate struct {
	Gender       string
	Contact      string
	Address      string
	Bio          string
	Profession   string
	ProfileImage string // 上传完成后的 URL，可为空
}

// UserService 定义了用户相关服务的接口。
type UserService interface {
	GetUserProfile(ctx context.Context, userID uint) (*models.User, error)
	// UpdateUserProfile 更新资料，首次更新时创建 Profile 记录。
	UpdateUserProfile(ctx context.Context, userID uint, update ProfileUpdate) (*models.Profile, error)
	DeleteUserProfile(ctx context.Context, userID uint) error
	// ListChatUsers 返回除当前用户外的全部用户，作为聊天选择列表。
	ListChatUsers(ctx context.Context, currentUserID uint) ([]models.User, error)
	SearchUsers(ctx context.Context, name string, currentUserID uint) ([]models.User, error)

	// ResolveSender 供实时中继层将发送者ID展开为带资料的用户记录。
	ResolveSender(ctx context.Context, userID string) (*models.User, error)
}

// userService 是 UserService 的实现。
type userService struct {
	userRepo    storage.UserRepository
	profileRepo storage.ProfileRepository
}

// NewUserService 创建一个新的 UserService 实例。
func NewUserService(userRepo storage.UserRepository, profileRepo storage.ProfileRepository) UserService {
	return &userService{userRepo: userRepo, profileRepo: profileRepo}
}

// GetUserProfile 获取用户及其资料。
func (s *userService) GetUserProfile(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByIDWithProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("获取用户 %d 失败: %w", userID, err)
	}
	user.PasswordHash = "" // 确保返回前清理
	return user, nil
}

// UpdateUserProfile 更新用户的个人资料，必要时创建资料记录。
func (s *userService) UpdateUserProfile(ctx context.Context, userID uint, update ProfileUpdate) (*models.Profile, error) {
	if update.Contact != "" && !contactPattern.MatchString(update.Contact) {
		return nil, ErrInvalidContact
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("更新资料失败，用户 %d 未找到: %w", userID, err)
	}

	if user.ProfileID != nil {
		profile, err := s.profileRepo.GetByID(ctx, *user.ProfileID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		} else if err != nil {
			return nil, fmt.Errorf("获取资料 %d 失败: %w", *user.ProfileID, err)
		}

		applyProfileUpdate(profile, update)
		if err := s.profileRepo.Update(ctx, profile); err != nil {
			return nil, fmt.Errorf("更新资料失败: %w", err)
		}
		return profile, nil
	}

	profile := &models.Profile{}
	applyProfileUpdate(profile, update)
	if err := s.profileRepo.Create(ctx, profile); err != nil {
		return nil, fmt.Errorf("创建资料失败: %w", err)
	}

	user.ProfileID = &profile.ID
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("关联资料到用户 %d 失败: %w", userID, err)
	}
	return profile, nil
}

// applyProfileUpdate 按需覆盖资料字段，空值保持原状。
func applyProfileUpdate(profile *models.Profile, update ProfileUpdate) {
	if update.Gender != "" {
		profile.Gender = update.Gender
	}
	if update.Contact != "" {
		profile.Contact = update.Contact
	}
	if update.Address != "" {
		profile.Address = update.Address
	}
	if update.Bio != "" {
		profile.Bio = update.Bio
	}
	if update.Profession != "" {
		profile.Profession = update.Profession
	}
	if update.ProfileImage != "" {
		profile.ProfileImage = update.ProfileImage
	}
}

// DeleteUserProfile 删除用户的资料记录并解除关联。
func (s *userService) DeleteUserProfile(ctx context.Context, userID uint) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("删除资料失败，用户 %d 未找到: %w", userID, err)
	}

	if user.ProfileID == nil {
		return ErrProfileNotFound
	}

	if err := s.profileRepo.Delete(ctx, *user.ProfileID); err != nil {
		return fmt.Errorf("删除资料失败: %w", err)
	}

	user.ProfileID = nil
	user.Profile = nil
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("解除资料关联失败: %w", err)
	}
	return nil
}

// ListChatUsers 返回除当前用户外的所有用户。
func (s *userService) ListChatUsers(ctx context.Context, currentUserID uint) ([]models.User, error) {
	users, err := s.userRepo.ListOthers(ctx, currentUserID)
	if err != nil {
		return nil, fmt.Errorf("获取聊天用户列表失败: %w", err)
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

// SearchUsers 按名称搜索其他用户。
func (s *userService) SearchUsers(ctx context.Context, name string, currentUserID uint) ([]models.User, error) {
	users, err := s.userRepo.SearchByName(ctx, name, currentUserID)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

// ResolveSender 实现 relay.SenderResolver。
func (s *userService) ResolveSender(ctx context.Context, userID string) (*models.User, error) {
	id, err := storage.StrToUint(userID)
	if err != nil {
		return nil, fmt.Errorf("无效的发送者ID '%s': %w", userID, err)
	}
	user, err := s.userRepo.GetByIDWithProfile(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	} else if err != nil {
		return nil, fmt.Errorf("查找发送者 %d 失败: %w", id, err)
	}
	user.PasswordHash = ""
	return user, nil
}
