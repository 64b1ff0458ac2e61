package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"quickchat/internal/auth"
	"quickchat/internal/config"
	"quickchat/internal/mail"
	"quickchat/internal/models"
	"quickchat/internal/storage"
)

var (
	ErrUserAlreadyExists  = errors.New("该邮箱已注册")
	ErrInvalidCredentials = errors.New("无效的邮箱或密码")
	ErrUserNotFound       = errors.New("用户未找到")
	ErrAccountNotVerified = errors.New("账户尚未通过邮箱验证")
	ErrInvalidOTP         = errors.New("验证码无效")
	ErrOTPExpired         = errors.New("验证码已过期")
)

// AuthService 定义了用户认证服务的接口。
type AuthService interface {
	// Signup 创建未验证的账户并发送验证 OTP 邮件。
	Signup(ctx context.Context, name, email, password string) (*models.User, error)
	// VerifyAccount 校验 OTP，标记账户已验证并签发 JWT。
	VerifyAccount(ctx context.Context, email, otp string) (token string, user *models.User, err error)
	Login(ctx context.Context, email, password string) (token string, user *models.User, err error)
}

// authService 是 AuthService 的实现。
type authService struct {
	userRepo storage.UserRepository
	mailer   mail.Mailer
	cfg      config.Config
}

// NewAuthService 创建一个新的 AuthService 实例。
func NewAuthService(userRepo storage.UserRepository, mailer mail.Mailer, cfg config.Config) AuthService {
	return &authService{
		userRepo: userRepo,
		mailer:   mailer,
		cfg:      cfg,
	}
}

// Signup 处理用户注册逻辑。
func (s *authService) Signup(ctx context.Context, name, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	_, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil, ErrUserAlreadyExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("检查邮箱时出错: %w", err)
	}

	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("密码哈希失败: %w", err)
	}

	otp, err := auth.GenerateOTP()
	if err != nil {
		return nil, fmt.Errorf("生成验证码失败: %w", err)
	}
	otpExpiry := time.Now().Add(s.cfg.Auth.OTPExpiry)

	newUser := &models.User{
		Name:               name,
		Email:              email,
		PasswordHash:       hashedPassword,
		VerifyOTP:          otp,
		VerifyOTPExpiresAt: &otpExpiry,
	}

	if err := s.userRepo.Create(ctx, newUser); err != nil {
		return nil, fmt.Errorf("创建用户失败: %w", err)
	}

	// 邮件发送失败不回滚注册，用户可以重新请求验证码。
	if err := s.mailer.SendVerificationOTP(ctx, email, name, otp); err != nil {
		log.Printf("发送验证邮件失败 (用户 %d): %v", newUser.ID, err)
	}

	return newUser, nil
}

// VerifyAccount 校验注册邮箱收到的 OTP。
func (s *authService) VerifyAccount(ctx context.Context, email, otp string) (string, *models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, ErrUserNotFound
	} else if err != nil {
		return "", nil, fmt.Errorf("通过邮箱查找用户失败: %w", err)
	}

	if user.VerifyOTP == "" || user.VerifyOTP != otp {
		return "", nil, ErrInvalidOTP
	}
	if user.VerifyOTPExpiresAt == nil || user.VerifyOTPExpiresAt.Before(time.Now()) {
		return "", nil, ErrOTPExpired
	}

	user.IsAccountVerified = true
	user.VerifyOTP = ""
	user.VerifyOTPExpiresAt = nil
	if err := s.userRepo.Update(ctx, user); err != nil {
		return "", nil, fmt.Errorf("更新账户验证状态失败: %w", err)
	}

	token, err := auth.GenerateToken(user.ID, user.Email, s.cfg.Auth)
	if err != nil {
		return "", nil, fmt.Errorf("生成令牌失败: %w", err)
	}
	return token, user, nil
}

// Login 处理用户登录逻辑。仅已验证的账户可以登录。
func (s *authService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, ErrUserNotFound
	} else if err != nil {
		return "", nil, fmt.Errorf("通过邮箱查找用户失败: %w", err)
	}

	if !auth.CheckPasswordHash(password, user.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}

	if !user.IsAccountVerified {
		return "", nil, ErrAccountNotVerified
	}

	token, err := auth.GenerateToken(user.ID, user.Email, s.cfg.Auth)
	if err != nil {
		return "", nil, fmt.Errorf("生成令牌失败: %w", err)
	}

	return token, user, nil
}
