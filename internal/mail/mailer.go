package mail

import (
	"context"
	"fmt"

	gomail "gopkg.in/gomail.v2"

	"quickchat/internal/config"
)

// Mailer 定义了对外发送邮件的接口。
type Mailer interface {
	// SendVerificationOTP 向注册邮箱发送账户验证码。
	SendVerificationOTP(ctx context.Context, toEmail, name, otp string) error
}

// smtpMailer 是 Mailer 的 SMTP 实现，基于 gomail。
type smtpMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPMailer 创建一个新的 SMTP Mailer 实例。
func NewSMTPMailer(cfg config.MailConfig) Mailer {
	return &smtpMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

// SendVerificationOTP 发送账户验证 OTP 邮件。
func (m *smtpMailer) SendVerificationOTP(_ context.Context, toEmail, name, otp string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", toEmail)
	msg.SetHeader("Subject", "Account Verification OTP")
	msg.SetBody("text/html", accountVerificationTemplate(name, otp))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("发送验证邮件到 %s 失败: %w", toEmail, err)
	}
	return nil
}
