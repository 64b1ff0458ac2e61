package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// GenerateOTP 生成一个 6 位数字验证码，用于注册邮箱验证。
func GenerateOTP() (string, error) {
	// [100000, 999999]，保证首位非零
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("生成 OTP 失败: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
