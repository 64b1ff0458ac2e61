package models

import "time"

// User 代表系统中的一个注册账户。
type User struct {
	BaseModel
	Name         string `gorm:"type:varchar(100);not null" json:"name"`
	Email        string `gorm:"type:varchar(100);uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null" json:"-"` // 不暴露密码哈希

	// 账户邮箱验证状态。注册后需通过 OTP 验证才能登录。
	IsAccountVerified  bool       `gorm:"default:false" json:"isAccountVerified"`
	VerifyOTP          string     `gorm:"type:varchar(10)" json:"-"`
	VerifyOTPExpiresAt *time.Time `json:"-"`

	// 关联的个人资料。没有填写过资料时为 nil。
	ProfileID *uint    `json:"profileId,omitempty"`
	Profile   *Profile `gorm:"foreignKey:ProfileID" json:"profile,omitempty"`
}

// TableName 指定 User 模型的表名。
func (User) TableName() string {
	return "users"
}

// SenderCard holds the profile-bearing view of a user carried on relayed
// messages. Only non-sensitive fields are included.
type SenderCard struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Email   string   `json:"email"`
	Profile *Profile `json:"profile,omitempty"`
}

// Card builds the relay view of the user.
func (u *User) Card() SenderCard {
	return SenderCard{
		ID:      u.IDString(),
		Name:    u.Name,
		Email:   u.Email,
		Profile: u.Profile,
	}
}
