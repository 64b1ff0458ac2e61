package models

// Profile 保存用户的扩展个人资料，与 User 分表存储。
type Profile struct {
	BaseModel
	Gender       string `gorm:"type:varchar(10)" json:"gender,omitempty"` // "Male" / "Female"
	Contact      string `gorm:"type:varchar(20)" json:"contact,omitempty"`
	Address      string `gorm:"type:varchar(255)" json:"address,omitempty"`
	Bio          string `gorm:"type:text" json:"bio,omitempty"`
	Profession   string `gorm:"type:varchar(100)" json:"profession,omitempty"`
	ProfileImage string `gorm:"type:varchar(255)" json:"profileImage,omitempty"` // 上传后可访问的 URL
}

// TableName 指定 Profile 模型的表名。
func (Profile) TableName() string {
	return "profiles"
}
