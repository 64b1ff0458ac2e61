package models

// Message 代表存储在数据库中的一条单聊消息。
// Body 和 ImageURL 至少有一个非空。
type Message struct {
	BaseModel
	SenderID   uint   `gorm:"index;not null" json:"senderId"`
	ReceiverID uint   `gorm:"index;not null" json:"receiverId"`
	Body       string `gorm:"type:text" json:"message"`
	ImageURL   string `gorm:"type:varchar(255)" json:"image,omitempty"`

	// 关联关系
	Sender   User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Receiver User `gorm:"foreignKey:ReceiverID" json:"receiver,omitempty"`
}

// TableName 指定 Message 模型的表名。
func (Message) TableName() string {
	return "messages"
}
