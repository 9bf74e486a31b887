package db

import "time"

// ModelContactMessage 是联系留言的模型标识。
const ModelContactMessage = "app.message"

// ContactMessage 保存前台联系表单提交的留言，创建后不再修改。
type ContactMessage struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"size:100"`
	Subject   string    `gorm:"size:100"`
	Email     string    `gorm:"size:254"`
	Message   string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"index"`
}

// NewsletterSubscription 记录订阅了站点通讯的邮箱。
type NewsletterSubscription struct {
	ID        uint   `gorm:"primaryKey"`
	Email     string `gorm:"size:254;uniqueIndex;not null"`
	CreatedAt time.Time
}
