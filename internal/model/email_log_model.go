package model

import (
	"time"
)

// EmailLogModel 邮件发送记录
type EmailLogModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Recipient string      `json:"recipient" gorm:"not null"`
	ReplyTo   string      `json:"reply_to"`
	Subject   string      `json:"subject" gorm:"not null"`
	TextBody  string      `json:"text_body" gorm:"type:text"`
	HTMLBody  string      `json:"html_body" gorm:"type:text"`
	Status    EmailStatus `json:"status" gorm:"not null;index"`
	Attempts  int         `json:"attempts" gorm:"default:0"`
	LastError string      `json:"last_error" gorm:"type:text"`
}

// EmailStatus 邮件状态
type EmailStatus string

const (
	EmailStatusPending EmailStatus = "pending"
	EmailStatusSending EmailStatus = "sending" // 重试已领取，发送中
	EmailStatusSent    EmailStatus = "sent"
	EmailStatusFailed  EmailStatus = "failed"
)

// TableName 自定义表名
func (EmailLogModel) TableName() string {
	return "email_log"
}

// AllModels AutoMigrate 使用的全部模型
func AllModels() []interface{} {
	return []interface{}{
		&DonationModel{},
		&AdminUserModel{},
		&ContactMessageModel{},
		&TempleEventModel{},
		&WebhookEventModel{},
		&EmailLogModel{},
	}
}
