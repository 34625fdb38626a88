package model

import (
	"time"
)

// ContactMessageModel 联系表单留言
type ContactMessageModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	Name    string  `json:"name" gorm:"not null"`
	Email   string  `json:"email" gorm:"not null"`
	Phone   *string `json:"phone"`
	Subject *string `json:"subject"`
	Message string  `json:"message" gorm:"type:text;not null"`
}

// TableName 自定义表名
func (ContactMessageModel) TableName() string {
	return "contact_message"
}
