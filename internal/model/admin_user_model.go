package model

import (
	"time"
)

// AdminUserModel 后台管理员
type AdminUserModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Email    string `json:"email" gorm:"uniqueIndex;not null"`
	Password string `json:"-" gorm:"not null"` // bcrypt 哈希
}

// TableName 自定义表名
func (AdminUserModel) TableName() string {
	return "admin_user"
}
