package model

import (
	"time"
)

// TempleEventModel 寺庙活动
type TempleEventModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Title       string    `json:"title" gorm:"not null"`
	Description string    `json:"description" gorm:"type:text"`
	Date        time.Time `json:"date" gorm:"not null;index"`
}

// TableName 自定义表名
func (TempleEventModel) TableName() string {
	return "temple_event"
}
