package model

import (
	"time"

	"gorm.io/datatypes"
)

// WebhookEventModel 支付网关 webhook 投递记录，仅用于审计
type WebhookEventModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`

	GatewayEventId string         `json:"gateway_event_id" gorm:"index"` // x-razorpay-event-id，可能为空
	EventType      string         `json:"event_type" gorm:"not null"`
	OrderId        string         `json:"order_id" gorm:"index"`
	PaymentId      string         `json:"payment_id"`
	Payload        datatypes.JSON `json:"payload"`
	Processed      bool           `json:"processed" gorm:"default:false"`
	Error          string         `json:"error" gorm:"type:text"`
}

// TableName 自定义表名
func (WebhookEventModel) TableName() string {
	return "webhook_event"
}
