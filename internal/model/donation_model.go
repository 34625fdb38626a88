package model

import (
	"time"
)

// DonationModel 捐赠记录
type DonationModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`

	// 支付网关信息
	OrderId   string  `json:"order_id" gorm:"uniqueIndex;not null"`
	PaymentId *string `json:"payment_id"`
	Signature *string `json:"signature"`

	// 金额（主币种单位，如卢比）
	Amount   int64  `json:"amount" gorm:"not null"`
	Currency string `json:"currency" gorm:"not null"`

	// 捐赠人信息
	DonorName  string `json:"donor_name" gorm:"not null"`
	DonorEmail string `json:"donor_email" gorm:"not null;index"`
	DonorPhone string `json:"donor_phone" gorm:"not null"`

	Status DonationStatus `json:"status" gorm:"not null;default:'PENDING';index"`
}

// DonationStatus 捐赠状态
type DonationStatus string

const (
	DonationStatusPending  DonationStatus = "PENDING"  // 已下单待支付
	DonationStatusSuccess  DonationStatus = "SUCCESS"  // 支付成功
	DonationStatusFailed   DonationStatus = "FAILED"   // 支付失败或签名不符
	DonationStatusRefunded DonationStatus = "REFUNDED" // 已退款（当前流程不会写入）
)

// TableName 自定义表名
func (DonationModel) TableName() string {
	return "donation"
}
