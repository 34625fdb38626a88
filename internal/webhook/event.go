package webhook

import (
	"encoding/json"
	"errors"
	"fmt"
)

const (
	EventPaymentCaptured = "payment.captured"
	EventPaymentFailed   = "payment.failed"
)

// ErrMissingPaymentEntity payment.* 事件缺少 payload.payment.entity
var ErrMissingPaymentEntity = errors.New("webhook payload has no payment entity")

// Event 网关 webhook 事件，只解析用到的字段
type Event struct {
	Event   string  `json:"event"`
	Payload Payload `json:"payload"`
}

type Payload struct {
	Payment *PaymentWrapper `json:"payment"`
}

type PaymentWrapper struct {
	Entity *PaymentEntity `json:"entity"`
}

// PaymentEntity 支付实体
type PaymentEntity struct {
	ID      string `json:"id"`
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

// Parse 解析已通过签名校验的请求体
func Parse(body []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("invalid webhook body: %w", err)
	}
	return &event, nil
}

// PaymentEntity 返回事件中的支付实体
func (e *Event) PaymentEntity() (*PaymentEntity, error) {
	if e.Payload.Payment == nil || e.Payload.Payment.Entity == nil {
		return nil, ErrMissingPaymentEntity
	}
	return e.Payload.Payment.Entity, nil
}
