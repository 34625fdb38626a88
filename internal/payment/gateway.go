package payment

import (
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
)

// OrderRequest 网关下单参数
type OrderRequest struct {
	AmountMinor int64 // 最小货币单位（paise）
	Currency    string
	Receipt     string
	Notes       map[string]string
}

// Order 网关返回的订单
type Order struct {
	ID          string
	AmountMinor int64
	Currency    string
	Receipt     string
}

// OrderCreator 网关下单能力
type OrderCreator interface {
	CreateOrder(req OrderRequest) (*Order, error)
	KeyID() string
}

// RazorpayClient 基于 razorpay-go 的网关客户端
type RazorpayClient struct {
	client *razorpay.Client
	keyID  string
}

// NewRazorpayClient 创建网关客户端
func NewRazorpayClient(keyID, keySecret string) *RazorpayClient {
	return &RazorpayClient{
		client: razorpay.NewClient(keyID, keySecret),
		keyID:  keyID,
	}
}

// KeyID 前端 checkout 使用的公开 key
func (r *RazorpayClient) KeyID() string {
	return r.keyID
}

// CreateOrder 创建自动扣款的网关订单
func (r *RazorpayClient) CreateOrder(req OrderRequest) (*Order, error) {
	notes := make(map[string]interface{}, len(req.Notes))
	for k, v := range req.Notes {
		notes[k] = v
	}

	data := map[string]interface{}{
		"amount":          req.AmountMinor,
		"currency":        req.Currency,
		"receipt":         req.Receipt,
		"payment_capture": 1,
		"notes":           notes,
	}

	body, err := r.client.Order.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("razorpay create order: %w", err)
	}

	return parseOrder(body)
}

// parseOrder 解析网关返回，数字字段经 JSON 解码后为 float64
func parseOrder(body map[string]interface{}) (*Order, error) {
	id, _ := body["id"].(string)
	if id == "" {
		return nil, fmt.Errorf("razorpay order response has no id")
	}

	order := &Order{ID: id}
	order.Currency, _ = body["currency"].(string)
	order.Receipt, _ = body["receipt"].(string)

	switch v := body["amount"].(type) {
	case float64:
		order.AmountMinor = int64(v)
	case int64:
		order.AmountMinor = v
	case int:
		order.AmountMinor = int64(v)
	}

	return order, nil
}
