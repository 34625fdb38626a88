package payment

import (
	"github.com/razorpay/razorpay-go/utils"
)

// Verifier 校验支付回调与 webhook 的 HMAC-SHA256 签名
type Verifier struct {
	keySecret     string
	webhookSecret string
}

// NewVerifier 创建签名校验器
func NewVerifier(keySecret, webhookSecret string) *Verifier {
	return &Verifier{keySecret: keySecret, webhookSecret: webhookSecret}
}

// VerifyPayment 校验 checkout 回调签名，签名内容为 "order_id|payment_id"
func (v *Verifier) VerifyPayment(orderID, paymentID, signature string) bool {
	if v.keySecret == "" {
		return false
	}
	params := map[string]interface{}{
		"razorpay_order_id":   orderID,
		"razorpay_payment_id": paymentID,
	}
	return utils.VerifyPaymentSignature(params, signature, v.keySecret)
}

// WebhookEnabled 是否配置了 webhook 密钥
func (v *Verifier) WebhookEnabled() bool {
	return v.webhookSecret != ""
}

// VerifyWebhook 校验原始请求体的签名
func (v *Verifier) VerifyWebhook(body []byte, signature string) bool {
	if !v.WebhookEnabled() || signature == "" {
		return false
	}
	return utils.VerifyWebhookSignature(string(body), signature, v.webhookSecret)
}
