package logic

import (
	"github.com/sankha1545/Bhakasamilani/internal/apperr"
	"github.com/sankha1545/Bhakasamilani/internal/logger"
	"github.com/sankha1545/Bhakasamilani/internal/model"
	"github.com/sankha1545/Bhakasamilani/internal/payment"
	"github.com/sankha1545/Bhakasamilani/internal/webhook"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	msgMissingSignature = "Missing signature"
	msgInvalidSignature = "Invalid signature"
	msgWebhookError     = "Webhook error"
)

// WebhookDelivery 一次 webhook 投递
type WebhookDelivery struct {
	Body           []byte
	Signature      string
	GatewayEventId string
}

// WebhookLogic 网关 webhook 处理：先验签，再解析，最后按事件类型分发
type WebhookLogic struct {
	db       *gorm.DB
	verifier *payment.Verifier
	manager  *webhook.ProcessorManager
}

// NewWebhookLogic 创建 webhook 业务逻辑
func NewWebhookLogic(db *gorm.DB, verifier *payment.Verifier, manager *webhook.ProcessorManager) *WebhookLogic {
	return &WebhookLogic{db: db, verifier: verifier, manager: manager}
}

// Handle 处理一次投递。按订单号幂等，网关重试同一事件结果不变。
func (l *WebhookLogic) Handle(d WebhookDelivery) error {
	if d.Signature == "" || !l.verifier.WebhookEnabled() {
		return apperr.Validation(msgMissingSignature)
	}

	if !l.verifier.VerifyWebhook(d.Body, d.Signature) {
		logger.Warn("Invalid Razorpay webhook signature (event id %q)", d.GatewayEventId)
		return apperr.SignatureMismatch(msgInvalidSignature)
	}

	event, err := webhook.Parse(d.Body)
	if err != nil {
		logger.Error("Failed to parse webhook body: %v", err)
		return apperr.Upstream(msgWebhookError, err)
	}

	handled, procErr := l.manager.ProcessEvent(event)
	l.record(d, event, handled, procErr)

	if procErr != nil {
		logger.Error("Failed to process webhook %s: %v", event.Event, procErr)
		return apperr.Upstream(msgWebhookError, procErr)
	}
	return nil
}

// record 写入审计记录，失败只记日志
func (l *WebhookLogic) record(d WebhookDelivery, event *webhook.Event, handled bool, procErr error) {
	entry := &model.WebhookEventModel{
		GatewayEventId: d.GatewayEventId,
		EventType:      event.Event,
		Payload:        datatypes.JSON(d.Body),
		Processed:      handled && procErr == nil,
	}
	if entity, err := event.PaymentEntity(); err == nil {
		entry.OrderId = entity.OrderID
		entry.PaymentId = entity.ID
	}
	if procErr != nil {
		entry.Error = procErr.Error()
	}

	if err := l.db.Create(entry).Error; err != nil {
		logger.Warn("Failed to record webhook event %s: %v", event.Event, err)
	}
}
