package webhook

import (
	"github.com/sankha1545/Bhakasamilani/internal/logger"
	"github.com/sankha1545/Bhakasamilani/internal/model"
)

// DonationUpdater 按网关订单号批量更新捐赠状态
type DonationUpdater interface {
	UpdateStatusByOrder(orderId string, status model.DonationStatus, paymentId string) (int64, error)
}

// PaymentStatusProcessor 将 payment.* 事件映射为捐赠终态
type PaymentStatusProcessor struct {
	eventType string
	status    model.DonationStatus
	updater   DonationUpdater
}

// NewPaymentCapturedProcessor payment.captured -> SUCCESS
func NewPaymentCapturedProcessor(updater DonationUpdater) *PaymentStatusProcessor {
	return &PaymentStatusProcessor{
		eventType: EventPaymentCaptured,
		status:    model.DonationStatusSuccess,
		updater:   updater,
	}
}

// NewPaymentFailedProcessor payment.failed -> FAILED
func NewPaymentFailedProcessor(updater DonationUpdater) *PaymentStatusProcessor {
	return &PaymentStatusProcessor{
		eventType: EventPaymentFailed,
		status:    model.DonationStatusFailed,
		updater:   updater,
	}
}

// GetEventType 处理的事件类型
func (p *PaymentStatusProcessor) GetEventType() string {
	return p.eventType
}

// Process 按订单号批量更新，重复投递结果相同；无订单号或无匹配记录时静默跳过
func (p *PaymentStatusProcessor) Process(event *Event) error {
	entity, err := event.PaymentEntity()
	if err != nil {
		logger.Debug("Webhook %s has no payment entity, skipping", p.eventType)
		return nil
	}
	if entity.OrderID == "" {
		logger.Debug("Webhook %s for payment %s has no order id, skipping", p.eventType, entity.ID)
		return nil
	}

	affected, err := p.updater.UpdateStatusByOrder(entity.OrderID, p.status, entity.ID)
	if err != nil {
		return err
	}

	logger.Info("Webhook %s: order %s -> %s (%d rows)", p.eventType, entity.OrderID, p.status, affected)
	return nil
}
