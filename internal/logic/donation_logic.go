package logic

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sankha1545/Bhakasamilani/internal/apperr"
	"github.com/sankha1545/Bhakasamilani/internal/config"
	"github.com/sankha1545/Bhakasamilani/internal/logger"
	"github.com/sankha1545/Bhakasamilani/internal/model"
	"github.com/sankha1545/Bhakasamilani/internal/payment"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	msgInvalidAmount      = "Invalid amount"
	msgMissingDonor       = "Missing donor details"
	msgAmountOutOfRange   = "Amount out of allowed range"
	msgCreateOrderFailed  = "Unable to create order"
	msgInvalidPaymentData = "Invalid payment data"
	msgDonationNotFound   = "Donation not found"
	msgSignatureMismatch  = "Signature verification failed"
	msgVerifyFailed       = "Unable to verify payment"
)

// CreateOrderInput 下单参数，Amount 为 nil 表示未提供
type CreateOrderInput struct {
	Amount     *float64
	DonorName  string
	DonorEmail string
	DonorPhone string
}

// CreateOrderResult 返回给前端 checkout 的订单信息
type CreateOrderResult struct {
	OrderId  string
	Amount   int64 // 网关订单金额，最小货币单位
	Currency string
	KeyId    string
}

// VerifyInput checkout 完成后浏览器回传的支付信息
type VerifyInput struct {
	OrderId   string
	PaymentId string
	Signature string
}

// VerifyResult 验签成功后的捐赠信息
type VerifyResult struct {
	Donation  *model.DonationModel
	ReceiptNo string
}

// TopDonor 累计成功捐赠金额排行
type TopDonor struct {
	Email       string
	Name        string
	TotalAmount int64
}

// DonationFilter 后台列表筛选，金额为主币种单位
type DonationFilter struct {
	MinAmount *int64
	MaxAmount *int64
}

// DonationLogic 捐赠业务逻辑
type DonationLogic struct {
	db       *gorm.DB
	gateway  payment.OrderCreator
	verifier *payment.Verifier
	cfg      config.DonationConfig
	node     *snowflake.Node
}

// NewDonationLogic 创建捐赠业务逻辑
func NewDonationLogic(db *gorm.DB, gateway payment.OrderCreator, verifier *payment.Verifier, cfg config.DonationConfig) (*DonationLogic, error) {
	node, err := snowflake.NewNode(cfg.NodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to create receipt id node: %w", err)
	}

	return &DonationLogic{
		db:       db,
		gateway:  gateway,
		verifier: verifier,
		cfg:      cfg,
		node:     node,
	}, nil
}

// CreateOrder 创建网关订单，成功后才写入 PENDING 记录
func (l *DonationLogic) CreateOrder(in CreateOrderInput) (*CreateOrderResult, error) {
	amount, err := l.validateCreateOrder(&in)
	if err != nil {
		return nil, err
	}

	order, err := l.gateway.CreateOrder(payment.OrderRequest{
		AmountMinor: amount * 100,
		Currency:    l.cfg.Currency,
		Receipt:     "donation_" + l.node.Generate().String(),
		Notes: map[string]string{
			"donorName":  in.DonorName,
			"donorEmail": in.DonorEmail,
			"donorPhone": in.DonorPhone,
		},
	})
	if err != nil {
		logger.Error("Failed to create gateway order for %s: %v", in.DonorEmail, err)
		return nil, apperr.Upstream(msgCreateOrderFailed, err)
	}

	currency := order.Currency
	if currency == "" {
		currency = l.cfg.Currency
	}

	donation := &model.DonationModel{
		OrderId:    order.ID,
		Amount:     amount,
		Currency:   currency,
		DonorName:  in.DonorName,
		DonorEmail: in.DonorEmail,
		DonorPhone: in.DonorPhone,
		Status:     model.DonationStatusPending,
	}
	if err := l.db.Create(donation).Error; err != nil {
		logger.Error("Failed to persist donation for order %s: %v", order.ID, err)
		return nil, apperr.Upstream(msgCreateOrderFailed, err)
	}

	logger.Info("Created order %s for donation %d, amount %d %s", order.ID, donation.Id, amount, currency)

	return &CreateOrderResult{
		OrderId:  order.ID,
		Amount:   order.AmountMinor,
		Currency: currency,
		KeyId:    l.gateway.KeyID(),
	}, nil
}

// validateCreateOrder 校验下单参数，返回取整后的金额
func (l *DonationLogic) validateCreateOrder(in *CreateOrderInput) (int64, error) {
	if in.Amount == nil || *in.Amount < 1 {
		return 0, apperr.Validation(msgInvalidAmount)
	}

	in.DonorName = strings.TrimSpace(in.DonorName)
	in.DonorEmail = strings.TrimSpace(in.DonorEmail)
	in.DonorPhone = strings.TrimSpace(in.DonorPhone)
	if in.DonorName == "" || in.DonorEmail == "" || in.DonorPhone == "" {
		return 0, apperr.Validation(msgMissingDonor)
	}

	// 先以 decimal 比较区间，超出 int64 的金额不能直接取 IntPart
	rounded := decimal.NewFromFloat(*in.Amount).Round(0)
	if rounded.LessThan(decimal.NewFromInt(l.cfg.MinAmount)) || rounded.GreaterThan(decimal.NewFromInt(l.cfg.MaxAmount)) {
		return 0, apperr.Validation(msgAmountOutOfRange)
	}
	return rounded.IntPart(), nil
}

// VerifyPayment 校验 checkout 回调签名并写入终态。
// 该路径信任浏览器提交的数据，webhook 才是权威结果，二者都无条件覆盖写入。
func (l *DonationLogic) VerifyPayment(in VerifyInput) (*VerifyResult, error) {
	if in.OrderId == "" || in.PaymentId == "" || in.Signature == "" {
		return nil, apperr.Validation(msgInvalidPaymentData)
	}

	var donation model.DonationModel
	if err := l.db.Where("order_id = ?", in.OrderId).First(&donation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(msgDonationNotFound)
		}
		return nil, apperr.Upstream(msgVerifyFailed, err)
	}

	if !l.verifier.VerifyPayment(in.OrderId, in.PaymentId, in.Signature) {
		if err := l.markTerminal(&donation, model.DonationStatusFailed, in.PaymentId, in.Signature); err != nil {
			return nil, apperr.Upstream(msgVerifyFailed, err)
		}
		logger.Warn("Payment signature mismatch for order %s (payment %s), donation %d marked FAILED",
			in.OrderId, in.PaymentId, donation.Id)
		return nil, apperr.SignatureMismatch(msgSignatureMismatch)
	}

	if err := l.markTerminal(&donation, model.DonationStatusSuccess, in.PaymentId, in.Signature); err != nil {
		return nil, apperr.Upstream(msgVerifyFailed, err)
	}

	logger.Info("Verified payment %s for order %s, donation %d", in.PaymentId, in.OrderId, donation.Id)

	return &VerifyResult{
		Donation:  &donation,
		ReceiptNo: l.ReceiptNumber(donation.Id),
	}, nil
}

// markTerminal 写入终态及支付凭据
func (l *DonationLogic) markTerminal(donation *model.DonationModel, status model.DonationStatus, paymentId, signature string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"status":     string(status),
		"payment_id": paymentId,
		"signature":  signature,
		"updated_at": now,
	}
	if err := l.db.Model(&model.DonationModel{}).Where("id = ?", donation.Id).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update donation %d: %w", donation.Id, err)
	}

	donation.Status = status
	donation.PaymentId = &paymentId
	donation.Signature = &signature
	donation.UpdatedAt = now
	return nil
}

// UpdateStatusByOrder 按订单号批量更新，无匹配行时静默返回 0
func (l *DonationLogic) UpdateStatusByOrder(orderId string, status model.DonationStatus, paymentId string) (int64, error) {
	result := l.db.Model(&model.DonationModel{}).
		Where("order_id = ?", orderId).
		Updates(map[string]interface{}{
			"status":     string(status),
			"payment_id": paymentId,
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to update donations for order %s: %w", orderId, result.Error)
	}
	return result.RowsAffected, nil
}

// ReceiptNumber 由内部 id 生成收据号，如 42 -> SRTK000042
func (l *DonationLogic) ReceiptNumber(id int64) string {
	return fmt.Sprintf("%s%06d", l.cfg.ReceiptPrefix, id)
}

// ListDonations 获取捐赠列表，按创建时间倒序
func (l *DonationLogic) ListDonations(filter DonationFilter) ([]model.DonationModel, error) {
	query := l.db.Model(&model.DonationModel{})
	if filter.MinAmount != nil {
		query = query.Where("amount >= ?", *filter.MinAmount)
	}
	if filter.MaxAmount != nil {
		query = query.Where("amount <= ?", *filter.MaxAmount)
	}

	var donations []model.DonationModel
	if err := query.Order("created_at DESC").Order("id DESC").Find(&donations).Error; err != nil {
		return nil, fmt.Errorf("获取捐赠列表失败: %w", err)
	}
	return donations, nil
}

// TopDonors 按成功捐赠总额排序的前 limit 位捐赠人
func (l *DonationLogic) TopDonors(limit int) ([]TopDonor, error) {
	var donors []TopDonor
	err := l.db.Model(&model.DonationModel{}).
		Select("donor_email AS email, donor_name AS name, COALESCE(SUM(amount), 0) AS total_amount").
		Where("status = ?", string(model.DonationStatusSuccess)).
		Group("donor_email, donor_name").
		Order("total_amount DESC").
		Limit(limit).
		Scan(&donors).Error
	if err != nil {
		return nil, fmt.Errorf("获取捐赠排行失败: %w", err)
	}
	return donors, nil
}
