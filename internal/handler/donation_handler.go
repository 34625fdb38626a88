package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sankha1545/Bhakasamilani/internal/logic"
)

const msgInvalidBody = "Invalid request body"

type DonationHandler struct {
	donationLogic *logic.DonationLogic
}

func NewDonationHandler(donationLogic *logic.DonationLogic) *DonationHandler {
	return &DonationHandler{donationLogic: donationLogic}
}

// CreateOrder 创建网关订单
func (h *DonationHandler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// 非 JSON 或 amount 非数字
		ErrorResponse(c, http.StatusBadRequest, "Invalid amount")
		return
	}

	result, err := h.donationLogic.CreateOrder(logic.CreateOrderInput{
		Amount:     req.Amount,
		DonorName:  req.DonorName,
		DonorEmail: req.DonorEmail,
		DonorPhone: req.DonorPhone,
	})
	if err != nil {
		respondError(c, err, "Unable to create order")
		return
	}

	c.JSON(http.StatusOK, CreateOrderResponse{
		OrderId:  result.OrderId,
		Amount:   result.Amount,
		Currency: result.Currency,
		KeyId:    result.KeyId,
	})
}

// VerifyPayment 校验 checkout 回调
func (h *DonationHandler) VerifyPayment(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid payment data")
		return
	}

	result, err := h.donationLogic.VerifyPayment(logic.VerifyInput{
		OrderId:   req.OrderId,
		PaymentId: req.PaymentId,
		Signature: req.Signature,
	})
	if err != nil {
		respondError(c, err, "Unable to verify payment")
		return
	}

	d := result.Donation
	paymentId := ""
	if d.PaymentId != nil {
		paymentId = *d.PaymentId
	}

	c.JSON(http.StatusOK, VerifyResponse{
		Success: true,
		Payment: PaymentResponse{
			PaymentId: paymentId,
			OrderId:   d.OrderId,
			Amount:    d.Amount,
			ReceiptNo: result.ReceiptNo,
			CreatedAt: d.CreatedAt,
		},
		Donor: DonorResponse{
			Name:  d.DonorName,
			Email: d.DonorEmail,
			Phone: d.DonorPhone,
		},
	})
}
