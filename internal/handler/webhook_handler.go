package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sankha1545/Bhakasamilani/internal/logic"
)

const (
	SignatureHeader = "X-Razorpay-Signature"
	EventIdHeader   = "X-Razorpay-Event-Id"
)

// maxWebhookBody 网关事件体远小于该值
const maxWebhookBody = 1 << 20

type WebhookHandler struct {
	webhookLogic *logic.WebhookLogic
}

func NewWebhookHandler(webhookLogic *logic.WebhookLogic) *WebhookHandler {
	return &WebhookHandler{webhookLogic: webhookLogic}
}

// Receive 接收网关 webhook，验签需要原始字节
func (h *WebhookHandler) Receive(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Webhook error")
		return
	}

	err = h.webhookLogic.Handle(logic.WebhookDelivery{
		Body:           body,
		Signature:      c.GetHeader(SignatureHeader),
		GatewayEventId: c.GetHeader(EventIdHeader),
	})
	if err != nil {
		respondError(c, err, "Webhook error")
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
