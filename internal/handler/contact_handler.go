package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sankha1545/Bhakasamilani/internal/logic"
)

type ContactHandler struct {
	contactLogic *logic.ContactLogic
}

func NewContactHandler(contactLogic *logic.ContactLogic) *ContactHandler {
	return &ContactHandler{contactLogic: contactLogic}
}

// Submit 提交联系表单
func (h *ContactHandler) Submit(c *gin.Context) {
	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Name, email and message are required.")
		return
	}

	err := h.contactLogic.Submit(logic.ContactInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Subject: req.Subject,
		Message: req.Message,
	})
	if err != nil {
		respondError(c, err, "Something went wrong while submitting your query.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
