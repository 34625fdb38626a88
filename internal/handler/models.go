package handler

import (
	"time"

	"github.com/sankha1545/Bhakasamilani/internal/logic"
	"github.com/sankha1545/Bhakasamilani/internal/model"
)

// 捐赠相关请求模型

// CreateOrderRequest 下单请求
type CreateOrderRequest struct {
	Amount     *float64 `json:"amount"`
	DonorName  string   `json:"donorName"`
	DonorEmail string   `json:"donorEmail"`
	DonorPhone string   `json:"donorPhone"`
}

// CreateOrderResponse 下单响应，amount 为最小货币单位
type CreateOrderResponse struct {
	OrderId  string `json:"orderId"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	KeyId    string `json:"keyId"`
}

// VerifyRequest checkout 回调字段沿用网关命名
type VerifyRequest struct {
	OrderId   string `json:"razorpay_order_id"`
	PaymentId string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

type VerifyResponse struct {
	Success bool            `json:"success"`
	Payment PaymentResponse `json:"payment"`
	Donor   DonorResponse   `json:"donor"`
}

type PaymentResponse struct {
	PaymentId string    `json:"paymentId"`
	OrderId   string    `json:"orderId"`
	Amount    int64     `json:"amount"`
	ReceiptNo string    `json:"receiptNo"`
	CreatedAt time.Time `json:"createdAt"`
}

type DonorResponse struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// DonationResponse 后台列表中的捐赠记录
type DonationResponse struct {
	Id         int64     `json:"id"`
	OrderId    string    `json:"orderId"`
	PaymentId  *string   `json:"paymentId"`
	Amount     int64     `json:"amount"`
	Currency   string    `json:"currency"`
	DonorName  string    `json:"donorName"`
	DonorEmail string    `json:"donorEmail"`
	DonorPhone string    `json:"donorPhone"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type TopDonorResponse struct {
	Email       string `json:"email"`
	Name        string `json:"name"`
	TotalAmount int64  `json:"totalAmount"`
}

type AdminDonationsResponse struct {
	Donations []DonationResponse `json:"donations"`
	TopDonors []TopDonorResponse `json:"topDonors"`
}

// 管理员相关

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AdminMeResponse struct {
	AdminId int64  `json:"adminId"`
	Email   string `json:"email"`
}

// 统计相关

type ChartPointResponse struct {
	Key         string `json:"key"`
	Label       string `json:"label"`
	TotalAmount int64  `json:"totalAmount"`
	Count       int    `json:"count"`
}

type ComparisonResponse struct {
	Current  int64   `json:"current"`
	Previous int64   `json:"previous"`
	Delta    float64 `json:"delta"`
}

type AnalyticsResponse struct {
	Timeframe  string               `json:"timeframe"`
	Range      int                  `json:"range"`
	Points     []ChartPointResponse `json:"points"`
	Comparison *ComparisonResponse  `json:"comparison"`
}

// 联系表单与活动

type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

type CreateEventRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DateTime    string `json:"dateTime"`
}

type EventResponse struct {
	Id          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
}

func toDonationResponse(d model.DonationModel) DonationResponse {
	return DonationResponse{
		Id:         d.Id,
		OrderId:    d.OrderId,
		PaymentId:  d.PaymentId,
		Amount:     d.Amount,
		Currency:   d.Currency,
		DonorName:  d.DonorName,
		DonorEmail: d.DonorEmail,
		DonorPhone: d.DonorPhone,
		Status:     string(d.Status),
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

func toEventResponse(e model.TempleEventModel) EventResponse {
	return EventResponse{
		Id:          e.Id,
		Title:       e.Title,
		Description: e.Description,
		Date:        e.Date,
	}
}

func toChartPoints(points []logic.ChartPoint) []ChartPointResponse {
	resp := make([]ChartPointResponse, 0, len(points))
	for _, p := range points {
		resp = append(resp, ChartPointResponse{
			Key:         p.Key,
			Label:       p.Label,
			TotalAmount: p.TotalAmount,
			Count:       p.Count,
		})
	}
	return resp
}
