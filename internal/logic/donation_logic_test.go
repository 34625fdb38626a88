package logic

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"testing"

	"github.com/sankha1545/Bhakasamilani/internal/apperr"
	"github.com/sankha1545/Bhakasamilani/internal/config"
	"github.com/sankha1545/Bhakasamilani/internal/model"
	"github.com/sankha1545/Bhakasamilani/internal/payment"
	"github.com/sankha1545/Bhakasamilani/internal/testutil"
	"gorm.io/gorm"
)

const (
	testKeySecret     = "key_secret_test"
	testWebhookSecret = "webhook_secret_test"
)

// fakeGateway implements payment.OrderCreator for testing
type fakeGateway struct {
	CreateOrderFunc func(req payment.OrderRequest) (*payment.Order, error)
	requests        []payment.OrderRequest
	seq             int
}

func (g *fakeGateway) CreateOrder(req payment.OrderRequest) (*payment.Order, error) {
	g.requests = append(g.requests, req)
	if g.CreateOrderFunc != nil {
		return g.CreateOrderFunc(req)
	}
	g.seq++
	return &payment.Order{
		ID:          fmt.Sprintf("order_test_%d", g.seq),
		AmountMinor: req.AmountMinor,
		Currency:    req.Currency,
		Receipt:     req.Receipt,
	}, nil
}

func (g *fakeGateway) KeyID() string {
	return "rzp_test_key"
}

func testDonationConfig() config.DonationConfig {
	return config.DonationConfig{
		MinAmount:     10,
		MaxAmount:     1000000,
		Currency:      "INR",
		ReceiptPrefix: "SRTK",
		Timezone:      "UTC",
		NodeID:        1,
	}
}

func newTestDonationLogic(t *testing.T, gw *fakeGateway) (*DonationLogic, *gorm.DB) {
	t.Helper()
	db := testutil.NewTestDB(t)
	l, err := NewDonationLogic(db, gw, payment.NewVerifier(testKeySecret, testWebhookSecret), testDonationConfig())
	if err != nil {
		t.Fatalf("NewDonationLogic: %v", err)
	}
	return l, db
}

func sign(secret, payload string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(payload))
	return hex.EncodeToString(h.Sum(nil))
}

func amount(v float64) *float64 {
	return &v
}

func validOrderInput(v float64) CreateOrderInput {
	return CreateOrderInput{
		Amount:     amount(v),
		DonorName:  "Asha Devi",
		DonorEmail: "asha@example.com",
		DonorPhone: "9876543210",
	}
}

func loadDonation(t *testing.T, db *gorm.DB, orderId string) model.DonationModel {
	t.Helper()
	var d model.DonationModel
	if err := db.Where("order_id = ?", orderId).First(&d).Error; err != nil {
		t.Fatalf("load donation %s: %v", orderId, err)
	}
	return d
}

func countDonations(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&model.DonationModel{}).Count(&n).Error; err != nil {
		t.Fatalf("count donations: %v", err)
	}
	return n
}

func TestCreateOrder_PersistsPendingDonation(t *testing.T) {
	gw := &fakeGateway{}
	l, db := newTestDonationLogic(t, gw)

	result, err := l.CreateOrder(validOrderInput(500.4))
	if err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}

	if len(gw.requests) != 1 {
		t.Fatalf("gateway calls = %d, want 1", len(gw.requests))
	}
	req := gw.requests[0]
	if req.AmountMinor != 50000 {
		t.Errorf("gateway amount = %d, want 50000", req.AmountMinor)
	}
	if req.Currency != "INR" {
		t.Errorf("gateway currency = %q, want INR", req.Currency)
	}
	if req.Notes["donorEmail"] != "asha@example.com" {
		t.Errorf("gateway notes = %v", req.Notes)
	}

	if result.Amount != 50000 || result.KeyId != "rzp_test_key" || result.OrderId != "order_test_1" {
		t.Errorf("result = %+v", result)
	}

	d := loadDonation(t, db, result.OrderId)
	if d.Status != model.DonationStatusPending {
		t.Errorf("status = %s, want PENDING", d.Status)
	}
	if d.Amount != 500 {
		t.Errorf("stored amount = %d, want 500", d.Amount)
	}
	if d.PaymentId != nil || d.Signature != nil {
		t.Errorf("payment fields set on new donation: %+v", d)
	}
}

func TestCreateOrder_RoundsIntoRange(t *testing.T) {
	l, db := newTestDonationLogic(t, &fakeGateway{})

	result, err := l.CreateOrder(validOrderInput(9.6))
	if err != nil {
		t.Fatalf("CreateOrder(9.6) error = %v", err)
	}
	if d := loadDonation(t, db, result.OrderId); d.Amount != 10 {
		t.Errorf("stored amount = %d, want 10", d.Amount)
	}
}

func TestCreateOrder_Validation(t *testing.T) {
	tests := []struct {
		name    string
		input   CreateOrderInput
		wantMsg string
	}{
		{"missing amount", CreateOrderInput{DonorName: "a", DonorEmail: "b", DonorPhone: "c"}, msgInvalidAmount},
		{"amount below one", validOrderInput(0.5), msgInvalidAmount},
		{"negative amount", validOrderInput(-20), msgInvalidAmount},
		{"missing name", CreateOrderInput{Amount: amount(100), DonorEmail: "b", DonorPhone: "c"}, msgMissingDonor},
		{"blank phone", CreateOrderInput{Amount: amount(100), DonorName: "a", DonorEmail: "b", DonorPhone: "  "}, msgMissingDonor},
		{"below minimum", validOrderInput(5), msgAmountOutOfRange},
		{"above maximum", validOrderInput(1000001), msgAmountOutOfRange},
		{"beyond int64", validOrderInput(18446744073709555712), msgAmountOutOfRange},
		{"huge amount", validOrderInput(1e30), msgAmountOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &fakeGateway{}
			l, db := newTestDonationLogic(t, gw)

			_, err := l.CreateOrder(tt.input)
			if !apperr.Is(err, apperr.KindValidation) {
				t.Fatalf("error = %v, want validation error", err)
			}
			if got := apperr.Message(err, ""); got != tt.wantMsg {
				t.Errorf("message = %q, want %q", got, tt.wantMsg)
			}
			if len(gw.requests) != 0 {
				t.Errorf("gateway called %d times", len(gw.requests))
			}
			if n := countDonations(t, db); n != 0 {
				t.Errorf("donations = %d, want 0", n)
			}
		})
	}
}

func TestCreateOrder_GatewayFailureLeavesNoRow(t *testing.T) {
	gw := &fakeGateway{
		CreateOrderFunc: func(req payment.OrderRequest) (*payment.Order, error) {
			return nil, errors.New("gateway unavailable")
		},
	}
	l, db := newTestDonationLogic(t, gw)

	_, err := l.CreateOrder(validOrderInput(100))
	if !apperr.Is(err, apperr.KindUpstream) {
		t.Fatalf("error = %v, want upstream error", err)
	}
	if got := apperr.Message(err, ""); got != msgCreateOrderFailed {
		t.Errorf("message = %q", got)
	}
	if n := countDonations(t, db); n != 0 {
		t.Errorf("donations = %d, want 0", n)
	}
}

func TestVerifyPayment_Success(t *testing.T) {
	l, db := newTestDonationLogic(t, &fakeGateway{})
	order, err := l.CreateOrder(validOrderInput(250))
	if err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}

	sig := sign(testKeySecret, order.OrderId+"|pay_001")
	result, err := l.VerifyPayment(VerifyInput{OrderId: order.OrderId, PaymentId: "pay_001", Signature: sig})
	if err != nil {
		t.Fatalf("VerifyPayment() error = %v", err)
	}

	if result.ReceiptNo != "SRTK000001" {
		t.Errorf("receipt = %q, want SRTK000001", result.ReceiptNo)
	}
	if result.Donation.Status != model.DonationStatusSuccess {
		t.Errorf("result status = %s", result.Donation.Status)
	}

	d := loadDonation(t, db, order.OrderId)
	if d.Status != model.DonationStatusSuccess {
		t.Errorf("stored status = %s, want SUCCESS", d.Status)
	}
	if d.PaymentId == nil || *d.PaymentId != "pay_001" {
		t.Errorf("payment id = %v", d.PaymentId)
	}
	if d.Signature == nil || *d.Signature != sig {
		t.Errorf("signature = %v", d.Signature)
	}
}

func TestVerifyPayment_BadSignatureMarksFailed(t *testing.T) {
	l, db := newTestDonationLogic(t, &fakeGateway{})
	order, err := l.CreateOrder(validOrderInput(250))
	if err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}

	in := VerifyInput{OrderId: order.OrderId, PaymentId: "pay_bad", Signature: "deadbeef"}
	for i := 0; i < 2; i++ {
		_, err := l.VerifyPayment(in)
		if !apperr.Is(err, apperr.KindSignatureMismatch) {
			t.Fatalf("attempt %d: error = %v, want signature mismatch", i, err)
		}
		if got := apperr.Message(err, ""); got != msgSignatureMismatch {
			t.Errorf("message = %q", got)
		}

		d := loadDonation(t, db, order.OrderId)
		if d.Status != model.DonationStatusFailed {
			t.Errorf("attempt %d: status = %s, want FAILED", i, d.Status)
		}
		if d.PaymentId == nil || *d.PaymentId != "pay_bad" {
			t.Errorf("payment id = %v", d.PaymentId)
		}
		if d.Signature == nil || *d.Signature != "deadbeef" {
			t.Errorf("signature = %v", d.Signature)
		}
	}
}

func TestVerifyPayment_UnknownOrder(t *testing.T) {
	l, _ := newTestDonationLogic(t, &fakeGateway{})

	sig := sign(testKeySecret, "order_missing|pay_1")
	_, err := l.VerifyPayment(VerifyInput{OrderId: "order_missing", PaymentId: "pay_1", Signature: sig})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("error = %v, want not found", err)
	}
	if got := apperr.Message(err, ""); got != msgDonationNotFound {
		t.Errorf("message = %q", got)
	}
}

func TestVerifyPayment_MissingFields(t *testing.T) {
	l, _ := newTestDonationLogic(t, &fakeGateway{})

	inputs := []VerifyInput{
		{PaymentId: "p", Signature: "s"},
		{OrderId: "o", Signature: "s"},
		{OrderId: "o", PaymentId: "p"},
	}
	for _, in := range inputs {
		_, err := l.VerifyPayment(in)
		if !apperr.Is(err, apperr.KindValidation) {
			t.Errorf("VerifyPayment(%+v) error = %v, want validation", in, err)
		}
	}
}

func TestUpdateStatusByOrder_NoMatch(t *testing.T) {
	l, _ := newTestDonationLogic(t, &fakeGateway{})

	n, err := l.UpdateStatusByOrder("order_unknown", model.DonationStatusSuccess, "pay_x")
	if err != nil {
		t.Fatalf("UpdateStatusByOrder() error = %v", err)
	}
	if n != 0 {
		t.Errorf("rows = %d, want 0", n)
	}
}

func TestListDonationsAndTopDonors(t *testing.T) {
	l, db := newTestDonationLogic(t, &fakeGateway{})

	seed := []model.DonationModel{
		{OrderId: "o1", Amount: 100, DonorName: "A", DonorEmail: "a@x.org", Status: model.DonationStatusSuccess},
		{OrderId: "o2", Amount: 300, DonorName: "A", DonorEmail: "a@x.org", Status: model.DonationStatusSuccess},
		{OrderId: "o3", Amount: 250, DonorName: "B", DonorEmail: "b@x.org", Status: model.DonationStatusSuccess},
		{OrderId: "o4", Amount: 9000, DonorName: "C", DonorEmail: "c@x.org", Status: model.DonationStatusFailed},
		{OrderId: "o5", Amount: 50, DonorName: "D", DonorEmail: "d@x.org", Status: model.DonationStatusPending},
	}
	for i := range seed {
		seed[i].Currency = "INR"
		if err := db.Create(&seed[i]).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	all, err := l.ListDonations(DonationFilter{})
	if err != nil {
		t.Fatalf("ListDonations() error = %v", err)
	}
	if len(all) != 5 || all[0].OrderId != "o5" {
		t.Errorf("ListDonations() = %d rows, first %q; want 5 rows newest first", len(all), all[0].OrderId)
	}

	lo, hi := int64(100), int64(300)
	filtered, err := l.ListDonations(DonationFilter{MinAmount: &lo, MaxAmount: &hi})
	if err != nil {
		t.Fatalf("ListDonations(filter) error = %v", err)
	}
	if len(filtered) != 3 {
		t.Errorf("filtered rows = %d, want 3", len(filtered))
	}

	donors, err := l.TopDonors(5)
	if err != nil {
		t.Fatalf("TopDonors() error = %v", err)
	}
	if len(donors) != 2 {
		t.Fatalf("TopDonors() = %+v, want 2 donors", donors)
	}
	if donors[0].Email != "a@x.org" || donors[0].TotalAmount != 400 {
		t.Errorf("top donor = %+v, want a@x.org with 400", donors[0])
	}
	if donors[1].Email != "b@x.org" || donors[1].TotalAmount != 250 {
		t.Errorf("second donor = %+v", donors[1])
	}
}
