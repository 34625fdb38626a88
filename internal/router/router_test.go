package router

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sankha1545/Bhakasamilani/internal/auth"
	"github.com/sankha1545/Bhakasamilani/internal/config"
	"github.com/sankha1545/Bhakasamilani/internal/handler"
	"github.com/sankha1545/Bhakasamilani/internal/logic"
	"github.com/sankha1545/Bhakasamilani/internal/model"
	"github.com/sankha1545/Bhakasamilani/internal/payment"
	"github.com/sankha1545/Bhakasamilani/internal/testutil"
	"github.com/sankha1545/Bhakasamilani/internal/webhook"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	keySecret     = "rzp_key_secret"
	webhookSecret = "rzp_webhook_secret"
	adminEmail    = "admin@trust.org"
	adminPassword = "Admin@12345"
)

// stubGateway implements payment.OrderCreator for testing
type stubGateway struct {
	n int
}

func (g *stubGateway) CreateOrder(req payment.OrderRequest) (*payment.Order, error) {
	g.n++
	return &payment.Order{ID: fmt.Sprintf("order_%d", g.n), AmountMinor: req.AmountMinor, Currency: req.Currency}, nil
}

func (g *stubGateway) KeyID() string {
	return "rzp_test_public"
}

type testServer struct {
	engine *gin.Engine
	db     *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewTestDB(t)
	if _, err := logic.SeedAdmin(db, adminEmail, adminPassword, bcrypt.MinCost); err != nil {
		t.Fatalf("SeedAdmin() error = %v", err)
	}

	verifier := payment.NewVerifier(keySecret, webhookSecret)
	tokens := auth.NewTokenManager("jwt-secret", 24*time.Hour)
	donationLogic, err := logic.NewDonationLogic(db, &stubGateway{}, verifier, config.DonationConfig{
		MinAmount: 10, MaxAmount: 1000000, Currency: "INR", ReceiptPrefix: "SRTK", NodeID: 1,
	})
	if err != nil {
		t.Fatalf("NewDonationLogic() error = %v", err)
	}

	h := Handlers{
		Donation: handler.NewDonationHandler(donationLogic),
		Webhook:  handler.NewWebhookHandler(logic.NewWebhookLogic(db, verifier, webhook.NewProcessorManager(donationLogic))),
		Admin: handler.NewAdminHandler(logic.NewAdminLogic(db, tokens), donationLogic,
			logic.NewAnalyticsLogic(db, time.UTC), tokens, false, time.UTC),
		Contact: handler.NewContactHandler(logic.NewContactLogic(db, nil, config.SMTPConfig{OrgName: "Bhakta Sammilan"})),
		Event:   handler.NewEventHandler(logic.NewTempleEventLogic(db)),
	}

	return &testServer{engine: Setup(h, tokens, config.ServerConfig{}), db: db}
}

func (s *testServer) do(t *testing.T, method, path, body string, headers map[string]string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *testServer) login(t *testing.T) *http.Cookie {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/admin/login",
		fmt.Sprintf(`{"email":%q,"password":%q}`, adminEmail, adminPassword), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, body = %s", w.Code, w.Body.String())
	}
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.CookieName {
			return c
		}
	}
	t.Fatal("login did not set the admin cookie")
	return nil
}

func hexHMAC(secret, payload string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(payload))
	return hex.EncodeToString(h.Sum(nil))
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if w.Header().Get(RequestIdHeader) == "" {
		t.Error("missing request id header")
	}
}

func TestDonationFlow(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/donations/create-order",
		`{"amount":501,"donorName":"Asha","donorEmail":"asha@example.com","donorPhone":"98765"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("create-order status = %d, body = %s", w.Code, w.Body.String())
	}
	var order handler.CreateOrderResponse
	decode(t, w, &order)
	if order.Amount != 50100 || order.Currency != "INR" || order.KeyId != "rzp_test_public" {
		t.Errorf("order = %+v", order)
	}

	verify := fmt.Sprintf(`{"razorpay_order_id":%q,"razorpay_payment_id":"pay_1","razorpay_signature":%q}`,
		order.OrderId, hexHMAC(keySecret, order.OrderId+"|pay_1"))
	w = s.do(t, http.MethodPost, "/api/donations/verify", verify, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("verify status = %d, body = %s", w.Code, w.Body.String())
	}
	var verified handler.VerifyResponse
	decode(t, w, &verified)
	if !verified.Success || verified.Payment.ReceiptNo != "SRTK000001" || verified.Payment.Amount != 501 {
		t.Errorf("verify = %+v", verified)
	}
	if verified.Donor.Email != "asha@example.com" {
		t.Errorf("donor = %+v", verified.Donor)
	}

	body := fmt.Sprintf(`{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_1","order_id":%q}}}}`, order.OrderId)
	w = s.do(t, http.MethodPost, "/api/razorpay/webhook", body,
		map[string]string{"X-Razorpay-Signature": hexHMAC(webhookSecret, body)})
	if w.Code != http.StatusOK || w.Body.String() != `{"received":true}` {
		t.Fatalf("webhook = %d %s", w.Code, w.Body.String())
	}

	cookie := s.login(t)
	w = s.do(t, http.MethodGet, "/api/admin/donations", "", nil, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("donations status = %d", w.Code)
	}
	var list handler.AdminDonationsResponse
	decode(t, w, &list)
	if len(list.Donations) != 1 || list.Donations[0].Status != "SUCCESS" {
		t.Errorf("donations = %+v", list.Donations)
	}
	if len(list.TopDonors) != 1 || list.TopDonors[0].TotalAmount != 501 {
		t.Errorf("top donors = %+v", list.TopDonors)
	}
}

func TestDonationErrors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name     string
		path     string
		body     string
		wantCode int
		wantErr  string
	}{
		{"invalid amount", "/api/donations/create-order", `{"amount":0,"donorName":"a","donorEmail":"b","donorPhone":"c"}`, 400, "Invalid amount"},
		{"non numeric amount", "/api/donations/create-order", `{"amount":"abc","donorName":"a","donorEmail":"b","donorPhone":"c"}`, 400, "Invalid amount"},
		{"missing donor", "/api/donations/create-order", `{"amount":100}`, 400, "Missing donor details"},
		{"out of range", "/api/donations/create-order", `{"amount":5,"donorName":"a","donorEmail":"b","donorPhone":"c"}`, 400, "Amount out of allowed range"},
		{"verify missing fields", "/api/donations/verify", `{"razorpay_order_id":"order_1"}`, 400, "Invalid payment data"},
		{"verify unknown order", "/api/donations/verify", `{"razorpay_order_id":"order_x","razorpay_payment_id":"p","razorpay_signature":"s"}`, 404, "Donation not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, tt.path, tt.body, nil)
			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.wantCode, w.Body.String())
			}
			var resp map[string]string
			decode(t, w, &resp)
			if resp["error"] != tt.wantErr {
				t.Errorf("error = %q, want %q", resp["error"], tt.wantErr)
			}
		})
	}
}

func TestVerifyBadSignature(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodPost, "/api/donations/create-order",
		`{"amount":100,"donorName":"a","donorEmail":"b@c.d","donorPhone":"1"}`, nil)
	var order handler.CreateOrderResponse
	decode(t, w, &order)

	w = s.do(t, http.MethodPost, "/api/donations/verify",
		fmt.Sprintf(`{"razorpay_order_id":%q,"razorpay_payment_id":"pay_9","razorpay_signature":"00"}`, order.OrderId), nil)
	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "Signature verification failed") {
		t.Fatalf("verify = %d %s", w.Code, w.Body.String())
	}

	var d model.DonationModel
	s.db.Where("order_id = ?", order.OrderId).First(&d)
	if d.Status != model.DonationStatusFailed {
		t.Errorf("status = %s, want FAILED", d.Status)
	}
}

func TestWebhookRejections(t *testing.T) {
	s := newTestServer(t)
	body := `{"event":"payment.captured","payload":{"payment":{"entity":{"id":"p","order_id":"o"}}}}`

	w := s.do(t, http.MethodPost, "/api/razorpay/webhook", body, nil)
	if w.Code != http.StatusBadRequest || w.Body.String() != `{"error":"Missing signature"}` {
		t.Errorf("missing signature = %d %s", w.Code, w.Body.String())
	}

	w = s.do(t, http.MethodPost, "/api/razorpay/webhook", body, map[string]string{"X-Razorpay-Signature": "abc"})
	if w.Code != http.StatusBadRequest || w.Body.String() != `{"error":"Invalid signature"}` {
		t.Errorf("invalid signature = %d %s", w.Code, w.Body.String())
	}
}

func TestAdminAuth(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/api/admin/donations", "/api/admin/me", "/api/admin/analytics"} {
		w := s.do(t, http.MethodGet, path, "", nil)
		if w.Code != http.StatusUnauthorized || w.Body.String() != `{"error":"Unauthorized"}` {
			t.Errorf("GET %s = %d %s", path, w.Code, w.Body.String())
		}
	}

	w := s.do(t, http.MethodPost, "/api/admin/login", `{"email":"admin@trust.org","password":"wrong"}`, nil)
	if w.Code != http.StatusUnauthorized || !strings.Contains(w.Body.String(), "Invalid credentials") {
		t.Errorf("wrong password = %d %s", w.Code, w.Body.String())
	}
	w = s.do(t, http.MethodPost, "/api/admin/login", `{"email":""}`, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing credentials = %d", w.Code)
	}

	w = s.do(t, http.MethodPost, "/api/admin/login",
		fmt.Sprintf(`{"email":%q,"password":%q}`, adminEmail, adminPassword), nil)
	if w.Header().Get("Cache-Control") != "no-store" {
		t.Errorf("Cache-Control = %q", w.Header().Get("Cache-Control"))
	}
	setCookie := w.Header().Get("Set-Cookie")
	for _, attr := range []string{"admin_token=", "Max-Age=86400", "HttpOnly", "SameSite=Lax", "Path=/"} {
		if !strings.Contains(setCookie, attr) {
			t.Errorf("Set-Cookie %q missing %s", setCookie, attr)
		}
	}

	cookie := s.login(t)
	w = s.do(t, http.MethodGet, "/api/admin/me", "", nil, cookie)
	var me handler.AdminMeResponse
	decode(t, w, &me)
	if me.Email != adminEmail {
		t.Errorf("me = %+v", me)
	}

	w = s.do(t, http.MethodPost, "/api/admin/logout", "", nil, cookie)
	if w.Code != http.StatusOK || !strings.Contains(w.Header().Get("Set-Cookie"), "Max-Age=0") {
		t.Errorf("logout = %d, Set-Cookie %q", w.Code, w.Header().Get("Set-Cookie"))
	}
}

func TestAnalyticsExport(t *testing.T) {
	s := newTestServer(t)
	paymentId := "pay_1"
	d := model.DonationModel{OrderId: "o1", PaymentId: &paymentId, Amount: 700, Currency: "INR",
		Status: model.DonationStatusSuccess, CreatedAt: time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)}
	if err := s.db.Create(&d).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	cookie := s.login(t)

	w := s.do(t, http.MethodGet, "/api/admin/analytics?timeframe=yearly", "", nil, cookie)
	var report handler.AnalyticsResponse
	decode(t, w, &report)
	if len(report.Points) != 1 || report.Points[0].Key != "2025" || report.Points[0].TotalAmount != 700 {
		t.Errorf("analytics = %+v", report)
	}

	w = s.do(t, http.MethodGet, "/api/admin/analytics?from=bad", "", nil, cookie)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad from date status = %d", w.Code)
	}

	w = s.do(t, http.MethodGet, "/api/admin/analytics/export?timeframe=monthly", "", nil, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("export status = %d", w.Code)
	}
	if !strings.Contains(w.Header().Get("Content-Disposition"), "donation-analytics.csv") {
		t.Errorf("Content-Disposition = %q", w.Header().Get("Content-Disposition"))
	}
	if want := "Date,Total Amount,Donation Count\nMar 2025,700,1\n"; w.Body.String() != want {
		t.Errorf("csv = %q, want %q", w.Body.String(), want)
	}
}

func TestEventsAndContact(t *testing.T) {
	s := newTestServer(t)
	future := time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339)
	event := fmt.Sprintf(`{"title":"Kirtan","description":"Evening","dateTime":%q}`, future)

	w := s.do(t, http.MethodPost, "/api/events", event, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous create event = %d", w.Code)
	}

	cookie := s.login(t)
	w = s.do(t, http.MethodPost, "/api/events", event, nil, cookie)
	if w.Code != http.StatusCreated {
		t.Fatalf("create event = %d %s", w.Code, w.Body.String())
	}

	w = s.do(t, http.MethodGet, "/api/events", "", nil)
	var events []handler.EventResponse
	decode(t, w, &events)
	if len(events) != 1 || events[0].Title != "Kirtan" {
		t.Errorf("events = %+v", events)
	}

	w = s.do(t, http.MethodPost, "/api/contact", `{"name":"Ravi","email":"r@example.com","message":"Namaste"}`, nil)
	if w.Code != http.StatusOK || w.Body.String() != `{"success":true}` {
		t.Errorf("contact = %d %s", w.Code, w.Body.String())
	}
	w = s.do(t, http.MethodPost, "/api/contact", `{"name":"Ravi"}`, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("incomplete contact = %d", w.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/donations/create-order", bytes.NewReader(nil))
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d", w.Code)
	}
}
