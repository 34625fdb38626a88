package handler

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sankha1545/Bhakasamilani/internal/auth"
	"github.com/sankha1545/Bhakasamilani/internal/logger"
	"github.com/sankha1545/Bhakasamilani/internal/logic"
)

const topDonorLimit = 5

type AdminHandler struct {
	adminLogic     *logic.AdminLogic
	donationLogic  *logic.DonationLogic
	analyticsLogic *logic.AnalyticsLogic
	tokens         *auth.TokenManager
	secureCookie   bool
	loc            *time.Location
}

func NewAdminHandler(adminLogic *logic.AdminLogic, donationLogic *logic.DonationLogic, analyticsLogic *logic.AnalyticsLogic,
	tokens *auth.TokenManager, secureCookie bool, loc *time.Location) *AdminHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &AdminHandler{
		adminLogic:     adminLogic,
		donationLogic:  donationLogic,
		analyticsLogic: analyticsLogic,
		tokens:         tokens,
		secureCookie:   secureCookie,
		loc:            loc,
	}
}

// Login 管理员登录
func (h *AdminHandler) Login(c *gin.Context) {
	noStore(c)

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Email and password are required")
		return
	}

	token, err := h.adminLogic.Login(req.Email, req.Password)
	if err != nil {
		respondError(c, err, "Server error")
		return
	}

	auth.SetAdminCookie(c, token, int(h.tokens.TTL().Seconds()), h.secureCookie)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Logout 清除会话 cookie，token 本身在过期前仍有效
func (h *AdminHandler) Logout(c *gin.Context) {
	noStore(c)
	auth.ClearAdminCookie(c, h.secureCookie)
	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "Logged out successfully"})
}

// Me 当前管理员
func (h *AdminHandler) Me(c *gin.Context) {
	noStore(c)
	admin := auth.CurrentAdmin(c)
	if admin == nil {
		ErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	c.JSON(http.StatusOK, AdminMeResponse{AdminId: admin.AdminId, Email: admin.Email})
}

// GetDonations 捐赠列表及排行
func (h *AdminHandler) GetDonations(c *gin.Context) {
	filter := logic.DonationFilter{
		MinAmount: queryInt64(c, "minAmount"),
		MaxAmount: queryInt64(c, "maxAmount"),
	}

	donations, err := h.donationLogic.ListDonations(filter)
	if err != nil {
		logger.Error("Failed to list donations: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "Server error")
		return
	}

	donors, err := h.donationLogic.TopDonors(topDonorLimit)
	if err != nil {
		logger.Error("Failed to load top donors: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "Server error")
		return
	}

	resp := AdminDonationsResponse{
		Donations: make([]DonationResponse, 0, len(donations)),
		TopDonors: make([]TopDonorResponse, 0, len(donors)),
	}
	for _, d := range donations {
		resp.Donations = append(resp.Donations, toDonationResponse(d))
	}
	for _, d := range donors {
		resp.TopDonors = append(resp.TopDonors, TopDonorResponse{
			Email:       d.Email,
			Name:        d.Name,
			TotalAmount: d.TotalAmount,
		})
	}

	c.JSON(http.StatusOK, resp)
}

// GetAnalytics 分桶统计
func (h *AdminHandler) GetAnalytics(c *gin.Context) {
	q, ok := h.analyticsQuery(c)
	if !ok {
		return
	}

	report, err := h.analyticsLogic.Report(q)
	if err != nil {
		logger.Error("Failed to build analytics: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "Server error")
		return
	}

	resp := AnalyticsResponse{
		Timeframe: string(q.Timeframe),
		Range:     q.DailyRange,
		Points:    toChartPoints(report.Points),
	}
	if report.Comparison != nil {
		resp.Comparison = &ComparisonResponse{
			Current:  report.Comparison.Current,
			Previous: report.Comparison.Previous,
			Delta:    report.Comparison.Delta,
		}
	}
	c.JSON(http.StatusOK, resp)
}

// ExportAnalytics 导出 CSV
func (h *AdminHandler) ExportAnalytics(c *gin.Context) {
	q, ok := h.analyticsQuery(c)
	if !ok {
		return
	}

	report, err := h.analyticsLogic.Report(q)
	if err != nil {
		logger.Error("Failed to build analytics export: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "Server error")
		return
	}

	var buf bytes.Buffer
	if err := logic.WriteAnalyticsCSV(&buf, report.Points); err != nil {
		logger.Error("Failed to write analytics csv: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "Server error")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="donation-analytics.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (h *AdminHandler) analyticsQuery(c *gin.Context) (logic.AnalyticsQuery, bool) {
	q := logic.AnalyticsQuery{
		Timeframe:  logic.ParseTimeframe(c.Query("timeframe")),
		DailyRange: logic.ParseDailyRange(c.Query("range")),
	}

	for _, p := range []struct {
		name string
		dst  **time.Time
	}{{"from", &q.From}, {"to", &q.To}} {
		raw := c.Query(p.name)
		if raw == "" {
			continue
		}
		t, err := time.ParseInLocation("2006-01-02", raw, h.loc)
		if err != nil {
			ErrorResponse(c, http.StatusBadRequest, "Invalid "+p.name+" date")
			return q, false
		}
		*p.dst = &t
	}
	return q, true
}

// queryInt64 非数字参数视为未提供
func queryInt64(c *gin.Context, key string) *int64 {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	return &v
}
