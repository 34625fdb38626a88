package logic

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/sankha1545/Bhakasamilani/internal/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Timeframe 统计粒度
type Timeframe string

const (
	TimeframeDaily   Timeframe = "daily"
	TimeframeMonthly Timeframe = "monthly"
	TimeframeYearly  Timeframe = "yearly"
)

// DefaultDailyRange 默认按天统计的天数
const DefaultDailyRange = 30

// ParseTimeframe 解析统计粒度，未知值按 daily 处理
func ParseTimeframe(s string) Timeframe {
	switch Timeframe(s) {
	case TimeframeMonthly:
		return TimeframeMonthly
	case TimeframeYearly:
		return TimeframeYearly
	default:
		return TimeframeDaily
	}
}

// ParseDailyRange 仅支持 30/60/90
func ParseDailyRange(s string) int {
	switch s {
	case "60":
		return 60
	case "90":
		return 90
	default:
		return DefaultDailyRange
	}
}

// AnalyticsQuery 统计查询条件，From/To 为闭区间，按自然日比较
type AnalyticsQuery struct {
	Timeframe  Timeframe
	DailyRange int
	From       *time.Time
	To         *time.Time
}

// ChartPoint 一个统计桶
type ChartPoint struct {
	Key         string
	Label       string
	TotalAmount int64
	Count       int
}

// Comparison 最近 30 天与之前 30 天对比，Delta 为百分比
type Comparison struct {
	Current  int64
	Previous int64
	Delta    float64
}

// AnalyticsReport 统计结果
type AnalyticsReport struct {
	Points     []ChartPoint
	Comparison *Comparison
}

// AnalyticsLogic 捐赠统计
type AnalyticsLogic struct {
	db  *gorm.DB
	loc *time.Location
	now func() time.Time
}

// NewAnalyticsLogic 创建统计业务逻辑，loc 为分桶使用的时区
func NewAnalyticsLogic(db *gorm.DB, loc *time.Location) *AnalyticsLogic {
	if loc == nil {
		loc = time.UTC
	}
	return &AnalyticsLogic{db: db, loc: loc, now: time.Now}
}

// Report 加载已完成的捐赠并分桶
func (l *AnalyticsLogic) Report(q AnalyticsQuery) (*AnalyticsReport, error) {
	var donations []model.DonationModel
	err := l.db.Model(&model.DonationModel{}).
		Where("status = ? AND payment_id IS NOT NULL AND payment_id <> ''", string(model.DonationStatusSuccess)).
		Order("created_at ASC").
		Find(&donations).Error
	if err != nil {
		return nil, fmt.Errorf("获取统计数据失败: %w", err)
	}
	return BuildAnalytics(donations, q, l.now(), l.loc), nil
}

// BuildAnalytics 对捐赠记录分桶，只统计有支付号的 SUCCESS 记录
func BuildAnalytics(donations []model.DonationModel, q AnalyticsQuery, now time.Time, loc *time.Location) *AnalyticsReport {
	if q.DailyRange <= 0 {
		q.DailyRange = DefaultDailyRange
	}
	today := startOfDay(now, loc)

	completed := make([]model.DonationModel, 0, len(donations))
	for _, d := range donations {
		if d.Status == model.DonationStatusSuccess && d.PaymentId != nil && *d.PaymentId != "" {
			completed = append(completed, d)
		}
	}

	source := make([]model.DonationModel, 0, len(completed))
	for _, d := range completed {
		day := startOfDay(d.CreatedAt, loc)
		if q.From != nil && day.Before(startOfDay(*q.From, loc)) {
			continue
		}
		if q.To != nil && day.After(startOfDay(*q.To, loc)) {
			continue
		}
		source = append(source, d)
	}

	buckets := make(map[string]*ChartPoint)
	prefill := q.Timeframe == TimeframeDaily && q.From == nil
	if prefill {
		start := today.AddDate(0, 0, -q.DailyRange+1)
		for i := 0; i < q.DailyRange; i++ {
			day := start.AddDate(0, 0, i)
			key, label := bucketKey(TimeframeDaily, day)
			buckets[key] = &ChartPoint{Key: key, Label: label}
		}

		inRange := source[:0]
		for _, d := range source {
			day := startOfDay(d.CreatedAt, loc)
			if !day.Before(start) && !day.After(today) {
				inRange = append(inRange, d)
			}
		}
		source = inRange
	}

	for _, d := range source {
		key, label := bucketKey(q.Timeframe, d.CreatedAt.In(loc))
		point, ok := buckets[key]
		if !ok {
			point = &ChartPoint{Key: key, Label: label}
			buckets[key] = point
		}
		point.TotalAmount += d.Amount
		point.Count++
	}

	points := make([]ChartPoint, 0, len(buckets))
	for _, p := range buckets {
		points = append(points, *p)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Key < points[j].Key })

	report := &AnalyticsReport{Points: points}
	if q.Timeframe == TimeframeDaily && q.DailyRange == DefaultDailyRange && q.From == nil {
		report.Comparison = compare30(completed, today, loc)
	}
	return report
}

// compare30 最近 30 天（含今天）与之前 30 天
func compare30(completed []model.DonationModel, today time.Time, loc *time.Location) *Comparison {
	currStart := today.AddDate(0, 0, -29)
	prevStart := currStart.AddDate(0, 0, -30)
	prevEnd := currStart.AddDate(0, 0, -1)

	sum := func(from, to time.Time) int64 {
		var total int64
		for _, d := range completed {
			day := startOfDay(d.CreatedAt, loc)
			if !day.Before(from) && !day.After(to) {
				total += d.Amount
			}
		}
		return total
	}

	c := &Comparison{
		Current:  sum(currStart, today),
		Previous: sum(prevStart, prevEnd),
	}
	if c.Previous != 0 {
		delta := decimal.NewFromInt(c.Current - c.Previous).
			Div(decimal.NewFromInt(c.Previous)).
			Mul(decimal.NewFromInt(100)).
			Round(2)
		c.Delta = delta.InexactFloat64()
	}
	return c
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// bucketKey 返回可排序的 key 和展示用 label
func bucketKey(tf Timeframe, t time.Time) (string, string) {
	switch tf {
	case TimeframeMonthly:
		return t.Format("2006-01"), t.Format("Jan 2006")
	case TimeframeYearly:
		year := strconv.Itoa(t.Year())
		return year, year
	default:
		return t.Format("2006-01-02"), t.Format("02 Jan")
	}
}

// WriteAnalyticsCSV 导出统计结果
func WriteAnalyticsCSV(w io.Writer, points []ChartPoint) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Date", "Total Amount", "Donation Count"}); err != nil {
		return err
	}
	for _, p := range points {
		row := []string{p.Label, strconv.FormatInt(p.TotalAmount, 10), strconv.Itoa(p.Count)}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
