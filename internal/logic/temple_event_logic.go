package logic

import (
	"fmt"
	"strings"
	"time"

	"github.com/sankha1545/Bhakasamilani/internal/apperr"
	"github.com/sankha1545/Bhakasamilani/internal/logger"
	"github.com/sankha1545/Bhakasamilani/internal/model"
	"gorm.io/gorm"
)

const (
	msgEventRequired    = "Title and dateTime are required"
	msgEventInvalidDate = "dateTime must be an ISO 8601 timestamp"
	msgEventFailed      = "Unable to save event"
)

// TempleEventLogic 寺庙活动
type TempleEventLogic struct {
	db  *gorm.DB
	now func() time.Time
}

// NewTempleEventLogic 创建活动业务逻辑
func NewTempleEventLogic(db *gorm.DB) *TempleEventLogic {
	return &TempleEventLogic{db: db, now: time.Now}
}

// Upcoming 未开始的活动，按时间升序
func (l *TempleEventLogic) Upcoming() ([]model.TempleEventModel, error) {
	var events []model.TempleEventModel
	if err := l.db.Where("date >= ?", l.now().UTC()).Order("date ASC").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("获取活动列表失败: %w", err)
	}
	return events, nil
}

// Create 创建活动，dateTime 为 RFC3339
func (l *TempleEventLogic) Create(title, description, dateTime string) (*model.TempleEventModel, error) {
	title = strings.TrimSpace(title)
	dateTime = strings.TrimSpace(dateTime)
	if title == "" || dateTime == "" {
		return nil, apperr.Validation(msgEventRequired)
	}

	date, err := time.Parse(time.RFC3339, dateTime)
	if err != nil {
		return nil, apperr.Validation(msgEventInvalidDate)
	}

	event := &model.TempleEventModel{
		Title:       title,
		Description: strings.TrimSpace(description),
		Date:        date.UTC(),
	}
	if err := l.db.Create(event).Error; err != nil {
		logger.Error("Failed to create event %q: %v", title, err)
		return nil, apperr.Upstream(msgEventFailed, err)
	}

	logger.Info("Created event %d: %s", event.Id, event.Title)
	return event, nil
}
