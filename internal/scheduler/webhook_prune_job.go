package scheduler

import (
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/sankha1545/Bhakasamilani/internal/logger"
	"github.com/sankha1545/Bhakasamilani/internal/model"
	"gorm.io/gorm"
)

// WebhookPruneJob 清理过期的 webhook 审计记录
type WebhookPruneJob struct {
	db        *gorm.DB
	retention time.Duration
	now       func() time.Time
}

// NewWebhookPruneJob 创建清理任务，retentionDays 不大于 0 时使用 90 天
func NewWebhookPruneJob(db *gorm.DB, retentionDays int) *WebhookPruneJob {
	if retentionDays <= 0 {
		retentionDays = 90
	}
	return &WebhookPruneJob{
		db:        db,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		now:       time.Now,
	}
}

// GetName 获取任务名称
func (j *WebhookPruneJob) GetName() string {
	return "webhook_event_prune"
}

// GetSchedule 获取调度配置
func (j *WebhookPruneJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Hour)
}

// Execute 执行任务
func (j *WebhookPruneJob) Execute() {
	if _, err := j.Prune(); err != nil {
		logger.Error("Webhook event prune failed: %v", err)
	}
}

// Prune 删除早于保留期的记录，返回删除条数
func (j *WebhookPruneJob) Prune() (int64, error) {
	cutoff := j.now().Add(-j.retention)
	result := j.db.Where("created_at < ?", cutoff).Delete(&model.WebhookEventModel{})
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected > 0 {
		logger.Info("Pruned %d webhook events older than %s", result.RowsAffected, cutoff.Format(time.RFC3339))
	}
	return result.RowsAffected, nil
}
