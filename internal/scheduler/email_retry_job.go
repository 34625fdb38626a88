package scheduler

import (
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/sankha1545/Bhakasamilani/internal/logger"
)

// EmailRetrier 由 notify.Notifier 实现
type EmailRetrier interface {
	RetryFailed() (int, error)
}

// EmailRetryJob 重发失败的通知邮件
type EmailRetryJob struct {
	retrier  EmailRetrier
	interval time.Duration
}

// NewEmailRetryJob 创建邮件重试任务，interval 单位为秒
func NewEmailRetryJob(retrier EmailRetrier, interval int) *EmailRetryJob {
	if interval <= 0 {
		interval = 300
	}
	return &EmailRetryJob{
		retrier:  retrier,
		interval: time.Duration(interval) * time.Second,
	}
}

// GetName 获取任务名称
func (j *EmailRetryJob) GetName() string {
	return "email_retry"
}

// GetSchedule 获取调度配置
func (j *EmailRetryJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(j.interval)
}

// Execute 执行任务
func (j *EmailRetryJob) Execute() {
	n, err := j.retrier.RetryFailed()
	if err != nil {
		logger.Error("Email retry failed: %v", err)
		return
	}
	if n > 0 {
		logger.Info("Resubmitted %d failed emails", n)
	}
}
