package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/sankha1545/Bhakasamilani/internal/logger"
	"github.com/sankha1545/Bhakasamilani/internal/model"
	"github.com/sankha1545/Bhakasamilani/internal/sender"
	"gorm.io/gorm"
)

const (
	sendTimeout = 30 * time.Second
	// staleAfter 之后仍处于 pending/sending 的记录视为进程中断遗留
	staleAfter = 10 * time.Minute
)

// Notifier 异步邮件投递：先落库 email_log，再交给协程池发送
type Notifier struct {
	db          *gorm.DB
	sender      sender.EmailSender
	pool        *ants.Pool
	maxAttempts int
	wg          sync.WaitGroup
	now         func() time.Time
}

// NewNotifier 创建 Notifier，emailSender 为 nil 时不发送任何邮件
func NewNotifier(db *gorm.DB, emailSender sender.EmailSender, poolSize, maxAttempts int) (*Notifier, error) {
	if poolSize <= 0 {
		poolSize = 1
	}
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create email pool: %w", err)
	}

	return &Notifier{
		db:          db,
		sender:      emailSender,
		pool:        pool,
		maxAttempts: maxAttempts,
		now:         time.Now,
	}, nil
}

// Enabled 是否配置了发送器
func (n *Notifier) Enabled() bool {
	return n.sender != nil
}

// Enqueue 记录并异步发送邮件，返回 email_log id
func (n *Notifier) Enqueue(msg sender.Message) (int64, error) {
	if !n.Enabled() {
		return 0, errors.New("email sender not configured")
	}

	entry := &model.EmailLogModel{
		Recipient: msg.To,
		ReplyTo:   msg.ReplyTo,
		Subject:   msg.Subject,
		TextBody:  msg.Text,
		HTMLBody:  msg.HTML,
		Status:    model.EmailStatusPending,
	}
	if err := n.db.Create(entry).Error; err != nil {
		return 0, fmt.Errorf("failed to save email log: %w", err)
	}

	if err := n.submit(entry.Id); err != nil {
		return entry.Id, err
	}
	return entry.Id, nil
}

func (n *Notifier) submit(id int64) error {
	n.wg.Add(1)
	err := n.pool.Submit(func() {
		defer n.wg.Done()
		n.Deliver(id)
	})
	if err != nil {
		n.wg.Done()
		return fmt.Errorf("failed to submit email %d: %w", id, err)
	}
	return nil
}

// Deliver 发送一次并更新 email_log 状态
func (n *Notifier) Deliver(id int64) {
	var entry model.EmailLogModel
	if err := n.db.First(&entry, id).Error; err != nil {
		logger.Error("Failed to load email log %d: %v", id, err)
		return
	}
	if entry.Status == model.EmailStatusSent {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	sendErr := n.sender.SendEmail(ctx, sender.Message{
		To:      entry.Recipient,
		ReplyTo: entry.ReplyTo,
		Subject: entry.Subject,
		Text:    entry.TextBody,
		HTML:    entry.HTMLBody,
	})

	updates := map[string]interface{}{
		"attempts": gorm.Expr("attempts + ?", 1),
	}
	if sendErr != nil {
		logger.Error("Failed to send email %d to %s: %v", id, entry.Recipient, sendErr)
		updates["status"] = string(model.EmailStatusFailed)
		updates["last_error"] = sendErr.Error()
	} else {
		logger.Info("Email %d sent to %s", id, entry.Recipient)
		updates["status"] = string(model.EmailStatusSent)
		updates["last_error"] = ""
	}

	if err := n.db.Model(&model.EmailLogModel{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		logger.Error("Failed to update email log %d: %v", id, err)
	}
}

// RetryFailed 重新投递未超过最大次数的失败邮件，以及中断遗留的在途邮件
func (n *Notifier) RetryFailed() (int, error) {
	if !n.Enabled() {
		return 0, nil
	}

	staleBefore := n.now().Add(-staleAfter)
	var ids []int64
	if err := n.retryable(n.db.Model(&model.EmailLogModel{}), staleBefore).
		Order("id ASC").
		Pluck("id", &ids).Error; err != nil {
		return 0, fmt.Errorf("failed to load failed emails: %w", err)
	}

	submitted := 0
	for _, id := range ids {
		claimed, err := n.claim(id, staleBefore)
		if err != nil {
			logger.Error("Failed to claim email %d: %v", id, err)
			continue
		}
		if !claimed {
			continue
		}
		if err := n.submit(id); err != nil {
			logger.Error("%v", err)
			continue
		}
		submitted++
	}
	return submitted, nil
}

func (n *Notifier) retryable(query *gorm.DB, staleBefore time.Time) *gorm.DB {
	return query.
		Where("attempts < ?", n.maxAttempts).
		Where("(status = ? OR (status IN ? AND updated_at < ?))",
			string(model.EmailStatusFailed),
			[]string{string(model.EmailStatusPending), string(model.EmailStatusSending)},
			staleBefore)
}

// claim 标记为 sending，记录已被其他轮次领取时返回 false
func (n *Notifier) claim(id int64, staleBefore time.Time) (bool, error) {
	result := n.retryable(n.db.Model(&model.EmailLogModel{}).Where("id = ?", id), staleBefore).
		Updates(map[string]interface{}{
			"status":     string(model.EmailStatusSending),
			"updated_at": n.now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// Wait 等待已提交的发送任务完成
func (n *Notifier) Wait() {
	n.wg.Wait()
}

// Release 等待在途任务后释放协程池
func (n *Notifier) Release() {
	n.wg.Wait()
	n.pool.Release()
}
