package logic

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/sankha1545/Bhakasamilani/internal/apperr"
	"github.com/sankha1545/Bhakasamilani/internal/config"
	"github.com/sankha1545/Bhakasamilani/internal/logger"
	"github.com/sankha1545/Bhakasamilani/internal/model"
	"github.com/sankha1545/Bhakasamilani/internal/sender"
	"gorm.io/gorm"
)

const (
	msgContactRequired = "Name, email and message are required."
	msgContactFailed   = "Something went wrong while submitting your query."
)

// EmailQueue 异步邮件队列，由 notify.Notifier 实现
type EmailQueue interface {
	Enabled() bool
	Enqueue(msg sender.Message) (int64, error)
}

// ContactInput 联系表单
type ContactInput struct {
	Name    string
	Email   string
	Phone   string
	Subject string
	Message string
}

var contactHTML = template.Must(template.New("contact").Parse(`<div style="font-family: system-ui, sans-serif; font-size: 14px; color: #111827;">
  <h2 style="margin-bottom: 12px;">New contact query from {{.Org}} website</h2>
  <p><strong>Name:</strong> {{.Name}}</p>
  <p><strong>Email:</strong> {{.Email}}</p>
  <p><strong>Phone:</strong> {{.Phone}}</p>
  <p><strong>Subject:</strong> {{.Subject}}</p>
  <hr style="margin: 16px 0; border: none; border-top: 1px solid #e5e7eb;" />
  <p style="white-space: pre-wrap;"><strong>Message:</strong><br />{{.Message}}</p>
  <hr style="margin: 16px 0; border: none; border-top: 1px solid #e5e7eb;" />
  <p style="font-size: 12px; color: #6b7280;">This message was sent from the {{.Org}} contact form.</p>
</div>`))

// ContactLogic 联系表单：落库后通知机构邮箱
type ContactLogic struct {
	db    *gorm.DB
	queue EmailQueue
	smtp  config.SMTPConfig
}

// NewContactLogic 创建联系表单业务逻辑，queue 可为 nil
func NewContactLogic(db *gorm.DB, queue EmailQueue, smtp config.SMTPConfig) *ContactLogic {
	return &ContactLogic{db: db, queue: queue, smtp: smtp}
}

// Submit 保存留言并排队通知邮件，邮件排队失败不影响结果
func (l *ContactLogic) Submit(in ContactInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Subject = strings.TrimSpace(in.Subject)
	if in.Name == "" || in.Email == "" || strings.TrimSpace(in.Message) == "" {
		return apperr.Validation(msgContactRequired)
	}

	msg := &model.ContactMessageModel{
		Name:    in.Name,
		Email:   in.Email,
		Phone:   optional(in.Phone),
		Subject: optional(in.Subject),
		Message: in.Message,
	}
	if err := l.db.Create(msg).Error; err != nil {
		logger.Error("Failed to save contact message from %s: %v", in.Email, err)
		return apperr.Upstream(msgContactFailed, err)
	}

	if l.queue == nil || !l.queue.Enabled() {
		logger.Warn("SMTP is not fully configured, skipping email for contact message %d", msg.Id)
		return nil
	}

	email, err := l.buildEmail(in)
	if err != nil {
		logger.Error("Failed to render contact email %d: %v", msg.Id, err)
		return nil
	}
	if _, err := l.queue.Enqueue(email); err != nil {
		logger.Error("Failed to queue contact email %d: %v", msg.Id, err)
	}
	return nil
}

func (l *ContactLogic) buildEmail(in ContactInput) (sender.Message, error) {
	subject := fmt.Sprintf("[%s Contact] New query from %s", l.smtp.OrgName, in.Name)
	if in.Subject != "" {
		subject = fmt.Sprintf("[%s Contact] %s", l.smtp.OrgName, in.Subject)
	}

	data := struct {
		Org, Name, Email, Phone, Subject, Message string
	}{
		Org:     l.smtp.OrgName,
		Name:    in.Name,
		Email:   in.Email,
		Phone:   orDash(in.Phone),
		Subject: orDash(in.Subject),
		Message: in.Message,
	}

	var html bytes.Buffer
	if err := contactHTML.Execute(&html, data); err != nil {
		return sender.Message{}, err
	}

	text := fmt.Sprintf("New contact query from %s website\n\nName:    %s\nEmail:   %s\nPhone:   %s\n\nSubject: %s\n\nMessage:\n%s",
		data.Org, data.Name, data.Email, data.Phone, data.Subject, data.Message)

	return sender.Message{
		To:      l.smtp.OrgContactEmail,
		ReplyTo: in.Email,
		Subject: subject,
		Text:    text,
		HTML:    html.String(),
	}, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
