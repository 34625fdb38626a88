package scheduler

import (
	"errors"
	"testing"
	"time"

	"github.com/sankha1545/Bhakasamilani/internal/model"
	"github.com/sankha1545/Bhakasamilani/internal/testutil"
)

// fakeRetrier implements EmailRetrier for testing
type fakeRetrier struct {
	calls int
	err   error
}

func (f *fakeRetrier) RetryFailed() (int, error) {
	f.calls++
	return 0, f.err
}

func TestEmailRetryJob(t *testing.T) {
	r := &fakeRetrier{}
	job := NewEmailRetryJob(r, 0)

	if job.GetName() != "email_retry" || job.interval != 300*time.Second {
		t.Errorf("job = %s every %v", job.GetName(), job.interval)
	}

	job.Execute()
	r.err = errors.New("db down")
	job.Execute()
	if r.calls != 2 {
		t.Errorf("calls = %d, want 2", r.calls)
	}
}

func TestWebhookPruneJob(t *testing.T) {
	db := testutil.NewTestDB(t)
	now := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)

	rows := []model.WebhookEventModel{
		{EventType: "payment.captured", CreatedAt: now.AddDate(0, 0, -100)},
		{EventType: "payment.failed", CreatedAt: now.AddDate(0, 0, -91)},
		{EventType: "payment.captured", CreatedAt: now.AddDate(0, 0, -10)},
	}
	for i := range rows {
		if err := db.Create(&rows[i]).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	job := NewWebhookPruneJob(db, 90)
	job.now = func() time.Time { return now }

	deleted, err := job.Prune()
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if deleted != 2 {
		t.Errorf("deleted = %d, want 2", deleted)
	}

	var left int64
	db.Model(&model.WebhookEventModel{}).Count(&left)
	if left != 1 {
		t.Errorf("remaining = %d, want 1", left)
	}
}
