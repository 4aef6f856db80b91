package trigger

import (
	"context"
	"strings"
	"testing"

	"github.com/autohive/automarket-backend/internal/model"
	"github.com/autohive/automarket-backend/internal/repository"
	"github.com/autohive/automarket-backend/internal/service"
)

type capturedCreate struct {
	userID string
	typ    model.NotificationType
	title  string
	body   string
	opts   service.CreateOptions
}

// captureService records create calls instead of persisting.
type captureService struct {
	calls []capturedCreate
}

func (s *captureService) Create(_ context.Context, userID string, typ model.NotificationType, title, body string, opts service.CreateOptions) (*model.Notification, error) {
	s.calls = append(s.calls, capturedCreate{userID: userID, typ: typ, title: title, body: body, opts: opts})
	return &model.Notification{ID: "n1", UserID: userID, Type: typ, Title: title, Body: body}, nil
}

func (s *captureService) List(context.Context, string, repository.ListOptions) ([]model.Notification, int64, error) {
	return nil, 0, nil
}
func (s *captureService) GetUnreadCount(context.Context, string) (int64, error) { return 0, nil }
func (s *captureService) MarkRead(context.Context, string, []string) error      { return nil }
func (s *captureService) MarkAllRead(context.Context, string) error             { return nil }
func (s *captureService) Delete(context.Context, string, string) error          { return nil }
func (s *captureService) CleanupExpired(context.Context, int) (int64, error)    { return 0, nil }

func (s *captureService) last(t *testing.T) capturedCreate {
	t.Helper()
	if len(s.calls) == 0 {
		t.Fatal("no create call captured")
	}
	return s.calls[len(s.calls)-1]
}

func TestSendMessageNotificationTruncatesBody(t *testing.T) {
	svc := &captureService{}
	tr := New(svc)

	long := strings.Repeat("x", 150)
	tr.SendMessageNotification(context.Background(), "u1", "u2", "c1", long)

	got := svc.last(t)
	if got.userID != "u1" {
		t.Fatalf("receiver=%q want u1", got.userID)
	}
	if got.typ != model.NotificationTypeMessage {
		t.Fatalf("type=%q want message", got.typ)
	}
	if got.opts.Priority != model.PriorityMedium {
		t.Fatalf("priority=%q want medium", got.opts.Priority)
	}
	want := strings.Repeat("x", 100) + "..."
	if got.body != want {
		t.Fatalf("body=%q (len %d), want 100 chars plus ellipsis", got.body, len(got.body))
	}
}

func TestSendMessageNotificationShortBodyUntouched(t *testing.T) {
	svc := &captureService{}
	tr := New(svc)

	tr.SendMessageNotification(context.Background(), "u1", "u2", "c1", "see you at 3")

	if got := svc.last(t); got.body != "see you at 3" {
		t.Fatalf("short body was altered: %q", got.body)
	}
}

func TestSendProjectUpdateNotificationPriorities(t *testing.T) {
	tests := []struct {
		updateType string
		want       model.NotificationPriority
	}{
		{ProjectUpdateStatusChange, model.PriorityMedium},
		{ProjectUpdateNewMilestone, model.PriorityMedium},
		{ProjectUpdateDeadlineApproaching, model.PriorityHigh},
		{ProjectUpdateCompleted, model.PriorityMedium},
		{"something_else", model.PriorityMedium},
	}
	for _, tt := range tests {
		t.Run(tt.updateType, func(t *testing.T) {
			svc := &captureService{}
			New(svc).SendProjectUpdateNotification(context.Background(), "u1", "p1", tt.updateType, "2 days left")
			got := svc.last(t)
			if got.typ != model.NotificationTypeProjectUpdate {
				t.Fatalf("type=%q want project_update", got.typ)
			}
			if got.opts.Priority != tt.want {
				t.Fatalf("priority=%q want %q", got.opts.Priority, tt.want)
			}
		})
	}
}

func TestSendMilestoneUpdateNotificationOverdue(t *testing.T) {
	tests := []struct {
		status string
		want   model.NotificationPriority
	}{
		{"overdue", model.PriorityHigh},
		{"in_progress", model.PriorityMedium},
		{"completed", model.PriorityMedium},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			svc := &captureService{}
			New(svc).SendMilestoneUpdateNotification(context.Background(), "u1", "p1", "m1", "Design phase", tt.status)
			if got := svc.last(t); got.opts.Priority != tt.want {
				t.Fatalf("priority=%q want %q", got.opts.Priority, tt.want)
			}
		})
	}
}

func TestSendExpertMatchNotificationLinksToProfile(t *testing.T) {
	svc := &captureService{}
	New(svc).SendExpertMatchNotification(context.Background(), "client1", "exp42", "Jane Doe")

	got := svc.last(t)
	if got.typ != model.NotificationTypeExpertMatch {
		t.Fatalf("type=%q want expert_match", got.typ)
	}
	if got.opts.Priority != model.PriorityMedium {
		t.Fatalf("priority=%q want medium", got.opts.Priority)
	}
	if got.opts.ActionURL == nil || *got.opts.ActionURL != "/experts/exp42" {
		t.Fatalf("actionUrl=%v want /experts/exp42", got.opts.ActionURL)
	}
}

func TestSendPaymentNotificationPriorities(t *testing.T) {
	tests := []struct {
		status string
		want   model.NotificationPriority
	}{
		{PaymentStatusFailed, model.PriorityHigh},
		{PaymentStatusSucceeded, model.PriorityMedium},
		{PaymentStatusRefunded, model.PriorityMedium},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			svc := &captureService{}
			New(svc).SendPaymentNotification(context.Background(), "u1", "pay1", tt.status, 249.99)
			got := svc.last(t)
			if got.typ != model.NotificationTypePayment {
				t.Fatalf("type=%q want payment", got.typ)
			}
			if got.opts.Priority != tt.want {
				t.Fatalf("priority=%q want %q", got.opts.Priority, tt.want)
			}
		})
	}
}

func TestSendSystemNotificationPriority(t *testing.T) {
	svc := &captureService{}
	tr := New(svc)

	tr.SendSystemNotification(context.Background(), "u1", "Maintenance", "tonight", "")
	if got := svc.last(t); got.opts.Priority != model.PriorityMedium {
		t.Fatalf("default priority=%q want medium", got.opts.Priority)
	}

	tr.SendSystemNotification(context.Background(), "u1", "Security issue", "rotate keys", model.PriorityUrgent)
	if got := svc.last(t); got.opts.Priority != model.PriorityUrgent {
		t.Fatalf("priority=%q want urgent", got.opts.Priority)
	}
}
