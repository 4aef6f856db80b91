package trigger

import (
	"context"
	"fmt"
	"log"

	"github.com/autohive/automarket-backend/internal/model"
	"github.com/autohive/automarket-backend/internal/service"
)

// Triggers is the only sanctioned entry point for other subsystems to emit
// notifications. Each method maps one domain event to a create call; all of
// them are fire-and-forget so a failed notification never breaks the
// originating domain operation.
type Triggers struct {
	svc service.NotificationService
}

func New(svc service.NotificationService) *Triggers {
	return &Triggers{svc: svc}
}

const messageExcerptLen = 100

// Typed payloads per notification type. They collapse to an opaque JSON blob
// at the store boundary.

type MessageData struct {
	ConversationID string `json:"conversationId"`
	SenderID       string `json:"senderId"`
}

type ProjectUpdateData struct {
	ProjectID  string `json:"projectId"`
	UpdateType string `json:"updateType"`
	Details    string `json:"details,omitempty"`
}

type MilestoneUpdateData struct {
	ProjectID   string `json:"projectId"`
	MilestoneID string `json:"milestoneId"`
	Status      string `json:"status"`
}

type ExpertMatchData struct {
	ExpertID   string `json:"expertId"`
	ExpertName string `json:"expertName,omitempty"`
}

type PaymentData struct {
	PaymentID string  `json:"paymentId"`
	Status    string  `json:"status"`
	Amount    float64 `json:"amount"`
}

// SendMessageNotification notifies a user about a new chat message. The body
// is the message content cut to 100 characters with an ellipsis when longer.
func (t *Triggers) SendMessageNotification(ctx context.Context, receiverID, senderID, conversationID, content string) {
	body := content
	if runes := []rune(content); len(runes) > messageExcerptLen {
		body = string(runes[:messageExcerptLen]) + "..."
	}
	t.create(ctx, receiverID, model.NotificationTypeMessage, "New message", body, service.CreateOptions{
		Priority:    model.PriorityMedium,
		ActionURL:   strPtr("/conversations/" + conversationID),
		RelatedID:   strPtr(conversationID),
		RelatedType: strPtr("conversation"),
		Data:        MessageData{ConversationID: conversationID, SenderID: senderID},
	})
}

// Project update subtypes emitted by the project lifecycle module.
const (
	ProjectUpdateStatusChange        = "status_change"
	ProjectUpdateNewMilestone        = "new_milestone"
	ProjectUpdateDeadlineApproaching = "deadline_approaching"
	ProjectUpdateCompleted           = "completed"
)

func (t *Triggers) SendProjectUpdateNotification(ctx context.Context, userID, projectID, updateType, details string) {
	var title string
	priority := model.PriorityMedium
	switch updateType {
	case ProjectUpdateStatusChange:
		title = "Project status changed"
	case ProjectUpdateNewMilestone:
		title = "New milestone added"
	case ProjectUpdateDeadlineApproaching:
		title = "Project deadline approaching"
		priority = model.PriorityHigh
	case ProjectUpdateCompleted:
		title = "Project completed"
	default:
		title = "Project updated"
	}
	t.create(ctx, userID, model.NotificationTypeProjectUpdate, title, details, service.CreateOptions{
		Priority:    priority,
		ActionURL:   strPtr("/projects/" + projectID),
		RelatedID:   strPtr(projectID),
		RelatedType: strPtr("project"),
		Data:        ProjectUpdateData{ProjectID: projectID, UpdateType: updateType, Details: details},
	})
}

func (t *Triggers) SendMilestoneUpdateNotification(ctx context.Context, userID, projectID, milestoneID, milestoneTitle, status string) {
	priority := model.PriorityMedium
	if status == "overdue" {
		priority = model.PriorityHigh
	}
	body := fmt.Sprintf("Milestone %q is now %s", milestoneTitle, status)
	t.create(ctx, userID, model.NotificationTypeMilestoneUpdate, "Milestone updated", body, service.CreateOptions{
		Priority:    priority,
		ActionURL:   strPtr("/projects/" + projectID),
		RelatedID:   strPtr(milestoneID),
		RelatedType: strPtr("milestone"),
		Data:        MilestoneUpdateData{ProjectID: projectID, MilestoneID: milestoneID, Status: status},
	})
}

func (t *Triggers) SendExpertMatchNotification(ctx context.Context, clientID, expertID, expertName string) {
	body := fmt.Sprintf("%s matches your project requirements", expertName)
	t.create(ctx, clientID, model.NotificationTypeExpertMatch, "Expert matched", body, service.CreateOptions{
		Priority:    model.PriorityMedium,
		ActionURL:   strPtr("/experts/" + expertID),
		RelatedID:   strPtr(expertID),
		RelatedType: strPtr("expert"),
		Data:        ExpertMatchData{ExpertID: expertID, ExpertName: expertName},
	})
}

// Payment outcomes as reported by the billing module.
const (
	PaymentStatusSucceeded = "succeeded"
	PaymentStatusFailed    = "failed"
	PaymentStatusRefunded  = "refunded"
)

func (t *Triggers) SendPaymentNotification(ctx context.Context, userID, paymentID, status string, amount float64) {
	priority := model.PriorityMedium
	var title string
	switch status {
	case PaymentStatusFailed:
		title = "Payment failed"
		priority = model.PriorityHigh
	case PaymentStatusRefunded:
		title = "Payment refunded"
	default:
		title = "Payment received"
	}
	body := fmt.Sprintf("Payment of $%.2f %s", amount, status)
	t.create(ctx, userID, model.NotificationTypePayment, title, body, service.CreateOptions{
		Priority:    priority,
		RelatedID:   strPtr(paymentID),
		RelatedType: strPtr("payment"),
		Data:        PaymentData{PaymentID: paymentID, Status: status, Amount: amount},
	})
}

// SendSystemNotification carries announcements and admin messages. Priority
// is caller-chosen; empty means medium.
func (t *Triggers) SendSystemNotification(ctx context.Context, userID, title, body string, priority model.NotificationPriority) {
	if priority == "" {
		priority = model.PriorityMedium
	}
	t.create(ctx, userID, model.NotificationTypeSystem, title, body, service.CreateOptions{
		Priority: priority,
	})
}

func (t *Triggers) create(ctx context.Context, userID string, typ model.NotificationType, title, body string, opts service.CreateOptions) {
	if _, err := t.svc.Create(ctx, userID, typ, title, body, opts); err != nil {
		log.Printf("trigger: %s notification for user %s failed: %v", typ, userID, err)
	}
}

func strPtr(s string) *string {
	return &s
}
