// internal/models/notification.go
package models

// Notification records an outbound email/SMS triggered by a workflow event.
type Notification struct {
	ID          string `json:"id"`
	Type        string `json:"type"` // email | sms
	Recipient   string `json:"recipient"`
	TemplateID  string `json:"templateId"`
	Status      string `json:"status"`
	PlacementID string `json:"placementId,omitempty"`
	SentAt      string `json:"sentAt,omitempty"`
}

// Notification status values.
const (
	NotificationStatusSent     = "sent"
	NotificationStatusFailed   = "failed"
	NotificationStatusSkipped  = "skipped"
	NotificationStatusDisabled = "disabled"
)
