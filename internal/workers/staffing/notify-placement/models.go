// internal/workers/staffing/notify-placement/models.go
package notifyplacement

type Input struct {
	RecipientID      string                 `json:"recipientId"`
	RecipientType    string                 `json:"recipientType"` // "profiler", "account_manager" or "delivery_manager"
	NotificationType string                 `json:"notificationType"`
	PlacementID      string                 `json:"placementId,omitempty"`
	Priority         string                 `json:"priority,omitempty"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
}

type Output struct {
	NotificationID string `json:"notificationId"`
	Status         string `json:"status"` // "sent", "failed", "skipped", "disabled"
	SentAt         string `json:"sentAt"` // ISO 8601
}

// Notification types
const (
	TypePlacementProposed = "placement_proposed"
	TypePlacementAccepted = "placement_accepted"
	TypeOnboardingStarted = "onboarding_started"
)

// Statuses
const (
	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusSkipped  = "skipped"
	StatusDisabled = "disabled"
)

// Recipient types
const (
	RecipientTypeProfiler        = "profiler"
	RecipientTypeAccountManager  = "account_manager"
	RecipientTypeDeliveryManager = "delivery_manager"
)
