package event

import "time"

const SecurityEventDestination string = "security_event"
const SecurityEventConsumerNotification string = "security_event_notification"

// SecurityEventMessage reports a change to the second factor of an account.
type SecurityEventMessage struct {
	ID         string            `json:"id"`
	UserID     int64             `json:"user_id"`
	Email      string            `json:"email"`
	Action     string            `json:"action"`
	Details    map[string]string `json:"details,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}
