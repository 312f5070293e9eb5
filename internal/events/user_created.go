package events

import "time"

const PersonnelLifecycleTopic = "mes.personnel.lifecycle.v1"

const UserCreated = "user.created"

type UserCreatedEvent struct {
	EventType  string    `json:"event_type"`
	SapID      string    `json:"sap_id"`
	Role       string    `json:"role"`
	OccurredAt time.Time `json:"occurred_at"`
}
