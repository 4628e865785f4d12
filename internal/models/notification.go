package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification is a best-effort event delivered to a user after a lifecycle
// operation (submit, approve). Delivery failure never rolls the operation back.
type Notification struct {
	ID             uuid.UUID `json:"id"`
	Message        string    `json:"message"`
	RecipientEmail string    `json:"recipient_email"`
	ActorEmail     string    `json:"actor_email,omitempty"`
	Route          string    `json:"route"`
	CreatedAt      time.Time `json:"created_at"`
}
