package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is the minimal owner record the billing engine needs. Authentication
// and profile management live in another service; this table only anchors
// payment methods and subscriptions.
type User struct {
	Id        uuid.UUID
	Email     string
	FullName  string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}
