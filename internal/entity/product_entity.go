package entity

import (
	"time"

	"github.com/google/uuid"
)

// Product is what a subscription charges for. Price is in KRW (minor unit ==
// major unit); a zero-price product is never charged by the scheduler.
type Product struct {
	Id            uuid.UUID
	Name          string
	Price         int64
	BillingPeriod BillingPeriod
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
