package specification

import (
	"time"

	"gorm.io/gorm"
)

// ByMerchantUid filters billing-key requests or subscription payments by
// their merchant order id.
type ByMerchantUid struct {
	MerchantUid string
}

func (s ByMerchantUid) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("merchant_uid = ?", s.MerchantUid)
}

// ByStatus filters by a status column value.
type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

// DefaultOnly selects the default payment method.
type DefaultOnly struct{}

func (s DefaultOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_default = ?", true)
}

// DueWithin selects subscriptions whose next payment date falls inside
// [From, To). The scheduler uses the current day's window.
type DueWithin struct {
	From time.Time
	To   time.Time
}

func (s DueWithin) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("next_payment_date >= ? AND next_payment_date < ?", s.From, s.To)
}

// AutoRenewing selects subscriptions with auto-renew enabled.
type AutoRenewing struct{}

func (s AutoRenewing) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("auto_renew = ?", true)
}
