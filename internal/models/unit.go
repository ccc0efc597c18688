package models

import (
	"fmt"
	"time"

	"tibib/internal/uuid"

	"gorm.io/gorm"
)

// Unit is a purchased-unit ledger record: one row per successful buy,
// removed outright on redemption. No soft delete — a redeemed unit is
// gone, and a second redemption of the same id must observe not-found.
type Unit struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      string    `gorm:"type:uuid;not null;index" json:"user_id"`
	FundID      string    `gorm:"type:uuid;not null" json:"fund_id"`
	Amount      int64     `gorm:"type:bigint;not null" json:"amount"`
	PurchaseNAV int64     `gorm:"type:bigint;not null" json:"purchase_nav"`
	PurchasedAt time.Time `gorm:"not null" json:"purchased_at"`
	CreatedAt   time.Time `json:"created_at"`

	Fund Fund `gorm:"foreignKey:FundID" json:"fund"`
}

// BeforeCreate assigns the id and rejects negative amounts. The minimum
// investment threshold is a flow concern; a negative nominal is nonsense
// at any layer.
func (u *Unit) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New()
	}
	if u.Amount < 0 {
		return fmt.Errorf("unit amount must not be negative, got %d", u.Amount)
	}
	return nil
}
