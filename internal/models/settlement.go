package models

// SettlementStatus tracks a purchase payment through its lifecycle.
type SettlementStatus string

const (
	// SettlementPending: recorded before the gateway is called.
	SettlementPending SettlementStatus = "pending"
	// SettlementCaptured: the gateway accepted the payment but the unit
	// has not been written to the ledger yet. Rows stuck here are picked
	// up by the reconciliation sweep.
	SettlementCaptured SettlementStatus = "captured"
	// SettlementSettled: payment captured and unit recorded.
	SettlementSettled SettlementStatus = "settled"
	// SettlementFailed: the gateway rejected the payment.
	SettlementFailed SettlementStatus = "failed"
)

// Settlement is the saga record for a purchase payment. It exists so a
// captured payment whose ledger write failed is never silently lost.
type Settlement struct {
	Base
	UserID         string           `gorm:"type:uuid;not null;index" json:"user_id"`
	FundID         string           `gorm:"type:uuid;not null" json:"fund_id"`
	Amount         int64            `gorm:"type:bigint;not null" json:"amount"`
	PurchaseNAV    int64            `gorm:"type:bigint;not null" json:"purchase_nav"`
	Status         SettlementStatus `gorm:"not null;default:pending;index" json:"status"`
	UnitID         *string          `gorm:"type:uuid" json:"unit_id,omitempty"`
	GatewayMessage string           `json:"gateway_message,omitempty"`
}
