package models

import "time"

// RiskLevel classifies a fund's risk profile.
type RiskLevel string

const (
	RiskConservative RiskLevel = "Konservatif"
	RiskModerate     RiskLevel = "Moderat"
	RiskAggressive   RiskLevel = "Agresif"
)

// Fund represents a reksadana instrument. NAV is the price per unit in
// whole rupiah; AUM is assets under management.
type Fund struct {
	Base
	Name            string    `gorm:"uniqueIndex;not null" json:"name"`
	CategoryID      string    `gorm:"type:uuid;not null" json:"category_id"`
	CustodianBankID string    `gorm:"type:uuid;not null" json:"custodian_bank_id"`
	CollectorBankID string    `gorm:"type:uuid;not null" json:"collector_bank_id"`
	NAV             int64     `gorm:"type:bigint;not null" json:"nav"`
	AUM             int64     `gorm:"type:bigint;not null" json:"aum"`
	RiskLevel       RiskLevel `gorm:"not null;default:Konservatif" json:"risk_level"`

	// Relationships
	Category      FundCategory `gorm:"foreignKey:CategoryID" json:"category"`
	CustodianBank Bank         `gorm:"foreignKey:CustodianBankID" json:"custodian_bank"`
	CollectorBank Bank         `gorm:"foreignKey:CollectorBankID" json:"collector_bank"`
}

// Bank is a reference entity acting as custodian or collector for funds.
type Bank struct {
	Base
	Name string `gorm:"uniqueIndex;not null" json:"name"`
}

// FundCategory groups funds by instrument type (money market, bonds, equity).
type FundCategory struct {
	Base
	Name string `gorm:"uniqueIndex;not null" json:"name"`
}

// FundHistory is a point-in-time NAV/AUM observation for a fund.
type FundHistory struct {
	Base
	FundID     string    `gorm:"type:uuid;not null;index" json:"fund_id"`
	RecordedAt time.Time `gorm:"not null;index" json:"recorded_at"`
	NAV        int64     `gorm:"type:bigint;not null" json:"nav"`
	AUM        int64     `gorm:"type:bigint;not null" json:"aum"`

	Fund Fund `gorm:"foreignKey:FundID" json:"-"`
}
