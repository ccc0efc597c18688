package main

import (
	"fmt"
	"os"

	"tibib/internal/database"
	"tibib/internal/logger"
	"tibib/internal/models"

	"gorm.io/gorm"
)

// Reference data matching the production catalog. Funds are examples
// spanning the category and risk spectrum so the flows have something
// to buy against a fresh database.
var bankNames = []string{"BCA", "Mandiri", "BNI", "Permata", "CIMB Niaga"}

var categoryNames = []string{
	"Reksadana Pasar Uang",
	"Reksadana Pendapatan Tetap",
	"Reksadana Campuran",
	"Reksadana Saham",
}

type seedFund struct {
	name      string
	category  string
	nav       int64
	aum       int64
	riskLevel models.RiskLevel
}

var seedFunds = []seedFund{
	{"Dana Likuid Pasar Uang", "Reksadana Pasar Uang", 1042, 2_500_000_000_000, models.RiskConservative},
	{"Obligasi Negara Stabil", "Reksadana Pendapatan Tetap", 1890, 1_200_000_000_000, models.RiskConservative},
	{"Campuran Berimbang Plus", "Reksadana Campuran", 2315, 850_000_000_000, models.RiskModerate},
	{"Saham Unggulan Nusantara", "Reksadana Saham", 4120, 3_100_000_000_000, models.RiskAggressive},
}

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Seed error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	db := dbManager.DB()

	banks := make(map[string]*models.Bank, len(bankNames))
	for _, name := range bankNames {
		bank := &models.Bank{Name: name}
		if err := firstOrCreate(db, bank, "name = ?", name); err != nil {
			return fmt.Errorf("seeding bank %s: %w", name, err)
		}
		banks[name] = bank
		log.Infof("Bank ready: %s", name)
	}

	categories := make(map[string]*models.FundCategory, len(categoryNames))
	for _, name := range categoryNames {
		category := &models.FundCategory{Name: name}
		if err := firstOrCreate(db, category, "name = ?", name); err != nil {
			return fmt.Errorf("seeding category %s: %w", name, err)
		}
		categories[name] = category
		log.Infof("Category ready: %s", name)
	}

	custodian := banks["BCA"]
	collector := banks["Mandiri"]
	for _, f := range seedFunds {
		fund := &models.Fund{
			Name:            f.name,
			CategoryID:      categories[f.category].ID,
			CustodianBankID: custodian.ID,
			CollectorBankID: collector.ID,
			NAV:             f.nav,
			AUM:             f.aum,
			RiskLevel:       f.riskLevel,
		}
		if err := firstOrCreate(db, fund, "name = ?", f.name); err != nil {
			return fmt.Errorf("seeding fund %s: %w", f.name, err)
		}
		log.Infof("Fund ready: %s (NAV %d)", f.name, f.nav)
	}

	log.Info("Seed complete")
	return nil
}

func firstOrCreate(db *gorm.DB, dest interface{}, query string, args ...interface{}) error {
	return db.Where(query, args...).FirstOrCreate(dest).Error
}
