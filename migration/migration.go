package migration

import (
	"strings"

	"github.com/alpacahq/goregistry/models"
	"github.com/alpacahq/goregistry/models/enum"
	"github.com/alpacahq/goregistry/stream"
	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
	gormigrate "gopkg.in/gormigrate.v1"
)

// Migration contains all of the incremental migrations that the database
// requires to keep its schema and models up to date with current GoRegistry
// source code.
func Migration(db *gorm.DB) *gormigrate.Gormigrate {
	return gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		// initial migration
		{
			ID: "202501140937",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&models.Administrator{}).Error; err != nil {
					return err
				}
				if err := tx.AutoMigrate(&models.AccessKey{}).Error; err != nil {
					return err
				}
				if err := tx.AutoMigrate(&models.Shareholder{}).Error; err != nil {
					return err
				}
				if err := tx.AutoMigrate(&models.ShareClass{}).Error; err != nil {
					return err
				}
				if err := tx.AutoMigrate(&models.Holding{}).Error; err != nil {
					return err
				}
				if err := tx.AutoMigrate(&models.LedgerEntry{}).Error; err != nil {
					return err
				}
				if err := tx.AutoMigrate(&models.JournalCursor{}).Error; err != nil {
					return err
				}
				if err := tx.Create(
					&models.JournalCursor{
						Topic:        stream.LedgerUpdates,
						LastSequence: uint(0),
					}).Error; err != nil {
					return err
				}
				if err := tx.AutoMigrate(&models.ApprovalWorkflow{}).Error; err != nil {
					return err
				}
				if err := tx.AutoMigrate(&models.WorkflowStep{}).Error; err != nil {
					return err
				}
				if err := tx.AutoMigrate(&models.Resolution{}).Error; err != nil {
					return err
				}
				if err := tx.AutoMigrate(&models.ResolutionSignature{}).Error; err != nil {
					return err
				}
				return tx.AutoMigrate(&models.CapTableSnapshot{}).Error
			},
			Rollback: func(tx *gorm.DB) error {
				return nil
			},
		},
		// constitutional share classes
		{
			ID: "202501211423",
			Migrate: func(tx *gorm.DB) error {
				one := decimal.New(1, 0)
				oneAndHalf := decimal.New(15, -1)
				eightPct := decimal.New(8, -2)
				ipo := "qualified_ipo"

				classes := []models.ShareClass{
					{
						Class:           enum.Common,
						Name:            "Common Stock",
						VotingWeight:    one,
						LiquidationPref: one,
						AntiDilution:    enum.AntiDilutionNone,
						TotalAuthorized: 10000000,
					},
					{
						Class:             enum.PreferredA,
						Name:              "Series A Preferred",
						VotingWeight:      one,
						Convertible:       true,
						ConversionRatio:   &one,
						ConversionTrigger: &ipo,
						LiquidationPref:   one,
						DividendRate:      &eightPct,
						AntiDilution:      enum.AntiDilutionWeightedAverage,
						BoardSeats:        1,
						TotalAuthorized:   3000000,
					},
					{
						Class:             enum.PreferredB,
						Name:              "Series B Preferred",
						VotingWeight:      one,
						Convertible:       true,
						ConversionRatio:   &one,
						ConversionTrigger: &ipo,
						LiquidationPref:   oneAndHalf,
						DividendRate:      &eightPct,
						AntiDilution:      enum.AntiDilutionWeightedAverage,
						BoardSeats:        1,
						TotalAuthorized:   2000000,
					},
					{
						Class:              enum.Founder,
						Name:               "Founder Stock",
						VotingWeight:       decimal.New(10, 0),
						LiquidationPref:    one,
						AntiDilution:       enum.AntiDilutionNone,
						BoardSeats:         2,
						TransferRestricted: true,
						TotalAuthorized:    2000000,
					},
					{
						Class:              enum.OptionPool,
						Name:               "Employee Option Pool",
						VotingWeight:       decimal.Zero,
						LiquidationPref:    one,
						AntiDilution:       enum.AntiDilutionNone,
						TransferRestricted: true,
						TotalAuthorized:    1500000,
					},
				}

				for i := range classes {
					if err := tx.Create(&classes[i]).Error; err != nil {
						return err
					}
				}

				return nil
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Delete(&models.ShareClass{}).Error
			},
		},
		// dividend remittance details
		{
			ID: "202502031117",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.Exec("ALTER TABLE shareholders ADD COLUMN bank_name text").Error; err != nil && !strings.Contains(err.Error(), "already exists") {
					return err
				}
				if err := tx.Exec("ALTER TABLE shareholders ADD COLUMN bank_account_masked varchar(20)").Error; err != nil && !strings.Contains(err.Error(), "already exists") {
					return err
				}
				return nil
			},
			Rollback: func(tx *gorm.DB) error {
				if err := tx.Model(&models.Shareholder{}).DropColumn("bank_name").Error; err != nil && !strings.Contains(err.Error(), "does not exist") {
					return err
				}
				if err := tx.Model(&models.Shareholder{}).DropColumn("bank_account_masked").Error; err != nil && !strings.Contains(err.Error(), "does not exist") {
					return err
				}
				return nil
			},
		},
		// composite indexes for holder statement scans
		{
			ID: "202503181025",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.Exec("CREATE INDEX idx_ledger_entries_from_side ON ledger_entries (from_holder_id, from_class)").Error; err != nil && !strings.Contains(err.Error(), "already exists") {
					return err
				}
				if err := tx.Exec("CREATE INDEX idx_ledger_entries_to_side ON ledger_entries (to_holder_id, to_class)").Error; err != nil && !strings.Contains(err.Error(), "already exists") {
					return err
				}
				return nil
			},
			Rollback: func(tx *gorm.DB) error {
				if err := tx.Exec("DROP INDEX idx_ledger_entries_from_side").Error; err != nil && !strings.Contains(err.Error(), "does not exist") {
					return err
				}
				if err := tx.Exec("DROP INDEX idx_ledger_entries_to_side").Error; err != nil && !strings.Contains(err.Error(), "does not exist") {
					return err
				}
				return nil
			},
		},
		// admin notes on shareholder records
		{
			ID: "202504220848",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.AdminNote{}).Error
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.DropTable("admin_notes").Error
			},
		},
		// worker sweep markers for escalations and outcome notices
		{
			ID: "202506091312",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.Exec("ALTER TABLE approval_workflows ADD COLUMN escalated_at TIMESTAMP WITH TIME ZONE").Error; err != nil && !strings.Contains(err.Error(), "already exists") {
					return err
				}
				if err := tx.Exec("ALTER TABLE approval_workflows ADD COLUMN notified_at TIMESTAMP WITH TIME ZONE").Error; err != nil && !strings.Contains(err.Error(), "already exists") {
					return err
				}
				return nil
			},
			Rollback: func(tx *gorm.DB) error {
				if err := tx.Model(&models.ApprovalWorkflow{}).DropColumn("escalated_at").Error; err != nil && !strings.Contains(err.Error(), "does not exist") {
					return err
				}
				if err := tx.Model(&models.ApprovalWorkflow{}).DropColumn("notified_at").Error; err != nil && !strings.Contains(err.Error(), "does not exist") {
					return err
				}
				return nil
			},
		},
		// registrar reconciliation batch tables
		{
			ID: "202507170940",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&models.BatchError{}).Error; err != nil {
					return err
				}
				return tx.AutoMigrate(&models.BatchMetric{}).Error
			},
			Rollback: func(tx *gorm.DB) error {
				if err := tx.DropTable("batch_errors").Error; err != nil {
					return err
				}
				return tx.DropTable("batch_metrics").Error
			},
		},
		// encrypted tax id storage
		{
			ID: "202508121040",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.Exec("ALTER TABLE shareholders ADD COLUMN hash_tax_id bytea").Error; err != nil && !strings.Contains(err.Error(), "already exists") {
					return err
				}
				return nil
			},
			Rollback: func(tx *gorm.DB) error {
				if err := tx.Model(&models.Shareholder{}).DropColumn("hash_tax_id").Error; err != nil && !strings.Contains(err.Error(), "does not exist") {
					return err
				}
				return nil
			},
		},
	})
}
