package files

import (
	"fmt"

	"github.com/alpacahq/gopaca/db"
	"github.com/alpacahq/goregistry/models"
	"github.com/alpacahq/goregistry/models/enum"
	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *FileTestSuite) TestPositions() {
	holderA := s.seedHolder("Astrid Holm", enum.Individual)
	holderB := s.seedHolder("Meridian Capital LLC", enum.Corporation)

	s.seedHolding(holderA, enum.Common, 1200)
	s.seedHolding(holderB, enum.Common, 800)
	s.seedHolding(holderB, enum.PreferredA, 300)

	header := "holder_number,holder_id,legal_name,share_class,shares_outstanding,as_of_date\n"

	// clean file - every record and every class total matches
	{
		buf := []byte(header +
			row("HLD00001", holderA.ID, holderA.LegalName, "COMMON", 1200) +
			row("HLD00002", holderB.ID, holderB.LegalName, "COMMON", 800) +
			row("HLD00002", holderB.ID, holderB.LegalName, "PREFERRED_A", 300))

		regFile := &PositionFile{}
		require.Nil(s.T(), Parse(buf, regFile))

		processed, errors := regFile.Sync(s.asOf)
		assert.Equal(s.T(), uint(3), processed)
		assert.Equal(s.T(), uint(0), errors)
		assert.Zero(s.T(), s.errorCount(s.asOf.Format("2006-01-02")))
	}

	// mismatched shares - the record errors, and the class total
	// no longer conserves
	{
		asOf := s.asOf.AddDate(0, 0, 1)

		buf := []byte(header +
			row("HLD00001", holderA.ID, holderA.LegalName, "COMMON", 1100) +
			row("HLD00002", holderB.ID, holderB.LegalName, "COMMON", 800) +
			row("HLD00002", holderB.ID, holderB.LegalName, "PREFERRED_A", 300))

		regFile := &PositionFile{}
		require.Nil(s.T(), Parse(buf, regFile))

		processed, errors := regFile.Sync(asOf)
		assert.Equal(s.T(), uint(2), processed)
		assert.Equal(s.T(), uint(2), errors)

		stored := []models.BatchError{}
		require.Nil(s.T(), db.DB().
			Where("process_date = ?", asOf.Format("2006-01-02")).
			Order("primary_record_identifier").
			Find(&stored).Error)
		require.Len(s.T(), stored, 2)
		assert.Equal(s.T(), "CLASS_TOTAL", stored[0].PrimaryRecordIdentifier)
		assert.Equal(s.T(), "COMMON", stored[0].SecondaryRecordIdentifier)
		assert.Equal(s.T(), "HLD00001", stored[1].PrimaryRecordIdentifier)
	}

	// holder the register has never seen
	{
		asOf := s.asOf.AddDate(0, 0, 2)

		buf := []byte(header +
			row("HLD00001", holderA.ID, holderA.LegalName, "COMMON", 1200) +
			row("HLD00002", holderB.ID, holderB.LegalName, "COMMON", 800) +
			row("HLD00002", holderB.ID, holderB.LegalName, "PREFERRED_A", 300) +
			row("HLD09999", uuid.Must(uuid.NewV4()).String(), "Ghost Holdings", "COMMON", 0))

		regFile := &PositionFile{}
		require.Nil(s.T(), Parse(buf, regFile))

		processed, errors := regFile.Sync(asOf)
		assert.Equal(s.T(), uint(3), processed)
		assert.Equal(s.T(), uint(1), errors)
		assert.Equal(s.T(), 1, s.errorCount(asOf.Format("2006-01-02")))
	}

	// legal name drifted at the registrar
	{
		asOf := s.asOf.AddDate(0, 0, 3)

		buf := []byte(header +
			row("HLD00001", holderA.ID, "Astrid Holm-Svensson", "COMMON", 1200) +
			row("HLD00002", holderB.ID, holderB.LegalName, "COMMON", 800) +
			row("HLD00002", holderB.ID, holderB.LegalName, "PREFERRED_A", 300))

		regFile := &PositionFile{}
		require.Nil(s.T(), Parse(buf, regFile))

		processed, errors := regFile.Sync(asOf)
		assert.Equal(s.T(), uint(2), processed)
		assert.Equal(s.T(), uint(1), errors)
	}

	// unknown share class never reaches the DB
	{
		asOf := s.asOf.AddDate(0, 0, 4)

		buf := []byte(header +
			row("HLD00001", holderA.ID, holderA.LegalName, "COMMON", 1200) +
			row("HLD00002", holderB.ID, holderB.LegalName, "COMMON", 800) +
			row("HLD00002", holderB.ID, holderB.LegalName, "PREFERRED_A", 300) +
			row("HLD00002", holderB.ID, holderB.LegalName, "SERIES_Z", 10))

		regFile := &PositionFile{}
		require.Nil(s.T(), Parse(buf, regFile))

		processed, errors := regFile.Sync(asOf)
		assert.Equal(s.T(), uint(3), processed)
		assert.Equal(s.T(), uint(1), errors)
	}

	// registrar clock ran ahead - rows dated past the run day never
	// sync, and neither do rows whose date won't parse at all
	{
		asOf := s.asOf.AddDate(0, 0, 5)

		buf := []byte(header +
			rowDated("2026-08-27", "HLD00001", holderA.ID, holderA.LegalName, "COMMON", 1200) +
			rowDated("08/21/2026", "HLD00002", holderB.ID, holderB.LegalName, "COMMON", 800) +
			row("HLD00002", holderB.ID, holderB.LegalName, "PREFERRED_A", 300))

		regFile := &PositionFile{}
		require.Nil(s.T(), Parse(buf, regFile))

		processed, errors := regFile.Sync(asOf)
		assert.Equal(s.T(), uint(1), processed)
		// both bad rows, plus the COMMON class total they left short
		assert.Equal(s.T(), uint(3), errors)
		assert.Equal(s.T(), 3, s.errorCount(asOf.Format("2006-01-02")))
	}

	// registrar drops an empty file
	{
		regFile := &PositionFile{}
		assert.NotNil(s.T(), Parse([]byte{}, regFile))
	}
}

func (s *FileTestSuite) seedHolder(name string, entityType enum.EntityType) *models.Shareholder {
	email := fmt.Sprintf("%s@example.com", uuid.Must(uuid.NewV4()).String())
	holder := &models.Shareholder{
		Status:     enum.ShareholderActive,
		EntityType: entityType,
		LegalName:  name,
		Email:      &email,
	}
	require.Nil(s.T(), db.DB().Create(holder).Error)
	return holder
}

func (s *FileTestSuite) seedHolding(holder *models.Shareholder, class enum.ShareClass, shares int64) {
	require.Nil(s.T(), db.DB().Create(&models.Holding{
		ShareholderID:     holder.ID,
		Class:             class,
		SharesIssued:      shares,
		SharesOutstanding: shares,
		ConsiderationPaid: decimal.Zero,
		AcquiredAt:        s.asOf,
	}).Error)
}

func (s *FileTestSuite) errorCount(date string) (count int) {
	db.DB().
		Model(&models.BatchError{}).
		Where("process_date = ?", date).
		Count(&count)
	return
}

func row(number, id, name, class string, shares int64) string {
	return rowDated("2026-08-21", number, id, name, class, shares)
}

func rowDated(dated, number, id, name, class string, shares int64) string {
	return fmt.Sprintf("%v,%v,%v,%v,%v,%v\n", number, id, name, class, shares, dated)
}
