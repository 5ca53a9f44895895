package reposition

import (
	"errors"
	"fmt"
	"garmentflow/bizerror"
	"garmentflow/domain"
	"garmentflow/persistence"
	"time"

	"github.com/jinzhu/gorm"
)

const FolioPrefix = "JN-REQ"

// FolioAllocationAttempts bounds the create transactions run when folio allocation loses a race.
const FolioAllocationAttempts = 3

var NextFolioFunc = NextFolio

// FolioPrefixOf returns the prefix shared by the folios of the month of t, e.g. JN-REQ-03-24-.
func FolioPrefixOf(t time.Time) string {
	return fmt.Sprintf("%s-%02d-%02d-", FolioPrefix, int(t.Month()), t.Year()%100)
}

func FormatFolio(prefix string, counter int) string {
	return fmt.Sprintf("%s%03d", prefix, counter)
}

// NextFolio allocates the next folio of the month of now. The counter row of the month is created
// on first use, seeded with the folios already stored under the same prefix, and then advanced by
// compare-and-swap: a concurrent allocation makes one of the callers fail instead of reusing a folio.
func NextFolio(tx *gorm.DB, now time.Time) (string, error) {
	prefix := FolioPrefixOf(now)

	seq := domain.FolioSequence{}
	err := tx.Where("prefix = ?", prefix).First(&seq).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		existed := 0
		if err := tx.Model(&domain.Reposition{}).Where("folio LIKE ?", prefix+"%").Count(&existed).Error; err != nil {
			return "", err
		}
		seq = domain.FolioSequence{Prefix: prefix, NextValue: existed + 1}
		if err := tx.Create(&seq).Error; err != nil {
			if persistence.IsUniqueViolation(err) {
				return "", bizerror.ErrConcurrentModification
			}
			return "", err
		}
	} else if err != nil {
		return "", err
	}

	db := tx.Model(&domain.FolioSequence{}).Where("prefix = ? AND next_value = ?", prefix, seq.NextValue).
		Update("next_value", seq.NextValue+1)
	if db.Error != nil {
		return "", db.Error
	}
	if db.RowsAffected != 1 {
		return "", bizerror.ErrConcurrentModification
	}
	return FormatFolio(prefix, seq.NextValue), nil
}
