package domain

import "github.com/jinzhu/gorm"

// Entities lists every table owned by the reposition domain.
func Entities() []interface{} {
	return []interface{}{
		&Reposition{}, &RepositionPiece{}, &RepositionProduct{}, &RepositionContrastFabric{},
		&RepositionTransfer{}, &RepositionTimer{}, &RepositionHistory{}, &RepositionMaterial{},
		&RepositionDocument{}, &FolioSequence{}, &Notification{},
	}
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Entities()...).Error
}
