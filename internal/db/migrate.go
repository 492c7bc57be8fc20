package db

import (
	"tradesim/internal/journal"
)

func AutoMigrate(db *DB) error {
	if db == nil || db.Gorm == nil || db.SQL == nil {
		return nil
	}
	return db.Gorm.AutoMigrate(
		&journal.RunRecord{},
		&journal.TradeRecord{},
	)
}
