package db

import (
	"tickerfeed/internal/models"
)

func AutoMigrate(db *DB) error {
	if db == nil || db.Gorm == nil || db.SQL == nil {
		return nil
	}

	return db.Gorm.AutoMigrate(
		&models.Post{},
		&models.PostLike{},
		&models.Comment{},
		&models.TickerInsight{},
	)
}
