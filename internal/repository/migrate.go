package repository

import "gorm.io/gorm"

// Migrate creates or updates the schema for every persisted model.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&userModel{},
		&teamModel{},
		&eventTypeModel{},
		&oauthClientModel{},
		&bookingModel{},
		&attendeeModel{},
	)
}
