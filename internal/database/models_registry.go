package database

import "kbomate/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.Team{},
		&models.User{},
		&models.Announcement{},
		&models.Banner{},
		&models.Report{},
		&models.UserBan{},
		&models.AdminPageRole{},
		&models.MatePost{},
		&models.MateComment{},
		&models.Summary{},
	}
}
