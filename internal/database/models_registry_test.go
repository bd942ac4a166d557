package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestPersistentModels_AutoMigrateOnSQLite(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(PersistentModels()...))

	for _, table := range []string{"teams", "users", "announcements", "banners", "reports", "user_bans", "admin_page_roles", "mate_posts", "mate_comments", "summaries"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}
