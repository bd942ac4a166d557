package database

import (
	"context"
	"testing"

	"kbomate/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// memoryDB keeps a single connection so every statement sees the same in-memory database.
func memoryDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

var fanNoteMigrations = []Migration{
	{
		Version:    2,
		Name:       "fan_note_tags",
		UpScript:   `ALTER TABLE fan_notes ADD COLUMN tag TEXT;`,
		DownScript: `ALTER TABLE fan_notes DROP COLUMN tag;`,
	},
	{
		Version:    1,
		Name:       "fan_notes",
		UpScript:   `CREATE TABLE fan_notes (id INTEGER PRIMARY KEY, body TEXT NOT NULL);`,
		DownScript: `DROP TABLE fan_notes;`,
	},
}

func TestEmbeddedMigrations(t *testing.T) {
	migs := GetMigrations()
	require.GreaterOrEqual(t, len(migs), 2)

	for i, m := range migs {
		assert.NotEmpty(t, m.UpScript, m.String())
		assert.NotEmpty(t, m.DownScript, m.String())
		if i > 0 {
			assert.Greater(t, m.Version, migs[i-1].Version)
		}
	}
	assert.Equal(t, "000001_init", migs[0].String())
	assert.Contains(t, migs[0].UpScript, "CREATE TABLE IF NOT EXISTS mate_posts")

	require.NotNil(t, GetMigrationByVersion(2))
	assert.Nil(t, GetMigrationByVersion(999))
}

func TestMigrator_UpIsOrderedAndIdempotent(t *testing.T) {
	db := memoryDB(t)
	ctx := context.Background()
	m := NewMigrator(db, fanNoteMigrations)

	applied, err := m.Applied(ctx)
	require.NoError(t, err)
	assert.Empty(t, applied, "no log table yet")

	n, err := m.Up(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, db.Migrator().HasColumn("fan_notes", "tag"))

	n, err = m.Up(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	applied, err = m.Applied(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, applied)

	pending, err := m.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestMigrator_Down(t *testing.T) {
	db := memoryDB(t)
	ctx := context.Background()
	m := NewMigrator(db, fanNoteMigrations)
	_, err := m.Up(ctx)
	require.NoError(t, err)

	require.NoError(t, m.Down(ctx, 2))
	assert.False(t, db.Migrator().HasColumn("fan_notes", "tag"))

	pending, err := m.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "000002_fan_note_tags", pending[0].String())

	assert.ErrorContains(t, m.Down(ctx, 2), "has not been applied")
	assert.ErrorContains(t, m.Down(ctx, 42), "not found")
}

func TestMigrator_FailedScriptLeavesNoLogRow(t *testing.T) {
	db := memoryDB(t)
	ctx := context.Background()
	broken := append([]Migration{}, fanNoteMigrations[1], Migration{
		Version:    2,
		Name:       "broken",
		UpScript:   `CREATE TABLE fan_scores (id INTEGER PRIMARY KEY); INSERT INTO missing_table VALUES (1);`,
		DownScript: `DROP TABLE fan_scores;`,
	})
	m := NewMigrator(db, broken)

	n, err := m.Up(ctx)
	require.Error(t, err)
	assert.Equal(t, 1, n)

	applied, err := m.Applied(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, applied)
	assert.False(t, db.Migrator().HasTable("fan_scores"))
}

func TestMigrator_UnknownLoggedVersion(t *testing.T) {
	db := memoryDB(t)
	ctx := context.Background()
	require.NoError(t, db.AutoMigrate(&MigrationLog{}))
	require.NoError(t, db.Create(&[]MigrationLog{
		{Version: 1, Name: "fan_notes"}, {Version: 7, Name: "newer"}, {Version: 5, Name: "newer"},
	}).Error)

	_, err := NewMigrator(db, fanNoteMigrations).Pending(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "000005, 000007")
}

func TestPlanSchema(t *testing.T) {
	tests := []struct {
		name     string
		env      string
		mode     string
		allow    bool
		wantSQL  bool
		wantAuto bool
		wantErr  bool
	}{
		{name: "hybrid dev", env: "development", mode: "", wantSQL: true, wantAuto: true},
		{name: "hybrid prod", env: "production", mode: "hybrid", wantSQL: true, wantAuto: false},
		{name: "sql only", env: "development", mode: "sql", wantSQL: true},
		{name: "auto dev", env: "development", mode: "AUTO", wantAuto: true},
		{name: "auto prod refused", env: "production", mode: "auto", wantErr: true},
		{name: "auto staging allowed", env: "staging", mode: "auto", allow: true, wantAuto: true},
		{name: "unknown mode", env: "development", mode: "yolo", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{Env: tt.env, DBSchemaMode: tt.mode, DBAutoMigrateAllowDestructive: tt.allow}
			plan, err := PlanSchema(cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, plan.RunSQL)
			assert.Equal(t, tt.wantAuto, plan.RunAuto)
		})
	}
}

func TestApplySchema_AutoCreatesDomainTables(t *testing.T) {
	db := memoryDB(t)
	cfg := &config.Config{Env: "test", DBSchemaMode: SchemaModeAuto}

	require.NoError(t, ApplySchema(context.Background(), db, cfg))
	for _, model := range PersistentModels() {
		assert.True(t, db.Migrator().HasTable(model), "%T", model)
	}
	assert.True(t, db.Migrator().HasTable("mate_posts"))
	assert.False(t, db.Migrator().HasTable(&MigrationLog{}), "auto mode skips the SQL migrations")
}

func TestGetSchemaStatus(t *testing.T) {
	t.Run("auto mode skips the log", func(t *testing.T) {
		status, err := GetSchemaStatus(context.Background(), nil, &config.Config{Env: "test", DBSchemaMode: "auto"})
		require.NoError(t, err)
		assert.Equal(t, SchemaModeAuto, status.Mode)
		assert.False(t, status.RunSQL)
		assert.True(t, status.RunAuto)
		assert.Empty(t, status.PendingMigrations)
	})

	t.Run("sql mode lists every embedded migration as pending on an empty database", func(t *testing.T) {
		db := memoryDB(t)
		status, err := GetSchemaStatus(context.Background(), db, &config.Config{Env: "test", DBSchemaMode: "sql"})
		require.NoError(t, err)
		assert.Empty(t, status.AppliedVersions)
		assert.Len(t, status.PendingMigrations, len(GetMigrations()))
		assert.False(t, db.Migrator().HasTable(&MigrationLog{}), "status does not create the log table")
	})
}
