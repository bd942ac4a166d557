package database

import (
	"testing"

	"kbomate/internal/config"
	"kbomate/internal/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestConfigurePool(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	cfg := &config.Config{
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           5,
		DBConnMaxLifetimeMinutes: 15,
	}
	require.NoError(t, configurePool(db, cfg))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 10, sqlDB.Stats().MaxOpenConnections)
}

func TestGetReadDB_FallsBackToPrimary(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	prevDB, prevRead := DB, readDB
	t.Cleanup(func() { DB, readDB = prevDB, prevRead })

	DB, readDB = db, nil
	assert.Same(t, db, GetReadDB())
}

func TestRegisterQueryMetrics(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, RegisterQueryMetrics(db))
	require.NoError(t, db.AutoMigrate(&models.Team{}))

	require.NoError(t, db.Create(&models.Team{Name: "LG 트윈스", Slug: "lg-twins"}).Error)

	var teams []models.Team
	require.NoError(t, db.Find(&teams).Error)
	assert.Len(t, teams, 1)
	assert.Positive(t, observedQueries(t, "create", "teams"))
}

func observedQueries(t *testing.T, op, table string) uint64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "kbomate_database_query_latency_seconds" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["operation"] == op && labels["table"] == table {
				return m.GetHistogram().GetSampleCount()
			}
		}
	}
	return 0
}
