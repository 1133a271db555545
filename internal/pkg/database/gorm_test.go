package database

import (
	"ViewCounter/internal/api/config"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGormDBSQLite(t *testing.T) {
	db, err := NewGormDB(&config.DBConfig{
		Driver:      "sqlite",
		DSN:         ":memory:",
		MaxIdle:     1,
		MaxOpen:     1,
		AutoMigrate: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	assert.True(t, db.Migrator().HasTable("view_counters"))
	assert.True(t, db.Migrator().HasTable("view_daily_metrics"))
}

func TestNewGormDBUnknownDriver(t *testing.T) {
	_, err := NewGormDB(&config.DBConfig{Driver: "oracle"})
	assert.Error(t, err)
}

func TestDescribeDSNHidesPassword(t *testing.T) {
	got := describeDSN(&config.DBConfig{
		Driver: "mysql",
		DSN:    "user:secret@tcp(db.internal:3306)/views?parseTime=true",
	})
	assert.Equal(t, "db.internal:3306/views", got)
	assert.NotContains(t, got, "secret")
}
