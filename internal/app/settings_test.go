package app

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Iam-Iftekhar/animerch/config"
	"github.com/Iam-Iftekhar/animerch/internal/domain"
)

func testApp(t *testing.T) *Application {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(domain.Tables...))

	a := NewApplication(config.DefaultAppConfig)
	a.OverrideDB(db)
	a.configManager = NewConfigManager(a)
	return a
}

func TestConfigManagerSetAndGet(t *testing.T) {
	a := testApp(t)
	m := a.configManager

	assert.Equal(t, "", m.GetString("system", "Missing"))

	require.NoError(t, m.SetValue("system", "SystemTitle", "Animerch"))
	assert.Equal(t, "Animerch", m.GetString("system", "SystemTitle"))

	// Second set updates in place instead of inserting a duplicate.
	require.NoError(t, m.SetValue("system", "SystemTitle", "Animerch 2"))
	assert.Equal(t, "Animerch 2", m.GetString("system", "SystemTitle"))
	var count int64
	require.NoError(t, a.gormDB.Model(&domain.SysConfig{}).
		Where("type = ? AND name = ?", "system", "SystemTitle").Count(&count).Error)
	assert.EqualValues(t, 1, count)

	require.NoError(t, m.SetValue("job", "audit_retention_days", "90"))
	assert.EqualValues(t, 90, m.GetInt64("job", "audit_retention_days"))
	require.NoError(t, m.SetValue("job", "sales_snapshot_enabled", "false"))
	assert.False(t, m.GetBool("job", "sales_snapshot_enabled"))
}

func TestLoadJobSettings(t *testing.T) {
	a := testApp(t)
	m := a.configManager

	// Defaults with an empty table.
	settings, err := m.LoadJobSettings()
	require.NoError(t, err)
	assert.EqualValues(t, 365, settings.AuditRetentionDays)
	assert.True(t, settings.SalesSnapshotEnabled)

	require.NoError(t, m.SetValue("job", "audit_retention_days", "30"))
	require.NoError(t, m.SetValue("job", "sales_snapshot_enabled", "false"))

	settings, err = m.LoadJobSettings()
	require.NoError(t, err)
	assert.EqualValues(t, 30, settings.AuditRetentionDays)
	assert.False(t, settings.SalesSnapshotEnabled)
}

func TestSeedChecksAreIdempotent(t *testing.T) {
	a := testApp(t)

	a.checkSuper()
	a.checkSuper()
	var users int64
	require.NoError(t, a.gormDB.Model(&domain.User{}).Count(&users).Error)
	assert.EqualValues(t, 1, users)

	var admin domain.User
	require.NoError(t, a.gormDB.Where("username = ?", "admin").First(&admin).Error)
	assert.Equal(t, domain.RoleAdmin, admin.Role)

	// A demoted admin is repaired on the next pass.
	require.NoError(t, a.gormDB.Model(&domain.User{}).Where("id = ?", admin.ID).
		Update("role", domain.RoleBuyer).Error)
	a.checkSuper()
	require.NoError(t, a.gormDB.First(&admin, admin.ID).Error)
	assert.Equal(t, domain.RoleAdmin, admin.Role)

	a.checkSettings()
	a.checkSettings()
	var settings int64
	require.NoError(t, a.gormDB.Model(&domain.SysConfig{}).Count(&settings).Error)
	assert.EqualValues(t, len(defaultSettings), settings)

	a.checkCategories()
	a.checkCategories()
	var cats int64
	require.NoError(t, a.gormDB.Model(&domain.Category{}).Count(&cats).Error)
	assert.EqualValues(t, len(defaultCategories), cats)
}
