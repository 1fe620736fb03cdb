package app

import (
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"gorm.io/gorm"

	"github.com/Iam-Iftekhar/animerch/internal/domain"
	"github.com/Iam-Iftekhar/animerch/pkg/common"
)

// ConfigManager reads tunables from the sys_config table.
type ConfigManager struct {
	appCtx DBProvider
}

func NewConfigManager(appCtx DBProvider) *ConfigManager {
	return &ConfigManager{appCtx: appCtx}
}

func (m *ConfigManager) getValue(category, name string) (string, bool) {
	var row domain.SysConfig
	err := m.appCtx.DB().
		Where("type = ? AND name = ?", category, name).
		First(&row).Error
	if err != nil {
		return "", false
	}
	return row.Value, true
}

func (m *ConfigManager) GetString(category, name string) string {
	v, _ := m.getValue(category, name)
	return v
}

func (m *ConfigManager) GetInt64(category, name string) int64 {
	v, ok := m.getValue(category, name)
	if !ok {
		return 0
	}
	return cast.ToInt64(v)
}

func (m *ConfigManager) GetBool(category, name string) bool {
	v, ok := m.getValue(category, name)
	if !ok {
		return false
	}
	return cast.ToBool(v)
}

// SetValue upserts one settings row.
func (m *ConfigManager) SetValue(category, name, value string) error {
	db := m.appCtx.DB()
	var row domain.SysConfig
	err := db.Where("type = ? AND name = ?", category, name).First(&row).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return db.Create(&domain.SysConfig{
			ID:    common.UUIDint64(),
			Type:  category,
			Name:  name,
			Value: value,
		}).Error
	case err != nil:
		return err
	}
	return db.Model(&domain.SysConfig{}).Where("id = ?", row.ID).
		Update("value", value).Error
}

// JobSettings are the scheduler tunables kept in sys_config under the
// "job" category.
type JobSettings struct {
	AuditRetentionDays   int64 `mapstructure:"audit_retention_days"`
	SalesSnapshotEnabled bool  `mapstructure:"sales_snapshot_enabled"`
}

// LoadJobSettings decodes the job category into a typed struct; missing
// rows keep their defaults.
func (m *ConfigManager) LoadJobSettings() (*JobSettings, error) {
	settings := &JobSettings{
		AuditRetentionDays:   365,
		SalesSnapshotEnabled: true,
	}

	var rows []domain.SysConfig
	if err := m.appCtx.DB().Where("type = ?", "job").Find(&rows).Error; err != nil {
		return settings, errors.Wrap(err, "query job settings")
	}
	if len(rows) == 0 {
		return settings, nil
	}

	raw := make(map[string]interface{}, len(rows))
	for _, row := range rows {
		raw[row.Name] = row.Value
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           settings,
	})
	if err != nil {
		return settings, err
	}
	if err := decoder.Decode(raw); err != nil {
		return settings, errors.Wrap(err, "decode job settings")
	}
	return settings, nil
}
