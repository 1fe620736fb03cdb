package app

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Iam-Iftekhar/animerch/internal/domain"
	"github.com/Iam-Iftekhar/animerch/pkg/common"
)

func (a *Application) checkSuper() {
	const superUsername = "admin"
	const superEmail = "admin@animerch.local"
	const defaultPassword = "animerch"

	hashed, err := bcrypt.GenerateFromPassword([]byte(defaultPassword), bcrypt.DefaultCost)
	if err != nil {
		zap.L().Error("failed to hash default admin password", zap.Error(err))
		return
	}

	var admin domain.User
	err = a.gormDB.Where("username = ?", superUsername).First(&admin).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := a.gormDB.Create(&domain.User{
			ID:        common.UUIDint64(),
			Username:  superUsername,
			Email:     superEmail,
			Password:  string(hashed),
			Role:      domain.RoleAdmin,
			Avatar:    domain.DefaultAvatar,
			LastLogin: time.Now(),
		}).Error; err != nil {
			zap.L().Error("failed to create default admin", zap.Error(err))
		} else {
			zap.L().Info("initialized default admin account", zap.String("username", superUsername))
		}
		return
	case err != nil:
		zap.L().Error("failed to query admin account", zap.Error(err))
		return
	}

	resetPassword := strings.TrimSpace(admin.Password) == ""
	resetRole := admin.Role != domain.RoleAdmin

	if !resetPassword && !resetRole {
		return
	}

	updates := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if resetPassword {
		updates["password"] = string(hashed)
	}
	if resetRole {
		updates["role"] = domain.RoleAdmin
	}

	if err := a.gormDB.Model(&domain.User{}).Where("id = ?", admin.ID).Updates(updates).Error; err != nil {
		zap.L().Error("failed to repair admin account", zap.Error(err))
		return
	}

	zap.L().Warn("repaired default admin account",
		zap.String("username", superUsername),
		zap.Bool("passwordReset", resetPassword),
		zap.Bool("roleReset", resetRole))
}

type settingSeed struct {
	Category string
	Name     string
	Value    string
	Remark   string
}

var defaultSettings = []settingSeed{
	{"system", "SystemTitle", "Animerch", "Site title shown in page headers"},
	{"system", "SystemTheme", "light", "Default UI theme"},
	{"mail", "order_confirm_enabled", "true", "Send order confirmation email"},
	{"job", "audit_retention_days", "365", "Days to keep audit log rows"},
	{"job", "sales_snapshot_enabled", "true", "Log a daily sales snapshot"},
	{"checkout", "order_success_message", "Order placed successfully!", "Flash shown after checkout"},
}

func (a *Application) checkSettings() {
	for sortid, seed := range defaultSettings {
		var count int64
		a.gormDB.Model(&domain.SysConfig{}).
			Where("type = ? and name = ?", seed.Category, seed.Name).
			Count(&count)
		if count > 0 {
			continue
		}
		a.gormDB.Create(&domain.SysConfig{
			ID:     common.UUIDint64(),
			Sort:   sortid,
			Type:   seed.Category,
			Name:   seed.Name,
			Value:  seed.Value,
			Remark: seed.Remark,
		})
		zap.L().Info("initialized config",
			zap.String("category", seed.Category),
			zap.String("name", seed.Name),
			zap.String("default", seed.Value))
	}
}

var defaultCategories = []string{
	"Merchandise",
	"Figures",
	"Apparel",
	"Posters",
}

func (a *Application) checkCategories() {
	for _, name := range defaultCategories {
		var count int64
		a.gormDB.Model(&domain.Category{}).
			Where("name = ?", name).
			Count(&count)
		if count > 0 {
			continue
		}
		if err := a.gormDB.Create(&domain.Category{
			ID:   common.UUIDint64(),
			Name: name,
		}).Error; err != nil {
			zap.L().Error("failed to seed category",
				zap.String("name", name), zap.Error(err))
			continue
		}
		zap.L().Info("initialized category", zap.String("name", name))
	}
}
