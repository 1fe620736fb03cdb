package app

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Iam-Iftekhar/animerch/internal/domain"
	"github.com/Iam-Iftekhar/animerch/internal/mailer"
	"github.com/Iam-Iftekhar/animerch/internal/order"
	"github.com/Iam-Iftekhar/animerch/pkg/common"
)

func (a *Application) initEventHandlers() {
	m, err := mailer.New(a.appConfig.Smtp, a.gormDB)
	if err != nil {
		zap.L().Error("init mailer error", zap.Error(err))
	} else {
		a.orderMailer = m
		err := a.bus.Subscribe(order.TopicOrderCreated, func(evt order.CreatedEvent) {
			// runtime toggle, checked per order so it applies without restart
			if !a.configManager.GetBool("mail", "order_confirm_enabled") {
				return
			}
			m.OnOrderCreated(evt)
		})
		if err != nil {
			zap.L().Error("subscribe order mail handler error", zap.Error(err))
		}
	}

	if err := a.bus.Subscribe(order.TopicOrderCreated, a.onOrderCreatedAudit); err != nil {
		zap.L().Error("subscribe order audit handler error", zap.Error(err))
	}
}

// onOrderCreatedAudit writes an audit trail row for each placed order.
func (a *Application) onOrderCreatedAudit(evt order.CreatedEvent) {
	var user domain.User
	username := ""
	if err := a.gormDB.Where("id = ?", evt.UserID).First(&user).Error; err == nil {
		username = user.Username
	}
	err := a.gormDB.Create(&domain.AuditLog{
		ID:       common.UUIDint64(),
		Username: username,
		Action:   "order.created",
		Detail: fmt.Sprintf("order %d placed, %d items, total %.2f",
			evt.OrderID, evt.ItemCount, evt.TotalPrice),
		OptTime: time.Now(),
	}).Error
	if err != nil {
		zap.L().Error("write order audit log error", zap.Error(err))
	}
}
