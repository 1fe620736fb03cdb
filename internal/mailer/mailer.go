// Package mailer delivers order-confirmation email off the request path.
package mailer

import (
	"fmt"

	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"
	"gorm.io/gorm"

	"github.com/Iam-Iftekhar/animerch/config"
	"github.com/Iam-Iftekhar/animerch/internal/domain"
	"github.com/Iam-Iftekhar/animerch/internal/order"
)

type Mailer struct {
	cfg  config.SmtpConfig
	db   *gorm.DB
	pool *ants.Pool
}

// New creates a mailer with a bounded delivery pool. With no SMTP host
// configured the mailer stays constructed but sends nothing.
func New(cfg config.SmtpConfig, db *gorm.DB) (*Mailer, error) {
	pool, err := ants.NewPool(4, ants.WithNonblocking(true))
	if err != nil {
		return nil, errors.Wrap(err, "create mail pool")
	}
	return &Mailer{cfg: cfg, db: db, pool: pool}, nil
}

func (m *Mailer) Enabled() bool {
	return m.cfg.Host != "" && m.cfg.From != ""
}

// OnOrderCreated queues a confirmation for the order's buyer. Delivery
// failures are logged, never surfaced to checkout.
func (m *Mailer) OnOrderCreated(evt order.CreatedEvent) {
	if !m.Enabled() {
		return
	}
	err := m.pool.Submit(func() {
		var user domain.User
		if err := m.db.Where("id = ?", evt.UserID).First(&user).Error; err != nil {
			zap.L().Warn("order mail skipped, buyer not found",
				zap.Int64("order_id", evt.OrderID), zap.Error(err))
			return
		}
		if err := m.send(user.Email, evt); err != nil {
			zap.L().Warn("order mail failed",
				zap.Int64("order_id", evt.OrderID), zap.Error(err))
		}
	})
	if err != nil {
		zap.L().Warn("mail pool full, confirmation dropped",
			zap.Int64("order_id", evt.OrderID))
	}
}

func (m *Mailer) send(to string, evt order.CreatedEvent) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", fmt.Sprintf("Order %d confirmed", evt.OrderID))
	msg.SetBody("text/plain", fmt.Sprintf(
		"Thanks for your purchase!\n\nOrder: %d\nItems: %d\nTotal: $%.2f\nPlaced: %s\n",
		evt.OrderID, evt.ItemCount, evt.TotalPrice, evt.PlacedAt.Format("2006-01-02 15:04")))

	d := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.Username, m.cfg.Password)
	return d.DialAndSend(msg)
}

// Release drains the delivery pool.
func (m *Mailer) Release() {
	m.pool.Release()
}
