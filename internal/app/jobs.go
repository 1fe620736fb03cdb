package app

import (
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
	"go.uber.org/zap"

	"github.com/Iam-Iftekhar/animerch/internal/domain"
	"github.com/Iam-Iftekhar/animerch/pkg/metrics"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func (a *Application) initJob() {
	loc, _ := time.LoadLocation(a.appConfig.System.Location)
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	var err error
	_, err = a.sched.AddFunc("@every 30s", func() {
		go a.SchedSystemMonitorTask()
		go a.SchedProcessMonitorTask()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	_, err = a.sched.AddFunc("@daily", func() {
		a.SchedClearExpireData()
		a.SchedSalesSnapshotTask()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	a.sched.Start()
}

// SchedSystemMonitorTask system monitor
func (a *Application) SchedSystemMonitorTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	_cpuuse, err := cpu.Percent(0, false)
	if err == nil && len(_cpuuse) > 0 {
		metrics.SetGauge("system_cpuuse", int64(_cpuuse[0]*100)) // Store as percentage * 100
	}

	_meminfo, err := mem.VirtualMemory()
	if err == nil {
		metrics.SetGauge("system_memuse", int64(_meminfo.Used/1024/1024)) //nolint:gosec // G115: memory MB value fits in int64
	}
}

// SchedProcessMonitorTask app process monitor
func (a *Application) SchedProcessMonitorTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	p, err := process.NewProcess(int32(os.Getpid())) //nolint:gosec // G115: PID is always within int32 range
	if err != nil {
		return
	}

	cpuuse, err := p.CPUPercent()
	if err == nil {
		metrics.SetGauge("animerch_cpuuse", int64(cpuuse*100)) // Store as percentage * 100
	}

	meminfo, err := p.MemoryInfo()
	if err == nil {
		metrics.SetGauge("animerch_memuse", int64(meminfo.RSS/1024/1024)) //nolint:gosec // G115: memory MB value fits in int64
	}
}

// SchedClearExpireData prunes audit rows past the configured retention.
func (a *Application) SchedClearExpireData() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	settings, err := a.configManager.LoadJobSettings()
	if err != nil {
		zap.S().Errorf("load job settings error %s", err.Error())
	}
	retention := time.Duration(settings.AuditRetentionDays) * 24 * time.Hour
	a.gormDB.
		Where("opt_time < ? ", time.Now().Add(-retention)).
		Delete(domain.AuditLog{})
}

// SchedSalesSnapshotTask logs a one line summary of the previous day's orders.
func (a *Application) SchedSalesSnapshotTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	settings, err := a.configManager.LoadJobSettings()
	if err != nil || !settings.SalesSnapshotEnabled {
		return
	}

	since := time.Now().Add(-24 * time.Hour)
	var snapshot struct {
		Orders  int64
		Revenue float64
	}
	err = a.gormDB.Model(&domain.Order{}).
		Select("COUNT(*) as orders, COALESCE(SUM(total_price), 0) as revenue").
		Where("created_at >= ?", since).
		Scan(&snapshot).Error
	if err != nil {
		zap.S().Errorf("sales snapshot error %s", err.Error())
		return
	}

	metrics.SetGauge("daily_orders", snapshot.Orders)
	zap.L().Info("daily sales snapshot",
		zap.Int64("orders", snapshot.Orders),
		zap.Float64("revenue", snapshot.Revenue))
}
