package domain

import (
	"time"
)

type SysConfig struct {
	ID        int64     `json:"id,string"   form:"id"`
	Sort      int       `json:"sort"  form:"sort"`
	Type      string    `gorm:"index" json:"type" form:"type"`
	Name      string    `gorm:"index" json:"name" form:"name"`
	Value     string    `json:"value" form:"value"`
	Remark    string    `json:"remark" form:"remark"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (SysConfig) TableName() string {
	return "sys_config"
}

// AuditLog records security and order events for the admin trail.
type AuditLog struct {
	ID       int64     `json:"id,string"`
	Username string    `gorm:"index" json:"username"`
	SrcIp    string    `json:"src_ip"`
	Action   string    `gorm:"index" json:"action"`
	Detail   string    `json:"detail"`
	OptTime  time.Time `json:"opt_time"`
}

// TableName Specify table name
func (AuditLog) TableName() string {
	return "audit_log"
}
