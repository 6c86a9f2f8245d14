package model

import "time"

// 登录日志的结果状态。
const (
	LoginStatusFailure int8 = 0
	LoginStatusSuccess int8 = 1
)

// LoginLog 对应数据库中 sys_login_logs 表。
// 登录成功与失败各记一条，和操作日志分开存，
// 方便单独做登录审计与失败告警。
type LoginLog struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Username  string    `gorm:"type:varchar(255);index" json:"username"`
	ClientIP  string    `gorm:"type:varchar(64)" json:"clientIp"`
	UserAgent string    `gorm:"type:varchar(255)" json:"userAgent"`
	Status    int8      `gorm:"not null;index" json:"status"`
	Message   string    `gorm:"type:varchar(255)" json:"message"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"createdAt"`
}

// TableName 指定 GORM 使用的表名
func (LoginLog) TableName() string {
	return "sys_login_logs"
}
