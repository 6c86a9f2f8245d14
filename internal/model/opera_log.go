package model

import "time"

// OperaLog 对应数据库中 sys_opera_logs 表，记录每一次管理接口调用。
// RequestBody/ResponseBody 会在中间件里截断，防止大包体撑爆表。
type OperaLog struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"type:varchar(255);index" json:"username"`
	Method       string    `gorm:"type:varchar(10);not null" json:"method"`
	Path         string    `gorm:"type:varchar(255);not null;index" json:"path"`
	StatusCode   int       `gorm:"not null" json:"statusCode"`
	LatencyMs    int64     `gorm:"not null" json:"latencyMs"`
	ClientIP     string    `gorm:"type:varchar(64)" json:"clientIp"`
	UserAgent    string    `gorm:"type:varchar(255)" json:"userAgent"`
	RequestBody  string    `gorm:"type:text" json:"requestBody"`
	ResponseBody string    `gorm:"type:text" json:"responseBody"`
	CreatedAt    time.Time `gorm:"autoCreateTime;index" json:"createdAt"`
}

// TableName 指定 GORM 使用的表名
func (OperaLog) TableName() string {
	return "sys_opera_logs"
}
