package model

import "time"

// 内置角色编码。ADMIN 在权限校验中直接放行。
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// User 对应数据库中 sys_users 表。
// Role 引用 sys_roles.code；DeptID 指向部门树中的节点，可为空（未分配部门）。
type User struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Username  string    `gorm:"type:varchar(255);not null;unique" json:"username"`
	Password  string    `gorm:"type:varchar(255);not null" json:"-"` // Hide password in json output
	Role      string    `gorm:"type:varchar(64);not null;default:'USER'" json:"role"`
	DeptID    *uint64   `gorm:"index" json:"deptId"`
	Status    int8      `gorm:"default:1" json:"status"` // 1: 正常, 0: 禁用
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName 指定 GORM 使用的表名
func (User) TableName() string {
	return "sys_users"
}
