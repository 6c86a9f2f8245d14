package model

import "time"

// Role 对应数据库中 sys_roles 表。
// Code 是用户表里引用的角色编码，ADMIN 是内置超级管理员角色，绕过权限校验。
type Role struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Code      string    `gorm:"type:varchar(64);not null;uniqueIndex" json:"code"`
	Name      string    `gorm:"type:varchar(64);not null" json:"name"`
	Notes     string    `gorm:"type:varchar(255)" json:"notes"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName 指定 GORM 使用的表名
func (Role) TableName() string {
	return "sys_roles"
}

// RolePermission 是角色与权限节点的关联表。
type RolePermission struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	RoleID       uint64    `gorm:"index:idx_role_perm,unique;not null" json:"roleId"`
	PermissionID uint64    `gorm:"index:idx_role_perm,unique;not null" json:"permissionId"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// TableName 指定 GORM 使用的表名
func (RolePermission) TableName() string {
	return "sys_role_permissions"
}
