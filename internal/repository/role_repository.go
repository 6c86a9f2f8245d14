package repository

import (
	"fmt"

	"orgadmin_go/internal/model"

	"gorm.io/gorm"
)

// RoleRepository 定义角色与角色授权的持久化操作。
type RoleRepository interface {
	Create(role *model.Role) error
	FindByCode(code string) (*model.Role, error)
	FindAll() ([]model.Role, error)
	Delete(roleID uint64) error

	// ListPermissionCodes 返回角色持有的全部权限编码。
	ListPermissionCodes(roleCode string) ([]string, error)
	// GrantPermissions 把角色的授权整体替换为给定权限集合，事务内完成。
	GrantPermissions(roleID uint64, permissionIDs []uint64) error
}

type roleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) Create(role *model.Role) error {
	if role == nil {
		return fmt.Errorf("role is nil")
	}
	return r.db.Create(role).Error
}

func (r *roleRepository) FindByCode(code string) (*model.Role, error) {
	var role model.Role
	if err := r.db.Where("code = ?", code).First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepository) FindAll() ([]model.Role, error) {
	var roles []model.Role
	if err := r.db.Order("id ASC").Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

// Delete 删除角色并清掉它的全部授权记录。
func (r *roleRepository) Delete(roleID uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", roleID).
			Delete(&model.RolePermission{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", roleID).Delete(&model.Role{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *roleRepository) ListPermissionCodes(roleCode string) ([]string, error) {
	var codes []string
	err := r.db.Model(&model.RolePermission{}).
		Joins("JOIN sys_roles ON sys_roles.id = sys_role_permissions.role_id").
		Joins("JOIN sys_permissions ON sys_permissions.id = sys_role_permissions.permission_id").
		Where("sys_roles.code = ?", roleCode).
		Pluck("sys_permissions.code", &codes).Error
	if err != nil {
		return nil, err
	}
	return codes, nil
}

// GrantPermissions 先清后插的整体替换，保证授权集合与请求一致。
func (r *roleRepository) GrantPermissions(roleID uint64, permissionIDs []uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var role model.Role
		if err := tx.Where("id = ?", roleID).First(&role).Error; err != nil {
			return err
		}
		if err := tx.Where("role_id = ?", roleID).
			Delete(&model.RolePermission{}).Error; err != nil {
			return err
		}
		if len(permissionIDs) == 0 {
			return nil
		}
		grants := make([]model.RolePermission, 0, len(permissionIDs))
		for _, pid := range permissionIDs {
			grants = append(grants, model.RolePermission{RoleID: roleID, PermissionID: pid})
		}
		return tx.Create(&grants).Error
	})
}
