package repository

import (
	"errors"

	"orgadmin_go/internal/cache"
	"orgadmin_go/internal/model"

	"gorm.io/gorm"
)

// PermissionRepository 权限（菜单）持久化接口，树结构操作由通用引擎承担。
type PermissionRepository interface {
	TreeRepository[*model.Permission]

	FindByCode(code string) (*model.Permission, error)
}

type permissionRepository struct {
	TreeRepository[*model.Permission]
	db *gorm.DB
}

func NewPermissionRepository(db *gorm.DB, treeCache *cache.TreeCache, maxDepth int) PermissionRepository {
	return &permissionRepository{
		TreeRepository: NewTreeRepository(db, treeCache, func() *model.Permission { return &model.Permission{} }, maxDepth),
		db:             db,
	}
}

func (r *permissionRepository) FindByCode(code string) (*model.Permission, error) {
	var perm model.Permission
	if err := r.db.Where("code = ?", code).First(&perm).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNodeNotFound
		}
		return nil, wrapStore(err)
	}
	return &perm, nil
}
