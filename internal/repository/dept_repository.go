package repository

import (
	"errors"

	"orgadmin_go/internal/cache"
	"orgadmin_go/internal/model"

	"gorm.io/gorm"
)

// DeptRepository 部门持久化接口，树结构操作由通用引擎承担。
type DeptRepository interface {
	TreeRepository[*model.Dept]

	FindByCode(code string) (*model.Dept, error)
}

type deptRepository struct {
	TreeRepository[*model.Dept]
	db *gorm.DB
}

func NewDeptRepository(db *gorm.DB, treeCache *cache.TreeCache, maxDepth int) DeptRepository {
	return &deptRepository{
		TreeRepository: NewTreeRepository(db, treeCache, func() *model.Dept { return &model.Dept{} }, maxDepth),
		db:             db,
	}
}

func (r *deptRepository) FindByCode(code string) (*model.Dept, error) {
	var dept model.Dept
	if err := r.db.Where("code = ?", code).First(&dept).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNodeNotFound
		}
		return nil, wrapStore(err)
	}
	return &dept, nil
}
