package service

import (
	"errors"
	"strings"

	"orgadmin_go/internal/event"
	"orgadmin_go/internal/model"
	"orgadmin_go/internal/repository"
)

// DeptInput 部门的业务字段，创建和更新共用。
type DeptInput struct {
	Name      string
	Code      string
	Leader    string
	Phone     string
	Status    int8
	Notes     string
	SortOrder int
}

// DeptService 封装部门领域逻辑。
// 树结构操作（查询、移动、复制、删除）由内嵌的通用编排承担，
// 这里只补充部门自身的业务规则（必填校验、编码唯一）。
type DeptService interface {
	Create(input DeptInput, parentID *uint64) (*model.Dept, error)
	// Update 更新业务字段；parentGiven 为 true 时同时变更父节点（nil 升为根）。
	Update(deptID uint64, input DeptInput, newParentID *uint64, parentGiven bool) (*model.Dept, error)
	Delete(deptID uint64) error
	Move(deptID uint64, newParentID *uint64) (*model.Dept, error)
	BulkMove(deptIDs []uint64, newParentID *uint64) ([]*model.Dept, error)
	CopySubtree(deptID uint64, newParentID *uint64) (*model.Dept, error)
	GetTree(rootID *uint64, depth int) ([]*model.Dept, error)
	GetSiblings(deptID uint64, includeSelf bool) ([]*model.Dept, error)
	GetAncestors(deptID uint64, includeSelf bool) ([]*model.Dept, error)
	FindByID(deptID uint64) (*model.Dept, error)
}

type deptService struct {
	treeOps[*model.Dept]
	deptRepo repository.DeptRepository
}

func NewDeptService(deptRepo repository.DeptRepository, hub *event.Hub) DeptService {
	return &deptService{
		treeOps:  newTreeOps[*model.Dept](deptRepo, hub, "dept"),
		deptRepo: deptRepo,
	}
}

// Create 创建部门。
// 关键规则：
// 1. name/code 必填，去除首尾空白。
// 2. code 全局唯一，先查重避免数据库唯一键报错直接外泄。
// 3. 父节点存在性、层级上限由树引擎校验。
func (s *deptService) Create(input DeptInput, parentID *uint64) (*model.Dept, error) {
	name := strings.TrimSpace(input.Name)
	code := strings.TrimSpace(input.Code)
	if name == "" || code == "" {
		return nil, ErrInvalidInput
	}

	if _, err := s.deptRepo.FindByCode(code); err == nil {
		return nil, ErrCodeAlreadyExists
	} else if !errors.Is(err, repository.ErrNodeNotFound) {
		return nil, mapTreeErr("Create", err)
	}

	dept := &model.Dept{
		Name:   name,
		Code:   code,
		Leader: strings.TrimSpace(input.Leader),
		Phone:  strings.TrimSpace(input.Phone),
		Status: input.Status,
		Notes:  input.Notes,
	}
	dept.SortOrder = input.SortOrder

	created, err := s.deptRepo.Create(dept, parentID)
	if err != nil {
		return nil, mapTreeErr("Create", err)
	}
	s.publish(event.OpCreate, created.ID)
	return created, nil
}

// Update 更新部门业务字段；携带不同父节点时按移动处理（含环检测和级联）。
func (s *deptService) Update(deptID uint64, input DeptInput, newParentID *uint64, parentGiven bool) (*model.Dept, error) {
	name := strings.TrimSpace(input.Name)
	code := strings.TrimSpace(input.Code)
	if name == "" || code == "" {
		return nil, ErrInvalidInput
	}

	// code 改动时查重，放过自身
	if existing, err := s.deptRepo.FindByCode(code); err == nil {
		if existing.ID != deptID {
			return nil, ErrCodeAlreadyExists
		}
	} else if !errors.Is(err, repository.ErrNodeNotFound) {
		return nil, mapTreeErr("Update", err)
	}

	updated, err := s.deptRepo.Update(deptID, newParentID, parentGiven, func(dept *model.Dept) {
		dept.Name = name
		dept.Code = code
		dept.Leader = strings.TrimSpace(input.Leader)
		dept.Phone = strings.TrimSpace(input.Phone)
		dept.Status = input.Status
		dept.Notes = input.Notes
		dept.SortOrder = input.SortOrder
	})
	if err != nil {
		return nil, mapTreeErr("Update", err)
	}
	s.publish(event.OpUpdate, deptID)
	return updated, nil
}
