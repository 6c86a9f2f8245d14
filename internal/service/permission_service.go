package service

import (
	"errors"
	"strings"

	"orgadmin_go/internal/event"
	"orgadmin_go/internal/model"
	"orgadmin_go/internal/repository"
)

// PermissionInput 权限节点的业务字段。
type PermissionInput struct {
	Name      string
	Code      string
	PermType  string
	Status    int8
	SortOrder int
}

// PermissionService 封装权限（菜单）树的领域逻辑。
type PermissionService interface {
	Create(input PermissionInput, parentID *uint64) (*model.Permission, error)
	Update(permID uint64, input PermissionInput, newParentID *uint64, parentGiven bool) (*model.Permission, error)
	Delete(permID uint64) error
	Move(permID uint64, newParentID *uint64) (*model.Permission, error)
	BulkMove(permIDs []uint64, newParentID *uint64) ([]*model.Permission, error)
	CopySubtree(permID uint64, newParentID *uint64) (*model.Permission, error)
	GetTree(rootID *uint64, depth int) ([]*model.Permission, error)
	GetSiblings(permID uint64, includeSelf bool) ([]*model.Permission, error)
	GetAncestors(permID uint64, includeSelf bool) ([]*model.Permission, error)
	FindByID(permID uint64) (*model.Permission, error)
}

type permissionService struct {
	treeOps[*model.Permission]
	permRepo repository.PermissionRepository
}

func NewPermissionService(permRepo repository.PermissionRepository, hub *event.Hub) PermissionService {
	return &permissionService{
		treeOps:  newTreeOps[*model.Permission](permRepo, hub, "permission"),
		permRepo: permRepo,
	}
}

func validPermType(t string) bool {
	switch t {
	case model.PermTypeMenu, model.PermTypeAPI, model.PermTypeButton:
		return true
	}
	return false
}

func (s *permissionService) Create(input PermissionInput, parentID *uint64) (*model.Permission, error) {
	name := strings.TrimSpace(input.Name)
	code := strings.TrimSpace(input.Code)
	if name == "" || code == "" || !validPermType(input.PermType) {
		return nil, ErrInvalidInput
	}

	if _, err := s.permRepo.FindByCode(code); err == nil {
		return nil, ErrCodeAlreadyExists
	} else if !errors.Is(err, repository.ErrNodeNotFound) {
		return nil, mapTreeErr("Create", err)
	}

	perm := &model.Permission{
		Name:     name,
		Code:     code,
		PermType: input.PermType,
		Status:   input.Status,
	}
	perm.SortOrder = input.SortOrder

	created, err := s.permRepo.Create(perm, parentID)
	if err != nil {
		return nil, mapTreeErr("Create", err)
	}
	s.publish(event.OpCreate, created.ID)
	return created, nil
}

func (s *permissionService) Update(permID uint64, input PermissionInput, newParentID *uint64, parentGiven bool) (*model.Permission, error) {
	name := strings.TrimSpace(input.Name)
	code := strings.TrimSpace(input.Code)
	if name == "" || code == "" || !validPermType(input.PermType) {
		return nil, ErrInvalidInput
	}

	if existing, err := s.permRepo.FindByCode(code); err == nil {
		if existing.ID != permID {
			return nil, ErrCodeAlreadyExists
		}
	} else if !errors.Is(err, repository.ErrNodeNotFound) {
		return nil, mapTreeErr("Update", err)
	}

	updated, err := s.permRepo.Update(permID, newParentID, parentGiven, func(perm *model.Permission) {
		perm.Name = name
		perm.Code = code
		perm.PermType = input.PermType
		perm.Status = input.Status
		perm.SortOrder = input.SortOrder
	})
	if err != nil {
		return nil, mapTreeErr("Update", err)
	}
	s.publish(event.OpUpdate, permID)
	return updated, nil
}
