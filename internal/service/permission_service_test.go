package service

import (
	"errors"
	"testing"

	"orgadmin_go/internal/model"
	"orgadmin_go/internal/repository"
)

type fakePermRepo struct {
	findByIDFn   func(id uint64) (*model.Permission, error)
	createFn     func(node *model.Permission, parentID *uint64) (*model.Permission, error)
	updateFn     func(id uint64, newParentID *uint64, parentGiven bool, mutate func(*model.Permission)) (*model.Permission, error)
	findByCodeFn func(code string) (*model.Permission, error)
}

func (f *fakePermRepo) FindByID(id uint64) (*model.Permission, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(id)
	}
	return nil, repository.ErrNodeNotFound
}
func (f *fakePermRepo) Create(node *model.Permission, parentID *uint64) (*model.Permission, error) {
	if f.createFn != nil {
		return f.createFn(node, parentID)
	}
	node.ID = 1
	return node, nil
}
func (f *fakePermRepo) Update(id uint64, newParentID *uint64, parentGiven bool, mutate func(*model.Permission)) (*model.Permission, error) {
	if f.updateFn != nil {
		return f.updateFn(id, newParentID, parentGiven, mutate)
	}
	perm := &model.Permission{}
	perm.ID = id
	if mutate != nil {
		mutate(perm)
	}
	return perm, nil
}
func (f *fakePermRepo) Move(nodeID uint64, newParentID *uint64) (*model.Permission, error) {
	perm := &model.Permission{}
	perm.ID = nodeID
	return perm, nil
}
func (f *fakePermRepo) BulkMove(nodeIDs []uint64, newParentID *uint64) ([]*model.Permission, error) {
	return nil, nil
}
func (f *fakePermRepo) CopySubtree(nodeID uint64, newParentID *uint64) (*model.Permission, error) {
	return nil, repository.ErrNodeNotFound
}
func (f *fakePermRepo) Delete(nodeID uint64) error {
	return nil
}
func (f *fakePermRepo) GetTree(rootID *uint64, maxDepth int) ([]*model.Permission, error) {
	return []*model.Permission{}, nil
}
func (f *fakePermRepo) GetSiblings(nodeID uint64, includeSelf bool) ([]*model.Permission, error) {
	return []*model.Permission{}, nil
}
func (f *fakePermRepo) GetAncestors(nodeID uint64, includeSelf bool) ([]*model.Permission, error) {
	return []*model.Permission{}, nil
}
func (f *fakePermRepo) FindByCode(code string) (*model.Permission, error) {
	if f.findByCodeFn != nil {
		return f.findByCodeFn(code)
	}
	return nil, repository.ErrNodeNotFound
}

func TestPermissionService_Create_Success(t *testing.T) {
	repo := &fakePermRepo{
		createFn: func(node *model.Permission, parentID *uint64) (*model.Permission, error) {
			node.ID = 7
			node.Path = "/7/"
			node.Level = 1
			return node, nil
		},
	}
	svc := NewPermissionService(repo, nil)

	perm, err := svc.Create(PermissionInput{
		Name:     "部门管理",
		Code:     "dept:manage",
		PermType: model.PermTypeMenu,
		Status:   1,
	}, nil)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if perm.PermType != model.PermTypeMenu {
		t.Fatalf("expect permType %q, got %q", model.PermTypeMenu, perm.PermType)
	}
	if perm.ID != 7 || perm.Path != "/7/" {
		t.Fatalf("unexpected perm: %+v", perm)
	}
}

func TestPermissionService_Create_UnknownPermType(t *testing.T) {
	svc := NewPermissionService(&fakePermRepo{}, nil)

	_, err := svc.Create(PermissionInput{
		Name:     "部门管理",
		Code:     "dept:manage",
		PermType: "widget",
	}, nil)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expect ErrInvalidInput for unknown perm type, got %v", err)
	}
}

func TestPermissionService_Create_DuplicateCode(t *testing.T) {
	repo := &fakePermRepo{
		findByCodeFn: func(code string) (*model.Permission, error) {
			perm := &model.Permission{Code: code}
			perm.ID = 3
			return perm, nil
		},
	}
	svc := NewPermissionService(repo, nil)

	_, err := svc.Create(PermissionInput{
		Name:     "部门管理",
		Code:     "dept:manage",
		PermType: model.PermTypeAPI,
	}, nil)
	if !errors.Is(err, ErrCodeAlreadyExists) {
		t.Fatalf("expect ErrCodeAlreadyExists, got %v", err)
	}
}

func TestPermissionService_Update_KeepsOwnCode(t *testing.T) {
	repo := &fakePermRepo{
		findByCodeFn: func(code string) (*model.Permission, error) {
			perm := &model.Permission{Code: code}
			perm.ID = 7
			return perm, nil
		},
	}
	svc := NewPermissionService(repo, nil)

	perm, err := svc.Update(7, PermissionInput{
		Name:     "部门管理",
		Code:     "dept:manage",
		PermType: model.PermTypeButton,
		Status:   1,
	}, nil, false)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if perm.PermType != model.PermTypeButton {
		t.Fatalf("expect permType %q, got %q", model.PermTypeButton, perm.PermType)
	}
}

func TestPermissionService_Update_MissingPermType(t *testing.T) {
	svc := NewPermissionService(&fakePermRepo{}, nil)

	_, err := svc.Update(7, PermissionInput{
		Name: "部门管理",
		Code: "dept:manage",
	}, nil, false)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expect ErrInvalidInput for empty perm type, got %v", err)
	}
}
