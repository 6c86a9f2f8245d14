package service

import (
	"errors"

	"orgadmin_go/internal/event"
	"orgadmin_go/internal/model"
	"orgadmin_go/internal/repository"
	"orgadmin_go/pkg/log"
)

// treeOps 聚合树形实体服务共用的编排逻辑：
// 1. 把 repository 层的树错误转换为 service 哨兵错误。
// 2. 结构写操作成功后向事件中枢广播变更。
// 部门、权限等树形实体服务内嵌本类型获得全部树操作。
type treeOps[T model.TreeEntity[T]] struct {
	repo   repository.TreeRepository[T]
	hub    *event.Hub
	entity string
}

func newTreeOps[T model.TreeEntity[T]](repo repository.TreeRepository[T], hub *event.Hub, entity string) treeOps[T] {
	return treeOps[T]{repo: repo, hub: hub, entity: entity}
}

// mapTreeErr 统一树操作的错误语义。
// 未识别的错误记日志后收敛为 ErrInternal，避免底层细节外泄。
func mapTreeErr(op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrNodeNotFound):
		return ErrNodeNotFound
	case errors.Is(err, repository.ErrParentNotFound):
		return ErrParentNotFound
	case errors.Is(err, repository.ErrTreeCycle):
		return ErrTreeCycle
	case errors.Is(err, repository.ErrTreeDepthExceeded):
		return ErrTreeDepthExceeded
	default:
		log.Errorf("%s: tree operation failed: %v", op, err)
		return ErrInternal
	}
}

func (o *treeOps[T]) publish(op string, nodeID uint64) {
	if o.hub == nil {
		return
	}
	o.hub.Publish(event.TreeEvent{Entity: o.entity, Op: op, NodeID: nodeID})
}

func (o *treeOps[T]) GetTree(rootID *uint64, depth int) ([]T, error) {
	forest, err := o.repo.GetTree(rootID, depth)
	if err != nil {
		return nil, mapTreeErr("GetTree", err)
	}
	return forest, nil
}

func (o *treeOps[T]) GetSiblings(nodeID uint64, includeSelf bool) ([]T, error) {
	siblings, err := o.repo.GetSiblings(nodeID, includeSelf)
	if err != nil {
		return nil, mapTreeErr("GetSiblings", err)
	}
	return siblings, nil
}

func (o *treeOps[T]) GetAncestors(nodeID uint64, includeSelf bool) ([]T, error) {
	ancestors, err := o.repo.GetAncestors(nodeID, includeSelf)
	if err != nil {
		return nil, mapTreeErr("GetAncestors", err)
	}
	return ancestors, nil
}

func (o *treeOps[T]) Move(nodeID uint64, newParentID *uint64) (T, error) {
	node, err := o.repo.Move(nodeID, newParentID)
	if err != nil {
		var zero T
		return zero, mapTreeErr("Move", err)
	}
	o.publish(event.OpMove, nodeID)
	return node, nil
}

// BulkMove 保持尽力而为语义：返回成功移动的节点，单个失败不中断。
func (o *treeOps[T]) BulkMove(nodeIDs []uint64, newParentID *uint64) ([]T, error) {
	if len(nodeIDs) == 0 {
		return nil, ErrInvalidInput
	}
	moved, err := o.repo.BulkMove(nodeIDs, newParentID)
	if err != nil {
		return nil, mapTreeErr("BulkMove", err)
	}
	for _, node := range moved {
		o.publish(event.OpMove, node.GetID())
	}
	return moved, nil
}

func (o *treeOps[T]) CopySubtree(nodeID uint64, newParentID *uint64) (T, error) {
	copied, err := o.repo.CopySubtree(nodeID, newParentID)
	if err != nil {
		var zero T
		return zero, mapTreeErr("CopySubtree", err)
	}
	o.publish(event.OpCopy, copied.GetID())
	return copied, nil
}

func (o *treeOps[T]) Delete(nodeID uint64) error {
	if err := o.repo.Delete(nodeID); err != nil {
		return mapTreeErr("Delete", err)
	}
	o.publish(event.OpDelete, nodeID)
	return nil
}

func (o *treeOps[T]) FindByID(nodeID uint64) (T, error) {
	node, err := o.repo.FindByID(nodeID)
	if err != nil {
		var zero T
		return zero, mapTreeErr("FindByID", err)
	}
	return node, nil
}
