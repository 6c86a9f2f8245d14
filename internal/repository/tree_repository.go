package repository

import (
	"encoding/json"
	"errors"
	"fmt"

	"orgadmin_go/internal/cache"
	"orgadmin_go/internal/model"
	"orgadmin_go/pkg/log"

	"gorm.io/gorm"
)

var (
	// ErrNodeNotFound 目标节点不存在。
	ErrNodeNotFound = errors.New("tree node not found")
	// ErrParentNotFound 指定的父节点不存在。
	ErrParentNotFound = errors.New("parent node not found")
	// ErrTreeCycle 移动会使节点成为自己的后代。
	ErrTreeCycle = errors.New("cannot move node under its own descendant")
	// ErrTreeDepthExceeded 创建/移动后的层级超过配置上限。
	ErrTreeDepthExceeded = errors.New("tree depth exceeds configured limit")
	// ErrTreeCorrupted 级联遍历深度超过硬上限，说明路径数据已损坏。
	ErrTreeCorrupted = errors.New("tree path data corrupted")
)

// hardPathDepthLimit 是级联遍历的硬性递归上限。
// 成环在移动前已被拦截，这里只防脏数据导致的栈溢出：宁可报错也不崩进程。
const hardPathDepthLimit = 64

// TreeRepository 是物化路径树的通用持久化引擎。
// path/level/parent_id 三个结构字段由本层独占计算和回写，
// 所有结构写操作都在单个事务内完成，失败整体回滚。
// 缓存失效发生在事务提交前；缓存本身的故障从不影响主操作。
type TreeRepository[T model.TreeEntity[T]] interface {
	FindByID(id uint64) (T, error)

	// Create 持久化新节点。parentID 是权威的父节点指定，
	// 节点上预填的结构字段会被覆盖。两阶段写入：先插入拿到自增 ID，
	// 再用 ID 回写 path/level/parent_id（path 中嵌着自增 ID，没法一次写完）。
	Create(node T, parentID *uint64) (T, error)

	// Update 更新非结构字段。mutate 在事务内对已加载的节点执行修改；
	// parentGiven 为 true 且 newParentID 与当前父节点不同时，先按移动处理。
	Update(id uint64, newParentID *uint64, parentGiven bool, mutate func(T)) (T, error)

	// Move 把节点挂到新父节点下（nil 表示升为根），并级联重算所有后代的路径。
	Move(nodeID uint64, newParentID *uint64) (T, error)

	// BulkMove 逐个移动，单个失败记日志后跳过，不保证批量原子性。
	// 返回成功移动的节点。
	BulkMove(nodeIDs []uint64, newParentID *uint64) ([]T, error)

	// CopySubtree 把节点及其整棵子树深拷贝到新父节点下，返回新的子树根。
	CopySubtree(nodeID uint64, newParentID *uint64) (T, error)

	// Delete 删除节点及其整棵子树（按路径前缀匹配），单事务完成。
	Delete(nodeID uint64) error

	// GetTree 返回以 rootID 为根的嵌套子树（nil 表示整片森林）。
	// maxDepth > 0 时限制根以下的层数，-1 不限制。读走缓存。
	GetTree(rootID *uint64, maxDepth int) ([]T, error)

	// GetSiblings 返回同一父节点下的节点，按 sort_order 升序。
	GetSiblings(nodeID uint64, includeSelf bool) ([]T, error)

	// GetAncestors 返回从根到该节点的祖先链，按 level 升序。
	GetAncestors(nodeID uint64, includeSelf bool) ([]T, error)
}

type treeRepository[T model.TreeEntity[T]] struct {
	db        *gorm.DB
	treeCache *cache.TreeCache
	newNode   func() T
	entity    string
	maxDepth  int // 业务层级上限，只在创建/移动时校验
}

func NewTreeRepository[T model.TreeEntity[T]](db *gorm.DB, treeCache *cache.TreeCache, newNode func() T, maxDepth int) TreeRepository[T] {
	return &treeRepository[T]{
		db:        db,
		treeCache: treeCache,
		newNode:   newNode,
		entity:    newNode().EntityName(),
		maxDepth:  maxDepth,
	}
}

// wrapStore 把底层存储错误统一包一层领域语义，保留原始信息供排查。
func wrapStore(err error) error {
	return fmt.Errorf("tree store operation failed: %w", err)
}

func (r *treeRepository[T]) findByIDTx(tx *gorm.DB, id uint64) (T, error) {
	node := r.newNode()
	if err := tx.Where("id = ?", id).First(node).Error; err != nil {
		var zero T
		return zero, err
	}
	return node, nil
}

func (r *treeRepository[T]) FindByID(id uint64) (T, error) {
	node, err := r.findByIDTx(r.db, id)
	if err != nil {
		var zero T
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return zero, ErrNodeNotFound
		}
		return zero, wrapStore(err)
	}
	return node, nil
}

// applyRootPath / applyChildPath 是结构字段的唯一推导入口。
func (r *treeRepository[T]) applyRootPath(node T) {
	node.SetTreeFields(model.RootPath(node.GetID()), 1, nil)
}

func (r *treeRepository[T]) applyChildPath(node, parent T) {
	pid := parent.GetID()
	node.SetTreeFields(model.ChildPath(parent.GetPath(), node.GetID()), parent.GetLevel()+1, &pid)
}

// saveTreeFields 只回写三个结构字段，避免覆盖并发更新过的业务字段。
func (r *treeRepository[T]) saveTreeFields(tx *gorm.DB, node T) error {
	err := tx.Model(r.newNode()).Where("id = ?", node.GetID()).
		Updates(map[string]interface{}{
			"parent_id": node.GetParentID(),
			"path":      node.GetPath(),
			"level":     node.GetLevel(),
		}).Error
	if err != nil {
		return wrapStore(err)
	}
	return nil
}

// propagate 把 node 已经更新好的路径级联到所有后代。
// 子节点按 sort_order 升序遍历，保证结果确定；每个后代恰好被访问一次。
// 只在调用方事务内暂存写入，从不提交。
func (r *treeRepository[T]) propagate(tx *gorm.DB, node T, depth int) error {
	if depth >= hardPathDepthLimit {
		return fmt.Errorf("%w: node %d at depth %d", ErrTreeCorrupted, node.GetID(), depth)
	}

	var children []T
	if err := tx.Where("parent_id = ?", node.GetID()).
		Order("sort_order ASC").Find(&children).Error; err != nil {
		return wrapStore(err)
	}

	for _, child := range children {
		r.applyChildPath(child, node)
		if err := r.saveTreeFields(tx, child); err != nil {
			return err
		}
		if err := r.propagate(tx, child, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func (r *treeRepository[T]) Create(node T, parentID *uint64) (T, error) {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if _, err := r.createTx(tx, node, parentID); err != nil {
			return err
		}
		// 新节点出现在所有祖先的子树视图和森林视图里，一并失效
		r.treeCache.InvalidateTree(r.entity, model.PathIDs(node.GetPath()))
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return node, nil
}

func (r *treeRepository[T]) createTx(tx *gorm.DB, node T, parentID *uint64) (T, error) {
	var zero T

	var parent T
	hasParent := false
	if parentID != nil {
		p, err := r.findByIDTx(tx, *parentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return zero, ErrParentNotFound
			}
			return zero, wrapStore(err)
		}
		if r.maxDepth > 0 && p.GetLevel()+1 > r.maxDepth {
			return zero, ErrTreeDepthExceeded
		}
		parent = p
		hasParent = true
	}

	// 两阶段：插入后才知道自增 ID，再推导并回写路径
	if err := tx.Create(node).Error; err != nil {
		return zero, wrapStore(err)
	}
	if hasParent {
		r.applyChildPath(node, parent)
	} else {
		r.applyRootPath(node)
	}
	if err := r.saveTreeFields(tx, node); err != nil {
		return zero, err
	}
	return node, nil
}

func sameParent(a, b *uint64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (r *treeRepository[T]) Update(id uint64, newParentID *uint64, parentGiven bool, mutate func(T)) (T, error) {
	var node T
	err := r.db.Transaction(func(tx *gorm.DB) error {
		n, err := r.findByIDTx(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNodeNotFound
			}
			return wrapStore(err)
		}
		node = n

		affected := model.PathIDs(node.GetPath())
		// 载荷里带了不同的父节点，按移动处理
		if parentGiven && !sameParent(node.GetParentID(), newParentID) {
			ids, err := r.moveTx(tx, node, newParentID)
			if err != nil {
				return err
			}
			affected = ids
		}

		if mutate != nil {
			mutate(node)
		}
		if err := tx.Save(node).Error; err != nil {
			return wrapStore(err)
		}
		r.treeCache.InvalidateTree(r.entity, affected)
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return node, nil
}

// moveTx 执行结构移动的核心步骤：环检测、父节点解析、路径推导、级联。
// 返回受影响的节点 ID（旧祖先链 + 新祖先链），供缓存失效使用。
// 环检测先于任何写入，命中时不产生任何变更。
func (r *treeRepository[T]) moveTx(tx *gorm.DB, node T, newParentID *uint64) ([]uint64, error) {
	oldPath := node.GetPath()

	if newParentID != nil {
		if node.GetID() == *newParentID {
			return nil, ErrTreeCycle
		}
		parent, err := r.findByIDTx(tx, *newParentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrParentNotFound
			}
			return nil, wrapStore(err)
		}
		// 候选父节点的祖先链（由其 path 编码）包含该节点即成环
		if model.PathContainsID(parent.GetPath(), node.GetID()) {
			return nil, ErrTreeCycle
		}
		if r.maxDepth > 0 && parent.GetLevel()+1 > r.maxDepth {
			return nil, ErrTreeDepthExceeded
		}
		r.applyChildPath(node, parent)
	} else {
		r.applyRootPath(node)
	}

	if err := r.saveTreeFields(tx, node); err != nil {
		return nil, err
	}
	if err := r.propagate(tx, node, node.GetLevel()); err != nil {
		return nil, err
	}

	return append(model.PathIDs(oldPath), model.PathIDs(node.GetPath())...), nil
}

func (r *treeRepository[T]) Move(nodeID uint64, newParentID *uint64) (T, error) {
	var node T
	err := r.db.Transaction(func(tx *gorm.DB) error {
		n, err := r.findByIDTx(tx, nodeID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNodeNotFound
			}
			return wrapStore(err)
		}
		node = n

		affected, err := r.moveTx(tx, node, newParentID)
		if err != nil {
			return err
		}
		r.treeCache.InvalidateTree(r.entity, affected)
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return node, nil
}

// BulkMove 尽力而为语义：不提供跨批次的原子性，部分成功是文档化行为。
func (r *treeRepository[T]) BulkMove(nodeIDs []uint64, newParentID *uint64) ([]T, error) {
	moved := make([]T, 0, len(nodeIDs))
	for _, id := range nodeIDs {
		node, err := r.Move(id, newParentID)
		if err != nil {
			log.Warnf("bulk move: node %d skipped: %v", id, err)
			continue
		}
		moved = append(moved, node)
	}
	return moved, nil
}

func (r *treeRepository[T]) CopySubtree(nodeID uint64, newParentID *uint64) (T, error) {
	var copied T
	err := r.db.Transaction(func(tx *gorm.DB) error {
		src, err := r.findByIDTx(tx, nodeID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNodeNotFound
			}
			return wrapStore(err)
		}

		// 目标父节点落在源子树内时，新插入的副本会被后续的孩子扫描
		// 再次遍历，复制自身的副本直到触达深度上限。与 moveTx 相同的
		// 环检测在任何写入前拒绝这种请求。
		if newParentID != nil {
			if src.GetID() == *newParentID {
				return ErrTreeCycle
			}
			parent, err := r.findByIDTx(tx, *newParentID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrParentNotFound
				}
				return wrapStore(err)
			}
			if model.PathContainsID(parent.GetPath(), src.GetID()) {
				return ErrTreeCycle
			}
		}

		dst, err := r.copyTx(tx, src, newParentID, 0)
		if err != nil {
			return err
		}
		copied = dst
		r.treeCache.InvalidateTree(r.entity, model.PathIDs(dst.GetPath()))
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return copied, nil
}

// copyTx 递归复制子树：复制业务字段走正常创建流程（路径由引擎重算），
// 再把原节点的每个孩子复制到新节点下。
// 前置条件：目标父节点不在源子树内（CopySubtree 已做环检测），
// 否则孩子扫描会遍历到新插入的副本。
func (r *treeRepository[T]) copyTx(tx *gorm.DB, src T, parentID *uint64, depth int) (T, error) {
	var zero T
	if depth >= hardPathDepthLimit {
		return zero, fmt.Errorf("%w: copy depth %d", ErrTreeCorrupted, depth)
	}

	clone := src.CloneNode()
	if _, err := r.createTx(tx, clone, parentID); err != nil {
		return zero, err
	}

	var children []T
	if err := tx.Where("parent_id = ?", src.GetID()).
		Order("sort_order ASC").Find(&children).Error; err != nil {
		return zero, wrapStore(err)
	}

	newID := clone.GetID()
	for _, child := range children {
		if _, err := r.copyTx(tx, child, &newID, depth+1); err != nil {
			return zero, err
		}
	}
	return clone, nil
}

func (r *treeRepository[T]) Delete(nodeID uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		node, err := r.findByIDTx(tx, nodeID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNodeNotFound
			}
			return wrapStore(err)
		}

		// 路径以 /{id}/ 结尾，前缀 "/1/" 不会误匹配 "/12/"，
		// LIKE 前缀匹配即可圈出整棵子树（含自身）
		prefix := node.GetPath() + "%"

		var subtreeIDs []uint64
		if err := tx.Model(r.newNode()).Where("path LIKE ?", prefix).
			Pluck("id", &subtreeIDs).Error; err != nil {
			return wrapStore(err)
		}
		if err := tx.Where("path LIKE ?", prefix).Delete(r.newNode()).Error; err != nil {
			return wrapStore(err)
		}

		// 祖先链的子树视图、被删后代自己的子树视图都不能再被命中
		r.treeCache.InvalidateTree(r.entity, append(model.PathIDs(node.GetPath()), subtreeIDs...))
		return nil
	})
}

// GetTree 返回嵌套的树形视图，读路径走缓存。
// rootID 指向不存在的节点时返回 ErrNodeNotFound 而不是空列表，
// 让调用方能区分"空子树"和"根本没有这个节点"。
func (r *treeRepository[T]) GetTree(rootID *uint64, maxDepth int) ([]T, error) {
	if payload, ok := r.treeCache.GetTree(r.entity, rootID, maxDepth); ok {
		var forest []T
		if err := json.Unmarshal(payload, &forest); err == nil {
			return forest, nil
		}
		// 反序列化失败按未命中处理，照常回源
		log.Warnf("tree cache payload for %s is not decodable, falling back to store", r.entity)
	}

	query := r.db.Order("path ASC, sort_order ASC")
	if rootID != nil {
		root, err := r.FindByID(*rootID)
		if err != nil {
			return nil, err
		}
		query = query.Where("path LIKE ?", root.GetPath()+"%")
		if maxDepth > 0 {
			query = query.Where("level <= ?", root.GetLevel()+maxDepth)
		}
	} else if maxDepth > 0 {
		query = query.Where("level <= ?", maxDepth)
	}

	var rows []T
	if err := query.Find(&rows).Error; err != nil {
		return nil, wrapStore(err)
	}

	forest := model.BuildForest(rows)
	if payload, err := json.Marshal(forest); err == nil {
		r.treeCache.SetTree(r.entity, rootID, maxDepth, payload)
	}
	return forest, nil
}

func (r *treeRepository[T]) GetSiblings(nodeID uint64, includeSelf bool) ([]T, error) {
	node, err := r.FindByID(nodeID)
	if err != nil {
		return nil, err
	}

	query := r.db.Order("sort_order ASC")
	if pid := node.GetParentID(); pid != nil {
		query = query.Where("parent_id = ?", *pid)
	} else {
		query = query.Where("parent_id IS NULL")
	}
	if !includeSelf {
		query = query.Where("id <> ?", nodeID)
	}

	var rows []T
	if err := query.Find(&rows).Error; err != nil {
		return nil, wrapStore(err)
	}
	return rows, nil
}

func (r *treeRepository[T]) GetAncestors(nodeID uint64, includeSelf bool) ([]T, error) {
	node, err := r.FindByID(nodeID)
	if err != nil {
		return nil, err
	}

	ids := model.PathIDs(node.GetPath())
	if !includeSelf && len(ids) > 0 {
		ids = ids[:len(ids)-1] // path 以自身结尾
	}
	if len(ids) == 0 {
		return []T{}, nil
	}

	var rows []T
	if err := r.db.Where("id IN ?", ids).Order("level ASC").Find(&rows).Error; err != nil {
		return nil, wrapStore(err)
	}
	return rows, nil
}
