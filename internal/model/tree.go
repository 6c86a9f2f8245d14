package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TreeFields 是所有树形实体共享的结构字段。
// Path 是物化路径，格式为 /id1/id2/.../idSelf/，根节点为 /idSelf/。
// 不变式：
//  1. Path 总是以 /{ID}/ 结尾，且完整编码了从根到自身的祖先链。
//  2. Level 总是等于 Path 的段数，根节点为 1。
//  3. ParentID 为 nil 当且仅当节点是根节点。
//
// Path/Level/ParentID 由 repository 层独占维护，业务代码不要直接赋值。
type TreeFields struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ParentID  *uint64   `gorm:"index" json:"parentId"`
	Path      string    `gorm:"type:varchar(255);not null;default:'/';index" json:"path"`
	Level     int       `gorm:"not null;default:1" json:"level"`
	SortOrder int       `gorm:"not null;default:0" json:"sortOrder"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (f *TreeFields) GetID() uint64        { return f.ID }
func (f *TreeFields) GetParentID() *uint64 { return f.ParentID }
func (f *TreeFields) GetPath() string      { return f.Path }
func (f *TreeFields) GetLevel() int        { return f.Level }
func (f *TreeFields) GetSortOrder() int    { return f.SortOrder }

// SetTreeFields 一次性写入全部结构字段，保证三者始终一致变更。
func (f *TreeFields) SetTreeFields(path string, level int, parentID *uint64) {
	f.Path = path
	f.Level = level
	f.ParentID = parentID
}

// TreeEntity 约束一个可以被通用树引擎管理的实体类型。
// 类型参数 T 是实体自身的指针类型（如 *Dept），这样 AddChild/CloneNode
// 可以保持强类型，而不用退化为 interface{}。
type TreeEntity[T any] interface {
	GetID() uint64
	GetParentID() *uint64
	GetPath() string
	GetLevel() int
	GetSortOrder() int
	SetTreeFields(path string, level int, parentID *uint64)

	// AddChild 把 child 挂到自身的 Children 列表上（仅用于内存中的树组装）。
	AddChild(child T)
	// CloneNode 复制业务字段，清空 ID/Path/Level/ParentID/Children。
	// 用于子树复制：新节点的结构字段由 repository 重新计算。
	CloneNode() T
	// EntityName 返回实体在缓存 key 中使用的命名空间，如 "dept"。
	EntityName() string
}

// RootPath 返回根节点的物化路径。
func RootPath(id uint64) string {
	return fmt.Sprintf("/%d/", id)
}

// ChildPath 在父路径后追加自身 ID 段。
func ChildPath(parentPath string, id uint64) string {
	return fmt.Sprintf("%s%d/", parentPath, id)
}

// PathIDs 把物化路径解析为从根到自身的有序 ID 列表。
// 非法段（空串、非数字）会被跳过，保证解析对脏数据是宽容的。
func PathIDs(path string) []uint64 {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	parts := strings.Split(trimmed, "/")
	ids := make([]uint64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// PathDepth 返回路径的段数，等价于节点的 Level。
func PathDepth(path string) int {
	return len(PathIDs(path))
}

// PathContainsID 判断路径中是否含有指定 ID 段。
// 按完整段 /id/ 匹配，避免 /12/ 误命中 /123/。
func PathContainsID(path string, id uint64) bool {
	return strings.Contains(path, fmt.Sprintf("/%d/", id))
}

// BuildForest 把按 (path, sort_order) 排序的平铺行组装成嵌套森林。
// 两遍扫描：第一遍建立 id -> 节点索引，第二遍按 ParentID 挂接子节点。
// 父节点不在结果集中的节点（如按子树查询时的子树根、脏数据孤儿）
// 统一作为根返回，避免节点丢失。
func BuildForest[T TreeEntity[T]](rows []T) []T {
	byID := make(map[uint64]T, len(rows))
	for _, row := range rows {
		byID[row.GetID()] = row
	}

	forest := make([]T, 0)
	for _, row := range rows {
		pid := row.GetParentID()
		if pid != nil {
			if parent, ok := byID[*pid]; ok {
				parent.AddChild(row)
				continue
			}
		}
		forest = append(forest, row)
	}
	return forest
}
