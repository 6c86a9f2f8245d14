package service

import "errors"

// 哨兵错误：对外统一语义，隐藏底层实现细节。
// 树结构相关的错误在各实体服务间共用。
var (
	// ErrInvalidInput 请求参数不合法
	ErrInvalidInput = errors.New("invalid input")
	// ErrNodeNotFound 目标节点不存在
	ErrNodeNotFound = errors.New("node not found")
	// ErrParentNotFound 指定的父节点不存在
	ErrParentNotFound = errors.New("parent node not found")
	// ErrTreeCycle 移动会让节点成为自己的后代
	ErrTreeCycle = errors.New("move would create a cycle")
	// ErrTreeDepthExceeded 层级超过配置上限
	ErrTreeDepthExceeded = errors.New("tree depth limit exceeded")
	// ErrCodeAlreadyExists 编码重复（部门/权限/角色的 code 全局唯一）
	ErrCodeAlreadyExists = errors.New("code already exists")
	// ErrInternal 内部错误（对外不暴露细节）
	ErrInternal = errors.New("internal server error")
)
