package model

// 权限节点类型。menu 构成前端菜单树，api/button 挂在菜单下做细粒度控制。
const (
	PermTypeMenu   = "menu"
	PermTypeAPI    = "api"
	PermTypeButton = "button"
)

// Permission 对应数据库中 sys_permissions 表，表示权限节点。
// 权限节点和部门一样由物化路径组织成树，Code 是权限校验时使用的唯一编码，
// 如 "dept:move"、"user:assign"。
type Permission struct {
	TreeFields
	Name     string        `gorm:"type:varchar(64);not null" json:"name"`
	Code     string        `gorm:"type:varchar(128);not null;uniqueIndex" json:"code"`
	PermType string        `gorm:"type:varchar(16);not null;default:'menu'" json:"permType"`
	Status   int8          `gorm:"default:1" json:"status"` // 1: 启用, 0: 停用
	Children []*Permission `gorm:"-" json:"children,omitempty"`
}

// TableName 指定 GORM 使用的表名
func (Permission) TableName() string {
	return "sys_permissions"
}

func (p *Permission) AddChild(child *Permission) {
	p.Children = append(p.Children, child)
}

// CloneNode 复制权限节点的业务字段。Code 唯一，复制时追加后缀。
func (p *Permission) CloneNode() *Permission {
	return &Permission{
		TreeFields: TreeFields{SortOrder: p.SortOrder},
		Name:       p.Name,
		Code:       p.Code + "_copy",
		PermType:   p.PermType,
		Status:     p.Status,
	}
}

func (*Permission) EntityName() string {
	return "permission"
}
