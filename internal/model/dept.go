package model

// Dept 对应数据库中 sys_depts 表，表示部门。
// 部门通过物化路径组成树形结构，结构字段见 TreeFields。
type Dept struct {
	TreeFields
	Name     string  `gorm:"type:varchar(64);not null" json:"name"`
	Code     string  `gorm:"type:varchar(64);not null;uniqueIndex" json:"code"`
	Leader   string  `gorm:"type:varchar(64)" json:"leader"`
	Phone    string  `gorm:"type:varchar(20)" json:"phone"`
	Status   int8    `gorm:"default:1" json:"status"` // 1: 正常, 0: 停用
	Notes    string  `gorm:"type:varchar(255)" json:"notes"`
	Children []*Dept `gorm:"-" json:"children,omitempty"`
}

// TableName 指定 GORM 使用的表名
func (Dept) TableName() string {
	return "sys_depts"
}

func (d *Dept) AddChild(child *Dept) {
	d.Children = append(d.Children, child)
}

// CloneNode 复制部门的业务字段，结构字段交给 repository 重新计算。
// Code 带唯一索引，复制时追加 "_copy" 后缀避免冲突；调用方可在复制后改名。
func (d *Dept) CloneNode() *Dept {
	return &Dept{
		TreeFields: TreeFields{SortOrder: d.SortOrder},
		Name:       d.Name,
		Code:       d.Code + "_copy",
		Leader:     d.Leader,
		Phone:      d.Phone,
		Status:     d.Status,
		Notes:      d.Notes,
	}
}

func (*Dept) EntityName() string {
	return "dept"
}
