package repository

import (
	"fmt"

	"orgadmin_go/internal/model"

	"gorm.io/gorm"
)

// OperaLogRepository 定义操作日志的持久化操作。
// 日志写入走异步中间件，这里只负责落库和检索。
type OperaLogRepository interface {
	Create(entry *model.OperaLog) error
	// FindWithPagination 按时间倒序分页检索，keyword 对 username 和 path 做模糊匹配。
	FindWithPagination(keyword string, offset, limit int) ([]model.OperaLog, int64, error)
}

type operaLogRepository struct {
	db *gorm.DB
}

func NewOperaLogRepository(db *gorm.DB) OperaLogRepository {
	return &operaLogRepository{db: db}
}

func (r *operaLogRepository) Create(entry *model.OperaLog) error {
	if entry == nil {
		return fmt.Errorf("opera log entry is nil")
	}
	return r.db.Create(entry).Error
}

func (r *operaLogRepository) FindWithPagination(keyword string, offset, limit int) ([]model.OperaLog, int64, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 20
	}

	query := r.db.Model(&model.OperaLog{})
	if keyword != "" {
		like := "%" + keyword + "%"
		query = query.Where("username LIKE ? OR path LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []model.OperaLog{}, 0, nil
	}

	var logs []model.OperaLog
	if err := query.Order("created_at DESC").
		Offset(offset).Limit(limit).Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
