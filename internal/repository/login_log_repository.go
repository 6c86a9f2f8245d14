package repository

import (
	"fmt"

	"orgadmin_go/internal/model"

	"gorm.io/gorm"
)

// LoginLogRepository 定义登录日志的持久化操作。
type LoginLogRepository interface {
	Create(entry *model.LoginLog) error
	// FindWithPagination 按时间倒序分页检索，username 非空时做模糊匹配。
	FindWithPagination(username string, offset, limit int) ([]model.LoginLog, int64, error)
}

type loginLogRepository struct {
	db *gorm.DB
}

func NewLoginLogRepository(db *gorm.DB) LoginLogRepository {
	return &loginLogRepository{db: db}
}

func (r *loginLogRepository) Create(entry *model.LoginLog) error {
	if entry == nil {
		return fmt.Errorf("login log entry is nil")
	}
	return r.db.Create(entry).Error
}

func (r *loginLogRepository) FindWithPagination(username string, offset, limit int) ([]model.LoginLog, int64, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 20
	}

	query := r.db.Model(&model.LoginLog{})
	if username != "" {
		query = query.Where("username LIKE ?", "%"+username+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []model.LoginLog{}, 0, nil
	}

	var logs []model.LoginLog
	if err := query.Order("created_at DESC").
		Offset(offset).Limit(limit).Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
