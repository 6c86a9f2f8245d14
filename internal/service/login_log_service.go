package service

import (
	"orgadmin_go/internal/model"
	"orgadmin_go/internal/repository"
	"orgadmin_go/pkg/log"
)

// LoginLogService 封装登录日志的记录与检索。
// 记录在登录请求返回后异步进行，失败只记日志，不影响登录本身。
type LoginLogService interface {
	Record(entry *model.LoginLog)
	List(username string, offset, limit int) ([]model.LoginLog, int64, error)
}

type loginLogService struct {
	logRepo repository.LoginLogRepository
}

func NewLoginLogService(logRepo repository.LoginLogRepository) LoginLogService {
	return &loginLogService{logRepo: logRepo}
}

func (s *loginLogService) Record(entry *model.LoginLog) {
	if entry == nil {
		return
	}
	if err := s.logRepo.Create(entry); err != nil {
		log.Errorf("Record: failed to persist login log: %v", err)
	}
}

func (s *loginLogService) List(username string, offset, limit int) ([]model.LoginLog, int64, error) {
	logs, total, err := s.logRepo.FindWithPagination(username, offset, limit)
	if err != nil {
		log.Errorf("List: failed to query login logs: %v", err)
		return nil, 0, ErrInternal
	}
	return logs, total, nil
}
