package service

import (
	"bytes"
	"context"
	"encoding/json"

	"orgadmin_go/internal/model"
	"orgadmin_go/internal/repository"
	"orgadmin_go/pkg/es"
	"orgadmin_go/pkg/log"
)

// OperaLogService 封装操作日志的记录与检索。
// MySQL 是权威存储；配置了 Elasticsearch 时双写一份用于检索，
// ES 写入/查询失败都回退到 MySQL，日志功能不依赖 ES 可用。
type OperaLogService interface {
	Record(entry *model.OperaLog)
	Search(ctx context.Context, keyword string, offset, limit int) ([]model.OperaLog, int64, error)
}

type operaLogService struct {
	logRepo  repository.OperaLogRepository
	logIndex string
}

func NewOperaLogService(logRepo repository.OperaLogRepository, logIndex string) OperaLogService {
	return &operaLogService{logRepo: logRepo, logIndex: logIndex}
}

// Record 落库并按需双写 ES。调用方在请求返回后异步调用，
// 这里失败只记日志，绝不影响业务请求。
func (s *operaLogService) Record(entry *model.OperaLog) {
	if entry == nil {
		return
	}
	if err := s.logRepo.Create(entry); err != nil {
		log.Errorf("Record: failed to persist opera log: %v", err)
		return
	}
	if es.Enabled() {
		s.indexToES(entry)
	}
}

func (s *operaLogService) indexToES(entry *model.OperaLog) {
	payload, err := json.Marshal(entry)
	if err != nil {
		log.Warnf("indexToES: marshal failed: %v", err)
		return
	}
	res, err := es.Client.Index(s.logIndex, bytes.NewReader(payload))
	if err != nil {
		log.Warnf("indexToES: index request failed: %v", err)
		return
	}
	defer res.Body.Close()
	if res.IsError() {
		log.Warnf("indexToES: index returned %s", res.Status())
	}
}

// Search 优先走 ES 全文检索，ES 不可用或查询失败时回退 MySQL 模糊匹配。
func (s *operaLogService) Search(ctx context.Context, keyword string, offset, limit int) ([]model.OperaLog, int64, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	if es.Enabled() {
		logs, total, err := s.searchES(ctx, keyword, offset, limit)
		if err == nil {
			return logs, total, nil
		}
		log.Warnf("Search: es query failed, falling back to mysql: %v", err)
	}

	logs, total, err := s.logRepo.FindWithPagination(keyword, offset, limit)
	if err != nil {
		log.Errorf("Search: failed to query opera logs: %v", err)
		return nil, 0, ErrInternal
	}
	return logs, total, nil
}

func (s *operaLogService) searchES(ctx context.Context, keyword string, offset, limit int) ([]model.OperaLog, int64, error) {
	query := map[string]interface{}{
		"from": offset,
		"size": limit,
		"sort": []map[string]interface{}{
			{"createdAt": map[string]string{"order": "desc"}},
		},
	}
	if keyword != "" {
		query["query"] = map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  keyword,
				"fields": []string{"username", "path"},
			},
		}
	}

	body, err := json.Marshal(query)
	if err != nil {
		return nil, 0, err
	}

	res, err := es.Client.Search(
		es.Client.Search.WithContext(ctx),
		es.Client.Search.WithIndex(s.logIndex),
		es.Client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, 0, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, 0, ErrInternal
	}

	var parsed struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source model.OperaLog `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, 0, err
	}

	logs := make([]model.OperaLog, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		logs = append(logs, hit.Source)
	}
	return logs, parsed.Hits.Total.Value, nil
}
