// Package es 提供操作日志检索用的 Elasticsearch 客户端初始化。
// ES 是可选依赖：未配置地址时 Client 保持 nil，调用方通过 Enabled() 判断。
package es

import (
	"orgadmin_go/pkg/log"

	"github.com/elastic/go-elasticsearch/v8"
)

var Client *elasticsearch.Client

// Init 根据配置初始化全局 ES 客户端。addresses 为空表示不启用，直接返回。
// 与 MySQL/Redis 不同，ES 初始化失败只降级告警不退出：
// 操作日志的 SQL 主存储仍然可用，检索功能退回 LIKE 查询。
func Init(addresses []string, username, password string) {
	if len(addresses) == 0 {
		log.Info("Elasticsearch disabled, opera log search falls back to SQL")
		return
	}

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: addresses,
		Username:  username,
		Password:  password,
	})
	if err != nil {
		log.Error("failed to create elasticsearch client, search falls back to SQL", err)
		return
	}

	Client = client
	log.Info("Elasticsearch client initialized")
}

// Enabled 返回 ES 是否可用。
func Enabled() bool {
	return Client != nil
}
