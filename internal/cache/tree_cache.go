// Package cache 提供树形视图的 Redis 读缓存。
//
// key 布局（shape 参数全部进 key，避免不同深度的结果互相污染）：
//
//	{app}:{entity}:tree:root:depth:{n}       整片森林视图
//	{app}:{entity}:tree:node:{id}:depth:{n}  以某节点为根的子树视图
//
// 缓存故障（连接失败、序列化异常）一律记日志后吞掉：
// 读失败按未命中处理，写/失效失败不影响主操作的成功，TTL 作为最终兜底。
package cache

import (
	"context"
	"fmt"
	"time"

	"orgadmin_go/pkg/database"
	"orgadmin_go/pkg/log"

	"github.com/go-redis/redis/v8"
)

// TreeCache 是树形视图缓存。rdb 为 nil 时所有操作都是空操作，
// 方便测试和无 Redis 的本地运行。
type TreeCache struct {
	rdb       *redis.Client
	keyPrefix string
	ttl       time.Duration
}

func NewTreeCache(rdb *redis.Client, keyPrefix string, ttl time.Duration) *TreeCache {
	return &TreeCache{rdb: rdb, keyPrefix: keyPrefix, ttl: ttl}
}

// treeKey 构造树形视图的缓存 key。rootID 为 nil 表示整片森林。
func (c *TreeCache) treeKey(entity string, rootID *uint64, depth int) string {
	if rootID == nil {
		return fmt.Sprintf("%s:%s:tree:root:depth:%d", c.keyPrefix, entity, depth)
	}
	return fmt.Sprintf("%s:%s:tree:node:%d:depth:%d", c.keyPrefix, entity, *rootID, depth)
}

// GetTree 读取缓存的树形视图。未命中或缓存故障都返回 (nil, false)。
func (c *TreeCache) GetTree(entity string, rootID *uint64, depth int) ([]byte, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}

	key := c.treeKey(entity, rootID, depth)
	payload, err := c.rdb.Get(context.Background(), key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Warnf("tree cache get %q failed: %v", key, err)
		}
		return nil, false
	}
	return payload, true
}

// SetTree 写入树形视图，带 TTL 兜底过期。写失败只告警。
func (c *TreeCache) SetTree(entity string, rootID *uint64, depth int, payload []byte) {
	if c == nil || c.rdb == nil {
		return
	}

	key := c.treeKey(entity, rootID, depth)
	if err := c.rdb.Set(context.Background(), key, payload, c.ttl).Err(); err != nil {
		log.Warnf("tree cache set %q failed: %v", key, err)
	}
}

// InvalidateTree 使受结构变更影响的树形视图失效：
// 每个受影响节点（自身 + 新旧祖先链）的子树视图，加上森林视图。
// depth 维度用前缀删除一次清空。
func (c *TreeCache) InvalidateTree(entity string, nodeIDs []uint64) {
	if c == nil || c.rdb == nil {
		return
	}

	ctx := context.Background()
	prefixes := make([]string, 0, len(nodeIDs)+1)
	prefixes = append(prefixes, fmt.Sprintf("%s:%s:tree:root:", c.keyPrefix, entity))
	for _, id := range nodeIDs {
		prefixes = append(prefixes, fmt.Sprintf("%s:%s:tree:node:%d:", c.keyPrefix, entity, id))
	}

	for _, prefix := range prefixes {
		if err := database.DeleteByPrefix(ctx, c.rdb, prefix); err != nil {
			log.Warnf("tree cache invalidate %q failed: %v", prefix, err)
		}
	}
}
