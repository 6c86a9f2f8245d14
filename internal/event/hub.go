// Package event 提供进程内的树形结构变更广播。
// service 层在结构写操作成功后发布事件，websocket 接口订阅后推给管理端，
// 前端据此刷新组织树/权限树视图。
package event

import (
	"sync"
	"time"
)

// 树形结构变更的操作类型。
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpMove   = "move"
	OpCopy   = "copy"
	OpDelete = "delete"
)

// TreeEvent 描述一次树形结构变更。
type TreeEvent struct {
	Entity string    `json:"entity"` // "dept" / "permission"
	Op     string    `json:"op"`
	NodeID uint64    `json:"nodeId"`
	At     time.Time `json:"at"`
}

// Hub 是进程内的发布订阅中枢。
// 订阅者持有带缓冲的 channel；发布从不阻塞，缓冲满则丢弃该订阅者的事件
// （管理端断线重连后会全量拉一次树，丢事件只影响实时性不影响正确性）。
type Hub struct {
	mu   sync.RWMutex
	subs map[chan TreeEvent]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[chan TreeEvent]struct{})}
}

// Subscribe 注册一个订阅者，返回事件 channel 和取消函数。
// 取消函数幂等，可以安全地 defer 调用。
func (h *Hub) Subscribe() (<-chan TreeEvent, func()) {
	ch := make(chan TreeEvent, 64)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish 向所有订阅者广播事件，从不阻塞发布方。
func (h *Hub) Publish(evt TreeEvent) {
	if h == nil {
		return
	}
	if evt.At.IsZero() {
		evt.At = time.Now()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- evt:
		default:
			// 订阅者消费太慢，丢弃
		}
	}
}
