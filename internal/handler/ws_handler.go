package handler

import (
	"net/http"
	"time"

	"orgadmin_go/internal/event"
	"orgadmin_go/pkg/log"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPingPeriod = 30 * time.Second
)

// WSHandler 通过 WebSocket 向管理端推送树形结构变更事件。
// 前端收到事件后按 entity 刷新对应的树视图。
type WSHandler struct {
	hub      *event.Hub
	upgrader websocket.Upgrader
}

func NewWSHandler(hub *event.Hub) *WSHandler {
	return &WSHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// 鉴权由路由组的认证中间件完成，这里不再限制来源
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Events 升级连接并持续推送事件，直到客户端断开。
func (h *WSHandler) Events(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warnf("WSHandler.Events: upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	events, cancel := h.hub.Subscribe()
	defer cancel()

	// 读循环只为感知断开，收到的消息一律忽略
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case evt, ok := <-events:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(evt); err != nil {
				log.Warnf("WSHandler.Events: write failed: %v", err)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
