package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/rehiy/goform-simulator/events"
	"github.com/rehiy/goform-simulator/logger"
)

const pingInterval = 30 * time.Second

// WebSocketHandler 推送模拟器事件
type WebSocketHandler struct {
	el       *events.EventListener
	upgrader websocket.Upgrader
	log      *zap.SugaredLogger
}

// NewWebSocketHandler 创建事件推送处理器
func NewWebSocketHandler(el *events.EventListener) *WebSocketHandler {
	return &WebSocketHandler{
		el: el,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log: logger.S(),
	}
}

// HandleWebSocket 处理WebSocket连接
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnf("[ws] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ch, unsubscribe := h.el.Subscribe(0)
	defer unsubscribe()

	h.log.Infof("[ws] client connected: %s", r.RemoteAddr)

	// 客户端关闭连接时结束推送
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.log.Infof("[ws] client disconnected: %s (%v)", r.RemoteAddr, err)
				return
			}
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.log.Infof("[ws] client disconnected: %s (%v)", r.RemoteAddr, err)
				return
			}
		case <-closed:
			h.log.Infof("[ws] client closed: %s", r.RemoteAddr)
			return
		}
	}
}
