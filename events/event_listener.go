package events

import (
	"encoding/json"
	"sync"

	"github.com/rehiy/goform-simulator/models"
)

// EventListener 管理事件订阅和广播
type EventListener struct {
	pool map[chan []byte]struct{}
	sync.RWMutex
}

// NewEventListener 创建事件中心
func NewEventListener() *EventListener {
	return &EventListener{pool: make(map[chan []byte]struct{})}
}

// Notify 将事件编码为 JSON 后广播
func (el *EventListener) Notify(ev models.Event) {
	b, err := json.Marshal(ev)
	if err != nil {
		return
	}
	el.Broadcast(b)
}

// Broadcast 非阻塞地向所有订阅者发送消息。
// 订阅者的通道已满时跳过。
func (el *EventListener) Broadcast(msg []byte) {
	el.RLock()
	defer el.RUnlock()

	for ch := range el.pool {
		select {
		case ch <- msg:
		default:
		}
	}
}

// Subscribers 当前订阅者数量
func (el *EventListener) Subscribers() int {
	el.RLock()
	defer el.RUnlock()
	return len(el.pool)
}

// Subscribe 创建订阅通道，返回通道和取消订阅函数
func (el *EventListener) Subscribe(buffer int) (<-chan []byte, func()) {
	if buffer <= 0 {
		buffer = 100
	}
	ch := make(chan []byte, buffer)

	el.Lock()
	el.pool[ch] = struct{}{}
	el.Unlock()

	return ch, func() {
		el.Lock()
		defer el.Unlock()
		if _, ok := el.pool[ch]; ok {
			delete(el.pool, ch)
			close(ch)
		}
	}
}
