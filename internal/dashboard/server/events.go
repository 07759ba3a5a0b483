// Package server WebSocket 变更推送网关
package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// upgrader WebSocket 升级器配置
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ChangeGateway 用户列表变更推送网关
//
// 打开的后台页面通过 GET /ws/users 建立连接；代理转发层的
// 每次成功写操作都会广播一条 users_changed 消息，页面收到后
// 自行重拉列表。消息只是提示，不携带数据——全量重拉保持
// 唯一事实来源。
type ChangeGateway struct {
	metrics *Metrics

	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

// NewChangeGateway 创建变更推送网关
func NewChangeGateway(metrics *Metrics) *ChangeGateway {
	return &ChangeGateway{
		metrics: metrics,
		clients: make(map[*websocket.Conn]bool),
	}
}

// wsMessage 推送消息格式
type wsMessage struct {
	Type string `json:"type"`
	At   string `json:"at,omitempty"`
}

// HandleWebSocket 处理 WebSocket 连接请求
//
// 路由: GET /ws/users
//
// 推送消息：{"type": "users_changed", "at": "..."}
// 客户端心跳：{"type": "ping"} -> 响应 {"type": "pong"}
func (g *ChangeGateway) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	g.addClient(conn)
	defer g.removeClient(conn)

	log.Printf("WebSocket client connected")

	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		if g.metrics != nil {
			g.metrics.WSMessagesTotal.WithLabelValues("in", msg.Type).Inc()
		}
		if msg.Type == "ping" {
			g.writeTo(conn, wsMessage{Type: "pong"})
		}
	}
}

// BroadcastUsersChanged 向所有连接广播列表变更提示
func (g *ChangeGateway) BroadcastUsersChanged() {
	msg := wsMessage{Type: "users_changed", At: time.Now().UTC().Format(time.RFC3339)}

	g.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(g.clients))
	for c := range g.clients {
		conns = append(conns, c)
	}
	g.mu.Unlock()

	for _, c := range conns {
		g.writeTo(c, msg)
	}
}

func (g *ChangeGateway) writeTo(conn *websocket.Conn, msg wsMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		g.removeClient(conn)
		conn.Close()
		return
	}
	if g.metrics != nil {
		g.metrics.WSMessagesTotal.WithLabelValues("out", msg.Type).Inc()
	}
}

func (g *ChangeGateway) addClient(conn *websocket.Conn) {
	g.mu.Lock()
	g.clients[conn] = true
	g.mu.Unlock()
	if g.metrics != nil {
		g.metrics.WSConnectionsActive.Inc()
	}
}

func (g *ChangeGateway) removeClient(conn *websocket.Conn) {
	g.mu.Lock()
	_, ok := g.clients[conn]
	delete(g.clients, conn)
	g.mu.Unlock()
	if ok && g.metrics != nil {
		g.metrics.WSConnectionsActive.Dec()
	}
}
