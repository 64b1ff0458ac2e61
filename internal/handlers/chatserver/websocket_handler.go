package chatserver

import (
	"log"
	"net/http"

	"quickchat/internal/auth"
	"quickchat/internal/config"
	"quickchat/internal/relay"
	ws "quickchat/internal/websocket"
)

// WebSocketHandler 负责处理 WebSocket 连接请求。
type WebSocketHandler struct {
	hub       *relay.Hub
	blacklist auth.TokenBlacklist
	cfg       config.Config // 用于获取 WebSocket 和 Auth 配置
}

// NewWebSocketHandler 创建一个新的 WebSocketHandler 实例。
func NewWebSocketHandler(hub *relay.Hub, blacklist auth.TokenBlacklist, cfg config.Config) *WebSocketHandler {
	return &WebSocketHandler{
		hub:       hub,
		blacklist: blacklist,
		cfg:       cfg,
	}
}

// ServeWS 处理传入的 WebSocket 请求。
// 它将 HTTP 连接升级为 WebSocket 连接，并为该连接创建一个新的客户端。
// 身份在升级后由客户端通过 join 事件声明；token 查询参数是可选的，
// 带了就校验，校验失败直接拒绝升级。
func (h *WebSocketHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	if token := r.URL.Query().Get("token"); token != "" {
		claims, err := auth.ValidateToken(r.Context(), token, h.cfg.Auth.JWTSecretKey, h.blacklist)
		if err != nil {
			log.Printf("WebSocket 连接尝试失败：令牌无效: %v", err)
			http.Error(w, "令牌无效", http.StatusUnauthorized)
			return
		}
		log.Printf("用户 %s (ID: %d) 尝试连接 WebSocket", claims.Email, claims.UserID)
	}

	ws.ServeWsPerConnection(h.hub, w, r, h.cfg.WebSocket)
}
