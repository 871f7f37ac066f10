package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/MRaysa/AI-chatbot-server/logger"
	"github.com/MRaysa/AI-chatbot-server/middleware"
	"github.com/MRaysa/AI-chatbot-server/services"
)

const streamReadTimeout = 60 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type StreamHandler struct {
	chats    *services.ChatService
	verifier middleware.TokenVerifier
}

func NewStreamHandler(chats *services.ChatService, verifier middleware.TokenVerifier) *StreamHandler {
	return &StreamHandler{chats: chats, verifier: verifier}
}

type streamRequest struct {
	Content string `json:"content"`
}

type streamEvent struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// HandleChatStream upgrades the connection and streams assistant replies
// chunk by chunk. Browsers cannot set headers on websocket dials, so the
// bearer token arrives as a query parameter.
func (h *StreamHandler) HandleChatStream(c *gin.Context) {
	token := c.DefaultQuery("token", "")
	if token == "" {
		Unauthorized(c, "Missing or invalid token")
		return
	}

	identity, err := h.verifier.Verify(c.Request.Context(), token)
	if err != nil {
		logger.Get().Warn("stream token verification failed", zap.Error(err))
		Unauthorized(c, "Invalid or expired token")
		return
	}

	chatID, ok := parseChatID(c)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Get().Error("failed to upgrade connection", zap.Error(err))
		return
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(streamReadTimeout))

	for {
		var req streamRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Get().Warn("websocket read error", zap.Error(err))
			}
			conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
		conn.SetReadDeadline(time.Now().Add(streamReadTimeout))

		result, err := h.chats.SendMessageStream(c.Request.Context(), chatID, identity.UID, req.Content, func(chunk string) error {
			return conn.WriteJSON(streamEvent{Type: "chunk", Content: chunk})
		})
		if err != nil {
			conn.WriteJSON(streamEvent{Type: "error", Message: err.Error()})
			if errors.Is(err, services.ErrNotFound) {
				return
			}
			continue
		}

		if err := conn.WriteJSON(streamEvent{Type: "end", Data: gin.H{
			"userMessage": messageJSON(result.UserMessage),
			"aiMessage":   messageJSON(result.AIMessage),
			"chat":        chatJSON(result.Chat),
		}}); err != nil {
			logger.Get().Error("failed to write stream result", zap.Error(err))
			return
		}
	}
}
