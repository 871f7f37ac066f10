package handlers

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/MRaysa/AI-chatbot-server/middleware"
	"github.com/MRaysa/AI-chatbot-server/models"
	"github.com/MRaysa/AI-chatbot-server/services"
)

type ChatHandler struct {
	chats *services.ChatService
}

func NewChatHandler(chats *services.ChatService) *ChatHandler {
	return &ChatHandler{chats: chats}
}

type createChatRequest struct {
	Title string `json:"title"`
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

type updateTitleRequest struct {
	Title string `json:"title"`
}

// CreateChat opens a new chat, optionally with a caller-provided title.
func (h *ChatHandler) CreateChat(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		Unauthorized(c, "User not authenticated")
		return
	}

	var req createChatRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		BadRequest(c, "Invalid request body")
		return
	}

	chat, err := h.chats.CreateChat(c.Request.Context(), user.UID, req.Title)
	if err != nil {
		Error(c, err)
		return
	}

	Created(c, "Chat created successfully", gin.H{"chat": chatJSON(chat)})
}

// GetUserChats lists the caller's chats, most recently updated first.
func (h *ChatHandler) GetUserChats(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		Unauthorized(c, "User not authenticated")
		return
	}

	chats, err := h.chats.GetUserChats(c.Request.Context(), user.UID)
	if err != nil {
		Error(c, err)
		return
	}

	out := make([]gin.H, 0, len(chats))
	for i := range chats {
		out = append(out, chatJSON(&chats[i]))
	}
	Success(c, "Chats retrieved successfully", gin.H{"chats": out})
}

// GetChatMessages returns the chat's messages in creation order.
func (h *ChatHandler) GetChatMessages(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		Unauthorized(c, "User not authenticated")
		return
	}

	chatID, ok := parseChatID(c)
	if !ok {
		return
	}

	messages, err := h.chats.GetChatMessages(c.Request.Context(), chatID, user.UID)
	if err != nil {
		Error(c, err)
		return
	}

	out := make([]gin.H, 0, len(messages))
	for i := range messages {
		out = append(out, messageJSON(&messages[i]))
	}
	Success(c, "Messages retrieved successfully", gin.H{"messages": out})
}

// SendMessage appends a user turn and returns the generated assistant turn.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		Unauthorized(c, "User not authenticated")
		return
	}

	chatID, ok := parseChatID(c)
	if !ok {
		return
	}

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Message content is required")
		return
	}

	result, err := h.chats.SendMessage(c.Request.Context(), chatID, user.UID, req.Content)
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, "Message sent successfully", gin.H{
		"userMessage": messageJSON(result.UserMessage),
		"aiMessage":   messageJSON(result.AIMessage),
		"chat":        chatJSON(result.Chat),
	})
}

// UpdateChatTitle renames a chat.
func (h *ChatHandler) UpdateChatTitle(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		Unauthorized(c, "User not authenticated")
		return
	}

	chatID, ok := parseChatID(c)
	if !ok {
		return
	}

	var req updateTitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Title is required")
		return
	}

	chat, err := h.chats.UpdateChatTitle(c.Request.Context(), chatID, user.UID, req.Title)
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, "Chat title updated successfully", gin.H{"chat": chatJSON(chat)})
}

// DeleteChat removes a chat and its messages. Deleting an unknown chat
// succeeds quietly.
func (h *ChatHandler) DeleteChat(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		Unauthorized(c, "User not authenticated")
		return
	}

	chatID, ok := parseChatID(c)
	if !ok {
		return
	}

	if err := h.chats.DeleteChat(c.Request.Context(), chatID, user.UID); err != nil {
		Error(c, err)
		return
	}

	Success(c, "Chat deleted successfully", nil)
}

func parseChatID(c *gin.Context) (bson.ObjectID, bool) {
	chatID, err := bson.ObjectIDFromHex(c.Param("chatId"))
	if err != nil {
		BadRequest(c, "Invalid chat id")
		return bson.ObjectID{}, false
	}
	return chatID, true
}

func chatJSON(chat *models.Chat) gin.H {
	return gin.H{
		"id":        chat.ID.Hex(),
		"title":     chat.Title,
		"createdAt": chat.CreatedAt,
		"updatedAt": chat.UpdatedAt,
	}
}

func messageJSON(msg *models.Message) gin.H {
	return gin.H{
		"id":        msg.ID.Hex(),
		"role":      msg.Role,
		"content":   msg.Content,
		"timestamp": msg.CreatedAt,
	}
}
