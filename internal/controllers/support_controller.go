package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"gowheels/internal/assistant"
	"gowheels/internal/middleware"
	"gowheels/internal/models"
	"gowheels/internal/realtime"
	"gowheels/internal/store"
)

const replyTimeout = time.Minute

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func (h *Handler) publish(eventType string, conversationID uint, data interface{}) {
	if h.Hub == nil {
		return
	}
	h.Hub.Publish(realtime.Event{Type: eventType, ConversationID: conversationID, Data: data})
}

func (h *Handler) ListConversations(c *gin.Context) {
	userID, ok := optionalID(c, "userId")
	if !ok {
		respondError(c, http.StatusBadRequest, "Valid userId is required", "INVALID_USER_ID")
		return
	}
	status := c.Query("status")
	if status != "" && !models.IsValidConversationStatus(status) {
		respondError(c, http.StatusBadRequest, "Invalid conversation status", "INVALID_STATUS")
		return
	}

	conversations, err := h.Store.ListConversations(c.Request.Context(), store.ConversationFilter{
		UserID: userID,
		Status: status,
	}, page(c))
	if err != nil {
		respondInternal(c, "ListConversations", err)
		return
	}
	c.JSON(http.StatusOK, conversations)
}

// CreateConversation opens a conversation handled by the AI assistant and
// posts its welcome line.
func (h *Handler) CreateConversation(c *gin.Context) {
	body, ok := bindBody(c)
	if !ok {
		return
	}
	p := payload(body)

	if !p.truthy("userId") {
		respondError(c, http.StatusBadRequest, "User ID is required", "MISSING_USER_ID")
		return
	}
	userID, ok := p.id("userId")
	if !ok {
		respondError(c, http.StatusBadRequest, "Valid userId is required", "INVALID_USER_ID")
		return
	}

	ctx := c.Request.Context()
	exists, err := h.Store.UserExists(ctx, userID)
	if err != nil {
		respondInternal(c, "CreateConversation", err)
		return
	}
	if !exists {
		respondError(c, http.StatusBadRequest, "User not found", "USER_NOT_FOUND")
		return
	}

	conv := &models.SupportConversation{
		UserID:      userID,
		Status:      models.ConversationActive,
		AgentName:   models.DefaultAgentName,
		IsAIHandled: true,
	}
	if name, _ := p.str("agentName"); name != "" {
		conv.AgentName = name
	}
	if err := h.Store.CreateConversation(ctx, conv); err != nil {
		respondInternal(c, "CreateConversation", err)
		return
	}

	welcome := &models.SupportMessage{
		ConversationID: conv.ID,
		SenderType:     models.SenderAI,
		Content:        assistant.WelcomeMessage,
		AIGenerated:    true,
	}
	if err := h.Store.CreateMessage(ctx, welcome); err != nil {
		respondInternal(c, "CreateConversation", err)
		return
	}
	conv.Messages = []models.SupportMessage{*welcome}

	c.JSON(http.StatusCreated, conv)
}

func (h *Handler) GetConversation(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		respondError(c, http.StatusBadRequest, "Valid ID is required", "INVALID_ID")
		return
	}
	conv, err := h.Store.ConversationByID(c.Request.Context(), id, true)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(c, http.StatusNotFound, "Conversation not found", "CONVERSATION_NOT_FOUND")
			return
		}
		respondInternal(c, "GetConversation", err)
		return
	}
	c.JSON(http.StatusOK, conv)
}

// UpdateConversation changes status, agent or AI handling. Escalating
// stamps escalatedAt and hands the conversation to a human.
func (h *Handler) UpdateConversation(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		respondError(c, http.StatusBadRequest, "Valid ID is required", "INVALID_ID")
		return
	}
	body, ok := bindBody(c)
	if !ok {
		return
	}
	p := payload(body)

	fields := map[string]interface{}{}
	if p.has("status") {
		status, _ := p["status"].(string)
		if !models.IsValidConversationStatus(status) {
			respondError(c, http.StatusBadRequest, "Invalid conversation status", "INVALID_STATUS")
			return
		}
		fields["status"] = status
		if status == models.ConversationEscalated {
			fields["escalated_at"] = time.Now().UTC()
			fields["is_ai_handled"] = false
		}
	}
	if p.has("agentName") {
		name, ok := p.str("agentName")
		if !ok || name == "" {
			respondError(c, http.StatusBadRequest, "agentName must be a non-empty string", "INVALID_AGENT_NAME")
			return
		}
		fields["agent_name"] = name
	}
	if p.has("isAiHandled") {
		b, ok := p.boolean("isAiHandled")
		if !ok {
			respondError(c, http.StatusBadRequest, "isAiHandled must be a boolean", "INVALID_IS_AI_HANDLED")
			return
		}
		fields["is_ai_handled"] = b
	}
	if len(fields) == 0 {
		respondError(c, http.StatusBadRequest, "No valid fields provided", "NO_FIELDS_PROVIDED")
		return
	}

	conv, err := h.Store.UpdateConversation(c.Request.Context(), id, fields)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(c, http.StatusNotFound, "Conversation not found", "CONVERSATION_NOT_FOUND")
			return
		}
		respondInternal(c, "UpdateConversation", err)
		return
	}
	h.publish(realtime.EventConversation, conv.ID, conv)
	c.JSON(http.StatusOK, conv)
}

func (h *Handler) ListMessages(c *gin.Context) {
	conversationID, ok := optionalID(c, "conversationId")
	if !ok {
		respondError(c, http.StatusBadRequest, "Valid conversationId is required", "INVALID_CONVERSATION_ID")
		return
	}
	sender := c.Query("senderType")
	if sender != "" && !models.IsValidSenderType(sender) {
		respondError(c, http.StatusBadRequest, "Invalid senderType", "INVALID_SENDER_TYPE")
		return
	}

	messages, err := h.Store.ListMessages(c.Request.Context(), store.MessageFilter{
		ConversationID: conversationID,
		SenderType:     sender,
	}, page(c))
	if err != nil {
		respondInternal(c, "ListMessages", err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

func (h *Handler) CreateMessage(c *gin.Context) {
	body, ok := bindBody(c)
	if !ok {
		return
	}
	p := payload(body)

	if !p.truthy("conversationId") {
		respondError(c, http.StatusBadRequest, "conversationId is required", "MISSING_CONVERSATION_ID")
		return
	}
	if !p.truthy("senderType") {
		respondError(c, http.StatusBadRequest, "senderType is required", "MISSING_SENDER_TYPE")
		return
	}
	if !p.truthy("content") {
		respondError(c, http.StatusBadRequest, "content is required", "MISSING_CONTENT")
		return
	}
	conversationID, ok := p.id("conversationId")
	if !ok {
		respondError(c, http.StatusBadRequest, "Valid conversationId is required", "INVALID_CONVERSATION_ID")
		return
	}
	sender, _ := p.str("senderType")
	if !models.IsValidSenderType(sender) {
		respondError(c, http.StatusBadRequest, "Invalid senderType", "INVALID_SENDER_TYPE")
		return
	}

	ctx := c.Request.Context()
	if _, err := h.Store.ConversationByID(ctx, conversationID, false); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(c, http.StatusBadRequest, "Conversation not found", "CONVERSATION_NOT_FOUND")
			return
		}
		respondInternal(c, "CreateMessage", err)
		return
	}

	msg := &models.SupportMessage{ConversationID: conversationID, SenderType: sender}
	msg.Content, _ = p.str("content")
	msg.AttachmentURL, _ = p.optStr("attachmentUrl")
	msg.AttachmentName, _ = p.optStr("attachmentName")
	msg.IsEscalated, _ = p.boolean("isEscalated")
	msg.AIGenerated, _ = p.boolean("aiGenerated")

	if err := h.Store.CreateMessage(ctx, msg); err != nil {
		respondInternal(c, "CreateMessage", err)
		return
	}
	h.publish(realtime.EventMessage, conversationID, msg)
	c.JSON(http.StatusCreated, msg)
}

// Chat stores a user message and, while the assistant handles the
// conversation, schedules its reply. Messages with urgent keywords
// escalate the conversation to a human agent.
func (h *Handler) Chat(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		respondError(c, http.StatusBadRequest, "Valid ID is required", "INVALID_ID")
		return
	}
	body, ok := bindBody(c)
	if !ok {
		return
	}
	content, _ := payload(body).str("content")
	if content == "" {
		respondError(c, http.StatusBadRequest, "content is required", "MISSING_CONTENT")
		return
	}

	ctx := c.Request.Context()
	conv, err := h.Store.ConversationByID(ctx, id, false)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(c, http.StatusNotFound, "Conversation not found", "CONVERSATION_NOT_FOUND")
			return
		}
		respondInternal(c, "Chat", err)
		return
	}
	if conv.Status == models.ConversationClosed {
		respondError(c, http.StatusConflict, "Conversation is closed", "CONVERSATION_CLOSED")
		return
	}

	escalate := assistant.ShouldEscalate(content)
	msg := &models.SupportMessage{
		ConversationID: conv.ID,
		SenderType:     models.SenderUser,
		Content:        content,
		IsEscalated:    escalate,
	}
	if err := h.Store.CreateMessage(ctx, msg); err != nil {
		respondInternal(c, "Chat", err)
		return
	}
	h.publish(realtime.EventMessage, conv.ID, msg)

	aiHandled := conv.IsAIHandled && h.Assistant != nil
	if escalate && conv.Status != models.ConversationEscalated {
		conv, err = h.Store.UpdateConversation(ctx, conv.ID, map[string]interface{}{
			"status":        models.ConversationEscalated,
			"escalated_at":  time.Now().UTC(),
			"is_ai_handled": false,
		})
		if err != nil {
			respondInternal(c, "Chat", err)
			return
		}
		h.publish(realtime.EventConversation, conv.ID, conv)
	}

	if aiHandled {
		h.scheduleReply(conv.ID, content)
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":      msg,
		"escalated":    escalate,
		"conversation": conv,
		"replyPending": aiHandled,
	})
}

func (h *Handler) scheduleReply(conversationID uint, content string) {
	h.publish(realtime.EventTyping, conversationID, gin.H{"agent": models.DefaultAgentName})
	h.goBackground("assistant-reply", replyTimeout, func(ctx context.Context) error {
		reply, err := h.Assistant.Respond(ctx, content)
		if err != nil {
			return err
		}
		msg := &models.SupportMessage{
			ConversationID: conversationID,
			SenderType:     models.SenderAI,
			Content:        reply.Content,
			IsEscalated:    reply.Escalated,
			AIGenerated:    true,
		}
		if err := h.Store.CreateMessage(ctx, msg); err != nil {
			return err
		}
		h.publish(realtime.EventMessage, conversationID, msg)
		return nil
	})
}

// SupportSocket streams new messages of a conversation over a websocket.
// The token query parameter must belong to the conversation owner or an
// admin.
func (h *Handler) SupportSocket(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		respondError(c, http.StatusBadRequest, "Valid ID is required", "INVALID_ID")
		return
	}

	userID, role, err := middleware.ParseToken(c.Query("token"))
	if err != nil {
		respondError(c, http.StatusUnauthorized, err.Error(), "UNAUTHORIZED")
		return
	}

	conv, err := h.Store.ConversationByID(c.Request.Context(), id, false)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(c, http.StatusNotFound, "Conversation not found", "CONVERSATION_NOT_FOUND")
			return
		}
		respondInternal(c, "SupportSocket", err)
		return
	}
	if conv.UserID != userID && role != models.RoleAdmin {
		respondError(c, http.StatusForbidden, "Insufficient permissions", "FORBIDDEN")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Error("failed to upgrade support websocket")
		return
	}
	h.Hub.Attach(conv.ID, conn)
}
