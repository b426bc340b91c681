package models

import "time"

const (
	ConversationActive    = "active"
	ConversationEscalated = "escalated"
	ConversationClosed    = "closed"

	SenderUser   = "user"
	SenderAgent  = "agent"
	SenderAI     = "ai"
	SenderSystem = "system"

	DefaultAgentName = "AI Assistant"
)

// SupportConversation groups the chat messages between a user and support.
type SupportConversation struct {
	ID                    uint             `gorm:"primaryKey" json:"id"`
	UserID                uint             `gorm:"index" json:"userId"`
	ConversationReference string           `gorm:"uniqueIndex;not null" json:"conversationReference"`
	Status                string           `gorm:"not null;default:active;index" json:"status"`
	AgentName             string           `gorm:"default:'AI Assistant'" json:"agentName"`
	IsAIHandled           bool             `gorm:"column:is_ai_handled;default:true" json:"isAiHandled"`
	EscalatedAt           *time.Time       `json:"escalatedAt"`
	CreatedAt             time.Time        `gorm:"index" json:"createdAt"`
	UpdatedAt             time.Time        `json:"updatedAt"`
	Messages              []SupportMessage `gorm:"foreignKey:ConversationID" json:"messages,omitempty"`
}

// SupportMessage is one chat line inside a conversation.
type SupportMessage struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ConversationID uint      `gorm:"index;not null" json:"conversationId"`
	SenderType     string    `gorm:"not null" json:"senderType"`
	Content        string    `gorm:"not null" json:"content"`
	AttachmentURL  *string   `json:"attachmentUrl"`
	AttachmentName *string   `json:"attachmentName"`
	IsEscalated    bool      `gorm:"default:false" json:"isEscalated"`
	AIGenerated    bool      `gorm:"column:ai_generated;default:false" json:"aiGenerated"`
	CreatedAt      time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func IsValidConversationStatus(status string) bool {
	switch status {
	case ConversationActive, ConversationEscalated, ConversationClosed:
		return true
	}
	return false
}

func IsValidSenderType(sender string) bool {
	switch sender {
	case SenderUser, SenderAgent, SenderAI, SenderSystem:
		return true
	}
	return false
}
