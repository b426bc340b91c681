package store

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gowheels/internal/models"
)

type ConversationFilter struct {
	UserID *uint
	Status string
}

type MessageFilter struct {
	ConversationID *uint
	SenderType     string
}

// CreateConversation assigns a fresh SUPP reference and inserts c.
func (s *Store) CreateConversation(ctx context.Context, c *models.SupportConversation) error {
	return s.Refs.withReference(ConversationPrefix, func(ref string) error {
		c.ID = 0
		c.ConversationReference = ref
		return translate(s.conn(ctx).Create(c).Error)
	})
}

// ConversationByID loads a conversation; withMessages also loads its
// messages oldest first.
func (s *Store) ConversationByID(ctx context.Context, id uint, withMessages bool) (*models.SupportConversation, error) {
	q := s.conn(ctx)
	if withMessages {
		q = q.Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC").Order("id ASC")
		})
	}
	var c models.SupportConversation
	if err := q.First(&c, id).Error; err != nil {
		return nil, translate(err)
	}
	if withMessages && c.Messages == nil {
		c.Messages = []models.SupportMessage{}
	}
	return &c, nil
}

func (s *Store) ListConversations(ctx context.Context, f ConversationFilter, p Page) ([]models.SupportConversation, error) {
	q := s.conn(ctx).Model(&models.SupportConversation{})
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	conversations := []models.SupportConversation{}
	err := paginate(q.Order("created_at DESC").Order("id DESC"), p).Find(&conversations).Error
	return conversations, err
}

// UpdateConversation applies fields in one UPDATE … RETURNING.
func (s *Store) UpdateConversation(ctx context.Context, id uint, fields map[string]interface{}) (*models.SupportConversation, error) {
	var c models.SupportConversation
	res := s.conn(ctx).Model(&c).Clauses(clause.Returning{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (s *Store) CreateMessage(ctx context.Context, m *models.SupportMessage) error {
	return translate(s.conn(ctx).Create(m).Error)
}

// ListMessages returns messages newest first.
func (s *Store) ListMessages(ctx context.Context, f MessageFilter, p Page) ([]models.SupportMessage, error) {
	q := s.conn(ctx).Model(&models.SupportMessage{})
	if f.ConversationID != nil {
		q = q.Where("conversation_id = ?", *f.ConversationID)
	}
	if f.SenderType != "" {
		q = q.Where("sender_type = ?", f.SenderType)
	}

	messages := []models.SupportMessage{}
	err := paginate(q.Order("created_at DESC").Order("id DESC"), p).Find(&messages).Error
	return messages, err
}
