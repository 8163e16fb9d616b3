package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/college-hq/advising-engine/pkg/apperrors"
	"github.com/college-hq/advising-engine/pkg/docstore"
	"github.com/college-hq/advising-engine/pkg/models"
)

const conversationsCollection = "conversations"

// conversationKey builds the composite (user, conversation) document key.
func conversationKey(userID, conversationID string) string {
	return userID + "#" + conversationID
}

// NewConversationID generates an opaque conversation id: unix millis plus
// a short random suffix. Uniqueness against the store is not checked;
// at this volume the collision probability is accepted as negligible.
func NewConversationID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return fmt.Sprintf("c%d-%s", now.UnixMilli(), suffix)
}

// ConversationRepository provides data access for per-user conversation logs.
type ConversationRepository interface {
	// Create persists an empty-message conversation, generating an id if
	// none is supplied. Returns apperrors.ErrConflict when a caller-supplied
	// id already exists.
	Create(ctx context.Context, userID, conversationID, title, agentType string) (*models.Conversation, error)

	Get(ctx context.Context, userID, conversationID string) (*models.Conversation, error)

	// List returns summaries (no message bodies) ordered newest-first.
	List(ctx context.Context, userID string) ([]models.ConversationSummary, error)

	// AppendMessage appends up to two messages (user then assistant, each
	// optional) to the conversation, implicitly creating it first if the
	// (user, conversation) pair is unknown. The append is atomic: two
	// concurrent appends both land.
	AppendMessage(ctx context.Context, userID, conversationID, userText, assistantText string) (*models.Conversation, error)

	// SetMetadata fills in title and agent tag on a conversation that was
	// implicitly created without them. Existing non-empty values win.
	SetMetadata(ctx context.Context, userID, conversationID, title, agentType string) error

	// Delete removes the conversation; deleting an absent one succeeds.
	Delete(ctx context.Context, userID, conversationID string) error
}

type conversationRepository struct {
	store docstore.Store
	now   func() time.Time
}

// NewConversationRepository creates a ConversationRepository backed by the
// given store.
func NewConversationRepository(store docstore.Store) ConversationRepository {
	return &conversationRepository{store: store, now: time.Now}
}

var _ ConversationRepository = (*conversationRepository)(nil)

func (r *conversationRepository) Create(ctx context.Context, userID, conversationID, title, agentType string) (*models.Conversation, error) {
	now := r.now().UTC()
	generated := conversationID == ""
	if generated {
		conversationID = NewConversationID(now)
	}

	conv := &models.Conversation{
		UserID:         userID,
		ConversationID: conversationID,
		Title:          title,
		AgentType:      agentType,
		Messages:       []models.Message{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err := r.store.Update(ctx, conversationsCollection, conversationKey(userID, conversationID), func(current []byte) ([]byte, error) {
		if current != nil && !generated {
			return nil, apperrors.ErrConflict
		}
		return json.Marshal(conv)
	})
	if err != nil {
		if err == apperrors.ErrConflict {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	return conv, nil
}

func (r *conversationRepository) Get(ctx context.Context, userID, conversationID string) (*models.Conversation, error) {
	raw, err := r.store.Get(ctx, conversationsCollection, conversationKey(userID, conversationID))
	if err != nil {
		return nil, err
	}
	return decodeConversation(raw)
}

func (r *conversationRepository) List(ctx context.Context, userID string) ([]models.ConversationSummary, error) {
	prefix := userID + "#"
	summaries := []models.ConversationSummary{}

	err := r.store.Scan(ctx, conversationsCollection, func(key string, value []byte) error {
		if !strings.HasPrefix(key, prefix) {
			return nil
		}
		conv, err := decodeConversation(value)
		if err != nil {
			return err
		}
		summaries = append(summaries, conv.Summary())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
	})
	return summaries, nil
}

func (r *conversationRepository) AppendMessage(ctx context.Context, userID, conversationID, userText, assistantText string) (*models.Conversation, error) {
	now := r.now().UTC()
	var conv *models.Conversation

	err := r.store.Update(ctx, conversationsCollection, conversationKey(userID, conversationID), func(current []byte) ([]byte, error) {
		if current == nil {
			conv = &models.Conversation{
				UserID:         userID,
				ConversationID: conversationID,
				Messages:       []models.Message{},
				CreatedAt:      now,
			}
		} else {
			decoded, err := decodeConversation(current)
			if err != nil {
				return nil, err
			}
			conv = decoded
		}

		if userText != "" {
			conv.Messages = append(conv.Messages, models.Message{
				Role:      models.RoleUser,
				Content:   userText,
				Timestamp: now,
			})
		}
		if assistantText != "" {
			conv.Messages = append(conv.Messages, models.Message{
				Role:      models.RoleAssistant,
				Content:   assistantText,
				Timestamp: now,
			})
		}
		conv.UpdatedAt = now

		return json.Marshal(conv)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to append messages: %w", err)
	}
	return conv, nil
}

func (r *conversationRepository) SetMetadata(ctx context.Context, userID, conversationID, title, agentType string) error {
	err := r.store.Update(ctx, conversationsCollection, conversationKey(userID, conversationID), func(current []byte) ([]byte, error) {
		if current == nil {
			return nil, apperrors.ErrNotFound
		}
		conv, err := decodeConversation(current)
		if err != nil {
			return nil, err
		}
		if conv.Title == "" {
			conv.Title = title
		}
		if conv.AgentType == "" {
			conv.AgentType = agentType
		}
		return json.Marshal(conv)
	})
	if err != nil {
		if err == apperrors.ErrNotFound {
			return err
		}
		return fmt.Errorf("failed to set conversation metadata: %w", err)
	}
	return nil
}

func (r *conversationRepository) Delete(ctx context.Context, userID, conversationID string) error {
	return r.store.Delete(ctx, conversationsCollection, conversationKey(userID, conversationID))
}

func decodeConversation(raw []byte) (*models.Conversation, error) {
	var conv models.Conversation
	if err := json.Unmarshal(raw, &conv); err != nil {
		return nil, fmt.Errorf("failed to decode conversation: %w", err)
	}
	if conv.Messages == nil {
		conv.Messages = []models.Message{}
	}
	return &conv, nil
}
