// Package chat drives the follow-up editing assistant: after generating a
// document, the user refines it through a conversation that carries the
// document and their profile summary as context.
package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/philipposk/ThatJob/internal/llm"
	"github.com/philipposk/ThatJob/internal/prompts"
	"github.com/philipposk/ThatJob/internal/types"
)

// historyLimit caps how many stored turns are replayed into the model
// context.
const historyLimit = 20

// ConversationStore persists conversations for authenticated users. Guests
// chat without persistence and pass a nil store.
type ConversationStore interface {
	CreateConversation(ctx context.Context, c *types.ChatConversation) error
	GetConversation(ctx context.Context, userID, id uuid.UUID) (*types.ChatConversation, error)
	AppendMessage(ctx context.Context, m *types.ChatMessage) error
	MessagesByConversation(ctx context.Context, conversationID uuid.UUID) ([]types.ChatMessage, error)
}

// Assistant answers refinement messages about a generated document.
type Assistant struct {
	llm    llm.Completer
	store  ConversationStore
	logger zerolog.Logger
}

// New creates an Assistant. store may be nil for a stateless assistant.
func New(completer llm.Completer, store ConversationStore, logger zerolog.Logger) *Assistant {
	return &Assistant{
		llm:    completer,
		store:  store,
		logger: logger,
	}
}

// Request is one user turn.
type Request struct {
	UserID         uuid.UUID
	ConversationID *uuid.UUID
	Message        string
	// Document under discussion; included in the model context.
	DocumentContent string
	// Short profile summary keeping suggestions grounded in real experience.
	ProfileSummary string
	// Persist records the turn when a store is configured. Guests leave it
	// false.
	Persist bool
}

// Response is the assistant's reply.
type Response struct {
	ConversationID *uuid.UUID `json:"conversation_id,omitempty"`
	Reply          string     `json:"reply"`
}

// Send runs one conversation turn.
func (a *Assistant) Send(ctx context.Context, req Request) (*Response, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, fmt.Errorf("empty chat message")
	}

	msgs, conversationID, err := a.buildContext(ctx, req)
	if err != nil {
		return nil, err
	}

	reply, err := a.llm.Complete(ctx, msgs, llm.Options{Temperature: 0.7})
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	if req.Persist && a.store != nil && conversationID != nil {
		a.persistTurn(ctx, *conversationID, req.Message, reply)
	}

	return &Response{ConversationID: conversationID, Reply: reply}, nil
}

func (a *Assistant) buildContext(ctx context.Context, req Request) ([]llm.Message, *uuid.UUID, error) {
	contextBlock := prompts.Format(prompts.MustGet("chat.json", "assistant-context"), map[string]string{
		"DocumentContent": orNone(req.DocumentContent),
		"ProfileSummary":  orNone(req.ProfileSummary),
	})

	msgs := []llm.Message{
		{Role: llm.RoleSystem, Content: prompts.MustGet("chat.json", "assistant-system")},
		{Role: llm.RoleSystem, Content: contextBlock},
	}

	var conversationID *uuid.UUID
	if req.Persist && a.store != nil {
		id, history, err := a.loadHistory(ctx, req)
		if err != nil {
			return nil, nil, err
		}
		conversationID = id
		msgs = append(msgs, history...)
	}

	msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: req.Message})
	return msgs, conversationID, nil
}

func (a *Assistant) loadHistory(ctx context.Context, req Request) (*uuid.UUID, []llm.Message, error) {
	if req.ConversationID == nil {
		conversation := &types.ChatConversation{UserID: req.UserID}
		if err := a.store.CreateConversation(ctx, conversation); err != nil {
			return nil, nil, fmt.Errorf("failed to start conversation: %w", err)
		}
		return &conversation.ID, nil, nil
	}

	conversation, err := a.store.GetConversation(ctx, req.UserID, *req.ConversationID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	if conversation == nil {
		return nil, nil, fmt.Errorf("conversation %s not found", *req.ConversationID)
	}

	stored, err := a.store.MessagesByConversation(ctx, conversation.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load messages: %w", err)
	}
	if len(stored) > historyLimit {
		stored = stored[len(stored)-historyLimit:]
	}

	history := make([]llm.Message, 0, len(stored))
	for _, m := range stored {
		role := llm.RoleUser
		if m.Role == types.ChatRoleAssistant {
			role = llm.RoleAssistant
		}
		history = append(history, llm.Message{Role: role, Content: m.Content})
	}
	return &conversation.ID, history, nil
}

func (a *Assistant) persistTurn(ctx context.Context, conversationID uuid.UUID, userMessage, reply string) {
	for _, m := range []*types.ChatMessage{
		{ConversationID: conversationID, Role: types.ChatRoleUser, Content: userMessage},
		{ConversationID: conversationID, Role: types.ChatRoleAssistant, Content: reply},
	} {
		if err := a.store.AppendMessage(ctx, m); err != nil {
			a.logger.Warn().Err(err).Str("conversation", conversationID.String()).Msg("failed to persist chat message")
		}
	}
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "none"
	}
	return s
}
