package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"growwise/internal/model"
	"growwise/internal/repository"
)

var (
	ErrChatNotFound = errors.New("chat session not found")
	ErrNotYourChat  = errors.New("chat session belongs to another user")
)

// historyWindow is how many recent messages accompany each mentor prompt
const historyWindow = 10

// Broadcaster pushes server events to connected websocket clients
type Broadcaster interface {
	SendToChat(sessionID string, msgType string, payload interface{})
}

// ChatService runs the AI tutor conversations
type ChatService struct {
	ai          *GenAIClient
	chats       repository.ChatRepo
	broadcaster Broadcaster
}

// NewChatService creates a new chat service
func NewChatService(ai *GenAIClient, chats repository.ChatRepo) *ChatService {
	return &ChatService{
		ai:    ai,
		chats: chats,
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *ChatService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// CreateSession opens a tutor conversation seeded with a welcome message
func (s *ChatService) CreateSession(ctx context.Context, userID, topic, stageName string) (*model.ChatSession, *model.ChatMessage, error) {
	session := &model.ChatSession{
		UserID:    userID,
		Topic:     topic,
		StageName: stageName,
	}
	if _, err := s.chats.CreateSession(ctx, session); err != nil {
		return nil, nil, err
	}

	welcome := &model.ChatMessage{
		SessionID: session.ID,
		Sender:    model.SenderMentor,
		Text:      s.welcomeText(topic, stageName),
	}
	if _, err := s.chats.AddMessage(ctx, welcome); err != nil {
		return nil, nil, err
	}

	return session, welcome, nil
}

// SendMessage persists the user's message, asks the mentor for a reply
// with the recent history as context, and persists the reply. A mentor
// outage degrades to a canned reply rather than surfacing an error.
func (s *ChatService) SendMessage(ctx context.Context, sessionID, userID, text string) (*model.ChatMessage, error) {
	session, err := s.ownedSession(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("message text is required")
	}

	userMsg := &model.ChatMessage{
		SessionID: sessionID,
		Sender:    model.SenderUser,
		Text:      text,
	}
	if _, err := s.chats.AddMessage(ctx, userMsg); err != nil {
		return nil, err
	}

	history, err := s.chats.LastMessages(ctx, sessionID, historyWindow)
	if err != nil {
		log.Printf("failed to load chat history for session %s: %v", sessionID, err)
		history = nil
	}

	replyText := s.mentorReply(ctx, session, text, history)

	reply := &model.ChatMessage{
		SessionID: sessionID,
		Sender:    model.SenderMentor,
		Text:      replyText,
	}
	if _, err := s.chats.AddMessage(ctx, reply); err != nil {
		return nil, err
	}

	if s.broadcaster != nil {
		s.broadcaster.SendToChat(sessionID, "mentor_message", reply)
	}
	return reply, nil
}

// ListMessages returns a session's messages in order
func (s *ChatService) ListMessages(ctx context.Context, sessionID, userID string, limit int64) ([]*model.ChatMessage, error) {
	if _, err := s.ownedSession(ctx, sessionID, userID); err != nil {
		return nil, err
	}
	return s.chats.ListMessages(ctx, sessionID, limit)
}

// DeleteSession removes a session and its messages
func (s *ChatService) DeleteSession(ctx context.Context, sessionID, userID string) error {
	if _, err := s.ownedSession(ctx, sessionID, userID); err != nil {
		return err
	}
	return s.chats.DeleteSession(ctx, sessionID)
}

func (s *ChatService) ownedSession(ctx context.Context, sessionID, userID string) (*model.ChatSession, error) {
	session, err := s.chats.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrChatNotFound
	}
	if session.UserID != userID {
		return nil, ErrNotYourChat
	}
	return session, nil
}

func (s *ChatService) mentorReply(ctx context.Context, session *model.ChatSession, text string, history []*model.ChatMessage) string {
	if !s.ai.Enabled() {
		return s.fallbackReply(session)
	}

	reply, err := s.ai.CompleteText(ctx, s.ai.Models().Mentor, s.buildMentorPrompt(session, text, history))
	if err != nil {
		log.Printf("mentor reply failed for session %s: %v", session.ID, err)
		return s.fallbackReply(session)
	}
	return reply
}

func (s *ChatService) buildMentorPrompt(session *model.ChatSession, text string, history []*model.ChatMessage) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are a patient technical mentor helping a learner study %s.\n", session.Topic)
	if session.StageName != "" {
		fmt.Fprintf(&sb, "The learner is currently working through the %q stage of their curriculum.\n", session.StageName)
	}
	sb.WriteString("Answer concretely, with short examples where they help. Keep replies under 200 words.\n")

	if len(history) > 0 {
		sb.WriteString("\nConversation so far:\n")
		for _, msg := range history {
			role := "Learner"
			if msg.Sender == model.SenderMentor {
				role = "Mentor"
			}
			fmt.Fprintf(&sb, "%s: %s\n", role, msg.Text)
		}
	}

	fmt.Fprintf(&sb, "\nLearner: %s\nMentor:", text)
	return sb.String()
}

func (s *ChatService) welcomeText(topic, stageName string) string {
	if stageName != "" {
		return fmt.Sprintf("Hi! I'm your %s mentor. You're working on %s right now - ask me anything about it, or paste code you're stuck on.", topic, stageName)
	}
	return fmt.Sprintf("Hi! I'm your %s mentor. Ask me anything about the topic, or paste code you're stuck on.", topic)
}

func (s *ChatService) fallbackReply(session *model.ChatSession) string {
	return fmt.Sprintf("I can't reach the tutoring model right now. In the meantime, the %s documentation for your current stage is a good place to keep going - try again in a minute.", session.Topic)
}
