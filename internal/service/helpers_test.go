package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"growwise/internal/config"
	"growwise/internal/model"
	"growwise/internal/repository"

	"github.com/google/uuid"
)

// newTestAI returns a client pointed at a fake Gemini endpoint
func newTestAI(t *testing.T, handler http.HandlerFunc) (*GenAIClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.AIConfig{
		APIKey:    "test-key",
		BaseURL:   srv.URL,
		Models:    config.DefaultAIConfig().Models,
		TimeoutMS: 5000,
	}
	return NewGenAIClient(cfg), srv
}

// newDisabledAI returns a client with no API key configured
func newDisabledAI() *GenAIClient {
	return NewGenAIClient(&config.AIConfig{TimeoutMS: 1000})
}

// geminiReply wraps payload in the Gemini candidates envelope
func geminiReply(t *testing.T, payload string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]interface{}{
			"candidates": []map[string]interface{}{
				{
					"content": map[string]interface{}{
						"parts": []map[string]string{{"text": payload}},
					},
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}

// fakeAssessmentRepo records saved results in memory
type fakeAssessmentRepo struct {
	mu      sync.Mutex
	results []*model.AssessmentResult
}

func (f *fakeAssessmentRepo) SaveResult(ctx context.Context, result *model.AssessmentResult) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if result.ID == "" {
		result.ID = uuid.New().String()
	}
	f.results = append(f.results, result)
	return result.ID, nil
}

func (f *fakeAssessmentRepo) GetByID(ctx context.Context, id string) (*model.AssessmentResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.results {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeAssessmentRepo) GetLatestByUser(ctx context.Context, userID string) (*model.AssessmentResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.results) - 1; i >= 0; i-- {
		if f.results[i].UserID == userID {
			return f.results[i], nil
		}
	}
	return nil, nil
}

func (f *fakeAssessmentRepo) GetByUser(ctx context.Context, userID string) ([]*model.AssessmentResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.AssessmentResult
	for _, r := range f.results {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeAssessmentRepo) saved() []*model.AssessmentResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*model.AssessmentResult(nil), f.results...)
}

// fakeProfileRepo records upserted profiles
type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]*model.SkillProfile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[string]*model.SkillProfile)}
}

func (f *fakeProfileRepo) Upsert(ctx context.Context, profile *model.SkillProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[profile.UserID] = profile
	return nil
}

func (f *fakeProfileRepo) GetByUserID(ctx context.Context, userID string) (*model.SkillProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.profiles[userID], nil
}

// fakeSessionCache is an in-memory stand-in for the Redis mirror
type fakeSessionCache struct {
	mu        sync.Mutex
	snapshots map[string]*model.SessionSnapshot
}

func newFakeSessionCache() *fakeSessionCache {
	return &fakeSessionCache{snapshots: make(map[string]*model.SessionSnapshot)}
}

func (f *fakeSessionCache) Set(ctx context.Context, snapshot *model.SessionSnapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshots[snapshot.ID] = snapshot
	return nil
}

func (f *fakeSessionCache) Get(ctx context.Context, id string) (*model.SessionSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshots[id], nil
}

func (f *fakeSessionCache) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.snapshots, id)
	return nil
}

// fakeResultCache is an in-memory stand-in for the latest-result cache
type fakeResultCache struct {
	mu     sync.Mutex
	latest map[string]*model.AssessmentResult
}

func newFakeResultCache() *fakeResultCache {
	return &fakeResultCache{latest: make(map[string]*model.AssessmentResult)}
}

func (f *fakeResultCache) SetLatest(ctx context.Context, userID string, result *model.AssessmentResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.latest[userID] = result
	return nil
}

func (f *fakeResultCache) GetLatest(ctx context.Context, userID string) (*model.AssessmentResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.latest[userID], nil
}

func (f *fakeResultCache) Invalidate(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.latest, userID)
	return nil
}

// fakeUserRepo is an in-memory user store
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	f.users[user.ID] = user
	return user.ID, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[id], nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[user.ID] = user
	return nil
}

type fakeCurriculumRepo struct {
	mu    sync.Mutex
	paths map[string]*model.LearningPath
}

func newFakeCurriculumRepo() *fakeCurriculumRepo {
	return &fakeCurriculumRepo{paths: make(map[string]*model.LearningPath)}
}

func (f *fakeCurriculumRepo) Create(ctx context.Context, path *model.LearningPath) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if path.ID == "" {
		path.ID = uuid.New().String()
	}
	path.CreatedAt = time.Now()
	f.paths[path.ID] = path
	return path.ID, nil
}

func (f *fakeCurriculumRepo) GetByID(ctx context.Context, id string) (*model.LearningPath, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.paths[id], nil
}

func (f *fakeCurriculumRepo) GetCurrentByUser(ctx context.Context, userID string) (*model.LearningPath, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *model.LearningPath
	for _, p := range f.paths {
		if p.UserID != userID {
			continue
		}
		if latest == nil || p.CreatedAt.After(latest.CreatedAt) {
			latest = p
		}
	}
	return latest, nil
}

func (f *fakeCurriculumRepo) MarkContentComplete(ctx context.Context, pathID, contentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	path, ok := f.paths[pathID]
	if !ok {
		return repository.ErrContentNotFound
	}
	for i := range path.Stages {
		for j := range path.Stages[i].Content {
			if path.Stages[i].Content[j].ID == contentID {
				path.Stages[i].Content[j].Completed = true
				return nil
			}
		}
	}
	return repository.ErrContentNotFound
}

type fakeChatRepo struct {
	mu       sync.Mutex
	sessions map[string]*model.ChatSession
	messages map[string][]*model.ChatMessage
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{
		sessions: make(map[string]*model.ChatSession),
		messages: make(map[string][]*model.ChatMessage),
	}
}

func (f *fakeChatRepo) CreateSession(ctx context.Context, session *model.ChatSession) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	session.CreatedAt = time.Now()
	f.sessions[session.ID] = session
	return session.ID, nil
}

func (f *fakeChatRepo) GetSession(ctx context.Context, id string) (*model.ChatSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sessions[id], nil
}

func (f *fakeChatRepo) DeleteSession(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, id)
	delete(f.messages, id)
	return nil
}

func (f *fakeChatRepo) AddMessage(ctx context.Context, msg *model.ChatMessage) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	msg.CreatedAt = time.Now()
	f.messages[msg.SessionID] = append(f.messages[msg.SessionID], msg)
	return msg.ID, nil
}

func (f *fakeChatRepo) ListMessages(ctx context.Context, sessionID string, limit int64) ([]*model.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msgs := f.messages[sessionID]
	if limit > 0 && int64(len(msgs)) > limit {
		msgs = msgs[:limit]
	}
	out := make([]*model.ChatMessage, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (f *fakeChatRepo) LastMessages(ctx context.Context, sessionID string, n int64) ([]*model.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msgs := f.messages[sessionID]
	if int64(len(msgs)) > n {
		msgs = msgs[int64(len(msgs))-n:]
	}
	out := make([]*model.ChatMessage, len(msgs))
	copy(out, msgs)
	return out, nil
}

type broadcastEvent struct {
	sessionID string
	msgType   string
	payload   interface{}
}

type fakeBroadcaster struct {
	mu     sync.Mutex
	events []broadcastEvent
}

func (f *fakeBroadcaster) SendToChat(sessionID, msgType string, payload interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, broadcastEvent{sessionID, msgType, payload})
}

func (f *fakeBroadcaster) sent() []broadcastEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]broadcastEvent, len(f.events))
	copy(out, f.events)
	return out
}
