package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"growwise/internal/config"
	"growwise/internal/model"
	"growwise/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memUserRepo is an in-memory user store for handler tests
type memUserRepo struct {
	mu    sync.Mutex
	seq   int
	users map[string]*model.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*model.User)}
}

func (m *memUserRepo) Create(ctx context.Context, user *model.User) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	user.ID = fmt.Sprintf("user-%d", m.seq)
	m.users[user.ID] = user
	return user.ID, nil
}

func (m *memUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[id], nil
}

func (m *memUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (m *memUserRepo) Update(ctx context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
	return nil
}

type memAssessmentRepo struct{}

func (memAssessmentRepo) SaveResult(ctx context.Context, result *model.AssessmentResult) (string, error) {
	return result.ID, nil
}
func (memAssessmentRepo) GetByID(ctx context.Context, id string) (*model.AssessmentResult, error) {
	return nil, nil
}
func (memAssessmentRepo) GetLatestByUser(ctx context.Context, userID string) (*model.AssessmentResult, error) {
	return nil, nil
}
func (memAssessmentRepo) GetByUser(ctx context.Context, userID string) ([]*model.AssessmentResult, error) {
	return nil, nil
}

type memProfileRepo struct{}

func (memProfileRepo) Upsert(ctx context.Context, profile *model.SkillProfile) error { return nil }
func (memProfileRepo) GetByUserID(ctx context.Context, userID string) (*model.SkillProfile, error) {
	return nil, nil
}

type memSessionCache struct{}

func (memSessionCache) Set(ctx context.Context, snapshot *model.SessionSnapshot) error { return nil }
func (memSessionCache) Get(ctx context.Context, id string) (*model.SessionSnapshot, error) {
	return nil, nil
}
func (memSessionCache) Delete(ctx context.Context, id string) error { return nil }

type memResultCache struct{}

func (memResultCache) SetLatest(ctx context.Context, userID string, result *model.AssessmentResult) error {
	return nil
}
func (memResultCache) GetLatest(ctx context.Context, userID string) (*model.AssessmentResult, error) {
	return nil, nil
}
func (memResultCache) Invalidate(ctx context.Context, userID string) error { return nil }

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	ai := service.NewGenAIClient(&config.AIConfig{TimeoutMS: 1000})
	authSvc := service.NewAuthService(newMemUserRepo())
	assessmentSvc := service.NewAssessmentService(
		service.NewGeneratorService(ai),
		service.NewGraderService(ai),
		memAssessmentRepo{},
		memProfileRepo{},
		memSessionCache{},
		memResultCache{},
	)

	router := NewRouter(&Container{
		AuthService:       authSvc,
		AssessmentService: assessmentSvc,
		CurriculumService: service.NewCurriculumService(ai, nil, memAssessmentRepo{}),
		ChatService:       service.NewChatService(ai, nil),
		ValidatorService:  service.NewValidatorService(ai),
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url, token string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	req, err := http.NewRequest("POST", url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestRouter_Health(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouter_RequiresToken(t *testing.T) {
	srv := newTestServer(t)

	req, err := http.NewRequest("GET", srv.URL+"/v1/auth/me", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRouter_RegisterAndRunAssessment(t *testing.T) {
	srv := newTestServer(t)

	// Register
	resp := postJSON(t, srv.URL+"/v1/auth/register", "", map[string]string{
		"name":     "Ada",
		"email":    "ada@example.com",
		"password": "s3cret-pw",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var login model.LoginResponse
	decodeBody(t, resp, &login)
	require.NotEmpty(t, login.Token)

	// Duplicate registration conflicts
	resp = postJSON(t, srv.URL+"/v1/auth/register", "", map[string]string{
		"name":     "Ada Again",
		"email":    "ada@example.com",
		"password": "other-pw",
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Start an assessment (disabled AI serves the deterministic batch)
	resp = postJSON(t, srv.URL+"/v1/assessments", login.Token, map[string]string{"topic": "Go"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var snap model.SessionSnapshot
	decodeBody(t, resp, &snap)
	assert.Equal(t, model.SessionActive, snap.State)
	require.NotNil(t, snap.CurrentQuestion)
	assert.Empty(t, snap.CurrentQuestion.Explanation, "answer key never leaves the server")

	// Answer the current question
	resp = postJSON(t, srv.URL+"/v1/assessments/"+snap.ID+"/answers", login.Token, map[string]interface{}{
		"questionId":    snap.CurrentQuestion.ID,
		"selectedIndex": 0,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var answer struct {
		Applied bool              `json:"applied"`
		State   model.SessionState `json:"state"`
	}
	decodeBody(t, resp, &answer)
	assert.True(t, answer.Applied)

	// Result before finishing conflicts
	req, err := http.NewRequest("GET", srv.URL+"/v1/assessments/"+snap.ID+"/result", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	getResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	getResp.Body.Close()
	assert.Equal(t, http.StatusConflict, getResp.StatusCode)

	// Someone else's token cannot touch the session
	resp = postJSON(t, srv.URL+"/v1/auth/register", "", map[string]string{
		"name":     "Eve",
		"email":    "eve@example.com",
		"password": "eve-pw-123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var other model.LoginResponse
	decodeBody(t, resp, &other)

	resp = postJSON(t, srv.URL+"/v1/assessments/"+snap.ID+"/exit", other.Token, map[string]string{})
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
