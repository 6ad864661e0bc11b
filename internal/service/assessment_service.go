package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"growwise/internal/cache"
	"growwise/internal/model"
	"growwise/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrSessionNotFound  = errors.New("assessment session not found")
	ErrNotYourSession   = errors.New("assessment session belongs to another user")
	ErrSessionNotActive = errors.New("assessment session is not accepting answers")
	ErrGradeInFlight    = errors.New("an answer is already being graded")
	ErrWrongQuestion    = errors.New("answer does not match the current question")
	ErrNotFinished      = errors.New("assessment not completed yet")
	ErrMissingSelection = errors.New("single-choice answer requires a selected option index")
	ErrMissingAnswer    = errors.New("open-response answer requires answer text")
)

// DefaultTimeLimit is the whole-session countdown budget, independent of
// question count
const DefaultTimeLimit = 5 * time.Minute

// doneRetention is how long a finished session stays readable when nobody
// fetches its result. Matches the Redis mirror TTL.
const doneRetention = 15 * time.Minute

// AnswerResult is what a submission returns to the caller
type AnswerResult struct {
	Applied      bool               `json:"applied"`
	Correct      bool               `json:"correct"`
	Feedback     string             `json:"feedback,omitempty"`
	State        model.SessionState `json:"state"`
	NextQuestion *model.Question    `json:"nextQuestion,omitempty"`
}

// AssessmentService owns the live assessment sessions and sequences each
// one through loading, active, grading, finishing and done
type AssessmentService struct {
	generator   *GeneratorService
	grader      *GraderService
	results     repository.AssessmentRepo
	profiles    repository.ProfileRepo
	sessions    cache.SessionCache
	resultCache cache.ResultCache
	timeLimit   time.Duration

	mu   sync.RWMutex
	live map[string]*liveSession
}

// liveSession is the in-memory state of one running assessment.
// All fields are guarded by mu; outcomes are append-only.
type liveSession struct {
	mu        sync.Mutex
	id        string
	userID    string
	topic     string
	state     model.SessionState
	questions []model.Question
	outcomes  []model.Outcome
	current   int
	startedAt time.Time
	deadline  time.Time
	timer     *time.Timer
	result    *model.AssessmentResult
}

// NewAssessmentService creates a new assessment service
func NewAssessmentService(
	generator *GeneratorService,
	grader *GraderService,
	results repository.AssessmentRepo,
	profiles repository.ProfileRepo,
	sessions cache.SessionCache,
	resultCache cache.ResultCache,
) *AssessmentService {
	return &AssessmentService{
		generator:   generator,
		grader:      grader,
		results:     results,
		profiles:    profiles,
		sessions:    sessions,
		resultCache: resultCache,
		timeLimit:   DefaultTimeLimit,
		live:        make(map[string]*liveSession),
	}
}

// SetTimeLimit overrides the session countdown budget
func (s *AssessmentService) SetTimeLimit(d time.Duration) {
	s.timeLimit = d
}

// Start generates the question batch and opens a session in active(0).
// Generation never fails (the generator falls back), so the caller always
// gets a playable session.
func (s *AssessmentService) Start(ctx context.Context, userID, topic string) (*model.SessionSnapshot, error) {
	if topic == "" {
		return nil, fmt.Errorf("topic is required")
	}

	sess := &liveSession{
		id:     uuid.New().String(),
		userID: userID,
		topic:  topic,
		state:  model.SessionLoading,
	}

	s.mu.Lock()
	s.live[sess.id] = sess
	s.mu.Unlock()

	questions := s.generator.Generate(ctx, topic)

	sess.mu.Lock()
	sess.questions = questions
	sess.state = model.SessionActive
	sess.startedAt = time.Now()
	sess.deadline = sess.startedAt.Add(s.timeLimit)
	sessID := sess.id
	sess.timer = time.AfterFunc(s.timeLimit, func() { s.expire(sessID) })
	snap := snapshotLocked(sess)
	sess.mu.Unlock()

	s.mirror(ctx, snap)
	return snap, nil
}

// Get returns the current view of a session
func (s *AssessmentService) Get(ctx context.Context, sessionID, userID string) (*model.SessionSnapshot, error) {
	sess, err := s.lookup(sessionID, userID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return snapshotLocked(sess), nil
}

// SubmitAnswer grades the current question and advances the session.
// Single-choice answers grade synchronously; open responses move the
// session through the transient grading state, during which further
// submissions are rejected.
func (s *AssessmentService) SubmitAnswer(ctx context.Context, sessionID, userID, questionID string, selectedIndex *int, answerText string) (*AnswerResult, error) {
	sess, err := s.lookup(sessionID, userID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()

	switch sess.state {
	case model.SessionActive:
	case model.SessionGrading:
		sess.mu.Unlock()
		return nil, ErrGradeInFlight
	default:
		sess.mu.Unlock()
		return nil, ErrSessionNotActive
	}

	question := sess.questions[sess.current]
	if question.ID != questionID {
		sess.mu.Unlock()
		return nil, ErrWrongQuestion
	}

	if question.Kind == model.QuestionSingleChoice {
		if selectedIndex == nil {
			sess.mu.Unlock()
			return nil, ErrMissingSelection
		}
		correct := s.grader.GradeChoice(question, *selectedIndex)
		result := s.applyOutcomeLocked(sess, question, correct, "")
		snap := snapshotLocked(sess)
		sess.mu.Unlock()

		s.mirror(ctx, snap)
		return result, nil
	}

	if answerText == "" {
		sess.mu.Unlock()
		return nil, ErrMissingAnswer
	}

	// Open response: enter the transient grading state and release the
	// lock for the duration of the AI call
	sess.state = model.SessionGrading
	index := sess.current
	snap := snapshotLocked(sess)
	sess.mu.Unlock()
	s.mirror(ctx, snap)

	verdict := s.grader.GradeOpenResponse(ctx, question.Prompt, answerText, question.Topic)

	sess.mu.Lock()
	if sess.state != model.SessionGrading || sess.current != index {
		// The timer expired or the learner exited while the grade was in
		// flight. The session already moved on; discard the stale outcome.
		state := sess.state
		sess.mu.Unlock()
		return &AnswerResult{Applied: false, State: state}, nil
	}

	sess.state = model.SessionActive
	result := s.applyOutcomeLocked(sess, question, verdict.Correct, verdict.Feedback)
	snap = snapshotLocked(sess)
	sess.mu.Unlock()

	s.mirror(ctx, snap)
	return result, nil
}

// applyOutcomeLocked appends the outcome and advances to the next
// question, or finishes after the last one. Caller holds sess.mu.
func (s *AssessmentService) applyOutcomeLocked(sess *liveSession, question model.Question, correct bool, feedback string) *AnswerResult {
	sess.outcomes = append(sess.outcomes, model.Outcome{
		QuestionID: question.ID,
		Correct:    correct,
		Topic:      question.Topic,
	})

	result := &AnswerResult{
		Applied:  true,
		Correct:  correct,
		Feedback: feedback,
	}

	if sess.current+1 < len(sess.questions) {
		sess.current++
		next := sess.questions[sess.current].Public()
		result.NextQuestion = &next
	} else {
		s.finishLocked(sess)
	}
	result.State = sess.state
	return result
}

// finishLocked aggregates and hands the result to the persistence
// adapter. Caller holds sess.mu.
func (s *AssessmentService) finishLocked(sess *liveSession) {
	sess.state = model.SessionFinishing
	if sess.timer != nil {
		sess.timer.Stop()
	}

	sess.result = Aggregate(sess.id, sess.userID, sess.topic, sess.questions, sess.outcomes)
	sess.state = model.SessionDone

	// Best-effort, fire-and-forget: the learner reaches the dashboard
	// whether or not storage is reachable
	go s.persist(sess.result)

	// Done is terminal: Result tears the session down once the result is
	// delivered, the retention timer catches results nobody fetches
	sessID := sess.id
	time.AfterFunc(doneRetention, func() { s.remove(context.Background(), sessID) })
}

// expire fires when the whole-session countdown runs out. Whatever
// outcomes were collected so far still score; nothing is discarded.
func (s *AssessmentService) expire(sessionID string) {
	s.mu.RLock()
	sess, ok := s.live[sessionID]
	s.mu.RUnlock()
	if !ok {
		return
	}

	sess.mu.Lock()
	switch sess.state {
	case model.SessionActive, model.SessionGrading:
		s.finishLocked(sess)
	default:
		sess.mu.Unlock()
		return
	}
	snap := snapshotLocked(sess)
	sess.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.mirror(ctx, snap)
}

// Exit is the learner's manual early exit. All collected outcomes are
// discarded and nothing is persisted, unlike timer expiry.
func (s *AssessmentService) Exit(ctx context.Context, sessionID, userID string) error {
	sess, err := s.lookup(sessionID, userID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	switch sess.state {
	case model.SessionActive, model.SessionGrading:
		sess.state = model.SessionAbandoned
		sess.outcomes = nil
		if sess.timer != nil {
			sess.timer.Stop()
		}
	case model.SessionDone:
		// Already scored and persisted; exit is just teardown
	default:
		sess.mu.Unlock()
		return ErrSessionNotActive
	}
	sess.mu.Unlock()

	s.remove(ctx, sessionID)
	return nil
}

// Result returns the result of a finished session
func (s *AssessmentService) Result(ctx context.Context, sessionID, userID string) (*model.AssessmentResult, error) {
	sess, err := s.lookup(sessionID, userID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	if sess.state != model.SessionDone {
		sess.mu.Unlock()
		return nil, ErrNotFinished
	}
	result := sess.result
	sess.mu.Unlock()

	// The result has been delivered; done is terminal, tear the session down
	s.remove(ctx, sessionID)
	return result, nil
}

// Latest returns the user's most recent persisted result, cache first
func (s *AssessmentService) Latest(ctx context.Context, userID string) (*model.AssessmentResult, error) {
	if cached, err := s.resultCache.GetLatest(ctx, userID); err == nil && cached != nil {
		return cached, nil
	}

	result, err := s.results.GetLatestByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, nil
	}

	if err := s.resultCache.SetLatest(ctx, userID, result); err != nil {
		log.Printf("failed to cache latest result for user %s: %v", userID, err)
	}
	return result, nil
}

// remove drops a session from the live map and the cache mirror
func (s *AssessmentService) remove(ctx context.Context, sessionID string) {
	s.mu.Lock()
	delete(s.live, sessionID)
	s.mu.Unlock()

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		log.Printf("failed to drop session %s from cache: %v", sessionID, err)
	}
}

func (s *AssessmentService) lookup(sessionID, userID string) (*liveSession, error) {
	s.mu.RLock()
	sess, ok := s.live[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	if sess.userID != userID {
		return nil, ErrNotYourSession
	}
	return sess, nil
}

// persist is the persistence adapter: insert the result, refresh the
// latest-result cache, upsert the derived skill profile. Every failure
// is logged and swallowed.
func (s *AssessmentService) persist(result *model.AssessmentResult) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := s.results.SaveResult(ctx, result); err != nil {
		log.Printf("failed to persist assessment result for user %s: %v", result.UserID, err)
	}
	if err := s.resultCache.SetLatest(ctx, result.UserID, result); err != nil {
		log.Printf("failed to cache assessment result for user %s: %v", result.UserID, err)
	}
	if err := s.profiles.Upsert(ctx, profileFor(result)); err != nil {
		log.Printf("failed to upsert skill profile for user %s: %v", result.UserID, err)
	}
}

// profileFor derives the skill profile text buckets from the score
func profileFor(result *model.AssessmentResult) *model.SkillProfile {
	profile := &model.SkillProfile{UserID: result.UserID}
	switch {
	case result.Score >= 80:
		profile.Strengths = "Strong problem-solving, quick learning, analytical thinking"
		profile.Weaknesses = "Could improve on advanced optimization techniques"
		profile.ThinkingPattern = "Systematic and methodical approach to problems"
	case result.Score >= 60:
		profile.Strengths = "Good foundational knowledge, eager to learn"
		profile.Weaknesses = "Needs more practice with complex scenarios"
		profile.ThinkingPattern = "Practical approach with room for deeper analysis"
	default:
		profile.Strengths = "Basic understanding of concepts, willing to improve"
		profile.Weaknesses = "Requires more practice and conceptual understanding"
		profile.ThinkingPattern = "Still developing analytical framework"
	}
	return profile
}

// mirror pushes a snapshot into the session cache, best-effort
func (s *AssessmentService) mirror(ctx context.Context, snap *model.SessionSnapshot) {
	if err := s.sessions.Set(ctx, snap); err != nil {
		log.Printf("failed to mirror session %s: %v", snap.ID, err)
	}
}

// snapshotLocked builds the external view. Caller holds sess.mu.
func snapshotLocked(sess *liveSession) *model.SessionSnapshot {
	snap := &model.SessionSnapshot{
		ID:             sess.id,
		UserID:         sess.userID,
		Topic:          sess.topic,
		State:          sess.state,
		CurrentIndex:   sess.current,
		TotalQuestions: len(sess.questions),
		Answered:       len(sess.outcomes),
		Deadline:       sess.deadline,
		StartedAt:      sess.startedAt,
	}
	if sess.state == model.SessionActive || sess.state == model.SessionGrading {
		q := sess.questions[sess.current].Public()
		snap.CurrentQuestion = &q
	}
	return snap
}
