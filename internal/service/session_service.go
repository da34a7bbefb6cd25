package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"intakeflow/internal/cache"
	"intakeflow/internal/engine"
	"intakeflow/internal/model"
	"intakeflow/internal/repository"
	"intakeflow/internal/syncer"
)

var (
	ErrQuestionnaireNotFound = errors.New("questionnaire not found")
	// ErrConfirmationRequired gates the destructive operations (submit,
	// reset) behind an explicit confirmation step.
	ErrConfirmationRequired = errors.New("operation requires confirmation")
)

// CompletionFunc receives the final answer map exactly once per submission.
type CompletionFunc func(clientID, questionnaireID string, answers map[string]model.AnswerValue)

// SyncStatus is the trio of observable persistence signals the UI composes
// into its save indicator.
type SyncStatus struct {
	IsSyncing    bool       `json:"isSyncing"`
	IsOnline     bool       `json:"isOnline"`
	LastSyncedAt *time.Time `json:"lastSyncedAt,omitempty"`
}

// IntroStats are the aggregate numbers shown on the intro screen.
type IntroStats struct {
	TotalQuestions        int `json:"totalQuestions"`
	RequiredCount         int `json:"requiredCount"`
	ModuleCount           int `json:"moduleCount"`
	TotalEstimatedMinutes int `json:"totalEstimatedMinutes"`
}

// SessionView is the full snapshot a UI renders from.
type SessionView struct {
	Phase             engine.Phase         `json:"phase"`
	Questionnaire     *model.Questionnaire `json:"questionnaire"`
	State             *model.SessionState  `json:"state"`
	Progress          engine.Progress      `json:"progress"`
	CurrentQuestion   *model.Question      `json:"currentQuestion,omitempty"`
	Multiplier        int                  `json:"multiplier"`
	AdvanceBlocked    bool                 `json:"advanceBlocked"`
	AccessibleModules []bool               `json:"accessibleModules"`
	Stats             IntroStats           `json:"stats"`
	Sync              SyncStatus           `json:"sync"`
}

type liveSession struct {
	engine *engine.Session
	coord  *syncer.Coordinator
}

// SessionService owns the live intake sessions of this process, one per
// (clientId, questionnaireId) pair, and wires each engine to its sync
// coordinator, fallback cache, and event channel.
type SessionService struct {
	questionnaireRepo repository.QuestionnaireRepo
	sessionRepo       repository.SessionRepo
	sessionCache      cache.SessionCache
	broadcaster       Broadcaster
	onComplete        CompletionFunc

	mu   sync.Mutex
	live map[string]*liveSession
}

// NewSessionService creates the session registry.
func NewSessionService(
	questionnaireRepo repository.QuestionnaireRepo,
	sessionRepo repository.SessionRepo,
	sessionCache cache.SessionCache,
) *SessionService {
	return &SessionService{
		questionnaireRepo: questionnaireRepo,
		sessionRepo:       sessionRepo,
		sessionCache:      sessionCache,
		live:              make(map[string]*liveSession),
	}
}

// SetBroadcaster wires the realtime event channel.
func (s *SessionService) SetBroadcaster(b Broadcaster) { s.broadcaster = b }

// SetOnComplete registers the downstream completion hook (e.g. notifying the
// resume writer that an intake is ready).
func (s *SessionService) SetOnComplete(fn CompletionFunc) { s.onComplete = fn }

func sessionKey(clientID, questionnaireID string) string {
	return clientID + "/" + questionnaireID
}

// open returns the live session for the pair, hydrating it on first access:
// load from the fallback cache and the remote store, merge preferring the
// copy with more progress, and resume navigation from the merged cursor.
func (s *SessionService) open(ctx context.Context, clientID, questionnaireID string) (*liveSession, error) {
	s.mu.Lock()
	if ls, ok := s.live[sessionKey(clientID, questionnaireID)]; ok {
		s.mu.Unlock()
		return ls, nil
	}
	s.mu.Unlock()

	questionnaire, err := s.questionnaireRepo.GetByID(ctx, questionnaireID)
	if err != nil {
		return nil, fmt.Errorf("failed to load questionnaire: %w", err)
	}
	if questionnaire == nil {
		return nil, ErrQuestionnaireNotFound
	}

	var cached *model.SessionState
	if s.sessionCache != nil {
		if cached, err = s.sessionCache.Get(ctx, clientID, questionnaireID); err != nil {
			log.Printf("[session] Warning: fallback cache read failed for %s/%s: %v", clientID, questionnaireID, err)
			cached = nil
		}
	}

	remote, err := s.sessionRepo.Load(ctx, clientID, questionnaireID)
	if err != nil {
		// Remote unavailable is "offline", not fatal: continue from the
		// cached copy (or empty) and let the coordinator resync later.
		log.Printf("[session] Warning: remote load failed for %s/%s: %v", clientID, questionnaireID, err)
		remote = nil
	}

	state := mergeStates(cached, remote)

	sess := engine.NewSession(questionnaire, clientID)
	if state != nil {
		sess.Restore(state)
	}

	var syncCache syncer.Cache
	if s.sessionCache != nil {
		syncCache = s.sessionCache
	}
	coord := syncer.New(s.sessionRepo, syncCache, sess.Snapshot)

	sess.SetOnChange(coord.Schedule)
	if s.broadcaster != nil {
		sess.SetListener(&eventRelay{b: s.broadcaster, clientID: clientID, questionnaireID: questionnaireID})
	}
	sess.SetOnComplete(func(answers map[string]model.AnswerValue) {
		if s.broadcaster != nil {
			s.broadcaster.BroadcastToClient(clientID, questionnaireID, "intake_completed", map[string]interface{}{
				"answeredCount": len(answers),
			})
		}
		if s.onComplete != nil {
			s.onComplete(clientID, questionnaireID, answers)
		}
	})

	ls := &liveSession{engine: sess, coord: coord}

	s.mu.Lock()
	if existing, ok := s.live[sessionKey(clientID, questionnaireID)]; ok {
		// Lost the hydration race; discard ours.
		s.mu.Unlock()
		sess.Close()
		coord.Close()
		return existing, nil
	}
	s.live[sessionKey(clientID, questionnaireID)] = ls
	s.mu.Unlock()
	return ls, nil
}

// View assembles the full UI snapshot, hydrating the session if needed.
// While hydration is in flight the transport shows its loading state; this
// call is the single blocking load of the lifecycle.
func (s *SessionService) View(ctx context.Context, clientID, questionnaireID string) (*SessionView, error) {
	ls, err := s.open(ctx, clientID, questionnaireID)
	if err != nil {
		return nil, err
	}
	return s.buildView(ls), nil
}

func (s *SessionService) buildView(ls *liveSession) *SessionView {
	state := ls.engine.Snapshot()
	questionnaire := ls.engine.Questionnaire()
	progress := ls.engine.Progress()

	accessible := make([]bool, len(questionnaire.Modules))
	for i := range questionnaire.Modules {
		accessible[i] = ls.engine.ModuleAccessible(i)
	}

	syncing, online, lastSynced := ls.coord.Status()
	status := SyncStatus{IsSyncing: syncing, IsOnline: online}
	if !lastSynced.IsZero() {
		t := lastSynced
		status.LastSyncedAt = &t
	}

	return &SessionView{
		Phase:             ls.engine.Phase(),
		Questionnaire:     questionnaire,
		State:             state,
		Progress:          progress,
		CurrentQuestion:   ls.engine.CurrentQuestion(),
		Multiplier:        ls.engine.Multiplier(),
		AdvanceBlocked:    ls.engine.AdvanceBlocked(),
		AccessibleModules: accessible,
		Stats: IntroStats{
			TotalQuestions:        progress.TotalQuestions,
			RequiredCount:         progress.RequiredCount,
			ModuleCount:           len(questionnaire.Modules),
			TotalEstimatedMinutes: questionnaire.TotalEstimatedMinutes(),
		},
		Sync: status,
	}
}

// Begin leaves the intro screen.
func (s *SessionService) Begin(ctx context.Context, clientID, questionnaireID string) (*SessionView, error) {
	ls, err := s.open(ctx, clientID, questionnaireID)
	if err != nil {
		return nil, err
	}
	ls.engine.Begin()
	return s.buildView(ls), nil
}

// Answer records one answer value.
func (s *SessionService) Answer(ctx context.Context, clientID, questionnaireID, questionID string, value model.AnswerValue) (*SessionView, error) {
	ls, err := s.open(ctx, clientID, questionnaireID)
	if err != nil {
		return nil, err
	}
	if err := ls.engine.SetAnswer(questionID, value); err != nil {
		return nil, err
	}
	return s.buildView(ls), nil
}

// Advance moves to the next question; engine.ErrAnswerRequired comes back
// when the current required question is unanswered.
func (s *SessionService) Advance(ctx context.Context, clientID, questionnaireID string) (*SessionView, error) {
	ls, err := s.open(ctx, clientID, questionnaireID)
	if err != nil {
		return nil, err
	}
	if err := ls.engine.Advance(); err != nil {
		return nil, err
	}
	if ls.engine.Phase() == engine.PhaseSubmitted {
		// Natural completion flushes like an explicit submit.
		s.forceSync(ctx, ls, clientID, questionnaireID)
	}
	return s.buildView(ls), nil
}

// Back moves to the previous question.
func (s *SessionService) Back(ctx context.Context, clientID, questionnaireID string) (*SessionView, error) {
	ls, err := s.open(ctx, clientID, questionnaireID)
	if err != nil {
		return nil, err
	}
	ls.engine.Back()
	return s.buildView(ls), nil
}

// Skip advances past an optional question.
func (s *SessionService) Skip(ctx context.Context, clientID, questionnaireID string) (*SessionView, error) {
	ls, err := s.open(ctx, clientID, questionnaireID)
	if err != nil {
		return nil, err
	}
	if err := ls.engine.Skip(); err != nil {
		return nil, err
	}
	return s.buildView(ls), nil
}

// SelectModule jumps to an accessible module.
func (s *SessionService) SelectModule(ctx context.Context, clientID, questionnaireID string, index int) (*SessionView, error) {
	ls, err := s.open(ctx, clientID, questionnaireID)
	if err != nil {
		return nil, err
	}
	if err := ls.engine.SelectModule(index); err != nil {
		return nil, err
	}
	return s.buildView(ls), nil
}

// DismissMilestone closes the active celebration early.
func (s *SessionService) DismissMilestone(ctx context.Context, clientID, questionnaireID string) error {
	ls, err := s.open(ctx, clientID, questionnaireID)
	if err != nil {
		return err
	}
	ls.engine.DismissMilestone()
	return nil
}

// ForceSync is the manual "save now" action.
func (s *SessionService) ForceSync(ctx context.Context, clientID, questionnaireID string) (*SessionView, error) {
	ls, err := s.open(ctx, clientID, questionnaireID)
	if err != nil {
		return nil, err
	}
	s.forceSync(ctx, ls, clientID, questionnaireID)
	return s.buildView(ls), nil
}

// Submit finalizes the intake. It is confirmation-gated and idempotent: a
// second confirmed submit after completion flushes again but never fires the
// completion callback twice.
func (s *SessionService) Submit(ctx context.Context, clientID, questionnaireID string, confirmed bool) (*SessionView, error) {
	if !confirmed {
		return nil, ErrConfirmationRequired
	}
	ls, err := s.open(ctx, clientID, questionnaireID)
	if err != nil {
		return nil, err
	}
	ls.engine.Submit()
	s.forceSync(ctx, ls, clientID, questionnaireID)
	return s.buildView(ls), nil
}

// Reset wipes the session back to the intro screen. Confirmation-gated. The
// cache entry is deleted and the emptied state force-synced before returning,
// so a reload (or an immediately closed tab) cannot resurrect old answers.
func (s *SessionService) Reset(ctx context.Context, clientID, questionnaireID string, confirmed bool) (*SessionView, error) {
	if !confirmed {
		return nil, ErrConfirmationRequired
	}
	ls, err := s.open(ctx, clientID, questionnaireID)
	if err != nil {
		return nil, err
	}

	ls.engine.Reset()
	if s.sessionCache != nil {
		if err := s.sessionCache.Delete(ctx, clientID, questionnaireID); err != nil {
			log.Printf("[session] Warning: failed to clear cache for %s/%s: %v", clientID, questionnaireID, err)
		}
	}
	s.forceSync(ctx, ls, clientID, questionnaireID)
	return s.buildView(ls), nil
}

func (s *SessionService) forceSync(ctx context.Context, ls *liveSession, clientID, questionnaireID string) {
	if err := ls.coord.ForceSync(ctx); err != nil {
		log.Printf("[session] Warning: force sync failed for %s/%s: %v", clientID, questionnaireID, err)
	}
	if s.broadcaster != nil {
		syncing, online, lastSynced := ls.coord.Status()
		payload := map[string]interface{}{"isSyncing": syncing, "isOnline": online}
		if !lastSynced.IsZero() {
			payload["lastSyncedAt"] = lastSynced
		}
		s.broadcaster.BroadcastToClient(clientID, questionnaireID, "sync_status", payload)
	}
}

// Evict closes and removes one live session (e.g. after completion).
func (s *SessionService) Evict(clientID, questionnaireID string) {
	s.mu.Lock()
	ls, ok := s.live[sessionKey(clientID, questionnaireID)]
	if ok {
		delete(s.live, sessionKey(clientID, questionnaireID))
	}
	s.mu.Unlock()
	if ok {
		ls.engine.Close()
		ls.coord.Close()
	}
}

// Shutdown closes every live session, cancelling all pending timers.
func (s *SessionService) Shutdown() {
	s.mu.Lock()
	sessions := s.live
	s.live = make(map[string]*liveSession)
	s.mu.Unlock()

	for _, ls := range sessions {
		ls.engine.Close()
		ls.coord.Close()
	}
}

// mergeStates prefers the copy with more answers, then more points, then the
// further cursor. Two-tab conflicts stay last-writer-wins by design.
func mergeStates(local, remote *model.SessionState) *model.SessionState {
	if local == nil {
		return remote
	}
	if remote == nil {
		return local
	}
	if local.AnswerCount() != remote.AnswerCount() {
		if local.AnswerCount() > remote.AnswerCount() {
			return local
		}
		return remote
	}
	if local.Points > remote.Points || local.QuestionIndex > remote.QuestionIndex {
		return local
	}
	return remote
}

// eventRelay adapts engine events onto the realtime channel.
type eventRelay struct {
	b               Broadcaster
	clientID        string
	questionnaireID string
}

func (r *eventRelay) PointsAwarded(questionID string, points, combo, multiplier, streak int) {
	r.b.BroadcastToClient(r.clientID, r.questionnaireID, "points_awarded", map[string]interface{}{
		"questionId": questionID,
		"points":     points,
		"combo":      combo,
		"multiplier": multiplier,
		"streak":     streak,
	})
}

func (r *eventRelay) ComboExpired() {
	r.b.BroadcastToClient(r.clientID, r.questionnaireID, "combo_expired", map[string]interface{}{})
}

func (r *eventRelay) EncouragementShown(message string) {
	r.b.BroadcastToClient(r.clientID, r.questionnaireID, "encouragement", map[string]interface{}{
		"message": message,
	})
}

func (r *eventRelay) EncouragementDismissed() {
	r.b.BroadcastToClient(r.clientID, r.questionnaireID, "encouragement_dismissed", map[string]interface{}{})
}

func (r *eventRelay) MilestoneReached(m model.Milestone) {
	r.b.BroadcastToClient(r.clientID, r.questionnaireID, "milestone", map[string]interface{}{
		"id":          m.ID,
		"title":       m.Title,
		"description": m.Description,
		"threshold":   m.Threshold,
		"emoji":       m.Emoji,
	})
}

func (r *eventRelay) MilestoneDismissed(threshold int) {
	r.b.BroadcastToClient(r.clientID, r.questionnaireID, "milestone_dismissed", map[string]interface{}{
		"threshold": threshold,
	})
}
