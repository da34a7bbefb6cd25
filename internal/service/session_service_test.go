package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"intakeflow/internal/engine"
	"intakeflow/internal/model"
)

type stubQuestionnaireRepo struct {
	questionnaires map[string]*model.Questionnaire
}

func (r *stubQuestionnaireRepo) GetByID(_ context.Context, id string) (*model.Questionnaire, error) {
	return r.questionnaires[id], nil
}

func (r *stubQuestionnaireRepo) List(context.Context) ([]*model.Questionnaire, error) {
	var out []*model.Questionnaire
	for _, q := range r.questionnaires {
		out = append(out, q)
	}
	return out, nil
}

func (r *stubQuestionnaireRepo) Upsert(_ context.Context, q *model.Questionnaire) error {
	r.questionnaires[q.ID] = q
	return nil
}

func (r *stubQuestionnaireRepo) Delete(_ context.Context, id string) error {
	delete(r.questionnaires, id)
	return nil
}

type stubSessionRepo struct {
	mu      sync.Mutex
	states  map[string]*model.SessionState
	loadErr error
}

func repoKey(clientID, questionnaireID string) string {
	return clientID + "/" + questionnaireID
}

func (r *stubSessionRepo) Load(_ context.Context, clientID, questionnaireID string) (*model.SessionState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	return r.states[repoKey(clientID, questionnaireID)], nil
}

func (r *stubSessionRepo) Save(_ context.Context, state *model.SessionState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states[repoKey(state.ClientID, state.QuestionnaireID)] = state
	return nil
}

func (r *stubSessionRepo) Delete(_ context.Context, clientID, questionnaireID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.states, repoKey(clientID, questionnaireID))
	return nil
}

func (r *stubSessionRepo) saved(clientID, questionnaireID string) *model.SessionState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.states[repoKey(clientID, questionnaireID)]
}

type stubSessionCache struct {
	mu      sync.Mutex
	states  map[string]*model.SessionState
	deletes int
}

func (c *stubSessionCache) Set(_ context.Context, state *model.SessionState) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.states[repoKey(state.ClientID, state.QuestionnaireID)] = state
	return nil
}

func (c *stubSessionCache) Get(_ context.Context, clientID, questionnaireID string) (*model.SessionState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.states[repoKey(clientID, questionnaireID)], nil
}

func (c *stubSessionCache) Delete(_ context.Context, clientID, questionnaireID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.states, repoKey(clientID, questionnaireID))
	c.deletes++
	return nil
}

func (c *stubSessionCache) deleteCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deletes
}

func intakeQuestionnaire() *model.Questionnaire {
	return &model.Questionnaire{
		ID:    "discovery",
		Title: "Discovery",
		Modules: []model.Module{
			{
				ID:               "profile",
				Title:            "Profile",
				EstimatedMinutes: 5,
				Required:         true,
				Questions: []model.Question{
					{ID: "q1", Type: model.QuestionTypeText, Prompt: "Target role?", Required: true},
					{ID: "q2", Type: model.QuestionTypeTextarea, Prompt: "Anything else?"},
				},
			},
		},
	}
}

type fixture struct {
	svc   *SessionService
	repo  *stubSessionRepo
	cache *stubSessionCache
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	svc := NewSessionService(
		&stubQuestionnaireRepo{questionnaires: map[string]*model.Questionnaire{
			"discovery": intakeQuestionnaire(),
		}},
		&stubSessionRepo{states: make(map[string]*model.SessionState)},
		&stubSessionCache{states: make(map[string]*model.SessionState)},
	)
	t.Cleanup(svc.Shutdown)

	f := &fixture{svc: svc}
	f.repo = svc.sessionRepo.(*stubSessionRepo)
	f.cache = svc.sessionCache.(*stubSessionCache)
	return f
}

func TestViewUnknownQuestionnaire(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.View(context.Background(), "client-1", "nope")
	if !errors.Is(err, ErrQuestionnaireNotFound) {
		t.Fatalf("View = %v, want ErrQuestionnaireNotFound", err)
	}
}

func TestViewFreshSessionStartsAtIntro(t *testing.T) {
	f := newFixture(t)

	view, err := f.svc.View(context.Background(), "client-1", "discovery")
	if err != nil {
		t.Fatal(err)
	}
	if view.Phase != engine.PhaseIntro {
		t.Errorf("phase = %s, want intro", view.Phase)
	}
	if view.Stats.TotalQuestions != 2 || view.Stats.ModuleCount != 1 {
		t.Errorf("stats = %+v, want 2 questions in 1 module", view.Stats)
	}
	if !view.Sync.IsOnline {
		t.Error("a fresh session should report online")
	}
}

func TestOpenMergesPreferringMoreAnswers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cached := model.NewSessionState("client-1", "discovery")
	cached.Answers["q1"] = "from cache"
	f.cache.Set(ctx, cached)

	remote := model.NewSessionState("client-1", "discovery")
	remote.Answers["q1"] = "from store"
	remote.Answers["q2"] = "extra detail"
	f.repo.Save(ctx, remote)

	view, err := f.svc.View(ctx, "client-1", "discovery")
	if err != nil {
		t.Fatal(err)
	}
	if got := view.State.AnswerCount(); got != 2 {
		t.Fatalf("answers = %d, want the remote copy's 2", got)
	}
	if view.State.Answers["q1"] != "from store" {
		t.Errorf("q1 = %v, want the remote value", view.State.Answers["q1"])
	}
	if view.Phase != engine.PhaseActive {
		t.Errorf("phase = %s, want active (existing answers skip the intro)", view.Phase)
	}
}

func TestOpenFallsBackToCacheWhenRemoteFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cached := model.NewSessionState("client-1", "discovery")
	cached.Answers["q1"] = "offline answer"
	f.cache.Set(ctx, cached)
	f.repo.mu.Lock()
	f.repo.loadErr = errors.New("connection refused")
	f.repo.mu.Unlock()

	view, err := f.svc.View(ctx, "client-1", "discovery")
	if err != nil {
		t.Fatalf("View = %v, remote unavailability must not be fatal", err)
	}
	if got := view.State.AnswerCount(); got != 1 {
		t.Errorf("answers = %d, want the cached 1", got)
	}
}

func TestSubmitConfirmationGate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Submit(ctx, "client-1", "discovery", false); !errors.Is(err, ErrConfirmationRequired) {
		t.Fatalf("unconfirmed Submit = %v, want ErrConfirmationRequired", err)
	}
	if _, err := f.svc.Reset(ctx, "client-1", "discovery", false); !errors.Is(err, ErrConfirmationRequired) {
		t.Fatalf("unconfirmed Reset = %v, want ErrConfirmationRequired", err)
	}
}

func TestSubmitFlushesAndCompletesOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var completions int
	f.svc.SetOnComplete(func(clientID, questionnaireID string, answers map[string]model.AnswerValue) {
		completions++
	})

	f.svc.Begin(ctx, "client-1", "discovery")
	f.svc.Answer(ctx, "client-1", "discovery", "q1", "Senior Engineer")

	view, err := f.svc.Submit(ctx, "client-1", "discovery", true)
	if err != nil {
		t.Fatal(err)
	}
	if view.Phase != engine.PhaseSubmitted {
		t.Errorf("phase = %s, want submitted", view.Phase)
	}
	if completions != 1 {
		t.Errorf("completion hook fired %d times, want 1", completions)
	}

	saved := f.repo.saved("client-1", "discovery")
	if saved == nil || !saved.Completed {
		t.Error("submit must force-sync the completed state before acknowledging")
	}

	// Confirming submit again is harmless and never re-fires the hook.
	if _, err := f.svc.Submit(ctx, "client-1", "discovery", true); err != nil {
		t.Fatal(err)
	}
	if completions != 1 {
		t.Errorf("completion hook fired %d times after re-submit, want 1", completions)
	}
}

func TestResetClearsCacheAndSurvivesReload(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.svc.Begin(ctx, "client-1", "discovery")
	f.svc.Answer(ctx, "client-1", "discovery", "q1", "Senior Engineer")
	f.svc.ForceSync(ctx, "client-1", "discovery")

	view, err := f.svc.Reset(ctx, "client-1", "discovery", true)
	if err != nil {
		t.Fatal(err)
	}
	if view.Phase != engine.PhaseIntro {
		t.Errorf("phase = %s, want intro", view.Phase)
	}
	if f.cache.deleteCount() == 0 {
		t.Error("reset must clear the fallback cache")
	}

	// The emptied state was force-synced, so even an immediate process
	// restart (tab close) cannot resurrect old answers.
	saved := f.repo.saved("client-1", "discovery")
	if saved == nil || saved.AnswerCount() != 0 {
		t.Fatalf("remote state after reset = %+v, want empty", saved)
	}

	f.svc.Evict("client-1", "discovery")
	reloaded, err := f.svc.View(ctx, "client-1", "discovery")
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Phase != engine.PhaseIntro || reloaded.State.AnswerCount() != 0 {
		t.Errorf("reloaded phase=%s answers=%d, want a clean intro",
			reloaded.Phase, reloaded.State.AnswerCount())
	}
}

func TestAnswerRequiredGateOverService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.svc.Begin(ctx, "client-1", "discovery")
	if _, err := f.svc.Advance(ctx, "client-1", "discovery"); !errors.Is(err, engine.ErrAnswerRequired) {
		t.Fatalf("Advance = %v, want ErrAnswerRequired", err)
	}

	if _, err := f.svc.Answer(ctx, "client-1", "discovery", "q1", "Senior Engineer"); err != nil {
		t.Fatal(err)
	}
	view, err := f.svc.Advance(ctx, "client-1", "discovery")
	if err != nil {
		t.Fatal(err)
	}
	if view.CurrentQuestion == nil || view.CurrentQuestion.ID != "q2" {
		t.Errorf("current question = %+v, want q2", view.CurrentQuestion)
	}
}

func TestMergeStates(t *testing.T) {
	more := model.NewSessionState("c", "q")
	more.Answers["a"] = 1
	more.Answers["b"] = 2
	less := model.NewSessionState("c", "q")
	less.Answers["a"] = 1

	if got := mergeStates(less, more); got != more {
		t.Error("merge should prefer the copy with more answers")
	}
	if got := mergeStates(more, less); got != more {
		t.Error("merge should prefer the copy with more answers, either side")
	}
	if got := mergeStates(nil, less); got != less {
		t.Error("nil local yields remote")
	}
	if got := mergeStates(less, nil); got != less {
		t.Error("nil remote yields local")
	}

	// Equal answers: points break the tie.
	a := model.NewSessionState("c", "q")
	a.Answers["x"] = 1
	a.Points = 15
	b := model.NewSessionState("c", "q")
	b.Answers["x"] = 1
	b.Points = 5
	if got := mergeStates(a, b); got != a {
		t.Error("equal answers should prefer the higher point total")
	}

	// Equal answers and points: the further cursor wins.
	b.Points = 15
	b.QuestionIndex = 3
	if got := mergeStates(a, b); got != b {
		t.Error("equal answers and points should prefer the further cursor")
	}
}
