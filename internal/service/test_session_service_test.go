package service

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/traitview/traitview/config"
	"github.com/traitview/traitview/internal/model"
	"github.com/traitview/traitview/internal/session"
	"gorm.io/datatypes"
)

const sessionToken = "a1b2c3"

func sessionApp(status model.ApplicationStatus, cfg model.TestConfig) *model.Application {
	return &model.Application{
		ID:          1,
		CompanyID:   7,
		TestID:      3,
		CandidateID: 5,
		LinkToken:   sessionToken,
		Status:      status,
		Test: model.Test{
			ID:     3,
			Title:  "Perfil Comportamental",
			Config: datatypes.NewJSONType(cfg),
			Questions: []model.Question{
				{ID: 11, Kind: model.KindMultipleChoice, Prompt: "Em equipe eu...", Weight: 1, DisplayOrder: 1,
					Options: datatypes.NewJSONType(model.QuestionOptions{Choices: []string{"a", "b"}})},
				{ID: 12, Kind: model.KindFreeText, Prompt: "Descreva um conflito", Weight: 1, DisplayOrder: 2},
				{ID: 13, Kind: model.KindScale, Prompt: "Organização", Weight: 2, DisplayOrder: 3,
					Options: datatypes.NewJSONType(model.QuestionOptions{Min: intPtr(1), Max: intPtr(5)})},
			},
		},
		Candidate: model.Candidate{ID: 5, Name: "Ana Souza", Email: "ana@example.com"},
	}
}

type sessionFixture struct {
	svc      TestSessionService
	repo     *fakeApplicationRepo
	notifier *fakeNotifier
	clock    clockwork.FakeClock
}

func newSessionFixture(t *testing.T, apps ...*model.Application) *sessionFixture {
	t.Helper()
	f := &sessionFixture{
		repo:     newFakeApplicationRepo(apps...),
		notifier: &fakeNotifier{},
		clock:    clockwork.NewFakeClockAt(t0),
	}
	f.svc = NewTestSessionService(f.repo, f.notifier, f.clock, &config.Config{Session: config.Session{TickSeconds: 1}})
	t.Cleanup(f.svc.Shutdown)
	return f
}

func (f *sessionFixture) liveCount() int {
	svc := f.svc.(*testSessionService)
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return len(svc.live)
}

func TestResolveStartsPendingApplication(t *testing.T) {
	f := newSessionFixture(t, sessionApp(model.StatusPending, model.TestConfig{}))
	ctx := context.Background()

	view, err := f.svc.Resolve(ctx, sessionToken)
	require.NoError(t, err)
	assert.Equal(t, string(session.StateActive), view.State)
	assert.Equal(t, 3, view.Total)
	assert.Equal(t, 0, view.Index)
	require.NotNil(t, view.Question)
	assert.Equal(t, uint(11), view.Question.ID)
	assert.Equal(t, []string{"a", "b"}, view.Question.Choices)
	assert.Nil(t, view.RemainingSeconds)

	stored := f.repo.get(1)
	assert.Equal(t, model.StatusInProgress, stored.Status)
	require.NotNil(t, stored.StartedAt)
	assert.True(t, stored.StartedAt.Equal(t0))

	_, err = f.svc.Resolve(ctx, sessionToken)
	require.NoError(t, err)
	starts, _ := f.repo.calls()
	assert.Equal(t, 1, starts)
}

func TestResolveUnknownToken(t *testing.T) {
	f := newSessionFixture(t, sessionApp(model.StatusPending, model.TestConfig{}))

	_, err := f.svc.Resolve(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	starts, completes := f.repo.calls()
	assert.Zero(t, starts)
	assert.Zero(t, completes)
	assert.Equal(t, model.StatusPending, f.repo.get(1).Status)
}

func TestResolveCompletedApplicationIsNeverMutated(t *testing.T) {
	app := sessionApp(model.StatusCompleted, model.TestConfig{ShowResult: true})
	started, done := t0.Add(-time.Hour), t0.Add(-30*time.Minute)
	app.StartedAt, app.CompletedAt = &started, &done
	app.Results = datatypes.NewJSONType(&model.Results{Answers: map[uint]string{11: "a"}, Score: 25, TimeSpentSeconds: 1800})
	f := newSessionFixture(t, app)
	ctx := context.Background()

	view, err := f.svc.Resolve(ctx, sessionToken)
	require.NoError(t, err)
	assert.Equal(t, string(session.StateCompleted), view.State)
	assert.True(t, view.AlreadyCompleted)
	require.NotNil(t, view.Score)
	assert.Equal(t, 25, *view.Score)

	view, err = f.svc.Submit(ctx, sessionToken)
	require.NoError(t, err)
	assert.Equal(t, string(session.StateCompleted), view.State)

	_, err = f.svc.RecordAnswer(ctx, sessionToken, 11, "b")
	assert.ErrorIs(t, err, session.ErrNotActive)

	starts, completes := f.repo.calls()
	assert.Zero(t, starts)
	assert.Zero(t, completes)
	assert.Empty(t, f.notifier.sent())
	assert.Equal(t, 25, f.repo.get(1).Results.Data().Score)
}

func TestResolveTestWithoutQuestions(t *testing.T) {
	app := sessionApp(model.StatusPending, model.TestConfig{})
	app.Test.Questions = nil
	f := newSessionFixture(t, app)

	view, err := f.svc.Resolve(context.Background(), sessionToken)
	require.NoError(t, err)
	assert.Equal(t, string(session.StateUnavailable), view.State)
	assert.Nil(t, view.Question)

	starts, _ := f.repo.calls()
	assert.Zero(t, starts)
	assert.Equal(t, model.StatusPending, f.repo.get(1).Status)
}

func TestResolveAdoptsStartFromConcurrentResolver(t *testing.T) {
	f := newSessionFixture(t, sessionApp(model.StatusPending, model.TestConfig{TimeLimitMinutes: intPtr(10)}))
	elsewhere := t0.Add(-4 * time.Minute)
	f.repo.startedElsewhere = &elsewhere

	view, err := f.svc.Resolve(context.Background(), sessionToken)
	require.NoError(t, err)
	assert.Equal(t, string(session.StateActive), view.State)
	require.NotNil(t, view.RemainingSeconds)
	assert.Equal(t, 6*60, *view.RemainingSeconds)
	assert.True(t, f.repo.get(1).StartedAt.Equal(elsewhere))
}

func TestAnswerAndNavigate(t *testing.T) {
	f := newSessionFixture(t, sessionApp(model.StatusPending, model.TestConfig{}))
	ctx := context.Background()
	_, err := f.svc.Resolve(ctx, sessionToken)
	require.NoError(t, err)

	_, err = f.svc.Navigate(ctx, sessionToken, "next")
	assert.ErrorIs(t, err, session.ErrAnswerRequired)

	_, err = f.svc.RecordAnswer(ctx, sessionToken, 11, "z")
	assert.ErrorIs(t, err, session.ErrInvalidAnswer)

	_, err = f.svc.RecordAnswer(ctx, sessionToken, 99, "a")
	assert.ErrorIs(t, err, session.ErrUnknownQuestion)

	view, err := f.svc.RecordAnswer(ctx, sessionToken, 11, "a")
	require.NoError(t, err)
	assert.Equal(t, "a", view.Answer)
	assert.Equal(t, 1, view.Answered)

	view, err = f.svc.Navigate(ctx, sessionToken, "next")
	require.NoError(t, err)
	assert.Equal(t, 1, view.Index)

	// Free text never blocks moving on.
	view, err = f.svc.Navigate(ctx, sessionToken, "next")
	require.NoError(t, err)
	assert.Equal(t, 2, view.Index)

	_, err = f.svc.Navigate(ctx, sessionToken, "sideways")
	assert.ErrorIs(t, err, session.ErrInvalidDirection)

	view, err = f.svc.Navigate(ctx, sessionToken, "previous")
	require.NoError(t, err)
	assert.Equal(t, 1, view.Index)
}

func TestSubmitTwiceWritesOnce(t *testing.T) {
	f := newSessionFixture(t, sessionApp(model.StatusPending, model.TestConfig{ShowResult: true}))
	ctx := context.Background()
	_, err := f.svc.Resolve(ctx, sessionToken)
	require.NoError(t, err)

	_, err = f.svc.RecordAnswer(ctx, sessionToken, 11, "a")
	require.NoError(t, err)
	_, err = f.svc.RecordAnswer(ctx, sessionToken, 13, "4")
	require.NoError(t, err)
	f.clock.Advance(90 * time.Second)

	view, err := f.svc.Submit(ctx, sessionToken)
	require.NoError(t, err)
	assert.Equal(t, string(session.StateCompleted), view.State)
	require.NotNil(t, view.Score)
	assert.Equal(t, 75, *view.Score)

	view, err = f.svc.Submit(ctx, sessionToken)
	require.NoError(t, err)
	assert.Equal(t, string(session.StateCompleted), view.State)
	f.svc.Shutdown()

	_, completes := f.repo.calls()
	assert.Equal(t, 1, completes)

	stored := f.repo.get(1)
	assert.Equal(t, model.StatusCompleted, stored.Status)
	results := stored.Results.Data()
	require.NotNil(t, results)
	assert.Equal(t, 75, results.Score)
	assert.Equal(t, 90, results.TimeSpentSeconds)
	assert.Equal(t, map[uint]string{11: "a", 13: "4"}, results.Answers)

	notices := f.notifier.sent()
	require.Len(t, notices, 1)
	assert.Equal(t, CompletionNotice{
		ApplicationID:  1,
		CompanyID:      7,
		CandidateName:  "Ana Souza",
		CandidateEmail: "ana@example.com",
		TestTitle:      "Perfil Comportamental",
		Score:          75,
	}, notices[0])
}

func TestSubmitFailureCanBeRetried(t *testing.T) {
	f := newSessionFixture(t, sessionApp(model.StatusPending, model.TestConfig{}))
	f.repo.completeErrs = []error{errDatabaseDown}
	ctx := context.Background()
	_, err := f.svc.Resolve(ctx, sessionToken)
	require.NoError(t, err)
	_, err = f.svc.RecordAnswer(ctx, sessionToken, 11, "b")
	require.NoError(t, err)

	_, err = f.svc.Submit(ctx, sessionToken)
	assert.ErrorIs(t, err, ErrSubmit)
	assert.Equal(t, model.StatusInProgress, f.repo.get(1).Status)

	view, err := f.svc.Resolve(ctx, sessionToken)
	require.NoError(t, err)
	assert.Equal(t, string(session.StateSubmitFailed), view.State)

	_, err = f.svc.RecordAnswer(ctx, sessionToken, 13, "5")
	assert.ErrorIs(t, err, session.ErrNotActive)

	view, err = f.svc.Submit(ctx, sessionToken)
	require.NoError(t, err)
	assert.Equal(t, string(session.StateCompleted), view.State)
	f.svc.Shutdown()

	_, completes := f.repo.calls()
	assert.Equal(t, 2, completes)
	results := f.repo.get(1).Results.Data()
	require.NotNil(t, results)
	assert.Equal(t, 25, results.Score)
	assert.Len(t, f.notifier.sent(), 1)
}

func TestSubmitAfterCompletionElsewhereAdoptsStoredResults(t *testing.T) {
	f := newSessionFixture(t, sessionApp(model.StatusPending, model.TestConfig{ShowResult: true}))
	ctx := context.Background()
	_, err := f.svc.Resolve(ctx, sessionToken)
	require.NoError(t, err)

	// Another tab finishes first.
	require.NoError(t, f.repo.MarkCompleted(ctx, 1, t0, model.Results{Answers: map[uint]string{13: "2"}, Score: 50}))

	view, err := f.svc.Submit(ctx, sessionToken)
	require.NoError(t, err)
	assert.Equal(t, string(session.StateCompleted), view.State)
	require.NotNil(t, view.Score)
	assert.Equal(t, 50, *view.Score)
	f.svc.Shutdown()

	_, completes := f.repo.calls()
	assert.Equal(t, 2, completes)
	assert.Empty(t, f.notifier.sent())
}

func TestCountdownSubmitsOnceAtDeadline(t *testing.T) {
	f := newSessionFixture(t, sessionApp(model.StatusPending, model.TestConfig{TimeLimitMinutes: intPtr(1)}))
	ctx := context.Background()

	view, err := f.svc.Resolve(ctx, sessionToken)
	require.NoError(t, err)
	require.NotNil(t, view.RemainingSeconds)
	assert.Equal(t, 60, *view.RemainingSeconds)

	require.Eventually(t, func() bool {
		f.clock.Advance(10 * time.Second)
		_, completes := f.repo.calls()
		return completes == 1
	}, 2*time.Second, 5*time.Millisecond)

	f.clock.Advance(time.Minute)
	view, err = f.svc.Submit(ctx, sessionToken)
	require.NoError(t, err)
	assert.Equal(t, string(session.StateCompleted), view.State)
	f.svc.Shutdown()

	_, completes := f.repo.calls()
	assert.Equal(t, 1, completes)
	results := f.repo.get(1).Results.Data()
	require.NotNil(t, results)
	assert.Equal(t, 0, results.Score)
	assert.Equal(t, 60, results.TimeSpentSeconds)
	assert.Len(t, f.notifier.sent(), 1)
}

func TestDeadlinePassedBeforeLoadSubmitsImmediately(t *testing.T) {
	app := sessionApp(model.StatusInProgress, model.TestConfig{TimeLimitMinutes: intPtr(1)})
	started := t0.Add(-2 * time.Minute)
	app.StartedAt = &started
	f := newSessionFixture(t, app)

	view, err := f.svc.Resolve(context.Background(), sessionToken)
	require.NoError(t, err)
	assert.Equal(t, string(session.StateCompleted), view.State)
	assert.False(t, view.AlreadyCompleted)
	f.svc.Shutdown()

	results := f.repo.get(1).Results.Data()
	require.NotNil(t, results)
	assert.Equal(t, 60, results.TimeSpentSeconds)
	assert.Len(t, f.notifier.sent(), 1)
}

func TestTeardownStopsCountdownWithoutExtendingIt(t *testing.T) {
	f := newSessionFixture(t, sessionApp(model.StatusPending, model.TestConfig{TimeLimitMinutes: intPtr(1)}))
	ctx := context.Background()
	_, err := f.svc.Resolve(ctx, sessionToken)
	require.NoError(t, err)

	f.clock.Advance(40 * time.Second)
	f.svc.Teardown(sessionToken)

	assert.Never(t, func() bool {
		f.clock.Advance(10 * time.Second)
		_, completes := f.repo.calls()
		return completes > 0
	}, 100*time.Millisecond, 10*time.Millisecond)

	// Reloading after the deadline finds the time already spent.
	view, err := f.svc.Resolve(ctx, sessionToken)
	require.NoError(t, err)
	assert.Equal(t, string(session.StateCompleted), view.State)

	starts, completes := f.repo.calls()
	assert.Equal(t, 1, starts)
	assert.Equal(t, 1, completes)
}

func TestReloadKeepsRemainingTime(t *testing.T) {
	f := newSessionFixture(t, sessionApp(model.StatusPending, model.TestConfig{TimeLimitMinutes: intPtr(5)}))
	ctx := context.Background()
	_, err := f.svc.Resolve(ctx, sessionToken)
	require.NoError(t, err)

	f.svc.Teardown(sessionToken)
	f.clock.Advance(2 * time.Minute)

	view, err := f.svc.Resolve(ctx, sessionToken)
	require.NoError(t, err)
	require.NotNil(t, view.RemainingSeconds)
	assert.Equal(t, 3*60, *view.RemainingSeconds)
}

func TestSubmitAfterCompletionElsewhereKeepsStoredCompletionTime(t *testing.T) {
	f := newSessionFixture(t, sessionApp(model.StatusPending, model.TestConfig{}))
	ctx := context.Background()
	_, err := f.svc.Resolve(ctx, sessionToken)
	require.NoError(t, err)

	finishedElsewhere := t0.Add(time.Minute)
	require.NoError(t, f.repo.MarkCompleted(ctx, 1, finishedElsewhere, model.Results{Score: 0}))
	f.clock.Advance(5 * time.Minute)

	view, err := f.svc.Submit(ctx, sessionToken)
	require.NoError(t, err)
	require.NotNil(t, view.CompletedAt)
	assert.True(t, view.CompletedAt.Equal(finishedElsewhere))
}

func TestSubmitRecordsCompletionTime(t *testing.T) {
	f := newSessionFixture(t, sessionApp(model.StatusPending, model.TestConfig{}))
	ctx := context.Background()
	_, err := f.svc.Resolve(ctx, sessionToken)
	require.NoError(t, err)
	f.clock.Advance(2 * time.Minute)

	view, err := f.svc.Submit(ctx, sessionToken)
	require.NoError(t, err)
	require.NotNil(t, view.CompletedAt)
	assert.True(t, view.CompletedAt.Equal(t0.Add(2*time.Minute)))

	stored := f.repo.get(1)
	require.NotNil(t, stored.CompletedAt)
	assert.True(t, stored.CompletedAt.Equal(*view.CompletedAt))
}

func TestIdleUntimedSessionIsEvicted(t *testing.T) {
	const otherToken = "d4e5f6"
	other := sessionApp(model.StatusPending, model.TestConfig{})
	other.ID, other.LinkToken = 2, otherToken
	f := newSessionFixture(t, sessionApp(model.StatusPending, model.TestConfig{}), other)
	ctx := context.Background()

	_, err := f.svc.RecordAnswer(ctx, sessionToken, 11, "a")
	require.NoError(t, err)
	assert.Equal(t, 1, f.liveCount())

	// Regular use keeps the session, and its answers, alive.
	f.clock.Advance(20 * time.Minute)
	view, err := f.svc.Resolve(ctx, sessionToken)
	require.NoError(t, err)
	assert.Equal(t, "a", view.Answer)

	f.clock.Advance(20 * time.Minute)
	_, err = f.svc.Resolve(ctx, otherToken)
	require.NoError(t, err)
	assert.Equal(t, 2, f.liveCount())

	// Both go quiet; the next request sweeps them out.
	f.clock.Advance(31 * time.Minute)
	_, err = f.svc.Resolve(ctx, otherToken)
	require.NoError(t, err)
	assert.Equal(t, 1, f.liveCount())

	view, err = f.svc.Resolve(ctx, sessionToken)
	require.NoError(t, err)
	assert.Equal(t, string(session.StateActive), view.State)
	assert.Empty(t, view.Answer)
	assert.Equal(t, model.StatusInProgress, f.repo.get(1).Status)
}
