package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/traitview/traitview/config"
	"github.com/traitview/traitview/internal/dto"
	"github.com/traitview/traitview/internal/model"
	"github.com/traitview/traitview/internal/repository"
	"github.com/traitview/traitview/internal/session"
)

const writeTimeout = 10 * time.Second

// TestSessionService drives candidates through their tests by link token.
// Active sessions live in memory, one per token, each with its own countdown.
type TestSessionService interface {
	Resolve(ctx context.Context, token string) (*dto.SessionResponse, error)
	RecordAnswer(ctx context.Context, token string, questionID uint, value string) (*dto.SessionResponse, error)
	Navigate(ctx context.Context, token string, direction string) (*dto.SessionResponse, error)
	Submit(ctx context.Context, token string) (*dto.SessionResponse, error)
	Teardown(token string)
	Shutdown()
}

type liveSession struct {
	mu     sync.Mutex
	token  string
	sess   *session.Session
	cancel context.CancelFunc
	// lastSeen is unix nanoseconds of the latest request for this token.
	lastSeen atomic.Int64
}

type testSessionService struct {
	appRepo  repository.ApplicationRepository
	notifier NotificationService
	clock    clockwork.Clock
	interval time.Duration
	idle     time.Duration

	mu        sync.Mutex
	live      map[string]*liveSession
	lastSweep time.Time

	baseCtx context.Context
	stop    context.CancelFunc
	wg      sync.WaitGroup
}

func NewTestSessionService(
	appRepo repository.ApplicationRepository,
	notifier NotificationService,
	clock clockwork.Clock,
	cfg *config.Config,
) TestSessionService {
	interval := time.Duration(cfg.Session.TickSeconds) * time.Second
	if interval <= 0 {
		interval = time.Second
	}
	idle := time.Duration(cfg.Session.IdleMinutes) * time.Minute
	if idle <= 0 {
		idle = 30 * time.Minute
	}
	ctx, stop := context.WithCancel(context.Background())
	return &testSessionService{
		appRepo:   appRepo,
		notifier:  notifier,
		clock:     clock,
		interval:  interval,
		idle:      idle,
		live:      make(map[string]*liveSession),
		lastSweep: clock.Now(),
		baseCtx:   ctx,
		stop:      stop,
	}
}

func (s *testSessionService) now() time.Time {
	return s.clock.Now().UTC()
}

func (s *testSessionService) Resolve(ctx context.Context, token string) (*dto.SessionResponse, error) {
	ls, err := s.acquire(ctx, token)
	if err != nil {
		return nil, err
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()

	s.checkDeadline(ctx, ls)
	return s.render(ls), nil
}

func (s *testSessionService) RecordAnswer(ctx context.Context, token string, questionID uint, value string) (*dto.SessionResponse, error) {
	ls, err := s.acquire(ctx, token)
	if err != nil {
		return nil, err
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()

	s.checkDeadline(ctx, ls)
	if err := ls.sess.RecordAnswer(questionID, value); err != nil {
		return nil, err
	}
	return s.render(ls), nil
}

func (s *testSessionService) Navigate(ctx context.Context, token string, direction string) (*dto.SessionResponse, error) {
	ls, err := s.acquire(ctx, token)
	if err != nil {
		return nil, err
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()

	s.checkDeadline(ctx, ls)
	if _, err := ls.sess.Navigate(session.Direction(direction)); err != nil {
		return nil, err
	}
	return s.render(ls), nil
}

func (s *testSessionService) Submit(ctx context.Context, token string) (*dto.SessionResponse, error) {
	ls, err := s.acquire(ctx, token)
	if err != nil {
		return nil, err
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()

	if err := s.submitLocked(ctx, ls); err != nil {
		return nil, err
	}
	return s.render(ls), nil
}

// Teardown stops the countdown and forgets the in-memory answers.
func (s *testSessionService) Teardown(token string) {
	s.mu.Lock()
	ls, ok := s.live[token]
	delete(s.live, token)
	s.mu.Unlock()

	if ok && ls.cancel != nil {
		ls.cancel()
		log.Info().Str("linkToken", token).Msg("Session torn down")
	}
}

// Shutdown stops every countdown and waits for pending notifications.
func (s *testSessionService) Shutdown() {
	s.stop()
	s.mu.Lock()
	clear(s.live)
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *testSessionService) acquire(ctx context.Context, token string) (*liveSession, error) {
	now := s.clock.Now()
	s.mu.Lock()
	s.evictIdleLocked(now)
	ls, ok := s.live[token]
	s.mu.Unlock()
	if ok {
		ls.lastSeen.Store(now.UnixNano())
		return ls, nil
	}

	sess, err := s.load(ctx, token)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.live[token]; ok {
		return existing, nil
	}
	ls = &liveSession{token: token, sess: sess}
	ls.lastSeen.Store(now.UnixNano())
	if sess.State() == session.StateActive {
		s.live[token] = ls
		if sess.Timed() {
			s.startTimer(ls)
		}
	}
	return ls, nil
}

// evictIdleLocked drops untimed sessions nobody has touched for s.idle.
// Their answers were never persisted; a later request reloads the
// application. Timed sessions end through their countdown instead. Callers
// hold s.mu.
func (s *testSessionService) evictIdleLocked(now time.Time) {
	if now.Sub(s.lastSweep) < s.idle/2 {
		return
	}
	s.lastSweep = now
	cutoff := now.Add(-s.idle).UnixNano()
	for token, ls := range s.live {
		if ls.cancel != nil || ls.lastSeen.Load() > cutoff {
			continue
		}
		delete(s.live, token)
		log.Info().Str("linkToken", token).Msg("Idle session evicted")
	}
}

// load resolves the token and performs the pending -> in_progress
// transition. Losing that race to another resolver is not an error: the
// record is re-read and used as is.
func (s *testSessionService) load(ctx context.Context, token string) (*session.Session, error) {
	app, err := s.appRepo.FindByLinkToken(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		log.Info().Str("linkToken", token).Msg("Unknown test link")
		return nil, ErrNotFound
	}
	if err != nil {
		log.Error().Err(err).Str("linkToken", token).Msg("Failed to resolve test link")
		return nil, fmt.Errorf("error resolving test link: %w", err)
	}

	if app.Status == model.StatusPending && len(app.Test.Questions) > 0 {
		startedAt := s.now()
		err := s.appRepo.MarkStarted(ctx, app.ID, startedAt)
		switch {
		case err == nil:
			app.Status = model.StatusInProgress
			app.StartedAt = &startedAt
			log.Info().Uint("applicationID", app.ID).Msg("Test session started")
		case errors.Is(err, repository.ErrConflict):
			log.Info().Uint("applicationID", app.ID).Msg("Session already started elsewhere, re-reading")
			app, err = s.appRepo.FindByLinkToken(ctx, token)
			if err != nil {
				return nil, fmt.Errorf("error re-reading application: %w", err)
			}
		default:
			log.Error().Err(err).Uint("applicationID", app.ID).Msg("Failed to start test session")
			return nil, fmt.Errorf("error starting test session: %w", err)
		}
	}

	sess := session.New(app)
	if err := sess.Open(); err != nil {
		log.Error().Err(err).Uint("applicationID", app.ID).Str("status", string(app.Status)).Msg("Failed to open session")
		return nil, fmt.Errorf("error opening session: %w", err)
	}
	return sess, nil
}

// checkDeadline submits on behalf of the candidate once time is up. Callers
// hold ls.mu.
func (s *testSessionService) checkDeadline(ctx context.Context, ls *liveSession) {
	if _, expired := ls.sess.Tick(s.now()); !expired {
		return
	}
	log.Info().Uint("applicationID", ls.sess.ApplicationID).Msg("Time limit reached, submitting")
	if err := s.submitLocked(ctx, ls); err != nil {
		log.Warn().Err(err).Uint("applicationID", ls.sess.ApplicationID).Msg("Automatic submission failed")
	}
}

// submitLocked performs the guarded completion write. Callers hold ls.mu.
func (s *testSessionService) submitLocked(parent context.Context, ls *liveSession) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), writeTimeout)
	defer cancel()

	now := s.now()
	results, err := ls.sess.BeginSubmit(now)
	if errors.Is(err, session.ErrAlreadyCompleted) {
		return nil
	}
	if err != nil {
		return err
	}

	err = s.appRepo.MarkCompleted(ctx, ls.sess.ApplicationID, now, results)
	switch {
	case err == nil:
		if err := ls.sess.CompleteSubmit(now, nil); err != nil {
			return err
		}
		log.Info().Uint("applicationID", ls.sess.ApplicationID).Int("score", results.Score).Int("timeSpentSeconds", results.TimeSpentSeconds).Msg("Test submitted")
		s.finish(ls)
		s.notifyAsync(ls.sess, results.Score)
		return nil

	case errors.Is(err, repository.ErrConflict):
		log.Info().Uint("applicationID", ls.sess.ApplicationID).Msg("Application was completed elsewhere")
		var stored *model.Results
		completedAt := now
		if app, rerr := s.appRepo.FindByLinkToken(ctx, ls.token); rerr == nil {
			stored = app.Results.Data()
			if app.CompletedAt != nil {
				completedAt = *app.CompletedAt
			}
		} else {
			log.Warn().Err(rerr).Uint("applicationID", ls.sess.ApplicationID).Msg("Failed to re-read completed application")
		}
		if err := ls.sess.CompleteSubmit(completedAt, stored); err != nil {
			return err
		}
		s.finish(ls)
		return nil

	default:
		log.Error().Err(err).Uint("applicationID", ls.sess.ApplicationID).Msg("Failed to persist submission")
		if ferr := ls.sess.FailSubmit(); ferr != nil {
			return ferr
		}
		return fmt.Errorf("%w: %v", ErrSubmit, err)
	}
}

// finish stops the countdown and drops the session from memory.
func (s *testSessionService) finish(ls *liveSession) {
	if ls.cancel != nil {
		ls.cancel()
	}
	s.mu.Lock()
	if s.live[ls.token] == ls {
		delete(s.live, ls.token)
	}
	s.mu.Unlock()
}

func (s *testSessionService) notifyAsync(sess *session.Session, score int) {
	notice := CompletionNotice{
		ApplicationID:  sess.ApplicationID,
		CompanyID:      sess.CompanyID,
		CandidateName:  sess.CandidateName,
		CandidateEmail: sess.CandidateEmail,
		TestTitle:      sess.TestTitle,
		Score:          score,
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.notifier.NotifyCompletion(ctx, notice); err != nil {
			log.Warn().Err(err).Uint("applicationID", notice.ApplicationID).Msg("Completion notification failed")
		}
	}()
}

// startTimer is called with s.mu held.
func (s *testSessionService) startTimer(ls *liveSession) {
	ctx, cancel := context.WithCancel(s.baseCtx)
	ls.cancel = cancel
	s.wg.Add(1)
	go s.runTimer(ctx, ls)
}

func (s *testSessionService) runTimer(ctx context.Context, ls *liveSession) {
	defer s.wg.Done()
	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			if !s.onTick(ctx, ls) {
				return
			}
		}
	}
}

// onTick reports whether the countdown should keep running.
func (s *testSessionService) onTick(ctx context.Context, ls *liveSession) bool {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	if ctx.Err() != nil {
		return false
	}
	s.checkDeadline(ctx, ls)
	return ls.sess.State() == session.StateActive
}

func (s *testSessionService) render(ls *liveSession) *dto.SessionResponse {
	v := ls.sess.View(s.now())
	resp := &dto.SessionResponse{
		State:            string(v.State),
		AlreadyCompleted: v.AlreadyCompleted,
		TestTitle:        v.TestTitle,
		TestDescription:  v.TestDescription,
		CandidateName:    v.CandidateName,
		Index:            v.Index,
		Total:            v.Total,
		Answered:         v.Answered,
		Progress:         v.Progress,
		Answer:           v.Answer,
		RemainingSeconds: v.RemainingSeconds,
		Score:            v.Score,
		CompletedAt:      v.CompletedAt,
	}
	if v.Question != nil {
		opts := v.Question.Options.Data()
		resp.Question = &dto.SessionQuestionDTO{
			ID:       v.Question.ID,
			Prompt:   v.Question.Prompt,
			Kind:     string(v.Question.Kind),
			Choices:  opts.Choices,
			ScaleMin: opts.Min,
			ScaleMax: opts.Max,
		}
	}
	return resp
}
