package session

import (
	"errors"
	"fmt"
	"maps"
	"math/rand/v2"
	"slices"
	"strconv"
	"time"

	"github.com/qmuntal/stateless"
	"github.com/traitview/traitview/internal/model"
)

type State string

const (
	StateLoading      State = "loading"
	StateActive       State = "active"
	StateSubmitting   State = "submitting"
	StateSubmitFailed State = "submit_failed"
	StateCompleted    State = "completed"
	StateUnavailable  State = "unavailable"
)

type trigger string

const (
	triggerOpen          trigger = "open"
	triggerFinished      trigger = "finished"
	triggerNoQuestions   trigger = "no_questions"
	triggerSubmit        trigger = "submit"
	triggerPersisted     trigger = "persisted"
	triggerPersistFailed trigger = "persist_failed"
)

type Direction string

const (
	Next     Direction = "next"
	Previous Direction = "previous"
)

var (
	ErrNotStarted       = errors.New("application has not been started")
	ErrNotActive        = errors.New("session is not accepting changes")
	ErrUnknownQuestion  = errors.New("question does not belong to this test")
	ErrAnswerRequired   = errors.New("an answer is required for this question")
	ErrInvalidAnswer    = errors.New("answer is not valid for this question")
	ErrInvalidDirection = errors.New("direction must be next or previous")
	ErrAlreadyCompleted = errors.New("session already completed")
	ErrSubmitInProgress = errors.New("submission already in progress")
)

// Session is one candidate's attempt at one test. It holds the answers in
// memory until submission and is not safe for concurrent use.
type Session struct {
	ApplicationID   uint
	CompanyID       uint
	TestTitle       string
	TestDescription string
	CandidateName   string
	CandidateEmail  string

	status           model.ApplicationStatus
	config           model.TestConfig
	questions        []model.Question
	answers          map[uint]string
	index            int
	startedAt        time.Time
	completedAt      *time.Time
	results          *model.Results
	alreadyCompleted bool
	deadlineFired    bool

	fsm *stateless.StateMachine
}

// New snapshots the application, its test and its questions. The
// application must have been loaded with Test.Questions and Candidate.
func New(app *model.Application) *Session {
	questions := slices.Clone(app.Test.Questions)
	slices.SortStableFunc(questions, func(a, b model.Question) int {
		return a.DisplayOrder - b.DisplayOrder
	})
	cfg := app.Test.Config.Data()
	if cfg.ShuffleQuestions {
		// Seeded by application so a reload keeps the same order.
		r := rand.New(rand.NewPCG(uint64(app.ID), uint64(app.TestID)))
		r.Shuffle(len(questions), func(i, j int) {
			questions[i], questions[j] = questions[j], questions[i]
		})
	}

	s := &Session{
		ApplicationID:   app.ID,
		CompanyID:       app.CompanyID,
		TestTitle:       app.Test.Title,
		TestDescription: app.Test.Description,
		CandidateName:   app.Candidate.Name,
		CandidateEmail:  app.Candidate.Email,
		status:          app.Status,
		config:          cfg,
		questions:       questions,
		answers:         make(map[uint]string),
		completedAt:     app.CompletedAt,
		results:         app.Results.Data(),
	}
	if app.StartedAt != nil {
		s.startedAt = *app.StartedAt
	}
	s.fsm = newStateMachine()
	return s
}

func newStateMachine() *stateless.StateMachine {
	sm := stateless.NewStateMachine(StateLoading)
	sm.Configure(StateLoading).
		Permit(triggerOpen, StateActive).
		Permit(triggerFinished, StateCompleted).
		Permit(triggerNoQuestions, StateUnavailable)
	sm.Configure(StateActive).
		Permit(triggerSubmit, StateSubmitting)
	sm.Configure(StateSubmitting).
		Permit(triggerPersisted, StateCompleted).
		Permit(triggerPersistFailed, StateSubmitFailed)
	sm.Configure(StateSubmitFailed).
		Permit(triggerSubmit, StateSubmitting).
		Permit(triggerPersisted, StateCompleted)
	sm.Configure(StateCompleted)
	sm.Configure(StateUnavailable)
	return sm
}

// Open leaves Loading. Completed applications and tests without questions
// end in their terminal states; anything else must already be started.
func (s *Session) Open() error {
	switch {
	case s.status == model.StatusCompleted:
		s.alreadyCompleted = true
		return s.fsm.Fire(triggerFinished)
	case len(s.questions) == 0:
		return s.fsm.Fire(triggerNoQuestions)
	case s.status != model.StatusInProgress || s.startedAt.IsZero():
		return ErrNotStarted
	}
	return s.fsm.Fire(triggerOpen)
}

func (s *Session) State() State {
	return s.fsm.MustState().(State)
}

func (s *Session) AlreadyCompleted() bool { return s.alreadyCompleted }

func (s *Session) Timed() bool { return s.config.TimeLimit() > 0 }

// Results returns the pending or persisted results, nil before submission.
func (s *Session) Results() *model.Results { return s.results }

// Remaining is derived from started_at so reloading never extends the
// budget. Untimed sessions always report zero.
func (s *Session) Remaining(now time.Time) time.Duration {
	limit := s.config.TimeLimit()
	if limit <= 0 {
		return 0
	}
	left := limit - now.Sub(s.startedAt)
	if left < 0 {
		return 0
	}
	return left
}

// Tick advances the countdown. It reports expired exactly once, the first
// time the deadline is observed while the session is active; the caller is
// then expected to submit.
func (s *Session) Tick(now time.Time) (time.Duration, bool) {
	if s.State() != StateActive || !s.Timed() {
		return s.Remaining(now), false
	}
	left := s.Remaining(now)
	if left > 0 || s.deadlineFired {
		return left, false
	}
	s.deadlineFired = true
	return 0, true
}

func (s *Session) question(id uint) (model.Question, bool) {
	for _, q := range s.questions {
		if q.ID == id {
			return q, true
		}
	}
	return model.Question{}, false
}

// RecordAnswer overwrites any previous answer for the question.
func (s *Session) RecordAnswer(questionID uint, value string) error {
	if s.State() != StateActive {
		return ErrNotActive
	}
	q, ok := s.question(questionID)
	if !ok {
		return ErrUnknownQuestion
	}
	if err := validateAnswer(q, value); err != nil {
		return err
	}
	s.answers[questionID] = value
	return nil
}

func validateAnswer(q model.Question, value string) error {
	if value == "" {
		if q.Kind.RequiresAnswer() {
			return ErrAnswerRequired
		}
		return nil
	}
	opts := q.Options.Data()
	switch q.Kind {
	case model.KindMultipleChoice:
		if len(opts.Choices) > 0 && !slices.Contains(opts.Choices, value) {
			return fmt.Errorf("%w: %q is not one of the choices", ErrInvalidAnswer, value)
		}
	case model.KindScale:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %q is not a number", ErrInvalidAnswer, value)
		}
		if (opts.Min != nil && n < *opts.Min) || (opts.Max != nil && n > *opts.Max) {
			return fmt.Errorf("%w: %d is out of range", ErrInvalidAnswer, n)
		}
	}
	return nil
}

// Navigate moves within [0, len-1]; moves past either end are no-ops.
// Next is refused while a question that requires an answer has none.
func (s *Session) Navigate(dir Direction) (int, error) {
	if s.State() != StateActive {
		return s.index, ErrNotActive
	}
	switch dir {
	case Previous:
		if s.index > 0 {
			s.index--
		}
	case Next:
		if s.index >= len(s.questions)-1 {
			return s.index, nil
		}
		current := s.questions[s.index]
		if current.Kind.RequiresAnswer() && s.answers[current.ID] == "" {
			return s.index, ErrAnswerRequired
		}
		s.index++
	default:
		return s.index, ErrInvalidDirection
	}
	return s.index, nil
}

// BeginSubmit freezes the results and moves to Submitting. After a failed
// write it returns the same results again so a retry only repeats the write.
func (s *Session) BeginSubmit(now time.Time) (model.Results, error) {
	switch s.State() {
	case StateCompleted:
		return s.resultsOrZero(), ErrAlreadyCompleted
	case StateSubmitting:
		return s.resultsOrZero(), ErrSubmitInProgress
	case StateActive:
		s.results = &model.Results{
			Answers:          maps.Clone(s.answers),
			Score:            ComputeScore(s.questions, s.answers),
			TimeSpentSeconds: s.timeSpent(now),
		}
	case StateSubmitFailed:
	default:
		return model.Results{}, ErrNotActive
	}
	if err := s.fsm.Fire(triggerSubmit); err != nil {
		return model.Results{}, err
	}
	return *s.results, nil
}

// CompleteSubmit records a successful write. stored replaces the local
// results when another writer completed the application first.
func (s *Session) CompleteSubmit(at time.Time, stored *model.Results) error {
	if err := s.fsm.Fire(triggerPersisted); err != nil {
		return err
	}
	s.completedAt = &at
	if stored != nil {
		s.results = stored
	}
	return nil
}

// FailSubmit keeps the frozen results for a retry.
func (s *Session) FailSubmit() error {
	return s.fsm.Fire(triggerPersistFailed)
}

func (s *Session) resultsOrZero() model.Results {
	if s.results == nil {
		return model.Results{}
	}
	return *s.results
}

func (s *Session) timeSpent(now time.Time) int {
	var spent time.Duration
	if s.Timed() {
		spent = s.config.TimeLimit() - s.Remaining(now)
	} else {
		spent = now.Sub(s.startedAt)
	}
	if spent < 0 {
		spent = 0
	}
	return int(spent.Round(time.Second) / time.Second)
}
