package session

import (
	"time"

	"github.com/traitview/traitview/internal/model"
)

// View is what the candidate's screen renders for the current state.
type View struct {
	State            State
	AlreadyCompleted bool
	ApplicationID    uint
	TestTitle        string
	TestDescription  string
	CandidateName    string
	Index            int
	Total            int
	Answered         int
	Progress         int
	Question         *model.Question
	Answer           string
	RemainingSeconds *int
	Score            *int
	CompletedAt      *time.Time
}

func (s *Session) View(now time.Time) View {
	v := View{
		State:            s.State(),
		AlreadyCompleted: s.alreadyCompleted,
		ApplicationID:    s.ApplicationID,
		TestTitle:        s.TestTitle,
		TestDescription:  s.TestDescription,
		CandidateName:    s.CandidateName,
		Index:            s.index,
		Total:            len(s.questions),
	}
	for _, q := range s.questions {
		if s.answers[q.ID] != "" {
			v.Answered++
		}
	}

	switch v.State {
	case StateActive, StateSubmitting, StateSubmitFailed:
		q := s.questions[s.index]
		v.Question = &q
		v.Answer = s.answers[q.ID]
		v.Progress = (s.index + 1) * 100 / len(s.questions)
		if s.Timed() {
			secs := int(s.Remaining(now).Round(time.Second) / time.Second)
			v.RemainingSeconds = &secs
		}
	case StateCompleted:
		v.Progress = 100
		v.CompletedAt = s.completedAt
		if s.config.ShowResult && s.results != nil {
			score := s.results.Score
			v.Score = &score
		}
	}
	return v
}
