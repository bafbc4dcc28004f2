package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/traitview/traitview/internal/dto"
	"github.com/traitview/traitview/internal/model"
	"github.com/traitview/traitview/internal/repository"
	"gorm.io/datatypes"
)

var t0 = time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)

func intPtr(v int) *int { return &v }

type fakeApplicationRepo struct {
	mu     sync.Mutex
	apps   map[uint]*model.Application
	nextID uint

	startCalls    int
	completeCalls int
	// completeErrs are returned, in order, by the next MarkCompleted calls.
	completeErrs []error
	// startedElsewhere makes MarkStarted lose the race to another resolver.
	startedElsewhere *time.Time
}

func newFakeApplicationRepo(apps ...*model.Application) *fakeApplicationRepo {
	r := &fakeApplicationRepo{apps: make(map[uint]*model.Application), nextID: 100}
	for _, app := range apps {
		r.apps[app.ID] = app
	}
	return r
}

func (r *fakeApplicationRepo) get(id uint) model.Application {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.apps[id]
}

func (r *fakeApplicationRepo) calls() (start, complete int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.startCalls, r.completeCalls
}

func (r *fakeApplicationRepo) tokenTaken(token string) bool {
	for _, app := range r.apps {
		if app.LinkToken == token {
			return true
		}
	}
	return false
}

func (r *fakeApplicationRepo) Create(ctx context.Context, app *model.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.tokenTaken(app.LinkToken) {
		return repository.ErrDuplicate
	}
	r.nextID++
	app.ID = r.nextID
	app.CreatedAt = t0
	stored := *app
	r.apps[app.ID] = &stored
	return nil
}

func (r *fakeApplicationRepo) CreateMany(ctx context.Context, apps []model.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[string]bool)
	for _, app := range apps {
		if r.tokenTaken(app.LinkToken) || seen[app.LinkToken] {
			return repository.ErrDuplicate
		}
		seen[app.LinkToken] = true
	}
	for i := range apps {
		r.nextID++
		apps[i].ID = r.nextID
		apps[i].CreatedAt = t0
		stored := apps[i]
		r.apps[stored.ID] = &stored
	}
	return nil
}

func (r *fakeApplicationRepo) FindByID(ctx context.Context, companyID, id uint) (*model.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.apps[id]
	if !ok || app.CompanyID != companyID {
		return nil, repository.ErrNotFound
	}
	c := *app
	return &c, nil
}

func (r *fakeApplicationRepo) FindByLinkToken(ctx context.Context, token string) (*model.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, app := range r.apps {
		if app.LinkToken == token {
			c := *app
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeApplicationRepo) MarkStarted(ctx context.Context, id uint, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.startCalls++
	app := r.apps[id]
	if r.startedElsewhere != nil && app.Status == model.StatusPending {
		app.Status = model.StatusInProgress
		app.StartedAt = r.startedElsewhere
	}
	if app.Status != model.StatusPending {
		return repository.ErrConflict
	}
	app.Status = model.StatusInProgress
	app.StartedAt = &at
	return nil
}

func (r *fakeApplicationRepo) MarkCompleted(ctx context.Context, id uint, at time.Time, results model.Results) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completeCalls++
	if len(r.completeErrs) > 0 {
		err := r.completeErrs[0]
		r.completeErrs = r.completeErrs[1:]
		if err != nil {
			return err
		}
	}
	app := r.apps[id]
	if app.Status == model.StatusCompleted {
		return repository.ErrConflict
	}
	app.Status = model.StatusCompleted
	app.CompletedAt = &at
	app.Results = datatypes.NewJSONType(&results)
	return nil
}

func (r *fakeApplicationRepo) List(ctx context.Context, filter repository.ApplicationFilter) ([]model.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Application
	for _, app := range r.apps {
		switch {
		case app.CompanyID != filter.CompanyID:
		case filter.Status != "" && app.Status != filter.Status:
		case filter.TestID != 0 && app.TestID != filter.TestID:
		case filter.BatchID != 0 && (app.BatchID == nil || *app.BatchID != filter.BatchID):
		case filter.From != nil && app.CreatedAt.Before(*filter.From):
		case filter.To != nil && app.CreatedAt.After(*filter.To):
		default:
			out = append(out, *app)
		}
	}
	return out, nil
}

func (r *fakeApplicationRepo) CountByStatus(ctx context.Context, companyID uint) (map[model.ApplicationStatus]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[model.ApplicationStatus]int64)
	for _, app := range r.apps {
		if app.CompanyID == companyID {
			counts[app.Status]++
		}
	}
	return counts, nil
}

func (r *fakeApplicationRepo) CountByBatch(ctx context.Context, batchID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, app := range r.apps {
		if app.BatchID != nil && *app.BatchID == batchID {
			n++
		}
	}
	return n, nil
}

func (r *fakeApplicationRepo) CountByTest(ctx context.Context, testID uint, statuses ...model.ApplicationStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, app := range r.apps {
		if app.TestID == testID && (len(statuses) == 0 || slices.Contains(statuses, app.Status)) {
			n++
		}
	}
	return n, nil
}

func (r *fakeApplicationRepo) CountByCandidate(ctx context.Context, candidateID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, app := range r.apps {
		if app.CandidateID == candidateID {
			n++
		}
	}
	return n, nil
}

type fakeNotifier struct {
	mu      sync.Mutex
	notices []CompletionNotice
}

func (n *fakeNotifier) NotifyCompletion(ctx context.Context, notice CompletionNotice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
	return nil
}

func (n *fakeNotifier) List(ctx context.Context, companyID uint) ([]dto.NotificationResponseDTO, error) {
	return nil, nil
}

func (n *fakeNotifier) sent() []CompletionNotice {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]CompletionNotice(nil), n.notices...)
}

type fakeTestRepo struct {
	tests map[uint]*model.Test
}

func (r *fakeTestRepo) Create(ctx context.Context, test *model.Test) error {
	test.ID = uint(len(r.tests) + 1)
	for i := range test.Questions {
		test.Questions[i].ID = uint(i + 1)
		test.Questions[i].TestID = test.ID
	}
	test.CreatedAt = t0
	c := *test
	r.tests[test.ID] = &c
	return nil
}

func (r *fakeTestRepo) FindByID(ctx context.Context, companyID, id uint) (*model.Test, error) {
	test, ok := r.tests[id]
	if !ok || test.CompanyID != companyID {
		return nil, repository.ErrNotFound
	}
	c := *test
	return &c, nil
}

func (r *fakeTestRepo) FindByIDWithQuestions(ctx context.Context, companyID, id uint) (*model.Test, error) {
	return r.FindByID(ctx, companyID, id)
}

func (r *fakeTestRepo) FindAllWithQuestionCount(ctx context.Context, companyID uint) ([]repository.TestWithQuestionCount, error) {
	var out []repository.TestWithQuestionCount
	for _, test := range r.tests {
		if test.CompanyID == companyID {
			out = append(out, repository.TestWithQuestionCount{Test: *test, QuestionCount: len(test.Questions)})
		}
	}
	return out, nil
}

func (r *fakeTestRepo) Update(ctx context.Context, test *model.Test) error {
	if _, err := r.FindByID(ctx, test.CompanyID, test.ID); err != nil {
		return err
	}
	for i := range test.Questions {
		test.Questions[i].ID = test.ID*100 + uint(i+1)
		test.Questions[i].TestID = test.ID
	}
	c := *test
	r.tests[test.ID] = &c
	return nil
}

func (r *fakeTestRepo) UpdateStatus(ctx context.Context, companyID, id uint, status model.TestStatus) error {
	test, ok := r.tests[id]
	if !ok || test.CompanyID != companyID {
		return repository.ErrNotFound
	}
	test.Status = status
	return nil
}

func (r *fakeTestRepo) Delete(ctx context.Context, companyID, id uint) error {
	if _, err := r.FindByID(ctx, companyID, id); err != nil {
		return err
	}
	delete(r.tests, id)
	return nil
}

func (r *fakeTestRepo) FindByTestID(ctx context.Context, testID uint) ([]model.Question, error) {
	if test, ok := r.tests[testID]; ok {
		return test.Questions, nil
	}
	return nil, nil
}

func (r *fakeTestRepo) CountByTestID(ctx context.Context, testID uint) (int64, error) {
	questions, _ := r.FindByTestID(ctx, testID)
	return int64(len(questions)), nil
}

type fakeCandidateRepo struct {
	candidates map[uint]*model.Candidate
}

func (r *fakeCandidateRepo) Create(ctx context.Context, candidate *model.Candidate) error {
	for _, c := range r.candidates {
		if c.CompanyID == candidate.CompanyID && c.Email == candidate.Email {
			return repository.ErrDuplicate
		}
	}
	candidate.ID = uint(len(r.candidates) + 1)
	c := *candidate
	r.candidates[c.ID] = &c
	return nil
}

func (r *fakeCandidateRepo) FindByID(ctx context.Context, companyID, id uint) (*model.Candidate, error) {
	c, ok := r.candidates[id]
	if !ok || c.CompanyID != companyID {
		return nil, repository.ErrNotFound
	}
	out := *c
	return &out, nil
}

func (r *fakeCandidateRepo) FindByIDs(ctx context.Context, companyID uint, ids []uint) ([]model.Candidate, error) {
	var out []model.Candidate
	for _, id := range ids {
		if c, err := r.FindByID(ctx, companyID, id); err == nil {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeCandidateRepo) List(ctx context.Context, companyID uint) ([]model.Candidate, error) {
	return r.FindByIDs(ctx, companyID, []uint{1, 2, 3, 4, 5})
}

func (r *fakeCandidateRepo) Update(ctx context.Context, candidate *model.Candidate) error {
	if _, err := r.FindByID(ctx, candidate.CompanyID, candidate.ID); err != nil {
		return err
	}
	for _, c := range r.candidates {
		if c.ID != candidate.ID && c.CompanyID == candidate.CompanyID && c.Email == candidate.Email {
			return repository.ErrDuplicate
		}
	}
	c := *candidate
	r.candidates[c.ID] = &c
	return nil
}

func (r *fakeCandidateRepo) UpdateStatus(ctx context.Context, companyID, id uint, status model.CandidateStatus) error {
	c, ok := r.candidates[id]
	if !ok || c.CompanyID != companyID {
		return repository.ErrNotFound
	}
	c.Status = status
	return nil
}

func (r *fakeCandidateRepo) Delete(ctx context.Context, companyID, id uint) error {
	if _, err := r.FindByID(ctx, companyID, id); err != nil {
		return err
	}
	delete(r.candidates, id)
	return nil
}

type fakeBatchRepo struct {
	batches map[uint]*model.Batch
}

func (r *fakeBatchRepo) Create(ctx context.Context, batch *model.Batch) error {
	batch.ID = uint(len(r.batches) + 1)
	c := *batch
	r.batches[c.ID] = &c
	return nil
}

func (r *fakeBatchRepo) FindByID(ctx context.Context, companyID, id uint) (*model.Batch, error) {
	b, ok := r.batches[id]
	if !ok || b.CompanyID != companyID {
		return nil, repository.ErrNotFound
	}
	c := *b
	return &c, nil
}

func (r *fakeBatchRepo) List(ctx context.Context, companyID uint) ([]model.Batch, error) {
	var out []model.Batch
	for id := uint(1); id <= uint(len(r.batches)); id++ {
		if b, ok := r.batches[id]; ok && b.CompanyID == companyID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeBatchRepo) UpdateStatus(ctx context.Context, companyID, id uint, status model.BatchStatus) error {
	b, ok := r.batches[id]
	if !ok || b.CompanyID != companyID {
		return repository.ErrNotFound
	}
	b.Status = status
	return nil
}

func (r *fakeBatchRepo) Update(ctx context.Context, batch *model.Batch) error {
	if _, err := r.FindByID(ctx, batch.CompanyID, batch.ID); err != nil {
		return err
	}
	c := *batch
	c.Test = model.Test{}
	r.batches[c.ID] = &c
	return nil
}

func (r *fakeBatchRepo) Delete(ctx context.Context, companyID, id uint) error {
	if _, err := r.FindByID(ctx, companyID, id); err != nil {
		return err
	}
	delete(r.batches, id)
	return nil
}

// sequenceLinks hands out tok-1, tok-2, ... and can be told to repeat.
type sequenceLinks struct {
	n      int
	repeat []string
}

func (l *sequenceLinks) NewToken() string {
	if len(l.repeat) > 0 {
		tok := l.repeat[0]
		l.repeat = l.repeat[1:]
		return tok
	}
	l.n++
	return fmt.Sprintf("tok-%d", l.n)
}

func (l *sequenceLinks) URL(token string) string {
	return "https://app.example.com/teste/" + token
}

var errDatabaseDown = errors.New("connection refused")
