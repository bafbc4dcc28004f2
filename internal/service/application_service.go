package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
	"github.com/traitview/traitview/internal/dto"
	"github.com/traitview/traitview/internal/model"
	"github.com/traitview/traitview/internal/repository"
)

const tokenAttempts = 3

type ApplicationService interface {
	Create(ctx context.Context, companyID uint, req dto.ApplicationCreateDTO) (*dto.ApplicationResponseDTO, error)
	Get(ctx context.Context, companyID, id uint) (*dto.ApplicationResponseDTO, error)
	List(ctx context.Context, companyID uint, query dto.ApplicationListQuery) ([]dto.ApplicationResponseDTO, error)
	Stats(ctx context.Context, companyID uint) (*dto.ApplicationStatsDTO, error)
}

type applicationService struct {
	appRepo       repository.ApplicationRepository
	testRepo      repository.TestRepository
	questionRepo  repository.QuestionRepository
	candidateRepo repository.CandidateRepository
	links         LinkGenerator
}

func NewApplicationService(
	appRepo repository.ApplicationRepository,
	testRepo repository.TestRepository,
	questionRepo repository.QuestionRepository,
	candidateRepo repository.CandidateRepository,
	links LinkGenerator,
) ApplicationService {
	return &applicationService{
		appRepo:       appRepo,
		testRepo:      testRepo,
		questionRepo:  questionRepo,
		candidateRepo: candidateRepo,
		links:         links,
	}
}

func (s *applicationService) Create(ctx context.Context, companyID uint, req dto.ApplicationCreateDTO) (*dto.ApplicationResponseDTO, error) {
	test, err := sendableTest(ctx, s.testRepo, s.questionRepo, companyID, req.TestID)
	if err != nil {
		return nil, err
	}
	candidate, err := s.candidateRepo.FindByID(ctx, companyID, req.CandidateID)
	if err != nil {
		return nil, notFoundOr(err, "error fetching candidate")
	}

	app := model.Application{
		CompanyID:   companyID,
		TestID:      test.ID,
		CandidateID: candidate.ID,
		Status:      model.StatusPending,
	}
	for attempt := 1; ; attempt++ {
		app.LinkToken = s.links.NewToken()
		err = s.appRepo.Create(ctx, &app)
		if err == nil {
			break
		}
		if !errors.Is(err, repository.ErrDuplicate) || attempt == tokenAttempts {
			log.Error().Err(err).Uint("testID", test.ID).Uint("candidateID", candidate.ID).Msg("Failed to create application")
			return nil, fmt.Errorf("error creating application: %w", err)
		}
		log.Warn().Int("attempt", attempt).Msg("Link token collision, generating a new one")
	}
	log.Info().Uint("applicationID", app.ID).Uint("testID", test.ID).Uint("candidateID", candidate.ID).Msg("Application created")

	app.Test = *test
	app.Candidate = *candidate
	resp := s.toResponse(&app)
	return &resp, nil
}

func (s *applicationService) Get(ctx context.Context, companyID, id uint) (*dto.ApplicationResponseDTO, error) {
	app, err := s.appRepo.FindByID(ctx, companyID, id)
	if err != nil {
		return nil, notFoundOr(err, "error fetching application")
	}
	resp := s.toResponse(app)
	return &resp, nil
}

func (s *applicationService) List(ctx context.Context, companyID uint, query dto.ApplicationListQuery) ([]dto.ApplicationResponseDTO, error) {
	apps, err := s.appRepo.List(ctx, repository.ApplicationFilter{
		CompanyID: companyID,
		Status:    model.ApplicationStatus(query.Status),
		TestID:    query.TestID,
	})
	if err != nil {
		log.Error().Err(err).Uint("companyID", companyID).Msg("Failed to list applications")
		return nil, fmt.Errorf("error fetching applications: %w", err)
	}
	resp := make([]dto.ApplicationResponseDTO, 0, len(apps))
	for i := range apps {
		resp = append(resp, s.toResponse(&apps[i]))
	}
	return resp, nil
}

func (s *applicationService) Stats(ctx context.Context, companyID uint) (*dto.ApplicationStatsDTO, error) {
	counts, err := s.appRepo.CountByStatus(ctx, companyID)
	if err != nil {
		log.Error().Err(err).Uint("companyID", companyID).Msg("Failed to count applications")
		return nil, fmt.Errorf("error counting applications: %w", err)
	}
	stats := &dto.ApplicationStatsDTO{
		Pending:    counts[model.StatusPending],
		InProgress: counts[model.StatusInProgress],
		Completed:  counts[model.StatusCompleted],
	}
	stats.Total = stats.Pending + stats.InProgress + stats.Completed
	stats.CompletionRate = percent(int(stats.Completed), int(stats.Total))
	return stats, nil
}

func (s *applicationService) toResponse(app *model.Application) dto.ApplicationResponseDTO {
	resp := dto.ApplicationResponseDTO{
		ID:             app.ID,
		TestID:         app.TestID,
		TestTitle:      app.Test.Title,
		CandidateID:    app.CandidateID,
		CandidateName:  app.Candidate.Name,
		CandidateEmail: app.Candidate.Email,
		BatchID:        app.BatchID,
		Status:         string(app.Status),
		LinkToken:      app.LinkToken,
		Link:           s.links.URL(app.LinkToken),
		StartedAt:      app.StartedAt,
		CompletedAt:    app.CompletedAt,
		CreatedAt:      app.CreatedAt,
	}
	if r := app.Results.Data(); r != nil {
		resp.Results = &dto.ResultsDTO{
			Answers:          r.Answers,
			Score:            r.Score,
			TimeSpentSeconds: r.TimeSpentSeconds,
		}
	}
	return resp
}

// sendableTest loads a test that candidates can actually take.
func sendableTest(ctx context.Context, tests repository.TestRepository, questions repository.QuestionRepository, companyID, id uint) (*model.Test, error) {
	test, err := tests.FindByID(ctx, companyID, id)
	if err != nil {
		return nil, notFoundOr(err, "error fetching test")
	}
	if !test.Status.Sendable() {
		return nil, fmt.Errorf("%w: test %d is %s", ErrInvalidInput, test.ID, test.Status)
	}
	count, err := questions.CountByTestID(ctx, test.ID)
	if err != nil {
		log.Error().Err(err).Uint("testID", test.ID).Msg("Failed to count questions")
		return nil, fmt.Errorf("error counting questions: %w", err)
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: test %d has no questions", ErrInvalidInput, test.ID)
	}
	return test, nil
}

// percent rounds part/total to a whole percentage, 0 when total is 0.
func percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(part) * 100 / float64(total)))
}

func notFoundOr(err error, msg string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	log.Error().Err(err).Msg(msg)
	return fmt.Errorf("%s: %w", msg, err)
}
