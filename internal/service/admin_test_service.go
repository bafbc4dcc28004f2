package service

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"github.com/traitview/traitview/internal/dto"
	"github.com/traitview/traitview/internal/model"
	"github.com/traitview/traitview/internal/repository"
	"gorm.io/datatypes"
)

type AdminTestService interface {
	CreateTest(ctx context.Context, companyID uint, req dto.TestCreateDTO) (*dto.TestResponseDTO, error)
	GetTest(ctx context.Context, companyID, id uint) (*dto.TestResponseDTO, error)
	ListTests(ctx context.Context, companyID uint) ([]dto.TestSummaryDTO, error)
	// UpdateTest replaces the test fields and its question set. Tests that
	// a candidate has already started are refused with ErrInUse.
	UpdateTest(ctx context.Context, companyID, id uint, req dto.TestCreateDTO) (*dto.TestResponseDTO, error)
	UpdateStatus(ctx context.Context, companyID, id uint, status string) error
	// DeleteTest refuses tests that have applications.
	DeleteTest(ctx context.Context, companyID, id uint) error
}

type adminTestService struct {
	testRepo     repository.TestRepository
	questionRepo repository.QuestionRepository
	appRepo      repository.ApplicationRepository
}

func NewAdminTestService(
	testRepo repository.TestRepository,
	questionRepo repository.QuestionRepository,
	appRepo repository.ApplicationRepository,
) AdminTestService {
	return &adminTestService{testRepo: testRepo, questionRepo: questionRepo, appRepo: appRepo}
}

func (s *adminTestService) CreateTest(ctx context.Context, companyID uint, req dto.TestCreateDTO) (*dto.TestResponseDTO, error) {
	test, err := buildTest(companyID, req)
	if err != nil {
		return nil, err
	}
	if err := s.testRepo.Create(ctx, test); err != nil {
		log.Error().Err(err).Uint("companyID", companyID).Msg("Failed to create test in database")
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: %v", ErrDuplicate, err)
		}
		return nil, fmt.Errorf("database error creating test: %w", err)
	}
	log.Info().Uint("testID", test.ID).Int("questions", len(test.Questions)).Msg("Test created")

	created, err := s.testRepo.FindByIDWithQuestions(ctx, companyID, test.ID)
	if err != nil {
		log.Error().Err(err).Uint("testID", test.ID).Msg("Failed to retrieve newly created test, answering from input")
		return toTestResponse(test), nil
	}
	return toTestResponse(created), nil
}

// buildTest validates the request and maps it onto a new test.
func buildTest(companyID uint, req dto.TestCreateDTO) (*model.Test, error) {
	if len(req.Questions) == 0 {
		return nil, fmt.Errorf("%w: a test needs at least one question", ErrInvalidInput)
	}

	orderMap := make(map[int]bool)
	questions := make([]model.Question, 0, len(req.Questions))

	for _, qDto := range req.Questions {
		if orderMap[qDto.DisplayOrder] {
			return nil, fmt.Errorf("%w: duplicate display_order %d", ErrInvalidInput, qDto.DisplayOrder)
		}
		orderMap[qDto.DisplayOrder] = true

		weight := qDto.Weight
		if weight == 0 {
			weight = 1
		}
		question := model.Question{
			Prompt:        qDto.Prompt,
			Kind:          model.QuestionKind(qDto.Kind),
			CorrectOption: qDto.CorrectOption,
			Weight:        weight,
			DisplayOrder:  qDto.DisplayOrder,
			Options: datatypes.NewJSONType(model.QuestionOptions{
				Choices: qDto.Choices,
				Min:     qDto.ScaleMin,
				Max:     qDto.ScaleMax,
			}),
		}
		if err := question.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		questions = append(questions, question)
	}

	var cfg model.TestConfig
	copier.Copy(&cfg, &req.Config)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	status := model.TestActive
	if req.Status != "" {
		status = model.TestStatus(req.Status)
	}
	return &model.Test{
		CompanyID:   companyID,
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		Config:      datatypes.NewJSONType(cfg),
		Questions:   questions,
	}, nil
}

func (s *adminTestService) GetTest(ctx context.Context, companyID, id uint) (*dto.TestResponseDTO, error) {
	test, err := s.testRepo.FindByID(ctx, companyID, id)
	if err != nil {
		return nil, notFoundOr(err, "error fetching test")
	}
	test.Questions, err = s.questionRepo.FindByTestID(ctx, test.ID)
	if err != nil {
		log.Error().Err(err).Uint("testID", id).Msg("Failed to fetch questions")
		return nil, fmt.Errorf("error fetching questions: %w", err)
	}
	return toTestResponse(test), nil
}

func (s *adminTestService) ListTests(ctx context.Context, companyID uint) ([]dto.TestSummaryDTO, error) {
	tests, err := s.testRepo.FindAllWithQuestionCount(ctx, companyID)
	if err != nil {
		log.Error().Err(err).Uint("companyID", companyID).Msg("Failed to list tests")
		return nil, fmt.Errorf("error fetching tests: %w", err)
	}
	resp := make([]dto.TestSummaryDTO, 0, len(tests))
	for _, t := range tests {
		var summary dto.TestSummaryDTO
		copier.Copy(&summary, &t.Test)
		summary.QuestionCount = t.QuestionCount
		resp = append(resp, summary)
	}
	return resp, nil
}

func (s *adminTestService) UpdateTest(ctx context.Context, companyID, id uint, req dto.TestCreateDTO) (*dto.TestResponseDTO, error) {
	current, err := s.testRepo.FindByID(ctx, companyID, id)
	if err != nil {
		return nil, notFoundOr(err, "error fetching test")
	}
	test, err := buildTest(companyID, req)
	if err != nil {
		return nil, err
	}
	test.ID = current.ID
	test.CreatedAt = current.CreatedAt
	if req.Status == "" {
		test.Status = current.Status
	}

	started, err := s.appRepo.CountByTest(ctx, id, model.StatusInProgress, model.StatusCompleted)
	if err != nil {
		log.Error().Err(err).Uint("testID", id).Msg("Failed to count test applications")
		return nil, fmt.Errorf("error counting test applications: %w", err)
	}
	if started > 0 {
		return nil, fmt.Errorf("%w: %d applications already started", ErrInUse, started)
	}

	if err := s.testRepo.Update(ctx, test); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: %v", ErrDuplicate, err)
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Uint("testID", id).Msg("Failed to update test")
		return nil, fmt.Errorf("error updating test: %w", err)
	}
	log.Info().Uint("testID", id).Int("questions", len(test.Questions)).Msg("Test updated")

	updated, err := s.testRepo.FindByIDWithQuestions(ctx, companyID, id)
	if err != nil {
		log.Error().Err(err).Uint("testID", id).Msg("Failed to retrieve updated test, answering from input")
		return toTestResponse(test), nil
	}
	return toTestResponse(updated), nil
}

func (s *adminTestService) UpdateStatus(ctx context.Context, companyID, id uint, status string) error {
	next := model.TestStatus(status)
	if !slices.Contains([]model.TestStatus{model.TestDraft, model.TestActive, model.TestInactive}, next) {
		return fmt.Errorf("%w: unknown test status %q", ErrInvalidInput, status)
	}
	if err := s.testRepo.UpdateStatus(ctx, companyID, id, next); err != nil {
		return notFoundOr(err, "error updating test status")
	}
	log.Info().Uint("testID", id).Str("status", status).Msg("Test status updated")
	return nil
}

func (s *adminTestService) DeleteTest(ctx context.Context, companyID, id uint) error {
	if _, err := s.testRepo.FindByID(ctx, companyID, id); err != nil {
		return notFoundOr(err, "error fetching test")
	}
	sent, err := s.appRepo.CountByTest(ctx, id)
	if err != nil {
		log.Error().Err(err).Uint("testID", id).Msg("Failed to count test applications")
		return fmt.Errorf("error counting test applications: %w", err)
	}
	if sent > 0 {
		return fmt.Errorf("%w: test %d has %d applications", ErrInUse, id, sent)
	}

	err = s.testRepo.Delete(ctx, companyID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		log.Error().Err(err).Uint("testID", id).Msg("Failed to delete test")
		return fmt.Errorf("error deleting test: %w", err)
	}
	log.Info().Uint("testID", id).Msg("Test deleted")
	return nil
}

func toTestResponse(test *model.Test) *dto.TestResponseDTO {
	resp := &dto.TestResponseDTO{
		ID:          test.ID,
		Title:       test.Title,
		Description: test.Description,
		Status:      string(test.Status),
		CreatedAt:   test.CreatedAt,
	}
	copier.Copy(&resp.Config, test.Config.Data())
	for _, q := range test.Questions {
		opts := q.Options.Data()
		resp.Questions = append(resp.Questions, dto.QuestionResponseDTO{
			ID:            q.ID,
			TestID:        q.TestID,
			Prompt:        q.Prompt,
			Kind:          string(q.Kind),
			Choices:       opts.Choices,
			ScaleMin:      opts.Min,
			ScaleMax:      opts.Max,
			CorrectOption: q.CorrectOption,
			Weight:        q.Weight,
			DisplayOrder:  q.DisplayOrder,
		})
	}
	return resp
}
