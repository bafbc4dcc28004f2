package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/traitview/traitview/internal/dto"
	"github.com/traitview/traitview/internal/model"
	"github.com/traitview/traitview/internal/repository"
)

type BatchService interface {
	Create(ctx context.Context, companyID uint, req dto.BatchCreateDTO) (*dto.BatchResponseDTO, error)
	List(ctx context.Context, companyID uint) (*dto.BatchListDTO, error)
	Update(ctx context.Context, companyID, id uint, req dto.BatchCreateDTO) (*dto.BatchResponseDTO, error)
	UpdateStatus(ctx context.Context, companyID, id uint, status string) error
	// Delete refuses batches that already sent applications.
	Delete(ctx context.Context, companyID, id uint) error
	// Send creates one pending application per candidate, all or none.
	Send(ctx context.Context, companyID, id uint, req dto.BatchSendDTO) ([]dto.ApplicationResponseDTO, error)
}

type batchService struct {
	batchRepo     repository.BatchRepository
	testRepo      repository.TestRepository
	questionRepo  repository.QuestionRepository
	candidateRepo repository.CandidateRepository
	appRepo       repository.ApplicationRepository
	links         LinkGenerator
	clock         clockwork.Clock
}

func NewBatchService(
	batchRepo repository.BatchRepository,
	testRepo repository.TestRepository,
	questionRepo repository.QuestionRepository,
	candidateRepo repository.CandidateRepository,
	appRepo repository.ApplicationRepository,
	links LinkGenerator,
	clock clockwork.Clock,
) BatchService {
	return &batchService{
		batchRepo:     batchRepo,
		testRepo:      testRepo,
		questionRepo:  questionRepo,
		candidateRepo: candidateRepo,
		appRepo:       appRepo,
		links:         links,
		clock:         clock,
	}
}

func (s *batchService) Create(ctx context.Context, companyID uint, req dto.BatchCreateDTO) (*dto.BatchResponseDTO, error) {
	test, err := sendableTest(ctx, s.testRepo, s.questionRepo, companyID, req.TestID)
	if err != nil {
		return nil, err
	}

	batch := model.Batch{
		CompanyID:      companyID,
		TestID:         test.ID,
		Name:           req.Name,
		Description:    req.Description,
		CandidateLimit: req.CandidateLimit,
		Status:         model.BatchActive,
	}
	if batch.ExpiresAt, err = s.parseExpiry(req.ExpiresAt); err != nil {
		return nil, err
	}

	if err := s.batchRepo.Create(ctx, &batch); err != nil {
		log.Error().Err(err).Uint("companyID", companyID).Msg("Failed to create batch")
		return nil, fmt.Errorf("error creating batch: %w", err)
	}
	log.Info().Uint("batchID", batch.ID).Uint("testID", test.ID).Msg("Batch created")

	batch.Test = *test
	return s.toResponse(&batch, 0), nil
}

func (s *batchService) List(ctx context.Context, companyID uint) (*dto.BatchListDTO, error) {
	batches, err := s.batchRepo.List(ctx, companyID)
	if err != nil {
		log.Error().Err(err).Uint("companyID", companyID).Msg("Failed to list batches")
		return nil, fmt.Errorf("error fetching batches: %w", err)
	}

	now := s.clock.Now()
	list := &dto.BatchListDTO{Batches: make([]dto.BatchResponseDTO, 0, len(batches)), Total: len(batches)}
	for i := range batches {
		b := &batches[i]
		sent, err := s.appRepo.CountByBatch(ctx, b.ID)
		if err != nil {
			log.Error().Err(err).Uint("batchID", b.ID).Msg("Failed to count batch applications")
			return nil, fmt.Errorf("error counting batch applications: %w", err)
		}
		resp := s.toResponse(b, sent)
		if b.Status == model.BatchActive && b.Expired(now) {
			resp.Status = string(model.BatchExpired)
		}
		switch model.BatchStatus(resp.Status) {
		case model.BatchActive:
			list.Active++
		case model.BatchInactive:
			list.Inactive++
		case model.BatchExpired:
			list.Expired++
		}
		list.Batches = append(list.Batches, *resp)
	}
	return list, nil
}

func (s *batchService) Update(ctx context.Context, companyID, id uint, req dto.BatchCreateDTO) (*dto.BatchResponseDTO, error) {
	batch, err := s.batchRepo.FindByID(ctx, companyID, id)
	if err != nil {
		return nil, notFoundOr(err, "error fetching batch")
	}
	sent, err := s.appRepo.CountByBatch(ctx, batch.ID)
	if err != nil {
		return nil, fmt.Errorf("error counting batch applications: %w", err)
	}

	if req.TestID != batch.TestID {
		if sent > 0 {
			return nil, fmt.Errorf("%w: batch %d already sent %d applications", ErrInUse, batch.ID, sent)
		}
		test, err := sendableTest(ctx, s.testRepo, s.questionRepo, companyID, req.TestID)
		if err != nil {
			return nil, err
		}
		batch.TestID = test.ID
		batch.Test = *test
	}
	if req.CandidateLimit != nil && int64(*req.CandidateLimit) < sent {
		return nil, fmt.Errorf("%w: limit %d is below the %d applications already sent", ErrInvalidInput, *req.CandidateLimit, sent)
	}
	if batch.ExpiresAt, err = s.parseExpiry(req.ExpiresAt); err != nil {
		return nil, err
	}
	batch.Name = req.Name
	batch.Description = req.Description
	batch.CandidateLimit = req.CandidateLimit

	if err := s.batchRepo.Update(ctx, batch); err != nil {
		return nil, notFoundOr(err, "error updating batch")
	}
	log.Info().Uint("batchID", batch.ID).Msg("Batch updated")
	return s.toResponse(batch, sent), nil
}

func (s *batchService) Delete(ctx context.Context, companyID, id uint) error {
	if _, err := s.batchRepo.FindByID(ctx, companyID, id); err != nil {
		return notFoundOr(err, "error fetching batch")
	}
	sent, err := s.appRepo.CountByBatch(ctx, id)
	if err != nil {
		return fmt.Errorf("error counting batch applications: %w", err)
	}
	if sent > 0 {
		return fmt.Errorf("%w: batch %d has %d applications", ErrInUse, id, sent)
	}
	if err := s.batchRepo.Delete(ctx, companyID, id); err != nil {
		return notFoundOr(err, "error deleting batch")
	}
	log.Info().Uint("batchID", id).Msg("Batch deleted")
	return nil
}

func (s *batchService) UpdateStatus(ctx context.Context, companyID, id uint, status string) error {
	next := model.BatchStatus(status)
	if !slices.Contains([]model.BatchStatus{model.BatchActive, model.BatchInactive, model.BatchExpired}, next) {
		return fmt.Errorf("%w: unknown batch status %q", ErrInvalidInput, status)
	}
	err := s.batchRepo.UpdateStatus(ctx, companyID, id, next)
	if err != nil {
		return notFoundOr(err, "error updating batch status")
	}
	log.Info().Uint("batchID", id).Str("status", status).Msg("Batch status updated")
	return nil
}

func (s *batchService) Send(ctx context.Context, companyID, id uint, req dto.BatchSendDTO) ([]dto.ApplicationResponseDTO, error) {
	batch, err := s.batchRepo.FindByID(ctx, companyID, id)
	if err != nil {
		return nil, notFoundOr(err, "error fetching batch")
	}
	if batch.Status != model.BatchActive || batch.Expired(s.clock.Now()) {
		return nil, ErrBatchClosed
	}
	if !batch.Test.Status.Sendable() {
		return nil, fmt.Errorf("%w: test %d is %s", ErrInvalidInput, batch.TestID, batch.Test.Status)
	}

	ids := slices.Compact(slices.Sorted(slices.Values(req.CandidateIDs)))
	candidates, err := s.candidateRepo.FindByIDs(ctx, companyID, ids)
	if err != nil {
		return nil, notFoundOr(err, "error fetching candidates")
	}
	if len(candidates) != len(ids) {
		return nil, fmt.Errorf("%w: some candidates do not exist", ErrNotFound)
	}

	if batch.CandidateLimit != nil {
		sent, err := s.appRepo.CountByBatch(ctx, batch.ID)
		if err != nil {
			return nil, fmt.Errorf("error counting batch applications: %w", err)
		}
		if sent+int64(len(candidates)) > int64(*batch.CandidateLimit) {
			return nil, fmt.Errorf("%w: %d sent, %d requested, limit %d", ErrBatchFull, sent, len(candidates), *batch.CandidateLimit)
		}
	}

	var apps []model.Application
	for attempt := 1; ; attempt++ {
		apps = make([]model.Application, 0, len(candidates))
		for _, c := range candidates {
			apps = append(apps, model.Application{
				CompanyID:   companyID,
				TestID:      batch.TestID,
				CandidateID: c.ID,
				BatchID:     &batch.ID,
				LinkToken:   s.links.NewToken(),
				Status:      model.StatusPending,
			})
		}
		err = s.appRepo.CreateMany(ctx, apps)
		if err == nil {
			break
		}
		if !errors.Is(err, repository.ErrDuplicate) || attempt == tokenAttempts {
			log.Error().Err(err).Uint("batchID", batch.ID).Msg("Failed to create batch applications")
			return nil, fmt.Errorf("error creating batch applications: %w", err)
		}
	}
	log.Info().Uint("batchID", batch.ID).Int("applications", len(apps)).Msg("Batch sent")

	resp := make([]dto.ApplicationResponseDTO, 0, len(apps))
	for i := range apps {
		resp = append(resp, dto.ApplicationResponseDTO{
			ID:             apps[i].ID,
			TestID:         apps[i].TestID,
			TestTitle:      batch.Test.Title,
			CandidateID:    candidates[i].ID,
			CandidateName:  candidates[i].Name,
			CandidateEmail: candidates[i].Email,
			BatchID:        apps[i].BatchID,
			Status:         string(apps[i].Status),
			LinkToken:      apps[i].LinkToken,
			Link:           s.links.URL(apps[i].LinkToken),
			CreatedAt:      apps[i].CreatedAt,
		})
	}
	return resp, nil
}

// parseExpiry reads an optional RFC 3339 expiry that must lie in the future.
func (s *batchService) parseExpiry(raw *string) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	expiresAt, err := time.Parse(time.RFC3339, *raw)
	if err != nil {
		return nil, fmt.Errorf("%w: expires_at: %v", ErrInvalidInput, err)
	}
	if !expiresAt.After(s.clock.Now()) {
		return nil, fmt.Errorf("%w: expires_at must be in the future", ErrInvalidInput)
	}
	return &expiresAt, nil
}

func (s *batchService) toResponse(b *model.Batch, sent int64) *dto.BatchResponseDTO {
	return &dto.BatchResponseDTO{
		ID:             b.ID,
		Name:           b.Name,
		Description:    b.Description,
		TestID:         b.TestID,
		TestTitle:      b.Test.Title,
		ExpiresAt:      b.ExpiresAt,
		CandidateLimit: b.CandidateLimit,
		Status:         string(b.Status),
		SentCount:      sent,
		CreatedAt:      b.CreatedAt,
	}
}
