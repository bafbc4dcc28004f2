package service

import (
	"context"
	"errors"
	"fmt"
	"html"

	"github.com/rs/zerolog/log"
	"github.com/traitview/traitview/internal/dto"
	"github.com/traitview/traitview/internal/model"
	"github.com/traitview/traitview/internal/repository"
	"gorm.io/datatypes"
)

// CompletionNotice identifies a finished application for the company.
type CompletionNotice struct {
	ApplicationID  uint
	CompanyID      uint
	CandidateName  string
	CandidateEmail string
	TestTitle      string
	Score          int
}

type NotificationService interface {
	NotifyCompletion(ctx context.Context, notice CompletionNotice) error
	List(ctx context.Context, companyID uint) ([]dto.NotificationResponseDTO, error)
}

type notificationService struct {
	repo      repository.NotificationRepository
	messenger Messenger
}

func NewNotificationService(repo repository.NotificationRepository, messenger Messenger) NotificationService {
	return &notificationService{repo: repo, messenger: messenger}
}

// NotifyCompletion stores the in-app notification and then pushes the
// alert. Both are attempted; the joined error is for logging only.
func (s *notificationService) NotifyCompletion(ctx context.Context, notice CompletionNotice) error {
	log.Info().
		Uint("applicationID", notice.ApplicationID).
		Str("candidateEmail", notice.CandidateEmail).
		Str("testTitle", notice.TestTitle).
		Int("score", notice.Score).
		Msg("Sending test completion notification")

	n := &model.Notification{
		CompanyID: notice.CompanyID,
		Title:     fmt.Sprintf("Teste \"%s\" Concluído", notice.TestTitle),
		Message:   fmt.Sprintf("%s concluiu o teste \"%s\" com pontuação %d%%.", notice.CandidateName, notice.TestTitle, notice.Score),
		Type:      model.NotificationTestCompleted,
		Extra: datatypes.NewJSONType(model.NotificationExtra{
			ApplicationID: notice.ApplicationID,
			Score:         notice.Score,
			TestTitle:     notice.TestTitle,
		}),
	}

	var errs []error
	if err := s.repo.Create(ctx, n); err != nil {
		errs = append(errs, fmt.Errorf("store notification: %w", err))
	}

	text := fmt.Sprintf("✅ <b>%s</b>\n👤 %s (%s)\n📊 Pontuação: %d%%",
		html.EscapeString(n.Title),
		html.EscapeString(notice.CandidateName),
		html.EscapeString(notice.CandidateEmail),
		notice.Score,
	)
	if err := s.messenger.SendMessage(text); err != nil {
		errs = append(errs, fmt.Errorf("send telegram alert: %w", err))
	}
	return errors.Join(errs...)
}

func (s *notificationService) List(ctx context.Context, companyID uint) ([]dto.NotificationResponseDTO, error) {
	notifications, err := s.repo.ListByCompany(ctx, companyID, 50)
	if err != nil {
		log.Error().Err(err).Uint("companyID", companyID).Msg("Failed to list notifications")
		return nil, fmt.Errorf("error fetching notifications: %w", err)
	}
	resp := make([]dto.NotificationResponseDTO, 0, len(notifications))
	for _, n := range notifications {
		extra := n.Extra.Data()
		resp = append(resp, dto.NotificationResponseDTO{
			ID:            n.ID,
			Title:         n.Title,
			Message:       n.Message,
			Type:          n.Type,
			ApplicationID: extra.ApplicationID,
			Score:         extra.Score,
			Read:          n.Read,
			CreatedAt:     n.CreatedAt,
		})
	}
	return resp, nil
}
