package service

import (
	"context"

	"github.com/shadowmilk/guildforms/internal/models"
)

// SubmissionRepository описывает зависимость сервиса от слоя хранилища.
type SubmissionRepository interface {
	Create(ctx context.Context, s *models.Submission) error
	ListByGuild(ctx context.Context, guildID string) ([]models.Submission, error)
}

// SubmissionService инкапсулирует приём и выдачу заявок.
type SubmissionService struct {
	repo SubmissionRepository
}

// NewSubmissionService создаёт сервис заявок.
func NewSubmissionService(repo SubmissionRepository) *SubmissionService {
	return &SubmissionService{repo: repo}
}

// Submit сохраняет заявку. Ответы пишутся как пришли, без сверки с
// вопросами анкеты; submitterID определяет вызывающая сторона из сессии
// или подписанного токена, полям тела запроса здесь не доверяют.
func (s *SubmissionService) Submit(ctx context.Context, guildID, submitterID string, answers map[string]string) (*models.Submission, error) {
	submission := &models.Submission{
		GuildID: guildID,
		UserID:  submitterID,
		Answers: answers,
	}
	if err := s.repo.Create(ctx, submission); err != nil {
		return nil, err
	}
	return submission, nil
}

// List возвращает все заявки гильдии, включая уже рассмотренные:
// фильтра по статусу нет.
func (s *SubmissionService) List(ctx context.Context, guildID string) ([]models.Submission, error) {
	return s.repo.ListByGuild(ctx, guildID)
}
