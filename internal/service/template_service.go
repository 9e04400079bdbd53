package service

import (
	"context"
	"strings"

	"github.com/shadowmilk/guildforms/internal/models"
)

// TemplateRepository описывает зависимость сервиса от слоя хранилища.
type TemplateRepository interface {
	Create(ctx context.Context, t *models.Template) error
	GetByID(ctx context.Context, id int64, guildID string) (*models.Template, error)
	ListByGuild(ctx context.Context, guildID string) ([]models.Template, error)
}

// TemplateService инкапсулирует работу с анкетами гильдий.
type TemplateService struct {
	repo TemplateRepository
}

// NewTemplateService создаёт сервис анкет.
func NewTemplateService(repo TemplateRepository) *TemplateService {
	return &TemplateService{repo: repo}
}

// SplitQuestions разбивает текст формы на упорядоченный список вопросов
// по переводам строк. Пустые строки сохраняются, пустой текст даёт
// пустой список: анкета без вопросов допустима.
func SplitQuestions(text string) []string {
	if text == "" {
		return []string{}
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// Create создаёт анкету из имени и сырого текста вопросов.
// Имя не валидируется: пустое имя принимается, как и раньше.
func (s *TemplateService) Create(ctx context.Context, guildID, name, questionsText string) (*models.Template, error) {
	template := &models.Template{
		GuildID:   guildID,
		Name:      name,
		Questions: SplitQuestions(questionsText),
	}
	if err := s.repo.Create(ctx, template); err != nil {
		return nil, err
	}
	return template, nil
}

// Get возвращает анкету по паре (id, guild_id).
func (s *TemplateService) Get(ctx context.Context, id int64, guildID string) (*models.Template, error) {
	return s.repo.GetByID(ctx, id, guildID)
}

// List возвращает все анкеты гильдии.
func (s *TemplateService) List(ctx context.Context, guildID string) ([]models.Template, error) {
	return s.repo.ListByGuild(ctx, guildID)
}
