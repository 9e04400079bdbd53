package service

import (
	"context"
	"errors"

	"github.com/shadowmilk/guildforms/internal/models"
	"github.com/shadowmilk/guildforms/internal/repository"
)

// SettingsRepository описывает зависимость сервиса от слоя хранилища.
type SettingsRepository interface {
	Get(ctx context.Context, guildID string) (*models.GuildSettings, error)
	Upsert(ctx context.Context, s *models.GuildSettings) error
}

// SettingsService инкапсулирует настройки гильдий.
type SettingsService struct {
	repo      SettingsRepository
	templates TemplateRepository
}

// NewSettingsService создаёт сервис настроек.
func NewSettingsService(repo SettingsRepository, templates TemplateRepository) *SettingsService {
	return &SettingsService{repo: repo, templates: templates}
}

// Get возвращает настройки гильдии и список её анкет для формы выбора.
// Отсутствие строки настроек не ошибка: отдаются значения по умолчанию.
// Два чтения независимы, атомарность между ними не гарантируется.
func (s *SettingsService) Get(ctx context.Context, guildID string) (*models.GuildSettings, []models.Template, error) {
	settings, err := s.repo.Get(ctx, guildID)
	if errors.Is(err, repository.ErrSettingsNotFound) {
		settings = models.DefaultGuildSettings(guildID)
	} else if err != nil {
		return nil, nil, err
	}

	templates, err := s.templates.ListByGuild(ctx, guildID)
	if err != nil {
		return nil, nil, err
	}
	return settings, templates, nil
}

// Update заменяет настройки гильдии целиком. Ссылка на анкету по умолчанию
// рекомендательная: существование анкеты не проверяется.
func (s *SettingsService) Update(ctx context.Context, guildID string, autoDM bool, defaultTemplate *int64) error {
	return s.repo.Upsert(ctx, &models.GuildSettings{
		GuildID:         guildID,
		AutoDM:          autoDM,
		DefaultTemplate: defaultTemplate,
	})
}
