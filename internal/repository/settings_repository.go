package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/shadowmilk/guildforms/internal/models"
)

// ErrSettingsNotFound возвращается, когда у гильдии нет сохранённых настроек.
var ErrSettingsNotFound = errors.New("guild settings not found")

// SettingsRepository отвечает за работу с таблицей guild_settings.
type SettingsRepository struct {
	db *sqlx.DB
}

// NewSettingsRepository создаёт экземпляр репозитория.
func NewSettingsRepository(db *sqlx.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

type settingsRow struct {
	GuildID         string        `db:"guild_id"`
	AutoDM          int64         `db:"auto_dm"`
	DefaultTemplate sql.NullInt64 `db:"default_template"`
}

func (row *settingsRow) toModel() *models.GuildSettings {
	s := &models.GuildSettings{
		GuildID: row.GuildID,
		AutoDM:  row.AutoDM != 0,
	}
	if row.DefaultTemplate.Valid {
		v := row.DefaultTemplate.Int64
		s.DefaultTemplate = &v
	}
	return s
}

// Get возвращает настройки гильдии или ErrSettingsNotFound.
func (r *SettingsRepository) Get(ctx context.Context, guildID string) (*models.GuildSettings, error) {
	var row settingsRow
	err := r.db.GetContext(ctx, &row, `
		SELECT guild_id, auto_dm, default_template
		FROM guild_settings
		WHERE guild_id = ?
	`, guildID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSettingsNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("settings repository: get: %w", err)
	}

	return row.toModel(), nil
}

// Upsert заменяет строку настроек целиком (последняя запись выигрывает).
func (r *SettingsRepository) Upsert(ctx context.Context, s *models.GuildSettings) error {
	autoDM := 0
	if s.AutoDM {
		autoDM = 1
	}

	var defaultTemplate interface{}
	if s.DefaultTemplate != nil {
		defaultTemplate = *s.DefaultTemplate
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO guild_settings (guild_id, auto_dm, default_template)
		VALUES (?, ?, ?)
	`, s.GuildID, autoDM, defaultTemplate)
	if err != nil {
		return fmt.Errorf("settings repository: upsert: %w", err)
	}
	return nil
}
