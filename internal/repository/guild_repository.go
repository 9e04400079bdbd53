package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/shadowmilk/guildforms/internal/models"
)

// ErrMembershipNotFound возвращается, когда пользователь не состоит в гильдии.
var ErrMembershipNotFound = errors.New("membership not found")

// GuildRepository отвечает за таблицы guilds и guild_members.
type GuildRepository struct {
	db *sqlx.DB
}

// NewGuildRepository создаёт экземпляр репозитория.
func NewGuildRepository(db *sqlx.DB) *GuildRepository {
	return &GuildRepository{db: db}
}

// SyncMemberships заменяет членства пользователя на актуальный список из
// профиля OAuth. Гильдии при этом дозаписываются (имя и иконка обновляются).
func (r *GuildRepository) SyncMemberships(ctx context.Context, userID string, guilds []models.Guild, roles map[string]string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("guild repository: begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM guild_members WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("guild repository: очистка членств: %w", err)
	}

	for _, g := range guilds {
		if _, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO guilds (id, name, icon) VALUES (?, ?, ?)
		`, g.ID, g.Name, g.Icon); err != nil {
			return fmt.Errorf("guild repository: upsert гильдии %s: %w", g.ID, err)
		}

		role := roles[g.ID]
		if role == "" {
			role = models.MembershipRoleMember
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO guild_members (guild_id, user_id, role) VALUES (?, ?, ?)
		`, g.ID, userID, role); err != nil {
			return fmt.Errorf("guild repository: запись членства %s: %w", g.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("guild repository: commit: %w", err)
	}
	return nil
}

// GetRole возвращает роль пользователя в гильдии или ErrMembershipNotFound.
func (r *GuildRepository) GetRole(ctx context.Context, guildID, userID string) (string, error) {
	var role string
	err := r.db.GetContext(ctx, &role, `
		SELECT role FROM guild_members WHERE guild_id = ? AND user_id = ?
	`, guildID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrMembershipNotFound
	}
	if err != nil {
		return "", fmt.Errorf("guild repository: get role: %w", err)
	}
	return role, nil
}

// ListByUser возвращает гильдии, где пользователь имеет заданную роль.
func (r *GuildRepository) ListByUser(ctx context.Context, userID, role string) ([]models.Guild, error) {
	var guilds []models.Guild
	err := r.db.SelectContext(ctx, &guilds, `
		SELECT g.id, g.name, g.icon
		FROM guilds g
		JOIN guild_members m ON m.guild_id = g.id
		WHERE m.user_id = ? AND m.role = ?
		ORDER BY g.name
	`, userID, role)
	if err != nil {
		return nil, fmt.Errorf("guild repository: list by user: %w", err)
	}
	return guilds, nil
}
