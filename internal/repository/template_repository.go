package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/shadowmilk/guildforms/internal/models"
)

// ErrTemplateNotFound возвращается, когда анкета не найдена.
var ErrTemplateNotFound = errors.New("template not found")

// TemplateRepository отвечает за работу с таблицей templates.
type TemplateRepository struct {
	db *sqlx.DB
}

// NewTemplateRepository создаёт экземпляр репозитория.
func NewTemplateRepository(db *sqlx.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

// templateRow — строка таблицы: вопросы и время хранятся сериализованными.
type templateRow struct {
	ID        int64  `db:"id"`
	GuildID   string `db:"guild_id"`
	Name      string `db:"name"`
	Questions string `db:"questions"`
	CreatedAt string `db:"created_at"`
}

func (row *templateRow) toModel() (*models.Template, error) {
	var questions []string
	if err := json.Unmarshal([]byte(row.Questions), &questions); err != nil {
		return nil, fmt.Errorf("template repository: разбор вопросов: %w", err)
	}

	createdAt, err := time.Parse(time.RFC3339Nano, row.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("template repository: разбор created_at: %w", err)
	}

	return &models.Template{
		ID:        row.ID,
		GuildID:   row.GuildID,
		Name:      row.Name,
		Questions: questions,
		CreatedAt: createdAt,
	}, nil
}

// Create вставляет новую анкету и проставляет ID и CreatedAt.
func (r *TemplateRepository) Create(ctx context.Context, t *models.Template) error {
	questions := t.Questions
	if questions == nil {
		questions = []string{}
	}

	raw, err := json.Marshal(questions)
	if err != nil {
		return fmt.Errorf("template repository: сериализация вопросов: %w", err)
	}

	createdAt := time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO templates (guild_id, name, questions, created_at)
		VALUES (?, ?, ?, ?)
	`, t.GuildID, t.Name, string(raw), createdAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("template repository: create: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("template repository: last insert id: %w", err)
	}

	t.ID = id
	t.CreatedAt = createdAt
	return nil
}

// GetByID возвращает анкету по паре (id, guild_id) — так её ищет публичная
// страница подачи заявки.
func (r *TemplateRepository) GetByID(ctx context.Context, id int64, guildID string) (*models.Template, error) {
	var row templateRow
	err := r.db.GetContext(ctx, &row, `
		SELECT id, guild_id, name, questions, created_at
		FROM templates
		WHERE id = ? AND guild_id = ?
	`, id, guildID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTemplateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("template repository: get by id: %w", err)
	}

	return row.toModel()
}

// ListByGuild возвращает все анкеты гильдии в порядке создания.
func (r *TemplateRepository) ListByGuild(ctx context.Context, guildID string) ([]models.Template, error) {
	var rows []templateRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, guild_id, name, questions, created_at
		FROM templates
		WHERE guild_id = ?
		ORDER BY id
	`, guildID)
	if err != nil {
		return nil, fmt.Errorf("template repository: list by guild: %w", err)
	}

	templates := make([]models.Template, 0, len(rows))
	for i := range rows {
		t, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		templates = append(templates, *t)
	}
	return templates, nil
}
