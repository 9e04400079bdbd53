package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/shadowmilk/guildforms/internal/models"
)

// ErrSubmissionNotFound возвращается, когда заявка не найдена.
var ErrSubmissionNotFound = errors.New("submission not found")

// SubmissionRepository отвечает за работу с таблицей submissions.
type SubmissionRepository struct {
	db *sqlx.DB
}

// NewSubmissionRepository создаёт экземпляр репозитория.
func NewSubmissionRepository(db *sqlx.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

type submissionRow struct {
	ID        int64  `db:"id"`
	GuildID   string `db:"guild_id"`
	UserID    string `db:"user_id"`
	Answers   string `db:"answers"`
	Status    string `db:"status"`
	Timestamp string `db:"timestamp"`
}

func (row *submissionRow) toModel() (*models.Submission, error) {
	var answers map[string]string
	if err := json.Unmarshal([]byte(row.Answers), &answers); err != nil {
		return nil, fmt.Errorf("submission repository: разбор ответов: %w", err)
	}

	ts, err := time.Parse(time.RFC3339Nano, row.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("submission repository: разбор timestamp: %w", err)
	}

	return &models.Submission{
		ID:        row.ID,
		GuildID:   row.GuildID,
		UserID:    row.UserID,
		Answers:   answers,
		Status:    row.Status,
		Timestamp: ts,
	}, nil
}

// Create вставляет новую заявку. Статус всегда pending, время назначает
// сервер — что бы ни пришло в переданной модели.
func (r *SubmissionRepository) Create(ctx context.Context, s *models.Submission) error {
	answers := s.Answers
	if answers == nil {
		answers = map[string]string{}
	}

	raw, err := json.Marshal(answers)
	if err != nil {
		return fmt.Errorf("submission repository: сериализация ответов: %w", err)
	}

	ts := time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO submissions (guild_id, user_id, answers, status, timestamp)
		VALUES (?, ?, ?, ?, ?)
	`, s.GuildID, s.UserID, string(raw), models.SubmissionStatusPending, ts.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("submission repository: create: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("submission repository: last insert id: %w", err)
	}

	s.ID = id
	s.Status = models.SubmissionStatusPending
	s.Timestamp = ts
	return nil
}

// ListByGuild возвращает все заявки гильдии без фильтра по статусу.
func (r *SubmissionRepository) ListByGuild(ctx context.Context, guildID string) ([]models.Submission, error) {
	var rows []submissionRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, guild_id, user_id, answers, status, timestamp
		FROM submissions
		WHERE guild_id = ?
		ORDER BY id
	`, guildID)
	if err != nil {
		return nil, fmt.Errorf("submission repository: list by guild: %w", err)
	}

	submissions := make([]models.Submission, 0, len(rows))
	for i := range rows {
		s, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		submissions = append(submissions, *s)
	}
	return submissions, nil
}
