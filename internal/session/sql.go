package session

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

// SQLStore хранит сессии в таблице sessions того же однофайлового хранилища.
type SQLStore struct {
	db *sqlx.DB
}

// NewSQLStore создаёт хранилище поверх существующего подключения.
func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

type sessionRow struct {
	ID        string `db:"id"`
	Principal string `db:"principal"`
	ExpiresAt string `db:"expires_at"`
}

// Get возвращает личность по идентификатору сессии.
func (s *SQLStore) Get(ctx context.Context, id string) (*models.Principal, error) {
	var row sessionRow
	err := s.db.GetContext(ctx, &row, `
		SELECT id, principal, expires_at FROM sessions WHERE id = ?
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session store: get: %w", err)
	}

	expiresAt, err := time.Parse(time.RFC3339Nano, row.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("session store: разбор expires_at: %w", err)
	}
	if time.Now().After(expiresAt) {
		// Ленивая очистка: истёкшая строка удаляется при первом чтении.
		_, _ = s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
		return nil, ErrSessionNotFound
	}

	var principal models.Principal
	if err := json.Unmarshal([]byte(row.Principal), &principal); err != nil {
		return nil, fmt.Errorf("session store: разбор principal: %w", err)
	}
	return &principal, nil
}

// Put сохраняет личность на время ttl.
func (s *SQLStore) Put(ctx context.Context, id string, principal *models.Principal, ttl time.Duration) error {
	raw, err := json.Marshal(principal)
	if err != nil {
		return fmt.Errorf("session store: сериализация principal: %w", err)
	}

	expiresAt := time.Now().Add(ttl).UTC().Format(time.RFC3339Nano)
	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO sessions (id, principal, expires_at) VALUES (?, ?, ?)
	`, id, string(raw), expiresAt)
	if err != nil {
		return fmt.Errorf("session store: put: %w", err)
	}
	return nil
}

// Delete удаляет сессию.
func (s *SQLStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("session store: delete: %w", err)
	}
	return nil
}
