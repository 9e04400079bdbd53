// Package session реализует серверные сессии: подписанный cookie несёт
// только идентификатор, сама личность лежит в подключаемом хранилище.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/shadowmilk/guildforms/internal/models"
)

// ErrSessionNotFound возвращается, когда сессии нет или она истекла.
var ErrSessionNotFound = errors.New("session not found")

// Store — явное хранилище сессий, внедряется в сервис авторизации.
// Memory-реализация используется в тестах, SQL — в production.
type Store interface {
	Get(ctx context.Context, id string) (*models.Principal, error)
	Put(ctx context.Context, id string, principal *models.Principal, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}
