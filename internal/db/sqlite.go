package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// NewSQLite открывает однофайловое хранилище по заданному пути.
// Для тестов можно передать ":memory:".
func NewSQLite(ctx context.Context, path string) (*sqlx.DB, error) {
	conn, err := sqlx.ConnectContext(ctx, "sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: не удалось открыть базу %s: %w", path, err)
	}

	// SQLite допускает только одного пишущего: сериализуем доступ
	// одним соединением, чтобы не ловить SQLITE_BUSY.
	conn.SetMaxOpenConns(1)

	return conn, nil
}

// CreateSchema идемпотентно создаёт все таблицы при старте процесса.
// Механизма миграций нет: изменение схемы не входит в зону ответственности сервиса.
func CreateSchema(ctx context.Context, conn *sqlx.DB) error {
	if _, err := conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("sqlite: не удалось создать схему: %w", err)
	}
	return nil
}

// Ссылки default_template -> templates.id и submissions.guild_id -> guilds.id
// сознательно оставлены рекомендательными, без внешних ключей:
// навешивание constraint'ов отвергало бы ранее принимаемые данные.
const schema = `
CREATE TABLE IF NOT EXISTS templates (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    guild_id TEXT NOT NULL,
    name TEXT NOT NULL,
    questions TEXT NOT NULL DEFAULT '[]',
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_templates_guild_id ON templates(guild_id);

CREATE TABLE IF NOT EXISTS submissions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    guild_id TEXT NOT NULL,
    user_id TEXT NOT NULL DEFAULT '',
    answers TEXT NOT NULL DEFAULT '{}',
    status TEXT NOT NULL DEFAULT 'pending',
    timestamp TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_submissions_guild_id ON submissions(guild_id);

CREATE TABLE IF NOT EXISTS guild_settings (
    guild_id TEXT PRIMARY KEY,
    auto_dm INTEGER NOT NULL DEFAULT 0,
    default_template INTEGER
);

CREATE TABLE IF NOT EXISTS guilds (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL DEFAULT '',
    icon TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS guild_members (
    guild_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    role TEXT NOT NULL DEFAULT 'member',
    PRIMARY KEY (guild_id, user_id)
);

CREATE INDEX IF NOT EXISTS idx_guild_members_user_id ON guild_members(user_id);

CREATE TABLE IF NOT EXISTS sessions (
    id TEXT PRIMARY KEY,
    principal TEXT NOT NULL,
    expires_at TEXT NOT NULL
);
`
