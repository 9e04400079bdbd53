package models

import "time"

// Submission описывает одну заявку участника по анкете гильдии.
// Ответы хранятся как есть, без сверки с вопросами шаблона.
type Submission struct {
	ID        int64             `db:"id" json:"id"`
	GuildID   string            `db:"guild_id" json:"guild_id"`
	UserID    string            `db:"user_id" json:"user_id"`
	Answers   map[string]string `json:"answers"`
	Status    string            `db:"status" json:"status"`
	Timestamp time.Time         `db:"timestamp" json:"timestamp"`
}
