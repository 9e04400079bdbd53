package models

import "time"

// Template описывает анкету с упорядоченным списком вопросов.
// Шаблон неизменяем после создания: маршрутов обновления и удаления нет.
type Template struct {
	ID        int64     `db:"id" json:"id"`
	GuildID   string    `db:"guild_id" json:"guild_id"`
	Name      string    `db:"name" json:"name"`
	Questions []string  `json:"questions"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
