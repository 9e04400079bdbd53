package models

// GuildSettings хранит настройки гильдии: одна строка на guild_id.
// DefaultTemplate — рекомендательная ссылка на Template.ID, внешний ключ
// намеренно не навешивается.
type GuildSettings struct {
	GuildID         string `db:"guild_id" json:"guild_id"`
	AutoDM          bool   `json:"auto_dm"`
	DefaultTemplate *int64 `db:"default_template" json:"default_template"`
}

// DefaultGuildSettings возвращает настройки по умолчанию для гильдии,
// у которой ещё нет сохранённой строки.
func DefaultGuildSettings(guildID string) *GuildSettings {
	return &GuildSettings{
		GuildID:         guildID,
		AutoDM:          false,
		DefaultTemplate: nil,
	}
}
