package models

// Guild описывает сообщество на платформе, от имени которого
// администраторы создают анкеты.
type Guild struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
	Icon string `db:"icon" json:"icon,omitempty"`
}

// Membership связывает пользователя с гильдией и ролью в ней.
// Синхронизируется из списка гильдий OAuth профиля при каждом логине.
type Membership struct {
	GuildID string `db:"guild_id" json:"guild_id"`
	UserID  string `db:"user_id" json:"user_id"`
	Role    string `db:"role" json:"role"`
}
