package models

import "strconv"

// PermissionManageGuild — бит прав MANAGE_GUILD в битовой маске Discord.
const PermissionManageGuild = 1 << 5

// DiscordUser представляет профиль пользователя из /users/@me.
type DiscordUser struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Discriminator string `json:"discriminator,omitempty"`
	GlobalName    string `json:"global_name,omitempty"`
	Avatar        string `json:"avatar,omitempty"`
}

// DiscordGuild представляет одну запись из /users/@me/guilds.
type DiscordGuild struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Icon        string `json:"icon,omitempty"`
	Owner       bool   `json:"owner"`
	Permissions string `json:"permissions"`
}

// CanManage сообщает, может ли пользователь управлять гильдией:
// владелец либо обладатель права MANAGE_GUILD.
func (g *DiscordGuild) CanManage() bool {
	if g.Owner {
		return true
	}
	perms, err := strconv.ParseInt(g.Permissions, 10, 64)
	if err != nil {
		return false
	}
	return perms&PermissionManageGuild != 0
}

// Principal — аутентифицированная личность в сессии.
// Помимо типизированных полей хранит исходный профиль провайдера.
type Principal struct {
	User   DiscordUser    `json:"user"`
	Guilds []DiscordGuild `json:"guilds,omitempty"`
}
