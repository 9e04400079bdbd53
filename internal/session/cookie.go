package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName — имя сессионного cookie браузера.
const CookieName = "guildforms_session"

// CookieCodec подписывает идентификатор сессии как HS256 JWT.
// В cookie не попадает ничего, кроме подписанного id и срока действия.
type CookieCodec struct {
	secret []byte
	ttl    time.Duration
}

// NewCookieCodec создаёт кодек с общим секретом и временем жизни cookie.
func NewCookieCodec(secret string, ttl time.Duration) *CookieCodec {
	return &CookieCodec{secret: []byte(secret), ttl: ttl}
}

// Encode выпускает подписанное значение cookie для идентификатора сессии.
func (c *CookieCodec) Encode(sessionID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   sessionID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("session cookie: подпись: %w", err)
	}
	return signed, nil
}

// Decode проверяет подпись и срок действия и возвращает идентификатор сессии.
func (c *CookieCodec) Decode(value string) (string, error) {
	parsed, err := jwt.ParseWithClaims(value, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("session cookie: неожиданный метод подписи %v", t.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return "", jwt.ErrTokenInvalidClaims
	}
	return claims.Subject, nil
}

// TTL возвращает время жизни cookie (для Max-Age).
func (c *CookieCodec) TTL() time.Duration {
	return c.ttl
}
