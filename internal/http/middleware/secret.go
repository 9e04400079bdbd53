package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// HeaderProxySecret — заголовок с общим секретом для публичных прокси-ручек.
const HeaderProxySecret = "X-Proxy-Secret"

// SecretGuard сверяет общий секрет из query-параметра secret или заголовка.
// При несовпадении запрос обрывается до любого исходящего вызова.
func SecretGuard(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		presented := c.Query("secret")
		if presented == "" {
			presented = c.GetHeader(HeaderProxySecret)
		}

		if secret == "" || subtle.ConstantTimeCompare([]byte(presented), []byte(secret)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "неверный или отсутствующий секрет"})
			return
		}

		c.Next()
	}
}
