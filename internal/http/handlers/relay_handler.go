package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shadowmilk/guildforms/internal/logger"
)

// RelayHandler пересылает входящие запросы на один фиксированный upstream
// (внешняя панель управления, недоступная браузеру напрямую).
// Контракт: метод, путь, query, сырые байты тела и входящие Content-Type
// и Authorization уходят без изменений; статус и тело ответа возвращаются
// дословно, без пересериализации.
type RelayHandler struct {
	upstream string
	client   *http.Client
}

// NewRelayHandler создаёт хэндлер с таймаутом на исходящий вызов.
func NewRelayHandler(upstream string, timeout time.Duration) *RelayHandler {
	return &RelayHandler{
		upstream: upstream,
		client:   &http.Client{Timeout: timeout},
	}
}

// Forward обрабатывает любой метод на /api/relay/*path.
func (h *RelayHandler) Forward(c *gin.Context) {
	target := h.upstream + c.Param("path")
	if raw := c.Request.URL.RawQuery; raw != "" {
		target += "?" + raw
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), c.Request.Method, target, c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "ошибка пересылки"})
		return
	}

	if ct := c.GetHeader("Content-Type"); ct != "" {
		req.Header.Set("Content-Type", ct)
	}
	req.Header.Set("Authorization", c.GetHeader("Authorization"))

	resp, err := h.client.Do(req)
	if err != nil {
		logger.WithComponent("relay").WithError(err).Error("upstream недоступен")
		c.JSON(http.StatusBadGateway, gin.H{"error": "ошибка пересылки"})
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.WithComponent("relay").WithError(err).Error("не удалось прочитать ответ upstream")
		c.JSON(http.StatusBadGateway, gin.H{"error": "ошибка пересылки"})
		return
	}

	c.Data(resp.StatusCode, resp.Header.Get("Content-Type"), body)
}
