package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/shadowmilk/guildforms/internal/logger"
	"github.com/shadowmilk/guildforms/internal/repository"
	"github.com/shadowmilk/guildforms/internal/session"
)

// ErrorHandler обрабатывает ошибки централизованно: известные сентинелы
// превращаются в статусы, остальное маскируется и логируется.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		if len(c.Errors) > 0 {
			err := c.Errors.Last()

			statusCode := http.StatusInternalServerError
			message := "внутренняя ошибка сервера"

			if logger.Log != nil {
				logger.Log.WithFields(logrus.Fields{
					"error":  err.Error(),
					"path":   c.Request.URL.Path,
					"method": c.Request.Method,
				}).Error("Request error")
			}

			switch {
			case errors.Is(err.Err, repository.ErrTemplateNotFound):
				statusCode = http.StatusNotFound
				message = "анкета не найдена"
			case errors.Is(err.Err, repository.ErrSubmissionNotFound):
				statusCode = http.StatusNotFound
				message = "заявка не найдена"
			case errors.Is(err.Err, repository.ErrSettingsNotFound):
				statusCode = http.StatusNotFound
				message = "настройки не найдены"
			case errors.Is(err.Err, session.ErrSessionNotFound):
				statusCode = http.StatusUnauthorized
				message = "требуется авторизация"
			}

			c.JSON(statusCode, gin.H{"error": message})
		}
	}
}
