package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shadowmilk/guildforms/internal/service"
)

// ReviewHandler отдаёт заявки гильдии на рассмотрение.
type ReviewHandler struct {
	submissions *service.SubmissionService
}

// NewReviewHandler создаёт хэндлер.
func NewReviewHandler(submissions *service.SubmissionService) *ReviewHandler {
	return &ReviewHandler{submissions: submissions}
}

// ListSubmissions обрабатывает GET /review/:guild_id.
// Возвращаются все заявки гильдии без фильтра по статусу.
func (h *ReviewHandler) ListSubmissions(c *gin.Context) {
	guildID := c.Param("guild_id")

	submissions, err := h.submissions.List(c.Request.Context(), guildID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"guild_id":    guildID,
		"submissions": submissions,
	})
}
