package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/canteen-central/canteen-api/internal/dto"
	"github.com/canteen-central/canteen-api/internal/service"
	appErrors "github.com/canteen-central/canteen-api/pkg/errors"
	"github.com/canteen-central/canteen-api/pkg/response"
)

// AIHandler exposes the financial insight and assistant chat endpoints.
type AIHandler struct {
	service *service.AIService
}

// NewAIHandler constructs the handler.
func NewAIHandler(svc *service.AIService) *AIHandler {
	return &AIHandler{service: svc}
}

// Insights godoc
// @Summary Generate financial insights for a school-month
// @Tags AI
// @Accept json
// @Produce json
// @Param payload body dto.AIInsightsRequest true "Insights request"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /ai/insights [post]
func (h *AIHandler) Insights(c *gin.Context) {
	var req dto.AIInsightsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid insights payload"))
		return
	}
	res, err := h.service.Insights(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// Chat godoc
// @Summary Converse with the financial assistant
// @Tags AI
// @Accept json
// @Produce json
// @Param payload body dto.ChatRequest true "Chat request"
// @Success 200 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /ai/chat [post]
func (h *AIHandler) Chat(c *gin.Context) {
	var req dto.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid chat payload"))
		return
	}
	res, err := h.service.Chat(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// Status godoc
// @Summary AI feature availability
// @Tags AI
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /ai/status [get]
func (h *AIHandler) Status(c *gin.Context) {
	enabled := h.service.Enabled()
	response.JSON(c, http.StatusOK, gin.H{
		"available": enabled,
		"features":  gin.H{"insights": enabled, "chat": enabled},
	}, nil)
}
