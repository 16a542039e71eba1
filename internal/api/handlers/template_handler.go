package handlers

import (
	"net/http"

	"github.com/andresuchdata/stockcast/internal/forecast"
	"github.com/andresuchdata/stockcast/internal/service"
	"github.com/gin-gonic/gin"
)

type TemplateHandler struct {
	service *service.ForecastService
}

func NewTemplateHandler(service *service.ForecastService) *TemplateHandler {
	return &TemplateHandler{service: service}
}

type updateTemplateRequest struct {
	Multipliers []float64 `json:"multipliers" binding:"required"`
}

func (h *TemplateHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"templates": h.service.ListTemplates(c.Request.Context())})
}

func (h *TemplateHandler) Create(c *gin.Context) {
	var pattern forecast.SeasonalPattern
	if err := c.ShouldBindJSON(&pattern); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}

	created, err := h.service.AddTemplate(c.Request.Context(), pattern)
	if err != nil {
		writeError(c, err, "failed to add template")
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *TemplateHandler) Update(c *gin.Context) {
	var req updateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}

	updated, err := h.service.UpdateTemplate(c.Request.Context(), c.Param("id"), req.Multipliers)
	if err != nil {
		writeError(c, err, "failed to update template")
		return
	}
	c.JSON(http.StatusOK, updated)
}
