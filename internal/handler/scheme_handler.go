package handler

import (
	"net/http"

	"gram_sahay/internal/service"

	"github.com/gin-gonic/gin"
)

// SchemeHandler serves the scheme awareness questionnaire
type SchemeHandler struct {
	service service.SchemeService
}

// NewSchemeHandler creates a new SchemeHandler
func NewSchemeHandler(s service.SchemeService) *SchemeHandler {
	return &SchemeHandler{service: s}
}

func (h *SchemeHandler) GetQuestions(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Questions())
}

func (h *SchemeHandler) CheckEligibility(c *gin.Context) {
	var req struct {
		Answers map[string]string `json:"answers" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	schemes := h.service.EligibleSchemes(req.Answers)
	c.JSON(http.StatusOK, gin.H{"schemes": schemes, "count": len(schemes)})
}

// RegisterSchemeRoutes registers scheme awareness routes
func (h *SchemeHandler) RegisterSchemeRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc, userMW gin.HandlerFunc) {
	schemeRoutes := rg.Group("/schemes")
	schemeRoutes.Use(authMW)
	schemeRoutes.Use(userMW)
	{
		schemeRoutes.GET("/questions", h.GetQuestions)
		schemeRoutes.POST("/eligibility", h.CheckEligibility)
	}
}
