package handler

import (
	"net/http"

	"gram_sahay/internal/model"
	"gram_sahay/internal/service"

	"github.com/gin-gonic/gin"
)

// ScreenHandler exposes the session router's navigation contract.
type ScreenHandler struct {
	router *service.SessionRouter
}

// NewScreenHandler creates a new ScreenHandler
func NewScreenHandler(router *service.SessionRouter) *ScreenHandler {
	return &ScreenHandler{router: router}
}

// CurrentScreen returns the active screen and role.
func (h *ScreenHandler) CurrentScreen(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"screen": h.router.CurrentScreen(),
		"role":   h.router.CurrentRole(),
	})
}

// Navigate requests a screen change. A denied target is a silent redirect:
// the response carries the screen actually reached, never an error.
func (h *ScreenHandler) Navigate(c *gin.Context) {
	var req struct {
		Target string `json:"target" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if !model.ValidScreen(req.Target) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown screen: " + req.Target})
		return
	}

	screen := h.router.RequestNavigate(req.Target)
	c.JSON(http.StatusOK, gin.H{
		"screen":     screen,
		"role":       h.router.CurrentRole(),
		"redirected": screen != req.Target,
	})
}

// RegisterScreenRoutes registers navigation routes
func (h *ScreenHandler) RegisterScreenRoutes(rg *gin.RouterGroup) {
	rg.GET("/screen", h.CurrentScreen)
	rg.POST("/navigate", h.Navigate)
}
