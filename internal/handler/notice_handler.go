package handler

import (
	"log"
	"net/http"

	"gram_sahay/internal/model"
	"gram_sahay/internal/service"

	"github.com/gin-gonic/gin"
)

// NoticeHandler serves the panchayat notice board
type NoticeHandler struct {
	service service.NoticeService
}

// NewNoticeHandler creates a new NoticeHandler
func NewNoticeHandler(s service.NoticeService) *NoticeHandler {
	return &NoticeHandler{service: s}
}

func (h *NoticeHandler) GetNotices(c *gin.Context) {
	notices, err := h.service.List(c.Request.Context())
	if err != nil {
		log.Printf("Error getting notices: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve notices"})
		return
	}
	c.JSON(http.StatusOK, notices)
}

func (h *NoticeHandler) PublishNotice(c *gin.Context) {
	var req model.PublishNoticeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	notice, err := h.service.Publish(c.Request.Context(), req)
	if err != nil {
		log.Printf("Error publishing notice: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to publish notice"})
		return
	}
	c.JSON(http.StatusCreated, notice)
}

// RegisterNoticeRoutes registers notice board routes. Reading is open to
// any authenticated caller; publishing is admin only.
func (h *NoticeHandler) RegisterNoticeRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc, adminMW gin.HandlerFunc) {
	noticeRoutes := rg.Group("/notices")
	noticeRoutes.Use(authMW)
	{
		noticeRoutes.GET("", h.GetNotices)
	}

	adminNoticeRoutes := rg.Group("/admin/notices")
	adminNoticeRoutes.Use(authMW)
	adminNoticeRoutes.Use(adminMW)
	{
		adminNoticeRoutes.POST("", h.PublishNotice)
	}
}
