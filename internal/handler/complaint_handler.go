package handler

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"gram_sahay/internal/model"
	"gram_sahay/internal/service"

	"github.com/gin-gonic/gin"
)

// ComplaintHandler handles complaint filing, tracking and admin management
type ComplaintHandler struct {
	service service.ComplaintService
}

// NewComplaintHandler creates a new ComplaintHandler
func NewComplaintHandler(s service.ComplaintService) *ComplaintHandler {
	return &ComplaintHandler{service: s}
}

func (h *ComplaintHandler) FileComplaint(c *gin.Context) {
	var req model.FileComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	complaint, err := h.service.File(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCategory) || errors.Is(err, service.ErrDescriptionRequired) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Printf("Error filing complaint: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to file complaint"})
		return
	}
	c.JSON(http.StatusCreated, complaint)
}

func (h *ComplaintHandler) TrackComplaints(c *gin.Context) {
	complaints, err := h.service.Track(c.Request.Context())
	if err != nil {
		log.Printf("Error tracking complaints: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve complaints"})
		return
	}
	c.JSON(http.StatusOK, complaints)
}

// --- Admin Routes ---

func (h *ComplaintHandler) GetAllComplaintsAdmin(c *gin.Context) {
	status := c.Query("status")

	complaints, err := h.service.ListAdmin(c.Request.Context(), status)
	if err != nil {
		if errors.Is(err, service.ErrInvalidStatusFilter) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Printf("Error getting complaints for admin: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve complaints"})
		return
	}
	c.JSON(http.StatusOK, complaints)
}

func (h *ComplaintHandler) UpdateComplaintStatus(c *gin.Context) {
	complaintID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid complaint ID"})
		return
	}

	var req model.UpdateComplaintStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	complaint, err := h.service.UpdateStatus(c.Request.Context(), complaintID, req.Action)
	if err != nil {
		if errors.Is(err, service.ErrComplaintNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else if errors.Is(err, service.ErrInvalidTransition) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else {
			log.Printf("Error updating complaint status: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update complaint"})
		}
		return
	}
	c.JSON(http.StatusOK, complaint)
}

func (h *ComplaintHandler) GetStatisticsAdmin(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		log.Printf("Error getting statistics for admin: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve statistics"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *ComplaintHandler) ExportComplaintsCSVAdmin(c *gin.Context) {
	csvBuffer, err := h.service.ExportCSV(c.Request.Context())
	if err != nil {
		log.Printf("Error exporting complaints to CSV for admin: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export complaints to CSV"})
		return
	}

	fileName := fmt.Sprintf("complaints_export_%s.csv", time.Now().Format("20060102_150405"))
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename="+fileName)
	c.Data(http.StatusOK, "text/csv", csvBuffer.Bytes())
}

// RegisterComplaintRoutes registers complaint routes
func (h *ComplaintHandler) RegisterComplaintRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc, userMW gin.HandlerFunc, adminMW gin.HandlerFunc) {
	// Citizen routes: filing and tracking
	userRoutes := rg.Group("/complaints")
	userRoutes.Use(authMW)
	userRoutes.Use(userMW)
	{
		userRoutes.POST("", h.FileComplaint)
		userRoutes.GET("", h.TrackComplaints)
	}

	// Admin routes: complaint management
	adminRoutes := rg.Group("/admin")
	adminRoutes.Use(authMW)
	adminRoutes.Use(adminMW)
	{
		adminRoutes.GET("/complaints", h.GetAllComplaintsAdmin)
		adminRoutes.PUT("/complaints/:id/status", h.UpdateComplaintStatus)
		adminRoutes.GET("/stats", h.GetStatisticsAdmin)
		adminRoutes.GET("/export/csv", h.ExportComplaintsCSVAdmin)
	}
}
