package handler

import (
	"errors"
	"log"
	"net/http"

	"gram_sahay/internal/model"
	"gram_sahay/internal/repository"
	"gram_sahay/internal/service"
	"gram_sahay/internal/utils"

	"github.com/gin-gonic/gin"
)

// AuthHandler drives the OTP login flows and the session lifecycle. One
// login machine exists per role; both run the same state machine.
type AuthHandler struct {
	machines map[string]*service.OTPLogin
	router   *service.SessionRouter
	store    repository.KVStore
	jwtUtil  *utils.JWTUtil
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(userLogin, adminLogin *service.OTPLogin, router *service.SessionRouter, store repository.KVStore, jwtUtil *utils.JWTUtil) *AuthHandler {
	return &AuthHandler{
		machines: map[string]*service.OTPLogin{
			model.RoleUser:  userLogin,
			model.RoleAdmin: adminLogin,
		},
		router:  router,
		store:   store,
		jwtUtil: jwtUtil,
	}
}

func (h *AuthHandler) sendOTP(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Phone string `json:"phone"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
			return
		}

		machine := h.machines[role]
		if err := machine.SubmitPhone(c.Request.Context(), req.Phone); err != nil {
			switch {
			case errors.Is(err, service.ErrPhoneRequired), errors.Is(err, service.ErrPhoneInvalid):
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": "phone"})
			case errors.Is(err, service.ErrRequestInProgress), errors.Is(err, service.ErrWrongStep):
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			default:
				log.Printf("Error sending OTP: %v", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send OTP"})
			}
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "OTP sent",
			"step":    machine.Step(),
			"phone":   machine.Phone(),
		})
	}
}

func (h *AuthHandler) verifyOTP(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			OTP string `json:"otp"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
			return
		}

		machine := h.machines[role]
		session, err := machine.SubmitOTP(c.Request.Context(), req.OTP)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrOTPRequired), errors.Is(err, service.ErrOTPInvalid):
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": "otp"})
			case errors.Is(err, service.ErrOTPMismatch):
				c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error(), "field": "otp"})
			case errors.Is(err, service.ErrRequestInProgress), errors.Is(err, service.ErrWrongStep):
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			default:
				log.Printf("Error verifying OTP: %v", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify OTP"})
			}
			return
		}

		// The session record is written; signal the router so it becomes
		// the gatekeeper for everything that follows.
		h.router.Login(session.Role)

		token, err := h.jwtUtil.GenerateToken(session.Phone, session.Role)
		if err != nil {
			log.Printf("ERROR: session for %s created, but failed to generate token: %v", session.Phone, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Login succeeded, but failed to generate token"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message":    "Login successful",
			"phone":      session.Phone,
			"role":       session.Role,
			"loggedInAt": session.LoggedInAt,
			"token":      token,
			"screen":     h.router.CurrentScreen(),
		})
	}
}

func (h *AuthHandler) changeNumber(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		machine := h.machines[role]
		if err := machine.ChangeNumber(); err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"step": machine.Step(), "phone": machine.Phone()})
	}
}

func (h *AuthHandler) loginState(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		machine := h.machines[role]
		c.JSON(http.StatusOK, gin.H{
			"role":  machine.Role(),
			"step":  machine.Step(),
			"phone": machine.Phone(),
		})
	}
}

// Logout tears down the session: both login flows return to phone entry,
// the session record is removed and the router lands on the login screen.
func (h *AuthHandler) Logout(c *gin.Context) {
	for _, machine := range h.machines {
		if err := machine.Logout(c.Request.Context()); err != nil {
			log.Printf("Error resetting login flow: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to logout"})
			return
		}
	}
	if err := h.router.Logout(c.Request.Context()); err != nil {
		log.Printf("Error during logout: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to logout"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out", "screen": h.router.CurrentScreen()})
}

// Session returns the persisted session record, if any.
func (h *AuthHandler) Session(c *gin.Context) {
	raw, ok, err := h.store.Get(c.Request.Context(), model.SessionKey)
	if err != nil {
		log.Printf("Error reading session record: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read session"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "No active session"})
		return
	}
	session, err := model.ParseSession(raw)
	if err != nil {
		log.Printf("WARN: corrupt session record: %v", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "No active session"})
		return
	}
	c.JSON(http.StatusOK, session)
}

// RegisterAuthRoutes registers auth routes
func (h *AuthHandler) RegisterAuthRoutes(rg *gin.RouterGroup) {
	authGroup := rg.Group("/auth")
	{
		userGroup := authGroup.Group("/user")
		{
			userGroup.POST("/otp/send", h.sendOTP(model.RoleUser))
			userGroup.POST("/otp/verify", h.verifyOTP(model.RoleUser))
			userGroup.POST("/change-number", h.changeNumber(model.RoleUser))
			userGroup.GET("/state", h.loginState(model.RoleUser))
		}

		adminGroup := authGroup.Group("/admin")
		{
			adminGroup.POST("/otp/send", h.sendOTP(model.RoleAdmin))
			adminGroup.POST("/otp/verify", h.verifyOTP(model.RoleAdmin))
			adminGroup.POST("/change-number", h.changeNumber(model.RoleAdmin))
			adminGroup.GET("/state", h.loginState(model.RoleAdmin))
		}

		authGroup.POST("/logout", h.Logout)
		authGroup.GET("/session", h.Session)
	}
}
