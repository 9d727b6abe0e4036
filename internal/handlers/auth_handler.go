package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"skyroute/internal/database"
	"skyroute/internal/middleware"
	"skyroute/internal/models"
	"skyroute/internal/utils"
	"skyroute/pkg/jwt"
)

// AuthHandler serves registration, login and profile endpoints
type AuthHandler struct {
	users      *database.UserRepository
	jwtService *jwt.Service
	logger     *logrus.Logger
	bcryptCost int
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(users *database.UserRepository, jwtService *jwt.Service, logger *logrus.Logger, bcryptCost int) *AuthHandler {
	return &AuthHandler{
		users:      users,
		jwtService: jwtService,
		logger:     logger,
		bcryptCost: bcryptCost,
	}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name" binding:"required"`
}

// Register creates an account and returns a signed token
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": err.Error(),
		})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.bcryptCost)
	if err != nil {
		h.logger.WithError(err).Error("Failed to hash password")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Error creating user",
		})
		return
	}

	user, err := h.users.CreateUser(req.Email, string(hash), req.Name)
	if err != nil {
		if database.IsDuplicateKey(err) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "email_taken",
				"message": "Email already registered",
			})
			return
		}
		h.logger.WithError(err).Error("Failed to create user")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Error creating user",
		})
		return
	}

	token, err := h.jwtService.GenerateToken(user.ID, user.Email, user.Role, user.Subscription)
	if err != nil {
		h.logger.WithError(err).Error("Failed to generate token")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Error creating user",
		})
		return
	}

	h.logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"email":   user.Email,
	}).Info("User registered")

	c.JSON(http.StatusCreated, gin.H{"user": user, "token": token})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login checks credentials and returns a signed token
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": err.Error(),
		})
		return
	}

	user, err := h.users.GetUserByEmail(req.Email)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "invalid_credentials",
			"message": "Invalid email or password",
		})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "invalid_credentials",
			"message": "Invalid email or password",
		})
		return
	}

	if err := h.users.UpdateLastLogin(user.ID); err != nil {
		h.logger.WithError(err).Warn("Failed to update last login")
	}

	device := utils.ParseUserAgent(c.GetHeader("User-Agent"))
	h.logger.WithFields(logrus.Fields{
		"user_id":     user.ID,
		"ip":          c.ClientIP(),
		"device_type": device.DeviceType,
		"os":          device.OS,
		"browser":     device.Browser,
	}).Info("User logged in")

	token, err := h.jwtService.GenerateToken(user.ID, user.Email, user.Role, user.Subscription)
	if err != nil {
		h.logger.WithError(err).Error("Failed to generate token")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Error logging in",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
}

// Me returns the authenticated user's profile and feature set
func (h *AuthHandler) Me(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	user, err := h.users.GetUserByID(userCtx.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "unauthorized",
			"message": "User not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":     user,
		"features": user.GetFeatures(),
	})
}

type preferencesRequest struct {
	Theme         *string `json:"theme"`
	VoiceGuidance *bool   `json:"voice_guidance"`
	OfflineMode   *bool   `json:"offline_mode"`
}

// UpdatePreferences merges the submitted fields into the caller's stored
// preference document. Omitted fields keep their current values.
func (h *AuthHandler) UpdatePreferences(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	var req preferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": err.Error(),
		})
		return
	}

	user, err := h.users.GetUserByID(userCtx.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "unauthorized",
			"message": "User not found",
		})
		return
	}

	prefs := user.Preferences
	if prefs == nil {
		prefs = models.JSONB{}
	}
	if req.Theme != nil {
		prefs["theme"] = *req.Theme
	}
	if req.VoiceGuidance != nil {
		prefs["voice_guidance"] = *req.VoiceGuidance
	}
	if req.OfflineMode != nil {
		prefs["offline_mode"] = *req.OfflineMode
	}

	if err := h.users.UpdatePreferences(user.ID, prefs); err != nil {
		h.logger.WithError(err).Error("Failed to update preferences")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Error updating preferences",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"preferences": prefs})
}
