package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/groupo-app/backend/internal/middleware"
	"github.com/groupo-app/backend/internal/models"
	"github.com/groupo-app/backend/internal/repositories"
)

// PushHandler handles device push token registration
type PushHandler struct {
	tokenRepository repositories.DeviceTokenRepository
}

// NewPushHandler creates a new PushHandler
func NewPushHandler(tokenRepo repositories.DeviceTokenRepository) *PushHandler {
	return &PushHandler{tokenRepository: tokenRepo}
}

// RegisterPushRoutes registers push-related routes
func (h *PushHandler) RegisterPushRoutes(g *echo.Group) {
	g.POST("/push/register", h.RegisterDeviceToken)
}

// RegisterDeviceToken stores the caller's device push token. Registering
// the same (user, token) pair again is a no-op.
func (h *PushHandler) RegisterDeviceToken(c echo.Context) error {
	user := middleware.CurrentUser(c)

	var req models.RegisterDeviceTokenRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token := &models.DeviceToken{
		UserID:   user.ID,
		Token:    req.Token,
		Platform: req.Platform,
	}
	if err := h.tokenRepository.Register(token); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Device token registered"})
}
