package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/groupo-app/backend/internal/middleware"
	"github.com/groupo-app/backend/internal/repositories"
)

// UserHandler handles user search and the friend list
type UserHandler struct {
	userRepository repositories.UserRepository
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository) *UserHandler {
	return &UserHandler{userRepository: userRepo}
}

// RegisterUserRoutes registers user-related routes
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.GET("/users/search", h.SearchUsers)
	g.GET("/friends", h.ListFriends)
	g.POST("/friends/:id", h.AddFriend)
}

// SearchUsers finds users by case-insensitive substring match over
// username, first name or last name, excluding the requester.
func (h *UserHandler) SearchUsers(c echo.Context) error {
	user := middleware.CurrentUser(c)
	query := c.QueryParam("q")

	users, err := h.userRepository.Search(query, user.ID)
	if err != nil {
		return httpError(err)
	}

	results := make([]echo.Map, 0, len(users))
	for _, u := range users {
		results = append(results, echo.Map{
			"id":         u.ID,
			"username":   u.Username,
			"first_name": u.FirstName,
			"last_name":  u.LastName,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"results": results})
}

// AddFriend records a friend edge from the requester to the target user.
// Repeating the call is a no-op.
func (h *UserHandler) AddFriend(c echo.Context) error {
	user := middleware.CurrentUser(c)

	friendID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	if err := h.userRepository.AddFriend(user.ID, uint(friendID)); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Friend added!"})
}

// ListFriends returns users connected to the requester by a friend edge in
// either direction.
func (h *UserHandler) ListFriends(c echo.Context) error {
	user := middleware.CurrentUser(c)

	friends, err := h.userRepository.ListFriends(user.ID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"friends": friends})
}
