package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/groupo-app/backend/internal/middleware"
	"github.com/groupo-app/backend/internal/models"
	"github.com/groupo-app/backend/internal/repositories"
)

// GroupHandler handles HTTP requests related to groups and membership
type GroupHandler struct {
	groupRepository repositories.GroupRepository
	userRepository  repositories.UserRepository
}

// NewGroupHandler creates a new GroupHandler
func NewGroupHandler(groupRepo repositories.GroupRepository, userRepo repositories.UserRepository) *GroupHandler {
	return &GroupHandler{
		groupRepository: groupRepo,
		userRepository:  userRepo,
	}
}

// RegisterGroupRoutes registers group-related routes
func (h *GroupHandler) RegisterGroupRoutes(g *echo.Group) {
	g.GET("/groups", h.ListGroups)
	g.POST("/groups", h.CreateGroup)
	g.PUT("/groups/:id", h.UpdateGroup)
	g.POST("/groups/:id/members", h.AddMember)
	g.POST("/groups/:id/join", h.JoinGroup)
}

// ListGroups returns the groups the requester belongs to
func (h *GroupHandler) ListGroups(c echo.Context) error {
	user := middleware.CurrentUser(c)

	groups, err := h.groupRepository.ListForUser(user.ID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"groups": groups})
}

// CreateGroup creates a group with the requester as its sole initial member
func (h *GroupHandler) CreateGroup(c echo.Context) error {
	user := middleware.CurrentUser(c)

	var req models.CreateGroupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	group := &models.Group{Name: req.Name}
	if err := h.groupRepository.Create(group, user); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, group)
}

// UpdateGroup renames a group; members only
func (h *GroupHandler) UpdateGroup(c echo.Context) error {
	user := middleware.CurrentUser(c)

	groupID, err := groupIDParam(c)
	if err != nil {
		return err
	}

	var req models.UpdateGroupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	member, err := h.groupRepository.IsMember(groupID, user.ID)
	if err != nil {
		return httpError(err)
	}
	if !member {
		return echo.NewHTTPError(http.StatusForbidden, "Not a member of this group")
	}

	if err := h.groupRepository.Rename(groupID, req.Name); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Group updated"})
}

// AddMember adds a user to a group by username; adding an existing member
// is a no-op
func (h *GroupHandler) AddMember(c echo.Context) error {
	user := middleware.CurrentUser(c)

	groupID, err := groupIDParam(c)
	if err != nil {
		return err
	}

	var req models.AddMemberRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	member, err := h.groupRepository.IsMember(groupID, user.ID)
	if err != nil {
		return httpError(err)
	}
	if !member {
		return echo.NewHTTPError(http.StatusForbidden, "Not a member of this group")
	}

	target, err := h.userRepository.GetByUsername(req.Username)
	if err != nil {
		return httpError(err)
	}

	if err := h.groupRepository.AddMember(groupID, target.ID); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "User added to group"})
}

// JoinGroup adds the requester to a group
func (h *GroupHandler) JoinGroup(c echo.Context) error {
	user := middleware.CurrentUser(c)

	groupID, err := groupIDParam(c)
	if err != nil {
		return err
	}

	if err := h.groupRepository.AddMember(groupID, user.ID); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "User added to group"})
}

func groupIDParam(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid group ID")
	}
	return uint(id), nil
}
