package handlers

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/groupo-app/backend/internal/middleware"
	"github.com/groupo-app/backend/internal/models"
	"github.com/groupo-app/backend/internal/push"
	"github.com/groupo-app/backend/internal/repositories"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	commentRepository repositories.CommentRepository
	postRepository    repositories.PostRepository
	groupRepository   repositories.GroupRepository
	dispatcher        *push.Dispatcher
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(
	commentRepo repositories.CommentRepository,
	postRepo repositories.PostRepository,
	groupRepo repositories.GroupRepository,
	dispatcher *push.Dispatcher,
) *CommentHandler {
	return &CommentHandler{
		commentRepository: commentRepo,
		postRepository:    postRepo,
		groupRepository:   groupRepo,
		dispatcher:        dispatcher,
	}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/posts/:id/comment", h.CommentPost)
}

// CommentPost adds a comment to a post. Notification dispatch happens after
// the commit and never fails the request.
func (h *CommentHandler) CommentPost(c echo.Context) error {
	user := middleware.CurrentUser(c)

	postID, err := postIDParam(c)
	if err != nil {
		return err
	}

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	post, err := h.postRepository.GetByID(postID)
	if err != nil {
		return httpError(err)
	}

	member, err := h.groupRepository.IsMember(post.GroupID, user.ID)
	if err != nil {
		return httpError(err)
	}
	if !member {
		return echo.NewHTTPError(http.StatusForbidden, "Not a member of this group")
	}

	comment := &models.Comment{
		Content: req.Comment,
		UserID:  user.ID,
		PostID:  post.ID,
	}
	if err := h.commentRepository.Create(comment); err != nil {
		return httpError(err)
	}

	group, err := h.groupRepository.GetByID(post.GroupID)
	if err == nil {
		go h.dispatcher.CommentAdded(context.Background(), group, post, comment, user)
	}

	return c.JSON(http.StatusCreated, echo.Map{"message": "Comment added."})
}
