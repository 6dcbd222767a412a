package handlers

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/groupo-app/backend/internal/media"
	"github.com/groupo-app/backend/internal/middleware"
	"github.com/groupo-app/backend/internal/models"
	"github.com/groupo-app/backend/internal/push"
	"github.com/groupo-app/backend/internal/repositories"
	"github.com/groupo-app/backend/internal/storage"
)

// PostHandler handles HTTP requests related to posts in a group
type PostHandler struct {
	postRepository  repositories.PostRepository
	groupRepository repositories.GroupRepository
	ingestor        *media.Ingestor
	resolver        *storage.Resolver
	dispatcher      *push.Dispatcher
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(
	postRepo repositories.PostRepository,
	groupRepo repositories.GroupRepository,
	ingestor *media.Ingestor,
	resolver *storage.Resolver,
	dispatcher *push.Dispatcher,
) *PostHandler {
	return &PostHandler{
		postRepository:  postRepo,
		groupRepository: groupRepo,
		ingestor:        ingestor,
		resolver:        resolver,
		dispatcher:      dispatcher,
	}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.GET("/groups/:id/posts", h.ListGroupPosts)
	g.POST("/groups/:id/posts", h.CreatePost)
	g.POST("/posts/:id/like", h.LikePost)
	g.DELETE("/posts/:id", h.DeletePost)
}

// ListGroupPosts returns a group's posts with media references resolved
// into client-usable URLs; members only.
func (h *PostHandler) ListGroupPosts(c echo.Context) error {
	user := middleware.CurrentUser(c)

	groupID, err := groupIDParam(c)
	if err != nil {
		return err
	}

	member, err := h.groupRepository.IsMember(groupID, user.ID)
	if err != nil {
		return httpError(err)
	}
	if !member {
		return echo.NewHTTPError(http.StatusForbidden, "Not a member of this group")
	}

	posts, err := h.postRepository.ListByGroup(groupID)
	if err != nil {
		return httpError(err)
	}

	views := make([]models.PostView, 0, len(posts))
	for i := range posts {
		views = append(views, h.postView(c.Request().Context(), &posts[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"posts": views})
}

// CreatePost creates a post with attached media. Multipart requests carry
// files under the "file" field; JSON requests carry base64 payload items.
// Notification dispatch happens after the commit and never fails the
// request.
func (h *PostHandler) CreatePost(c echo.Context) error {
	user := middleware.CurrentUser(c)

	groupID, err := groupIDParam(c)
	if err != nil {
		return err
	}

	group, err := h.groupRepository.GetByID(groupID)
	if err != nil {
		return httpError(err)
	}

	member := false
	for _, m := range group.Members {
		if m.ID == user.ID {
			member = true
			break
		}
	}
	if !member {
		return echo.NewHTTPError(http.StatusForbidden, "Not a member of this group")
	}

	content, refs, err := h.readPostInput(c)
	if err != nil {
		return err
	}

	post := &models.Post{
		Content:   content,
		ImageURLs: storage.JoinRefs(refs),
		UserID:    user.ID,
		GroupID:   group.ID,
	}
	if err := h.postRepository.Create(post); err != nil {
		return httpError(err)
	}

	// Fire-and-forget, post-commit; never blocks or fails the request.
	go h.dispatcher.PostCreated(context.Background(), group, post, user)

	return c.JSON(http.StatusCreated, h.postView(c.Request().Context(), post))
}

// readPostInput normalizes the two accepted request shapes into content and
// stored media references.
func (h *PostHandler) readPostInput(c echo.Context) (string, []string, error) {
	ctx := c.Request().Context()

	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		content := c.FormValue("content")
		if strings.TrimSpace(content) == "" {
			return "", nil, echo.NewHTTPError(http.StatusBadRequest, "Content is required")
		}

		form, err := c.MultipartForm()
		if err != nil {
			return "", nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid multipart payload")
		}

		uploads := make([]media.Upload, 0, len(form.File["file"]))
		for _, fh := range form.File["file"] {
			src, err := fh.Open()
			if err != nil {
				return "", nil, echo.NewHTTPError(http.StatusBadRequest, "Unreadable file part")
			}
			data, err := io.ReadAll(src)
			src.Close()
			if err != nil {
				return "", nil, echo.NewHTTPError(http.StatusBadRequest, "Unreadable file part")
			}
			uploads = append(uploads, media.Upload{
				Filename:    fh.Filename,
				ContentType: fh.Header.Get(echo.HeaderContentType),
				Data:        data,
			})
		}

		refs, err := h.ingestor.SaveUploads(ctx, uploads, 0)
		if err != nil {
			return "", nil, httpError(err)
		}
		return content, refs, nil
	}

	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return "", nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return "", nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if len(req.Files) == 0 {
		return req.Content, nil, nil
	}

	items := make([]media.Base64Item, 0, len(req.Files))
	for _, f := range req.Files {
		items = append(items, media.Base64Item{
			Data:        f.Data,
			Filename:    f.Filename,
			ContentType: f.ContentType,
		})
	}
	refs, err := h.ingestor.SaveBase64(ctx, items, 0)
	if err != nil {
		return "", nil, httpError(err)
	}
	return req.Content, refs, nil
}

// LikePost increments a post's like counter and returns the new count.
// Repeat likes are not deduplicated.
func (h *PostHandler) LikePost(c echo.Context) error {
	postID, err := postIDParam(c)
	if err != nil {
		return err
	}

	likes, err := h.postRepository.Like(postID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"likes": likes})
}

// DeletePost deletes a post and its comments; author only
func (h *PostHandler) DeletePost(c echo.Context) error {
	user := middleware.CurrentUser(c)

	postID, err := postIDParam(c)
	if err != nil {
		return err
	}

	if err := h.postRepository.Delete(postID, user.ID); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Post deleted"})
}

// postView resolves stored media references lazily at read time.
func (h *PostHandler) postView(ctx context.Context, post *models.Post) models.PostView {
	comments := make([]models.CommentView, 0, len(post.Comments))
	for _, comment := range post.Comments {
		comments = append(comments, models.CommentView{
			ID:        comment.ID,
			Content:   comment.Content,
			UserID:    comment.UserID,
			Username:  comment.User.Username,
			CreatedAt: comment.CreatedAt,
		})
	}
	mediaURLs := h.resolver.Resolve(ctx, post.ImageURLs)
	if mediaURLs == nil {
		mediaURLs = []string{}
	}
	return models.PostView{
		ID:        post.ID,
		Content:   post.Content,
		MediaURLs: mediaURLs,
		UserID:    post.UserID,
		Username:  post.User.Username,
		GroupID:   post.GroupID,
		Likes:     post.Likes,
		Comments:  comments,
		CreatedAt: post.CreatedAt,
	}
}

func postIDParam(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID")
	}
	return uint(id), nil
}
