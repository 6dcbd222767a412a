package handlers

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/groupo-app/backend/internal/media"
	"github.com/groupo-app/backend/internal/middleware"
	"github.com/groupo-app/backend/internal/models"
	"github.com/groupo-app/backend/internal/push"
	"github.com/groupo-app/backend/internal/repositories"
	"github.com/groupo-app/backend/internal/storage"
)

// api is a fully wired server over a throwaway database and local storage.
type api struct {
	e *echo.Echo
}

func setupAPI(t *testing.T) *api {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.Post{},
		&models.Comment{},
		&models.DeviceToken{},
	))

	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body) //nolint:errcheck
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(gateway.Close)

	userRepo := repositories.NewPostgresUserRepository(db)
	groupRepo := repositories.NewPostgresGroupRepository(db)
	postRepo := repositories.NewPostgresPostRepository(db)
	commentRepo := repositories.NewPostgresCommentRepository(db)
	deviceRepo := repositories.NewPostgresDeviceTokenRepository(db)

	log := zap.NewNop()
	backend, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)
	ingestor := media.NewIngestor(backend, nil, 20, log)
	resolver := storage.NewResolver(backend, log)
	dispatcher := push.NewDispatcher(gateway.URL, deviceRepo, nil, log)

	e := echo.New()
	public := e.Group("/api")
	NewAuthHandler(userRepo).RegisterAuthRoutes(public)

	protected := e.Group("/api", middleware.TokenAuthMiddleware(userRepo))
	NewUserHandler(userRepo).RegisterUserRoutes(protected)
	NewGroupHandler(groupRepo, userRepo).RegisterGroupRoutes(protected)
	NewPostHandler(postRepo, groupRepo, ingestor, resolver, dispatcher).RegisterPostRoutes(protected)
	NewCommentHandler(commentRepo, postRepo, groupRepo, dispatcher).RegisterCommentRoutes(protected)
	NewPushHandler(deviceRepo).RegisterPushRoutes(protected)

	return &api{e: e}
}

func (a *api) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func (a *api) register(t *testing.T, username string) string {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/register",
		"", `{"username":"`+username+`","password":"pw-`+username+`","first_name":"F","last_name":"L"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Token
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

func TestGroupLifecycle(t *testing.T) {
	a := setupAPI(t)
	alice := a.register(t, "alice")
	bob := a.register(t, "bob")
	mallory := a.register(t, "mallory")

	rec := a.do(t, http.MethodPost, "/api/groups", alice, `{"name":"hiking"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var group models.Group
	decodeJSON(t, rec, &group)
	require.NotZero(t, group.ID)

	rec = a.do(t, http.MethodGet, "/api/groups", bob, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var listing struct {
		Groups []models.Group `json:"groups"`
	}
	decodeJSON(t, rec, &listing)
	assert.Empty(t, listing.Groups)

	groupPath := "/api/groups/" + itoa(group.ID)

	rec = a.do(t, http.MethodPost, groupPath+"/members", alice, `{"username":"bob"}`)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = a.do(t, http.MethodGet, "/api/groups", bob, "")
	decodeJSON(t, rec, &listing)
	require.Len(t, listing.Groups, 1)
	assert.Equal(t, "hiking", listing.Groups[0].Name)

	// Any member may rename, non-members may not.
	rec = a.do(t, http.MethodPut, groupPath, bob, `{"name":"alpine hiking"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = a.do(t, http.MethodPut, groupPath, mallory, `{"name":"hijacked"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(t, http.MethodPost, groupPath+"/members", mallory, `{"username":"mallory"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Self-serve join needs no existing membership.
	rec = a.do(t, http.MethodPost, groupPath+"/join", mallory, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPostCommentLikeFlow(t *testing.T) {
	a := setupAPI(t)
	alice := a.register(t, "alice")
	bob := a.register(t, "bob")
	mallory := a.register(t, "mallory")

	rec := a.do(t, http.MethodPost, "/api/groups", alice, `{"name":"hiking"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var group models.Group
	decodeJSON(t, rec, &group)
	groupPath := "/api/groups/" + itoa(group.ID)
	a.do(t, http.MethodPost, groupPath+"/join", bob, "")

	payload := base64.StdEncoding.EncodeToString([]byte("fake image bytes"))
	rec = a.do(t, http.MethodPost, groupPath+"/posts", alice,
		`{"content":"summit reached","files":[{"data":"`+payload+`","filename":"summit.jpg"}]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created models.PostView
	decodeJSON(t, rec, &created)
	assert.Equal(t, "summit reached", created.Content)
	require.Len(t, created.MediaURLs, 1)
	assert.True(t, strings.HasPrefix(created.MediaURLs[0], storage.RoutePrefix+"/"))

	postPath := "/api/posts/" + itoa(created.ID)

	rec = a.do(t, http.MethodGet, groupPath+"/posts", mallory, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	for want := 1; want <= 2; want++ {
		rec = a.do(t, http.MethodPost, postPath+"/like", bob, "")
		require.Equal(t, http.StatusOK, rec.Code)
		var liked struct {
			Likes int `json:"likes"`
		}
		decodeJSON(t, rec, &liked)
		assert.Equal(t, want, liked.Likes)
	}

	rec = a.do(t, http.MethodPost, postPath+"/comment", bob, `{"comment":"congrats!"}`)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = a.do(t, http.MethodPost, postPath+"/comment", mallory, `{"comment":"let me in"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(t, http.MethodGet, groupPath+"/posts", alice, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var listing struct {
		Posts []models.PostView `json:"posts"`
	}
	decodeJSON(t, rec, &listing)
	require.Len(t, listing.Posts, 1)
	assert.Equal(t, 2, listing.Posts[0].Likes)
	assert.Equal(t, "alice", listing.Posts[0].Username)
	require.Len(t, listing.Posts[0].Comments, 1)
	assert.Equal(t, "congrats!", listing.Posts[0].Comments[0].Content)
	assert.Equal(t, "bob", listing.Posts[0].Comments[0].Username)

	rec = a.do(t, http.MethodDelete, postPath, bob, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = a.do(t, http.MethodDelete, postPath, alice, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(t, http.MethodGet, groupPath+"/posts", alice, "")
	decodeJSON(t, rec, &listing)
	assert.Empty(t, listing.Posts)
}

func TestCreatePostMultipart(t *testing.T) {
	a := setupAPI(t)
	alice := a.register(t, "alice")

	rec := a.do(t, http.MethodPost, "/api/groups", alice, `{"name":"hiking"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var group models.Group
	decodeJSON(t, rec, &group)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("content", "from the trailhead"))
	part, err := w.CreateFormFile("file", "trail.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("png bytes"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/groups/"+itoa(group.ID)+"/posts", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+alice)
	res := httptest.NewRecorder()
	a.e.ServeHTTP(res, req)

	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())
	var created models.PostView
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &created))
	assert.Equal(t, "from the trailhead", created.Content)
	require.Len(t, created.MediaURLs, 1)
	assert.Contains(t, created.MediaURLs[0], "trail")
}

func TestCreatePostRejectsNonMember(t *testing.T) {
	a := setupAPI(t)
	alice := a.register(t, "alice")
	mallory := a.register(t, "mallory")

	rec := a.do(t, http.MethodPost, "/api/groups", alice, `{"name":"hiking"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var group models.Group
	decodeJSON(t, rec, &group)

	rec = a.do(t, http.MethodPost, "/api/groups/"+itoa(group.ID)+"/posts", mallory, `{"content":"hi"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestFriendsAndSearch(t *testing.T) {
	a := setupAPI(t)
	alice := a.register(t, "alice")
	bob := a.register(t, "bob")

	rec := a.do(t, http.MethodGet, "/api/users/search?q=bob", alice, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var search struct {
		Results []map[string]any `json:"results"`
	}
	decodeJSON(t, rec, &search)
	require.Len(t, search.Results, 1)
	assert.Equal(t, "bob", search.Results[0]["username"])

	bobID := itoa(uint(search.Results[0]["id"].(float64)))
	rec = a.do(t, http.MethodPost, "/api/friends/"+bobID, alice, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	// The edge reads symmetrically from both sides.
	for _, token := range []string{alice, bob} {
		rec = a.do(t, http.MethodGet, "/api/friends", token, "")
		require.Equal(t, http.StatusOK, rec.Code)
		var friends struct {
			Friends []models.User `json:"friends"`
		}
		decodeJSON(t, rec, &friends)
		assert.Len(t, friends.Friends, 1)
	}
}

func TestRegisterDeviceToken(t *testing.T) {
	a := setupAPI(t)
	alice := a.register(t, "alice")

	rec := a.do(t, http.MethodPost, "/api/push/register", alice, `{"token":"ExponentPushToken[abc]"}`)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = a.do(t, http.MethodPost, "/api/push/register", alice, `{"token":"bad","platform":"carrier-pigeon"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(t, http.MethodPost, "/api/push/register", "", `{"token":"ExponentPushToken[abc]"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func itoa(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
