package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/groupo-app/backend/internal/middleware"
	"github.com/groupo-app/backend/internal/models"
	"github.com/groupo-app/backend/internal/repositories"
)

var apiTokenPattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

func setupAuth(t *testing.T) (*echo.Echo, *AuthHandler, repositories.UserRepository) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))

	users := repositories.NewPostgresUserRepository(db)
	return echo.New(), NewAuthHandler(users), users
}

func postJSON(e *echo.Echo, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func registerBody(username string) string {
	return `{"username":"` + username + `","password":"s3cret-pass","first_name":"Ada","last_name":"Lovelace"}`
}

func TestRegisterIssuesToken(t *testing.T) {
	e, h, _ := setupAuth(t)

	c, rec := postJSON(e, "/api/register", registerBody("ada"))
	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Regexp(t, apiTokenPattern, resp.Token)
	assert.Equal(t, "ada", resp.User.Username)
	assert.Empty(t, resp.User.Password, "password hash must not be serialized")
}

func TestRegisterDuplicateUsername(t *testing.T) {
	e, h, _ := setupAuth(t)

	c, _ := postJSON(e, "/api/register", registerBody("ada"))
	require.NoError(t, h.Register(c))

	c, _ = postJSON(e, "/api/register", registerBody("ada"))
	err := h.Register(c)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusConflict, httpErr.Code)
}

func TestRegisterValidation(t *testing.T) {
	e, h, _ := setupAuth(t)

	c, _ := postJSON(e, "/api/register", `{"username":"ada"}`)
	err := h.Register(c)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestLoginReturnsExistingToken(t *testing.T) {
	e, h, _ := setupAuth(t)

	c, rec := postJSON(e, "/api/register", registerBody("ada"))
	require.NoError(t, h.Register(c))
	var registered struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &registered))

	c, rec = postJSON(e, "/api/login", `{"username":"ada","password":"s3cret-pass"}`)
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, registered.Token, resp.Token, "login returns the token issued at registration")
}

func TestLoginWrongPassword(t *testing.T) {
	e, h, _ := setupAuth(t)

	c, _ := postJSON(e, "/api/register", registerBody("ada"))
	require.NoError(t, h.Register(c))

	for _, body := range []string{
		`{"username":"ada","password":"wrong"}`,
		`{"username":"nobody","password":"s3cret-pass"}`,
	} {
		c, _ := postJSON(e, "/api/login", body)
		err := h.Login(c)
		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
		assert.Equal(t, "Invalid credentials", httpErr.Message)
	}
}

func TestTokenAuthMiddleware(t *testing.T) {
	e, h, users := setupAuth(t)

	c, rec := postJSON(e, "/api/register", registerBody("ada"))
	require.NoError(t, h.Register(c))
	var registered struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &registered))

	e.GET("/api/whoami", func(c echo.Context) error {
		return c.String(http.StatusOK, middleware.CurrentUser(c).Username)
	}, middleware.TokenAuthMiddleware(users))

	cases := []struct {
		name   string
		header string
		query  string
		want   int
	}{
		{name: "bearer header", header: "Bearer " + registered.Token, want: http.StatusOK},
		{name: "query parameter", query: "?token=" + registered.Token, want: http.StatusOK},
		{name: "wrong scheme", header: "Basic " + registered.Token, want: http.StatusUnauthorized},
		{name: "unknown token", header: "Bearer " + strings.Repeat("0", 64), want: http.StatusUnauthorized},
		{name: "missing credentials", want: http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/whoami"+tc.query, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)
			if tc.want == http.StatusOK {
				assert.Equal(t, "ada", rec.Body.String())
			}
		})
	}
}
