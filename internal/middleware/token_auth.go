package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/groupo-app/backend/internal/models"
	"github.com/groupo-app/backend/internal/repositories"
)

const userContextKey = "user"

// TokenAuthMiddleware authenticates requests with the opaque API token,
// presented either as "Authorization: Bearer <token>" or as a ?token= query
// parameter, and stores the resolved user in the request context.
func TokenAuthMiddleware(users repositories.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := ""
			if authHeader := c.Request().Header.Get("Authorization"); authHeader != "" {
				parts := strings.SplitN(authHeader, " ", 2)
				if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
					return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Authorization header format")
				}
				token = parts[1]
			} else {
				token = c.QueryParam("token")
			}
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing credentials")
			}

			user, err := users.GetByToken(token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			c.Set(userContextKey, user)
			return next(c)
		}
	}
}

// CurrentUser returns the authenticated user stored by TokenAuthMiddleware,
// or nil on unauthenticated routes.
func CurrentUser(c echo.Context) *models.User {
	user, _ := c.Get(userContextKey).(*models.User)
	return user
}
