package middlewares

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/tinkertanker/bitvibe-extension/auth"
	"github.com/tinkertanker/bitvibe-extension/database"
	"github.com/tinkertanker/bitvibe-extension/models"
)

const classroomContextKey = "teacher.classroom"

// extractBearer pulls the token from the Authorization header.
func extractBearer(c echo.Context) (string, error) {
	h := c.Request().Header.Get("Authorization")
	if h == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, map[string]any{"error": "MISSING_AUTH_HEADER"})
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", echo.NewHTTPError(http.StatusUnauthorized, map[string]any{"error": "INVALID_AUTH_HEADER"})
	}
	return strings.TrimSpace(parts[1]), nil
}

// RequireTeacher resolves the bearer token to a classroom by hash and
// attaches it to the context. Inactive classrooms still resolve: their
// teacher must be able to reactivate and manage them.
func RequireTeacher(store database.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := extractBearer(c)
			if err != nil {
				return err
			}

			cls, err := store.FindClassroomByTeacherHash(c.Request().Context(), auth.HashToken(token))
			if err != nil {
				c.Logger().Errorf("teacher auth: %v", err)
				return echo.NewHTTPError(http.StatusInternalServerError, map[string]any{"error": "STORE_ERROR"})
			}
			if cls == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, map[string]any{"error": "INVALID_TOKEN"})
			}

			c.Set(classroomContextKey, cls)
			return next(c)
		}
	}
}

// ClassroomFromContext returns the classroom attached by RequireTeacher.
// Only valid on routes behind that middleware.
func ClassroomFromContext(c echo.Context) *models.Classroom {
	cls, _ := c.Get(classroomContextKey).(*models.Classroom)
	return cls
}
