package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/tinkertanker/bitvibe-extension/database"
)

type JoinHandler struct {
	Store database.Store
}

func NewJoinHandler(store database.Store) *JoinHandler {
	return &JoinHandler{Store: store}
}

type joinPayload struct {
	JoinCode    string `json:"join_code" validate:"required,max=12"`
	DisplayName string `json:"display_name" validate:"required,max=60"`
}

// POST /classrooms/join
//
// Exchanges a join code for a fresh student token. An unknown code and
// an inactive classroom look the same from outside: 404. Neither path
// creates a student row.
func (h *JoinHandler) Join(c echo.Context) error {
	var req joinPayload
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{
			"error": "INVALID_PAYLOAD", "message": "request body must be JSON",
		})
	}
	req.JoinCode = strings.TrimSpace(req.JoinCode)
	req.DisplayName = strings.Join(strings.Fields(req.DisplayName), " ")
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()

	cls, err := h.Store.FindClassroomByJoinCode(ctx, req.JoinCode)
	if err != nil {
		c.Logger().Errorf("join: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]any{
			"error": "STORE_ERROR", "message": "could not look up the join code",
		})
	}
	if cls == nil {
		return echo.NewHTTPError(http.StatusNotFound, map[string]any{
			"error": "UNKNOWN_JOIN_CODE", "message": "that join code does not match an open classroom",
		})
	}

	n, err := h.Store.CountActiveStudents(ctx, cls.ID)
	if err != nil {
		c.Logger().Errorf("join: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]any{
			"error": "STORE_ERROR", "message": "could not look up the classroom",
		})
	}
	if n >= int64(cls.MaxStudents) {
		return echo.NewHTTPError(http.StatusConflict, map[string]any{
			"error": "CLASSROOM_FULL", "message": "this classroom is full, ask your teacher",
		})
	}

	student, rawToken, err := h.Store.CreateStudent(ctx, cls.ID, req.DisplayName)
	if err != nil {
		c.Logger().Errorf("join: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]any{
			"error": "JOIN_FAILED", "message": "could not join the classroom",
		})
	}

	return c.JSON(http.StatusCreated, map[string]any{
		"student_id":     student.ID,
		"student_token":  rawToken,
		"classroom_name": cls.Name,
		"request_limit":  cls.RequestLimit,
	})
}
