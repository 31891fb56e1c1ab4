package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/tinkertanker/bitvibe-extension/config"
	"github.com/tinkertanker/bitvibe-extension/database"
	"github.com/tinkertanker/bitvibe-extension/middlewares"
	"github.com/tinkertanker/bitvibe-extension/models"
)

type ClassroomHandler struct {
	Store database.Store
	Cfg   *config.Config
}

func NewClassroomHandler(store database.Store, cfg *config.Config) *ClassroomHandler {
	return &ClassroomHandler{Store: store, Cfg: cfg}
}

/* ====================== DTOs ====================== */

type createClassroomPayload struct {
	Name         string `json:"name" validate:"required,max=100"`
	RequestLimit *int   `json:"request_limit" validate:"omitempty,gte=1,lte=1000"`
	MaxStudents  *int   `json:"max_students" validate:"omitempty,gte=1,lte=200"`
}

type updateClassroomPayload struct {
	Name         *string `json:"name" validate:"omitempty,max=100"`
	RequestLimit *int    `json:"request_limit" validate:"omitempty,gte=1,lte=1000"`
	MaxStudents  *int    `json:"max_students" validate:"omitempty,gte=1,lte=200"`
	Active       *bool   `json:"active"`
}

func classroomJSON(cls *models.Classroom, activeStudents int64) map[string]any {
	return map[string]any{
		"id":              cls.ID,
		"name":            cls.Name,
		"join_code":       cls.JoinCode,
		"request_limit":   cls.RequestLimit,
		"max_students":    cls.MaxStudents,
		"active":          cls.Active,
		"active_students": activeStudents,
		"created_at":      cls.CreatedAt,
	}
}

/* ====================== Handlers ====================== */

// POST /classrooms
func (h *ClassroomHandler) Create(c echo.Context) error {
	var req createClassroomPayload
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{
			"error": "INVALID_PAYLOAD", "message": "request body must be JSON",
		})
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := c.Validate(&req); err != nil {
		return err
	}

	requestLimit := h.Cfg.DefaultRequestLimit
	if req.RequestLimit != nil {
		requestLimit = *req.RequestLimit
	}
	maxStudents := h.Cfg.DefaultMaxStudents
	if req.MaxStudents != nil {
		maxStudents = *req.MaxStudents
	}

	cls, rawToken, err := h.Store.CreateClassroom(c.Request().Context(), req.Name, requestLimit, maxStudents)
	if err != nil {
		c.Logger().Errorf("classroom create: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]any{
			"error": "CREATE_FAILED", "message": "could not create the classroom",
		})
	}

	// The raw teacher token is shown exactly once; only its hash is stored.
	body := classroomJSON(cls, 0)
	body["teacher_token"] = rawToken
	return c.JSON(http.StatusCreated, body)
}

// GET /teacher/classroom
func (h *ClassroomHandler) Get(c echo.Context) error {
	cls := middlewares.ClassroomFromContext(c)
	n, err := h.Store.CountActiveStudents(c.Request().Context(), cls.ID)
	if err != nil {
		c.Logger().Errorf("classroom get: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]any{
			"error": "STORE_ERROR", "message": "could not load the classroom",
		})
	}
	return c.JSON(http.StatusOK, classroomJSON(cls, n))
}

// PUT /teacher/classroom
func (h *ClassroomHandler) Update(c echo.Context) error {
	cls := middlewares.ClassroomFromContext(c)

	var req updateClassroomPayload
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{
			"error": "INVALID_PAYLOAD", "message": "request body must be JSON",
		})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	updates := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return echo.NewHTTPError(http.StatusBadRequest, map[string]any{
				"error": "INVALID_NAME", "message": "classroom name cannot be empty",
			})
		}
		updates["name"] = name
	}
	if req.RequestLimit != nil {
		updates["request_limit"] = *req.RequestLimit
	}
	if req.MaxStudents != nil {
		updates["max_students"] = *req.MaxStudents
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}

	if _, err := h.Store.UpdateClassroom(c.Request().Context(), cls.ID, updates); err != nil {
		c.Logger().Errorf("classroom update: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]any{
			"error": "UPDATE_FAILED", "message": "could not update the classroom",
		})
	}

	updated, err := h.Store.FindClassroomByID(c.Request().Context(), cls.ID)
	if err != nil || updated == nil {
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]any{
			"error": "STORE_ERROR", "message": "could not load the classroom",
		})
	}
	n, _ := h.Store.CountActiveStudents(c.Request().Context(), cls.ID)
	return c.JSON(http.StatusOK, classroomJSON(updated, n))
}

// GET /teacher/classroom/students
func (h *ClassroomHandler) Students(c echo.Context) error {
	cls := middlewares.ClassroomFromContext(c)
	students, err := h.Store.ListStudents(c.Request().Context(), cls.ID)
	if err != nil {
		c.Logger().Errorf("classroom students: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]any{
			"error": "STORE_ERROR", "message": "could not load the students",
		})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"request_limit": cls.RequestLimit,
		"students":      students,
	})
}

// DELETE /teacher/classroom/students/:id
func (h *ClassroomHandler) DeactivateStudent(c echo.Context) error {
	cls := middlewares.ClassroomFromContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{
			"error": "INVALID_ID", "message": "student id must be a number",
		})
	}

	ok, err := h.Store.DeactivateStudent(c.Request().Context(), uint(id), cls.ID)
	if err != nil {
		c.Logger().Errorf("student deactivate: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]any{
			"error": "STORE_ERROR", "message": "could not deactivate the student",
		})
	}
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, map[string]any{
			"error": "STUDENT_NOT_FOUND", "message": "no active student with that id in your classroom",
		})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// POST /teacher/classroom/reset-usage
func (h *ClassroomHandler) ResetUsage(c echo.Context) error {
	cls := middlewares.ClassroomFromContext(c)
	if err := h.Store.ResetUsage(c.Request().Context(), cls.ID); err != nil {
		c.Logger().Errorf("usage reset: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]any{
			"error": "STORE_ERROR", "message": "could not reset usage",
		})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
