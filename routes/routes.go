package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/tinkertanker/bitvibe-extension/config"
	"github.com/tinkertanker/bitvibe-extension/database"
	"github.com/tinkertanker/bitvibe-extension/handlers"
	"github.com/tinkertanker/bitvibe-extension/middlewares"
)

// Register wires all HTTP routes.
func Register(e *echo.Echo, store database.Store, cfg *config.Config) {
	gen := handlers.NewGenerateHandler(store, cfg)
	cls := handlers.NewClassroomHandler(store, cfg)
	join := handlers.NewJoinHandler(store)

	// ===== Public =====
	e.GET("/health", handlers.Health)
	e.POST("/api/generate", gen.Generate)
	e.POST("/classrooms", cls.Create)
	e.POST("/classrooms/join", join.Join)

	// ===== Teacher (bearer teacher token) =====
	teacher := e.Group("/teacher", middlewares.RequireTeacher(store))
	teacher.GET("/classroom", cls.Get)
	teacher.PUT("/classroom", cls.Update)
	teacher.GET("/classroom/students", cls.Students)
	teacher.DELETE("/classroom/students/:id", cls.DeactivateStudent)
	teacher.POST("/classroom/reset-usage", cls.ResetUsage)
}
