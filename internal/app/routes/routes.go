package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/curriculum/internal/app/controllers"
	"github.com/yigit/curriculum/internal/app/models"
	"github.com/yigit/curriculum/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	curriculumController *controllers.CurriculumController,
	progressController *controllers.ProgressController,
	goalController *controllers.GoalController,
	authMiddleware *middleware.AuthMiddleware,
) {
	// API version group
	v1 := router.Group("/api/v1")

	// --- Public curriculum routes ---
	degrees := v1.Group("/degrees")
	{
		degrees.GET("", curriculumController.ListDegrees)
		degrees.GET("/:degreeId/curriculum", curriculumController.GetCurriculum)
		degrees.GET("/:degreeId/courses/:courseId/prerequisites", curriculumController.GetPrerequisites)
		degrees.GET("/:degreeId/courses/:courseId/dependents", curriculumController.GetDependents)
		degrees.POST("/:degreeId/check-batch", curriculumController.CheckBatch)
	}

	// --- Student-owned routes ---
	students := v1.Group("/students/:studentId")
	students.Use(authMiddleware.JWTAuth(), authMiddleware.StudentOwnership())

	progress := students.Group("/degrees/:degreeId")
	{
		progress.GET("/records", progressController.GetRecords)
		progress.PUT("/records/:courseId", progressController.RecordCourse)
		progress.DELETE("/records/:courseId", progressController.DeleteRecord)
		progress.POST("/records/:courseId/invalidate-dependents",
			authMiddleware.RoleRequired(models.RoleInstructor), progressController.InvalidateDependents)
		progress.POST("/validate", progressController.ValidateCourse)
		progress.GET("/stats", progressController.GetStats)
		progress.GET("/recommendations", progressController.GetRecommendations)
		progress.POST("/import", progressController.ImportCourses)
	}

	goals := students.Group("/goals")
	{
		goals.GET("", goalController.ListGoals)
		goals.POST("", goalController.CreateGoal)
		goals.GET("/evaluate", goalController.EvaluateGoals)
		goals.GET("/:goalId", goalController.GetGoal)
		goals.PUT("/:goalId", goalController.UpdateGoal)
		goals.DELETE("/:goalId", goalController.DeleteGoal)
	}
}
