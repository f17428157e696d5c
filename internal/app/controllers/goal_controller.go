package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yigit/curriculum/internal/app/models"
	"github.com/yigit/curriculum/internal/app/models/dto"
	"github.com/yigit/curriculum/internal/app/services"
	"github.com/yigit/curriculum/internal/middleware"
	"github.com/yigit/curriculum/internal/pkg/apperrors"
)

// GoalController handles a student's academic goals
type GoalController struct {
	goalService services.GoalService
}

// NewGoalController creates a new GoalController
func NewGoalController(goalService services.GoalService) *GoalController {
	return &GoalController{
		goalService: goalService,
	}
}

// ListGoals returns every goal of the student, freshly evaluated
// @Summary List academic goals
// @Tags goals
// @Produce json
// @Security BearerAuth
// @Param studentId path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.GoalProgressResponse}
// @Router /students/{studentId}/goals [get]
func (c *GoalController) ListGoals(ctx *gin.Context) {
	studentID, ok := pathID(ctx, "studentId")
	if !ok {
		return
	}

	goals, err := c.goalService.List(ctx.Request.Context(), studentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewGoalProgressResponses(goals)))
}

// CreateGoal stores a new goal
// @Summary Create an academic goal
// @Tags goals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param studentId path int true "Student ID"
// @Param request body dto.CreateGoalRequest true "Goal data"
// @Success 201 {object} dto.APIResponse{data=dto.GoalProgressResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid goal data"
// @Router /students/{studentId}/goals [post]
func (c *GoalController) CreateGoal(ctx *gin.Context) {
	studentID, ok := pathID(ctx, "studentId")
	if !ok {
		return
	}

	var req dto.CreateGoalRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	progress, err := c.goalService.Create(ctx.Request.Context(), &models.AcademicGoal{
		StudentID:   studentID,
		DegreeID:    req.DegreeID,
		Title:       req.Title,
		Kind:        models.GoalKind(req.Kind),
		Term:        req.Term,
		TargetValue: req.TargetValue,
		Deadline:    req.Deadline,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.NewGoalProgressResponse(*progress)))
}

// GetGoal returns one goal
func (c *GoalController) GetGoal(ctx *gin.Context) {
	studentID, ok := pathID(ctx, "studentId")
	if !ok {
		return
	}
	goalID, ok := pathID(ctx, "goalId")
	if !ok {
		return
	}

	progress, err := c.goalService.Get(ctx.Request.Context(), studentID, goalID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewGoalProgressResponse(*progress)))
}

// UpdateGoal changes the title, term, target or deadline of a goal. Kind and degree are fixed.
func (c *GoalController) UpdateGoal(ctx *gin.Context) {
	studentID, ok := pathID(ctx, "studentId")
	if !ok {
		return
	}
	goalID, ok := pathID(ctx, "goalId")
	if !ok {
		return
	}

	var req dto.UpdateGoalRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	current, err := c.goalService.Get(ctx.Request.Context(), studentID, goalID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	goal := current.Goal
	goal.Title = req.Title
	goal.Term = req.Term
	goal.TargetValue = req.TargetValue
	goal.Deadline = req.Deadline

	progress, err := c.goalService.Update(ctx.Request.Context(), &goal)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewGoalProgressResponse(*progress)))
}

// DeleteGoal removes a goal
func (c *GoalController) DeleteGoal(ctx *gin.Context) {
	studentID, ok := pathID(ctx, "studentId")
	if !ok {
		return
	}
	goalID, ok := pathID(ctx, "goalId")
	if !ok {
		return
	}

	if err := c.goalService.Delete(ctx.Request.Context(), studentID, goalID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// EvaluateGoals re-evaluates the student's goals, optionally for one degree
// @Summary Evaluate academic goals
// @Tags goals
// @Produce json
// @Security BearerAuth
// @Param studentId path int true "Student ID"
// @Param degreeId query int false "Restrict to one degree"
// @Success 200 {object} dto.APIResponse{data=[]dto.GoalProgressResponse}
// @Router /students/{studentId}/goals/evaluate [get]
func (c *GoalController) EvaluateGoals(ctx *gin.Context) {
	studentID, ok := pathID(ctx, "studentId")
	if !ok {
		return
	}

	var degreeID int64
	if raw := ctx.Query("degreeId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			middleware.HandleAPIError(ctx, apperrors.NewValidationError("degreeId", "must be a positive number"))
			return
		}
		degreeID = id
	}

	goals, err := c.goalService.Evaluate(ctx.Request.Context(), studentID, degreeID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewGoalProgressResponses(goals)))
}
