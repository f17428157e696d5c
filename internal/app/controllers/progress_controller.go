package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/curriculum/internal/app/models"
	"github.com/yigit/curriculum/internal/app/models/dto"
	"github.com/yigit/curriculum/internal/app/services"
	"github.com/yigit/curriculum/internal/middleware"
	"github.com/yigit/curriculum/internal/pkg/apperrors"
)

// ProgressController handles a student's course records within one degree.
// Every route is mounted under /students/:studentId/degrees/:degreeId.
type ProgressController struct {
	progressService services.ProgressService
}

// NewProgressController creates a new ProgressController
func NewProgressController(progressService services.ProgressService) *ProgressController {
	return &ProgressController{
		progressService: progressService,
	}
}

func studentDegree(ctx *gin.Context) (studentID, degreeID int64, ok bool) {
	if studentID, ok = pathID(ctx, "studentId"); !ok {
		return 0, 0, false
	}
	if degreeID, ok = pathID(ctx, "degreeId"); !ok {
		return 0, 0, false
	}
	return studentID, degreeID, true
}

// GetRecords lists the student's course records
// @Summary List course records
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Param studentId path int true "Student ID"
// @Param degreeId path int true "Degree ID"
// @Success 200 {object} dto.APIResponse{data=[]models.CourseRecord}
// @Router /students/{studentId}/degrees/{degreeId}/records [get]
func (c *ProgressController) GetRecords(ctx *gin.Context) {
	studentID, degreeID, ok := studentDegree(ctx)
	if !ok {
		return
	}

	records, err := c.progressService.Records(ctx.Request.Context(), studentID, degreeID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(records))
}

// RecordCourse creates or updates the record of one course
// @Summary Record a course state
// @Tags progress
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param studentId path int true "Student ID"
// @Param degreeId path int true "Degree ID"
// @Param courseId path int true "Course ID"
// @Param request body dto.RecordCourseRequest true "Record data"
// @Success 200 {object} dto.APIResponse{data=models.CourseRecord}
// @Failure 400 {object} dto.ErrorResponse "Invalid state or grade"
// @Failure 403 {object} dto.ErrorResponse "Not the student or bypass without advisor role"
// @Failure 409 {object} dto.ErrorResponse "Version conflict"
// @Failure 422 {object} dto.ErrorResponse "Mandatory prerequisites not met"
// @Router /students/{studentId}/degrees/{degreeId}/records/{courseId} [put]
func (c *ProgressController) RecordCourse(ctx *gin.Context) {
	studentID, degreeID, ok := studentDegree(ctx)
	if !ok {
		return
	}
	courseID, ok := pathID(ctx, "courseId")
	if !ok {
		return
	}

	var req dto.RecordCourseRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	if req.BypassPrerequisiteCheck && !middleware.IsAdvisor(ctx) {
		middleware.HandleAPIError(ctx, apperrors.NewForbiddenError("only advisors may bypass the prerequisite check"))
		return
	}

	state, _ := models.ParseCourseState(req.State)
	record, err := c.progressService.Record(ctx.Request.Context(), services.RecordCommand{
		StudentID:               studentID,
		DegreeID:                degreeID,
		CourseID:                courseID,
		State:                   state,
		Grade:                   req.Grade,
		Term:                    req.Term,
		StartDate:               req.StartDate,
		EndDate:                 req.EndDate,
		Notes:                   req.Notes,
		BypassPrerequisiteCheck: req.BypassPrerequisiteCheck,
		ExpectedVersion:         req.ExpectedVersion,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(record))
}

// DeleteRecord removes the record of one course
func (c *ProgressController) DeleteRecord(ctx *gin.Context) {
	studentID, degreeID, ok := studentDegree(ctx)
	if !ok {
		return
	}
	courseID, ok := pathID(ctx, "courseId")
	if !ok {
		return
	}

	if err := c.progressService.Delete(ctx.Request.Context(), studentID, degreeID, courseID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// ValidateCourse checks whether a course may move to a state without writing anything
// @Summary Validate a transition
// @Tags progress
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ValidateCourseRequest true "Course and target state"
// @Success 200 {object} dto.APIResponse{data=dto.ValidateCourseResponse}
// @Router /students/{studentId}/degrees/{degreeId}/validate [post]
func (c *ProgressController) ValidateCourse(ctx *gin.Context) {
	studentID, degreeID, ok := studentDegree(ctx)
	if !ok {
		return
	}

	var req dto.ValidateCourseRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	state, _ := models.ParseCourseState(req.State)
	result, err := c.progressService.Validate(ctx.Request.Context(), studentID, degreeID, req.CourseID, state)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewValidateCourseResponse(result)))
}

// GetStats returns GPA, credit and progress statistics
// @Summary Progress statistics
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=engine.Stats}
// @Router /students/{studentId}/degrees/{degreeId}/stats [get]
func (c *ProgressController) GetStats(ctx *gin.Context) {
	studentID, degreeID, ok := studentDegree(ctx)
	if !ok {
		return
	}

	stats, err := c.progressService.Stats(ctx.Request.Context(), studentID, degreeID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(stats))
}

// GetRecommendations lists eligible courses grouped by semester
func (c *ProgressController) GetRecommendations(ctx *gin.Context) {
	studentID, degreeID, ok := studentDegree(ctx)
	if !ok {
		return
	}

	rec, err := c.progressService.Recommend(ctx.Request.Context(), studentID, degreeID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewRecommendationResponse(rec)))
}

// ImportCourses declares courses completed before onboarding
// @Summary Import completed courses
// @Tags progress
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ImportCoursesRequest true "Completed course IDs"
// @Success 200 {object} dto.APIResponse{data=dto.ImportCoursesResponse}
// @Failure 422 {object} dto.ErrorResponse "Selection contradicts the curriculum order"
// @Router /students/{studentId}/degrees/{degreeId}/import [post]
func (c *ProgressController) ImportCourses(ctx *gin.Context) {
	studentID, degreeID, ok := studentDegree(ctx)
	if !ok {
		return
	}

	var req dto.ImportCoursesRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	result, err := c.progressService.ImportCompleted(ctx.Request.Context(), services.ImportCommand{
		StudentID: studentID,
		DegreeID:  degreeID,
		CourseIDs: req.CourseIDs,
		Term:      req.Term,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ImportCoursesResponse{
		Recorded:  result.Recorded,
		AutoAdded: result.AutoAdded,
		Unchanged: result.Unchanged,
	}))
}

// InvalidateDependents reverts passed courses whose mandatory prerequisite
// chain through courseId is broken
func (c *ProgressController) InvalidateDependents(ctx *gin.Context) {
	studentID, degreeID, ok := studentDegree(ctx)
	if !ok {
		return
	}
	courseID, ok := pathID(ctx, "courseId")
	if !ok {
		return
	}

	reverted, err := c.progressService.InvalidateDependents(ctx.Request.Context(), studentID, degreeID, courseID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.InvalidationResponse{Reverted: reverted}))
}
