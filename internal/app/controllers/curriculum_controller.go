package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/curriculum/internal/app/models/dto"
	"github.com/yigit/curriculum/internal/app/services"
	"github.com/yigit/curriculum/internal/middleware"
)

// CurriculumController serves read-only curriculum queries
type CurriculumController struct {
	curriculumService services.CurriculumService
}

// NewCurriculumController creates a new CurriculumController
func NewCurriculumController(curriculumService services.CurriculumService) *CurriculumController {
	return &CurriculumController{
		curriculumService: curriculumService,
	}
}

// ListDegrees lists the degrees that have a curriculum
// @Summary List degrees
// @Tags curricula
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]int64}
// @Router /degrees [get]
func (c *CurriculumController) ListDegrees(ctx *gin.Context) {
	degrees, err := c.curriculumService.ListDegrees(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(degrees))
}

// GetCurriculum returns a degree's courses and totals
// @Summary Get curriculum
// @Tags curricula
// @Produce json
// @Param degreeId path int true "Degree ID"
// @Success 200 {object} dto.APIResponse{data=dto.CurriculumResponse}
// @Failure 404 {object} dto.ErrorResponse "Curriculum not found"
// @Router /degrees/{degreeId}/curriculum [get]
func (c *CurriculumController) GetCurriculum(ctx *gin.Context) {
	degreeID, ok := pathID(ctx, "degreeId")
	if !ok {
		return
	}

	g, err := c.curriculumService.Graph(ctx.Request.Context(), degreeID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewCurriculumResponse(g)))
}

// GetPrerequisites lists the direct prerequisites of a course
// @Summary Course prerequisites
// @Tags curricula
// @Produce json
// @Param degreeId path int true "Degree ID"
// @Param courseId path int true "Course ID"
// @Param kind query string false "Comma separated kinds, e.g. MANDATORY"
// @Success 200 {object} dto.APIResponse{data=[]dto.CourseResponse}
// @Router /degrees/{degreeId}/courses/{courseId}/prerequisites [get]
func (c *CurriculumController) GetPrerequisites(ctx *gin.Context) {
	degreeID, ok := pathID(ctx, "degreeId")
	if !ok {
		return
	}
	courseID, ok := pathID(ctx, "courseId")
	if !ok {
		return
	}
	kinds, ok := queryKinds(ctx)
	if !ok {
		return
	}

	courses, err := c.curriculumService.Prerequisites(ctx.Request.Context(), degreeID, courseID, kinds...)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewCourseResponses(courses)))
}

// GetDependents lists the courses that directly require a course
func (c *CurriculumController) GetDependents(ctx *gin.Context) {
	degreeID, ok := pathID(ctx, "degreeId")
	if !ok {
		return
	}
	courseID, ok := pathID(ctx, "courseId")
	if !ok {
		return
	}
	kinds, ok := queryKinds(ctx)
	if !ok {
		return
	}

	courses, err := c.curriculumService.Dependents(ctx.Request.Context(), degreeID, courseID, kinds...)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewCourseResponses(courses)))
}

// CheckBatch checks a completed-course selection against the curriculum order
// @Summary Check a course selection
// @Tags curricula
// @Accept json
// @Produce json
// @Param degreeId path int true "Degree ID"
// @Param request body dto.CheckBatchRequest true "Selected course IDs"
// @Success 200 {object} dto.APIResponse{data=dto.CheckBatchResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 404 {object} dto.ErrorResponse "Curriculum or course not found"
// @Router /degrees/{degreeId}/check-batch [post]
func (c *CurriculumController) CheckBatch(ctx *gin.Context) {
	degreeID, ok := pathID(ctx, "degreeId")
	if !ok {
		return
	}

	var req dto.CheckBatchRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	check, err := c.curriculumService.CheckBatch(ctx.Request.Context(), degreeID, req.CourseIDs)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewCheckBatchResponse(check.BatchResult, check.Backfill)))
}
