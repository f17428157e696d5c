package dto

import (
	"github.com/yigit/curriculum/internal/app/models"
	"github.com/yigit/curriculum/internal/engine"
)

// CourseResponse represents one course without its prerequisite edges
type CourseResponse struct {
	ID            int64  `json:"id" example:"2"`
	Code          string `json:"code" example:"CS2"`
	Name          string `json:"name" example:"Programming II"`
	Credits       int    `json:"credits" example:"4"`
	Semester      int    `json:"semester" example:"2"`
	TheoryHours   int    `json:"theoryHours" example:"3"`
	PracticeHours int    `json:"practiceHours" example:"2"`
}

// CurriculumCourseResponse is a course with its prerequisites
type CurriculumCourseResponse struct {
	CourseResponse
	Prerequisites []PrerequisiteEdgeResponse `json:"prerequisites"`
}

// PrerequisiteEdgeResponse is a prerequisite edge referencing the required course by id
type PrerequisiteEdgeResponse struct {
	RequiredCourseID int64                   `json:"requiredCourseId"`
	Kind             models.PrerequisiteKind `json:"kind"`
}

// CurriculumResponse describes a degree curriculum
type CurriculumResponse struct {
	ID             int64                      `json:"id"`
	DegreeID       int64                      `json:"degreeId"`
	Code           string                     `json:"code"`
	Name           string                     `json:"name"`
	TotalCredits   int                        `json:"totalCredits"`
	TotalSemesters int                        `json:"totalSemesters"`
	Courses        []CurriculumCourseResponse `json:"courses"`
}

// CheckBatchRequest lists course ids a student claims to have completed
type CheckBatchRequest struct {
	CourseIDs []int64 `json:"courseIds" binding:"required,min=1,dive,gt=0"`
}

// ContradictionResponse is a selected course whose selected prerequisite is scheduled later
type ContradictionResponse struct {
	Course       CourseResponse `json:"course"`
	Prerequisite CourseResponse `json:"prerequisite"`
}

// CheckBatchResponse is the result of a batch consistency check
type CheckBatchResponse struct {
	Valid          bool                    `json:"valid"`
	Contradictions []ContradictionResponse `json:"contradictions"`
	// Backfill lists mandatory prerequisites that an import would auto-add
	Backfill []CourseResponse `json:"backfill"`
}

// NewCourseResponse maps a course model
func NewCourseResponse(c models.Course) CourseResponse {
	return CourseResponse{
		ID:            c.ID,
		Code:          c.Code,
		Name:          c.Name,
		Credits:       c.Credits,
		Semester:      c.Semester,
		TheoryHours:   c.TheoryHours,
		PracticeHours: c.PracticeHours,
	}
}

// NewCourseResponses maps a list of course models
func NewCourseResponses(courses []models.Course) []CourseResponse {
	out := make([]CourseResponse, len(courses))
	for i, c := range courses {
		out[i] = NewCourseResponse(c)
	}
	return out
}

// NewCurriculumResponse maps a curriculum graph
func NewCurriculumResponse(g *engine.Graph) CurriculumResponse {
	c := g.Curriculum()
	resp := CurriculumResponse{
		ID:             c.ID,
		DegreeID:       c.DegreeID,
		Code:           c.Code,
		Name:           c.Name,
		TotalCredits:   c.TotalCredits(),
		TotalSemesters: c.TotalSemesters(),
		Courses:        make([]CurriculumCourseResponse, 0, g.Len()),
	}
	for _, course := range g.Courses() {
		item := CurriculumCourseResponse{
			CourseResponse: NewCourseResponse(course),
			Prerequisites:  make([]PrerequisiteEdgeResponse, 0, len(course.Prerequisites)),
		}
		for _, edge := range course.Prerequisites {
			item.Prerequisites = append(item.Prerequisites, PrerequisiteEdgeResponse{
				RequiredCourseID: edge.RequiredCourseID,
				Kind:             edge.Kind,
			})
		}
		resp.Courses = append(resp.Courses, item)
	}
	return resp
}

// NewCheckBatchResponse maps a batch result and its backfill plan
func NewCheckBatchResponse(result engine.BatchResult, backfill []models.Course) CheckBatchResponse {
	resp := CheckBatchResponse{
		Valid:          result.Valid,
		Contradictions: make([]ContradictionResponse, 0, len(result.Contradictions)),
		Backfill:       NewCourseResponses(backfill),
	}
	for _, c := range result.Contradictions {
		resp.Contradictions = append(resp.Contradictions, ContradictionResponse{
			Course:       NewCourseResponse(c.Course),
			Prerequisite: NewCourseResponse(c.Prerequisite),
		})
	}
	return resp
}
