package dto

import (
	"time"

	"github.com/yigit/curriculum/internal/app/models"
	"github.com/yigit/curriculum/internal/engine"
)

// RecordCourseRequest sets the state of one course for a student
type RecordCourseRequest struct {
	State     string     `json:"state" binding:"required" example:"PASSED"`
	Grade     *float64   `json:"grade" example:"15.5"`
	Term      string     `json:"term" binding:"max=32" example:"2024-1"`
	StartDate *time.Time `json:"startDate"`
	EndDate   *time.Time `json:"endDate"`
	Notes     string     `json:"notes" binding:"max=2000"`
	// Only advisors may bypass the prerequisite check
	BypassPrerequisiteCheck bool `json:"bypassPrerequisiteCheck"`
	// ExpectedVersion is the version the client last read; 0 checks only against the version the server loads
	ExpectedVersion int64 `json:"expectedVersion" binding:"gte=0"`
}

// ValidateCourseRequest asks whether a course may move to a state
type ValidateCourseRequest struct {
	CourseID int64  `json:"courseId" binding:"required,gt=0" example:"2"`
	State    string `json:"state" binding:"required" example:"PASSED"`
}

// SuggestionResponse is a remediation hint for a missing prerequisite
type SuggestionResponse struct {
	Course  CourseResponse `json:"course"`
	Message string         `json:"message"`
}

// ValidateCourseResponse is the result of a prerequisite check
type ValidateCourseResponse struct {
	OK          bool                 `json:"ok"`
	Missing     []CourseResponse     `json:"missing"`
	Suggestions []SuggestionResponse `json:"suggestions"`
}

// SemesterGroupResponse holds eligible courses of one suggested semester
type SemesterGroupResponse struct {
	Semester int              `json:"semester"`
	Courses  []CourseResponse `json:"courses"`
}

// LockedCourseResponse is a course blocked by unmet mandatory prerequisites
type LockedCourseResponse struct {
	Course  CourseResponse   `json:"course"`
	Missing []CourseResponse `json:"missing"`
}

// RecommendationResponse lists what a student may take next
type RecommendationResponse struct {
	NextTerm   *SemesterGroupResponse  `json:"nextTerm,omitempty"`
	BySemester []SemesterGroupResponse `json:"bySemester"`
	Electives  []CourseResponse        `json:"electives"`
	Advanced   []CourseResponse        `json:"advanced"`
	Locked     []LockedCourseResponse  `json:"locked"`
}

// ImportCoursesRequest lists course ids completed before onboarding
type ImportCoursesRequest struct {
	CourseIDs []int64 `json:"courseIds" binding:"required,min=1,dive,gt=0"`
	Term      string  `json:"term" binding:"max=32"`
}

// ImportCoursesResponse reports what an onboarding import wrote
type ImportCoursesResponse struct {
	Recorded  []models.CourseRecord `json:"recorded"`
	AutoAdded []models.CourseRecord `json:"autoAdded"`
	// Unchanged holds ids that were already passed
	Unchanged []int64 `json:"unchanged"`
}

// InvalidationResponse lists records reverted by dependent invalidation
type InvalidationResponse struct {
	Reverted []models.CourseRecord `json:"reverted"`
}

// NewValidateCourseResponse maps a validation result
func NewValidateCourseResponse(result engine.ValidationResult) ValidateCourseResponse {
	resp := ValidateCourseResponse{
		OK:          result.OK,
		Missing:     NewCourseResponses(result.Missing),
		Suggestions: make([]SuggestionResponse, 0, len(result.Missing)),
	}
	for _, s := range engine.SuggestionsFor(result.Missing) {
		resp.Suggestions = append(resp.Suggestions, SuggestionResponse{
			Course:  NewCourseResponse(s.Course),
			Message: s.Message,
		})
	}
	return resp
}

// NewRecommendationResponse maps a recommendation
func NewRecommendationResponse(rec engine.Recommendation) RecommendationResponse {
	resp := RecommendationResponse{
		BySemester: make([]SemesterGroupResponse, 0, len(rec.BySemester)),
		Electives:  NewCourseResponses(rec.Electives),
		Advanced:   NewCourseResponses(rec.Advanced),
		Locked:     make([]LockedCourseResponse, 0, len(rec.Locked)),
	}
	for _, group := range rec.BySemester {
		resp.BySemester = append(resp.BySemester, SemesterGroupResponse{
			Semester: group.Semester,
			Courses:  NewCourseResponses(group.Courses),
		})
	}
	if len(resp.BySemester) > 0 {
		next := resp.BySemester[0]
		resp.NextTerm = &next
	}
	for _, locked := range rec.Locked {
		resp.Locked = append(resp.Locked, LockedCourseResponse{
			Course:  NewCourseResponse(locked.Course),
			Missing: NewCourseResponses(locked.Missing),
		})
	}
	return resp
}
