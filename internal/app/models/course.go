package models

// PrerequisiteKind classifies a prerequisite edge
type PrerequisiteKind string

const (
	PrerequisiteMandatory   PrerequisiteKind = "MANDATORY"
	PrerequisiteRecommended PrerequisiteKind = "RECOMMENDED"
	PrerequisiteCoRequisite PrerequisiteKind = "CO_REQUISITE"
)

// Valid reports whether k is one of the known prerequisite kinds.
func (k PrerequisiteKind) Valid() bool {
	switch k {
	case PrerequisiteMandatory, PrerequisiteRecommended, PrerequisiteCoRequisite:
		return true
	}
	return false
}

// PrerequisiteEdge links a course to a course it requires.
type PrerequisiteEdge struct {
	CourseID         int64            `json:"courseId" db:"course_id"`
	RequiredCourseID int64            `json:"requiredCourseId" db:"required_course_id"`
	Kind             PrerequisiteKind `json:"kind" db:"kind"`
}

// Course represents one unit of a degree curriculum.
type Course struct {
	ID            int64  `json:"id" db:"id"`
	CurriculumID  int64  `json:"curriculumId" db:"curriculum_id"`
	Code          string `json:"code" db:"code"`
	Name          string `json:"name" db:"name"`
	Credits       int    `json:"credits" db:"credits"`
	Semester      int    `json:"semester" db:"semester"` // Suggested term ordinal, 1..N
	TheoryHours   int    `json:"theoryHours" db:"theory_hours"`
	PracticeHours int    `json:"practiceHours" db:"practice_hours"`

	// Ordered as declared by the curriculum
	Prerequisites []PrerequisiteEdge `json:"prerequisites,omitempty"`
}
