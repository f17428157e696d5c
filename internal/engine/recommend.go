package engine

import (
	"strings"

	"github.com/yigit/curriculum/internal/app/models"
)

// DefaultAdvancedThreshold is the semester ordinal beyond which a course counts as advanced.
const DefaultAdvancedThreshold = 6

// DefaultElectiveMarkers are matched case-insensitively against course names.
var DefaultElectiveMarkers = []string{"elective", "electivo", "seçmeli"}

// RecommendOptions tunes the presentation views of a recommendation.
type RecommendOptions struct {
	AdvancedThreshold int
	ElectiveMarkers   []string
}

func (o RecommendOptions) withDefaults() RecommendOptions {
	if o.AdvancedThreshold <= 0 {
		o.AdvancedThreshold = DefaultAdvancedThreshold
	}
	if len(o.ElectiveMarkers) == 0 {
		o.ElectiveMarkers = DefaultElectiveMarkers
	}
	return o
}

// SemesterGroup holds eligible courses that share a suggested semester.
type SemesterGroup struct {
	Semester int             `json:"semester"`
	Courses  []models.Course `json:"courses"`
}

// LockedCourse is a course the student still needs but cannot take yet.
type LockedCourse struct {
	Course  models.Course   `json:"course"`
	Missing []models.Course `json:"missing"`
}

// Recommendation lists what a student may take next.
type Recommendation struct {
	Eligible   []models.Course `json:"eligible"`
	BySemester []SemesterGroup `json:"bySemester"`
	NextTerm   *SemesterGroup  `json:"nextTerm,omitempty"`
	Electives  []models.Course `json:"electives"`
	Advanced   []models.Course `json:"advanced"`
	Locked     []LockedCourse  `json:"locked"`
}

// Eligible returns the courses that are neither passed nor in progress and whose
// mandatory prerequisites are all passed, ordered by semester, then code.
func Eligible(g *Graph, records RecordSet) []models.Course {
	out := []models.Course{}
	for _, course := range g.courses {
		if ok, _ := eligible(g, records, course.ID); ok {
			out = append(out, course)
		}
	}
	return out
}

// eligible also reports the unmet mandatory prerequisites of a course that is still open.
func eligible(g *Graph, records RecordSet, courseID int64) (bool, []int64) {
	switch records.StateOf(courseID) {
	case models.CourseStatePassed, models.CourseStateInProgress:
		return false, nil
	}
	var missing []int64
	for _, id := range g.mandatory(courseID) {
		if !records.Passed(id) {
			missing = append(missing, id)
		}
	}
	return len(missing) == 0, missing
}

// Recommend groups eligible courses by semester and derives the elective,
// advanced and locked views.
func Recommend(g *Graph, records RecordSet, opts RecommendOptions) Recommendation {
	opts = opts.withDefaults()

	rec := Recommendation{
		Eligible:   []models.Course{},
		BySemester: []SemesterGroup{},
		Electives:  []models.Course{},
		Advanced:   []models.Course{},
		Locked:     []LockedCourse{},
	}

	for _, course := range g.courses {
		ok, missing := eligible(g, records, course.ID)
		if !ok {
			if len(missing) > 0 {
				locked := LockedCourse{Course: course, Missing: make([]models.Course, 0, len(missing))}
				for _, id := range dedupe(missing) {
					c, _ := g.Course(id)
					locked.Missing = append(locked.Missing, c)
				}
				rec.Locked = append(rec.Locked, locked)
			}
			continue
		}

		rec.Eligible = append(rec.Eligible, course)

		// g.courses is sorted by semester, so groups only ever grow at the tail
		last := len(rec.BySemester) - 1
		if last < 0 || rec.BySemester[last].Semester != course.Semester {
			rec.BySemester = append(rec.BySemester, SemesterGroup{Semester: course.Semester})
			last++
		}
		rec.BySemester[last].Courses = append(rec.BySemester[last].Courses, course)

		if IsElective(course, opts.ElectiveMarkers) {
			rec.Electives = append(rec.Electives, course)
		}
		if course.Semester > opts.AdvancedThreshold {
			rec.Advanced = append(rec.Advanced, course)
		}
	}

	if len(rec.BySemester) > 0 {
		next := rec.BySemester[0]
		rec.NextTerm = &next
	}

	return rec
}

// IsElective reports whether the course name contains any of the markers.
func IsElective(course models.Course, markers []string) bool {
	name := strings.ToLower(course.Name)
	for _, marker := range markers {
		if marker != "" && strings.Contains(name, strings.ToLower(marker)) {
			return true
		}
	}
	return false
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
