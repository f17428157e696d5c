package engine

import (
	"sort"

	"github.com/yigit/curriculum/internal/app/models"
)

// SemesterStats aggregates the graded, passed courses of one term label.
type SemesterStats struct {
	Term        string  `json:"term"`
	GPA         float64 `json:"gpa"`
	CourseCount int     `json:"courseCount"`
	Credits     int     `json:"credits"`
}

// Stats summarizes a student's standing in a curriculum.
type Stats struct {
	TotalCourses      int             `json:"totalCourses"`
	TotalCredits      int             `json:"totalCredits"`
	Passed            int             `json:"passed"`
	InProgress        int             `json:"inProgress"`
	Failed            int             `json:"failed"`
	Withdrawn         int             `json:"withdrawn"`
	CreditsPassed     int             `json:"creditsPassed"`
	CreditsInProgress int             `json:"creditsInProgress"`
	GPA               float64         `json:"gpa"`
	ProgressPercent   float64         `json:"progressPercent"`
	PerSemester       []SemesterStats `json:"perSemester"`
}

type gradeSum struct {
	sum     float64
	count   int
	credits int
}

func (s gradeSum) mean() float64 {
	if s.count == 0 {
		return 0
	}
	return s.sum / float64(s.count)
}

// ComputeStats derives counts, credits, GPA and progress from the records.
// Records for courses outside the curriculum are ignored. Records are folded
// in curriculum order so equal inputs give bit-identical results.
func ComputeStats(g *Graph, records RecordSet) Stats {
	stats := Stats{
		TotalCourses: g.Len(),
		TotalCredits: g.curriculum.TotalCredits(),
		PerSemester:  []SemesterStats{},
	}

	var overall gradeSum
	terms := make(map[string]*gradeSum)

	for _, course := range g.courses {
		record, ok := records[course.ID]
		if !ok {
			continue
		}

		switch record.State {
		case models.CourseStatePassed:
			stats.Passed++
			stats.CreditsPassed += course.Credits
			if record.Grade != nil {
				overall.sum += *record.Grade
				overall.count++

				term, ok := terms[record.Term]
				if !ok {
					term = &gradeSum{}
					terms[record.Term] = term
				}
				term.sum += *record.Grade
				term.count++
				term.credits += course.Credits
			}
		case models.CourseStateInProgress:
			stats.InProgress++
			stats.CreditsInProgress += course.Credits
		case models.CourseStateFailed:
			stats.Failed++
		case models.CourseStateWithdrawn:
			stats.Withdrawn++
		}
	}

	stats.GPA = overall.mean()
	if stats.TotalCourses > 0 {
		stats.ProgressPercent = float64(stats.Passed+stats.InProgress) / float64(stats.TotalCourses) * 100
	}

	labels := make([]string, 0, len(terms))
	for label := range terms {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		t := terms[label]
		stats.PerSemester = append(stats.PerSemester, SemesterStats{
			Term:        label,
			GPA:         t.mean(),
			CourseCount: t.count,
			Credits:     t.credits,
		})
	}

	return stats
}

// SemesterGPA returns the GPA recorded for a term label, if any.
func (s Stats) SemesterGPA(term string) (float64, bool) {
	for _, sem := range s.PerSemester {
		if sem.Term == term {
			return sem.GPA, true
		}
	}
	return 0, false
}
