package engine

import (
	"github.com/yigit/curriculum/internal/app/models"
)

// Contradiction is a selected course whose selected prerequisite is scheduled later.
type Contradiction struct {
	Course       models.Course `json:"course"`
	Prerequisite models.Course `json:"prerequisite"`
}

// BatchResult is the outcome of CheckBatch.
type BatchResult struct {
	Valid          bool            `json:"valid"`
	Contradictions []Contradiction `json:"contradictions"`
}

// CheckBatch looks for structural contradictions in a set of courses a student
// claims to have completed: a pair where both courses are selected and the
// prerequisite's semester is later than the course's. It does not require the
// prerequisites of a selected course to be selected too.
func CheckBatch(g *Graph, selected []int64) (BatchResult, error) {
	chosen, err := selection(g, selected)
	if err != nil {
		return BatchResult{}, err
	}

	result := BatchResult{Valid: true, Contradictions: []Contradiction{}}
	for _, course := range g.courses {
		if !chosen[course.ID] {
			continue
		}
		seen := make(map[int64]bool)
		for _, edge := range course.Prerequisites {
			if !chosen[edge.RequiredCourseID] || seen[edge.RequiredCourseID] {
				continue
			}
			seen[edge.RequiredCourseID] = true

			prereq, _ := g.Course(edge.RequiredCourseID)
			if prereq.Semester > course.Semester {
				result.Contradictions = append(result.Contradictions, Contradiction{Course: course, Prerequisite: prereq})
			}
		}
	}
	result.Valid = len(result.Contradictions) == 0

	return result, nil
}

// BackfillPlan returns the mandatory prerequisites, followed transitively, of the
// selected courses that are not selected themselves. They are ordered so every
// course follows its own prerequisites.
func BackfillPlan(g *Graph, selected []int64) ([]models.Course, error) {
	chosen, err := selection(g, selected)
	if err != nil {
		return nil, err
	}

	needed := reachable(g.requires, selected)
	for id := range chosen {
		delete(needed, id)
	}

	plan := []models.Course{}
	for _, id := range g.order {
		if needed[id] {
			c, _ := g.Course(id)
			plan = append(plan, c)
		}
	}
	return plan, nil
}

func selection(g *Graph, ids []int64) (map[int64]bool, error) {
	chosen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if !g.Has(id) {
			_, err := g.Course(id)
			return nil, err
		}
		chosen[id] = true
	}
	return chosen, nil
}
