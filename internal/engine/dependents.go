package engine

import (
	"github.com/yigit/curriculum/internal/app/models"
)

// Invalidation is a PASSED course whose mandatory prerequisites are no longer all passed.
type Invalidation struct {
	Course      models.Course   `json:"course"`
	Unsatisfied []models.Course `json:"unsatisfied"`
}

// UnsatisfiedDependents finds PASSED records that would lose their standing if
// prerequisite rules were enforced retroactively. Reverting one course can
// invalidate courses that depend on it, so the check cascades in topological
// order. With roots, only transitive mandatory dependents of those courses are
// considered. Nothing is changed; callers decide whether to revert.
func UnsatisfiedDependents(g *Graph, records RecordSet, roots ...int64) ([]Invalidation, error) {
	var scope map[int64]bool
	if len(roots) > 0 {
		for _, id := range roots {
			if _, err := g.Course(id); err != nil {
				return nil, err
			}
		}
		scope = reachable(g.unlocks, roots)
	}

	passed := make(map[int64]bool)
	for id, r := range records {
		if r.State == models.CourseStatePassed {
			passed[id] = true
		}
	}

	out := []Invalidation{}
	for _, id := range g.order {
		if !passed[id] || (scope != nil && !scope[id]) {
			continue
		}
		var unsatisfied []models.Course
		for _, req := range g.mandatory(id) {
			if !passed[req] {
				c, _ := g.Course(req)
				unsatisfied = append(unsatisfied, c)
			}
		}
		if len(unsatisfied) == 0 {
			continue
		}
		delete(passed, id)
		course, _ := g.Course(id)
		out = append(out, Invalidation{Course: course, Unsatisfied: unsatisfied})
	}

	return out, nil
}
