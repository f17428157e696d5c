// Package engine holds the pure curriculum and progress computations: prerequisite
// graph queries, validation, statistics, recommendations and batch checks.
// Nothing in this package performs I/O or logging.
package engine

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
	"gonum.org/v1/gonum/graph/traverse"

	"github.com/yigit/curriculum/internal/app/models"
	"github.com/yigit/curriculum/internal/pkg/apperrors"
)

// Graph is a validated, indexed view over a curriculum's prerequisite edges.
// A Graph is read-only and safe for concurrent use.
type Graph struct {
	curriculum *models.Curriculum
	courses    []models.Course // semester asc, then code asc
	byID       map[int64]int
	byCode     map[string]int
	dependents map[int64][]models.PrerequisiteEdge
	order      []int64
	// mandatory edges only: course -> prerequisite, and the reverse
	requires *simple.DirectedGraph
	unlocks  *simple.DirectedGraph
}

// NewGraph validates the curriculum and builds its graph. It fails on duplicate
// ids or codes, non-positive credits, semesters below 1, self-loops, edges that
// reference unknown courses and cycles among ordering edges.
func NewGraph(curriculum *models.Curriculum) (*Graph, error) {
	if curriculum == nil {
		return nil, fmt.Errorf("%w: curriculum is nil", apperrors.ErrCurriculumInconsistent)
	}

	g := &Graph{
		curriculum: curriculum,
		courses:    make([]models.Course, len(curriculum.Courses)),
		byID:       make(map[int64]int, len(curriculum.Courses)),
		byCode:     make(map[string]int, len(curriculum.Courses)),
		dependents: make(map[int64][]models.PrerequisiteEdge),
		requires:   simple.NewDirectedGraph(),
		unlocks:    simple.NewDirectedGraph(),
	}
	copy(g.courses, curriculum.Courses)
	sort.SliceStable(g.courses, func(i, j int) bool {
		return lessCourse(g.courses[i], g.courses[j])
	})

	for i, course := range g.courses {
		if _, dup := g.byID[course.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate course id %d", apperrors.ErrCurriculumInconsistent, course.ID)
		}
		if _, dup := g.byCode[course.Code]; dup {
			return nil, fmt.Errorf("%w: duplicate course code %q", apperrors.ErrCurriculumInconsistent, course.Code)
		}
		if strings.TrimSpace(course.Code) == "" {
			return nil, fmt.Errorf("%w: course %d has no code", apperrors.ErrCurriculumInconsistent, course.ID)
		}
		if course.Credits <= 0 {
			return nil, fmt.Errorf("%w: course %s must have positive credits", apperrors.ErrCurriculumInconsistent, course.Code)
		}
		if course.Semester < 1 {
			return nil, fmt.Errorf("%w: course %s has semester %d", apperrors.ErrCurriculumInconsistent, course.Code, course.Semester)
		}
		g.byID[course.ID] = i
		g.byCode[course.Code] = i

		edges := make([]models.PrerequisiteEdge, len(course.Prerequisites))
		for j, edge := range course.Prerequisites {
			if edge.CourseID == 0 {
				edge.CourseID = course.ID
			}
			edges[j] = edge
		}
		g.courses[i].Prerequisites = edges
	}

	for _, course := range g.courses {
		for _, edge := range course.Prerequisites {
			if edge.CourseID != course.ID {
				return nil, fmt.Errorf("%w: edge on %s targets course %d", apperrors.ErrCurriculumInconsistent, course.Code, edge.CourseID)
			}
			if edge.RequiredCourseID == course.ID {
				return nil, fmt.Errorf("%w: course %s lists itself as prerequisite", apperrors.ErrCurriculumInconsistent, course.Code)
			}
			if _, ok := g.byID[edge.RequiredCourseID]; !ok {
				return nil, fmt.Errorf("%w: course %s requires unknown course %d", apperrors.ErrCurriculumInconsistent, course.Code, edge.RequiredCourseID)
			}
			if !edge.Kind.Valid() {
				return nil, fmt.Errorf("%w: course %s has prerequisite of kind %q", apperrors.ErrCurriculumInconsistent, course.Code, edge.Kind)
			}
			g.dependents[edge.RequiredCourseID] = append(g.dependents[edge.RequiredCourseID], edge)
		}
	}

	order, err := g.topologicalSort()
	if err != nil {
		return nil, err
	}
	g.order = order

	for _, course := range g.courses {
		g.requires.AddNode(simple.Node(course.ID))
		g.unlocks.AddNode(simple.Node(course.ID))
	}
	for _, course := range g.courses {
		for _, req := range g.mandatory(course.ID) {
			g.requires.SetEdge(g.requires.NewEdge(simple.Node(course.ID), simple.Node(req)))
			g.unlocks.SetEdge(g.unlocks.NewEdge(simple.Node(req), simple.Node(course.ID)))
		}
	}

	return g, nil
}

// ordersCourses reports whether an edge of this kind imposes an ordering.
// Co-requisites are taken together and may point at each other.
func ordersCourses(kind models.PrerequisiteKind) bool {
	return kind != models.PrerequisiteCoRequisite
}

// topologicalSort orders courses over ordering edges, each running from the
// prerequisite to the course requiring it. Ties keep curriculum order.
func (g *Graph) topologicalSort() ([]int64, error) {
	dg := simple.NewDirectedGraph()
	for _, course := range g.courses {
		dg.AddNode(simple.Node(course.ID))
	}
	for _, course := range g.courses {
		for _, edge := range course.Prerequisites {
			if ordersCourses(edge.Kind) {
				dg.SetEdge(dg.NewEdge(simple.Node(edge.RequiredCourseID), simple.Node(course.ID)))
			}
		}
	}

	sorted, err := topo.SortStabilized(dg, g.sortNodes)
	if err != nil {
		var cyclic topo.Unorderable
		if errors.As(err, &cyclic) && len(cyclic) > 0 {
			return nil, &CycleError{Path: g.cyclePath(cyclic)}
		}
		return nil, fmt.Errorf("%w: %v", apperrors.ErrCurriculumInconsistent, err)
	}

	order := make([]int64, len(sorted))
	for i, n := range sorted {
		order[i] = n.ID()
	}
	return order, nil
}

// sortNodes puts graph nodes in curriculum order.
func (g *Graph) sortNodes(nodes []graph.Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return lessCourse(g.courses[g.byID[nodes[i].ID()]], g.courses[g.byID[nodes[j].ID()]])
	})
}

// cyclePath turns the earliest cyclic component into a closed walk such as
// [A B C A]. Inside a component every course has an ordering prerequisite in
// the same component, so following them must revisit a course.
func (g *Graph) cyclePath(components topo.Unorderable) []string {
	var component []graph.Node
	for _, c := range components {
		if len(c) == 0 {
			continue
		}
		g.sortNodes(c)
		if component == nil || lessCourse(g.courses[g.byID[c[0].ID()]], g.courses[g.byID[component[0].ID()]]) {
			component = c
		}
	}

	members := make(map[int64]bool, len(component))
	for _, n := range component {
		members[n.ID()] = true
	}

	seen := make(map[int64]int)
	var walk []int64
	current := component[0].ID()
	for {
		if at, ok := seen[current]; ok {
			walk = append(walk[at:], current)
			break
		}
		seen[current] = len(walk)
		walk = append(walk, current)

		for _, edge := range g.courses[g.byID[current]].Prerequisites {
			if ordersCourses(edge.Kind) && members[edge.RequiredCourseID] {
				current = edge.RequiredCourseID
				break
			}
		}
	}

	path := make([]string, len(walk))
	for i, id := range walk {
		path[i] = g.courses[g.byID[id]].Code
	}
	return path
}

// Curriculum returns the curriculum the graph was built from.
func (g *Graph) Curriculum() *models.Curriculum {
	return g.curriculum
}

// Courses returns every course ordered by semester, then code.
func (g *Graph) Courses() []models.Course {
	out := make([]models.Course, len(g.courses))
	copy(out, g.courses)
	return out
}

// Len returns the number of courses.
func (g *Graph) Len() int {
	return len(g.courses)
}

// Has reports whether the course id belongs to the curriculum.
func (g *Graph) Has(courseID int64) bool {
	_, ok := g.byID[courseID]
	return ok
}

// Course looks up a course by id.
func (g *Graph) Course(courseID int64) (models.Course, error) {
	i, ok := g.byID[courseID]
	if !ok {
		return models.Course{}, apperrors.NewNotFoundError(apperrors.ErrCourseNotFound, "course", courseID)
	}
	return g.courses[i], nil
}

// CourseByCode looks up a course by its code.
func (g *Graph) CourseByCode(code string) (models.Course, error) {
	i, ok := g.byCode[code]
	if !ok {
		return models.Course{}, apperrors.NewNotFoundError(apperrors.ErrCourseNotFound, "course", code)
	}
	return g.courses[i], nil
}

// PrerequisitesOf returns the courses required by courseID in declaration order.
// With no kinds every edge is included.
func (g *Graph) PrerequisitesOf(courseID int64, kinds ...models.PrerequisiteKind) ([]models.Course, error) {
	course, err := g.Course(courseID)
	if err != nil {
		return nil, err
	}

	out := make([]models.Course, 0, len(course.Prerequisites))
	seen := make(map[int64]bool, len(course.Prerequisites))
	for _, edge := range course.Prerequisites {
		if !matchesKind(edge.Kind, kinds) || seen[edge.RequiredCourseID] {
			continue
		}
		seen[edge.RequiredCourseID] = true
		out = append(out, g.courses[g.byID[edge.RequiredCourseID]])
	}
	return out, nil
}

// DependentsOf returns the courses that list courseID as a prerequisite,
// ordered by semester, then code.
func (g *Graph) DependentsOf(courseID int64, kinds ...models.PrerequisiteKind) ([]models.Course, error) {
	if !g.Has(courseID) {
		return nil, apperrors.NewNotFoundError(apperrors.ErrCourseNotFound, "course", courseID)
	}

	var out []models.Course
	seen := make(map[int64]bool)
	for _, edge := range g.dependents[courseID] {
		if !matchesKind(edge.Kind, kinds) || seen[edge.CourseID] {
			continue
		}
		seen[edge.CourseID] = true
		out = append(out, g.courses[g.byID[edge.CourseID]])
	}
	sort.SliceStable(out, func(i, j int) bool { return lessCourse(out[i], out[j]) })
	return out, nil
}

// TopologicalOrder returns courses so that every course follows its
// mandatory and recommended prerequisites.
func (g *Graph) TopologicalOrder() []models.Course {
	out := make([]models.Course, len(g.order))
	for i, id := range g.order {
		out[i] = g.courses[g.byID[id]]
	}
	return out
}

// mandatory returns the ids of courseID's mandatory prerequisites. The id must exist.
func (g *Graph) mandatory(courseID int64) []int64 {
	course := g.courses[g.byID[courseID]]
	var ids []int64
	for _, edge := range course.Prerequisites {
		if edge.Kind == models.PrerequisiteMandatory {
			ids = append(ids, edge.RequiredCourseID)
		}
	}
	return ids
}

// reachable returns the courses reached from ids by following at least one
// edge of over. A start course is included only when another start reaches it.
func reachable(over *simple.DirectedGraph, ids []int64) map[int64]bool {
	reached := make(map[int64]bool)
	walker := traverse.BreadthFirst{
		Traverse: func(e graph.Edge) bool {
			reached[e.To().ID()] = true
			return true
		},
	}
	for _, id := range ids {
		walker.Walk(over, simple.Node(id), nil)
	}
	return reached
}

func matchesKind(kind models.PrerequisiteKind, kinds []models.PrerequisiteKind) bool {
	if len(kinds) == 0 {
		return true
	}
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}

func lessCourse(a, b models.Course) bool {
	if a.Semester != b.Semester {
		return a.Semester < b.Semester
	}
	return a.Code < b.Code
}
