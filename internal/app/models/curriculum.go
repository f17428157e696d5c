package models

// Curriculum is the ordered set of courses that make up one degree program.
// It is treated as immutable once loaded.
type Curriculum struct {
	ID       int64    `json:"id" db:"id"`
	DegreeID int64    `json:"degreeId" db:"degree_id"`
	Code     string   `json:"code" db:"code"`
	Name     string   `json:"name" db:"name"`
	Courses  []Course `json:"courses"`
}

// TotalCredits sums the credit weight of every course.
func (c *Curriculum) TotalCredits() int {
	total := 0
	for _, course := range c.Courses {
		total += course.Credits
	}
	return total
}

// TotalSemesters returns the highest semester ordinal used by any course.
func (c *Curriculum) TotalSemesters() int {
	max := 0
	for _, course := range c.Courses {
		if course.Semester > max {
			max = course.Semester
		}
	}
	return max
}
