// Package curriculumfile reads curriculum definitions and student record
// sheets written in YAML.
package curriculumfile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yigit/curriculum/internal/app/models"
	"github.com/yigit/curriculum/internal/pkg/apperrors"
	"github.com/yigit/curriculum/internal/pkg/helpers"
)

// Prerequisite references another course of the same file by code.
type Prerequisite struct {
	Code string `yaml:"code"`
	Kind string `yaml:"kind"`
}

// CourseEntry is one course of a curriculum file.
type CourseEntry struct {
	Code          string         `yaml:"code"`
	Name          string         `yaml:"name"`
	Credits       int            `yaml:"credits"`
	Semester      int            `yaml:"semester"`
	TheoryHours   int            `yaml:"theory_hours"`
	PracticeHours int            `yaml:"practice_hours"`
	Prerequisites []Prerequisite `yaml:"prerequisites"`
}

// Curriculum is the YAML shape of a degree curriculum.
type Curriculum struct {
	DegreeID int64         `yaml:"degree_id"`
	Code     string        `yaml:"code"`
	Name     string        `yaml:"name"`
	Courses  []CourseEntry `yaml:"courses"`
}

// RecordEntry is one line of a student's record sheet.
type RecordEntry struct {
	Course    string   `yaml:"course"`
	State     string   `yaml:"state"`
	Grade     *float64 `yaml:"grade"`
	Term      string   `yaml:"term"`
	StartDate string   `yaml:"start_date"`
	EndDate   string   `yaml:"end_date"`
	Notes     string   `yaml:"notes"`
}

// RecordSheet is the YAML shape of a student's records.
type RecordSheet struct {
	StudentID int64         `yaml:"student_id"`
	Records   []RecordEntry `yaml:"records"`
}

// Parse decodes a curriculum definition. Unknown keys are rejected.
func Parse(r io.Reader) (*Curriculum, error) {
	var c Curriculum
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: curriculum file is empty", apperrors.ErrValidationFailed)
		}
		return nil, fmt.Errorf("failed to parse curriculum: %w", err)
	}
	return &c, nil
}

// Load reads a curriculum definition from disk.
func Load(path string) (*Curriculum, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open curriculum file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// ToModel converts the file into a Curriculum with course ids numbered from 1
// in file order. Prerequisite codes must name courses of the same file; an
// empty kind means MANDATORY.
func (c *Curriculum) ToModel(curriculumID int64) (*models.Curriculum, error) {
	ids := make(map[string]int64, len(c.Courses))
	for i, entry := range c.Courses {
		code := strings.TrimSpace(entry.Code)
		if code == "" {
			return nil, apperrors.NewValidationError("courses.code", "course #%d has no code", i+1)
		}
		if _, dup := ids[code]; dup {
			return nil, apperrors.NewValidationError("courses.code", "duplicate course code %q", code)
		}
		ids[code] = int64(i + 1)
	}

	out := &models.Curriculum{
		ID:       curriculumID,
		DegreeID: c.DegreeID,
		Code:     c.Code,
		Name:     c.Name,
		Courses:  make([]models.Course, 0, len(c.Courses)),
	}

	for _, entry := range c.Courses {
		id := ids[strings.TrimSpace(entry.Code)]
		course := models.Course{
			ID:            id,
			CurriculumID:  curriculumID,
			Code:          strings.TrimSpace(entry.Code),
			Name:          entry.Name,
			Credits:       entry.Credits,
			Semester:      entry.Semester,
			TheoryHours:   entry.TheoryHours,
			PracticeHours: entry.PracticeHours,
		}
		for _, p := range entry.Prerequisites {
			required, ok := ids[strings.TrimSpace(p.Code)]
			if !ok {
				return nil, apperrors.NewValidationError("courses.prerequisites", "%s requires unknown course %q", course.Code, p.Code)
			}
			kind := models.PrerequisiteKind(strings.ToUpper(strings.TrimSpace(p.Kind)))
			if kind == "" {
				kind = models.PrerequisiteMandatory
			}
			if !kind.Valid() {
				return nil, apperrors.NewValidationError("courses.prerequisites.kind", "%s has unknown prerequisite kind %q", course.Code, p.Kind)
			}
			course.Prerequisites = append(course.Prerequisites, models.PrerequisiteEdge{
				CourseID:         id,
				RequiredCourseID: required,
				Kind:             kind,
			})
		}
		out.Courses = append(out.Courses, course)
	}

	return out, nil
}

// ParseRecords decodes a record sheet.
func ParseRecords(r io.Reader) (*RecordSheet, error) {
	var sheet RecordSheet
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&sheet); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse records: %w", err)
	}
	return &sheet, nil
}

// LoadRecords reads a record sheet from disk.
func LoadRecords(path string) (*RecordSheet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open records file: %w", err)
	}
	defer f.Close()
	return ParseRecords(f)
}

// CourseResolver maps course codes to ids.
type CourseResolver interface {
	CourseByCode(code string) (models.Course, error)
}

// ToModels resolves course codes and converts the sheet to records.
func (s *RecordSheet) ToModels(courses CourseResolver) ([]models.CourseRecord, error) {
	out := make([]models.CourseRecord, 0, len(s.Records))
	for _, entry := range s.Records {
		course, err := courses.CourseByCode(strings.TrimSpace(entry.Course))
		if err != nil {
			return nil, err
		}
		state, ok := models.ParseCourseState(entry.State)
		if !ok {
			return nil, apperrors.NewValidationError("records.state", "%s has unknown state %q", entry.Course, entry.State)
		}
		start, err := parseDate("records.start_date", entry.StartDate)
		if err != nil {
			return nil, err
		}
		end, err := parseDate("records.end_date", entry.EndDate)
		if err != nil {
			return nil, err
		}
		out = append(out, models.CourseRecord{
			StudentID: s.StudentID,
			CourseID:  course.ID,
			State:     state,
			Grade:     entry.Grade,
			Term:      entry.Term,
			StartDate: start,
			EndDate:   end,
			Notes:     entry.Notes,
		})
	}
	return out, nil
}

func parseDate(field, value string) (*time.Time, error) {
	t, err := helpers.ParseDate(value)
	if err != nil {
		return nil, apperrors.NewValidationError(field, "expected YYYY-MM-DD, got %q", value)
	}
	return t, nil
}
