// Package memory provides in-process implementations of the repository
// contracts. They back the "memory" database driver and the service tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/yigit/curriculum/internal/app/models"
	"github.com/yigit/curriculum/internal/app/repositories"
	"github.com/yigit/curriculum/internal/pkg/apperrors"
)

// NowFunc stamps created and updated times.
var NowFunc = time.Now // mockable

// Stores bundles the in-memory repositories.
func Stores() *repositories.Repositories {
	return &repositories.Repositories{
		Curricula: NewCurriculumStore(),
		Records:   NewRecordStore(),
		Goals:     NewGoalStore(),
	}
}

var (
	_ repositories.CurriculumStore  = (*CurriculumStore)(nil)
	_ repositories.BatchRecordStore = (*RecordStore)(nil)
	_ repositories.GoalStore        = (*GoalStore)(nil)
)

// CurriculumStore keeps curricula keyed by degree id.
type CurriculumStore struct {
	mutex      sync.RWMutex
	byDegree   map[int64]*models.Curriculum
	nextID     int64
	nextCourse int64
}

// NewCurriculumStore creates an empty CurriculumStore.
func NewCurriculumStore() *CurriculumStore {
	return &CurriculumStore{byDegree: make(map[int64]*models.Curriculum)}
}

// LoadCurriculum returns a copy of the degree's curriculum.
func (s *CurriculumStore) LoadCurriculum(_ context.Context, degreeID int64) (*models.Curriculum, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	c, ok := s.byDegree[degreeID]
	if !ok {
		return nil, apperrors.NewNotFoundError(apperrors.ErrCurriculumNotFound, "curriculum for degree", degreeID)
	}
	return cloneCurriculum(c), nil
}

// SaveCurriculum stores the curriculum, keeping course ids stable by code.
// Input edges reference input course ids and are remapped to stored ids.
func (s *CurriculumStore) SaveCurriculum(_ context.Context, curriculum *models.Curriculum) (*models.Curriculum, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for degreeID, other := range s.byDegree {
		if degreeID != curriculum.DegreeID && other.Code == curriculum.Code {
			return nil, apperrors.NewAlreadyExistsError(fmt.Sprintf("curriculum code %s is used by another degree", curriculum.Code))
		}
	}

	existing := s.byDegree[curriculum.DegreeID]
	saved := &models.Curriculum{
		DegreeID: curriculum.DegreeID,
		Code:     curriculum.Code,
		Name:     curriculum.Name,
	}
	byCode := make(map[string]models.Course)
	if existing != nil {
		saved.ID = existing.ID
		for _, c := range existing.Courses {
			byCode[c.Code] = c
		}
	} else {
		s.nextID++
		saved.ID = s.nextID
	}

	stored := make(map[int64]int64, len(curriculum.Courses))
	for _, c := range curriculum.Courses {
		id := byCode[c.Code].ID
		if id == 0 {
			s.nextCourse++
			id = s.nextCourse
		}
		stored[c.ID] = id
	}

	listed := make(map[string]bool, len(curriculum.Courses))
	for _, c := range curriculum.Courses {
		listed[c.Code] = true
		course := c
		course.ID = stored[c.ID]
		course.CurriculumID = saved.ID
		course.Prerequisites = make([]models.PrerequisiteEdge, 0, len(c.Prerequisites))
		seen := make(map[int64]bool, len(c.Prerequisites))
		for _, e := range c.Prerequisites {
			required, ok := stored[e.RequiredCourseID]
			if !ok {
				return nil, apperrors.NewValidationError("courses.prerequisites", "course %s requires unknown course %d", c.Code, e.RequiredCourseID)
			}
			if seen[required] {
				return nil, apperrors.NewValidationError("courses.prerequisites", "a prerequisite is listed twice for the same course")
			}
			seen[required] = true
			course.Prerequisites = append(course.Prerequisites, models.PrerequisiteEdge{
				CourseID:         course.ID,
				RequiredCourseID: required,
				Kind:             e.Kind,
			})
		}
		saved.Courses = append(saved.Courses, course)
	}
	if existing != nil {
		for _, c := range existing.Courses {
			if !listed[c.Code] {
				c.Prerequisites = nil
				saved.Courses = append(saved.Courses, c)
			}
		}
	}
	sort.SliceStable(saved.Courses, func(i, j int) bool {
		if saved.Courses[i].Semester != saved.Courses[j].Semester {
			return saved.Courses[i].Semester < saved.Courses[j].Semester
		}
		return saved.Courses[i].Code < saved.Courses[j].Code
	})

	s.byDegree[curriculum.DegreeID] = saved
	return cloneCurriculum(saved), nil
}

// ListDegrees returns the degree ids in ascending order.
func (s *CurriculumStore) ListDegrees(_ context.Context) ([]int64, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	ids := make([]int64, 0, len(s.byDegree))
	for id := range s.byDegree {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func cloneCurriculum(c *models.Curriculum) *models.Curriculum {
	out := *c
	out.Courses = make([]models.Course, len(c.Courses))
	for i, course := range c.Courses {
		course.Prerequisites = append([]models.PrerequisiteEdge(nil), course.Prerequisites...)
		out.Courses[i] = course
	}
	return &out
}

type recordKey struct {
	student int64
	course  int64
}

// RecordStore keeps course records keyed by (student, course).
type RecordStore struct {
	mutex  sync.RWMutex
	t      map[recordKey]models.CourseRecord
	nextID int64
}

// NewRecordStore creates an empty RecordStore.
func NewRecordStore() *RecordStore {
	return &RecordStore{t: make(map[recordKey]models.CourseRecord)}
}

// GetByStudent returns the student's records ordered by course id.
func (s *RecordStore) GetByStudent(_ context.Context, studentID int64) ([]models.CourseRecord, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := []models.CourseRecord{}
	for key, rec := range s.t {
		if key.student == studentID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CourseID < out[j].CourseID })
	return out, nil
}

// Upsert writes one record. See repositories.RecordStore for version semantics.
func (s *RecordStore) Upsert(_ context.Context, record *models.CourseRecord) (*models.CourseRecord, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := s.check(record); err != nil {
		return nil, err
	}
	saved := s.apply(record)
	return &saved, nil
}

// UpsertMany writes every record or none of them.
func (s *RecordStore) UpsertMany(_ context.Context, records []*models.CourseRecord) ([]models.CourseRecord, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, record := range records {
		if err := s.check(record); err != nil {
			return nil, err
		}
	}
	out := make([]models.CourseRecord, 0, len(records))
	for _, record := range records {
		out = append(out, s.apply(record))
	}
	return out, nil
}

func (s *RecordStore) check(record *models.CourseRecord) error {
	if record.Version == 0 {
		return nil
	}
	current, ok := s.t[recordKey{record.StudentID, record.CourseID}]
	if !ok || current.Version != record.Version {
		return apperrors.NewConflictError("course record changed since it was read")
	}
	return nil
}

func (s *RecordStore) apply(record *models.CourseRecord) models.CourseRecord {
	key := recordKey{record.StudentID, record.CourseID}
	now := NowFunc()

	saved := *record
	if current, ok := s.t[key]; ok {
		saved.ID = current.ID
		saved.CreatedAt = current.CreatedAt
		saved.Version = current.Version + 1
	} else {
		s.nextID++
		saved.ID = s.nextID
		saved.CreatedAt = now
		saved.Version = 1
	}
	saved.UpdatedAt = now
	if record.Grade != nil {
		grade := *record.Grade
		saved.Grade = &grade
	}

	s.t[key] = saved
	return saved
}

// Delete removes the record for (studentID, courseID).
func (s *RecordStore) Delete(_ context.Context, studentID, courseID int64) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	key := recordKey{studentID, courseID}
	if _, ok := s.t[key]; !ok {
		return apperrors.NewNotFoundError(apperrors.ErrRecordNotFound, "course record", courseID)
	}
	delete(s.t, key)
	return nil
}

// GoalStore keeps academic goals keyed by id.
type GoalStore struct {
	mutex  sync.RWMutex
	t      map[int64]models.AcademicGoal
	nextID int64
}

// NewGoalStore creates an empty GoalStore.
func NewGoalStore() *GoalStore {
	return &GoalStore{t: make(map[int64]models.AcademicGoal)}
}

func (s *GoalStore) Create(_ context.Context, goal *models.AcademicGoal) (*models.AcademicGoal, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.nextID++
	now := NowFunc()
	saved := *goal
	saved.ID = s.nextID
	saved.CreatedAt = now
	saved.UpdatedAt = now
	s.t[saved.ID] = saved
	return &saved, nil
}

func (s *GoalStore) GetByID(_ context.Context, id int64) (*models.AcademicGoal, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	goal, ok := s.t[id]
	if !ok {
		return nil, apperrors.NewNotFoundError(apperrors.ErrGoalNotFound, "goal", id)
	}
	return &goal, nil
}

func (s *GoalStore) ListByStudent(_ context.Context, studentID int64) ([]models.AcademicGoal, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := []models.AcademicGoal{}
	for _, goal := range s.t {
		if goal.StudentID == studentID {
			out = append(out, goal)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *GoalStore) Update(_ context.Context, goal *models.AcademicGoal) (*models.AcademicGoal, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	current, ok := s.t[goal.ID]
	if !ok {
		return nil, apperrors.NewNotFoundError(apperrors.ErrGoalNotFound, "goal", goal.ID)
	}
	saved := *goal
	saved.StudentID = current.StudentID
	saved.DegreeID = current.DegreeID
	saved.CreatedAt = current.CreatedAt
	saved.UpdatedAt = NowFunc()
	s.t[saved.ID] = saved
	return &saved, nil
}

func (s *GoalStore) Delete(_ context.Context, id int64) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.t[id]; !ok {
		return apperrors.NewNotFoundError(apperrors.ErrGoalNotFound, "goal", id)
	}
	delete(s.t, id)
	return nil
}
