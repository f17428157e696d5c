package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/curriculum/internal/app/models"
	"github.com/yigit/curriculum/internal/app/repositories"
	"github.com/yigit/curriculum/internal/engine"
	"github.com/yigit/curriculum/internal/pkg/apperrors"
)

// Notes written on records created or reverted by the service
const (
	noteImported    = "Declared completed on import"
	noteBackfilled  = "Added automatically as a prerequisite on import"
	noteRevertedFmt = "Reverted: prerequisite %s is no longer passed"
)

// RecordCommand is a request to set a student's state for one course.
type RecordCommand struct {
	StudentID int64
	DegreeID  int64
	CourseID  int64
	State     models.CourseState
	Grade     *float64
	Term      string
	StartDate *time.Time
	EndDate   *time.Time
	Notes     string

	// BypassPrerequisiteCheck skips the mandatory prerequisite check on entry into PASSED
	BypassPrerequisiteCheck bool
	// AutoAdded marks a record written on the student's behalf, e.g. a backfilled prerequisite
	AutoAdded bool
	// ExpectedVersion, when non-zero, must match the record version the client last read.
	// The write is always conditional on the version loaded here, so a concurrent
	// update between load and write fails with a conflict either way.
	ExpectedVersion int64
}

// ImportCommand declares courses a student has already completed.
type ImportCommand struct {
	StudentID int64
	DegreeID  int64
	CourseIDs []int64
	Term      string
}

// ImportResult lists what an import wrote.
type ImportResult struct {
	Recorded  []models.CourseRecord `json:"recorded"`
	AutoAdded []models.CourseRecord `json:"autoAdded"`
	Unchanged []int64               `json:"unchanged"` // already PASSED
}

// ProgressOptions carries the tunables of the progress service.
type ProgressOptions struct {
	Recommend     engine.RecommendOptions
	BackfillGrade float64
}

// ProgressService tracks course records and derives validation, statistics
// and recommendations from them
type ProgressService interface {
	Records(ctx context.Context, studentID, degreeID int64) ([]models.CourseRecord, error)
	Record(ctx context.Context, cmd RecordCommand) (*models.CourseRecord, error)
	Delete(ctx context.Context, studentID, degreeID, courseID int64) error
	Validate(ctx context.Context, studentID, degreeID, courseID int64, target models.CourseState) (engine.ValidationResult, error)
	Stats(ctx context.Context, studentID, degreeID int64) (engine.Stats, error)
	Recommend(ctx context.Context, studentID, degreeID int64) (engine.Recommendation, error)
	ImportCompleted(ctx context.Context, cmd ImportCommand) (*ImportResult, error)
	InvalidateDependents(ctx context.Context, studentID, degreeID, courseID int64) ([]models.CourseRecord, error)
}

// progressServiceImpl implements the ProgressService interface
type progressServiceImpl struct {
	curricula CurriculumService
	records   repositories.RecordStore
	opts      ProgressOptions
	logger    zerolog.Logger
}

// NewProgressService creates a new progress service instance
func NewProgressService(curricula CurriculumService, records repositories.RecordStore, opts ProgressOptions, logger zerolog.Logger) ProgressService {
	return &progressServiceImpl{
		curricula: curricula,
		records:   records,
		opts:      opts,
		logger:    logger,
	}
}

// load fetches the degree graph and the student's records
func (s *progressServiceImpl) load(ctx context.Context, studentID, degreeID int64) (*engine.Graph, engine.RecordSet, error) {
	if studentID <= 0 {
		return nil, nil, apperrors.NewValidationError("studentId", "must be a positive id")
	}

	g, err := s.curricula.Graph(ctx, degreeID)
	if err != nil {
		return nil, nil, err
	}

	records, err := s.records.GetByStudent(ctx, studentID)
	if err != nil {
		s.logger.Error().Err(err).Int64("studentID", studentID).Msg("Failed to load course records")
		return nil, nil, fmt.Errorf("failed to load course records: %w", err)
	}

	return g, engine.NewRecordSet(records), nil
}

// Records returns the student's records for courses of the degree, in curriculum order
func (s *progressServiceImpl) Records(ctx context.Context, studentID, degreeID int64) ([]models.CourseRecord, error) {
	g, set, err := s.load(ctx, studentID, degreeID)
	if err != nil {
		return nil, err
	}

	out := []models.CourseRecord{}
	for _, course := range g.Courses() {
		if rec, ok := set[course.ID]; ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Record creates or updates a course record. Entry into PASSED requires every
// mandatory prerequisite to be PASSED unless the check is bypassed. Writing the
// same content again changes nothing.
func (s *progressServiceImpl) Record(ctx context.Context, cmd RecordCommand) (*models.CourseRecord, error) {
	g, set, err := s.load(ctx, cmd.StudentID, cmd.DegreeID)
	if err != nil {
		return nil, err
	}
	if _, err := g.Course(cmd.CourseID); err != nil {
		return nil, err
	}

	current, exists := set[cmd.CourseID]
	if cmd.ExpectedVersion > 0 && (!exists || current.Version != cmd.ExpectedVersion) {
		return nil, apperrors.NewConflictError(fmt.Sprintf(
			"record for course %d is at version %d, expected %d", cmd.CourseID, current.Version, cmd.ExpectedVersion))
	}

	next := models.CourseRecord{
		ID:        current.ID,
		StudentID: cmd.StudentID,
		CourseID:  cmd.CourseID,
		State:     cmd.State,
		Grade:     cmd.Grade,
		Term:      cmd.Term,
		StartDate: cmd.StartDate,
		EndDate:   cmd.EndDate,
		Notes:     cmd.Notes,
		AutoAdded: cmd.AutoAdded,
		Version:   current.Version,
		CreatedAt: current.CreatedAt,
	}
	if err := engine.CheckRecord(&next); err != nil {
		return nil, err
	}

	if next.State == models.CourseStatePassed && current.State != models.CourseStatePassed {
		if cmd.BypassPrerequisiteCheck {
			s.logger.Warn().
				Int64("studentID", cmd.StudentID).
				Int64("courseID", cmd.CourseID).
				Msg("Prerequisite check bypassed")
		} else if err := engine.CheckTransition(g, set, cmd.CourseID, next.State); err != nil {
			return nil, err
		}
	}

	if exists && current.SameContent(&next) {
		return &current, nil
	}

	saved, err := s.records.Upsert(ctx, &next)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("studentID", saved.StudentID).
		Int64("courseID", saved.CourseID).
		Str("state", string(saved.State)).
		Int64("version", saved.Version).
		Msg("Course record saved")

	return saved, nil
}

// Delete removes a record. Dependents are not touched; see InvalidateDependents.
func (s *progressServiceImpl) Delete(ctx context.Context, studentID, degreeID, courseID int64) error {
	g, err := s.curricula.Graph(ctx, degreeID)
	if err != nil {
		return err
	}
	if _, err := g.Course(courseID); err != nil {
		return err
	}

	if err := s.records.Delete(ctx, studentID, courseID); err != nil {
		return err
	}

	s.logger.Info().Int64("studentID", studentID).Int64("courseID", courseID).Msg("Course record deleted")
	return nil
}

// Validate reports whether courseID may move to target
func (s *progressServiceImpl) Validate(ctx context.Context, studentID, degreeID, courseID int64, target models.CourseState) (engine.ValidationResult, error) {
	if !target.Valid() {
		return engine.ValidationResult{}, apperrors.NewValidationError("state", "unknown state %q", target)
	}
	g, set, err := s.load(ctx, studentID, degreeID)
	if err != nil {
		return engine.ValidationResult{}, err
	}
	return engine.Validate(g, set, courseID, target)
}

func (s *progressServiceImpl) Stats(ctx context.Context, studentID, degreeID int64) (engine.Stats, error) {
	g, set, err := s.load(ctx, studentID, degreeID)
	if err != nil {
		return engine.Stats{}, err
	}
	return engine.ComputeStats(g, set), nil
}

func (s *progressServiceImpl) Recommend(ctx context.Context, studentID, degreeID int64) (engine.Recommendation, error) {
	g, set, err := s.load(ctx, studentID, degreeID)
	if err != nil {
		return engine.Recommendation{}, err
	}
	return engine.Recommend(g, set, s.opts.Recommend), nil
}

// ImportCompleted records the selected courses as PASSED and backfills their
// transitive mandatory prerequisites as auto-added PASSED records with the
// configured grade. Courses already PASSED are left alone. A selection that
// contradicts the curriculum order is rejected before anything is written.
func (s *progressServiceImpl) ImportCompleted(ctx context.Context, cmd ImportCommand) (*ImportResult, error) {
	if len(cmd.CourseIDs) == 0 {
		return nil, apperrors.NewValidationError("courseIds", "at least one course is required")
	}

	g, set, err := s.load(ctx, cmd.StudentID, cmd.DegreeID)
	if err != nil {
		return nil, err
	}

	check, err := engine.CheckBatch(g, cmd.CourseIDs)
	if err != nil {
		return nil, err
	}
	if !check.Valid {
		return nil, &engine.ContradictionError{Contradictions: check.Contradictions}
	}
	backfill, err := engine.BackfillPlan(g, cmd.CourseIDs)
	if err != nil {
		return nil, err
	}

	selected := make(map[int64]bool, len(cmd.CourseIDs))
	for _, id := range cmd.CourseIDs {
		selected[id] = true
	}

	result := &ImportResult{
		Recorded:  []models.CourseRecord{},
		AutoAdded: []models.CourseRecord{},
		Unchanged: []int64{},
	}
	var writes []*models.CourseRecord
	for _, course := range g.TopologicalOrder() {
		if !selected[course.ID] {
			continue
		}
		if set.Passed(course.ID) {
			result.Unchanged = append(result.Unchanged, course.ID)
			continue
		}
		writes = append(writes, s.passedRecord(set, cmd.StudentID, course.ID, cmd.Term, nil, noteImported, false))
	}
	recorded := len(writes)

	for _, course := range backfill {
		if set.Passed(course.ID) {
			continue
		}
		grade := s.opts.BackfillGrade
		writes = append(writes, s.passedRecord(set, cmd.StudentID, course.ID, "", &grade, noteBackfilled, true))
	}

	saved, err := s.writeAll(ctx, writes)
	if err != nil {
		return nil, err
	}
	result.Recorded = append(result.Recorded, saved[:recorded]...)
	result.AutoAdded = append(result.AutoAdded, saved[recorded:]...)

	s.logger.Info().
		Int64("studentID", cmd.StudentID).
		Int64("degreeID", cmd.DegreeID).
		Int("recorded", len(result.Recorded)).
		Int("autoAdded", len(result.AutoAdded)).
		Int("unchanged", len(result.Unchanged)).
		Msg("Completed courses imported")

	return result, nil
}

func (s *progressServiceImpl) passedRecord(set engine.RecordSet, studentID, courseID int64, term string, grade *float64, notes string, autoAdded bool) *models.CourseRecord {
	current := set[courseID]
	return &models.CourseRecord{
		ID:        current.ID,
		StudentID: studentID,
		CourseID:  courseID,
		State:     models.CourseStatePassed,
		Grade:     grade,
		Term:      term,
		Notes:     notes,
		AutoAdded: autoAdded,
		Version:   current.Version,
		CreatedAt: current.CreatedAt,
	}
}

// writeAll writes records atomically when the store supports it
func (s *progressServiceImpl) writeAll(ctx context.Context, writes []*models.CourseRecord) ([]models.CourseRecord, error) {
	if len(writes) == 0 {
		return []models.CourseRecord{}, nil
	}
	if batch, ok := s.records.(repositories.BatchRecordStore); ok {
		return batch.UpsertMany(ctx, writes)
	}

	out := make([]models.CourseRecord, 0, len(writes))
	for _, w := range writes {
		saved, err := s.records.Upsert(ctx, w)
		if err != nil {
			return nil, err
		}
		out = append(out, *saved)
	}
	return out, nil
}

// InvalidateDependents reverts to NOT_TAKEN every PASSED record among the
// transitive mandatory dependents of courseID whose prerequisites are no
// longer all passed. Grades are cleared and a note names the first missing
// prerequisite.
func (s *progressServiceImpl) InvalidateDependents(ctx context.Context, studentID, degreeID, courseID int64) ([]models.CourseRecord, error) {
	g, set, err := s.load(ctx, studentID, degreeID)
	if err != nil {
		return nil, err
	}

	invalid, err := engine.UnsatisfiedDependents(g, set, courseID)
	if err != nil {
		return nil, err
	}

	writes := make([]*models.CourseRecord, 0, len(invalid))
	for _, inv := range invalid {
		rec := set[inv.Course.ID]
		rec.State = models.CourseStateNotTaken
		rec.Grade = nil
		note := fmt.Sprintf(noteRevertedFmt, inv.Unsatisfied[0].Code)
		if rec.Notes != "" {
			note = rec.Notes + "\n" + note
		}
		rec.Notes = note
		writes = append(writes, &rec)
	}

	reverted, err := s.writeAll(ctx, writes)
	if err != nil {
		return nil, err
	}

	if len(reverted) > 0 {
		s.logger.Info().
			Int64("studentID", studentID).
			Int64("courseID", courseID).
			Int("reverted", len(reverted)).
			Msg("Dependent course records reverted")
	}

	return reverted, nil
}
