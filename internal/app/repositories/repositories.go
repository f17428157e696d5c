package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/curriculum/internal/app/models"
)

// CurriculumProvider loads a degree's curriculum with its courses and
// prerequisite edges. Unknown degrees yield apperrors.ErrCurriculumNotFound.
type CurriculumProvider interface {
	LoadCurriculum(ctx context.Context, degreeID int64) (*models.Curriculum, error)
}

// CurriculumWriter stores curricula loaded from files.
type CurriculumWriter interface {
	SaveCurriculum(ctx context.Context, curriculum *models.Curriculum) (*models.Curriculum, error)
}

// CurriculumCatalog lists the degrees that have a stored curriculum.
type CurriculumCatalog interface {
	ListDegrees(ctx context.Context) ([]int64, error)
}

// CurriculumStore is the full curriculum persistence contract.
type CurriculumStore interface {
	CurriculumProvider
	CurriculumWriter
	CurriculumCatalog
}

// RecordStore persists course records, at most one per (student, course).
//
// Upsert treats record.Version as the expected stored version: zero writes
// unconditionally, any other value updates only when it matches and fails
// with apperrors.ErrConflict otherwise. The returned record carries the new
// version and timestamps.
type RecordStore interface {
	GetByStudent(ctx context.Context, studentID int64) ([]models.CourseRecord, error)
	Upsert(ctx context.Context, record *models.CourseRecord) (*models.CourseRecord, error)
	Delete(ctx context.Context, studentID, courseID int64) error
}

// BatchRecordStore is implemented by stores that can write several records
// atomically. Either every record is written or none is.
type BatchRecordStore interface {
	RecordStore
	UpsertMany(ctx context.Context, records []*models.CourseRecord) ([]models.CourseRecord, error)
}

// GoalStore persists academic goals.
type GoalStore interface {
	Create(ctx context.Context, goal *models.AcademicGoal) (*models.AcademicGoal, error)
	GetByID(ctx context.Context, id int64) (*models.AcademicGoal, error)
	ListByStudent(ctx context.Context, studentID int64) ([]models.AcademicGoal, error)
	Update(ctx context.Context, goal *models.AcademicGoal) (*models.AcademicGoal, error)
	Delete(ctx context.Context, id int64) error
}

// Repositories holds all the repository instances
type Repositories struct {
	Curricula CurriculumStore
	Records   RecordStore
	Goals     GoalStore
}

// NewRepositories initializes the PostgreSQL repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		Curricula: NewCurriculumRepository(db),
		Records:   NewCourseRecordRepository(db),
		Goals:     NewGoalRepository(db),
	}
}
