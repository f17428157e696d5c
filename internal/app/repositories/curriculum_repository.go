package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/curriculum/internal/app/models"
	"github.com/yigit/curriculum/internal/db"
	"github.com/yigit/curriculum/internal/pkg/apperrors"
	"github.com/yigit/curriculum/internal/pkg/dberrors"
	"github.com/yigit/curriculum/internal/pkg/logger"
)

// CurriculumRepository handles curriculum, course and prerequisite database operations
type CurriculumRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewCurriculumRepository creates a new CurriculumRepository
func NewCurriculumRepository(db *pgxpool.Pool) *CurriculumRepository {
	return &CurriculumRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ CurriculumStore = (*CurriculumRepository)(nil)

var courseColumns = []string{"id", "curriculum_id", "code", "name", "credits", "semester", "theory_hours", "practice_hours"}

// LoadCurriculum retrieves the curriculum of a degree with its courses and edges
func (r *CurriculumRepository) LoadCurriculum(ctx context.Context, degreeID int64) (*models.Curriculum, error) {
	sql, args, err := r.sb.Select("id", "degree_id", "code", "name").
		From("curricula").
		Where(squirrel.Eq{"degree_id": degreeID}).
		Limit(1).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get curriculum SQL")
		return nil, fmt.Errorf("failed to build get curriculum query: %w", err)
	}

	curriculum := &models.Curriculum{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(&curriculum.ID, &curriculum.DegreeID, &curriculum.Code, &curriculum.Name)
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.NewNotFoundError(apperrors.ErrCurriculumNotFound, "curriculum for degree", degreeID)
		}
		logger.Error().Err(err).Int64("degreeID", degreeID).Msg("Error scanning curriculum row")
		return nil, fmt.Errorf("error getting curriculum: %w", err)
	}

	courses, err := r.loadCourses(ctx, curriculum.ID)
	if err != nil {
		return nil, err
	}
	curriculum.Courses = courses

	return curriculum, nil
}

func (r *CurriculumRepository) loadCourses(ctx context.Context, curriculumID int64) ([]models.Course, error) {
	sql, args, err := r.sb.Select(courseColumns...).
		From("courses").
		Where(squirrel.Eq{"curriculum_id": curriculumID}).
		OrderBy("semester ASC", "code ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list courses query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("curriculumID", curriculumID).Msg("Error executing list courses query")
		return nil, fmt.Errorf("error querying courses: %w", err)
	}
	defer rows.Close()

	courses := []models.Course{}
	index := make(map[int64]int)
	for rows.Next() {
		var c models.Course
		if err := rows.Scan(&c.ID, &c.CurriculumID, &c.Code, &c.Name, &c.Credits, &c.Semester, &c.TheoryHours, &c.PracticeHours); err != nil {
			return nil, fmt.Errorf("error scanning course row: %w", err)
		}
		index[c.ID] = len(courses)
		courses = append(courses, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating course rows: %w", err)
	}

	sql, args, err = r.sb.Select("p.course_id", "p.required_course_id", "p.kind").
		From("course_prerequisites p").
		Join("courses c ON c.id = p.course_id").
		Where(squirrel.Eq{"c.curriculum_id": curriculumID}).
		OrderBy("p.course_id ASC", "p.position ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list prerequisites query: %w", err)
	}

	edgeRows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("curriculumID", curriculumID).Msg("Error executing list prerequisites query")
		return nil, fmt.Errorf("error querying prerequisites: %w", err)
	}
	defer edgeRows.Close()

	for edgeRows.Next() {
		var e models.PrerequisiteEdge
		if err := edgeRows.Scan(&e.CourseID, &e.RequiredCourseID, &e.Kind); err != nil {
			return nil, fmt.Errorf("error scanning prerequisite row: %w", err)
		}
		if i, ok := index[e.CourseID]; ok {
			courses[i].Prerequisites = append(courses[i].Prerequisites, e)
		}
	}
	if err := edgeRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating prerequisite rows: %w", err)
	}

	return courses, nil
}

// SaveCurriculum creates or replaces the curriculum of curriculum.DegreeID in a
// single transaction. Courses are matched by code; prerequisite edges in the
// input reference course ids local to the input and are remapped to stored ids.
// Courses that are no longer listed are kept so existing records stay valid,
// but lose their prerequisite edges.
func (r *CurriculumRepository) SaveCurriculum(ctx context.Context, curriculum *models.Curriculum) (*models.Curriculum, error) {
	err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		sql, args, err := r.sb.Insert("curricula").
			Columns("degree_id", "code", "name").
			Values(curriculum.DegreeID, curriculum.Code, curriculum.Name).
			Suffix("ON CONFLICT (degree_id) DO UPDATE SET code = EXCLUDED.code, name = EXCLUDED.name RETURNING id").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build upsert curriculum query: %w", err)
		}

		var curriculumID int64
		if err := tx.QueryRow(ctx, sql, args...).Scan(&curriculumID); err != nil {
			if dberrors.IsDuplicateConstraintError(err, "curricula_code_key") {
				return apperrors.NewAlreadyExistsError(fmt.Sprintf("curriculum code %s is used by another degree", curriculum.Code))
			}
			return fmt.Errorf("error saving curriculum: %w", err)
		}

		stored := make(map[int64]int64, len(curriculum.Courses))
		for _, c := range curriculum.Courses {
			sql, args, err := r.sb.Insert("courses").
				Columns("curriculum_id", "code", "name", "credits", "semester", "theory_hours", "practice_hours").
				Values(curriculumID, c.Code, c.Name, c.Credits, c.Semester, c.TheoryHours, c.PracticeHours).
				Suffix(`ON CONFLICT ON CONSTRAINT courses_curriculum_code_key DO UPDATE SET
					name = EXCLUDED.name, credits = EXCLUDED.credits, semester = EXCLUDED.semester,
					theory_hours = EXCLUDED.theory_hours, practice_hours = EXCLUDED.practice_hours
					RETURNING id`).
				ToSql()
			if err != nil {
				return fmt.Errorf("failed to build upsert course query: %w", err)
			}

			var id int64
			if err := tx.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
				if dberrors.IsCheckViolation(err) {
					return apperrors.NewValidationError("courses", "course %s violates credit or semester bounds", c.Code)
				}
				return fmt.Errorf("error saving course %s: %w", c.Code, err)
			}
			stored[c.ID] = id
		}

		sql, args, err = r.clearPrerequisites(curriculumID).ToSql()
		if err != nil {
			return fmt.Errorf("failed to build delete prerequisites query: %w", err)
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("error clearing prerequisites: %w", err)
		}

		edges := r.sb.Insert("course_prerequisites").Columns("course_id", "required_course_id", "kind", "position")
		count := 0
		for _, c := range curriculum.Courses {
			for position, e := range c.Prerequisites {
				required, ok := stored[e.RequiredCourseID]
				if !ok {
					return apperrors.NewValidationError("courses.prerequisites", "course %s requires unknown course %d", c.Code, e.RequiredCourseID)
				}
				edges = edges.Values(stored[c.ID], required, e.Kind, position)
				count++
			}
		}
		if count > 0 {
			sql, args, err := edges.ToSql()
			if err != nil {
				return fmt.Errorf("failed to build insert prerequisites query: %w", err)
			}
			if _, err := tx.Exec(ctx, sql, args...); err != nil {
				if dberrors.IsDuplicateKeyError(err) {
					return apperrors.NewValidationError("courses.prerequisites", "a prerequisite is listed twice for the same course")
				}
				return fmt.Errorf("error saving prerequisites: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		logger.Error().Err(err).Int64("degreeID", curriculum.DegreeID).Msg("Error saving curriculum")
		return nil, err
	}

	return r.LoadCurriculum(ctx, curriculum.DegreeID)
}

// clearPrerequisites deletes every edge of the curriculum, including those of
// courses the new definition no longer lists.
func (r *CurriculumRepository) clearPrerequisites(curriculumID int64) squirrel.DeleteBuilder {
	return r.sb.Delete("course_prerequisites").
		Where("course_id IN (SELECT id FROM courses WHERE curriculum_id = ?)", curriculumID)
}

// ListDegrees returns the degree ids that have a curriculum
func (r *CurriculumRepository) ListDegrees(ctx context.Context) ([]int64, error) {
	sql, args, err := r.sb.Select("degree_id").From("curricula").OrderBy("degree_id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list degrees query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying degrees: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning degree row: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
