package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/curriculum/internal/app/models"
	"github.com/yigit/curriculum/internal/db"
	"github.com/yigit/curriculum/internal/pkg/apperrors"
	"github.com/yigit/curriculum/internal/pkg/dberrors"
	"github.com/yigit/curriculum/internal/pkg/logger"
)

var recordColumns = []string{
	"id", "student_id", "course_id", "state", "grade", "term", "start_date", "end_date",
	"notes", "auto_added", "version", "created_at", "updated_at",
}

// rowScanner is satisfied by both pgx.Row and pgx.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

// CourseRecordRepository handles course record database operations
type CourseRecordRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewCourseRecordRepository creates a new CourseRecordRepository
func NewCourseRecordRepository(db *pgxpool.Pool) *CourseRecordRepository {
	return &CourseRecordRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ BatchRecordStore = (*CourseRecordRepository)(nil)

func scanRecord(row rowScanner) (*models.CourseRecord, error) {
	rec := &models.CourseRecord{}
	err := row.Scan(
		&rec.ID, &rec.StudentID, &rec.CourseID, &rec.State, &rec.Grade, &rec.Term,
		&rec.StartDate, &rec.EndDate, &rec.Notes, &rec.AutoAdded, &rec.Version,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// GetByStudent retrieves every record of a student
func (r *CourseRecordRepository) GetByStudent(ctx context.Context, studentID int64) ([]models.CourseRecord, error) {
	sql, args, err := r.sb.Select(recordColumns...).
		From("course_records").
		Where(squirrel.Eq{"student_id": studentID}).
		OrderBy("course_id ASC").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get records SQL")
		return nil, fmt.Errorf("failed to build get records query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("studentID", studentID).Msg("Error executing get records query")
		return nil, fmt.Errorf("error querying course records: %w", err)
	}
	defer rows.Close()

	records := []models.CourseRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning course record row: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating course record rows: %w", err)
	}

	return records, nil
}

// Upsert inserts or updates the record for (StudentID, CourseID)
func (r *CourseRecordRepository) Upsert(ctx context.Context, record *models.CourseRecord) (*models.CourseRecord, error) {
	return r.upsert(ctx, r.db, record)
}

// UpsertMany writes all records in one transaction
func (r *CourseRecordRepository) UpsertMany(ctx context.Context, records []*models.CourseRecord) ([]models.CourseRecord, error) {
	saved := make([]models.CourseRecord, 0, len(records))
	err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		for _, record := range records {
			rec, err := r.upsert(ctx, tx, record)
			if err != nil {
				return err
			}
			saved = append(saved, *rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (r *CourseRecordRepository) upsert(ctx context.Context, q db.Querier, record *models.CourseRecord) (*models.CourseRecord, error) {
	values := map[string]interface{}{
		"state":      record.State,
		"grade":      record.Grade,
		"term":       record.Term,
		"start_date": record.StartDate,
		"end_date":   record.EndDate,
		"notes":      record.Notes,
		"auto_added": record.AutoAdded,
	}

	var builder squirrel.Sqlizer
	if record.Version == 0 {
		builder = r.sb.Insert("course_records").
			Columns("student_id", "course_id", "state", "grade", "term", "start_date", "end_date", "notes", "auto_added").
			Values(record.StudentID, record.CourseID, values["state"], values["grade"], values["term"],
				values["start_date"], values["end_date"], values["notes"], values["auto_added"]).
			Suffix(`ON CONFLICT ON CONSTRAINT course_records_student_course_key DO UPDATE SET
				state = EXCLUDED.state, grade = EXCLUDED.grade, term = EXCLUDED.term,
				start_date = EXCLUDED.start_date, end_date = EXCLUDED.end_date, notes = EXCLUDED.notes,
				auto_added = EXCLUDED.auto_added, version = course_records.version + 1, updated_at = NOW()
				RETURNING ` + strings.Join(recordColumns, ", "))
	} else {
		builder = r.sb.Update("course_records").
			SetMap(values).
			Set("version", squirrel.Expr("version + 1")).
			Set("updated_at", squirrel.Expr("NOW()")).
			Where(squirrel.Eq{"student_id": record.StudentID, "course_id": record.CourseID, "version": record.Version}).
			Suffix("RETURNING " + strings.Join(recordColumns, ", "))
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building upsert record SQL")
		return nil, fmt.Errorf("failed to build upsert record query: %w", err)
	}

	saved, err := scanRecord(q.QueryRow(ctx, sql, args...))
	if err != nil {
		switch {
		case dberrors.IsNoRows(err):
			return nil, apperrors.NewConflictError(fmt.Sprintf(
				"record for course %d changed since version %d", record.CourseID, record.Version))
		case dberrors.IsForeignKeyError(err):
			return nil, apperrors.NewNotFoundError(apperrors.ErrCourseNotFound, "course", record.CourseID)
		case dberrors.IsCheckViolation(err):
			return nil, apperrors.NewValidationError("record", "record for course %d violates a constraint", record.CourseID)
		}
		logger.Error().Err(err).
			Int64("studentID", record.StudentID).
			Int64("courseID", record.CourseID).
			Msg("Error executing upsert record query")
		return nil, fmt.Errorf("error saving course record: %w", err)
	}

	return saved, nil
}

// Delete removes the record for (studentID, courseID)
func (r *CourseRecordRepository) Delete(ctx context.Context, studentID, courseID int64) error {
	sql, args, err := r.sb.Delete("course_records").
		Where(squirrel.Eq{"student_id": studentID, "course_id": courseID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete record query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("studentID", studentID).Int64("courseID", courseID).Msg("Error executing delete record query")
		return fmt.Errorf("error deleting course record: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError(apperrors.ErrRecordNotFound, "course record", courseID)
	}

	return nil
}
