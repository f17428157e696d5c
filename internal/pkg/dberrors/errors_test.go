package dberrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestClassifiers(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505", ConstraintName: "course_records_student_course_key"}
	fk := &pgconn.PgError{Code: "23503"}
	check := &pgconn.PgError{Code: "23514"}

	tests := []struct {
		name string
		err  error
		fn   func(error) bool
		want bool
	}{
		{"duplicate key", unique, IsDuplicateKeyError, true},
		{"wrapped duplicate key", fmt.Errorf("insert: %w", unique), IsDuplicateKeyError, true},
		{"foreign key is not duplicate", fk, IsDuplicateKeyError, false},
		{"foreign key", fk, IsForeignKeyError, true},
		{"check violation", check, IsCheckViolation, true},
		{"serialization", &pgconn.PgError{Code: "40001"}, IsSerializationFailure, true},
		{"plain error", errors.New("boom"), IsCheckViolation, false},
		{"no rows", fmt.Errorf("get: %w", pgx.ErrNoRows), IsNoRows, true},
		{"nil", nil, IsNoRows, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.fn(tt.err))
		})
	}
}

func TestIsDuplicateConstraintError(t *testing.T) {
	err := &pgconn.PgError{Code: "23505", ConstraintName: "courses_curriculum_code_key"}

	assert.True(t, IsDuplicateConstraintError(err, "courses_curriculum_code_key"))
	assert.False(t, IsDuplicateConstraintError(err, "curricula_degree_id_key"))
}
