package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academic-record-api/internal/models"
)

// RecordRepository persists academic records in PostgreSQL or SQLite.
type RecordRepository struct {
	recordQueries
	db *sqlx.DB
}

// NewRecordRepository constructs the repository.
func NewRecordRepository(db *sqlx.DB) *RecordRepository {
	return &RecordRepository{recordQueries: recordQueries{q: db}, db: db}
}

// WithinStudentTx runs fn inside a single transaction scoped to one student.
// Every read and write fn issues through the provided Records is part of the
// transaction; any error rolls all of them back. On PostgreSQL the student's
// advisory lock is held until the transaction ends, so concurrent writers for
// the same padron are serialised.
func (r *RecordRepository) WithinStudentTx(ctx context.Context, padron int64, fn func(Records) error) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin record transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if r.db.DriverName() == "postgres" {
		if _, err = tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, padron); err != nil {
			return fmt.Errorf("lock student record: %w", err)
		}
	}

	if err = fn(recordQueries{q: tx}); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit record transaction: %w", err)
	}
	return nil
}

// recordQueries implements Records over either the pool or a transaction.
// Queries use "?" placeholders rebound for the active driver.
type recordQueries struct {
	q sqlx.ExtContext
}

func (r recordQueries) FindStudent(ctx context.Context, padron int64) (*models.Student, error) {
	query := r.q.Rebind(`SELECT padron, created_at FROM students WHERE padron = ?`)
	var student models.Student
	if err := sqlx.GetContext(ctx, r.q, &student, query, padron); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find student: %w", err)
	}
	return &student, nil
}

func (r recordQueries) SaveStudent(ctx context.Context, student *models.Student) error {
	if student.CreatedAt.IsZero() {
		student.CreatedAt = time.Now().UTC()
	}
	query := r.q.Rebind(`INSERT INTO students (padron, created_at) VALUES (?, ?)
        ON CONFLICT (padron) DO NOTHING`)
	if _, err := r.q.ExecContext(ctx, query, student.Padron, student.CreatedAt); err != nil {
		return fmt.Errorf("save student: %w", err)
	}
	return nil
}

func (r recordQueries) FindCurriculumEnrollment(ctx context.Context, padron int64, curriculumID int) (*models.CurriculumEnrollment, error) {
	query := r.q.Rebind(`SELECT padron, curriculum_id, created_at FROM curriculum_enrollments WHERE padron = ? AND curriculum_id = ?`)
	var row models.CurriculumEnrollment
	if err := sqlx.GetContext(ctx, r.q, &row, query, padron, curriculumID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find curriculum enrollment: %w", err)
	}
	return &row, nil
}

func (r recordQueries) SaveCurriculumEnrollment(ctx context.Context, row *models.CurriculumEnrollment) error {
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	query := r.q.Rebind(`INSERT INTO curriculum_enrollments (padron, curriculum_id, created_at) VALUES (?, ?, ?)
        ON CONFLICT (padron, curriculum_id) DO NOTHING`)
	if _, err := r.q.ExecContext(ctx, query, row.Padron, row.CurriculumID, row.CreatedAt); err != nil {
		return fmt.Errorf("save curriculum enrollment: %w", err)
	}
	return nil
}

func (r recordQueries) ListCurriculumIDs(ctx context.Context, padron int64) ([]int, error) {
	query := r.q.Rebind(`SELECT curriculum_id FROM curriculum_enrollments WHERE padron = ? ORDER BY created_at, curriculum_id`)
	ids := []int{}
	if err := sqlx.SelectContext(ctx, r.q, &ids, query, padron); err != nil {
		return nil, fmt.Errorf("list curriculum ids: %w", err)
	}
	return ids, nil
}

func (r recordQueries) FindCourseEnrollment(ctx context.Context, padron int64, courseCode string) (*models.CourseEnrollment, error) {
	query := r.q.Rebind(`SELECT padron, course_code, enrolled_at FROM course_enrollments WHERE padron = ? AND course_code = ?`)
	var row models.CourseEnrollment
	if err := sqlx.GetContext(ctx, r.q, &row, query, padron, courseCode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find course enrollment: %w", err)
	}
	return &row, nil
}

func (r recordQueries) SaveCourseEnrollment(ctx context.Context, row *models.CourseEnrollment) error {
	if row.EnrolledAt.IsZero() {
		row.EnrolledAt = time.Now().UTC()
	}
	query := r.q.Rebind(`INSERT INTO course_enrollments (padron, course_code, enrolled_at) VALUES (?, ?, ?)
        ON CONFLICT (padron, course_code) DO NOTHING`)
	if _, err := r.q.ExecContext(ctx, query, row.Padron, row.CourseCode, row.EnrolledAt); err != nil {
		return fmt.Errorf("save course enrollment: %w", err)
	}
	return nil
}

func (r recordQueries) DeleteCourseEnrollment(ctx context.Context, row *models.CourseEnrollment) error {
	query := r.q.Rebind(`DELETE FROM course_enrollments WHERE padron = ? AND course_code = ?`)
	if _, err := r.q.ExecContext(ctx, query, row.Padron, row.CourseCode); err != nil {
		return fmt.Errorf("delete course enrollment: %w", err)
	}
	return nil
}

func (r recordQueries) ListCourseEnrollments(ctx context.Context, padron int64) ([]models.CourseEnrollment, error) {
	query := r.q.Rebind(`SELECT padron, course_code, enrolled_at FROM course_enrollments WHERE padron = ? ORDER BY enrolled_at, course_code`)
	rows := []models.CourseEnrollment{}
	if err := sqlx.SelectContext(ctx, r.q, &rows, query, padron); err != nil {
		return nil, fmt.Errorf("list course enrollments: %w", err)
	}
	return rows, nil
}

func (r recordQueries) FindCourseApproval(ctx context.Context, padron int64, courseCode string) (*models.CourseApproval, error) {
	query := r.q.Rebind(`SELECT padron, course_code, approved_at FROM course_approvals WHERE padron = ? AND course_code = ?`)
	var row models.CourseApproval
	if err := sqlx.GetContext(ctx, r.q, &row, query, padron, courseCode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find course approval: %w", err)
	}
	return &row, nil
}

func (r recordQueries) SaveCourseApproval(ctx context.Context, row *models.CourseApproval) error {
	if row.ApprovedAt.IsZero() {
		row.ApprovedAt = time.Now().UTC()
	}
	query := r.q.Rebind(`INSERT INTO course_approvals (padron, course_code, approved_at) VALUES (?, ?, ?)
        ON CONFLICT (padron, course_code) DO NOTHING`)
	if _, err := r.q.ExecContext(ctx, query, row.Padron, row.CourseCode, row.ApprovedAt); err != nil {
		return fmt.Errorf("save course approval: %w", err)
	}
	return nil
}

func (r recordQueries) ListCourseApprovals(ctx context.Context, padron int64) ([]models.CourseApproval, error) {
	query := r.q.Rebind(`SELECT padron, course_code, approved_at FROM course_approvals WHERE padron = ? ORDER BY approved_at, course_code`)
	rows := []models.CourseApproval{}
	if err := sqlx.SelectContext(ctx, r.q, &rows, query, padron); err != nil {
		return nil, fmt.Errorf("list course approvals: %w", err)
	}
	return rows, nil
}
