package repository

import (
	"context"

	"github.com/noah-isme/academic-record-api/internal/models"
)

// Records is the per-student persistence boundary. Find methods return
// (nil, nil) when the row is absent; Save methods are upserts keyed by the
// natural key; Delete methods are safe on absent rows. Implementations hold
// no business rules.
type Records interface {
	FindStudent(ctx context.Context, padron int64) (*models.Student, error)
	SaveStudent(ctx context.Context, student *models.Student) error

	FindCurriculumEnrollment(ctx context.Context, padron int64, curriculumID int) (*models.CurriculumEnrollment, error)
	SaveCurriculumEnrollment(ctx context.Context, row *models.CurriculumEnrollment) error
	ListCurriculumIDs(ctx context.Context, padron int64) ([]int, error)

	FindCourseEnrollment(ctx context.Context, padron int64, courseCode string) (*models.CourseEnrollment, error)
	SaveCourseEnrollment(ctx context.Context, row *models.CourseEnrollment) error
	DeleteCourseEnrollment(ctx context.Context, row *models.CourseEnrollment) error
	ListCourseEnrollments(ctx context.Context, padron int64) ([]models.CourseEnrollment, error)

	FindCourseApproval(ctx context.Context, padron int64, courseCode string) (*models.CourseApproval, error)
	SaveCourseApproval(ctx context.Context, row *models.CourseApproval) error
	ListCourseApprovals(ctx context.Context, padron int64) ([]models.CourseApproval, error)
}
