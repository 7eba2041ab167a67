package repository

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academic-record-api/internal/models"
	"github.com/noah-isme/academic-record-api/pkg/database"
)

func newSQLiteRecordRepository(t *testing.T) *RecordRepository {
	t.Helper()
	db, err := database.NewSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.EnsureSchema(context.Background(), db))
	return NewRecordRepository(db)
}

func TestRecordRepositorySQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRecordRepository(t)

	require.NoError(t, repo.SaveStudent(ctx, &models.Student{Padron: 100000}))
	require.NoError(t, repo.SaveStudent(ctx, &models.Student{Padron: 100000}))
	student, err := repo.FindStudent(ctx, 100000)
	require.NoError(t, err)
	require.NotNil(t, student)

	require.NoError(t, repo.SaveCurriculumEnrollment(ctx, &models.CurriculumEnrollment{Padron: 100000, CurriculumID: 1}))
	require.NoError(t, repo.SaveCurriculumEnrollment(ctx, &models.CurriculumEnrollment{Padron: 100000, CurriculumID: 1}))
	ids, err := repo.ListCurriculumIDs(ctx, 100000)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, ids)

	require.NoError(t, repo.SaveCourseEnrollment(ctx, &models.CourseEnrollment{Padron: 100000, CourseCode: "75.41"}))
	enrollment, err := repo.FindCourseEnrollment(ctx, 100000, "75.41")
	require.NoError(t, err)
	require.NotNil(t, enrollment)

	missing, err := repo.FindCourseApproval(ctx, 100000, "75.41")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, repo.DeleteCourseEnrollment(ctx, enrollment))
	require.NoError(t, repo.DeleteCourseEnrollment(ctx, enrollment))
	rows, err := repo.ListCourseEnrollments(ctx, 100000)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRecordRepositorySQLiteTransactionIsAtomic(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRecordRepository(t)
	require.NoError(t, repo.SaveCourseEnrollment(ctx, &models.CourseEnrollment{Padron: 100000, CourseCode: "75.41"}))

	boom := errors.New("boom")
	err := repo.WithinStudentTx(ctx, 100000, func(tx Records) error {
		if err := tx.SaveCourseApproval(ctx, &models.CourseApproval{Padron: 100000, CourseCode: "75.41"}); err != nil {
			return err
		}
		if err := tx.DeleteCourseEnrollment(ctx, &models.CourseEnrollment{Padron: 100000, CourseCode: "75.41"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	approvals, err := repo.ListCourseApprovals(ctx, 100000)
	require.NoError(t, err)
	assert.Empty(t, approvals)
	enrollments, err := repo.ListCourseEnrollments(ctx, 100000)
	require.NoError(t, err)
	assert.Len(t, enrollments, 1)

	err = repo.WithinStudentTx(ctx, 100000, func(tx Records) error {
		if err := tx.SaveCourseApproval(ctx, &models.CourseApproval{Padron: 100000, CourseCode: "75.41"}); err != nil {
			return err
		}
		return tx.DeleteCourseEnrollment(ctx, &models.CourseEnrollment{Padron: 100000, CourseCode: "75.41"})
	})
	require.NoError(t, err)

	approvals, err = repo.ListCourseApprovals(ctx, 100000)
	require.NoError(t, err)
	require.Len(t, approvals, 1)
	assert.Equal(t, "75.41", approvals[0].CourseCode)
	enrollments, err = repo.ListCourseEnrollments(ctx, 100000)
	require.NoError(t, err)
	assert.Empty(t, enrollments)
}

func TestRecordRepositorySQLiteSerialisesStudentTransactions(t *testing.T) {
	ctx := context.Background()
	db, err := database.NewSQLite(filepath.Join(t.TempDir(), "records.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.EnsureSchema(ctx, db))
	repo := NewRecordRepository(db)
	require.NoError(t, repo.SaveCourseEnrollment(ctx, &models.CourseEnrollment{Padron: 100000, CourseCode: "75.41"}))

	const writers = 20
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		applied int
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.WithinStudentTx(ctx, 100000, func(tx Records) error {
				approval, err := tx.FindCourseApproval(ctx, 100000, "75.41")
				if err != nil || approval != nil {
					return err
				}
				if err := tx.SaveCourseApproval(ctx, &models.CourseApproval{Padron: 100000, CourseCode: "75.41"}); err != nil {
					return err
				}
				if err := tx.DeleteCourseEnrollment(ctx, &models.CourseEnrollment{Padron: 100000, CourseCode: "75.41"}); err != nil {
					return err
				}
				mu.Lock()
				applied++
				mu.Unlock()
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, applied)
	approvals, err := repo.ListCourseApprovals(ctx, 100000)
	require.NoError(t, err)
	assert.Len(t, approvals, 1)
	enrollments, err := repo.ListCourseEnrollments(ctx, 100000)
	require.NoError(t, err)
	assert.Empty(t, enrollments)
}
