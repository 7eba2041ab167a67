package repository

import (
	"context"
	"sync"
	"time"

	"github.com/noah-isme/academic-record-api/internal/models"
)

// MemoryRecordRepository is an in-process Records implementation used for
// tests and catalog-only deployments. Transactions work on a copy of the
// state that replaces the live state only when fn succeeds.
type MemoryRecordRepository struct {
	mu    sync.RWMutex
	state *memoryState
}

// NewMemoryRecordRepository returns an empty store.
func NewMemoryRecordRepository() *MemoryRecordRepository {
	return &MemoryRecordRepository{state: newMemoryState()}
}

// WithinStudentTx applies fn atomically. Transactions are serialised across
// all students.
func (r *MemoryRecordRepository) WithinStudentTx(ctx context.Context, padron int64, fn func(Records) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	draft := r.state.clone()
	if err := fn(draft); err != nil {
		return err
	}
	r.state = draft
	return nil
}

func (r *MemoryRecordRepository) FindStudent(ctx context.Context, padron int64) (*models.Student, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.FindStudent(ctx, padron)
}

func (r *MemoryRecordRepository) SaveStudent(ctx context.Context, student *models.Student) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.SaveStudent(ctx, student)
}

func (r *MemoryRecordRepository) FindCurriculumEnrollment(ctx context.Context, padron int64, curriculumID int) (*models.CurriculumEnrollment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.FindCurriculumEnrollment(ctx, padron, curriculumID)
}

func (r *MemoryRecordRepository) SaveCurriculumEnrollment(ctx context.Context, row *models.CurriculumEnrollment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.SaveCurriculumEnrollment(ctx, row)
}

func (r *MemoryRecordRepository) ListCurriculumIDs(ctx context.Context, padron int64) ([]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.ListCurriculumIDs(ctx, padron)
}

func (r *MemoryRecordRepository) FindCourseEnrollment(ctx context.Context, padron int64, courseCode string) (*models.CourseEnrollment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.FindCourseEnrollment(ctx, padron, courseCode)
}

func (r *MemoryRecordRepository) SaveCourseEnrollment(ctx context.Context, row *models.CourseEnrollment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.SaveCourseEnrollment(ctx, row)
}

func (r *MemoryRecordRepository) DeleteCourseEnrollment(ctx context.Context, row *models.CourseEnrollment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.DeleteCourseEnrollment(ctx, row)
}

func (r *MemoryRecordRepository) ListCourseEnrollments(ctx context.Context, padron int64) ([]models.CourseEnrollment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.ListCourseEnrollments(ctx, padron)
}

func (r *MemoryRecordRepository) FindCourseApproval(ctx context.Context, padron int64, courseCode string) (*models.CourseApproval, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.FindCourseApproval(ctx, padron, courseCode)
}

func (r *MemoryRecordRepository) SaveCourseApproval(ctx context.Context, row *models.CourseApproval) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.SaveCourseApproval(ctx, row)
}

func (r *MemoryRecordRepository) ListCourseApprovals(ctx context.Context, padron int64) ([]models.CourseApproval, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.ListCourseApprovals(ctx, padron)
}

// memoryState holds rows per padron in insertion order. It is not safe for
// concurrent use on its own.
type memoryState struct {
	students    map[int64]models.Student
	curricula   map[int64][]models.CurriculumEnrollment
	enrollments map[int64][]models.CourseEnrollment
	approvals   map[int64][]models.CourseApproval
}

func newMemoryState() *memoryState {
	return &memoryState{
		students:    make(map[int64]models.Student),
		curricula:   make(map[int64][]models.CurriculumEnrollment),
		enrollments: make(map[int64][]models.CourseEnrollment),
		approvals:   make(map[int64][]models.CourseApproval),
	}
}

func (s *memoryState) clone() *memoryState {
	c := newMemoryState()
	for k, v := range s.students {
		c.students[k] = v
	}
	for k, v := range s.curricula {
		c.curricula[k] = append([]models.CurriculumEnrollment(nil), v...)
	}
	for k, v := range s.enrollments {
		c.enrollments[k] = append([]models.CourseEnrollment(nil), v...)
	}
	for k, v := range s.approvals {
		c.approvals[k] = append([]models.CourseApproval(nil), v...)
	}
	return c
}

func (s *memoryState) FindStudent(_ context.Context, padron int64) (*models.Student, error) {
	student, ok := s.students[padron]
	if !ok {
		return nil, nil
	}
	return &student, nil
}

func (s *memoryState) SaveStudent(_ context.Context, student *models.Student) error {
	if _, ok := s.students[student.Padron]; ok {
		return nil
	}
	if student.CreatedAt.IsZero() {
		student.CreatedAt = time.Now().UTC()
	}
	s.students[student.Padron] = *student
	return nil
}

func (s *memoryState) FindCurriculumEnrollment(_ context.Context, padron int64, curriculumID int) (*models.CurriculumEnrollment, error) {
	for _, row := range s.curricula[padron] {
		if row.CurriculumID == curriculumID {
			found := row
			return &found, nil
		}
	}
	return nil, nil
}

func (s *memoryState) SaveCurriculumEnrollment(ctx context.Context, row *models.CurriculumEnrollment) error {
	if existing, _ := s.FindCurriculumEnrollment(ctx, row.Padron, row.CurriculumID); existing != nil {
		return nil
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	s.curricula[row.Padron] = append(s.curricula[row.Padron], *row)
	return nil
}

func (s *memoryState) ListCurriculumIDs(_ context.Context, padron int64) ([]int, error) {
	ids := make([]int, 0, len(s.curricula[padron]))
	for _, row := range s.curricula[padron] {
		ids = append(ids, row.CurriculumID)
	}
	return ids, nil
}

func (s *memoryState) FindCourseEnrollment(_ context.Context, padron int64, courseCode string) (*models.CourseEnrollment, error) {
	for _, row := range s.enrollments[padron] {
		if row.CourseCode == courseCode {
			found := row
			return &found, nil
		}
	}
	return nil, nil
}

func (s *memoryState) SaveCourseEnrollment(ctx context.Context, row *models.CourseEnrollment) error {
	if existing, _ := s.FindCourseEnrollment(ctx, row.Padron, row.CourseCode); existing != nil {
		return nil
	}
	if row.EnrolledAt.IsZero() {
		row.EnrolledAt = time.Now().UTC()
	}
	s.enrollments[row.Padron] = append(s.enrollments[row.Padron], *row)
	return nil
}

func (s *memoryState) DeleteCourseEnrollment(_ context.Context, row *models.CourseEnrollment) error {
	rows := s.enrollments[row.Padron]
	kept := rows[:0:0]
	for _, existing := range rows {
		if existing.CourseCode != row.CourseCode {
			kept = append(kept, existing)
		}
	}
	s.enrollments[row.Padron] = kept
	return nil
}

func (s *memoryState) ListCourseEnrollments(_ context.Context, padron int64) ([]models.CourseEnrollment, error) {
	return append([]models.CourseEnrollment{}, s.enrollments[padron]...), nil
}

func (s *memoryState) FindCourseApproval(_ context.Context, padron int64, courseCode string) (*models.CourseApproval, error) {
	for _, row := range s.approvals[padron] {
		if row.CourseCode == courseCode {
			found := row
			return &found, nil
		}
	}
	return nil, nil
}

func (s *memoryState) SaveCourseApproval(ctx context.Context, row *models.CourseApproval) error {
	if existing, _ := s.FindCourseApproval(ctx, row.Padron, row.CourseCode); existing != nil {
		return nil
	}
	if row.ApprovedAt.IsZero() {
		row.ApprovedAt = time.Now().UTC()
	}
	s.approvals[row.Padron] = append(s.approvals[row.Padron], *row)
	return nil
}

func (s *memoryState) ListCourseApprovals(_ context.Context, padron int64) ([]models.CourseApproval, error) {
	return append([]models.CourseApproval{}, s.approvals[padron]...), nil
}
