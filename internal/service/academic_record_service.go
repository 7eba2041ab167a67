package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-record-api/internal/models"
	"github.com/noah-isme/academic-record-api/internal/repository"
	appErrors "github.com/noah-isme/academic-record-api/pkg/errors"
)

// Operation labels used in logs and outcome metrics.
const (
	OpRegisterStudent    = "register_student"
	OpRegisterCurriculum = "register_curriculum"
	OpEnrollCourse       = "enroll_course"
	OpApproveCourse      = "approve_course"
	OpWithdrawCourse     = "withdraw_course"
)

type recordStore interface {
	repository.Records
	WithinStudentTx(ctx context.Context, padron int64, fn func(repository.Records) error) error
}

type courseCatalog interface {
	FindCourseByCode(code string, curriculumIDs []int) (models.Course, bool)
	FindCoursesByName(name string) []models.Course
	FindCourseByNameAndCurriculum(name string, curriculumID int) (models.Course, bool)
	CurriculumName(id int) (string, bool)
	Curricula() []models.Curriculum
	PrerequisitesOf(code string) ([]string, bool)
	CourseNames() []string
}

type studentLocker interface {
	Acquire(ctx context.Context, padron int64) (func(), error)
}

type outcomeRecorder interface {
	RecordOutcome(operation string, kind models.OutcomeKind)
}

type studentInput struct {
	Padron int64 `validate:"gt=0"`
}

type curriculumInput struct {
	Padron       int64 `validate:"gt=0"`
	CurriculumID int   `validate:"gt=0"`
}

type courseInput struct {
	Padron     int64  `validate:"gt=0"`
	CourseCode string `validate:"required,max=32"`
}

// AcademicRecordService applies course state transitions for a student and
// answers progress queries composed from the catalog and the record store.
// Every course is Absent, Enrolled or Approved for a student; Approved is terminal.
type AcademicRecordService struct {
	store     recordStore
	catalog   courseCatalog
	locks     studentLocker
	metrics   outcomeRecorder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAcademicRecordService constructs the service. locks and metrics are optional.
func NewAcademicRecordService(store recordStore, catalog courseCatalog, locks studentLocker, metrics outcomeRecorder, validate *validator.Validate, logger *zap.Logger) *AcademicRecordService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AcademicRecordService{
		store:     store,
		catalog:   catalog,
		locks:     locks,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
	}
}

// RegisterStudent creates the student's base record if absent.
func (s *AcademicRecordService) RegisterStudent(ctx context.Context, padron int64) models.Outcome {
	base := models.Outcome{Padron: padron, Entity: "student"}
	if err := s.validator.Struct(studentInput{Padron: padron}); err != nil {
		return s.finish(OpRegisterStudent, invalid(base, "padron must be a positive number"))
	}

	return s.mutate(ctx, OpRegisterStudent, base, func(tx repository.Records) (models.Outcome, error) {
		existing, err := tx.FindStudent(ctx, padron)
		if err != nil {
			return base, err
		}
		if existing != nil {
			return with(base, models.OutcomeAlreadyExists, "student %d was already registered", padron), nil
		}
		if err := tx.SaveStudent(ctx, &models.Student{Padron: padron}); err != nil {
			return base, err
		}
		return with(base, models.OutcomeCreated, "student %d registered", padron), nil
	})
}

// RegisterCurriculum registers the student under a curriculum. A student may
// hold several curricula but only one row per curriculum id.
func (s *AcademicRecordService) RegisterCurriculum(ctx context.Context, padron int64, curriculumID int) models.Outcome {
	base := models.Outcome{Padron: padron, CurriculumID: curriculumID, Entity: "curriculum"}
	if err := s.validator.Struct(curriculumInput{Padron: padron, CurriculumID: curriculumID}); err != nil {
		return s.finish(OpRegisterCurriculum, invalid(base, "padron and curriculum id must be positive numbers"))
	}

	return s.mutate(ctx, OpRegisterCurriculum, base, func(tx repository.Records) (models.Outcome, error) {
		existing, err := tx.FindCurriculumEnrollment(ctx, padron, curriculumID)
		if err != nil {
			return base, err
		}
		if existing != nil {
			return with(base, models.OutcomeAlreadyRegistered, "curriculum %d was already registered", curriculumID), nil
		}

		ids, err := tx.ListCurriculumIDs(ctx, padron)
		if err != nil {
			return base, err
		}
		if err := tx.SaveStudent(ctx, &models.Student{Padron: padron}); err != nil {
			return base, err
		}
		if err := tx.SaveCurriculumEnrollment(ctx, &models.CurriculumEnrollment{Padron: padron, CurriculumID: curriculumID}); err != nil {
			return base, err
		}
		if len(ids) > 0 {
			return with(base, models.OutcomeCreatedAdditional, "curriculum %d registered as an additional curriculum", curriculumID), nil
		}
		return with(base, models.OutcomeCreated, "curriculum %d registered", curriculumID), nil
	})
}

// EnrollCourse moves a course from Absent to Enrolled. Approved courses are refused.
func (s *AcademicRecordService) EnrollCourse(ctx context.Context, padron int64, courseCode string) models.Outcome {
	courseCode = strings.TrimSpace(courseCode)
	base := models.Outcome{Padron: padron, CourseCode: courseCode, Entity: "course_enrollment"}
	if err := s.validator.Struct(courseInput{Padron: padron, CourseCode: courseCode}); err != nil {
		return s.finish(OpEnrollCourse, invalid(base, "padron must be positive and course code is required"))
	}

	return s.mutate(ctx, OpEnrollCourse, base, func(tx repository.Records) (models.Outcome, error) {
		enrollment, err := tx.FindCourseEnrollment(ctx, padron, courseCode)
		if err != nil {
			return base, err
		}
		if enrollment != nil {
			return with(base, models.OutcomeAlreadyEnrolled, "course %s was already enrolled", courseCode), nil
		}

		approval, err := tx.FindCourseApproval(ctx, padron, courseCode)
		if err != nil {
			return base, err
		}
		if approval != nil {
			return with(base, models.OutcomeAlreadyApproved, "course %s was already approved", courseCode), nil
		}

		if err := tx.SaveCourseEnrollment(ctx, &models.CourseEnrollment{Padron: padron, CourseCode: courseCode}); err != nil {
			return base, err
		}
		return with(base, models.OutcomeCreated, "enrolled in course %s", courseCode), nil
	})
}

// ApproveCourse records a course as passed. An active enrollment for the same
// course is removed in the same transaction.
func (s *AcademicRecordService) ApproveCourse(ctx context.Context, padron int64, courseCode string) models.Outcome {
	courseCode = strings.TrimSpace(courseCode)
	base := models.Outcome{Padron: padron, CourseCode: courseCode, Entity: "course_approval"}
	if err := s.validator.Struct(courseInput{Padron: padron, CourseCode: courseCode}); err != nil {
		return s.finish(OpApproveCourse, invalid(base, "padron must be positive and course code is required"))
	}

	return s.mutate(ctx, OpApproveCourse, base, func(tx repository.Records) (models.Outcome, error) {
		approval, err := tx.FindCourseApproval(ctx, padron, courseCode)
		if err != nil {
			return base, err
		}
		if approval != nil {
			return with(base, models.OutcomeAlreadyApproved, "course %s was already approved", courseCode), nil
		}

		enrollment, err := tx.FindCourseEnrollment(ctx, padron, courseCode)
		if err != nil {
			return base, err
		}
		if err := tx.SaveCourseApproval(ctx, &models.CourseApproval{Padron: padron, CourseCode: courseCode}); err != nil {
			return base, err
		}
		if enrollment == nil {
			return with(base, models.OutcomeCreated, "course %s recorded as approved", courseCode), nil
		}
		if err := tx.DeleteCourseEnrollment(ctx, enrollment); err != nil {
			return base, err
		}
		return with(base, models.OutcomeApproved, "congratulations, course %s approved", courseCode), nil
	})
}

// WithdrawCourse moves an enrolled course back to Absent.
func (s *AcademicRecordService) WithdrawCourse(ctx context.Context, padron int64, courseCode string) models.Outcome {
	courseCode = strings.TrimSpace(courseCode)
	base := models.Outcome{Padron: padron, CourseCode: courseCode, Entity: "course_enrollment"}
	if err := s.validator.Struct(courseInput{Padron: padron, CourseCode: courseCode}); err != nil {
		return s.finish(OpWithdrawCourse, invalid(base, "padron must be positive and course code is required"))
	}

	return s.mutate(ctx, OpWithdrawCourse, base, func(tx repository.Records) (models.Outcome, error) {
		enrollment, err := tx.FindCourseEnrollment(ctx, padron, courseCode)
		if err != nil {
			return base, err
		}
		if enrollment == nil {
			return with(base, models.OutcomeNotEnrolled, "course %s is not enrolled, nothing to withdraw", courseCode), nil
		}
		if err := tx.DeleteCourseEnrollment(ctx, enrollment); err != nil {
			return base, err
		}
		return with(base, models.OutcomeWithdrawn, "withdrawn from course %s", courseCode), nil
	})
}

// ResolveKnownCourseNames maps codes to display names within the student's
// curricula. Codes that do not resolve are dropped.
func (s *AcademicRecordService) ResolveKnownCourseNames(ctx context.Context, padron int64, codes []string) ([]string, error) {
	ids, err := s.CurriculumIDsOf(ctx, padron)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(codes))
	if len(ids) == 0 {
		return names, nil
	}
	for _, code := range codes {
		if course, ok := s.catalog.FindCourseByCode(strings.TrimSpace(code), ids); ok {
			names = append(names, course.Name)
		}
	}
	return names, nil
}

// FindCourseForStudent resolves a code within the student's curricula.
func (s *AcademicRecordService) FindCourseForStudent(ctx context.Context, padron int64, courseCode string) (*models.Course, error) {
	ids, err := s.CurriculumIDsOf(ctx, padron)
	if err != nil {
		return nil, err
	}
	course, ok := s.catalog.FindCourseByCode(strings.TrimSpace(courseCode), ids)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("course %s not found in the student's curricula", courseCode))
	}
	return &course, nil
}

// CurriculumIDsOf lists the curricula the student is registered under.
func (s *AcademicRecordService) CurriculumIDsOf(ctx context.Context, padron int64) ([]int, error) {
	if err := s.validateStudent(padron); err != nil {
		return nil, err
	}
	ids, err := s.store.ListCurriculumIDs(ctx, padron)
	if err != nil {
		return nil, s.queryFailed("curriculum_ids_of", padron, err)
	}
	return ids, nil
}

// EnrolledCourseCodes lists the codes of the student's in-progress courses.
func (s *AcademicRecordService) EnrolledCourseCodes(ctx context.Context, padron int64) ([]string, error) {
	if err := s.validateStudent(padron); err != nil {
		return nil, err
	}
	rows, err := s.store.ListCourseEnrollments(ctx, padron)
	if err != nil {
		return nil, s.queryFailed("enrolled_course_codes", padron, err)
	}
	codes := make([]string, 0, len(rows))
	for _, row := range rows {
		codes = append(codes, row.CourseCode)
	}
	return codes, nil
}

// ApprovedCourseCodes lists the codes of the student's approved courses.
func (s *AcademicRecordService) ApprovedCourseCodes(ctx context.Context, padron int64) ([]string, error) {
	if err := s.validateStudent(padron); err != nil {
		return nil, err
	}
	rows, err := s.store.ListCourseApprovals(ctx, padron)
	if err != nil {
		return nil, s.queryFailed("approved_course_codes", padron, err)
	}
	codes := make([]string, 0, len(rows))
	for _, row := range rows {
		codes = append(codes, row.CourseCode)
	}
	return codes, nil
}

// PrerequisitesOf returns the prerequisite codes of a course. The list is
// empty for a course without prerequisites.
func (s *AcademicRecordService) PrerequisitesOf(courseCode string) ([]string, error) {
	codes, ok := s.catalog.PrerequisitesOf(strings.TrimSpace(courseCode))
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("course %s not found", courseCode))
	}
	return codes, nil
}

// CurriculumNameOf returns a curriculum's display name.
func (s *AcademicRecordService) CurriculumNameOf(curriculumID int) (string, error) {
	name, ok := s.catalog.CurriculumName(curriculumID)
	if !ok {
		return "", appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("curriculum %d not found", curriculumID))
	}
	return name, nil
}

// Curricula lists every curriculum in the catalog ordered by id.
func (s *AcademicRecordService) Curricula() []models.Curriculum {
	return s.catalog.Curricula()
}

// AllCourseNames lists every course name in the catalog.
func (s *AcademicRecordService) AllCourseNames() []string {
	return s.catalog.CourseNames()
}

// CourseCodesByName lists the codes of every course with the given name across curricula.
func (s *AcademicRecordService) CourseCodesByName(name string) []string {
	courses := s.catalog.FindCoursesByName(strings.TrimSpace(name))
	codes := make([]string, 0, len(courses))
	for _, course := range courses {
		codes = append(codes, course.Code)
	}
	return codes
}

// CourseCodeByNameAndCurriculum returns the code of the named course in one curriculum.
func (s *AcademicRecordService) CourseCodeByNameAndCurriculum(name string, curriculumID int) (string, error) {
	course, ok := s.catalog.FindCourseByNameAndCurriculum(strings.TrimSpace(name), curriculumID)
	if !ok {
		return "", appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("course %q not found in curriculum %d", name, curriculumID))
	}
	return course.Code, nil
}

// MissingPrerequisites returns the prerequisites of courseCode the student has
// not approved yet, in catalog order. The course is resolved within the
// student's curricula since a code may name different courses elsewhere.
func (s *AcademicRecordService) MissingPrerequisites(ctx context.Context, padron int64, courseCode string) ([]string, error) {
	course, err := s.FindCourseForStudent(ctx, padron, courseCode)
	if err != nil {
		return nil, err
	}
	required := course.Prerequisites
	approved, err := s.ApprovedCourseCodes(ctx, padron)
	if err != nil {
		return nil, err
	}
	passed := make(map[string]struct{}, len(approved))
	for _, code := range approved {
		passed[code] = struct{}{}
	}
	missing := make([]string, 0, len(required))
	for _, code := range required {
		if _, ok := passed[code]; !ok {
			missing = append(missing, code)
		}
	}
	return missing, nil
}

// Progress summarises the student's curricula and courses. Names are resolved
// best-effort and left empty for codes outside the student's curricula.
func (s *AcademicRecordService) Progress(ctx context.Context, padron int64) (*models.StudentProgress, error) {
	ids, err := s.CurriculumIDsOf(ctx, padron)
	if err != nil {
		return nil, err
	}
	enrolled, err := s.EnrolledCourseCodes(ctx, padron)
	if err != nil {
		return nil, err
	}
	approved, err := s.ApprovedCourseCodes(ctx, padron)
	if err != nil {
		return nil, err
	}

	progress := &models.StudentProgress{
		Padron:    padron,
		Curricula: make([]models.CurriculumProgress, 0, len(ids)),
		Enrolled:  s.describeCourses(enrolled, ids),
		Approved:  s.describeCourses(approved, ids),
	}
	for _, id := range ids {
		name, _ := s.catalog.CurriculumName(id)
		progress.Curricula = append(progress.Curricula, models.CurriculumProgress{ID: id, Name: name})
	}
	return progress, nil
}

func (s *AcademicRecordService) describeCourses(codes []string, curriculumIDs []int) []models.CourseProgress {
	list := make([]models.CourseProgress, 0, len(codes))
	for _, code := range codes {
		entry := models.CourseProgress{Code: code}
		if course, ok := s.catalog.FindCourseByCode(code, curriculumIDs); ok {
			entry.Name = course.Name
		}
		list = append(list, entry)
	}
	return list
}

// mutate runs fn inside the student's transaction, optionally guarded by the
// cross-process lock. Any infrastructure error rolls the transaction back and
// is reported as OPERATION_FAILED.
func (s *AcademicRecordService) mutate(ctx context.Context, op string, base models.Outcome, fn func(tx repository.Records) (models.Outcome, error)) models.Outcome {
	if s.locks != nil {
		release, err := s.locks.Acquire(ctx, base.Padron)
		if err != nil {
			return s.failed(op, base, err)
		}
		defer release()
	}

	var outcome models.Outcome
	err := s.store.WithinStudentTx(ctx, base.Padron, func(tx repository.Records) error {
		result, err := fn(tx)
		if err != nil {
			return err
		}
		outcome = result
		return nil
	})
	if err != nil {
		return s.failed(op, base, err)
	}
	return s.finish(op, outcome)
}

func (s *AcademicRecordService) failed(op string, base models.Outcome, err error) models.Outcome {
	fields := []zap.Field{
		zap.String("operation", op),
		zap.Int64("padron", base.Padron),
		zap.Error(err),
	}
	if base.CurriculumID != 0 {
		fields = append(fields, zap.Int("curriculum_id", base.CurriculumID))
	}
	if base.CourseCode != "" {
		fields = append(fields, zap.String("course_code", base.CourseCode))
	}
	s.logger.Error("academic record operation failed", fields...)
	return s.finish(op, with(base, models.OutcomeOperationFailed, "the operation could not be completed, try again later"))
}

func (s *AcademicRecordService) finish(op string, outcome models.Outcome) models.Outcome {
	if outcome.Applied() {
		s.logger.Info("academic record updated",
			zap.String("operation", op),
			zap.Int64("padron", outcome.Padron),
			zap.String("outcome", string(outcome.Kind)),
		)
	}
	if s.metrics != nil {
		s.metrics.RecordOutcome(op, outcome.Kind)
	}
	return outcome
}

func (s *AcademicRecordService) validateStudent(padron int64) error {
	if err := s.validator.Struct(studentInput{Padron: padron}); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "padron must be a positive number")
	}
	return nil
}

func (s *AcademicRecordService) queryFailed(op string, padron int64, err error) error {
	s.logger.Error("academic record query failed",
		zap.String("operation", op),
		zap.Int64("padron", padron),
		zap.Error(err),
	)
	return appErrors.Wrap(err, appErrors.ErrOperationFailed.Code, appErrors.ErrOperationFailed.Status, "failed to read academic record")
}

func with(base models.Outcome, kind models.OutcomeKind, format string, args ...interface{}) models.Outcome {
	base.Kind = kind
	base.Message = fmt.Sprintf(format, args...)
	return base
}

func invalid(base models.Outcome, message string) models.Outcome {
	base.Kind = models.OutcomeInvalidInput
	base.Message = message
	return base
}
