package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academic-record-api/internal/models"
	"github.com/noah-isme/academic-record-api/internal/service"
	appErrors "github.com/noah-isme/academic-record-api/pkg/errors"
	"github.com/noah-isme/academic-record-api/pkg/response"
)

type academicRecords interface {
	RegisterStudent(ctx context.Context, padron int64) models.Outcome
	RegisterCurriculum(ctx context.Context, padron int64, curriculumID int) models.Outcome
	EnrollCourse(ctx context.Context, padron int64, courseCode string) models.Outcome
	ApproveCourse(ctx context.Context, padron int64, courseCode string) models.Outcome
	WithdrawCourse(ctx context.Context, padron int64, courseCode string) models.Outcome
	ResolveKnownCourseNames(ctx context.Context, padron int64, codes []string) ([]string, error)
	FindCourseForStudent(ctx context.Context, padron int64, courseCode string) (*models.Course, error)
	CurriculumIDsOf(ctx context.Context, padron int64) ([]int, error)
	EnrolledCourseCodes(ctx context.Context, padron int64) ([]string, error)
	ApprovedCourseCodes(ctx context.Context, padron int64) ([]string, error)
	MissingPrerequisites(ctx context.Context, padron int64, courseCode string) ([]string, error)
	Progress(ctx context.Context, padron int64) (*models.StudentProgress, error)
}

type transcriptExporter interface {
	Export(ctx context.Context, padron int64, format models.TranscriptFormat) (*models.Transcript, error)
}

// RegisterStudentRequest is the payload for registering a student.
type RegisterStudentRequest struct {
	Padron int64 `json:"padron" binding:"required"`
}

// RegisterCurriculumRequest is the payload for registering a curriculum.
type RegisterCurriculumRequest struct {
	CurriculumID int `json:"curriculum_id" binding:"required"`
}

// CourseRequest carries a course code for enrollment and approval.
type CourseRequest struct {
	CourseCode string `json:"course_code" binding:"required"`
}

// CourseNamesRequest lists course codes to resolve.
type CourseNamesRequest struct {
	Codes []string `json:"codes"`
}

// AcademicRecordHandler exposes per-student academic record endpoints.
type AcademicRecordHandler struct {
	records     academicRecords
	transcripts transcriptExporter
}

// NewAcademicRecordHandler constructs AcademicRecordHandler.
func NewAcademicRecordHandler(records academicRecords, transcripts transcriptExporter) *AcademicRecordHandler {
	return &AcademicRecordHandler{records: records, transcripts: transcripts}
}

// RegisterStudent godoc
// @Summary Register a student
// @Tags AcademicRecords
// @Accept json
// @Produce json
// @Param payload body RegisterStudentRequest true "Student payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /students [post]
func (h *AcademicRecordHandler) RegisterStudent(c *gin.Context) {
	var req RegisterStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	writeOutcome(c, h.records.RegisterStudent(c.Request.Context(), req.Padron))
}

// RegisterCurriculum godoc
// @Summary Register the student under a curriculum
// @Tags AcademicRecords
// @Accept json
// @Produce json
// @Param padron path int true "Padron"
// @Param payload body RegisterCurriculumRequest true "Curriculum payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /students/{padron}/curricula [post]
func (h *AcademicRecordHandler) RegisterCurriculum(c *gin.Context) {
	padron, err := padronParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req RegisterCurriculumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	writeOutcome(c, h.records.RegisterCurriculum(c.Request.Context(), padron, req.CurriculumID))
}

// ListCurricula godoc
// @Summary List the student's curriculum ids
// @Tags AcademicRecords
// @Produce json
// @Param padron path int true "Padron"
// @Success 200 {object} response.Envelope
// @Router /students/{padron}/curricula [get]
func (h *AcademicRecordHandler) ListCurricula(c *gin.Context) {
	padron, err := padronParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	ids, err := h.records.CurriculumIDsOf(c.Request.Context(), padron)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ids)
}

// EnrollCourse godoc
// @Summary Enroll the student in a course
// @Tags AcademicRecords
// @Accept json
// @Produce json
// @Param padron path int true "Padron"
// @Param payload body CourseRequest true "Course payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /students/{padron}/enrollments [post]
func (h *AcademicRecordHandler) EnrollCourse(c *gin.Context) {
	padron, req, ok := h.bindCourse(c)
	if !ok {
		return
	}
	writeOutcome(c, h.records.EnrollCourse(c.Request.Context(), padron, req.CourseCode))
}

// ListEnrollments godoc
// @Summary List the codes of courses in progress
// @Tags AcademicRecords
// @Produce json
// @Param padron path int true "Padron"
// @Success 200 {object} response.Envelope
// @Router /students/{padron}/enrollments [get]
func (h *AcademicRecordHandler) ListEnrollments(c *gin.Context) {
	padron, err := padronParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	codes, err := h.records.EnrolledCourseCodes(c.Request.Context(), padron)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, codes)
}

// WithdrawCourse godoc
// @Summary Withdraw the student from a course
// @Tags AcademicRecords
// @Produce json
// @Param padron path int true "Padron"
// @Param code path string true "Course code"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{padron}/enrollments/{code} [delete]
func (h *AcademicRecordHandler) WithdrawCourse(c *gin.Context) {
	padron, err := padronParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	writeOutcome(c, h.records.WithdrawCourse(c.Request.Context(), padron, c.Param("code")))
}

// ApproveCourse godoc
// @Summary Record a course as approved
// @Tags AcademicRecords
// @Accept json
// @Produce json
// @Param padron path int true "Padron"
// @Param payload body CourseRequest true "Course payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /students/{padron}/approvals [post]
func (h *AcademicRecordHandler) ApproveCourse(c *gin.Context) {
	padron, req, ok := h.bindCourse(c)
	if !ok {
		return
	}
	writeOutcome(c, h.records.ApproveCourse(c.Request.Context(), padron, req.CourseCode))
}

// ListApprovals godoc
// @Summary List the codes of approved courses
// @Tags AcademicRecords
// @Produce json
// @Param padron path int true "Padron"
// @Success 200 {object} response.Envelope
// @Router /students/{padron}/approvals [get]
func (h *AcademicRecordHandler) ListApprovals(c *gin.Context) {
	padron, err := padronParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	codes, err := h.records.ApprovedCourseCodes(c.Request.Context(), padron)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, codes)
}

// ResolveCourseNames godoc
// @Summary Resolve course codes to names within the student's curricula
// @Description Codes that do not resolve are omitted.
// @Tags AcademicRecords
// @Accept json
// @Produce json
// @Param padron path int true "Padron"
// @Param payload body CourseNamesRequest true "Codes"
// @Success 200 {object} response.Envelope
// @Router /students/{padron}/course-names [post]
func (h *AcademicRecordHandler) ResolveCourseNames(c *gin.Context) {
	padron, err := padronParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req CourseNamesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	names, err := h.records.ResolveKnownCourseNames(c.Request.Context(), padron, req.Codes)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, names)
}

// Progress godoc
// @Summary Summarise the student's academic record
// @Tags AcademicRecords
// @Produce json
// @Param padron path int true "Padron"
// @Success 200 {object} response.Envelope
// @Router /students/{padron}/progress [get]
func (h *AcademicRecordHandler) Progress(c *gin.Context) {
	padron, err := padronParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	progress, err := h.records.Progress(c.Request.Context(), padron)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, progress)
}

// GetCourse godoc
// @Summary Resolve a course within the student's curricula
// @Tags AcademicRecords
// @Produce json
// @Param padron path int true "Padron"
// @Param code path string true "Course code"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{padron}/courses/{code} [get]
func (h *AcademicRecordHandler) GetCourse(c *gin.Context) {
	padron, err := padronParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	course, err := h.records.FindCourseForStudent(c.Request.Context(), padron, c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course)
}

// MissingPrerequisites godoc
// @Summary List prerequisites of a course the student has not approved
// @Tags AcademicRecords
// @Produce json
// @Param padron path int true "Padron"
// @Param code path string true "Course code"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{padron}/courses/{code}/missing-prerequisites [get]
func (h *AcademicRecordHandler) MissingPrerequisites(c *gin.Context) {
	padron, err := padronParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	missing, err := h.records.MissingPrerequisites(c.Request.Context(), padron, c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, missing)
}

// Transcript godoc
// @Summary Download the student's academic record
// @Tags AcademicRecords
// @Produce text/csv
// @Produce application/pdf
// @Param padron path int true "Padron"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /students/{padron}/transcript [get]
func (h *AcademicRecordHandler) Transcript(c *gin.Context) {
	padron, err := padronParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	format, err := service.ParseTranscriptFormat(c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	transcript, err := h.transcripts.Export(c.Request.Context(), padron, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, transcript.ContentType, transcript.Filename, transcript.Payload)
}

func (h *AcademicRecordHandler) bindCourse(c *gin.Context) (int64, CourseRequest, bool) {
	var req CourseRequest
	padron, err := padronParam(c)
	if err != nil {
		response.Error(c, err)
		return 0, req, false
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return 0, req, false
	}
	return padron, req, true
}
