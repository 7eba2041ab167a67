package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academic-record-api/internal/models"
	"github.com/noah-isme/academic-record-api/pkg/response"
)

type catalogQueries interface {
	PrerequisitesOf(courseCode string) ([]string, error)
	CurriculumNameOf(curriculumID int) (string, error)
	Curricula() []models.Curriculum
	AllCourseNames() []string
	CourseCodesByName(name string) []string
	CourseCodeByNameAndCurriculum(name string, curriculumID int) (string, error)
}

// CatalogHandler exposes read-only curriculum and course reference data.
type CatalogHandler struct {
	catalog catalogQueries
}

// NewCatalogHandler constructs CatalogHandler.
func NewCatalogHandler(catalog catalogQueries) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// Courses godoc
// @Summary Look up courses
// @Description Without filters returns every course name. With name returns the matching codes across curricula; adding curriculum_id narrows to a single code.
// @Tags Catalog
// @Produce json
// @Param name query string false "Exact course name"
// @Param curriculum_id query int false "Curriculum id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /catalog/courses [get]
func (h *CatalogHandler) Courses(c *gin.Context) {
	name := strings.TrimSpace(c.Query("name"))
	rawCurriculum := c.Query("curriculum_id")

	switch {
	case name == "":
		response.JSON(c, http.StatusOK, h.catalog.AllCourseNames())
	case rawCurriculum == "":
		response.JSON(c, http.StatusOK, h.catalog.CourseCodesByName(name))
	default:
		curriculumID, err := intParam(rawCurriculum, "curriculum_id")
		if err != nil {
			response.Error(c, err)
			return
		}
		code, err := h.catalog.CourseCodeByNameAndCurriculum(name, curriculumID)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, gin.H{"code": code, "curriculum_id": curriculumID})
	}
}

// Prerequisites godoc
// @Summary List the prerequisite codes of a course
// @Tags Catalog
// @Produce json
// @Param code path string true "Course code"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /catalog/courses/{code}/prerequisites [get]
func (h *CatalogHandler) Prerequisites(c *gin.Context) {
	codes, err := h.catalog.PrerequisitesOf(c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, codes)
}

// Curricula godoc
// @Summary List curricula
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /catalog/curricula [get]
func (h *CatalogHandler) Curricula(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.catalog.Curricula())
}

// Curriculum godoc
// @Summary Get a curriculum's name
// @Tags Catalog
// @Produce json
// @Param id path int true "Curriculum id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /catalog/curricula/{id} [get]
func (h *CatalogHandler) Curriculum(c *gin.Context) {
	id, err := intParam(c.Param("id"), "curriculum id")
	if err != nil {
		response.Error(c, err)
		return
	}
	name, err := h.catalog.CurriculumNameOf(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, models.Curriculum{ID: id, Name: name})
}
