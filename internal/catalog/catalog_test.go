package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academic-record-api/internal/models"
)

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c := New()
	require.NoError(t, c.LoadCurricula([]models.CurriculumRow{{ID: 1, Name: "INFORMATICA"}, {ID: 2, Name: "ELECTRONICA"}}))
	require.NoError(t, c.LoadCourses([]models.CourseRow{
		{Code: "75.41", Name: "Algoritmos III", Prerequisites: "75.12-75.13"},
		{Code: "75.12", Name: "Análisis Numérico I"},
		{Code: "61.03", Name: "Análisis Matemático II A"},
	}, 1))
	require.NoError(t, c.LoadCourses([]models.CourseRow{
		{Code: "61.03", Name: "Análisis Matemático II A"},
		{Code: "66.06", Name: "Análisis de Circuitos", Prerequisites: "61.03"},
	}, 2))
	return c
}

func TestPrerequisitesOf(t *testing.T) {
	c := newTestCatalog(t)

	prereqs, ok := c.PrerequisitesOf("75.41")
	require.True(t, ok)
	assert.Equal(t, []string{"75.12", "75.13"}, prereqs)

	prereqs, ok = c.PrerequisitesOf("75.12")
	require.True(t, ok)
	assert.NotNil(t, prereqs)
	assert.Empty(t, prereqs)

	_, ok = c.PrerequisitesOf("99.99")
	assert.False(t, ok)
}

func TestPrerequisitesOfReturnsCopy(t *testing.T) {
	c := newTestCatalog(t)
	prereqs, _ := c.PrerequisitesOf("75.41")
	prereqs[0] = "mutated"

	again, _ := c.PrerequisitesOf("75.41")
	assert.Equal(t, "75.12", again[0])
}

func TestParsePrerequisites(t *testing.T) {
	assert.Equal(t, []string{"75.12", "75.13"}, ParsePrerequisites("75.12-75.13"))
	assert.Equal(t, []string{"75.12"}, ParsePrerequisites(" 75.12 - "))
	assert.Equal(t, []string{}, ParsePrerequisites(""))
}

func TestFindCourseByCodeScopedToCurricula(t *testing.T) {
	c := newTestCatalog(t)

	course, ok := c.FindCourseByCode("75.41", []int{1})
	require.True(t, ok)
	assert.Equal(t, "Algoritmos III", course.Name)

	_, ok = c.FindCourseByCode("75.41", []int{2})
	assert.False(t, ok)

	course, ok = c.FindCourseByCode("61.03", []int{2, 1})
	require.True(t, ok)
	assert.Equal(t, 2, course.CurriculumID)
}

func TestFindCourseByCodeWithoutCurriculaNeverMatches(t *testing.T) {
	c := newTestCatalog(t)
	for _, code := range []string{"75.41", "75.12", "61.03", "66.06"} {
		_, ok := c.FindCourseByCode(code, nil)
		assert.False(t, ok, code)
		_, ok = c.FindCourseByCode(code, []int{})
		assert.False(t, ok, code)
	}
}

func TestFindByName(t *testing.T) {
	c := newTestCatalog(t)

	matches := c.FindCoursesByName("Análisis Matemático II A")
	require.Len(t, matches, 2)
	assert.Equal(t, 1, matches[0].CurriculumID)
	assert.Equal(t, 2, matches[1].CurriculumID)
	assert.Empty(t, c.FindCoursesByName("análisis matemático ii a"))

	course, ok := c.FindCourseByNameAndCurriculum("Análisis de Circuitos", 2)
	require.True(t, ok)
	assert.Equal(t, "66.06", course.Code)

	_, ok = c.FindCourseByNameAndCurriculum("Análisis de Circuitos", 1)
	assert.False(t, ok)
}

func TestCurriculumNameAndReload(t *testing.T) {
	c := newTestCatalog(t)

	name, ok := c.CurriculumName(1)
	require.True(t, ok)
	assert.Equal(t, "INFORMATICA", name)

	_, ok = c.CurriculumName(42)
	assert.False(t, ok)

	require.NoError(t, c.LoadCurricula([]models.CurriculumRow{{ID: 1, Name: "Ingeniería en Informática"}}))
	name, _ = c.CurriculumName(1)
	assert.Equal(t, "Ingeniería en Informática", name)
	assert.Len(t, c.Curricula(), 2)
}

func TestLoadCoursesOverwritesWithinCurriculum(t *testing.T) {
	c := newTestCatalog(t)
	require.NoError(t, c.LoadCourses([]models.CourseRow{{Code: "75.41", Name: "Algoritmos III", Prerequisites: "75.12"}}, 1))

	prereqs, _ := c.PrerequisitesOf("75.41")
	assert.Equal(t, []string{"75.12"}, prereqs)
	assert.Len(t, c.Courses(), 5)
	assert.Len(t, c.CourseNames(), 5)
}

func TestLoadRejectsMalformedRows(t *testing.T) {
	c := New()
	assert.Error(t, c.LoadCurricula([]models.CurriculumRow{{ID: 0, Name: "x"}}))
	assert.Error(t, c.LoadCurricula([]models.CurriculumRow{{ID: 3, Name: " "}}))
	assert.Error(t, c.LoadCourses([]models.CourseRow{{Code: "", Name: "x"}}, 1))
	assert.Empty(t, c.Courses())
}

func TestConcurrentReads(t *testing.T) {
	c := newTestCatalog(t)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.PrerequisitesOf("75.41")
			_, _ = c.FindCourseByCode("75.41", []int{1})
			_ = c.FindCoursesByName("Algoritmos III")
		}()
	}
	wg.Wait()
}

func TestReadCoursesAcceptsSpanishHeaders(t *testing.T) {
	rows, err := ReadCourses(strings.NewReader("\ufeffCodigo,Nombre,Correlativas\n75.41,Algoritmos III,75.12-75.13\n\n75.12,Análisis Numérico I,\n"))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, models.CourseRow{Code: "75.41", Name: "Algoritmos III", Prerequisites: "75.12-75.13"}, rows[0])
	assert.Equal(t, "", rows[1].Prerequisites)
}

func TestReadCoursesRejectsMissingColumns(t *testing.T) {
	_, err := ReadCourses(strings.NewReader("code,prerequisites\n75.41,\n"))
	assert.ErrorContains(t, err, `missing "name" column`)

	_, err = ReadCourses(strings.NewReader(""))
	assert.ErrorContains(t, err, "missing header row")

	_, err = ReadCourses(strings.NewReader("code,name\n75.41,\n"))
	assert.ErrorContains(t, err, "line 2")
}

func TestReadCurriculaRejectsBadID(t *testing.T) {
	_, err := ReadCurricula(strings.NewReader("id,name,file\nX,INFORMATICA,a.csv\n"))
	assert.ErrorContains(t, err, "invalid curriculum id")
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "curricula.csv"), []byte("id,name,file\n1,INFORMATICA,informatica.csv\n2,ELECTRONICA,\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "informatica.csv"), []byte("code,name,prerequisites\n75.41,Algoritmos III,75.12-75.13\n"), 0o600))

	c := New()
	require.NoError(t, LoadFiles(c, filepath.Join(dir, "curricula.csv")))

	name, ok := c.CurriculumName(2)
	require.True(t, ok)
	assert.Equal(t, "ELECTRONICA", name)

	prereqs, ok := c.PrerequisitesOf("75.41")
	require.True(t, ok)
	assert.Equal(t, []string{"75.12", "75.13"}, prereqs)
}

func TestLoadFilesReportsMissingCourseFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "curricula.csv"), []byte("id,name,file\n1,INFORMATICA,missing.csv\n"), 0o600))

	err := LoadFiles(New(), filepath.Join(dir, "curricula.csv"))
	assert.ErrorContains(t, err, "open course file")
}

func TestLoadFilesShippedData(t *testing.T) {
	c := New()
	require.NoError(t, LoadFiles(c, filepath.Join("..", "..", "data", "curricula.csv")))
	assert.Len(t, c.Curricula(), 3)

	prereqs, ok := c.PrerequisitesOf("75.12")
	require.True(t, ok)
	assert.Equal(t, []string{"61.03", "75.40"}, prereqs)
}

func TestDanglingPrerequisites(t *testing.T) {
	c := newTestCatalog(t)
	assert.Equal(t, []DanglingPrerequisite{{CurriculumID: 1, CourseCode: "75.41", Missing: "75.13"}}, c.DanglingPrerequisites())

	require.NoError(t, c.LoadCourses([]models.CourseRow{{Code: "75.13", Name: "Sistemas Operativos"}}, 1))
	assert.Empty(t, c.DanglingPrerequisites())
}
