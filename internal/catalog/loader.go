package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/noah-isme/academic-record-api/internal/models"
)

// CurriculumSource describes one curriculum entry of the curricula index file
// together with the course file holding its courses.
type CurriculumSource struct {
	models.CurriculumRow
	CoursesFile string
}

// header aliases accepted in the course files
var courseColumns = map[string][]string{
	"code":          {"code", "codigo", "código"},
	"name":          {"name", "nombre"},
	"prerequisites": {"prerequisites", "correlativas"},
}

var curriculumColumns = map[string][]string{
	"id":   {"id", "codigo", "código"},
	"name": {"name", "nombre"},
	"file": {"file", "archivo"},
}

// ReadCurricula parses the curricula index: a header row with id, name and
// file columns followed by one row per curriculum.
func ReadCurricula(r io.Reader) ([]CurriculumSource, error) {
	records, lines, index, err := readTable(r, curriculumColumns, "id", "name")
	if err != nil {
		return nil, err
	}
	sources := make([]CurriculumSource, 0, len(records))
	for i, record := range records {
		line := lines[i]
		rawID := field(record, index, "id")
		id, err := strconv.Atoi(rawID)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid curriculum id %q", line, rawID)
		}
		sources = append(sources, CurriculumSource{
			CurriculumRow: models.CurriculumRow{ID: id, Name: field(record, index, "name")},
			CoursesFile:   field(record, index, "file"),
		})
	}
	return sources, nil
}

// ReadCourses parses a course file: a header row with code, name and
// prerequisites columns followed by one row per course.
func ReadCourses(r io.Reader) ([]models.CourseRow, error) {
	records, lines, index, err := readTable(r, courseColumns, "code", "name")
	if err != nil {
		return nil, err
	}
	rows := make([]models.CourseRow, 0, len(records))
	for i, record := range records {
		row := models.CourseRow{
			Code:          field(record, index, "code"),
			Name:          field(record, index, "name"),
			Prerequisites: field(record, index, "prerequisites"),
		}
		if row.Code == "" || row.Name == "" {
			return nil, fmt.Errorf("line %d: code and name are required", lines[i])
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// LoadFiles populates c from a curricula index file and the course files it
// references. Course file paths are resolved relative to the index file.
func LoadFiles(c *Catalog, curriculaPath string) error {
	f, err := os.Open(curriculaPath)
	if err != nil {
		return fmt.Errorf("open curricula file: %w", err)
	}
	defer f.Close()

	sources, err := ReadCurricula(f)
	if err != nil {
		return fmt.Errorf("%s: %w", curriculaPath, err)
	}

	rows := make([]models.CurriculumRow, 0, len(sources))
	for _, source := range sources {
		rows = append(rows, source.CurriculumRow)
	}
	if err := c.LoadCurricula(rows); err != nil {
		return fmt.Errorf("%s: %w", curriculaPath, err)
	}

	baseDir := filepath.Dir(curriculaPath)
	for _, source := range sources {
		if source.CoursesFile == "" {
			continue
		}
		path := source.CoursesFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		if err := loadCourseFile(c, path, source.ID); err != nil {
			return err
		}
	}
	return nil
}

func loadCourseFile(c *Catalog, path string, curriculumID int) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open course file: %w", err)
	}
	defer f.Close()

	rows, err := ReadCourses(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := c.LoadCourses(rows, curriculumID); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// readTable returns the non-blank data rows with their 1-based line numbers
// and the header index of every recognised column.
func readTable(r io.Reader, columns map[string][]string, required ...string) ([][]string, []int, map[string]int, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, nil, fmt.Errorf("missing header row")
		}
		return nil, nil, nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(columns))
	for pos, raw := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(raw, "\ufeff")))
		for canonical, aliases := range columns {
			for _, alias := range aliases {
				if name == alias {
					index[canonical] = pos
				}
			}
		}
	}
	for _, col := range required {
		if _, ok := index[col]; !ok {
			return nil, nil, nil, fmt.Errorf("missing %q column", col)
		}
	}

	var (
		records [][]string
		lines   []int
	)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, nil, fmt.Errorf("read row: %w", err)
		}
		if isBlank(record) {
			continue
		}
		line, _ := reader.FieldPos(0)
		records = append(records, record)
		lines = append(lines, line)
	}
	return records, lines, index, nil
}

func field(record []string, index map[string]int, column string) string {
	pos, ok := index[column]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}

func isBlank(record []string) bool {
	for _, value := range record {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}
