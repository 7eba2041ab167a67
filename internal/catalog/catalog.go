// Package catalog holds the curriculum and course reference data. It is
// loaded once at startup and read concurrently afterwards.
package catalog

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/noah-isme/academic-record-api/internal/models"
)

// PrerequisiteSeparator delimits course codes in the ingestion format.
// Course codes never contain it.
const PrerequisiteSeparator = "-"

type courseKey struct {
	curriculumID int
	code         string
}

// Catalog indexes curricula and courses by id, code and name.
type Catalog struct {
	mu        sync.RWMutex
	curricula map[int]models.Curriculum
	courses   map[courseKey]models.Course
	// load order keeps listings and first-match lookups deterministic
	order []courseKey
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{
		curricula: make(map[int]models.Curriculum),
		courses:   make(map[courseKey]models.Course),
	}
}

// LoadCurricula adds curricula, overwriting existing entries with the same id.
func (c *Catalog) LoadCurricula(rows []models.CurriculumRow) error {
	for _, row := range rows {
		if row.ID <= 0 {
			return fmt.Errorf("curriculum id must be positive, got %d", row.ID)
		}
		if strings.TrimSpace(row.Name) == "" {
			return fmt.Errorf("curriculum %d has no name", row.ID)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, row := range rows {
		c.curricula[row.ID] = models.Curriculum{ID: row.ID, Name: strings.TrimSpace(row.Name)}
	}
	return nil
}

// LoadCourses adds courses scoped to one curriculum. A code is unique within
// its curriculum; loading the same code again for that curriculum overwrites it.
func (c *Catalog) LoadCourses(rows []models.CourseRow, curriculumID int) error {
	parsed := make([]models.Course, 0, len(rows))
	for i, row := range rows {
		code := strings.TrimSpace(row.Code)
		name := strings.TrimSpace(row.Name)
		if code == "" || name == "" {
			return fmt.Errorf("course row %d of curriculum %d: code and name are required", i+1, curriculumID)
		}
		parsed = append(parsed, models.Course{
			Code:          code,
			Name:          name,
			CurriculumID:  curriculumID,
			Prerequisites: ParsePrerequisites(row.Prerequisites),
		})
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, course := range parsed {
		key := courseKey{curriculumID: curriculumID, code: course.Code}
		if _, exists := c.courses[key]; !exists {
			c.order = append(c.order, key)
		}
		c.courses[key] = course
	}
	return nil
}

// ParsePrerequisites splits a "-"-separated list, dropping blanks.
func ParsePrerequisites(raw string) []string {
	codes := []string{}
	for _, part := range strings.Split(raw, PrerequisiteSeparator) {
		if code := strings.TrimSpace(part); code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}

// FindCourseByCode returns the course with the given code owned by one of
// curriculumIDs, trying them in order. An empty set never matches.
func (c *Catalog) FindCourseByCode(code string, curriculumIDs []int) (models.Course, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, id := range curriculumIDs {
		if course, ok := c.courses[courseKey{curriculumID: id, code: code}]; ok {
			return clone(course), true
		}
	}
	return models.Course{}, false
}

// FindCoursesByName returns every course, across curricula, with an exact name match.
func (c *Catalog) FindCoursesByName(name string) []models.Course {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var matches []models.Course
	for _, key := range c.order {
		if course := c.courses[key]; course.Name == name {
			matches = append(matches, clone(course))
		}
	}
	return matches
}

// FindCourseByNameAndCurriculum returns the course with that name in one curriculum.
func (c *Catalog) FindCourseByNameAndCurriculum(name string, curriculumID int) (models.Course, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, key := range c.order {
		if key.curriculumID != curriculumID {
			continue
		}
		if course := c.courses[key]; course.Name == name {
			return clone(course), true
		}
	}
	return models.Course{}, false
}

// CurriculumName returns the display name of a curriculum.
func (c *Catalog) CurriculumName(id int) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	curriculum, ok := c.curricula[id]
	return curriculum.Name, ok
}

// Curricula lists loaded curricula ordered by id.
func (c *Catalog) Curricula() []models.Curriculum {
	c.mu.RLock()
	defer c.mu.RUnlock()
	list := make([]models.Curriculum, 0, len(c.curricula))
	for _, curriculum := range c.curricula {
		list = append(list, curriculum)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

// PrerequisitesOf returns the prerequisite codes of the first loaded course
// with the given code. The slice is empty, not nil, for a course without
// prerequisites; ok is false when the code is unknown.
func (c *Catalog) PrerequisitesOf(code string) ([]string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, key := range c.order {
		if key.code == code {
			return append([]string{}, c.courses[key].Prerequisites...), true
		}
	}
	return nil, false
}

// Courses returns every course in load order.
func (c *Catalog) Courses() []models.Course {
	c.mu.RLock()
	defer c.mu.RUnlock()
	list := make([]models.Course, 0, len(c.order))
	for _, key := range c.order {
		list = append(list, clone(c.courses[key]))
	}
	return list
}

// CourseNames returns the names of every course in load order.
func (c *Catalog) CourseNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.order))
	for _, key := range c.order {
		names = append(names, c.courses[key].Name)
	}
	return names
}

func clone(course models.Course) models.Course {
	course.Prerequisites = append([]string{}, course.Prerequisites...)
	return course
}

// DanglingPrerequisite is a prerequisite code with no course of that code in
// the owning curriculum.
type DanglingPrerequisite struct {
	CurriculumID int
	CourseCode   string
	Missing      string
}

// DanglingPrerequisites lists prerequisite references that do not resolve
// within their course's curriculum, in load order.
func (c *Catalog) DanglingPrerequisites() []DanglingPrerequisite {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var dangling []DanglingPrerequisite
	for _, key := range c.order {
		for _, code := range c.courses[key].Prerequisites {
			if _, ok := c.courses[courseKey{curriculumID: key.curriculumID, code: code}]; !ok {
				dangling = append(dangling, DanglingPrerequisite{CurriculumID: key.curriculumID, CourseCode: key.code, Missing: code})
			}
		}
	}
	return dangling
}
