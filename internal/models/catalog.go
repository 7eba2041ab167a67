package models

// Curriculum is a degree program grouping courses.
type Curriculum struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Course belongs to exactly one curriculum. Prerequisites holds the parsed,
// ordered list of prerequisite course codes.
type Course struct {
	Code          string   `json:"code"`
	Name          string   `json:"name"`
	CurriculumID  int      `json:"curriculum_id"`
	Prerequisites []string `json:"prerequisites"`
}

// CurriculumRow is the ingestion shape for curricula.
type CurriculumRow struct {
	ID   int
	Name string
}

// CourseRow is the ingestion shape for courses; Prerequisites is a
// "-"-separated list of course codes.
type CourseRow struct {
	Code          string
	Name          string
	Prerequisites string
}
