package models

import "time"

// Student is identified by a padron and is created on first registration.
type Student struct {
	Padron    int64     `db:"padron" json:"padron"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// CurriculumEnrollment registers a student under a degree program.
type CurriculumEnrollment struct {
	Padron       int64     `db:"padron" json:"padron"`
	CurriculumID int       `db:"curriculum_id" json:"curriculum_id"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// CourseEnrollment marks a course the student is currently taking.
type CourseEnrollment struct {
	Padron     int64     `db:"padron" json:"padron"`
	CourseCode string    `db:"course_code" json:"course_code"`
	EnrolledAt time.Time `db:"enrolled_at" json:"enrolled_at"`
}

// CourseApproval marks a course as permanently passed.
type CourseApproval struct {
	Padron     int64     `db:"padron" json:"padron"`
	CourseCode string    `db:"course_code" json:"course_code"`
	ApprovedAt time.Time `db:"approved_at" json:"approved_at"`
}

// CourseProgress pairs a course code with its display name when the catalog knows it.
type CourseProgress struct {
	Code string `json:"code"`
	Name string `json:"name,omitempty"`
}

// CurriculumProgress pairs a registered curriculum with its display name.
type CurriculumProgress struct {
	ID   int    `json:"id"`
	Name string `json:"name,omitempty"`
}

// StudentProgress summarises a student's academic record.
type StudentProgress struct {
	Padron    int64                `json:"padron"`
	Curricula []CurriculumProgress `json:"curricula"`
	Enrolled  []CourseProgress     `json:"enrolled"`
	Approved  []CourseProgress     `json:"approved"`
}
