package models

// OutcomeKind is the closed set of results a mutating academic record
// operation can produce.
type OutcomeKind string

const (
	OutcomeCreated           OutcomeKind = "CREATED"
	OutcomeCreatedAdditional OutcomeKind = "CREATED_ADDITIONAL"
	OutcomeAlreadyExists     OutcomeKind = "ALREADY_EXISTS"
	OutcomeAlreadyRegistered OutcomeKind = "ALREADY_REGISTERED"
	OutcomeAlreadyApproved   OutcomeKind = "ALREADY_APPROVED"
	OutcomeAlreadyEnrolled   OutcomeKind = "ALREADY_ENROLLED"
	OutcomeNotEnrolled       OutcomeKind = "NOT_ENROLLED"
	OutcomeWithdrawn         OutcomeKind = "WITHDRAWN"
	OutcomeApproved          OutcomeKind = "APPROVED"
	OutcomeNotFound          OutcomeKind = "NOT_FOUND"
	OutcomeInvalidInput      OutcomeKind = "INVALID_INPUT"
	// OutcomeOperationFailed reports an infrastructure failure; it is never
	// a business rejection.
	OutcomeOperationFailed OutcomeKind = "OPERATION_FAILED"
)

// Outcome is the total result of a mutating operation.
type Outcome struct {
	Kind         OutcomeKind `json:"kind"`
	Message      string      `json:"message"`
	Padron       int64       `json:"padron"`
	CurriculumID int         `json:"curriculum_id,omitempty"`
	CourseCode   string      `json:"course_code,omitempty"`
	Entity       string      `json:"entity,omitempty"`
}

// Failed reports whether the system could not process the request.
func (o Outcome) Failed() bool {
	return o.Kind == OutcomeOperationFailed
}

// Applied reports whether the operation wrote to the record store.
func (o Outcome) Applied() bool {
	switch o.Kind {
	case OutcomeCreated, OutcomeCreatedAdditional, OutcomeApproved, OutcomeWithdrawn:
		return true
	default:
		return false
	}
}
