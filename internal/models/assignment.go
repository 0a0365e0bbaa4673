package models

import "time"

// AssignmentRecord is one due item assembled during an aggregation pass.
// Records are built once per pass and not mutated afterwards.
type AssignmentRecord struct {
	CourseName        string       `json:"course_name"`
	Name              string       `json:"name"`
	DueAt             time.Time    `json:"due_at"`
	Description       string       `json:"description,omitempty"`
	HTMLURL           string       `json:"html_url,omitempty"`
	Attachments       []Attachment `json:"attachments,omitempty"`
	SubmissionTypes   []string     `json:"submission_types,omitempty"`
	AllowedExtensions []string     `json:"allowed_extensions,omitempty"`
	PointsPossible    *float64     `json:"points_possible,omitempty"`
	UnlockAt          *time.Time   `json:"unlock_at,omitempty"`
	LockAt            *time.Time   `json:"lock_at,omitempty"`
	EstimatedHours    *float64     `json:"estimated_hours,omitempty"`
	AISummary         string       `json:"ai_summary,omitempty"`
	AssignmentID      int64        `json:"assignment_id"`
	CourseID          int64        `json:"course_id"`
}

// Attachment is a file linked from an assignment.
type Attachment struct {
	DisplayName string `json:"display_name"`
	URL         string `json:"url,omitempty"`
}
