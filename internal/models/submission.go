package models

import (
	"time"
)

type Submission struct {
	ID           string    `json:"id" db:"id"`
	StudentEmail string    `json:"student_email" db:"student_email"`
	Title        string    `json:"title" db:"title"`
	FileKey      string    `json:"file_key" db:"file_key"`
	FileURL      string    `json:"file_url" db:"file_url"`
	Status       string    `json:"status" db:"status"` // pending, evaluating, evaluated, failed
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

type SubmissionStatus string

const (
	SubmissionStatusPending    SubmissionStatus = "pending"
	SubmissionStatusEvaluating SubmissionStatus = "evaluating"
	SubmissionStatusEvaluated  SubmissionStatus = "evaluated"
	SubmissionStatusFailed     SubmissionStatus = "failed"
)

func (s SubmissionStatus) String() string {
	return string(s)
}

func IsValidSubmissionStatus(status string) bool {
	switch status {
	case "pending", "evaluating", "evaluated", "failed":
		return true
	default:
		return false
	}
}

// EvaluationResult is the structured outcome of one AI evaluation run,
// returned to the caller and folded into the student's ledger.
type EvaluationResult struct {
	Score      float64 `json:"score"`
	Strengths  string  `json:"strengths"`
	Weaknesses string  `json:"weaknesses"`
	Resources  string  `json:"resources"`
	Fallback   bool    `json:"fallback"`
	Committed  bool    `json:"committed"`
}

// ImportSummary reports the outcome of a bulk score import.
type ImportSummary struct {
	SuccessCount int   `json:"success_count"`
	ErrorCount   int   `json:"error_count"`
	FailedLines  []int `json:"failed_lines,omitempty"`
}
