package models

type SubmissionCreatedEvent struct {
	SubmissionID string `json:"submission_id"`
	StudentEmail string `json:"student_email"`
	FileURL      string `json:"file_url"`
	Timestamp    int64  `json:"timestamp"`
}

type EvaluationCompletedEvent struct {
	SubmissionID string  `json:"submission_id"`
	StudentEmail string  `json:"student_email"`
	Status       string  `json:"status"`
	Score        float64 `json:"score"`
	Fallback     bool    `json:"fallback"`
}
