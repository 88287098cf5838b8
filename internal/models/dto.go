package models

import "time"

// Data Transfer Objects

type CreateStudentRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type AddPartialScoreRequest struct {
	Name     string    `json:"name"`
	Score    float64   `json:"score"`
	Feedback *Feedback `json:"feedback,omitempty"`
}

type DeleteByNameRequest struct {
	Name string `json:"name"`
}

type DeleteByNameResponse struct {
	Name         string `json:"name"`
	UpdatedCount int    `json:"updated_count"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type StudentLoginRequest struct {
	Email string `json:"email"`
}

type CreateSubmissionResponse struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	FileURL   string    `json:"file_url"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateLectureRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	VideoURL    string `json:"video_url"`
	Date        string `json:"date"`
}

type CreateMaterialRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	FileURL     string `json:"file_url"`
}

type CreateFeedbackRequest struct {
	LectureID    string `json:"lecture_id"`
	StudentEmail string `json:"student_email"`
	Text         string `json:"text"`
}

type LedgerResponse struct {
	Records []EvaluationRecord `json:"records"`
	Total   int                `json:"total"`
}
