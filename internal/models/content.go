package models

import (
	"time"
)

type Lecture struct {
	ID          string    `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	VideoURL    string    `json:"video_url" db:"video_url"`
	Date        string    `json:"date" db:"date"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

type Material struct {
	ID          string    `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	FileURL     string    `json:"file_url" db:"file_url"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// LectureFeedback is a student's free-text feedback on one lecture,
// stored alongside its heuristic section split.
type LectureFeedback struct {
	ID           string    `json:"id" db:"id"`
	LectureID    string    `json:"lecture_id" db:"lecture_id"`
	StudentEmail string    `json:"student_email" db:"student_email"`
	Text         string    `json:"text" db:"text"`
	Sections     *Sections `json:"sections,omitempty"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Sections is the classified view of free-text feedback. Sentences that
// match no section keyword land in Suggestions.
type Sections struct {
	Strengths   []string `json:"strengths,omitempty"`
	Weaknesses  []string `json:"weaknesses,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
	Resources   []string `json:"resources,omitempty"`
}
