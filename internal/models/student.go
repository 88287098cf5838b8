package models

import (
	"time"
)

// Student is an authorized portal account. Email is the stable external
// key used across the ledger and submissions.
type Student struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type StudentWithStats struct {
	Student
	TotalSubmissions     int     `json:"total_submissions" db:"total_submissions"`
	EvaluatedSubmissions int     `json:"evaluated_submissions" db:"evaluated_submissions"`
	PendingSubmissions   int     `json:"pending_submissions" db:"pending_submissions"`
	TotalScore           float64 `json:"total_score"`
}

type Admin struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Session identifies an authenticated caller. It is passed explicitly
// into operations that need the caller's identity.
type Session struct {
	Token     string    `json:"token" db:"token"`
	Email     string    `json:"email" db:"email"`
	IsAdmin   bool      `json:"is_admin" db:"is_admin"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
