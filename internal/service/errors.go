package service

import "errors"

var (
	ErrStudentNotFound      = errors.New("student not found")
	ErrStudentExists        = errors.New("student with this email already exists")
	ErrRecordNotFound       = errors.New("evaluation record not found")
	ErrNoPartialScores      = errors.New("record has no partial scores")
	ErrPartialScoreNotFound = errors.New("partial score not found")
	ErrNameRequired         = errors.New("score name is required")
	ErrSubmissionNotFound   = errors.New("submission not found")
	ErrLectureNotFound      = errors.New("lecture not found")
	ErrMaterialNotFound     = errors.New("material not found")
	ErrNotAuthorized        = errors.New("email is not authorized")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrSessionExpired       = errors.New("session expired")
)
