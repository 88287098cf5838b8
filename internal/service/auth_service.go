package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/openclass/portal-service/internal/models"
	"github.com/openclass/portal-service/internal/repository"
)

type AuthService interface {
	LoginAdmin(ctx context.Context, email, password string) (*models.Session, error)
	LoginStudent(ctx context.Context, email string) (*models.Session, error)
	Authenticate(ctx context.Context, token string) (*models.Session, error)
	Logout(ctx context.Context, token string) error
	CreateAdmin(ctx context.Context, email, password string) (*models.Admin, error)
}

type authService struct {
	adminRepo   repository.AdminRepository
	studentRepo repository.StudentRepository
	sessions    repository.SessionStore
	sessionTTL  time.Duration
	logger      zerolog.Logger
}

func NewAuthService(
	adminRepo repository.AdminRepository,
	studentRepo repository.StudentRepository,
	sessions repository.SessionStore,
	sessionTTL time.Duration,
	logger zerolog.Logger,
) AuthService {
	return &authService{
		adminRepo:   adminRepo,
		studentRepo: studentRepo,
		sessions:    sessions,
		sessionTTL:  sessionTTL,
		logger:      logger,
	}
}

// LoginAdmin verifies the password against the stored bcrypt hash and
// opens a session. The same error is returned for an unknown email and
// a wrong password.
func (s *authService) LoginAdmin(ctx context.Context, email, password string) (*models.Session, error) {
	admin, err := s.adminRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}
	if admin == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	session, err := s.openSession(ctx, admin.Email, true)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("email", admin.Email).Msg("Admin logged in")
	return session, nil
}

// LoginStudent opens a session for a registered student. Students
// authenticate by enrollment only; their accounts carry no password.
func (s *authService) LoginStudent(ctx context.Context, email string) (*models.Session, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil, ErrInvalidCredentials
	}

	student, err := s.studentRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	if student == nil {
		return nil, ErrStudentNotFound
	}

	session, err := s.openSession(ctx, student.Email, false)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("email", student.Email).Msg("Student logged in")
	return session, nil
}

// Authenticate resolves a bearer token to its session, rejecting
// expired ones.
func (s *authService) Authenticate(ctx context.Context, token string) (*models.Session, error) {
	if token == "" {
		return nil, ErrNotAuthorized
	}

	session, err := s.sessions.Load(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return nil, ErrNotAuthorized
	}
	if session.Expired(time.Now()) {
		return nil, ErrSessionExpired
	}

	return session, nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.Clear(ctx, token); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

func (s *authService) CreateAdmin(ctx context.Context, email, password string) (*models.Admin, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &models.Admin{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}
	if err := s.adminRepo.Create(ctx, admin); err != nil {
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}

	return admin, nil
}

func (s *authService) openSession(ctx context.Context, email string, isAdmin bool) (*models.Session, error) {
	now := time.Now()
	session := &models.Session{
		Token:     uuid.New().String(),
		Email:     email,
		IsAdmin:   isAdmin,
		ExpiresAt: now.Add(s.sessionTTL),
		CreatedAt: now,
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return session, nil
}
