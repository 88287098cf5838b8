package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/openclass/portal-service/internal/models"
	"github.com/openclass/portal-service/internal/repository"
)

type StudentService interface {
	CreateStudent(ctx context.Context, req *models.CreateStudentRequest) (*models.Student, error)
	GetStudent(ctx context.Context, id string) (*models.StudentWithStats, error)
	GetStudentByEmail(ctx context.Context, email string) (*models.Student, error)
	GetAllStudents(ctx context.Context, limit, offset int) ([]models.StudentWithStats, int, error)
	UpdateStudent(ctx context.Context, id string, req *models.CreateStudentRequest) (*models.Student, error)
	DeleteStudent(ctx context.Context, id string) error
}

type studentService struct {
	studentRepo repository.StudentRepository
	ledgerRepo  repository.LedgerRepository
	logger      zerolog.Logger
}

func NewStudentService(
	studentRepo repository.StudentRepository,
	ledgerRepo repository.LedgerRepository,
	logger zerolog.Logger,
) StudentService {
	return &studentService{
		studentRepo: studentRepo,
		ledgerRepo:  ledgerRepo,
		logger:      logger,
	}
}

func (s *studentService) CreateStudent(ctx context.Context, req *models.CreateStudentRequest) (*models.Student, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	name := strings.TrimSpace(req.Name)
	if email == "" || name == "" {
		return nil, ErrNameRequired
	}

	existing, err := s.studentRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check student: %w", err)
	}
	if existing != nil {
		return nil, ErrStudentExists
	}

	now := time.Now()
	student := &models.Student{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.studentRepo.Create(ctx, student); err != nil {
		return nil, fmt.Errorf("failed to create student: %w", err)
	}

	s.logger.Info().
		Str("student_id", student.ID).
		Str("email", student.Email).
		Msg("Student created")

	return student, nil
}

// GetStudent returns the student with submission counters plus the
// current ledger total, when a ledger record exists.
func (s *studentService) GetStudent(ctx context.Context, id string) (*models.StudentWithStats, error) {
	student, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	if student == nil {
		return nil, ErrStudentNotFound
	}

	record, err := s.ledgerRepo.GetRecord(ctx, student.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger record: %w", err)
	}
	if record != nil {
		student.TotalScore = record.TotalScore
	}

	return student, nil
}

func (s *studentService) GetStudentByEmail(ctx context.Context, email string) (*models.Student, error) {
	student, err := s.studentRepo.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	if student == nil {
		return nil, ErrStudentNotFound
	}
	return student, nil
}

func (s *studentService) GetAllStudents(ctx context.Context, limit, offset int) ([]models.StudentWithStats, int, error) {
	students, total, err := s.studentRepo.GetAll(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list students: %w", err)
	}

	for i := range students {
		record, err := s.ledgerRepo.GetRecord(ctx, students[i].Email)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to get ledger record: %w", err)
		}
		if record != nil {
			students[i].TotalScore = record.TotalScore
		}
	}

	return students, total, nil
}

func (s *studentService) UpdateStudent(ctx context.Context, id string, req *models.CreateStudentRequest) (*models.Student, error) {
	current, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	if current == nil {
		return nil, ErrStudentNotFound
	}

	student := &models.Student{
		ID:        current.ID,
		Name:      current.Name,
		Email:     current.Email,
		CreatedAt: current.CreatedAt,
		UpdatedAt: time.Now(),
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		student.Name = name
	}
	if email := strings.TrimSpace(strings.ToLower(req.Email)); email != "" && email != student.Email {
		existing, err := s.studentRepo.GetByEmail(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("failed to check student: %w", err)
		}
		if existing != nil {
			return nil, ErrStudentExists
		}
		student.Email = email
	}

	if err := s.studentRepo.Update(ctx, student); err != nil {
		return nil, fmt.Errorf("failed to update student: %w", err)
	}

	return student, nil
}

func (s *studentService) DeleteStudent(ctx context.Context, id string) error {
	exists, err := s.studentRepo.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check student: %w", err)
	}
	if !exists {
		return ErrStudentNotFound
	}

	if err := s.studentRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete student: %w", err)
	}

	s.logger.Info().Str("student_id", id).Msg("Student deleted")
	return nil
}
