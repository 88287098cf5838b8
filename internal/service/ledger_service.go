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

// LedgerService maintains the invariant between a student's partial
// score list and the derived total: the total is always the capped,
// two-decimal mean of the current list, recomputed inside the store's
// transaction on every mutation.
type LedgerService interface {
	AddPartialScore(ctx context.Context, studentID, name string, score float64, feedback *models.Feedback) (*models.PartialScore, error)
	DeletePartialScore(ctx context.Context, studentID, partialScoreID string) error
	DeletePartialScoreByNameFromAll(ctx context.Context, scoreName string) (int, error)
	GetRecord(ctx context.Context, studentID string) (*models.EvaluationRecord, error)
	GetAllRecords(ctx context.Context) ([]models.EvaluationRecord, error)
}

type ledgerService struct {
	ledgerRepo repository.LedgerRepository
	logger     zerolog.Logger
}

func NewLedgerService(ledgerRepo repository.LedgerRepository, logger zerolog.Logger) LedgerService {
	return &ledgerService{
		ledgerRepo: ledgerRepo,
		logger:     logger,
	}
}

func (s *ledgerService) AddPartialScore(ctx context.Context, studentID, name string, score float64, feedback *models.Feedback) (*models.PartialScore, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrNameRequired
	}
	if strings.TrimSpace(studentID) == "" {
		return nil, ErrStudentNotFound
	}

	entry := models.PartialScore{
		ID:       uuid.New().String(),
		Name:     name,
		Score:    models.ClampScore(score),
		Feedback: feedback,
		Date:     time.Now().Format(models.DateFormat),
	}

	err := s.ledgerRepo.UpdateRecord(ctx, studentID, func(record *models.EvaluationRecord) error {
		record.Append(entry)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add partial score: %w", err)
	}

	s.logger.Info().
		Str("student_id", studentID).
		Str("score_name", name).
		Float64("score", entry.Score).
		Msg("Partial score added")

	return &entry, nil
}

func (s *ledgerService) DeletePartialScore(ctx context.Context, studentID, partialScoreID string) error {
	record, err := s.ledgerRepo.GetRecord(ctx, studentID)
	if err != nil {
		return fmt.Errorf("failed to get record: %w", err)
	}
	if record == nil {
		return ErrRecordNotFound
	}
	if len(record.PartialScores) == 0 {
		return ErrNoPartialScores
	}

	err = s.ledgerRepo.UpdateRecord(ctx, studentID, func(record *models.EvaluationRecord) error {
		if !record.RemoveByID(partialScoreID) {
			return ErrPartialScoreNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info().
		Str("student_id", studentID).
		Str("partial_score_id", partialScoreID).
		Msg("Partial score deleted")

	return nil
}

// DeletePartialScoreByNameFromAll removes every partial score with the
// given name from every student record. A snapshot scan stages the
// modified records, then one batch commits them all-or-nothing.
// Untouched records are never written.
func (s *ledgerService) DeletePartialScoreByNameFromAll(ctx context.Context, scoreName string) (int, error) {
	if strings.TrimSpace(scoreName) == "" {
		return 0, ErrNameRequired
	}

	records, err := s.ledgerRepo.ScanAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to scan ledger: %w", err)
	}

	var staged []models.EvaluationRecord
	for i := range records {
		if records[i].RemoveByName(scoreName) > 0 {
			staged = append(staged, records[i])
		}
	}

	if len(staged) == 0 {
		return 0, nil
	}

	if err := s.ledgerRepo.BatchCommit(ctx, staged); err != nil {
		return 0, fmt.Errorf("failed to commit batch delete: %w", err)
	}

	s.logger.Info().
		Str("score_name", scoreName).
		Int("updated_count", len(staged)).
		Msg("Partial scores deleted by name from all records")

	return len(staged), nil
}

func (s *ledgerService) GetRecord(ctx context.Context, studentID string) (*models.EvaluationRecord, error) {
	record, err := s.ledgerRepo.GetRecord(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	if record == nil {
		return nil, ErrRecordNotFound
	}

	return record, nil
}

func (s *ledgerService) GetAllRecords(ctx context.Context) ([]models.EvaluationRecord, error) {
	records, err := s.ledgerRepo.ScanAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to scan ledger: %w", err)
	}

	return records, nil
}
