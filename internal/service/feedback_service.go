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

type FeedbackService interface {
	CreateFeedback(ctx context.Context, req *models.CreateFeedbackRequest) (*models.LectureFeedback, error)
	GetLectureFeedback(ctx context.Context, lectureID string) ([]models.LectureFeedback, error)
	GetAllFeedback(ctx context.Context, limit, offset int) ([]models.LectureFeedback, int, error)
}

type feedbackService struct {
	feedbackRepo repository.FeedbackRepository
	contentRepo  repository.ContentRepository
	logger       zerolog.Logger
}

func NewFeedbackService(
	feedbackRepo repository.FeedbackRepository,
	contentRepo repository.ContentRepository,
	logger zerolog.Logger,
) FeedbackService {
	return &feedbackService{
		feedbackRepo: feedbackRepo,
		contentRepo:  contentRepo,
		logger:       logger,
	}
}

// CreateFeedback stores the raw feedback text together with its
// heuristic section split.
func (s *feedbackService) CreateFeedback(ctx context.Context, req *models.CreateFeedbackRequest) (*models.LectureFeedback, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, ErrNameRequired
	}

	lecture, err := s.contentRepo.GetLectureByID(ctx, req.LectureID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lecture: %w", err)
	}
	if lecture == nil {
		return nil, ErrLectureNotFound
	}

	feedback := &models.LectureFeedback{
		ID:           uuid.New().String(),
		LectureID:    req.LectureID,
		StudentEmail: strings.TrimSpace(strings.ToLower(req.StudentEmail)),
		Text:         text,
		Sections:     SplitFeedback(text),
		CreatedAt:    time.Now(),
	}
	if err := s.feedbackRepo.Create(ctx, feedback); err != nil {
		return nil, fmt.Errorf("failed to create feedback: %w", err)
	}

	s.logger.Info().
		Str("feedback_id", feedback.ID).
		Str("lecture_id", feedback.LectureID).
		Msg("Lecture feedback created")

	return feedback, nil
}

func (s *feedbackService) GetLectureFeedback(ctx context.Context, lectureID string) ([]models.LectureFeedback, error) {
	feedback, err := s.feedbackRepo.GetByLectureID(ctx, lectureID)
	if err != nil {
		return nil, fmt.Errorf("failed to list lecture feedback: %w", err)
	}
	return feedback, nil
}

func (s *feedbackService) GetAllFeedback(ctx context.Context, limit, offset int) ([]models.LectureFeedback, int, error) {
	feedback, total, err := s.feedbackRepo.GetAll(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list feedback: %w", err)
	}
	return feedback, total, nil
}
