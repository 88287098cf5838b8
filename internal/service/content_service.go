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

type ContentService interface {
	CreateLecture(ctx context.Context, req *models.CreateLectureRequest) (*models.Lecture, error)
	GetLecture(ctx context.Context, id string) (*models.Lecture, error)
	GetAllLectures(ctx context.Context) ([]models.Lecture, error)
	UpdateLecture(ctx context.Context, id string, req *models.CreateLectureRequest) (*models.Lecture, error)
	DeleteLecture(ctx context.Context, id string) error

	CreateMaterial(ctx context.Context, req *models.CreateMaterialRequest) (*models.Material, error)
	GetAllMaterials(ctx context.Context) ([]models.Material, error)
	UpdateMaterial(ctx context.Context, id string, req *models.CreateMaterialRequest) (*models.Material, error)
	DeleteMaterial(ctx context.Context, id string) error
}

type contentService struct {
	contentRepo repository.ContentRepository
	logger      zerolog.Logger
}

func NewContentService(contentRepo repository.ContentRepository, logger zerolog.Logger) ContentService {
	return &contentService{
		contentRepo: contentRepo,
		logger:      logger,
	}
}

func (s *contentService) CreateLecture(ctx context.Context, req *models.CreateLectureRequest) (*models.Lecture, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, ErrNameRequired
	}

	date := strings.TrimSpace(req.Date)
	if date == "" {
		date = time.Now().Format(models.DateFormat)
	} else if _, err := time.Parse(models.DateFormat, date); err != nil {
		return nil, fmt.Errorf("invalid lecture date %q: %w", date, err)
	}

	now := time.Now()
	lecture := &models.Lecture{
		ID:          uuid.New().String(),
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		VideoURL:    req.VideoURL,
		Date:        date,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.contentRepo.CreateLecture(ctx, lecture); err != nil {
		return nil, fmt.Errorf("failed to create lecture: %w", err)
	}

	s.logger.Info().Str("lecture_id", lecture.ID).Str("title", lecture.Title).Msg("Lecture created")
	return lecture, nil
}

func (s *contentService) GetLecture(ctx context.Context, id string) (*models.Lecture, error) {
	lecture, err := s.contentRepo.GetLectureByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get lecture: %w", err)
	}
	if lecture == nil {
		return nil, ErrLectureNotFound
	}
	return lecture, nil
}

func (s *contentService) GetAllLectures(ctx context.Context) ([]models.Lecture, error) {
	lectures, err := s.contentRepo.GetAllLectures(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list lectures: %w", err)
	}
	return lectures, nil
}

func (s *contentService) UpdateLecture(ctx context.Context, id string, req *models.CreateLectureRequest) (*models.Lecture, error) {
	lecture, err := s.GetLecture(ctx, id)
	if err != nil {
		return nil, err
	}

	if title := strings.TrimSpace(req.Title); title != "" {
		lecture.Title = title
	}
	if req.Description != "" {
		lecture.Description = req.Description
	}
	if req.VideoURL != "" {
		lecture.VideoURL = req.VideoURL
	}
	if date := strings.TrimSpace(req.Date); date != "" {
		if _, err := time.Parse(models.DateFormat, date); err != nil {
			return nil, fmt.Errorf("invalid lecture date %q: %w", date, err)
		}
		lecture.Date = date
	}
	lecture.UpdatedAt = time.Now()

	if err := s.contentRepo.UpdateLecture(ctx, lecture); err != nil {
		return nil, fmt.Errorf("failed to update lecture: %w", err)
	}
	return lecture, nil
}

func (s *contentService) DeleteLecture(ctx context.Context, id string) error {
	lecture, err := s.contentRepo.GetLectureByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get lecture: %w", err)
	}
	if lecture == nil {
		return ErrLectureNotFound
	}
	if err := s.contentRepo.DeleteLecture(ctx, id); err != nil {
		return fmt.Errorf("failed to delete lecture: %w", err)
	}
	return nil
}

func (s *contentService) CreateMaterial(ctx context.Context, req *models.CreateMaterialRequest) (*models.Material, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, ErrNameRequired
	}

	now := time.Now()
	material := &models.Material{
		ID:          uuid.New().String(),
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		FileURL:     req.FileURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.contentRepo.CreateMaterial(ctx, material); err != nil {
		return nil, fmt.Errorf("failed to create material: %w", err)
	}

	s.logger.Info().Str("material_id", material.ID).Str("title", material.Title).Msg("Material created")
	return material, nil
}

func (s *contentService) GetAllMaterials(ctx context.Context) ([]models.Material, error) {
	materials, err := s.contentRepo.GetAllMaterials(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list materials: %w", err)
	}
	return materials, nil
}

func (s *contentService) UpdateMaterial(ctx context.Context, id string, req *models.CreateMaterialRequest) (*models.Material, error) {
	material, err := s.contentRepo.GetMaterialByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get material: %w", err)
	}
	if material == nil {
		return nil, ErrMaterialNotFound
	}

	if title := strings.TrimSpace(req.Title); title != "" {
		material.Title = title
	}
	if req.Description != "" {
		material.Description = req.Description
	}
	if req.FileURL != "" {
		material.FileURL = req.FileURL
	}
	material.UpdatedAt = time.Now()

	if err := s.contentRepo.UpdateMaterial(ctx, material); err != nil {
		return nil, fmt.Errorf("failed to update material: %w", err)
	}
	return material, nil
}

func (s *contentService) DeleteMaterial(ctx context.Context, id string) error {
	if err := s.contentRepo.DeleteMaterial(ctx, id); err != nil {
		return fmt.Errorf("failed to delete material: %w", err)
	}
	return nil
}
